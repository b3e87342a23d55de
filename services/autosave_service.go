package services

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"scrapbookAPI/internal/scrapbook"
	"scrapbookAPI/internal/store"
)

type AutosaveService struct {
	store *store.Store
}

func NewAutosaveService(st *store.Store) *AutosaveService {
	return &AutosaveService{
		store: st,
	}
}

// AutosaveRequest is a partial save. Only the metadata fields, pages and
// elements present are written; everything else is left as stored.
type AutosaveRequest struct {
	Metadata *scrapbook.MetadataInput `json:"metadata,omitempty"`
	Pages    []scrapbook.PageInput    `json:"pages,omitempty"`
}

// RowFailure names one row an autosave could not write.
type RowFailure struct {
	Kind   string `json:"kind"`
	ID     string `json:"id,omitempty"`
	PageID string `json:"page_id,omitempty"`
	Error  string `json:"error"`
}

type AutosaveResult struct {
	ScrapbookID   string       `json:"scrapbook_id"`
	SavedAt       time.Time    `json:"saved_at"`
	PagesSaved    int          `json:"pages_saved"`
	ElementsSaved int          `json:"elements_saved"`
	Failures      []RowFailure `json:"failures"`
}

// Autosave merges req into the stored scrapbook. Pages and then their elements
// are written in array order, each merged with its stored row. A row that
// fails is reported and the rest carry on; the call itself only fails when
// the scrapbook cannot be read or the caller may not edit it.
func (s *AutosaveService) Autosave(ctx context.Context, callerID, id string, req AutosaveRequest) (*AutosaveResult, error) {
	sb, access, err := authorize(ctx, s.store, callerID, id, needEdit)
	if err != nil {
		return nil, err
	}
	result := &AutosaveResult{ScrapbookID: id, Failures: []RowFailure{}}
	fail := func(f RowFailure) {
		autosaveFailures.WithLabelValues(f.Kind).Inc()
		result.Failures = append(result.Failures, f)
	}

	if req.Metadata != nil && !req.Metadata.Empty() {
		switch {
		case req.Metadata.IsPublic != nil && !access.Owner:
			fail(RowFailure{Kind: "metadata", ID: id, Error: "only the owner may change visibility"})
		default:
			updated, err := s.store.UpdateScrapbook(ctx, id, *req.Metadata)
			if err != nil {
				fail(RowFailure{Kind: "metadata", ID: id, Error: failureMessage(err)})
			} else {
				sb = updated
			}
		}
	}

	stored, err := s.store.LoadPages(ctx, id)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*scrapbook.Page, len(stored))
	for i := range stored {
		byID[stored[i].ID] = &stored[i]
	}

	renumber := false
	var moved []string
	nextOrder := len(stored)
	for _, in := range req.Pages {
		pageID := ""
		if in.ID != nil {
			pageID = *in.ID
		}
		base := byID[pageID]

		page, err := in.Apply(base, id, sb.PageWidth, sb.PageHeight)
		if err == nil && base == nil && in.Order == nil {
			page.Order = nextOrder
		}
		if err == nil {
			err = s.store.UpsertPage(ctx, page)
		}
		if err != nil {
			fail(RowFailure{Kind: "page", ID: pageID, Error: failureMessage(err)})
			if base == nil {
				for _, f := range skippedElements(pageID, in.Elements) {
					fail(f)
				}
				continue
			}
			page = base
		} else {
			result.PagesSaved++
			if base == nil {
				nextOrder++
				renumber = true
			} else if page.Order != base.Order {
				renumber = true
			}
			if in.Order != nil && (base == nil || page.Order != base.Order) {
				moved = append(moved, page.ID)
			}
			page.Elements = []scrapbook.Element{}
			if base != nil {
				page.Elements = base.Elements
			}
			byID[page.ID] = page
		}

		if len(in.Elements) > 0 {
			saved, failures := saveElements(ctx, s.store, page, in.Elements)
			result.ElementsSaved += len(saved)
			for _, f := range failures {
				fail(f)
			}
		}
	}

	if renumber {
		if err := s.store.NormalizePageOrder(ctx, id, moved...); err != nil {
			return nil, err
		}
	}
	if err := s.store.Touch(ctx, id); err != nil {
		return nil, err
	}
	result.SavedAt = time.Now().UTC()
	return result, nil
}

// saveElements upserts each payload on page, merging with the stored element
// of the same id. page.Elements is the stored state and is updated as rows
// are written. New elements without a display order are appended.
func saveElements(ctx context.Context, st *store.Store, page *scrapbook.Page, raws []json.RawMessage) ([]scrapbook.Element, []RowFailure) {
	existing := make(map[string]int, len(page.Elements))
	next := 0
	for i, e := range page.Elements {
		existing[e.ID] = i
		if e.DisplayOrder >= next {
			next = e.DisplayOrder + 1
		}
	}

	saved := []scrapbook.Element{}
	failures := []RowFailure{}
	for _, raw := range raws {
		var in scrapbook.ElementInput
		if err := json.Unmarshal(raw, &in); err != nil {
			failures = append(failures, RowFailure{Kind: "element", PageID: page.ID, Error: "malformed element payload"})
			continue
		}
		elID := ""
		if in.ID != nil {
			elID = *in.ID
		}
		var base *scrapbook.Element
		if i, ok := existing[elID]; ok {
			base = &page.Elements[i]
		}

		el, err := in.Apply(base, page.ID)
		if err == nil {
			if base == nil && in.DisplayOrder == nil {
				el.DisplayOrder = next
			}
			err = st.UpsertElement(ctx, el)
		}
		if err != nil {
			failures = append(failures, RowFailure{Kind: "element", ID: elID, PageID: page.ID, Error: failureMessage(err)})
			continue
		}
		if el.DisplayOrder >= next {
			next = el.DisplayOrder + 1
		}
		if i, ok := existing[el.ID]; ok {
			page.Elements[i] = *el
		} else {
			existing[el.ID] = len(page.Elements)
			page.Elements = append(page.Elements, *el)
		}
		saved = append(saved, *el)
	}
	return saved, failures
}

func skippedElements(pageID string, raws []json.RawMessage) []RowFailure {
	out := make([]RowFailure, 0, len(raws))
	for _, raw := range raws {
		var ref struct {
			ID string `json:"id"`
		}
		_ = json.Unmarshal(raw, &ref)
		out = append(out, RowFailure{Kind: "element", ID: ref.ID, PageID: pageID, Error: "page was not saved"})
	}
	return out
}

// failureMessage is the client-facing text for a failed row. Unexpected
// errors are logged and replaced with a generic message.
func failureMessage(err error) string {
	switch {
	case errors.Is(err, scrapbook.ErrValidation), errors.Is(err, scrapbook.ErrNotFound),
		errors.Is(err, scrapbook.ErrConflict), errors.Is(err, scrapbook.ErrForbidden):
		return err.Error()
	}
	log.Printf("Autosave: row failed: %v", err)
	return "internal error"
}

func prefixField(parent string, err error) error {
	var ve *scrapbook.ValidationError
	if errors.As(err, &ve) {
		field := parent
		if ve.Field != "" {
			field = parent + "." + ve.Field
		}
		return &scrapbook.ValidationError{Field: field, Message: ve.Message}
	}
	return err
}
