package services

import (
	"context"
	"encoding/json"
	"fmt"

	"scrapbookAPI/internal/scrapbook"
	"scrapbookAPI/internal/store"
)

type ScrapbookService struct {
	store *store.Store
}

func NewScrapbookService(st *store.Store) *ScrapbookService {
	return &ScrapbookService{
		store: st,
	}
}

// ScrapbookDetail is a scrapbook as seen by one caller.
type ScrapbookDetail struct {
	*scrapbook.Scrapbook
	CanEdit bool `json:"can_edit"`
	IsOwner bool `json:"is_owner"`
	Liked   bool `json:"liked"`
}

type LikeResult struct {
	Liked     bool  `json:"liked"`
	LikeCount int64 `json:"like_count"`
}

// ElementsResult reports a batch element upsert. Rows that failed are listed
// and did not stop the others.
type ElementsResult struct {
	Elements []scrapbook.Element `json:"elements"`
	Failures []RowFailure        `json:"failures"`
}

// Create makes a new scrapbook owned by callerID. With a template the pages are
// deep-copied from it and the canvas follows the template; otherwise the
// scrapbook starts with one empty page.
func (s *ScrapbookService) Create(ctx context.Context, callerID string, req scrapbook.NewScrapbook) (*scrapbook.Scrapbook, error) {
	if err := requireCaller(callerID); err != nil {
		return nil, err
	}

	var tmpl *scrapbook.Template
	if req.TemplateID != nil && *req.TemplateID != "" {
		t, err := s.store.GetTemplate(ctx, *req.TemplateID)
		if err != nil {
			return nil, err
		}
		tmpl = t
		req.PageSizeName = t.PageSizeName
		req.PageWidth = t.PageWidth
		req.PageHeight = t.PageHeight
	} else {
		req.TemplateID = nil
	}

	sb, err := scrapbook.New(callerID, req)
	if err != nil {
		return nil, err
	}
	if tmpl != nil && len(tmpl.Pages) > 0 {
		sb.Pages = scrapbook.CopyPages(tmpl.Pages, sb.ID)
		for i := range sb.Pages {
			sb.Pages[i].Order = i
		}
	}

	if tmpl != nil {
		err = s.store.CreateFromTemplate(ctx, sb, tmpl.ID)
	} else {
		err = s.store.CreateScrapbook(ctx, sb)
	}
	if err != nil {
		return nil, err
	}
	return sb, nil
}

// Get returns the scrapbook if callerID may see it, with its pages when
// includePages is set.
func (s *ScrapbookService) Get(ctx context.Context, callerID, id string, includePages bool) (*ScrapbookDetail, error) {
	sb, access, err := authorize(ctx, s.store, callerID, id, needView)
	if err != nil {
		return nil, err
	}
	if includePages {
		pages, err := s.store.LoadPages(ctx, id)
		if err != nil {
			return nil, err
		}
		sb.Pages = pages
	}
	detail := &ScrapbookDetail{Scrapbook: sb, CanEdit: access.Edit, IsOwner: access.Owner}
	if callerID != "" {
		liked, err := s.store.HasLiked(ctx, id, callerID)
		if err != nil {
			return nil, err
		}
		detail.Liked = liked
	}
	return detail, nil
}

// GetPublic serves the public viewer. Only public scrapbooks (or the owner's
// own) are returned; anything else is not found. Views by anyone but the
// owner are counted.
func (s *ScrapbookService) GetPublic(ctx context.Context, viewerID, id string) (*scrapbook.Scrapbook, error) {
	sb, err := s.store.GetScrapbook(ctx, id)
	if err != nil {
		return nil, err
	}
	isOwner := viewerID != "" && viewerID == sb.UserID
	if !sb.IsPublic && !isOwner {
		return nil, fmt.Errorf("scrapbook %s not found or private: %w", id, scrapbook.ErrNotFound)
	}
	pages, err := s.store.LoadPages(ctx, id)
	if err != nil {
		return nil, err
	}
	sb.Pages = pages
	if !isOwner {
		if err := s.store.IncrementViews(ctx, id); err != nil {
			return nil, err
		}
		sb.ViewCount++
	}
	return sb, nil
}

// List pages through the caller's scrapbooks. The public filter needs no
// caller.
func (s *ScrapbookService) List(ctx context.Context, callerID string, q store.ListQuery) (*store.ListResult, error) {
	if q.Filter != store.FilterPublic {
		if err := requireCaller(callerID); err != nil {
			return nil, err
		}
	}
	q.UserID = callerID
	return s.store.ListScrapbooks(ctx, q)
}

// UpdateMetadata applies a partial metadata update. Editors may change
// everything but visibility, which stays with the owner.
func (s *ScrapbookService) UpdateMetadata(ctx context.Context, callerID, id string, in scrapbook.MetadataInput) (*scrapbook.Scrapbook, error) {
	_, access, err := authorize(ctx, s.store, callerID, id, needEdit)
	if err != nil {
		return nil, err
	}
	if in.Empty() {
		return nil, &scrapbook.ValidationError{Message: "no fields to update"}
	}
	if in.IsPublic != nil && !access.Owner {
		return nil, fmt.Errorf("only the owner may change visibility: %w", scrapbook.ErrForbidden)
	}
	return s.store.UpdateScrapbook(ctx, id, in)
}

// Delete removes the scrapbook with all pages, elements, likes and
// collaborators. Owner only.
func (s *ScrapbookService) Delete(ctx context.Context, callerID, id string) error {
	if _, _, err := authorize(ctx, s.store, callerID, id, needOwner); err != nil {
		return err
	}
	return s.store.DeleteScrapbook(ctx, id)
}

// Duplicate deep-copies a scrapbook the caller can see into a new private
// scrapbook owned by the caller.
func (s *ScrapbookService) Duplicate(ctx context.Context, callerID, id string) (*scrapbook.Scrapbook, error) {
	if err := requireCaller(callerID); err != nil {
		return nil, err
	}
	sb, _, err := authorize(ctx, s.store, callerID, id, needView)
	if err != nil {
		return nil, err
	}
	pages, err := s.store.LoadPages(ctx, id)
	if err != nil {
		return nil, err
	}
	sb.Pages = pages

	cp := sb.DeepCopy(callerID)
	cp.Title = sb.Title + " (Copy)"
	if err := s.store.CreateScrapbook(ctx, cp); err != nil {
		return nil, err
	}
	return cp, nil
}

func (s *ScrapbookService) ToggleLike(ctx context.Context, callerID, id string) (*LikeResult, error) {
	if err := requireCaller(callerID); err != nil {
		return nil, err
	}
	if _, _, err := authorize(ctx, s.store, callerID, id, needView); err != nil {
		return nil, err
	}
	liked, count, err := s.store.ToggleLike(ctx, id, callerID)
	if err != nil {
		return nil, err
	}
	state := "unliked"
	if liked {
		state = "liked"
	}
	likesToggled.WithLabelValues(state).Inc()
	return &LikeResult{Liked: liked, LikeCount: count}, nil
}

// AddTag adds tag to the scrapbook. Adding a tag that is already present
// changes nothing.
func (s *ScrapbookService) AddTag(ctx context.Context, callerID, id, tag string) (*scrapbook.Scrapbook, error) {
	sb, _, err := authorize(ctx, s.store, callerID, id, needEdit)
	if err != nil {
		return nil, err
	}
	if scrapbook.NormalizeTag(tag) == "" {
		return nil, &scrapbook.ValidationError{Field: "tag", Message: "required"}
	}
	if !sb.AddTag(tag) {
		return sb, nil
	}
	return s.store.UpdateScrapbook(ctx, id, scrapbook.MetadataInput{Tags: &sb.Tags})
}

func (s *ScrapbookService) RemoveTag(ctx context.Context, callerID, id, tag string) (*scrapbook.Scrapbook, error) {
	sb, _, err := authorize(ctx, s.store, callerID, id, needEdit)
	if err != nil {
		return nil, err
	}
	if !sb.RemoveTag(tag) {
		return sb, nil
	}
	return s.store.UpdateScrapbook(ctx, id, scrapbook.MetadataInput{Tags: &sb.Tags})
}

// AddPage appends a page built from in. The canvas defaults to the
// scrapbook's page size. Elements sent with the page are created with it.
func (s *ScrapbookService) AddPage(ctx context.Context, callerID, id string, in scrapbook.PageInput) (*scrapbook.Page, error) {
	sb, _, err := authorize(ctx, s.store, callerID, id, needEdit)
	if err != nil {
		return nil, err
	}
	if in.ID != nil && *in.ID != "" {
		if _, err := s.store.GetPage(ctx, *in.ID); err == nil {
			return nil, fmt.Errorf("page %s already exists: %w", *in.ID, scrapbook.ErrConflict)
		}
	}
	ids, err := s.store.PageIDs(ctx, id)
	if err != nil {
		return nil, err
	}
	in.Order = nil
	page, err := in.Apply(nil, id, sb.PageWidth, sb.PageHeight)
	if err != nil {
		return nil, err
	}
	page.Order = len(ids)
	if in.Name == nil {
		page.Name = fmt.Sprintf("Page %d", len(ids)+1)
	}

	page.Elements = []scrapbook.Element{}
	for i, raw := range in.Elements {
		el, err := scrapbook.ParseElement(raw, page.ID)
		if err != nil {
			return nil, prefixField(fmt.Sprintf("elements[%d]", i), err)
		}
		page.AddElement(*el)
	}

	if err := s.store.UpsertPage(ctx, page); err != nil {
		return nil, err
	}
	for i := range page.Elements {
		if err := s.store.UpsertElement(ctx, &page.Elements[i]); err != nil {
			return nil, err
		}
	}
	if err := s.store.Touch(ctx, id); err != nil {
		return nil, err
	}
	return page, nil
}

// DeletePage removes a page and renumbers the remaining pages. Removing the
// last page is allowed.
func (s *ScrapbookService) DeletePage(ctx context.Context, callerID, pageID string) error {
	page, err := s.store.GetPage(ctx, pageID)
	if err != nil {
		return err
	}
	if _, _, err := authorize(ctx, s.store, callerID, page.ScrapbookID, needEdit); err != nil {
		return err
	}
	if err := s.store.DeletePage(ctx, page.ScrapbookID, pageID); err != nil {
		return err
	}
	return s.store.Touch(ctx, page.ScrapbookID)
}

// ReorderPages sets the page order; ids must name every page exactly once.
func (s *ScrapbookService) ReorderPages(ctx context.Context, callerID, id string, ids []string) ([]scrapbook.Page, error) {
	if _, _, err := authorize(ctx, s.store, callerID, id, needEdit); err != nil {
		return nil, err
	}
	if err := s.store.ReorderPages(ctx, id, ids); err != nil {
		return nil, err
	}
	if err := s.store.Touch(ctx, id); err != nil {
		return nil, err
	}
	return s.store.LoadPages(ctx, id)
}

// UpsertElements merges each payload with the stored element of the same id
// (or creates it) on pageID. Rows fail independently.
func (s *ScrapbookService) UpsertElements(ctx context.Context, callerID, pageID string, raws []json.RawMessage) (*ElementsResult, error) {
	page, err := s.store.GetPage(ctx, pageID)
	if err != nil {
		return nil, err
	}
	if _, _, err := authorize(ctx, s.store, callerID, page.ScrapbookID, needEdit); err != nil {
		return nil, err
	}
	if len(raws) == 0 {
		return nil, &scrapbook.ValidationError{Field: "elements", Message: "at least one element is required"}
	}

	saved, failures := saveElements(ctx, s.store, page, raws)
	if len(saved) > 0 {
		if err := s.store.Touch(ctx, page.ScrapbookID); err != nil {
			return nil, err
		}
	}
	return &ElementsResult{Elements: saved, Failures: failures}, nil
}

func (s *ScrapbookService) DeleteElement(ctx context.Context, callerID, elementID string) error {
	sbID, err := s.store.ElementScrapbookID(ctx, elementID)
	if err != nil {
		return err
	}
	if _, _, err := authorize(ctx, s.store, callerID, sbID, needEdit); err != nil {
		return err
	}
	if err := s.store.DeleteElement(ctx, elementID); err != nil {
		return err
	}
	return s.store.Touch(ctx, sbID)
}
