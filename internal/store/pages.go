package store

import (
	"context"
	"fmt"

	"scrapbookAPI/internal/scrapbook"
)

// LoadPages returns the scrapbook's pages by page_order, each with its
// elements by display_order.
func (s *Store) LoadPages(ctx context.Context, scrapbookID string) ([]scrapbook.Page, error) {
	pages, err := s.pageRows(ctx, s.db, scrapbookID)
	if err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		return pages, nil
	}

	index := make(map[string]int, len(pages))
	for i, p := range pages {
		index[p.ID] = i
	}

	r, err := s.db.Query(ctx, "SELECT "+elementColumns+` FROM elements
		WHERE page_id IN (SELECT id FROM pages WHERE scrapbook_id = ?)
		ORDER BY display_order ASC, created_at ASC, id ASC`, scrapbookID)
	if err != nil {
		return nil, fmt.Errorf("failed to load elements: %w", err)
	}
	defer r.Close()
	for r.Next() {
		e, err := scanElement(r)
		if err != nil {
			return nil, fmt.Errorf("failed to scan element: %w", err)
		}
		if i, ok := index[e.PageID]; ok {
			pages[i].Elements = append(pages[i].Elements, *e)
		}
	}
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("failed to load elements: %w", err)
	}
	return pages, nil
}

func (s *Store) pageRows(ctx context.Context, q querier, scrapbookID string) ([]scrapbook.Page, error) {
	r, err := q.Query(ctx, "SELECT "+pageColumns+" FROM pages WHERE scrapbook_id = ? ORDER BY page_order ASC, created_at ASC, id ASC",
		scrapbookID)
	if err != nil {
		return nil, fmt.Errorf("failed to load pages: %w", err)
	}
	defer r.Close()
	pages := []scrapbook.Page{}
	for r.Next() {
		p, err := scanPage(r)
		if err != nil {
			return nil, fmt.Errorf("failed to scan page: %w", err)
		}
		pages = append(pages, *p)
	}
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("failed to load pages: %w", err)
	}
	return pages, nil
}

// GetPage loads one page row with its elements.
func (s *Store) GetPage(ctx context.Context, id string) (*scrapbook.Page, error) {
	p, err := scanPage(s.db.QueryRow(ctx, "SELECT "+pageColumns+" FROM pages WHERE id = ?", id))
	if err != nil {
		return nil, fmt.Errorf("page %s: %w", id, err)
	}
	els, err := s.PageElements(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Elements = els
	return p, nil
}

// PageIDs lists the scrapbook's page ids in page order.
func (s *Store) PageIDs(ctx context.Context, scrapbookID string) ([]string, error) {
	return pageIDs(ctx, s.db, scrapbookID)
}

func pageIDs(ctx context.Context, q querier, scrapbookID string) ([]string, error) {
	r, err := q.Query(ctx, "SELECT id FROM pages WHERE scrapbook_id = ? ORDER BY page_order ASC, created_at ASC, id ASC", scrapbookID)
	if err != nil {
		return nil, fmt.Errorf("failed to list page ids: %w", err)
	}
	defer r.Close()
	ids := []string{}
	for r.Next() {
		var id string
		if err := r.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan page id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, r.Err()
}

// UpsertPage writes the full page row, inserting it when the id is new.
// Elements are not written.
func (s *Store) UpsertPage(ctx context.Context, p *scrapbook.Page) error {
	if err := p.Validate(); err != nil {
		return err
	}
	ts := now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = ts
	}
	p.UpdatedAt = ts
	args, err := pageArgs(p)
	if err != nil {
		return err
	}
	// A page cannot move between scrapbooks through an upsert.
	n, err := s.db.Exec(ctx, "INSERT INTO pages ("+pageColumns+") VALUES ("+placeholders(9)+`)
		ON CONFLICT (id) DO UPDATE SET name = excluded.name, page_order = excluded.page_order,
			background = excluded.background, width = excluded.width, height = excluded.height,
			updated_at = excluded.updated_at
		WHERE pages.scrapbook_id = excluded.scrapbook_id`, args...)
	if err != nil {
		return fmt.Errorf("failed to upsert page %s: %w", p.ID, err)
	}
	if n == 0 {
		return fmt.Errorf("page %s belongs to another scrapbook: %w", p.ID, scrapbook.ErrNotFound)
	}
	return nil
}

// DeletePage removes the page and its elements, then renumbers the remaining
// pages from 0.
func (s *Store) DeletePage(ctx context.Context, scrapbookID, pageID string) error {
	return s.inTx(ctx, func(q querier) error {
		var owner string
		if err := q.QueryRow(ctx, "SELECT scrapbook_id FROM pages WHERE id = ?", pageID).Scan(&owner); err != nil {
			return fmt.Errorf("page %s: %w", pageID, err)
		}
		if owner != scrapbookID {
			return fmt.Errorf("page %s: %w", pageID, scrapbook.ErrNotFound)
		}
		if _, err := q.Exec(ctx, "DELETE FROM elements WHERE page_id = ?", pageID); err != nil {
			return fmt.Errorf("failed to delete page elements: %w", err)
		}
		if _, err := q.Exec(ctx, "DELETE FROM pages WHERE id = ?", pageID); err != nil {
			return fmt.Errorf("failed to delete page: %w", err)
		}
		return normalizePageOrder(ctx, q, scrapbookID)
	})
}

// ReorderPages assigns page_order 0..n-1 following ids, which must name every
// page of the scrapbook exactly once.
func (s *Store) ReorderPages(ctx context.Context, scrapbookID string, ids []string) error {
	return s.inTx(ctx, func(q querier) error {
		current, err := pageIDs(ctx, q, scrapbookID)
		if err != nil {
			return err
		}
		if err := scrapbook.CheckPermutation(current, ids); err != nil {
			return err
		}
		ts := now()
		for i, id := range ids {
			if _, err := q.Exec(ctx, "UPDATE pages SET page_order = ?, updated_at = ? WHERE id = ?", i, ts, id); err != nil {
				return fmt.Errorf("failed to reorder page %s: %w", id, err)
			}
		}
		return nil
	})
}

// NormalizePageOrder renumbers pages contiguously from 0 keeping their
// relative order. Pages named in moved were just given a new page_order and
// take the slot they asked for; the others fill the remaining slots.
func (s *Store) NormalizePageOrder(ctx context.Context, scrapbookID string, moved ...string) error {
	return s.inTx(ctx, func(q querier) error {
		return normalizePageOrder(ctx, q, scrapbookID, moved...)
	})
}

type pageSlot struct {
	id    string
	order int
}

func normalizePageOrder(ctx context.Context, q querier, scrapbookID string, moved ...string) error {
	r, err := q.Query(ctx, "SELECT id, page_order FROM pages WHERE scrapbook_id = ? ORDER BY page_order ASC, created_at ASC, id ASC", scrapbookID)
	if err != nil {
		return fmt.Errorf("failed to read page order: %w", err)
	}
	var slots []pageSlot
	for r.Next() {
		var sl pageSlot
		if err := r.Scan(&sl.id, &sl.order); err != nil {
			r.Close()
			return fmt.Errorf("failed to scan page order: %w", err)
		}
		slots = append(slots, sl)
	}
	err = r.Err()
	r.Close()
	if err != nil {
		return fmt.Errorf("failed to read page order: %w", err)
	}

	slots = placePages(slots, moved)

	ts := now()
	for i, sl := range slots {
		if sl.order == i {
			continue
		}
		if _, err := q.Exec(ctx, "UPDATE pages SET page_order = ?, updated_at = ? WHERE id = ?", i, ts, sl.id); err != nil {
			return fmt.Errorf("failed to renumber page %s: %w", sl.id, err)
		}
	}
	return nil
}

// placePages returns slots in their final order. Moved pages claim their
// requested index (clamped, nearest free slot on collision) before the rest
// are laid out in their current order.
func placePages(slots []pageSlot, moved []string) []pageSlot {
	if len(moved) == 0 {
		return slots
	}
	isMoved := make(map[string]bool, len(moved))
	for _, id := range moved {
		isMoved[id] = true
	}
	n := len(slots)
	out := make([]pageSlot, n)
	taken := make([]bool, n)
	var rest []pageSlot
	for _, sl := range slots {
		if !isMoved[sl.id] {
			rest = append(rest, sl)
			continue
		}
		want := min(max(sl.order, 0), n-1)
		i := nearestFree(taken, want)
		out[i] = sl
		taken[i] = true
	}
	for i := range out {
		if !taken[i] {
			out[i] = rest[0]
			rest = rest[1:]
		}
	}
	return out
}

func nearestFree(taken []bool, want int) int {
	for d := 0; d < len(taken); d++ {
		if i := want + d; i < len(taken) && !taken[i] {
			return i
		}
		if i := want - d; i >= 0 && !taken[i] {
			return i
		}
	}
	return want
}
