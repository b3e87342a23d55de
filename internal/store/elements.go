package store

import (
	"context"
	"fmt"

	"scrapbookAPI/internal/scrapbook"
)

// PageElements lists a page's elements by display order.
func (s *Store) PageElements(ctx context.Context, pageID string) ([]scrapbook.Element, error) {
	r, err := s.db.Query(ctx, "SELECT "+elementColumns+" FROM elements WHERE page_id = ? ORDER BY display_order ASC, created_at ASC, id ASC", pageID)
	if err != nil {
		return nil, fmt.Errorf("failed to load elements: %w", err)
	}
	defer r.Close()
	els := []scrapbook.Element{}
	for r.Next() {
		e, err := scanElement(r)
		if err != nil {
			return nil, fmt.Errorf("failed to scan element: %w", err)
		}
		els = append(els, *e)
	}
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("failed to load elements: %w", err)
	}
	return els, nil
}

func (s *Store) GetElement(ctx context.Context, id string) (*scrapbook.Element, error) {
	e, err := scanElement(s.db.QueryRow(ctx, "SELECT "+elementColumns+" FROM elements WHERE id = ?", id))
	if err != nil {
		return nil, fmt.Errorf("element %s: %w", id, err)
	}
	return e, nil
}

// ElementScrapbookID resolves the scrapbook an element belongs to.
func (s *Store) ElementScrapbookID(ctx context.Context, elementID string) (string, error) {
	var id string
	err := s.db.QueryRow(ctx, `SELECT p.scrapbook_id FROM elements e JOIN pages p ON p.id = e.page_id
		WHERE e.id = ?`, elementID).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("element %s: %w", elementID, err)
	}
	return id, nil
}

// UpsertElement writes the full element row, inserting it when the id is new.
// The page must exist; an element never changes page through an upsert.
func (s *Store) UpsertElement(ctx context.Context, e *scrapbook.Element) error {
	if err := e.Validate(); err != nil {
		return err
	}
	ts := now()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = ts
	}
	e.UpdatedAt = ts
	args, err := elementArgs(e)
	if err != nil {
		return err
	}
	n, err := s.db.Exec(ctx, "INSERT INTO elements ("+elementColumns+") VALUES ("+placeholders(19)+`)
		ON CONFLICT (id) DO UPDATE SET element_type = excluded.element_type, name = excluded.name,
			pos_x = excluded.pos_x, pos_y = excluded.pos_y, width = excluded.width, height = excluded.height,
			transform = excluded.transform, opacity = excluded.opacity, z_index = excluded.z_index,
			display_order = excluded.display_order, locked = excluded.locked, visible = excluded.visible,
			shadow = excluded.shadow, border = excluded.border, properties = excluded.properties,
			updated_at = excluded.updated_at
		WHERE elements.page_id = excluded.page_id`, args...)
	if err != nil {
		return fmt.Errorf("failed to upsert element %s: %w", e.ID, err)
	}
	if n == 0 {
		return fmt.Errorf("element %s belongs to another page: %w", e.ID, scrapbook.ErrNotFound)
	}
	return nil
}

func (s *Store) DeleteElement(ctx context.Context, id string) error {
	n, err := s.db.Exec(ctx, "DELETE FROM elements WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete element: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("element %s: %w", id, scrapbook.ErrNotFound)
	}
	return nil
}
