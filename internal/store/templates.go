package store

import (
	"context"
	"errors"
	"fmt"

	"scrapbookAPI/internal/scrapbook"
)

const templateColumns = "id, name, description, category, thumbnail_url, page_width, page_height, page_size_name, use_count, created_by, created_at"

func isNotFound(err error) bool {
	return errors.Is(err, scrapbook.ErrNotFound)
}

func (s *Store) CreateTemplate(ctx context.Context, t *scrapbook.Template) error {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now()
	}
	if t.Pages == nil {
		t.Pages = []scrapbook.Page{}
	}
	pages, err := jsonText(t.Pages)
	if err != nil {
		return fmt.Errorf("encode template pages: %w", err)
	}
	_, err = s.db.Exec(ctx, "INSERT INTO templates ("+templateColumns+", pages) VALUES ("+placeholders(12)+")",
		t.ID, t.Name, t.Description, t.Category, t.ThumbnailURL, t.PageWidth, t.PageHeight, t.PageSizeName,
		t.UseCount, t.CreatedBy, t.CreatedAt, pages)
	if err != nil {
		return fmt.Errorf("failed to create template: %w", err)
	}
	return nil
}

// GetTemplate loads the template including its page tree.
func (s *Store) GetTemplate(ctx context.Context, id string) (*scrapbook.Template, error) {
	var t scrapbook.Template
	var pages []byte
	err := s.db.QueryRow(ctx, "SELECT "+templateColumns+", pages FROM templates WHERE id = ?", id).Scan(
		&t.ID, &t.Name, &t.Description, &t.Category, &t.ThumbnailURL, &t.PageWidth, &t.PageHeight,
		&t.PageSizeName, &t.UseCount, &t.CreatedBy, &t.CreatedAt, &pages)
	if err != nil {
		return nil, fmt.Errorf("template %s: %w", id, err)
	}
	if err := decodeColumn("pages", pages, &t.Pages); err != nil {
		return nil, err
	}
	t.CreatedAt = t.CreatedAt.UTC()
	return &t, nil
}

// ListTemplates returns template summaries without page trees, most used
// first. An empty category lists all.
func (s *Store) ListTemplates(ctx context.Context, category string) ([]scrapbook.Template, error) {
	query := "SELECT " + templateColumns + " FROM templates"
	var args []any
	if category != "" {
		query += " WHERE category = ?"
		args = append(args, category)
	}
	query += " ORDER BY use_count DESC, name ASC"

	r, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	defer r.Close()
	out := []scrapbook.Template{}
	for r.Next() {
		var t scrapbook.Template
		if err := r.Scan(&t.ID, &t.Name, &t.Description, &t.Category, &t.ThumbnailURL, &t.PageWidth,
			&t.PageHeight, &t.PageSizeName, &t.UseCount, &t.CreatedBy, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan template: %w", err)
		}
		t.CreatedAt = t.CreatedAt.UTC()
		out = append(out, t)
	}
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	return out, nil
}

func incrementTemplateUse(ctx context.Context, q querier, id string) error {
	n, err := q.Exec(ctx, "UPDATE templates SET use_count = use_count + 1 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to count template use: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("template %s: %w", id, scrapbook.ErrNotFound)
	}
	return nil
}
