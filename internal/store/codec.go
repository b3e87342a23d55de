package store

import (
	"encoding/json"
	"fmt"

	"scrapbookAPI/internal/scrapbook"
)

const (
	scrapbookColumns = "id, user_id, title, description, cover_image, page_width, page_height, page_size_name, " +
		"is_public, tags, view_count, like_count, template_id, created_at, updated_at"
	pageColumns    = "id, scrapbook_id, name, page_order, background, width, height, created_at, updated_at"
	elementColumns = "id, page_id, element_type, name, pos_x, pos_y, width, height, transform, opacity, " +
		"z_index, display_order, locked, visible, shadow, border, properties, created_at, updated_at"
)

// JSON columns are bound as strings: pgx passes a string through to jsonb
// verbatim, and SQLite keeps it as TEXT so json_each can read it.
func jsonText(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeColumn(name string, raw []byte, dst any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode %s column: %w", name, err)
	}
	return nil
}

func scanScrapbook(r row) (*scrapbook.Scrapbook, error) {
	var sb scrapbook.Scrapbook
	var tags []byte
	err := r.Scan(&sb.ID, &sb.UserID, &sb.Title, &sb.Description, &sb.CoverImage,
		&sb.PageWidth, &sb.PageHeight, &sb.PageSizeName, &sb.IsPublic, &tags,
		&sb.ViewCount, &sb.LikeCount, &sb.TemplateID, &sb.CreatedAt, &sb.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := decodeColumn("tags", tags, &sb.Tags); err != nil {
		return nil, err
	}
	if sb.Tags == nil {
		sb.Tags = []string{}
	}
	sb.CreatedAt = sb.CreatedAt.UTC()
	sb.UpdatedAt = sb.UpdatedAt.UTC()
	return &sb, nil
}

func scanPage(r row) (*scrapbook.Page, error) {
	var p scrapbook.Page
	var bg []byte
	err := r.Scan(&p.ID, &p.ScrapbookID, &p.Name, &p.Order, &bg, &p.Width, &p.Height, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.Background = scrapbook.DefaultBackground()
	if err := decodeColumn("background", bg, &p.Background); err != nil {
		return nil, err
	}
	p.Elements = []scrapbook.Element{}
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	return &p, nil
}

func scanElement(r row) (*scrapbook.Element, error) {
	var e scrapbook.Element
	var transform, shadow, border, props []byte
	err := r.Scan(&e.ID, &e.PageID, &e.Type, &e.Name, &e.Position.X, &e.Position.Y,
		&e.Size.Width, &e.Size.Height, &transform, &e.Opacity, &e.ZIndex, &e.DisplayOrder,
		&e.Locked, &e.Visible, &shadow, &border, &props, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	e.Transform = scrapbook.DefaultTransform()
	e.Shadow = scrapbook.DefaultShadow()
	e.Border = scrapbook.DefaultBorder()
	if err := decodeColumn("transform", transform, &e.Transform); err != nil {
		return nil, err
	}
	if err := decodeColumn("shadow", shadow, &e.Shadow); err != nil {
		return nil, err
	}
	if err := decodeColumn("border", border, &e.Border); err != nil {
		return nil, err
	}
	e.Properties, err = scrapbook.DecodeProperties(e.Type, props)
	if err != nil {
		return nil, fmt.Errorf("decode properties of element %s: %w", e.ID, err)
	}
	e.CreatedAt = e.CreatedAt.UTC()
	e.UpdatedAt = e.UpdatedAt.UTC()
	return &e, nil
}

func pageArgs(p *scrapbook.Page) ([]any, error) {
	bg, err := jsonText(p.Background)
	if err != nil {
		return nil, fmt.Errorf("encode background: %w", err)
	}
	return []any{p.ID, p.ScrapbookID, p.Name, p.Order, bg, p.Width, p.Height, p.CreatedAt, p.UpdatedAt}, nil
}

func elementArgs(e *scrapbook.Element) ([]any, error) {
	transform, err := jsonText(e.Transform)
	if err != nil {
		return nil, fmt.Errorf("encode transform: %w", err)
	}
	shadow, err := jsonText(e.Shadow)
	if err != nil {
		return nil, fmt.Errorf("encode shadow: %w", err)
	}
	border, err := jsonText(e.Border)
	if err != nil {
		return nil, fmt.Errorf("encode border: %w", err)
	}
	props, err := jsonText(e.Properties)
	if err != nil {
		return nil, fmt.Errorf("encode properties: %w", err)
	}
	return []any{e.ID, e.PageID, string(e.Type), e.Name, e.Position.X, e.Position.Y,
		e.Size.Width, e.Size.Height, transform, e.Opacity, e.ZIndex, e.DisplayOrder,
		e.Locked, e.Visible, shadow, border, props, e.CreatedAt, e.UpdatedAt}, nil
}

func placeholders(n int) string {
	b := make([]byte, 0, n*3)
	for i := 0; i < n; i++ {
		if i > 0 {
			b = append(b, ", "...)
		}
		b = append(b, '?')
	}
	return string(b)
}
