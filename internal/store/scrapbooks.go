package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"scrapbookAPI/internal/scrapbook"
)

type ListFilter string

const (
	FilterAll       ListFilter = "all"
	FilterFavorites ListFilter = "favorites"
	FilterShared    ListFilter = "shared"
	FilterPublic    ListFilter = "public"
)

// FavoriteTag marks a scrapbook as a favorite of its owner.
const FavoriteTag = "favorite"

var sortColumns = map[string]string{
	"created_at": "created_at",
	"updated_at": "updated_at",
	"title":      "title",
	"view_count": "view_count",
	"like_count": "like_count",
}

// ListQuery selects a page of scrapbooks. Filter all and favorites are scoped
// to UserID's own scrapbooks, shared to those UserID collaborates on.
type ListQuery struct {
	UserID string
	Filter ListFilter
	Search string
	Sort   string
	Order  string
	Offset int
	Limit  int
}

// Normalize fills defaults and rejects values outside the whitelists.
func (q *ListQuery) Normalize() error {
	if q.Filter == "" {
		q.Filter = FilterAll
	}
	switch q.Filter {
	case FilterAll, FilterFavorites, FilterShared, FilterPublic:
	default:
		return &scrapbook.ValidationError{Field: "filter", Message: fmt.Sprintf("unknown filter %q", q.Filter)}
	}
	if q.Sort == "" {
		q.Sort = "updated_at"
	}
	if _, ok := sortColumns[q.Sort]; !ok {
		return &scrapbook.ValidationError{Field: "sort", Message: fmt.Sprintf("cannot sort by %q", q.Sort)}
	}
	q.Order = strings.ToLower(q.Order)
	switch q.Order {
	case "":
		q.Order = "desc"
	case "asc", "desc":
	default:
		return &scrapbook.ValidationError{Field: "order", Message: "must be asc or desc"}
	}
	if q.Limit <= 0 {
		q.Limit = 20
	}
	if q.Limit > 100 {
		q.Limit = 100
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	return nil
}

type ListResult struct {
	Items []scrapbook.Scrapbook `json:"items"`
	Total int                   `json:"total"`
}

// escapeLike escapes LIKE wildcards so the search term matches literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func (s *Store) ListScrapbooks(ctx context.Context, q ListQuery) (*ListResult, error) {
	if err := q.Normalize(); err != nil {
		return nil, err
	}

	var where []string
	var args []any
	switch q.Filter {
	case FilterAll:
		where = append(where, "s.user_id = ?")
		args = append(args, q.UserID)
	case FilterFavorites:
		where = append(where, "s.user_id = ?", s.d.tagContains)
		args = append(args, q.UserID, FavoriteTag)
	case FilterShared:
		where = append(where, "s.id IN (SELECT c.scrapbook_id FROM scrapbook_collaborators c WHERE c.user_id = ?)")
		args = append(args, q.UserID)
	case FilterPublic:
		where = append(where, "s.is_public = ?")
		args = append(args, true)
	}
	if term := strings.TrimSpace(q.Search); term != "" {
		pattern := "%" + escapeLike(strings.ToLower(term)) + "%"
		where = append(where, fmt.Sprintf(`(%[1]s(s.title) LIKE ? ESCAPE '\' OR %[1]s(s.description) LIKE ? ESCAPE '\')`, s.d.lower))
		args = append(args, pattern, pattern)
	}
	clause := strings.Join(where, " AND ")

	var total int64
	if err := s.db.QueryRow(ctx, "SELECT COUNT(*) FROM scrapbooks s WHERE "+clause, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count scrapbooks: %w", err)
	}

	query := fmt.Sprintf("SELECT %s FROM scrapbooks s WHERE %s ORDER BY s.%s %s, s.id ASC LIMIT ? OFFSET ?",
		scrapbookColumns, clause, sortColumns[q.Sort], strings.ToUpper(q.Order))
	r, err := s.db.Query(ctx, query, append(args, q.Limit, q.Offset)...)
	if err != nil {
		return nil, fmt.Errorf("failed to list scrapbooks: %w", err)
	}
	defer r.Close()

	result := &ListResult{Items: []scrapbook.Scrapbook{}, Total: int(total)}
	for r.Next() {
		sb, err := scanScrapbook(r)
		if err != nil {
			return nil, fmt.Errorf("failed to scan scrapbook: %w", err)
		}
		result.Items = append(result.Items, *sb)
	}
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("failed to list scrapbooks: %w", err)
	}
	return result, nil
}

// CreateScrapbook inserts the scrapbook row and its whole page tree atomically.
func (s *Store) CreateScrapbook(ctx context.Context, sb *scrapbook.Scrapbook) error {
	return s.createScrapbook(ctx, sb, "")
}

// CreateFromTemplate inserts sb and counts one use of templateID in the same
// transaction. An unknown template rolls the insert back with ErrNotFound.
func (s *Store) CreateFromTemplate(ctx context.Context, sb *scrapbook.Scrapbook, templateID string) error {
	return s.createScrapbook(ctx, sb, templateID)
}

func (s *Store) createScrapbook(ctx context.Context, sb *scrapbook.Scrapbook, templateID string) error {
	if err := sb.Validate(); err != nil {
		return err
	}
	ts := now()
	if sb.CreatedAt.IsZero() {
		sb.CreatedAt = ts
	}
	if sb.UpdatedAt.IsZero() {
		sb.UpdatedAt = ts
	}
	if sb.Tags == nil {
		sb.Tags = []string{}
	}
	tags, err := jsonText(sb.Tags)
	if err != nil {
		return fmt.Errorf("encode tags: %w", err)
	}

	return s.inTx(ctx, func(q querier) error {
		_, err := q.Exec(ctx, "INSERT INTO scrapbooks ("+scrapbookColumns+") VALUES ("+placeholders(15)+")",
			sb.ID, sb.UserID, sb.Title, sb.Description, sb.CoverImage, sb.PageWidth, sb.PageHeight,
			sb.PageSizeName, sb.IsPublic, tags, sb.ViewCount, sb.LikeCount, sb.TemplateID,
			sb.CreatedAt, sb.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert scrapbook: %w", err)
		}
		for i := range sb.Pages {
			p := &sb.Pages[i]
			p.ScrapbookID = sb.ID
			if err := insertPageTree(ctx, q, p, ts); err != nil {
				return err
			}
		}
		if templateID != "" {
			return incrementTemplateUse(ctx, q, templateID)
		}
		return nil
	})
}

func insertPageTree(ctx context.Context, q querier, p *scrapbook.Page, ts time.Time) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = ts
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = ts
	}
	args, err := pageArgs(p)
	if err != nil {
		return err
	}
	if _, err := q.Exec(ctx, "INSERT INTO pages ("+pageColumns+") VALUES ("+placeholders(9)+")", args...); err != nil {
		return fmt.Errorf("failed to insert page %s: %w", p.ID, err)
	}
	for j := range p.Elements {
		e := &p.Elements[j]
		e.PageID = p.ID
		if e.CreatedAt.IsZero() {
			e.CreatedAt = ts
		}
		if e.UpdatedAt.IsZero() {
			e.UpdatedAt = ts
		}
		args, err := elementArgs(e)
		if err != nil {
			return err
		}
		if _, err := q.Exec(ctx, "INSERT INTO elements ("+elementColumns+") VALUES ("+placeholders(19)+")", args...); err != nil {
			return fmt.Errorf("failed to insert element %s: %w", e.ID, err)
		}
	}
	return nil
}

// GetScrapbook loads the scrapbook row without its pages.
func (s *Store) GetScrapbook(ctx context.Context, id string) (*scrapbook.Scrapbook, error) {
	sb, err := scanScrapbook(s.db.QueryRow(ctx, "SELECT "+scrapbookColumns+" FROM scrapbooks WHERE id = ?", id))
	if err != nil {
		return nil, fmt.Errorf("scrapbook %s: %w", id, err)
	}
	return sb, nil
}

// GetScrapbookGraph loads the scrapbook with every page and element.
func (s *Store) GetScrapbookGraph(ctx context.Context, id string) (*scrapbook.Scrapbook, error) {
	sb, err := s.GetScrapbook(ctx, id)
	if err != nil {
		return nil, err
	}
	pages, err := s.LoadPages(ctx, id)
	if err != nil {
		return nil, err
	}
	sb.Pages = pages
	return sb, nil
}

// UpdateScrapbook applies the fields present in in and bumps updated_at.
// Counters are never written here.
func (s *Store) UpdateScrapbook(ctx context.Context, id string, in scrapbook.MetadataInput) (*scrapbook.Scrapbook, error) {
	var updated *scrapbook.Scrapbook
	err := s.inTx(ctx, func(q querier) error {
		sb, err := scanScrapbook(q.QueryRow(ctx, "SELECT "+scrapbookColumns+" FROM scrapbooks WHERE id = ?", id))
		if err != nil {
			return fmt.Errorf("scrapbook %s: %w", id, err)
		}
		if err := in.Apply(sb); err != nil {
			return err
		}
		sb.UpdatedAt = now()
		tags, err := jsonText(sb.Tags)
		if err != nil {
			return fmt.Errorf("encode tags: %w", err)
		}
		_, err = q.Exec(ctx, `UPDATE scrapbooks SET title = ?, description = ?, cover_image = ?,
			page_width = ?, page_height = ?, page_size_name = ?, is_public = ?, tags = ?, updated_at = ?
			WHERE id = ?`,
			sb.Title, sb.Description, sb.CoverImage, sb.PageWidth, sb.PageHeight, sb.PageSizeName,
			sb.IsPublic, tags, sb.UpdatedAt, id)
		if err != nil {
			return fmt.Errorf("failed to update scrapbook: %w", err)
		}
		updated = sb
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Touch bumps updated_at.
func (s *Store) Touch(ctx context.Context, id string) error {
	n, err := s.db.Exec(ctx, "UPDATE scrapbooks SET updated_at = ? WHERE id = ?", now(), id)
	if err != nil {
		return fmt.Errorf("failed to touch scrapbook: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("scrapbook %s: %w", id, scrapbook.ErrNotFound)
	}
	return nil
}

// DeleteScrapbook removes the scrapbook and everything hanging off it in one
// transaction.
func (s *Store) DeleteScrapbook(ctx context.Context, id string) error {
	return s.inTx(ctx, func(q querier) error {
		var found string
		if err := q.QueryRow(ctx, "SELECT id FROM scrapbooks WHERE id = ?", id).Scan(&found); err != nil {
			return fmt.Errorf("scrapbook %s: %w", id, err)
		}
		steps := []struct{ what, query string }{
			{"elements", "DELETE FROM elements WHERE page_id IN (SELECT id FROM pages WHERE scrapbook_id = ?)"},
			{"pages", "DELETE FROM pages WHERE scrapbook_id = ?"},
			{"likes", "DELETE FROM scrapbook_likes WHERE scrapbook_id = ?"},
			{"collaborators", "DELETE FROM scrapbook_collaborators WHERE scrapbook_id = ?"},
			{"scrapbook", "DELETE FROM scrapbooks WHERE id = ?"},
		}
		for _, step := range steps {
			if _, err := q.Exec(ctx, step.query, id); err != nil {
				return fmt.Errorf("failed to delete %s: %w", step.what, err)
			}
		}
		return nil
	})
}

// IncrementViews adds one view in a single statement.
func (s *Store) IncrementViews(ctx context.Context, id string) error {
	n, err := s.db.Exec(ctx, "UPDATE scrapbooks SET view_count = view_count + 1 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to increment views: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("scrapbook %s: %w", id, scrapbook.ErrNotFound)
	}
	return nil
}

// ToggleLike flips userID's like and returns the new state with the stored
// like count.
func (s *Store) ToggleLike(ctx context.Context, scrapbookID, userID string) (bool, int64, error) {
	var liked bool
	var count int64
	err := s.inTx(ctx, func(q querier) error {
		var found string
		if err := q.QueryRow(ctx, "SELECT id FROM scrapbooks WHERE id = ?", scrapbookID).Scan(&found); err != nil {
			return fmt.Errorf("scrapbook %s: %w", scrapbookID, err)
		}
		removed, err := q.Exec(ctx, "DELETE FROM scrapbook_likes WHERE scrapbook_id = ? AND user_id = ?", scrapbookID, userID)
		if err != nil {
			return fmt.Errorf("failed to remove like: %w", err)
		}
		if removed > 0 {
			liked = false
			_, err = q.Exec(ctx, `UPDATE scrapbooks SET like_count = CASE WHEN like_count > 0 THEN like_count - 1 ELSE 0 END
				WHERE id = ?`, scrapbookID)
		} else {
			liked = true
			var added int64
			added, err = q.Exec(ctx, `INSERT INTO scrapbook_likes (scrapbook_id, user_id, created_at) VALUES (?, ?, ?)
				ON CONFLICT (scrapbook_id, user_id) DO NOTHING`, scrapbookID, userID, now())
			if err == nil && added > 0 {
				_, err = q.Exec(ctx, "UPDATE scrapbooks SET like_count = like_count + 1 WHERE id = ?", scrapbookID)
			}
		}
		if err != nil {
			return fmt.Errorf("failed to toggle like: %w", err)
		}
		return q.QueryRow(ctx, "SELECT like_count FROM scrapbooks WHERE id = ?", scrapbookID).Scan(&count)
	})
	if err != nil {
		return false, 0, err
	}
	return liked, count, nil
}

// HasLiked reports whether userID currently likes the scrapbook.
func (s *Store) HasLiked(ctx context.Context, scrapbookID, userID string) (bool, error) {
	var n int64
	err := s.db.QueryRow(ctx, "SELECT COUNT(*) FROM scrapbook_likes WHERE scrapbook_id = ? AND user_id = ?",
		scrapbookID, userID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to read like: %w", err)
	}
	return n > 0, nil
}
