package scrapbook

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// PageSize is a named canvas preset in pixels.
type PageSize struct {
	Name   string  `json:"name"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

const (
	DefaultPageSize = "12x12"
	CustomPageSize  = "custom"
)

var pageSizes = map[string]PageSize{
	"12x12":  {Name: "12x12", Width: 1200, Height: 1200},
	"8x8":    {Name: "8x8", Width: 800, Height: 800},
	"letter": {Name: "letter", Width: 816, Height: 1056},
	"a4":     {Name: "a4", Width: 794, Height: 1123},
	"4x6":    {Name: "4x6", Width: 576, Height: 384},
	"5x7":    {Name: "5x7", Width: 672, Height: 480},
	"8x10":   {Name: "8x10", Width: 768, Height: 960},
}

// LookupPageSize returns the preset for name.
func LookupPageSize(name string) (PageSize, bool) {
	ps, ok := pageSizes[strings.ToLower(strings.TrimSpace(name))]
	return ps, ok
}

// Scrapbook is the aggregate root. ViewCount and LikeCount are read-only here;
// they only change through the store's atomic counter operations.
type Scrapbook struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	CoverImage   *string   `json:"cover_image"`
	PageWidth    float64   `json:"page_width"`
	PageHeight   float64   `json:"page_height"`
	PageSizeName string    `json:"page_size_name"`
	IsPublic     bool      `json:"is_public"`
	Tags         []string  `json:"tags"`
	ViewCount    int64     `json:"view_count"`
	LikeCount    int64     `json:"like_count"`
	TemplateID   *string   `json:"template_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Pages        []Page    `json:"pages,omitempty"`
}

type NewScrapbook struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	PageSizeName string   `json:"page_size_name"`
	PageWidth    float64  `json:"page_width"`
	PageHeight   float64  `json:"page_height"`
	IsPublic     bool     `json:"is_public"`
	Tags         []string `json:"tags"`
	TemplateID   *string  `json:"template_id,omitempty"`
}

// New builds a scrapbook owned by ownerID. It is seeded with exactly one empty
// page at order 0; template instantiation replaces the pages afterwards.
func New(ownerID string, req NewScrapbook) (*Scrapbook, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, ErrUnauthorized
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = "Untitled Scrapbook"
	}
	width, height, sizeName, err := resolveCanvas(req.PageSizeName, req.PageWidth, req.PageHeight)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	sb := &Scrapbook{
		ID:           uuid.New().String(),
		UserID:       ownerID,
		Title:        title,
		Description:  req.Description,
		PageWidth:    width,
		PageHeight:   height,
		PageSizeName: sizeName,
		IsPublic:     req.IsPublic,
		Tags:         []string{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	for _, t := range req.Tags {
		sb.AddTag(t)
	}
	sb.AddPage(NewPage(sb.ID, 0, width, height))
	return sb, nil
}

func resolveCanvas(name string, width, height float64) (float64, float64, string, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" && width > 0 && height > 0 {
		name = CustomPageSize
	}
	if name == "" {
		name = DefaultPageSize
	}
	if name == CustomPageSize {
		if width <= 0 || height <= 0 {
			return 0, 0, "", invalid("page_width", "custom page size needs positive width and height")
		}
		return width, height, name, nil
	}
	ps, ok := LookupPageSize(name)
	if !ok {
		return 0, 0, "", invalid("page_size_name", "unknown page size %q", name)
	}
	return ps.Width, ps.Height, ps.Name, nil
}

func (s *Scrapbook) Validate() error {
	if strings.TrimSpace(s.Title) == "" {
		return invalid("title", "required")
	}
	if s.PageWidth <= 0 || s.PageHeight <= 0 {
		return invalid("page_width", "page width and height must be positive")
	}
	return nil
}

// Page returns the page with the given id.
func (s *Scrapbook) Page(id string) (*Page, error) {
	for i := range s.Pages {
		if s.Pages[i].ID == id {
			return &s.Pages[i], nil
		}
	}
	return nil, fmt.Errorf("page %s: %w", id, ErrNotFound)
}

// AddPage appends p as the last page.
func (s *Scrapbook) AddPage(p Page) {
	p.ScrapbookID = s.ID
	p.Order = len(s.Pages)
	if p.Width <= 0 || p.Height <= 0 {
		p.Width, p.Height = s.PageWidth, s.PageHeight
	}
	s.Pages = append(s.Pages, p)
}

// RemovePage deletes a page and renumbers the rest from 0. Removing the last
// remaining page is allowed.
func (s *Scrapbook) RemovePage(id string) error {
	for i := range s.Pages {
		if s.Pages[i].ID == id {
			s.Pages = append(s.Pages[:i], s.Pages[i+1:]...)
			s.renumber()
			return nil
		}
	}
	return fmt.Errorf("page %s: %w", id, ErrNotFound)
}

// MovePage moves a page to index and renumbers all pages from 0.
func (s *Scrapbook) MovePage(id string, index int) error {
	from := -1
	for i := range s.Pages {
		if s.Pages[i].ID == id {
			from = i
			break
		}
	}
	if from < 0 {
		return fmt.Errorf("page %s: %w", id, ErrNotFound)
	}
	if index < 0 || index >= len(s.Pages) {
		return invalid("index", "out of range")
	}
	p := s.Pages[from]
	rest := append(append([]Page{}, s.Pages[:from]...), s.Pages[from+1:]...)
	s.Pages = append(append(append([]Page{}, rest[:index]...), p), rest[index:]...)
	s.renumber()
	return nil
}

// ReorderPages puts the pages in the order given by ids, which must name every
// current page exactly once.
func (s *Scrapbook) ReorderPages(ids []string) error {
	if err := CheckPermutation(s.PageIDs(), ids); err != nil {
		return err
	}
	byID := make(map[string]Page, len(s.Pages))
	for _, p := range s.Pages {
		byID[p.ID] = p
	}
	pages := make([]Page, 0, len(ids))
	for _, id := range ids {
		pages = append(pages, byID[id])
	}
	s.Pages = pages
	s.renumber()
	return nil
}

// CheckPermutation reports whether ids names every id in current exactly once.
func CheckPermutation(current, ids []string) error {
	if len(ids) != len(current) {
		return invalid("page_ids", "expected %d pages, got %d", len(current), len(ids))
	}
	known := make(map[string]bool, len(current))
	for _, id := range current {
		known[id] = true
	}
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if !known[id] {
			return invalid("page_ids", "page %s does not belong to this scrapbook", id)
		}
		if seen[id] {
			return invalid("page_ids", "page %s listed twice", id)
		}
		seen[id] = true
	}
	return nil
}

func (s *Scrapbook) PageIDs() []string {
	ids := make([]string, len(s.Pages))
	for i, p := range s.Pages {
		ids[i] = p.ID
	}
	return ids
}

func (s *Scrapbook) renumber() {
	for i := range s.Pages {
		s.Pages[i].Order = i
	}
}

// NormalizeTag trims a tag; empty tags are rejected by callers.
func NormalizeTag(tag string) string {
	return strings.TrimSpace(tag)
}

// AddTag adds tag unless it is already present. It reports whether the set
// changed.
func (s *Scrapbook) AddTag(tag string) bool {
	tag = NormalizeTag(tag)
	if tag == "" || s.HasTag(tag) {
		return false
	}
	s.Tags = append(s.Tags, tag)
	return true
}

func (s *Scrapbook) RemoveTag(tag string) bool {
	tag = NormalizeTag(tag)
	for i, t := range s.Tags {
		if t == tag {
			s.Tags = append(s.Tags[:i], s.Tags[i+1:]...)
			return true
		}
	}
	return false
}

func (s *Scrapbook) HasTag(tag string) bool {
	for _, t := range s.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// ElementCount counts elements across all loaded pages.
func (s *Scrapbook) ElementCount() int {
	n := 0
	for _, p := range s.Pages {
		n += len(p.Elements)
	}
	return n
}

// DeepCopy clones the scrapbook with fresh identifiers at every level. The
// copy belongs to ownerID, is private and starts with zeroed counters.
func (s *Scrapbook) DeepCopy(ownerID string) *Scrapbook {
	now := time.Now().UTC()
	cp := *s
	cp.ID = uuid.New().String()
	cp.UserID = ownerID
	cp.IsPublic = false
	cp.ViewCount = 0
	cp.LikeCount = 0
	cp.CreatedAt = now
	cp.UpdatedAt = now
	cp.Tags = append([]string{}, s.Tags...)
	if s.CoverImage != nil {
		cover := *s.CoverImage
		cp.CoverImage = &cover
	}
	if s.TemplateID != nil {
		tid := *s.TemplateID
		cp.TemplateID = &tid
	}
	cp.Pages = CopyPages(s.Pages, cp.ID)
	return &cp
}

// CopyPages deep-copies pages for scrapbookID, assigning fresh page and element
// ids. Page order and element z-index/display order are preserved.
func CopyPages(pages []Page, scrapbookID string) []Page {
	now := time.Now().UTC()
	out := make([]Page, len(pages))
	for i, p := range pages {
		np := p.Clone()
		np.ID = uuid.New().String()
		np.ScrapbookID = scrapbookID
		np.CreatedAt = now
		np.UpdatedAt = now
		for j := range np.Elements {
			np.Elements[j].ID = uuid.New().String()
			np.Elements[j].PageID = np.ID
			np.Elements[j].CreatedAt = now
			np.Elements[j].UpdatedAt = now
		}
		out[i] = np
	}
	return out
}

// MetadataInput is a partial update of scrapbook metadata. Counters are not
// part of it.
type MetadataInput struct {
	Title        *string   `json:"title,omitempty"`
	Description  *string   `json:"description,omitempty"`
	CoverImage   *string   `json:"cover_image,omitempty"`
	PageWidth    *float64  `json:"page_width,omitempty"`
	PageHeight   *float64  `json:"page_height,omitempty"`
	PageSizeName *string   `json:"page_size_name,omitempty"`
	IsPublic     *bool     `json:"is_public,omitempty"`
	Tags         *[]string `json:"tags,omitempty"`
}

func (m MetadataInput) Empty() bool {
	return m.Title == nil && m.Description == nil && m.CoverImage == nil && m.PageWidth == nil &&
		m.PageHeight == nil && m.PageSizeName == nil && m.IsPublic == nil && m.Tags == nil
}

// Apply merges m onto s in place and validates the result.
func (m MetadataInput) Apply(s *Scrapbook) error {
	if m.Title != nil {
		s.Title = strings.TrimSpace(*m.Title)
	}
	if m.Description != nil {
		s.Description = *m.Description
	}
	if m.CoverImage != nil {
		if *m.CoverImage == "" {
			s.CoverImage = nil
		} else {
			cover := *m.CoverImage
			s.CoverImage = &cover
		}
	}
	if m.PageSizeName != nil || m.PageWidth != nil || m.PageHeight != nil {
		name := s.PageSizeName
		if m.PageSizeName != nil {
			name = *m.PageSizeName
		}
		width, height := s.PageWidth, s.PageHeight
		if m.PageWidth != nil {
			width = *m.PageWidth
			if m.PageSizeName == nil {
				name = CustomPageSize
			}
		}
		if m.PageHeight != nil {
			height = *m.PageHeight
			if m.PageSizeName == nil {
				name = CustomPageSize
			}
		}
		w, h, n, err := resolveCanvas(name, width, height)
		if err != nil {
			return err
		}
		s.PageWidth, s.PageHeight, s.PageSizeName = w, h, n
	}
	if m.IsPublic != nil {
		s.IsPublic = *m.IsPublic
	}
	if m.Tags != nil {
		s.Tags = []string{}
		for _, t := range *m.Tags {
			s.AddTag(t)
		}
	}
	return s.Validate()
}
