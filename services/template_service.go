package services

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"scrapbookAPI/internal/export"
	"scrapbookAPI/internal/scrapbook"
	"scrapbookAPI/internal/store"
)

type TemplateService struct {
	store *store.Store
}

func NewTemplateService(st *store.Store) *TemplateService {
	return &TemplateService{
		store: st,
	}
}

func (s *TemplateService) List(ctx context.Context, category string) ([]scrapbook.Template, error) {
	return s.store.ListTemplates(ctx, strings.TrimSpace(category))
}

func (s *TemplateService) Get(ctx context.Context, id string) (*scrapbook.Template, error) {
	return s.store.GetTemplate(ctx, id)
}

type SaveTemplateRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// SaveAsTemplate snapshots the caller's scrapbook into a new template. The
// page tree is copied with fresh ids so later edits do not leak into it.
func (s *TemplateService) SaveAsTemplate(ctx context.Context, callerID, scrapbookID string, req SaveTemplateRequest) (*scrapbook.Template, error) {
	sb, _, err := authorize(ctx, s.store, callerID, scrapbookID, needOwner)
	if err != nil {
		return nil, err
	}
	pages, err := s.store.LoadPages(ctx, scrapbookID)
	if err != nil {
		return nil, err
	}
	sb.Pages = pages

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = sb.Title
	}
	category := strings.ToLower(strings.TrimSpace(req.Category))
	if category == "" {
		category = "custom"
	}
	description := req.Description
	if description == "" {
		description = sb.Description
	}

	t := &scrapbook.Template{
		ID:           uuid.New().String(),
		Name:         name,
		Description:  description,
		Category:     category,
		ThumbnailURL: export.Thumbnail(sb),
		PageWidth:    sb.PageWidth,
		PageHeight:   sb.PageHeight,
		PageSizeName: sb.PageSizeName,
		Pages:        scrapbook.CopyPages(sb.Pages, ""),
		CreatedBy:    callerID,
	}
	if err := s.store.CreateTemplate(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}
