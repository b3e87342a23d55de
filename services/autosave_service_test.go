package services_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scrapbookAPI/internal/scrapbook"
	"scrapbookAPI/internal/testutil"
	"scrapbookAPI/services"
)

func strPtr(s string) *string { return &s }

func rawPtr(s string) *json.RawMessage {
	r := json.RawMessage(s)
	return &r
}

func TestAutosaveTitleOnlyLeavesPagesAlone(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	sb := f.create(t, "Before", false)
	_, err := f.scrapbooks.UpsertElements(ctx, f.owner, sb.Pages[0].ID, []json.RawMessage{
		raw(`{"element_type":"text","properties":{"content":"keep me"}}`),
	})
	require.NoError(t, err)
	before, err := f.store.GetScrapbookGraph(ctx, sb.ID)
	require.NoError(t, err)

	res, err := f.autosave.Autosave(ctx, f.owner, sb.ID, services.AutosaveRequest{
		Metadata: &scrapbook.MetadataInput{Title: strPtr("After")},
	})
	require.NoError(t, err)
	assert.Empty(t, res.Failures)
	assert.Zero(t, res.PagesSaved)

	after, err := f.store.GetScrapbookGraph(ctx, sb.ID)
	require.NoError(t, err)
	assert.Equal(t, "After", after.Title)
	assert.Equal(t, before.Pages, after.Pages)
	assert.True(t, after.UpdatedAt.After(before.UpdatedAt) || after.UpdatedAt.Equal(before.UpdatedAt))
}

func TestAutosaveMergesPagesAndElements(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	sb := f.create(t, "Merge", false)
	pageID := sb.Pages[0].ID

	_, err := f.scrapbooks.UpsertElements(ctx, f.owner, pageID, []json.RawMessage{
		raw(`{"id":"photo-1","element_type":"photo","z_index":3,"properties":{"src":"https://cdn.example.com/a.jpg"}}`),
	})
	require.NoError(t, err)

	res, err := f.autosave.Autosave(ctx, f.owner, sb.ID, services.AutosaveRequest{
		Pages: []scrapbook.PageInput{
			{
				ID:         &pageID,
				Background: rawPtr(`{"type":"color","color":"#000000"}`),
				Elements: []json.RawMessage{
					raw(`{"id":"photo-1","position":{"x":1,"y":2}}`),
					raw(`{"id":"new-text","element_type":"text","properties":{"content":"caption"}}`),
				},
			},
			{
				ID:   strPtr("page-new"),
				Name: strPtr("Added"),
				Elements: []json.RawMessage{
					raw(`{"id":"sticker-1","element_type":"sticker","properties":{"src":"https://cdn.example.com/s.png"}}`),
				},
			},
		},
	})
	require.NoError(t, err)
	assert.Empty(t, res.Failures)
	assert.Equal(t, 2, res.PagesSaved)
	assert.Equal(t, 3, res.ElementsSaved)

	got, err := f.store.GetScrapbookGraph(ctx, sb.ID)
	require.NoError(t, err)
	require.Len(t, got.Pages, 2)
	assert.Equal(t, "#000000", got.Pages[0].Background.Color)
	assert.Equal(t, "page-new", got.Pages[1].ID)
	assert.Equal(t, 1, got.Pages[1].Order)
	assert.Equal(t, 1200.0, got.Pages[1].Width)

	photo, err := got.Pages[0].Element("photo-1")
	require.NoError(t, err)
	assert.Equal(t, scrapbook.Position{X: 1, Y: 2}, photo.Position)
	assert.Equal(t, 3, photo.ZIndex, "z-index was not sent and is kept")
	assert.Equal(t, "https://cdn.example.com/a.jpg", photo.Properties.(*scrapbook.PhotoProperties).Src)

	caption, err := got.Pages[0].Element("new-text")
	require.NoError(t, err)
	assert.Equal(t, 1, caption.DisplayOrder, "new elements are appended")
}

func TestAutosaveReportsFailedRows(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	sb := f.create(t, "Mine", false)
	other := f.create(t, "Other", false)
	otherPage := other.Pages[0].ID
	pageID := sb.Pages[0].ID

	res, err := f.autosave.Autosave(ctx, f.owner, sb.ID, services.AutosaveRequest{
		Pages: []scrapbook.PageInput{
			{ID: &otherPage, Name: strPtr("hijack"), Elements: []json.RawMessage{raw(`{"id":"x","element_type":"text"}`)}},
			{ID: &pageID, Width: func() *float64 { v := -1.0; return &v }(), Elements: []json.RawMessage{
				raw(`{"element_type":"shape","properties":{"shape_type":"blob"}}`),
				raw(`{"id":"ok","element_type":"text","properties":{"content":"still saved"}}`),
			}},
		},
	})
	require.NoError(t, err)

	kinds := map[string]int{}
	for _, fl := range res.Failures {
		kinds[fl.Kind]++
	}
	assert.Equal(t, 2, kinds["page"], "foreign page and invalid width")
	assert.Equal(t, 2, kinds["element"], "element under the foreign page and the bad shape")
	assert.Equal(t, otherPage, res.Failures[0].ID)
	assert.Equal(t, 1, res.ElementsSaved)

	untouched, err := f.store.GetPage(ctx, otherPage)
	require.NoError(t, err)
	assert.Equal(t, "Page 1", untouched.Name)

	_, err = f.store.GetElement(ctx, "ok")
	assert.NoError(t, err, "independent rows are written")
}

func TestAutosavePermissions(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	sb := f.create(t, "Shared", false)
	viewer := testutil.UserID("viewer")
	editor := testutil.UserID("editor")
	f.invite(t, sb.ID, viewer, scrapbook.RoleViewer)
	f.invite(t, sb.ID, editor, scrapbook.RoleEditor)

	req := services.AutosaveRequest{Metadata: &scrapbook.MetadataInput{Title: strPtr("x")}}
	_, err := f.autosave.Autosave(ctx, viewer, sb.ID, req)
	assert.ErrorIs(t, err, scrapbook.ErrForbidden)
	_, err = f.autosave.Autosave(ctx, "", sb.ID, req)
	assert.ErrorIs(t, err, scrapbook.ErrUnauthorized)
	_, err = f.autosave.Autosave(ctx, f.stranger, sb.ID, req)
	assert.ErrorIs(t, err, scrapbook.ErrNotFound)

	public := true
	res, err := f.autosave.Autosave(ctx, editor, sb.ID, services.AutosaveRequest{
		Metadata: &scrapbook.MetadataInput{IsPublic: &public},
	})
	require.NoError(t, err)
	require.Len(t, res.Failures, 1)
	assert.Equal(t, "metadata", res.Failures[0].Kind)
}

func TestAutosaveNormalizesPageOrder(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	sb := f.create(t, "Order", false)
	first := sb.Pages[0].ID
	order := 10

	_, err := f.autosave.Autosave(ctx, f.owner, sb.ID, services.AutosaveRequest{
		Pages: []scrapbook.PageInput{{ID: &first, Order: &order}, {ID: strPtr("second")}},
	})
	require.NoError(t, err)

	pages, err := f.store.LoadPages(ctx, sb.ID)
	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Equal(t, "second", pages[0].ID)
	assert.Equal(t, 0, pages[0].Order)
	assert.Equal(t, first, pages[1].ID)
	assert.Equal(t, 1, pages[1].Order)
}

func TestAutosaveMovesSinglePage(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	sb := f.create(t, "Move", false)
	a := sb.Pages[0].ID
	for _, id := range []string{"page-b", "page-c"} {
		_, err := f.scrapbooks.AddPage(ctx, f.owner, sb.ID, scrapbook.PageInput{ID: strPtr(id)})
		require.NoError(t, err)
	}

	tests := []struct {
		name  string
		id    string
		order int
		want  []string
	}{
		{"to the front", "page-c", 0, []string{"page-c", a, "page-b"}},
		{"to the back", "page-c", 2, []string{a, "page-b", "page-c"}},
		{"down one", a, 1, []string{"page-b", a, "page-c"}},
		{"past the end", "page-b", 9, []string{a, "page-c", "page-b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := tt.order
			_, err := f.autosave.Autosave(ctx, f.owner, sb.ID, services.AutosaveRequest{
				Pages: []scrapbook.PageInput{{ID: strPtr(tt.id), Order: &order}},
			})
			require.NoError(t, err)

			ids, err := f.store.PageIDs(ctx, sb.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids)

			pages, err := f.store.LoadPages(ctx, sb.ID)
			require.NoError(t, err)
			for i, p := range pages {
				assert.Equal(t, i, p.Order)
			}
		})
	}
}
