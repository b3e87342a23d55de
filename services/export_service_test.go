package services_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scrapbookAPI/internal/export"
	"scrapbookAPI/internal/scrapbook"
	"scrapbookAPI/services"
)

func TestExportDispatchesByFormat(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	sb := f.create(t, "Album", false)
	_, err := f.scrapbooks.UpsertElements(ctx, f.owner, sb.Pages[0].ID, []json.RawMessage{
		raw(`{"element_type":"photo","z_index":5,"properties":{"src":"https://cdn.example.com/top.jpg"}}`),
		raw(`{"element_type":"photo","z_index":1,"properties":{"src":"https://cdn.example.com/bottom.jpg"}}`),
		raw(`{"element_type":"text","visible":false,"properties":{"content":"hidden"}}`),
	})
	require.NoError(t, err)

	out, err := f.exports.Export(ctx, f.owner, sb.ID, "PDF", services.ExportOptions{PDF: export.PDFOptions{Quality: "medium"}})
	require.NoError(t, err)
	pdf := out.(*export.PDFConfig)
	assert.Equal(t, 150, pdf.DPI)
	require.Len(t, pdf.Pages, 1)
	require.Len(t, pdf.Pages[0].Elements, 2, "invisible elements are not exported")
	assert.Equal(t, 1, pdf.Pages[0].Elements[0].ZIndex)

	out, err = f.exports.Export(ctx, f.owner, sb.ID, "share", services.ExportOptions{})
	require.NoError(t, err)
	share := out.(*export.ShareConfig)
	assert.Equal(t, "https://scrapbook.example.com/view/"+sb.ID, share.ShareURL)
	assert.Equal(t, "https://cdn.example.com/bottom.jpg", share.Thumbnail)
	assert.True(t, strings.HasPrefix(share.QRCode, "data:image/png;base64,"))

	_, err = f.exports.Export(ctx, f.owner, sb.ID, "png", services.ExportOptions{PNG: export.PNGOptions{Pages: []int{3}}})
	assert.ErrorIs(t, err, scrapbook.ErrValidation)

	_, err = f.exports.Export(ctx, f.owner, sb.ID, "gif", services.ExportOptions{})
	var ve *scrapbook.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "format", ve.Field)

	_, err = f.exports.Export(ctx, f.stranger, sb.ID, "pdf", services.ExportOptions{})
	assert.ErrorIs(t, err, scrapbook.ErrNotFound)
}

func TestSaveAsTemplate(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	sb := f.create(t, "Wedding", false)
	_, err := f.scrapbooks.UpsertElements(ctx, f.owner, sb.Pages[0].ID, []json.RawMessage{
		raw(`{"element_type":"frame","properties":{"src":"https://cdn.example.com/frame.png"}}`),
	})
	require.NoError(t, err)

	tmpl, err := f.templates.SaveAsTemplate(ctx, f.owner, sb.ID, services.SaveTemplateRequest{Category: "Wedding"})
	require.NoError(t, err)
	assert.Equal(t, "Wedding", tmpl.Name)
	assert.Equal(t, "wedding", tmpl.Category)

	got, err := f.templates.Get(ctx, tmpl.ID)
	require.NoError(t, err)
	require.Len(t, got.Pages, 1)
	assert.NotEqual(t, sb.Pages[0].ID, got.Pages[0].ID)
	require.Len(t, got.Pages[0].Elements, 1)

	list, err := f.templates.List(ctx, "wedding")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Empty(t, list[0].Pages, "listing omits page trees")

	_, err = f.templates.SaveAsTemplate(ctx, f.stranger, sb.ID, services.SaveTemplateRequest{})
	assert.ErrorIs(t, err, scrapbook.ErrNotFound)
}
