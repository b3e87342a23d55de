package catalog

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"scrapbookAPI/internal/scrapbook"
)

func TestLoadHasEveryKind(t *testing.T) {
	c, err := Load(nil)
	require.NoError(t, err)
	for _, kind := range Kinds {
		assert.NotEmpty(t, c.Items(kind), kind)
		for _, it := range c.Items(kind) {
			assert.NotEmpty(t, it.ID)
			assert.NotEmpty(t, it.Name)
			assert.NotNil(t, it.Tags)
		}
	}
}

func TestLookupFilters(t *testing.T) {
	c, err := Load(nil)
	require.NoError(t, err)
	ctx := context.Background()

	all, err := c.Lookup(ctx, "fonts", Query{})
	require.NoError(t, err)
	assert.Equal(t, len(c.Items("fonts")), all.Total)
	assert.Contains(t, all.Categories, "handwriting")

	hand, err := c.Lookup(ctx, "fonts", Query{Category: "Handwriting"})
	require.NoError(t, err)
	assert.Equal(t, 2, hand.Total)
	assert.Len(t, hand.Categories, len(all.Categories), "categories describe the whole table")

	search, err := c.Lookup(ctx, "filters", Query{Search: "VINTAGE"})
	require.NoError(t, err)
	assert.Zero(t, search.Total, "search covers name, id and tags, not category")
	search, err = c.Lookup(ctx, "filters", Query{Search: "black and white"})
	require.NoError(t, err)
	require.Equal(t, 1, search.Total)
	assert.Equal(t, "noir", search.Items[0].ID)

	one, err := c.Lookup(ctx, "text-effects", Query{ID: "neon"})
	require.NoError(t, err)
	require.Len(t, one.Items, 1)

	_, err = c.Lookup(ctx, "frames", Query{ID: "missing"})
	assert.ErrorIs(t, err, scrapbook.ErrNotFound)
	_, err = c.Lookup(ctx, "stickers-3d", Query{})
	assert.ErrorIs(t, err, scrapbook.ErrNotFound)
}

func TestShapesRenderFill(t *testing.T) {
	c, err := Load(nil)
	require.NoError(t, err)
	ctx := context.Background()

	res, err := c.Lookup(ctx, "shapes", Query{ID: "circle", Fill: "#ff0000"})
	require.NoError(t, err)
	svg := res.Items[0].Data["svg"].(string)
	assert.Contains(t, svg, `fill="#ff0000"`)
	assert.NotContains(t, svg, "{{")

	// The static table keeps its template.
	assert.Contains(t, c.Items("shapes")[1].Data["svg"], "{{.Fill}}")

	res, err = c.Lookup(ctx, "shapes", Query{ID: "circle"})
	require.NoError(t, err)
	assert.Contains(t, res.Items[0].Data["svg"], `fill="#cccccc"`)

	_, err = c.Lookup(ctx, "shapes", Query{Fill: `red"/><script>`})
	assert.ErrorIs(t, err, scrapbook.ErrValidation)
}

func TestGoogleFonts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/webfonts", r.URL.Path)
		assert.Equal(t, "popularity", r.URL.Query().Get("sort"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"kind":"webfonts#webfontList","items":[
			{"family":"Open Sans","category":"sans-serif","variants":["regular","700"],"subsets":["latin"],
			 "files":{"regular":"https://fonts.gstatic.com/s/opensans.ttf"},"version":"v40"},
			{"family":"Lobster","category":"display","variants":["regular"],"subsets":["latin","cyrillic"]}
		]}`))
	}))
	defer srv.Close()

	fonts, err := NewGoogleFonts(context.Background(), "test-key",
		option.WithEndpoint(srv.URL+"/"), option.WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	c, err := Load(fonts)
	require.NoError(t, err)

	res, err := c.Lookup(context.Background(), "fonts", Query{Category: "display"})
	require.NoError(t, err)
	require.Equal(t, 1, res.Total)
	assert.Equal(t, "lobster", res.Items[0].ID)
	assert.Equal(t, []string{"display", "sans-serif"}, res.Categories)

	res, err = c.Lookup(context.Background(), "fonts", Query{ID: "open-sans"})
	require.NoError(t, err)
	assert.Equal(t, "Open Sans", res.Items[0].Data["family"])
}

func TestGoogleFontsUpstreamError(t *testing.T) {
	tests := []struct {
		status int
		want   int
	}{
		{http.StatusForbidden, http.StatusBadGateway},
		{http.StatusTooManyRequests, http.StatusTooManyRequests},
		{http.StatusInternalServerError, http.StatusBadGateway},
	}
	for _, tt := range tests {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(tt.status)
			fmt.Fprintf(w, `{"error":{"code":%d,"message":"nope"}}`, tt.status)
		}))
		fonts, err := NewGoogleFonts(context.Background(), "k",
			option.WithEndpoint(srv.URL+"/"), option.WithHTTPClient(srv.Client()))
		require.NoError(t, err)

		_, err = fonts.Fonts(context.Background())
		var up *scrapbook.UpstreamError
		require.ErrorAs(t, err, &up)
		assert.Equal(t, tt.status, up.Status)
		assert.Equal(t, tt.want, up.HTTPStatus())
		srv.Close()
	}
}
