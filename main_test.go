package main

import (
	"bytes"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scrapbookAPI/internal/catalog"
)

func TestCatalogCommand(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"catalog", "filters", "--search", "black and white"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "noir")
	assert.Contains(t, out.String(), "1 item(s)")
}

func TestCatalogCommandUnknownKind(t *testing.T) {
	cmd := newRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"catalog", "stickers"})
	assert.Error(t, cmd.Execute())
}

func TestRenderCatalogMarksPremiumAndWrapsTags(t *testing.T) {
	items := []catalog.Item{
		{ID: "noir", Name: "Noir", Category: "classic", Premium: true, Tags: []string{"black and white", "contrast", "film", "grain", "moody"}},
		{ID: "plain", Name: "Plain", Category: "basic"},
	}
	got := renderCatalog(items)

	lines := strings.Split(got, "\n")
	var noir, plain string
	for _, l := range lines {
		switch {
		case strings.Contains(l, "noir"):
			noir = l
		case strings.Contains(l, "plain"):
			plain = l
		}
	}
	require.NotEmpty(t, noir)
	require.NotEmpty(t, plain)
	assert.Contains(t, noir, "yes")
	assert.NotContains(t, plain, "yes")
	for _, l := range lines {
		assert.LessOrEqual(t, utf8.RuneCountInString(l), 120, "tags column wraps")
	}
	assert.Empty(t, renderCatalog(nil))
}
