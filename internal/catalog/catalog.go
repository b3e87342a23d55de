// Package catalog serves the static design-asset tables (fonts, shapes,
// frames, filters, patterns, palettes, text effects, layouts).
package catalog

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"text/template"

	"github.com/pelletier/go-toml/v2"

	"scrapbookAPI/internal/scrapbook"
)

//go:embed catalog.toml
var catalogTOML string

// Kinds in display order. The TOML tables use underscores.
var Kinds = []string{"fonts", "shapes", "frames", "filters", "patterns", "palettes", "text-effects", "layouts"}

type Item struct {
	ID       string         `toml:"id" json:"id"`
	Name     string         `toml:"name" json:"name"`
	Category string         `toml:"category" json:"category"`
	Tags     []string       `toml:"tags" json:"tags"`
	Premium  bool           `toml:"premium" json:"premium"`
	Data     map[string]any `toml:"data" json:"data"`
}

type Query struct {
	ID       string
	Category string
	Search   string
	// Fill colors rendered shape SVGs; defaults to the shape default fill.
	Fill string
}

type Result struct {
	Kind       string   `json:"kind"`
	Items      []Item   `json:"items"`
	Categories []string `json:"categories"`
	Total      int      `json:"total"`
}

// FontSource supplies the font table from somewhere other than the static
// catalog.
type FontSource interface {
	Fonts(ctx context.Context) ([]Item, error)
}

type Catalog struct {
	tables map[string][]Item
	fonts  FontSource
}

// Load parses the embedded tables. fonts may be nil to serve the static font
// table.
func Load(fonts FontSource) (*Catalog, error) {
	var raw map[string][]Item
	if err := toml.Unmarshal([]byte(catalogTOML), &raw); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	tables := make(map[string][]Item, len(Kinds))
	for _, kind := range Kinds {
		items, ok := raw[strings.ReplaceAll(kind, "-", "_")]
		if !ok {
			return nil, fmt.Errorf("catalog has no %s table", kind)
		}
		for i := range items {
			if items[i].Tags == nil {
				items[i].Tags = []string{}
			}
			if items[i].Data == nil {
				items[i].Data = map[string]any{}
			}
		}
		tables[kind] = items
	}
	return &Catalog{tables: tables, fonts: fonts}, nil
}

// Lookup filters one table. An unknown kind or an ID that matches nothing is
// ErrNotFound.
func (c *Catalog) Lookup(ctx context.Context, kind string, q Query) (*Result, error) {
	items, ok := c.tables[kind]
	if !ok {
		return nil, fmt.Errorf("catalog %q: %w", kind, scrapbook.ErrNotFound)
	}
	if kind == "fonts" && c.fonts != nil {
		remote, err := c.fonts.Fonts(ctx)
		if err != nil {
			return nil, err
		}
		items = remote
	}

	search := strings.ToLower(strings.TrimSpace(q.Search))
	categories := map[string]bool{}
	out := []Item{}
	for _, it := range items {
		categories[it.Category] = true
		if q.ID != "" && it.ID != q.ID {
			continue
		}
		if q.Category != "" && !strings.EqualFold(it.Category, q.Category) {
			continue
		}
		if search != "" && !matches(it, search) {
			continue
		}
		out = append(out, it)
	}
	if q.ID != "" && len(out) == 0 {
		return nil, fmt.Errorf("%s item %q: %w", kind, q.ID, scrapbook.ErrNotFound)
	}

	if kind == "shapes" {
		rendered, err := renderShapes(out, q.Fill)
		if err != nil {
			return nil, err
		}
		out = rendered
	}

	cats := make([]string, 0, len(categories))
	for cat := range categories {
		cats = append(cats, cat)
	}
	sort.Strings(cats)
	return &Result{Kind: kind, Items: out, Categories: cats, Total: len(out)}, nil
}

// Items returns a whole static table.
func (c *Catalog) Items(kind string) []Item {
	return c.tables[kind]
}

func matches(it Item, search string) bool {
	if strings.Contains(strings.ToLower(it.Name), search) || strings.Contains(strings.ToLower(it.ID), search) {
		return true
	}
	for _, tag := range it.Tags {
		if strings.Contains(strings.ToLower(tag), search) {
			return true
		}
	}
	return false
}

const defaultShapeFill = "#cccccc"

var fillPattern = regexp.MustCompile(`^(#[0-9a-fA-F]{3,8}|[a-zA-Z]{3,20}|rgba?\([0-9., ]+\))$`)

func renderShapes(items []Item, fill string) ([]Item, error) {
	if fill == "" {
		fill = defaultShapeFill
	}
	if !fillPattern.MatchString(fill) {
		return nil, &scrapbook.ValidationError{Field: "fill", Message: "must be a CSS color"}
	}
	out := make([]Item, len(items))
	for i, it := range items {
		data := make(map[string]any, len(it.Data))
		for k, v := range it.Data {
			data[k] = v
		}
		if src, ok := data["svg"].(string); ok {
			svg, err := RenderSVG(src, fill)
			if err != nil {
				return nil, fmt.Errorf("render shape %s: %w", it.ID, err)
			}
			data["svg"] = svg
		}
		it.Data = data
		out[i] = it
	}
	return out, nil
}

// RenderSVG fills the shape template with the given color.
func RenderSVG(src, fill string) (string, error) {
	tmpl, err := template.New("shape").Parse(src)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, struct{ Fill string }{fill}); err != nil {
		return "", err
	}
	return buf.String(), nil
}
