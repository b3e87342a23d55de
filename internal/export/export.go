// Package export turns a loaded scrapbook graph into the configuration
// objects a downstream renderer consumes. Nothing here draws pixels.
package export

import (
	"strings"

	"scrapbookAPI/internal/scrapbook"
)

type Format string

const (
	FormatPDF   Format = "pdf"
	FormatPNG   Format = "png"
	FormatPrint Format = "print"
	FormatShare Format = "share"
)

// ParseFormat accepts pdf, png, print or share in any case.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatPDF, FormatPNG, FormatPrint, FormatShare:
		return f, nil
	}
	return "", &scrapbook.ValidationError{Field: "format", Message: "must be one of pdf, png, print, share"}
}

// PageData is one page as handed to the renderer: visible elements only,
// in paint order.
type PageData struct {
	ID         string               `json:"id"`
	Name       string               `json:"name"`
	Width      float64              `json:"width"`
	Height     float64              `json:"height"`
	Background scrapbook.Background `json:"background"`
	Elements   []scrapbook.Element  `json:"elements"`
}

type Dimensions struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Unit   string  `json:"unit"`
}

func renderPage(p scrapbook.Page) PageData {
	els := make([]scrapbook.Element, 0, len(p.Elements))
	for _, e := range p.PaintOrder() {
		if e.Visible {
			els = append(els, e)
		}
	}
	return PageData{
		ID:         p.ID,
		Name:       p.Name,
		Width:      p.Width,
		Height:     p.Height,
		Background: p.Background,
		Elements:   els,
	}
}

func renderPages(sb *scrapbook.Scrapbook) []PageData {
	out := make([]PageData, 0, len(sb.Pages))
	for _, p := range sb.Pages {
		out = append(out, renderPage(p))
	}
	return out
}
