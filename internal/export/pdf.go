package export

import (
	"strings"

	"scrapbookAPI/internal/scrapbook"
)

type Quality string

const (
	QualityLow    Quality = "low"
	QualityMedium Quality = "medium"
	QualityHigh   Quality = "high"
)

var qualityDPI = map[Quality]int{
	QualityLow:    72,
	QualityMedium: 150,
	QualityHigh:   300,
}

// DefaultBleed is the bleed margin in inches.
const DefaultBleed = 0.125

const creator = "scrapbookAPI"

type PDFOptions struct {
	Quality      Quality `json:"quality"`
	IncludeBleed bool    `json:"include_bleed"`
	BleedSize    float64 `json:"bleed_size"`
	Author       string  `json:"author"`
}

type PDFMetadata struct {
	Title   string `json:"title"`
	Author  string `json:"author"`
	Subject string `json:"subject"`
	Creator string `json:"creator"`
}

type PDFConfig struct {
	PageSize     Dimensions  `json:"page_size"`
	DPI          int         `json:"dpi"`
	Quality      Quality     `json:"quality"`
	IncludeBleed bool        `json:"include_bleed"`
	BleedSize    float64     `json:"bleed_size"`
	Pages        []PageData  `json:"pages"`
	Metadata     PDFMetadata `json:"metadata"`
}

func PDF(sb *scrapbook.Scrapbook, opts PDFOptions) (*PDFConfig, error) {
	q := Quality(strings.ToLower(string(opts.Quality)))
	if q == "" {
		q = QualityHigh
	}
	dpi, ok := qualityDPI[q]
	if !ok {
		return nil, &scrapbook.ValidationError{Field: "quality", Message: "must be one of low, medium, high"}
	}
	if opts.BleedSize < 0 {
		return nil, &scrapbook.ValidationError{Field: "bleed_size", Message: "must be non-negative"}
	}
	bleed := 0.0
	if opts.IncludeBleed {
		bleed = opts.BleedSize
		if bleed == 0 {
			bleed = DefaultBleed
		}
	}
	author := opts.Author
	if author == "" {
		author = sb.UserID
	}
	return &PDFConfig{
		PageSize:     Dimensions{Width: sb.PageWidth, Height: sb.PageHeight, Unit: "px"},
		DPI:          dpi,
		Quality:      q,
		IncludeBleed: opts.IncludeBleed,
		BleedSize:    bleed,
		Pages:        renderPages(sb),
		Metadata: PDFMetadata{
			Title:   sb.Title,
			Author:  author,
			Subject: sb.Description,
			Creator: creator,
		},
	}, nil
}
