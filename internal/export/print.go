package export

import (
	"strings"

	"scrapbookAPI/internal/scrapbook"
)

const (
	PrintDPI = 300
	// SafeZone is the inset in inches kept clear of trimming.
	SafeZone = 0.25
)

type ColorProfile string

const (
	ProfileSRGB ColorProfile = "sRGB"
	ProfileCMYK ColorProfile = "CMYK"
)

// PaperSize is in inches.
type PaperSize struct {
	Name   string  `json:"name"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Unit   string  `json:"unit"`
}

var paperSizes = map[string]PaperSize{
	"letter": {Name: "letter", Width: 8.5, Height: 11, Unit: "in"},
	"a4":     {Name: "a4", Width: 8.27, Height: 11.69, Unit: "in"},
	"4x6":    {Name: "4x6", Width: 4, Height: 6, Unit: "in"},
	"5x7":    {Name: "5x7", Width: 5, Height: 7, Unit: "in"},
	"8x10":   {Name: "8x10", Width: 8, Height: 10, Unit: "in"},
	"11x14":  {Name: "11x14", Width: 11, Height: 14, Unit: "in"},
	"12x12":  {Name: "12x12", Width: 12, Height: 12, Unit: "in"},
}

// LookupPaper returns the paper for name, falling back to letter.
func LookupPaper(name string) PaperSize {
	if p, ok := paperSizes[strings.ToLower(strings.TrimSpace(name))]; ok {
		return p
	}
	return paperSizes["letter"]
}

type PrintOptions struct {
	PaperSize    string       `json:"paper_size"`
	Bleed        bool         `json:"bleed"`
	CropMarks    bool         `json:"crop_marks"`
	ColorProfile ColorProfile `json:"color_profile"`
}

type PrintConfig struct {
	PaperSize    PaperSize    `json:"paper_size"`
	DPI          int          `json:"dpi"`
	Bleed        float64      `json:"bleed"`
	SafeZone     float64      `json:"safe_zone"`
	CropMarks    bool         `json:"crop_marks"`
	ColorProfile ColorProfile `json:"color_profile"`
	TotalPages   int          `json:"total_pages"`
	Pages        []PageData   `json:"pages"`
}

func Print(sb *scrapbook.Scrapbook, opts PrintOptions) (*PrintConfig, error) {
	profile := opts.ColorProfile
	switch strings.ToLower(string(profile)) {
	case "", "srgb":
		profile = ProfileSRGB
	case "cmyk":
		profile = ProfileCMYK
	default:
		return nil, &scrapbook.ValidationError{Field: "color_profile", Message: "must be sRGB or CMYK"}
	}
	bleed := 0.0
	if opts.Bleed {
		bleed = DefaultBleed
	}
	pages := renderPages(sb)
	return &PrintConfig{
		PaperSize:    LookupPaper(opts.PaperSize),
		DPI:          PrintDPI,
		Bleed:        bleed,
		SafeZone:     SafeZone,
		CropMarks:    opts.CropMarks,
		ColorProfile: profile,
		TotalPages:   len(pages),
		Pages:        pages,
	}, nil
}
