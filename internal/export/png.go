package export

import (
	"fmt"

	"scrapbookAPI/internal/scrapbook"
)

type PNGOptions struct {
	Scale       float64 `json:"scale"`
	Transparent bool    `json:"transparent"`
	// Pages are zero-based page indexes; empty means every page.
	Pages []int `json:"pages"`
}

type PNGConfig struct {
	Scale       float64    `json:"scale"`
	Transparent bool       `json:"transparent"`
	Pages       []int      `json:"pages"`
	PageData    []PageData `json:"page_data"`
}

func PNG(sb *scrapbook.Scrapbook, opts PNGOptions) (*PNGConfig, error) {
	scale := opts.Scale
	if scale == 0 {
		scale = 2
	}
	if scale < 1 || scale > 4 {
		return nil, &scrapbook.ValidationError{Field: "scale", Message: "must be between 1 and 4"}
	}

	indexes := opts.Pages
	if len(indexes) == 0 {
		indexes = make([]int, len(sb.Pages))
		for i := range sb.Pages {
			indexes[i] = i
		}
	}
	data := make([]PageData, 0, len(indexes))
	for _, i := range indexes {
		if i < 0 || i >= len(sb.Pages) {
			return nil, &scrapbook.ValidationError{
				Field:   "pages",
				Message: fmt.Sprintf("page index %d out of range (scrapbook has %d pages)", i, len(sb.Pages)),
			}
		}
		data = append(data, renderPage(sb.Pages[i]))
	}
	return &PNGConfig{
		Scale:       scale,
		Transparent: opts.Transparent,
		Pages:       indexes,
		PageData:    data,
	}, nil
}
