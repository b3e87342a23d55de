package catalog

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	webfonts "google.golang.org/api/webfonts/v1"

	"scrapbookAPI/internal/scrapbook"
)

const googleFontsService = "google-fonts"

// GoogleFonts lists fonts from the Google Fonts developer API, most popular
// first.
type GoogleFonts struct {
	svc *webfonts.Service
}

// NewGoogleFonts builds a client for apiKey. Extra options are appended, which
// is how tests point it at a local server.
func NewGoogleFonts(ctx context.Context, apiKey string, opts ...option.ClientOption) (*GoogleFonts, error) {
	svc, err := webfonts.NewService(ctx, append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("create webfonts client: %w", err)
	}
	return &GoogleFonts{svc: svc}, nil
}

func (g *GoogleFonts) Fonts(ctx context.Context) ([]Item, error) {
	resp, err := g.svc.Webfonts.List().Sort("popularity").Context(ctx).Do()
	if err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) {
			return nil, &scrapbook.UpstreamError{Service: googleFontsService, Status: gerr.Code, Err: err}
		}
		return nil, &scrapbook.UpstreamError{Service: googleFontsService, Err: err}
	}

	items := make([]Item, 0, len(resp.Items))
	for _, f := range resp.Items {
		items = append(items, Item{
			ID:       slug(f.Family),
			Name:     f.Family,
			Category: f.Category,
			Tags:     append([]string{}, f.Subsets...),
			Data: map[string]any{
				"family":   f.Family,
				"variants": f.Variants,
				"files":    f.Files,
				"version":  f.Version,
			},
		})
	}
	return items, nil
}

func slug(family string) string {
	b := make([]rune, 0, len(family))
	for _, r := range family {
		switch {
		case r >= 'A' && r <= 'Z':
			b = append(b, r+('a'-'A'))
		case r == ' ':
			b = append(b, '-')
		default:
			b = append(b, r)
		}
	}
	return string(b)
}
