package export

import (
	"encoding/base64"
	"fmt"
	"html"
	"net/url"
	"strings"

	"github.com/skip2/go-qrcode"

	"scrapbookAPI/internal/scrapbook"
)

type ShareOptions struct {
	// BaseURL is the public web origin, e.g. https://scrapbook.example.com.
	BaseURL string `json:"-"`
}

type SocialLinks struct {
	Facebook  string `json:"facebook"`
	Twitter   string `json:"twitter"`
	Pinterest string `json:"pinterest"`
	Email     string `json:"email"`
}

type ShareConfig struct {
	ShareURL    string      `json:"share_url"`
	EmbedCode   string      `json:"embed_code"`
	SocialLinks SocialLinks `json:"social_links"`
	QRCode      string      `json:"qr_code"`
	Thumbnail   string      `json:"thumbnail"`
	IsPublic    bool        `json:"is_public"`
}

// Share builds links for the scrapbook. Private scrapbooks still get a
// config; the link only resolves for their collaborators.
func Share(sb *scrapbook.Scrapbook, opts ShareOptions) (*ShareConfig, error) {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		return nil, &scrapbook.ValidationError{Field: "base_url", Message: "required"}
	}
	shareURL := fmt.Sprintf("%s/view/%s", base, sb.ID)
	embedURL := fmt.Sprintf("%s/embed/%s", base, sb.ID)

	pngBytes, err := qrcode.Encode(shareURL, qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR png: %w", err)
	}

	thumb := Thumbnail(sb)
	u := url.QueryEscape(shareURL)
	title := url.QueryEscape(sb.Title)
	return &ShareConfig{
		ShareURL: shareURL,
		EmbedCode: fmt.Sprintf(`<iframe src="%s" width="800" height="600" frameborder="0" allowfullscreen title="%s"></iframe>`,
			embedURL, html.EscapeString(sb.Title)),
		SocialLinks: SocialLinks{
			Facebook:  "https://www.facebook.com/sharer/sharer.php?u=" + u,
			Twitter:   "https://twitter.com/intent/tweet?url=" + u + "&text=" + title,
			Pinterest: "https://pinterest.com/pin/create/button/?url=" + u + "&media=" + url.QueryEscape(thumb) + "&description=" + title,
			Email:     "mailto:?subject=" + url.PathEscape(sb.Title) + "&body=" + url.PathEscape(shareURL),
		},
		QRCode:    "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes),
		Thumbnail: thumb,
		IsPublic:  sb.IsPublic,
	}, nil
}

// Thumbnail is the cover image, else the first photo in paint order of the
// first page that has one.
func Thumbnail(sb *scrapbook.Scrapbook) string {
	if sb.CoverImage != nil && *sb.CoverImage != "" {
		return *sb.CoverImage
	}
	for _, p := range sb.Pages {
		for _, e := range p.PaintOrder() {
			if photo, ok := e.Properties.(*scrapbook.PhotoProperties); ok && e.Visible {
				return photo.Src
			}
		}
	}
	return ""
}
