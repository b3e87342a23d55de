// Package media proxies paid image-processing APIs.
package media

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"scrapbookAPI/internal/scrapbook"
)

const (
	removeBGService = "remove.bg"
	// DefaultRemoveBGURL is the remove.bg v1 endpoint.
	DefaultRemoveBGURL = "https://api.remove.bg/v1.0/removebg"
	maxImageBytes      = 25 << 20
)

// HTTPDoer describes the HTTP client used for upstream calls.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type Result struct {
	Image          []byte
	ContentType    string
	CreditsCharged string
}

// BackgroundRemover cuts the subject out of a photo using remove.bg.
type BackgroundRemover struct {
	endpoint string
	apiKey   string
	client   HTTPDoer
	maxBytes int64
}

// NewBackgroundRemover returns a remover for apiKey. An empty apiKey gives a
// remover whose calls fail with 503. A nil client uses a client with a 60s
// timeout.
func NewBackgroundRemover(endpoint, apiKey string, client HTTPDoer) *BackgroundRemover {
	if endpoint == "" {
		endpoint = DefaultRemoveBGURL
	}
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	return &BackgroundRemover{
		endpoint: strings.TrimRight(endpoint, "/"),
		apiKey:   strings.TrimSpace(apiKey),
		client:   client,
		maxBytes: maxImageBytes,
	}
}

func (b *BackgroundRemover) Configured() bool {
	return b != nil && b.apiKey != ""
}

// Remove asks remove.bg for a cut-out of the image at imageURL. Any non-2xx
// answer becomes an UpstreamError carrying the upstream status.
func (b *BackgroundRemover) Remove(ctx context.Context, imageURL string) (*Result, error) {
	if !b.Configured() {
		return nil, &scrapbook.UpstreamError{
			Service: removeBGService,
			Status:  http.StatusServiceUnavailable,
			Err:     errors.New("background removal is not configured"),
		}
	}
	u, err := url.Parse(strings.TrimSpace(imageURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, &scrapbook.ValidationError{Field: "image_url", Message: "must be an absolute http(s) URL"}
	}

	form := url.Values{}
	form.Set("image_url", u.String())
	form.Set("size", "auto")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build remove.bg request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "image/png")
	req.Header.Set("X-Api-Key", b.apiKey)

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, &scrapbook.UpstreamError{Service: removeBGService, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, b.maxBytes+1))
	if err != nil {
		return nil, &scrapbook.UpstreamError{Service: removeBGService, Status: resp.StatusCode, Err: err}
	}
	if int64(len(body)) > b.maxBytes {
		return nil, &scrapbook.UpstreamError{
			Service: removeBGService,
			Err:     fmt.Errorf("response exceeds %d bytes", b.maxBytes),
		}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &scrapbook.UpstreamError{
			Service: removeBGService,
			Status:  resp.StatusCode,
			Err:     errors.New(upstreamMessage(body)),
		}
	}
	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/png"
	}
	return &Result{
		Image:          body,
		ContentType:    contentType,
		CreditsCharged: resp.Header.Get("X-Credits-Charged"),
	}, nil
}

// upstreamMessage pulls the first error title out of a remove.bg error body.
func upstreamMessage(body []byte) string {
	var payload struct {
		Errors []struct {
			Title string `json:"title"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && len(payload.Errors) > 0 && payload.Errors[0].Title != "" {
		return payload.Errors[0].Title
	}
	return "request failed"
}
