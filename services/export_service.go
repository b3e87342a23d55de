package services

import (
	"context"

	"scrapbookAPI/internal/export"
	"scrapbookAPI/internal/store"
)

type ExportService struct {
	store   *store.Store
	baseURL string
}

// NewExportService builds share links against publicBaseURL, the origin the
// web viewer is served from.
func NewExportService(st *store.Store, publicBaseURL string) *ExportService {
	return &ExportService{
		store:   st,
		baseURL: publicBaseURL,
	}
}

// ExportOptions carries the options of every format; only the ones for the
// requested format are read.
type ExportOptions struct {
	PDF   export.PDFOptions
	PNG   export.PNGOptions
	Print export.PrintOptions
}

// Export loads the scrapbook graph once and hands it to the adapter for
// format.
func (s *ExportService) Export(ctx context.Context, callerID, id, format string, opts ExportOptions) (any, error) {
	f, err := export.ParseFormat(format)
	if err != nil {
		return nil, err
	}
	sb, _, err := authorize(ctx, s.store, callerID, id, needView)
	if err != nil {
		return nil, err
	}
	pages, err := s.store.LoadPages(ctx, id)
	if err != nil {
		return nil, err
	}
	sb.Pages = pages

	var out any
	switch f {
	case export.FormatPDF:
		out, err = export.PDF(sb, opts.PDF)
	case export.FormatPNG:
		out, err = export.PNG(sb, opts.PNG)
	case export.FormatPrint:
		out, err = export.Print(sb, opts.Print)
	case export.FormatShare:
		out, err = export.Share(sb, export.ShareOptions{BaseURL: s.baseURL})
	}
	if err != nil {
		return nil, err
	}
	exportsTotal.WithLabelValues(string(f)).Inc()
	return out, nil
}
