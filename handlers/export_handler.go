package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"scrapbookAPI/internal/export"
	"scrapbookAPI/internal/scrapbook"
	"scrapbookAPI/middleware"
	"scrapbookAPI/services"
)

type ExportHandler struct {
	exportService *services.ExportService
}

func NewExportHandler(exportService *services.ExportService) *ExportHandler {
	return &ExportHandler{
		exportService: exportService,
	}
}

// Export answers GET /scrapbooks/{id}/export?format=pdf|png|print|share with
// the renderer configuration for that format.
func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	opts, err := exportOptions(r)
	if err != nil {
		respondWithServiceError(w, "Export", err)
		return
	}

	cfg, err := h.exportService.Export(ctx, clerkID, mux.Vars(r)["id"], r.URL.Query().Get("format"), opts)
	if err != nil {
		respondWithServiceError(w, "Export", err)
		return
	}

	respondWithJSON(w, http.StatusOK, cfg)
}

func exportOptions(r *http.Request) (services.ExportOptions, error) {
	q := r.URL.Query()
	var opts services.ExportOptions
	var err error

	opts.PDF.Quality = export.Quality(q.Get("quality"))
	opts.PDF.Author = q.Get("author")
	if opts.PDF.IncludeBleed, err = queryBool(r, "include_bleed"); err != nil {
		return opts, err
	}
	if opts.PDF.BleedSize, err = queryFloat(r, "bleed_size"); err != nil {
		return opts, err
	}

	if opts.PNG.Scale, err = queryFloat(r, "scale"); err != nil {
		return opts, err
	}
	if opts.PNG.Transparent, err = queryBool(r, "transparent"); err != nil {
		return opts, err
	}
	if raw := strings.TrimSpace(q.Get("pages")); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			n, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil {
				return opts, &scrapbook.ValidationError{Field: "pages", Message: "must be a comma-separated list of page indexes"}
			}
			opts.PNG.Pages = append(opts.PNG.Pages, n)
		}
	}

	opts.Print.PaperSize = q.Get("paper_size")
	opts.Print.ColorProfile = export.ColorProfile(q.Get("color_profile"))
	if opts.Print.Bleed, err = queryBool(r, "bleed"); err != nil {
		return opts, err
	}
	if opts.Print.CropMarks, err = queryBool(r, "crop_marks"); err != nil {
		return opts, err
	}
	return opts, nil
}
