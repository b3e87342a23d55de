package handlers

import (
	"context"
	"net/http"
	"time"

	"scrapbookAPI/internal/media"
	"scrapbookAPI/middleware"
)

type MediaHandler struct {
	remover *media.BackgroundRemover
}

func NewMediaHandler(remover *media.BackgroundRemover) *MediaHandler {
	return &MediaHandler{
		remover: remover,
	}
}

// RemoveBackground returns the cut-out PNG. Upstream failures keep their
// status where it means something to the client (402 when credits ran out).
func (h *MediaHandler) RemoveBackground(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	if _, ok := middleware.GetClerkID(ctx); !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req struct {
		ImageURL string `json:"image_url"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithServiceError(w, "RemoveBackground", err)
		return
	}

	result, err := h.remover.Remove(ctx, req.ImageURL)
	if err != nil {
		respondWithServiceError(w, "RemoveBackground", err)
		return
	}

	w.Header().Set("Content-Type", result.ContentType)
	if result.CreditsCharged != "" {
		w.Header().Set("X-Credits-Charged", result.CreditsCharged)
	}
	w.WriteHeader(http.StatusOK)
	w.Write(result.Image)
}
