package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"scrapbookAPI/internal/catalog"
)

type CatalogHandler struct {
	catalog *catalog.Catalog
}

func NewCatalogHandler(c *catalog.Catalog) *CatalogHandler {
	return &CatalogHandler{
		catalog: c,
	}
}

// Lookup answers GET /catalog/{kind}?id=&category=&search=&fill=.
func (h *CatalogHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	q := r.URL.Query()
	result, err := h.catalog.Lookup(ctx, mux.Vars(r)["kind"], catalog.Query{
		ID:       q.Get("id"),
		Category: q.Get("category"),
		Search:   q.Get("search"),
		Fill:     q.Get("fill"),
	})
	if err != nil {
		respondWithServiceError(w, "CatalogLookup", err)
		return
	}

	w.Header().Set("Cache-Control", "public, max-age=3600")
	respondWithJSON(w, http.StatusOK, result)
}
