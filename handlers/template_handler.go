package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"scrapbookAPI/middleware"
	"scrapbookAPI/services"
)

type TemplateHandler struct {
	templateService *services.TemplateService
}

func NewTemplateHandler(templateService *services.TemplateService) *TemplateHandler {
	return &TemplateHandler{
		templateService: templateService,
	}
}

func (h *TemplateHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	templates, err := h.templateService.List(ctx, r.URL.Query().Get("category"))
	if err != nil {
		respondWithServiceError(w, "ListTemplates", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"items": templates,
		"total": len(templates),
	})
}

func (h *TemplateHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	t, err := h.templateService.Get(ctx, mux.Vars(r)["id"])
	if err != nil {
		respondWithServiceError(w, "GetTemplate", err)
		return
	}

	respondWithJSON(w, http.StatusOK, t)
}

func (h *TemplateHandler) SaveAsTemplate(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req services.SaveTemplateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithServiceError(w, "SaveAsTemplate", err)
		return
	}

	t, err := h.templateService.SaveAsTemplate(ctx, clerkID, mux.Vars(r)["id"], req)
	if err != nil {
		respondWithServiceError(w, "SaveAsTemplate", err)
		return
	}

	respondWithJSON(w, http.StatusCreated, t)
}
