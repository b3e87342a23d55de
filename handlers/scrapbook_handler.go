package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"scrapbookAPI/internal/scrapbook"
	"scrapbookAPI/internal/store"
	"scrapbookAPI/middleware"
	"scrapbookAPI/services"
)

type ScrapbookHandler struct {
	scrapbookService *services.ScrapbookService
	autosaveService  *services.AutosaveService
}

func NewScrapbookHandler(scrapbookService *services.ScrapbookService, autosaveService *services.AutosaveService) *ScrapbookHandler {
	return &ScrapbookHandler{
		scrapbookService: scrapbookService,
		autosaveService:  autosaveService,
	}
}

func (h *ScrapbookHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	q := r.URL.Query()
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		respondWithServiceError(w, "List", err)
		return
	}
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		respondWithServiceError(w, "List", err)
		return
	}

	result, err := h.scrapbookService.List(ctx, clerkID, store.ListQuery{
		Filter: store.ListFilter(q.Get("filter")),
		Search: q.Get("search"),
		Sort:   q.Get("sort"),
		Order:  q.Get("order"),
		Offset: offset,
		Limit:  limit,
	})
	if err != nil {
		respondWithServiceError(w, "List", err)
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

func (h *ScrapbookHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req scrapbook.NewScrapbook
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithServiceError(w, "Create", err)
		return
	}

	sb, err := h.scrapbookService.Create(ctx, clerkID, req)
	if err != nil {
		respondWithServiceError(w, "Create", err)
		return
	}

	respondWithJSON(w, http.StatusCreated, sb)
}

// Get returns the scrapbook with its pages unless ?pages=false.
func (h *ScrapbookHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	includePages := r.URL.Query().Get("pages") != "false"
	detail, err := h.scrapbookService.Get(ctx, clerkID, mux.Vars(r)["id"], includePages)
	if err != nil {
		respondWithServiceError(w, "Get", err)
		return
	}

	respondWithJSON(w, http.StatusOK, detail)
}

// GetPublic serves the public viewer; the caller may be anonymous.
func (h *ScrapbookHandler) GetPublic(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	viewerID, _ := middleware.GetClerkID(ctx)
	sb, err := h.scrapbookService.GetPublic(ctx, viewerID, mux.Vars(r)["id"])
	if err != nil {
		respondWithServiceError(w, "GetPublic", err)
		return
	}

	respondWithJSON(w, http.StatusOK, sb)
}

func (h *ScrapbookHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req scrapbook.MetadataInput
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithServiceError(w, "Update", err)
		return
	}

	sb, err := h.scrapbookService.UpdateMetadata(ctx, clerkID, mux.Vars(r)["id"], req)
	if err != nil {
		respondWithServiceError(w, "Update", err)
		return
	}

	respondWithJSON(w, http.StatusOK, sb)
}

func (h *ScrapbookHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	if err := h.scrapbookService.Delete(ctx, clerkID, mux.Vars(r)["id"]); err != nil {
		respondWithServiceError(w, "Delete", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *ScrapbookHandler) Autosave(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req services.AutosaveRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithServiceError(w, "Autosave", err)
		return
	}

	result, err := h.autosaveService.Autosave(ctx, clerkID, mux.Vars(r)["id"], req)
	if err != nil {
		respondWithServiceError(w, "Autosave", err)
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

func (h *ScrapbookHandler) Duplicate(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	sb, err := h.scrapbookService.Duplicate(ctx, clerkID, mux.Vars(r)["id"])
	if err != nil {
		respondWithServiceError(w, "Duplicate", err)
		return
	}

	respondWithJSON(w, http.StatusCreated, sb)
}

func (h *ScrapbookHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	result, err := h.scrapbookService.ToggleLike(ctx, clerkID, mux.Vars(r)["id"])
	if err != nil {
		respondWithServiceError(w, "ToggleLike", err)
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

func (h *ScrapbookHandler) AddTag(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req struct {
		Tag string `json:"tag"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithServiceError(w, "AddTag", err)
		return
	}

	sb, err := h.scrapbookService.AddTag(ctx, clerkID, mux.Vars(r)["id"], req.Tag)
	if err != nil {
		respondWithServiceError(w, "AddTag", err)
		return
	}

	respondWithJSON(w, http.StatusOK, sb)
}

func (h *ScrapbookHandler) RemoveTag(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	vars := mux.Vars(r)
	sb, err := h.scrapbookService.RemoveTag(ctx, clerkID, vars["id"], vars["tag"])
	if err != nil {
		respondWithServiceError(w, "RemoveTag", err)
		return
	}

	respondWithJSON(w, http.StatusOK, sb)
}

func (h *ScrapbookHandler) AddPage(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req scrapbook.PageInput
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithServiceError(w, "AddPage", err)
		return
	}

	page, err := h.scrapbookService.AddPage(ctx, clerkID, mux.Vars(r)["id"], req)
	if err != nil {
		respondWithServiceError(w, "AddPage", err)
		return
	}

	respondWithJSON(w, http.StatusCreated, page)
}

func (h *ScrapbookHandler) ReorderPages(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req struct {
		PageIDs []string `json:"page_ids"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithServiceError(w, "ReorderPages", err)
		return
	}

	pages, err := h.scrapbookService.ReorderPages(ctx, clerkID, mux.Vars(r)["id"], req.PageIDs)
	if err != nil {
		respondWithServiceError(w, "ReorderPages", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{"pages": pages})
}

func (h *ScrapbookHandler) DeletePage(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	if err := h.scrapbookService.DeletePage(ctx, clerkID, mux.Vars(r)["pageId"]); err != nil {
		respondWithServiceError(w, "DeletePage", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *ScrapbookHandler) UpsertElements(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req struct {
		Elements []json.RawMessage `json:"elements"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithServiceError(w, "UpsertElements", err)
		return
	}

	result, err := h.scrapbookService.UpsertElements(ctx, clerkID, mux.Vars(r)["pageId"], req.Elements)
	if err != nil {
		respondWithServiceError(w, "UpsertElements", err)
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

func (h *ScrapbookHandler) DeleteElement(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	if err := h.scrapbookService.DeleteElement(ctx, clerkID, mux.Vars(r)["elementId"]); err != nil {
		respondWithServiceError(w, "DeleteElement", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]bool{"success": true})
}
