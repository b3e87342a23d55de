package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"scrapbookAPI/middleware"
	"scrapbookAPI/services"
)

type CollaboratorHandler struct {
	collaboratorService *services.CollaboratorService
}

func NewCollaboratorHandler(collaboratorService *services.CollaboratorService) *CollaboratorHandler {
	return &CollaboratorHandler{
		collaboratorService: collaboratorService,
	}
}

func (h *CollaboratorHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	collaborators, err := h.collaboratorService.List(ctx, clerkID, mux.Vars(r)["id"])
	if err != nil {
		respondWithServiceError(w, "ListCollaborators", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{"collaborators": collaborators})
}

// Add invites by email. An address without an account yet answers 202 with
// pending set.
func (h *CollaboratorHandler) Add(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req struct {
		Email string `json:"email"`
		Role  string `json:"role"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithServiceError(w, "AddCollaborator", err)
		return
	}

	result, err := h.collaboratorService.Add(ctx, clerkID, mux.Vars(r)["id"], req.Email, req.Role)
	if err != nil {
		respondWithServiceError(w, "AddCollaborator", err)
		return
	}

	status := http.StatusCreated
	if result.Pending {
		status = http.StatusAccepted
	}
	respondWithJSON(w, status, result)
}

func (h *CollaboratorHandler) Remove(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	if err := h.collaboratorService.Remove(ctx, clerkID, mux.Vars(r)["collaboratorId"]); err != nil {
		respondWithServiceError(w, "RemoveCollaborator", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]bool{"success": true})
}
