package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
)

// Handlers groups everything mounted under /api/v1.
type Handlers struct {
	Scrapbook    *ScrapbookHandler
	Export       *ExportHandler
	Template     *TemplateHandler
	Collaborator *CollaboratorHandler
	Catalog      *CatalogHandler
	Media        *MediaHandler
	Webhook      *WebhookHandler
}

// RegisterRoutes mounts the API on r. auth rejects anonymous requests;
// optionalAuth only attaches the caller when a valid token is present.
func RegisterRoutes(r *mux.Router, h Handlers, auth, optionalAuth mux.MiddlewareFunc) {
	r.HandleFunc("/webhooks/clerk", h.Webhook.HandleClerkWebhook).Methods(http.MethodPost)

	api := r.PathPrefix("/api/v1").Subrouter()

	public := api.NewRoute().Subrouter()
	public.Use(optionalAuth)
	public.HandleFunc("/public/scrapbooks/{id}", h.Scrapbook.GetPublic).Methods(http.MethodGet)
	public.HandleFunc("/catalog/{kind}", h.Catalog.Lookup).Methods(http.MethodGet)
	public.HandleFunc("/templates", h.Template.List).Methods(http.MethodGet)
	public.HandleFunc("/templates/{id}", h.Template.Get).Methods(http.MethodGet)

	protected := api.NewRoute().Subrouter()
	protected.Use(auth)

	protected.HandleFunc("/scrapbooks", h.Scrapbook.List).Methods(http.MethodGet)
	protected.HandleFunc("/scrapbooks", h.Scrapbook.Create).Methods(http.MethodPost)
	protected.HandleFunc("/scrapbooks/{id}", h.Scrapbook.Get).Methods(http.MethodGet)
	protected.HandleFunc("/scrapbooks/{id}", h.Scrapbook.Update).Methods(http.MethodPatch)
	protected.HandleFunc("/scrapbooks/{id}", h.Scrapbook.Delete).Methods(http.MethodDelete)
	protected.HandleFunc("/scrapbooks/{id}/autosave", h.Scrapbook.Autosave).Methods(http.MethodPut)
	protected.HandleFunc("/scrapbooks/{id}/duplicate", h.Scrapbook.Duplicate).Methods(http.MethodPost)
	protected.HandleFunc("/scrapbooks/{id}/like", h.Scrapbook.ToggleLike).Methods(http.MethodPost)
	protected.HandleFunc("/scrapbooks/{id}/tags", h.Scrapbook.AddTag).Methods(http.MethodPost)
	protected.HandleFunc("/scrapbooks/{id}/tags/{tag}", h.Scrapbook.RemoveTag).Methods(http.MethodDelete)
	protected.HandleFunc("/scrapbooks/{id}/pages", h.Scrapbook.AddPage).Methods(http.MethodPost)
	protected.HandleFunc("/scrapbooks/{id}/pages/order", h.Scrapbook.ReorderPages).Methods(http.MethodPut)
	protected.HandleFunc("/pages/{pageId}", h.Scrapbook.DeletePage).Methods(http.MethodDelete)
	protected.HandleFunc("/pages/{pageId}/elements", h.Scrapbook.UpsertElements).Methods(http.MethodPut)
	protected.HandleFunc("/elements/{elementId}", h.Scrapbook.DeleteElement).Methods(http.MethodDelete)

	protected.HandleFunc("/scrapbooks/{id}/collaborators", h.Collaborator.List).Methods(http.MethodGet)
	protected.HandleFunc("/scrapbooks/{id}/collaborators", h.Collaborator.Add).Methods(http.MethodPost)
	protected.HandleFunc("/collaborators/{collaboratorId}", h.Collaborator.Remove).Methods(http.MethodDelete)

	protected.HandleFunc("/scrapbooks/{id}/export", h.Export.Export).Methods(http.MethodGet)
	protected.HandleFunc("/scrapbooks/{id}/template", h.Template.SaveAsTemplate).Methods(http.MethodPost)

	protected.HandleFunc("/media/remove-background", h.Media.RemoveBackground).Methods(http.MethodPost)
}
