package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/CTAG07/hashmark/pkg/marker"
	"github.com/CTAG07/hashmark/pkg/templating"
)

// maxRenderRequestSize limits the JSON body of a render request.
const maxRenderRequestSize = 1 << 20

// TemplateAPI holds the dependencies for the template API handlers.
type TemplateAPI struct {
	tm       *templating.TemplateManager
	renderer *Renderer
	logger   *slog.Logger
}

// NewTemplateAPI creates a new instance of the TemplateAPI.
func NewTemplateAPI(tm *templating.TemplateManager, renderer *Renderer, logger *slog.Logger) *TemplateAPI {
	return &TemplateAPI{
		tm:       tm,
		renderer: renderer,
		logger:   logger,
	}
}

// RegisterRoutes sets up the routing for the template endpoints.
func (t *TemplateAPI) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/templates/refresh", t.handleRefresh)
	mux.HandleFunc("/api/templates", t.handleList)
	mux.HandleFunc("/api/render", t.handleRender)
}

// handleRefresh triggers a manual refresh of templates from disk.
func (t *TemplateAPI) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	if err := t.tm.Refresh(); err != nil {
		t.logger.Error("API triggered refresh failed", "error", err)
		respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to refresh templates: %v", err))
		return
	}
	t.logger.Info("Templates refreshed via API")
	w.WriteHeader(http.StatusNoContent)
}

// handleList returns a list of all available template names.
func (t *TemplateAPI) handleList(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	respondWithJSON(w, http.StatusOK, t.tm.GetTemplateNames())
}

// handleRender renders a template with the markers, hidden subparts and
// language given in the JSON body and returns the HTML.
func (t *TemplateAPI) handleRender(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req RenderRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRenderRequestSize)).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid JSON request body")
		return
	}

	out, err := t.renderer.Render(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, templating.ErrTemplateNotFound), errors.Is(err, marker.ErrNotFound):
			respondWithError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, marker.ErrInvalidName):
			respondWithError(w, http.StatusBadRequest, err.Error())
		default:
			t.logger.Error("Failed to render template", "template", req.Template, "error", err)
			respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to render template: %v", err))
		}
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(out))
}
