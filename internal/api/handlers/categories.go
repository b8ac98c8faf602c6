package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/smartspend/smartspend/internal/api/middleware"
	"github.com/smartspend/smartspend/internal/catalog"
	"github.com/smartspend/smartspend/internal/classify"
)

// BatchResolver classifies a batch of not-yet-imported rows.
type BatchResolver interface {
	ResolveBatch(ctx context.Context, items []classify.BatchItem) []string
}

// CategoriesHandler serves the category catalog and batch preview.
type CategoriesHandler struct {
	catalog  *catalog.Catalog
	resolver BatchResolver
	log      zerolog.Logger
}

// NewCategoriesHandler creates a categories handler.
func NewCategoriesHandler(cat *catalog.Catalog, resolver BatchResolver, log zerolog.Logger) *CategoriesHandler {
	return &CategoriesHandler{catalog: cat, resolver: resolver, log: log}
}

type categoryJSON struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// List handles GET /api/categories.
func (h *CategoriesHandler) List(w http.ResponseWriter, _ *http.Request) {
	categories := h.catalog.Categories()
	out := make([]categoryJSON, 0, len(categories))
	for _, c := range categories {
		out = append(out, categoryJSON{ID: c.ID, Name: c.Name, Type: c.Type})
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"categories": out,
		"count":      len(out),
	})
}

// Preview handles POST /api/categories/preview: batch classification of rows
// the client has parsed but not yet imported. Classification failures come
// back as sentinel categories, never as an HTTP error.
func (h *CategoriesHandler) Preview(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Rows []classify.BatchItem `json:"rows"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.Rows) == 0 {
		middleware.WriteError(w, http.StatusBadRequest, "rows is required")
		return
	}

	categories := h.resolver.ResolveBatch(r.Context(), req.Rows)
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"categories": categories,
	})
}
