package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/arifwidianto08/ngantri-sub000/internal/apperr"
	"github.com/arifwidianto08/ngantri-sub000/internal/database"
	"github.com/arifwidianto08/ngantri-sub000/internal/ids"
	"github.com/go-chi/chi/v5"
)

// CategoryStore defines the database methods needed by category handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type CategoryStore interface {
	ListCategoriesByMerchant(ctx context.Context, merchantID string) ([]database.MenuCategory, error)
	CreateCategory(ctx context.Context, arg database.CreateCategoryParams) (database.MenuCategory, error)
	UpdateCategory(ctx context.Context, arg database.UpdateCategoryParams) (database.MenuCategory, error)
	SoftDeleteCategory(ctx context.Context, arg database.SoftDeleteCategoryParams) (string, error)
}

// CategoryHandler handles menu category endpoints.
type CategoryHandler struct {
	store CategoryStore
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(store CategoryStore) *CategoryHandler {
	return &CategoryHandler{store: store}
}

// RegisterPublicRoutes registers the diner-facing listing.
// Expected to be mounted inside a merchant-scoped subrouter: /merchants/{mid}
func (h *CategoryHandler) RegisterPublicRoutes(r chi.Router) {
	r.Get("/categories", h.List)
}

// RegisterRoutes registers category management endpoints.
// Expected to be mounted inside an authenticated merchant-scoped group: /merchants/{mid}
func (h *CategoryHandler) RegisterRoutes(r chi.Router) {
	r.Post("/categories", h.Create)
	r.Put("/categories/{id}", h.Update)
	r.Delete("/categories/{id}", h.Delete)
}

// --- Request / Response types ---

type categoryRequest struct {
	Name      string `json:"name"`
	SortOrder int32  `json:"sort_order"`
}

type categoryResponse struct {
	ID         string    `json:"id"`
	MerchantID string    `json:"merchant_id"`
	Name       string    `json:"name"`
	SortOrder  int32     `json:"sort_order"`
	CreatedAt  time.Time `json:"created_at"`
}

func toCategoryResponse(c database.MenuCategory) categoryResponse {
	return categoryResponse{
		ID:         c.ID,
		MerchantID: c.MerchantID,
		Name:       c.Name,
		SortOrder:  c.SortOrder,
		CreatedAt:  c.CreatedAt,
	}
}

func (req *categoryRequest) validate() error {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return apperr.Validation("name is required")
	}
	if req.SortOrder < 0 {
		return apperr.Validation("sort_order must not be negative")
	}
	return nil
}

// --- Handlers ---

// List returns all undeleted categories of the merchant.
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.store.ListCategoriesByMerchant(r.Context(), chi.URLParam(r, "mid"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := make([]categoryResponse, len(categories))
	for i, c := range categories {
		resp[i] = toCategoryResponse(c)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Create adds a category to the merchant.
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, r, err)
		return
	}

	category, err := h.store.CreateCategory(r.Context(), database.CreateCategoryParams{
		ID:         ids.New(),
		MerchantID: chi.URLParam(r, "mid"),
		Name:       req.Name,
		SortOrder:  req.SortOrder,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCategoryResponse(category))
}

// Update renames or reorders a category.
func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, r, err)
		return
	}

	category, err := h.store.UpdateCategory(r.Context(), database.UpdateCategoryParams{
		ID:         chi.URLParam(r, "id"),
		MerchantID: chi.URLParam(r, "mid"),
		Name:       req.Name,
		SortOrder:  req.SortOrder,
	})
	if err != nil {
		writeError(w, r, notFound(err, "category not found"))
		return
	}
	writeJSON(w, http.StatusOK, toCategoryResponse(category))
}

// Delete soft-deletes a category. Its menus stay, uncategorised.
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	_, err := h.store.SoftDeleteCategory(r.Context(), database.SoftDeleteCategoryParams{
		ID:         chi.URLParam(r, "id"),
		MerchantID: chi.URLParam(r, "mid"),
	})
	if err != nil {
		writeError(w, r, notFound(err, "category not found"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
