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
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// MenuStore defines the database methods needed by menu handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type MenuStore interface {
	ListMenusByMerchant(ctx context.Context, arg database.ListMenusByMerchantParams) ([]database.Menu, error)
	GetMenu(ctx context.Context, arg database.GetMenuParams) (database.Menu, error)
	GetCategory(ctx context.Context, arg database.GetCategoryParams) (database.MenuCategory, error)
	CreateMenu(ctx context.Context, arg database.CreateMenuParams) (database.Menu, error)
	UpdateMenu(ctx context.Context, arg database.UpdateMenuParams) (database.Menu, error)
	SetMenuAvailability(ctx context.Context, arg database.SetMenuAvailabilityParams) (database.Menu, error)
	SoftDeleteMenu(ctx context.Context, arg database.SoftDeleteMenuParams) (string, error)
}

// MenuHandler handles menu endpoints.
type MenuHandler struct {
	store MenuStore
}

// NewMenuHandler creates a new MenuHandler.
func NewMenuHandler(store MenuStore) *MenuHandler {
	return &MenuHandler{store: store}
}

// RegisterPublicRoutes registers the diner-facing menu reads.
// Expected to be mounted inside a merchant-scoped subrouter: /merchants/{mid}
func (h *MenuHandler) RegisterPublicRoutes(r chi.Router) {
	r.Get("/menus", h.List)
	r.Get("/menus/{id}", h.Get)
}

// RegisterRoutes registers menu management endpoints.
// Expected to be mounted inside an authenticated merchant-scoped group: /merchants/{mid}
func (h *MenuHandler) RegisterRoutes(r chi.Router) {
	r.Post("/menus", h.Create)
	r.Put("/menus/{id}", h.Update)
	r.Put("/menus/{id}/availability", h.SetAvailability)
	r.Delete("/menus/{id}", h.Delete)
}

// --- Request / Response types ---

type menuRequest struct {
	CategoryID  string          `json:"category_id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"image_url"`
	IsAvailable *bool           `json:"is_available"`
}

type availabilityRequest struct {
	IsAvailable *bool `json:"is_available"`
}

type menuResponse struct {
	ID          string          `json:"id"`
	MerchantID  string          `json:"merchant_id"`
	CategoryID  *string         `json:"category_id"`
	Name        string          `json:"name"`
	Description *string         `json:"description"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    *string         `json:"image_url"`
	IsAvailable bool            `json:"is_available"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func toMenuResponse(m database.Menu) menuResponse {
	return menuResponse{
		ID:          m.ID,
		MerchantID:  m.MerchantID,
		CategoryID:  textPtr(m.CategoryID),
		Name:        m.Name,
		Description: textPtr(m.Description),
		Price:       money(m.Price),
		ImageURL:    textPtr(m.ImageUrl),
		IsAvailable: m.IsAvailable,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func (req *menuRequest) validate() error {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return apperr.Validation("name is required")
	}
	if !req.Price.IsPositive() {
		return apperr.Validation("price must be positive")
	}
	if !req.Price.Equal(req.Price.Round(2)) {
		return apperr.Validation("price must have at most 2 decimal places")
	}
	return nil
}

// categoryFor checks that a requested category belongs to the merchant.
func (h *MenuHandler) categoryFor(ctx context.Context, merchantID, categoryID string) (pgtype.Text, error) {
	if categoryID == "" {
		return pgtype.Text{}, nil
	}
	if _, err := h.store.GetCategory(ctx, database.GetCategoryParams{ID: categoryID, MerchantID: merchantID}); err != nil {
		return pgtype.Text{}, notFound(err, "category not found")
	}
	return database.Text(categoryID), nil
}

// --- Handlers ---

// List returns the merchant's menus, unavailable ones included, optionally by ?category_id=.
func (h *MenuHandler) List(w http.ResponseWriter, r *http.Request) {
	menus, err := h.store.ListMenusByMerchant(r.Context(), database.ListMenusByMerchantParams{
		MerchantID: chi.URLParam(r, "mid"),
		CategoryID: database.Text(r.URL.Query().Get("category_id")),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := make([]menuResponse, len(menus))
	for i, m := range menus {
		resp[i] = toMenuResponse(m)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Get returns a single menu.
func (h *MenuHandler) Get(w http.ResponseWriter, r *http.Request) {
	menu, err := h.store.GetMenu(r.Context(), database.GetMenuParams{
		ID:         chi.URLParam(r, "id"),
		MerchantID: chi.URLParam(r, "mid"),
	})
	if err != nil {
		writeError(w, r, notFound(err, "menu not found"))
		return
	}
	writeJSON(w, http.StatusOK, toMenuResponse(menu))
}

// Create adds a menu. New menus are available unless is_available is false.
func (h *MenuHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req menuRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, r, err)
		return
	}

	merchantID := chi.URLParam(r, "mid")
	category, err := h.categoryFor(r.Context(), merchantID, req.CategoryID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	available := true
	if req.IsAvailable != nil {
		available = *req.IsAvailable
	}

	menu, err := h.store.CreateMenu(r.Context(), database.CreateMenuParams{
		ID:          ids.New(),
		MerchantID:  merchantID,
		CategoryID:  category,
		Name:        req.Name,
		Description: database.Text(req.Description),
		Price:       database.DecimalToNumeric(req.Price),
		ImageUrl:    database.Text(req.ImageURL),
		IsAvailable: available,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toMenuResponse(menu))
}

// Update replaces a menu's details. Availability has its own endpoint.
func (h *MenuHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req menuRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, r, err)
		return
	}

	merchantID := chi.URLParam(r, "mid")
	category, err := h.categoryFor(r.Context(), merchantID, req.CategoryID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	menu, err := h.store.UpdateMenu(r.Context(), database.UpdateMenuParams{
		ID:          chi.URLParam(r, "id"),
		MerchantID:  merchantID,
		CategoryID:  category,
		Name:        req.Name,
		Description: database.Text(req.Description),
		Price:       database.DecimalToNumeric(req.Price),
		ImageUrl:    database.Text(req.ImageURL),
	})
	if err != nil {
		writeError(w, r, notFound(err, "menu not found"))
		return
	}
	writeJSON(w, http.StatusOK, toMenuResponse(menu))
}

// SetAvailability marks a menu sold out or back on sale.
func (h *MenuHandler) SetAvailability(w http.ResponseWriter, r *http.Request) {
	var req availabilityRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.IsAvailable == nil {
		writeError(w, r, apperr.Validation("is_available is required"))
		return
	}

	menu, err := h.store.SetMenuAvailability(r.Context(), database.SetMenuAvailabilityParams{
		ID:          chi.URLParam(r, "id"),
		MerchantID:  chi.URLParam(r, "mid"),
		IsAvailable: *req.IsAvailable,
	})
	if err != nil {
		writeError(w, r, notFound(err, "menu not found"))
		return
	}
	writeJSON(w, http.StatusOK, toMenuResponse(menu))
}

// Delete soft-deletes a menu.
func (h *MenuHandler) Delete(w http.ResponseWriter, r *http.Request) {
	_, err := h.store.SoftDeleteMenu(r.Context(), database.SoftDeleteMenuParams{
		ID:         chi.URLParam(r, "id"),
		MerchantID: chi.URLParam(r, "mid"),
	})
	if err != nil {
		writeError(w, r, notFound(err, "menu not found"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
