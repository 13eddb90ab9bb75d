package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/arifwidianto08/ngantri-sub000/internal/apperr"
	"github.com/arifwidianto08/ngantri-sub000/internal/database"
	"github.com/go-chi/chi/v5"
)

const merchantsPhoneKey = "merchants_phone_key"

// MerchantStore defines the database methods needed by merchant handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type MerchantStore interface {
	ListMerchants(ctx context.Context, onlyAvailable bool) ([]database.Merchant, error)
	GetMerchant(ctx context.Context, id string) (database.Merchant, error)
	UpdateMerchant(ctx context.Context, arg database.UpdateMerchantParams) (database.Merchant, error)
	SetMerchantAvailability(ctx context.Context, arg database.SetMerchantAvailabilityParams) (database.Merchant, error)
}

// MerchantHandler serves the public merchant directory and merchant self-service.
type MerchantHandler struct {
	store MerchantStore
}

// NewMerchantHandler creates a new MerchantHandler.
func NewMerchantHandler(store MerchantStore) *MerchantHandler {
	return &MerchantHandler{store: store}
}

// RegisterPublicRoutes registers the diner-facing merchant page.
// Expected to be mounted inside a merchant-scoped subrouter: /merchants/{mid}
// The directory itself (GET /merchants) is List, wired by the router.
func (h *MerchantHandler) RegisterPublicRoutes(r chi.Router) {
	r.Get("/", h.Get)
}

// RegisterRoutes registers self-service endpoints.
// Expected to be mounted inside an authenticated merchant-scoped group: /merchants/{mid}
func (h *MerchantHandler) RegisterRoutes(r chi.Router) {
	r.Put("/", h.UpdateProfile)
	r.Put("/availability", h.SetAvailability)
}

// --- Request / Response types ---

type merchantProfileRequest struct {
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
}

type merchantResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Phone       string    `json:"phone"`
	Description *string   `json:"description"`
	ImageURL    *string   `json:"image_url"`
	IsAvailable bool      `json:"is_available"`
	CreatedAt   time.Time `json:"created_at"`
}

func toMerchantResponse(m database.Merchant) merchantResponse {
	return merchantResponse{
		ID:          m.ID,
		Name:        m.Name,
		Phone:       m.Phone,
		Description: textPtr(m.Description),
		ImageURL:    textPtr(m.ImageUrl),
		IsAvailable: m.IsAvailable,
		CreatedAt:   m.CreatedAt,
	}
}

func (req *merchantProfileRequest) validate() error {
	req.Name = strings.TrimSpace(req.Name)
	req.Phone = strings.TrimSpace(req.Phone)
	if req.Name == "" {
		return apperr.Validation("name is required")
	}
	if req.Phone == "" {
		return apperr.Validation("phone is required")
	}
	return nil
}

// --- Handlers ---

// List returns merchants open for orders; ?all=true includes closed ones.
func (h *MerchantHandler) List(w http.ResponseWriter, r *http.Request) {
	onlyAvailable := r.URL.Query().Get("all") != "true"

	merchants, err := h.store.ListMerchants(r.Context(), onlyAvailable)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := make([]merchantResponse, len(merchants))
	for i, m := range merchants {
		resp[i] = toMerchantResponse(m)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Get returns a merchant, open or closed.
func (h *MerchantHandler) Get(w http.ResponseWriter, r *http.Request) {
	merchant, err := h.store.GetMerchant(r.Context(), chi.URLParam(r, "mid"))
	if err != nil {
		writeError(w, r, notFound(err, "merchant not found"))
		return
	}
	writeJSON(w, http.StatusOK, toMerchantResponse(merchant))
}

// UpdateProfile replaces the merchant's public details.
func (h *MerchantHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req merchantProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, r, err)
		return
	}

	merchant, err := h.store.UpdateMerchant(r.Context(), database.UpdateMerchantParams{
		ID:          chi.URLParam(r, "mid"),
		Name:        req.Name,
		Phone:       req.Phone,
		Description: database.Text(req.Description),
		ImageUrl:    database.Text(req.ImageURL),
	})
	if err != nil {
		if isUniqueViolation(err, merchantsPhoneKey) {
			writeError(w, r, apperr.Conflict("phone already registered"))
			return
		}
		writeError(w, r, notFound(err, "merchant not found"))
		return
	}
	writeJSON(w, http.StatusOK, toMerchantResponse(merchant))
}

// SetAvailability opens or closes the merchant for new orders.
func (h *MerchantHandler) SetAvailability(w http.ResponseWriter, r *http.Request) {
	var req availabilityRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.IsAvailable == nil {
		writeError(w, r, apperr.Validation("is_available is required"))
		return
	}

	merchant, err := h.store.SetMerchantAvailability(r.Context(), database.SetMerchantAvailabilityParams{
		ID:          chi.URLParam(r, "mid"),
		IsAvailable: *req.IsAvailable,
	})
	if err != nil {
		writeError(w, r, notFound(err, "merchant not found"))
		return
	}
	writeJSON(w, http.StatusOK, toMerchantResponse(merchant))
}
