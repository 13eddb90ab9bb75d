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
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"
)

const minPasswordLength = 8

// AdminStore defines the database methods needed by admin handlers.
// Satisfied by *database.Queries; narrow interface for testability.
// Dashboard queries run concurrently, so implementations must be safe for
// concurrent use (a pool-backed *database.Queries is).
type AdminStore interface {
	ListMerchants(ctx context.Context, onlyAvailable bool) ([]database.Merchant, error)
	CreateMerchant(ctx context.Context, arg database.CreateMerchantParams) (database.Merchant, error)
	UpdateMerchant(ctx context.Context, arg database.UpdateMerchantParams) (database.Merchant, error)
	UpdateMerchantPassword(ctx context.Context, arg database.UpdateMerchantPasswordParams) error
	SoftDeleteMerchant(ctx context.Context, id string) (string, error)

	CountMerchants(ctx context.Context) (database.CountMerchantsRow, error)
	CountOrdersByStatusSince(ctx context.Context, since time.Time) ([]database.CountOrdersByStatusSinceRow, error)
	SumCompletedRevenueSince(ctx context.Context, since time.Time) (pgtype.Numeric, error)
}

// AdminHandler handles admin-only merchant management and the dashboard.
type AdminHandler struct {
	store AdminStore
	loc   *time.Location
	now   func() time.Time
}

// NewAdminHandler creates a new AdminHandler. "Today" on the dashboard starts
// at midnight in loc.
func NewAdminHandler(store AdminStore, loc *time.Location) *AdminHandler {
	if loc == nil {
		loc = time.Local
	}
	return &AdminHandler{store: store, loc: loc, now: time.Now}
}

// RegisterRoutes registers admin endpoints.
// Expected to be mounted inside an admin-only subrouter: /admin
func (h *AdminHandler) RegisterRoutes(r chi.Router) {
	r.Get("/dashboard", h.Dashboard)
	r.Get("/merchants", h.ListMerchants)
	r.Post("/merchants", h.CreateMerchant)
	r.Put("/merchants/{mid}", h.UpdateMerchant)
	r.Delete("/merchants/{mid}", h.DeleteMerchant)
}

// --- Request / Response types ---

type adminMerchantRequest struct {
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	Password    string `json:"password"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
	IsAvailable *bool  `json:"is_available"`
}

type dashboardResponse struct {
	Merchants          int64                          `json:"merchants"`
	AvailableMerchants int64                          `json:"available_merchants"`
	OrdersToday        int64                          `json:"orders_today"`
	OrdersByStatus     map[database.OrderStatus]int64 `json:"orders_by_status"`
	RevenueToday       decimal.Decimal                `json:"revenue_today"`
	Since              time.Time                      `json:"since"`
}

func (req *adminMerchantRequest) validate(create bool) error {
	req.Name = strings.TrimSpace(req.Name)
	req.Phone = strings.TrimSpace(req.Phone)
	if req.Name == "" {
		return apperr.Validation("name is required")
	}
	if req.Phone == "" {
		return apperr.Validation("phone is required")
	}
	if (create || req.Password != "") && len(req.Password) < minPasswordLength {
		return apperr.Validation("password must be at least %d characters", minPasswordLength)
	}
	return nil
}

// --- Handlers ---

// Dashboard returns today's headline numbers.
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	now := h.now().In(h.loc)
	since := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, h.loc)

	var (
		merchants database.CountMerchantsRow
		byStatus  []database.CountOrdersByStatusSinceRow
		revenue   pgtype.Numeric
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		merchants, err = h.store.CountMerchants(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		byStatus, err = h.store.CountOrdersByStatusSince(ctx, since)
		return err
	})
	g.Go(func() error {
		var err error
		revenue, err = h.store.SumCompletedRevenueSince(ctx, since)
		return err
	})
	if err := g.Wait(); err != nil {
		writeError(w, r, err)
		return
	}

	resp := dashboardResponse{
		Merchants:          merchants.Total,
		AvailableMerchants: merchants.Available,
		OrdersByStatus:     make(map[database.OrderStatus]int64, len(byStatus)),
		RevenueToday:       money(revenue),
		Since:              since,
	}
	for _, row := range byStatus {
		resp.OrdersByStatus[row.Status] = row.Total
		resp.OrdersToday += row.Total
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListMerchants returns every undeleted merchant, open or closed.
func (h *AdminHandler) ListMerchants(w http.ResponseWriter, r *http.Request) {
	merchants, err := h.store.ListMerchants(r.Context(), false)
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

// CreateMerchant registers a merchant account.
func (h *AdminHandler) CreateMerchant(w http.ResponseWriter, r *http.Request) {
	var req adminMerchantRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := req.validate(true); err != nil {
		writeError(w, r, err)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, r, err)
		return
	}

	available := true
	if req.IsAvailable != nil {
		available = *req.IsAvailable
	}

	merchant, err := h.store.CreateMerchant(r.Context(), database.CreateMerchantParams{
		ID:           ids.New(),
		Name:         req.Name,
		Phone:        req.Phone,
		PasswordHash: string(hash),
		Description:  database.Text(req.Description),
		ImageUrl:     database.Text(req.ImageURL),
		IsAvailable:  available,
	})
	if err != nil {
		if isUniqueViolation(err, merchantsPhoneKey) {
			writeError(w, r, apperr.Conflict("phone already registered"))
			return
		}
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toMerchantResponse(merchant))
}

// UpdateMerchant replaces a merchant's details and, if given, its password.
func (h *AdminHandler) UpdateMerchant(w http.ResponseWriter, r *http.Request) {
	var req adminMerchantRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := req.validate(false); err != nil {
		writeError(w, r, err)
		return
	}

	merchantID := chi.URLParam(r, "mid")
	merchant, err := h.store.UpdateMerchant(r.Context(), database.UpdateMerchantParams{
		ID:          merchantID,
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

	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if err := h.store.UpdateMerchantPassword(r.Context(), database.UpdateMerchantPasswordParams{
			ID:           merchantID,
			PasswordHash: string(hash),
		}); err != nil {
			writeError(w, r, err)
			return
		}
	}

	writeJSON(w, http.StatusOK, toMerchantResponse(merchant))
}

// DeleteMerchant soft-deletes a merchant. Its past orders are kept.
func (h *AdminHandler) DeleteMerchant(w http.ResponseWriter, r *http.Request) {
	if _, err := h.store.SoftDeleteMerchant(r.Context(), chi.URLParam(r, "mid")); err != nil {
		writeError(w, r, notFound(err, "merchant not found"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
