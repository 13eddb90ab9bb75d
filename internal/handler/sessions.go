package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/arifwidianto08/ngantri-sub000/internal/apperr"
	"github.com/arifwidianto08/ngantri-sub000/internal/database"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const maxTableNumber = 20

// SessionStore defines the database methods needed by diner session handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type SessionStore interface {
	CreateSession(ctx context.Context, arg database.CreateSessionParams) (database.BuyerSession, error)
	GetSession(ctx context.Context, id uuid.UUID) (database.BuyerSession, error)
	ListOrdersBySession(ctx context.Context, sessionID uuid.UUID) ([]database.Order, error)
	orderDetailStore
}

// SessionHandler serves anonymous diner sessions.
type SessionHandler struct {
	store SessionStore
	ttl   time.Duration
	now   func() time.Time
}

// NewSessionHandler creates a new SessionHandler. Sessions expire ttl after creation.
func NewSessionHandler(store SessionStore, ttl time.Duration) *SessionHandler {
	return &SessionHandler{store: store, ttl: ttl, now: time.Now}
}

// RegisterRoutes registers session endpoints on the given Chi router.
func (h *SessionHandler) RegisterRoutes(r chi.Router) {
	r.Post("/sessions", h.Create)
	r.Get("/sessions/{sid}", h.Get)
	r.Get("/sessions/{sid}/orders", h.ListOrders)
}

type createSessionRequest struct {
	TableNumber string `json:"table_number"`
}

type sessionResponse struct {
	ID          uuid.UUID `json:"id"`
	TableNumber *string   `json:"table_number"`
	ExpiresAt   time.Time `json:"expires_at"`
	CreatedAt   time.Time `json:"created_at"`
}

func toSessionResponse(s database.BuyerSession) sessionResponse {
	return sessionResponse{
		ID:          s.ID,
		TableNumber: textPtr(s.TableNumber),
		ExpiresAt:   s.ExpiresAt,
		CreatedAt:   s.CreatedAt,
	}
}

// Create starts a new session. The body is optional.
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, err)
			return
		}
	}

	table := strings.TrimSpace(req.TableNumber)
	if len(table) > maxTableNumber {
		writeError(w, r, apperr.Validation("table_number must be at most %d characters", maxTableNumber))
		return
	}

	session, err := h.store.CreateSession(r.Context(), database.CreateSessionParams{
		ID:          uuid.New(),
		TableNumber: database.Text(table),
		ExpiresAt:   h.now().Add(h.ttl),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSessionResponse(session))
}

// Get returns a session, expired or not, so clients can tell the two apart.
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	session, err := h.lookup(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(session))
}

// ListOrders returns the session's orders with items and payments for status tracking.
func (h *SessionHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	session, err := h.lookup(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	orders, err := h.store.ListOrdersBySession(r.Context(), session.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	details, err := orderDetails(r.Context(), h.store, orders)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, details)
}

func (h *SessionHandler) lookup(r *http.Request) (database.BuyerSession, error) {
	id, err := uuid.Parse(chi.URLParam(r, "sid"))
	if err != nil {
		return database.BuyerSession{}, apperr.Validation("invalid session ID")
	}
	session, err := h.store.GetSession(r.Context(), id)
	if err != nil {
		return database.BuyerSession{}, notFound(err, "session not found")
	}
	return session, nil
}
