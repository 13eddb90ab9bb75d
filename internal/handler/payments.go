package handler

import (
	"context"
	"net/http"

	"github.com/arifwidianto08/ngantri-sub000/internal/apperr"
	"github.com/arifwidianto08/ngantri-sub000/internal/database"
	"github.com/arifwidianto08/ngantri-sub000/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// PaymentServicer is the payment service behind these endpoints.
// Satisfied by *service.PaymentService.
type PaymentServicer interface {
	PaymentIntentCreator
	Settle(ctx context.Context, merchantID, paymentID string, status database.PaymentStatus, reference string) (database.Payment, error)
}

// PaymentHandler handles payment intent endpoints.
type PaymentHandler struct {
	svc PaymentServicer
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(svc PaymentServicer) *PaymentHandler {
	return &PaymentHandler{svc: svc}
}

// RegisterRoutes registers the diner-facing endpoint on the given Chi router.
func (h *PaymentHandler) RegisterRoutes(r chi.Router) {
	r.Post("/payments/intents", h.CreateIntents)
}

// RegisterMerchantRoutes registers settlement.
// Expected to be mounted inside an authenticated merchant-scoped group: /merchants/{mid}
func (h *PaymentHandler) RegisterMerchantRoutes(r chi.Router) {
	r.Put("/payments/{pid}", h.Settle)
}

type createIntentsRequest struct {
	SessionID string   `json:"session_id"`
	OrderIDs  []string `json:"order_ids"`
	Method    string   `json:"method"`
}

type settlePaymentRequest struct {
	Status    string `json:"status"`
	Reference string `json:"reference"`
}

// CreateIntents opens (or returns the existing) payment intent for each order.
func (h *PaymentHandler) CreateIntents(w http.ResponseWriter, r *http.Request) {
	var req createIntentsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	sessionID, err := uuid.Parse(req.SessionID)
	if err != nil {
		writeError(w, r, apperr.Validation("invalid session_id"))
		return
	}
	method, err := service.ParsePaymentMethod(req.Method)
	if err != nil {
		writeError(w, r, err)
		return
	}

	payments, err := h.svc.CreateIntents(r.Context(), sessionID, req.OrderIDs, method)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := make([]paymentResponse, len(payments))
	for i, p := range payments {
		resp[i] = toPaymentResponse(p)
	}
	writeJSON(w, http.StatusCreated, resp)
}

// Settle records the counter outcome of a payment: paid or failed.
func (h *PaymentHandler) Settle(w http.ResponseWriter, r *http.Request) {
	var req settlePaymentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	payment, err := h.svc.Settle(r.Context(), chi.URLParam(r, "mid"), chi.URLParam(r, "pid"),
		database.PaymentStatus(req.Status), req.Reference)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPaymentResponse(payment))
}
