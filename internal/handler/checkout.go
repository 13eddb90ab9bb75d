package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/arifwidianto08/ngantri-sub000/internal/apperr"
	"github.com/arifwidianto08/ngantri-sub000/internal/database"
	"github.com/arifwidianto08/ngantri-sub000/internal/logging"
	"github.com/arifwidianto08/ngantri-sub000/internal/metrics"
	"github.com/arifwidianto08/ngantri-sub000/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	idempotencyHeader = "Idempotency-Key"
	maxIdempotencyKey = 128
)

// BatchOrderCreator places a multi-merchant checkout.
// Satisfied by *service.OrderService.
type BatchOrderCreator interface {
	CreateBatchOrders(ctx context.Context, req service.BatchOrderRequest) ([]service.BatchOrderResult, error)
}

// PaymentIntentCreator opens payment intents for orders.
// Satisfied by *service.PaymentService.
type PaymentIntentCreator interface {
	CreateIntents(ctx context.Context, sessionID uuid.UUID, orderIDs []string, method database.PaymentMethod) ([]database.Payment, error)
}

// IdempotencyStore remembers checkout responses per session and key.
// Satisfied by *idempotency.RedisStore.
type IdempotencyStore interface {
	TryLock(ctx context.Context, scope, key string) (bool, error)
	Release(ctx context.Context, scope, key string) error
	Remember(ctx context.Context, scope, key string, value []byte) error
	Recall(ctx context.Context, scope, key string) ([]byte, bool, error)
}

// CheckoutHandler turns a diner's cart into orders and payment intents.
type CheckoutHandler struct {
	orders   BatchOrderCreator
	payments PaymentIntentCreator
	idem     IdempotencyStore
}

// NewCheckoutHandler creates a new CheckoutHandler. idem may be nil, in which
// case Idempotency-Key headers are ignored.
func NewCheckoutHandler(orders BatchOrderCreator, payments PaymentIntentCreator, idem IdempotencyStore) *CheckoutHandler {
	return &CheckoutHandler{orders: orders, payments: payments, idem: idem}
}

// RegisterRoutes registers the checkout endpoint on the given Chi router.
func (h *CheckoutHandler) RegisterRoutes(r chi.Router) {
	r.Post("/orders/checkout", h.Checkout)
}

// --- Request / Response types ---

type checkoutRequest struct {
	SessionID     string                          `json:"sessionId"`
	CustomerName  string                          `json:"customerName"`
	CustomerPhone string                          `json:"customerPhone"`
	Notes         string                          `json:"notes"`
	PaymentMethod string                          `json:"paymentMethod"`
	Merchants     map[string]checkoutMerchantCart `json:"merchants"`
}

type checkoutMerchantCart struct {
	MerchantName string             `json:"merchantName"`
	Items        []checkoutCartItem `json:"items"`
}

type checkoutCartItem struct {
	MenuID    string          `json:"menuId"`
	MenuName  string          `json:"menuName"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	ImageURL  string          `json:"imageUrl"`
}

type checkoutResponse struct {
	Orders       []service.BatchOrderResult `json:"orders"`
	Payments     []paymentResponse          `json:"payments"`
	PaymentError string                     `json:"paymentError,omitempty"`
}

func (req checkoutRequest) toBatch() service.BatchOrderRequest {
	merchants := make(map[string]service.MerchantCart, len(req.Merchants))
	for id, cart := range req.Merchants {
		items := make([]service.CartItem, len(cart.Items))
		for i, it := range cart.Items {
			items[i] = service.CartItem{
				MenuID:    it.MenuID,
				MenuName:  it.MenuName,
				Quantity:  it.Quantity,
				UnitPrice: it.UnitPrice,
				ImageURL:  it.ImageURL,
			}
		}
		merchants[id] = service.MerchantCart{MerchantName: cart.MerchantName, Items: items}
	}
	return service.BatchOrderRequest{
		SessionID:     req.SessionID,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		Notes:         req.Notes,
		Merchants:     merchants,
	}
}

// --- Handlers ---

// Checkout places one order per merchant in the cart, then opens a payment
// intent for each. Orders that were placed are returned even when opening
// the intents fails; the diner retries that step via POST /payments/intents.
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	method, err := service.ParsePaymentMethod(req.PaymentMethod)
	if err != nil {
		writeError(w, r, err)
		return
	}

	key := strings.TrimSpace(r.Header.Get(idempotencyHeader))
	if len(key) > maxIdempotencyKey {
		writeError(w, r, apperr.Validation("%s must be at most %d characters", idempotencyHeader, maxIdempotencyKey))
		return
	}
	useIdem := h.idem != nil && key != ""
	scope := "checkout:" + req.SessionID

	if useIdem {
		if body, ok, err := h.idem.Recall(r.Context(), scope, key); err != nil {
			writeError(w, r, err)
			return
		} else if ok {
			metrics.CheckoutsTotal.WithLabelValues(metrics.CheckoutReplayed).Inc()
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Idempotent-Replayed", "true")
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write(body)
			return
		}

		locked, err := h.idem.TryLock(r.Context(), scope, key)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if !locked {
			writeError(w, r, apperr.Conflict("checkout with this %s is already in progress", idempotencyHeader))
			return
		}
	}

	results, err := h.orders.CreateBatchOrders(r.Context(), req.toBatch())
	if err != nil {
		if useIdem {
			// Nothing was placed, so the same key may be retried.
			if relErr := h.idem.Release(context.WithoutCancel(r.Context()), scope, key); relErr != nil {
				logging.FromCtx(r.Context()).Warn("release idempotency lock", "err", relErr)
			}
		}
		writeError(w, r, err)
		return
	}

	resp := checkoutResponse{Orders: results, Payments: []paymentResponse{}}

	orderIDs := make([]string, len(results))
	for i, res := range results {
		orderIDs[i] = res.OrderID
	}
	// The service accepted the session id, so it parses.
	sessionID, _ := uuid.Parse(req.SessionID)
	payments, err := h.payments.CreateIntents(r.Context(), sessionID, orderIDs, method)
	if err != nil {
		logging.FromCtx(r.Context()).Error("create payment intents after checkout", "err", err, "orders", orderIDs)
		resp.PaymentError = apperr.From(err).Message
	} else {
		for _, p := range payments {
			resp.Payments = append(resp.Payments, toPaymentResponse(p))
		}
	}

	body, err := json.Marshal(resp)
	if err != nil {
		writeError(w, r, err)
		return
	}
	body = append(body, '\n')
	if useIdem {
		if err := h.idem.Remember(context.WithoutCancel(r.Context()), scope, key, body); err != nil {
			logging.FromCtx(r.Context()).Warn("remember checkout response", "err", err)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_, _ = w.Write(body)
}
