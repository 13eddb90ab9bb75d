package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/arifwidianto08/ngantri-sub000/internal/apperr"
	"github.com/arifwidianto08/ngantri-sub000/internal/database"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// OrderUpdater is the service method behind the status endpoint.
// Satisfied by *service.OrderService.
type OrderUpdater interface {
	UpdateStatus(ctx context.Context, merchantID, orderID string, next database.OrderStatus) (database.Order, error)
}

// orderDetailStore loads the rows hanging off a set of orders.
type orderDetailStore interface {
	ListOrderItemsByOrderIDs(ctx context.Context, orderIDs []string) ([]database.OrderItem, error)
	ListPaymentsByOrderIDs(ctx context.Context, orderIDs []string) ([]database.Payment, error)
}

// OrderStore defines the database methods needed by order read endpoints.
// Satisfied by *database.Queries; narrow interface for testability.
type OrderStore interface {
	ListOrders(ctx context.Context, arg database.ListOrdersParams) ([]database.Order, error)
	GetMerchantOrder(ctx context.Context, arg database.GetMerchantOrderParams) (database.Order, error)
	orderDetailStore
}

// OrderHandler serves merchant and admin order endpoints.
type OrderHandler struct {
	svc   OrderUpdater
	store OrderStore
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(svc OrderUpdater, store OrderStore) *OrderHandler {
	return &OrderHandler{svc: svc, store: store}
}

// RegisterRoutes registers merchant order endpoints.
// Expected to be mounted inside a merchant-scoped subrouter: /merchants/{mid}/orders
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Put("/{id}/status", h.UpdateStatus)
}

// RegisterAdminRoutes registers the cross-merchant listing: /admin/orders
func (h *OrderHandler) RegisterAdminRoutes(r chi.Router) {
	r.Get("/", h.ListAll)
}

// --- Request / Response types ---

type orderResponse struct {
	ID            string               `json:"id"`
	SessionID     uuid.UUID            `json:"session_id"`
	MerchantID    string               `json:"merchant_id"`
	CustomerName  string               `json:"customer_name"`
	CustomerPhone string               `json:"customer_phone"`
	Notes         *string              `json:"notes"`
	TotalAmount   decimal.Decimal      `json:"total_amount"`
	Status        database.OrderStatus `json:"status"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

type orderItemResponse struct {
	ID           string          `json:"id"`
	MenuID       string          `json:"menu_id"`
	MenuName     string          `json:"menu_name"`
	MenuImageURL *string         `json:"menu_image_url"`
	Quantity     int32           `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Subtotal     decimal.Decimal `json:"subtotal"`
}

type paymentResponse struct {
	ID        string                 `json:"id"`
	OrderID   string                 `json:"order_id"`
	Amount    decimal.Decimal        `json:"amount"`
	Method    database.PaymentMethod `json:"method"`
	Status    database.PaymentStatus `json:"status"`
	Reference *string                `json:"reference"`
	PaidAt    *time.Time             `json:"paid_at"`
	CreatedAt time.Time              `json:"created_at"`
}

type orderDetailResponse struct {
	orderResponse
	Items    []orderItemResponse `json:"items"`
	Payments []paymentResponse   `json:"payments"`
}

type orderListResponse struct {
	Orders []orderResponse `json:"orders"`
	Limit  int32           `json:"limit"`
	Offset int32           `json:"offset"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func toOrderResponse(o database.Order) orderResponse {
	return orderResponse{
		ID:            o.ID,
		SessionID:     o.SessionID,
		MerchantID:    o.MerchantID,
		CustomerName:  o.CustomerName,
		CustomerPhone: o.CustomerPhone,
		Notes:         textPtr(o.Notes),
		TotalAmount:   money(o.TotalAmount),
		Status:        o.Status,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
}

func toOrderItemResponse(i database.OrderItem) orderItemResponse {
	return orderItemResponse{
		ID:           i.ID,
		MenuID:       i.MenuID,
		MenuName:     i.MenuName,
		MenuImageURL: textPtr(i.MenuImageUrl),
		Quantity:     i.Quantity,
		UnitPrice:    money(i.UnitPrice),
		Subtotal:     money(i.Subtotal),
	}
}

func toPaymentResponse(p database.Payment) paymentResponse {
	return paymentResponse{
		ID:        p.ID,
		OrderID:   p.OrderID,
		Amount:    money(p.Amount),
		Method:    p.Method,
		Status:    p.Status,
		Reference: textPtr(p.Reference),
		PaidAt:    timePtr(p.PaidAt),
		CreatedAt: p.CreatedAt,
	}
}

// orderDetails attaches items and payments to each order using two queries.
func orderDetails(ctx context.Context, store orderDetailStore, orders []database.Order) ([]orderDetailResponse, error) {
	out := make([]orderDetailResponse, len(orders))
	if len(orders) == 0 {
		return out, nil
	}

	ids := make([]string, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
	}

	items, err := store.ListOrderItemsByOrderIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	payments, err := store.ListPaymentsByOrderIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	itemsByOrder := make(map[string][]orderItemResponse, len(orders))
	for _, it := range items {
		itemsByOrder[it.OrderID] = append(itemsByOrder[it.OrderID], toOrderItemResponse(it))
	}
	paymentsByOrder := make(map[string][]paymentResponse, len(orders))
	for _, p := range payments {
		paymentsByOrder[p.OrderID] = append(paymentsByOrder[p.OrderID], toPaymentResponse(p))
	}

	for i, o := range orders {
		out[i] = orderDetailResponse{
			orderResponse: toOrderResponse(o),
			Items:         itemsByOrder[o.ID],
			Payments:      paymentsByOrder[o.ID],
		}
		if out[i].Items == nil {
			out[i].Items = []orderItemResponse{}
		}
		if out[i].Payments == nil {
			out[i].Payments = []paymentResponse{}
		}
	}
	return out, nil
}

// --- Handlers ---

// List returns the merchant's orders, newest first.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, database.Text(chi.URLParam(r, "mid")))
}

// ListAll returns orders across all merchants, optionally filtered by ?merchant_id=.
func (h *OrderHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, database.Text(r.URL.Query().Get("merchant_id")))
}

func (h *OrderHandler) list(w http.ResponseWriter, r *http.Request, merchantID pgtype.Text) {
	limit, offset, err := pagination(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	status, err := parseOrderStatus(r.URL.Query().Get("status"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	orders, err := h.store.ListOrders(r.Context(), database.ListOrdersParams{
		MerchantID: merchantID,
		Status:     status,
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := make([]orderResponse, len(orders))
	for i, o := range orders {
		resp[i] = toOrderResponse(o)
	}
	writeJSON(w, http.StatusOK, orderListResponse{Orders: resp, Limit: limit, Offset: offset})
}

// Get returns one of the merchant's orders with its items and payments.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	order, err := h.store.GetMerchantOrder(r.Context(), database.GetMerchantOrderParams{
		ID:         chi.URLParam(r, "id"),
		MerchantID: chi.URLParam(r, "mid"),
	})
	if err != nil {
		writeError(w, r, notFound(err, "order not found"))
		return
	}

	details, err := orderDetails(r.Context(), h.store, []database.Order{order})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, details[0])
}

// UpdateStatus advances an order through its lifecycle.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Status == "" {
		writeError(w, r, apperr.Validation("status is required"))
		return
	}

	order, err := h.svc.UpdateStatus(r.Context(), chi.URLParam(r, "mid"), chi.URLParam(r, "id"), database.OrderStatus(req.Status))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(order))
}
