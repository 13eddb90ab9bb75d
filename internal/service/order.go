package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/arifwidianto08/ngantri-sub000/internal/apperr"
	"github.com/arifwidianto08/ngantri-sub000/internal/database"
	"github.com/arifwidianto08/ngantri-sub000/internal/enum"
	"github.com/arifwidianto08/ngantri-sub000/internal/events"
	"github.com/arifwidianto08/ngantri-sub000/internal/ids"
	"github.com/arifwidianto08/ngantri-sub000/internal/logging"
	"github.com/arifwidianto08/ngantri-sub000/internal/metrics"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// phonePattern accepts Indonesian mobile numbers: 08xx, 628xx or +628xx.
var phonePattern = regexp.MustCompile(`^(\+62|62|0)8[1-9][0-9]{6,10}$`)

// TxBeginner starts a new database transaction.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// DB runs single statements and starts transactions.
// Satisfied by *pgxpool.Pool.
type DB interface {
	database.DBTX
	TxBeginner
}

// OrderStore defines the DB methods needed to place and advance orders.
// Satisfied by *database.Queries (and its WithTx variant).
type OrderStore interface {
	GetSession(ctx context.Context, id uuid.UUID) (database.BuyerSession, error)
	ListMerchantsByIDs(ctx context.Context, ids []string) ([]database.Merchant, error)
	ListMenusByIDs(ctx context.Context, ids []string) ([]database.Menu, error)
	CreateOrdersWithItems(ctx context.Context, orders database.CreateOrdersParams, items database.CreateOrderItemsParams) error
	GetMerchantOrder(ctx context.Context, arg database.GetMerchantOrderParams) (database.Order, error)
	UpdateOrderStatus(ctx context.Context, arg database.UpdateOrderStatusParams) (database.Order, error)
}

// NewOrderStore creates an OrderStore from a DBTX (pool or tx).
type NewOrderStore func(db database.DBTX) OrderStore

// Notifier receives order and payment changes after they are committed.
// Satisfied by *events.Notifier.
type Notifier interface {
	Notify(ctx context.Context, ev events.Event)
}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, events.Event) {}

// BatchOrderRequest is one checkout: a cart spanning one or more merchants.
type BatchOrderRequest struct {
	SessionID     string
	CustomerName  string
	CustomerPhone string
	Notes         string
	Merchants     map[string]MerchantCart
}

// MerchantCart is the part of a cart sold by a single merchant.
type MerchantCart struct {
	MerchantName string
	Items        []CartItem
}

// CartItem is one line of a merchant cart.
type CartItem struct {
	MenuID    string
	MenuName  string
	Quantity  int
	UnitPrice decimal.Decimal
	ImageURL  string
}

// BatchOrderResult is the order created for one merchant of a checkout.
type BatchOrderResult struct {
	MerchantID   string          `json:"merchantId"`
	MerchantName string          `json:"merchantName"`
	OrderID      string          `json:"orderId"`
	TotalAmount  decimal.Decimal `json:"totalAmount"`
}

// OrderService handles order business logic.
type OrderService struct {
	db       DB
	newStore NewOrderStore
	notifier Notifier
	now      func() time.Time
}

// NewOrderService creates a new OrderService. notifier may be nil.
func NewOrderService(db DB, newStore NewOrderStore, notifier Notifier) *OrderService {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &OrderService{db: db, newStore: newStore, notifier: notifier, now: time.Now}
}

// CreateBatchOrders splits a multi-merchant cart into one pending order per
// merchant and persists all of them, with their items, in one transaction.
// Either every order is created or none is.
func (s *OrderService) CreateBatchOrders(ctx context.Context, req BatchOrderRequest) (results []BatchOrderResult, err error) {
	defer func() { recordCheckout(err) }()

	// --- Validate request shape (no DB access) ---
	sessionID, merchantIDs, err := validateBatchRequest(req)
	if err != nil {
		return nil, err
	}

	// --- Confirm session ---
	session, err := s.newStore(s.db).GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("session not found")
		}
		return nil, apperr.Internal(fmt.Errorf("get session: %w", err))
	}
	if !session.ExpiresAt.After(s.now()) {
		return nil, apperr.BadRequest("session expired")
	}

	// --- Begin transaction ---
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("begin tx: %w", err))
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	// --- Bulk-fetch referenced merchants and menus ---
	merchants, err := store.ListMerchantsByIDs(ctx, merchantIDs)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("list merchants: %w", err))
	}
	merchantByID := make(map[string]database.Merchant, len(merchants))
	for _, m := range merchants {
		merchantByID[m.ID] = m
	}

	menus, err := store.ListMenusByIDs(ctx, collectMenuIDs(req.Merchants, merchantIDs))
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("list menus: %w", err))
	}
	menuByID := make(map[string]database.Menu, len(menus))
	for _, m := range menus {
		menuByID[m.ID] = m
	}

	// --- Validate and build rows ---
	logger := logging.FromCtx(ctx)
	var orders database.CreateOrdersParams
	var items database.CreateOrderItemsParams

	for _, merchantID := range merchantIDs {
		merchant, ok := merchantByID[merchantID]
		if !ok {
			return nil, apperr.NotFound("merchant %s not found", merchantID)
		}
		if !merchant.IsAvailable {
			return nil, apperr.BadRequest("merchant %s is not available", merchant.Name)
		}

		orderID := ids.New()
		total := decimal.Zero

		for i, item := range req.Merchants[merchantID].Items {
			menu, ok := menuByID[item.MenuID]
			if !ok {
				return nil, apperr.NotFound("menu %s not found", item.MenuID)
			}
			if menu.MerchantID != merchantID {
				return nil, apperr.BadRequest("menu %s does not belong to merchant %s", menu.Name, merchant.Name)
			}
			if !menu.IsAvailable {
				return nil, apperr.BadRequest("menu %s is not available", menu.Name)
			}
			if item.Quantity < 1 || item.Quantity > enum.MaxItemQuantity {
				return nil, apperr.Validation("item[%d] of merchant %s: quantity must be between 1 and %d", i, merchant.Name, enum.MaxItemQuantity)
			}
			if !item.UnitPrice.IsPositive() {
				return nil, apperr.Validation("item[%d] of merchant %s: unit price must be positive", i, merchant.Name)
			}
			if !item.UnitPrice.Equal(item.UnitPrice.Round(2)) {
				return nil, apperr.Validation("item[%d] of merchant %s: unit price must have at most 2 decimal places", i, merchant.Name)
			}

			// The cart price is charged; it may never undercut the live price.
			live := database.NumericToDecimal(menu.Price)
			if item.UnitPrice.LessThan(live) {
				return nil, apperr.BadRequest("price of %s changed to %s, refresh the cart", menu.Name, live.String())
			}
			if !live.Equal(item.UnitPrice) {
				logger.Warn("cart price differs from menu price",
					"menu_id", menu.ID, "cart_price", item.UnitPrice.String(), "menu_price", live.String())
			}

			name := item.MenuName
			if strings.TrimSpace(name) == "" {
				name = menu.Name
			}
			image := database.Text(item.ImageURL)
			if !image.Valid {
				image = menu.ImageUrl
			}

			subtotal := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
			total = total.Add(subtotal)

			items.IDs = append(items.IDs, ids.New())
			items.OrderIDs = append(items.OrderIDs, orderID)
			items.MenuIDs = append(items.MenuIDs, menu.ID)
			items.MenuNames = append(items.MenuNames, name)
			items.MenuImageUrls = append(items.MenuImageUrls, image)
			items.Quantities = append(items.Quantities, int32(item.Quantity))
			items.UnitPrices = append(items.UnitPrices, database.DecimalToNumeric(item.UnitPrice))
			items.Subtotals = append(items.Subtotals, database.DecimalToNumeric(subtotal))
		}

		orders.IDs = append(orders.IDs, orderID)
		orders.MerchantIDs = append(orders.MerchantIDs, merchantID)
		orders.TotalAmounts = append(orders.TotalAmounts, database.DecimalToNumeric(total))

		merchantName := req.Merchants[merchantID].MerchantName
		if strings.TrimSpace(merchantName) == "" {
			merchantName = merchant.Name
		}
		results = append(results, BatchOrderResult{
			MerchantID:   merchantID,
			MerchantName: merchantName,
			OrderID:      orderID,
			TotalAmount:  total,
		})
	}

	orders.SessionID = sessionID
	orders.CustomerName = strings.TrimSpace(req.CustomerName)
	orders.CustomerPhone = strings.TrimSpace(req.CustomerPhone)
	orders.Notes = database.Text(strings.TrimSpace(req.Notes))

	// --- Insert orders and items ---
	if err := store.CreateOrdersWithItems(ctx, orders, items); err != nil {
		return nil, apperr.Internal(fmt.Errorf("create orders: %w", err))
	}

	// --- Commit ---
	if err := tx.Commit(ctx); err != nil {
		return nil, apperr.Internal(fmt.Errorf("commit tx: %w", err))
	}

	metrics.OrdersCreated.Add(float64(len(results)))
	for _, r := range results {
		s.notifier.Notify(ctx, events.Event{
			Type:       enum.EventOrderCreated,
			MerchantID: r.MerchantID,
			SessionID:  sessionID.String(),
			OrderID:    r.OrderID,
			Data: map[string]any{
				"status":       database.OrderStatusPending,
				"total_amount": r.TotalAmount,
			},
		})
	}

	return results, nil
}

// UpdateStatus moves a merchant's order to next. The write is compare-and-set
// on the status read, so a concurrent change yields a conflict.
func (s *OrderService) UpdateStatus(ctx context.Context, merchantID, orderID string, next database.OrderStatus) (database.Order, error) {
	if !isValidOrderStatus(next) {
		return database.Order{}, apperr.Validation("invalid status %q", next)
	}

	store := s.newStore(s.db)

	current, err := store.GetMerchantOrder(ctx, database.GetMerchantOrderParams{
		ID:         orderID,
		MerchantID: merchantID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Order{}, apperr.NotFound("order not found")
		}
		return database.Order{}, apperr.Internal(fmt.Errorf("get order: %w", err))
	}

	if err := validateStatusTransition(current.Status, next); err != nil {
		return database.Order{}, apperr.Conflict("%s", err.Error())
	}

	updated, err := store.UpdateOrderStatus(ctx, database.UpdateOrderStatusParams{
		ID:         orderID,
		MerchantID: merchantID,
		Status:     next,
		From:       current.Status,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Order{}, apperr.Conflict("order status changed concurrently, please retry")
		}
		return database.Order{}, apperr.Internal(fmt.Errorf("update order status: %w", err))
	}

	s.notifier.Notify(ctx, events.Event{
		Type:       enum.EventOrderStatusChanged,
		MerchantID: updated.MerchantID,
		SessionID:  updated.SessionID.String(),
		OrderID:    updated.ID,
		Data: map[string]any{
			"from": current.Status,
			"to":   updated.Status,
		},
	})

	return updated, nil
}

// --- Helpers ---

// validateBatchRequest checks everything that needs no database and returns
// the parsed session id and the merchant ids in a stable order.
func validateBatchRequest(req BatchOrderRequest) (uuid.UUID, []string, error) {
	sessionID, err := uuid.Parse(strings.TrimSpace(req.SessionID))
	if err != nil {
		return uuid.Nil, nil, apperr.Validation("invalid session_id")
	}

	name := strings.TrimSpace(req.CustomerName)
	if name == "" {
		return uuid.Nil, nil, apperr.Validation("customer name is required")
	}
	if len([]rune(name)) > enum.MaxCustomerName {
		return uuid.Nil, nil, apperr.Validation("customer name must be at most %d characters", enum.MaxCustomerName)
	}
	if !phonePattern.MatchString(strings.TrimSpace(req.CustomerPhone)) {
		return uuid.Nil, nil, apperr.Validation("invalid phone number")
	}
	if len([]rune(req.Notes)) > enum.MaxNotesLength {
		return uuid.Nil, nil, apperr.Validation("notes must be at most %d characters", enum.MaxNotesLength)
	}

	if len(req.Merchants) == 0 {
		return uuid.Nil, nil, apperr.Validation("at least one merchant is required")
	}

	merchantIDs := make([]string, 0, len(req.Merchants))
	for id, cart := range req.Merchants {
		if enum.PlaceholderMerchantIDs[strings.TrimSpace(id)] {
			return uuid.Nil, nil, apperr.Validation("invalid merchant id %q", id)
		}
		if len(cart.Items) == 0 {
			return uuid.Nil, nil, apperr.Validation("merchant %s has no items", id)
		}
		for i, item := range cart.Items {
			if strings.TrimSpace(item.MenuID) == "" {
				return uuid.Nil, nil, apperr.Validation("item[%d] of merchant %s: menu id is required", i, id)
			}
		}
		merchantIDs = append(merchantIDs, id)
	}
	sort.Strings(merchantIDs)

	return sessionID, merchantIDs, nil
}

func collectMenuIDs(carts map[string]MerchantCart, merchantIDs []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, mid := range merchantIDs {
		for _, item := range carts[mid].Items {
			if !seen[item.MenuID] {
				seen[item.MenuID] = true
				out = append(out, item.MenuID)
			}
		}
	}
	return out
}

func recordCheckout(err error) {
	switch {
	case err == nil:
		metrics.CheckoutsTotal.WithLabelValues(metrics.CheckoutOK).Inc()
	case apperr.KindOf(err) == apperr.KindInternal:
		metrics.CheckoutsTotal.WithLabelValues(metrics.CheckoutFailed).Inc()
	default:
		metrics.CheckoutsTotal.WithLabelValues(metrics.CheckoutRejected).Inc()
	}
}

// allowedTransitions defines valid status transitions.
// Key is current status, value is the set of statuses it can transition to.
var allowedTransitions = map[database.OrderStatus][]database.OrderStatus{
	database.OrderStatusPending:   {database.OrderStatusConfirmed, database.OrderStatusCancelled},
	database.OrderStatusConfirmed: {database.OrderStatusPreparing, database.OrderStatusCancelled},
	database.OrderStatusPreparing: {database.OrderStatusReady, database.OrderStatusCancelled},
	database.OrderStatusReady:     {database.OrderStatusCompleted},
}

// validateStatusTransition checks if the transition from current to next is allowed.
func validateStatusTransition(current, next database.OrderStatus) error {
	allowed, ok := allowedTransitions[current]
	if !ok {
		return fmt.Errorf("cannot transition from %s", current)
	}
	for _, s := range allowed {
		if s == next {
			return nil
		}
	}
	return fmt.Errorf("cannot transition from %s to %s", current, next)
}

func isValidOrderStatus(s database.OrderStatus) bool {
	switch s {
	case database.OrderStatusPending, database.OrderStatusConfirmed, database.OrderStatusPreparing,
		database.OrderStatusReady, database.OrderStatusCompleted, database.OrderStatusCancelled:
		return true
	}
	return false
}
