package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/arifwidianto08/ngantri-sub000/internal/apperr"
	"github.com/arifwidianto08/ngantri-sub000/internal/database"
	"github.com/arifwidianto08/ngantri-sub000/internal/enum"
	"github.com/arifwidianto08/ngantri-sub000/internal/events"
	"github.com/arifwidianto08/ngantri-sub000/internal/ids"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PaymentStore defines the DB methods needed for payment intents.
// Satisfied by *database.Queries (and its WithTx variant).
type PaymentStore interface {
	ListOrdersByIDs(ctx context.Context, ids []string) ([]database.Order, error)
	GetMerchantOrder(ctx context.Context, arg database.GetMerchantOrderParams) (database.Order, error)
	GetLivePaymentByOrder(ctx context.Context, orderID string) (database.Payment, error)
	GetPayment(ctx context.Context, id string) (database.Payment, error)
	CreatePayment(ctx context.Context, arg database.CreatePaymentParams) (database.Payment, error)
	SettlePayment(ctx context.Context, arg database.SettlePaymentParams) (database.Payment, error)
}

// NewPaymentStore creates a PaymentStore from a DBTX (pool or tx).
type NewPaymentStore func(db database.DBTX) PaymentStore

// PaymentService creates and settles payment intents.
type PaymentService struct {
	db       DB
	newStore NewPaymentStore
	notifier Notifier
}

// NewPaymentService creates a new PaymentService. notifier may be nil.
func NewPaymentService(db DB, newStore NewPaymentStore, notifier Notifier) *PaymentService {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &PaymentService{db: db, newStore: newStore, notifier: notifier}
}

// ParsePaymentMethod maps a request value to a method; empty means cash.
func ParsePaymentMethod(s string) (database.PaymentMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(database.PaymentMethodCash):
		return database.PaymentMethodCash, nil
	case string(database.PaymentMethodQris):
		return database.PaymentMethodQris, nil
	}
	return "", apperr.Validation("invalid payment method %q", s)
}

// CreateIntents creates one pending intent per order of the session. An order
// that already has a pending or paid intent gets that intent back instead.
func (s *PaymentService) CreateIntents(ctx context.Context, sessionID uuid.UUID, orderIDs []string, method database.PaymentMethod) ([]database.Payment, error) {
	orderIDs = dedupe(orderIDs)
	if len(orderIDs) == 0 {
		return nil, apperr.Validation("at least one order id is required")
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("begin tx: %w", err))
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	orders, err := store.ListOrdersByIDs(ctx, orderIDs)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("list orders: %w", err))
	}
	orderByID := make(map[string]database.Order, len(orders))
	for _, o := range orders {
		orderByID[o.ID] = o
	}

	payments := make([]database.Payment, 0, len(orderIDs))
	for _, id := range orderIDs {
		order, ok := orderByID[id]
		if !ok || order.SessionID != sessionID {
			return nil, apperr.NotFound("order %s not found", id)
		}
		if order.Status == database.OrderStatusCancelled {
			return nil, apperr.BadRequest("order %s is cancelled", id)
		}

		existing, err := store.GetLivePaymentByOrder(ctx, id)
		if err == nil {
			payments = append(payments, existing)
			continue
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.Internal(fmt.Errorf("get payment: %w", err))
		}

		p, err := store.CreatePayment(ctx, database.CreatePaymentParams{
			ID:      ids.New(),
			OrderID: id,
			Amount:  order.TotalAmount,
			Method:  method,
		})
		if err != nil {
			if isLivePaymentConflict(err) {
				return nil, apperr.Conflict("payment for order %s is being created, please retry", id)
			}
			return nil, apperr.Internal(fmt.Errorf("create payment: %w", err))
		}
		payments = append(payments, p)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, apperr.Internal(fmt.Errorf("commit tx: %w", err))
	}
	return payments, nil
}

// Settle marks a merchant's pending intent as paid or failed.
func (s *PaymentService) Settle(ctx context.Context, merchantID, paymentID string, status database.PaymentStatus, reference string) (database.Payment, error) {
	if status != database.PaymentStatusPaid && status != database.PaymentStatusFailed {
		return database.Payment{}, apperr.Validation("status must be paid or failed")
	}

	store := s.newStore(s.db)

	payment, err := store.GetPayment(ctx, paymentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Payment{}, apperr.NotFound("payment not found")
		}
		return database.Payment{}, apperr.Internal(fmt.Errorf("get payment: %w", err))
	}

	order, err := store.GetMerchantOrder(ctx, database.GetMerchantOrderParams{
		ID:         payment.OrderID,
		MerchantID: merchantID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Payment{}, apperr.NotFound("payment not found")
		}
		return database.Payment{}, apperr.Internal(fmt.Errorf("get order: %w", err))
	}

	if payment.Status != database.PaymentStatusPending {
		return database.Payment{}, apperr.Conflict("payment is already %s", payment.Status)
	}

	updated, err := store.SettlePayment(ctx, database.SettlePaymentParams{
		ID:        paymentID,
		Status:    status,
		Reference: database.Text(strings.TrimSpace(reference)),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Payment{}, apperr.Conflict("payment status changed concurrently, please retry")
		}
		return database.Payment{}, apperr.Internal(fmt.Errorf("settle payment: %w", err))
	}

	s.notifier.Notify(ctx, events.Event{
		Type:       enum.EventPaymentUpdated,
		MerchantID: order.MerchantID,
		SessionID:  order.SessionID.String(),
		OrderID:    order.ID,
		Data: map[string]any{
			"payment_id": updated.ID,
			"status":     updated.Status,
			"method":     updated.Method,
		},
	})

	return updated, nil
}

// isLivePaymentConflict reports a unique violation on the one-live-intent
// index, raised when a concurrent request created the intent first.
func isLivePaymentConflict(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && pgErr.ConstraintName == "payments_order_live_key"
	}
	return false
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
