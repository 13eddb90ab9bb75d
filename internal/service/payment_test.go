package service

import (
	"context"
	"testing"

	"github.com/arifwidianto08/ngantri-sub000/internal/apperr"
	"github.com/arifwidianto08/ngantri-sub000/internal/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// mockPaymentStore is an in-memory PaymentStore.
type mockPaymentStore struct {
	orders   map[string]database.Order
	payments map[string]database.Payment
	created  int

	createErr error
}

func newMockPaymentStore(orders ...database.Order) *mockPaymentStore {
	m := &mockPaymentStore{orders: map[string]database.Order{}, payments: map[string]database.Payment{}}
	for _, o := range orders {
		m.orders[o.ID] = o
	}
	return m
}

func (m *mockPaymentStore) ListOrdersByIDs(ctx context.Context, ids []string) ([]database.Order, error) {
	var out []database.Order
	for _, id := range ids {
		if o, ok := m.orders[id]; ok {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *mockPaymentStore) GetMerchantOrder(ctx context.Context, arg database.GetMerchantOrderParams) (database.Order, error) {
	o, ok := m.orders[arg.ID]
	if !ok || o.MerchantID != arg.MerchantID {
		return database.Order{}, pgx.ErrNoRows
	}
	return o, nil
}

func (m *mockPaymentStore) GetLivePaymentByOrder(ctx context.Context, orderID string) (database.Payment, error) {
	for _, p := range m.payments {
		if p.OrderID == orderID && p.Status != database.PaymentStatusFailed {
			return p, nil
		}
	}
	return database.Payment{}, pgx.ErrNoRows
}

func (m *mockPaymentStore) GetPayment(ctx context.Context, id string) (database.Payment, error) {
	p, ok := m.payments[id]
	if !ok {
		return database.Payment{}, pgx.ErrNoRows
	}
	return p, nil
}

func (m *mockPaymentStore) CreatePayment(ctx context.Context, arg database.CreatePaymentParams) (database.Payment, error) {
	if m.createErr != nil {
		return database.Payment{}, m.createErr
	}
	m.created++
	p := database.Payment{
		ID:      arg.ID,
		OrderID: arg.OrderID,
		Amount:  arg.Amount,
		Method:  arg.Method,
		Status:  database.PaymentStatusPending,
	}
	m.payments[p.ID] = p
	return p, nil
}

func (m *mockPaymentStore) SettlePayment(ctx context.Context, arg database.SettlePaymentParams) (database.Payment, error) {
	p, ok := m.payments[arg.ID]
	if !ok || p.Status != database.PaymentStatusPending {
		return database.Payment{}, pgx.ErrNoRows
	}
	p.Status = arg.Status
	p.Reference = arg.Reference
	m.payments[p.ID] = p
	return p, nil
}

func newTestPaymentService(store *mockPaymentStore) (*PaymentService, *mockDB, *recordingNotifier) {
	db := &mockDB{tx: &mockTx{}}
	n := &recordingNotifier{}
	return NewPaymentService(db, func(database.DBTX) PaymentStore { return store }, n), db, n
}

func pendingOrder(id, merchantID, total string) database.Order {
	return database.Order{
		ID:          id,
		MerchantID:  merchantID,
		SessionID:   testSessionID,
		TotalAmount: makeNumeric(total),
		Status:      database.OrderStatusPending,
	}
}

func TestParsePaymentMethod(t *testing.T) {
	tests := []struct {
		in      string
		want    database.PaymentMethod
		wantErr bool
	}{
		{"", database.PaymentMethodCash, false},
		{"cash", database.PaymentMethodCash, false},
		{"QRIS", database.PaymentMethodQris, false},
		{"card", "", true},
	}
	for _, tt := range tests {
		got, err := ParsePaymentMethod(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParsePaymentMethod(%q) err = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParsePaymentMethod(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCreateIntents_OnePerOrder(t *testing.T) {
	store := newMockPaymentStore(pendingOrder("O1", "M1", "68000"), pendingOrder("O2", "M2", "90000"))
	svc, db, _ := newTestPaymentService(store)

	payments, err := svc.CreateIntents(context.Background(), testSessionID, []string{"O1", "O2", "O1"}, database.PaymentMethodCash)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(payments) != 2 {
		t.Fatalf("payments = %d, want 2", len(payments))
	}
	for _, p := range payments {
		if p.Status != database.PaymentStatusPending {
			t.Errorf("status = %s, want pending", p.Status)
		}
	}
	if !numericEquals(payments[0].Amount, "68000") || !numericEquals(payments[1].Amount, "90000") {
		t.Error("intent amount must equal order total")
	}
	if !db.tx.committed {
		t.Error("transaction not committed")
	}
}

func TestCreateIntents_Idempotent(t *testing.T) {
	store := newMockPaymentStore(pendingOrder("O1", "M1", "68000"))
	svc, _, _ := newTestPaymentService(store)

	first, err := svc.CreateIntents(context.Background(), testSessionID, []string{"O1"}, database.PaymentMethodCash)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	second, err := svc.CreateIntents(context.Background(), testSessionID, []string{"O1"}, database.PaymentMethodQris)
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if first[0].ID != second[0].ID {
		t.Errorf("second call created a new intent")
	}
	if store.created != 1 {
		t.Errorf("created = %d, want 1", store.created)
	}
}

func TestCreateIntents_CancelledOrder(t *testing.T) {
	o := pendingOrder("O1", "M1", "68000")
	o.Status = database.OrderStatusCancelled
	svc, db, _ := newTestPaymentService(newMockPaymentStore(o))

	_, err := svc.CreateIntents(context.Background(), testSessionID, []string{"O1"}, database.PaymentMethodCash)
	assertKind(t, err, apperr.KindBadRequest)
	if db.tx.committed {
		t.Error("committed despite cancelled order")
	}
}

func TestCreateIntents_OrderOfAnotherSession(t *testing.T) {
	svc, _, _ := newTestPaymentService(newMockPaymentStore(pendingOrder("O1", "M1", "68000")))

	_, err := svc.CreateIntents(context.Background(), uuid.New(), []string{"O1"}, database.PaymentMethodCash)
	assertKind(t, err, apperr.KindNotFound)
}

func TestCreateIntents_NoOrders(t *testing.T) {
	svc, db, _ := newTestPaymentService(newMockPaymentStore())

	_, err := svc.CreateIntents(context.Background(), testSessionID, []string{" ", ""}, database.PaymentMethodCash)
	assertKind(t, err, apperr.KindValidation)
	if db.begins != 0 {
		t.Error("transaction started for empty request")
	}
}

func TestCreateIntents_ConcurrentCreate(t *testing.T) {
	store := newMockPaymentStore(pendingOrder("O1", "M1", "68000"))
	store.createErr = &pgconn.PgError{Code: "23505", ConstraintName: "payments_order_live_key"}
	svc, _, _ := newTestPaymentService(store)

	_, err := svc.CreateIntents(context.Background(), testSessionID, []string{"O1"}, database.PaymentMethodCash)
	assertKind(t, err, apperr.KindConflict)
}

func TestSettle_Paid(t *testing.T) {
	store := newMockPaymentStore(pendingOrder("O1", "M1", "68000"))
	svc, _, n := newTestPaymentService(store)
	created, err := svc.CreateIntents(context.Background(), testSessionID, []string{"O1"}, database.PaymentMethodQris)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := svc.Settle(context.Background(), "M1", created[0].ID, database.PaymentStatusPaid, "QR-123")
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if got.Status != database.PaymentStatusPaid || got.Reference.String != "QR-123" {
		t.Errorf("payment = %+v", got)
	}
	if len(n.events) != 1 || n.events[0].Type != "payment.updated" || n.events[0].MerchantID != "M1" {
		t.Errorf("events = %+v", n.events)
	}

	// a settled intent cannot be settled again
	_, err = svc.Settle(context.Background(), "M1", created[0].ID, database.PaymentStatusFailed, "")
	assertKind(t, err, apperr.KindConflict)
}

func TestSettle_OtherMerchant(t *testing.T) {
	store := newMockPaymentStore(pendingOrder("O1", "M1", "68000"))
	svc, _, _ := newTestPaymentService(store)
	created, _ := svc.CreateIntents(context.Background(), testSessionID, []string{"O1"}, database.PaymentMethodCash)

	_, err := svc.Settle(context.Background(), "M2", created[0].ID, database.PaymentStatusPaid, "")
	assertKind(t, err, apperr.KindNotFound)
}

func TestSettle_InvalidStatus(t *testing.T) {
	svc, _, _ := newTestPaymentService(newMockPaymentStore())
	_, err := svc.Settle(context.Background(), "M1", "P1", database.PaymentStatusPending, "")
	assertKind(t, err, apperr.KindValidation)
}

func TestSettle_NotFound(t *testing.T) {
	svc, _, _ := newTestPaymentService(newMockPaymentStore())
	_, err := svc.Settle(context.Background(), "M1", "P-NOPE", database.PaymentStatusPaid, "")
	assertKind(t, err, apperr.KindNotFound)
}
