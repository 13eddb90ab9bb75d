package handler_test

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/arifwidianto08/ngantri-sub000/internal/database"
	"github.com/arifwidianto08/ngantri-sub000/internal/handler"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// --- Mock store ---

type mockSessionStore struct {
	sessions map[uuid.UUID]database.BuyerSession
	orders   []database.Order
	items    []database.OrderItem
	payments []database.Payment
}

func newMockSessionStore() *mockSessionStore {
	return &mockSessionStore{sessions: make(map[uuid.UUID]database.BuyerSession)}
}

func (m *mockSessionStore) CreateSession(_ context.Context, arg database.CreateSessionParams) (database.BuyerSession, error) {
	s := database.BuyerSession{
		ID:          arg.ID,
		TableNumber: arg.TableNumber,
		ExpiresAt:   arg.ExpiresAt,
		CreatedAt:   time.Now(),
	}
	m.sessions[s.ID] = s
	return s, nil
}

func (m *mockSessionStore) GetSession(_ context.Context, id uuid.UUID) (database.BuyerSession, error) {
	s, ok := m.sessions[id]
	if !ok {
		return database.BuyerSession{}, pgx.ErrNoRows
	}
	return s, nil
}

func (m *mockSessionStore) ListOrdersBySession(_ context.Context, sessionID uuid.UUID) ([]database.Order, error) {
	var out []database.Order
	for _, o := range m.orders {
		if o.SessionID == sessionID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *mockSessionStore) ListOrderItemsByOrderIDs(_ context.Context, orderIDs []string) ([]database.OrderItem, error) {
	var out []database.OrderItem
	for _, it := range m.items {
		for _, id := range orderIDs {
			if it.OrderID == id {
				out = append(out, it)
			}
		}
	}
	return out, nil
}

func (m *mockSessionStore) ListPaymentsByOrderIDs(_ context.Context, orderIDs []string) ([]database.Payment, error) {
	var out []database.Payment
	for _, p := range m.payments {
		for _, id := range orderIDs {
			if p.OrderID == id {
				out = append(out, p)
			}
		}
	}
	return out, nil
}

func setupSessionRouter(store *mockSessionStore) *chi.Mux {
	h := handler.NewSessionHandler(store, 12*time.Hour)
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r
}

// --- Tests ---

func TestCreateSession_WithTable(t *testing.T) {
	store := newMockSessionStore()
	r := setupSessionRouter(store)

	rr := doRequest(t, r, "POST", "/sessions", map[string]string{"table_number": " A12 "})
	assertStatus(t, rr, http.StatusCreated)

	resp := decodeMap(t, rr)
	if resp["table_number"] != "A12" {
		t.Errorf("table_number = %v, want A12", resp["table_number"])
	}
	id, err := uuid.Parse(resp["id"].(string))
	if err != nil {
		t.Fatalf("id is not a uuid: %v", err)
	}
	s := store.sessions[id]
	if ttl := time.Until(s.ExpiresAt); ttl < 11*time.Hour || ttl > 12*time.Hour {
		t.Errorf("session expires in %v, want about 12h", ttl)
	}
}

func TestCreateSession_NoBody(t *testing.T) {
	r := setupSessionRouter(newMockSessionStore())

	rr := doRequest(t, r, "POST", "/sessions", nil)
	assertStatus(t, rr, http.StatusCreated)
	if resp := decodeMap(t, rr); resp["table_number"] != nil {
		t.Errorf("table_number = %v, want null", resp["table_number"])
	}
}

func TestCreateSession_TableTooLong(t *testing.T) {
	r := setupSessionRouter(newMockSessionStore())

	rr := doRequest(t, r, "POST", "/sessions", map[string]string{"table_number": strings.Repeat("9", 21)})
	assertStatus(t, rr, http.StatusBadRequest)
}

func TestGetSession(t *testing.T) {
	store := newMockSessionStore()
	sid := uuid.New()
	store.sessions[sid] = database.BuyerSession{ID: sid, ExpiresAt: time.Now().Add(time.Hour)}
	r := setupSessionRouter(store)

	assertStatus(t, doRequest(t, r, "GET", "/sessions/"+sid.String(), nil), http.StatusOK)
	assertStatus(t, doRequest(t, r, "GET", "/sessions/"+uuid.NewString(), nil), http.StatusNotFound)
	assertStatus(t, doRequest(t, r, "GET", "/sessions/not-a-uuid", nil), http.StatusBadRequest)
}

func TestListSessionOrders_IncludesItemsAndPayments(t *testing.T) {
	store := newMockSessionStore()
	sid := uuid.New()
	other := uuid.New()
	store.sessions[sid] = database.BuyerSession{ID: sid, ExpiresAt: time.Now().Add(time.Hour)}
	store.orders = []database.Order{
		{ID: "O1", SessionID: sid, MerchantID: "M1", TotalAmount: makeNumeric("30000"), Status: database.OrderStatusPending},
		{ID: "O2", SessionID: sid, MerchantID: "M2", TotalAmount: makeNumeric("15000"), Status: database.OrderStatusReady},
		{ID: "O3", SessionID: other, MerchantID: "M1", TotalAmount: makeNumeric("1000"), Status: database.OrderStatusPending},
	}
	store.items = []database.OrderItem{
		{ID: "I1", OrderID: "O1", MenuID: "MN1", MenuName: "Bakso Urat", Quantity: 2, UnitPrice: makeNumeric("15000"), Subtotal: makeNumeric("30000")},
		{ID: "I2", OrderID: "O2", MenuID: "MN2", MenuName: "Es Teh", Quantity: 3, UnitPrice: makeNumeric("5000"), Subtotal: makeNumeric("15000")},
	}
	store.payments = []database.Payment{
		{ID: "P1", OrderID: "O1", Amount: makeNumeric("30000"), Method: database.PaymentMethodCash, Status: database.PaymentStatusPending},
	}
	r := setupSessionRouter(store)

	rr := doRequest(t, r, "GET", "/sessions/"+sid.String()+"/orders", nil)
	assertStatus(t, rr, http.StatusOK)

	orders := decodeList(t, rr)
	if len(orders) != 2 {
		t.Fatalf("got %d orders, want 2", len(orders))
	}
	first := orders[0]
	if first["total_amount"] != "30000" {
		t.Errorf("total_amount = %v, want \"30000\"", first["total_amount"])
	}
	if items := first["items"].([]interface{}); len(items) != 1 {
		t.Errorf("O1 items = %d, want 1", len(items))
	}
	if payments := first["payments"].([]interface{}); len(payments) != 1 {
		t.Errorf("O1 payments = %d, want 1", len(payments))
	}
	if payments := orders[1]["payments"].([]interface{}); len(payments) != 0 {
		t.Errorf("O2 payments = %d, want empty list", len(payments))
	}
}

func TestListSessionOrders_UnknownSession(t *testing.T) {
	r := setupSessionRouter(newMockSessionStore())

	rr := doRequest(t, r, "GET", "/sessions/"+uuid.NewString()+"/orders", nil)
	assertStatus(t, rr, http.StatusNotFound)
	if resp := decodeMap(t, rr); resp["code"] != "NOT_FOUND" {
		t.Errorf("code = %v", resp["code"])
	}
}
