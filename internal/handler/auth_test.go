package handler_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/arifwidianto08/ngantri-sub000/internal/auth"
	"github.com/arifwidianto08/ngantri-sub000/internal/database"
	"github.com/arifwidianto08/ngantri-sub000/internal/handler"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
)

// --- Mock store ---

type mockAuthStore struct {
	merchants map[string]database.Merchant // keyed by ID
	admins    map[string]database.Admin    // keyed by ID
}

func newMockAuthStore() *mockAuthStore {
	return &mockAuthStore{
		merchants: make(map[string]database.Merchant),
		admins:    make(map[string]database.Admin),
	}
}

func (m *mockAuthStore) GetMerchant(_ context.Context, id string) (database.Merchant, error) {
	mer, ok := m.merchants[id]
	if !ok {
		return database.Merchant{}, pgx.ErrNoRows
	}
	return mer, nil
}

func (m *mockAuthStore) GetMerchantByPhone(_ context.Context, phone string) (database.Merchant, error) {
	for _, mer := range m.merchants {
		if mer.Phone == phone {
			return mer, nil
		}
	}
	return database.Merchant{}, pgx.ErrNoRows
}

func (m *mockAuthStore) GetAdminByID(_ context.Context, id string) (database.Admin, error) {
	a, ok := m.admins[id]
	if !ok {
		return database.Admin{}, pgx.ErrNoRows
	}
	return a, nil
}

func (m *mockAuthStore) GetAdminByUsername(_ context.Context, username string) (database.Admin, error) {
	for _, a := range m.admins {
		if a.Username == username {
			return a, nil
		}
	}
	return database.Admin{}, pgx.ErrNoRows
}

// --- Helpers ---

func setupAuthRouter(t *testing.T) (*chi.Mux, *mockAuthStore) {
	t.Helper()
	store := newMockAuthStore()
	store.merchants["M1"] = database.Merchant{
		ID:           "M1",
		Name:         "Bakso Pak Kumis",
		Phone:        "081234567890",
		PasswordHash: hashPassword(t, "merchant-pass"),
		IsAvailable:  true,
	}
	store.admins["A1"] = database.Admin{
		ID:           "A1",
		Username:     "admin",
		FullName:     "Food Court Admin",
		PasswordHash: hashPassword(t, "admin-pass"),
	}

	h := handler.NewAuthHandler(store, testJWTSecret)
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r, store
}

// --- Login tests ---

func TestMerchantLogin_ValidCredentials(t *testing.T) {
	r, _ := setupAuthRouter(t)

	rr := doRequest(t, r, "POST", "/auth/merchant/login", map[string]string{
		"phone":    "081234567890",
		"password": "merchant-pass",
	})
	assertStatus(t, rr, http.StatusOK)

	resp := decodeMap(t, rr)
	access, _ := resp["access_token"].(string)
	claims, err := auth.ValidateToken(testJWTSecret, access)
	if err != nil {
		t.Fatalf("access token invalid: %v", err)
	}
	if claims.MerchantID != "M1" || claims.Role != "MERCHANT" {
		t.Errorf("claims = %+v", claims)
	}
	if resp["refresh_token"] == "" {
		t.Error("expected refresh_token")
	}
	user := resp["user"].(map[string]interface{})
	if user["name"] != "Bakso Pak Kumis" {
		t.Errorf("user name = %v", user["name"])
	}
}

func TestMerchantLogin_WrongPassword(t *testing.T) {
	r, _ := setupAuthRouter(t)

	rr := doRequest(t, r, "POST", "/auth/merchant/login", map[string]string{
		"phone":    "081234567890",
		"password": "wrong",
	})
	assertStatus(t, rr, http.StatusUnauthorized)
	if resp := decodeMap(t, rr); resp["error"] != "invalid credentials" {
		t.Errorf("error = %v", resp["error"])
	}
}

func TestMerchantLogin_UnknownPhone(t *testing.T) {
	r, _ := setupAuthRouter(t)

	rr := doRequest(t, r, "POST", "/auth/merchant/login", map[string]string{
		"phone":    "089999999999",
		"password": "merchant-pass",
	})
	assertStatus(t, rr, http.StatusUnauthorized)
}

func TestMerchantLogin_MissingFields(t *testing.T) {
	r, _ := setupAuthRouter(t)

	rr := doRequest(t, r, "POST", "/auth/merchant/login", map[string]string{"phone": "081234567890"})
	assertStatus(t, rr, http.StatusBadRequest)
	if resp := decodeMap(t, rr); resp["code"] != "VALIDATION_ERROR" {
		t.Errorf("code = %v", resp["code"])
	}
}

func TestMerchantLogin_EmptyBody(t *testing.T) {
	r, _ := setupAuthRouter(t)

	rr := doRequest(t, r, "POST", "/auth/merchant/login", nil)
	assertStatus(t, rr, http.StatusBadRequest)
}

func TestAdminLogin_ValidCredentials(t *testing.T) {
	r, _ := setupAuthRouter(t)

	rr := doRequest(t, r, "POST", "/auth/admin/login", map[string]string{
		"username": "admin",
		"password": "admin-pass",
	})
	assertStatus(t, rr, http.StatusOK)

	resp := decodeMap(t, rr)
	claims, err := auth.ValidateToken(testJWTSecret, resp["access_token"].(string))
	if err != nil {
		t.Fatalf("access token invalid: %v", err)
	}
	if claims.Role != "ADMIN" || claims.MerchantID != "" {
		t.Errorf("claims = %+v", claims)
	}
}

func TestAdminLogin_WrongPassword(t *testing.T) {
	r, _ := setupAuthRouter(t)

	rr := doRequest(t, r, "POST", "/auth/admin/login", map[string]string{
		"username": "admin",
		"password": "merchant-pass",
	})
	assertStatus(t, rr, http.StatusUnauthorized)
}

// --- Refresh tests ---

func TestRefresh_Merchant(t *testing.T) {
	r, _ := setupAuthRouter(t)
	refresh, _ := auth.GenerateRefreshToken(testJWTSecret, "M1", "MERCHANT")

	rr := doRequest(t, r, "POST", "/auth/refresh", map[string]string{"refresh_token": refresh})
	assertStatus(t, rr, http.StatusOK)

	resp := decodeMap(t, rr)
	claims, err := auth.ValidateToken(testJWTSecret, resp["access_token"].(string))
	if err != nil {
		t.Fatalf("access token invalid: %v", err)
	}
	if claims.MerchantID != "M1" {
		t.Errorf("merchant = %q, want M1", claims.MerchantID)
	}
}

func TestRefresh_DeletedMerchant(t *testing.T) {
	r, store := setupAuthRouter(t)
	refresh, _ := auth.GenerateRefreshToken(testJWTSecret, "M1", "MERCHANT")
	delete(store.merchants, "M1")

	rr := doRequest(t, r, "POST", "/auth/refresh", map[string]string{"refresh_token": refresh})
	assertStatus(t, rr, http.StatusUnauthorized)
}

func TestRefresh_AccessTokenRejected(t *testing.T) {
	r, _ := setupAuthRouter(t)
	access, _ := auth.GenerateToken(testJWTSecret, "A1", "", "ADMIN")

	rr := doRequest(t, r, "POST", "/auth/refresh", map[string]string{"refresh_token": access})
	assertStatus(t, rr, http.StatusUnauthorized)
}

func TestRefresh_Missing(t *testing.T) {
	r, _ := setupAuthRouter(t)

	rr := doRequest(t, r, "POST", "/auth/refresh", map[string]string{})
	assertStatus(t, rr, http.StatusBadRequest)
}
