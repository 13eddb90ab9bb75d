package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/arifwidianto08/ngantri-sub000/internal/auth"
	"github.com/arifwidianto08/ngantri-sub000/internal/logging"
	"github.com/arifwidianto08/ngantri-sub000/internal/metrics"
	"github.com/arifwidianto08/ngantri-sub000/internal/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

const testSecret = "test-secret"

func TestAuthMiddleware_ValidToken(t *testing.T) {
	token, _ := auth.GenerateToken(testSecret, "U1", "M1", "MERCHANT")

	handler := middleware.Authenticate(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := middleware.ClaimsFromContext(r.Context())
		if claims == nil {
			t.Fatal("expected claims in context")
		}
		if claims.UserID != "U1" {
			t.Errorf("user ID: got %v, want U1", claims.UserID)
		}
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	handler := middleware.Authenticate(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	}))

	req := httptest.NewRequest("GET", "/", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusUnauthorized)
	}
	var body map[string]string
	json.NewDecoder(rr.Body).Decode(&body)
	if body["code"] != "UNAUTHORIZED" {
		t.Errorf("code = %q, want UNAUTHORIZED", body["code"])
	}
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	handler := middleware.Authenticate(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer invalid-token")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestAuthMiddleware_RefreshTokenRejected(t *testing.T) {
	refresh, _ := auth.GenerateRefreshToken(testSecret, "U1", "MERCHANT")

	handler := middleware.Authenticate(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+refresh)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}

// merchantRouter mounts RequireMerchant on /merchants/{mid}/test.
func merchantRouter() http.Handler {
	r := chi.NewRouter()
	r.With(middleware.Authenticate(testSecret), middleware.RequireMerchant).
		Get("/merchants/{mid}/test", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
	return r
}

func TestRequireMerchant(t *testing.T) {
	ownToken, _ := auth.GenerateToken(testSecret, "U1", "M1", "MERCHANT")
	adminToken, _ := auth.GenerateToken(testSecret, "A1", "", "ADMIN")

	tests := []struct {
		name  string
		token string
		path  string
		want  int
	}{
		{"own merchant", ownToken, "/merchants/M1/test", http.StatusOK},
		{"other merchant", ownToken, "/merchants/M2/test", http.StatusForbidden},
		{"admin any merchant", adminToken, "/merchants/M2/test", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.path, nil)
			req.Header.Set("Authorization", "Bearer "+tt.token)
			rr := httptest.NewRecorder()
			merchantRouter().ServeHTTP(rr, req)

			if rr.Code != tt.want {
				t.Errorf("status: got %d, want %d", rr.Code, tt.want)
			}
		})
	}
}

func TestRequireRole_Allowed(t *testing.T) {
	token, _ := auth.GenerateToken(testSecret, "A1", "", "ADMIN")

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	handler := middleware.Authenticate(testSecret)(middleware.RequireRole("ADMIN")(inner))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
}

func TestRequireRole_Denied(t *testing.T) {
	token, _ := auth.GenerateToken(testSecret, "U1", "M1", "MERCHANT")

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	})

	handler := middleware.Authenticate(testSecret)(middleware.RequireRole("ADMIN")(inner))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusForbidden)
	}
}

func TestRequestLogger_AttachesLogger(t *testing.T) {
	r := chi.NewRouter()
	r.Use(chimw.RequestID, middleware.RequestLogger, middleware.Metrics)
	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		if logging.FromCtx(r.Context()) == logging.Base() {
			t.Error("expected request-scoped logger")
		}
		w.WriteHeader(http.StatusNoContent)
	})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest("GET", "/ping", nil))

	if rr.Code != http.StatusNoContent {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusNoContent)
	}
}

func TestMetrics_RecordsSubMillisecondDuration(t *testing.T) {
	r := chi.NewRouter()
	r.Use(middleware.Metrics)
	r.Get("/metrics-fast/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/metrics-fast/42", nil))

	var m dto.Metric
	obs := metrics.HTTPDuration.WithLabelValues("GET", "/metrics-fast/{id}")
	if err := obs.(prometheus.Metric).Write(&m); err != nil {
		t.Fatalf("write metric: %v", err)
	}
	h := m.GetHistogram()
	if h.GetSampleCount() != 1 {
		t.Fatalf("sample count: got %d, want 1", h.GetSampleCount())
	}
	if sum := h.GetSampleSum(); sum <= 0 || sum >= 1 {
		t.Errorf("sample sum: got %v seconds, want a small positive value", sum)
	}

	if got := testutil.ToFloat64(metrics.HTTPRequests.WithLabelValues("GET", "/metrics-fast/{id}", "No Content")); got != 1 {
		t.Errorf("requests counter: got %v, want 1", got)
	}
}
