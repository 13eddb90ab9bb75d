package router

import (
	"net/http"

	"github.com/arifwidianto08/ngantri-sub000/internal/config"
	"github.com/arifwidianto08/ngantri-sub000/internal/database"
	"github.com/arifwidianto08/ngantri-sub000/internal/enum"
	"github.com/arifwidianto08/ngantri-sub000/internal/handler"
	"github.com/arifwidianto08/ngantri-sub000/internal/logging"
	mw "github.com/arifwidianto08/ngantri-sub000/internal/middleware"
	"github.com/arifwidianto08/ngantri-sub000/internal/service"
	"github.com/arifwidianto08/ngantri-sub000/internal/ws"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps are the long-lived collaborators the routes are built from.
type Deps struct {
	Config   *config.Config
	DB       service.DB
	Hub      *ws.Hub
	Notifier service.Notifier
	// Idempotency is optional; nil disables Idempotency-Key handling.
	Idempotency handler.IdempotencyStore
}

// New creates a Chi router with all application routes wired up.
// Applies authentication, merchant scoping, and role-based middleware as needed.
func New(d Deps) chi.Router {
	cfg := d.Config
	queries := database.New(d.DB)

	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.RequestID)
	r.Use(mw.RequestLogger)
	r.Use(mw.Metrics)
	r.Use(middleware.Recoverer)

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.App.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key"},
		ExposedHeaders:   []string{"Idempotent-Replayed"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// Services
	newOrderStore := func(db database.DBTX) service.OrderStore {
		return database.New(db)
	}
	newPaymentStore := func(db database.DBTX) service.PaymentStore {
		return database.New(db)
	}
	orderService := service.NewOrderService(d.DB, newOrderStore, d.Notifier)
	paymentService := service.NewPaymentService(d.DB, newPaymentStore, d.Notifier)

	// Handlers
	authHandler := handler.NewAuthHandler(queries, cfg.Auth.JWTSecret)
	sessionHandler := handler.NewSessionHandler(queries, cfg.Session.TTL)
	merchantHandler := handler.NewMerchantHandler(queries)
	categoryHandler := handler.NewCategoryHandler(queries)
	menuHandler := handler.NewMenuHandler(queries)
	checkoutHandler := handler.NewCheckoutHandler(orderService, paymentService, d.Idempotency)
	paymentHandler := handler.NewPaymentHandler(paymentService)
	orderHandler := handler.NewOrderHandler(orderService, queries)
	adminHandler := handler.NewAdminHandler(queries, cfg.Location())

	authHandler.RegisterRoutes(r)

	// Diner routes (anonymous, identified by session)
	sessionHandler.RegisterRoutes(r)
	checkoutHandler.RegisterRoutes(r)
	paymentHandler.RegisterRoutes(r)

	// WebSocket routes (handle auth internally)
	r.Get("/ws/merchants/{mid}", ws.ServeMerchantWS(d.Hub, cfg.Auth.JWTSecret))
	r.Get("/ws/sessions/{sid}", ws.ServeSessionWS(d.Hub, queries))

	// Merchant directory and merchant-scoped routes
	r.Get("/merchants", merchantHandler.List)
	r.Route("/merchants/{mid}", func(r chi.Router) {
		merchantHandler.RegisterPublicRoutes(r)
		categoryHandler.RegisterPublicRoutes(r)
		menuHandler.RegisterPublicRoutes(r)

		// The owning merchant (or an admin) only
		r.Group(func(r chi.Router) {
			r.Use(mw.Authenticate(cfg.Auth.JWTSecret))
			r.Use(mw.RequireMerchant)

			merchantHandler.RegisterRoutes(r)
			categoryHandler.RegisterRoutes(r)
			menuHandler.RegisterRoutes(r)
			paymentHandler.RegisterMerchantRoutes(r)
			r.Route("/orders", orderHandler.RegisterRoutes)
		})
	})

	// Admin-only routes
	r.Route("/admin", func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.Auth.JWTSecret))
		r.Use(mw.RequireRole(enum.RoleAdmin))

		adminHandler.RegisterRoutes(r)
		r.Route("/orders", orderHandler.RegisterAdminRoutes)
	})

	logging.Base().Info("router initialized")
	return r
}
