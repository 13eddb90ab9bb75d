package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/arifwidianto08/ngantri-sub000/internal/apperr"
	"github.com/arifwidianto08/ngantri-sub000/internal/auth"
	"github.com/arifwidianto08/ngantri-sub000/internal/database"
	"github.com/arifwidianto08/ngantri-sub000/internal/enum"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"
)

// AuthStore defines the database methods needed by auth handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type AuthStore interface {
	GetMerchant(ctx context.Context, id string) (database.Merchant, error)
	GetMerchantByPhone(ctx context.Context, phone string) (database.Merchant, error)
	GetAdminByID(ctx context.Context, id string) (database.Admin, error)
	GetAdminByUsername(ctx context.Context, username string) (database.Admin, error)
}

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	store     AuthStore
	jwtSecret string
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(store AuthStore, jwtSecret string) *AuthHandler {
	return &AuthHandler{store: store, jwtSecret: jwtSecret}
}

// RegisterRoutes registers auth endpoints on the given Chi router.
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/merchant/login", h.MerchantLogin)
	r.Post("/auth/admin/login", h.AdminLogin)
	r.Post("/auth/refresh", h.Refresh)
}

// --- Request / Response types ---

type merchantLoginRequest struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type adminLoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	User         userResponse `json:"user"`
}

type userResponse struct {
	ID         string `json:"id"`
	MerchantID string `json:"merchant_id,omitempty"`
	Name       string `json:"name"`
	Role       string `json:"role"`
}

// identity is whoever a token pair is issued to.
type identity struct {
	id         string
	merchantID string
	name       string
	role       string
}

// --- Handlers ---

// MerchantLogin handles phone + password authentication.
func (h *AuthHandler) MerchantLogin(w http.ResponseWriter, r *http.Request) {
	var req merchantLoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	phone := strings.TrimSpace(req.Phone)
	if phone == "" || req.Password == "" {
		writeError(w, r, apperr.Validation("phone and password are required"))
		return
	}

	merchant, err := h.store.GetMerchantByPhone(r.Context(), phone)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, r, apperr.Unauthorized("invalid credentials"))
			return
		}
		writeError(w, r, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(merchant.PasswordHash), []byte(req.Password)); err != nil {
		writeError(w, r, apperr.Unauthorized("invalid credentials"))
		return
	}

	h.respondWithTokens(w, r, identity{id: merchant.ID, merchantID: merchant.ID, name: merchant.Name, role: enum.RoleMerchant})
}

// AdminLogin handles username + password authentication.
func (h *AuthHandler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var req adminLoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	if req.Username == "" || req.Password == "" {
		writeError(w, r, apperr.Validation("username and password are required"))
		return
	}

	admin, err := h.store.GetAdminByUsername(r.Context(), req.Username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, r, apperr.Unauthorized("invalid credentials"))
			return
		}
		writeError(w, r, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)); err != nil {
		writeError(w, r, apperr.Unauthorized("invalid credentials"))
		return
	}

	h.respondWithTokens(w, r, identity{id: admin.ID, name: admin.FullName, role: enum.RoleAdmin})
}

// Refresh exchanges a valid refresh token for a new access + refresh token pair.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	if req.RefreshToken == "" {
		writeError(w, r, apperr.Validation("refresh_token is required"))
		return
	}

	claims, err := auth.ValidateRefreshToken(h.jwtSecret, req.RefreshToken)
	if err != nil {
		writeError(w, r, apperr.Unauthorized("invalid refresh token"))
		return
	}

	var who identity
	switch claims.Role {
	case enum.RoleMerchant:
		merchant, err := h.store.GetMerchant(r.Context(), claims.Subject)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				writeError(w, r, apperr.Unauthorized("user not found"))
				return
			}
			writeError(w, r, err)
			return
		}
		who = identity{id: merchant.ID, merchantID: merchant.ID, name: merchant.Name, role: enum.RoleMerchant}
	case enum.RoleAdmin:
		admin, err := h.store.GetAdminByID(r.Context(), claims.Subject)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				writeError(w, r, apperr.Unauthorized("user not found"))
				return
			}
			writeError(w, r, err)
			return
		}
		who = identity{id: admin.ID, name: admin.FullName, role: enum.RoleAdmin}
	default:
		writeError(w, r, apperr.Unauthorized("invalid refresh token"))
		return
	}

	h.respondWithTokens(w, r, who)
}

// --- Helpers ---

func (h *AuthHandler) respondWithTokens(w http.ResponseWriter, r *http.Request, who identity) {
	accessToken, err := auth.GenerateToken(h.jwtSecret, who.id, who.merchantID, who.role)
	if err != nil {
		writeError(w, r, err)
		return
	}

	refreshToken, err := auth.GenerateRefreshToken(h.jwtSecret, who.id, who.role)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User: userResponse{
			ID:         who.id,
			MerchantID: who.merchantID,
			Name:       who.name,
			Role:       who.role,
		},
	})
}
