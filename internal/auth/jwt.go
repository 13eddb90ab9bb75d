package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	AccessTokenTTL  = 15 * time.Minute
	RefreshTokenTTL = 7 * 24 * time.Hour

	kindAccess  = "access"
	kindRefresh = "refresh"
)

// Claims identify an authenticated merchant or admin.
// MerchantID is empty for admins.
type Claims struct {
	UserID     string `json:"user_id"`
	MerchantID string `json:"merchant_id,omitempty"`
	Role       string `json:"role"`
	Kind       string `json:"typ"`
	jwt.RegisteredClaims
}

// RefreshClaims carry just enough to reissue an access token.
type RefreshClaims struct {
	Role string `json:"role"`
	Kind string `json:"typ"`
	jwt.RegisteredClaims
}

func GenerateToken(secret, userID, merchantID, role string) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:     userID,
		MerchantID: merchantID,
		Role:       role,
		Kind:       kindAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(AccessTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func GenerateRefreshToken(secret, userID, role string) (string, error) {
	now := time.Now()
	claims := RefreshClaims{
		Role: role,
		Kind: kindRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(RefreshTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ValidateToken parses an access token. Refresh tokens are rejected.
func ValidateToken(secret, tokenStr string) (*Claims, error) {
	claims := &Claims{}
	if err := parse(secret, tokenStr, claims); err != nil {
		return nil, err
	}
	if claims.Kind != kindAccess {
		return nil, fmt.Errorf("not an access token")
	}
	return claims, nil
}

// ValidateRefreshToken parses a refresh token. Access tokens are rejected.
func ValidateRefreshToken(secret, tokenStr string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := parse(secret, tokenStr, claims); err != nil {
		return nil, err
	}
	if claims.Kind != kindRefresh || claims.Subject == "" {
		return nil, fmt.Errorf("not a refresh token")
	}
	return claims, nil
}

func parse(secret, tokenStr string, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return err
	}
	if !token.Valid {
		return fmt.Errorf("invalid token")
	}
	return nil
}
