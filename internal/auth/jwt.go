// Package auth identifies the principal behind a request.
package auth

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	reqcontext "github.com/prajwalbharadwajbm/fundledger/internal/context"
	"github.com/prajwalbharadwajbm/fundledger/internal/models"
)

// Claims carries the principal address in the subject
type Claims struct {
	jwt.RegisteredClaims
}

// TokenManager issues and verifies HS256 bearer tokens
type TokenManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager creates a token manager. A ttl <= 0 means 24h.
func NewTokenManager(secret, issuer string, ttl time.Duration) *TokenManager {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenManager{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue creates a signed token whose subject is principal
func (m *TokenManager) Issue(principal models.Address) (string, error) {
	if principal.IsZero() {
		return "", models.ErrInvalidAddress.With("address", principal)
	}
	now := m.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   principal.String(),
			Issuer:    m.issuer,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature, issuer and expiry and returns the principal
func (m *TokenManager) Verify(tokenStr string) (models.Address, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !token.Valid {
		return "", models.ErrInvalidToken
	}

	principal, err := models.ParseAddress(claims.Subject)
	if err != nil || principal.IsZero() {
		return "", models.ErrInvalidToken.With("sub", claims.Subject)
	}
	return principal, nil
}

// Middleware puts the principal of a valid bearer token into the request
// context. Requests without a token pass through anonymously; requests with
// an invalid one are rejected.
func (m *TokenManager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			next.ServeHTTP(w, r)
			return
		}

		tokenStr, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			writeUnauthorized(w, models.ErrInvalidToken)
			return
		}

		principal, err := m.Verify(strings.TrimSpace(tokenStr))
		if err != nil {
			writeUnauthorized(w, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(reqcontext.WithCaller(r.Context(), principal)))
	})
}

func writeUnauthorized(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("WWW-Authenticate", `Bearer realm="fundledger"`)
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(models.NewErrorResponse(err))
}
