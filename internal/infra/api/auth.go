package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ===== Service-token primitives =====
//
// The trigger endpoints are called by an external cron-like caller that
// presents a Bearer JWT signed with the shared HMAC secret.

type ServiceClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type ServiceAuth struct {
	secret []byte
	ttl    time.Duration
}

func NewServiceAuth(secret string, ttl time.Duration) *ServiceAuth {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &ServiceAuth{secret: []byte(secret), ttl: ttl}
}

// Mint issues a trigger token. Exposed for ops tooling and tests.
func (a *ServiceAuth) Mint() (string, error) {
	now := time.Now()
	claims := ServiceClaims{
		Role: "scheduler",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
			Subject:   "pass-trigger",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

// ParseFromRequest extracts and verifies the Bearer token.
func (a *ServiceAuth) ParseFromRequest(r *http.Request) (*ServiceClaims, error) {
	hdr := r.Header.Get("Authorization")
	if hdr == "" || !strings.HasPrefix(strings.ToLower(hdr), "bearer ") {
		return nil, errors.New("missing token")
	}
	return a.parse(strings.TrimSpace(hdr[7:]))
}

func (a *ServiceAuth) parse(tok string) (*ServiceClaims, error) {
	claims := &ServiceClaims{}
	tkn, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (any, error) {
		return a.secret, nil
	})
	if err != nil || !tkn.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
