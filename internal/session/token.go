package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken is returned when a session-auth token fails signature or
// expiry validation.
var ErrInvalidToken = errors.New("invalid session token")

// sessionClaims is the JWT payload for an optional session-auth bearer
// token: a stateless credential a client can hold instead of resending a
// bare wallet address on every request.
//
// Adapted from the teacher's x402/token.go Claims (which carried a
// consumable RequestsTotal credit count). This gateway's sessions are not
// metered — a settlement buys unlimited future access to that skill for
// that wallet (spec invariant 3/4) — so the only claim needed beyond the
// registered set is the wallet address itself.
type sessionClaims struct {
	jwt.RegisteredClaims
	Wallet string `json:"wallet"`
}

// TokenManager issues and validates session-auth bearer tokens.
type TokenManager struct {
	secret []byte
	expiry time.Duration
}

// NewTokenManager creates a TokenManager with the given HMAC secret and
// token lifetime. A zero lifetime selects the 30-day default.
func NewTokenManager(secret []byte, expiry time.Duration) *TokenManager {
	if expiry == 0 {
		expiry = 30 * 24 * time.Hour
	}
	return &TokenManager{secret: secret, expiry: expiry}
}

// Issue signs a new session-auth token asserting wallet's identity.
func (m *TokenManager) Issue(wallet string) (string, error) {
	now := time.Now()
	claims := &sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   wallet,
			ID:        uuid.New().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expiry)),
		},
		Wallet: wallet,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("signing session token: %w", err)
	}
	return signed, nil
}

// WalletFromToken validates tokenString and returns the wallet it asserts.
func (m *TokenManager) WalletFromToken(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &sessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return "", ErrInvalidToken
	}
	claims, ok := token.Claims.(*sessionClaims)
	if !ok || !token.Valid || claims.Wallet == "" {
		return "", ErrInvalidToken
	}
	return claims.Wallet, nil
}
