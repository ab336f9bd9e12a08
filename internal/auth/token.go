package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken covers every token verification failure: bad signature,
// expiry, malformed payload, missing claims. Callers treat all of them as
// "unauthenticated", never as degraded access.
var ErrInvalidToken = errors.New("invalid token")

// SessionClaims are the identity claims embedded in the session cookie.
type SessionClaims struct {
	JellyfinID string `json:"jellyfinId"`
	Name       string `json:"name"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies session tokens. Verification is purely
// local; the identity provider is never consulted after sign-in.
type TokenService struct {
	secret []byte
	expiry time.Duration
}

func NewTokenService(secret string, expiry time.Duration) *TokenService {
	return &TokenService{secret: []byte(secret), expiry: expiry}
}

func (s *TokenService) Expiry() time.Duration {
	return s.expiry
}

// Issue creates a signed session token for the given external identity.
func (s *TokenService) Issue(jellyfinID, name string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, SessionClaims{
		JellyfinID: jellyfinID,
		Name:       name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   jellyfinID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
		},
	})

	return token.SignedString(s.secret)
}

// Verify parses and validates a session token, failing closed on any error.
func (s *TokenService) Verify(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.JellyfinID == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
