// Package auth provides the Google OAuth sign-in flow, JWT session tokens
// and the middleware that resolves a request's principal.
//
// Flow: /auth/google/login redirects to Google's consent screen; the
// callback exchanges the code for the user's profile, the profile service
// provisions a profile if needed, and a signed JWT lands in an HttpOnly
// cookie. Subsequent requests carry the cookie; the middleware validates it
// and puts the principal id in the request context.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionLifetime is how long a sign-in lasts before the user has to go
// through the consent screen again.
const SessionLifetime = 7 * 24 * time.Hour

const issuer = "presenteio"

// TokenService signs and verifies the session JWTs. The same HMAC secret is
// used for both; rotate it to invalidate every outstanding session.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a TokenService. The secret should be at least 32
// random bytes in production (openssl rand -hex 32).
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret)}, nil
}

// claims carries only the registered fields; the principal id travels in
// the standard Subject claim.
type claims struct {
	jwt.RegisteredClaims
}

// Generate signs a session token for the given principal.
func (s *TokenService) Generate(principalID string) (string, error) {
	return s.GenerateWithDuration(principalID, SessionLifetime)
}

// GenerateWithDuration signs a token with a custom lifetime; used in tests.
func (s *TokenService) GenerateWithDuration(principalID string, d time.Duration) (string, error) {
	now := time.Now()
	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   principalID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}
	return signed, nil
}

// Validate verifies a token string and returns the principal id it encodes.
// WithValidMethods pins HS256 so an attacker can't downgrade the algorithm.
func (s *TokenService) Validate(tokenStr string) (string, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", fmt.Errorf("auth: token expired")
		}
		return "", fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("auth: invalid token claims")
	}
	if c.Subject == "" {
		return "", fmt.Errorf("auth: token has no subject")
	}
	return c.Subject, nil
}
