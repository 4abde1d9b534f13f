// Package token issues and verifies the signed credentials that carry a
// user id and role between requests.
package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims is the payload carried by a signed token.
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// UserID returns the subject parsed as a UUID, or uuid.Nil when absent or
// malformed.
func (c *Claims) UserID() uuid.UUID {
	id, err := uuid.Parse(c.Subject)
	if err != nil {
		return uuid.Nil
	}
	return id
}

// Service signs and verifies HS256 tokens with a shared secret.
type Service struct {
	secret []byte
	ttl    time.Duration
}

func NewService(secret string, ttl time.Duration) *Service {
	return &Service{secret: []byte(secret), ttl: ttl}
}

// TTL returns the validity window tokens are issued with.
func (s *Service) TTL() time.Duration { return s.ttl }

// Issue signs a new token for the given user and role.
func (s *Service) Issue(userID uuid.UUID, role string) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		Role: role,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify parses and validates a token. It reports ok=false on any failure
// (bad signature, malformed input, expiry) so that callers can only ever
// treat the result as "unauthenticated", never as a server error.
func (s *Service) Verify(tokenStr string) (*Claims, bool) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !tok.Valid {
		return nil, false
	}
	return claims, true
}

// ParseExpired validates the signature but ignores expiry. It backs the
// refresh flow, which must recover the user id and role from a token that
// may have lapsed.
func (s *Service) ParseExpired(tokenStr string) (*Claims, bool) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithoutClaimsValidation())
	if err != nil || !tok.Valid {
		return nil, false
	}
	return claims, true
}
