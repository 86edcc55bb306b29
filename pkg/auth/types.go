package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// RoleAuthenticated is the database role the data store switches to for token holders
	RoleAuthenticated = "authenticated"
	// AudienceAuthenticated is the audience the data store's verifier expects
	AudienceAuthenticated = "authenticated"
	// TokenLifetimeSeconds is the fixed validity window of an issued token (30 days)
	TokenLifetimeSeconds int64 = 60 * 60 * 24 * 30
	// TokenLifetime is TokenLifetimeSeconds as a duration
	TokenLifetime = time.Duration(TokenLifetimeSeconds) * time.Second
)

var (
	// ErrMissingSecret is returned when no signing secret is configured
	ErrMissingSecret = errors.New("token signing secret is not configured")
	// ErrEmptySubject is returned when a token is requested for an empty subject
	ErrEmptySubject = errors.New("token subject is empty")
	// ErrInvalidToken is returned when a token fails verification
	ErrInvalidToken = errors.New("invalid token")
)

// Claims is the exact claim set the data store reads. Field order is the
// serialised order.
type Claims struct {
	Subject   string `json:"sub"`
	Role      string `json:"role"`
	Audience  string `json:"aud"`
	ExpiresAt int64  `json:"exp"`
}

// GetExpirationTime implements jwt.Claims
func (c *Claims) GetExpirationTime() (*jwt.NumericDate, error) {
	if c.ExpiresAt == 0 {
		return nil, nil
	}
	return jwt.NewNumericDate(time.Unix(c.ExpiresAt, 0)), nil
}

// GetIssuedAt implements jwt.Claims
func (c *Claims) GetIssuedAt() (*jwt.NumericDate, error) { return nil, nil }

// GetNotBefore implements jwt.Claims
func (c *Claims) GetNotBefore() (*jwt.NumericDate, error) { return nil, nil }

// GetIssuer implements jwt.Claims
func (c *Claims) GetIssuer() (string, error) { return "", nil }

// GetSubject implements jwt.Claims
func (c *Claims) GetSubject() (string, error) { return c.Subject, nil }

// GetAudience implements jwt.Claims
func (c *Claims) GetAudience() (jwt.ClaimStrings, error) {
	if c.Audience == "" {
		return nil, nil
	}
	return jwt.ClaimStrings{c.Audience}, nil
}

// IssuedToken is a signed bearer token together with the values it was built from
type IssuedToken struct {
	Token     string    `json:"token"`
	Subject   string    `json:"-"`
	IssuedAt  time.Time `json:"-"`
	ExpiresAt time.Time `json:"-"`
}
