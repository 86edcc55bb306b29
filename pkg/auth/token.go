package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("github.com/platinummonkey/launchgate/pkg/auth")

// SigningMethod is the only algorithm tokens are signed and accepted with
var SigningMethod = jwt.SigningMethodHS256

// IssuerOption configures a TokenIssuer
type IssuerOption func(*TokenIssuer)

// WithClock overrides the issue time source
func WithClock(now func() time.Time) IssuerOption {
	return func(ti *TokenIssuer) {
		if now != nil {
			ti.now = now
		}
	}
}

// TokenIssuer signs bearer tokens for verified subjects
type TokenIssuer struct {
	secret []byte
	now    func() time.Time
}

// NewTokenIssuer creates a token issuer for the given signing secret
func NewTokenIssuer(secret string, opts ...IssuerOption) *TokenIssuer {
	ti := &TokenIssuer{
		secret: []byte(secret),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(ti)
	}
	return ti
}

// Issue signs a token for subject
// Format: base64url(header).base64url(claims).base64url(HMAC-SHA256(secret, header.claims))
// Claims: {"sub":subject,"role":"authenticated","aud":"authenticated","exp":now+30d}
func (ti *TokenIssuer) Issue(ctx context.Context, subject string) (*IssuedToken, error) {
	_, span := tracer.Start(ctx, "auth.Issue")
	defer span.End()

	issued, err := ti.issue(ctx, subject)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return issued, nil
}

func (ti *TokenIssuer) issue(ctx context.Context, subject string) (*IssuedToken, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(ti.secret) == 0 {
		return nil, ErrMissingSecret
	}
	if subject == "" {
		return nil, ErrEmptySubject
	}

	issuedAt := time.Unix(ti.now().Unix(), 0)
	claims := &Claims{
		Subject:   subject,
		Role:      RoleAuthenticated,
		Audience:  AudienceAuthenticated,
		ExpiresAt: issuedAt.Unix() + TokenLifetimeSeconds,
	}

	signed, err := jwt.NewWithClaims(SigningMethod, claims).SignedString(ti.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &IssuedToken{
		Token:     signed,
		Subject:   subject,
		IssuedAt:  issuedAt,
		ExpiresAt: time.Unix(claims.ExpiresAt, 0),
	}, nil
}

// ParseToken verifies a token the way the data store does: HS256 only,
// audience "authenticated", expiry required and enforced at the current time.
func ParseToken(tokenString, secret string) (*Claims, error) {
	return ParseTokenAt(tokenString, secret, time.Now())
}

// ParseTokenAt is ParseToken evaluated at a fixed time
func ParseTokenAt(tokenString, secret string, at time.Time) (*Claims, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}

	keyFunc := func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, keyFunc,
		jwt.WithValidMethods([]string{SigningMethod.Alg()}),
		jwt.WithAudience(AudienceAuthenticated),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return at }),
	)
	if err != nil {
		return nil, errors.Join(ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return claims, nil
}
