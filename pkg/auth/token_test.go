package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "super-secret-jwt-token-with-at-least-32-characters"

var issueTime = time.Unix(1700000000, 0)

func fixedClock() time.Time { return issueTime }

func decodeSegment(t *testing.T, segment string) map[string]interface{} {
	t.Helper()
	raw, err := base64.RawURLEncoding.DecodeString(segment)
	require.NoError(t, err)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestTokenIssuer_Issue(t *testing.T) {
	issuer := NewTokenIssuer(testSecret, WithClock(fixedClock))

	issued, err := issuer.Issue(context.Background(), "42")
	require.NoError(t, err)

	parts := strings.Split(issued.Token, ".")
	require.Len(t, parts, 3)
	assert.NotContains(t, issued.Token, "=")

	header := decodeSegment(t, parts[0])
	assert.Equal(t, map[string]interface{}{"alg": "HS256", "typ": "JWT"}, header)

	rawClaims, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)
	assert.JSONEq(t, `{"sub":"42","role":"authenticated","aud":"authenticated","exp":1702592000}`, string(rawClaims))

	mac := hmac.New(sha256.New, []byte(testSecret))
	mac.Write([]byte(parts[0] + "." + parts[1]))
	assert.Equal(t, base64.RawURLEncoding.EncodeToString(mac.Sum(nil)), parts[2])

	assert.Equal(t, "42", issued.Subject)
	assert.Equal(t, issueTime, issued.IssuedAt)
	assert.Equal(t, issueTime.Add(TokenLifetime), issued.ExpiresAt)
}

func TestTokenIssuer_ClaimsOrder(t *testing.T) {
	issued, err := NewTokenIssuer(testSecret, WithClock(fixedClock)).Issue(context.Background(), "42")
	require.NoError(t, err)

	rawClaims, err := base64.RawURLEncoding.DecodeString(strings.Split(issued.Token, ".")[1])
	require.NoError(t, err)
	assert.Equal(t, `{"sub":"42","role":"authenticated","aud":"authenticated","exp":1702592000}`, string(rawClaims))
}

func TestTokenIssuer_ExpiryWindow(t *testing.T) {
	times := []time.Time{
		time.Unix(0, 0),
		time.Unix(1700000000, 999999999),
		time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	for _, now := range times {
		now := now
		issuer := NewTokenIssuer(testSecret, WithClock(func() time.Time { return now }))
		issued, err := issuer.Issue(context.Background(), "7")
		require.NoError(t, err)

		claims := decodeSegment(t, strings.Split(issued.Token, ".")[1])
		exp, ok := claims["exp"].(float64)
		require.True(t, ok)
		assert.Equal(t, now.Unix()+TokenLifetimeSeconds, int64(exp))
		assert.Greater(t, int64(exp), now.Unix())
	}
}

func TestTokenIssuer_Errors(t *testing.T) {
	tests := []struct {
		name    string
		secret  string
		subject string
		wantErr error
	}{
		{name: "missing secret", secret: "", subject: "42", wantErr: ErrMissingSecret},
		{name: "empty subject", secret: testSecret, subject: "", wantErr: ErrEmptySubject},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issued, err := NewTokenIssuer(tt.secret).Issue(context.Background(), tt.subject)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, issued)
		})
	}
}

func TestTokenIssuer_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	issued, err := NewTokenIssuer(testSecret).Issue(ctx, "42")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, issued)
}

func TestParseToken_RoundTrip(t *testing.T) {
	issued, err := NewTokenIssuer(testSecret).Issue(context.Background(), "123456789")
	require.NoError(t, err)

	claims, err := ParseToken(issued.Token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "123456789", claims.Subject)
	assert.Equal(t, RoleAuthenticated, claims.Role)
	assert.Equal(t, AudienceAuthenticated, claims.Audience)
}

func TestParseToken_Rejects(t *testing.T) {
	issued, err := NewTokenIssuer(testSecret, WithClock(fixedClock)).Issue(context.Background(), "42")
	require.NoError(t, err)

	t.Run("wrong secret", func(t *testing.T) {
		_, err := ParseTokenAt(issued.Token, "another-secret", issueTime)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		_, err := ParseTokenAt(issued.Token, testSecret, issueTime.Add(TokenLifetime+time.Second))
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("valid just before expiry", func(t *testing.T) {
		claims, err := ParseTokenAt(issued.Token, testSecret, issueTime.Add(TokenLifetime-time.Second))
		require.NoError(t, err)
		assert.Equal(t, "42", claims.Subject)
	})

	t.Run("tampered claims", func(t *testing.T) {
		parts := strings.Split(issued.Token, ".")
		forged := base64.RawURLEncoding.EncodeToString([]byte(`{"sub":"1","role":"authenticated","aud":"authenticated","exp":1702592000}`))
		_, err := ParseTokenAt(parts[0]+"."+forged+"."+parts[2], testSecret, issueTime)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("unsigned token", func(t *testing.T) {
		unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
			Subject:   "42",
			Role:      RoleAuthenticated,
			Audience:  AudienceAuthenticated,
			ExpiresAt: issueTime.Add(time.Hour).Unix(),
		}).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = ParseTokenAt(unsigned, testSecret, issueTime)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong audience", func(t *testing.T) {
		other, err := jwt.NewWithClaims(SigningMethod, &Claims{
			Subject:   "42",
			Role:      RoleAuthenticated,
			Audience:  "anon",
			ExpiresAt: issueTime.Add(time.Hour).Unix(),
		}).SignedString([]byte(testSecret))
		require.NoError(t, err)

		_, err = ParseTokenAt(other, testSecret, issueTime)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("missing secret", func(t *testing.T) {
		_, err := ParseToken(issued.Token, "")
		assert.ErrorIs(t, err, ErrMissingSecret)
	})
}
