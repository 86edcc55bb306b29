package initdata

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// webAppDataKey is the fixed key the bot token is hashed with
const webAppDataKey = "WebAppData"

var tracer = otel.Tracer("github.com/platinummonkey/launchgate/pkg/initdata")

// SecretKey derives the HMAC key used to sign launch data for a bot
func SecretKey(botToken string) []byte {
	mac := hmac.New(sha256.New, []byte(webAppDataKey))
	mac.Write([]byte(botToken))
	return mac.Sum(nil)
}

// Sign computes the hex signature of a data-check string for a bot
func Sign(dataCheckString, botToken string) string {
	return signWithKey(SecretKey(botToken), dataCheckString)
}

func signWithKey(secretKey []byte, dataCheckString string) string {
	mac := hmac.New(sha256.New, secretKey)
	mac.Write([]byte(dataCheckString))
	return hex.EncodeToString(mac.Sum(nil))
}

// Option configures a Verifier
type Option func(*Verifier)

// WithMaxAge rejects payloads whose auth_date is older than maxAge.
// Zero disables the check.
func WithMaxAge(maxAge time.Duration) Option {
	return func(v *Verifier) {
		v.maxAge = maxAge
	}
}

// WithClock overrides the time source used for the max age check
func WithClock(now func() time.Time) Option {
	return func(v *Verifier) {
		if now != nil {
			v.now = now
		}
	}
}

// Verifier checks launch payload signatures for a single bot.
// It is immutable after construction and safe for concurrent use.
type Verifier struct {
	secretKey []byte
	maxAge    time.Duration
	now       func() time.Time
}

// NewVerifier creates a verifier for the given bot token
func NewVerifier(botToken string, opts ...Option) *Verifier {
	v := &Verifier{now: time.Now}
	if botToken != "" {
		v.secretKey = SecretKey(botToken)
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Verify parses raw and checks its signature. The returned LaunchData is
// marked verified and is the only input ExtractUser accepts.
func (v *Verifier) Verify(ctx context.Context, raw string) (*LaunchData, error) {
	_, span := tracer.Start(ctx, "initdata.Verify")
	defer span.End()

	data, err := v.verify(ctx, raw)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("initdata.fields", len(data.values)))
	return data, nil
}

func (v *Verifier) verify(ctx context.Context, raw string) (*LaunchData, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(v.secretKey) == 0 {
		return nil, ErrMissingBotToken
	}

	data, err := Parse(raw)
	if err != nil {
		return nil, err
	}

	expected := signWithKey(v.secretKey, data.DataCheckString())
	if !hmac.Equal([]byte(expected), []byte(data.Hash())) {
		return nil, ErrInvalidSignature
	}

	if v.maxAge > 0 {
		if err := v.checkAge(data); err != nil {
			return nil, err
		}
	}

	data.verified = true
	return data, nil
}

// checkAge enforces the freshness window on auth_date
func (v *Verifier) checkAge(data *LaunchData) error {
	rawDate := data.Get(AuthDateField)
	if rawDate == "" {
		return fmt.Errorf("%w: %s is missing", ErrExpired, AuthDateField)
	}
	seconds, err := strconv.ParseInt(rawDate, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: invalid %s %q", ErrExpired, AuthDateField, rawDate)
	}
	age := v.now().Sub(time.Unix(seconds, 0))
	if age > v.maxAge {
		return fmt.Errorf("%w: signed %s ago", ErrExpired, age.Truncate(time.Second))
	}
	return nil
}
