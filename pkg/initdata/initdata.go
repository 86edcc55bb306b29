package initdata

import (
	"errors"
	"net/url"
	"sort"
	"strings"
	"unicode/utf8"
)

const (
	// HashField carries the platform signature
	HashField = "hash"
	// UserField carries the JSON encoded user object
	UserField = "user"
	// AuthDateField carries the unix time the payload was signed at
	AuthDateField = "auth_date"
)

var (
	// ErrMalformed is returned when a decoded field is not valid UTF-8
	ErrMalformed = errors.New("malformed launch data")
	// ErrInvalidSignature is returned when the recomputed signature does not match hash
	ErrInvalidSignature = errors.New("invalid launch data signature")
	// ErrExpired is returned when auth_date is older than the verifier's max age
	ErrExpired = errors.New("launch data expired")
	// ErrMissingBotToken is returned when a verifier has no bot token to derive a key from
	ErrMissingBotToken = errors.New("bot token is not configured")
	// ErrUnverified is returned when identity extraction is attempted on unverified data
	ErrUnverified = errors.New("launch data has not been verified")
	// ErrMissingUser is returned when verified data carries no usable user id
	ErrMissingUser = errors.New("launch data has no user")
)

// LaunchData is a parsed launch payload. Values are percent-decoded.
type LaunchData struct {
	values   url.Values
	verified bool
}

// Parse splits a raw launch string into its fields. Pairs are separated by
// '&' and split on the first '='; '+' decodes to a space and %XX escapes are
// decoded. A '%' that does not start a valid escape and a bare ';' are kept
// as literal text, so any value the platform signed parses back unchanged.
func Parse(raw string) (*LaunchData, error) {
	values := url.Values{}
	for _, pair := range strings.Split(raw, "&") {
		if pair == "" {
			continue
		}
		key, value, _ := strings.Cut(pair, "=")
		key, value = unescape(key), unescape(value)
		if !utf8.ValidString(key) || !utf8.ValidString(value) {
			return nil, ErrMalformed
		}
		values[key] = append(values[key], value)
	}
	return &LaunchData{values: values}, nil
}

// unescape percent-decodes s, leaving invalid escapes untouched
func unescape(s string) string {
	if !strings.ContainsAny(s, "%+") {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '+':
			b.WriteByte(' ')
		case c == '%' && i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2]):
			b.WriteByte(unhex(s[i+1])<<4 | unhex(s[i+2]))
			i += 2
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func isHex(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}

func unhex(c byte) byte {
	switch {
	case '0' <= c && c <= '9':
		return c - '0'
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}

// Get returns the first value of a field, or "" when it is absent
func (d *LaunchData) Get(key string) string {
	return d.values.Get(key)
}

// Hash returns the signature the platform attached to the payload
func (d *LaunchData) Hash() string {
	return d.values.Get(HashField)
}

// Verified reports whether the payload passed signature verification
func (d *LaunchData) Verified() bool {
	return d.verified
}

// DataCheckString renders the canonical form the signature is computed over.
// Every field except hash is emitted as key=value, sorted by key in byte
// order; repeated keys keep their original relative order.
func (d *LaunchData) DataCheckString() string {
	keys := make([]string, 0, len(d.values))
	for key := range d.values {
		if key == HashField {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, key := range keys {
		for _, value := range d.values[key] {
			lines = append(lines, key+"="+value)
		}
	}
	return strings.Join(lines, "\n")
}

// Build produces a signed launch string from plain fields. Any hash entry in
// fields is replaced by the computed signature.
func Build(fields map[string]string, botToken string) string {
	values := url.Values{}
	for key, value := range fields {
		if key == HashField {
			continue
		}
		values.Set(key, value)
	}
	data := &LaunchData{values: values}
	values.Set(HashField, Sign(data.DataCheckString(), botToken))
	return values.Encode()
}
