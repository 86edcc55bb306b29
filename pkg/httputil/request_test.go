package httputil

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/platinummonkey/launchgate/pkg/contextkeys"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tokenRequest struct {
	InitData string `json:"initData"`
}

func TestParseJSON(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		expectErr   error
		expectError bool
		expected    string
	}{
		{
			name:     "valid JSON",
			body:     `{"initData": "a=1&hash=ff"}`,
			expected: "a=1&hash=ff",
		},
		{
			name:     "unknown fields ignored",
			body:     `{"initData": "x", "platform": "ios"}`,
			expected: "x",
		},
		{
			name:     "trailing whitespace",
			body:     "{\"initData\": \"x\"}\n  ",
			expected: "x",
		},
		{
			name:        "invalid JSON",
			body:        `{invalid}`,
			expectError: true,
		},
		{
			name:      "empty body",
			body:      "",
			expectErr: ErrEmptyBody,
		},
		{
			name:      "two values",
			body:      `{"initData": "x"}{"initData": "y"}`,
			expectErr: ErrTrailingData,
		},
		{
			name:        "trailing garbage",
			body:        `{"initData": "x"} nope`,
			expectError: true,
		},
		{
			name:        "wrong type",
			body:        `{"initData": 42}`,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/telegram-auth", bytes.NewBufferString(tt.body))
			var dest tokenRequest

			err := ParseJSON(req, &dest)

			switch {
			case tt.expectErr != nil:
				assert.ErrorIs(t, err, tt.expectErr)
			case tt.expectError:
				assert.Error(t, err)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.expected, dest.InitData)
			}
		})
	}
}

func TestParseJSON_NoBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/telegram-auth", nil)
	var dest tokenRequest
	assert.ErrorIs(t, ParseJSON(req, &dest), ErrEmptyBody)
}

func TestParseJSON_TooLarge(t *testing.T) {
	body := `{"initData": "` + strings.Repeat("a", 100) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/telegram-auth", strings.NewReader(body))
	req.Body = http.MaxBytesReader(httptest.NewRecorder(), req.Body, 16)

	var dest tokenRequest
	assert.ErrorIs(t, ParseJSON(req, &dest), ErrBodyTooLarge)
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		ctx        context.Context
		headers    map[string]string
		remoteAddr string
		expected   string
	}{
		{name: "resolved address", ctx: contextkeys.WithClientIP(context.Background(), "203.0.113.7"), remoteAddr: "10.0.0.2:1234", expected: "203.0.113.7"},
		{name: "forwarding headers ignored", headers: map[string]string{"X-Forwarded-For": "203.0.113.7", "X-Real-IP": "198.51.100.4"}, remoteAddr: "192.0.2.1:5555", expected: "192.0.2.1"},
		{name: "remote addr", remoteAddr: "192.0.2.1:5555", expected: "192.0.2.1"},
		{name: "remote addr without port", remoteAddr: "192.0.2.1", expected: "192.0.2.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.ctx != nil {
				req = req.WithContext(tt.ctx)
			}
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.expected, ClientIP(req))
		})
	}
}

func TestParseTrustedProxies(t *testing.T) {
	prefixes, err := ParseTrustedProxies([]string{"10.0.0.0/8", " 192.0.2.1 ", "", "2001:db8::/32", "10.1.2.3/8"})
	require.NoError(t, err)
	require.Len(t, prefixes, 4)
	assert.Equal(t, "10.0.0.0/8", prefixes[0].String())
	assert.Equal(t, "192.0.2.1/32", prefixes[1].String())
	assert.Equal(t, "2001:db8::/32", prefixes[2].String())
	assert.Equal(t, "10.0.0.0/8", prefixes[3].String())

	_, err = ParseTrustedProxies([]string{"proxy.internal"})
	assert.ErrorContains(t, err, "invalid trusted proxy")
	_, err = ParseTrustedProxies([]string{"10.0.0.0/33"})
	assert.ErrorContains(t, err, "invalid trusted proxy")
}
