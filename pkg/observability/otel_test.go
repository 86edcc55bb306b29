package observability

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestInitOTel_Disabled tests that InitOTel returns nil when disabled
func TestInitOTel_Disabled(t *testing.T) {
	logger := NewLogger(InfoLevel, &bytes.Buffer{})

	providers, err := InitOTel(context.Background(), OTelConfig{Enabled: false}, logger)

	assert.NoError(t, err)
	assert.Nil(t, providers)
	assert.NoError(t, ShutdownOTel(context.Background(), providers, logger))
}

// OTLP exporters connect lazily, so creation succeeds without a collector
func TestInitOTel_Enabled(t *testing.T) {
	logger := NewLogger(InfoLevel, &bytes.Buffer{})

	providers, err := InitOTel(context.Background(), OTelConfig{
		Enabled:        true,
		Endpoint:       "localhost:4317",
		ServiceName:    "launchgate-test",
		ServiceVersion: "0.0.0",
		Insecure:       true,
	}, logger)
	require.NoError(t, err)
	require.NotNil(t, providers)
	assert.NotNil(t, providers.TracerProvider)
	assert.NotNil(t, providers.MeterProvider)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	// exporting to a missing collector with a cancelled context may fail; only the call path matters
	_ = ShutdownOTel(ctx, providers, logger)
}

func TestNewSampler(t *testing.T) {
	tests := []struct {
		ratio    float64
		expected string
	}{
		{ratio: 1, expected: "ParentBased{root:AlwaysOnSampler"},
		{ratio: 2, expected: "ParentBased{root:AlwaysOnSampler"},
		{ratio: 0, expected: "ParentBased{root:AlwaysOffSampler"},
		{ratio: 0.25, expected: "ParentBased{root:TraceIDRatioBased{0.25}"},
	}

	for _, tt := range tests {
		assert.True(t, strings.HasPrefix(newSampler(tt.ratio).Description(), tt.expected), "ratio %v: %s", tt.ratio, newSampler(tt.ratio).Description())
	}
}

func TestNewResource(t *testing.T) {
	cfg := OTelConfig{
		ServiceName:    "launchgate",
		ServiceVersion: "1.2.3",
		Environment:    "staging",
		AuthPath:       "/telegram-auth",
	}

	first, err := newResource(context.Background(), cfg)
	require.NoError(t, err)
	second, err := newResource(context.Background(), cfg)
	require.NoError(t, err)

	attrs := map[string]string{}
	for _, kv := range first.Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	assert.Equal(t, "launchgate", attrs["service.name"])
	assert.Equal(t, "1.2.3", attrs["service.version"])
	assert.Equal(t, "staging", attrs["deployment.environment"])
	assert.Equal(t, "/telegram-auth", attrs["launchgate.auth_path"])
	assert.NotEmpty(t, attrs["service.instance.id"])

	instance, ok := second.Set().Value("service.instance.id")
	require.True(t, ok)
	assert.NotEqual(t, attrs["service.instance.id"], instance.Emit(), "each process gets its own instance id")

	bare, err := newResource(context.Background(), OTelConfig{ServiceName: "launchgate"})
	require.NoError(t, err)
	_, ok = bare.Set().Value("deployment.environment")
	assert.False(t, ok)
}

func TestRecoverPanic(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(InfoLevel, &buf)

	assert.NotPanics(t, func() {
		defer RecoverPanicWithCallback(logger, "test", nil)
		panic("boom")
	})
	assert.Contains(t, buf.String(), "PANIC recovered")
	assert.Contains(t, buf.String(), "boom")
}

func TestRecoverPanicWithCallback(t *testing.T) {
	logger := NewLogger(InfoLevel, &bytes.Buffer{})
	called := false

	func() {
		defer RecoverPanicWithCallback(logger, "test", func() { called = true })
		panic(errors.New("boom"))
	}()
	assert.True(t, called)

	called = false
	func() {
		defer RecoverPanicWithCallback(logger, "test", func() { called = true })
	}()
	assert.False(t, called)
}
