package observability

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthChecker_Liveness(t *testing.T) {
	checker := NewHealthChecker("1.0.0")
	checker.AddCheck("bot_token", SecretCheck(false))

	rec := httptest.NewRecorder()
	checker.Liveness(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), StatusHealthy)
}

func TestHealthChecker_Readiness(t *testing.T) {
	tests := []struct {
		name         string
		botToken     bool
		jwtSecret    bool
		expectedCode int
		expected     string
	}{
		{name: "all secrets configured", botToken: true, jwtSecret: true, expectedCode: http.StatusOK, expected: StatusHealthy},
		{name: "bot token missing", botToken: false, jwtSecret: true, expectedCode: http.StatusServiceUnavailable, expected: StatusUnhealthy},
		{name: "signing secret missing", botToken: true, jwtSecret: false, expectedCode: http.StatusServiceUnavailable, expected: StatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := NewHealthChecker("1.0.0")
			checker.AddCheck("bot_token", SecretCheck(tt.botToken))
			checker.AddCheck("jwt_secret", SecretCheck(tt.jwtSecret))

			rec := httptest.NewRecorder()
			checker.Readiness(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

			assert.Equal(t, tt.expectedCode, rec.Code)

			var status HealthStatus
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
			assert.Equal(t, tt.expected, status.Status)
			assert.Equal(t, "1.0.0", status.Version)
			assert.Len(t, status.Dependencies, 2)
		})
	}
}

func TestHealthChecker_Degraded(t *testing.T) {
	checker := NewHealthChecker("")
	checker.AddCheck("slow", func(ctx context.Context) DependencyStatus {
		return DependencyStatus{Status: StatusDegraded, Timestamp: time.Now()}
	})

	status := checker.Check(context.Background())
	assert.Equal(t, StatusDegraded, status.Status)

	checker.AddCheck("down", SecretCheck(false))
	status = checker.Check(context.Background())
	assert.Equal(t, StatusUnhealthy, status.Status)
	assert.Equal(t, "not configured", status.Dependencies["down"].Message)
}

func TestRegisterHealthRoutes(t *testing.T) {
	checker := NewHealthChecker("1.0.0")
	mux := http.NewServeMux()
	RegisterHealthRoutes(mux, checker)

	for _, path := range []string{"/health", "/health/live", "/health/ready"} {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"), path)
	}
}
