package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/platinummonkey/launchgate/pkg/audit"
	"github.com/platinummonkey/launchgate/pkg/auth"
	"github.com/platinummonkey/launchgate/pkg/httputil"
	"github.com/platinummonkey/launchgate/pkg/initdata"
	"github.com/platinummonkey/launchgate/pkg/observability"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		body    string
		outcome string
	}{
		{"deadline", fmt.Errorf("verify: %w", context.DeadlineExceeded), http.StatusGatewayTimeout, httputil.BodyRequestTimeout, observability.OutcomeTimeout},
		{"canceled", context.Canceled, http.StatusGatewayTimeout, httputil.BodyRequestTimeout, observability.OutcomeTimeout},
		{"secrets", ErrSecretsNotConfigured, http.StatusBadRequest, BodyMissingInput, observability.OutcomeConfigError},
		{"bot token", initdata.ErrMissingBotToken, http.StatusBadRequest, BodyMissingInput, observability.OutcomeConfigError},
		{"signing secret", auth.ErrMissingSecret, http.StatusBadRequest, BodyMissingInput, observability.OutcomeConfigError},
		{"empty initData", ErrMissingInitData, http.StatusBadRequest, BodyMissingInput, observability.OutcomeValidationError},
		{"oversized initData", fmt.Errorf("%w: 9 bytes", ErrInitDataTooLarge), http.StatusBadRequest, BodyMissingInput, observability.OutcomeValidationError},
		{"bad body", fmt.Errorf("%w: %v", ErrInvalidBody, httputil.ErrEmptyBody), http.StatusBadRequest, BodyMissingInput, observability.OutcomeValidationError},
		{"signature", initdata.ErrInvalidSignature, http.StatusUnauthorized, BodyInvalidInitData, observability.OutcomeInvalidSignature},
		{"malformed", initdata.ErrMalformed, http.StatusUnauthorized, BodyInvalidInitData, observability.OutcomeInvalidSignature},
		{"expired", initdata.ErrExpired, http.StatusUnauthorized, BodyInvalidInitData, observability.OutcomeInvalidSignature},
		{"unverified", initdata.ErrUnverified, http.StatusUnauthorized, BodyInvalidInitData, observability.OutcomeInvalidSignature},
		{"no user", initdata.ErrMissingUser, http.StatusBadRequest, BodyNoUserInfo, observability.OutcomeMissingUser},
		{"empty subject", auth.ErrEmptySubject, http.StatusBadRequest, BodyNoUserInfo, observability.OutcomeMissingUser},
		{"unknown", errors.New("disk on fire"), http.StatusInternalServerError, httputil.BodyInternalError, observability.OutcomeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := classify(tt.err)
			assert.Equal(t, tt.status, f.status)
			assert.Equal(t, tt.body, f.body)
			assert.Equal(t, tt.outcome, f.outcome)
		})
	}
}

func TestClassify_AuditStatus(t *testing.T) {
	assert.Equal(t, audit.EventStatusDenied, classify(initdata.ErrInvalidSignature).auditStatus)
	assert.Equal(t, audit.EventStatusFailure, classify(ErrMissingInitData).auditStatus)
}

func TestSecretsConfigured(t *testing.T) {
	assert.False(t, Secrets{}.Configured())
	assert.False(t, Secrets{BotToken: "1:a"}.Configured())
	assert.False(t, Secrets{JWTSecret: "s"}.Configured())
	assert.True(t, Secrets{BotToken: "1:a", JWTSecret: "s"}.Configured())
}
