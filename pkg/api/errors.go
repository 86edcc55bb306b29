package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/platinummonkey/launchgate/pkg/audit"
	"github.com/platinummonkey/launchgate/pkg/auth"
	"github.com/platinummonkey/launchgate/pkg/httputil"
	"github.com/platinummonkey/launchgate/pkg/initdata"
	"github.com/platinummonkey/launchgate/pkg/observability"
)

var (
	// ErrSecretsNotConfigured is returned when the bot token or signing secret is unset
	ErrSecretsNotConfigured = errors.New("secrets are not configured")

	// ErrMissingInitData is returned when the body has no usable initData
	ErrMissingInitData = errors.New("initData is missing")

	// ErrInitDataTooLarge is returned when initData exceeds the configured limit
	ErrInitDataTooLarge = errors.New("initData is too large")

	// ErrInvalidBody is returned when the request body is not a JSON object
	ErrInvalidBody = errors.New("request body is invalid")
)

// failure is the client facing view of an error
type failure struct {
	status      int
	body        string
	outcome     string
	auditStatus audit.EventStatus
}

// classify maps an exchange error to its response. Unknown errors become 500
// so a signing fault never leaks a partial token.
func classify(err error) failure {
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return failure{http.StatusGatewayTimeout, httputil.BodyRequestTimeout, observability.OutcomeTimeout, audit.EventStatusFailure}

	case errors.Is(err, ErrSecretsNotConfigured),
		errors.Is(err, initdata.ErrMissingBotToken),
		errors.Is(err, auth.ErrMissingSecret):
		return failure{http.StatusBadRequest, BodyMissingInput, observability.OutcomeConfigError, audit.EventStatusFailure}

	case errors.Is(err, ErrMissingInitData),
		errors.Is(err, ErrInitDataTooLarge),
		errors.Is(err, ErrInvalidBody):
		return failure{http.StatusBadRequest, BodyMissingInput, observability.OutcomeValidationError, audit.EventStatusFailure}

	case errors.Is(err, initdata.ErrInvalidSignature),
		errors.Is(err, initdata.ErrMalformed),
		errors.Is(err, initdata.ErrExpired),
		errors.Is(err, initdata.ErrUnverified):
		return failure{http.StatusUnauthorized, BodyInvalidInitData, observability.OutcomeInvalidSignature, audit.EventStatusDenied}

	case errors.Is(err, initdata.ErrMissingUser), errors.Is(err, auth.ErrEmptySubject):
		return failure{http.StatusBadRequest, BodyNoUserInfo, observability.OutcomeMissingUser, audit.EventStatusFailure}

	default:
		return failure{http.StatusInternalServerError, httputil.BodyInternalError, observability.OutcomeInternalError, audit.EventStatusFailure}
	}
}
