package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/platinummonkey/launchgate/pkg/audit"
	"github.com/platinummonkey/launchgate/pkg/auth"
	"github.com/platinummonkey/launchgate/pkg/contextkeys"
	"github.com/platinummonkey/launchgate/pkg/httputil"
	"github.com/platinummonkey/launchgate/pkg/initdata"
	"github.com/platinummonkey/launchgate/pkg/observability"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Stage names reported by the stage duration histogram
const (
	StageVerify  = "verify"
	StageExtract = "extract"
	StageIssue   = "issue"
)

const tracerName = "github.com/platinummonkey/launchgate/pkg/api"

// HandlerOptions configures AuthHandlers. Zero values are usable.
type HandlerOptions struct {
	// MaxInitDataBytes rejects longer launch strings before parsing, 0 disables the limit
	MaxInitDataBytes int
	// InitDataMaxAge rejects payloads with an older auth_date, 0 disables the check
	InitDataMaxAge time.Duration

	Logger         *observability.Logger
	Metrics        *observability.Metrics
	Audit          audit.Logger
	TracerProvider trace.TracerProvider

	// Clock overrides the time source for freshness checks and token expiry
	Clock func() time.Time
}

// AuthHandlers exchanges signed launch payloads for bearer tokens
type AuthHandlers struct {
	secrets          Secrets
	verifier         *initdata.Verifier
	issuer           *auth.TokenIssuer
	maxInitDataBytes int

	logger  *observability.Logger
	metrics *observability.Metrics
	audit   audit.Logger
	tracer  trace.Tracer
}

// NewAuthHandlers creates the token endpoint handlers for one set of secrets
func NewAuthHandlers(secrets Secrets, opts HandlerOptions) *AuthHandlers {
	if opts.Logger == nil {
		opts.Logger = observability.NewLogger(observability.InfoLevel, nil)
	}
	if opts.Audit == nil {
		opts.Audit = audit.NewNoOpLogger()
	}
	if opts.TracerProvider == nil {
		opts.TracerProvider = otel.GetTracerProvider()
	}

	verifierOpts := []initdata.Option{initdata.WithMaxAge(opts.InitDataMaxAge)}
	var issuerOpts []auth.IssuerOption
	if opts.Clock != nil {
		verifierOpts = append(verifierOpts, initdata.WithClock(opts.Clock))
		issuerOpts = append(issuerOpts, auth.WithClock(opts.Clock))
	}

	return &AuthHandlers{
		secrets:          secrets,
		verifier:         initdata.NewVerifier(secrets.BotToken, verifierOpts...),
		issuer:           auth.NewTokenIssuer(secrets.JWTSecret, issuerOpts...),
		maxInitDataBytes: opts.MaxInitDataBytes,
		logger:           opts.Logger,
		metrics:          opts.Metrics,
		audit:            opts.Audit,
		tracer:           opts.TracerProvider.Tracer(tracerName),
	}
}

// RegisterRoutes registers the token endpoint at path. Other methods on the
// path fall through to the router's MethodNotAllowedHandler.
func (h *AuthHandlers) RegisterRoutes(router *mux.Router, path string) {
	router.HandleFunc(path, h.preflight).Methods(http.MethodOptions)
	router.HandleFunc(path, h.exchangeToken).Methods(http.MethodPost)
}

// preflight handles OPTIONS, independent of configuration
func (h *AuthHandlers) preflight(w http.ResponseWriter, r *http.Request) {
	httputil.WriteText(w, http.StatusOK, BodyOK)
}

// exchangeToken handles POST: verify the launch payload, extract the user and
// issue a token for it
func (h *AuthHandlers) exchangeToken(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "api.ExchangeToken")
	defer span.End()

	issued, user, err := h.exchange(ctx, r)
	if user != nil {
		ctx = contextkeys.WithUserID(ctx, user.ID.String())
	}

	if err != nil {
		f := classify(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, f.outcome)
		span.SetAttributes(
			attribute.String("launchgate.outcome", f.outcome),
			attribute.Int("http.response.status_code", f.status),
		)

		h.record(ctx, r, f.outcome, err, audit.AuthAttempt{
			Subject:    subjectOf(user),
			Username:   usernameOf(user),
			Status:     f.auditStatus,
			StatusCode: f.status,
			Reason:     f.outcome,
		})
		httputil.WriteText(w, f.status, f.body)
		return
	}

	span.SetAttributes(
		attribute.String("launchgate.outcome", observability.OutcomeIssued),
		attribute.Int("http.response.status_code", http.StatusOK),
	)
	h.record(ctx, r, observability.OutcomeIssued, nil, audit.AuthAttempt{
		Subject:    issued.Subject,
		Username:   usernameOf(user),
		Status:     audit.EventStatusSuccess,
		StatusCode: http.StatusOK,
		Reason:     observability.OutcomeIssued,
		Message:    "token expires " + issued.ExpiresAt.UTC().Format(time.RFC3339),
	})

	if err := httputil.WriteJSON(w, http.StatusOK, TokenResponse{Token: issued.Token}); err != nil {
		h.loggerFor(ctx).WithError(err).Warn("Failed to write token response")
	}
}

// exchange runs the Unauthenticated -> Verified -> Identified -> Issued state
// machine. The user is returned whenever it was extracted, even on failure.
func (h *AuthHandlers) exchange(ctx context.Context, r *http.Request) (*auth.IssuedToken, *initdata.User, error) {
	if !h.secrets.Configured() {
		return nil, nil, ErrSecretsNotConfigured
	}

	var req TokenRequest
	if err := httputil.ParseJSON(r, &req); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidBody, err)
	}
	if req.InitData == "" {
		return nil, nil, ErrMissingInitData
	}
	if h.maxInitDataBytes > 0 && len(req.InitData) > h.maxInitDataBytes {
		return nil, nil, fmt.Errorf("%w: %d bytes, limit is %d", ErrInitDataTooLarge, len(req.InitData), h.maxInitDataBytes)
	}

	start := time.Now()
	data, err := h.verifier.Verify(ctx, req.InitData)
	h.metrics.ObserveStage(StageVerify, start)
	if err != nil {
		return nil, nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	start = time.Now()
	user, err := initdata.ExtractUser(data)
	h.metrics.ObserveStage(StageExtract, start)
	if err != nil {
		return nil, nil, err
	}

	start = time.Now()
	issued, err := h.issuer.Issue(ctx, user.ID.String())
	h.metrics.ObserveStage(StageIssue, start)
	if err != nil {
		return nil, user, err
	}

	return issued, user, nil
}

// record logs, counts and audits one finished exchange
func (h *AuthHandlers) record(ctx context.Context, r *http.Request, outcome string, err error, attempt audit.AuthAttempt) {
	h.metrics.RecordOutcome(outcome)

	logger := h.loggerFor(ctx).WithFields(map[string]interface{}{
		"outcome": outcome,
		"status":  attempt.StatusCode,
	})
	switch {
	case err == nil:
		logger.Info("Token issued")
	case attempt.StatusCode >= http.StatusInternalServerError:
		logger.WithError(err).Error("Token request failed")
	default:
		logger.WithError(err).Warn("Token request rejected")
	}

	if auditErr := h.audit.LogAuthentication(ctx, r, attempt); auditErr != nil {
		h.loggerFor(ctx).WithError(auditErr).Error("Failed to write audit event")
	}
}

// loggerFor returns the request logger, falling back to the handler's own
func (h *AuthHandlers) loggerFor(ctx context.Context) *observability.Logger {
	if _, ok := ctx.Value(contextkeys.LoggerKey).(*observability.Logger); !ok {
		ctx = observability.WithLogger(ctx, h.logger)
	}
	return observability.FromContext(ctx)
}

func subjectOf(user *initdata.User) string {
	if user == nil {
		return ""
	}
	return user.ID.String()
}

func usernameOf(user *initdata.User) string {
	if user == nil {
		return ""
	}
	return user.Username
}
