package audit

import (
	"context"
	"net/http"
	"time"

	"github.com/platinummonkey/launchgate/pkg/contextkeys"
	"github.com/platinummonkey/launchgate/pkg/httputil"
)

// Logger is the interface for audit logging
type Logger interface {
	// Log logs an audit event
	Log(ctx context.Context, event *AuditEvent) error

	// LogAuthentication logs the outcome of a token request
	LogAuthentication(ctx context.Context, r *http.Request, attempt AuthAttempt) error

	// Close closes the logger and flushes any buffered logs
	Close() error
}

// contextKey is the type for context keys
type contextKey string

// AuditLoggerKey is the context key for the audit logger
const AuditLoggerKey contextKey = "audit_logger"

// WithLogger adds an audit logger to the context
func WithLogger(ctx context.Context, logger Logger) context.Context {
	return context.WithValue(ctx, AuditLoggerKey, logger)
}

// FromContext retrieves the audit logger from context
func FromContext(ctx context.Context) Logger {
	if logger, ok := ctx.Value(AuditLoggerKey).(Logger); ok {
		return logger
	}
	// Return a no-op logger if none is set
	return &noOpLogger{}
}

// NewNoOpLogger returns a logger that discards every event
func NewNoOpLogger() Logger {
	return &noOpLogger{}
}

// noOpLogger is a logger that does nothing (used when no logger is configured)
type noOpLogger struct{}

func (l *noOpLogger) Log(ctx context.Context, event *AuditEvent) error {
	return nil
}

func (l *noOpLogger) LogAuthentication(ctx context.Context, r *http.Request, attempt AuthAttempt) error {
	return nil
}

func (l *noOpLogger) Close() error {
	return nil
}

// buildBaseEvent creates a base audit event with common fields populated
func buildBaseEvent(ctx context.Context, r *http.Request, eventType EventType, status EventStatus) *AuditEvent {
	event := &AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		Status:    status,
		RequestID: contextkeys.GetRequestID(ctx),
		Metadata:  make(map[string]interface{}),
	}

	if r != nil {
		event.IPAddress = httputil.ClientIP(r)
		event.RemoteAddr = httputil.PeerIP(r)
		event.UserAgent = r.UserAgent()
		event.Method = r.Method
		event.Path = r.URL.Path
	}

	return event
}

// NewAuthEvent builds the audit event for a token request. Successful
// attempts are auth.login; everything else is auth.login_failed.
func NewAuthEvent(ctx context.Context, r *http.Request, attempt AuthAttempt) *AuditEvent {
	eventType := EventTypeAuthLoginFailed
	if attempt.Status == EventStatusSuccess {
		eventType = EventTypeAuthLogin
	}

	event := buildBaseEvent(ctx, r, eventType, attempt.Status)
	event.Subject = attempt.Subject
	event.Username = attempt.Username
	event.StatusCode = attempt.StatusCode
	event.Reason = attempt.Reason
	event.Message = attempt.Message
	return event
}
