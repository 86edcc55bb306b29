package audit

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
)

// WriterLogger writes audit events as newline-delimited JSON to any writer.
// The writer is not owned by the logger and is left open by Close.
type WriterLogger struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterLogger creates an audit logger that encodes events to w
func NewWriterLogger(w io.Writer) *WriterLogger {
	return &WriterLogger{w: w}
}

// Log logs an audit event
func (l *WriterLogger) Log(ctx context.Context, event *AuditEvent) error {
	data, err := event.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal audit event: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, err := l.w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

// LogAuthentication logs the outcome of a token request
func (l *WriterLogger) LogAuthentication(ctx context.Context, r *http.Request, attempt AuthAttempt) error {
	return l.Log(ctx, NewAuthEvent(ctx, r, attempt))
}

// Close is a no-op
func (l *WriterLogger) Close() error {
	return nil
}
