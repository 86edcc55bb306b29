package audit

import (
	"context"
	"net/http"
	"time"

	"github.com/platinummonkey/launchgate/pkg/async"
)

// AsyncLoggerConfig configures an AsyncLogger
type AsyncLoggerConfig struct {
	Workers   int
	QueueSize int
	// WriteTimeout bounds a single write to the wrapped logger
	WriteTimeout time.Duration
	// CloseTimeout bounds draining queued events on Close
	CloseTimeout time.Duration
	// OnError receives write failures from the background workers
	OnError func(err error)
}

// AsyncLogger hands events to a worker pool so callers never wait on the
// wrapped logger. Events are built on the caller's goroutine; only the write
// is deferred. A full queue rejects the event with async.ErrQueueFull.
type AsyncLogger struct {
	next         Logger
	pool         *async.WorkerPool
	closeTimeout time.Duration
}

// NewAsyncLogger wraps next with a background worker pool
func NewAsyncLogger(next Logger, cfg AsyncLoggerConfig) *AsyncLogger {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1024
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 5 * time.Second
	}
	if cfg.CloseTimeout <= 0 {
		cfg.CloseTimeout = 10 * time.Second
	}

	var onError async.ErrorHandler
	if cfg.OnError != nil {
		onError = func(_ string, err error) { cfg.OnError(err) }
	}

	return &AsyncLogger{
		next:         next,
		pool:         async.NewWorkerPool(cfg.Workers, cfg.QueueSize, "audit", cfg.WriteTimeout, onError),
		closeTimeout: cfg.CloseTimeout,
	}
}

// Log queues an audit event
func (l *AsyncLogger) Log(ctx context.Context, event *AuditEvent) error {
	return l.pool.Submit(func(ctx context.Context) error {
		return l.next.Log(ctx, event)
	})
}

// LogAuthentication builds the event from the request now and queues the write
func (l *AsyncLogger) LogAuthentication(ctx context.Context, r *http.Request, attempt AuthAttempt) error {
	return l.Log(ctx, NewAuthEvent(ctx, r, attempt))
}

// Close drains queued events and closes the wrapped logger
func (l *AsyncLogger) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), l.closeTimeout)
	defer cancel()

	drainErr := l.pool.Shutdown(ctx)
	if err := l.next.Close(); err != nil {
		return err
	}
	return drainErr
}
