package async

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type errorCollector struct {
	mu   sync.Mutex
	errs []error
}

func (c *errorCollector) handle(task string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errs = append(c.errs, err)
}

func (c *errorCollector) all() []error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]error(nil), c.errs...)
}

func TestWorkerPool_RunsAllTasks(t *testing.T) {
	pool := NewWorkerPool(4, 100, "test", time.Second, nil)

	var count atomic.Int32
	for i := 0; i < 50; i++ {
		require.NoError(t, pool.Submit(func(ctx context.Context) error {
			count.Add(1)
			return nil
		}))
	}

	require.NoError(t, pool.Shutdown(context.Background()))
	assert.Equal(t, int32(50), count.Load())
}

func TestWorkerPool_ReportsErrorsAndPanics(t *testing.T) {
	collector := &errorCollector{}
	pool := NewWorkerPool(1, 10, "test", time.Second, collector.handle)

	boom := errors.New("boom")
	require.NoError(t, pool.Submit(func(ctx context.Context) error { return boom }))
	require.NoError(t, pool.Submit(func(ctx context.Context) error { panic("kaboom") }))
	require.NoError(t, pool.Submit(func(ctx context.Context) error { return nil }))

	require.NoError(t, pool.Shutdown(context.Background()))

	errs := collector.all()
	require.Len(t, errs, 2)
	assert.ErrorIs(t, errs[0], boom)
	assert.Contains(t, errs[1].Error(), "panic: kaboom")
}

func TestWorkerPool_TaskTimeout(t *testing.T) {
	collector := &errorCollector{}
	pool := NewWorkerPool(1, 1, "test", 20*time.Millisecond, collector.handle)

	require.NoError(t, pool.Submit(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}))
	require.NoError(t, pool.Shutdown(context.Background()))

	errs := collector.all()
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], context.DeadlineExceeded)
}

func TestWorkerPool_QueueFull(t *testing.T) {
	pool := NewWorkerPool(1, 1, "test", 0, nil)

	release := make(chan struct{})
	started := make(chan struct{})
	require.NoError(t, pool.Submit(func(ctx context.Context) error {
		close(started)
		<-release
		return nil
	}))
	<-started

	// the worker is busy, one task fits in the queue
	require.NoError(t, pool.Submit(func(ctx context.Context) error { return nil }))
	assert.ErrorIs(t, pool.Submit(func(ctx context.Context) error { return nil }), ErrQueueFull)

	close(release)
	require.NoError(t, pool.Shutdown(context.Background()))
}

func TestWorkerPool_SubmitAfterShutdown(t *testing.T) {
	pool := NewWorkerPool(2, 2, "test", 0, nil)
	require.NoError(t, pool.Shutdown(context.Background()))
	require.NoError(t, pool.Shutdown(context.Background()), "shutdown is idempotent")

	assert.ErrorIs(t, pool.Submit(func(ctx context.Context) error { return nil }), ErrPoolClosed)
}

func TestWorkerPool_ShutdownDeadline(t *testing.T) {
	pool := NewWorkerPool(1, 1, "test", 0, nil)

	cancelled := make(chan struct{})
	started := make(chan struct{})
	require.NoError(t, pool.Submit(func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		close(cancelled)
		return ctx.Err()
	}))
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := pool.Shutdown(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatal("running task was not cancelled")
	}
}
