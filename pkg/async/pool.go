package async

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"
)

var (
	// ErrPoolClosed is returned by Submit after Shutdown has started
	ErrPoolClosed = errors.New("worker pool shut down")

	// ErrQueueFull is returned by Submit when every queue slot is taken
	ErrQueueFull = errors.New("worker pool queue is full")
)

// Task is a unit of work run by the pool
type Task func(ctx context.Context) error

// ErrorHandler receives task errors and recovered panics
type ErrorHandler func(taskName string, err error)

// WorkerPool runs submitted tasks on a fixed number of goroutines.
// Submit never blocks: when the queue is full the task is rejected.
type WorkerPool struct {
	taskName string
	timeout  time.Duration
	onError  ErrorHandler

	mu     sync.RWMutex
	closed bool
	workCh chan Task

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewWorkerPool starts workers goroutines reading from a queue of queueSize
// tasks. Each task gets its own timeout; a zero timeout leaves tasks unbounded.
//
// Example:
//
//	pool := NewWorkerPool(4, 1024, "audit", 5*time.Second, nil)
//	defer pool.Shutdown(ctx)
//
//	pool.Submit(func(ctx context.Context) error {
//	    return sink.Log(ctx, event)
//	})
func NewWorkerPool(workers, queueSize int, taskName string, timeout time.Duration, onError ErrorHandler) *WorkerPool {
	if workers <= 0 {
		workers = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}
	if onError == nil {
		onError = func(string, error) {}
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &WorkerPool{
		taskName: taskName,
		timeout:  timeout,
		onError:  onError,
		workCh:   make(chan Task, queueSize),
		ctx:      ctx,
		cancel:   cancel,
	}

	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker()
	}
	return p
}

// Submit queues a task
func (p *WorkerPool) Submit(task Task) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrPoolClosed
	}

	select {
	case p.workCh <- task:
		return nil
	default:
		return ErrQueueFull
	}
}

// Shutdown stops accepting tasks and waits for queued ones to finish.
// When ctx ends first, running tasks are cancelled and ctx.Err is returned.
func (p *WorkerPool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.workCh)
	}
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.cancel()
		return nil
	case <-ctx.Done():
		p.cancel()
		return fmt.Errorf("worker pool %s shutdown: %w", p.taskName, ctx.Err())
	}
}

func (p *WorkerPool) worker() {
	defer p.wg.Done()
	for task := range p.workCh {
		p.run(task)
	}
}

// run executes one task, turning a panic into an error
func (p *WorkerPool) run(task Task) {
	ctx := p.ctx
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			p.onError(p.taskName, fmt.Errorf("panic: %v\n%s", r, debug.Stack()))
		}
	}()

	if err := task(ctx); err != nil {
		p.onError(p.taskName, err)
	}
}
