// Package async provides a bounded worker pool for work that must not hold up
// a request, such as writing audit events.
//
// # Usage
//
//	pool := async.NewWorkerPool(4, 1024, "audit", 5*time.Second, func(task string, err error) {
//		logger.WithError(err).Errorf("%s task failed", task)
//	})
//	defer pool.Shutdown(ctx)
//
//	if err := pool.Submit(func(ctx context.Context) error {
//		return sink.Log(ctx, event)
//	}); errors.Is(err, async.ErrQueueFull) {
//		// shed the work
//	}
//
// Tasks run with their own timeout, detached from the submitting request's
// context. Panics inside a task are recovered and reported to the error handler.
package async
