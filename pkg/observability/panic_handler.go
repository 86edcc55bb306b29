package observability

import (
	"fmt"
	"runtime/debug"
)

// RecoverPanicWithCallback recovers from a panic, logs it, and executes a callback
//
//	defer observability.RecoverPanicWithCallback(logger, "GET /", func() {
//	    w.WriteHeader(http.StatusInternalServerError)
//	})
//
// The callback only runs when a panic was recovered. The panic is not re-raised.
func RecoverPanicWithCallback(logger *Logger, context string, callback func()) {
	if r := recover(); r != nil {
		logPanic(logger, context, r)
		if callback != nil {
			callback()
		}
	}
}

func logPanic(logger *Logger, context string, r interface{}) {
	logger.WithField("panic", fmt.Sprint(r)).
		WithField("stack", string(debug.Stack())).
		WithField("context", context).
		Error("PANIC recovered")
}
