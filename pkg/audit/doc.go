// Package audit records the outcome of every token request for security review.
//
// # Overview
//
// Each POST to the token endpoint produces one event: auth.login when a token
// was issued, auth.login_failed otherwise. Events carry the verified subject
// (when known), the request ID, client address, user agent and a short reason.
// Raw launch strings, tokens and secrets are never written.
//
// # Destinations
//
//   - FileLogger: newline-delimited JSON in <dir>/audit.log with size based rotation
//   - WriterLogger: newline-delimited JSON to any io.Writer (stdout in containers)
//   - MultiLogger: fan-out to several loggers, optionally asynchronous
//   - AsyncLogger: queues writes on a bounded worker pool (see pkg/async)
//   - NewNoOpLogger: discards events when auditing is disabled
//
// # Usage Example
//
//	logger.LogAuthentication(ctx, r, audit.AuthAttempt{
//		Subject:    "42",
//		Status:     audit.EventStatusSuccess,
//		StatusCode: http.StatusOK,
//		Reason:     "issued",
//	})
//
// # Related Packages
//
//   - pkg/api: Emits authentication events
//   - pkg/config: Audit destination configuration
package audit
