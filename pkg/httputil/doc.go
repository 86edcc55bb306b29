// Package httputil provides HTTP utilities for standardized request/response handling.
//
// # Overview
//
// This package offers helper functions for plain text and JSON responses, strict
// JSON request decoding, and the middleware chain used by the API server.
//
// # Response Helpers
//
//	httputil.WriteJSON(w, http.StatusOK, map[string]string{"token": token})
//	httputil.WriteText(w, http.StatusUnauthorized, "Invalid initData")
//	httputil.WriteText(w, http.StatusGatewayTimeout, httputil.BodyRequestTimeout)
//	httputil.WriteMethodNotAllowed(w)
//
// # Request Parsing
//
// ParseJSON decodes a single JSON value and reports ErrEmptyBody,
// ErrBodyTooLarge or ErrTrailingData so handlers can choose the status code:
//
//	var req TokenRequest
//	if err := httputil.ParseJSON(r, &req); err != nil {
//		httputil.WriteText(w, http.StatusBadRequest, "Missing initData or secrets")
//		return
//	}
//
// # Middleware
//
//	httputil.Chain(
//		httputil.CORSMiddleware(httputil.DefaultCORSConfig()),
//		httputil.RequestIDMiddleware,
//		httputil.LoggingMiddleware(logger),
//		httputil.RecoveryMiddleware(logger),
//		httputil.TimeoutMiddleware(5*time.Second),
//		httputil.MaxBytesMiddleware(64*1024),
//	)
//
// # Related Packages
//
//   - pkg/api: Token endpoint handlers
//   - pkg/observability: Logger used by the logging and recovery middleware
package httputil
