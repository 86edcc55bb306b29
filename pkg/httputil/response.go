// Package httputil provides HTTP handler utilities for consistent responses,
// JSON decoding, and the middleware chain shared by the servers.
package httputil

import (
	"encoding/json"
	"io"
	"net/http"
)

// Plain text bodies used for responses that are not produced by a handler
const (
	BodyMethodNotAllowed = "Method not allowed"
	BodyNotFound         = "Not found"
	BodyInternalError    = "Internal error"
	BodyRequestTimeout   = "Request timeout"
)

// WriteJSON writes a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, status int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// WriteText writes a plain text response with the given status code
func WriteText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	io.WriteString(w, body)
}

// WriteMethodNotAllowed writes a 405 response
func WriteMethodNotAllowed(w http.ResponseWriter) {
	WriteText(w, http.StatusMethodNotAllowed, BodyMethodNotAllowed)
}

// WriteNotFound writes a 404 response
func WriteNotFound(w http.ResponseWriter) {
	WriteText(w, http.StatusNotFound, BodyNotFound)
}

// WriteInternalError writes a 500 response. The cause is never echoed to the client.
func WriteInternalError(w http.ResponseWriter) {
	WriteText(w, http.StatusInternalServerError, BodyInternalError)
}

// MethodNotAllowedHandler returns a handler that always answers 405
func MethodNotAllowedHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		WriteMethodNotAllowed(w)
	})
}

// NotFoundHandler returns a handler that always answers 404
func NotFoundHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		WriteNotFound(w)
	})
}
