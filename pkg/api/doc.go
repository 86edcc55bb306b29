// Package api provides the HTTP endpoint that exchanges Telegram Mini App
// launch data for a signed bearer token.
//
// # Overview
//
// A Mini App client POSTs the raw initData string it received at launch. The
// server verifies the HMAC signature with the bot token, reads the user id out
// of the verified payload and answers with an HS256 token the data store
// accepts for row level security:
//
//	POST /telegram-auth
//	{"initData": "query_id=...&user=%7B%22id%22%3A42%7D&auth_date=1700000000&hash=..."}
//
//	200 OK
//	{"token": "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."}
//
// # Responses
//
// Every response, errors included, carries the permissive CORS headers the
// browser client needs. Error bodies are short plain text strings:
//
//	OPTIONS                           200 "ok"
//	secrets unset, bad body           400 "Missing initData or secrets"
//	bad signature, malformed, expired 401 "Invalid initData"
//	no user id                        400 "No user info"
//	other methods                     405 "Method not allowed"
//	deadline exceeded                 504 "Request timeout"
//
// # Key Types
//
// Server wires the router and middleware chain around AuthHandlers:
//
//	server := api.NewServer(cfg, api.Dependencies{
//	    Logger:  logger,
//	    Metrics: metrics,
//	    Audit:   auditLogger,
//	})
//	http.ListenAndServe(cfg.Server.Addr(), server)
//
// AuthHandlers holds the only per-process state: the two secrets, read once at
// startup. Requests share nothing mutable and may run concurrently.
//
// # Related Packages
//
//   - pkg/initdata: Launch data parsing, signature verification, user extraction
//   - pkg/auth: Token issuing
//   - pkg/httputil: Middleware and response helpers
//   - pkg/audit: Authentication audit trail
//   - pkg/observability: Logging, metrics and tracing
package api
