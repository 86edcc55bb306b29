package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/platinummonkey/launchgate/pkg/audit"
	"github.com/platinummonkey/launchgate/pkg/config"
	"github.com/platinummonkey/launchgate/pkg/httputil"
	"github.com/platinummonkey/launchgate/pkg/observability"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Dependencies are the collaborators shared by every request. Nil fields
// fall back to no-op or default implementations.
type Dependencies struct {
	Logger         *observability.Logger
	Metrics        *observability.Metrics
	Audit          audit.Logger
	TracerProvider trace.TracerProvider
	Clock          func() time.Time
}

// Server is the token endpoint HTTP handler with its middleware chain
type Server struct {
	router       *mux.Router
	handler      http.Handler
	authHandlers *AuthHandlers
}

// NewServer creates a new API server
func NewServer(cfg *config.Config, deps Dependencies) *Server {
	if deps.Logger == nil {
		deps.Logger = observability.NewLogger(cfg.LogLevel(), nil)
	}
	if deps.Audit == nil {
		deps.Audit = audit.NewNoOpLogger()
	}
	if deps.TracerProvider == nil {
		deps.TracerProvider = otel.GetTracerProvider()
	}

	s := &Server{
		router: mux.NewRouter(),
	}
	s.router.NotFoundHandler = httputil.NotFoundHandler()
	s.router.MethodNotAllowedHandler = httputil.MethodNotAllowedHandler()

	s.authHandlers = NewAuthHandlers(Secrets{
		BotToken:  cfg.Auth.BotToken,
		JWTSecret: cfg.Auth.JWTSecret,
	}, HandlerOptions{
		MaxInitDataBytes: cfg.Auth.MaxInitDataBytes,
		InitDataMaxAge:   cfg.Auth.InitDataMaxAge,
		Logger:           deps.Logger,
		Metrics:          deps.Metrics,
		Audit:            deps.Audit,
		TracerProvider:   deps.TracerProvider,
		Clock:            deps.Clock,
	})
	s.authHandlers.RegisterRoutes(s.router, cfg.Auth.Path)

	// Validate rejects bad entries; an unchecked bad list trusts no proxy
	trusted, err := httputil.ParseTrustedProxies(cfg.Server.TrustedProxies)
	if err != nil {
		deps.Logger.WithError(err).Warn("Ignoring trusted proxies")
		trusted = nil
	}

	var middlewares []func(http.Handler) http.Handler
	if deps.Metrics != nil {
		middlewares = append(middlewares, observability.HTTPMetricsMiddleware(deps.Metrics, s.routeLabel))
	}
	middlewares = append(middlewares,
		httputil.CORSMiddleware(httputil.DefaultCORSConfig()),
		httputil.RequestIDMiddleware,
		httputil.ClientIPMiddleware(trusted),
		httputil.LoggingMiddleware(deps.Logger),
		httputil.RecoveryMiddleware(deps.Logger),
		httputil.TimeoutMiddleware(cfg.Server.RequestTimeout),
		httputil.MaxBytesMiddleware(cfg.Server.MaxBodyBytes),
	)

	s.handler = otelhttp.NewHandler(
		httputil.Chain(middlewares...)(s.router),
		"launchgate",
		otelhttp.WithTracerProvider(deps.TracerProvider),
		otelhttp.WithSpanNameFormatter(func(operation string, r *http.Request) string {
			return observability.MethodLabel(r.Method) + " " + s.routeLabel(r)
		}),
	)

	return s
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// routeLabel returns the path template of the route r matches, or
// observability.UnmatchedRoute for unknown paths and methods
func (s *Server) routeLabel(r *http.Request) string {
	var match mux.RouteMatch
	if !s.router.Match(r, &match) || match.MatchErr != nil || match.Route == nil {
		return observability.UnmatchedRoute
	}
	template, err := match.Route.GetPathTemplate()
	if err != nil {
		return observability.UnmatchedRoute
	}
	return template
}

// Router exposes the underlying router, e.g. for route inspection in tests
func (s *Server) Router() *mux.Router {
	return s.router
}
