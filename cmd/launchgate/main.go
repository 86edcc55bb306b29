package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/platinummonkey/launchgate/pkg/api"
	"github.com/platinummonkey/launchgate/pkg/audit"
	"github.com/platinummonkey/launchgate/pkg/config"
	"github.com/platinummonkey/launchgate/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := observability.NewLogger(cfg.LogLevel(), os.Stdout).WithField("service", cfg.Observability.OTelServiceName)

	// Missing secrets are not fatal: the endpoint answers 400 until they are set
	if missing := cfg.MissingSecrets(); len(missing) > 0 {
		logger.WithField("missing", strings.Join(missing, ",")).
			Warn("Secrets are not configured, token requests will be rejected")
	}

	ctx := context.Background()

	providers, err := observability.InitOTel(ctx, observability.OTelConfig{
		Enabled:        cfg.Observability.OTelEnabled,
		Endpoint:       cfg.Observability.OTelEndpoint,
		ServiceName:    cfg.Observability.OTelServiceName,
		ServiceVersion: cfg.Observability.OTelServiceVersion,
		Insecure:       cfg.Observability.OTelInsecure,
		Environment:    cfg.Observability.OTelEnvironment,
		SampleRatio:    cfg.Observability.OTelSampleRatio,
		AuthPath:       cfg.Auth.Path,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	registry := prometheus.NewRegistry()
	var metrics *observability.Metrics
	if cfg.Observability.MetricsEnabled {
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		metrics = observability.NewMetrics(registry)
		metrics.SetSecretsConfigured(cfg.SecretsConfigured())
	}

	auditLogger, err := newAuditLogger(cfg.Audit)
	if err != nil {
		return err
	}
	if cfg.Audit.Workers > 0 {
		auditLogger = audit.NewAsyncLogger(auditLogger, audit.AsyncLoggerConfig{
			Workers:      cfg.Audit.Workers,
			QueueSize:    cfg.Audit.QueueSize,
			CloseTimeout: cfg.Server.ShutdownTimeout,
			OnError: func(err error) {
				logger.WithError(err).Error("Failed to write audit event")
			},
		})
	}

	health := observability.NewHealthChecker(cfg.Observability.OTelServiceVersion)
	health.AddCheck("bot_token", observability.SecretCheck(cfg.Auth.BotToken != ""))
	health.AddCheck("jwt_secret", observability.SecretCheck(cfg.Auth.JWTSecret != ""))

	errorLog := logger.WithField("component", "http").Writer()

	apiServer := &http.Server{
		Addr: cfg.Server.Addr(),
		Handler: api.NewServer(cfg, api.Dependencies{
			Logger:  logger,
			Metrics: metrics,
			Audit:   auditLogger,
		}),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ErrorLog:          log.New(errorLog, "", 0),
	}

	healthMux := http.NewServeMux()
	observability.RegisterHealthRoutes(healthMux, health)
	if metrics != nil {
		observability.RegisterMetricsEndpoint(healthMux, registry)
	}
	healthServer := &http.Server{
		Addr:              cfg.Server.HealthAddr(),
		Handler:           healthMux,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		ErrorLog:          log.New(errorLog, "", 0),
	}

	shutdown := observability.NewShutdownManager(logger, cfg.Server.ShutdownTimeout, apiServer, healthServer)
	shutdown.RegisterShutdownFunc(func(ctx context.Context) error {
		return observability.ShutdownOTel(ctx, providers, logger)
	})
	shutdown.RegisterShutdownFunc(func(ctx context.Context) error {
		return auditLogger.Close()
	})
	shutdown.RegisterShutdownFunc(func(ctx context.Context) error {
		return errorLog.Close()
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.WithField("addr", apiServer.Addr).WithField("path", cfg.Auth.Path).Info("Starting token endpoint")
		return serve(apiServer)
	})
	g.Go(func() error {
		logger.WithField("addr", healthServer.Addr).Info("Starting health and metrics server")
		return serve(healthServer)
	})
	g.Go(func() error {
		return shutdown.WaitForShutdown(gctx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("Shutdown complete")
	return nil
}

// serve runs srv until it is shut down
func serve(srv *http.Server) error {
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server %s failed: %w", srv.Addr, err)
	}
	return nil
}

// newAuditLogger builds the audit destinations the configuration asks for
func newAuditLogger(cfg config.AuditConfig) (audit.Logger, error) {
	var loggers []audit.Logger

	if cfg.Stdout {
		loggers = append(loggers, audit.NewWriterLogger(os.Stdout))
	}

	if cfg.LogDir != "" {
		fileCfg := audit.DefaultFileLoggerConfig()
		fileCfg.BasePath = cfg.LogDir
		if cfg.MaxSize > 0 {
			fileCfg.MaxSize = cfg.MaxSize
		}
		if cfg.MaxFiles > 0 {
			fileCfg.MaxFiles = cfg.MaxFiles
		}

		fileLogger, err := audit.NewFileLogger(fileCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create audit file logger: %w", err)
		}
		loggers = append(loggers, fileLogger)
	}

	switch len(loggers) {
	case 0:
		return audit.NewNoOpLogger(), nil
	case 1:
		return loggers[0], nil
	default:
		return audit.NewMultiLogger(loggers...), nil
	}
}
