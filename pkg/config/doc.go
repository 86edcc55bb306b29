// Package config provides application configuration management from environment variables.
//
// # Overview
//
// This package loads and validates configuration with sensible defaults for all
// settings. Values come from three layers, later layers winning:
//
//  1. Built-in defaults (Default)
//  2. An optional YAML file named by LAUNCHGATE_CONFIG_FILE
//  3. Environment variables, parsed with caarlos0/env
//
// Secrets are read from the environment only. A missing secret is not a load
// error: the server starts, reports not ready, and answers every token request
// with 400 until it is configured.
//
// # Configuration Structure
//
// Secrets:
//
//	TG_BOT_TOKEN="123456:ABC..."
//	SUPABASE_JWT_SECRET="..."
//
// Server settings:
//
//	LAUNCHGATE_HOST="0.0.0.0"
//	LAUNCHGATE_PORT="8080"
//	LAUNCHGATE_HEALTH_PORT="9090"
//	LAUNCHGATE_REQUEST_TIMEOUT="5s"
//	LAUNCHGATE_MAX_BODY_BYTES="65536"
//
// Token endpoint settings:
//
//	LAUNCHGATE_AUTH_PATH="/telegram-auth"
//	LAUNCHGATE_MAX_INIT_DATA_BYTES="16384"
//	LAUNCHGATE_INIT_DATA_MAX_AGE="24h"  # 0 disables the freshness check
//
// Observability settings:
//
//	LAUNCHGATE_LOG_LEVEL="info"  # debug, info, warn, error
//	LAUNCHGATE_METRICS_ENABLED="true"
//	LAUNCHGATE_OTEL_ENABLED="true"
//	LAUNCHGATE_OTEL_ENDPOINT="otel-collector:4317"
//
// Audit settings:
//
//	LAUNCHGATE_AUDIT_STDOUT="true"
//	LAUNCHGATE_AUDIT_LOG_DIR="/var/log/launchgate/audit"
//
// # Usage Example
//
//	cfg, err := config.Load()
//	if err != nil {
//		log.Fatal(err)
//	}
//	if missing := cfg.MissingSecrets(); len(missing) > 0 {
//		logger.Warnf("secrets not configured: %v", missing)
//	}
//
// # Related Packages
//
//   - pkg/api: Uses server and auth configuration
//   - pkg/observability: Uses observability configuration
package config
