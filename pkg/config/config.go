package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/platinummonkey/launchgate/pkg/httputil"
	"github.com/platinummonkey/launchgate/pkg/observability"
	"gopkg.in/yaml.v3"
)

// Environment variable names for the two secrets. They are only ever read
// from the environment, never from the config file.
const (
	EnvBotToken  = "TG_BOT_TOKEN"
	EnvJWTSecret = "SUPABASE_JWT_SECRET"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig `yaml:"server"`

	// Auth holds the secrets and token endpoint limits
	Auth AuthConfig `yaml:"auth"`

	// Observability configuration
	Observability ObservabilityConfig `yaml:"observability"`

	// Audit configuration
	Audit AuditConfig `yaml:"audit"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string        `env:"LAUNCHGATE_HOST" yaml:"host"`
	Port            string        `env:"LAUNCHGATE_PORT" yaml:"port"`
	ReadTimeout     time.Duration `env:"LAUNCHGATE_READ_TIMEOUT" yaml:"read_timeout"`
	WriteTimeout    time.Duration `env:"LAUNCHGATE_WRITE_TIMEOUT" yaml:"write_timeout"`
	IdleTimeout     time.Duration `env:"LAUNCHGATE_IDLE_TIMEOUT" yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `env:"LAUNCHGATE_SHUTDOWN_TIMEOUT" yaml:"shutdown_timeout"`

	// RequestTimeout bounds the handling of a single request, 0 disables it
	RequestTimeout time.Duration `env:"LAUNCHGATE_REQUEST_TIMEOUT" yaml:"request_timeout"`
	MaxBodyBytes   int64         `env:"LAUNCHGATE_MAX_BODY_BYTES" yaml:"max_body_bytes"`

	// TrustedProxies lists CIDR ranges or addresses of reverse proxies whose
	// X-Forwarded-For and X-Real-IP headers are believed. Empty trusts none.
	TrustedProxies []string `env:"LAUNCHGATE_TRUSTED_PROXIES" envSeparator:"," yaml:"trusted_proxies"`

	// Health/metrics server (separate port for k8s probes)
	HealthPort string `env:"LAUNCHGATE_HEALTH_PORT" yaml:"health_port"`
}

// AuthConfig holds the token endpoint settings
type AuthConfig struct {
	BotToken  string `env:"TG_BOT_TOKEN" yaml:"-"`
	JWTSecret string `env:"SUPABASE_JWT_SECRET" yaml:"-"`

	Path             string `env:"LAUNCHGATE_AUTH_PATH" yaml:"path"`
	MaxInitDataBytes int    `env:"LAUNCHGATE_MAX_INIT_DATA_BYTES" yaml:"max_init_data_bytes"`

	// InitDataMaxAge rejects launch payloads whose auth_date is older, 0 disables the check
	InitDataMaxAge time.Duration `env:"LAUNCHGATE_INIT_DATA_MAX_AGE" yaml:"init_data_max_age"`
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	// Logging
	LogLevel string `env:"LAUNCHGATE_LOG_LEVEL" yaml:"log_level"`

	// Metrics
	MetricsEnabled bool `env:"LAUNCHGATE_METRICS_ENABLED" yaml:"metrics_enabled"`

	// OpenTelemetry
	OTelEnabled        bool   `env:"LAUNCHGATE_OTEL_ENABLED" yaml:"otel_enabled"`
	OTelEndpoint       string `env:"LAUNCHGATE_OTEL_ENDPOINT" yaml:"otel_endpoint"`
	OTelServiceName    string `env:"LAUNCHGATE_OTEL_SERVICE_NAME" yaml:"otel_service_name"`
	OTelServiceVersion string `env:"LAUNCHGATE_OTEL_SERVICE_VERSION" yaml:"otel_service_version"`
	OTelInsecure       bool   `env:"LAUNCHGATE_OTEL_INSECURE" yaml:"otel_insecure"` // Use insecure gRPC connection
	OTelEnvironment    string `env:"LAUNCHGATE_OTEL_ENVIRONMENT" yaml:"otel_environment"`

	// OTelSampleRatio is the share of root traces kept, from 0 to 1
	OTelSampleRatio float64 `env:"LAUNCHGATE_OTEL_SAMPLE_RATIO" yaml:"otel_sample_ratio"`
}

// AuditConfig selects where authentication audit events are written
type AuditConfig struct {
	// LogDir enables the rotating NDJSON file logger
	LogDir   string `env:"LAUNCHGATE_AUDIT_LOG_DIR" yaml:"log_dir"`
	MaxSize  int64  `env:"LAUNCHGATE_AUDIT_MAX_SIZE_BYTES" yaml:"max_size_bytes"`
	MaxFiles int    `env:"LAUNCHGATE_AUDIT_MAX_FILES" yaml:"max_files"`

	// Stdout writes audit events to standard output
	Stdout bool `env:"LAUNCHGATE_AUDIT_STDOUT" yaml:"stdout"`

	// Workers moves audit writes off the request path, 0 writes synchronously
	Workers   int `env:"LAUNCHGATE_AUDIT_WORKERS" yaml:"workers"`
	QueueSize int `env:"LAUNCHGATE_AUDIT_QUEUE_SIZE" yaml:"queue_size"`
}

// fileEnv names the optional YAML file layered under the environment
type fileEnv struct {
	Path string `env:"LAUNCHGATE_CONFIG_FILE"`
}

// Default returns the configuration used when nothing is set
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            "8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  5 * time.Second,
			MaxBodyBytes:    64 * 1024,
			HealthPort:      "9090",
		},
		Auth: AuthConfig{
			Path:             "/telegram-auth",
			MaxInitDataBytes: 16 * 1024,
		},
		Observability: ObservabilityConfig{
			LogLevel:           "info",
			MetricsEnabled:     true,
			OTelEndpoint:       "localhost:4317",
			OTelServiceName:    "launchgate",
			OTelServiceVersion: "1.0.0",
			OTelInsecure:       true,
			OTelSampleRatio:    1,
		},
		Audit: AuditConfig{
			MaxSize:   100 * 1024 * 1024,
			MaxFiles:  10,
			QueueSize: 1024,
		},
	}
}

// Load builds the configuration from defaults, the optional YAML file named
// by LAUNCHGATE_CONFIG_FILE, and the environment, in increasing precedence
func Load() (*Config, error) {
	var file fileEnv
	if err := ParseEnv(&file); err != nil {
		return nil, err
	}
	return LoadFile(file.Path)
}

// LoadFile is Load with an explicit YAML path; an empty path skips the file
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}

	if err := ParseEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// ParseEnv loads configuration from environment variables
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// mergeFile overlays the YAML file onto cfg
func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// Validate checks if the configuration is valid. Missing secrets are not an
// error; see MissingSecrets.
func (c *Config) Validate() error {
	// Validate server config
	if err := validatePort("server port", c.Server.Port); err != nil {
		return err
	}
	if err := validatePort("health port", c.Server.HealthPort); err != nil {
		return err
	}
	if c.Server.Port == c.Server.HealthPort {
		return fmt.Errorf("server port and health port must be different")
	}
	if c.Server.RequestTimeout < 0 {
		return fmt.Errorf("request timeout must not be negative")
	}
	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("max body bytes must be positive")
	}
	if _, err := httputil.ParseTrustedProxies(c.Server.TrustedProxies); err != nil {
		return err
	}

	// Validate auth config
	if !strings.HasPrefix(c.Auth.Path, "/") {
		return fmt.Errorf("auth path must start with /: %q", c.Auth.Path)
	}
	if c.Auth.MaxInitDataBytes <= 0 {
		return fmt.Errorf("max initData bytes must be positive")
	}
	if c.Auth.InitDataMaxAge < 0 {
		return fmt.Errorf("initData max age must not be negative")
	}

	// Validate logging config
	switch strings.ToLower(strings.TrimSpace(c.Observability.LogLevel)) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Observability.LogLevel)
	}

	// Validate OpenTelemetry config
	if c.Observability.OTelEnabled {
		if c.Observability.OTelEndpoint == "" {
			return fmt.Errorf("OpenTelemetry endpoint is required when OTel is enabled")
		}
		if c.Observability.OTelServiceName == "" {
			return fmt.Errorf("OpenTelemetry service name is required when OTel is enabled")
		}
		if c.Observability.OTelSampleRatio < 0 || c.Observability.OTelSampleRatio > 1 {
			return fmt.Errorf("OpenTelemetry sample ratio must be between 0 and 1: %v", c.Observability.OTelSampleRatio)
		}
	}

	// Validate audit config
	if c.Audit.LogDir != "" && (c.Audit.MaxSize < 0 || c.Audit.MaxFiles < 0) {
		return fmt.Errorf("audit rotation limits must not be negative")
	}
	if c.Audit.Workers < 0 {
		return fmt.Errorf("audit workers must not be negative")
	}
	if c.Audit.Workers > 0 && c.Audit.QueueSize <= 0 {
		return fmt.Errorf("audit queue size must be positive when audit workers are enabled")
	}

	return nil
}

// LogLevel returns the parsed log level
func (c *Config) LogLevel() observability.LogLevel {
	return observability.ParseLogLevel(c.Observability.LogLevel)
}

// MissingSecrets lists the environment variables of unset secrets
func (c *Config) MissingSecrets() []string {
	var missing []string
	if c.Auth.BotToken == "" {
		missing = append(missing, EnvBotToken)
	}
	if c.Auth.JWTSecret == "" {
		missing = append(missing, EnvJWTSecret)
	}
	return missing
}

// SecretsConfigured reports whether both secrets are set
func (c *Config) SecretsConfigured() bool {
	return len(c.MissingSecrets()) == 0
}

// Addr returns the API listen address
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + c.Port
}

// HealthAddr returns the health and metrics listen address
func (c *ServerConfig) HealthAddr() string {
	return c.Host + ":" + c.HealthPort
}

func validatePort(name, port string) error {
	if port == "" {
		return fmt.Errorf("%s is required", name)
	}
	n, err := strconv.Atoi(port)
	if err != nil || n < 0 || n > 65535 {
		return fmt.Errorf("invalid %s: %s", name, port)
	}
	return nil
}
