// Package config loads the pdef server configuration.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Logging  LoggingConfig  `yaml:"logging"`
	CORS     CORSConfig     `yaml:"cors"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Describe DescribeConfig `yaml:"describe"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Addr         string        `yaml:"addr" validate:"required,hostname_port"`
	BasePath     string        `yaml:"base_path" validate:"omitempty,startswith=/"`
	ReadTimeout  time.Duration `yaml:"read_timeout" validate:"gte=0"`
	WriteTimeout time.Duration `yaml:"write_timeout" validate:"gte=0"`
	MaxBodySize  int64         `yaml:"max_body_size" validate:"gte=0"` // bytes, 0 keeps the server default
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=json text"`
}

// CORSConfig configures cross-origin requests. CORS headers are only sent
// when Enabled is set.
type CORSConfig struct {
	Enabled          bool     `yaml:"enabled"`
	AllowOrigins     []string `yaml:"allow_origins" validate:"dive,required"`
	AllowHeaders     []string `yaml:"allow_headers"`
	ExposeHeaders    []string `yaml:"expose_headers"`
	AllowCredentials bool     `yaml:"allow_credentials"`
	MaxAge           int      `yaml:"max_age" validate:"gte=0"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path" validate:"startswith=/"`
}

// DescribeConfig configures the descriptor manifest endpoint.
type DescribeConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path" validate:"startswith=/"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{
		Metrics:  MetricsConfig{Enabled: true},
		Describe: DescribeConfig{Enabled: true},
	}
	setDefaults(cfg)
	return cfg
}

// Load reads configuration from a YAML file. Environment variables in the
// file are expanded, and PDEF_* variables override file values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes, defaults and validates YAML configuration.
func Parse(data []byte) (*Config, error) {
	data = []byte(os.ExpandEnv(string(data)))

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyEnvOverrides(cfg)
	setDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// LoadWithFallback loads path if it exists, otherwise the default
// configuration with PDEF_* overrides.
func LoadWithFallback(path string) (*Config, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}
	cfg := Default()
	applyEnvOverrides(cfg)
	setDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// applyEnvOverrides applies PDEF_* environment variables.
//
//	PDEF_ADDR           - listen address (default: :8080)
//	PDEF_BASE_PATH      - path prefix for the REST handler
//	PDEF_MAX_BODY_SIZE  - max request body size in bytes
//	PDEF_LOG_LEVEL      - debug, info, warn, error (default: info)
//	PDEF_LOG_FORMAT     - json or text (default: json)
//	PDEF_CORS_ORIGINS   - comma-separated allowed origins; enables CORS
//	PDEF_METRICS        - enable /metrics (default: true)
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PDEF_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("PDEF_BASE_PATH"); v != "" {
		cfg.Server.BasePath = v
	}
	if v := os.Getenv("PDEF_MAX_BODY_SIZE"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Server.MaxBodySize = n
		}
	}
	if v := os.Getenv("PDEF_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := os.Getenv("PDEF_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := os.Getenv("PDEF_CORS_ORIGINS"); v != "" {
		cfg.CORS.Enabled = true
		cfg.CORS.AllowOrigins = splitList(v)
	}
	if v := os.Getenv("PDEF_METRICS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Metrics.Enabled = b
		}
	}
}

func setDefaults(cfg *Config) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 30 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 30 * time.Second
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
	if cfg.Describe.Path == "" {
		cfg.Describe.Path = "/describe"
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks cfg against its validate tags and cross-field rules.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			msgs := make([]string, 0, len(ve))
			for _, fe := range ve {
				msgs = append(msgs, fmt.Sprintf("%s: failed %s", fe.Namespace(), fe.Tag()))
			}
			return errors.New(strings.Join(msgs, "; "))
		}
		return err
	}
	if cfg.Metrics.Enabled && cfg.Describe.Enabled && cfg.Metrics.Path == cfg.Describe.Path {
		return fmt.Errorf("metrics and describe share path %s", cfg.Metrics.Path)
	}
	return nil
}

// SlogLevel returns the slog level for the configured level name.
func (c LoggingConfig) SlogLevel() slog.Level {
	switch c.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger returns a logger writing to w in the configured format.
func (c LoggingConfig) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.SlogLevel()}
	if c.Format == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
