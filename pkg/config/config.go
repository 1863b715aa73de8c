// Package config loads the YAML configuration of the conversion server.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/Suhaibinator/SConvert/pkg/middleware"
	"github.com/Suhaibinator/SConvert/pkg/radix"
	"github.com/Suhaibinator/SConvert/pkg/sanitize"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// RouterConfig configures the request pipeline.
type RouterConfig struct {
	Timeout     time.Duration               `yaml:"timeout"`
	MaxBodySize int64                       `yaml:"max_body_size"`
	TraceID     bool                        `yaml:"trace_id"`
	ThrottleRPS int                         `yaml:"throttle_rps"`
	RateLimit   *middleware.RateLimitConfig `yaml:"rate_limit"`
	IP          *middleware.IPConfig        `yaml:"ip"`
}

// ConversionConfig bounds what clients may ask for.
type ConversionConfig struct {
	DefaultPrecision int  `yaml:"default_precision"`
	MaxPrecision     int  `yaml:"max_precision"`
	AllowUnary       bool `yaml:"allow_unary"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
	Encoding    string `yaml:"encoding"` // "json" or "console"
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Namespace string `yaml:"namespace"`
	Runtime   bool   `yaml:"runtime"`
}

// AuthConfig enables authentication on the /v1 routes when APIKeys or
// BearerTokens is non-empty. A request passes with either credential.
type AuthConfig struct {
	APIKeys      []string `yaml:"api_keys"`
	Header       string   `yaml:"header"`
	Query        string   `yaml:"query"`
	BearerTokens []string `yaml:"bearer_tokens"`
}

// Provider returns the provider for the configured credentials, or nil when
// authentication is off.
func (a AuthConfig) Provider() middleware.AuthProvider {
	var providers middleware.AnyProvider
	if len(a.APIKeys) > 0 {
		providers = append(providers, &middleware.APIKeyProvider{Keys: a.APIKeys, Header: a.Header, Query: a.Query})
	}
	if len(a.BearerTokens) > 0 {
		providers = append(providers, &middleware.BearerTokenProvider{Tokens: a.BearerTokens})
	}
	switch len(providers) {
	case 0:
		return nil
	case 1:
		return providers[0]
	}
	return providers
}

// CORSConfig sets the CORS headers. Empty Origins disables CORS.
type CORSConfig struct {
	Origins []string `yaml:"origins"`
	Methods []string `yaml:"methods"`
	Headers []string `yaml:"headers"`
}

// LiveConfig configures the WebSocket endpoint.
type LiveConfig struct {
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	PingInterval   time.Duration `yaml:"ping_interval"`
	MaxMessage     int64         `yaml:"max_message"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
}

// Config is the top-level structure of the configuration file.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Router     RouterConfig     `yaml:"router"`
	Conversion ConversionConfig `yaml:"conversion"`
	Logging    LoggingConfig    `yaml:"logging"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Auth       AuthConfig       `yaml:"auth"`
	CORS       CORSConfig       `yaml:"cors"`
	Live       LiveConfig       `yaml:"live"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     5 * time.Second,
			WriteTimeout:    10 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Router: RouterConfig{
			Timeout:     2 * time.Second,
			MaxBodySize: 4 << 10,
			TraceID:     true,
			RateLimit: &middleware.RateLimitConfig{
				BucketName: "v1",
				Limit:      50,
				Window:     time.Second,
				Strategy:   middleware.StrategyIP,
			},
			IP: middleware.DefaultIPConfig(),
		},
		Conversion: ConversionConfig{
			DefaultPrecision: radix.DefaultPrecision,
			MaxPrecision:     radix.MaxPrecision,
			AllowUnary:       true,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Encoding: "json",
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: "baseconv",
		},
		Auth: AuthConfig{
			Header: middleware.DefaultAPIKeyHeader,
		},
		Live: LiveConfig{
			ReadTimeout:  60 * time.Second,
			PingInterval: 54 * time.Second,
			MaxMessage:   4096,
		},
	}
}

// Load reads the file at path over the defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults and validates the result. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports the first inconsistent setting.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return errors.New("server.addr must be set")
	}
	if c.Server.ShutdownTimeout < 0 {
		return errors.New("server.shutdown_timeout must not be negative")
	}
	if c.Router.Timeout < 0 {
		return errors.New("router.timeout must not be negative")
	}
	if c.Router.MaxBodySize < 0 {
		return errors.New("router.max_body_size must not be negative")
	}
	if c.Router.ThrottleRPS < 0 {
		return errors.New("router.throttle_rps must not be negative")
	}
	if rl := c.Router.RateLimit; rl != nil {
		if rl.Limit <= 0 || rl.Window <= 0 {
			return fmt.Errorf("router.rate_limit: limit and window must be positive, got %d per %v", rl.Limit, rl.Window)
		}
		switch rl.Strategy {
		case "", middleware.StrategyIP:
		default:
			return fmt.Errorf("router.rate_limit.strategy: %q is not supported in a config file", rl.Strategy)
		}
	}
	if ip := c.Router.IP; ip != nil {
		switch ip.Source {
		case "", middleware.IPSourceRemoteAddr, middleware.IPSourceXForwardedFor, middleware.IPSourceXRealIP:
		case middleware.IPSourceCustomHeader:
			if ip.CustomHeader == "" {
				return errors.New("router.ip.custom_header must be set for source custom_header")
			}
		default:
			return fmt.Errorf("router.ip.source: unknown source %q", ip.Source)
		}
	}

	conv := c.Conversion
	if err := radix.ValidatePrecision(conv.MaxPrecision); err != nil {
		return fmt.Errorf("conversion.max_precision: %w", err)
	}
	if conv.DefaultPrecision < 0 || conv.DefaultPrecision > conv.MaxPrecision {
		return fmt.Errorf("conversion.default_precision: %d not in [0, %d]", conv.DefaultPrecision, conv.MaxPrecision)
	}

	if _, err := zap.ParseAtomicLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	switch c.Logging.Encoding {
	case "", "json", "console":
	default:
		return fmt.Errorf("logging.encoding: unknown encoding %q", c.Logging.Encoding)
	}

	if c.Live.ReadTimeout < 0 || c.Live.PingInterval < 0 || c.Live.MaxMessage < 0 {
		return errors.New("live: timeouts and max_message must not be negative")
	}
	return nil
}

// SanitizeOptions returns the validation options for the conversion front ends.
func (c *Config) SanitizeOptions() sanitize.Options {
	return sanitize.Options{
		AllowUnary:       c.Conversion.AllowUnary,
		DefaultPrecision: c.Conversion.DefaultPrecision,
		MaxPrecision:     c.Conversion.MaxPrecision,
	}
}

// NewLogger builds a zap logger from cfg.
func NewLogger(cfg LoggingConfig) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
	}

	if cfg.Level != "" {
		level, err := zap.ParseAtomicLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("logging.level: %w", err)
		}
		zc.Level = level
	}
	if cfg.Encoding != "" {
		zc.Encoding = cfg.Encoding
	}
	return zc.Build()
}
