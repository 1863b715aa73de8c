// Package service exposes base conversion over HTTP: a JSON API, a WebSocket
// endpoint that converts as the user types, and health and metrics endpoints.
package service

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/Suhaibinator/SConvert/pkg/common"
	"github.com/Suhaibinator/SConvert/pkg/metrics"
	"github.com/Suhaibinator/SConvert/pkg/middleware"
	"github.com/Suhaibinator/SConvert/pkg/radix"
	"github.com/Suhaibinator/SConvert/pkg/sanitize"
	"go.uber.org/zap"
)

// Default live connection settings.
const (
	DefaultLiveReadTimeout  = 60 * time.Second
	DefaultLivePingInterval = 54 * time.Second
	DefaultLiveMaxMessage   = 4096
	liveWriteTimeout        = 10 * time.Second
)

// Config configures a Service.
type Config struct {
	Logger   *zap.Logger
	Options  sanitize.Options
	Metrics  *metrics.ConversionMetrics // optional
	Registry *metrics.Registry          // serves GET /metrics when set

	// Auth, when set, guards every /v1 route.
	Auth middleware.AuthProvider

	// AllowedOrigins lists the Origin values accepted on /v1/live.
	// Empty allows same-host requests only; "*" allows any origin.
	AllowedOrigins []string

	LiveReadTimeout  time.Duration
	LivePingInterval time.Duration
	LiveMaxMessage   int64
}

// Service performs conversions for the HTTP front ends.
type Service struct {
	logger   *zap.Logger
	opts     sanitize.Options
	metrics  *metrics.ConversionMetrics
	registry *metrics.Registry
	auth     middleware.AuthProvider
	origins  []string

	readTimeout  time.Duration
	pingInterval time.Duration
	maxMessage   int64

	mu      sync.Mutex
	clients map[*liveClient]struct{}
	closed  bool
}

// New creates a Service. Zero values in cfg take their defaults.
func New(cfg Config) *Service {
	s := &Service{
		logger:       cfg.Logger,
		opts:         cfg.Options,
		metrics:      cfg.Metrics,
		registry:     cfg.Registry,
		auth:         cfg.Auth,
		origins:      cfg.AllowedOrigins,
		readTimeout:  cfg.LiveReadTimeout,
		pingInterval: cfg.LivePingInterval,
		maxMessage:   cfg.LiveMaxMessage,
		clients:      make(map[*liveClient]struct{}),
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.opts == (sanitize.Options{}) {
		s.opts = sanitize.DefaultOptions()
	}
	if s.readTimeout <= 0 {
		s.readTimeout = DefaultLiveReadTimeout
	}
	if s.pingInterval <= 0 {
		s.pingInterval = DefaultLivePingInterval
	}
	if s.pingInterval >= s.readTimeout {
		s.pingInterval = s.readTimeout * 9 / 10
	}
	if s.maxMessage <= 0 {
		s.maxMessage = DefaultLiveMaxMessage
	}
	return s
}

// Options returns the validation options in effect.
func (s *Service) Options() sanitize.Options {
	return s.opts
}

// Convert validates req and converts it. Validation failures are returned as
// *sanitize.FieldError and never reach the conversion core.
func (s *Service) Convert(ctx context.Context, req radix.Request) (string, error) {
	if err := sanitize.Check(req, s.opts); err != nil {
		s.observe(ctx, req, "", err, 0)
		return "", err
	}

	start := time.Now()
	result, err := req.Convert()
	s.observe(ctx, req, result, err, time.Since(start))
	if err != nil {
		// Check already validated the request, so only float64 range is left.
		return "", &sanitize.FieldError{Field: sanitize.FieldNumber, Err: err}
	}
	return result, nil
}

func (s *Service) observe(ctx context.Context, req radix.Request, result string, err error, d time.Duration) {
	s.metrics.Observe(req.From, req.To, err, d, len(result))

	if ce := s.logger.Check(zap.DebugLevel, "Conversion"); ce != nil {
		fields := []zap.Field{
			zap.String("number", req.Digits),
			zap.Int("from", req.From),
			zap.Int("to", req.To),
			zap.Int("precision", req.Precision),
			zap.Duration("duration", d),
		}
		if traceID := middleware.GetTraceIDFromContext(ctx); traceID != "" {
			fields = append([]zap.Field{zap.String("trace_id", traceID)}, fields...)
		}
		if err != nil {
			fields = append(fields, zap.Error(err))
		} else {
			fields = append(fields, zap.String("result", result))
		}
		ce.Write(fields...)
	}
}

// Close disconnects every live client and refuses new ones.
func (s *Service) Close() {
	s.mu.Lock()
	s.closed = true
	clients := make([]*liveClient, 0, len(s.clients))
	for c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.Unlock()

	for _, c := range clients {
		c.goingAway()
	}
}

// authMiddleware returns the authentication middleware, or nil when auth is off.
func (s *Service) authMiddleware() common.Middleware {
	if s.auth == nil {
		return nil
	}
	return middleware.Authentication(s.auth, s.logger)
}

// validationError maps a conversion error to a status code and field.
func validationError(err error) (int, string) {
	var fe *sanitize.FieldError
	if errors.As(err, &fe) {
		return http.StatusBadRequest, fe.Field
	}
	return http.StatusInternalServerError, ""
}
