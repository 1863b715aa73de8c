package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Suhaibinator/SConvert/pkg/common"
	"github.com/Suhaibinator/SConvert/pkg/config"
	"github.com/Suhaibinator/SConvert/pkg/metrics"
	"github.com/Suhaibinator/SConvert/pkg/middleware"
	"github.com/Suhaibinator/SConvert/pkg/router"
	"github.com/Suhaibinator/SConvert/pkg/service"
	"go.uber.org/zap"
)

// ServeCmd runs the HTTP service until SIGINT or SIGTERM.
type ServeCmd struct {
	Config string `name:"config" short:"c" type:"existingfile" help:"YAML configuration file"`
	Addr   string `name:"addr" help:"Listen address, overrides server.addr"`
}

// Run loads the configuration and serves until interrupted.
func (c *ServeCmd) Run(g *Globals) error {
	cfg := config.Default()
	if c.Config != "" {
		var err error
		if cfg, err = config.Load(c.Config); err != nil {
			return err
		}
	}
	if c.Addr != "" {
		cfg.Server.Addr = c.Addr
	}

	logger, err := config.NewLogger(cfg.Logging)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	srv, err := newServer(cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	return srv.serve(ctx, ln)
}

// server bundles the HTTP server with the pieces that need an orderly shutdown.
type server struct {
	cfg     *config.Config
	logger  *zap.Logger
	http    *http.Server
	router  *router.Router
	service *service.Service
}

// newServer wires configuration, metrics, router and service together.
func newServer(cfg *config.Config, logger *zap.Logger) (*server, error) {
	var (
		registry    *metrics.Registry
		convMetrics *metrics.ConversionMetrics
		httpMetrics *metrics.HTTPMetrics
	)
	if cfg.Metrics.Enabled {
		registry = metrics.NewRegistry(cfg.Metrics.Namespace)
		if cfg.Metrics.Runtime {
			if err := registry.RegisterRuntime(); err != nil {
				return nil, err
			}
		}
		var err error
		if convMetrics, err = metrics.NewConversionMetrics(registry); err != nil {
			return nil, err
		}
		if httpMetrics, err = metrics.NewHTTPMetrics(registry, nil); err != nil {
			return nil, err
		}
		// Scrapes are not API traffic.
		httpMetrics.Filter = func(r *http.Request) bool { return r.URL.Path != "/metrics" }
	}

	var globals []common.Middleware
	if len(cfg.CORS.Origins) > 0 {
		globals = append(globals, middleware.CORS(cfg.CORS.Origins, cfg.CORS.Methods, cfg.CORS.Headers))
	}

	r := router.NewRouter(router.RouterConfig{
		Logger:            logger,
		GlobalTimeout:     cfg.Router.Timeout,
		GlobalMaxBodySize: cfg.Router.MaxBodySize,
		GlobalRateLimit:   cfg.Router.RateLimit,
		ThrottleRPS:       cfg.Router.ThrottleRPS,
		IPConfig:          cfg.Router.IP,
		EnableMetrics:     httpMetrics != nil,
		EnableTraceID:     cfg.Router.TraceID,
		Metrics:           httpMetrics,
		Middlewares:       globals,
	})

	svc := service.New(service.Config{
		Logger:           logger,
		Options:          cfg.SanitizeOptions(),
		Metrics:          convMetrics,
		Registry:         registry,
		Auth:             cfg.Auth.Provider(),
		AllowedOrigins:   cfg.Live.AllowedOrigins,
		LiveReadTimeout:  cfg.Live.ReadTimeout,
		LivePingInterval: cfg.Live.PingInterval,
		LiveMaxMessage:   cfg.Live.MaxMessage,
	})
	svc.Register(r)

	return &server{
		cfg:    cfg,
		logger: logger,
		http: &http.Server{
			Handler:      r,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			IdleTimeout:  cfg.Server.IdleTimeout,
			ErrorLog:     zap.NewStdLog(logger),
		},
		router:  r,
		service: svc,
	}, nil
}

// serve accepts connections on ln until ctx is done, then shuts down within
// the configured shutdown timeout.
func (s *server) serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Serving", zap.String("addr", ln.Addr().String()))
		errCh <- s.http.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()

	// Live connections are hijacked, so http.Server.Shutdown does not track them.
	s.service.Close()
	if err := s.router.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("Router shutdown incomplete", zap.Error(err))
	}
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.Info("Server stopped")
	return nil
}
