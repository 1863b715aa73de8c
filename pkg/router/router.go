package router

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/Suhaibinator/SConvert/pkg/codec"
	"github.com/Suhaibinator/SConvert/pkg/common"
	"github.com/Suhaibinator/SConvert/pkg/middleware"
	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

// Router is the main router struct that implements http.Handler.
type Router struct {
	config      RouterConfig
	router      *httprouter.Router
	logger      *zap.Logger
	middlewares []common.Middleware
	rateLimiter middleware.RateLimiter
	wg          sync.WaitGroup
	shutdown    bool
	shutdownMu  sync.RWMutex
}

// contextKey is a type for context keys.
type contextKey string

const (
	// ParamsKey is the key used to store httprouter.Params in the request context.
	ParamsKey contextKey = "params"
)

// NewRouter creates a new Router with the given configuration and registers
// the routes of its sub-routers.
func NewRouter(config RouterConfig) *Router {
	hr := httprouter.New()

	logger := config.Logger
	if logger == nil {
		var err error
		logger, err = zap.NewProduction()
		if err != nil {
			// Fallback to a no-op logger if we can't create a production logger
			logger = zap.NewNop()
		}
	}

	rateLimiter := config.RateLimiter
	if rateLimiter == nil {
		rateLimiter = middleware.NewWindowRateLimiter()
	}

	r := &Router{
		config:      config,
		router:      hr,
		logger:      logger,
		rateLimiter: rateLimiter,
	}

	if config.ThrottleRPS > 0 {
		r.middlewares = append(r.middlewares, middleware.Throttle(config.ThrottleRPS))
	}
	r.middlewares = append(r.middlewares, config.Middlewares...)

	hr.NotFound = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		codec.WriteError(w, http.StatusNotFound, codec.ErrorResponse{Error: "Not Found"})
	})
	hr.MethodNotAllowed = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		codec.WriteError(w, http.StatusMethodNotAllowed, codec.ErrorResponse{Error: "Method Not Allowed"})
	})

	for _, sr := range config.SubRouters {
		r.registerSubRouter(sr)
	}

	return r
}

// Logger returns the router's logger.
func (r *Router) Logger() *zap.Logger {
	return r.logger
}

// registerSubRouter registers all routes in a sub-router under its path prefix.
func (r *Router) registerSubRouter(sr SubRouterConfig) {
	for _, route := range sr.Routes {
		fullPath := sr.PathPrefix + route.Path

		timeout := r.getEffectiveTimeout(route.Timeout, sr.TimeoutOverride)
		maxBodySize := r.getEffectiveMaxBodySize(route.MaxBodySize, sr.MaxBodySizeOverride)
		rateLimit := r.getEffectiveRateLimit(route.RateLimit, sr.RateLimitOverride)

		mws := make([]Middleware, 0, len(sr.Middlewares)+len(route.Middlewares))
		mws = append(mws, sr.Middlewares...)
		mws = append(mws, route.Middlewares...)

		handler := r.wrapHandler(fullPath, route.Handler, timeout, maxBodySize, rateLimit, mws)
		r.handle(route.Methods, fullPath, handler)
	}
}

// RegisterRoute registers a route with the router.
// For routes with typed request and response values, use RegisterGenericRoute.
func (r *Router) RegisterRoute(route RouteConfigBase) {
	timeout := r.getEffectiveTimeout(route.Timeout, 0)
	maxBodySize := r.getEffectiveMaxBodySize(route.MaxBodySize, 0)
	rateLimit := r.getEffectiveRateLimit(route.RateLimit, nil)

	handler := r.wrapHandler(route.Path, route.Handler, timeout, maxBodySize, rateLimit, route.Middlewares)
	r.handle(route.Methods, route.Path, handler)
}

// RegisterGenericRoute registers a route with typed request and response values.
// It is a function rather than a method because Go methods cannot have type parameters.
func RegisterGenericRoute[Req any, Resp any](r *Router, route RouteConfig[Req, Resp]) {
	timeout := r.getEffectiveTimeout(route.Timeout, 0)
	maxBodySize := r.getEffectiveMaxBodySize(route.MaxBodySize, 0)
	rateLimit := r.getEffectiveRateLimit(route.RateLimit, nil)

	handler := http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		data, err := route.Codec.Decode(req)
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				r.handleError(w, req, err, http.StatusRequestEntityTooLarge, "Request Entity Too Large")
				return
			}
			r.handleError(w, req, err, http.StatusBadRequest, "Failed to decode request")
			return
		}

		resp, err := route.Handler(req, data)
		if err != nil {
			r.handleError(w, req, err, http.StatusInternalServerError, "Internal Server Error")
			return
		}

		if err := route.Codec.Encode(w, resp); err != nil {
			r.logger.Error("Failed to encode response",
				zap.Error(err),
				zap.String("method", req.Method),
				zap.String("path", req.URL.Path),
				zap.String("trace_id", middleware.GetTraceID(req)),
			)
		}
	})

	wrapped := r.wrapHandler(route.Path, handler, timeout, maxBodySize, rateLimit, route.Middlewares)
	r.handle(route.Methods, route.Path, wrapped)
}

func (r *Router) handle(methods []string, path string, handler http.Handler) {
	for _, method := range methods {
		r.router.Handle(method, path, r.convertToHTTPRouterHandle(handler))
	}
}

// convertToHTTPRouterHandle stores the route parameters in the request context
// so that handlers can read them with GetParam.
func (r *Router) convertToHTTPRouterHandle(handler http.Handler) httprouter.Handle {
	return func(w http.ResponseWriter, req *http.Request, ps httprouter.Params) {
		ctx := context.WithValue(req.Context(), ParamsKey, ps)
		handler.ServeHTTP(w, req.WithContext(ctx))
	}
}

// wrapHandler builds the request pipeline for one route:
// trace ID, recovery, client IP, logging, metrics, global middlewares,
// route middlewares, rate limit, then the shutdown gate, body limit and timeout.
func (r *Router) wrapHandler(path string, handler http.HandlerFunc, timeout time.Duration, maxBodySize int64, rateLimit *middleware.RateLimitConfig, middlewares []Middleware) http.Handler {
	inner := common.NewMiddlewareChain(
		middleware.MaxBodySize(maxBodySize),
		middleware.Timeout(timeout),
	).Then(handler)

	h := http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		// Add to the wait group before checking the shutdown flag so that
		// Shutdown cannot miss a request that passed the check.
		r.wg.Add(1)

		r.shutdownMu.RLock()
		isShutdown := r.shutdown
		r.shutdownMu.RUnlock()

		if isShutdown {
			r.wg.Done()
			codec.WriteError(w, http.StatusServiceUnavailable, codec.ErrorResponse{
				Error:   "Service Unavailable",
				TraceID: middleware.GetTraceID(req),
			})
			return
		}
		defer r.wg.Done()

		inner.ServeHTTP(w, req)
	})

	// The trace ID is assigned first so that Recovery can report it.
	var chain common.MiddlewareChain
	if r.config.EnableTraceID {
		chain = chain.Append(middleware.TraceMiddleware())
	}
	chain = chain.Append(
		middleware.Recovery(r.logger),
		middleware.ClientIPMiddleware(r.config.IPConfig),
		middleware.Logging(r.logger),
	)
	if r.config.EnableMetrics && r.config.Metrics != nil {
		chain = chain.Append(r.config.Metrics.Middleware(path))
	}
	chain = chain.Append(r.middlewares...)
	chain = chain.Append(middlewares...)
	if rateLimit != nil {
		chain = chain.Append(middleware.RateLimit(rateLimit, r.rateLimiter, r.logger))
	}

	return chain.Then(h)
}

// ServeHTTP implements the http.Handler interface.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.router.ServeHTTP(w, req)
}

// Shutdown stops accepting new requests and waits for in-flight ones to
// complete. If ctx ends first, it returns the context's error.
func (r *Router) Shutdown(ctx context.Context) error {
	r.shutdownMu.Lock()
	r.shutdown = true
	r.shutdownMu.Unlock()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// GetParams retrieves the httprouter.Params from the request context.
func GetParams(r *http.Request) httprouter.Params {
	params, _ := r.Context().Value(ParamsKey).(httprouter.Params)
	return params
}

// GetParam retrieves a specific parameter from the request context.
func GetParam(r *http.Request, name string) string {
	return GetParams(r).ByName(name)
}

// getEffectiveTimeout returns the route timeout, else the sub-router's, else the global one.
func (r *Router) getEffectiveTimeout(routeTimeout, subRouterTimeout time.Duration) time.Duration {
	if routeTimeout > 0 {
		return routeTimeout
	}
	if subRouterTimeout > 0 {
		return subRouterTimeout
	}
	return r.config.GlobalTimeout
}

// getEffectiveMaxBodySize returns the route limit, else the sub-router's, else the global one.
func (r *Router) getEffectiveMaxBodySize(routeMaxBodySize, subRouterMaxBodySize int64) int64 {
	if routeMaxBodySize > 0 {
		return routeMaxBodySize
	}
	if subRouterMaxBodySize > 0 {
		return subRouterMaxBodySize
	}
	return r.config.GlobalMaxBodySize
}

// getEffectiveRateLimit returns the route rate limit, else the sub-router's, else the global one.
func (r *Router) getEffectiveRateLimit(routeRateLimit, subRouterRateLimit *middleware.RateLimitConfig) *middleware.RateLimitConfig {
	if routeRateLimit != nil {
		return routeRateLimit
	}
	if subRouterRateLimit != nil {
		return subRouterRateLimit
	}
	return r.config.GlobalRateLimit
}

// handleError logs err and writes a JSON error response. An *HTTPError in the
// chain overrides the status code, message and field.
func (r *Router) handleError(w http.ResponseWriter, req *http.Request, err error, statusCode int, message string) {
	resp := codec.ErrorResponse{Error: message, TraceID: middleware.GetTraceID(req)}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		statusCode = httpErr.StatusCode
		resp.Error = httpErr.Message
		resp.Field = httpErr.Field
	}

	fields := []zap.Field{
		zap.Error(err),
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.Int("status", statusCode),
	}
	if resp.TraceID != "" {
		fields = append([]zap.Field{zap.String("trace_id", resp.TraceID)}, fields...)
	}

	if statusCode >= http.StatusInternalServerError {
		r.logger.Error(message, fields...)
	} else {
		r.logger.Debug(message, fields...)
	}

	codec.WriteError(w, statusCode, resp)
}

// HTTPError represents an HTTP error with a status code and message.
// When returned from a generic handler, the router uses the status code and
// message to build the response.
type HTTPError struct {
	StatusCode int    // HTTP status code (e.g., 400, 404, 500)
	Message    string // Error message to be sent in the response body
	Field      string // Offending request field, if any
	Err        error  // Underlying cause, not sent to the client
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%d: %s: %v", e.StatusCode, e.Message, e.Err)
	}
	return fmt.Sprintf("%d: %s", e.StatusCode, e.Message)
}

// Unwrap returns the underlying cause.
func (e *HTTPError) Unwrap() error {
	return e.Err
}

// NewHTTPError creates a new HTTPError with the specified status code and message.
func NewHTTPError(statusCode int, message string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
	}
}
