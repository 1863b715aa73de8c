// Package router provides the HTTP routing layer the conversion service is mounted on.
// It supports middleware, sub-routers, generic JSON handlers, per-route limits and
// graceful shutdown on top of httprouter.
package router

import (
	"net/http"
	"time"

	"github.com/Suhaibinator/SConvert/pkg/common"
	"github.com/Suhaibinator/SConvert/pkg/metrics"
	"github.com/Suhaibinator/SConvert/pkg/middleware"
	"go.uber.org/zap"
)

// RouterConfig defines the global configuration for the router.
type RouterConfig struct {
	Logger            *zap.Logger                 // Logger for all router operations
	GlobalTimeout     time.Duration               // Default response timeout for all routes
	GlobalMaxBodySize int64                       // Default maximum request body size in bytes
	GlobalRateLimit   *middleware.RateLimitConfig // Default rate limit for all routes
	RateLimiter       middleware.RateLimiter      // Limiter backing every rate limit; a WindowRateLimiter when nil
	ThrottleRPS       int                         // Global pacing in requests per second, 0 disables it
	IPConfig          *middleware.IPConfig        // Configuration for client IP extraction
	EnableMetrics     bool                        // Record HTTP metrics in Metrics
	EnableTraceID     bool                        // Assign and log trace IDs
	Metrics           *metrics.HTTPMetrics        // HTTP metrics, required when EnableMetrics is set
	SubRouters        []SubRouterConfig           // Sub-routers with their own configurations
	Middlewares       []common.Middleware         // Global middlewares applied to all routes
}

// SubRouterConfig defines configuration for a group of routes with a common path prefix.
type SubRouterConfig struct {
	PathPrefix          string                      // Common path prefix for all routes in this sub-router
	TimeoutOverride     time.Duration               // Override global timeout for all routes in this sub-router
	MaxBodySizeOverride int64                       // Override global max body size for all routes in this sub-router
	RateLimitOverride   *middleware.RateLimitConfig // Override global rate limit for all routes in this sub-router
	Routes              []RouteConfigBase           // Routes in this sub-router
	Middlewares         []common.Middleware         // Middlewares applied to all routes in this sub-router
}

// RouteConfigBase defines the configuration for a route with a plain handler.
type RouteConfigBase struct {
	Path        string                      // Route path (prefixed with the sub-router path prefix if applicable)
	Methods     []string                    // HTTP methods this route handles
	Timeout     time.Duration               // Override timeout for this specific route
	MaxBodySize int64                       // Override max body size for this specific route
	RateLimit   *middleware.RateLimitConfig // Rate limit for this specific route
	Handler     http.HandlerFunc            // Standard HTTP handler function
	Middlewares []common.Middleware         // Middlewares applied to this specific route
}

// RouteConfig defines a route with typed request and response values that are
// decoded and encoded by Codec.
type RouteConfig[T any, U any] struct {
	Path        string                      // Route path
	Methods     []string                    // HTTP methods this route handles
	Timeout     time.Duration               // Override timeout for this specific route
	MaxBodySize int64                       // Override max body size for this specific route
	RateLimit   *middleware.RateLimitConfig // Rate limit for this specific route
	Codec       Codec[T, U]                 // Codec for decoding the request and encoding the response
	Handler     GenericHandler[T, U]        // Generic handler function
	Middlewares []common.Middleware         // Middlewares applied to this specific route
}

// Middleware is an alias for common.Middleware.
type Middleware = common.Middleware

// GenericHandler handles a decoded request value and returns the response value.
// Returning an *HTTPError controls the status code and message sent to the client.
type GenericHandler[T any, U any] func(r *http.Request, data T) (U, error)

// Codec decodes request bodies into T and encodes U into responses.
type Codec[T any, U any] interface {
	// Decode extracts and deserializes data from an HTTP request into a value of type T.
	Decode(r *http.Request) (T, error)

	// Encode serializes a value of type U and writes it to the HTTP response.
	Encode(w http.ResponseWriter, resp U) error
}
