package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/Suhaibinator/SConvert/pkg/codec"
	"github.com/Suhaibinator/SConvert/pkg/common"
	"go.uber.org/ratelimit"
	"go.uber.org/zap"
)

// Rate limit strategies.
const (
	// StrategyIP keys the limit on the client IP
	StrategyIP = "ip"
	// StrategyCustom keys the limit on RateLimitConfig.KeyExtractor
	StrategyCustom = "custom"
)

// RateLimitConfig defines configuration for rate limiting
type RateLimitConfig struct {
	// Unique identifier for this rate limit bucket.
	// Routes sharing a BucketName share the same counters.
	BucketName string `yaml:"bucket"`

	// Maximum number of requests allowed per key in the time window
	Limit int `yaml:"limit"`

	// Length of the time window
	Window time.Duration `yaml:"window"`

	// Strategy for identifying clients: "ip" (default) or "custom"
	Strategy string `yaml:"strategy"`

	// Custom key extractor function (used when Strategy is "custom")
	KeyExtractor func(*http.Request) (string, error) `yaml:"-"`

	// Response to send when rate limit is exceeded.
	// If nil, a JSON 429 Too Many Requests response is sent.
	ExceededHandler http.Handler `yaml:"-"`
}

// RateLimiter decides whether a request identified by key may proceed.
type RateLimiter interface {
	// Allow reports whether the request is allowed, how many requests remain
	// in the current window and how long until the window resets.
	Allow(key string, limit int, window time.Duration) (bool, int, time.Duration)
}

type window struct {
	start time.Time
	count int
}

// WindowRateLimiter implements RateLimiter with fixed windows per key.
type WindowRateLimiter struct {
	mu      sync.Mutex
	windows map[string]*window
	now     func() time.Time
}

// NewWindowRateLimiter creates an empty fixed-window limiter.
func NewWindowRateLimiter() *WindowRateLimiter {
	return &WindowRateLimiter{
		windows: make(map[string]*window),
		now:     time.Now,
	}
}

// Allow implements RateLimiter. A non-positive limit is treated as 1 and a
// non-positive window as one second.
func (l *WindowRateLimiter) Allow(key string, limit int, length time.Duration) (bool, int, time.Duration) {
	if limit <= 0 {
		limit = 1
	}
	if length <= 0 {
		length = time.Second
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.windows[key]
	if !ok || now.Sub(w.start) >= length {
		l.sweep(now, length)
		w = &window{start: now}
		l.windows[key] = w
	}

	reset := length - now.Sub(w.start)
	if w.count >= limit {
		return false, 0, reset
	}
	w.count++
	return true, limit - w.count, reset
}

// sweep drops expired windows so idle clients do not accumulate. Callers hold l.mu.
func (l *WindowRateLimiter) sweep(now time.Time, length time.Duration) {
	if len(l.windows) < 1024 {
		return
	}
	for k, w := range l.windows {
		if now.Sub(w.start) >= length {
			delete(l.windows, k)
		}
	}
}

// RateLimit creates a middleware that enforces rate limits
func RateLimit(config *RateLimitConfig, limiter RateLimiter, logger *zap.Logger) common.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Skip rate limiting if config is nil
			if config == nil {
				next.ServeHTTP(w, r)
				return
			}

			key := ClientIP(r)
			if key == "" {
				key = cleanIP(r.RemoteAddr)
			}
			if config.Strategy == StrategyCustom && config.KeyExtractor != nil {
				custom, err := config.KeyExtractor(r)
				if err != nil {
					logger.Error("Failed to extract rate limit key",
						zap.Error(err),
						zap.String("method", r.Method),
						zap.String("path", r.URL.Path),
					)
					codec.WriteError(w, http.StatusInternalServerError, codec.ErrorResponse{Error: "Internal Server Error"})
					return
				}
				key = custom
			}

			allowed, remaining, reset := limiter.Allow(config.BucketName+":"+key, config.Limit, config.Window)

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(config.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(reset).Unix(), 10))

			if !allowed {
				retry := int64(reset / time.Second)
				if reset%time.Second != 0 {
					retry++
				}
				w.Header().Set("Retry-After", strconv.FormatInt(retry, 10))

				logger.Warn("Rate limit exceeded",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.String("key", key),
					zap.Int("limit", config.Limit),
					zap.String("trace_id", GetTraceID(r)),
				)

				if config.ExceededHandler != nil {
					config.ExceededHandler.ServeHTTP(w, r)
				} else {
					codec.WriteError(w, http.StatusTooManyRequests, codec.ErrorResponse{
						Error:   "Too Many Requests",
						TraceID: GetTraceID(r),
					})
				}
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// Throttle paces all requests through a single leaky bucket so that no more
// than rps requests per second reach next. Requests beyond the pace wait their
// turn instead of being rejected. A non-positive rps disables throttling.
func Throttle(rps int) common.Middleware {
	if rps <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	limiter := ratelimit.New(rps, ratelimit.WithSlack(rps))
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			limiter.Take()
			next.ServeHTTP(w, r)
		})
	}
}
