package middleware

import (
	"bufio"
	"context"
	"net"
	"net/http"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/Suhaibinator/SConvert/pkg/codec"
	"github.com/Suhaibinator/SConvert/pkg/common"
	"go.uber.org/zap"
)

// Middleware is an alias for common.Middleware.
type Middleware = common.Middleware

// SlowRequestThreshold is the duration above which Logging reports a request as slow.
const SlowRequestThreshold = time.Second

// Chain chains multiple middlewares together
func Chain(middlewares ...Middleware) Middleware {
	return func(next http.Handler) http.Handler {
		return common.NewMiddlewareChain(middlewares...).Then(next)
	}
}

// Recovery is a middleware that recovers from panics
func Recovery(logger *zap.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("Panic recovered",
						zap.Any("panic", rec),
						zap.String("stack", string(debug.Stack())),
						zap.String("method", r.Method),
						zap.String("path", r.URL.Path),
						zap.String("trace_id", GetTraceID(r)),
					)

					codec.WriteError(w, http.StatusInternalServerError, codec.ErrorResponse{
						Error:   "Internal Server Error",
						TraceID: GetTraceID(r),
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// Logging is a middleware that logs requests
func Logging(logger *zap.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			rw := NewResponseWriter(w)
			next.ServeHTTP(rw, r)

			duration := time.Since(start)
			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", rw.StatusCode()),
				zap.Duration("duration", duration),
				zap.Int64("bytes", rw.BytesWritten()),
			}
			if traceID := GetTraceID(r); traceID != "" {
				fields = append([]zap.Field{zap.String("trace_id", traceID)}, fields...)
			}

			// Use appropriate log level based on status code and duration
			switch {
			case rw.StatusCode() >= 500:
				logger.Error("Server error", append(fields, zap.String("client_ip", ClientIP(r)))...)
			case rw.StatusCode() >= 400:
				logger.Warn("Client error", fields...)
			case duration > SlowRequestThreshold:
				logger.Warn("Slow request", fields...)
			default:
				logger.Debug("Request", fields...)
			}
		})
	}
}

// MaxBodySize is a middleware that limits the size of the request body
func MaxBodySize(maxSize int64) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if maxSize > 0 && r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxSize)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Timeout is a middleware that bounds the time a handler may take. When the
// deadline passes first, the client gets a 408 and later writes by the handler
// are discarded.
func Timeout(timeout time.Duration) Middleware {
	return func(next http.Handler) http.Handler {
		if timeout <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()
			r = r.WithContext(ctx)

			wrappedW := &timeoutResponseWriter{ResponseWriter: w}

			done := make(chan struct{})
			panicked := make(chan any, 1)
			go func() {
				defer func() {
					if rec := recover(); rec != nil {
						panicked <- rec
					}
				}()
				next.ServeHTTP(wrappedW, r)
				close(done)
			}()

			select {
			case <-done:
				return
			case rec := <-panicked:
				// Re-raise on the serving goroutine so Recovery can handle it
				panic(rec)
			case <-ctx.Done():
				if wrappedW.timeout() {
					codec.WriteError(w, http.StatusRequestTimeout, codec.ErrorResponse{
						Error:   "Request Timeout",
						TraceID: GetTraceID(r),
					})
				}
				return
			}
		})
	}
}

// CORS is a middleware that adds CORS headers to the response
func CORS(origins []string, methods []string, headers []string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(origins) > 0 {
				w.Header().Set("Access-Control-Allow-Origin", strings.Join(origins, ", "))
			}
			if len(methods) > 0 {
				w.Header().Set("Access-Control-Allow-Methods", strings.Join(methods, ", "))
			}
			if len(headers) > 0 {
				w.Header().Set("Access-Control-Allow-Headers", strings.Join(headers, ", "))
			}

			// Handle preflight requests
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ResponseWriter wraps an http.ResponseWriter and records the status code and
// the number of body bytes written.
type ResponseWriter struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int64
	wroteHeader  bool
}

// NewResponseWriter wraps w. The status code defaults to 200.
func NewResponseWriter(w http.ResponseWriter) *ResponseWriter {
	return &ResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

// WriteHeader captures the status code and calls the underlying ResponseWriter.WriteHeader
func (rw *ResponseWriter) WriteHeader(statusCode int) {
	if !rw.wroteHeader {
		rw.statusCode = statusCode
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(statusCode)
}

// Write counts the bytes and calls the underlying ResponseWriter.Write
func (rw *ResponseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	n, err := rw.ResponseWriter.Write(b)
	rw.bytesWritten += int64(n)
	return n, err
}

// Flush calls the underlying ResponseWriter.Flush if it implements http.Flusher
func (rw *ResponseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap exposes the wrapped writer to http.ResponseController, which the
// WebSocket upgrade relies on to hijack the connection.
func (rw *ResponseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// Hijack lets WebSocket upgrades take over the connection.
func (rw *ResponseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := rw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, http.ErrNotSupported
	}
	rw.statusCode = http.StatusSwitchingProtocols
	rw.wroteHeader = true
	return h.Hijack()
}

// StatusCode returns the recorded status code.
func (rw *ResponseWriter) StatusCode() int {
	return rw.statusCode
}

// BytesWritten returns the number of body bytes written so far.
func (rw *ResponseWriter) BytesWritten() int64 {
	return rw.bytesWritten
}

// timeoutResponseWriter serializes writes with the timeout path and drops
// them once the timeout response has been sent.
type timeoutResponseWriter struct {
	http.ResponseWriter
	mu       sync.Mutex
	timedOut bool
	wrote    bool
}

// timeout marks the writer as timed out. It reports false when the handler
// already started a response, in which case no timeout reply may be written.
func (rw *timeoutResponseWriter) timeout() bool {
	rw.mu.Lock()
	defer rw.mu.Unlock()
	rw.timedOut = true
	return !rw.wrote
}

// WriteHeader acquires the mutex and calls the underlying ResponseWriter.WriteHeader
func (rw *timeoutResponseWriter) WriteHeader(statusCode int) {
	rw.mu.Lock()
	defer rw.mu.Unlock()
	if rw.timedOut {
		return
	}
	rw.wrote = true
	rw.ResponseWriter.WriteHeader(statusCode)
}

// Write acquires the mutex and calls the underlying ResponseWriter.Write
func (rw *timeoutResponseWriter) Write(b []byte) (int, error) {
	rw.mu.Lock()
	defer rw.mu.Unlock()
	if rw.timedOut {
		return 0, http.ErrHandlerTimeout
	}
	rw.wrote = true
	return rw.ResponseWriter.Write(b)
}

// Flush acquires the mutex and calls the underlying ResponseWriter.Flush if it implements http.Flusher
func (rw *timeoutResponseWriter) Flush() {
	rw.mu.Lock()
	defer rw.mu.Unlock()
	if f, ok := rw.ResponseWriter.(http.Flusher); ok && !rw.timedOut {
		f.Flush()
	}
}

// Hijack takes over the connection unless the timeout response was already sent.
func (rw *timeoutResponseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	rw.mu.Lock()
	defer rw.mu.Unlock()
	if rw.timedOut {
		return nil, nil, http.ErrHandlerTimeout
	}
	h, ok := rw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, http.ErrNotSupported
	}
	rw.wrote = true
	return h.Hijack()
}
