// Package middleware provides the HTTP middleware used by the conversion service.
package middleware

import (
	"context"
	"net/http"

	"github.com/Suhaibinator/SConvert/pkg/common"
	"github.com/google/uuid"
)

// TraceIDHeader carries the trace ID on requests and responses.
const TraceIDHeader = "X-Request-ID"

// maxTraceIDLength bounds caller-supplied trace IDs.
const maxTraceIDLength = 128

// traceIDKey is the key used to store the trace ID in the request context
type traceIDKey struct{}

// TraceIDKey is the context key under which the trace ID is stored.
var TraceIDKey = traceIDKey{}

// TraceMiddleware assigns every request a trace ID and stores it in the request
// context. A well-formed X-Request-ID supplied by the caller is reused, otherwise
// a new UUID is generated. The ID is echoed in the response header.
func TraceMiddleware() common.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			traceID := r.Header.Get(TraceIDHeader)
			if !validTraceID(traceID) {
				traceID = uuid.New().String()
			}

			w.Header().Set(TraceIDHeader, traceID)
			next.ServeHTTP(w, r.WithContext(WithTraceID(r.Context(), traceID)))
		})
	}
}

// validTraceID accepts non-empty IDs of printable ASCII up to maxTraceIDLength.
func validTraceID(id string) bool {
	if id == "" || len(id) > maxTraceIDLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < 0x21 || id[i] > 0x7e {
			return false
		}
	}
	return true
}

// WithTraceID returns a copy of ctx carrying traceID.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIDKey, traceID)
}

// GetTraceID extracts the trace ID from the request context.
// Returns an empty string if no trace ID is found.
func GetTraceID(r *http.Request) string {
	return GetTraceIDFromContext(r.Context())
}

// GetTraceIDFromContext extracts the trace ID from a context.
// Returns an empty string if no trace ID is found.
func GetTraceIDFromContext(ctx context.Context) string {
	if traceID, ok := ctx.Value(TraceIDKey).(string); ok {
		return traceID
	}
	return ""
}
