package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
)

// TestTraceMiddlewareGenerates checks that a UUID is assigned when none is supplied
func TestTraceMiddlewareGenerates(t *testing.T) {
	var seen string
	handler := TraceMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetTraceID(r)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))

	if _, err := uuid.Parse(seen); err != nil {
		t.Errorf("Expected a UUID trace ID, got %q: %v", seen, err)
	}
	if got := rr.Header().Get(TraceIDHeader); got != seen {
		t.Errorf("Expected response header %q, got %q", seen, got)
	}
}

// TestTraceMiddlewareReusesHeader checks that a caller supplied ID is kept
func TestTraceMiddlewareReusesHeader(t *testing.T) {
	var seen string
	handler := TraceMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetTraceID(r)
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(TraceIDHeader, "client-123")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if seen != "client-123" {
		t.Errorf("Expected trace ID %q, got %q", "client-123", seen)
	}
	if got := rr.Header().Get(TraceIDHeader); got != "client-123" {
		t.Errorf("Expected response header %q, got %q", "client-123", got)
	}
}

// TestTraceMiddlewareRejectsBadHeader checks that unusable IDs are replaced
func TestTraceMiddlewareRejectsBadHeader(t *testing.T) {
	for _, bad := range []string{"has space", strings.Repeat("a", maxTraceIDLength+1), "tab\there"} {
		var seen string
		handler := TraceMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = GetTraceID(r)
		}))

		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set(TraceIDHeader, bad)
		handler.ServeHTTP(httptest.NewRecorder(), req)

		if seen == bad || seen == "" {
			t.Errorf("Expected %q to be replaced, got %q", bad, seen)
		}
	}
}

// TestGetTraceIDFromContext tests lookups on bare contexts
func TestGetTraceIDFromContext(t *testing.T) {
	if got := GetTraceIDFromContext(context.Background()); got != "" {
		t.Errorf("Expected empty trace ID, got %q", got)
	}
	if got := GetTraceIDFromContext(WithTraceID(context.Background(), "x")); got != "x" {
		t.Errorf("Expected %q, got %q", "x", got)
	}
}
