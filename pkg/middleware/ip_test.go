package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

// TestExtractClientIP tests every IP source with and without proxy trust
func TestExtractClientIP(t *testing.T) {
	tests := []struct {
		name    string
		config  *IPConfig
		headers map[string]string
		remote  string
		want    string
	}{
		{
			name:   "remote addr with port",
			config: DefaultIPConfig(),
			remote: "192.0.2.1:1234",
			want:   "192.0.2.1",
		},
		{
			name:    "proxy headers ignored by default",
			config:  DefaultIPConfig(),
			headers: map[string]string{"X-Forwarded-For": "203.0.113.9"},
			remote:  "192.0.2.1:1234",
			want:    "192.0.2.1",
		},
		{
			name:    "forwarded for leftmost entry",
			config:  &IPConfig{Source: IPSourceXForwardedFor, TrustProxy: true},
			headers: map[string]string{"X-Forwarded-For": " 203.0.113.9 , 10.0.0.1"},
			remote:  "192.0.2.1:1234",
			want:    "203.0.113.9",
		},
		{
			name:   "forwarded for missing falls back",
			config: &IPConfig{Source: IPSourceXForwardedFor, TrustProxy: true},
			remote: "192.0.2.1:1234",
			want:   "192.0.2.1",
		},
		{
			name:    "real ip",
			config:  &IPConfig{Source: IPSourceXRealIP, TrustProxy: true},
			headers: map[string]string{"X-Real-IP": "198.51.100.7"},
			remote:  "192.0.2.1:1234",
			want:    "198.51.100.7",
		},
		{
			name:    "custom header",
			config:  &IPConfig{Source: IPSourceCustomHeader, CustomHeader: "CF-Connecting-IP", TrustProxy: true},
			headers: map[string]string{"CF-Connecting-IP": "198.51.100.8"},
			remote:  "192.0.2.1:1234",
			want:    "198.51.100.8",
		},
		{
			name:   "ipv6 remote addr",
			config: DefaultIPConfig(),
			remote: "[2001:db8::1]:443",
			want:   "2001:db8::1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			if got := extractClientIP(req, tt.config); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

// TestClientIPMiddleware tests that the IP is stored in the context
func TestClientIPMiddleware(t *testing.T) {
	var seen string
	handler := ClientIPMiddleware(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = ClientIP(r)
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "192.0.2.5:999"
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if seen != "192.0.2.5" {
		t.Errorf("Expected %q, got %q", "192.0.2.5", seen)
	}
	if got := ClientIP(httptest.NewRequest("GET", "/", nil)); got != "" {
		t.Errorf("Expected empty IP without middleware, got %q", got)
	}
}
