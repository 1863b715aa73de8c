package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// TestAPIKeyProvider tests header and query lookups
func TestAPIKeyProvider(t *testing.T) {
	provider := &APIKeyProvider{Keys: []string{"secret", "other"}, Query: "api_key"}

	tests := []struct {
		name   string
		header string
		query  string
		want   bool
	}{
		{"header", "secret", "", true},
		{"second key", "other", "", true},
		{"wrong header", "nope", "", false},
		{"query", "", "secret", true},
		{"wrong header wins over query", "nope", "secret", false},
		{"missing", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := "/v1/convert"
			if tt.query != "" {
				target += "?api_key=" + tt.query
			}
			req := httptest.NewRequest("GET", target, nil)
			if tt.header != "" {
				req.Header.Set(DefaultAPIKeyHeader, tt.header)
			}
			if got := provider.Authenticate(req); got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

// TestBearerTokenProvider tests token and validator checks
func TestBearerTokenProvider(t *testing.T) {
	provider := &BearerTokenProvider{Tokens: []string{"tok"}}

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer tok")
	if !provider.Authenticate(req) {
		t.Error("Expected valid token to authenticate")
	}

	req.Header.Set("Authorization", "Basic tok")
	if provider.Authenticate(req) {
		t.Error("Expected non-bearer scheme to fail")
	}

	validator := &BearerTokenProvider{Validator: func(token string) bool { return token == "dynamic" }}
	req.Header.Set("Authorization", "Bearer dynamic")
	if !validator.Authenticate(req) {
		t.Error("Expected validator to accept token")
	}
}

// TestAuthentication tests the middleware response on failure
func TestAuthentication(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	handler := NewAPIKeyMiddleware([]string{"secret"}, "", "", zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/v1/convert/10/2/5", nil))
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("Expected status %d, got %d", http.StatusUnauthorized, rr.Code)
	}
	if got := rr.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("Expected JSON error, got content type %q", got)
	}
	if logs.Len() != 1 {
		t.Errorf("Expected 1 log entry, got %d", logs.Len())
	}

	req := httptest.NewRequest("GET", "/v1/convert/10/2/5", nil)
	req.Header.Set(DefaultAPIKeyHeader, "secret")
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, rr.Code)
	}

	bearer := NewBearerTokenMiddleware([]string{"tok"}, zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	rr = httptest.NewRecorder()
	bearer.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("Expected bearer middleware to reject, got %d", rr.Code)
	}

	fn := Authentication(AuthProviderFunc(func(r *http.Request) bool { return true }), zap.NewNop())
	rr = httptest.NewRecorder()
	fn(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})).ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))
	if rr.Code != http.StatusOK {
		t.Errorf("Expected func provider to accept, got %d", rr.Code)
	}
}

// TestAnyProvider tests that a request passes with any one of several credentials
func TestAnyProvider(t *testing.T) {
	provider := AnyProvider{
		&APIKeyProvider{Keys: []string{"key"}},
		&BearerTokenProvider{Tokens: []string{"tok"}},
	}

	withKey := httptest.NewRequest("GET", "/", nil)
	withKey.Header.Set(DefaultAPIKeyHeader, "key")
	withToken := httptest.NewRequest("GET", "/", nil)
	withToken.Header.Set("Authorization", "Bearer tok")
	wrong := httptest.NewRequest("GET", "/", nil)
	wrong.Header.Set("Authorization", "Bearer key")

	if !provider.Authenticate(withKey) {
		t.Error("Expected API key to be accepted")
	}
	if !provider.Authenticate(withToken) {
		t.Error("Expected bearer token to be accepted")
	}
	if provider.Authenticate(wrong) {
		t.Error("Expected an API key sent as a bearer token to be rejected")
	}
	if (AnyProvider{}).Authenticate(withKey) {
		t.Error("Expected an empty AnyProvider to reject")
	}
}
