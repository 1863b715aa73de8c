package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/Suhaibinator/SConvert/pkg/codec"
	"github.com/Suhaibinator/SConvert/pkg/common"
	"go.uber.org/zap"
)

// DefaultAPIKeyHeader is the header APIKeyProvider reads when none is configured.
const DefaultAPIKeyHeader = "X-API-Key"

// AuthProvider defines an interface for authentication providers.
type AuthProvider interface {
	// Authenticate returns true if the request carries valid credentials.
	Authenticate(r *http.Request) bool
}

// AuthProviderFunc adapts a plain function to AuthProvider.
type AuthProviderFunc func(r *http.Request) bool

// Authenticate calls f(r).
func (f AuthProviderFunc) Authenticate(r *http.Request) bool {
	return f(r)
}

// APIKeyProvider accepts requests carrying one of Keys in a header or query parameter.
type APIKeyProvider struct {
	Keys   []string
	Header string // header name, DefaultAPIKeyHeader when empty
	Query  string // query parameter name, disabled when empty
}

// Authenticate implements AuthProvider.
func (p *APIKeyProvider) Authenticate(r *http.Request) bool {
	header := p.Header
	if header == "" {
		header = DefaultAPIKeyHeader
	}
	if key := r.Header.Get(header); key != "" {
		return matchKey(p.Keys, key)
	}
	if p.Query != "" {
		if key := r.URL.Query().Get(p.Query); key != "" {
			return matchKey(p.Keys, key)
		}
	}
	return false
}

// BearerTokenProvider accepts "Authorization: Bearer <token>" with a token from
// Tokens, or one approved by Validator when set.
type BearerTokenProvider struct {
	Tokens    []string
	Validator func(token string) bool
}

// Authenticate implements AuthProvider.
func (p *BearerTokenProvider) Authenticate(r *http.Request) bool {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || token == "" {
		return false
	}
	if p.Validator != nil {
		return p.Validator(token)
	}
	return matchKey(p.Tokens, token)
}

// AnyProvider accepts a request when any of its providers does.
type AnyProvider []AuthProvider

// Authenticate implements AuthProvider.
func (p AnyProvider) Authenticate(r *http.Request) bool {
	for _, provider := range p {
		if provider.Authenticate(r) {
			return true
		}
	}
	return false
}

// matchKey compares candidate against every key in constant time.
func matchKey(keys []string, candidate string) bool {
	found := 0
	for _, k := range keys {
		found |= subtle.ConstantTimeCompare([]byte(k), []byte(candidate))
	}
	return found == 1
}

// Authentication rejects requests the provider does not accept with a JSON
// 401 Unauthorized response.
func Authentication(provider AuthProvider, logger *zap.Logger) common.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !provider.Authenticate(r) {
				logger.Warn("Authentication failed",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.String("client_ip", ClientIP(r)),
					zap.String("trace_id", GetTraceID(r)),
				)
				codec.WriteError(w, http.StatusUnauthorized, codec.ErrorResponse{
					Error:   "Unauthorized",
					TraceID: GetTraceID(r),
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// NewAPIKeyMiddleware is shorthand for Authentication with an APIKeyProvider.
func NewAPIKeyMiddleware(keys []string, header, query string, logger *zap.Logger) common.Middleware {
	return Authentication(&APIKeyProvider{Keys: keys, Header: header, Query: query}, logger)
}

// NewBearerTokenMiddleware is shorthand for Authentication with a BearerTokenProvider.
func NewBearerTokenMiddleware(tokens []string, logger *zap.Logger) common.Middleware {
	return Authentication(&BearerTokenProvider{Tokens: tokens}, logger)
}
