package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"
)

// IPSourceType defines the source for client IP addresses
type IPSourceType string

const (
	// IPSourceRemoteAddr uses the request's RemoteAddr field
	IPSourceRemoteAddr IPSourceType = "remote_addr"

	// IPSourceXForwardedFor uses the leftmost X-Forwarded-For entry
	IPSourceXForwardedFor IPSourceType = "x_forwarded_for"

	// IPSourceXRealIP uses the X-Real-IP header
	IPSourceXRealIP IPSourceType = "x_real_ip"

	// IPSourceCustomHeader uses the header named by IPConfig.CustomHeader
	IPSourceCustomHeader IPSourceType = "custom_header"
)

// IPConfig defines configuration for IP extraction
type IPConfig struct {
	// Source specifies where to extract the client IP from
	Source IPSourceType `yaml:"source"`

	// CustomHeader is the name of the header to use when Source is IPSourceCustomHeader
	CustomHeader string `yaml:"custom_header"`

	// TrustProxy allows proxy headers to be used at all. When false, or when the
	// chosen header is missing, RemoteAddr is used.
	TrustProxy bool `yaml:"trust_proxy"`
}

// DefaultIPConfig returns the default IP configuration, which ignores proxy headers.
func DefaultIPConfig() *IPConfig {
	return &IPConfig{
		Source:     IPSourceRemoteAddr,
		TrustProxy: false,
	}
}

// contextKey is a type for context keys
type contextKey string

// ClientIPKey is the key used to store the client IP in the request context
const ClientIPKey contextKey = "client_ip"

// ClientIP returns the client IP stored by ClientIPMiddleware, or an empty string.
func ClientIP(r *http.Request) string {
	if ip, ok := r.Context().Value(ClientIPKey).(string); ok {
		return ip
	}
	return ""
}

// ClientIPMiddleware creates a middleware that extracts the client IP from the request
// and adds it to the request context
func ClientIPMiddleware(config *IPConfig) func(http.Handler) http.Handler {
	if config == nil {
		config = DefaultIPConfig()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), ClientIPKey, extractClientIP(r, config))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractClientIP extracts the client IP from the request based on the configuration
func extractClientIP(r *http.Request, config *IPConfig) string {
	var ip string

	if config.TrustProxy {
		switch config.Source {
		case IPSourceXForwardedFor:
			ip = firstForwardedFor(r.Header.Get("X-Forwarded-For"))
		case IPSourceXRealIP:
			ip = r.Header.Get("X-Real-IP")
		case IPSourceCustomHeader:
			if config.CustomHeader != "" {
				ip = r.Header.Get(config.CustomHeader)
			}
		}
	}

	if ip == "" {
		ip = r.RemoteAddr
	}
	return cleanIP(strings.TrimSpace(ip))
}

// firstForwardedFor returns the leftmost (original client) entry of an X-Forwarded-For list
func firstForwardedFor(xff string) string {
	first, _, _ := strings.Cut(xff, ",")
	return strings.TrimSpace(first)
}

// cleanIP removes a port and IPv6 brackets if present
func cleanIP(ip string) string {
	if host, _, err := net.SplitHostPort(ip); err == nil {
		return host
	}
	return strings.TrimSuffix(strings.TrimPrefix(ip, "["), "]")
}
