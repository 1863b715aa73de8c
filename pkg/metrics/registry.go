// Package metrics exposes Prometheus metrics for conversions and HTTP traffic.
package metrics

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultNamespace prefixes every metric name when no namespace is configured.
const DefaultNamespace = "baseconv"

// Registry wraps a private Prometheus registry so that several servers, or
// tests, in one process never collide on the global default registry.
type Registry struct {
	registry  *prometheus.Registry
	namespace string
}

// NewRegistry creates an empty registry. Metric names are prefixed with namespace.
func NewRegistry(namespace string) *Registry {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return &Registry{
		registry:  prometheus.NewRegistry(),
		namespace: namespace,
	}
}

// Namespace returns the metric name prefix.
func (r *Registry) Namespace() string {
	return r.namespace
}

// Prometheus returns the underlying registry.
func (r *Registry) Prometheus() *prometheus.Registry {
	return r.registry
}

// RegisterRuntime adds the Go runtime and process collectors.
func (r *Registry) RegisterRuntime() error {
	if err := r.register(collectors.NewGoCollector()); err != nil {
		return err
	}
	return r.register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{Namespace: r.namespace}))
}

// Handler returns an HTTP handler serving the registry in the Prometheus text format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

func (r *Registry) register(c prometheus.Collector) error {
	if err := r.registry.Register(c); err != nil {
		return fmt.Errorf("register collector: %w", err)
	}
	return nil
}
