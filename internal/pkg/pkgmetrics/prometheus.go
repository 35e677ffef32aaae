package pkgmetrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry wraps a prometheus registry under a fixed namespace.
type Registry struct {
	namespace string
	reg       *prometheus.Registry
}

// NewRegistry returns a registry preloaded with Go runtime and process collectors.
func NewRegistry(namespace string) *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Registry{namespace: namespace, reg: reg}
}

// CounterVec creates and registers a counter vector. It panics on duplicate
// registration, which only happens on wiring mistakes at startup.
func (r *Registry) CounterVec(subsystem, name, help string, labels ...string) *prometheus.CounterVec {
	c := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: r.namespace,
		Subsystem: subsystem,
		Name:      name,
		Help:      help,
	}, labels)
	r.reg.MustRegister(c)

	return c
}

// Handler serves the registry in the prometheus text format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}
