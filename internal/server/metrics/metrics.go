// Package metrics exposes the development server's Prometheus counters.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "gophadmin_devserver"

// Results recorded by the auth counters.
const (
	ResultOK           = "ok"
	ResultUnauthorized = "unauthorized"
	ResultError        = "error"
)

type Metrics struct {
	registry *prometheus.Registry

	Logins    *prometheus.CounterVec
	Refreshes *prometheus.CounterVec
	Logouts   *prometheus.CounterVec
	Profiles  *prometheus.CounterVec
}

// New registers the counters, plus Go runtime and process collectors, on a
// private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	vec := func(name, help string) *prometheus.CounterVec {
		c := prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		}, []string{"transport", "result"})
		reg.MustRegister(c)
		return c
	}

	return &Metrics{
		registry:  reg,
		Logins:    vec("logins_total", "Login attempts by transport and result."),
		Refreshes: vec("token_refreshes_total", "Refresh token rotations by transport and result."),
		Logouts:   vec("logouts_total", "Logout calls by transport and result."),
		Profiles:  vec("profile_requests_total", "Profile lookups by transport and result."),
	}
}

// Observe increments c for transport with the result derived from err.
func Observe(c *prometheus.CounterVec, transport string, err error, unauthorized func(error) bool) {
	result := ResultOK
	switch {
	case err == nil:
	case unauthorized(err):
		result = ResultUnauthorized
	default:
		result = ResultError
	}
	c.WithLabelValues(transport, result).Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
