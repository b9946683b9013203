package metric

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/complitracker/complitracker-go/internal/core/domain"
)

const namespace = "complitracker"

// Outcome labels for remote calls.
const (
	OutcomeOK          = "ok"
	OutcomeRejected    = "rejected"
	OutcomeUnreachable = "unreachable"
	OutcomeError       = "error"
)

// Registry holds all application metrics.
type Registry struct {
	reg *prometheus.Registry

	SessionTransitions *prometheus.CounterVec
	RemoteRequests     *prometheus.CounterVec
	RemoteDuration     *prometheus.HistogramVec
}

// NewRegistry creates a registry with the application metrics and the Go
// runtime and process collectors.
func NewRegistry() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),
		SessionTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_transitions_total",
			Help:      "Session state transitions by target status.",
		}, []string{"status"}),
		RemoteRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "remote_requests_total",
			Help:      "Backend calls by operation and outcome.",
		}, []string{"op", "outcome"}),
		RemoteDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "remote_request_duration_seconds",
			Help:      "Backend call latency by operation.",
			Buckets:   []float64{.025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"op"}),
	}

	r.reg.MustRegister(
		r.SessionTransitions,
		r.RemoteRequests,
		r.RemoteDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// Registerer exposes the registry to components that add their own
// collectors.
func (r *Registry) Registerer() prometheus.Registerer {
	return r.reg
}

// Gatherer exposes the registry for tests and exporters.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

// SessionTransition counts a move to status.
func (r *Registry) SessionTransition(status domain.Status) {
	r.SessionTransitions.WithLabelValues(status.String()).Inc()
}

// ObserveRemote records one backend call.
func (r *Registry) ObserveRemote(op, outcome string, elapsed time.Duration) {
	r.RemoteRequests.WithLabelValues(op, outcome).Inc()
	r.RemoteDuration.WithLabelValues(op).Observe(elapsed.Seconds())
}

// Handler returns an HTTP handler for the /metrics endpoint.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}
