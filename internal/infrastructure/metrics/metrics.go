// Package metrics exposes Prometheus collectors for the HTTP layer and the ledger.
package metrics

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"sitebook/internal/core/id"
	"sitebook/internal/domain/audit"
)

// Collectors groups the metrics the server records.
type Collectors struct {
	requests  *prometheus.CounterVec
	latency   *prometheus.HistogramVec
	mutations *prometheus.CounterVec
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Collectors {
	f := promauto.With(reg)
	return &Collectors{
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sitebook",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		latency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "sitebook",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		mutations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sitebook",
			Name:      "ledger_mutations_total",
			Help:      "Audited ledger mutations by entity and action.",
		}, []string{"entity", "action"}),
	}
}

// ObserveRequest records one finished HTTP request.
func (c *Collectors) ObserveRequest(route, method string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	c.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	c.latency.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

// CountingRecorder counts every successfully recorded audit entry.
type CountingRecorder struct {
	next      audit.Recorder
	mutations *prometheus.CounterVec
}

// WrapRecorder decorates next with the ledger mutation counter.
func (c *Collectors) WrapRecorder(next audit.Recorder) *CountingRecorder {
	return &CountingRecorder{next: next, mutations: c.mutations}
}

// Record implements audit.Recorder.
func (r *CountingRecorder) Record(ctx context.Context, entityType string, entityID id.ID, action string, payload any) error {
	if err := r.next.Record(ctx, entityType, entityID, action, payload); err != nil {
		return err
	}
	r.mutations.WithLabelValues(entityType, action).Inc()
	return nil
}
