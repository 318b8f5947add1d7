// Package observability provides Prometheus metrics for the poll loop.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Refresh outcomes.
const (
	OutcomeSuccess    = "success"
	OutcomeFailure    = "failure"
	OutcomeCanceled   = "canceled"
	OutcomeSuperseded = "superseded"
)

// Metrics holds all Prometheus metrics for the application. A nil *Metrics
// is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	RefreshTotal        *prometheus.CounterVec
	RefreshDuration     *prometheus.HistogramVec
	ConsecutiveFailures prometheus.Gauge
	NextDelaySeconds    prometheus.Gauge
	MarketItems         prometheus.Gauge
	CurrencyItems       prometheus.Gauge
	LastSuccess         prometheus.Gauge
	PollerState         *prometheus.GaugeVec
}

// NewMetrics creates a Metrics instance on its own registry.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "marketwatch"
	}
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		RefreshTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "refresh_total",
			Help:      "Refresh cycles by resource and outcome",
		}, []string{"resource", "outcome"}),
		RefreshDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "refresh_duration_seconds",
			Help:      "Wall time of a refresh including validation",
			Buckets:   prometheus.DefBuckets,
		}, []string{"resource"}),
		ConsecutiveFailures: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "consecutive_failures",
			Help:      "Consecutive failed market refreshes",
		}),
		NextDelaySeconds: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "next_delay_seconds",
			Help:      "Delay before the next scheduled tick",
		}),
		MarketItems: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "market_items",
			Help:      "Markets in the current snapshot",
		}),
		CurrencyItems: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "currency_items",
			Help:      "Currencies in the current snapshot",
		}),
		LastSuccess: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful market refresh",
		}),
		PollerState: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "state",
			Help:      "1 for the current poller state, 0 otherwise",
		}, []string{"state"}),
	}
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler returns an HTTP handler for the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveRefresh records one refresh of resource.
func (m *Metrics) ObserveRefresh(resource, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.RefreshTotal.WithLabelValues(resource, outcome).Inc()
	m.RefreshDuration.WithLabelValues(resource).Observe(elapsed.Seconds())
}

// SetFailures records the consecutive-failure counter.
func (m *Metrics) SetFailures(n int) {
	if m == nil {
		return
	}
	m.ConsecutiveFailures.Set(float64(n))
}

// SetNextDelay records the scheduled delay.
func (m *Metrics) SetNextDelay(d time.Duration) {
	if m == nil {
		return
	}
	m.NextDelaySeconds.Set(d.Seconds())
}

// SetSizes records snapshot sizes.
func (m *Metrics) SetSizes(markets, currencies int) {
	if m == nil {
		return
	}
	m.MarketItems.Set(float64(markets))
	m.CurrencyItems.Set(float64(currencies))
}

// MarkSuccess records the time of a successful market refresh.
func (m *Metrics) MarkSuccess(at time.Time) {
	if m == nil {
		return
	}
	m.LastSuccess.Set(float64(at.Unix()))
}

// SetState flags current as the active poller state.
func (m *Metrics) SetState(current string, all ...string) {
	if m == nil {
		return
	}
	for _, s := range all {
		v := 0.0
		if s == current {
			v = 1
		}
		m.PollerState.WithLabelValues(s).Set(v)
	}
}
