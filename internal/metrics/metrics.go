// Package metrics exposes playback counters over a dedicated Prometheus
// registry. All recording methods are nil-safe so callers can run without
// metrics wired.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	reg *prometheus.Registry

	eventsEmitted  *prometheus.CounterVec
	stateFlushes   prometheus.Counter
	providerSwaps  prometheus.Counter
	errors         *prometheus.CounterVec
	activeProvider *prometheus.GaugeVec
}

func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		eventsEmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "playerd_events_emitted_total",
			Help: "Public player events emitted, by event name.",
		}, []string{"event"}),
		stateFlushes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "playerd_state_flushes_total",
			Help: "Coalesced state notification flushes.",
		}),
		providerSwaps: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "playerd_provider_swaps_total",
			Help: "Playback backend swaps triggered by source changes.",
		}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "playerd_errors_total",
			Help: "Player errors, by stable numeric code.",
		}, []string{"code"}),
		activeProvider: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "playerd_active_provider",
			Help: "1 for the currently active backend type, 0 otherwise.",
		}, []string{"type"}),
	}
	m.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.eventsEmitted, m.stateFlushes, m.providerSwaps, m.errors, m.activeProvider,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

func (m *Metrics) EventEmitted(event string) {
	if m == nil {
		return
	}
	m.eventsEmitted.WithLabelValues(event).Inc()
}

func (m *Metrics) StateFlushed() {
	if m == nil {
		return
	}
	m.stateFlushes.Inc()
}

func (m *Metrics) ProviderSwapped() {
	if m == nil {
		return
	}
	m.providerSwaps.Inc()
}

func (m *Metrics) ErrorReported(code int) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(strconv.Itoa(code)).Inc()
}

// SetActiveProvider marks ptype as the live backend. An empty ptype clears
// every series.
func (m *Metrics) SetActiveProvider(ptype string) {
	if m == nil {
		return
	}
	m.activeProvider.Reset()
	if ptype != "" {
		m.activeProvider.WithLabelValues(ptype).Set(1)
	}
}
