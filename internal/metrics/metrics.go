// Package metrics exposes the gateway's task/session/event counters in
// Prometheus exposition format at /metrics — additive to spec.md's core
// surfaces, wired per SPEC_FULL.md §6.6.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/a2a402/gateway/internal/engine"
)

// Collector is a prometheus.Collector that reads live from the engine's
// stores on every scrape rather than maintaining its own counters —
// the stores are already the source of truth.
type Collector struct {
	Engine *engine.Engine

	tasksTotalDesc   *prometheus.Desc
	tasksByStateDesc *prometheus.Desc
	eventsByKindDesc *prometheus.Desc
	sessionsDesc     *prometheus.Desc
}

// New creates a Collector around an engine.
func New(e *engine.Engine) *Collector {
	return &Collector{
		Engine: e,
		tasksTotalDesc: prometheus.NewDesc(
			"gateway_tasks_total", "Total tasks created since process start.", nil, nil),
		tasksByStateDesc: prometheus.NewDesc(
			"gateway_tasks_by_state", "Current task count by lifecycle state.", []string{"state"}, nil),
		eventsByKindDesc: prometheus.NewDesc(
			"gateway_payment_events_total", "Payment event log entries by kind.", []string{"kind"}, nil),
		sessionsDesc: prometheus.NewDesc(
			"gateway_sessions_total", "Distinct wallets with at least one paid skill.", nil, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.tasksTotalDesc
	ch <- c.tasksByStateDesc
	ch <- c.eventsByKindDesc
	ch <- c.sessionsDesc
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.tasksTotalDesc, prometheus.CounterValue, float64(c.Engine.Tasks.TotalTasks()))
	for state, n := range c.Engine.Tasks.CountByState() {
		ch <- prometheus.MustNewConstMetric(c.tasksByStateDesc, prometheus.GaugeValue, float64(n), string(state))
	}
	for kind, n := range c.Engine.Events.CountByKind() {
		ch <- prometheus.MustNewConstMetric(c.eventsByKindDesc, prometheus.CounterValue, float64(n), string(kind))
	}
	ch <- prometheus.MustNewConstMetric(c.sessionsDesc, prometheus.GaugeValue, float64(c.Engine.Sessions.Count()))
}

// Handler builds the /metrics HTTP handler around a dedicated registry
// carrying just this collector, so gateway internals never leak the Go
// runtime/process default collectors into the exposition unless the caller
// wants them (it does not, here).
func (c *Collector) Handler() http.Handler {
	reg := prometheus.NewRegistry()
	reg.MustRegister(c)
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
