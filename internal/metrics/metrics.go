// Package metrics exports monitor observations as Prometheus series.
package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hamed0406/svrmonitor/internal/domain"
)

const namespace = "svrmonitor"

// Collector implements monitor.Observer on top of its own registry, so tests
// and multiple supervisors never collide on the global one.
type Collector struct {
	reg *prometheus.Registry

	probes         *prometheus.CounterVec
	alerts         *prometheus.CounterVec
	notifyFailures *prometheus.CounterVec
	failures       *prometheus.GaugeVec
	down           *prometheus.GaugeVec
	latency        *prometheus.GaugeVec
}

func New() *Collector {
	c := &Collector{
		reg: prometheus.NewRegistry(),
		probes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "probes_total",
			Help:      "Probes performed, by verdict.",
		}, []string{"endpoint", "verdict"}),
		alerts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_total",
			Help:      "Alerts delivered, by kind.",
		}, []string{"endpoint", "kind"}),
		notifyFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notify_failures_total",
			Help:      "Alert attempts whose delivery failed.",
		}, []string{"endpoint"}),
		failures: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "consecutive_failures",
			Help:      "Current run of consecutive Down verdicts.",
		}, []string{"endpoint"}),
		down: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "endpoint_down",
			Help:      "1 while the endpoint is confirmed down.",
		}, []string{"endpoint"}),
		latency: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "probe_latency_ms",
			Help:      "Latency of the last probe in milliseconds.",
		}, []string{"endpoint"}),
	}
	c.reg.MustRegister(c.probes, c.alerts, c.notifyFailures, c.failures, c.down, c.latency)
	return c
}

func (c *Collector) Observe(s domain.Snapshot) {
	id := string(s.Endpoint.ID)
	c.probes.WithLabelValues(id, string(s.Verdict)).Inc()
	c.failures.WithLabelValues(id).Set(float64(s.ConsecutiveFailures))
	c.latency.WithLabelValues(id).Set(s.LatencyMS)
	if s.ConfirmedDown() {
		c.down.WithLabelValues(id).Set(1)
	} else {
		c.down.WithLabelValues(id).Set(0)
	}
}

func (c *Collector) Record(_ context.Context, ev domain.Event) {
	id := string(ev.EndpointID)
	switch ev.Kind {
	case domain.EventAlertSent:
		c.alerts.WithLabelValues(id, string(ev.AlertKind)).Inc()
	case domain.EventNotifyFailed:
		c.notifyFailures.WithLabelValues(id).Inc()
	}
}

// Registry exposes the underlying registry, mainly for tests.
func (c *Collector) Registry() *prometheus.Registry { return c.reg }

// Handler serves the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{Registry: c.reg})
}
