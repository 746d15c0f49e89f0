package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for the chat core.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	activeSessions     prometheus.Gauge
	authorizedSessions prometheus.Gauge

	authAccepted    prometheus.Counter
	authRejected    *prometheus.CounterVec // by reason
	reconnects      prometheus.Counter
	renames         *prometheus.CounterVec // by result
	formatErrors    prometheus.Counter
	broadcasts      *prometheus.CounterVec // by type
	deliveryDrops   prometheus.Counter
	broadcastFanout prometheus.Histogram
}

// New registers collectors on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		activeSessions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "linechat_active_sessions",
			Help: "Current number of connected sessions",
		}),
		authorizedSessions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "linechat_authorized_sessions",
			Help: "Current number of authorized sessions",
		}),
		authAccepted: factory.NewCounter(prometheus.CounterOpts{
			Name: "linechat_auth_accepted_total",
			Help: "Total number of accepted logins",
		}),
		authRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "linechat_auth_rejected_total",
			Help: "Total number of rejected logins",
		}, []string{"reason"}),
		reconnects: factory.NewCounter(prometheus.CounterOpts{
			Name: "linechat_reconnects_total",
			Help: "Total number of sessions superseded by a newer login",
		}),
		renames: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "linechat_renames_total",
			Help: "Total number of rename requests by result",
		}, []string{"result"}),
		formatErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "linechat_format_errors_total",
			Help: "Total number of malformed lines",
		}),
		broadcasts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "linechat_broadcasts_total",
			Help: "Total number of broadcasts (unique messages, not deliveries)",
		}, []string{"type"}),
		deliveryDrops: factory.NewCounter(prometheus.CounterOpts{
			Name: "linechat_delivery_drops_total",
			Help: "Total number of lines dropped because a session queue was full or closed",
		}),
		broadcastFanout: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "linechat_broadcast_fanout",
			Help:    "Number of sessions that received each broadcast",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		}),
	}
}

// Registry exposes the collectors for the /metrics handler.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// RecordSessions updates the session gauges.
func (m *Metrics) RecordSessions(active, authorized int) {
	if m == nil {
		return
	}
	m.activeSessions.Set(float64(active))
	m.authorizedSessions.Set(float64(authorized))
}

func (m *Metrics) RecordAuthAccepted() {
	if m == nil {
		return
	}
	m.authAccepted.Inc()
}

// RecordAuthRejected counts a rejected login; reason is "credentials", "store" or "format".
func (m *Metrics) RecordAuthRejected(reason string) {
	if m == nil {
		return
	}
	m.authRejected.WithLabelValues(reason).Inc()
}

func (m *Metrics) RecordReconnect() {
	if m == nil {
		return
	}
	m.reconnects.Inc()
}

func (m *Metrics) RecordRename(ok bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "failed"
	}
	m.renames.WithLabelValues(result).Inc()
}

func (m *Metrics) RecordFormatError() {
	if m == nil {
		return
	}
	m.formatErrors.Inc()
}

// RecordBroadcast counts one fan-out and the number of sessions that accepted it.
func (m *Metrics) RecordBroadcast(kind string, delivered, dropped int) {
	if m == nil {
		return
	}
	m.broadcasts.WithLabelValues(kind).Inc()
	m.broadcastFanout.Observe(float64(delivered))
	m.deliveryDrops.Add(float64(dropped))
}
