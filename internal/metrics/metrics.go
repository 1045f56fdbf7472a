package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the chat subsystem collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	connections    prometheus.Gauge
	onlineUsers    prometheus.Gauge
	authFailures   prometheus.Counter
	messages       *prometheus.CounterVec
	events         *prometheus.CounterVec
	droppedEvents  prometheus.Counter
	readMarkedRows prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "chat",
			Name:      "connections",
			Help:      "Live authenticated websocket connections.",
		}),
		onlineUsers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "chat",
			Name:      "online_users",
			Help:      "Identities with at least one live connection.",
		}),
		authFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "chat",
			Name:      "auth_failures_total",
			Help:      "Rejected credentials at handshake or per request.",
		}),
		messages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "chat",
			Name:      "messages_total",
			Help:      "Send attempts by outcome.",
		}, []string{"outcome"}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "chat",
			Name:      "events_emitted_total",
			Help:      "Server events queued to connections by type.",
		}, []string{"type"}),
		droppedEvents: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "chat",
			Name:      "events_dropped_total",
			Help:      "Server events dropped because a connection queue was full.",
		}),
		readMarkedRows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "chat",
			Name:      "messages_marked_read_total",
			Help:      "Messages transitioned to read by conversation fetches.",
		}),
	}

	reg.MustRegister(
		m.connections,
		m.onlineUsers,
		m.authFailures,
		m.messages,
		m.events,
		m.droppedEvents,
		m.readMarkedRows,
	)
	return m
}

func (m *Metrics) ConnectionOpened() {
	if m == nil {
		return
	}
	m.connections.Inc()
}

func (m *Metrics) ConnectionClosed() {
	if m == nil {
		return
	}
	m.connections.Dec()
}

func (m *Metrics) SetOnlineUsers(n int) {
	if m == nil {
		return
	}
	m.onlineUsers.Set(float64(n))
}

func (m *Metrics) AuthFailed() {
	if m == nil {
		return
	}
	m.authFailures.Inc()
}

// MessageOutcome records a send attempt; outcome is "sent", "invalid" or "failed".
func (m *Metrics) MessageOutcome(outcome string) {
	if m == nil {
		return
	}
	m.messages.WithLabelValues(outcome).Inc()
}

func (m *Metrics) EventEmitted(eventType string) {
	if m == nil {
		return
	}
	m.events.WithLabelValues(eventType).Inc()
}

func (m *Metrics) EventDropped() {
	if m == nil {
		return
	}
	m.droppedEvents.Inc()
}

func (m *Metrics) MarkedRead(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.readMarkedRows.Add(float64(n))
}
