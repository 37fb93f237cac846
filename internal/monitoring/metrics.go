package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Event queue metrics
	EventsTotal   *prometheus.CounterVec
	EventsDropped prometheus.Counter

	// Session metrics
	SessionsActive prometheus.Gauge
	Transitions    *prometheus.CounterVec
	StaleEvents    prometheus.Counter

	// Browse metrics
	FetchesTotal       *prometheus.CounterVec
	ProtocolViolations prometheus.Counter
	NodesCached        prometheus.Counter

	// Device-role metrics
	ReportsTotal       *prometheus.CounterVec
	RegistrationActive prometheus.Gauge
	WatchesFired       prometheus.Counter

	// System metrics
	Uptime    prometheus.Gauge
	startTime time.Time
}

// NewMetrics creates a new metrics collector
func NewMetrics() *Metrics {
	m := &Metrics{
		startTime: time.Now(),

		EventsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "avremote_events_total",
				Help: "Total number of stack events processed",
			},
			[]string{"kind"},
		),
		EventsDropped: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "avremote_events_dropped_total",
				Help: "Total number of stack events dropped on queue overflow",
			},
		),

		SessionsActive: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "avremote_sessions_active",
				Help: "Number of active peer sessions",
			},
		),
		Transitions: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "avremote_session_transitions_total",
				Help: "Total number of session state transitions",
			},
			[]string{"from", "to"},
		),
		StaleEvents: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "avremote_stale_events_total",
				Help: "Total number of stale or out-of-state events dropped",
			},
		),

		FetchesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "avremote_content_fetches_total",
				Help: "Total number of outbound content fetches",
			},
			[]string{"scope"},
		),
		ProtocolViolations: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "avremote_protocol_violations_total",
				Help: "Total number of content responses rejected as protocol violations",
			},
		),
		NodesCached: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "avremote_browse_nodes_cached_total",
				Help: "Total number of browse nodes marked fully cached",
			},
		),

		ReportsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "avremote_reports_total",
				Help: "Total number of device-role report exchanges",
			},
			[]string{"direction", "type"},
		),
		RegistrationActive: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "avremote_registration_active",
				Help: "Whether a device-role application is registered (0 or 1)",
			},
		),
		WatchesFired: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "avremote_liveness_watches_fired_total",
				Help: "Total number of liveness watches that fired",
			},
		),

		Uptime: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "avremote_uptime_seconds",
				Help: "Engine uptime in seconds",
			},
		),
	}

	// Start uptime updater
	go m.updateUptime()

	return m
}

// updateUptime continuously updates the uptime metric
func (m *Metrics) updateUptime() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for range ticker.C {
		m.Uptime.Set(time.Since(m.startTime).Seconds())
	}
}

// RecordEvent records one processed stack event
func (m *Metrics) RecordEvent(kind string) {
	m.EventsTotal.WithLabelValues(kind).Inc()
}

// RecordDrop records a queue overflow drop
func (m *Metrics) RecordDrop() {
	m.EventsDropped.Inc()
}

// RecordTransition records a session state transition
func (m *Metrics) RecordTransition(from, to string) {
	m.Transitions.WithLabelValues(from, to).Inc()
}

// RecordStale records a stale or out-of-state event drop
func (m *Metrics) RecordStale() {
	m.StaleEvents.Inc()
}

// SetSessionsActive sets the number of active sessions
func (m *Metrics) SetSessionsActive(count int) {
	m.SessionsActive.Set(float64(count))
}

// RecordFetch records an outbound content fetch
func (m *Metrics) RecordFetch(scope string) {
	m.FetchesTotal.WithLabelValues(scope).Inc()
}

// RecordViolation records a rejected content response
func (m *Metrics) RecordViolation() {
	m.ProtocolViolations.Inc()
}

// RecordNodeCached records a node completing its listing
func (m *Metrics) RecordNodeCached() {
	m.NodesCached.Inc()
}

// RecordReport records a report exchange
func (m *Metrics) RecordReport(direction, reportType string) {
	m.ReportsTotal.WithLabelValues(direction, reportType).Inc()
}

// SetRegistrationActive sets the registration slot gauge
func (m *Metrics) SetRegistrationActive(active bool) {
	if active {
		m.RegistrationActive.Set(1)
	} else {
		m.RegistrationActive.Set(0)
	}
}

// RecordWatchFired records a liveness watch firing
func (m *Metrics) RecordWatchFired() {
	m.WatchesFired.Inc()
}
