package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics methods are safe to call on a nil receiver, which records nothing.
type Metrics struct {
	resolutions        *prometheus.CounterVec
	overrideSets       *prometheus.CounterVec
	telemetryEvents    *prometheus.CounterVec
	telemetryDropped   prometheus.Counter
	telemetryQueueSize prometheus.Gauge
}

// NewMetrics registers the collectors with reg, or with the default registry when reg is nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	metrics := &Metrics{
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "channel_resolutions_total",
			Help: "The total number of channel resolutions by outcome",
		}, []string{"status"}),
		overrideSets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "channel_override_sets_total",
			Help: "The total number of device channel override requests by result",
		}, []string{"result"}),
		telemetryEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "telemetry_events_total",
			Help: "The total number of telemetry events sent by sink and result",
		}, []string{"sink", "result"}),
		telemetryDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "telemetry_dropped_total",
			Help: "The total number of telemetry events dropped because the queue was full",
		}),
		telemetryQueueSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "telemetry_queue_size",
			Help: "The number of telemetry events waiting to be sent",
		}),
	}
	metrics.register(reg)
	return metrics
}

func (m *Metrics) register(reg prometheus.Registerer) {
	reg.MustRegister(m.resolutions)
	reg.MustRegister(m.overrideSets)
	reg.MustRegister(m.telemetryEvents)
	reg.MustRegister(m.telemetryDropped)
	reg.MustRegister(m.telemetryQueueSize)
}

// ObserveResolution counts a resolution under its status, or under errKind when it failed.
func (m *Metrics) ObserveResolution(status, errKind string) {
	if m == nil {
		return
	}
	if errKind != "" {
		status = errKind
	}
	m.resolutions.WithLabelValues(status).Inc()
}

func (m *Metrics) ObserveOverrideSet(result string) {
	if m == nil {
		return
	}
	m.overrideSets.WithLabelValues(result).Inc()
}

func (m *Metrics) IncrementTelemetryEvents(sink, result string) {
	if m == nil {
		return
	}
	m.telemetryEvents.WithLabelValues(sink, result).Inc()
}

func (m *Metrics) IncrementTelemetryDropped() {
	if m == nil {
		return
	}
	m.telemetryDropped.Inc()
}

func (m *Metrics) SetTelemetryQueueSize(size float64) {
	if m == nil {
		return
	}
	m.telemetryQueueSize.Set(size)
}
