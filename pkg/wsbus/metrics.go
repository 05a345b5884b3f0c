package wsbus

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// hubMetrics holds the hub's Prometheus collectors.
type hubMetrics struct {
	connections   prometheus.Gauge
	framesRelayed prometheus.Counter
	framesDropped prometheus.Counter
	frameErrors   *prometheus.CounterVec
}

func newHubMetrics(reg prometheus.Registerer, namespace string) *hubMetrics {
	factory := promauto.With(reg)

	return &hubMetrics{
		connections: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "hub",
			Name:      "connections",
			Help:      "Number of connected clients",
		}),

		framesRelayed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "hub",
			Name:      "frames_relayed_total",
			Help:      "Total number of event frames delivered to clients",
		}),

		framesDropped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "hub",
			Name:      "frames_dropped_total",
			Help:      "Total number of event frames dropped for slow clients",
		}),

		frameErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "hub",
			Name:      "frame_errors_total",
			Help:      "Total number of rejected frames by reason",
		}, []string{"reason"}),
	}
}
