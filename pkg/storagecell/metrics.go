package storagecell

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Sync outcomes recorded by Metrics.
const (
	syncApplied = "applied"
	syncNoop    = "noop"
	syncReset   = "reset"
	syncError   = "error"
)

// Metrics holds the Prometheus collectors shared by cells.
//
// Collected:
//   - storagesync_cell_writes_total: write-backs by area and result
//   - storagesync_cell_syncs_total: handled storage events by area and outcome
//   - storagesync_cell_attached: cells currently listening for events
type Metrics struct {
	writes   *prometheus.CounterVec
	syncs    *prometheus.CounterVec
	attached prometheus.Gauge
}

// NewMetrics registers the cell collectors with reg.
// A nil reg uses prometheus.DefaultRegisterer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		writes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storagesync",
			Subsystem: "cell",
			Name:      "writes_total",
			Help:      "Total number of cell write-backs to storage",
		}, []string{"area", "result"}),

		syncs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storagesync",
			Subsystem: "cell",
			Name:      "syncs_total",
			Help:      "Total number of storage events handled by cells",
		}, []string{"area", "outcome"}),

		attached: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "storagesync",
			Subsystem: "cell",
			Name:      "attached",
			Help:      "Number of cells listening for storage events",
		}),
	}
}

func (m *Metrics) recordWrite(area string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.writes.WithLabelValues(area, result).Inc()
}

func (m *Metrics) recordSync(area, outcome string) {
	if m == nil {
		return
	}
	m.syncs.WithLabelValues(area, outcome).Inc()
}

func (m *Metrics) recordAttach(delta float64) {
	if m == nil {
		return
	}
	m.attached.Add(delta)
}
