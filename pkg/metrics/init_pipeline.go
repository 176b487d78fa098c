package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initPipelineMetrics() {
	r.RecordsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "astopo_records_total",
			Help: "Input lines read per stream, by outcome",
		},
		[]string{"stream", "status"},
	)

	r.PhaseDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "astopo_phase_duration_seconds",
			Help:    "Duration of each pipeline phase in seconds",
			Buckets: []float64{0.01, 0.1, 0.5, 1, 5, 15, 60, 300},
		},
		[]string{"phase"},
	)
}
