package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initAnalysisMetrics() {
	r.ConeSize = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "astopo_cone_size",
			Help:    "Customer cone size per AS",
			Buckets: prometheus.ExponentialBuckets(1, 4, 10),
		},
	)

	r.Tier1Members = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "astopo_tier1_members",
			Help: "Number of ASes in the inferred Tier-1 clique",
		},
	)

	r.Tier1Rejections = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "astopo_tier1_rejections",
			Help: "Candidates rejected by the last Tier-1 scan",
		},
	)
}
