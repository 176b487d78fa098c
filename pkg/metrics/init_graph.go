package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initGraphMetrics() {
	r.NodesTotal = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "astopo_nodes_total",
			Help: "Number of ASes in the topology graph",
		},
	)

	r.EdgesTotal = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "astopo_edges_total",
			Help: "Number of relationship records applied to the graph",
		},
	)

	r.PrefixesTotal = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "astopo_prefixes_total",
			Help: "Number of prefix records applied to the graph",
		},
		[]string{"family"},
	)
}
