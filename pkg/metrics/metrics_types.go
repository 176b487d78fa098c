package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all metrics for an analysis run
type Registry struct {
	// Graph Metrics
	NodesTotal    prometheus.Gauge
	EdgesTotal    prometheus.Gauge
	PrefixesTotal *prometheus.GaugeVec

	// Pipeline Metrics
	RecordsTotal  *prometheus.CounterVec
	PhaseDuration *prometheus.HistogramVec

	// Analysis Metrics
	ConeSize        prometheus.Histogram
	Tier1Members    prometheus.Gauge
	Tier1Rejections prometheus.Gauge

	// Query Metrics
	QueriesTotal  *prometheus.CounterVec
	QueryDuration prometheus.Histogram

	// System Metrics
	LastRunTimestamp prometheus.Gauge
	GoRoutines       prometheus.Gauge
	MemoryAllocBytes prometheus.Gauge

	registry *prometheus.Registry
	mu       sync.RWMutex
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		registry: reg,
	}

	r.initGraphMetrics()
	r.initPipelineMetrics()
	r.initAnalysisMetrics()
	r.initQueryMetrics()
	r.initSystemMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
