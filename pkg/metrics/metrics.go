package metrics

import (
	"fmt"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// RecordGraph sets the size gauges of the built graph
func (r *Registry) RecordGraph(nodes, edges, ipv4Prefixes, ipv6Prefixes int) {
	r.NodesTotal.Set(float64(nodes))
	r.EdgesTotal.Set(float64(edges))
	r.PrefixesTotal.WithLabelValues("ipv4").Set(float64(ipv4Prefixes))
	r.PrefixesTotal.WithLabelValues("ipv6").Set(float64(ipv6Prefixes))
}

// RecordStream adds the line counts of one input stream
func (r *Registry) RecordStream(stream string, parsed, comments, skipped int) {
	r.RecordsTotal.WithLabelValues(stream, "parsed").Add(float64(parsed))
	r.RecordsTotal.WithLabelValues(stream, "comment").Add(float64(comments))
	r.RecordsTotal.WithLabelValues(stream, "skipped").Add(float64(skipped))
}

// RecordPhase records how long a pipeline phase took
func (r *Registry) RecordPhase(phase string, duration time.Duration) {
	r.PhaseDuration.WithLabelValues(phase).Observe(duration.Seconds())
}

// RecordConeSize observes one AS's cone size
func (r *Registry) RecordConeSize(size int) {
	r.ConeSize.Observe(float64(size))
}

// RecordTier1 sets the clique gauges
func (r *Registry) RecordTier1(members, rejections int) {
	r.Tier1Members.Set(float64(members))
	r.Tier1Rejections.Set(float64(rejections))
}

// RecordQuery records a GraphQL query execution
func (r *Registry) RecordQuery(status string, duration time.Duration) {
	r.QueriesTotal.WithLabelValues(status).Inc()
	r.QueryDuration.Observe(duration.Seconds())
}

// UpdateSystemMetrics samples goroutine and heap figures and stamps the run
func (r *Registry) UpdateSystemMetrics(now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	r.GoRoutines.Set(float64(runtime.NumGoroutine()))
	r.MemoryAllocBytes.Set(float64(ms.Alloc))
	r.LastRunTimestamp.Set(float64(now.Unix()))
}

// WriteTextfile writes the registry in text exposition format for the
// node-exporter textfile collector
func (r *Registry) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
