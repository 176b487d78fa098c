package health

import (
	"fmt"
	"runtime"
	"time"

	"github.com/dd0wney/cluso-astopo/pkg/topology"
)

// SimpleCheck creates a simple health check that always returns healthy
func SimpleCheck(name string) Check {
	return Check{
		Name:        name,
		Status:      StatusHealthy,
		LastChecked: time.Now(),
	}
}

// GraphCheck reports the served graph. An empty graph cannot answer queries.
func GraphCheck(stats func() topology.Statistics) CheckFunc {
	return func() Check {
		s := stats()
		check := Check{
			Name: "graph",
			Details: map[string]any{
				"nodes":         s.NodeCount,
				"relationships": s.RelationshipCount,
				"ipv4_prefixes": s.IPv4PrefixCount,
				"ipv6_prefixes": s.IPv6PrefixCount,
			},
		}

		switch {
		case s.NodeCount == 0:
			check.Status = StatusUnhealthy
			check.Message = "Graph is empty"
		case s.RelationshipCount == 0:
			check.Status = StatusDegraded
			check.Message = "Graph has no relationships"
		default:
			check.Status = StatusHealthy
			check.Message = "Graph loaded"
		}
		return check
	}
}

// Tier1Check reports the inferred clique. No members usually means the
// relationship dataset was truncated.
func Tier1Check(members func() int) CheckFunc {
	return func() Check {
		n := members()
		check := Check{
			Name:    "tier1",
			Details: map[string]any{"members": n},
		}
		if n == 0 {
			check.Status = StatusDegraded
			check.Message = "No Tier-1 members inferred"
		} else {
			check.Status = StatusHealthy
			check.Message = fmt.Sprintf("%d members", n)
		}
		return check
	}
}

// DatasetAgeCheck degrades once the analysis is older than maxAge. A
// non-positive maxAge disables the limit.
func DatasetAgeCheck(generatedAt time.Time, maxAge time.Duration, now func() time.Time) CheckFunc {
	if now == nil {
		now = time.Now
	}
	return func() Check {
		age := now().Sub(generatedAt)
		check := Check{
			Name: "dataset_age",
			Details: map[string]any{
				"generated_at": generatedAt,
				"age_seconds":  age.Seconds(),
			},
		}
		if maxAge > 0 && age > maxAge {
			check.Status = StatusDegraded
			check.Message = "Analysis is stale"
		} else {
			check.Status = StatusHealthy
			check.Message = "Analysis is current"
		}
		return check
	}
}

// MemoryCheck creates a health check for memory usage
func MemoryCheck(getUsage func() (alloc, sys uint64)) CheckFunc {
	return func() Check {
		alloc, sys := getUsage()
		check := Check{
			Name: "memory",
			Details: map[string]any{
				"alloc_bytes": alloc,
				"sys_bytes":   sys,
			},
		}

		usagePercent := 0.0
		if sys > 0 {
			usagePercent = float64(alloc) / float64(sys) * 100
		}

		if usagePercent > 90 {
			check.Status = StatusDegraded
			check.Message = "High memory usage"
		} else {
			check.Status = StatusHealthy
			check.Message = "Memory usage normal"
		}
		return check
	}
}

// RuntimeMemory reads the current heap allocation and system memory
func RuntimeMemory() (alloc, sys uint64) {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return ms.Alloc, ms.Sys
}
