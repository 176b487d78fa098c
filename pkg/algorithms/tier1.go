package algorithms

import (
	"sort"

	"github.com/dd0wney/cluso-astopo/pkg/topology"
)

// Tier1Options configures the greedy clique scan
type Tier1Options struct {
	// MaxRejections is how many non-conforming candidates the scan skips.
	// The first failure after that budget is spent ends the scan.
	MaxRejections int
	// StrictDegreeOrder breaks degree ties by ascending AS number. When
	// false, tied candidates keep the order in which they were first seen.
	StrictDegreeOrder bool
}

// DefaultTier1Options returns the standard tolerance of 50 rejections
func DefaultTier1Options() Tier1Options {
	return Tier1Options{
		MaxRejections: 50,
	}
}

// Tier1Result is the inferred clique and how the scan ended
type Tier1Result struct {
	Members []*topology.Node
	// Scanned counts candidates examined after the seed
	Scanned int
	// Rejected counts candidates that failed the all-connected check
	Rejected int
	// Exhausted is true when the rejection budget ended the scan early
	Exhausted bool
}

// ASNs returns the clique members' AS numbers in admission order
func (r *Tier1Result) ASNs() []topology.ASN {
	asns := make([]topology.ASN, len(r.Members))
	for i, m := range r.Members {
		asns[i] = m.ASN
	}
	return asns
}

// Contains reports whether asn is a clique member
func (r *Tier1Result) Contains(asn topology.ASN) bool {
	for _, m := range r.Members {
		if m.ASN == asn {
			return true
		}
	}
	return false
}

// SortByDegree returns the nodes ordered by degree, descending
func SortByDegree(g *topology.Graph, strict bool) []*topology.Node {
	nodes := g.Nodes()
	sort.SliceStable(nodes, func(i, j int) bool {
		if nodes[i].Degree() != nodes[j].Degree() {
			return nodes[i].Degree() > nodes[j].Degree()
		}
		if strict {
			return nodes[i].ASN < nodes[j].ASN
		}
		return false
	})
	return nodes
}

// InferTier1 approximates the Tier-1 clique. The highest-degree AS seeds the
// clique; each following candidate, in descending degree, joins only if it is
// directly connected to every current member. This is a heuristic and not a
// maximum-clique search.
func InferTier1(g *topology.Graph, opts Tier1Options) *Tier1Result {
	result := &Tier1Result{}

	candidates := SortByDegree(g, opts.StrictDegreeOrder)
	if len(candidates) == 0 {
		return result
	}

	result.Members = append(result.Members, candidates[0])
	remaining := max(opts.MaxRejections, 0)

	for _, candidate := range candidates[1:] {
		result.Scanned++

		if connectedToAll(candidate, result.Members) {
			result.Members = append(result.Members, candidate)
			continue
		}

		result.Rejected++
		if remaining == 0 {
			result.Exhausted = true
			break
		}
		remaining--
	}

	return result
}

func connectedToAll(candidate *topology.Node, members []*topology.Node) bool {
	for _, m := range members {
		if !candidate.Connected(m.ASN) {
			return false
		}
	}
	return true
}
