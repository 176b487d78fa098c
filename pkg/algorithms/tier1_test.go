package algorithms

import (
	"reflect"
	"testing"

	"github.com/dd0wney/cluso-astopo/pkg/topology"
)

// buildCliqueGraph creates a 3-clique {1,2,3}, a partial candidate 4 linked
// only to 1, a full candidate 5 linked to the whole clique, and two leaves
// hanging off 4. Degree order: 1, 2, 3, 4, 5, 20, 21.
func buildCliqueGraph() *topology.Graph {
	return buildGraph(
		p2p(1, 2), p2p(1, 3), p2p(2, 3),
		p2c(4, 1), p2c(4, 20), p2c(4, 21),
		p2p(5, 1), p2p(5, 2), p2p(5, 3),
	)
}

// TestInferTier1_Tolerance tests how the rejection budget shapes the clique
func TestInferTier1_Tolerance(t *testing.T) {
	tests := []struct {
		name      string
		maxReject int
		members   []topology.ASN
		rejected  int
		scanned   int
		exhausted bool
	}{
		{"zero tolerance stops at first failure", 0, []topology.ASN{1, 2, 3}, 1, 3, true},
		{"one skip admits AS5", 1, []topology.ASN{1, 2, 3, 5}, 2, 5, true},
		{"default tolerance scans everything", 50, []topology.ASN{1, 2, 3, 5}, 3, 6, false},
		{"negative treated as zero", -3, []topology.ASN{1, 2, 3}, 1, 3, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := buildCliqueGraph()
			res := InferTier1(g, Tier1Options{MaxRejections: tt.maxReject})

			if !reflect.DeepEqual(res.ASNs(), tt.members) {
				t.Errorf("members = %v, want %v", res.ASNs(), tt.members)
			}
			if res.Rejected != tt.rejected {
				t.Errorf("rejected = %d, want %d", res.Rejected, tt.rejected)
			}
			if res.Scanned != tt.scanned {
				t.Errorf("scanned = %d, want %d", res.Scanned, tt.scanned)
			}
			if res.Exhausted != tt.exhausted {
				t.Errorf("exhausted = %v, want %v", res.Exhausted, tt.exhausted)
			}
		})
	}
}

// TestInferTier1_MembersFullyConnected tests the pairwise-connected invariant
func TestInferTier1_MembersFullyConnected(t *testing.T) {
	g := buildCliqueGraph()
	res := InferTier1(g, DefaultTier1Options())

	for i, a := range res.Members {
		for j, b := range res.Members {
			if i != j && !a.Connected(b.ASN) {
				t.Errorf("%s and %s are both members but not connected", a.ASN, b.ASN)
			}
		}
	}
	if !res.Contains(5) || res.Contains(4) {
		t.Errorf("Contains mismatch for members %v", res.ASNs())
	}
}

// TestInferTier1_Scenario tests the three-node scenario
func TestInferTier1_Scenario(t *testing.T) {
	g := buildScenarioGraph()
	res := InferTier1(g, DefaultTier1Options())

	if !reflect.DeepEqual(res.ASNs(), []topology.ASN{1, 2, 3}) {
		t.Errorf("members = %v, want [AS1 AS2 AS3]", res.ASNs())
	}
}

// TestInferTier1_EmptyGraph tests inference with no nodes
func TestInferTier1_EmptyGraph(t *testing.T) {
	res := InferTier1(topology.New(), DefaultTier1Options())
	if len(res.Members) != 0 {
		t.Errorf("Expected empty clique, got %v", res.ASNs())
	}
}

// TestInferTier1_Singleton tests that a lone node forms its own clique
func TestInferTier1_Singleton(t *testing.T) {
	g := topology.Build(topology.Sources{
		Classifications: []topology.ClassificationRecord{{ASN: 42, Classification: topology.ClassContent}},
	})

	res := InferTier1(g, DefaultTier1Options())
	if !reflect.DeepEqual(res.ASNs(), []topology.ASN{42}) {
		t.Errorf("members = %v, want [AS42]", res.ASNs())
	}
	if res.Scanned != 0 {
		t.Errorf("scanned = %d, want 0", res.Scanned)
	}
}

// TestSortByDegree_TieBreak tests first-seen versus ascending-ASN ties
func TestSortByDegree_TieBreak(t *testing.T) {
	g := buildGraph(p2p(9, 8), p2p(3, 4))

	asns := func(nodes []*topology.Node) []topology.ASN {
		out := make([]topology.ASN, len(nodes))
		for i, n := range nodes {
			out[i] = n.ASN
		}
		return out
	}

	if got := asns(SortByDegree(g, false)); !reflect.DeepEqual(got, []topology.ASN{9, 8, 3, 4}) {
		t.Errorf("first-seen order = %v, want [AS9 AS8 AS3 AS4]", got)
	}
	if got := asns(SortByDegree(g, true)); !reflect.DeepEqual(got, []topology.ASN{3, 4, 8, 9}) {
		t.Errorf("strict order = %v, want [AS3 AS4 AS8 AS9]", got)
	}
}

// TestInferTier1_StrictSeed tests that strict ordering picks the lowest ASN seed on ties
func TestInferTier1_StrictSeed(t *testing.T) {
	g := buildGraph(p2p(9, 8), p2p(3, 4))

	res := InferTier1(g, Tier1Options{MaxRejections: 0, StrictDegreeOrder: true})
	if !reflect.DeepEqual(res.ASNs(), []topology.ASN{3, 4}) {
		t.Errorf("members = %v, want [AS3 AS4]", res.ASNs())
	}

	res = InferTier1(g, Tier1Options{MaxRejections: 0})
	if !reflect.DeepEqual(res.ASNs(), []topology.ASN{9, 8}) {
		t.Errorf("members = %v, want [AS9 AS8]", res.ASNs())
	}
}
