package algorithms

import (
	"testing"

	"github.com/dd0wney/cluso-astopo/pkg/topology"
)

func binCounts(bins []Bin) []int {
	out := make([]int, len(bins))
	for i, b := range bins {
		out[i] = b.Count
	}
	return out
}

func equalCounts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// TestComputeDistributions_Scenario tests all four summaries on the scenario graph
func TestComputeDistributions_Scenario(t *testing.T) {
	d := ComputeDistributions(buildScenarioGraph())

	if got := binCounts(d.Degree); !equalCounts(got, []int{0, 3, 0, 0, 0, 0}) {
		t.Errorf("degree bins = %v", got)
	}
	// AS1 owns nothing, AS2 and AS3 own a /24 each
	if got := binCounts(d.IPv4Space); !equalCounts(got, []int{3, 0, 0, 0, 0, 0}) {
		t.Errorf("IPv4 bins = %v", got)
	}
	if got := binCounts(d.IPv6Space); !equalCounts(got, []int{3, 0, 0, 0, 0, 0}) {
		t.Errorf("IPv6 bins = %v", got)
	}
	// AS1 transit with customers, AS2 content with a peer, AS3 enterprise with links
	if got := binCounts(d.Classification); !equalCounts(got, []int{1, 0, 1, 0, 0, 1}) {
		t.Errorf("classification bins = %v", got)
	}
	if d.Unclassified != 0 {
		t.Errorf("Unclassified = %d, want 0", d.Unclassified)
	}
}

// TestComputeDistributions_Boundaries tests bin edges
func TestComputeDistributions_Boundaries(t *testing.T) {
	g := topology.Build(topology.Sources{
		Classifications: []topology.ClassificationRecord{
			{ASN: 10, Classification: topology.ClassEnterprise},
			{ASN: 11, Classification: topology.ClassTransitAccess},
			{ASN: 12, Classification: topology.ClassContent},
			{ASN: 13},
		},
		PrefixesV4: []topology.PrefixRecord{
			// 1024 addresses: first bin is strictly below 1000
			{Prefix: "203.0.113.0", Length: 22, Owner: 10},
			// 2^24 = 16777216 lands in >10M
			{Prefix: "10.0.0.0", Length: 8, Owner: 11},
		},
		PrefixesV6: []topology.PrefixRecord{
			// 2^80 ~ 1.2e24 falls just above the first finite bound
			{Prefix: "2001:db8::", Length: 48, Owner: 12},
		},
	})

	d := ComputeDistributions(g)

	if got := binCounts(d.IPv4Space); !equalCounts(got, []int{2, 1, 0, 0, 0, 1}) {
		t.Errorf("IPv4 bins = %v", got)
	}
	if got := binCounts(d.IPv6Space); !equalCounts(got, []int{3, 0, 1, 0, 0, 0}) {
		t.Errorf("IPv6 bins = %v", got)
	}
	// Enterprise with no links, Transit without customers, Content without peers;
	// AS13 is unclassified and left out
	if got := binCounts(d.Classification); !equalCounts(got, []int{0, 1, 0, 1, 1, 0}) {
		t.Errorf("classification bins = %v", got)
	}
	if d.Unclassified != 1 {
		t.Errorf("Unclassified = %d, want 1", d.Unclassified)
	}
}

// TestComputeDistributions_DegreeBins tests the degree histogram edges
func TestComputeDistributions_DegreeBins(t *testing.T) {
	var rels []topology.RelationshipRecord
	// AS1 gets 6 neighbours, AS2 gets 1 (AS1), neighbours 3..7 get 1 each
	for i := topology.ASN(2); i <= 7; i++ {
		rels = append(rels, p2c(1, i))
	}
	d := ComputeDistributions(buildGraph(rels...))

	if got := binCounts(d.Degree); !equalCounts(got, []int{6, 0, 1, 0, 0, 0}) {
		t.Errorf("degree bins = %v", got)
	}
	if d.Degree[2].Label != "6-100" {
		t.Errorf("label = %q, want 6-100", d.Degree[2].Label)
	}
}
