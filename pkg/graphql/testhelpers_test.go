package graphql

import (
	"testing"

	"github.com/graphql-go/graphql"

	"github.com/dd0wney/cluso-astopo/pkg/algorithms"
	"github.com/dd0wney/cluso-astopo/pkg/topology"
)

// setupScenarioSchema builds the enriched three-node scenario plus a large
// 32-bit AS number hanging off AS1
func setupScenarioSchema(t *testing.T) (graphql.Schema, *Dataset) {
	t.Helper()

	g := topology.Build(topology.Sources{
		Classifications: []topology.ClassificationRecord{
			{ASN: 1, Classification: topology.ClassTransitAccess},
		},
		Relationships: []topology.RelationshipRecord{
			{A: 1, B: 2, Code: topology.ProviderToCustomer},
			{A: 1, B: 3, Code: topology.ProviderToCustomer},
			{A: 2, B: 3, Code: topology.PeerToPeer},
			{A: 1, B: 4200000000, Code: topology.PeerToPeer},
		},
		PrefixesV4: []topology.PrefixRecord{
			{Prefix: "10.0.0.0", Length: 24, Owner: 2},
			{Prefix: "10.0.1.0", Length: 24, Owner: 3},
		},
	})
	if err := algorithms.EnrichCones(g, algorithms.DefaultConeOptions()); err != nil {
		t.Fatalf("EnrichCones failed: %v", err)
	}
	n1, _ := g.Get(1)
	n1.OrgName = "Example Transit"

	ds := &Dataset{
		RunID:    "test-run",
		Graph:    g,
		Rankings: algorithms.BuildRankings(g, algorithms.InferTier1(g, algorithms.DefaultTier1Options()), 2),
	}

	schema, err := NewSchema(ds)
	if err != nil {
		t.Fatalf("NewSchema failed: %v", err)
	}
	return schema, ds
}
