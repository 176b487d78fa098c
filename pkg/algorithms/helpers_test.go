package algorithms

import "github.com/dd0wney/cluso-astopo/pkg/topology"

func p2c(a, b topology.ASN) topology.RelationshipRecord {
	return topology.RelationshipRecord{A: a, B: b, Code: topology.ProviderToCustomer}
}

func p2p(a, b topology.ASN) topology.RelationshipRecord {
	return topology.RelationshipRecord{A: a, B: b, Code: topology.PeerToPeer}
}

// buildGraph creates a graph from relationship records only
func buildGraph(rels ...topology.RelationshipRecord) *topology.Graph {
	return topology.Build(topology.Sources{Relationships: rels})
}

// buildScenarioGraph creates the three-node provider/peer scenario with one
// /24 on each of AS2 and AS3
func buildScenarioGraph() *topology.Graph {
	return topology.Build(topology.Sources{
		Classifications: []topology.ClassificationRecord{
			{ASN: 1, Classification: topology.ClassTransitAccess},
			{ASN: 2, Classification: topology.ClassContent},
			{ASN: 3, Classification: topology.ClassEnterprise},
		},
		Relationships: []topology.RelationshipRecord{
			p2c(1, 2),
			p2c(1, 3),
			p2p(2, 3),
		},
		PrefixesV4: []topology.PrefixRecord{
			{Prefix: "10.0.0.0", Length: 24, Owner: 2},
			{Prefix: "10.0.1.0", Length: 24, Owner: 3},
		},
	})
}
