package topology

import (
	"fmt"
	"sort"
)

// Graph maps AS numbers to nodes. It is populated in a single construction
// phase and treated as read-only afterwards; concurrent readers are safe only
// once construction has finished.
type Graph struct {
	nodes map[ASN]*Node
	order []ASN

	relationships int
	prefixes      [2]int
}

// New creates an empty graph
func New() *Graph {
	return &Graph{
		nodes: make(map[ASN]*Node),
	}
}

// Upsert returns the node for asn, creating it if absent. Every ingest pass
// creates nodes through here so a synthesized node is always keyed and
// labelled by the AS number being inserted.
func (g *Graph) Upsert(asn ASN) *Node {
	if node, exists := g.nodes[asn]; exists {
		return node
	}
	node := newNode(asn)
	g.nodes[asn] = node
	g.order = append(g.order, asn)
	return node
}

// AddClassification tags an AS with its classification
func (g *Graph) AddClassification(rec ClassificationRecord) {
	g.Upsert(rec.ASN).Classification = rec.Classification
}

// AddRelationship links both endpoints and, for provider-to-customer
// records, appends B to A's customers. Customer duplicates are kept.
func (g *Graph) AddRelationship(rec RelationshipRecord) {
	a := g.Upsert(rec.A)
	b := g.Upsert(rec.B)

	a.addConnection(rec.B)
	b.addConnection(rec.A)

	if rec.Code == ProviderToCustomer {
		a.addCustomer(rec.B)
	}
	g.relationships++
}

// AddPrefix attaches a prefix of the given family to its owning AS
func (g *Graph) AddPrefix(rec PrefixRecord, family Family) {
	g.Upsert(rec.Owner).addPrefix(Prefix{
		Address: rec.Prefix,
		Length:  rec.Length,
		Family:  family,
	})
	if family == IPv6 {
		g.prefixes[IPv6]++
	} else {
		g.prefixes[IPv4]++
	}
}

// Get returns the node for asn
func (g *Graph) Get(asn ASN) (*Node, error) {
	node, exists := g.nodes[asn]
	if !exists {
		return nil, fmt.Errorf("%s: %w", asn, ErrNodeNotFound)
	}
	return node, nil
}

// Lookup returns the node for asn and whether it exists
func (g *Graph) Lookup(asn ASN) (*Node, bool) {
	node, exists := g.nodes[asn]
	return node, exists
}

// Len returns the number of nodes
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Nodes returns every node in first-seen order
func (g *Graph) Nodes() []*Node {
	nodes := make([]*Node, 0, len(g.order))
	for _, asn := range g.order {
		nodes = append(nodes, g.nodes[asn])
	}
	return nodes
}

// ASNs returns every AS number in ascending order
func (g *Graph) ASNs() []ASN {
	asns := make([]ASN, len(g.order))
	copy(asns, g.order)
	sort.Slice(asns, func(i, j int) bool { return asns[i] < asns[j] })
	return asns
}

// Statistics summarises the graph contents
type Statistics struct {
	NodeCount         int
	RelationshipCount int
	IPv4PrefixCount   int
	IPv6PrefixCount   int
}

// GetStatistics returns the current graph statistics
func (g *Graph) GetStatistics() Statistics {
	return Statistics{
		NodeCount:         len(g.nodes),
		RelationshipCount: g.relationships,
		IPv4PrefixCount:   g.prefixes[IPv4],
		IPv6PrefixCount:   g.prefixes[IPv6],
	}
}

// Build constructs a graph from the four record streams, in the order
// classification, relationships, IPv4 prefixes, IPv6 prefixes.
func Build(src Sources) *Graph {
	g := New()
	for _, rec := range src.Classifications {
		g.AddClassification(rec)
	}
	for _, rec := range src.Relationships {
		g.AddRelationship(rec)
	}
	for _, rec := range src.PrefixesV4 {
		g.AddPrefix(rec, IPv4)
	}
	for _, rec := range src.PrefixesV6 {
		g.AddPrefix(rec, IPv6)
	}
	return g
}
