package algorithms

import (
	"sort"

	"github.com/dd0wney/cluso-astopo/pkg/records"
	"github.com/dd0wney/cluso-astopo/pkg/topology"
)

// DefaultTopN is the number of rows reported and org-enriched per ranking
const DefaultTopN = 15

// IPv4Space is the size of the IPv4 address space, the denominator of the
// address share
const IPv4Space = float64(1 << 32)

// Totals are the denominators of the share figures
type Totals struct {
	Nodes        int `json:"nodes"`
	IPv4Prefixes int `json:"ipv4_prefixes"`
}

// GraphTotals counts the nodes and owned IPv4 prefixes of g
func GraphTotals(g *topology.Graph) Totals {
	totals := Totals{Nodes: g.Len()}
	for _, node := range g.Nodes() {
		totals.IPv4Prefixes += node.IPv4PrefixCount()
	}
	return totals
}

// RankedAS is one reported row of a ranking
type RankedAS struct {
	Rank int            `json:"rank"`
	Node *topology.Node `json:"-"`
	// Percentages of the node total, IPv4 prefix total and IPv4 space
	ConeShare    float64 `json:"cone_share"`
	PrefixShare  float64 `json:"prefix_share"`
	AddressShare float64 `json:"address_share"`
}

// NewRankedAS computes the share figures of node against totals
func NewRankedAS(rank int, node *topology.Node, totals Totals) RankedAS {
	row := RankedAS{
		Rank:         rank,
		Node:         node,
		AddressShare: node.IPv4Outreach / IPv4Space * 100,
	}
	if totals.Nodes > 0 {
		row.ConeShare = float64(node.ConeSize) / float64(totals.Nodes) * 100
	}
	if totals.IPv4Prefixes > 0 {
		row.PrefixShare = float64(node.PrefixOutreach) / float64(totals.IPv4Prefixes) * 100
	}
	return row
}

// RankByCone returns all nodes ordered by cone size, descending. Ties keep
// first-seen order.
func RankByCone(g *topology.Graph) []*topology.Node {
	nodes := g.Nodes()
	sort.SliceStable(nodes, func(i, j int) bool {
		return nodes[i].ConeSize > nodes[j].ConeSize
	})
	return nodes
}

// RankByOutreach returns all nodes ordered by IPv4 outreach, descending.
// Ties keep first-seen order.
func RankByOutreach(g *topology.Graph) []*topology.Node {
	nodes := g.Nodes()
	sort.SliceStable(nodes, func(i, j int) bool {
		return nodes[i].IPv4Outreach > nodes[j].IPv4Outreach
	})
	return nodes
}

// TopN returns at most n leading nodes
func TopN(nodes []*topology.Node, n int) []*topology.Node {
	if n < 0 {
		n = 0
	}
	if n > len(nodes) {
		n = len(nodes)
	}
	return nodes[:n]
}

// Rankings holds the three reported orderings of one run
type Rankings struct {
	Tier1      *Tier1Result
	ByCone     []*topology.Node
	ByOutreach []*topology.Node
	Totals     Totals
	TopN       int
}

// BuildRankings sorts an enriched graph by cone size and by outreach
func BuildRankings(g *topology.Graph, tier1 *Tier1Result, topN int) *Rankings {
	if tier1 == nil {
		tier1 = &Tier1Result{}
	}
	return &Rankings{
		Tier1:      tier1,
		ByCone:     RankByCone(g),
		ByOutreach: RankByOutreach(g),
		Totals:     GraphTotals(g),
		TopN:       topN,
	}
}

func (r *Rankings) rows(nodes []*topology.Node) []RankedAS {
	rows := make([]RankedAS, len(nodes))
	for i, node := range nodes {
		rows[i] = NewRankedAS(i+1, node, r.Totals)
	}
	return rows
}

// Tier1Rows returns every clique member in admission order
func (r *Rankings) Tier1Rows() []RankedAS {
	return r.rows(r.Tier1.Members)
}

// TopByCone returns the leading rows of the cone ranking
func (r *Rankings) TopByCone() []RankedAS {
	return r.rows(TopN(r.ByCone, r.TopN))
}

// TopByOutreach returns the leading rows of the outreach ranking
func (r *Rankings) TopByOutreach() []RankedAS {
	return r.rows(TopN(r.ByOutreach, r.TopN))
}

// Highlighted returns the union of the clique and both top-N prefixes,
// each node once, in that order. Only these nodes receive organization data.
func (r *Rankings) Highlighted() []*topology.Node {
	seen := make(map[topology.ASN]struct{})
	var out []*topology.Node
	add := func(nodes []*topology.Node) {
		for _, n := range nodes {
			if _, ok := seen[n.ASN]; ok {
				continue
			}
			seen[n.ASN] = struct{}{}
			out = append(out, n)
		}
	}
	add(r.Tier1.Members)
	add(TopN(r.ByCone, r.TopN))
	add(TopN(r.ByOutreach, r.TopN))
	return out
}

// OrgAssigner applies organization records to a fixed set of nodes. All
// org-id records must be applied before the first org-name record.
type OrgAssigner struct {
	byASN map[topology.ASN]*topology.Node
	byOrg map[string][]*topology.Node
}

// NewOrgAssigner restricts assignment to the given nodes
func NewOrgAssigner(nodes []*topology.Node) *OrgAssigner {
	byASN := make(map[topology.ASN]*topology.Node, len(nodes))
	for _, n := range nodes {
		byASN[n.ASN] = n
	}
	return &OrgAssigner{byASN: byASN}
}

// AssignOrgID sets the org id of a tracked AS. Later records win.
func (a *OrgAssigner) AssignOrgID(rec records.OrgRecord) bool {
	node, ok := a.byASN[rec.ASN]
	if !ok {
		return false
	}
	node.OrgID = rec.OrgID
	return true
}

// AssignOrgName sets the org name of every tracked AS carrying rec's org id
func (a *OrgAssigner) AssignOrgName(rec records.OrgNameRecord) bool {
	if a.byOrg == nil {
		a.byOrg = make(map[string][]*topology.Node)
		for _, n := range a.byASN {
			if n.OrgID != "" {
				a.byOrg[n.OrgID] = append(a.byOrg[n.OrgID], n)
			}
		}
	}

	nodes, ok := a.byOrg[rec.OrgID]
	if !ok {
		return false
	}
	for _, n := range nodes {
		n.OrgName = rec.Name
	}
	return true
}

// EnrichOrganizations applies both lookup tables to nodes and returns how
// many nodes ended up with a name
func EnrichOrganizations(nodes []*topology.Node, as2org []records.OrgRecord, orgs []records.OrgNameRecord) int {
	assigner := NewOrgAssigner(nodes)
	for _, rec := range as2org {
		assigner.AssignOrgID(rec)
	}
	for _, rec := range orgs {
		assigner.AssignOrgName(rec)
	}

	named := 0
	for _, n := range nodes {
		if n.OrgName != "" {
			named++
		}
	}
	return named
}
