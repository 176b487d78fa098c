package topology

// Node holds the structural and derived attributes of a single AS.
// Structural fields are filled during graph construction; the cone fields are
// written once by the cone calculator and the organization fields only for
// the highlighted nodes of a report.
type Node struct {
	ASN            ASN
	Classification Classification

	connections []ASN
	connected   map[ASN]struct{}
	customers   []ASN
	prefixes    []Prefix

	// Organization lookup, populated post-hoc
	OrgID   string
	OrgName string

	// Cone enrichment
	ConeSize       int
	IPv4Outreach   float64
	PrefixOutreach int
}

func newNode(asn ASN) *Node {
	return &Node{
		ASN:       asn,
		connected: make(map[ASN]struct{}),
	}
}

// addConnection records a neighbour. Returns false if the neighbour was
// already known, in which case the degree is left unchanged.
func (n *Node) addConnection(peer ASN) bool {
	if _, exists := n.connected[peer]; exists {
		return false
	}
	n.connected[peer] = struct{}{}
	n.connections = append(n.connections, peer)
	return true
}

func (n *Node) addCustomer(customer ASN) {
	n.customers = append(n.customers, customer)
}

func (n *Node) addPrefix(p Prefix) {
	n.prefixes = append(n.prefixes, p)
}

// Degree returns the number of distinct neighbouring ASes
func (n *Node) Degree() int {
	return len(n.connections)
}

// Connections returns the neighbours in first-seen order.
// The slice must not be modified.
func (n *Node) Connections() []ASN {
	return n.connections
}

// Connected reports whether peer is a direct neighbour
func (n *Node) Connected(peer ASN) bool {
	_, ok := n.connected[peer]
	return ok
}

// Customers returns the direct customers as recorded, duplicates included.
// The slice must not be modified.
func (n *Node) Customers() []ASN {
	return n.customers
}

// CustomerCount returns the number of recorded customer entries
func (n *Node) CustomerCount() int {
	return len(n.customers)
}

// Prefixes returns every prefix owned by the AS, both families.
// The slice must not be modified.
func (n *Node) Prefixes() []Prefix {
	return n.prefixes
}

// PrefixCount returns the number of owned prefixes across both families
func (n *Node) PrefixCount() int {
	return len(n.prefixes)
}

// IPv4PrefixCount returns the number of owned IPv4 prefixes
func (n *Node) IPv4PrefixCount() int {
	count := 0
	for _, p := range n.prefixes {
		if p.Family == IPv4 {
			count++
		}
	}
	return count
}

// IPv4AddressCount sums 2^(32-L) over the owned IPv4 prefixes
func (n *Node) IPv4AddressCount() float64 {
	return n.addressCount(IPv4)
}

// IPv6AddressCount sums 2^(128-L) over the owned IPv6 prefixes
func (n *Node) IPv6AddressCount() float64 {
	return n.addressCount(IPv6)
}

func (n *Node) addressCount(family Family) float64 {
	var count float64
	for _, p := range n.prefixes {
		if p.Family == family {
			count += p.AddressCount()
		}
	}
	return count
}
