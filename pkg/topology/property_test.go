package topology

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestGraphInvariants uses property-based testing to verify node invariants
// that must hold for any relationship and prefix stream
func TestGraphInvariants(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50

	properties := gopter.NewProperties(parameters)

	properties.Property("degree equals distinct neighbour count", prop.ForAll(
		func(as, bs []int) bool {
			g := New()
			neighbours := make(map[ASN]map[ASN]struct{})
			add := func(x, y ASN) {
				if neighbours[x] == nil {
					neighbours[x] = make(map[ASN]struct{})
				}
				neighbours[x][y] = struct{}{}
			}

			for i := 0; i < len(as) && i < len(bs); i++ {
				a, b := ASN(as[i]), ASN(bs[i])
				g.AddRelationship(RelationshipRecord{A: a, B: b, Code: RelationshipCode(i%2 - 1)})
				add(a, b)
				add(b, a)
			}

			for _, node := range g.Nodes() {
				if node.Degree() != len(neighbours[node.ASN]) {
					return false
				}
				if node.Degree() != len(node.Connections()) {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(1, 25)),
		gen.SliceOf(gen.IntRange(1, 25)),
	))

	properties.Property("IPv4 address count sums 2^(32-L) over IPv4 prefixes only", prop.ForAll(
		func(v4, v6 []int) bool {
			g := New()
			var want uint64
			for _, l := range v4 {
				g.AddPrefix(PrefixRecord{Prefix: "10.0.0.0", Length: l, Owner: 1}, IPv4)
				want += uint64(1) << uint(32-l)
			}
			for _, l := range v6 {
				g.AddPrefix(PrefixRecord{Prefix: "2001:db8::", Length: l, Owner: 1}, IPv6)
			}

			node := g.Upsert(1)
			return node.IPv4AddressCount() == float64(want) &&
				node.IPv4PrefixCount() == len(v4) &&
				node.PrefixCount() == len(v4)+len(v6)
		},
		gen.SliceOf(gen.IntRange(8, 32)),
		gen.SliceOf(gen.IntRange(16, 64)),
	))

	properties.Property("customers only hold provider-to-customer targets", prop.ForAll(
		func(as, bs, codes []int) bool {
			g := New()
			providers := make(map[ASN][]ASN)
			n := min(len(as), len(bs), len(codes))
			for i := 0; i < n; i++ {
				rec := RelationshipRecord{A: ASN(as[i]), B: ASN(bs[i]), Code: RelationshipCode(codes[i])}
				g.AddRelationship(rec)
				if rec.Code == ProviderToCustomer {
					providers[rec.A] = append(providers[rec.A], rec.B)
				}
			}

			for _, node := range g.Nodes() {
				got := node.Customers()
				want := providers[node.ASN]
				if len(got) != len(want) {
					return false
				}
				for i := range got {
					if got[i] != want[i] {
						return false
					}
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(1, 10)),
		gen.SliceOf(gen.IntRange(1, 10)),
		gen.SliceOf(gen.IntRange(-1, 1)),
	))

	properties.TestingRun(t)
}
