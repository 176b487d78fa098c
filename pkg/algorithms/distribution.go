package algorithms

import "github.com/dd0wney/cluso-astopo/pkg/topology"

// Bin is one bucket of a histogram
type Bin struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Distributions summarises the whole graph for charting by an external sink
type Distributions struct {
	Degree         []Bin `json:"degree"`
	IPv4Space      []Bin `json:"ipv4_space"`
	IPv6Space      []Bin `json:"ipv6_space"`
	Classification []Bin `json:"classification"`
	// Unclassified counts nodes with no or an unrecognised classification
	Unclassified int `json:"unclassified"`
}

// bucket assigns v to the first bound it does not exceed; values above the
// last bound go to the overflow bin.
type bucket struct {
	bounds []float64
	labels []string
	// exclusiveFirst makes the first bound a strict upper limit
	exclusiveFirst bool
}

func (b bucket) index(v float64) int {
	for i, bound := range b.bounds {
		if i == 0 && b.exclusiveFirst {
			if v < bound {
				return 0
			}
			continue
		}
		if v <= bound {
			return i
		}
	}
	return len(b.bounds)
}

var (
	degreeBuckets = bucket{
		bounds: []float64{1, 5, 100, 200, 1000},
		labels: []string{"1", "2-5", "6-100", "101-200", "201-1000", ">1000"},
	}
	ipv4Buckets = bucket{
		bounds:         []float64{1000, 10000, 100000, 1000000, 10000000},
		labels:         []string{"<1000", "1000-10K", "10K-100K", "100K-1M", "1M-10M", ">10M"},
		exclusiveFirst: true,
	}
	ipv6Buckets = bucket{
		bounds: []float64{0, 1e24, 1e26, 1e28, 1e30},
		labels: []string{"0", "0-24", "24-26", "26-28", "28-30", "30+"},
	}
	classificationLabels = []string{
		"Content, no customers, 1+ peers",
		"Other Content",
		"Transit with 1+ customers",
		"Other Transit",
		"Enterprise, no customers or peers",
		"Other Enterprise",
	}
)

func newBins(labels []string) []Bin {
	bins := make([]Bin, len(labels))
	for i, l := range labels {
		bins[i].Label = l
	}
	return bins
}

// ComputeDistributions bins every node by degree, IPv4 space, IPv6 space
// and a refined classification. Nodes with an unset or unknown
// classification are counted in Unclassified instead of the breakdown.
func ComputeDistributions(g *topology.Graph) *Distributions {
	d := &Distributions{
		Degree:         newBins(degreeBuckets.labels),
		IPv4Space:      newBins(ipv4Buckets.labels),
		IPv6Space:      newBins(ipv6Buckets.labels),
		Classification: newBins(classificationLabels),
	}

	for _, node := range g.Nodes() {
		// Degree 0 falls into the "1" bucket alongside single-link ASes
		d.Degree[degreeBuckets.index(float64(node.Degree()))].Count++
		d.IPv4Space[ipv4Buckets.index(node.IPv4AddressCount())].Count++
		d.IPv6Space[ipv6Buckets.index(node.IPv6AddressCount())].Count++

		if !node.Classification.Known() {
			d.Unclassified++
			continue
		}
		d.Classification[classificationBin(node)].Count++
	}

	return d
}

func classificationBin(node *topology.Node) int {
	customers := node.CustomerCount()
	degree := node.Degree()

	switch node.Classification {
	case topology.ClassContent:
		if degree > 0 && customers == 0 {
			return 0
		}
		return 1
	case topology.ClassTransitAccess:
		if customers > 0 {
			return 2
		}
		return 3
	}
	// Enterprise
	if customers == 0 && degree == 0 {
		return 4
	}
	return 5
}
