package algorithms

import (
	"sync"

	"github.com/dd0wney/cluso-astopo/pkg/parallel"
	"github.com/dd0wney/cluso-astopo/pkg/topology"
)

// ConeResult is the customer cone of a single AS
type ConeResult struct {
	ASN topology.ASN `json:"asn"`
	// Size counts the root plus every distinct AS reachable over
	// provider-to-customer links.
	Size int `json:"size"`
	// PrefixOutreach counts the prefixes, both families, owned inside the cone.
	PrefixOutreach int `json:"prefix_outreach"`
	// IPv4Outreach sums the IPv4 addresses owned inside the cone.
	IPv4Outreach float64 `json:"ipv4_outreach"`
}

// ProgressFunc observes enrichment progress. It is called with the number
// of roots finished so far and the total, never concurrently.
type ProgressFunc func(done, total int)

// ConeOptions configures cone enrichment
type ConeOptions struct {
	// Workers partitions the roots across a worker pool; 0 or 1 runs
	// sequentially.
	Workers int
	// ChunkSize is the number of roots per pool task.
	ChunkSize int
	// Progress, when set, is called after each finished chunk (or root
	// when sequential).
	Progress ProgressFunc
}

// DefaultConeOptions returns sequential enrichment with no observer
func DefaultConeOptions() ConeOptions {
	return ConeOptions{
		Workers:   1,
		ChunkSize: 256,
	}
}

// ComputeCone walks the customer cone of asn and returns its totals without
// touching the graph.
func ComputeCone(g *topology.Graph, asn topology.ASN) (ConeResult, error) {
	root, err := g.Get(asn)
	if err != nil {
		return ConeResult{}, err
	}
	return walkCone(g, root), nil
}

// walkCone performs an explicit-stack depth-first walk over customers.
// The backlog is private to this root: each AS is counted and descended into
// at most once, which bounds the walk on cyclic or diamond-shaped inputs.
// The root is seeded into the backlog so a cycle leading back to it does not
// count it a second time.
func walkCone(g *topology.Graph, root *topology.Node) ConeResult {
	result := ConeResult{ASN: root.ASN}

	backlog := map[topology.ASN]struct{}{root.ASN: {}}
	stack := pushReversed(nil, root.Customers())

	for len(stack) > 0 {
		asn := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if _, seen := backlog[asn]; seen {
			continue
		}
		backlog[asn] = struct{}{}

		node, ok := g.Lookup(asn)
		if !ok {
			continue
		}

		result.Size++
		result.IPv4Outreach += node.IPv4AddressCount()
		result.PrefixOutreach += node.PrefixCount()

		stack = pushReversed(stack, node.Customers())
	}

	// The root itself
	result.Size++
	result.PrefixOutreach += root.PrefixCount()
	result.IPv4Outreach += root.IPv4AddressCount()

	return result
}

// pushReversed pushes customers so they pop in recorded order
func pushReversed(stack, customers []topology.ASN) []topology.ASN {
	for i := len(customers) - 1; i >= 0; i-- {
		stack = append(stack, customers[i])
	}
	return stack
}

func applyCone(node *topology.Node, res ConeResult) {
	node.ConeSize = res.Size
	node.IPv4Outreach = res.IPv4Outreach
	node.PrefixOutreach = res.PrefixOutreach
}

// EnrichCones computes the cone of every node and writes ConeSize,
// IPv4Outreach and PrefixOutreach onto it. The graph structure is only read;
// each node's derived fields are written by exactly one worker.
func EnrichCones(g *topology.Graph, opts ConeOptions) error {
	nodes := g.Nodes()
	total := len(nodes)

	if opts.Workers <= 1 {
		for i, node := range nodes {
			applyCone(node, walkCone(g, node))
			if opts.Progress != nil {
				opts.Progress(i+1, total)
			}
		}
		return nil
	}

	var (
		mu   sync.Mutex
		done int
	)
	chunkSize := opts.ChunkSize
	if chunkSize <= 0 {
		chunkSize = DefaultConeOptions().ChunkSize
	}

	return parallel.ForEachChunk(total, opts.Workers, chunkSize, func(start, end int) error {
		for _, node := range nodes[start:end] {
			applyCone(node, walkCone(g, node))
		}
		if opts.Progress != nil {
			mu.Lock()
			done += end - start
			opts.Progress(done, total)
			mu.Unlock()
		}
		return nil
	})
}
