// Package export writes the enriched node mapping for downstream tools.
package export

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/golang/snappy"

	"github.com/dd0wney/cluso-astopo/pkg/topology"
)

// FormatVersion is written into every export header
const FormatVersion = 1

// ErrBadHeader is returned when an export stream does not start with a header
var ErrBadHeader = errors.New("export: missing or invalid header")

// Header is the first line of an export stream
type Header struct {
	Version     int       `json:"version"`
	RunID       string    `json:"run_id"`
	GeneratedAt time.Time `json:"generated_at"`
	Nodes       int       `json:"nodes"`
}

// NodeRecord is one exported AS
type NodeRecord struct {
	ASN            topology.ASN            `json:"asn"`
	Classification topology.Classification `json:"classification,omitempty"`
	Degree         int                     `json:"degree"`
	Customers      []topology.ASN          `json:"customers,omitempty"`
	Prefixes       int                     `json:"prefixes"`
	IPv4Addresses  float64                 `json:"ipv4_addresses"`
	IPv6Addresses  float64                 `json:"ipv6_addresses"`
	ConeSize       int                     `json:"cone_size"`
	PrefixOutreach int                     `json:"prefix_outreach"`
	IPv4Outreach   float64                 `json:"ipv4_outreach"`
	OrgID          string                  `json:"org_id,omitempty"`
	OrgName        string                  `json:"org_name,omitempty"`
}

// NewNodeRecord flattens a node
func NewNodeRecord(n *topology.Node) NodeRecord {
	return NodeRecord{
		ASN:            n.ASN,
		Classification: n.Classification,
		Degree:         n.Degree(),
		Customers:      n.Customers(),
		Prefixes:       n.PrefixCount(),
		IPv4Addresses:  n.IPv4AddressCount(),
		IPv6Addresses:  n.IPv6AddressCount(),
		ConeSize:       n.ConeSize,
		PrefixOutreach: n.PrefixOutreach,
		IPv4Outreach:   n.IPv4Outreach,
		OrgID:          n.OrgID,
		OrgName:        n.OrgName,
	}
}

// Options controls the export encoding
type Options struct {
	RunID string
	// Compress wraps the stream in the snappy framing format
	Compress bool
	Now      func() time.Time
}

// WriteNodes writes a header line followed by one JSON object per node, in
// first-seen order
func WriteNodes(w io.Writer, g *topology.Graph, opts Options) error {
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	var (
		out    io.Writer = w
		closer io.Closer
	)
	if opts.Compress {
		sw := snappy.NewBufferedWriter(w)
		out, closer = sw, sw
	}

	enc := json.NewEncoder(out)
	header := Header{
		Version:     FormatVersion,
		RunID:       opts.RunID,
		GeneratedAt: now().UTC(),
		Nodes:       g.Len(),
	}
	if err := enc.Encode(header); err != nil {
		return fmt.Errorf("failed to write export header: %w", err)
	}

	for _, n := range g.Nodes() {
		if err := enc.Encode(NewNodeRecord(n)); err != nil {
			return fmt.Errorf("failed to write %s: %w", n.ASN, err)
		}
	}

	if closer != nil {
		if err := closer.Close(); err != nil {
			return fmt.Errorf("failed to flush snappy stream: %w", err)
		}
	}
	return nil
}

// WriteFile writes the export to path, replacing any existing file
func WriteFile(path string, g *topology.Graph, opts Options) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	bw := bufio.NewWriter(f)
	if err := WriteNodes(bw, g, opts); err != nil {
		return err
	}
	return bw.Flush()
}

// ReadNodes decodes a stream produced by WriteNodes
func ReadNodes(r io.Reader, compressed bool) (Header, []NodeRecord, error) {
	if compressed {
		r = snappy.NewReader(r)
	}
	dec := json.NewDecoder(r)

	var header Header
	if err := dec.Decode(&header); err != nil || header.Version == 0 {
		return Header{}, nil, ErrBadHeader
	}

	nodes := make([]NodeRecord, 0, header.Nodes)
	for {
		var rec NodeRecord
		err := dec.Decode(&rec)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return header, nodes, fmt.Errorf("failed to read node %d: %w", len(nodes)+1, err)
		}
		nodes = append(nodes, rec)
	}
	return header, nodes, nil
}
