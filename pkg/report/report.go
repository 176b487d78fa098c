// Package report renders the rankings of an analysis run.
package report

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dd0wney/cluso-astopo/pkg/algorithms"
)

// ErrUnknownFormat is returned by NewSink for an unsupported format name
var ErrUnknownFormat = errors.New("unknown report format")

// Report is everything a sink renders for one run
type Report struct {
	RunID         string
	GeneratedAt   time.Time
	Rankings      *algorithms.Rankings
	Distributions *algorithms.Distributions
}

// Sink writes a report in one output format
type Sink interface {
	Write(w io.Writer, r *Report) error
}

// NewSink returns the sink for format: latex, table or json
func NewSink(format string) (Sink, error) {
	switch format {
	case "latex":
		return LaTeXSink{}, nil
	case "table":
		return TableSink{}, nil
	case "json":
		return JSONSink{Indent: "  "}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// Column headers shared by the text sinks
var (
	rankingHeaders = []string{
		"#", "AS", "Organization", "Degree", "Cone", "Prefixes", "IPv4",
		"Cone %", "Prefix %", "IPv4 %",
	}
	tier1Headers = []string{"#", "Degree", "Organization"}
)

// orgLabel falls back to the AS number for nodes without an organization
func orgLabel(row algorithms.RankedAS) string {
	if row.Node.OrgName != "" {
		return row.Node.OrgName
	}
	return row.Node.ASN.String()
}

func rankingCells(row algorithms.RankedAS) []string {
	n := row.Node
	return []string{
		fmt.Sprintf("%d", row.Rank),
		fmt.Sprintf("%d", int64(n.ASN)),
		n.OrgName,
		fmt.Sprintf("%d", n.Degree()),
		fmt.Sprintf("%d", n.ConeSize),
		fmt.Sprintf("%d", n.PrefixOutreach),
		fmt.Sprintf("%.0f", n.IPv4Outreach),
		fmt.Sprintf("%.4f", row.ConeShare),
		fmt.Sprintf("%.4f", row.PrefixShare),
		fmt.Sprintf("%.4f", row.AddressShare),
	}
}

func tier1Cells(row algorithms.RankedAS) []string {
	return []string{
		fmt.Sprintf("%d", row.Rank),
		fmt.Sprintf("%d", row.Node.Degree()),
		orgLabel(row),
	}
}
