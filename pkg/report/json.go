package report

import (
	"encoding/json"
	"io"
	"time"

	"github.com/dd0wney/cluso-astopo/pkg/algorithms"
	"github.com/dd0wney/cluso-astopo/pkg/topology"
)

// JSONSink writes the report as a single JSON document
type JSONSink struct {
	Indent string
}

// jsonRow flattens a ranked node for encoding
type jsonRow struct {
	Rank           int          `json:"rank"`
	ASN            topology.ASN `json:"asn"`
	OrgID          string       `json:"org_id,omitempty"`
	OrgName        string       `json:"org_name,omitempty"`
	Degree         int          `json:"degree"`
	ConeSize       int          `json:"cone_size"`
	PrefixOutreach int          `json:"prefix_outreach"`
	IPv4Outreach   float64      `json:"ipv4_outreach"`
	ConeShare      float64      `json:"cone_share"`
	PrefixShare    float64      `json:"prefix_share"`
	AddressShare   float64      `json:"address_share"`
}

type jsonTier1 struct {
	Members   []jsonRow `json:"members"`
	Scanned   int       `json:"scanned"`
	Rejected  int       `json:"rejected"`
	Exhausted bool      `json:"exhausted"`
}

type jsonReport struct {
	RunID         string                    `json:"run_id"`
	GeneratedAt   time.Time                 `json:"generated_at"`
	Totals        algorithms.Totals         `json:"totals"`
	Tier1         jsonTier1                 `json:"tier1"`
	TopByCone     []jsonRow                 `json:"top_by_cone"`
	TopByOutreach []jsonRow                 `json:"top_by_outreach"`
	Distributions *algorithms.Distributions `json:"distributions,omitempty"`
}

func toJSONRows(rows []algorithms.RankedAS) []jsonRow {
	out := make([]jsonRow, len(rows))
	for i, row := range rows {
		n := row.Node
		out[i] = jsonRow{
			Rank:           row.Rank,
			ASN:            n.ASN,
			OrgID:          n.OrgID,
			OrgName:        n.OrgName,
			Degree:         n.Degree(),
			ConeSize:       n.ConeSize,
			PrefixOutreach: n.PrefixOutreach,
			IPv4Outreach:   n.IPv4Outreach,
			ConeShare:      row.ConeShare,
			PrefixShare:    row.PrefixShare,
			AddressShare:   row.AddressShare,
		}
	}
	return out
}

// Write encodes the report
func (s JSONSink) Write(w io.Writer, r *Report) error {
	rk := r.Rankings
	doc := jsonReport{
		RunID:       r.RunID,
		GeneratedAt: r.GeneratedAt,
		Totals:      rk.Totals,
		Tier1: jsonTier1{
			Members:   toJSONRows(rk.Tier1Rows()),
			Scanned:   rk.Tier1.Scanned,
			Rejected:  rk.Tier1.Rejected,
			Exhausted: rk.Tier1.Exhausted,
		},
		TopByCone:     toJSONRows(rk.TopByCone()),
		TopByOutreach: toJSONRows(rk.TopByOutreach()),
		Distributions: r.Distributions,
	}

	enc := json.NewEncoder(w)
	if s.Indent != "" {
		enc.SetIndent("", s.Indent)
	}
	return enc.Encode(doc)
}
