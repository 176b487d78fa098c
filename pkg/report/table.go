package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/dd0wney/cluso-astopo/pkg/algorithms"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF00FF")).
			MarginTop(1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00FFFF")).
			Padding(0, 1)

	cellStyle = lipgloss.NewStyle().Padding(0, 1)

	numericStyle = cellStyle.Align(lipgloss.Right)

	summaryStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00FF00")).
			Padding(0, 2)
)

// TableSink renders bordered terminal tables
type TableSink struct{}

// Write renders the summary box, the clique and both rankings
func (TableSink) Write(w io.Writer, r *Report) error {
	rk := r.Rankings
	var s strings.Builder

	s.WriteString(summaryStyle.Render(fmt.Sprintf(
		"Run %s\nASes: %d\nIPv4 prefixes: %d\nTier-1 members: %d",
		r.RunID, rk.Totals.Nodes, rk.Totals.IPv4Prefixes, len(rk.Tier1.Members),
	)))
	s.WriteString("\n")

	s.WriteString(titleStyle.Render("Inferred Tier-1 clique"))
	s.WriteString("\n")
	s.WriteString(renderTable(tier1Headers, rowsOf(rk.Tier1Rows(), tier1Cells), 2))
	s.WriteString("\n")

	s.WriteString(titleStyle.Render(fmt.Sprintf("Top %d by customer cone", rk.TopN)))
	s.WriteString("\n")
	s.WriteString(renderTable(rankingHeaders, rowsOf(rk.TopByCone(), rankingCells), 2))
	s.WriteString("\n")

	s.WriteString(titleStyle.Render(fmt.Sprintf("Top %d by IPv4 outreach", rk.TopN)))
	s.WriteString("\n")
	s.WriteString(renderTable(rankingHeaders, rowsOf(rk.TopByOutreach(), rankingCells), 2))
	s.WriteString("\n")

	if r.Distributions != nil {
		s.WriteString(titleStyle.Render("Node degree distribution"))
		s.WriteString("\n")
		s.WriteString(renderTable([]string{"Degree", "ASes"}, binRows(r.Distributions.Degree), 1))
		s.WriteString("\n")
	}

	_, err := io.WriteString(w, s.String())
	return err
}

func rowsOf(rows []algorithms.RankedAS, cells func(algorithms.RankedAS) []string) [][]string {
	out := make([][]string, len(rows))
	for i, row := range rows {
		out[i] = cells(row)
	}
	return out
}

func binRows(bins []algorithms.Bin) [][]string {
	out := make([][]string, len(bins))
	for i, b := range bins {
		out[i] = []string{b.Label, fmt.Sprintf("%d", b.Count)}
	}
	return out
}

// renderTable left-aligns the text column at textCol and right-aligns the rest
func renderTable(headers []string, rows [][]string, textCol int) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == textCol:
				return cellStyle
			default:
				return numericStyle
			}
		})
	return t.String()
}
