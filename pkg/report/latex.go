package report

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/dd0wney/cluso-astopo/pkg/algorithms"
)

// LaTeXSink writes tabular rows ready to paste between \begin{tabular} and
// \end{tabular}
type LaTeXSink struct{}

// Write renders the summary, the Tier-1 clique and both top-N tables
func (LaTeXSink) Write(w io.Writer, r *Report) error {
	bw := bufio.NewWriter(w)
	rk := r.Rankings

	fmt.Fprintf(bw, "%% run %s\n", r.RunID)
	fmt.Fprintf(bw, "%% ASes: %d, IPv4 prefixes: %d\n\n", rk.Totals.Nodes, rk.Totals.IPv4Prefixes)

	fmt.Fprintf(bw, "%% Tier-1 ASes: %d\n", len(rk.Tier1.Members))
	writeLaTeXRow(bw, tier1Headers)
	for _, row := range rk.Tier1Rows() {
		writeLaTeXRow(bw, tier1Cells(row))
	}

	fmt.Fprintf(bw, "\n%% Top %d by customer cone\n", rk.TopN)
	writeLaTeXRow(bw, rankingHeaders)
	for _, row := range rk.TopByCone() {
		writeLaTeXRow(bw, rankingCells(row))
	}

	fmt.Fprintf(bw, "\n%% Top %d by IPv4 outreach\n", rk.TopN)
	writeLaTeXRow(bw, rankingHeaders)
	for _, row := range rk.TopByOutreach() {
		writeLaTeXRow(bw, rankingCells(row))
	}

	return bw.Flush()
}

var latexEscaper = strings.NewReplacer(
	`\`, `\textbackslash{}`,
	`&`, `\&`,
	`%`, `\%`,
	`$`, `\$`,
	`#`, `\#`,
	`_`, `\_`,
	`{`, `\{`,
	`}`, `\}`,
	`~`, `\textasciitilde{}`,
	`^`, `\textasciicircum{}`,
)

func writeLaTeXRow(w io.Writer, cells []string) {
	escaped := make([]string, len(cells))
	for i, c := range cells {
		escaped[i] = latexEscaper.Replace(c)
	}
	fmt.Fprintf(w, "%s \\\\\n", strings.Join(escaped, " & "))
}

// FormatLaTeXRow renders one ranking row
func FormatLaTeXRow(row algorithms.RankedAS) string {
	var b strings.Builder
	writeLaTeXRow(&b, rankingCells(row))
	return b.String()
}
