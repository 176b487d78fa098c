package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/dd0wney/cluso-astopo/pkg/algorithms"
	"github.com/dd0wney/cluso-astopo/pkg/metrics"
	"github.com/dd0wney/cluso-astopo/pkg/pipeline"
	"github.com/dd0wney/cluso-astopo/pkg/topology"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF00FF")).
			MarginLeft(2).
			MarginTop(1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00FFFF")).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00FFFF")).
			Padding(0, 1)

	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#FF00FF")).
			Padding(0, 2)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#666666")).
				Padding(0, 2)

	contentStyle = lipgloss.NewStyle().
			MarginLeft(2).
			MarginTop(1)

	statsBoxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00FF00")).
			Padding(1, 2).
			MarginRight(2)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			MarginTop(1).
			MarginLeft(2)
)

type view int

const (
	summaryView view = iota
	tier1View
	coneView
	outreachView
	distributionView
	lookupView
	viewCount
)

var tabNames = []string{"Summary", "Tier-1", "By cone", "By outreach", "Distributions", "Lookup"}

type keyMap struct {
	Tab      key.Binding
	ShiftTab key.Binding
	Enter    key.Binding
	Quit     key.Binding
	Up       key.Binding
	Down     key.Binding
}

var keys = keyMap{
	Tab: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "next view"),
	),
	ShiftTab: key.NewBinding(
		key.WithKeys("shift+tab"),
		key.WithHelp("shift+tab", "prev view"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "look up"),
	),
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c", "esc"),
		key.WithHelp("esc", "quit"),
	),
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Enter, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.ShiftTab, k.Enter},
		{k.Up, k.Down},
		{k.Quit},
	}
}

type model struct {
	result      *pipeline.Result
	currentView view
	rankTable   table.Model
	lookupInput textinput.Model
	lookup      *topology.Node
	help        help.Model
	keys        keyMap
	width       int
	height      int
	message     string
}

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Analyze the datasets and explore the rankings interactively",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		res, err := pipeline.Analyze(ctx, cfg, pipeline.Deps{
			Logger:   newLogger(cfg),
			Metrics:  metrics.NewRegistry(),
			Progress: progressPrinter(cmd.ErrOrStderr()),
		})
		if err != nil {
			return err
		}

		p := tea.NewProgram(initialModel(res), tea.WithAltScreen())
		_, err = p.Run()
		return err
	},
}

func initialModel(res *pipeline.Result) model {
	ti := textinput.New()
	ti.Placeholder = "AS number, e.g. 3356"
	ti.CharLimit = 20
	ti.Width = 30

	t := table.New(
		table.WithColumns(rankingColumns()),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("#00FFFF")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(lipgloss.Color("#FF00FF")).
		Bold(false)
	t.SetStyles(s)

	return model{
		result:      res,
		currentView: summaryView,
		rankTable:   t,
		lookupInput: ti,
		help:        help.New(),
		keys:        keys,
	}
}

func rankingColumns() []table.Column {
	return []table.Column{
		{Title: "#", Width: 4},
		{Title: "AS", Width: 10},
		{Title: "Organization", Width: 28},
		{Title: "Degree", Width: 8},
		{Title: "Cone", Width: 8},
		{Title: "Cone %", Width: 8},
		{Title: "Prefixes", Width: 9},
		{Title: "IPv4 %", Width: 8},
	}
}

func rankingRows(rows []algorithms.RankedAS) []table.Row {
	out := make([]table.Row, len(rows))
	for i, row := range rows {
		n := row.Node
		out[i] = table.Row{
			strconv.Itoa(row.Rank),
			strconv.FormatInt(int64(n.ASN), 10),
			n.OrgName,
			strconv.Itoa(n.Degree()),
			strconv.Itoa(n.ConeSize),
			fmt.Sprintf("%.2f", row.ConeShare),
			strconv.Itoa(n.PrefixOutreach),
			fmt.Sprintf("%.2f", row.AddressShare),
		}
	}
	return out
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, m.keys.Tab):
			m.setView((m.currentView + 1) % viewCount)
			return m, nil

		case key.Matches(msg, m.keys.ShiftTab):
			m.setView((m.currentView + viewCount - 1) % viewCount)
			return m, nil

		case key.Matches(msg, m.keys.Enter):
			if m.currentView == lookupView {
				m.runLookup()
				return m, nil
			}
		}
	}

	// Update focused component
	switch m.currentView {
	case lookupView:
		m.lookupInput, cmd = m.lookupInput.Update(msg)
	case tier1View, coneView, outreachView:
		m.rankTable, cmd = m.rankTable.Update(msg)
	}

	return m, cmd
}

// setView switches tabs and loads the rows the new tab shows
func (m *model) setView(v view) {
	m.currentView = v
	m.message = ""

	rk := m.result.Rankings
	switch v {
	case tier1View:
		m.rankTable.SetRows(rankingRows(rk.Tier1Rows()))
	case coneView:
		m.rankTable.SetRows(rankingRows(rk.TopByCone()))
	case outreachView:
		m.rankTable.SetRows(rankingRows(rk.TopByOutreach()))
	}
	m.rankTable.GotoTop()

	if v == lookupView {
		m.lookupInput.Focus()
	} else {
		m.lookupInput.Blur()
	}
}

func (m *model) runLookup() {
	m.lookup = nil
	value := strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(m.lookupInput.Value())), "AS")
	if value == "" {
		m.message = "AS number cannot be empty"
		return
	}
	asn, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		m.message = fmt.Sprintf("Not an AS number: %q", m.lookupInput.Value())
		return
	}
	node, err := m.result.Graph.Get(topology.ASN(asn))
	if err != nil {
		m.message = err.Error()
		return
	}
	m.message = ""
	m.lookup = node
}

func (m model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	var s strings.Builder

	s.WriteString(titleStyle.Render("astopo - AS topology browser"))
	s.WriteString("\n\n")
	s.WriteString(m.renderTabs())
	s.WriteString("\n\n")

	switch m.currentView {
	case summaryView:
		s.WriteString(m.renderSummary())
	case tier1View, coneView, outreachView:
		s.WriteString(m.renderRanking())
	case distributionView:
		s.WriteString(m.renderDistributions())
	case lookupView:
		s.WriteString(m.renderLookup())
	}

	if m.message != "" {
		s.WriteString("\n\n")
		s.WriteString(errorStyle.Render("✗ " + m.message))
	}

	s.WriteString("\n\n")
	s.WriteString(helpStyle.Render(m.help.ShortHelpView(m.keys.ShortHelp())))

	return s.String()
}

func (m model) renderTabs() string {
	var renderedTabs []string
	for i, tab := range tabNames {
		if view(i) == m.currentView {
			renderedTabs = append(renderedTabs, activeTabStyle.Render(tab))
		} else {
			renderedTabs = append(renderedTabs, inactiveTabStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, renderedTabs...)
}

func (m model) renderSummary() string {
	stats := m.result.Graph.GetStatistics()
	t1 := m.result.Tier1

	graphContent := fmt.Sprintf(`Graph
─────────────
Run:            %s
ASes:           %d
Relationships:  %d
IPv4 prefixes:  %d
IPv6 prefixes:  %d`,
		m.result.RunID,
		stats.NodeCount,
		stats.RelationshipCount,
		stats.IPv4PrefixCount,
		stats.IPv6PrefixCount,
	)

	tier1Content := fmt.Sprintf(`Tier-1 clique
─────────────
Members:    %d
Scanned:    %d
Rejected:   %d
Exhausted:  %v
Named orgs: %d`,
		len(t1.Members),
		t1.Scanned,
		t1.Rejected,
		t1.Exhausted,
		m.result.NamedOrgs,
	)

	return contentStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Top,
			statsBoxStyle.Render(graphContent),
			statsBoxStyle.Render(tier1Content)),
	)
}

func (m model) renderRanking() string {
	var s strings.Builder
	s.WriteString(headerStyle.Render(tabNames[m.currentView]))
	s.WriteString("\n\n")
	s.WriteString(m.rankTable.View())
	return contentStyle.Render(s.String())
}

func (m model) renderDistributions() string {
	d := m.result.Distributions
	boxes := []string{
		statsBoxStyle.Render(renderBins("Degree", d.Degree)),
		statsBoxStyle.Render(renderBins("IPv4 space", d.IPv4Space)),
		statsBoxStyle.Render(renderBins("IPv6 space", d.IPv6Space)),
		statsBoxStyle.Render(renderBins("Classification", d.Classification)),
	}
	return contentStyle.Render(lipgloss.JoinHorizontal(lipgloss.Top, boxes...))
}

// renderBins draws a bar per bin scaled to the largest count
func renderBins(title string, bins []algorithms.Bin) string {
	peak := 0
	for _, b := range bins {
		peak = max(peak, b.Count)
	}

	var s strings.Builder
	s.WriteString(title + "\n")
	for _, b := range bins {
		width := 0
		if peak > 0 {
			width = b.Count * 20 / peak
		}
		fmt.Fprintf(&s, "%-16s %-20s %d\n", b.Label, strings.Repeat("█", width), b.Count)
	}
	return strings.TrimRight(s.String(), "\n")
}

func (m model) renderLookup() string {
	var s strings.Builder
	s.WriteString(headerStyle.Render("AS lookup"))
	s.WriteString("\n\n")
	s.WriteString(m.lookupInput.View())

	if n := m.lookup; n != nil {
		org := n.OrgName
		if org == "" {
			org = "-"
		}
		details := fmt.Sprintf(`%s
─────────────
Organization:    %s
Classification:  %s
Degree:          %d
Customers:       %d
Cone size:       %d
Prefix outreach: %d
IPv4 outreach:   %.0f
Tier-1:          %v`,
			n.ASN,
			org,
			n.Classification,
			n.Degree(),
			n.CustomerCount(),
			n.ConeSize,
			n.PrefixOutreach,
			n.IPv4Outreach,
			m.result.Tier1.Contains(n.ASN),
		)
		s.WriteString("\n\n")
		s.WriteString(statsBoxStyle.Render(details))
	}

	return contentStyle.Render(s.String())
}
