package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/ifwatch/agent/internal/healthcore"
	"github.com/ifwatch/agent/internal/tui/components"
)

// View renders the current state
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(m.renderError())
		b.WriteString("\n")
	}

	b.WriteString(m.renderTable())
	b.WriteString("\n\n")
	b.WriteString(m.renderTransitionLog())

	b.WriteString("\n")
	b.WriteString(m.renderHelp())

	return b.String()
}

// renderError renders an error message
func (m Model) renderError() string {
	errorBox := lipgloss.NewStyle().
		Foreground(ColorDanger).
		Background(lipgloss.Color("#3F1F1F")).
		Padding(0, 1).
		Width(m.width - 2).
		Render("Error: " + m.err.Error())
	return errorBox
}

// renderHeader renders the application header
func (m Model) renderHeader() string {
	title := TitleStyle.Render(" ifagent ")
	subtitle := SubtitleStyle.Render("Interface Health Monitor")
	apiInfo := lipgloss.NewStyle().
		Foreground(ColorMuted).
		Render(fmt.Sprintf("API: %s", m.apiAddr))

	left := lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", subtitle)

	spacing := m.width - lipgloss.Width(left) - lipgloss.Width(apiInfo) - 2
	if spacing < 1 {
		spacing = 1
	}

	return lipgloss.JoinHorizontal(
		lipgloss.Center,
		left,
		strings.Repeat(" ", spacing),
		apiInfo,
	)
}

// renderTable renders the interfaces table
func (m Model) renderTable() string {
	columns := components.AdaptiveColumns(m.width)
	table := components.NewTable(columns)

	var rows []string
	rows = append(rows, table.RenderHeader())
	rows = append(rows, table.RenderSeparator())

	for i, iface := range m.interfaces {
		row := m.renderInterfaceRow(iface, columns[len(columns)-1].Width)
		rows = append(rows, table.RenderRow(row, i == m.selectedIdx))
	}

	return strings.Join(rows, "\n")
}

// renderInterfaceRow renders a single interface row
func (m Model) renderInterfaceRow(iface InterfaceState, sparklineWidth int) []string {
	name := iface.Name
	if len(name) > 16 {
		name = name[:15] + "…"
	}

	status := healthcore.Degraded
	var score, confidence, avgRTT, avgLoss float64
	if iface.Snapshot != nil {
		status = iface.Snapshot.Status
		score = iface.Snapshot.ScoreUsed
		confidence = iface.Snapshot.Confidence
		avgRTT = iface.Snapshot.AvgRTTMs
		avgLoss = iface.Snapshot.AvgLossPct
	}

	sparkline := components.SparklineWithRange(iface.History, sparklineWidth, 0, 1)

	return []string{
		name,
		FormatStatus(status),
		FormatScore(score),
		FormatConfidence(confidence),
		fmt.Sprintf("%.0fms", avgRTT),
		fmt.Sprintf("%.1f%%", avgLoss),
		sparkline,
	}
}

// renderTransitionLog renders the scrolling transition log.
func (m Model) renderTransitionLog() string {
	sectionStyle := lipgloss.NewStyle().Bold(true).Foreground(ColorSecondary)

	var b strings.Builder
	b.WriteString(sectionStyle.Render("Transitions"))
	b.WriteString("\n")

	if len(m.transitions) == 0 {
		b.WriteString(lipgloss.NewStyle().Foreground(ColorMuted).Italic(true).Render("  no transitions yet"))
		return b.String()
	}

	// Show the most recent entries first, bounded to what fits on screen.
	maxLines := m.height - 12
	if maxLines < 3 {
		maxLines = 3
	}
	entries := m.transitions
	if len(entries) > maxLines {
		entries = entries[len(entries)-maxLines:]
	}

	for i := len(entries) - 1; i >= 0; i-- {
		ev := entries[i]
		style := TransitionStyle(ev.From, ev.To)
		line := fmt.Sprintf("  [tick %6d] %-10s %s -> %s  (%s)",
			ev.Ts, ev.Iface, ev.From.String(), ev.To.String(), ev.Reason)
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}

	return b.String()
}

// renderHelp renders the help footer
func (m Model) renderHelp() string {
	keys := []struct {
		key  string
		desc string
	}{
		{"↑/↓", "select"},
		{"r", "refresh"},
		{"q", "quit"},
	}

	var parts []string
	for _, k := range keys {
		parts = append(parts,
			HelpKeyStyle.Render(k.key)+
				HelpStyle.Render(" "+k.desc))
	}

	return HelpStyle.Render(strings.Join(parts, "  "))
}
