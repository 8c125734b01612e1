package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/ifwatch/agent/internal/healthcore"
)

// Color palette
var (
	ColorPrimary   = lipgloss.Color("#7C3AED") // Purple
	ColorSecondary = lipgloss.Color("#06B6D4") // Cyan
	ColorSuccess   = lipgloss.Color("#10B981") // Green
	ColorWarning   = lipgloss.Color("#F59E0B") // Yellow
	ColorDanger    = lipgloss.Color("#EF4444") // Red
	ColorMuted     = lipgloss.Color("#6B7280") // Gray
	ColorBg        = lipgloss.Color("#1F2937") // Dark background
	ColorBgLight   = lipgloss.Color("#374151") // Lighter background
	ColorText      = lipgloss.Color("#F9FAFB") // Light text
)

// Base styles
var (
	// Title style
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorText).
			Background(ColorPrimary).
			Padding(0, 1)

	// Subtitle style
	SubtitleStyle = lipgloss.NewStyle().
			Foreground(ColorMuted).
			Padding(0, 1)

	// Status styles
	StatusHealthyStyle  = lipgloss.NewStyle().Foreground(ColorSuccess)
	StatusDegradedStyle = lipgloss.NewStyle().Foreground(ColorWarning)
	StatusDownStyle     = lipgloss.NewStyle().Foreground(ColorDanger)

	// Help style
	HelpStyle = lipgloss.NewStyle().
			Foreground(ColorMuted).
			Padding(0, 1)

	// Help key style
	HelpKeyStyle = lipgloss.NewStyle().
			Foreground(ColorSecondary).
			Bold(true)

	// Error style
	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorDanger).
			Bold(true)

	// Transition log styles
	TransitionUpStyle   = lipgloss.NewStyle().Foreground(ColorSuccess)
	TransitionDownStyle = lipgloss.NewStyle().Foreground(ColorDanger)
	TransitionFlatStyle = lipgloss.NewStyle().Foreground(ColorWarning)
)

// StatusStyle returns the style for a given operational status.
func StatusStyle(s healthcore.Status) lipgloss.Style {
	switch s {
	case healthcore.Healthy:
		return StatusHealthyStyle
	case healthcore.Degraded:
		return StatusDegradedStyle
	case healthcore.Down:
		return StatusDownStyle
	default:
		return lipgloss.NewStyle()
	}
}

// FormatStatus renders a status with its color, padded to a fixed width.
func FormatStatus(s healthcore.Status) string {
	return StatusStyle(s).Render(fmt.Sprintf("%-8s", s.String()))
}

// ScoreStyle returns a style for a score in [0,1] on a green/yellow/red scale.
func ScoreStyle(score float64) lipgloss.Style {
	switch {
	case score >= 0.72:
		return StatusHealthyStyle
	case score >= 0.35:
		return StatusDegradedStyle
	default:
		return StatusDownStyle
	}
}

// FormatScore renders a score value with color.
func FormatScore(score float64) string {
	return ScoreStyle(score).Render(fmt.Sprintf("%.2f", score))
}

// FormatConfidence renders a confidence value, muted below 0.5.
func FormatConfidence(conf float64) string {
	style := lipgloss.NewStyle().Foreground(ColorText)
	if conf < 0.5 {
		style = lipgloss.NewStyle().Foreground(ColorMuted)
	}
	return style.Render(fmt.Sprintf("%.2f", conf))
}

// TransitionStyle returns a style for a transition based on direction.
func TransitionStyle(from, to healthcore.Status) lipgloss.Style {
	if to > from {
		return TransitionDownStyle
	}
	if to < from {
		return TransitionUpStyle
	}
	return TransitionFlatStyle
}
