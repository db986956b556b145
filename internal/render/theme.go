// Package render formats evaluations, stored reports and the service call
// journal for the terminal.
package render

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/essaylens/internal/engagement"
)

// Palette
var (
	Primary   = lipgloss.Color("#8B5CF6") // Purple
	Secondary = lipgloss.Color("#14B8A6") // Teal
	Accent    = lipgloss.Color("#F97316") // Orange
	Success   = lipgloss.Color("#22C55E") // Green
	Error     = lipgloss.Color("#F43F5E") // Rose
	TextDim   = lipgloss.Color("#94A3B8") // Slate
	Border    = lipgloss.Color("#334155") // Slate
)

var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Section = lipgloss.NewStyle().
		Bold(true).
		Foreground(Secondary).
		MarginTop(1)

	Label = lipgloss.NewStyle().
		Foreground(TextDim).
		Width(28)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)

	Failed = lipgloss.NewStyle().
		Foreground(Error).
		Bold(true)

	Card = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(0, 2)

	header = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary).
		Padding(0, 1)

	cell = lipgloss.NewStyle().
		Padding(0, 1)
)

// ScoreStyle colors an engagement score.
func ScoreStyle(s engagement.Score) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)
	switch s {
	case engagement.High:
		return base.Foreground(Success)
	case engagement.Moderate:
		return base.Foreground(Accent)
	case engagement.NoEngagement:
		return base.Foreground(Error)
	}
	return base.Foreground(TextDim)
}
