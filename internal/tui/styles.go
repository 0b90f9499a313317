package tui

import "github.com/charmbracelet/lipgloss"

// HeaderStyle styles the step table header row.
var HeaderStyle = lipgloss.NewStyle().Bold(true)

var (
	styleFinished = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	styleActive   = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	styleSkipped  = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	styleFailed   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	styleIdle     = lipgloss.NewStyle().Faint(true)
)

// StatusStyle maps a step status to its color: green when finished, blue
// while moving, yellow for skips, red for failures, dim while waiting.
func StatusStyle(status string) lipgloss.Style {
	switch status {
	case "complete":
		return styleFinished
	case "resolving", "downloading", "generating":
		return styleActive
	case "skipped":
		return styleSkipped
	case "error":
		return styleFailed
	case "pending":
		return styleIdle
	}
	return lipgloss.NewStyle()
}
