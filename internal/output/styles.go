package output

import (
	"github.com/charmbracelet/lipgloss"
)

// Styles holds all lipgloss styles for text output
var Styles = struct {
	// Component styles
	Header lipgloss.Style
	Label  lipgloss.Style
	Value  lipgloss.Style
	Muted  lipgloss.Style

	// Status styles
	Success lipgloss.Style
	Warning lipgloss.Style
	Danger  lipgloss.Style

	// Simulator states
	Booted   lipgloss.Style
	Shutdown lipgloss.Style
}{
	Header: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")).BorderStyle(lipgloss.NormalBorder()).BorderBottom(true).BorderForeground(lipgloss.Color("239")),
	Label:  lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
	Value:  lipgloss.NewStyle().Bold(true),
	Muted:  lipgloss.NewStyle().Foreground(lipgloss.Color("243")),

	Success: lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true),  // Green
	Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true), // Orange
	Danger:  lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true), // Red

	Booted:   lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
	Shutdown: lipgloss.NewStyle().Foreground(lipgloss.Color("243")),
}

// StateText returns a styled simulator state
func StateText(state string) string {
	if state == "Booted" {
		return Styles.Booted.Render(state)
	}
	return Styles.Shutdown.Render(state)
}

// CheckIcon returns the styled marker for a doctor check status
func CheckIcon(status string) string {
	switch status {
	case "ok":
		return Styles.Success.Render("✓")
	case "warning":
		return Styles.Warning.Render("⚠")
	default:
		return Styles.Danger.Render("✗")
	}
}
