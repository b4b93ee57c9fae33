// Package tui is the terminal front end of the dashboard: one tab per view,
// pages rendered as markdown with glamour inside a scrollable viewport.
package tui

import "github.com/charmbracelet/lipgloss"

// Palette follows the web dashboard.
var (
	Accent  = lipgloss.Color("#ff4b4b")
	Muted   = lipgloss.Color("#8b8d98")
	Border  = lipgloss.Color("#dce0e5")
	Warning = lipgloss.Color("#FFC107")
)

// Styles holds the lipgloss styles of the chrome around the page.
type Styles struct {
	Tab       lipgloss.Style
	ActiveTab lipgloss.Style
	Status    lipgloss.Style
	Error     lipgloss.Style
	Help      lipgloss.Style
}

// DefaultStyles returns the dashboard styles.
func DefaultStyles() Styles {
	tab := lipgloss.NewStyle().Padding(0, 1).Foreground(Muted)
	return Styles{
		Tab: tab,
		ActiveTab: tab.
			Foreground(Accent).
			Bold(true).
			Border(lipgloss.NormalBorder(), false, false, true, false).
			BorderForeground(Accent),
		Status: lipgloss.NewStyle().Foreground(Muted).Italic(true),
		Error: lipgloss.NewStyle().
			Foreground(Warning).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Warning).
			Padding(0, 1),
		Help: lipgloss.NewStyle().Foreground(Muted).
			Border(lipgloss.NormalBorder(), true, false, false, false).
			BorderForeground(Border),
	}
}
