// Package ui renders test results, status tables and the test-definition
// pager for the terminal.
package ui

import "github.com/charmbracelet/lipgloss"

// Styles groups the lipgloss styles shared by all renderers.
type Styles struct {
	Pass    lipgloss.Style
	Fail    lipgloss.Style
	Header  lipgloss.Style
	Muted   lipgloss.Style
	Section lipgloss.Style
}

// DefaultStyles returns the standard color scheme.
func DefaultStyles() Styles {
	return Styles{
		Pass:    lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true),
		Fail:    lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		Header:  lipgloss.NewStyle().Bold(true).Underline(true),
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Section: lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true),
	}
}
