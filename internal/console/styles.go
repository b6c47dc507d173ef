package console

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title     lipgloss.Style
	status    lipgloss.Style
	agent     lipgloss.Style
	user      lipgloss.Style
	interim   lipgloss.Style
	reply     lipgloss.Style
	system    lipgloss.Style
	errorLine lipgloss.Style
	help      lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
		status:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		agent:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86")),
		user:      lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		interim:   lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("241")),
		reply:     lipgloss.NewStyle().Foreground(lipgloss.Color("117")),
		system:    lipgloss.NewStyle().Foreground(lipgloss.Color("180")),
		errorLine: lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		help:      lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	}
}
