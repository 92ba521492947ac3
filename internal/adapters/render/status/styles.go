package status

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title        lipgloss.Style
	header       lipgloss.Style
	account      lipgloss.Style
	detail       lipgloss.Style
	warning      lipgloss.Style
	section      lipgloss.Style
	empty        lipgloss.Style
	key          lipgloss.Style
	meta         lipgloss.Style
	paired       lipgloss.Style
	connecting   lipgloss.Style
	disconnected lipgloss.Style
	active       lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:        lipgloss.NewStyle().Bold(true),
		header:       lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		account:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		detail:       lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		warning:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		section:      lipgloss.NewStyle().MarginTop(1),
		empty:        lipgloss.NewStyle().Faint(true),
		key:          lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
		meta:         lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		paired:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42")),
		connecting:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214")),
		disconnected: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("244")),
		active:       lipgloss.NewStyle().Foreground(lipgloss.Color("159")),
	}
}
