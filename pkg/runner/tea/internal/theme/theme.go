package theme

import "github.com/charmbracelet/lipgloss"

// Theme centralizes Lip Gloss styles for the Bubble Tea UI.
type Theme struct {
	Header   lipgloss.Style
	Crumb    lipgloss.Style
	Symbol   lipgloss.Style
	Row      lipgloss.Style
	Selected lipgloss.Style
	Empty    lipgloss.Style
	Error    lipgloss.Style
	Footer   FooterTheme
}

// FooterTheme groups styles used by the bottom status bar.
type FooterTheme struct {
	Help         lipgloss.Style
	Status       lipgloss.Style
	Widget       lipgloss.Style
	Kind         lipgloss.Style
	KindSelected lipgloss.Style
}

// Default returns the built-in theme used across the UI.
func Default() Theme {
	kind := lipgloss.NewStyle().
		Foreground(lipgloss.Color("212")).
		Bold(true)

	return Theme{
		Header:   lipgloss.NewStyle().Bold(true).Underline(true),
		Crumb:    lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		Symbol:   lipgloss.NewStyle().Foreground(lipgloss.Color("81")),
		Row:      lipgloss.NewStyle(),
		Selected: lipgloss.NewStyle().Reverse(true),
		Empty:    lipgloss.NewStyle().Faint(true).Italic(true),
		Error:    lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		Footer: FooterTheme{
			Help:         lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
			Status:       lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
			Widget:       lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
			Kind:         kind,
			KindSelected: kind.Copy().Reverse(true),
		},
	}
}
