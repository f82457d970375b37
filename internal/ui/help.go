package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

var helpSectionTitles = []string{"Playback", "Playlist", "Log", "General"}

// renderHelp renders the help overlay.
func (m Model) renderHelp() string {
	styles := m.theme.Styles()

	var b strings.Builder

	b.WriteString(styles.Text.Bold(true).Render("Keyboard & Mouse"))
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render(strings.Repeat("─", 30)))
	b.WriteString("\n\n")

	keyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.theme.Warning)).
		Width(14)

	groups := m.keys.FullHelp()
	for i, group := range groups {
		title := ""
		if i < len(helpSectionTitles) {
			title = helpSectionTitles[i]
		}
		b.WriteString(styles.AccentText.Bold(true).Render(title))
		b.WriteString("\n")
		for _, binding := range group {
			writeHelpLine(&b, keyStyle, styles, binding)
		}
		b.WriteString("\n")
	}

	b.WriteString(styles.AccentText.Bold(true).Render("Mouse"))
	b.WriteString("\n")
	for _, item := range []helpItem{
		{"click video", "Play/pause"},
		{"click bar", "Seek"},
		{"click thumb", "Select video"},
		{"move", "Show controls"},
	} {
		b.WriteString(keyStyle.Render(item.key))
		b.WriteString(styles.Text.Render(item.desc))
		b.WriteString("\n")
	}

	modal := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.Accent)).
		Padding(1, 2).
		Width(44)

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		modal.Render(strings.TrimRight(b.String(), "\n")),
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(m.theme.Background)),
	)
}

func writeHelpLine(b *strings.Builder, keyStyle lipgloss.Style, styles Styles, binding key.Binding) {
	h := binding.Help()
	if h.Key == "" {
		return
	}
	b.WriteString(keyStyle.Render(h.Key))
	b.WriteString(styles.Text.Render(h.Desc))
	b.WriteString("\n")
}

type helpItem struct {
	key  string
	desc string
}
