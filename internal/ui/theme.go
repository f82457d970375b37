package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme is a named palette for the player screen.
type Theme struct {
	Name string

	Background string
	Surface    string

	// Thumbnail strip selection
	SelectionBg   string
	SelectionText string

	Border      string
	BorderMuted string // empty part of the progress bar
	BorderFocus string // video frame while controls are shown, active thumbnail

	Text    string
	Muted   string
	Faint   string
	Accent  string
	Success string
	Warning string
	Danger  string

	// Badge colors keyed by statusLabel.
	StatusColors map[string]string
}

// Styles are the lipgloss styles derived from a Theme.
type Styles struct {
	Text        lipgloss.Style
	MutedText   lipgloss.Style
	FaintText   lipgloss.Style
	AccentText  lipgloss.Style
	SuccessText lipgloss.Style
	WarningText lipgloss.Style
	DangerText  lipgloss.Style

	Logo     lipgloss.Style
	Selected lipgloss.Style

	statusColors map[string]string
	background   string
	muted        string
}

// Styles builds the lipgloss styles for t.
func (t Theme) Styles() Styles {
	fg := func(color string) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
	}
	return Styles{
		Text:        fg(t.Text),
		MutedText:   fg(t.Muted),
		FaintText:   fg(t.Faint),
		AccentText:  fg(t.Accent),
		SuccessText: fg(t.Success).Bold(true),
		WarningText: fg(t.Warning),
		DangerText:  fg(t.Danger).Bold(true),

		Logo: fg(t.Warning).Bold(true),
		Selected: lipgloss.NewStyle().
			Background(lipgloss.Color(t.SelectionBg)).
			Foreground(lipgloss.Color(t.SelectionText)),

		statusColors: t.StatusColors,
		background:   t.Background,
		muted:        t.Muted,
	}
}

// StatusStyle returns the badge style for a player status. Unknown statuses
// use the muted color.
func (s Styles) StatusStyle(status string) lipgloss.Style {
	color, ok := s.statusColors[status]
	if !ok || color == "" {
		color = s.muted
	}
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(s.background)).
		Background(lipgloss.Color(color)).
		Bold(true).
		Padding(0, 1)
}

// WithBackground returns a copy of s whose text styles paint bgColor, for
// text drawn on a filled bar such as the header.
func (s Styles) WithBackground(bgColor string) Styles {
	bg := lipgloss.Color(bgColor)
	out := s
	for _, style := range []*lipgloss.Style{
		&out.Text, &out.MutedText, &out.FaintText, &out.AccentText,
		&out.SuccessText, &out.WarningText, &out.DangerText, &out.Logo,
	} {
		*style = style.Background(bg)
	}
	return out
}

// themeOrder is the cycle order of the T key. The first entry is the default.
var themeOrder = []string{"Nightfox", "Kanagawa", "Slate"}

var themes = map[string]Theme{
	"Nightfox": nightfoxTheme(),
	"Kanagawa": kanagawaTheme(),
	"Slate":    slateTheme(),
}

// GetTheme returns a theme by name, or the default theme.
func GetTheme(name string) Theme {
	if t, ok := themes[name]; ok {
		return t
	}
	return themes[themeOrder[0]]
}

// NextTheme returns the theme after current in the cycle.
func NextTheme(current string) string {
	for i, name := range themeOrder {
		if name == current {
			return themeOrder[(i+1)%len(themeOrder)]
		}
	}
	return themeOrder[0]
}

// ThemeNames returns available theme names in cycle order.
func ThemeNames() []string {
	return themeOrder
}

// statusPalette maps the player statuses to colors, in statusLabel order.
func statusPalette(idle, loading, buffering, paused, playing, ended string) map[string]string {
	return map[string]string{
		"idle":      idle,
		"loading":   loading,
		"buffering": buffering,
		"paused":    paused,
		"playing":   playing,
		"ended":     ended,
	}
}

// https://github.com/EdenEast/nightfox.nvim
func nightfoxTheme() Theme {
	return Theme{
		Name:          "Nightfox",
		Background:    "#131a24",
		Surface:       "#192330",
		SelectionBg:   "#2b3b51",
		SelectionText: "#cdcecf",
		Border:        "#39506d",
		BorderMuted:   "#212e3f",
		BorderFocus:   "#719cd6",
		Text:          "#cdcecf",
		Muted:         "#738091",
		Faint:         "#71839b",
		Accent:        "#719cd6",
		Success:       "#81b29a",
		Warning:       "#dbc074",
		Danger:        "#c94f6d",
		StatusColors:  statusPalette("#738091", "#63cdcf", "#dbc074", "#719cd6", "#81b29a", "#9d79d6"),
	}
}

// https://github.com/rebelot/kanagawa.nvim
func kanagawaTheme() Theme {
	return Theme{
		Name:          "Kanagawa",
		Background:    "#16161D",
		Surface:       "#1F1F28",
		SelectionBg:   "#2D4F67",
		SelectionText: "#DCD7BA",
		Border:        "#54546D",
		BorderMuted:   "#2A2A37",
		BorderFocus:   "#7E9CD8",
		Text:          "#DCD7BA",
		Muted:         "#C8C093",
		Faint:         "#727169",
		Accent:        "#7E9CD8",
		Success:       "#98BB6C",
		Warning:       "#E6C384",
		Danger:        "#E46876",
		StatusColors:  statusPalette("#727169", "#7FB4CA", "#E6C384", "#7E9CD8", "#98BB6C", "#957FB8"),
	}
}

// Tailwind slate and sky scales.
func slateTheme() Theme {
	return Theme{
		Name:          "Slate",
		Background:    "#020617",
		Surface:       "#0f172a",
		SelectionBg:   "#0284c7",
		SelectionText: "#f8fafc",
		Border:        "#334155",
		BorderMuted:   "#1e293b",
		BorderFocus:   "#38bdf8",
		Text:          "#f1f5f9",
		Muted:         "#94a3b8",
		Faint:         "#64748b",
		Accent:        "#38bdf8",
		Success:       "#22c55e",
		Warning:       "#f59e0b",
		Danger:        "#ef4444",
		StatusColors:  statusPalette("#64748b", "#38bdf8", "#f59e0b", "#0284c7", "#22c55e", "#06b6d4"),
	}
}
