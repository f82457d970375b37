package ui

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestStatusStyle_FallsBackToMuted(t *testing.T) {
	th := GetTheme("Slate")
	styles := th.Styles()

	got := styles.StatusStyle("playing").GetBackground()
	if got != lipglossColor(th.StatusColors["playing"]) {
		t.Fatalf("StatusStyle(playing) background = %v, want %v", got, th.StatusColors["playing"])
	}
	got = styles.StatusStyle("unknown").GetBackground()
	if got != lipglossColor(th.Muted) {
		t.Fatalf("StatusStyle(unknown) background = %v, want %v", got, th.Muted)
	}

	// WithBackground keeps the fallback.
	got = styles.WithBackground(th.Surface).StatusStyle("unknown").GetBackground()
	if got != lipglossColor(th.Muted) {
		t.Fatalf("WithBackground StatusStyle(unknown) background = %v, want %v", got, th.Muted)
	}
}

func TestThemesCoverEveryStatus(t *testing.T) {
	statuses := []string{"idle", "loading", "buffering", "paused", "playing", "ended"}
	for _, name := range ThemeNames() {
		th := GetTheme(name)
		for _, status := range statuses {
			if th.StatusColors[status] == "" {
				t.Fatalf("theme %s has no color for %q", name, status)
			}
		}
	}
}

func TestThemeNames(t *testing.T) {
	names := ThemeNames()
	if len(names) != 3 {
		t.Fatalf("ThemeNames() returned %d names, want 3", len(names))
	}
	if names[0] != "Nightfox" || names[1] != "Kanagawa" || names[2] != "Slate" {
		t.Fatalf("ThemeNames() = %v, want [Nightfox Kanagawa Slate]", names)
	}
}

func TestNextTheme(t *testing.T) {
	tests := []struct{ current, want string }{
		{"Nightfox", "Kanagawa"},
		{"Kanagawa", "Slate"},
		{"Slate", "Nightfox"},
		{"Unknown", "Nightfox"},
	}
	for _, tt := range tests {
		if got := NextTheme(tt.current); got != tt.want {
			t.Fatalf("NextTheme(%s) = %q, want %q", tt.current, got, tt.want)
		}
	}
}

func TestGetTheme(t *testing.T) {
	if got := GetTheme("Kanagawa").Name; got != "Kanagawa" {
		t.Fatalf("GetTheme(Kanagawa).Name = %q, want Kanagawa", got)
	}
	if got := GetTheme("Dracula").Name; got != "Nightfox" {
		t.Fatalf("GetTheme(Dracula).Name = %q, want Nightfox (fallback)", got)
	}
}

func lipglossColor(hex string) lipgloss.TerminalColor {
	return lipgloss.Color(hex)
}
