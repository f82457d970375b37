package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/showreel/internal/playback"
	"github.com/five82/showreel/internal/state"
)

// statusLabel names the player status for the header badge.
func statusLabel(snap state.Snapshot) string {
	st := snap.Playback
	switch {
	case !snap.HasState || st.Phase == playback.PhaseIdle:
		return "idle"
	case st.Phase == playback.PhaseLoading:
		return "loading"
	case st.Ended:
		return "ended"
	case st.Buffering:
		return "buffering"
	case st.Playing:
		return "playing"
	default:
		return "paused"
	}
}

// renderPlayer renders the full player screen.
func (m Model) renderPlayer() string {
	l := m.layout()
	rows := []string{
		m.renderHeader(),
		m.renderVideo(l),
		m.renderTransport(l),
		m.renderStrip(l),
		m.renderFooter(),
	}
	return strings.Join(rows, "\n")
}

// renderHeader renders the title bar.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	sep := styles.Text.Render("  ")

	parts := []string{styles.Logo.Render("showreel")}
	if title := strings.TrimSpace(m.playlist.Title); title != "" {
		parts = append(parts, styles.Text.Render(title))
	}
	if n := m.playlist.Len(); n > 0 {
		parts = append(parts, styles.MutedText.Render(fmt.Sprintf("%d/%d", m.snapshot.Playback.ActiveIndex+1, n)))
	}
	parts = append(parts, styles.StatusStyle(statusLabel(m.snapshot)).Render(strings.ToUpper(statusLabel(m.snapshot))))
	if m.snapshot.Playback.Muted {
		parts = append(parts, styles.WarningText.Render("MUTED"))
	}
	if m.snapshot.LastError != nil {
		parts = append(parts, styles.DangerText.Render(truncate(m.snapshot.LastError.Error(), max(m.width/2, 10))))
	}

	return lipgloss.NewStyle().
		Background(lipgloss.Color(m.theme.Surface)).
		Foreground(lipgloss.Color(m.theme.Text)).
		Width(m.width).
		MaxHeight(headerHeight).
		Render(strings.Join(parts, sep))
}

// renderVideo renders the video surface: what is playing and, when it is not
// playing, why.
func (m Model) renderVideo(l layout) string {
	styles := m.theme.Styles()
	st := m.snapshot.Playback
	track, _ := m.playlist.Track(st.ActiveIndex)

	innerWidth := max(m.width-2, 1)
	innerHeight := max(l.videoHeight-2, 1)

	var lines []string
	switch statusLabel(m.snapshot) {
	case "idle", "loading":
		lines = append(lines, m.spin.View()+" "+styles.MutedText.Render("Loading"))
	case "buffering":
		lines = append(lines, m.spin.View()+" "+styles.WarningText.Render("Buffering"))
	case "ended":
		lines = append(lines, styles.AccentText.Bold(true).Render("↻  Replay"))
	case "paused":
		lines = append(lines, styles.AccentText.Bold(true).Render("▶"))
	default:
		lines = append(lines, "")
	}
	lines = append(lines,
		"",
		styles.Text.Bold(true).Render(truncate(track.Title, innerWidth)),
		styles.FaintText.Render(truncateMiddle(track.Source, innerWidth)),
	)
	if len(lines) > innerHeight {
		// Keep the status and the title on short terminals.
		lines = []string{lines[0], lines[2]}[:min(innerHeight, 2)]
	}

	content := lipgloss.Place(innerWidth, innerHeight, lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center, lines...))

	border := m.theme.Border
	if st.ShowControls() {
		border = m.theme.BorderFocus
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(border)).
		Width(innerWidth).
		Height(innerHeight).
		Render(content)
}

// renderTransport renders the control bar. It keeps its row when hidden so
// the layout does not shift under the pointer.
func (m Model) renderTransport(l layout) string {
	st := m.snapshot.Playback
	if !m.snapshot.HasState || !st.ShowControls() {
		return strings.Repeat(" ", max(m.width, 0))
	}
	styles := m.theme.Styles()

	glyph := "▶"
	if st.Playing {
		glyph = "‖"
	}
	volume := styles.MutedText.Render("vol")
	if st.Muted {
		volume = styles.WarningText.Render("muted")
	}
	elapsed := playback.FormatTime(st.CurrentTime) + " / " + playback.FormatTime(st.Duration)

	var b strings.Builder
	b.WriteString(" ")
	b.WriteString(lipgloss.NewStyle().Width(3).Render(styles.AccentText.Bold(true).Render(glyph)))
	b.WriteString(lipgloss.NewStyle().Width(6).Render(volume))
	b.WriteString(lipgloss.NewStyle().Width(timeFieldWidth + 2).Render(styles.Text.Render(truncate(elapsed, timeFieldWidth))))
	if l.barWidth > 0 {
		b.WriteString(m.bar.ViewAs(st.ProgressPercent() / 100))
	}
	return b.String()
}

// renderStrip renders the thumbnail strip, one cell per visible track.
func (m Model) renderStrip(l layout) string {
	if l.cells == 0 {
		return strings.Repeat("\n", stripHeight-1)
	}
	styles := m.theme.Styles()
	active := m.snapshot.Playback.ActiveIndex
	offset := l.stripOffset(active, m.playlist.Len())
	inner := max(l.cellWidth-2, 1)

	cells := make([]string, 0, l.cells)
	for i := offset; i < offset+l.cells && i < m.playlist.Len(); i++ {
		track, _ := m.playlist.Track(i)
		label := truncate(fmt.Sprintf("%d %s", i+1, track.Title), inner)

		cell := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(m.theme.Border)).
			Width(inner).
			MaxHeight(stripHeight)
		text := styles.MutedText.Render(label)
		if i == active {
			cell = cell.BorderForeground(lipgloss.Color(m.theme.BorderFocus))
			text = styles.Selected.Width(inner).Render(label)
		}
		cells = append(cells, cell.Render(text))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cells...)
}

// renderFooter shows the last command error, or the key hints.
func (m Model) renderFooter() string {
	if m.notice != "" {
		return m.theme.Styles().DangerText.Render(truncate(m.notice, max(m.width, 1)))
	}
	return m.help.View(m.keys)
}
