package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/showreel/internal/logtail"
)

// logState holds the log overlay state.
type logState struct {
	entries []logtail.Entry
	follow  bool
	err     error
	readAt  time.Time
}

type logTickMsg time.Time

type logBatchMsg struct {
	entries []logtail.Entry
	err     error
}

func logTickCmd() tea.Cmd {
	return tea.Tick(logRefreshInterval, func(t time.Time) tea.Msg {
		return logTickMsg(t)
	})
}

// readLogs rereads the tail of the log file off the UI goroutine.
func (m Model) readLogs() tea.Cmd {
	path := m.logPath
	if path == "" {
		return nil
	}
	return func() tea.Msg {
		entries, err := logtail.ReadEntries(path, logBufferLimit)
		return logBatchMsg{entries: entries, err: err}
	}
}

func (m *Model) handleLogBatch(msg logBatchMsg) {
	m.logState.err = msg.err
	if msg.err == nil {
		m.logState.entries = msg.entries
	}
	m.logState.readAt = time.Now()
	m.updateLogViewport()
}

// updateLogViewport sizes the viewport and refreshes its content.
func (m *Model) updateLogViewport() {
	// Box takes the screen minus the status line; the border uses two rows
	// and two columns.
	width := max(m.width-2, 1)
	height := max(m.height-3, 1)
	if m.logViewport.Width == 0 {
		m.logViewport = viewport.New(width, height)
	}
	m.logViewport.Width = width
	m.logViewport.Height = height
	m.logViewport.SetContent(m.renderLogContent())
	if m.logState.follow {
		m.logViewport.GotoBottom()
	}
}

func (m Model) renderLogContent() string {
	styles := m.theme.Styles()
	if m.logState.err != nil {
		return styles.DangerText.Render("Could not read log: " + m.logState.err.Error())
	}
	if len(m.logState.entries) == 0 {
		return styles.FaintText.Render("No log entries yet.")
	}

	lines := make([]string, 0, len(m.logState.entries))
	for _, e := range m.logState.entries {
		lines = append(lines, m.renderLogEntry(e, styles))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderLogEntry(e logtail.Entry, styles Styles) string {
	var b strings.Builder
	if e.HasTime {
		b.WriteString(styles.FaintText.Render(e.Time.Format("15:04:05")))
		b.WriteString(" ")
	}
	b.WriteString(levelStyle(e.Level, styles).Bold(true).Render(fmt.Sprintf("%-5s", e.Level)))
	b.WriteString(" ")
	b.WriteString(styles.Text.Render(e.Message))
	return b.String()
}

func levelStyle(level logtail.Level, styles Styles) lipgloss.Style {
	switch level {
	case logtail.LevelWarn:
		return styles.WarningText
	case logtail.LevelError:
		return styles.DangerText
	default:
		return styles.SuccessText
	}
}

// renderLogs renders the log overlay.
func (m Model) renderLogs() string {
	styles := m.theme.Styles()

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.BorderFocus)).
		Render(m.logViewport.View())

	follow := "follow off"
	if m.logState.follow {
		follow = "follow on"
	}
	status := []string{
		styles.AccentText.Render("Log"),
		styles.MutedText.Render(truncateMiddle(m.logPath, max(m.width/2, 10))),
		styles.WarningText.Render(follow),
	}
	if !m.logState.readAt.IsZero() {
		status = append(status, styles.FaintText.Render("read "+m.logState.readAt.Format("15:04:05")))
	}
	status = append(status, styles.FaintText.Render("esc/L close  f follow  g/G top/bottom"))
	return box + "\n" + strings.Join(status, "  ")
}

// handleLogsKey processes keyboard input while the log overlay is open.
func (m Model) handleLogsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape, m.keys.Logs):
		m.showLogs = false
		return m, nil

	case key.Matches(msg, m.keys.Quit):
		m.close()
		return m, tea.Quit

	case key.Matches(msg, m.keys.ToggleFollow):
		m.logState.follow = !m.logState.follow
		if m.logState.follow {
			m.logViewport.GotoBottom()
		}
		return m, nil

	case key.Matches(msg, m.keys.Top):
		m.logState.follow = false
		m.logViewport.GotoTop()
		return m, nil

	case key.Matches(msg, m.keys.Bottom):
		m.logViewport.GotoBottom()
		return m, nil
	}

	var cmd tea.Cmd
	m.logViewport, cmd = m.logViewport.Update(msg)
	if !m.logViewport.AtBottom() {
		m.logState.follow = false
	}
	return m, cmd
}
