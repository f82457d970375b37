package ui

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/showreel/internal/engine"
	"github.com/five82/showreel/internal/playback"
	"github.com/five82/showreel/internal/playlist"
	"github.com/five82/showreel/internal/prefs"
	"github.com/five82/showreel/internal/state"
)

// Player is the part of the engine the UI drives.
type Player interface {
	Do(ctx context.Context, cmd engine.Command) (playback.State, error)
	Subscribe() (<-chan state.Snapshot, func())
	Snapshot() state.Snapshot
	Playlist() playlist.Playlist
}

// Options configures the UI.
type Options struct {
	Context   context.Context
	Player    Player
	ThemeName string
	PrefsPath string
	LogPath   string
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	player    Player
	playlist  playlist.Playlist
	prefsPath string
	logPath   string

	// Subscription to engine snapshots
	updates     <-chan state.Snapshot
	unsubscribe func()

	// UI state
	theme  Theme
	keys   keyMap
	help   help.Model
	spin   spinner.Model
	bar    progress.Model
	width  int
	height int
	ready  bool

	// Data state
	snapshot  state.Snapshot
	notice    string
	lastTouch time.Time

	// Overlays
	showHelp    bool
	showLogs    bool
	logViewport viewport.Model
	logState    logState
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	themeName := opts.ThemeName
	if themeName == "" {
		themeName = themeOrder[0]
	}

	m := Model{
		ctx:       ctx,
		player:    opts.Player,
		prefsPath: opts.PrefsPath,
		logPath:   opts.LogPath,
		theme:     GetTheme(themeName),
		keys:      DefaultKeyMap(),
		help:      help.New(),
		spin:      spinner.New(spinner.WithSpinner(spinner.Dot)),
		logState:  logState{follow: true},
	}
	if m.player != nil {
		m.playlist = m.player.Playlist()
		m.snapshot = m.player.Snapshot()
		m.updates, m.unsubscribe = m.player.Subscribe()
	}
	m.applyTheme()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spin.Tick,
		waitForSnapshot(m.updates),
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resize()
		return m, nil

	case snapshotMsg:
		m.snapshot = state.Snapshot(msg)
		return m, waitForSnapshot(m.updates)

	case commandResultMsg:
		return m.handleCommandResult(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case logTickMsg:
		if !m.showLogs {
			return m, nil
		}
		return m, tea.Batch(m.readLogs(), logTickCmd())

	case logBatchMsg:
		m.handleLogBatch(msg)
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	if m.showLogs {
		return m.renderLogs()
	}
	return m.renderPlayer()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}
	if m.showLogs {
		return m.handleLogsKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.close()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.Logs):
		m.showLogs = true
		m.logState.follow = true
		return m, tea.Batch(m.readLogs(), logTickCmd())

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.applyTheme()
		m.savePrefs()
		return m, nil

	case key.Matches(msg, m.keys.PlayPause, m.keys.Mute, m.keys.SeekBack, m.keys.SeekForward):
		return m, m.send(engine.Key{Name: msg.String()})

	case key.Matches(msg, m.keys.NextTrack):
		return m, m.send(engine.Next{})

	case key.Matches(msg, m.keys.PrevTrack):
		return m, m.send(engine.Previous{})

	case key.Matches(msg, m.keys.SelectTrack):
		index := int(msg.Runes[0] - '1')
		if !m.playlist.InBounds(index) {
			return m, nil
		}
		return m, m.send(engine.SelectTrack{Index: index})
	}

	// Unbound keys still count as activity.
	return m, m.send(engine.Touch{})
}

// handleMouse maps clicks onto the region under the pointer. Motion reveals
// the controls.
func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.showHelp || m.showLogs {
		return m, nil
	}

	switch {
	case msg.Action == tea.MouseActionMotion:
		if time.Since(m.lastTouch) < touchInterval {
			return m, nil
		}
		m.lastTouch = time.Now()
		return m, m.send(engine.Touch{})

	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		l := m.layout()
		h := l.hitTest(msg.X, msg.Y, l.stripOffset(m.snapshot.Playback.ActiveIndex, m.playlist.Len()))
		switch h.kind {
		case hitVideo:
			return m, m.send(engine.TogglePlay{})
		case hitProgress:
			if !m.snapshot.Playback.ShowControls() {
				return m, m.send(engine.Touch{})
			}
			return m, m.send(engine.Seek{Fraction: h.fraction})
		case hitThumbnail:
			if !m.playlist.InBounds(h.index) {
				return m, nil
			}
			return m, m.send(engine.SelectTrack{Index: h.index})
		}
		return m, m.send(engine.Touch{})
	}
	return m, nil
}

func (m Model) handleCommandResult(msg commandResultMsg) (tea.Model, tea.Cmd) {
	m.notice = ""
	if msg.err != nil {
		if errors.Is(msg.err, engine.ErrEngineStopped) {
			return m, tea.Quit
		}
		m.notice = msg.err.Error()
	}
	if _, ok := msg.cmd.(engine.ToggleMute); ok || isMuteKey(msg.cmd) {
		m.snapshot.Playback.Muted = msg.state.Muted
		m.savePrefs()
	}
	return m, nil
}

func isMuteKey(cmd engine.Command) bool {
	k, ok := cmd.(engine.Key)
	return ok && k.Name == "m"
}

func (m Model) layout() layout {
	return computeLayout(m.width, m.height, m.playlist.Len())
}

func (m *Model) resize() {
	l := m.layout()
	m.bar.Width = max(l.barWidth, 1)
	m.help.Width = m.width
	m.updateLogViewport()
}

// applyTheme rebuilds the theme-dependent components.
func (m *Model) applyTheme() {
	width := m.bar.Width
	m.bar = progress.New(
		progress.WithSolidFill(m.theme.Accent),
		progress.WithoutPercentage(),
	)
	m.bar.EmptyColor = m.theme.BorderMuted
	if width > 0 {
		m.bar.Width = width
	}

	styles := m.theme.Styles()
	m.spin.Style = styles.WarningText
	m.help.Styles.ShortKey = styles.AccentText
	m.help.Styles.ShortDesc = styles.MutedText
	m.help.Styles.ShortSeparator = styles.FaintText
}

func (m Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	p := prefs.Prefs{Theme: m.theme.Name, Muted: m.snapshot.Playback.Muted}
	if err := prefs.Save(m.prefsPath, p); err != nil {
		log.Printf("save prefs: %v", err)
	}
}

func (m *Model) close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}
}

// send runs cmd on the engine without blocking the UI.
func (m Model) send(cmd engine.Command) tea.Cmd {
	if m.player == nil {
		return nil
	}
	player, ctx := m.player, m.ctx
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, commandTimeout)
		defer cancel()
		st, err := player.Do(ctx, cmd)
		return commandResultMsg{cmd: cmd, state: st, err: err}
	}
}

// Messages

type snapshotMsg state.Snapshot

type commandResultMsg struct {
	cmd   engine.Command
	state playback.State
	err   error
}

// Commands

func waitForSnapshot(updates <-chan state.Snapshot) tea.Cmd {
	if updates == nil {
		return nil
	}
	return func() tea.Msg {
		snap, ok := <-updates
		if !ok {
			return nil
		}
		return snapshotMsg(snap)
	}
}

// Run starts the Bubble Tea program and blocks until the user quits or ctx
// is cancelled.
func Run(opts Options) error {
	m := New(opts)
	defer m.close()

	programOpts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithMouseAllMotion()}
	if opts.Context != nil {
		programOpts = append(programOpts, tea.WithContext(opts.Context))
	}
	p := tea.NewProgram(m, programOpts...)
	_, err := p.Run()
	if err != nil && opts.Context != nil && opts.Context.Err() != nil {
		// Shut down from outside, not a UI failure.
		return nil
	}
	return err
}
