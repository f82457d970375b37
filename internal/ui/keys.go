package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the player.
type keyMap struct {
	// Transport
	PlayPause   key.Binding
	Mute        key.Binding
	SeekBack    key.Binding
	SeekForward key.Binding

	// Playlist
	NextTrack   key.Binding
	PrevTrack   key.Binding
	SelectTrack key.Binding

	// Overlays
	Help       key.Binding
	Logs       key.Binding
	CycleTheme key.Binding
	Escape     key.Binding
	Quit       key.Binding

	// Log overlay
	ToggleFollow key.Binding
	Top          key.Binding
	Bottom       key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		PlayPause: key.NewBinding(
			key.WithKeys(" ", "k"),
			key.WithHelp("space/k", "Play/pause"),
		),
		Mute: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "Mute"),
		),
		SeekBack: key.NewBinding(
			key.WithKeys("left"),
			key.WithHelp("←", "Back 5s"),
		),
		SeekForward: key.NewBinding(
			key.WithKeys("right"),
			key.WithHelp("→", "Forward 5s"),
		),

		NextTrack: key.NewBinding(
			key.WithKeys("n", "tab"),
			key.WithHelp("n/tab", "Next video"),
		),
		PrevTrack: key.NewBinding(
			key.WithKeys("p", "shift+tab"),
			key.WithHelp("p/shift+tab", "Previous video"),
		),
		SelectTrack: key.NewBinding(
			key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"),
			key.WithHelp("1-9", "Select video"),
		),

		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "Toggle help"),
		),
		Logs: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "Toggle log"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Close overlay"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("q", "Quit"),
		),

		ToggleFollow: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "Toggle follow"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "Go to top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "Go to bottom"),
		),
	}
}

// ShortHelp returns key bindings for the footer.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.PlayPause, k.Mute, k.SeekBack, k.SeekForward, k.SelectTrack, k.Help, k.Quit}
}

// FullHelp returns key bindings for the help overlay, one column per group.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.PlayPause, k.Mute, k.SeekBack, k.SeekForward},
		{k.SelectTrack, k.NextTrack, k.PrevTrack},
		{k.Logs, k.ToggleFollow, k.Top, k.Bottom},
		{k.CycleTheme, k.Help, k.Escape, k.Quit},
	}
}
