// Package ui provides the terminal player for showreel.
//
// # Architecture Overview
//
// The UI is a Bubble Tea program. It never touches playback state directly:
// key presses and mouse clicks become engine commands, and the engine pushes
// snapshots back through Subscribe. The model only keeps the latest snapshot
// for rendering.
//
//	keys / mouse ─→ Model.send(cmd) ─→ engine.Do
//	                                       │
//	Model.View() ←─ snapshotMsg ←─ Subscribe()
//
// # Screen Layout
//
//	┌ header ─────────────────────────────────────────┐  logo, playlist, status
//	│ video surface                                   │  title, play glyph, spinner
//	│                                                 │
//	└─────────────────────────────────────────────────┘
//	 ▶  vol   0:12 / 1:00  ███████░░░░░░░░░░░░░░░░░░     transport (hidden when idle)
//	╭──────╮╭──────╮╭──────╮
//	│1 ... ││2 ... ││3 ... │                              thumbnail strip
//	╰──────╯╰──────╯╰──────╯
//	 space/k play • m mute • ← back 5s ...                footer
//
// computeLayout derives every region from the terminal size. Rendering and
// mouse hit-testing both use it, so a click on the progress bar seeks to the
// fraction under the pointer and a click on a thumbnail selects that track.
// The transport row stays reserved while hidden so nothing moves when the
// controls fade.
//
// # Overlays
//
//   - ? shows all bindings (any key closes)
//   - L tails the log file through logtail, refreshing every two seconds
//
// # Themes
//
// T cycles Nightfox, Kanagawa and Slate. The choice and the mute state are
// saved through prefs.
package ui
