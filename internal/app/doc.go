// Package app is the composition root of showreel.
//
// # Overview
//
// Run loads configuration and preferences, builds the playlist and the media
// backend, starts the playback engine and then hands the terminal to the TUI.
// With Options.Headless the TUI is skipped and the player is driven only
// through the HTTP API while a reporter logs its status.
//
// # Startup
//
//  1. Load ~/.config/showreel/config.toml and apply flag overrides
//  2. Load prefs (theme, mute) from ~/.config/showreel/prefs.toml
//  3. Load the playlist manifest, or the built-in gallery
//  4. Route the standard logger to the log file with tea.LogToFile
//  5. Create the sim or mpv backend and the playback controller
//  6. Start the engine goroutine and, if api_bind is set, the API server
//  7. Run the TUI (or wait for ctx in headless mode)
//
//	┌──────────────┐
//	│   Run()      │
//	└──────┬───────┘
//	       ├─────> config.Load()          settings + overrides
//	       ├─────> playlist.Load()        manifest or Default()
//	       ├─────> newBackend()           sim.New / mpv.New
//	       ├─────> engine.New().Run()     owns the controller
//	       ├─────> api.NewServer().Start() optional
//	       └─────> ui.Run()               blocks until quit
//
// # Shutdown
//
// Shutdown runs in reverse: the API server stops, the engine context is
// cancelled and Run waits for the engine to release its media handle, then the
// backend closes and the log file is flushed.
//
// # Errors
//
// Configuration, playlist, log file and API bind failures are fatal and
// returned from Run. Failures while playing are logged by the engine and shown
// in the TUI; the reporter backs off while they keep repeating.
package app
