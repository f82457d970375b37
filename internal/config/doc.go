// Package config loads showreel's TOML configuration.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/showreel/config.toml
//  3. If the config file doesn't exist, fall back to Default()
//  4. If the file exists but fields are missing/empty, use defaults
//
// # TOML Format
//
//	backend = "mpv"                  # sim (default) or mpv
//	mpv_path = "mpv"                 # binary name or path
//	playlist = "~/reels/home.yaml"   # manifest; built-in reel when unset
//	controls_hide_after = "3s"
//	seek_step = "5s"
//	api_bind = "127.0.0.1:7488"      # empty disables the HTTP API
//	log_path = "~/.local/state/showreel/showreel.log"
//
// All fields are optional. Tilde expansion is performed for paths. Durations
// use time.ParseDuration syntax and must be positive.
//
// # Error Handling
//
// Load returns errors for unreadable files, TOML syntax errors, unknown
// backends and invalid durations. A missing file is not an error.
//
// Command-line flags are applied by the caller after Load, so the file only
// provides defaults for them.
package config
