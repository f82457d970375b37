// Package engine runs a playback.Controller on a single goroutine.
//
// The controller is not safe for concurrent use, but the terminal UI, the
// HTTP API and the media backend all want to reach it. The engine is the one
// owner:
//
//	UI / API                 Engine goroutine              Backend
//	┌──────────┐  Do(cmd)   ┌──────────────────┐  events  ┌──────────┐
//	│ commands │──────────→ │ controller       │ ←─────── │ handle   │
//	└──────────┘            │ idle timer       │          └──────────┘
//	     ↑                  │ store.Update()   │
//	     └── Subscribe() ── └──────────────────┘
//
// Each loop iteration looks at the controller state and arms the idle timer
// when the player is playing with visible controls. The timer is keyed by
// State.HideGen, so an interaction that happened after it was armed re-arms it
// instead of hiding the controls.
//
// When the active track changes the engine switches to the new handle's event
// channel. Events already queued on the old channel are never read, and
// playback.Apply would drop them anyway because their session is stale.
package engine
