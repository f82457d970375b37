// Package state holds the latest published player snapshot.
//
// The engine goroutine is the only writer. It calls Update after every command
// and Observe after every media or timer event. Readers (the TUI and the HTTP
// API) call Snapshot from their own goroutines.
//
//	Engine goroutine:              Readers:
//	┌────────────────┐            ┌────────────────┐
//	│ command/event  │            │ api handlers   │
//	│      ↓         │            │ ui, reporter   │
//	│ store.Update() │───────────→│ store.Snapshot()│
//	└────────────────┘  (mutex)   └────────────────┘
//
// Update with a nil error clears LastError and the failure count. Update with
// an error keeps the new playback state, records the error and increments
// ConsecutiveFailures; two or more in a row mark the snapshot Degraded. Observe
// replaces the state without touching error bookkeeping.
//
// The zero Store is ready to use. Snapshot returns a zero Snapshot with
// HasState false until the first update.
package state
