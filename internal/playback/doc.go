// Package playback implements the playlist video controller: the state of one
// player, the transport operations that change it, and the reactions to media
// events.
//
// # Model
//
// State holds everything the UI needs to draw the player: active track,
// play/mute flags, position, duration, buffering and control visibility.
// It changes in exactly three ways:
//
//   - transport operations on Controller (SelectTrack, TogglePlay, ToggleMute,
//     Seek, SeekBy, HandleKey, Touch)
//   - media events from the bound Handle (MetadataLoaded, TimeUpdate, Ended,
//     BufferingStarted, BufferingStopped, PlayRejected)
//   - the controls idle timer (IdleElapsed)
//
// Event handling is the pure function Apply, so every reaction can be tested
// without a backend.
//
// # Handles and sessions
//
// A Backend opens one Handle per active track. Each handle is stamped with a
// session id; SelectTrack closes the old handle before opening the next, and
// Apply drops any event whose session is not the bound one. A late event from
// a replaced source therefore never touches the new track's state.
//
// # Idle timer
//
// The controller does not own a clock. Every interaction bumps State.HideGen;
// whoever drives the controller arms a timer for that generation and delivers
// IdleElapsed{Gen} when it fires. Stale generations are ignored, so re-arming
// is just "start a new timer".
//
// # Failure semantics
//
// A rejected play request reverts to paused without surfacing an error to
// the viewer. Seeks are clamped. Unknown duration renders as 0:00.
package playback
