package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/five82/showreel/internal/playback"
	"github.com/five82/showreel/internal/playlist"
)

// Snapshot represents the latest player state available to readers.
type Snapshot struct {
	Playback            playback.State
	Track               playlist.Track
	HasState            bool
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int // Number of consecutive failed commands
}

// Degraded returns true when the media backend has failed several commands
// in a row.
func (s Snapshot) Degraded() bool {
	return s.ConsecutiveFailures >= 2
}

// Store coordinates concurrent access to the snapshot. The engine is the
// only writer.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// Update records the state after a command or event. A non-nil err is kept
// for visibility and counts as a failure; a nil err from a command resets
// the failure count.
func (s *Store) Update(st playback.State, track playlist.Track, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.Playback = st
	s.snapshot.Track = track
	s.snapshot.HasState = true
	s.snapshot.LastUpdated = time.Now()

	if err != nil {
		s.snapshot.LastError = err
		s.snapshot.ConsecutiveFailures++
		return
	}
	s.snapshot.LastError = nil
	s.snapshot.ConsecutiveFailures = 0
}

// Observe records a state change caused by a media event. Errors from
// earlier commands stay visible.
func (s *Store) Observe(st playback.State, track playlist.Track) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.Playback = st
	s.snapshot.Track = track
	s.snapshot.HasState = true
	s.snapshot.LastUpdated = time.Now()
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}
