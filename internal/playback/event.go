package playback

// Event is something the media backend or the idle timer reports to the
// controller. Media events are stamped with the session of the handle that
// produced them.
type Event interface {
	session() (uint64, bool)
}

// MetadataLoaded reports that the source's duration is known.
type MetadataLoaded struct {
	Session  uint64
	Duration float64
	Position float64
}

// TimeUpdate reports the current playback position.
type TimeUpdate struct {
	Session  uint64
	Position float64
}

// Ended reports that playback reached the end of the source.
type Ended struct {
	Session uint64
}

// BufferingStarted reports that playback stalled waiting for data.
type BufferingStarted struct {
	Session uint64
}

// BufferingStopped reports that playback resumed after a stall, or started.
type BufferingStopped struct {
	Session uint64
}

// PlayRejected reports that an asynchronous play request failed.
type PlayRejected struct {
	Session uint64
	Err     error
}

// IdleElapsed is delivered when the controls idle timer fires.
type IdleElapsed struct {
	Gen uint64
}

func (e MetadataLoaded) session() (uint64, bool)   { return e.Session, true }
func (e TimeUpdate) session() (uint64, bool)       { return e.Session, true }
func (e Ended) session() (uint64, bool)            { return e.Session, true }
func (e BufferingStarted) session() (uint64, bool) { return e.Session, true }
func (e BufferingStopped) session() (uint64, bool) { return e.Session, true }
func (e PlayRejected) session() (uint64, bool)     { return e.Session, true }
func (e IdleElapsed) session() (uint64, bool)      { return 0, false }

// Apply returns the state that results from delivering ev to s. It has no
// side effects.
func Apply(s State, ev Event) State {
	if ev == nil {
		return s
	}
	if id, ok := ev.session(); ok && id != s.Session {
		return s
	}

	switch e := ev.(type) {
	case MetadataLoaded:
		s.Duration = sanitizeSeconds(e.Duration)
		s.CurrentTime = s.clampPosition(e.Position)
		s.Phase = PhaseReady
	case TimeUpdate:
		s.CurrentTime = s.clampPosition(e.Position)
	case Ended:
		s.Playing = false
		s.Ended = true
		s.ControlsVisible = true
		if s.Duration > 0 {
			s.CurrentTime = s.Duration
		}
	case BufferingStarted:
		s.Buffering = true
	case BufferingStopped:
		s.Buffering = false
	case PlayRejected:
		s.Playing = false
	case IdleElapsed:
		if s.Playing && e.Gen == s.HideGen {
			s.ControlsVisible = false
		}
	}
	return s
}

func (s State) clampPosition(pos float64) float64 {
	pos = sanitizeSeconds(pos)
	if s.Duration > 0 && pos > s.Duration {
		return s.Duration
	}
	return pos
}
