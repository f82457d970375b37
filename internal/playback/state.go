package playback

import (
	"fmt"
	"math"
	"strings"
)

// Phase tracks where the bound media source is in its load lifecycle.
type Phase uint8

const (
	// PhaseIdle means no media handle is bound.
	PhaseIdle Phase = iota
	// PhaseLoading means a handle is bound and metadata has not arrived yet.
	PhaseLoading
	// PhaseReady means duration is known.
	PhaseReady
)

// String returns a short label for the phase.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "Idle"
	case PhaseLoading:
		return "Loading"
	case PhaseReady:
		return "Ready"
	default:
		return "Unknown"
	}
}

// MarshalText renders the phase as its lowercase label.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(strings.ToLower(p.String())), nil
}

// UnmarshalText parses a label written by MarshalText.
func (p *Phase) UnmarshalText(text []byte) error {
	for _, candidate := range []Phase{PhaseIdle, PhaseLoading, PhaseReady} {
		if strings.EqualFold(string(text), candidate.String()) {
			*p = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", text)
}

// State is the complete playback state of one player instance.
type State struct {
	ActiveIndex     int     `json:"active_index"`
	Playing         bool    `json:"playing"`
	Muted           bool    `json:"muted"`
	CurrentTime     float64 `json:"current_time"`
	Duration        float64 `json:"duration"`
	Buffering       bool    `json:"buffering"`
	ControlsVisible bool    `json:"controls_visible"`

	Phase Phase `json:"phase"`
	// Ended is set when playback reached the end of the track and cleared by
	// the next transport action that moves the position.
	Ended bool `json:"ended"`
	// Session identifies the media handle currently bound. Events carrying
	// any other session are stale.
	Session uint64 `json:"session"`
	// HideGen is bumped on every interaction. An IdleElapsed event only hides
	// controls when it carries the current generation.
	HideGen uint64 `json:"-"`
}

// ShowControls reports whether transport controls should be drawn. Controls
// are always shown while paused.
func (s State) ShowControls() bool {
	return s.ControlsVisible || !s.Playing
}

// ProgressPercent returns playback progress in [0,100]. It is 0 until the
// duration is known.
func (s State) ProgressPercent() float64 {
	return progressPercent(s.CurrentTime, s.Duration)
}

// Remaining returns the seconds left in the active track.
func (s State) Remaining() float64 {
	if s.Duration <= 0 {
		return 0
	}
	return math.Max(0, s.Duration-s.CurrentTime)
}

func progressPercent(current, duration float64) float64 {
	if !(duration > 0) || math.IsInf(duration, 0) || math.IsNaN(current) {
		return 0
	}
	return clamp(current/duration*100, 0, 100)
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func sanitizeSeconds(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
