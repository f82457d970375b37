package playback

import (
	"errors"
	"math"
	"testing"
)

func TestApply_MediaEvents(t *testing.T) {
	base := State{Session: 7, Phase: PhaseLoading, Playing: true}

	s := Apply(base, MetadataLoaded{Session: 7, Duration: 90, Position: 3})
	if s.Duration != 90 || s.CurrentTime != 3 || s.Phase != PhaseReady {
		t.Fatalf("after metadata = %+v", s)
	}

	s = Apply(s, TimeUpdate{Session: 7, Position: 42.5})
	if s.CurrentTime != 42.5 {
		t.Fatalf("CurrentTime = %v, want 42.5", s.CurrentTime)
	}

	s = Apply(s, TimeUpdate{Session: 7, Position: 500})
	if s.CurrentTime != 90 {
		t.Fatalf("CurrentTime = %v, want clamp to duration 90", s.CurrentTime)
	}

	s = Apply(s, TimeUpdate{Session: 7, Position: math.NaN()})
	if s.CurrentTime != 0 {
		t.Fatalf("CurrentTime = %v, want 0 for NaN", s.CurrentTime)
	}
}

func TestApply_MetadataWithUnknownDuration(t *testing.T) {
	s := Apply(State{Session: 1}, MetadataLoaded{Session: 1, Duration: math.NaN(), Position: 4})
	if s.Duration != 0 {
		t.Fatalf("Duration = %v, want 0", s.Duration)
	}
	if s.CurrentTime != 4 {
		t.Fatalf("CurrentTime = %v, want 4 (no clamp while duration unknown)", s.CurrentTime)
	}
	if got := FormatTime(s.Duration); got != "0:00" {
		t.Fatalf("FormatTime(duration) = %q, want 0:00", got)
	}
}

func TestApply_BufferingSequence(t *testing.T) {
	s := State{Session: 2, Playing: true}
	s = Apply(s, BufferingStarted{Session: 2})
	if !s.Buffering {
		t.Fatalf("Buffering = false after waiting")
	}
	if !s.Playing {
		t.Fatalf("Playing cleared by buffering; they are independent")
	}
	s = Apply(s, BufferingStopped{Session: 2})
	if s.Buffering {
		t.Fatalf("Buffering = true after playing")
	}
}

func TestApply_Ended(t *testing.T) {
	s := State{Session: 3, Playing: true, Duration: 20, CurrentTime: 19.8}
	s = Apply(s, Ended{Session: 3})
	if s.Playing || !s.Ended || !s.ControlsVisible {
		t.Fatalf("after ended = %+v", s)
	}
	if s.CurrentTime != 20 {
		t.Fatalf("CurrentTime = %v, want 20", s.CurrentTime)
	}
}

func TestApply_PlayRejected(t *testing.T) {
	s := Apply(State{Session: 4, Playing: true}, PlayRejected{Session: 4, Err: errors.New("nope")})
	if s.Playing {
		t.Fatalf("Playing = true after rejection")
	}
}

func TestApply_StaleSessionIgnored(t *testing.T) {
	base := State{Session: 9, Playing: true, Duration: 30, CurrentTime: 10}
	events := []Event{
		MetadataLoaded{Session: 8, Duration: 99},
		TimeUpdate{Session: 8, Position: 1},
		Ended{Session: 8},
		BufferingStarted{Session: 8},
		PlayRejected{Session: 8},
	}
	for _, ev := range events {
		if got := Apply(base, ev); got != base {
			t.Fatalf("Apply(%T) with stale session changed state: %+v", ev, got)
		}
	}
	if got := Apply(base, nil); got != base {
		t.Fatalf("Apply(nil) changed state")
	}
}

func TestApply_IdleElapsed(t *testing.T) {
	playing := State{Playing: true, ControlsVisible: true, HideGen: 5}

	if got := Apply(playing, IdleElapsed{Gen: 5}); got.ControlsVisible {
		t.Fatalf("controls visible after idle timeout while playing")
	}
	if got := Apply(playing, IdleElapsed{Gen: 4}); !got.ControlsVisible {
		t.Fatalf("stale idle generation hid controls")
	}

	paused := playing
	paused.Playing = false
	if got := Apply(paused, IdleElapsed{Gen: 5}); !got.ControlsVisible {
		t.Fatalf("idle timeout hid controls while paused")
	}
}

func TestIdleScenario_InteractionReshows(t *testing.T) {
	c, _ := mountedController()
	ready(c, 60)
	_ = c.TogglePlay()

	c.Apply(IdleElapsed{Gen: c.State().HideGen})
	if c.State().ControlsVisible {
		t.Fatalf("controls still visible after idle delay")
	}
	if c.State().ShowControls() {
		t.Fatalf("ShowControls = true while playing and hidden")
	}

	gen := c.State().HideGen
	c.Touch()
	if !c.State().ControlsVisible {
		t.Fatalf("interaction did not re-show controls")
	}
	c.Apply(IdleElapsed{Gen: gen})
	if !c.State().ControlsVisible {
		t.Fatalf("timer armed before the interaction hid controls")
	}
}
