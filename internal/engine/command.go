package engine

import (
	"context"

	"github.com/five82/showreel/internal/playback"
)

// Command is a transport request executed on the engine goroutine.
type Command interface {
	run(ctx context.Context, c *playback.Controller) error
}

// SelectTrack makes Index the active track.
type SelectTrack struct{ Index int }

// Next selects the following track, wrapping at the end.
type Next struct{}

// Previous selects the preceding track, wrapping at the start.
type Previous struct{}

// TogglePlay flips between playing and paused.
type TogglePlay struct{}

// ToggleMute flips the mute state.
type ToggleMute struct{}

// Seek jumps to a fraction of the duration.
type Seek struct{ Fraction float64 }

// SeekBy moves the position by Delta seconds.
type SeekBy struct{ Delta float64 }

// Key applies a keyboard shortcut by name. Unbound keys are ignored.
type Key struct{ Name string }

// Touch records an interaction that only reveals the controls.
type Touch struct{}

func (c SelectTrack) run(ctx context.Context, p *playback.Controller) error {
	return p.SelectTrack(ctx, c.Index)
}

func (Next) run(ctx context.Context, p *playback.Controller) error     { return p.Next(ctx) }
func (Previous) run(ctx context.Context, p *playback.Controller) error { return p.Previous(ctx) }
func (TogglePlay) run(_ context.Context, p *playback.Controller) error { return p.TogglePlay() }
func (ToggleMute) run(_ context.Context, p *playback.Controller) error { return p.ToggleMute() }
func (c Seek) run(_ context.Context, p *playback.Controller) error     { return p.Seek(c.Fraction) }
func (c SeekBy) run(_ context.Context, p *playback.Controller) error   { return p.SeekBy(c.Delta) }

func (c Key) run(_ context.Context, p *playback.Controller) error {
	_, err := p.HandleKey(c.Name)
	return err
}

func (Touch) run(_ context.Context, p *playback.Controller) error {
	p.Touch()
	return nil
}
