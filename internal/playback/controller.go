package playback

import (
	"context"
	"errors"
	"fmt"

	"github.com/five82/showreel/internal/playlist"
)

// DefaultSeekStep is the distance the arrow keys seek, in seconds.
const DefaultSeekStep = 5.0

var (
	// ErrTrackOutOfRange is returned by SelectTrack for an index outside the playlist.
	ErrTrackOutOfRange = errors.New("track index out of range")
	// ErrNotMounted is returned when an operation needs a bound media handle.
	ErrNotMounted = errors.New("player is not mounted")
	// ErrEmptyPlaylist is returned by NewController for a playlist without tracks.
	ErrEmptyPlaylist = errors.New("playlist is empty")
)

// Backend opens media handles. Every handle is bound to exactly one track and
// one session for its whole life.
type Backend interface {
	Open(ctx context.Context, track playlist.Track, session uint64) (Handle, error)
	Close() error
}

// Handle is an exclusively owned media playback resource. Requests return
// quickly; their outcome is reported later on Events, stamped with the
// handle's session. Play may return an error when the request is rejected
// outright.
type Handle interface {
	Play() error
	Pause() error
	SetMuted(muted bool) error
	Seek(seconds float64) error
	Events() <-chan Event
	Close() error
}

// Controller owns the playback state of a single player and the media handle
// for the active track. It is not safe for concurrent use; one goroutine must
// own it.
type Controller struct {
	playlist playlist.Playlist
	backend  Backend
	handle   Handle
	state    State
	seekStep float64
	sessions uint64
}

// Option customises a Controller.
type Option func(*Controller)

// WithSeekStep sets the keyboard seek distance in seconds.
func WithSeekStep(seconds float64) Option {
	return func(c *Controller) {
		if seconds > 0 {
			c.seekStep = seconds
		}
	}
}

// WithMuted sets the initial mute state.
func WithMuted(muted bool) Option {
	return func(c *Controller) {
		c.state.Muted = muted
	}
}

// NewController returns an unmounted controller at track 0.
func NewController(pl playlist.Playlist, backend Backend, opts ...Option) (*Controller, error) {
	if pl.Len() == 0 {
		return nil, ErrEmptyPlaylist
	}
	if backend == nil {
		return nil, fmt.Errorf("controller requires a media backend")
	}
	c := &Controller{
		playlist: pl,
		backend:  backend,
		seekStep: DefaultSeekStep,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// State returns a copy of the current state.
func (c *Controller) State() State {
	return c.state
}

// Playlist returns the playlist the controller was built with.
func (c *Controller) Playlist() playlist.Playlist {
	return c.playlist
}

// Events returns the event stream of the bound handle, or nil when unmounted.
func (c *Controller) Events() <-chan Event {
	if c.handle == nil {
		return nil
	}
	return c.handle.Events()
}

// Mount binds a media handle for the active track.
func (c *Controller) Mount(ctx context.Context) error {
	if c.handle != nil {
		return nil
	}
	return c.bind(ctx, c.state.ActiveIndex)
}

// Unmount releases the media handle. The state is kept so a later Mount
// reopens the same track.
func (c *Controller) Unmount() error {
	if c.handle == nil {
		return nil
	}
	err := c.handle.Close()
	c.handle = nil
	c.state.Phase = PhaseIdle
	c.state.Playing = false
	c.state.Buffering = false
	if err != nil {
		return fmt.Errorf("close media handle: %w", err)
	}
	return nil
}

// SelectTrack makes index the active track. Selecting the active track is a
// no-op. The previous handle is closed before the new one is opened so no
// event from the old source can reach the new state.
func (c *Controller) SelectTrack(ctx context.Context, index int) error {
	if !c.playlist.InBounds(index) {
		return fmt.Errorf("%w: %d (playlist has %d)", ErrTrackOutOfRange, index, c.playlist.Len())
	}
	if index == c.state.ActiveIndex && c.handle != nil {
		return nil
	}

	var closeErr error
	if c.handle != nil {
		closeErr = c.handle.Close()
		c.handle = nil
	}

	c.state.ActiveIndex = index
	c.state.Playing = false
	c.state.CurrentTime = 0
	c.state.Duration = 0
	c.state.Buffering = false
	c.state.Ended = false
	c.touch()

	if err := c.bind(ctx, index); err != nil {
		return err
	}
	if closeErr != nil {
		return fmt.Errorf("close previous media handle: %w", closeErr)
	}
	return nil
}

// Next selects the following track, wrapping at the end.
func (c *Controller) Next(ctx context.Context) error {
	return c.SelectTrack(ctx, (c.state.ActiveIndex+1)%c.playlist.Len())
}

// Previous selects the preceding track, wrapping at the start.
func (c *Controller) Previous(ctx context.Context) error {
	n := c.playlist.Len()
	return c.SelectTrack(ctx, (c.state.ActiveIndex-1+n)%n)
}

// TogglePlay flips between playing and paused. A rejected play request
// reverts to paused; the error is returned for logging only and the state is
// already consistent. Toggling after the track ended restarts it from 0.
func (c *Controller) TogglePlay() error {
	c.touch()
	c.state.Playing = !c.state.Playing
	if c.handle == nil {
		c.state.Playing = false
		return ErrNotMounted
	}

	if !c.state.Playing {
		if err := c.handle.Pause(); err != nil {
			return fmt.Errorf("pause: %w", err)
		}
		return nil
	}

	if c.state.Ended {
		c.state.Ended = false
		c.state.CurrentTime = 0
		if err := c.handle.Seek(0); err != nil {
			c.state.Playing = false
			return fmt.Errorf("rewind: %w", err)
		}
	}
	if err := c.handle.Play(); err != nil {
		c.state.Playing = false
		return fmt.Errorf("play: %w", err)
	}
	return nil
}

// ToggleMute flips the mute state and propagates it to the handle.
func (c *Controller) ToggleMute() error {
	c.touch()
	c.state.Muted = !c.state.Muted
	if c.handle == nil {
		return nil
	}
	if err := c.handle.SetMuted(c.state.Muted); err != nil {
		return fmt.Errorf("set mute: %w", err)
	}
	return nil
}

// Seek jumps to fraction of the duration. The fraction is clamped to [0,1]
// and the position updates immediately without waiting for the backend.
func (c *Controller) Seek(fraction float64) error {
	c.touch()
	return c.seekTo(clamp(fraction, 0, 1) * c.state.Duration)
}

// SeekBy moves the position by delta seconds, clamped to [0, duration].
func (c *Controller) SeekBy(delta float64) error {
	c.touch()
	return c.seekTo(clamp(c.state.CurrentTime+delta, 0, c.state.Duration))
}

func (c *Controller) seekTo(target float64) error {
	target = sanitizeSeconds(target)
	if c.state.Ended && target < c.state.Duration {
		c.state.Ended = false
	}
	c.state.CurrentTime = target
	if c.handle == nil {
		return nil
	}
	if err := c.handle.Seek(target); err != nil {
		return fmt.Errorf("seek: %w", err)
	}
	return nil
}

// HandleKey applies a keyboard shortcut. It reports whether the key is bound.
// Key names follow the terminal convention: " ", "k", "m", "left", "right".
func (c *Controller) HandleKey(key string) (bool, error) {
	switch key {
	case " ", "space", "k":
		return true, c.TogglePlay()
	case "m":
		return true, c.ToggleMute()
	case "left":
		return true, c.SeekBy(-c.seekStep)
	case "right":
		return true, c.SeekBy(c.seekStep)
	}
	return false, nil
}

// Touch records a user interaction that does not change playback, such as
// pointer movement. It shows the controls and restarts the idle countdown.
func (c *Controller) Touch() {
	c.touch()
}

// Apply delivers an event from the handle or the idle timer.
func (c *Controller) Apply(ev Event) {
	c.state = Apply(c.state, ev)
}

func (c *Controller) touch() {
	c.state.ControlsVisible = true
	c.state.HideGen++
}

func (c *Controller) bind(ctx context.Context, index int) error {
	track, _ := c.playlist.Track(index)
	c.sessions++
	session := c.sessions

	h, err := c.backend.Open(ctx, track, session)
	if err != nil {
		c.state.Phase = PhaseIdle
		return fmt.Errorf("open %q: %w", track.Source, err)
	}
	c.handle = h
	c.state.Session = session
	c.state.Phase = PhaseLoading

	if err := h.SetMuted(c.state.Muted); err != nil {
		return fmt.Errorf("set mute: %w", err)
	}
	return nil
}
