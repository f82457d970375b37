// Package sim is an in-process media backend that plays virtual sources on
// the wall clock. It reports the same lifecycle a real player does: delayed
// metadata, position updates, buffering stalls and end of stream.
package sim

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/five82/showreel/internal/playback"
	"github.com/five82/showreel/internal/playlist"
)

// ErrNotReady is returned by Play before metadata has loaded, the same way a
// browser rejects play() on a source that cannot start yet.
var ErrNotReady = errors.New("media not ready")

// ErrClosed is returned by requests on a closed handle.
var ErrClosed = errors.New("media handle closed")

const (
	defaultLoadLatency = 150 * time.Millisecond
	defaultTick        = 250 * time.Millisecond
	defaultDuration    = 30 * time.Second
	eventBuffer        = 32
)

// Stall describes a buffering stall at a playback position.
type Stall struct {
	At  time.Duration
	For time.Duration
}

// Options tune the simulation.
type Options struct {
	LoadLatency time.Duration
	Tick        time.Duration
	// AllowEarlyPlay accepts Play before metadata. Playback then starts as
	// soon as the source is ready.
	AllowEarlyPlay bool
	Stalls         []Stall
}

// Backend opens simulated handles.
type Backend struct {
	opts Options
}

// New returns a simulated backend.
func New(opts Options) *Backend {
	if opts.LoadLatency < 0 {
		opts.LoadLatency = 0
	}
	if opts.LoadLatency == 0 {
		opts.LoadLatency = defaultLoadLatency
	}
	if opts.Tick <= 0 {
		opts.Tick = defaultTick
	}
	return &Backend{opts: opts}
}

// Open starts loading track and returns its handle.
func (b *Backend) Open(ctx context.Context, track playlist.Track, session uint64) (playback.Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	duration := track.Duration
	if duration <= 0 {
		duration = defaultDuration
	}
	h := &handle{
		session:  session,
		duration: duration,
		opts:     b.opts,
		stalls:   append([]Stall(nil), b.opts.Stalls...),
		events:   make(chan playback.Event, eventBuffer),
		done:     make(chan struct{}),
		wake:     make(chan struct{}, 1),
	}
	go h.run()
	return h, nil
}

// Close is a no-op; handles own all their resources.
func (b *Backend) Close() error {
	return nil
}

type handle struct {
	session  uint64
	duration time.Duration
	opts     Options
	events   chan playback.Event
	done     chan struct{}
	wake     chan struct{}

	closeOnce sync.Once

	mu         sync.Mutex
	position   time.Duration
	ready      bool
	playing    bool
	wantPlay   bool
	muted      bool
	ended      bool
	stalls     []Stall
	stallUntil time.Time
	seeked     bool
	started    bool
	closed     bool
}

func (h *handle) Play() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrClosed
	}
	if !h.ready {
		if !h.opts.AllowEarlyPlay {
			return ErrNotReady
		}
		h.wantPlay = true
		return nil
	}
	if h.ended {
		h.ended = false
	}
	h.playing = true
	h.started = true
	h.poke()
	return nil
}

func (h *handle) Pause() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrClosed
	}
	h.playing = false
	h.wantPlay = false
	return nil
}

func (h *handle) SetMuted(muted bool) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrClosed
	}
	h.muted = muted
	return nil
}

func (h *handle) Seek(seconds float64) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrClosed
	}
	pos := time.Duration(seconds * float64(time.Second))
	if pos < 0 {
		pos = 0
	}
	if pos > h.duration {
		pos = h.duration
	}
	h.position = pos
	if pos < h.duration {
		h.ended = false
	}
	h.seeked = true
	h.poke()
	return nil
}

func (h *handle) Events() <-chan playback.Event {
	return h.events
}

func (h *handle) Close() error {
	h.closeOnce.Do(func() {
		h.mu.Lock()
		h.closed = true
		h.mu.Unlock()
		close(h.done)
	})
	return nil
}

func (h *handle) poke() {
	select {
	case h.wake <- struct{}{}:
	default:
	}
}

func (h *handle) run() {
	defer close(h.events)

	load := time.NewTimer(h.opts.LoadLatency)
	defer load.Stop()
	select {
	case <-h.done:
		return
	case <-load.C:
	}

	h.mu.Lock()
	h.ready = true
	if h.wantPlay {
		h.playing = true
		h.started = true
		h.wantPlay = false
	}
	meta := playback.MetadataLoaded{
		Session:  h.session,
		Duration: h.duration.Seconds(),
		Position: h.position.Seconds(),
	}
	h.mu.Unlock()
	if !h.emit(meta) {
		return
	}

	ticker := time.NewTicker(h.opts.Tick)
	defer ticker.Stop()
	last := time.Now()
	for {
		select {
		case <-h.done:
			return
		case <-h.wake:
		case <-ticker.C:
		}
		now := time.Now()
		events := h.advance(now.Sub(last), now)
		last = now
		for _, ev := range events {
			if !h.emit(ev) {
				return
			}
		}
	}
}

// advance moves the virtual clock by elapsed and returns the events that
// resulted.
func (h *handle) advance(elapsed time.Duration, now time.Time) []playback.Event {
	h.mu.Lock()
	defer h.mu.Unlock()

	var out []playback.Event
	if h.started {
		h.started = false
		if h.stallUntil.IsZero() {
			out = append(out, playback.BufferingStopped{Session: h.session})
		}
	}

	if !h.stallUntil.IsZero() {
		if now.Before(h.stallUntil) {
			return out
		}
		h.stallUntil = time.Time{}
		out = append(out, playback.BufferingStopped{Session: h.session})
	}

	if h.playing {
		next := h.position + elapsed
		if stall, ok := h.nextStall(h.position, next); ok {
			next = stall.At
			h.stallUntil = now.Add(stall.For)
			out = append(out, playback.BufferingStarted{Session: h.session})
		}
		h.position = next
		if h.position >= h.duration {
			h.position = h.duration
			h.playing = false
			h.ended = true
			h.stallUntil = time.Time{}
			return append(out,
				playback.TimeUpdate{Session: h.session, Position: h.position.Seconds()},
				playback.Ended{Session: h.session},
			)
		}
		h.seeked = false
		return append(out, playback.TimeUpdate{Session: h.session, Position: h.position.Seconds()})
	}

	if h.seeked {
		h.seeked = false
		out = append(out, playback.TimeUpdate{Session: h.session, Position: h.position.Seconds()})
	}
	return out
}

// nextStall pops the first stall between from (exclusive) and to (inclusive).
func (h *handle) nextStall(from, to time.Duration) (Stall, bool) {
	for i, s := range h.stalls {
		if s.At > from && s.At <= to {
			h.stalls = append(h.stalls[:i], h.stalls[i+1:]...)
			return s, true
		}
	}
	return Stall{}, false
}

func (h *handle) emit(ev playback.Event) bool {
	select {
	case h.events <- ev:
		return true
	case <-h.done:
		return false
	}
}
