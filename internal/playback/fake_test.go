package playback

import (
	"context"
	"errors"

	"github.com/five82/showreel/internal/playlist"
)

type fakeBackend struct {
	opened  []*fakeHandle
	openErr error
}

func (b *fakeBackend) Open(_ context.Context, track playlist.Track, session uint64) (Handle, error) {
	if b.openErr != nil {
		return nil, b.openErr
	}
	h := &fakeHandle{track: track, session: session, events: make(chan Event, 8)}
	b.opened = append(b.opened, h)
	return h, nil
}

func (b *fakeBackend) Close() error { return nil }

func (b *fakeBackend) last() *fakeHandle {
	if len(b.opened) == 0 {
		return nil
	}
	return b.opened[len(b.opened)-1]
}

type fakeHandle struct {
	track   playlist.Track
	session uint64
	events  chan Event

	playErr error
	plays   int
	pauses  int
	seeks   []float64
	muted   bool
	closed  bool
}

func (h *fakeHandle) Play() error {
	h.plays++
	return h.playErr
}

func (h *fakeHandle) Pause() error {
	h.pauses++
	return nil
}

func (h *fakeHandle) SetMuted(muted bool) error {
	h.muted = muted
	return nil
}

func (h *fakeHandle) Seek(seconds float64) error {
	h.seeks = append(h.seeks, seconds)
	return nil
}

func (h *fakeHandle) Events() <-chan Event { return h.events }

func (h *fakeHandle) Close() error {
	if h.closed {
		return errors.New("already closed")
	}
	h.closed = true
	return nil
}

func sixTracks() playlist.Playlist {
	return playlist.Default()
}

func mountedController(opts ...Option) (*Controller, *fakeBackend) {
	backend := &fakeBackend{}
	c, err := NewController(sixTracks(), backend, opts...)
	if err != nil {
		panic(err)
	}
	if err := c.Mount(context.Background()); err != nil {
		panic(err)
	}
	return c, backend
}

// ready delivers metadata for the bound handle.
func ready(c *Controller, duration float64) {
	c.Apply(MetadataLoaded{Session: c.State().Session, Duration: duration})
}
