package mpv

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"

	"github.com/five82/showreel/internal/playback"
)

// ErrClosed is returned by requests on a closed handle.
var ErrClosed = errors.New("media handle closed")

const eventBuffer = 64

type handle struct {
	backend *Backend
	ipc     *conn
	session uint64
	events  chan playback.Event

	mu       sync.Mutex
	closed   bool
	loaded   bool
	position float64
}

func newHandle(b *Backend, ipc *conn, session uint64) *handle {
	return &handle{
		backend: b,
		ipc:     ipc,
		session: session,
		events:  make(chan playback.Event, eventBuffer),
	}
}

func (h *handle) Play() error {
	return h.issue(func(err error) {
		log.Printf("mpv play rejected: %v", err)
		h.emit(playback.PlayRejected{Session: h.session, Err: err})
	}, "set_property", "pause", false)
}

func (h *handle) Pause() error {
	return h.send("set_property", "pause", true)
}

func (h *handle) SetMuted(muted bool) error {
	return h.send("set_property", "mute", muted)
}

func (h *handle) Seek(seconds float64) error {
	return h.send("seek", seconds, "absolute")
}

func (h *handle) Events() <-chan playback.Event {
	return h.events
}

func (h *handle) Close() error {
	h.detach()
	h.backend.release(h)
	return nil
}

// detach stops event delivery and closes the event channel.
func (h *handle) detach() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	close(h.events)
}

func (h *handle) isClosed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}

// send issues a fire-and-forget command; failures are logged.
func (h *handle) send(args ...any) error {
	return h.issue(func(err error) {
		log.Printf("mpv %v failed: %v", args[0], err)
	}, args...)
}

// issue writes a command on the caller's goroutine, which keeps this
// handle's commands in call order, and waits for the reply in the
// background. onErr sees write and reply failures alike.
func (h *handle) issue(onErr func(error), args ...any) error {
	if h.isClosed() {
		return ErrClosed
	}
	ctx, cancel := context.WithTimeout(context.Background(), h.backend.opts.RequestTimeout)
	deadline, _ := ctx.Deadline()
	p, err := h.ipc.send(deadline, args...)
	if err != nil {
		cancel()
		onErr(err)
		return nil
	}
	go func() {
		defer cancel()
		if _, err := h.ipc.await(ctx, p); err != nil {
			onErr(err)
		}
	}()
	return nil
}

// emit delivers ev unless the handle is closed. Events are dropped when the
// consumer falls a full buffer behind so the IPC reader never blocks.
func (h *handle) emit(ev playback.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	select {
	case h.events <- ev:
	default:
		log.Printf("mpv session %d: dropped %T", h.session, ev)
	}
}

// deliver translates one mpv event into playback events. Property changes are
// ignored until mpv reports the file loaded, which keeps the tail of the
// previous file out of this session.
func (h *handle) deliver(msg message) {
	switch msg.Event {
	case "file-loaded":
		h.mu.Lock()
		h.loaded = true
		h.mu.Unlock()
		return
	case "end-file":
		if msg.Reason == "error" {
			h.emit(playback.PlayRejected{Session: h.session, Err: errors.New("mpv could not play file")})
		}
		return
	case "property-change":
	default:
		return
	}

	h.mu.Lock()
	loaded := h.loaded
	h.mu.Unlock()
	if !loaded {
		return
	}

	switch msg.ID {
	case propDuration:
		if d, ok := decodeFloat(msg.Data); ok {
			h.mu.Lock()
			pos := h.position
			h.mu.Unlock()
			h.emit(playback.MetadataLoaded{Session: h.session, Duration: d, Position: pos})
		}
	case propTimePos:
		if p, ok := decodeFloat(msg.Data); ok {
			h.mu.Lock()
			h.position = p
			h.mu.Unlock()
			h.emit(playback.TimeUpdate{Session: h.session, Position: p})
		}
	case propPausedForCache:
		if v, ok := decodeBool(msg.Data); ok {
			if v {
				h.emit(playback.BufferingStarted{Session: h.session})
			} else {
				h.emit(playback.BufferingStopped{Session: h.session})
			}
		}
	case propEOFReached:
		if v, ok := decodeBool(msg.Data); ok && v {
			h.emit(playback.Ended{Session: h.session})
		}
	}
}

func decodeFloat(raw json.RawMessage) (float64, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	var v *float64
	if err := json.Unmarshal(raw, &v); err != nil || v == nil {
		return 0, false
	}
	return *v, true
}

func decodeBool(raw json.RawMessage) (bool, bool) {
	if len(raw) == 0 {
		return false, false
	}
	var v *bool
	if err := json.Unmarshal(raw, &v); err != nil || v == nil {
		return false, false
	}
	return *v, true
}
