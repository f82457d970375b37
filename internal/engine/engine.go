package engine

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/five82/showreel/internal/playback"
	"github.com/five82/showreel/internal/playlist"
	"github.com/five82/showreel/internal/state"
)

// DefaultHideAfter is how long controls stay visible without interaction
// while playing.
const DefaultHideAfter = 3 * time.Second

// ErrEngineStopped is returned by Do once Run has returned.
var ErrEngineStopped = errors.New("engine stopped")

// Options configure an Engine.
type Options struct {
	HideAfter time.Duration
}

type request struct {
	ctx   context.Context
	cmd   Command
	reply chan result
}

type result struct {
	state playback.State
	err   error
}

// Engine serialises every access to a playback.Controller onto one goroutine
// and publishes the resulting state.
type Engine struct {
	ctrl      *playback.Controller
	playlist  playlist.Playlist
	store     *state.Store
	hideAfter time.Duration

	cmds chan request
	done chan struct{}

	subMu  sync.Mutex
	subs   map[int]chan state.Snapshot
	nextID int
}

// New returns an engine for ctrl. Nothing happens until Run is called.
func New(ctrl *playback.Controller, store *state.Store, opts Options) *Engine {
	if store == nil {
		store = &state.Store{}
	}
	if opts.HideAfter <= 0 {
		opts.HideAfter = DefaultHideAfter
	}
	return &Engine{
		ctrl:      ctrl,
		playlist:  ctrl.Playlist(),
		store:     store,
		hideAfter: opts.HideAfter,
		cmds:      make(chan request),
		done:      make(chan struct{}),
		subs:      make(map[int]chan state.Snapshot),
	}
}

// Playlist returns the tracks the engine plays.
func (e *Engine) Playlist() playlist.Playlist {
	return e.playlist
}

// Snapshot returns the latest published state.
func (e *Engine) Snapshot() state.Snapshot {
	return e.store.Snapshot()
}

// Run mounts the controller and processes commands, media events and the
// controls idle timer until ctx is cancelled. The media handle is released
// before Run returns.
func (e *Engine) Run(ctx context.Context) error {
	defer close(e.done)

	if err := e.ctrl.Mount(ctx); err != nil {
		log.Printf("mount failed: %v", err)
		e.record(err)
	} else {
		e.record(nil)
	}

	idle := time.NewTimer(e.hideAfter)
	idle.Stop()
	defer idle.Stop()
	var (
		armed    bool
		armedGen uint64
	)

	events := e.ctrl.Events()
	session := e.ctrl.State().Session

	for {
		st := e.ctrl.State()
		if st.Session != session {
			events = e.ctrl.Events()
			session = st.Session
		}

		want := st.Playing && st.ControlsVisible
		switch {
		case want && (!armed || armedGen != st.HideGen):
			idle.Reset(e.hideAfter)
			armed, armedGen = true, st.HideGen
		case !want && armed:
			idle.Stop()
			armed = false
		}

		select {
		case <-ctx.Done():
			if err := e.ctrl.Unmount(); err != nil {
				log.Printf("unmount failed: %v", err)
			}
			e.observe()
			return nil

		case req := <-e.cmds:
			err := req.cmd.run(req.ctx, e.ctrl)
			if err != nil {
				log.Printf("%T failed: %v", req.cmd, err)
			}
			e.record(err)
			req.reply <- result{state: e.ctrl.State(), err: err}

		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if rej, isRejection := ev.(playback.PlayRejected); isRejection && rej.Session == session {
				log.Printf("play rejected: %v", rej.Err)
			}
			e.ctrl.Apply(ev)
			e.observe()

		case <-idle.C:
			armed = false
			e.ctrl.Apply(playback.IdleElapsed{Gen: armedGen})
			e.observe()
		}
	}
}

// Do runs cmd on the engine goroutine and returns the state after it. The
// returned error is informational: the state is consistent either way.
func (e *Engine) Do(ctx context.Context, cmd Command) (playback.State, error) {
	req := request{ctx: ctx, cmd: cmd, reply: make(chan result, 1)}
	select {
	case e.cmds <- req:
	case <-ctx.Done():
		return playback.State{}, ctx.Err()
	case <-e.done:
		return playback.State{}, ErrEngineStopped
	}

	select {
	case r := <-req.reply:
		return r.state, r.err
	case <-e.done:
		return playback.State{}, ErrEngineStopped
	}
}

// Subscribe returns a channel that receives the latest snapshot after every
// change. Slow readers only see the newest value. The channel receives the
// current snapshot immediately. Call cancel to stop delivery.
func (e *Engine) Subscribe() (<-chan state.Snapshot, func()) {
	ch := make(chan state.Snapshot, 1)

	e.subMu.Lock()
	id := e.nextID
	e.nextID++
	e.subs[id] = ch
	e.subMu.Unlock()

	if snap := e.store.Snapshot(); snap.HasState {
		offer(ch, snap)
	}

	cancel := func() {
		e.subMu.Lock()
		delete(e.subs, id)
		e.subMu.Unlock()
	}
	return ch, cancel
}

// Done is closed when Run returns.
func (e *Engine) Done() <-chan struct{} {
	return e.done
}

func (e *Engine) record(err error) {
	st := e.ctrl.State()
	track, _ := e.playlist.Track(st.ActiveIndex)
	e.store.Update(st, track, err)
	e.publish()
}

func (e *Engine) observe() {
	st := e.ctrl.State()
	track, _ := e.playlist.Track(st.ActiveIndex)
	e.store.Observe(st, track)
	e.publish()
}

func (e *Engine) publish() {
	snap := e.store.Snapshot()
	e.subMu.Lock()
	defer e.subMu.Unlock()
	for _, ch := range e.subs {
		offer(ch, snap)
	}
}

// offer replaces any unread value in ch with snap.
func offer(ch chan state.Snapshot, snap state.Snapshot) {
	for {
		select {
		case ch <- snap:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
