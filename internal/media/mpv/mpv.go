// Package mpv is a media backend that drives an mpv process over its JSON
// IPC socket. One mpv instance serves the whole session; each Open replaces
// the loaded file and binds a new handle that receives that file's events.
package mpv

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/five82/showreel/internal/playback"
	"github.com/five82/showreel/internal/playlist"
)

const (
	defaultBinary         = "mpv"
	defaultStartTimeout   = 5 * time.Second
	defaultRequestTimeout = 3 * time.Second
	dialRetryInterval     = 50 * time.Millisecond
)

// Observed property ids.
const (
	propDuration int64 = iota + 1
	propTimePos
	propPausedForCache
	propEOFReached
)

var observed = map[int64]string{
	propDuration:       "duration",
	propTimePos:        "time-pos",
	propPausedForCache: "paused-for-cache",
	propEOFReached:     "eof-reached",
}

// Options configure the mpv process.
type Options struct {
	Binary         string
	SocketPath     string
	ExtraArgs      []string
	StartTimeout   time.Duration
	RequestTimeout time.Duration
}

// Backend owns the mpv process and its IPC connection.
type Backend struct {
	opts Options

	mu   sync.Mutex
	cmd  *exec.Cmd
	ipc  *conn
	dial func(ctx context.Context) (net.Conn, error)

	// active is read by the IPC reader, which must never wait on mu.
	active atomic.Pointer[handle]
}

// New returns a backend that starts mpv lazily on the first Open.
func New(opts Options) *Backend {
	if opts.Binary == "" {
		opts.Binary = defaultBinary
	}
	if opts.SocketPath == "" {
		opts.SocketPath = filepath.Join(os.TempDir(), fmt.Sprintf("showreel-mpv-%d.sock", os.Getpid()))
	}
	if opts.StartTimeout <= 0 {
		opts.StartTimeout = defaultStartTimeout
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = defaultRequestTimeout
	}
	b := &Backend{opts: opts}
	b.dial = b.spawnAndDial
	return b
}

// Open loads track into mpv, paused, and returns a handle bound to session.
func (b *Backend) Open(ctx context.Context, track playlist.Track, session uint64) (playback.Handle, error) {
	ipc, err := b.connect(ctx)
	if err != nil {
		return nil, err
	}

	h := newHandle(b, ipc, session)
	if prev := b.active.Swap(h); prev != nil {
		prev.detach()
	}

	reqCtx, cancel := context.WithTimeout(ctx, b.opts.RequestTimeout)
	defer cancel()
	if _, err := ipc.call(reqCtx, "set_property", "pause", true); err != nil {
		h.Close()
		return nil, fmt.Errorf("pause before load: %w", err)
	}
	if _, err := ipc.call(reqCtx, "loadfile", track.Source, "replace"); err != nil {
		h.Close()
		return nil, fmt.Errorf("loadfile: %w", err)
	}
	return h, nil
}

// Close quits mpv and releases the socket.
func (b *Backend) Close() error {
	b.mu.Lock()
	ipc, cmd := b.ipc, b.cmd
	b.ipc, b.cmd = nil, nil
	b.mu.Unlock()
	if prev := b.active.Swap(nil); prev != nil {
		prev.detach()
	}

	var errs []error
	if ipc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), b.opts.RequestTimeout)
		_, _ = ipc.call(ctx, "quit")
		cancel()
		if err := ipc.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close ipc: %w", err))
		}
	}
	if cmd != nil && cmd.Process != nil {
		waited := make(chan error, 1)
		go func() { waited <- cmd.Wait() }()
		select {
		case <-waited:
		case <-time.After(b.opts.StartTimeout):
			_ = cmd.Process.Kill()
			<-waited
		}
		_ = os.Remove(b.opts.SocketPath)
	}
	return errors.Join(errs...)
}

func (b *Backend) connect(ctx context.Context) (*conn, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.ipc != nil {
		return b.ipc, nil
	}

	c, err := b.dial(ctx)
	if err != nil {
		return nil, err
	}
	ipc := newConn(c, b.dispatch)

	reqCtx, cancel := context.WithTimeout(ctx, b.opts.RequestTimeout)
	defer cancel()
	for id := propDuration; id <= propEOFReached; id++ {
		if _, err := ipc.call(reqCtx, "observe_property", id, observed[id]); err != nil {
			ipc.Close()
			return nil, fmt.Errorf("observe %s: %w", observed[id], err)
		}
	}
	b.ipc = ipc
	go b.watch(ipc)
	return ipc, nil
}

// watch forgets ipc once its connection drops, for example when the user
// closes the mpv window, so the next Open starts a fresh mpv. The bound
// handle learns of the loss through a PlayRejected and a closed channel.
func (b *Backend) watch(ipc *conn) {
	<-ipc.done

	b.mu.Lock()
	if b.ipc != ipc {
		b.mu.Unlock()
		return
	}
	cmd := b.cmd
	b.ipc, b.cmd = nil, nil
	b.mu.Unlock()

	log.Printf("mpv ipc connection lost")
	if h := b.active.Swap(nil); h != nil {
		h.emit(playback.PlayRejected{Session: h.session, Err: ErrConnClosed})
		h.detach()
	}
	if cmd != nil && cmd.Process != nil {
		go func() { _ = cmd.Wait() }()
	}
}

func (b *Backend) spawnAndDial(ctx context.Context) (net.Conn, error) {
	_ = os.Remove(b.opts.SocketPath)

	args := []string{
		"--idle=yes",
		"--keep-open=yes",
		"--force-window=yes",
		"--no-terminal",
		"--input-ipc-server=" + b.opts.SocketPath,
	}
	args = append(args, b.opts.ExtraArgs...)
	cmd := exec.Command(b.opts.Binary, args...)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", b.opts.Binary, err)
	}
	b.cmd = cmd
	log.Printf("mpv started (pid %d, socket %s)", cmd.Process.Pid, b.opts.SocketPath)

	deadline := time.Now().Add(b.opts.StartTimeout)
	var d net.Dialer
	for {
		c, err := d.DialContext(ctx, "unix", b.opts.SocketPath)
		if err == nil {
			return c, nil
		}
		if time.Now().After(deadline) {
			_ = cmd.Process.Kill()
			_ = cmd.Wait()
			b.cmd = nil
			return nil, fmt.Errorf("connect to mpv ipc: %w", err)
		}
		select {
		case <-ctx.Done():
			_ = cmd.Process.Kill()
			_ = cmd.Wait()
			b.cmd = nil
			return nil, ctx.Err()
		case <-time.After(dialRetryInterval):
		}
	}
}

// dispatch routes an mpv event to the active handle. It runs on the IPC read
// goroutine.
func (b *Backend) dispatch(msg message) {
	if h := b.active.Load(); h != nil {
		h.deliver(msg)
	}
}

func (b *Backend) release(h *handle) {
	b.active.CompareAndSwap(h, nil)
}
