package mpv

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/showreel/internal/playback"
	"github.com/five82/showreel/internal/playlist"
)

// fakeMPV answers IPC commands on one end of a pipe.
type fakeMPV struct {
	t    *testing.T
	conn net.Conn

	writeMu sync.Mutex

	mu       sync.Mutex
	commands [][]any
	fail     func(cmd []any) string
}

func newFakeMPV(t *testing.T) (*Backend, *fakeMPV) {
	t.Helper()
	client, f := startFake(t)
	b := New(Options{RequestTimeout: time.Second, SocketPath: "unused"})
	b.dial = func(context.Context) (net.Conn, error) { return client, nil }
	return b, f
}

// startFake serves a new fake mpv and returns the client end of its pipe.
func startFake(t *testing.T) (net.Conn, *fakeMPV) {
	t.Helper()
	client, server := net.Pipe()
	f := &fakeMPV{t: t, conn: server}
	go f.serve()
	t.Cleanup(func() {
		_ = server.Close()
		_ = client.Close()
	})
	return client, f
}

func (f *fakeMPV) serve() {
	scanner := bufio.NewScanner(f.conn)
	for scanner.Scan() {
		var req struct {
			Command   []any `json:"command"`
			RequestID int64 `json:"request_id"`
		}
		if err := json.Unmarshal(scanner.Bytes(), &req); err != nil {
			continue
		}
		f.mu.Lock()
		f.commands = append(f.commands, req.Command)
		fail := f.fail
		f.mu.Unlock()

		status := "success"
		if fail != nil {
			if msg := fail(req.Command); msg != "" {
				status = msg
			}
		}
		f.write(map[string]any{"request_id": req.RequestID, "error": status})
	}
}

func (f *fakeMPV) write(v any) {
	data, _ := json.Marshal(v)
	f.writeMu.Lock()
	defer f.writeMu.Unlock()
	_, _ = f.conn.Write(append(data, '\n'))
}

func (f *fakeMPV) event(name string, fields map[string]any) {
	msg := map[string]any{"event": name}
	for k, v := range fields {
		msg[k] = v
	}
	f.write(msg)
}

func (f *fakeMPV) property(id int64, data any) {
	f.event("property-change", map[string]any{"id": id, "name": observed[id], "data": data})
}

func (f *fakeMPV) sent() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.commands))
	for _, c := range f.commands {
		out = append(out, fmt.Sprint(c...))
	}
	return out
}

func recv(t *testing.T, h playback.Handle) playback.Event {
	t.Helper()
	select {
	case ev, ok := <-h.Events():
		require.True(t, ok, "event channel closed")
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func TestOpen_ObservesAndLoadsPaused(t *testing.T) {
	b, f := newFakeMPV(t)

	h, err := b.Open(context.Background(), playlist.Track{Source: "/srv/reel.mp4"}, 1)
	require.NoError(t, err)
	defer h.Close()

	sent := f.sent()
	require.Len(t, sent, 6)
	assert.Equal(t, "observe_property1duration", sent[0])
	assert.Equal(t, "observe_property4eof-reached", sent[3])
	assert.Equal(t, "set_propertypausetrue", sent[4])
	assert.Equal(t, "loadfile/srv/reel.mp4replace", sent[5])
}

func TestOpen_LoadFailure(t *testing.T) {
	b, f := newFakeMPV(t)
	f.fail = func(cmd []any) string {
		if cmd[0] == "loadfile" {
			return "invalid parameter"
		}
		return ""
	}

	_, err := b.Open(context.Background(), playlist.Track{Source: "nope"}, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid parameter")
	assert.Nil(t, b.active.Load())
}

func TestEvents_TranslatedAfterFileLoaded(t *testing.T) {
	b, f := newFakeMPV(t)
	h, err := b.Open(context.Background(), playlist.Track{Source: "a.mp4"}, 7)
	require.NoError(t, err)
	defer h.Close()

	// Tail of the previous file: must not reach this session.
	f.property(propTimePos, 99.0)
	f.event("file-loaded", nil)
	f.property(propDuration, 120.5)

	meta, ok := recv(t, h).(playback.MetadataLoaded)
	require.True(t, ok)
	assert.Equal(t, playback.MetadataLoaded{Session: 7, Duration: 120.5, Position: 0}, meta)

	f.property(propTimePos, 3.25)
	assert.Equal(t, playback.TimeUpdate{Session: 7, Position: 3.25}, recv(t, h))

	f.property(propTimePos, nil)
	f.property(propPausedForCache, true)
	assert.Equal(t, playback.BufferingStarted{Session: 7}, recv(t, h))
	f.property(propPausedForCache, false)
	assert.Equal(t, playback.BufferingStopped{Session: 7}, recv(t, h))

	f.property(propEOFReached, false)
	f.property(propEOFReached, true)
	assert.Equal(t, playback.Ended{Session: 7}, recv(t, h))
}

func TestPlay_RejectionBecomesEvent(t *testing.T) {
	b, f := newFakeMPV(t)
	h, err := b.Open(context.Background(), playlist.Track{Source: "a.mp4"}, 2)
	require.NoError(t, err)
	defer h.Close()

	f.mu.Lock()
	f.fail = func(cmd []any) string {
		if len(cmd) == 3 && cmd[1] == "pause" && cmd[2] == false {
			return "property unavailable"
		}
		return ""
	}
	f.mu.Unlock()

	require.NoError(t, h.Play())
	ev, ok := recv(t, h).(playback.PlayRejected)
	require.True(t, ok)
	assert.Equal(t, uint64(2), ev.Session)
}

func TestPlay_LeavesBufferingToMPV(t *testing.T) {
	b, f := newFakeMPV(t)
	h, err := b.Open(context.Background(), playlist.Track{Source: "a.mp4"}, 3)
	require.NoError(t, err)
	defer h.Close()

	f.event("file-loaded", nil)
	f.property(propPausedForCache, true)
	assert.Equal(t, playback.BufferingStarted{Session: 3}, recv(t, h))

	require.NoError(t, h.Pause())
	require.NoError(t, h.Play())
	require.Eventually(t, func() bool { return len(f.sent()) == 8 }, time.Second, 5*time.Millisecond)

	f.property(propTimePos, 4.0)
	assert.Equal(t, playback.TimeUpdate{Session: 3, Position: 4}, recv(t, h), "buffering must persist until mpv clears paused-for-cache")
}

func TestCommands_ReachMPVInCallOrder(t *testing.T) {
	b, f := newFakeMPV(t)
	h, err := b.Open(context.Background(), playlist.Track{Source: "a.mp4"}, 1)
	require.NoError(t, err)
	defer h.Close()

	const rounds = 200
	for range rounds {
		require.NoError(t, h.Play())
		require.NoError(t, h.Pause())
	}
	require.NoError(t, h.Seek(0))
	require.NoError(t, h.Play())

	want := 6 + 2*rounds + 2
	require.Eventually(t, func() bool { return len(f.sent()) == want }, 2*time.Second, 5*time.Millisecond)
	sent := f.sent()
	for i := range rounds {
		require.Equal(t, "set_propertypausefalse", sent[6+2*i], "round %d", i)
		require.Equal(t, "set_propertypausetrue", sent[7+2*i], "round %d", i)
	}
	assert.Equal(t, "seek0absolute", sent[want-2])
	assert.Equal(t, "set_propertypausefalse", sent[want-1])
}

func TestOpen_RespawnsAfterConnectionLoss(t *testing.T) {
	b := New(Options{RequestTimeout: time.Second, SocketPath: "unused"})
	var fakes []*fakeMPV
	b.dial = func(context.Context) (net.Conn, error) {
		client, f := startFake(t)
		fakes = append(fakes, f)
		return client, nil
	}

	h, err := b.Open(context.Background(), playlist.Track{Source: "a.mp4"}, 1)
	require.NoError(t, err)
	require.Len(t, fakes, 1)

	// mpv exits: its end of the socket goes away.
	require.NoError(t, fakes[0].conn.Close())

	ev, ok := recv(t, h).(playback.PlayRejected)
	require.True(t, ok)
	assert.ErrorIs(t, ev.Err, ErrConnClosed)
	_, open := <-h.Events()
	assert.False(t, open)

	require.Eventually(t, func() bool {
		b.mu.Lock()
		defer b.mu.Unlock()
		return b.ipc == nil
	}, time.Second, 5*time.Millisecond)

	h2, err := b.Open(context.Background(), playlist.Track{Source: "b.mp4"}, 2)
	require.NoError(t, err)
	defer h2.Close()
	require.Len(t, fakes, 2)
	assert.Equal(t, "loadfileb.mp4replace", fakes[1].sent()[5])
}

func TestOpen_ReplacesActiveHandle(t *testing.T) {
	b, f := newFakeMPV(t)
	first, err := b.Open(context.Background(), playlist.Track{Source: "a.mp4"}, 1)
	require.NoError(t, err)
	second, err := b.Open(context.Background(), playlist.Track{Source: "b.mp4"}, 2)
	require.NoError(t, err)
	defer second.Close()

	_, open := <-first.Events()
	assert.False(t, open, "replaced handle should be detached")
	assert.ErrorIs(t, first.Play(), ErrClosed)

	f.event("file-loaded", nil)
	f.property(propDuration, 10.0)
	assert.Equal(t, playback.MetadataLoaded{Session: 2, Duration: 10}, recv(t, second))

	// Closing a replaced handle must not unbind the new one.
	require.NoError(t, first.Close())
	assert.NotNil(t, b.active.Load())
}

func TestEndFileError_RejectsPlay(t *testing.T) {
	b, f := newFakeMPV(t)
	h, err := b.Open(context.Background(), playlist.Track{Source: "a.mp4"}, 5)
	require.NoError(t, err)
	defer h.Close()

	f.event("end-file", map[string]any{"reason": "eof"})
	f.event("end-file", map[string]any{"reason": "error"})
	_, ok := recv(t, h).(playback.PlayRejected)
	assert.True(t, ok)
}

func TestDecode(t *testing.T) {
	v, ok := decodeFloat(json.RawMessage("12.5"))
	assert.True(t, ok)
	assert.Equal(t, 12.5, v)

	_, ok = decodeFloat(json.RawMessage("null"))
	assert.False(t, ok)
	_, ok = decodeFloat(nil)
	assert.False(t, ok)

	bv, ok := decodeBool(json.RawMessage("true"))
	assert.True(t, ok)
	assert.True(t, bv)
	_, ok = decodeBool(json.RawMessage(`"yes"`))
	assert.False(t, ok)
}
