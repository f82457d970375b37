package sim

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/showreel/internal/playback"
	"github.com/five82/showreel/internal/playlist"
)

func fastBackend(stalls ...Stall) *Backend {
	return New(Options{
		LoadLatency: 5 * time.Millisecond,
		Tick:        5 * time.Millisecond,
		Stalls:      stalls,
	})
}

func next(t *testing.T, h playback.Handle) playback.Event {
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

// waitFor drains events until one of type T arrives.
func waitFor[T playback.Event](t *testing.T, h playback.Handle) T {
	t.Helper()
	for {
		if ev, ok := next(t, h).(T); ok {
			return ev
		}
	}
}

func TestOpen_EmitsMetadata(t *testing.T) {
	b := fastBackend()
	h, err := b.Open(context.Background(), playlist.Track{Source: "a", Duration: 2 * time.Second}, 4)
	require.NoError(t, err)
	defer h.Close()

	meta := waitFor[playback.MetadataLoaded](t, h)
	assert.Equal(t, uint64(4), meta.Session)
	assert.Equal(t, 2.0, meta.Duration)
	assert.Equal(t, 0.0, meta.Position)
}

func TestOpen_DefaultDuration(t *testing.T) {
	h, err := fastBackend().Open(context.Background(), playlist.Track{Source: "a"}, 1)
	require.NoError(t, err)
	defer h.Close()

	meta := waitFor[playback.MetadataLoaded](t, h)
	assert.Equal(t, defaultDuration.Seconds(), meta.Duration)
}

func TestOpen_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := fastBackend().Open(ctx, playlist.Track{Source: "a"}, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPlay_RejectedBeforeReady(t *testing.T) {
	b := New(Options{LoadLatency: time.Hour})
	h, err := b.Open(context.Background(), playlist.Track{Source: "a"}, 1)
	require.NoError(t, err)
	defer h.Close()

	assert.ErrorIs(t, h.Play(), ErrNotReady)
}

func TestPlay_EarlyPlayStartsWhenReady(t *testing.T) {
	b := New(Options{LoadLatency: 5 * time.Millisecond, Tick: 5 * time.Millisecond, AllowEarlyPlay: true})
	h, err := b.Open(context.Background(), playlist.Track{Source: "a", Duration: time.Second}, 1)
	require.NoError(t, err)
	defer h.Close()

	require.NoError(t, h.Play())
	waitFor[playback.MetadataLoaded](t, h)
	upd := waitFor[playback.TimeUpdate](t, h)
	assert.Greater(t, upd.Position, 0.0)
}

func TestPlay_RunsToEnd(t *testing.T) {
	h, err := fastBackend().Open(context.Background(), playlist.Track{Source: "a", Duration: 40 * time.Millisecond}, 2)
	require.NoError(t, err)
	defer h.Close()

	waitFor[playback.MetadataLoaded](t, h)
	require.NoError(t, h.Play())
	assert.IsType(t, playback.BufferingStopped{}, next(t, h))

	ended := waitFor[playback.Ended](t, h)
	assert.Equal(t, uint64(2), ended.Session)
}

func TestSeek_ReportsPositionWhilePaused(t *testing.T) {
	h, err := fastBackend().Open(context.Background(), playlist.Track{Source: "a", Duration: 10 * time.Second}, 1)
	require.NoError(t, err)
	defer h.Close()

	waitFor[playback.MetadataLoaded](t, h)
	require.NoError(t, h.Seek(7.5))
	upd := waitFor[playback.TimeUpdate](t, h)
	assert.Equal(t, 7.5, upd.Position)

	require.NoError(t, h.Seek(99))
	upd = waitFor[playback.TimeUpdate](t, h)
	assert.Equal(t, 10.0, upd.Position)
}

func TestStall_EmitsBufferingPair(t *testing.T) {
	h, err := fastBackend(Stall{At: 10 * time.Millisecond, For: 20 * time.Millisecond}).
		Open(context.Background(), playlist.Track{Source: "a", Duration: time.Second}, 1)
	require.NoError(t, err)
	defer h.Close()

	waitFor[playback.MetadataLoaded](t, h)
	require.NoError(t, h.Play())
	waitFor[playback.BufferingStopped](t, h)

	waitFor[playback.BufferingStarted](t, h)
	waitFor[playback.BufferingStopped](t, h)
}

func TestStall_ResumeKeepsBuffering(t *testing.T) {
	h, err := fastBackend(Stall{At: 10 * time.Millisecond, For: 300 * time.Millisecond}).
		Open(context.Background(), playlist.Track{Source: "a", Duration: time.Second}, 1)
	require.NoError(t, err)
	defer h.Close()

	waitFor[playback.MetadataLoaded](t, h)
	require.NoError(t, h.Play())
	waitFor[playback.BufferingStarted](t, h)

	require.NoError(t, h.Pause())
	require.NoError(t, h.Play())

	quiet := time.After(100 * time.Millisecond)
	for done := false; !done; {
		select {
		case ev := <-h.Events():
			assert.NotEqual(t, playback.BufferingStopped{Session: 1}, ev, "buffering cleared during stall")
		case <-quiet:
			done = true
		}
	}

	waitFor[playback.BufferingStopped](t, h)
	upd := waitFor[playback.TimeUpdate](t, h)
	assert.Greater(t, upd.Position, 0.01)
}

func TestClose_StopsEventsAndRejectsRequests(t *testing.T) {
	h, err := fastBackend().Open(context.Background(), playlist.Track{Source: "a"}, 1)
	require.NoError(t, err)

	require.NoError(t, h.Close())
	require.NoError(t, h.Close())

	require.Eventually(t, func() bool {
		select {
		case _, ok := <-h.Events():
			return !ok
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)

	assert.ErrorIs(t, h.Play(), ErrClosed)
	assert.ErrorIs(t, h.Pause(), ErrClosed)
	assert.ErrorIs(t, h.Seek(1), ErrClosed)
	assert.ErrorIs(t, h.SetMuted(true), ErrClosed)
}
