package app

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/five82/showreel/internal/playback"
	"github.com/five82/showreel/internal/playlist"
	"github.com/five82/showreel/internal/state"
)

const (
	defaultReportInterval = 10 * time.Second
	maxBackoff            = 30 * time.Second
)

// StatusSource is what the reporter reads.
type StatusSource interface {
	Snapshot() state.Snapshot
	Playlist() playlist.Playlist
}

// StartReporter launches a background goroutine that logs the player status
// at a fixed cadence, backing off while the engine keeps failing. It returns
// immediately.
func StartReporter(ctx context.Context, src StatusSource, interval time.Duration) {
	if interval <= 0 {
		interval = defaultReportInterval
	}
	total := src.Playlist().Len()
	go func() {
		for {
			snap := src.Snapshot()
			log.Print(statusLine(snap, total))

			wait := interval
			if snap.Degraded() {
				wait = calculateBackoff(snap.ConsecutiveFailures, interval)
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(wait):
			}
		}
	}()
}

// calculateBackoff doubles the interval per failure up to maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	backoff := base
	for range failures {
		backoff *= 2
		if backoff >= maxBackoff {
			return maxBackoff
		}
	}
	return backoff
}

func statusLine(snap state.Snapshot, total int) string {
	if !snap.HasState {
		return "status: waiting for player"
	}
	st := snap.Playback
	status := "paused"
	switch {
	case st.Phase != playback.PhaseReady:
		status = strings.ToLower(st.Phase.String())
	case st.Ended:
		status = "ended"
	case st.Buffering:
		status = "buffering"
	case st.Playing:
		status = "playing"
	}
	line := fmt.Sprintf("status: track %d/%d %q %s %s / %s (%.0f%%)",
		st.ActiveIndex+1, total, snap.Track.Title, status,
		playback.FormatTime(st.CurrentTime), playback.FormatTime(st.Duration),
		st.ProgressPercent())
	if st.Muted {
		line += " muted"
	}
	if snap.LastError != nil {
		line += fmt.Sprintf(" error (%d in a row): %v", snap.ConsecutiveFailures, snap.LastError)
	}
	return line
}
