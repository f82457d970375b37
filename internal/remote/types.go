package remote

import (
	"time"

	"github.com/five82/showreel/internal/playback"
)

// StatusResponse mirrors the payload returned by /api/status and by the
// command endpoints.
type StatusResponse struct {
	State           playback.State `json:"state"`
	Track           Track          `json:"track"`
	ProgressPercent float64        `json:"progress_percent"`
	Elapsed         string         `json:"elapsed"`
	Total           string         `json:"total"`
	ShowControls    bool           `json:"show_controls"`
	Error           string         `json:"error"`
	UpdatedAt       string         `json:"updated_at"`
}

// ParsedUpdatedAt returns the parsed UpdatedAt timestamp.
func (s StatusResponse) ParsedUpdatedAt() time.Time {
	return parseTime(s.UpdatedAt)
}

// Label names the player status the way the TUI badge does.
func (s StatusResponse) Label() string {
	st := s.State
	switch {
	case st.Phase == playback.PhaseIdle:
		return "idle"
	case st.Phase == playback.PhaseLoading:
		return "loading"
	case st.Ended:
		return "ended"
	case st.Buffering:
		return "buffering"
	case st.Playing:
		return "playing"
	default:
		return "paused"
	}
}

// Track describes a playlist entry in transport-friendly form.
type Track struct {
	Index           int     `json:"index"`
	Title           string  `json:"title"`
	Source          string  `json:"source"`
	DurationSeconds float64 `json:"duration_seconds"`
	Active          bool    `json:"active"`
}

// Duration returns the manifest duration hint.
func (t Track) Duration() time.Duration {
	if t.DurationSeconds <= 0 {
		return 0
	}
	return time.Duration(t.DurationSeconds * float64(time.Second))
}

// PlaylistResponse mirrors /api/playlist.
type PlaylistResponse struct {
	Title  string  `json:"title"`
	Tracks []Track `json:"tracks"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func parseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}
