package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/five82/showreel/internal/engine"
	"github.com/five82/showreel/internal/playback"
	"github.com/five82/showreel/internal/playlist"
)

type trackJSON struct {
	Index    int     `json:"index"`
	Title    string  `json:"title"`
	Source   string  `json:"source"`
	Duration float64 `json:"duration_seconds,omitempty"`
	Active   bool    `json:"active"`
}

type statusJSON struct {
	State           playback.State `json:"state"`
	Track           trackJSON      `json:"track"`
	ProgressPercent float64        `json:"progress_percent"`
	Elapsed         string         `json:"elapsed"`
	Total           string         `json:"total"`
	ShowControls    bool           `json:"show_controls"`
	Error           string         `json:"error,omitempty"`
	UpdatedAt       *time.Time     `json:"updated_at,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	snap := s.player.Snapshot()
	if !snap.HasState {
		writeError(w, http.StatusServiceUnavailable, "player is starting")
		return
	}
	out := s.status(snap.Playback, snap.LastError)
	if !snap.LastUpdated.IsZero() {
		updated := snap.LastUpdated
		out.UpdatedAt = &updated
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handlePlaylist(w http.ResponseWriter, r *http.Request) {
	pl := s.player.Playlist()
	active := s.player.Snapshot().Playback.ActiveIndex

	tracks := make([]trackJSON, 0, pl.Len())
	for i, t := range pl.Tracks {
		tracks = append(tracks, toTrackJSON(i, t, i == active))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"title":  pl.Title,
		"tracks": tracks,
	})
}

func (s *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	s.run(w, r, engine.TogglePlay{})
}

func (s *Server) handleMute(w http.ResponseWriter, r *http.Request) {
	s.run(w, r, engine.ToggleMute{})
}

func (s *Server) handleSeek(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	switch {
	case q.Get("fraction") != "":
		f, err := strconv.ParseFloat(q.Get("fraction"), 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "fraction must be a number")
			return
		}
		s.run(w, r, engine.Seek{Fraction: f})
	case q.Get("delta") != "":
		d, err := strconv.ParseFloat(q.Get("delta"), 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "delta must be a number of seconds")
			return
		}
		s.run(w, r, engine.SeekBy{Delta: d})
	default:
		writeError(w, http.StatusBadRequest, "fraction or delta parameter is required")
	}
}

func (s *Server) handleSelectTrack(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "track index must be an integer")
		return
	}
	s.run(w, r, engine.SelectTrack{Index: index})
}

// run executes cmd and reports the resulting state. Backend failures still
// carry the state, which is consistent after a rejected request.
func (s *Server) run(w http.ResponseWriter, r *http.Request, cmd engine.Command) {
	st, err := s.player.Do(r.Context(), cmd)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, s.status(st, nil))
	case errors.Is(err, playback.ErrTrackOutOfRange):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, engine.ErrEngineStopped):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		writeError(w, http.StatusGatewayTimeout, err.Error())
	default:
		writeJSON(w, http.StatusBadGateway, s.status(st, err))
	}
}

func (s *Server) status(st playback.State, err error) statusJSON {
	t, _ := s.player.Playlist().Track(st.ActiveIndex)
	out := statusJSON{
		State:           st,
		Track:           toTrackJSON(st.ActiveIndex, t, true),
		ProgressPercent: st.ProgressPercent(),
		Elapsed:         playback.FormatTime(st.CurrentTime),
		Total:           playback.FormatTime(st.Duration),
		ShowControls:    st.ShowControls(),
	}
	if err != nil {
		out.Error = err.Error()
	}
	return out
}

func toTrackJSON(index int, t playlist.Track, active bool) trackJSON {
	return trackJSON{
		Index:    index,
		Title:    t.Title,
		Source:   t.Source,
		Duration: t.Duration.Seconds(),
		Active:   active,
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
