package app

import (
	"context"
	"fmt"

	"github.com/five82/showreel/internal/remote"
)

type fakeController struct {
	calls  []string
	status remote.StatusResponse
}

func (f *fakeController) record(call string) (*remote.StatusResponse, error) {
	f.calls = append(f.calls, call)
	status := f.status
	return &status, nil
}

func (f *fakeController) Health(context.Context) error { return nil }

func (f *fakeController) FetchStatus(context.Context) (*remote.StatusResponse, error) {
	return f.record("status")
}

func (f *fakeController) FetchPlaylist(context.Context) (*remote.PlaylistResponse, error) {
	f.calls = append(f.calls, "playlist")
	return &remote.PlaylistResponse{}, nil
}

func (f *fakeController) TogglePlay(context.Context) (*remote.StatusResponse, error) {
	return f.record("play")
}

func (f *fakeController) ToggleMute(context.Context) (*remote.StatusResponse, error) {
	return f.record("mute")
}

func (f *fakeController) Seek(_ context.Context, fraction float64) (*remote.StatusResponse, error) {
	return f.record(fmt.Sprintf("seek %v", fraction))
}

func (f *fakeController) SeekBy(_ context.Context, delta float64) (*remote.StatusResponse, error) {
	return f.record(fmt.Sprintf("seekby %v", delta))
}

func (f *fakeController) SelectTrack(_ context.Context, index int) (*remote.StatusResponse, error) {
	return f.record(fmt.Sprintf("track %d", index))
}
