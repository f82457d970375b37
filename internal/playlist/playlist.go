// Package playlist loads the fixed, ordered list of videos showreel plays.
package playlist

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrEmpty is returned when a manifest declares no tracks.
var ErrEmpty = errors.New("playlist has no tracks")

// Track is a single playable video source.
type Track struct {
	Title  string `yaml:"title"`
	Source string `yaml:"source"`
	// Duration is a hint used by the simulated backend. Real backends report
	// the duration themselves once metadata loads.
	Duration time.Duration `yaml:"duration,omitempty"`
}

// Playlist is an ordered, fixed-size list of tracks. It is static
// configuration and never changes after Load.
type Playlist struct {
	Title  string  `yaml:"title"`
	Tracks []Track `yaml:"tracks"`
}

// Len returns the number of tracks.
func (p Playlist) Len() int {
	return len(p.Tracks)
}

// InBounds reports whether index addresses a track.
func (p Playlist) InBounds(index int) bool {
	return index >= 0 && index < len(p.Tracks)
}

// Track returns the track at index, or false when index is out of bounds.
func (p Playlist) Track(index int) (Track, bool) {
	if !p.InBounds(index) {
		return Track{}, false
	}
	return p.Tracks[index], true
}

// Load reads a YAML manifest from path.
func Load(path string) (Playlist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Playlist{}, fmt.Errorf("read playlist: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML manifest.
func Parse(data []byte) (Playlist, error) {
	var pl Playlist
	if err := yaml.Unmarshal(data, &pl); err != nil {
		return Playlist{}, fmt.Errorf("parse playlist: %w", err)
	}

	pl.Title = strings.TrimSpace(pl.Title)
	if len(pl.Tracks) == 0 {
		return Playlist{}, ErrEmpty
	}
	for i := range pl.Tracks {
		t := &pl.Tracks[i]
		t.Source = strings.TrimSpace(t.Source)
		t.Title = strings.TrimSpace(t.Title)
		if t.Source == "" {
			return Playlist{}, fmt.Errorf("track %d: source is empty", i+1)
		}
		if t.Title == "" {
			t.Title = fmt.Sprintf("Video %d", i+1)
		}
		if t.Duration < 0 {
			return Playlist{}, fmt.Errorf("track %d: negative duration", i+1)
		}
	}
	return pl, nil
}

// Default returns the built-in gallery used when no manifest is configured.
func Default() Playlist {
	titles := []string{
		"Independent Tower Scaffold",
		"External Perimeter Scaffolding",
		"Cantilever Scaffolding",
		"Hanging Scaffolding",
		"Mobile Scaffolding",
		"Access Tower Scaffolding",
	}
	pl := Playlist{Title: "Video Gallery"}
	for i, title := range titles {
		pl.Tracks = append(pl.Tracks, Track{
			Title:    title,
			Source:   fmt.Sprintf("assets/home/video%d.mp4", i+1),
			Duration: time.Duration(45+i*15) * time.Second,
		})
	}
	return pl
}
