// Package prefs persists the choices a viewer makes in the player: the colour
// theme and whether audio starts muted. Preferences are stored in
// ~/.config/showreel/prefs.toml.
package prefs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// Prefs holds user preferences.
type Prefs struct {
	Theme string `toml:"theme"`
	Muted bool   `toml:"muted"`
}

const (
	defaultPrefsPath = "~/.config/showreel/prefs.toml"
	defaultTheme     = "Nightfox"
)

// Default returns the preferences of a first run.
func Default() Prefs {
	return Prefs{Theme: defaultTheme}
}

// DefaultPath returns the default preferences file path.
func DefaultPath() string {
	return defaultPrefsPath
}

// Load reads preferences from path (empty means DefaultPath). A missing,
// unreadable or malformed file yields Default; the error is always nil so a
// bad prefs file never stops the player.
func Load(path string) (Prefs, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Default(), nil
	}
	data, err := os.ReadFile(resolved)
	if err != nil {
		return Default(), nil
	}

	p := Default()
	if err := toml.Unmarshal(data, &p); err != nil {
		return Default(), nil
	}
	return p.normalized(), nil
}

// Save writes p to path, creating directories as needed. The file is
// replaced atomically so a crash never leaves half a file behind.
func Save(path string, p Prefs) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	dir := filepath.Dir(resolved)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}

	data, err := toml.Marshal(p.normalized())
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".prefs-*.toml")
	if err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write prefs: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}
	if err := os.Rename(tmp.Name(), resolved); err != nil {
		return fmt.Errorf("replace prefs: %w", err)
	}
	return nil
}

func (p Prefs) normalized() Prefs {
	p.Theme = strings.TrimSpace(p.Theme)
	if p.Theme == "" {
		p.Theme = defaultTheme
	}
	return p
}

func resolvePath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		trimmed = defaultPrefsPath
	}
	if rest, ok := strings.CutPrefix(trimmed, "~"); ok {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, rest)
	}
	return filepath.Abs(trimmed)
}
