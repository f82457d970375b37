package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Backend names accepted in the backend field.
const (
	BackendSim = "sim"
	BackendMPV = "mpv"
)

// Config holds the settings showreel reads at startup.
type Config struct {
	Backend           string
	MPVPath           string
	Playlist          string
	ControlsHideAfter time.Duration
	SeekStep          time.Duration
	APIBind           string
	LogPath           string
}

const (
	defaultConfigPath = "~/.config/showreel/config.toml"
	defaultLogPath    = "~/.local/state/showreel/showreel.log"
	defaultMPVPath    = "mpv"
	defaultHideAfter  = 3 * time.Second
	defaultSeekStep   = 5 * time.Second
)

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Backend:           BackendSim,
		MPVPath:           defaultMPVPath,
		ControlsHideAfter: defaultHideAfter,
		SeekStep:          defaultSeekStep,
		LogPath:           mustExpand(defaultLogPath),
	}
}

// Load locates and parses the config, falling back to defaults when missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		Backend           string `toml:"backend"`
		MPVPath           string `toml:"mpv_path"`
		Playlist          string `toml:"playlist"`
		ControlsHideAfter string `toml:"controls_hide_after"`
		SeekStep          string `toml:"seek_step"`
		APIBind           string `toml:"api_bind"`
		LogPath           string `toml:"log_path"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if v := strings.ToLower(strings.TrimSpace(raw.Backend)); v != "" {
		cfg.Backend = v
	}
	if err := cfg.validateBackend(); err != nil {
		return Config{}, err
	}
	if v := strings.TrimSpace(raw.MPVPath); v != "" {
		// Bare names are looked up in PATH.
		if strings.ContainsRune(v, filepath.Separator) || strings.HasPrefix(v, "~") {
			v = mustExpand(v)
		}
		cfg.MPVPath = v
	}
	if v := strings.TrimSpace(raw.Playlist); v != "" {
		cfg.Playlist = mustExpand(v)
	}
	if cfg.ControlsHideAfter, err = parseDuration("controls_hide_after", raw.ControlsHideAfter, defaultHideAfter); err != nil {
		return Config{}, err
	}
	if cfg.SeekStep, err = parseDuration("seek_step", raw.SeekStep, defaultSeekStep); err != nil {
		return Config{}, err
	}
	cfg.APIBind = strings.TrimSpace(raw.APIBind)
	if v := strings.TrimSpace(raw.LogPath); v != "" {
		cfg.LogPath = mustExpand(v)
	}

	return cfg, nil
}

// SetBackend overrides the backend, validating the name.
func (c *Config) SetBackend(name string) error {
	c.Backend = strings.ToLower(strings.TrimSpace(name))
	return c.validateBackend()
}

// LogDir returns the directory holding the log file.
func (c Config) LogDir() string {
	if strings.TrimSpace(c.LogPath) == "" {
		return filepath.Dir(mustExpand(defaultLogPath))
	}
	return filepath.Dir(c.LogPath)
}

func (c Config) validateBackend() error {
	switch c.Backend {
	case BackendSim, BackendMPV:
		return nil
	}
	return fmt.Errorf("unknown backend %q (want %s or %s)", c.Backend, BackendSim, BackendMPV)
}

func parseDuration(field, value string, fallback time.Duration) (time.Duration, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(trimmed)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", field, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", field, trimmed)
	}
	return d, nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
