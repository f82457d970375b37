package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/showreel/internal/api"
	"github.com/five82/showreel/internal/config"
	"github.com/five82/showreel/internal/engine"
	"github.com/five82/showreel/internal/media/mpv"
	"github.com/five82/showreel/internal/media/sim"
	"github.com/five82/showreel/internal/playback"
	"github.com/five82/showreel/internal/playlist"
	"github.com/five82/showreel/internal/prefs"
	"github.com/five82/showreel/internal/ui"
)

// Options configure a showreel run. Non-empty fields override the config file.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/showreel/prefs.toml
	Playlist   string
	Backend    string
	APIBind    string
	// Headless skips the TUI and runs until ctx is cancelled, logging a
	// status line every ReportEvery.
	Headless    bool
	ReportEvery time.Duration
}

// Run boots the player until the user quits or the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := applyOverrides(&cfg, opts); err != nil {
		return err
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}
	userPrefs, _ := prefs.Load(prefsPath)

	pl, err := loadPlaylist(cfg.Playlist)
	if err != nil {
		return err
	}

	logFile, err := setupLogging(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logFile.Close() }()

	backend, err := newBackend(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := backend.Close(); err != nil {
			log.Printf("close %s backend: %v", cfg.Backend, err)
		}
	}()

	ctrl, err := playback.NewController(pl, backend,
		playback.WithSeekStep(cfg.SeekStep.Seconds()),
		playback.WithMuted(userPrefs.Muted),
	)
	if err != nil {
		return fmt.Errorf("init player: %w", err)
	}

	eng := engine.New(ctrl, nil, engine.Options{HideAfter: cfg.ControlsHideAfter})

	runCtx, cancel := context.WithCancel(ctx)
	go func() {
		if err := eng.Run(runCtx); err != nil {
			log.Printf("engine stopped: %v", err)
		}
	}()
	defer func() {
		cancel()
		<-eng.Done()
	}()
	log.Printf("showreel started: %d tracks, %s backend", pl.Len(), cfg.Backend)

	if cfg.APIBind != "" {
		srv := api.NewServer(cfg.APIBind, eng)
		if err := srv.Start(); err != nil {
			return fmt.Errorf("start api: %w", err)
		}
		defer func() {
			if err := srv.Stop(); err != nil {
				log.Printf("stop api: %v", err)
			}
		}()
	}

	if opts.Headless {
		StartReporter(runCtx, eng, opts.ReportEvery)
		<-runCtx.Done()
		return nil
	}

	return ui.Run(ui.Options{
		Context:   runCtx,
		Player:    eng,
		ThemeName: userPrefs.Theme,
		PrefsPath: prefsPath,
		LogPath:   cfg.LogPath,
	})
}

func applyOverrides(cfg *config.Config, opts Options) error {
	if opts.Backend != "" {
		if err := cfg.SetBackend(opts.Backend); err != nil {
			return err
		}
	}
	if opts.Playlist != "" {
		cfg.Playlist = opts.Playlist
	}
	if opts.APIBind != "" {
		cfg.APIBind = opts.APIBind
	}
	return nil
}

func loadPlaylist(path string) (playlist.Playlist, error) {
	if path == "" {
		return playlist.Default(), nil
	}
	pl, err := playlist.Load(path)
	if err != nil {
		return playlist.Playlist{}, fmt.Errorf("load playlist: %w", err)
	}
	return pl, nil
}

// setupLogging sends the standard logger to the log file; the terminal
// belongs to the TUI.
func setupLogging(cfg config.Config) (*os.File, error) {
	if err := os.MkdirAll(cfg.LogDir(), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := tea.LogToFile(cfg.LogPath, "showreel")
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}

func newBackend(cfg config.Config) (playback.Backend, error) {
	switch cfg.Backend {
	case config.BackendSim:
		return sim.New(sim.Options{}), nil
	case config.BackendMPV:
		return mpv.New(mpv.Options{Binary: cfg.MPVPath}), nil
	}
	return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
}
