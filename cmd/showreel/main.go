package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/five82/showreel/internal/app"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "override config path (optional)")
	playlistPath := flag.String("playlist", "", "playlist manifest (optional, defaults to the built-in gallery)")
	backend := flag.String("backend", "", "media backend: sim or mpv (optional)")
	apiBind := flag.String("api", "", "serve the remote control API on this address (optional)")
	headless := flag.Bool("headless", false, "run without the TUI")
	remoteAddr := flag.String("remote", "", "send a command to a running showreel API instead of starting a player")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if *remoteAddr != "" {
		if err := app.Remote(ctx, *remoteAddr, flag.Args(), os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "showreel: %v\n", err)
			return 1
		}
		return 0
	}

	opts := app.Options{
		ConfigPath: *configPath,
		Playlist:   *playlistPath,
		Backend:    *backend,
		APIBind:    *apiBind,
		Headless:   *headless,
	}

	if err := app.Run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "showreel: %v\n", err)
		return 1
	}
	return 0
}
