// Package api exposes the player over a small HTTP remote-control API.
package api

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/five82/showreel/internal/engine"
	"github.com/five82/showreel/internal/playback"
	"github.com/five82/showreel/internal/playlist"
	"github.com/five82/showreel/internal/state"
)

var (
	ErrServerAlreadyRunning = errors.New("server is already running")
	ErrServerNotRunning     = errors.New("server is not running")
)

// Player is the part of the engine the API drives.
type Player interface {
	Do(ctx context.Context, cmd engine.Command) (playback.State, error)
	Snapshot() state.Snapshot
	Playlist() playlist.Playlist
}

// Server represents the HTTP server
type Server struct {
	addr     string
	player   Player
	router   *chi.Mux
	server   *http.Server
	listener net.Listener
	running  bool
	mu       sync.RWMutex
}

// NewServer creates a server that will listen on addr.
func NewServer(addr string, player Player) *Server {
	s := &Server{
		addr:   addr,
		player: player,
		router: chi.NewRouter(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(10 * time.Second))

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/status", s.handleStatus)
		r.Get("/playlist", s.handlePlaylist)
		r.Post("/play", s.handlePlay)
		r.Post("/mute", s.handleMute)
		r.Post("/seek", s.handleSeek)
		r.Post("/tracks/{index}", s.handleSelectTrack)
	})
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return ErrServerAlreadyRunning
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to create listener: %w", err)
	}

	s.listener = listener
	httpServer := &http.Server{
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	s.server = httpServer
	s.running = true

	go func() {
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("api server error: %v", err)
		}
	}()

	log.Printf("api listening on %s", listener.Addr())
	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return ErrServerNotRunning
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.running = false
	s.server = nil
	s.listener = nil
	return nil
}

// IsRunning returns whether the server is currently running
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Addr returns the listening address, which differs from the configured one
// when the port is 0.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}
