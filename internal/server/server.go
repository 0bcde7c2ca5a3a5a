// Package server exposes the exploration engine over HTTP: a REST API
// for analysis uploads, filter/layout/camera actions, sessions, and
// exports, plus a WebSocket stream of frame snapshots.
package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/codegnosis/depspace/pkg/config"
	"github.com/codegnosis/depspace/pkg/model"
	"github.com/codegnosis/depspace/pkg/scene"
	"github.com/codegnosis/depspace/pkg/session"
	"github.com/codegnosis/depspace/pkg/store"
)

// Options wires the server's dependencies.
type Options struct {
	// Config carries the listener and backend settings.
	Config config.Config

	// Sessions persists exploration sessions.
	Sessions session.Store

	// Snapshots persists analysis snapshots by content hash.
	Snapshots store.Store

	// Logger receives request and lifecycle logs. Defaults to the
	// package-level logger.
	Logger *log.Logger
}

// Server owns one scene at a time and serves it to clients. The scene's
// frame loop runs on its own goroutine; all client interaction goes
// through dispatched actions and published frames, so handlers never
// touch scene internals directly.
type Server struct {
	opts   Options
	logger *log.Logger

	mu          sync.RWMutex
	scene       *scene.Scene
	graph       *model.Graph
	graphKey    string
	lastFrame   scene.Frame
	hasFrame    bool
	stopScene   context.CancelFunc
	sceneDone   chan struct{}
	framesDone  chan struct{}
	clients     map[string]*wsClient
	clientsDone sync.WaitGroup
}

// New creates a server. Both stores are required.
func New(opts Options) (*Server, error) {
	if err := opts.Config.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if opts.Sessions == nil {
		return nil, errors.New("server: session store is required")
	}
	if opts.Snapshots == nil {
		return nil, errors.New("server: snapshot store is required")
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Server{
		opts:    opts,
		logger:  opts.Logger,
		clients: make(map[string]*wsClient),
	}, nil
}

// Router builds the chi handler tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	if len(s.opts.Config.Server.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.opts.Config.Server.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/version", s.handleVersion)

		r.Post("/analysis", s.handleUploadAnalysis)
		r.Get("/graph", s.handleGraph)
		r.Get("/frame", s.handleFrame)
		r.Post("/actions", s.handleAction)
		r.Get("/missions", s.handleMissions)
		r.Get("/export", s.handleExport)

		r.Route("/snapshots", func(r chi.Router) {
			r.Get("/", s.handleListSnapshots)
			r.Post("/{key}/activate", s.handleActivateSnapshot)
		})

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", s.handleSaveSession)
			r.Get("/{id}", s.handleGetSession)
			r.Post("/{id}/restore", s.handleRestoreSession)
			r.Delete("/{id}", s.handleDeleteSession)
		})

		r.Get("/ws", s.handleWebSocket)
	})

	return r
}

// ListenAndServe runs the HTTP server until the context is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Config.Server.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("listening", "addr", s.opts.Config.Server.Addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.shutdownScene()
		s.closeClients()
		return srv.Shutdown(shutdownCtx)
	case err := <-errc:
		s.shutdownScene()
		s.closeClients()
		return err
	}
}

// currentScene returns the active scene, or nil before the first
// analysis upload.
func (s *Server) currentScene() *scene.Scene {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scene
}

// installScene replaces the running scene. The previous frame loop is
// stopped first; the new scene gets its own loop plus pump goroutines
// feeding lastFrame and the WebSocket clients.
func (s *Server) installScene(sc *scene.Scene, g *model.Graph, graphKey string) {
	s.shutdownScene()

	ctx, cancel := context.WithCancel(context.Background())

	s.mu.Lock()
	s.scene = sc
	s.graph = g
	s.graphKey = graphKey
	s.hasFrame = false
	s.stopScene = cancel
	s.sceneDone = make(chan struct{})
	s.framesDone = make(chan struct{})
	s.mu.Unlock()

	go func() {
		defer close(s.sceneDone)
		sc.Run(ctx)
	}()

	frames, cancelFrames := sc.Subscribe()
	go func() {
		defer close(s.framesDone)
		defer cancelFrames()
		for {
			select {
			case <-ctx.Done():
				return
			case f, ok := <-frames:
				if !ok {
					return
				}
				s.mu.Lock()
				s.lastFrame = f
				s.hasFrame = true
				s.mu.Unlock()
				s.broadcastFrame(f)
			}
		}
	}()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case ev := <-sc.Selections():
				s.broadcastSelection(ev)
			}
		}
	}()
}

// shutdownScene stops the active frame loop and its pumps.
func (s *Server) shutdownScene() {
	s.mu.Lock()
	cancel := s.stopScene
	sceneDone, framesDone := s.sceneDone, s.framesDone
	s.stopScene = nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-sceneDone
	<-framesDone
}

// latestFrame returns the most recent published frame.
func (s *Server) latestFrame() (scene.Frame, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastFrame, s.hasFrame
}
