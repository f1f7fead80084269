// Package server exposes mapped records over HTTP.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/fp-wemove/ingrid-iplug-dsc/internal/engine"
	"github.com/fp-wemove/ingrid-iplug-dsc/internal/script"
	"github.com/fp-wemove/ingrid-iplug-dsc/pkg/core"
)

const reloadDebounce = 100 * time.Millisecond

// Server serves IDF and index documents of catalog records.
type Server struct {
	engine *engine.Engine
	store  core.Store
	port   int
	watch  bool
	logger *slog.Logger
}

// Config holds configuration for the server.
type Config struct {
	Engine *engine.Engine
	Port   int
	// Watch reloads the index script when its file changes.
	Watch  bool
	Logger *slog.Logger
}

// NewServer creates a new server instance.
func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{
		engine: cfg.Engine,
		store:  cfg.Engine.GetStateStore(),
		port:   cfg.Port,
		watch:  cfg.Watch,
		logger: logger,
	}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewMux()
	r.Use(
		middleware.RequestID,
		middleware.Recoverer,
		middleware.Compress(5),
	)

	h := &handlers{engine: s.engine, store: s.store, logger: s.logger}

	r.Get("/healthz", h.health)
	r.Route("/records", func(r chi.Router) {
		r.Get("/", h.listRecords)
		r.Get("/{id}/idf", h.recordIDF)
		r.Get("/{id}/index", h.recordIndex)
	})
	r.Route("/runs", func(r chi.Router) {
		r.Post("/", h.startRun)
		r.Get("/latest", h.latestRun)
		r.Get("/{id}", h.getRun)
		r.Get("/{id}/errors", h.runErrors)
	})
	return r
}

// Serve starts the server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("starting server", "addr", addr)

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.watch {
		eg.Go(func() error {
			return s.watchScript(egctx)
		})
	}

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// watchScript reloads the index script whenever its file is written or
// replaced. The parent directory is watched so editors that save through a
// rename are seen as well.
func (s *Server) watchScript(ctx context.Context) error {
	location := s.engine.IndexScript()
	if location == "" || strings.HasPrefix(location, script.PresetPrefix) {
		s.logger.Debug("no index script file to watch", "script", location)
		<-ctx.Done()
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	path, err := filepath.Abs(location)
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		s.logger.Error("failed to watch index script", "script", path, "error", err)
		// continue without watching
		<-ctx.Done()
		return nil
	}
	s.logger.Info("watching index script", "script", path)

	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path || event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(reloadDebounce, func() {
				s.logger.Debug("index script changed, reloading", "file", event.Name)
				if err := s.engine.ReloadIndexScript(); err != nil {
					s.logger.Error("index script reload failed", "error", err)
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Error("watcher error", "error", err)
		}
	}
}
