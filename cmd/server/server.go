package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"causemap/internal/api"
	"causemap/internal/config"
	"causemap/internal/extraction"
	"causemap/internal/fishbone"
	"causemap/internal/listmode"
	"causemap/internal/pipeline"
	"causemap/internal/prompts"
	"causemap/internal/review"
	"causemap/pkg/database"
	"causemap/pkg/lifecycle"
	"causemap/pkg/module"
	"causemap/pkg/storage"
)

const reviewSweepInterval = 10 * time.Minute

// Server owns the HTTP listener and the subsystem lifecycle.
type Server struct {
	cfg    *config.Config
	logger *slog.Logger
	lc     *lifecycle.Coordinator
	http   *http.Server
}

// NewServer wires the subsystems and builds the HTTP server.
func NewServer(cfg *config.Config) (*Server, error) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	lc := lifecycle.New()

	db, err := database.New(&cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}
	if err := db.Start(lc); err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}

	archive, err := storage.New(&cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}
	if err := archive.Start(lc); err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}

	promptSystem := prompts.New(cfg.API.PromptDir)
	extractor := extraction.New(&cfg.Extraction, promptSystem, logger)

	lists := listmode.New(db, cfg.API.Pagination, logger)
	bones := fishbone.New(db, logger)

	reviews := review.NewStore(cfg.API.ReviewTTLDuration())
	startReviewSweeper(lc, reviews, logger)

	runtime := &pipeline.Runtime{
		Lists:     lists,
		Fishbone:  bones,
		Extractor: extractor,
		Archive:   archive,
		Reviews:   reviews,
		Logger:    logger,
	}

	router := module.NewRouter()
	router.Mount(api.NewModule(&api.Runtime{
		Config:   cfg,
		Logger:   logger,
		Lists:    lists,
		Fishbone: bones,
		Prompts:  promptSystem,
		Pipeline: runtime,
	}))
	registerHealth(router, lc)

	return &Server{
		cfg:    cfg,
		logger: logger,
		lc:     lc,
		http: &http.Server{
			Addr:         cfg.Server.Addr(),
			Handler:      router,
			ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
			WriteTimeout: cfg.Server.WriteTimeoutDuration(),
			IdleTimeout:  cfg.Server.IdleTimeoutDuration(),
		},
	}, nil
}

// Start runs the startup hooks and begins serving. It blocks until the
// listener stops.
func (s *Server) Start() error {
	s.lc.WaitForStartup()
	s.logger.Info("server listening",
		"addr", s.http.Addr,
		"environment", s.cfg.Environment)

	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

// Shutdown drains the HTTP server and runs the shutdown hooks.
func (s *Server) Shutdown() error {
	timeout := s.cfg.Server.ShutdownTimeoutDuration()
	s.logger.Info("shutting down", "timeout", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.http.Shutdown(ctx); err != nil {
		s.logger.Error("http shutdown failed", "error", err)
	}

	return s.lc.Shutdown(timeout)
}

// startReviewSweeper drops expired reviews on an interval until shutdown.
func startReviewSweeper(lc *lifecycle.Coordinator, reviews *review.Store, logger *slog.Logger) {
	go func() {
		ticker := time.NewTicker(reviewSweepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-lc.Context().Done():
				return
			case <-ticker.C:
				if removed := reviews.Sweep(); removed > 0 {
					logger.Info("expired reviews swept", "removed", removed)
				}
			}
		}
	}()
}
