// Package server provides the HTTP API for Meigen.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/hyperjump/meigen/internal/config"
	"github.com/hyperjump/meigen/internal/ingest"
	"github.com/hyperjump/meigen/internal/search"
)

// Server is the HTTP server for the Meigen API.
type Server struct {
	router       *search.Router
	orchestrator *ingest.Orchestrator
	config       *config.ServerConfig
	logger       *zap.Logger
	server       *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(
	router *search.Router,
	orch *ingest.Orchestrator,
	cfg *config.ServerConfig,
	logger *zap.Logger,
) *Server {
	return &Server{
		router:       router,
		orchestrator: orch,
		config:       cfg,
		logger:       logger,
	}
}

// Routes builds the chi handler tree.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(5 * time.Minute))
	r.Use(middleware.Compress(5))

	r.Post("/api/scrape", s.handleScrape)
	r.Get("/api/search", s.handleSearch)
	r.Get("/api/stats", s.handleStats)
	r.Get("/health", s.handleHealth)

	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Routes(),
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
