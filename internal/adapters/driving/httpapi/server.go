// Package httpapi serves matching and ingestion over a JSON HTTP API.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/core/domain"
	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/core/ports/driving"
	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/logger"
)

// ErrMissingSearchService is returned when the search service is not provided.
var ErrMissingSearchService = errors.New("httpapi: search service is required")

// Ports aggregates the driving ports served over HTTP. Only Search is required;
// routes for a nil port are not registered.
type Ports struct {
	Search     driving.SearchService
	Experience driving.ExperienceMatchService
	Ingest     driving.IngestService
	Status     driving.StatusService
}

// Server is the HTTP API server.
type Server struct {
	ports  Ports
	router *gin.Engine
	server *http.Server
}

// New creates a server listening on cfg.Addr.
func New(cfg domain.ServerSettings, ports Ports) (*Server, error) {
	if ports.Search == nil {
		return nil, ErrMissingSearchService
	}

	switch cfg.Mode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
		gin.SetMode(cfg.Mode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{ports: ports, router: gin.New()}
	s.router.Use(requestID(), accessLog(), recovery())
	s.setupRoutes()

	s.server = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.health)

	v1 := s.router.Group("/api/v1")
	v1.POST("/search", s.search)

	if s.ports.Experience != nil {
		v1.GET("/nodes/:nodeId/experience-matches", s.experienceMatches)
		v1.DELETE("/nodes/:nodeId/experience-matches", s.invalidateMatches)
	}

	if s.ports.Ingest != nil {
		v1.POST("/chunks", s.createChunk)
		v1.GET("/chunks/:id", s.getChunk)
		v1.PUT("/chunks/:id/meta", s.updateChunkMeta)
		v1.POST("/edges", s.createEdge)
		v1.GET("/edges/:id", s.getEdge)
		v1.GET("/nodes/:nodeId/chunks", s.listNodeChunks)
		v1.DELETE("/nodes/:nodeId", s.deleteNode)
		v1.GET("/owners/:ownerId/chunks", s.listOwnerChunks)
		v1.DELETE("/owners/:ownerId", s.deleteOwner)
		v1.POST("/import", s.importBundle)
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening on %s", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}
