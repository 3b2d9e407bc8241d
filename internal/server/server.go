// Package server exposes the combination finder over HTTP.
//
// Routes:
//
//	GET  /api/health
//	POST /api/combinations          JSON request -> JSON combinations
//	POST /api/combinations/upload   multipart (.xlsx or .csv) -> JSON combinations
//	POST /api/combinations/export   JSON request -> CSV or XLSX attachment
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mohamed-kadi/invoice-combination-finder/internal/config"
)

// shutdownTimeout bounds how long Run waits for in-flight requests.
const shutdownTimeout = 10 * time.Second

// Server wires the HTTP API to the combination engine.
type Server struct {
	cfg     *config.MainConfig
	logger  *zap.Logger
	version string
	engine  *gin.Engine
}

// New builds the router. cfg.Server supplies CORS, rate limit and upload
// settings; cfg.MaxInvoices and cfg.SearchTimeout guard every search.
func New(cfg *config.MainConfig, logger *zap.Logger, version string) *Server {
	s := &Server{
		cfg:     cfg,
		logger:  logger,
		version: version,
		engine:  gin.New(),
	}
	s.routes()
	return s
}

// Handler returns the http.Handler serving the API.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() {
	limiter := NewRateLimiter(s.cfg.Server.RateLimitPerMinute, s.cfg.Server.RateLimitBurst)

	s.engine.Use(
		Recovery(s.logger),
		RequestLogger(s.logger),
		cors.New(corsConfig(s.cfg.Server.AllowedOrigins)),
	)

	api := s.engine.Group("/api")
	api.GET("/health", s.health)

	combinations := api.Group("/combinations", limiter.Middleware(s.logger))
	combinations.POST("", s.findCombinations)
	combinations.POST("/upload", s.uploadCombinations)
	combinations.POST("/export", s.exportCombinations)
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders: []string{"Content-Disposition", RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

// Run serves on cfg.Server.Address until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Address,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}
