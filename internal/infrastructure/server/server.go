// Package server assembles the HTTP service: middleware stack, routes,
// pipeline wiring, and lifecycle.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apihttp "github.com/GriffinCanCode/APIForge/backend/internal/api/http"
	"github.com/GriffinCanCode/APIForge/backend/internal/api/middleware"
	"github.com/GriffinCanCode/APIForge/backend/internal/api/ws"
	"github.com/GriffinCanCode/APIForge/backend/internal/infrastructure/config"
	"github.com/GriffinCanCode/APIForge/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/APIForge/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/APIForge/backend/internal/pipeline"
	"github.com/GriffinCanCode/APIForge/backend/internal/renderer"
	"github.com/GriffinCanCode/APIForge/backend/internal/store"
)

// Server wraps the HTTP server and its dependencies.
type Server struct {
	router      *gin.Engine
	httpServer  *http.Server
	store       *store.FileStore
	logger      *logging.Logger
	config      *config.Config
	metrics     *monitoring.Metrics
	stopSweeper context.CancelFunc
}

// NewServer wires up the full service from configuration.
func NewServer(cfg *config.Config) (*Server, error) {
	var logger *logging.Logger
	if cfg.Logging.Development {
		logger = logging.NewDevelopment()
	} else {
		l, err := logging.New(logging.Config{
			Level:       cfg.Logging.Level,
			OutputPaths: []string{"stdout"},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to build logger: %w", err)
		}
		logger = l
	}

	logger.Info("Initializing APIForge server",
		zap.String("port", cfg.Server.Port),
		zap.String("store_path", cfg.Store.Path),
	)

	metrics := monitoring.NewMetrics()

	st, err := store.NewFileStore(cfg.Store.Path, logger,
		store.WithTTL(cfg.Store.TTL),
		store.WithEvictionHook(func(count int) {
			metrics.RecordExpirations(count)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	metrics.SetCacheEntries(st.Len())

	rend := renderer.NewHTTP(renderer.Config{
		Timeout:    cfg.Renderer.Timeout,
		Retries:    cfg.Renderer.Retries,
		RetryDelay: cfg.Renderer.RetryDelay,
		UserAgent:  cfg.Renderer.UserAgent,
	}, logger)

	pipe := pipeline.New(rend, st, metrics, logger, pipeline.Config{
		BaseURL:       cfg.Server.BaseURL,
		RefreshSecret: cfg.Refresh.Secret,
		ArtifactsDir:  cfg.Store.ArtifactsDir,
	})

	handlers := apihttp.NewHandlers(pipe, st, metrics, logger, cfg.Refresh)
	wsHandler := ws.NewHandler(pipe, logger)

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	router.GET("/health", handlers.Health)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	router.POST("/api/generate", handlers.Generate)
	router.GET("/api/generate/ws", wsHandler.HandleConnection)
	router.GET("/api/data/:slug", handlers.Data)
	router.GET("/api/refresh", handlers.Refresh)
	router.GET("/api/download/:slug", handlers.Download)

	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	st.StartSweeper(sweepCtx, cfg.Store.SweepInterval)

	logger.Info("Server initialized successfully")

	return &Server{
		router:      router,
		store:       st,
		logger:      logger,
		config:      cfg,
		metrics:     metrics,
		stopSweeper: stopSweeper,
	}, nil
}

// Router exposes the gin engine, mainly for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Run starts the HTTP server and blocks until it stops.
func (s *Server) Run() error {
	addr := s.config.Server.Host + ":" + s.config.Server.Port
	s.logger.Info("Starting HTTP server", zap.String("addr", addr))

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close gracefully shuts down the server.
func (s *Server) Close() error {
	s.logger.Info("Shutting down server...")

	s.stopSweeper()

	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("HTTP shutdown failed", zap.Error(err))
		}
	}

	if err := s.store.Close(); err != nil {
		return fmt.Errorf("failed to close store: %w", err)
	}

	_ = s.logger.Sync()
	return nil
}
