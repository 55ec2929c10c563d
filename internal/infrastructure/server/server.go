package server

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/formlab/playground/internal/api/http"
	"github.com/formlab/playground/internal/api/middleware"
	"github.com/formlab/playground/internal/api/ws"
	"github.com/formlab/playground/internal/catalog"
	"github.com/formlab/playground/internal/demo"
	"github.com/formlab/playground/internal/engine"
	"github.com/formlab/playground/internal/engine/sandbox"
	"github.com/formlab/playground/internal/infrastructure/config"
	"github.com/formlab/playground/internal/infrastructure/logging"
	"github.com/formlab/playground/internal/infrastructure/monitoring"
	"github.com/formlab/playground/internal/library"
)

// Server wraps the HTTP server and dependencies
type Server struct {
	router   *gin.Engine
	engine   *engine.Engine
	sessions *demo.Manager
	catalog  *catalog.Catalog
	logger   *logging.Logger
	config   *config.Config
	metrics  *monitoring.Metrics
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config) (*Server, error) {
	// Initialize logger
	var logger *logging.Logger
	if cfg.Logging.Development {
		logger = logging.NewDevelopment()
	} else {
		logger = logging.NewDefault()
	}

	logger.Info("Initializing playground server",
		zap.String("port", cfg.Server.Port),
		zap.String("catalog", cfg.Catalog.Path),
	)

	// Initialize metrics first (needed by other components)
	metrics := monitoring.NewMetrics()

	// Load the demo catalog. Remote units are fetched here so a broken
	// catalog fails startup, not a visitor's first click.
	cat, err := catalog.Load(cfg.Catalog.Path, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load demo catalog: %w", err)
	}

	// Initialize the compile engine with the component library scope
	scope := library.Default()
	eng, err := engine.New(scope, engine.Options{
		PoolSize: cfg.Sandbox.PoolSize,
		Sandbox: sandbox.Config{
			Timeout:       cfg.Sandbox.Timeout,
			MaxCallStack:  cfg.Sandbox.MaxCallStack,
			EnableConsole: true,
		},
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize engine: %w", err)
	}
	logger.Info("Compile engine initialized", zap.Int("pool_size", cfg.Sandbox.PoolSize))
	metrics.WatchPoolAvailable(eng.PoolAvailable)

	// Initialize session manager
	sessions := demo.NewManager(eng, cat, logger).WithMetrics(metrics)

	// Create router
	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Add middleware
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig(cfg.CORS.Origins)))
	router.Use(middleware.Gzip())
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

	// Create handlers
	handlers := http.NewHandlers(sessions, cat, eng)
	wsHandler := ws.NewHandler(sessions, logger).WithMetrics(metrics)

	// Register routes
	router.GET("/", handlers.Root)
	router.GET("/health", handlers.Health)

	// Catalog
	router.GET("/demos", handlers.ListDemos)
	router.GET("/demos/:id", handlers.GetDemo)
	router.POST("/demos/:id/open", handlers.OpenDemo)

	// Sessions
	router.GET("/sessions/:id", handlers.GetSession)
	router.POST("/sessions/:id/run", handlers.RunSession)
	router.PUT("/sessions/:id/source", handlers.UpdateSource)
	router.GET("/sessions/:id/source", handlers.GetSource)
	router.DELETE("/sessions/:id", handlers.CloseSession)

	// One-shot compile for embedded snippets
	router.POST("/compile", handlers.Compile)

	// WebSocket
	router.GET("/stream", wsHandler.HandleConnection)

	// Metrics endpoints
	reporter := http.NewMetricsReporter(metrics, eng)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
	router.GET("/metrics/json", reporter.GetMetricsJSON)

	logger.Info("Server initialized successfully")

	return &Server{
		router:   router,
		engine:   eng,
		sessions: sessions,
		catalog:  cat,
		logger:   logger,
		config:   cfg,
		metrics:  metrics,
	}, nil
}

// Run starts the HTTP server
func (s *Server) Run() error {
	addr := s.config.Server.Host + ":" + s.config.Server.Port
	s.logger.Info("Starting HTTP server", zap.String("addr", addr))
	return s.router.Run(addr)
}

// Close gracefully shuts down the server
func (s *Server) Close() error {
	s.logger.Info("Shutting down server...")

	if err := s.engine.Close(); err != nil {
		s.logger.Error("Failed to close engine", zap.Error(err))
		return fmt.Errorf("failed to close engine: %w", err)
	}
	s.logger.Info("Closed sandbox pool")

	// Sync logger before exit
	s.logger.Sync()

	return nil
}
