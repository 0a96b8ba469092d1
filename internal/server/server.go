package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chatgraph/config"
	"chatgraph/internal/handler"
	"chatgraph/internal/middleware"
	"chatgraph/internal/websocket"
	"chatgraph/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	config     *config.Config
	logger     *logger.Logger
}

var (
	ReleaseMode = "release"
	DebugMode   = "debug"
	TestMode    = "test"
)

type Handlers struct {
	Auth      *handler.AuthHandler
	GraphQL   *handler.GraphQLHandler
	Upload    *handler.UploadHandler
	Health    *handler.HealthHandler
	WebSocket *websocket.Handler
}

func New(cfg *config.Config, l *logger.Logger) *Server {
	if cfg.AppMode == ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	} else if cfg.AppMode == TestMode {
		gin.SetMode(gin.TestMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%s", cfg.AppPort),
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
		},
		engine: engine,
		config: cfg,
		logger: l,
	}
}

// SetupRoutes wires every endpoint. limiter may be nil, which disables rate
// limiting.
func (s *Server) SetupRoutes(handlers *Handlers, auth middleware.Authenticator, limiter middleware.Limiter) {
	s.engine.Use(middleware.RequestIDMiddleware())
	s.engine.Use(middleware.LoggingMiddleware(s.logger))
	s.engine.Use(middleware.ErrorHandler(s.logger))

	s.engine.GET("/ping", handlers.Health.Ping)
	s.engine.GET("/health", handlers.Health.Health)
	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authRoutes := s.engine.Group("/v1/auth")
	if limiter != nil {
		authRoutes.Use(middleware.AuthRateLimitMiddleware(limiter))
	}
	{
		authRoutes.POST("/register", handlers.Auth.Register)
		authRoutes.POST("/login", handlers.Auth.Login)
	}

	graphqlRoutes := s.engine.Group("/graphql", middleware.AuthMiddleware(auth))
	if limiter != nil {
		graphqlRoutes.Use(middleware.MutationRateLimitMiddleware(limiter))
	}
	graphqlRoutes.POST("", handlers.GraphQL.Serve)

	// Browsers cannot set headers on websocket upgrades; the token comes as a query parameter.
	s.engine.GET("/graphql/ws", handlers.WebSocket.Connect)

	uploads := s.engine.Group("/v1/uploads", middleware.AuthMiddleware(auth))
	uploads.POST("/picture", handlers.Upload.PresignPicture)
}

// OnShutdown registers f to run when the server shuts down. Hijacked
// websocket connections are not closed by http.Server.Shutdown.
func (s *Server) OnShutdown(f func()) {
	s.httpServer.RegisterOnShutdown(f)
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) Start() error {
	go func() {
		if s.logger != nil {
			s.logger.Infof("Starting the server on port %s...", s.config.AppPort)
		}
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if s.logger != nil {
				s.logger.Errorf("Error in starting the server: %s", err)
			}
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	if s.logger != nil {
		s.logger.Infof("Server is running on :%s", s.config.AppPort)
	}

	<-quit

	if s.logger != nil {
		s.logger.Infof("Quitting signal received.. Shutting down after 5 seconds")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		if s.logger != nil {
			s.logger.Infof("Error in the graceful shutdown of the server: %s", err)
		}
		return err
	}

	if s.logger != nil {
		s.logger.Infof("Server stopped gracefully")
	}

	return nil
}
