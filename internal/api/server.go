package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/martijn/cmdgate/internal/api/handler"
	"github.com/martijn/cmdgate/internal/api/middleware"
	"github.com/martijn/cmdgate/internal/core/service"
	"github.com/martijn/cmdgate/pkg/config"
)

type Server struct {
	router *gin.Engine
	srv    *http.Server
	config *config.Config
}

// NewServer creates the REST API server.
func NewServer(
	cfg *config.Config,
	authService *service.AuthService,
	executionService *service.ExecutionService,
) *Server {
	if !cfg.IsDevMode() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandlerMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.CORSOrigins))

	authHandler := handler.NewAuthHandler(authService)
	executeHandler := handler.NewExecuteHandler(executionService)
	historyHandler := handler.NewHistoryHandler(executionService)
	processHandler := handler.NewProcessHandler(executionService)

	// Public routes
	router.POST("/auth/token", authHandler.Token)
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Protected routes
	authMiddleware := middleware.AuthMiddleware(authService)

	executions := router.Group("/executions")
	executions.Use(authMiddleware)
	{
		executions.POST("", executeHandler.Execute)
		executions.GET("", historyHandler.ListExecutions)
		executions.GET("/:id", historyHandler.GetExecution)
	}

	router.POST("/validate", authMiddleware, executeHandler.Validate)

	history := router.Group("/history")
	history.Use(authMiddleware)
	{
		history.GET("", historyHandler.GetHistory)
		history.GET("/analysis", historyHandler.GetAnalysis)
	}

	processes := router.Group("/processes")
	processes.Use(authMiddleware)
	{
		processes.GET("", processHandler.ListProcesses)
		processes.DELETE("", processHandler.TerminateAll)
		processes.DELETE("/:pid", processHandler.TerminateProcess)
	}

	return &Server{
		router: router,
		config: cfg,
	}
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.APIHost, s.config.APIPort)

	s.srv = &http.Server{
		Addr:           addr,
		Handler:        s.router,
		ReadTimeout:    15 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20, // 1 MB
	}

	if s.config.SSLCert != "" && s.config.SSLKey != "" {
		return s.srv.ListenAndServeTLS(s.config.SSLCert, s.config.SSLKey)
	}
	return s.srv.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv != nil {
		return s.srv.Shutdown(ctx)
	}
	return nil
}
