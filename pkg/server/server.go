// Package server exposes the graphling client over HTTP with gin.
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/soundprediction/graphling"
	"github.com/soundprediction/graphling/pkg/config"
	"github.com/soundprediction/graphling/pkg/server/handlers"
	"github.com/soundprediction/graphling/pkg/types"
)

// Server represents the HTTP server
type Server struct {
	config    *config.Config
	router    *gin.Engine
	graphling graphling.Graphling
	server    *http.Server
}

// New creates a new server instance
func New(cfg *config.Config, client graphling.Graphling) *Server {
	return &Server{
		config:    cfg,
		graphling: client,
	}
}

// Setup sets up the server routes and middleware
func (s *Server) Setup() {
	gin.SetMode(s.config.Server.Mode)

	s.router = gin.New()
	s.router.Use(gin.Logger())
	s.router.Use(gin.Recovery())
	s.router.Use(corsMiddleware())
	s.router.Use(contextMiddleware())

	s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.router,
	}
}

// setupRoutes sets up all the routes
func (s *Server) setupRoutes() {
	healthHandler := handlers.NewHealthHandler(s.graphling)
	ingestHandler := handlers.NewIngestHandler(s.graphling)
	retrieveHandler := handlers.NewRetrieveHandler(s.graphling)
	communityHandler := handlers.NewCommunityHandler(s.graphling)

	// Health endpoints
	s.router.GET("/health", healthHandler.HealthCheck)
	s.router.GET("/ready", healthHandler.ReadinessCheck)
	s.router.GET("/live", healthHandler.LivenessCheck)
	s.router.GET("/health/detailed", healthHandler.DetailedHealthCheck)

	// API v1 routes
	v1 := s.router.Group("/api/v1")
	{
		ingest := v1.Group("/ingest")
		{
			ingest.POST("/graph", ingestHandler.IngestGraph)
			ingest.POST("/documents", ingestHandler.IngestDocuments)
		}

		v1.POST("/search", retrieveHandler.Search)
		v1.GET("/entities", retrieveHandler.FindEntities)

		communities := v1.Group("/communities")
		{
			communities.POST("/detect", communityHandler.Detect)
			communities.GET("", communityHandler.List)
		}
	}
}

// Router returns the configured gin engine. Setup must have been called.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start starts the server
func (s *Server) Start() error {
	fmt.Printf("Starting server on %s\n", s.server.Addr)
	return s.server.ListenAndServe()
}

// Stop stops the server gracefully
func (s *Server) Stop(ctx context.Context) error {
	fmt.Println("Stopping server...")
	return s.server.Shutdown(ctx)
}

// corsMiddleware adds CORS headers
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Header("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// contextMiddleware extracts context information from headers
func contextMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		userID := c.GetHeader("X-User-ID")
		if userID != "" {
			ctx = context.WithValue(ctx, types.ContextKeyUserID, userID)
		}

		sessionID := c.GetHeader("X-Session-ID")
		if sessionID != "" {
			ctx = context.WithValue(ctx, types.ContextKeySessionID, sessionID)
		}

		ctx = context.WithValue(ctx, types.ContextKeyRequestSource, "server")

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
