package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/deephealth-lab/community/internal/cache"
	"github.com/deephealth-lab/community/internal/database"
	"github.com/deephealth-lab/community/internal/handlers"
	"github.com/deephealth-lab/community/internal/middleware"
)

type Server struct {
	db      database.Service
	cache   *cache.FeedCache
	handler *handlers.Handler
}

// NewServer creates and configures a new server
func NewServer() *http.Server {
	// Initialize database
	db := database.New()

	// Feed cache is optional; no REDIS_ADDR means no caching
	feedCache, err := cache.New(context.Background(), os.Getenv("REDIS_ADDR"), os.Getenv("REDIS_PASSWORD"))
	if err != nil {
		log.Fatalf("Failed to connect feed cache: %v", err)
	}

	// Create unified handler
	handler := handlers.NewHandler(db, feedCache)

	// Create server instance
	newServer := &Server{
		db:      db,
		cache:   feedCache,
		handler: handler,
	}

	// Configure Gin router
	router := newServer.RegisterRoutes()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080" // local dev fallback
	}

	// Create HTTP server
	server := &http.Server{
		Addr:         "0.0.0.0:" + port,
		Handler:      router,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	log.Printf("🚀 Server starting on port %s\n", port)
	fmt.Println("📝 Press Ctrl+C to stop the server")

	return server
}

// RegisterRoutes sets up all application routes
func (s *Server) RegisterRoutes() *gin.Engine {
	r := gin.Default()

	// CORS configuration
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * 3600,
	}))

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "database": s.db.Health()})
	})

	// API routes
	api := r.Group("/api/v1")
	{
		// Auth routes (public)
		api.POST("/auth/register", s.handler.Auth.Register)
		api.POST("/auth/login", s.handler.Auth.Login)

		// Community routes (authentication + researcher access required)
		community := api.Group("/community")
		community.Use(middleware.AuthMiddleware(), middleware.RequireCommunityAccess())
		{
			community.GET("/posts", s.handler.Community.GetFeed)
			community.GET("/posts/:id", s.handler.Community.GetPost)
			community.POST("/posts", s.handler.Community.CreatePost)
			community.POST("/posts/:id/like", s.handler.Community.ToggleLike)
			community.POST("/posts/:id/dislike", s.handler.Community.ToggleDislike)
			community.POST("/posts/:id/comments", s.handler.Community.CreateComment)
		}

		// Protected profile route
		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			protected.GET("/me", s.handler.Auth.GetMe)
		}
	}

	return r
}
