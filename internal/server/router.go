package server

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/contentforge/moderation-backend/internal/handlers"
	"github.com/contentforge/moderation-backend/internal/middleware"
)

type RouterConfig struct {
	AuthHandler      *handlers.AuthHandler
	AuthMiddleware   *middleware.AuthMiddleware
	CandidateHandler *handlers.CandidateHandler
	QueueHandler     *handlers.QueueHandler
	ReviewHandler    *handlers.ReviewHandler
	EventsHandler    *handlers.EventsHandler
	AllowOrigins     []string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()
	router.Use(otelgin.Middleware("moderation-backend"))

	allowOrigins := cfg.AllowOrigins
	if len(allowOrigins) == 0 {
		allowOrigins = []string{"http://localhost:3000"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     trimOrigins(allowOrigins),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// Public
	router.GET("/healthcheck", handlers.HealthCheck)
	router.POST("/register", cfg.AuthHandler.Register)
	router.POST("/login", cfg.AuthHandler.Login)

	// Protected
	api := router.Group("/api")
	api.Use(cfg.AuthMiddleware.RequireAuth())
	// Ingestion (generator callback)
	api.POST("/candidates", cfg.CandidateHandler.Ingest)
	// Queue reads
	api.GET("/queue", cfg.QueueHandler.GetQueue)
	api.GET("/queue/statistics", cfg.QueueHandler.GetStatistics)
	api.GET("/queue/:id", cfg.QueueHandler.GetRecord)
	// Single-record transitions
	api.POST("/queue/:id/review", cfg.ReviewHandler.BeginReview)
	api.POST("/queue/:id/approve", cfg.ReviewHandler.Approve)
	api.POST("/queue/:id/reject", cfg.ReviewHandler.Reject)
	// Bulk transitions
	api.POST("/queue/bulk/approve", cfg.ReviewHandler.BulkApprove)
	api.POST("/queue/bulk/reject", cfg.ReviewHandler.BulkReject)
	// Live queue events for the dashboard
	api.GET("/events", cfg.EventsHandler.Stream)

	return router
}

func trimOrigins(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, origin := range origins {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			out = append(out, origin)
		}
	}
	return out
}
