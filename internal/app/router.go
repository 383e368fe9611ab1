package app

import (
	"github.com/gin-gonic/gin"

	"github.com/contentforge/moderation-backend/internal/server"
)

func wireRouter(cfg Config, handlerset Handlers, middlewareset Middleware) *gin.Engine {
	return server.NewRouter(server.RouterConfig{
		AuthHandler:      handlerset.Auth,
		AuthMiddleware:   middlewareset.Auth,
		CandidateHandler: handlerset.Candidate,
		QueueHandler:     handlerset.Queue,
		ReviewHandler:    handlerset.Review,
		EventsHandler:    handlerset.Events,
		AllowOrigins:     cfg.AllowOrigins,
	})
}
