package app

import (
	"github.com/contentforge/moderation-backend/internal/handlers"
	"github.com/contentforge/moderation-backend/internal/logger"
	"github.com/contentforge/moderation-backend/internal/realtime/bus"
)

type Handlers struct {
	Auth      *handlers.AuthHandler
	Candidate *handlers.CandidateHandler
	Queue     *handlers.QueueHandler
	Review    *handlers.ReviewHandler
	Events    *handlers.EventsHandler
}

func wireHandlers(log *logger.Logger, serviceset Services, eventBus bus.Bus) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Auth:      handlers.NewAuthHandler(serviceset.Auth),
		Candidate: handlers.NewCandidateHandler(serviceset.Ingest),
		Queue:     handlers.NewQueueHandler(serviceset.Queue),
		Review:    handlers.NewReviewHandler(serviceset.Transition, serviceset.Bulk),
		Events:    handlers.NewEventsHandler(log, eventBus),
	}
}
