package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/contentforge/moderation-backend/internal/logger"
	"github.com/contentforge/moderation-backend/internal/realtime"
	"github.com/contentforge/moderation-backend/internal/realtime/bus"
)

// EventsHandler streams queue events to dashboards over SSE.
type EventsHandler struct {
	log      *logger.Logger
	eventBus bus.Bus
}

func NewEventsHandler(log *logger.Logger, eventBus bus.Bus) *EventsHandler {
	return &EventsHandler{
		log:      log.With("handler", "EventsHandler"),
		eventBus: eventBus,
	}
}

func (eh *EventsHandler) Stream(c *gin.Context) {
	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	// Buffered so a slow client drops events instead of blocking the bus.
	events := make(chan realtime.QueueEvent, 16)
	err := eh.eventBus.StartForwarder(ctx, func(e realtime.QueueEvent) {
		select {
		case events <- e:
		default:
		}
	})
	if err != nil {
		eh.log.Warn("event stream unavailable", "error", err)
		RespondError(c, http.StatusServiceUnavailable, "unavailable", err)
		return
	}

	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case event := <-events:
			c.SSEvent("queue", event)
			return true
		}
	})
}
