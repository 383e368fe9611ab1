package app

import (
	"fmt"
	"strings"

	"github.com/contentforge/moderation-backend/internal/clients/contentstore"
	"github.com/contentforge/moderation-backend/internal/logger"
	"github.com/contentforge/moderation-backend/internal/realtime/bus"
)

// wireContentStore picks the host content store implementation by mode:
// "http" for the real store, "memory" for local development.
func wireContentStore(log *logger.Logger, mode string) (contentstore.Store, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", "http":
		return contentstore.NewHTTPStore(log)
	case "memory":
		log.Warn("Using in-memory content store; published content will not survive restarts")
		return contentstore.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown content store mode %q", mode)
	}
}

// wireEventBus returns the redis queue-event bus when REDIS_ADDR is set and
// a no-op bus otherwise; the workflow never depends on events being
// deliverable.
func wireEventBus(log *logger.Logger) bus.Bus {
	eventBus, err := bus.NewRedisBus(log)
	if err != nil {
		log.Warn("Queue event bus disabled", "error", err)
		return bus.NewNoopBus()
	}
	return eventBus
}
