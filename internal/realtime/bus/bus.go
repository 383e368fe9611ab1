package bus

import (
	"context"

	"github.com/contentforge/moderation-backend/internal/realtime"
)

type Bus interface {
	Publish(ctx context.Context, event realtime.QueueEvent) error
	StartForwarder(ctx context.Context, onEvent func(e realtime.QueueEvent)) error
	Close() error
}

// NewNoopBus is used when no redis is configured; events are dropped.
func NewNoopBus() Bus { return noopBus{} }

type noopBus struct{}

func (noopBus) Publish(ctx context.Context, event realtime.QueueEvent) error { return nil }
func (noopBus) StartForwarder(ctx context.Context, onEvent func(e realtime.QueueEvent)) error {
	return nil
}
func (noopBus) Close() error { return nil }
