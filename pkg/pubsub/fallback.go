package pubsub

import (
	"context"
	"log/slog"

	"github.com/roboricindustries/sync-events/internal/observability"
	wire "github.com/roboricindustries/sync-events/pkg/schemas/wire/v1"
)

// FallbackPublisher stands in when no broker is configured: it logs and drops.
type FallbackPublisher struct {
	log *slog.Logger
}

func (p *FallbackPublisher) PublishUpdate(_ context.Context, c wire.UpdateContainer) error {
	key := "update.<nil>"
	if c.Body != nil {
		key = UpdateRoutingKey(c.Body.Type())
	}
	p.log.Warn("FallbackPublisher: skipped publish", slog.String("key", key), slog.Int64("seq", c.Seq))
	return nil
}

func (p *FallbackPublisher) PublishEvent(_ context.Context, e wire.Event) error {
	key := "ephemeral.<nil>"
	if e != nil {
		key = EventRoutingKey(e.Type())
	}
	p.log.Debug("FallbackPublisher: skipped publish", slog.String("key", key))
	return nil
}

func (p *FallbackPublisher) Close() error {
	return nil
}

func NewFallback(logger *slog.Logger) Publisher {
	if logger == nil {
		logger = observability.Discard()
	}
	return &FallbackPublisher{
		log: logger,
	}
}
