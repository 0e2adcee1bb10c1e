package pubsub

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/roboricindustries/sync-events/internal/observability"
	wire "github.com/roboricindustries/sync-events/pkg/schemas/wire/v1"
	"github.com/roboricindustries/sync-events/pkg/shape"
)

// ErrPoison indicates non-retriable bad content (undecodable or malformed).
var ErrPoison = errors.New("poison message")

// Handler processes one delivery. Returning ErrPoison parks or drops it, any
// other error retries it.
type Handler func(ctx context.Context, d amqp.Delivery) error

// UpdateHandler decodes a delivery as an update container and validates it.
// Malformed containers are poison. A body of an unknown variant is logged and
// acknowledged without calling h, so consumers keep up with newer producers.
func UpdateHandler(logger *slog.Logger, h func(context.Context, wire.UpdateContainer) error) Handler {
	if logger == nil {
		logger = observability.Discard()
	}
	return func(ctx context.Context, d amqp.Delivery) error {
		v, err := decodeDelivery(d)
		if err == nil {
			var c wire.UpdateContainer
			c, err = wire.ValidateUpdateContainer(v)
			if err == nil {
				observability.RecordValidation("update", observability.OutcomeOK)
				return h(ctx, c)
			}
		}
		return reject(logger, "update", d, err)
	}
}

// EventHandler is UpdateHandler for ephemeral events.
func EventHandler(logger *slog.Logger, h func(context.Context, wire.Event) error) Handler {
	if logger == nil {
		logger = observability.Discard()
	}
	return func(ctx context.Context, d amqp.Delivery) error {
		v, err := decodeDelivery(d)
		if err == nil {
			var e wire.Event
			e, err = wire.ValidateEvent(v)
			if err == nil {
				observability.RecordValidation("event", observability.OutcomeOK)
				return h(ctx, e)
			}
		}
		return reject(logger, "event", d, err)
	}
}

// reject maps a decode or validation failure to the consumer's ack policy.
func reject(logger *slog.Logger, family string, d amqp.Delivery, err error) error {
	outcome := observability.Outcome(err)
	observability.RecordValidation(family, outcome)

	attrs := []any{
		slog.String("family", family),
		slog.String("routing_key", d.RoutingKey),
		slog.String("message_id", d.MessageId),
	}
	if outcome == observability.OutcomeUnknownVariant {
		var uv *shape.UnknownVariantError
		if errors.As(err, &uv) {
			attrs = append(attrs, slog.String("path", uv.Path), slog.String("tag", uv.Value))
		}
		logger.Info("skipping unknown variant", attrs...)
		return nil
	}
	logger.Warn("rejecting malformed message", append(attrs, slog.String("outcome", outcome), slog.Any("error", err))...)
	return fmt.Errorf("%w: %v", ErrPoison, err)
}

func decodeDelivery(d amqp.Delivery) (any, error) {
	codec, ok := wire.CodecFor(d.ContentType)
	if !ok {
		return nil, fmt.Errorf("%w: content type %q", wire.ErrDecode, d.ContentType)
	}
	return codec.Decode(d.Body)
}
