package pubsub

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/roboricindustries/sync-events/internal/observability"
	wire "github.com/roboricindustries/sync-events/pkg/schemas/wire/v1"
)

// Publisher sends wire messages to the relay.
type Publisher interface {
	PublishUpdate(ctx context.Context, c wire.UpdateContainer) error
	PublishEvent(ctx context.Context, e wire.Event) error
	Close() error
}

var _ Publisher = (*Client)(nil)

// ErrNotConfirmed is returned when the broker nacks a durable update.
var ErrNotConfirmed = errors.New("publish not confirmed by broker")

// PublishUpdate publishes a container as a persistent delivery and waits for
// the broker's confirm. The container is validated first; nothing malformed
// leaves this process.
func (c *Client) PublishUpdate(ctx context.Context, cont wire.UpdateContainer) error {
	key, msg, err := UpdatePublishing(c.config, cont)
	if err != nil {
		return err
	}
	err = c.publish(ctx, c.config.UpdatesExchange, key, msg, true)
	observability.RecordRelayPublish("update", msg.Type, err)
	return err
}

// PublishEvent publishes an ephemeral event fire-and-forget with a short expiration.
func (c *Client) PublishEvent(ctx context.Context, e wire.Event) error {
	key, msg, err := EventPublishing(c.config, e)
	if err != nil {
		return err
	}
	err = c.publish(ctx, c.config.EventsExchange, key, msg, false)
	observability.RecordRelayPublish("event", msg.Type, err)
	return err
}

func (c *Client) publish(ctx context.Context, exchange, key string, msg amqp.Publishing, confirm bool) error {
	ch, err := c.pool.Borrow(ctx, c.config.PoolRetryDelayMs)
	if err != nil {
		return fmt.Errorf("borrow channel: %w", err)
	}
	defer c.pool.Return(ch)

	if !confirm {
		return ch.PublishWithContext(ctx, exchange, key, false, false, msg)
	}

	// idempotent on a channel already in confirm mode
	if err := ch.Confirm(false); err != nil {
		return fmt.Errorf("confirm mode: %w", err)
	}
	dc, err := ch.PublishWithDeferredConfirmWithContext(ctx, exchange, key, false, false, msg)
	if err != nil {
		return err
	}
	ok, err := dc.WaitContext(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotConfirmed, key)
	}
	return nil
}

// UpdatePublishing validates cont and encodes it with cfg's codec. It returns
// the routing key update.<t> and a persistent publishing.
func UpdatePublishing(cfg RabbitMQConfig, cont wire.UpdateContainer) (string, amqp.Publishing, error) {
	if cont.Body == nil {
		return "", amqp.Publishing{}, fmt.Errorf("update container %q has no body", cont.ID)
	}
	codec := cfg.WithDefaults().Codec
	body, err := codec.Encode(cont)
	if err != nil {
		return "", amqp.Publishing{}, fmt.Errorf("encode update: %w", err)
	}
	if err := checkOutgoing(codec, body, func(v any) error {
		_, err := wire.ValidateUpdateContainer(v)
		return err
	}); err != nil {
		return "", amqp.Publishing{}, fmt.Errorf("update %s: %w", cont.Body.Type(), err)
	}

	return UpdateRoutingKey(cont.Body.Type()), amqp.Publishing{
		ContentType:  codec.ContentType(),
		Body:         body,
		DeliveryMode: amqp.Persistent,
		MessageId:    cont.ID,
		Type:         string(cont.Body.Type()),
		Timestamp:    time.UnixMilli(cont.CreatedAt).UTC(),
		AppId:        cfg.Producer,
		Headers:      amqp.Table{"seq": cont.Seq},
	}, nil
}

// EventPublishing validates e and encodes it as a transient publishing routed
// as ephemeral.<type>.
func EventPublishing(cfg RabbitMQConfig, e wire.Event) (string, amqp.Publishing, error) {
	if e == nil {
		return "", amqp.Publishing{}, fmt.Errorf("nil event")
	}
	cfg = cfg.WithDefaults()
	body, err := cfg.Codec.Encode(e)
	if err != nil {
		return "", amqp.Publishing{}, fmt.Errorf("encode event: %w", err)
	}
	if err := checkOutgoing(cfg.Codec, body, func(v any) error {
		_, err := wire.ValidateEvent(v)
		return err
	}); err != nil {
		return "", amqp.Publishing{}, fmt.Errorf("event %s: %w", e.Type(), err)
	}

	return EventRoutingKey(e.Type()), amqp.Publishing{
		ContentType:  cfg.Codec.ContentType(),
		Body:         body,
		DeliveryMode: amqp.Transient,
		Expiration:   strconv.Itoa(cfg.EventTTLMs),
		MessageId:    uuid.NewString(),
		Type:         string(e.Type()),
		Timestamp:    time.Now().UTC(),
		AppId:        cfg.Producer,
	}, nil
}

func checkOutgoing(codec wire.Codec, body []byte, validate func(any) error) error {
	v, err := codec.Decode(body)
	if err != nil {
		return err
	}
	return validate(v)
}
