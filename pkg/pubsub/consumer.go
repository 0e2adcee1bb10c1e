package pubsub

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/roboricindustries/sync-events/internal/observability"
)

// RetrySpec configures the DLX-based retry pipeline.
type RetrySpec struct {
	Enabled     bool
	TTL         time.Duration
	MaxAttempts int

	DeadExchange  string
	DeadQueue     string
	FinalExchange string
	FinalQueue    string
}

// ConsumerSpec defines a single consumer.
type ConsumerSpec struct {
	Name         string
	Exchange     string // main exchange to bind
	ExchangeKind string // default: topic
	Queue        string
	BindingKeys  []string
	Prefetch     int // 0 => use global default
	Retry        *RetrySpec

	// Transient queues are auto-deleted with their last consumer. Ephemeral
	// event taps use them; nothing is lost that was not already disposable.
	Transient bool

	// If true, poison messages are published to final DLQ then Acked.
	// If false, poison messages are just Acked (no copy kept).
	PoisonToFinal bool

	Consume Handler
}

// Consume results, as recorded in relay metrics.
const (
	resultAck       = "ack"
	resultPoison    = "poison"
	resultRetry     = "retry"
	resultExhausted = "exhausted"
)

// UpdatesConsumer binds queue to every durable update on the updates exchange.
func (c *Client) UpdatesConsumer(name, queue string, h Handler, retry *RetrySpec) ConsumerSpec {
	return ConsumerSpec{
		Name:          name,
		Exchange:      c.config.UpdatesExchange,
		Queue:         queue,
		BindingKeys:   []string{UpdateKeyPrefix + "#"},
		Retry:         retry,
		PoisonToFinal: true,
		Consume:       h,
	}
}

// EventsConsumer binds a transient queue to ephemeral events matching keys
// (all events when none are given). Events are never retried.
func (c *Client) EventsConsumer(name, queue string, h Handler, keys ...string) ConsumerSpec {
	if len(keys) == 0 {
		keys = []string{EventKeyPrefix + "#"}
	}
	return ConsumerSpec{
		Name:        name,
		Exchange:    c.config.EventsExchange,
		Queue:       queue,
		BindingKeys: keys,
		Transient:   true,
		Consume:     h,
	}
}

// RunWithConsumers starts every spec and supervises them until ctx is done,
// restarting closed consumers and reconnecting after connection loss.
func (c *Client) RunWithConsumers(ctx context.Context, specs ...ConsumerSpec) error {
	c.consumerClosed = make(chan string, len(specs)*2)
	c.consumerSpecs = make(map[string]ConsumerSpec, len(specs))

	for _, s := range specs {
		c.consumerSpecs[s.Name] = s
		if err := c.startConsumer(ctx, s); err != nil {
			return fmt.Errorf("start %s: %w", s.Name, err)
		}
	}

	errCh := c.conn.NotifyClose(make(chan *amqp.Error, 1))
	base := Dsec(c.config.ReconnectBackoffBaseSeconds, 1)
	capd := Dsec(c.config.ReconnectBackoffCapSeconds, 30)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case name := <-c.consumerClosed:
			if s, ok := c.consumerSpecs[name]; ok {
				if err := c.startConsumer(ctx, s); err != nil {
					c.logger.Error("restart consumer failed", slog.String("name", name), slog.Any("error", err))
				}
			}

		case err, ok := <-errCh:
			if !ok {
				err = &amqp.Error{Reason: "connection closed"}
			}
			c.logger.Error("amqp connection closed, reconnecting", slog.Any("error", err))

			backoff := base
			for {
				if rerr := c.reconnect(ctx); rerr != nil {
					wait := JitteredDelay(backoff, capd, c.config.ReconnectJitterPercent)
					c.logger.Error("reconnect failed", slog.Any("error", rerr), slog.Duration("retry_in", wait))
					if err := sleepCtx(ctx, wait); err != nil {
						return err
					}
					if backoff*2 < capd {
						backoff *= 2
					}
					continue
				}

				for _, s := range c.consumerSpecs {
					if err := c.startConsumer(ctx, s); err != nil {
						c.logger.Error("restart consumer after reconnect failed", slog.String("name", s.Name), slog.Any("error", err))
					}
				}
				errCh = c.conn.NotifyClose(make(chan *amqp.Error, 1))
				break
			}
		}
	}
}

// startConsumer declares the per-consumer topology and runs the loop.
func (c *Client) startConsumer(ctx context.Context, spec ConsumerSpec) error {
	if spec.Consume == nil {
		return fmt.Errorf("consumer %s has no handler", spec.Name)
	}
	ch, err := c.conn.Channel()
	if err != nil {
		return err
	}

	pf := spec.Prefetch
	if pf <= 0 {
		pf = c.config.ConsumerPrefetch
		if pf <= 0 {
			pf = 1
		}
	}
	if err := ch.Qos(pf, 0, false); err != nil {
		_ = ch.Close()
		return err
	}

	if err := declareConsumerTopology(ch, spec); err != nil {
		_ = ch.Close()
		return err
	}

	msgs, err := ch.Consume(spec.Queue, "", false, false, false, false, nil)
	if err != nil {
		_ = ch.Close()
		return err
	}

	closeCh := ch.NotifyClose(make(chan *amqp.Error, 1))

	c.consumerWG.Add(1)
	go func() {
		defer c.consumerWG.Done()
		for {
			select {
			case <-ctx.Done():
				_ = ch.Close()
				return

			case <-closeCh:
				// best-effort drain pending deliveries to requeue faster
				for {
					select {
					case d, ok := <-msgs:
						if !ok {
							goto drained
						}
						_ = d.Nack(false, true)
					default:
						goto drained
					}
				}
			drained:
				select {
				case c.consumerClosed <- spec.Name:
				default:
				}
				_ = ch.Close()
				return

			case d, ok := <-msgs:
				if !ok {
					_ = ch.Close()
					return
				}
				c.handleDelivery(ctx, ch, spec, d)
			}
		}
	}()

	c.logger.Info("consumer started",
		slog.String("name", spec.Name),
		slog.String("queue", spec.Queue),
		slog.Any("bindings", spec.BindingKeys),
		slog.Int("prefetch", pf),
	)
	return nil
}

func (c *Client) handleDelivery(ctx context.Context, ch *amqp.Channel, spec ConsumerSpec, d amqp.Delivery) {
	if spec.Retry != nil && spec.Retry.Enabled && spec.Retry.MaxAttempts > 0 {
		if DeathCount(d, spec.Queue) >= spec.Retry.MaxAttempts {
			if err := PublishFinal(ctx, ch, FirstNonEmpty(spec.Retry.FinalExchange, spec.Queue+".final"), d); err != nil {
				c.logger.Error("park exhausted message failed", slog.String("name", spec.Name), slog.Any("error", err))
			}
			_ = d.Ack(false)
			observability.RecordRelayConsume(spec.Name, resultExhausted)
			return
		}
	}

	result := settle(spec, d, spec.Consume(ctx, d), func(ex string) error {
		return PublishFinal(ctx, ch, ex, d)
	})
	observability.RecordRelayConsume(spec.Name, result)
}

// acknowledger is the part of amqp.Delivery settle needs.
type acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

// settle applies the ack policy for a handler result and reports what it did.
func settle(spec ConsumerSpec, d acknowledger, err error, park func(exchange string) error) string {
	switch {
	case errors.Is(err, ErrPoison):
		if spec.PoisonToFinal {
			_ = park(FirstNonEmpty(TryFinalEx(spec), spec.Queue+".final"))
		}
		_ = d.Ack(false)
		return resultPoison

	case err != nil:
		if spec.Retry != nil && spec.Retry.Enabled {
			_ = d.Nack(false, false) // to DLX
		} else {
			_ = d.Nack(false, !spec.Transient)
		}
		return resultRetry
	}
	_ = d.Ack(false)
	return resultAck
}

// declareConsumerTopology declares main queue/binds, DLX/TTL queue, and final queue.
// Retries are dead-lettered back through the default exchange straight to the
// consumer's own queue, so other consumers of the same keys see no duplicates.
func declareConsumerTopology(ch *amqp.Channel, s ConsumerSpec) error {
	exKind := FirstNonEmpty(s.ExchangeKind, "topic")
	if err := ch.ExchangeDeclare(s.Exchange, exKind, true, false, false, false, nil); err != nil {
		return err
	}

	mainArgs := amqp.Table{}
	if s.Retry != nil && s.Retry.Enabled {
		mainArgs["x-dead-letter-exchange"] = FirstNonEmpty(s.Retry.DeadExchange, s.Queue+".dead")
	}
	if _, err := ch.QueueDeclare(s.Queue, !s.Transient, s.Transient, false, false, mainArgs); err != nil {
		return err
	}
	for _, key := range s.BindingKeys {
		if err := ch.QueueBind(s.Queue, key, s.Exchange, false, nil); err != nil {
			return err
		}
	}

	needFinal := (s.Retry != nil && s.Retry.Enabled) || s.PoisonToFinal

	if s.Retry != nil && s.Retry.Enabled {
		deadEx := FirstNonEmpty(s.Retry.DeadExchange, s.Queue+".dead")
		deadQ := FirstNonEmpty(s.Retry.DeadQueue, s.Queue+".dead")
		if err := ch.ExchangeDeclare(deadEx, "fanout", true, false, false, false, nil); err != nil {
			return err
		}
		dArgs := amqp.Table{
			"x-message-ttl":             int32(s.Retry.TTL / time.Millisecond),
			"x-dead-letter-exchange":    "",
			"x-dead-letter-routing-key": s.Queue,
		}
		if _, err := ch.QueueDeclare(deadQ, true, false, false, false, dArgs); err != nil {
			return err
		}
		if err := ch.QueueBind(deadQ, "", deadEx, false, nil); err != nil {
			return err
		}
	}

	if needFinal {
		finalEx := FirstNonEmpty(TryFinalEx(s), s.Queue+".final")
		finalQ := FirstNonEmpty(TryFinalQ(s), s.Queue+".final")
		if err := ch.ExchangeDeclare(finalEx, "fanout", true, false, false, false, nil); err != nil {
			return err
		}
		if _, err := ch.QueueDeclare(finalQ, true, false, false, false, nil); err != nil {
			return err
		}
		if err := ch.QueueBind(finalQ, "", finalEx, false, nil); err != nil {
			return err
		}
	}

	return nil
}

// reconnect rebuilds the whole stack and re-declares exchanges.
func (c *Client) reconnect(ctx context.Context) error {
	const op = "pubsub.reconnect"

	if c.pool != nil {
		c.pool.Close()
	}
	if c.conn != nil && !c.conn.IsClosed() {
		_ = c.conn.Close()
	}

	conn, err := c.config.dial(ctx)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	if err := c.declareExchanges(conn); err != nil {
		_ = conn.Close()
		return fmt.Errorf("declare exchanges: %w", err)
	}

	pool, err := NewChannelPool(conn, c.config.PublishPoolSize)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("new pool: %w", err)
	}

	c.conn = conn
	c.pool = pool
	c.logger.With("op", op).Info("reconnected")
	return nil
}
