package pubsub

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/roboricindustries/sync-events/internal/observability"
)

// Client is the relay's RabbitMQ connection: one connection, a publisher
// channel pool and any number of supervised consumers.
type Client struct {
	conn   *amqp.Connection
	pool   *ChannelPool
	config RabbitMQConfig
	logger *slog.Logger

	consumerWG     sync.WaitGroup
	consumerClosed chan string
	consumerSpecs  map[string]ConsumerSpec
}

func (c *Client) Config() RabbitMQConfig { return c.config }

func NewClient(ctx context.Context, config RabbitMQConfig, logger *slog.Logger) (*Client, error) {
	const op = "pubsub.NewClient"

	config = config.WithDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = observability.Discard()
	}

	host := ""
	if u, _ := url.Parse(config.URL); u != nil {
		host = u.Host
	}
	logger.With("op", op).Info("connecting to rabbitmq",
		slog.String("host", host),
		slog.String("codec", string(config.Codec)),
	)

	// amqp has no ctx on dial; enforce the time boundary ourselves
	dialCtx, cancel := context.WithTimeout(ctx, Dsec(config.ConnTimeoutSeconds, 30))
	defer cancel()
	if dialCtx.Err() != nil {
		return nil, fmt.Errorf("context done before connection attempt: %w", dialCtx.Err())
	}

	conn, err := config.dial(dialCtx)
	if err != nil {
		logger.With("op", op).Error("dial failed", slog.Any("error", err))
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	client := &Client{
		conn:   conn,
		config: config,
		logger: logger,
	}
	if err := client.declareExchanges(conn); err != nil {
		_ = client.Close()
		return nil, err
	}

	pool, err := NewChannelPool(conn, config.PublishPoolSize)
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("create channel pool: %w", err)
	}
	client.pool = pool

	logger.With("op", op).Info("client ready")
	return client, nil
}

func (c RabbitMQConfig) dial(ctx context.Context) (*amqp.Connection, error) {
	if c.Dialer != nil {
		return c.Dialer(ctx, c.URL)
	}
	return amqp.Dial(c.URL)
}

// declareExchanges declares only exchanges, on a throwaway channel.
// Queues and bindings are per consumer so they can carry DLX/TTL args.
func (c *Client) declareExchanges(conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer func() { _ = SafeClose(ch) }()

	for _, ex := range c.exchangeNames() {
		if err := ch.ExchangeDeclare(ex, "topic", true, false, false, false, nil); err != nil {
			return fmt.Errorf("declare exchange %q: %w", ex, err)
		}
	}
	return nil
}

func (c *Client) exchangeNames() []string {
	names := []string{c.config.UpdatesExchange, c.config.EventsExchange}
	for _, ex := range c.config.Exchanges {
		if ex != "" {
			names = append(names, ex)
		}
	}
	return names
}

// Close stops consumers, closes pool and connection.
func (c *Client) Close() error {
	done := make(chan struct{})
	go func() {
		c.consumerWG.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
	}
	if c.pool != nil {
		c.pool.Close()
	}
	if c.conn != nil && !c.conn.IsClosed() {
		return c.conn.Close()
	}
	return nil
}
