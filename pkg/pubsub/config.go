package pubsub

import (
	"context"
	"fmt"
	"strings"

	amqp "github.com/rabbitmq/amqp091-go"
	wire "github.com/roboricindustries/sync-events/pkg/schemas/wire/v1"
)

// RabbitMQConfig defines client config and relay topology defaults.
type RabbitMQConfig struct {
	URL string `yaml:"url"`

	// Durable updates and ephemeral events travel on separate topic exchanges.
	UpdatesExchange string `yaml:"updates_exchange"`
	EventsExchange  string `yaml:"events_exchange"`
	// Extra exchanges declared at connect time, keyed by a local name.
	Exchanges map[string]string `yaml:"exchanges"`

	Codec    wire.Codec `yaml:"codec"`
	Producer string     `yaml:"producer"` // AMQP app id
	// Expiration of ephemeral deliveries; a stale heartbeat is worthless.
	EventTTLMs int `yaml:"event_ttl_ms"`

	PublishPoolSize             int `yaml:"publish_pool_size"`
	ConsumerPrefetch            int `yaml:"consumer_prefetch"`
	ConnTimeoutSeconds          int `yaml:"conn_timeout_seconds"`
	PoolRetryDelayMs            int `yaml:"pool_retry_delay_ms"`
	ReconnectBackoffBaseSeconds int `yaml:"reconnect_backoff_base_seconds"`
	ReconnectBackoffCapSeconds  int `yaml:"reconnect_backoff_cap_seconds"`
	ReconnectJitterPercent      int `yaml:"reconnect_jitter_percent"`

	Dialer func(ctx context.Context, url string) (*amqp.Connection, error) `yaml:"-"`
}

const (
	DefaultUpdatesExchange = "sync.updates"
	DefaultEventsExchange  = "sync.ephemeral"
	DefaultEventTTLMs      = 10_000
)

// WithDefaults fills unset topology and codec fields.
func (c RabbitMQConfig) WithDefaults() RabbitMQConfig {
	c.UpdatesExchange = FirstNonEmpty(c.UpdatesExchange, DefaultUpdatesExchange)
	c.EventsExchange = FirstNonEmpty(c.EventsExchange, DefaultEventsExchange)
	if c.Codec == "" {
		c.Codec = wire.CodecJSON
	}
	if c.EventTTLMs <= 0 {
		c.EventTTLMs = DefaultEventTTLMs
	}
	return c
}

// Validate reports configuration that cannot work.
func (c RabbitMQConfig) Validate() error {
	if strings.TrimSpace(c.URL) == "" {
		return fmt.Errorf("rabbitmq url is required")
	}
	if c.Codec != wire.CodecJSON && c.Codec != wire.CodecMsgpack {
		return fmt.Errorf("unsupported codec %q", c.Codec)
	}
	if c.UpdatesExchange == c.EventsExchange {
		return fmt.Errorf("updates and events must use different exchanges, both are %q", c.UpdatesExchange)
	}
	return nil
}
