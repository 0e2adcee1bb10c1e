package pubsub

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/roboricindustries/sync-events/internal/observability"
)

type ConnectionOptions struct {
	RetryAttempts int
	Delay         time.Duration
	MaxDelay      time.Duration
	Logger        *slog.Logger
}

const DefaultMaxDelay = 60 * time.Second

// backoff returns the wait after the given failed attempt (1-based).
func (o ConnectionOptions) backoff(attempt int) time.Duration {
	maxDelay := o.MaxDelay
	if maxDelay <= 0 {
		maxDelay = DefaultMaxDelay
	}
	sleep := o.Delay
	for i := 1; i < attempt && sleep < maxDelay; i++ {
		sleep *= 2
	}
	if sleep > maxDelay {
		sleep = maxDelay
	}
	return sleep
}

// DialWithRetry tries to connect to RabbitMQ with exponential backoff.
// It respects context cancellation for graceful shutdown.
func DialWithRetry(ctx context.Context, url string, opts ConnectionOptions) (*amqp.Connection, error) {
	return dialWithRetry(ctx, url, opts, amqp.Dial)
}

// RetryDialer adapts DialWithRetry to RabbitMQConfig.Dialer.
func RetryDialer(opts ConnectionOptions) func(context.Context, string) (*amqp.Connection, error) {
	return func(ctx context.Context, url string) (*amqp.Connection, error) {
		return DialWithRetry(ctx, url, opts)
	}
}

func dialWithRetry[C any](ctx context.Context, url string, opts ConnectionOptions, dial func(string) (C, error)) (C, error) {
	var (
		zero    C
		lastErr error
	)
	logger := opts.Logger
	if logger == nil {
		logger = observability.Discard()
	}
	attempts := max(opts.RetryAttempts, 1)

	for i := 1; i <= attempts; i++ {
		conn, err := dial(url)
		if err == nil {
			if i > 1 {
				logger.Info("rabbit connected", slog.Int("attempt", i))
			}
			return conn, nil
		}
		lastErr = err
		if i == attempts {
			break
		}

		sleep := opts.backoff(i)
		logger.Warn("rabbit dial failed",
			slog.Int("attempt", i),
			slog.Duration("sleep", sleep),
			slog.Any("error", err),
		)
		if err := sleepCtx(ctx, sleep); err != nil {
			return zero, fmt.Errorf("dial cancelled: %w", err)
		}
	}

	return zero, fmt.Errorf("failed to connect to RabbitMQ after %d attempts: %w", attempts, lastErr)
}
