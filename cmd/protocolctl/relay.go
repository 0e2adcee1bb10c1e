package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/roboricindustries/sync-events/internal/config"
	"github.com/roboricindustries/sync-events/internal/observability"
	"github.com/roboricindustries/sync-events/pkg/pubsub"
	wire "github.com/roboricindustries/sync-events/pkg/schemas/wire/v1"
)

// loadRelay reads config and builds the logger both relay commands share.
func loadRelay(path string, stderr io.Writer) (config.Config, *slog.Logger, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, nil, err
	}
	logger, err := observability.NewLogger(stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logger, nil
}

func dialOptions(logger *slog.Logger) pubsub.ConnectionOptions {
	return pubsub.ConnectionOptions{
		RetryAttempts: 5,
		Delay:         time.Second,
		MaxDelay:      10 * time.Second,
		Logger:        logger,
	}
}

// newPublisher connects to the relay, or returns the logging fallback when
// no broker URL is configured.
func newPublisher(ctx context.Context, cfg pubsub.RabbitMQConfig, logger *slog.Logger) (pubsub.Publisher, error) {
	if cfg.URL == "" {
		logger.Warn("relay url not set, messages will be dropped")
		return pubsub.NewFallback(logger), nil
	}
	cfg.Dialer = pubsub.RetryDialer(dialOptions(logger))
	return pubsub.NewClient(ctx, cfg, logger)
}

func runPublish(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("publish", flag.ContinueOnError)
	fs.SetOutput(stderr)
	cfgPath := fs.String("config", "", "path to config file")
	kind := fs.String("kind", kindUpdate, "message kind: update|event|container")
	seq := fs.Int64("seq", 0, "container sequence number for -kind update")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if *seq < 0 {
		fmt.Fprintln(stderr, "protocolctl: -seq must be >= 0")
		return exitUsage
	}

	data, err := readInput(fs.Args(), stdin)
	if err != nil {
		fmt.Fprintf(stderr, "protocolctl: %v\n", err)
		return exitUsage
	}
	if rep, code := validate(*kind, wire.CodecJSON, data); code != exitOK {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(rep)
		return code
	}

	cfg, logger, err := loadRelay(*cfgPath, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "protocolctl: %v\n", err)
		return exitUsage
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pub, err := newPublisher(ctx, cfg.Relay, logger)
	if err != nil {
		fmt.Fprintf(stderr, "protocolctl: %v\n", err)
		return exitInvalid
	}
	defer pub.Close()

	if err := publish(ctx, pub, *kind, *seq, data); err != nil {
		fmt.Fprintf(stderr, "protocolctl: publish: %v\n", err)
		return exitInvalid
	}
	fmt.Fprintf(stdout, "published %s\n", *kind)
	return exitOK
}

// publish sends an already validated JSON message. A bare update is wrapped
// in a fresh container carrying seq.
func publish(ctx context.Context, pub pubsub.Publisher, kind string, seq int64, data []byte) error {
	v, err := wire.DecodeJSON(data)
	if err != nil {
		return err
	}
	switch kind {
	case kindUpdate:
		u, err := wire.ValidateUpdate(v)
		if err != nil {
			return err
		}
		return pub.PublishUpdate(ctx, wire.NewUpdateContainer(seq, u))
	case kindContainer:
		c, err := wire.ValidateUpdateContainer(v)
		if err != nil {
			return err
		}
		return pub.PublishUpdate(ctx, c)
	case kindEvent:
		e, err := wire.ValidateEvent(v)
		if err != nil {
			return err
		}
		return pub.PublishEvent(ctx, e)
	}
	return errUnknownKind
}

func runTail(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("tail", flag.ContinueOnError)
	fs.SetOutput(stderr)
	cfgPath := fs.String("config", "", "path to config file")
	events := fs.Bool("events", false, "also print ephemeral events")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	cfg, logger, err := loadRelay(*cfgPath, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "protocolctl: %v\n", err)
		return exitUsage
	}
	if cfg.Relay.URL == "" {
		fmt.Fprintln(stderr, "protocolctl: tail needs relay.url")
		return exitUsage
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	relay := cfg.Relay
	relay.Dialer = pubsub.RetryDialer(dialOptions(logger))
	client, err := pubsub.NewClient(ctx, relay, logger)
	if err != nil {
		fmt.Fprintf(stderr, "protocolctl: %v\n", err)
		return exitInvalid
	}
	defer client.Close()

	out := &lineWriter{w: stdout}
	specs := tailSpecs(client, logger, out, *events)
	if err := client.RunWithConsumers(ctx, specs...); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(stderr, "protocolctl: %v\n", err)
		return exitInvalid
	}
	return exitOK
}

// tailSpecs builds throwaway consumers: queues are transient and nothing is
// retried or parked, so tailing never disturbs real consumers.
func tailSpecs(client *pubsub.Client, logger *slog.Logger, out *lineWriter, events bool) []pubsub.ConsumerSpec {
	id := uuid.NewString()

	updates := client.UpdatesConsumer("tail-updates", "protocolctl.tail.updates."+id,
		pubsub.UpdateHandler(logger, func(_ context.Context, c wire.UpdateContainer) error {
			return out.write(kindContainer, c)
		}), nil)
	updates.Transient = true
	updates.PoisonToFinal = false

	specs := []pubsub.ConsumerSpec{updates}
	if events {
		specs = append(specs, client.EventsConsumer("tail-events", "protocolctl.tail.events."+id,
			pubsub.EventHandler(logger, func(_ context.Context, e wire.Event) error {
				return out.write(kindEvent, e)
			})))
	}
	return specs
}

// lineWriter prints one JSON object per line; consumers run concurrently.
type lineWriter struct {
	mu sync.Mutex
	w  io.Writer
}

type tailLine struct {
	Kind    string `json:"kind"`
	Message any    `json:"message"`
}

func (l *lineWriter) write(kind string, msg any) error {
	line, err := json.Marshal(tailLine{Kind: kind, Message: msg})
	if err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	_, err = fmt.Fprintf(l.w, "%s\n", line)
	return err
}
