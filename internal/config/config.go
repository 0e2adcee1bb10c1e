package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/roboricindustries/sync-events/pkg/pubsub"
	wire "github.com/roboricindustries/sync-events/pkg/schemas/wire/v1"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "SYNC_EVENTS"

// Config is shared by both binaries; each reads the sections it needs.
type Config struct {
	Log        LogConfig             `yaml:"log"`
	Relay      pubsub.RabbitMQConfig `yaml:"relay"`
	MetricsAPI MetricsAPIConfig      `yaml:"metrics_api"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type MetricsAPIConfig struct {
	Addr        string          `yaml:"addr"`
	DefaultDays int             `yaml:"default_days"`
	Warehouse   WarehouseConfig `yaml:"warehouse"`
}

// WarehouseConfig points at the analytics warehouse. An empty endpoint
// switches the metrics API to mock data.
type WarehouseConfig struct {
	Endpoint       string `yaml:"endpoint"`
	APIKey         string `yaml:"api_key"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

func (w WarehouseConfig) Enabled() bool { return strings.TrimSpace(w.Endpoint) != "" }

// Load reads path (optional), applies env overrides, fills defaults and validates.
func Load(path string) (Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
		}
		if err := decode(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config parse failed (%s): %w", path, err)
		}
	}
	if err := applyEnvOverrides(&cfg); err != nil {
		return Config{}, err
	}
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// decode rejects unknown keys so a typo is not silently ignored.
func decode(data []byte, out *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (c Config) withDefaults() Config {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.MetricsAPI.Addr == "" {
		c.MetricsAPI.Addr = ":8080"
	}
	if c.MetricsAPI.DefaultDays <= 0 {
		c.MetricsAPI.DefaultDays = 30
	}
	if c.MetricsAPI.Warehouse.TimeoutSeconds <= 0 {
		c.MetricsAPI.Warehouse.TimeoutSeconds = 10
	}
	c.Relay = c.Relay.WithDefaults()
	return c
}

func (c Config) Validate() error {
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	if strings.TrimSpace(c.MetricsAPI.Addr) == "" {
		return fmt.Errorf("metrics_api.addr is required")
	}
	if d := c.MetricsAPI.DefaultDays; d < 1 || d > 90 {
		return fmt.Errorf("metrics_api.default_days must be within [1, 90], got %d", d)
	}
	if c.MetricsAPI.Warehouse.Enabled() && strings.TrimSpace(c.MetricsAPI.Warehouse.APIKey) == "" {
		return fmt.Errorf("metrics_api.warehouse.api_key is required when an endpoint is set")
	}
	// the relay is optional; without a url publishers fall back to logging
	if c.Relay.URL != "" {
		if err := c.Relay.Validate(); err != nil {
			return fmt.Errorf("relay: %w", err)
		}
	}
	return nil
}

func applyEnvOverrides(cfg *Config) error {
	str := func(name string, dst *string) {
		if val := os.Getenv(EnvPrefix + "_" + name); val != "" {
			*dst = val
		}
	}
	str("LOG_LEVEL", &cfg.Log.Level)
	str("LOG_FORMAT", &cfg.Log.Format)
	str("RELAY_URL", &cfg.Relay.URL)
	str("RELAY_PRODUCER", &cfg.Relay.Producer)
	str("METRICS_ADDR", &cfg.MetricsAPI.Addr)
	str("WAREHOUSE_ENDPOINT", &cfg.MetricsAPI.Warehouse.Endpoint)
	str("WAREHOUSE_API_KEY", &cfg.MetricsAPI.Warehouse.APIKey)

	if val := os.Getenv(EnvPrefix + "_RELAY_CODEC"); val != "" {
		cfg.Relay.Codec = wire.Codec(val)
	}
	if val := os.Getenv(EnvPrefix + "_METRICS_DEFAULT_DAYS"); val != "" {
		n, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("%s_METRICS_DEFAULT_DAYS: %w", EnvPrefix, err)
		}
		cfg.MetricsAPI.DefaultDays = n
	}
	return nil
}
