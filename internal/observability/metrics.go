package observability

import (
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/roboricindustries/sync-events/pkg/shape"
)

const namespace = "sync_events"

// Validation outcomes.
const (
	OutcomeOK             = "ok"
	OutcomeInvalid        = "invalid"
	OutcomeUnknownVariant = "unknown_variant"
	OutcomeUndecodable    = "undecodable"
)

var (
	registerOnce sync.Once

	validations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "protocol",
			Name:      "validations_total",
			Help:      "Wire messages validated, by family and outcome.",
		},
		[]string{"family", "outcome"},
	)
	relayPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "relay",
			Name:      "published_total",
			Help:      "Messages published to the relay exchange.",
		},
		[]string{"family", "tag", "success"},
	)
	relayConsumed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "relay",
			Name:      "consumed_total",
			Help:      "Deliveries handled by relay consumers, by result.",
		},
		[]string{"consumer", "result"},
	)
	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"service", "method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path", "status"},
	)
	warehouseQueries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "warehouse",
			Name:      "queries_total",
			Help:      "Analytics warehouse queries, by metric and source.",
		},
		[]string{"metric", "source", "success"},
	)
	warehouseDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "warehouse",
			Name:      "query_duration_seconds",
			Help:      "Analytics warehouse query latency in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"metric"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			validations,
			relayPublished,
			relayConsumed,
			httpRequests,
			httpDuration,
			warehouseQueries,
			warehouseDuration,
		)
	})
}

// Outcome labels the result of decoding and validating one message. Errors
// that are neither shape violations nor unknown variants count as undecodable.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case shape.IsUnknownVariant(err):
		return OutcomeUnknownVariant
	case errors.Is(err, shape.ErrInvalidContract):
		return OutcomeInvalid
	}
	return OutcomeUndecodable
}

func RecordValidation(family, outcome string) {
	RegisterMetrics()
	validations.WithLabelValues(family, outcome).Inc()
}

func RecordRelayPublish(family, tag string, err error) {
	RegisterMetrics()
	relayPublished.WithLabelValues(family, tag, strconv.FormatBool(err == nil)).Inc()
}

func RecordRelayConsume(consumer, result string) {
	RegisterMetrics()
	relayConsumed.WithLabelValues(consumer, result).Inc()
}

func RecordHTTPRequest(service, method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(service, method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(service, method, path, statusLabel).Observe(duration.Seconds())
}

// RecordWarehouseQuery counts one metric lookup. source is "warehouse" or "mock";
// latency is only observed for real warehouse calls.
func RecordWarehouseQuery(metric, source string, duration time.Duration, err error) {
	RegisterMetrics()
	warehouseQueries.WithLabelValues(metric, source, strconv.FormatBool(err == nil)).Inc()
	if source == "warehouse" {
		warehouseDuration.WithLabelValues(metric).Observe(duration.Seconds())
	}
}
