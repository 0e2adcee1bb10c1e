package metrics

import (
	"context"
	"log/slog"
	"time"

	"github.com/roboricindustries/sync-events/internal/observability"
)

// Service answers metric requests from the warehouse, or from mock data when
// it has no Querier.
type Service struct {
	querier     Querier
	logger      *slog.Logger
	defaultDays int
	now         func() time.Time
}

type Option func(*Service)

// WithClock fixes the clock used for mock data.
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

func WithDefaultDays(days int) Option { return func(s *Service) { s.defaultDays = ClampDays(days) } }

// NewService builds the service. A nil querier means mock mode.
func NewService(q Querier, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = observability.Discard()
	}
	s := &Service{
		querier:     q,
		logger:      logger,
		defaultDays: 30,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Mock() bool { return s.querier == nil }

func (s *Service) DefaultDays() int { return s.defaultDays }

// Get runs metric name over days (clamped). Errors wrap ErrUnknownMetric,
// ErrUpstream or ErrBadResult.
func (s *Service) Get(ctx context.Context, name Name, days int) (Result, error) {
	q, err := Build(name, days)
	if err != nil {
		return Result{}, err
	}
	if s.querier == nil {
		observability.RecordWarehouseQuery(string(name), SourceMock, 0, nil)
		return mockResult(q, s.now()), nil
	}

	start := time.Now()
	res, err := s.querier.Query(ctx, q.SQL)
	if err == nil {
		var out Result
		out, err = reshape(q, res)
		if err == nil {
			observability.RecordWarehouseQuery(string(name), SourceWarehouse, time.Since(start), nil)
			return out, nil
		}
	}
	observability.RecordWarehouseQuery(string(name), SourceWarehouse, time.Since(start), err)
	s.logger.Error("metric query failed",
		slog.String("metric", string(name)),
		slog.Int("days", q.Days),
		slog.Any("error", err),
	)
	return Result{}, err
}
