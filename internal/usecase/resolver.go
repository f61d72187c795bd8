package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mxflights/flightwatch/internal/domain"
	"github.com/mxflights/flightwatch/internal/infra/metrics"
)

// Resolver tries the configured real price sources in priority order and
// falls back to the synthetic estimator when all of them fail. Resolve never
// fails; one call returns exactly one source's answer, never a blend.
type Resolver struct {
	sources  []domain.PriceSource
	fallback domain.PriceSource
	timeout  time.Duration
	logger   *zap.Logger
	metrics  *metrics.Metrics
}

func NewResolver(sources []domain.PriceSource, fallback domain.PriceSource, timeout time.Duration, logger *zap.Logger, m *metrics.Metrics) *Resolver {
	return &Resolver{sources: sources, fallback: fallback, timeout: timeout, logger: logger, metrics: m}
}

// Resolve returns the price and the name of the source that answered.
func (r *Resolver) Resolve(ctx context.Context, origin, dest, date string) (decimal.Decimal, string) {
	for _, source := range r.sources {
		price, err := r.quote(ctx, source, origin, dest, date)
		if err != nil {
			r.logger.Warn(
				"price source unavailable",
				zap.String("source", source.Name()),
				zap.String("origin", origin),
				zap.String("dest", dest),
				zap.String("date", date),
				zap.Error(err),
			)
			if r.metrics != nil {
				r.metrics.QuoteErrors.WithLabelValues(source.Name()).Inc()
			}
			continue
		}
		return price, source.Name()
	}

	price, _ := r.fallback.Quote(ctx, origin, dest, date)
	return price, r.fallback.Name()
}

func (r *Resolver) quote(ctx context.Context, source domain.PriceSource, origin, dest, date string) (decimal.Decimal, error) {
	quoteCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return source.Quote(quoteCtx, origin, dest, date)
}
