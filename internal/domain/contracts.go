package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// ErrNoQuote means a price source answered but had no price for the query.
// The resolver treats it the same as a transport failure: try the next source.
var ErrNoQuote = errors.New("no quote available")

// PriceSource answers a single (origin, dest, date) price query. Implementations
// must respect ctx cancellation; the resolver imposes a timeout per call.
type PriceSource interface {
	Name() string
	Quote(ctx context.Context, origin, dest, date string) (decimal.Decimal, error)
}

// SnapshotStore persists the whole record set at once. SaveAll overwrites any
// prior durable state each time.
type SnapshotStore interface {
	LoadAll(ctx context.Context) (map[string]FlightRecord, error)
	SaveAll(ctx context.Context, records map[string]FlightRecord) error
	Close() error
}

// Notifier delivers a price alert to a notification target (a chat id).
type Notifier interface {
	NotifyPriceChange(target int64, alert PriceAlert) error
}
