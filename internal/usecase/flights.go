package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mxflights/flightwatch/internal/domain"
	"github.com/mxflights/flightwatch/internal/store"
)

// FlightUsecase is the inbound gateway: registration, listing, deletion,
// threshold changes and ad-hoc quotes. Every mutating operation persists the
// snapshot before returning.
type FlightUsecase struct {
	records  *store.Store
	resolver *Resolver
	persist  *Persister
	logger   *zap.Logger
	now      func() time.Time
}

func NewFlightUsecase(records *store.Store, resolver *Resolver, persist *Persister, logger *zap.Logger) *FlightUsecase {
	return &FlightUsecase{records: records, resolver: resolver, persist: persist, logger: logger, now: time.Now}
}

// Stats summarizes monitored records for the /stats command.
type Stats struct {
	TotalRecords int
	OwnerRecords int
	TotalChecks  int64
}

func (u *FlightUsecase) Register(ctx context.Context, ownerID, notifyTarget int64, origin, dest, date string, threshold *decimal.Decimal) (domain.FlightRecord, error) {
	origin, err := normalizeAirport(origin)
	if err != nil {
		return domain.FlightRecord{}, err
	}
	dest, err = normalizeAirport(dest)
	if err != nil {
		return domain.FlightRecord{}, err
	}
	if err := u.validateDate(date); err != nil {
		return domain.FlightRecord{}, err
	}
	if threshold != nil && !threshold.IsPositive() {
		return domain.FlightRecord{}, domain.ErrInvalidAmount
	}

	id := domain.RecordID(ownerID, origin, dest, date)
	if _, err := u.records.Get(id); err == nil {
		return domain.FlightRecord{}, domain.ErrAlreadyExists
	}

	now := u.now().UTC()
	price, source := u.resolver.Resolve(ctx, origin, dest, date)
	record := domain.FlightRecord{
		ID:             id,
		Origin:         origin,
		Dest:           dest,
		Date:           date,
		OwnerID:        ownerID,
		NotifyTarget:   notifyTarget,
		LastPrice:      &price,
		MinPrice:       &price,
		MaxPrice:       &price,
		AlertThreshold: threshold,
		CheckCount:     1,
		CreatedAt:      now,
		LastCheckedAt:  now,
	}

	if err := u.records.Add(record); err != nil {
		return domain.FlightRecord{}, err
	}
	_ = u.persist.Save(ctx)

	u.logger.Info(
		"record registered",
		zap.String("record_id", id),
		zap.Int64("owner_id", ownerID),
		zap.String("origin", origin),
		zap.String("dest", dest),
		zap.String("date", date),
		zap.String("source", source),
		zap.String("price", price.String()),
	)
	return record, nil
}

func (u *FlightUsecase) Delete(ctx context.Context, ownerID int64, id string) (domain.FlightRecord, error) {
	record, err := u.records.Get(id)
	if err != nil {
		return domain.FlightRecord{}, err
	}
	if err := u.records.Remove(id, ownerID); err != nil {
		return domain.FlightRecord{}, err
	}
	_ = u.persist.Save(ctx)
	u.logger.Info("record deleted", zap.String("record_id", id), zap.Int64("owner_id", ownerID))
	return record, nil
}

func (u *FlightUsecase) SetThreshold(ctx context.Context, ownerID int64, id string, value decimal.Decimal) error {
	if !value.IsPositive() {
		return domain.ErrInvalidAmount
	}
	if err := u.records.SetThreshold(id, ownerID, value); err != nil {
		return err
	}
	_ = u.persist.Save(ctx)
	u.logger.Info("threshold set", zap.String("record_id", id), zap.Int64("owner_id", ownerID), zap.String("threshold", value.String()))
	return nil
}

func (u *FlightUsecase) ListByOwner(ownerID int64) []domain.FlightRecord {
	return u.records.ListByOwner(ownerID)
}

// QuotePrice answers an ad-hoc price lookup without registering anything.
func (u *FlightUsecase) QuotePrice(ctx context.Context, origin, dest, date string) (decimal.Decimal, string, error) {
	origin, err := normalizeAirport(origin)
	if err != nil {
		return decimal.Decimal{}, "", err
	}
	dest, err = normalizeAirport(dest)
	if err != nil {
		return decimal.Decimal{}, "", err
	}
	if _, err := time.Parse(domain.DateLayout, date); err != nil {
		return decimal.Decimal{}, "", domain.ErrInvalidDate
	}
	price, source := u.resolver.Resolve(ctx, origin, dest, date)
	return price, source, nil
}

func (u *FlightUsecase) Stats(ownerID int64) Stats {
	snapshot := u.records.Snapshot()
	stats := Stats{TotalRecords: len(snapshot)}
	for _, record := range snapshot {
		stats.TotalChecks += record.CheckCount
		if record.OwnerID == ownerID {
			stats.OwnerRecords++
		}
	}
	return stats
}

func normalizeAirport(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 3 {
		return "", domain.ErrInvalidRoute
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return "", domain.ErrInvalidRoute
		}
	}
	return code, nil
}

// validateDate rejects malformed dates and dates in the past. Past dates are
// only rejected at creation; an existing record may age into the past while
// still monitored.
func (u *FlightUsecase) validateDate(date string) error {
	parsed, err := time.Parse(domain.DateLayout, date)
	if err != nil {
		return domain.ErrInvalidDate
	}
	today := u.now().UTC().Truncate(24 * time.Hour)
	if parsed.Before(today) {
		return domain.ErrInvalidDate
	}
	return nil
}
