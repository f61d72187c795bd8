package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mxflights/flightwatch/internal/domain"
	"github.com/mxflights/flightwatch/internal/infra/metrics"
	"github.com/mxflights/flightwatch/internal/store"
)

// Monitor drives the periodic sweep over all monitored records and serves
// on-demand refreshes. Both paths funnel through the same per-record update
// so min/max/checkCount logic exists exactly once.
type Monitor struct {
	records  *store.Store
	resolver *Resolver
	alerts   AlertConfig
	notifier domain.Notifier
	persist  *Persister
	interval time.Duration
	logger   *zap.Logger
	metrics  *metrics.Metrics

	cron *cron.Cron
	now  func() time.Time
}

func NewMonitor(
	records *store.Store,
	resolver *Resolver,
	alerts AlertConfig,
	notifier domain.Notifier,
	persist *Persister,
	interval time.Duration,
	logger *zap.Logger,
	m *metrics.Metrics,
) *Monitor {
	return &Monitor{
		records:  records,
		resolver: resolver,
		alerts:   alerts,
		notifier: notifier,
		persist:  persist,
		interval: interval,
		logger:   logger,
		metrics:  m,
		now:      time.Now,
	}
}

// Start registers the sweep job and runs one sweep immediately so freshly
// restarted instances do not wait a full interval for their first check.
// SkipIfStillRunning keeps a slow sweep from overlapping the next tick.
func (m *Monitor) Start(ctx context.Context) error {
	m.cron = cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	spec := fmt.Sprintf("@every %s", m.interval)
	if _, err := m.cron.AddFunc(spec, func() { m.Sweep(ctx) }); err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}
	m.cron.Start()
	m.logger.Info("monitor started", zap.Duration("interval", m.interval))

	go m.Sweep(ctx)
	return nil
}

// Stop shuts the scheduler down and waits for an in-flight sweep to abandon
// cleanly; individual record updates are atomic, so a mid-sweep stop never
// leaves the store corrupted.
func (m *Monitor) Stop() {
	if m.cron == nil {
		return
	}
	<-m.cron.Stop().Done()
	m.logger.Info("monitor stopped")
}

// Sweep runs one full pass over all records. A single record's failure is
// logged and never aborts the rest of the pass.
func (m *Monitor) Sweep(ctx context.Context) {
	ids := m.records.IDs()
	if len(ids) == 0 {
		return
	}

	start := m.now()
	m.logger.Info("sweep started", zap.Int("records", len(ids)))

	for _, id := range ids {
		select {
		case <-ctx.Done():
			m.logger.Info("sweep abandoned", zap.String("reason", ctx.Err().Error()))
			return
		default:
		}
		if err := m.updateRecord(ctx, id, true); err != nil {
			m.logger.Warn("record check failed", zap.String("record_id", id), zap.Error(err))
		}
	}

	if m.metrics != nil {
		m.metrics.Sweeps.Inc()
		m.metrics.SweepDuration.Observe(m.now().Sub(start).Seconds())
	}
	m.logger.Info("sweep complete", zap.Int("records", len(ids)), zap.Duration("duration", m.now().Sub(start)))
}

// RefreshRecords re-prices a caller-supplied subset of records outside the
// scheduled sweep. It advances checkCount and min/max under the same
// per-record serialization as the sweep but never emits notifications:
// a refresh is a pull, not a push.
func (m *Monitor) RefreshRecords(ctx context.Context, ids []string) []domain.FlightRecord {
	var updated []domain.FlightRecord
	for _, id := range ids {
		if err := m.updateRecord(ctx, id, false); err != nil {
			m.logger.Warn("refresh failed", zap.String("record_id", id), zap.Error(err))
			continue
		}
		record, err := m.records.Get(id)
		if err != nil {
			continue
		}
		updated = append(updated, record)
	}
	return updated
}

func (m *Monitor) updateRecord(ctx context.Context, id string, notify bool) error {
	record, err := m.records.Get(id)
	if err != nil {
		return err
	}

	// The fetch happens before any record lock is taken; only the final
	// ApplyPriceUpdate runs in a critical section.
	price, source := m.resolver.Resolve(ctx, record.Origin, record.Dest, record.Date)
	update, err := m.records.ApplyPriceUpdate(id, price, m.now().UTC())
	if err != nil {
		return err
	}
	if m.metrics != nil {
		m.metrics.RecordsChecked.Inc()
	}
	m.logger.Debug(
		"record checked",
		zap.String("record_id", id),
		zap.String("source", source),
		zap.String("price", price.String()),
	)

	if notify {
		eval := Evaluate(m.alerts, update.OldPrice, update.NewPrice, update.Record.AlertThreshold)
		if eval.Notable || eval.Breached {
			m.send(update, eval)
		}
	}

	// Persist each completed record so a crash mid-sweep loses at most the
	// in-flight update. Failures are an accepted durability gap until the
	// next successful save.
	_ = m.persist.Save(ctx)
	return nil
}

func (m *Monitor) send(update store.PriceUpdate, eval Evaluation) {
	alert := domain.PriceAlert{
		Record:   update.Record,
		OldPrice: *update.OldPrice,
		NewPrice: update.NewPrice,
		Percent:  eval.Percent,
		Breached: eval.Breached,
	}
	if eval.Breached {
		alert.Threshold = update.Record.AlertThreshold
	}

	if err := m.notifier.NotifyPriceChange(update.Record.NotifyTarget, alert); err != nil {
		m.logger.Warn("notification failed", zap.String("record_id", update.Record.ID), zap.Error(err))
		return
	}
	if m.metrics != nil {
		m.metrics.NotificationsSent.Inc()
	}
	m.logger.Info(
		"notification sent",
		zap.String("record_id", update.Record.ID),
		zap.String("old_price", update.OldPrice.String()),
		zap.String("new_price", update.NewPrice.String()),
		zap.Bool("breached", eval.Breached),
	)
}
