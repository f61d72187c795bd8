package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mxflights/flightwatch/internal/domain"
	"github.com/mxflights/flightwatch/internal/store"
	"github.com/mxflights/flightwatch/internal/usecase"
)

type monitorFixture struct {
	records  *store.Store
	backend  *memBackend
	notifier *fakeNotifier
	source   *stubSource
	monitor  *usecase.Monitor
}

func newMonitorFixture(t *testing.T, prices ...decimal.Decimal) *monitorFixture {
	t.Helper()
	records := store.New()
	backend := newMemBackend()
	notifier := &fakeNotifier{}
	source := &stubSource{name: "stub", prices: prices}
	resolver := newResolver(source)
	persister := usecase.NewPersister(backend, records, zap.NewNop(), nil)
	monitor := usecase.NewMonitor(
		records, resolver, usecase.DefaultAlertConfig(), notifier, persister,
		time.Minute, zap.NewNop(), nil,
	)
	return &monitorFixture{records: records, backend: backend, notifier: notifier, source: source, monitor: monitor}
}

func seeded(t *testing.T, f *monitorFixture, owner int64, price float64, threshold *decimal.Decimal) domain.FlightRecord {
	t.Helper()
	record := domain.FlightRecord{
		ID:             domain.RecordID(owner, "MEX", "CUN", "2030-12-15"),
		Origin:         "MEX",
		Dest:           "CUN",
		Date:           "2030-12-15",
		OwnerID:        owner,
		NotifyTarget:   owner * 10,
		AlertThreshold: threshold,
		CreatedAt:      time.Now().UTC(),
	}
	require.NoError(t, f.records.Add(record))
	if price > 0 {
		_, err := f.records.ApplyPriceUpdate(record.ID, decimal.NewFromFloat(price), time.Now())
		require.NoError(t, err)
	}
	out, err := f.records.Get(record.ID)
	require.NoError(t, err)
	return out
}

func TestSweep_NotifiesOnNotableChange(t *testing.T) {
	f := newMonitorFixture(t, decimal.NewFromInt(2800))
	record := seeded(t, f, 1, 3500, nil)

	f.monitor.Sweep(context.Background())

	sent := f.notifier.sent()
	require.Len(t, sent, 1)
	assert.Equal(t, record.NotifyTarget, sent[0].target)
	assert.True(t, sent[0].alert.OldPrice.Equal(decimal.NewFromInt(3500)))
	assert.True(t, sent[0].alert.NewPrice.Equal(decimal.NewFromInt(2800)))
	assert.False(t, sent[0].alert.Breached)

	got, err := f.records.Get(record.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.CheckCount)
	assert.True(t, f.backend.saveCount() >= 1, "sweep persists after the update")
}

func TestSweep_SilentOnQuietPrice(t *testing.T) {
	f := newMonitorFixture(t, decimal.NewFromFloat(3500.5))
	seeded(t, f, 1, 3500, nil)

	f.monitor.Sweep(context.Background())

	assert.Empty(t, f.notifier.sent())
}

func TestSweep_BreachCarriesThreshold(t *testing.T) {
	threshold := decimal.NewFromInt(3000)
	f := newMonitorFixture(t, decimal.NewFromInt(2900))
	seeded(t, f, 1, 3500, &threshold)

	f.monitor.Sweep(context.Background())

	sent := f.notifier.sent()
	require.Len(t, sent, 1)
	assert.True(t, sent[0].alert.Breached)
	require.NotNil(t, sent[0].alert.Threshold)
	assert.True(t, sent[0].alert.Threshold.Equal(threshold))
}

func TestSweep_FirstPriceIsSilent(t *testing.T) {
	f := newMonitorFixture(t, decimal.NewFromInt(4100))
	record := seeded(t, f, 1, 0, nil) // never priced

	f.monitor.Sweep(context.Background())

	assert.Empty(t, f.notifier.sent())
	got, err := f.records.Get(record.ID)
	require.NoError(t, err)
	require.NotNil(t, got.MinPrice)
	assert.True(t, got.MinPrice.Equal(decimal.NewFromInt(4100)))
	assert.True(t, got.MaxPrice.Equal(decimal.NewFromInt(4100)))
}

func TestSweep_PersistenceFailureDoesNotAbort(t *testing.T) {
	f := newMonitorFixture(t, decimal.NewFromInt(2800))
	record := seeded(t, f, 1, 3500, nil)
	f.backend.failing = true

	f.monitor.Sweep(context.Background())

	// The in-memory update still happened; only durability lagged.
	got, err := f.records.Get(record.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.CheckCount)
}

func TestSweep_CancelledContextAbandonsCleanly(t *testing.T) {
	f := newMonitorFixture(t, decimal.NewFromInt(2800))
	seeded(t, f, 1, 3500, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	f.monitor.Sweep(ctx)

	assert.Empty(t, f.notifier.sent())
	assert.Equal(t, 0, f.source.callCount())
}

func TestRefreshRecords_AdvancesWithoutNotifying(t *testing.T) {
	f := newMonitorFixture(t, decimal.NewFromInt(2000))
	record := seeded(t, f, 1, 3500, nil)

	updated := f.monitor.RefreshRecords(context.Background(), []string{record.ID})

	require.Len(t, updated, 1)
	assert.Equal(t, int64(2), updated[0].CheckCount)
	require.NotNil(t, updated[0].MinPrice)
	assert.True(t, updated[0].MinPrice.Equal(decimal.NewFromInt(2000)))
	assert.Empty(t, f.notifier.sent(), "refresh is a pull, not a push")
	assert.True(t, f.backend.saveCount() >= 1)
}

func TestRefreshRecords_SkipsUnknownIDs(t *testing.T) {
	f := newMonitorFixture(t, decimal.NewFromInt(2000))
	record := seeded(t, f, 1, 3500, nil)

	updated := f.monitor.RefreshRecords(context.Background(), []string{"missing", record.ID})

	require.Len(t, updated, 1)
	assert.Equal(t, record.ID, updated[0].ID)
}

func TestSweep_NotifierFailureDoesNotAbortSweep(t *testing.T) {
	f := newMonitorFixture(t, decimal.NewFromInt(2800))
	f.notifier.err = assert.AnError
	record := seeded(t, f, 1, 3500, nil)

	f.monitor.Sweep(context.Background())

	got, err := f.records.Get(record.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.CheckCount, "update applies even when delivery fails")
}
