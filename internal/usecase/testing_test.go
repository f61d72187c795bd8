package usecase_test

import (
	"context"
	"errors"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/mxflights/flightwatch/internal/domain"
)

// stubSource returns scripted prices in order, then repeats the last one.
type stubSource struct {
	name   string
	prices []decimal.Decimal
	err    error

	mu    sync.Mutex
	calls int
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Quote(_ context.Context, _, _, _ string) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return decimal.Decimal{}, s.err
	}
	if len(s.prices) == 0 {
		return decimal.Decimal{}, domain.ErrNoQuote
	}
	i := s.calls - 1
	if i >= len(s.prices) {
		i = len(s.prices) - 1
	}
	return s.prices[i], nil
}

func (s *stubSource) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type memBackend struct {
	mu      sync.Mutex
	records map[string]domain.FlightRecord
	saves   int
	failing bool
}

func newMemBackend() *memBackend {
	return &memBackend{records: make(map[string]domain.FlightRecord)}
}

func (m *memBackend) LoadAll(context.Context) (map[string]domain.FlightRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]domain.FlightRecord, len(m.records))
	for id, record := range m.records {
		out[id] = record
	}
	return out, nil
}

func (m *memBackend) SaveAll(_ context.Context, records map[string]domain.FlightRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing {
		return errors.New("backend down")
	}
	m.saves++
	m.records = make(map[string]domain.FlightRecord, len(records))
	for id, record := range records {
		m.records[id] = record
	}
	return nil
}

func (m *memBackend) Close() error { return nil }

func (m *memBackend) saveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

type capturedAlert struct {
	target int64
	alert  domain.PriceAlert
}

type fakeNotifier struct {
	mu     sync.Mutex
	alerts []capturedAlert
	err    error
}

func (f *fakeNotifier) NotifyPriceChange(target int64, alert domain.PriceAlert) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.alerts = append(f.alerts, capturedAlert{target: target, alert: alert})
	return nil
}

func (f *fakeNotifier) sent() []capturedAlert {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]capturedAlert, len(f.alerts))
	copy(out, f.alerts)
	return out
}
