package pricing_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mxflights/flightwatch/internal/infra/pricing"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestSynthetic_DeterministicForFixedClock(t *testing.T) {
	at := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	s := pricing.NewSyntheticWithClock(fixedClock(at))

	first, err := s.Quote(context.Background(), "MEX", "CUN", "2030-12-15")
	require.NoError(t, err)
	second, err := s.Quote(context.Background(), "MEX", "CUN", "2030-12-15")
	require.NoError(t, err)

	assert.True(t, first.Equal(second), "same route, same instant, same price")
}

func TestSynthetic_DifferentRoutesDiffer(t *testing.T) {
	at := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	s := pricing.NewSyntheticWithClock(fixedClock(at))

	a, err := s.Quote(context.Background(), "MEX", "CUN", "2030-12-15")
	require.NoError(t, err)
	b, err := s.Quote(context.Background(), "MEX", "MAD", "2030-12-15")
	require.NoError(t, err)

	assert.False(t, a.Equal(b))
}

func TestSynthetic_BoundedRange(t *testing.T) {
	at := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	s := pricing.NewSyntheticWithClock(fixedClock(at))

	routes := [][3]string{
		{"MEX", "CUN", "2030-12-15"},
		{"GDL", "JFK", "2030-01-01"},
		{"TIJ", "MAD", "2031-06-30"},
		{"AAA", "ZZZ", "2030-02-02"},
	}
	low := decimal.NewFromInt(1300)
	high := decimal.NewFromInt(9700)
	for _, route := range routes {
		price, err := s.Quote(context.Background(), route[0], route[1], route[2])
		require.NoError(t, err)
		assert.True(t, price.GreaterThanOrEqual(low), "%v: %s", route, price)
		assert.True(t, price.LessThanOrEqual(high), "%v: %s", route, price)
	}
}

func TestSynthetic_SlowDrift(t *testing.T) {
	at := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	early := pricing.NewSyntheticWithClock(fixedClock(at))
	late := pricing.NewSyntheticWithClock(fixedClock(at.Add(30 * time.Second)))

	a, err := early.Quote(context.Background(), "MEX", "CUN", "2030-12-15")
	require.NoError(t, err)
	b, err := late.Quote(context.Background(), "MEX", "CUN", "2030-12-15")
	require.NoError(t, err)

	delta := a.Sub(b).Abs()
	assert.True(t, delta.LessThan(decimal.NewFromInt(5)), "30s of drift stays small, got %s", delta)
}
