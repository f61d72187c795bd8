package usecase

import (
	"github.com/shopspring/decimal"
)

type Direction int

const (
	DirectionFlat Direction = iota
	DirectionDown
	DirectionUp
)

// Evaluation is the outcome of comparing one price update against a record's
// alert settings. Direction and Percent are for display only.
type Evaluation struct {
	Notable   bool
	Breached  bool
	Direction Direction
	Percent   decimal.Decimal
}

// AlertConfig carries the tunable constants of alert evaluation. NoiseFloor
// is an absolute currency amount: changes at or below it are ignored to
// filter sub-unit quote jitter.
type AlertConfig struct {
	NoiseFloor decimal.Decimal
}

func DefaultAlertConfig() AlertConfig {
	return AlertConfig{NoiseFloor: decimal.NewFromInt(1)}
}

// Evaluate decides whether a price update warrants notification. A nil
// oldPrice means the record was just seeded with its first quote and nothing
// fires. The threshold breach is edge-triggered: it fires only when the price
// crosses from above the threshold to at-or-below it, and re-arms once the
// price rises back above.
func Evaluate(cfg AlertConfig, oldPrice *decimal.Decimal, newPrice decimal.Decimal, threshold *decimal.Decimal) Evaluation {
	if oldPrice == nil {
		return Evaluation{}
	}

	eval := Evaluation{
		Notable: newPrice.Sub(*oldPrice).Abs().GreaterThan(cfg.NoiseFloor),
	}

	switch newPrice.Cmp(*oldPrice) {
	case -1:
		eval.Direction = DirectionDown
	case 1:
		eval.Direction = DirectionUp
	}
	if !oldPrice.IsZero() {
		eval.Percent = newPrice.Sub(*oldPrice).Abs().Div(*oldPrice).Mul(decimal.NewFromInt(100))
	}

	if threshold != nil && newPrice.LessThanOrEqual(*threshold) && oldPrice.GreaterThan(*threshold) {
		eval.Breached = true
	}
	return eval
}
