package telegram

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

const HelpText = `Commands:
/start - register
/help - show this help
/watch <ORIG> <DEST> <YYYY-MM-DD> [threshold] - monitor a flight
/list - list your monitored flights
/price <ORIG> <DEST> <YYYY-MM-DD> - one-off price lookup
/refresh - re-check prices for your flights now
/alert <id> <price> - notify when the price drops to or below <price>
/unwatch <id> - stop monitoring a flight
/stats - monitoring totals

Notes:
- Airports are 3-letter IATA codes (MEX, CUN, JFK, ...).
- Prices are in MXN.
Example:
/watch MEX CUN 2026-12-15 3500
`

var ErrInvalidArguments = errors.New("invalid arguments")

func ParseWatchArgs(args string) (origin, dest, date string, threshold *decimal.Decimal, err error) {
	parts := strings.Fields(args)
	if len(parts) != 3 && len(parts) != 4 {
		return "", "", "", nil, ErrInvalidArguments
	}
	if len(parts) == 4 {
		value, parseErr := parseAmount(parts[3])
		if parseErr != nil {
			return "", "", "", nil, ErrInvalidArguments
		}
		threshold = &value
	}
	return parts[0], parts[1], parts[2], threshold, nil
}

func ParseRouteArgs(args string) (origin, dest, date string, err error) {
	parts := strings.Fields(args)
	if len(parts) != 3 {
		return "", "", "", ErrInvalidArguments
	}
	return parts[0], parts[1], parts[2], nil
}

func ParseAlertArgs(args string) (id string, price decimal.Decimal, err error) {
	parts := strings.Fields(args)
	if len(parts) != 2 {
		return "", decimal.Decimal{}, ErrInvalidArguments
	}
	value, err := parseAmount(parts[1])
	if err != nil {
		return "", decimal.Decimal{}, ErrInvalidArguments
	}
	return parts[0], value, nil
}

func ParseRecordID(args string) (string, error) {
	id := strings.TrimSpace(args)
	if id == "" {
		return "", ErrInvalidArguments
	}
	return id, nil
}

// parseAmount tolerates "$3,500" style input the way the original bot did.
func parseAmount(input string) (decimal.Decimal, error) {
	cleaned := strings.NewReplacer(",", "", "$", "").Replace(strings.TrimSpace(input))
	return decimal.NewFromString(cleaned)
}
