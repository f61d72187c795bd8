package telegram

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mxflights/flightwatch/internal/domain"
)

// Display names for common IATA codes. Cosmetic only: unknown codes render
// as the bare code.
var iataNames = map[string]string{
	"MEX": "Ciudad de México", "CUN": "Cancún", "GDL": "Guadalajara",
	"MTY": "Monterrey", "TIJ": "Tijuana", "LAX": "Los Ángeles",
	"JFK": "Nueva York (JFK)", "MIA": "Miami", "MAD": "Madrid",
	"BCN": "Barcelona", "BOG": "Bogotá", "LIM": "Lima",
	"SCL": "Santiago", "EZE": "Buenos Aires", "GRU": "São Paulo",
	"ORD": "Chicago", "DFW": "Dallas", "SFO": "San Francisco",
	"CDG": "París", "LHR": "Londres", "FRA": "Frankfurt",
	"NRT": "Tokio", "DXB": "Dubái", "SIN": "Singapur",
}

func airportName(code string) string {
	if name, ok := iataNames[code]; ok {
		return name
	}
	return code
}

func formatPrice(price decimal.Decimal) string {
	return fmt.Sprintf("$%s MXN", price.StringFixed(2))
}

func formatRoute(record domain.FlightRecord) string {
	return fmt.Sprintf("%s → %s (%s → %s)", record.Origin, record.Dest, airportName(record.Origin), airportName(record.Dest))
}

func formatRecord(record domain.FlightRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s\n", record.ID, formatRoute(record))
	fmt.Fprintf(&b, "  date: %s\n", record.Date)
	if record.LastPrice != nil {
		fmt.Fprintf(&b, "  price: %s\n", formatPrice(*record.LastPrice))
	} else {
		b.WriteString("  price: pending\n")
	}
	if record.MinPrice != nil && record.MaxPrice != nil {
		fmt.Fprintf(&b, "  range: %s - %s\n", formatPrice(*record.MinPrice), formatPrice(*record.MaxPrice))
	}
	if record.AlertThreshold != nil {
		fmt.Fprintf(&b, "  alert: at or below %s\n", formatPrice(*record.AlertThreshold))
	}
	fmt.Fprintf(&b, "  checks: %d", record.CheckCount)
	return b.String()
}

func formatChange(alert domain.PriceAlert) string {
	switch alert.NewPrice.Cmp(alert.OldPrice) {
	case -1:
		return fmt.Sprintf("▼ down %s%%", alert.Percent.StringFixed(1))
	case 1:
		return fmt.Sprintf("▲ up %s%%", alert.Percent.StringFixed(1))
	default:
		return "no change"
	}
}

func formatAlert(alert domain.PriceAlert) string {
	var b strings.Builder
	b.WriteString("Price update: " + formatRoute(alert.Record) + "\n")
	fmt.Fprintf(&b, "date: %s\n", alert.Record.Date)
	fmt.Fprintf(&b, "%s → %s (%s)\n", formatPrice(alert.OldPrice), formatPrice(alert.NewPrice), formatChange(alert))
	if alert.Record.MinPrice != nil && alert.Record.MaxPrice != nil {
		fmt.Fprintf(&b, "range: %s - %s\n", formatPrice(*alert.Record.MinPrice), formatPrice(*alert.Record.MaxPrice))
	}
	if alert.Breached && alert.Threshold != nil {
		fmt.Fprintf(&b, "PRICE ALERT: %s is at or below your alert of %s\n", formatPrice(alert.NewPrice), formatPrice(*alert.Threshold))
	}
	return strings.TrimRight(b.String(), "\n")
}
