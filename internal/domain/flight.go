package domain

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrForbidden     = errors.New("record owned by another user")
	ErrAlreadyExists = errors.New("record already exists")
	ErrInvalidDate   = errors.New("invalid date")
	ErrInvalidRoute  = errors.New("invalid airport code")
	ErrInvalidAmount = errors.New("invalid amount")
)

// DateLayout is the calendar-date format used for flight dates everywhere:
// registration input, price-source queries and persistence.
const DateLayout = "2006-01-02"

// FlightRecord is one user's monitored (origin, destination, date) search.
// Price fields are nil until the first successful quote.
type FlightRecord struct {
	ID             string           `json:"id"`
	Origin         string           `json:"origin"`
	Dest           string           `json:"dest"`
	Date           string           `json:"date"`
	OwnerID        int64            `json:"owner_id"`
	NotifyTarget   int64            `json:"notify_target"`
	LastPrice      *decimal.Decimal `json:"last_price,omitempty"`
	MinPrice       *decimal.Decimal `json:"min_price,omitempty"`
	MaxPrice       *decimal.Decimal `json:"max_price,omitempty"`
	AlertThreshold *decimal.Decimal `json:"alert_threshold,omitempty"`
	CheckCount     int64            `json:"check_count"`
	CreatedAt      time.Time        `json:"created_at"`
	LastCheckedAt  time.Time        `json:"last_checked_at"`
}

// RecordID derives the stable identity of a monitored search. The same
// (owner, origin, dest, date) always maps to the same id, which is what makes
// re-registration idempotent.
func RecordID(ownerID int64, origin, dest, date string) string {
	sum := md5.Sum([]byte(fmt.Sprintf("%d|%s|%s|%s", ownerID, origin, dest, date)))
	return hex.EncodeToString(sum[:])[:12]
}

// Clone returns a deep copy so callers never hold aliases into store state.
func (r FlightRecord) Clone() FlightRecord {
	out := r
	out.LastPrice = cloneDecimal(r.LastPrice)
	out.MinPrice = cloneDecimal(r.MinPrice)
	out.MaxPrice = cloneDecimal(r.MaxPrice)
	out.AlertThreshold = cloneDecimal(r.AlertThreshold)
	return out
}

func cloneDecimal(d *decimal.Decimal) *decimal.Decimal {
	if d == nil {
		return nil
	}
	v := *d
	return &v
}

// PriceAlert is the notification payload handed to a Notifier when a sweep
// detects a notable change or a threshold breach.
type PriceAlert struct {
	Record    FlightRecord
	OldPrice  decimal.Decimal
	NewPrice  decimal.Decimal
	Percent   decimal.Decimal
	Breached  bool
	Threshold *decimal.Decimal
}
