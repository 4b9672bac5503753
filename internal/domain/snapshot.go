package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MonthlySnapshot is the total market value of every account of every user
// at the time the monthly job ran. It is not a ledger entry.
type MonthlySnapshot struct {
	ID               uuid.UUID
	Month            time.Time // first day of the month, UTC
	TotalMarketValue decimal.Decimal
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// FirstOfMonth normalizes t to midnight UTC on the first day of its month.
func FirstOfMonth(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
