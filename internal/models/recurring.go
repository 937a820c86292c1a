package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RecurringCharge is a scheduled repeating expense, applied lazily at login
// or by the daily sweep rather than via a timer per definition.
type RecurringCharge struct {
	Amount       decimal.Decimal `json:"amount"`
	Category     string          `json:"category"`
	IntervalDays int             `json:"interval_days"`
	NextDue      time.Time       `json:"next_due"`
}
