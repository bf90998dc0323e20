package rate_schedule

import (
	"time"

	"github.com/shopspring/decimal"
)

// RateSchedule is a globally scoped, effective-dated rate for one person.
// It applies on every engagement unless a project override shadows it.
// A nil EffectiveEnd means the schedule is ongoing.
type RateSchedule struct {
	ID             int
	PersonID       int
	BillingRate    *decimal.Decimal
	CostRate       *decimal.Decimal
	EffectiveStart time.Time
	EffectiveEnd   *time.Time
	Notes          *string
}
