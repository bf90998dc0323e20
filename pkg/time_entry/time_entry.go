package time_entry

import (
	"time"

	"github.com/hourglass-hq/hourglass/pkg/rate"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusOpen      Status = "open"
	StatusSubmitted Status = "submitted"
	StatusApproved  Status = "approved"
	StatusInvoiced  Status = "invoiced"
)

// TimeEntry is one person's work on one project on one date. Rates are
// snapshots resolved at creation or by recalculation; the source fields
// record which tier produced each value. Once an entry moves past "open"
// the lock policy decides whether recalculation may still touch it.
type TimeEntry struct {
	Id                int
	Uid               string
	PersonId          int
	ProjectId         int
	Date              time.Time
	Hours             decimal.Decimal
	Billable          bool
	Description       string
	BillingRate       *decimal.Decimal
	CostRate          *decimal.Decimal
	BillingRateSource rate.Tier
	CostRateSource    rate.Tier
	Status            Status
}
