package estimate

import (
	"time"

	"github.com/hourglass-hq/hourglass/pkg/rate"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusDraft    Status = "draft"
	StatusSent     Status = "sent"
	StatusApproved Status = "approved"
	StatusInvoiced Status = "invoiced"
)

// Estimate is a priced proposal for a project. EffectiveDate is the date
// its line-item rates are resolved against; status drives the lock policy
// for the line items underneath it.
type Estimate struct {
	Id            int
	Name          string
	ProjectId     int
	EffectiveDate time.Time
	Status        Status
}

// LineItem prices a block of hours for a person or a role. The manual rate
// fields, when set, override every other rate source for this line item.
// BillingRate/CostRate are the resolved snapshot with their source tiers.
type LineItem struct {
	Id                int
	EstimateId        int
	Description       string
	SubjectKind       rate.SubjectKind
	PersonId          int
	RoleId            int
	Hours             decimal.Decimal
	BillingRate       *decimal.Decimal
	CostRate          *decimal.Decimal
	ManualBillingRate *decimal.Decimal
	ManualCostRate    *decimal.Decimal
	BillingRateSource rate.Tier
	CostRateSource    rate.Tier
}

// RateUpdate is the snapshot the recalculation engine writes back.
type RateUpdate struct {
	BillingRate       *decimal.Decimal
	CostRate          *decimal.Decimal
	BillingRateSource rate.Tier
	CostRateSource    rate.Tier
}
