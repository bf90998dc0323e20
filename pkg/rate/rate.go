package rate

import (
	"time"

	"github.com/shopspring/decimal"
)

// SubjectKind tells whether a rate subject is a concrete person or a role.
type SubjectKind string

const (
	SubjectPerson SubjectKind = "person"
	SubjectRole   SubjectKind = "role"
)

// Subject identifies whose rate is being resolved. PersonId or RoleId is set
// depending on Kind; RoleId may also be set for a person subject so that
// role-scoped overrides and the role default can apply as fallbacks.
// ProjectId, EstimateId and LineItemId narrow the engagement context and may
// be zero when not applicable.
type Subject struct {
	Kind       SubjectKind
	PersonId   int
	RoleId     int
	ProjectId  int
	EstimateId int
	LineItemId int
}

func PersonSubject(personId int) Subject {
	return Subject{Kind: SubjectPerson, PersonId: personId}
}

func RoleSubject(roleId int) Subject {
	return Subject{Kind: SubjectRole, RoleId: roleId}
}

// Tier identifies which rate source produced a value. Stored on financial
// records as the provenance tag.
type Tier string

const (
	TierManual          Tier = "manual"
	TierProjectOverride Tier = "project_override"
	TierPersonSchedule  Tier = "person_schedule"
	TierPersonDefault   Tier = "person_default"
	TierRoleDefault     Tier = "role_default"
	TierUnresolved      Tier = "unresolved"
)

// Override is a candidate rate record from the project override or person
// schedule tier. EffectiveEnd == nil means the record is open-ended.
// LineItemIds restricts a project override to specific estimate line items;
// empty means it applies to every line item.
type Override struct {
	Id             int
	SubjectKind    SubjectKind
	SubjectId      int
	BillingRate    *decimal.Decimal
	CostRate       *decimal.Decimal
	EffectiveStart time.Time
	EffectiveEnd   *time.Time
	Notes          *string
	LineItemIds    []int
}

// Defaults is the non-dated fallback rate pair attached to a person or role.
type Defaults struct {
	BillingRate *decimal.Decimal
	CostRate    *decimal.Decimal
}

// ManualRates is a line-item level override entered directly on the record.
// It has no date range and always wins when present.
type ManualRates struct {
	BillingRate *decimal.Decimal
	CostRate    *decimal.Decimal
}

// ChainEntry records one tier consulted during resolution and the values it
// offered, for provenance display.
type ChainEntry struct {
	Tier        Tier
	BillingRate *decimal.Decimal
	CostRate    *decimal.Decimal
}

// Resolution is the outcome of walking the tiers for one subject and date.
// Billing and cost resolve independently: each field carries the tier that
// produced it, TierUnresolved when no tier offered a value.
type Resolution struct {
	BillingRate   *decimal.Decimal
	CostRate      *decimal.Decimal
	BillingSource Tier
	CostSource    Tier
	Chain         []ChainEntry
}

// RatesEqual compares two nullable rates. Two nils are equal; decimal
// comparison ignores representation differences (150 == 150.00).
func RatesEqual(a, b *decimal.Decimal) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}
