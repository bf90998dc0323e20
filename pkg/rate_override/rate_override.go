package rate_override

import (
	"time"

	"github.com/hourglass-hq/hourglass/pkg/rate"
	"github.com/shopspring/decimal"
)

// RateOverride is a project-scoped rate override for a person or a role.
// It applies from EffectiveStart through EffectiveEnd inclusive;
// a nil EffectiveEnd means the override is ongoing. Either rate may be nil,
// in which case that field resolves from a lower tier.
type RateOverride struct {
	ID          int
	ProjectID   int
	SubjectKind rate.SubjectKind
	SubjectID   int
	BillingRate *decimal.Decimal
	CostRate    *decimal.Decimal
	// EffectiveStart is the first date the override applies to.
	EffectiveStart time.Time
	// EffectiveEnd is the last date the override applies to, nil = open-ended.
	EffectiveEnd *time.Time
	// Notes provide additional information or comments about the override.
	Notes *string
	// LineItemIDs restricts the override to specific estimate line items.
	// Empty means it applies to every line item and time entry on the project.
	LineItemIDs []int
}
