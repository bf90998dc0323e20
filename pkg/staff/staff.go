package staff

import (
	"github.com/shopspring/decimal"
)

// Role groups people with the same function and carries optional default
// rates, the last fallback of rate resolution.
type Role struct {
	Id                 int
	Name               string
	DefaultBillingRate *decimal.Decimal
	DefaultCostRate    *decimal.Decimal
}

// Person is a staff member. RoleId may be zero for people without a role.
// Default rates are nullable; a person without them falls back to the role.
type Person struct {
	Id                 int
	Uid                string
	DisplayName        string
	RoleId             int
	DefaultBillingRate *decimal.Decimal
	DefaultCostRate    *decimal.Decimal
}
