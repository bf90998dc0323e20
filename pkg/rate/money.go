package rate

import (
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"
)

// Rates are persisted as decimal strings so no precision is lost between the
// resolver and the store.

func NullDecimal(d *decimal.Decimal) sql.NullString {
	if d == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}

func DecimalFromNull(ns sql.NullString) (*decimal.Decimal, error) {
	if !ns.Valid {
		return nil, nil
	}
	d, err := decimal.NewFromString(ns.String)
	if err != nil {
		return nil, fmt.Errorf("could not parse stored rate %q: %w", ns.String, err)
	}
	return &d, nil
}

// DecimalPtr is a convenience for building nullable rates from literals.
func DecimalPtr(d decimal.Decimal) *decimal.Decimal {
	return &d
}

// ParseNullableRate converts an optional JSON rate string into a decimal.
func ParseNullableRate(s *string) (*decimal.Decimal, error) {
	if s == nil {
		return nil, nil
	}
	d, err := decimal.NewFromString(*s)
	if err != nil {
		return nil, fmt.Errorf("invalid rate %q: %w", *s, err)
	}
	return &d, nil
}

// FormatNullableRate renders a nullable decimal as an optional JSON string.
func FormatNullableRate(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.String()
	return &s
}
