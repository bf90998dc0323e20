package rate_override

import (
	"context"
	"testing"
	"time"

	"github.com/hourglass-hq/hourglass/pkg/rate"
	"github.com/hourglass-hq/hourglass/pkg/tenant"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCtx() context.Context {
	return tenant.WithTenant(context.Background(), tenant.Tenant{Id: 1, Uid: "test-tenant", Name: "Test"})
}

func rateOf(value string) *decimal.Decimal {
	d, err := decimal.NewFromString(value)
	if err != nil {
		panic(err)
	}
	return &d
}

func TestStoreValidOverride(t *testing.T) {
	service := NewService(NewStubRepo())

	end := time.Date(2024, time.June, 30, 0, 0, 0, 0, time.UTC)
	stored, err := service.Store(testCtx(), RateOverride{
		ProjectID:      1,
		SubjectKind:    rate.SubjectPerson,
		SubjectID:      10,
		BillingRate:    rateOf("175"),
		EffectiveStart: time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
		EffectiveEnd:   &end,
	})
	require.NoError(t, err)
	assert.NotZero(t, stored.ID)

	overrides, err := service.GetAllForProject(testCtx(), 1)
	require.NoError(t, err)
	assert.Len(t, overrides, 1)
}

func TestStoreRejectsInvalidOverride(t *testing.T) {
	service := NewService(NewStubRepo())
	start := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	endBeforeStart := time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name     string
		override RateOverride
	}{
		{
			name: "unknown subject kind",
			override: RateOverride{
				ProjectID: 1, SubjectKind: "team", SubjectID: 10, EffectiveStart: start,
			},
		},
		{
			name: "missing subject id",
			override: RateOverride{
				ProjectID: 1, SubjectKind: rate.SubjectPerson, EffectiveStart: start,
			},
		},
		{
			name: "missing effective start",
			override: RateOverride{
				ProjectID: 1, SubjectKind: rate.SubjectPerson, SubjectID: 10,
			},
		},
		{
			name: "end before start",
			override: RateOverride{
				ProjectID: 1, SubjectKind: rate.SubjectPerson, SubjectID: 10,
				EffectiveStart: start, EffectiveEnd: &endBeforeStart,
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := service.Store(testCtx(), tc.override)
			assert.ErrorIs(t, err, ErrInvalidOverride)
		})
	}
}

func TestStoreRequiresTenant(t *testing.T) {
	service := NewService(NewStubRepo())

	_, err := service.Store(context.Background(), RateOverride{
		ProjectID:      1,
		SubjectKind:    rate.SubjectPerson,
		SubjectID:      10,
		EffectiveStart: time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
	})
	assert.ErrorIs(t, err, tenant.ErrNoTenant)
}
