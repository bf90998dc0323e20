package rate_schedule

import (
	"context"
	"testing"
	"time"

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

func TestStoreValidSchedule(t *testing.T) {
	service := NewService(NewStubRepo())

	stored, err := service.Store(testCtx(), RateSchedule{
		PersonID:       10,
		BillingRate:    rateOf("150"),
		CostRate:       rateOf("80"),
		EffectiveStart: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.NotZero(t, stored.ID)

	schedules, err := service.GetAllForPerson(testCtx(), 10)
	require.NoError(t, err)
	assert.Len(t, schedules, 1)
}

func TestStoreRejectsInvalidSchedule(t *testing.T) {
	service := NewService(NewStubRepo())
	start := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	endBeforeStart := time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)

	_, err := service.Store(testCtx(), RateSchedule{EffectiveStart: start})
	assert.ErrorIs(t, err, ErrInvalidSchedule)

	_, err = service.Store(testCtx(), RateSchedule{PersonID: 10})
	assert.ErrorIs(t, err, ErrInvalidSchedule)

	_, err = service.Store(testCtx(), RateSchedule{
		PersonID:       10,
		EffectiveStart: start,
		EffectiveEnd:   &endBeforeStart,
	})
	assert.ErrorIs(t, err, ErrInvalidSchedule)
}
