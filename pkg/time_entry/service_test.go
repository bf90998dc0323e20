package time_entry

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

func serviceCtx() context.Context {
	return tenant.WithTenant(context.Background(), tenant.Tenant{Id: 1, Uid: "test-tenant", Name: "Test"})
}

func TestCreateSnapshotsResolvedRates(t *testing.T) {
	store := rate.NewStubStore()
	store.DefaultsByPerson[10] = rate.Defaults{BillingRate: rateOf("100"), CostRate: rateOf("60")}
	repo := NewStubRepo()
	service := NewService(repo, rate.NewResolver(store))

	created, err := service.Create(serviceCtx(), TimeEntry{
		PersonId:  10,
		ProjectId: 1,
		Date:      time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC),
		Hours:     decimal.NewFromInt(8),
		Billable:  true,
	})
	require.NoError(t, err)

	assert.NotZero(t, created.Id)
	assert.NotEmpty(t, created.Uid)
	assert.Equal(t, StatusOpen, created.Status)
	assert.True(t, rate.RatesEqual(rateOf("100"), created.BillingRate))
	assert.True(t, rate.RatesEqual(rateOf("60"), created.CostRate))
	assert.Equal(t, rate.TierPersonDefault, created.BillingRateSource)
	assert.Equal(t, rate.TierPersonDefault, created.CostRateSource)
}

func TestCreateWithoutAnyRatesStoresUnresolved(t *testing.T) {
	repo := NewStubRepo()
	service := NewService(repo, rate.NewResolver(rate.NewStubStore()))

	created, err := service.Create(serviceCtx(), TimeEntry{
		PersonId:  20,
		ProjectId: 1,
		Date:      time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC),
		Hours:     decimal.NewFromInt(4),
		Billable:  true,
	})
	require.NoError(t, err)

	assert.Nil(t, created.BillingRate)
	assert.Nil(t, created.CostRate)
	assert.Equal(t, rate.TierUnresolved, created.BillingRateSource)
	assert.Equal(t, rate.TierUnresolved, created.CostRateSource)
}

func TestCreateRequiresTenant(t *testing.T) {
	service := NewService(NewStubRepo(), rate.NewResolver(rate.NewStubStore()))

	_, err := service.Create(context.Background(), TimeEntry{
		PersonId:  10,
		ProjectId: 1,
		Date:      time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC),
		Hours:     decimal.NewFromInt(8),
	})
	assert.ErrorIs(t, err, tenant.ErrNoTenant)
}
