package estimate

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

func newService(store *rate.StubStore) (*ServiceImpl, *StubRepo) {
	repo := NewStubRepo()
	return NewService(repo, rate.NewResolver(store)), repo
}

func createEstimate(t *testing.T, service *ServiceImpl) Estimate {
	t.Helper()
	created, err := service.Create(testCtx(), Estimate{
		Name:          "Phase 1",
		ProjectId:     1,
		EffectiveDate: time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return created
}

func TestCreateEstimateDefaultsToDraft(t *testing.T) {
	service, _ := newService(rate.NewStubStore())
	created := createEstimate(t, service)
	assert.NotZero(t, created.Id)
	assert.Equal(t, StatusDraft, created.Status)
}

func TestCreateLineItemResolvesAtEffectiveDate(t *testing.T) {
	store := rate.NewStubStore()
	store.DefaultsByRole[5] = rate.Defaults{BillingRate: rateOf("120"), CostRate: rateOf("70")}
	service, _ := newService(store)
	parent := createEstimate(t, service)

	item, err := service.CreateLineItem(testCtx(), LineItem{
		EstimateId:  parent.Id,
		Description: "backend build",
		SubjectKind: rate.SubjectRole,
		RoleId:      5,
		Hours:       decimal.NewFromInt(40),
	})
	require.NoError(t, err)

	assert.NotZero(t, item.Id)
	assert.True(t, rate.RatesEqual(rateOf("120"), item.BillingRate))
	assert.Equal(t, rate.TierRoleDefault, item.BillingRateSource)
	assert.True(t, rate.RatesEqual(rateOf("70"), item.CostRate))
}

func TestCreateLineItemManualRatesWin(t *testing.T) {
	store := rate.NewStubStore()
	store.DefaultsByRole[5] = rate.Defaults{BillingRate: rateOf("120"), CostRate: rateOf("70")}
	service, _ := newService(store)
	parent := createEstimate(t, service)

	item, err := service.CreateLineItem(testCtx(), LineItem{
		EstimateId:        parent.Id,
		SubjectKind:       rate.SubjectRole,
		RoleId:            5,
		Hours:             decimal.NewFromInt(10),
		ManualBillingRate: rateOf("200"),
	})
	require.NoError(t, err)

	// Manual billing wins; cost still falls through to the role default.
	assert.True(t, rate.RatesEqual(rateOf("200"), item.BillingRate))
	assert.Equal(t, rate.TierManual, item.BillingRateSource)
	assert.True(t, rate.RatesEqual(rateOf("70"), item.CostRate))
	assert.Equal(t, rate.TierRoleDefault, item.CostRateSource)
}

func TestCreateLineItemValidation(t *testing.T) {
	service, _ := newService(rate.NewStubStore())
	parent := createEstimate(t, service)

	_, err := service.CreateLineItem(testCtx(), LineItem{
		EstimateId:  parent.Id,
		SubjectKind: rate.SubjectPerson,
		Hours:       decimal.NewFromInt(10),
	})
	assert.ErrorIs(t, err, ErrInvalidLineItem)

	_, err = service.CreateLineItem(testCtx(), LineItem{
		EstimateId:  parent.Id,
		SubjectKind: rate.SubjectRole,
		RoleId:      5,
		Hours:       decimal.NewFromInt(-1),
	})
	assert.ErrorIs(t, err, ErrInvalidLineItem)

	_, err = service.CreateLineItem(testCtx(), LineItem{
		EstimateId:  999,
		SubjectKind: rate.SubjectRole,
		RoleId:      5,
		Hours:       decimal.NewFromInt(10),
	})
	assert.ErrorIs(t, err, ErrEstimateNotFound)
}
