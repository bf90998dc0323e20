package time_entry

import (
	"testing"
	"time"

	"github.com/hourglass-hq/hourglass/internal/test_utils"
	"github.com/hourglass-hq/hourglass/pkg/project"
	"github.com/hourglass-hq/hourglass/pkg/rate"
	"github.com/hourglass-hq/hourglass/pkg/staff"
	"github.com/hourglass-hq/hourglass/pkg/tenant"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var lockedStatuses = []string{"submitted", "approved", "invoiced"}

func rateOf(value string) *decimal.Decimal {
	d, err := decimal.NewFromString(value)
	if err != nil {
		panic(err)
	}
	return &d
}

func TestRepoStoreAndUpdateRates(t *testing.T) {
	db := test_utils.SetupTestDB(t)
	ctx := test_utils.SeedTenant(t, db)
	tenantId, err := tenant.CurrentId(ctx)
	require.NoError(t, err)

	personId, err := staff.NewRepo(db).StorePerson(ctx, tenantId, staff.Person{
		Uid:         "p-1",
		DisplayName: "Ada",
	})
	require.NoError(t, err)
	projectId, err := project.NewRepo(db).Store(ctx, tenantId, project.Project{
		Name:   "Apollo",
		Status: project.StatusActive,
	})
	require.NoError(t, err)

	repo := NewRepo(db)
	id, err := repo.Store(ctx, tenantId, TimeEntry{
		Uid:               "e-1",
		PersonId:          personId,
		ProjectId:         projectId,
		Date:              time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC),
		Hours:             decimal.NewFromInt(8),
		Billable:          true,
		Description:       "api work",
		BillingRate:       rateOf("90"),
		CostRate:          rateOf("60"),
		BillingRateSource: rate.TierPersonDefault,
		CostRateSource:    rate.TierPersonDefault,
		Status:            StatusOpen,
	})
	require.NoError(t, err)

	stored, err := repo.Get(ctx, tenantId, id)
	require.NoError(t, err)
	assert.Equal(t, "e-1", stored.Uid)
	assert.True(t, rate.RatesEqual(rateOf("90"), stored.BillingRate))
	assert.Equal(t, "2024-03-15", stored.Date.Format("2006-01-02"))
	assert.Equal(t, StatusOpen, stored.Status)

	// Open entries accept rate rewrites.
	updated, err := repo.UpdateRates(ctx, tenantId, id, RateUpdate{
		BillingRate:       rateOf("100"),
		CostRate:          rateOf("60"),
		BillingRateSource: rate.TierProjectOverride,
		CostRateSource:    rate.TierPersonDefault,
	}, lockedStatuses)
	require.NoError(t, err)
	assert.True(t, updated)

	stored, err = repo.Get(ctx, tenantId, id)
	require.NoError(t, err)
	assert.True(t, rate.RatesEqual(rateOf("100"), stored.BillingRate))
	assert.Equal(t, rate.TierProjectOverride, stored.BillingRateSource)
}

func TestRepoUpdateRatesRefusesLockedEntry(t *testing.T) {
	db := test_utils.SetupTestDB(t)
	ctx := test_utils.SeedTenant(t, db)
	tenantId, err := tenant.CurrentId(ctx)
	require.NoError(t, err)

	personId, err := staff.NewRepo(db).StorePerson(ctx, tenantId, staff.Person{Uid: "p-1", DisplayName: "Ada"})
	require.NoError(t, err)
	projectId, err := project.NewRepo(db).Store(ctx, tenantId, project.Project{Name: "Apollo", Status: project.StatusActive})
	require.NoError(t, err)

	repo := NewRepo(db)
	id, err := repo.Store(ctx, tenantId, TimeEntry{
		Uid:               "e-1",
		PersonId:          personId,
		ProjectId:         projectId,
		Date:              time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC),
		Hours:             decimal.NewFromInt(8),
		Billable:          true,
		BillingRate:       rateOf("90"),
		CostRate:          rateOf("60"),
		BillingRateSource: rate.TierPersonDefault,
		CostRateSource:    rate.TierPersonDefault,
		Status:            StatusApproved,
	})
	require.NoError(t, err)

	updated, err := repo.UpdateRates(ctx, tenantId, id, RateUpdate{
		BillingRate:       rateOf("100"),
		CostRate:          rateOf("70"),
		BillingRateSource: rate.TierPersonSchedule,
		CostRateSource:    rate.TierPersonSchedule,
	}, lockedStatuses)
	require.NoError(t, err)
	assert.False(t, updated)

	stored, err := repo.Get(ctx, tenantId, id)
	require.NoError(t, err)
	assert.True(t, rate.RatesEqual(rateOf("90"), stored.BillingRate))
	assert.Equal(t, StatusApproved, stored.Status)
}

func TestRepoGetAllForProjectOrdersByDate(t *testing.T) {
	db := test_utils.SetupTestDB(t)
	ctx := test_utils.SeedTenant(t, db)
	tenantId, err := tenant.CurrentId(ctx)
	require.NoError(t, err)

	personId, err := staff.NewRepo(db).StorePerson(ctx, tenantId, staff.Person{Uid: "p-1", DisplayName: "Ada"})
	require.NoError(t, err)
	projectId, err := project.NewRepo(db).Store(ctx, tenantId, project.Project{Name: "Apollo", Status: project.StatusActive})
	require.NoError(t, err)

	repo := NewRepo(db)
	dates := []string{"2024-03-20", "2024-03-10", "2024-03-15"}
	for i, raw := range dates {
		day, err := time.Parse("2006-01-02", raw)
		require.NoError(t, err)
		_, err = repo.Store(ctx, tenantId, TimeEntry{
			Uid:               "e-" + raw,
			PersonId:          personId,
			ProjectId:         projectId,
			Date:              day,
			Hours:             decimal.NewFromInt(int64(i + 1)),
			Billable:          true,
			BillingRateSource: rate.TierUnresolved,
			CostRateSource:    rate.TierUnresolved,
			Status:            StatusOpen,
		})
		require.NoError(t, err)
	}

	entries, err := repo.GetAllForProject(ctx, tenantId, projectId)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "2024-03-10", entries[0].Date.Format("2006-01-02"))
	assert.Equal(t, "2024-03-15", entries[1].Date.Format("2006-01-02"))
	assert.Equal(t, "2024-03-20", entries[2].Date.Format("2006-01-02"))
}
