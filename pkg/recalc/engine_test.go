package recalc

import (
	"context"
	"testing"
	"time"

	"github.com/hourglass-hq/hourglass/pkg/estimate"
	"github.com/hourglass-hq/hourglass/pkg/project"
	"github.com/hourglass-hq/hourglass/pkg/rate"
	"github.com/hourglass-hq/hourglass/pkg/tenant"
	"github.com/hourglass-hq/hourglass/pkg/time_entry"
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

func testPolicy() LockPolicy {
	return LockPolicy{
		EntryStatuses:    []string{"submitted", "approved", "invoiced"},
		EstimateStatuses: []string{"approved", "invoiced"},
	}
}

type fixture struct {
	entries   *time_entry.StubRepo
	estimates *estimate.StubRepo
	projects  *project.StubRepo
	store     *rate.StubStore
	engine    *EngineImpl
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		entries:   time_entry.NewStubRepo(),
		estimates: estimate.NewStubRepo(),
		projects:  project.NewStubRepo(),
		store:     rate.NewStubStore(),
	}
	f.engine = NewEngine(f.entries, f.estimates, f.projects, rate.NewResolver(f.store), testPolicy())

	// Project 1 with person 10 resolving to 100/60 from the person default.
	_, err := f.projects.Store(testCtx(), 1, project.Project{Name: "Apollo"})
	require.NoError(t, err)
	f.store.DefaultsByPerson[10] = rate.Defaults{BillingRate: rateOf("100"), CostRate: rateOf("60")}
	return f
}

func (f *fixture) addEntry(t *testing.T, entry time_entry.TimeEntry) int {
	t.Helper()
	if entry.Hours.IsZero() {
		entry.Hours = decimal.NewFromInt(8)
	}
	if entry.Status == "" {
		entry.Status = time_entry.StatusOpen
	}
	id, err := f.entries.Store(testCtx(), 1, entry)
	require.NoError(t, err)
	return id
}

func currentEntry(date time.Time) time_entry.TimeEntry {
	return time_entry.TimeEntry{
		PersonId:          10,
		ProjectId:         1,
		Date:              date,
		Billable:          true,
		BillingRate:       rateOf("100"),
		CostRate:          rateOf("60"),
		BillingRateSource: rate.TierPersonDefault,
		CostRateSource:    rate.TierPersonDefault,
	}
}

func staleEntry(date time.Time) time_entry.TimeEntry {
	entry := currentEntry(date)
	entry.BillingRate = rateOf("90")
	return entry
}

func TestRecalculateProjectDryRun(t *testing.T) {
	f := newFixture(t)
	day := time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)

	f.addEntry(t, currentEntry(day))
	f.addEntry(t, currentEntry(day))
	staleId := f.addEntry(t, staleEntry(day))
	locked := staleEntry(day)
	locked.Status = time_entry.StatusSubmitted
	lockedId := f.addEntry(t, locked)

	result, err := f.engine.Recalculate(testCtx(), ProjectScope(1), true)
	require.NoError(t, err)

	assert.True(t, result.DryRun)
	assert.Equal(t, 4, result.TotalEntries)
	assert.Equal(t, 1, result.LockedEntries)
	assert.Equal(t, 2, result.Unchanged)
	assert.Equal(t, 1, result.WouldChange)
	assert.Equal(t, 0, result.Updated)
	assert.Equal(t, 0, result.Skipped)
	assert.Equal(t, result.TotalEntries, result.LockedEntries+result.Unchanged+result.WouldChange)

	// Dry run must not touch anything, stale and locked rates included.
	stale, err := f.entries.Get(testCtx(), 1, staleId)
	require.NoError(t, err)
	assert.True(t, rate.RatesEqual(rateOf("90"), stale.BillingRate))
	still, err := f.entries.Get(testCtx(), 1, lockedId)
	require.NoError(t, err)
	assert.True(t, rate.RatesEqual(rateOf("90"), still.BillingRate))
}

func TestRecalculateProjectCommitAndIdempotence(t *testing.T) {
	f := newFixture(t)
	day := time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)

	f.addEntry(t, currentEntry(day))
	staleId := f.addEntry(t, staleEntry(day))

	result, err := f.engine.Recalculate(testCtx(), ProjectScope(1), false)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Updated)
	assert.Equal(t, 1, result.Unchanged)
	assert.Equal(t, result.TotalEntries, result.Unchanged+result.Updated)

	updated, err := f.entries.Get(testCtx(), 1, staleId)
	require.NoError(t, err)
	assert.True(t, rate.RatesEqual(rateOf("100"), updated.BillingRate))
	assert.Equal(t, rate.TierPersonDefault, updated.BillingRateSource)

	// An immediate re-run finds nothing left to change.
	again, err := f.engine.Recalculate(testCtx(), ProjectScope(1), false)
	require.NoError(t, err)
	assert.Equal(t, 0, again.Updated)
	assert.Equal(t, 2, again.Unchanged)
}

func TestRecalculateInvalidScope(t *testing.T) {
	f := newFixture(t)

	_, err := f.engine.Recalculate(testCtx(), Scope{}, true)
	assert.ErrorIs(t, err, ErrInvalidScope)

	_, err = f.engine.Recalculate(testCtx(), Scope{ProjectId: 1, EstimateId: 1}, true)
	assert.ErrorIs(t, err, ErrInvalidScope)

	_, err = f.engine.Recalculate(testCtx(), ProjectScope(999), true)
	assert.ErrorIs(t, err, project.ErrProjectNotFound)

	_, err = f.engine.Recalculate(testCtx(), EstimateScope(999), true)
	assert.ErrorIs(t, err, estimate.ErrEstimateNotFound)
}

func TestRecalculatePartialFailure(t *testing.T) {
	f := newFixture(t)
	day := time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)

	failingId := f.addEntry(t, staleEntry(day))
	okId := f.addEntry(t, staleEntry(day))
	f.entries.FailOnIds = []int{failingId}

	result, err := f.engine.Recalculate(testCtx(), ProjectScope(1), false)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Updated)
	assert.Equal(t, 1, result.Skipped)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, failingId, result.Errors[0].RecordId)
	assert.Equal(t, result.TotalEntries, result.Updated+result.Skipped)

	// The failure must not have blocked the other record.
	ok, err := f.entries.Get(testCtx(), 1, okId)
	require.NoError(t, err)
	assert.True(t, rate.RatesEqual(rateOf("100"), ok.BillingRate))
}

func TestRecalculateNeedsReview(t *testing.T) {
	f := newFixture(t)
	day := time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)

	// Person 20 has no rates anywhere.
	entry := currentEntry(day)
	entry.PersonId = 20
	f.addEntry(t, entry)

	result, err := f.engine.Recalculate(testCtx(), ProjectScope(1), true)
	require.NoError(t, err)

	assert.Equal(t, 1, result.NeedsReview)
	// The stored snapshot still differs from the unresolved outcome.
	assert.Equal(t, 1, result.WouldChange)
}

func TestRecalculateCancelledContext(t *testing.T) {
	f := newFixture(t)
	day := time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)
	f.addEntry(t, currentEntry(day))

	ctx, cancel := context.WithCancel(testCtx())
	cancel()

	_, err := f.engine.Recalculate(ctx, ProjectScope(1), true)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRecalculateEstimate(t *testing.T) {
	f := newFixture(t)
	f.store.DefaultsByRole[5] = rate.Defaults{BillingRate: rateOf("120"), CostRate: rateOf("70")}

	estimateId, err := f.estimates.Store(testCtx(), 1, estimate.Estimate{
		Name:          "Phase 1",
		ProjectId:     1,
		EffectiveDate: time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
		Status:        estimate.StatusDraft,
	})
	require.NoError(t, err)

	// Manual rates win regardless of what the tiers say.
	manualId, err := f.estimates.StoreLineItem(testCtx(), 1, estimate.LineItem{
		EstimateId:        estimateId,
		SubjectKind:       rate.SubjectRole,
		RoleId:            5,
		Hours:             decimal.NewFromInt(40),
		BillingRate:       rateOf("200"),
		CostRate:          rateOf("70"),
		ManualBillingRate: rateOf("200"),
		BillingRateSource: rate.TierManual,
		CostRateSource:    rate.TierRoleDefault,
	})
	require.NoError(t, err)

	staleId, err := f.estimates.StoreLineItem(testCtx(), 1, estimate.LineItem{
		EstimateId:        estimateId,
		SubjectKind:       rate.SubjectRole,
		RoleId:            5,
		Hours:             decimal.NewFromInt(20),
		BillingRate:       rateOf("110"),
		CostRate:          rateOf("70"),
		BillingRateSource: rate.TierRoleDefault,
		CostRateSource:    rate.TierRoleDefault,
	})
	require.NoError(t, err)

	result, err := f.engine.Recalculate(testCtx(), EstimateScope(estimateId), false)
	require.NoError(t, err)
	assert.Equal(t, 2, result.TotalEntries)
	assert.Equal(t, 1, result.Unchanged)
	assert.Equal(t, 1, result.Updated)

	manual, err := f.estimates.GetLineItem(testCtx(), 1, manualId)
	require.NoError(t, err)
	assert.True(t, rate.RatesEqual(rateOf("200"), manual.BillingRate))
	assert.Equal(t, rate.TierManual, manual.BillingRateSource)

	refreshed, err := f.estimates.GetLineItem(testCtx(), 1, staleId)
	require.NoError(t, err)
	assert.True(t, rate.RatesEqual(rateOf("120"), refreshed.BillingRate))
	assert.Equal(t, rate.TierRoleDefault, refreshed.BillingRateSource)
}
