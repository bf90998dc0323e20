package rate

import (
	"context"
	"testing"
	"time"

	"github.com/hourglass-hq/hourglass/pkg/tenant"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rateOf(value string) *decimal.Decimal {
	d, err := decimal.NewFromString(value)
	if err != nil {
		panic(err)
	}
	return &d
}

func testCtx() context.Context {
	return tenant.WithTenant(context.Background(), tenant.Tenant{Id: 1, Uid: "test-tenant", Name: "Test"})
}

func TestResolvePrecedence(t *testing.T) {
	ctx := testCtx()
	asOf := date(2024, time.March, 15)

	// Every tier carries a value for person 10 on the project.
	newFullStore := func() *StubStore {
		store := NewStubStore()
		store.ProjectOverridesByProject[100] = []Override{
			{Id: 1, SubjectKind: SubjectPerson, SubjectId: 10, BillingRate: rateOf("175"), CostRate: rateOf("90"), EffectiveStart: date(2024, time.January, 1)},
		}
		store.SchedulesByPerson[10] = []Override{
			{Id: 2, SubjectKind: SubjectPerson, SubjectId: 10, BillingRate: rateOf("150"), CostRate: rateOf("80"), EffectiveStart: date(2024, time.January, 1)},
		}
		store.DefaultsByPerson[10] = Defaults{BillingRate: rateOf("100"), CostRate: rateOf("60")}
		store.RoleByPerson[10] = 5
		store.DefaultsByRole[5] = Defaults{BillingRate: rateOf("95"), CostRate: rateOf("55")}
		return store
	}

	subject := Subject{Kind: SubjectPerson, PersonId: 10, ProjectId: 100}

	t.Run("manual override wins over every tier", func(t *testing.T) {
		resolver := NewResolver(newFullStore())
		manual := ManualRates{BillingRate: rateOf("200"), CostRate: rateOf("120")}

		res, err := resolver.ResolveWithManual(ctx, subject, manual, asOf)
		require.NoError(t, err)
		assert.True(t, res.BillingRate.Equal(decimal.NewFromInt(200)))
		assert.True(t, res.CostRate.Equal(decimal.NewFromInt(120)))
		assert.Equal(t, TierManual, res.BillingSource)
		assert.Equal(t, TierManual, res.CostSource)
	})

	t.Run("project override beats schedule and defaults", func(t *testing.T) {
		resolver := NewResolver(newFullStore())

		res, err := resolver.Resolve(ctx, subject, asOf)
		require.NoError(t, err)
		assert.True(t, res.BillingRate.Equal(decimal.NewFromInt(175)))
		assert.Equal(t, TierProjectOverride, res.BillingSource)
		assert.Equal(t, TierProjectOverride, res.CostSource)
	})

	t.Run("schedule applies when no project override", func(t *testing.T) {
		store := newFullStore()
		store.ProjectOverridesByProject = map[int][]Override{}
		resolver := NewResolver(store)

		res, err := resolver.Resolve(ctx, subject, asOf)
		require.NoError(t, err)
		assert.True(t, res.BillingRate.Equal(decimal.NewFromInt(150)))
		assert.Equal(t, TierPersonSchedule, res.BillingSource)
	})

	t.Run("person default applies when no dated record", func(t *testing.T) {
		store := newFullStore()
		store.ProjectOverridesByProject = map[int][]Override{}
		store.SchedulesByPerson = map[int][]Override{}
		resolver := NewResolver(store)

		res, err := resolver.Resolve(ctx, subject, asOf)
		require.NoError(t, err)
		assert.True(t, res.BillingRate.Equal(decimal.NewFromInt(100)))
		assert.Equal(t, TierPersonDefault, res.BillingSource)
	})

	t.Run("role default is the final fallback for a person", func(t *testing.T) {
		store := newFullStore()
		store.ProjectOverridesByProject = map[int][]Override{}
		store.SchedulesByPerson = map[int][]Override{}
		store.DefaultsByPerson[10] = Defaults{}
		resolver := NewResolver(store)

		res, err := resolver.Resolve(ctx, subject, asOf)
		require.NoError(t, err)
		assert.True(t, res.BillingRate.Equal(decimal.NewFromInt(95)))
		assert.Equal(t, TierRoleDefault, res.BillingSource)
	})

	t.Run("unresolved when no tier yields a value", func(t *testing.T) {
		resolver := NewResolver(NewStubStore())

		res, err := resolver.Resolve(ctx, Subject{Kind: SubjectPerson, PersonId: 99, ProjectId: 100}, asOf)
		require.NoError(t, err)
		assert.Nil(t, res.BillingRate)
		assert.Nil(t, res.CostRate)
		assert.Equal(t, TierUnresolved, res.BillingSource)
		assert.Equal(t, TierUnresolved, res.CostSource)
		assert.Empty(t, res.Chain)
	})

	t.Run("missing tenant in context is an error", func(t *testing.T) {
		resolver := NewResolver(newFullStore())
		_, err := resolver.Resolve(context.Background(), subject, asOf)
		assert.ErrorIs(t, err, tenant.ErrNoTenant)
	})
}

func TestResolveNullFieldFallthrough(t *testing.T) {
	ctx := testCtx()
	asOf := date(2024, time.March, 15)

	store := NewStubStore()
	// Override sets cost only; billing must fall through to the schedule.
	store.ProjectOverridesByProject[100] = []Override{
		{Id: 1, SubjectKind: SubjectPerson, SubjectId: 10, CostRate: rateOf("120"), EffectiveStart: date(2024, time.January, 1)},
	}
	store.SchedulesByPerson[10] = []Override{
		{Id: 2, SubjectKind: SubjectPerson, SubjectId: 10, BillingRate: rateOf("150"), CostRate: rateOf("80"), EffectiveStart: date(2024, time.January, 1)},
	}
	resolver := NewResolver(store)

	res, err := resolver.Resolve(ctx, Subject{Kind: SubjectPerson, PersonId: 10, ProjectId: 100}, asOf)
	require.NoError(t, err)

	assert.True(t, res.CostRate.Equal(decimal.NewFromInt(120)))
	assert.Equal(t, TierProjectOverride, res.CostSource)
	assert.True(t, res.BillingRate.Equal(decimal.NewFromInt(150)))
	assert.Equal(t, TierPersonSchedule, res.BillingSource)

	require.Len(t, res.Chain, 2)
	assert.Equal(t, TierProjectOverride, res.Chain[0].Tier)
	assert.Equal(t, TierPersonSchedule, res.Chain[1].Tier)
}

func TestResolveEffectiveDating(t *testing.T) {
	ctx := testCtx()

	// Person default $100, schedule $150 through June 2024, open-ended
	// project override $175 from March 2024.
	store := NewStubStore()
	store.DefaultsByPerson[10] = Defaults{BillingRate: rateOf("100")}
	store.SchedulesByPerson[10] = []Override{
		{Id: 1, SubjectKind: SubjectPerson, SubjectId: 10, BillingRate: rateOf("150"),
			EffectiveStart: date(2024, time.January, 1), EffectiveEnd: datePtr(2024, time.June, 30)},
	}
	store.ProjectOverridesByProject[100] = []Override{
		{Id: 2, SubjectKind: SubjectPerson, SubjectId: 10, BillingRate: rateOf("175"),
			EffectiveStart: date(2024, time.March, 1)},
	}
	resolver := NewResolver(store)
	subject := Subject{Kind: SubjectPerson, PersonId: 10, ProjectId: 100}

	t.Run("before override window the schedule applies", func(t *testing.T) {
		res, err := resolver.Resolve(ctx, subject, date(2024, time.February, 1))
		require.NoError(t, err)
		assert.True(t, res.BillingRate.Equal(decimal.NewFromInt(150)))
		assert.Equal(t, TierPersonSchedule, res.BillingSource)
	})

	t.Run("inside override window the override applies", func(t *testing.T) {
		res, err := resolver.Resolve(ctx, subject, date(2024, time.April, 1))
		require.NoError(t, err)
		assert.True(t, res.BillingRate.Equal(decimal.NewFromInt(175)))
		assert.Equal(t, TierProjectOverride, res.BillingSource)
	})

	t.Run("after the schedule expires the open-ended override still applies", func(t *testing.T) {
		res, err := resolver.Resolve(ctx, subject, date(2025, time.January, 1))
		require.NoError(t, err)
		assert.True(t, res.BillingRate.Equal(decimal.NewFromInt(175)))
		assert.Equal(t, TierProjectOverride, res.BillingSource)
	})

	t.Run("outside every window the default applies", func(t *testing.T) {
		res, err := resolver.Resolve(ctx, subject, date(2023, time.June, 1))
		require.NoError(t, err)
		assert.True(t, res.BillingRate.Equal(decimal.NewFromInt(100)))
		assert.Equal(t, TierPersonDefault, res.BillingSource)
	})
}

func TestResolveLineItemRestriction(t *testing.T) {
	ctx := testCtx()
	asOf := date(2024, time.March, 15)

	store := NewStubStore()
	store.ProjectOverridesByProject[100] = []Override{
		{Id: 1, SubjectKind: SubjectPerson, SubjectId: 10, BillingRate: rateOf("175"),
			EffectiveStart: date(2024, time.January, 1), LineItemIds: []int{7, 8}},
	}
	store.DefaultsByPerson[10] = Defaults{BillingRate: rateOf("100")}
	resolver := NewResolver(store)

	t.Run("listed line item gets the override", func(t *testing.T) {
		subject := Subject{Kind: SubjectPerson, PersonId: 10, ProjectId: 100, LineItemId: 7}
		res, err := resolver.Resolve(ctx, subject, asOf)
		require.NoError(t, err)
		assert.True(t, res.BillingRate.Equal(decimal.NewFromInt(175)))
		assert.Equal(t, TierProjectOverride, res.BillingSource)
	})

	t.Run("unlisted line item skips the tier", func(t *testing.T) {
		subject := Subject{Kind: SubjectPerson, PersonId: 10, ProjectId: 100, LineItemId: 9}
		res, err := resolver.Resolve(ctx, subject, asOf)
		require.NoError(t, err)
		assert.True(t, res.BillingRate.Equal(decimal.NewFromInt(100)))
		assert.Equal(t, TierPersonDefault, res.BillingSource)
	})
}

func TestResolveRoleSubject(t *testing.T) {
	ctx := testCtx()
	asOf := date(2024, time.March, 15)

	store := NewStubStore()
	store.ProjectOverridesByProject[100] = []Override{
		{Id: 1, SubjectKind: SubjectRole, SubjectId: 5, BillingRate: rateOf("140"),
			EffectiveStart: date(2024, time.January, 1)},
	}
	store.DefaultsByRole[5] = Defaults{BillingRate: rateOf("110"), CostRate: rateOf("70")}
	resolver := NewResolver(store)

	t.Run("role-scoped override applies to a role subject", func(t *testing.T) {
		res, err := resolver.Resolve(ctx, Subject{Kind: SubjectRole, RoleId: 5, ProjectId: 100}, asOf)
		require.NoError(t, err)
		assert.True(t, res.BillingRate.Equal(decimal.NewFromInt(140)))
		assert.Equal(t, TierProjectOverride, res.BillingSource)
		// Cost not set by the override, falls to the role default.
		assert.True(t, res.CostRate.Equal(decimal.NewFromInt(70)))
		assert.Equal(t, TierRoleDefault, res.CostSource)
	})

	t.Run("role-scoped override applies to a person holding the role", func(t *testing.T) {
		store.RoleByPerson[10] = 5
		res, err := resolver.Resolve(ctx, Subject{Kind: SubjectPerson, PersonId: 10, ProjectId: 100}, asOf)
		require.NoError(t, err)
		assert.True(t, res.BillingRate.Equal(decimal.NewFromInt(140)))
		assert.Equal(t, TierProjectOverride, res.BillingSource)
	})
}

func TestRatesEqual(t *testing.T) {
	assert.True(t, RatesEqual(nil, nil))
	assert.False(t, RatesEqual(rateOf("150"), nil))
	assert.False(t, RatesEqual(nil, rateOf("150")))
	assert.True(t, RatesEqual(rateOf("150"), rateOf("150.00")))
	assert.False(t, RatesEqual(rateOf("150"), rateOf("150.01")))
}
