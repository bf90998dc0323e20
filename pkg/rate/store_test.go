package rate

import (
	"database/sql"
	"testing"
	"time"

	"github.com/hourglass-hq/hourglass/internal/test_utils"
	"github.com/hourglass-hq/hourglass/pkg/tenant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type storeFixture struct {
	db        *sql.DB
	tenantId  int
	roleId    int
	personId  int
	projectId int
}

func setupStoreFixture(t *testing.T) (*storeFixture, *StoreImpl) {
	t.Helper()
	db := test_utils.SetupTestDB(t)
	ctx := test_utils.SeedTenant(t, db)
	tenantId, err := tenant.CurrentId(ctx)
	require.NoError(t, err)

	f := &storeFixture{db: db, tenantId: tenantId}
	f.roleId = f.insert(t,
		"INSERT INTO role (tenant_id, name, default_billing_rate, default_cost_rate) VALUES (?, ?, ?, ?)",
		tenantId, "Engineer", "110", "65")
	f.personId = f.insert(t,
		"INSERT INTO person (tenant_id, uid, display_name, role_id, default_billing_rate, default_cost_rate) VALUES (?, ?, ?, ?, ?, ?)",
		tenantId, "p-1", "Ada", f.roleId, "100", "60")
	f.projectId = f.insert(t,
		"INSERT INTO project (tenant_id, name, client_name, status) VALUES (?, ?, ?, ?)",
		tenantId, "Apollo", "ACME", "active")
	return f, NewStore(db)
}

func (f *storeFixture) insert(t *testing.T, query string, args ...any) int {
	t.Helper()
	result, err := f.db.Exec(query, args...)
	require.NoError(t, err)
	id, err := result.LastInsertId()
	require.NoError(t, err)
	return int(id)
}

func TestStorePersonAndRoleDefaults(t *testing.T) {
	f, store := setupStoreFixture(t)
	ctx := t.Context()

	defaults, roleId, err := store.PersonDefaults(ctx, f.tenantId, f.personId)
	require.NoError(t, err)
	assert.Equal(t, f.roleId, roleId)
	assert.True(t, RatesEqual(rateOf("100"), defaults.BillingRate))
	assert.True(t, RatesEqual(rateOf("60"), defaults.CostRate))

	roleDefaults, err := store.RoleDefaults(ctx, f.tenantId, f.roleId)
	require.NoError(t, err)
	assert.True(t, RatesEqual(rateOf("110"), roleDefaults.BillingRate))
}

func TestStoreProjectOverridesMatchPersonAndRole(t *testing.T) {
	f, store := setupStoreFixture(t)
	ctx := t.Context()

	personOverrideId := f.insert(t,
		`INSERT INTO project_rate_override (tenant_id, project_id, subject_kind, subject_id, billing_rate, effective_start)
			VALUES (?, ?, 'person', ?, ?, ?)`,
		f.tenantId, f.projectId, f.personId, "175", "2024-01-01")
	roleOverrideId := f.insert(t,
		`INSERT INTO project_rate_override (tenant_id, project_id, subject_kind, subject_id, cost_rate, effective_start)
			VALUES (?, ?, 'role', ?, ?, ?)`,
		f.tenantId, f.projectId, f.roleId, "70", "2024-01-01")
	// Another person's override must never match.
	otherPersonId := f.insert(t,
		"INSERT INTO person (tenant_id, uid, display_name) VALUES (?, ?, ?)",
		f.tenantId, "p-2", "Grace")
	f.insert(t,
		`INSERT INTO project_rate_override (tenant_id, project_id, subject_kind, subject_id, billing_rate, effective_start)
			VALUES (?, ?, 'person', ?, ?, ?)`,
		f.tenantId, f.projectId, otherPersonId, "999", "2024-01-01")

	subject := PersonSubject(f.personId)
	subject.RoleId = f.roleId
	overrides, err := store.ProjectOverrides(ctx, f.tenantId, f.projectId, subject)
	require.NoError(t, err)
	require.Len(t, overrides, 2)

	ids := []int{overrides[0].Id, overrides[1].Id}
	assert.Contains(t, ids, personOverrideId)
	assert.Contains(t, ids, roleOverrideId)
}

func TestStoreOverrideLineItemRestrictions(t *testing.T) {
	f, store := setupStoreFixture(t)
	ctx := t.Context()

	overrideId := f.insert(t,
		`INSERT INTO project_rate_override (tenant_id, project_id, subject_kind, subject_id, billing_rate, effective_start)
			VALUES (?, ?, 'person', ?, ?, ?)`,
		f.tenantId, f.projectId, f.personId, "175", "2024-01-01")
	for _, lineItemId := range []int{7, 9} {
		f.insert(t,
			"INSERT INTO project_rate_override_line_item (override_id, line_item_id) VALUES (?, ?)",
			overrideId, lineItemId)
	}

	overrides, err := store.ProjectOverrides(ctx, f.tenantId, f.projectId, PersonSubject(f.personId))
	require.NoError(t, err)
	require.Len(t, overrides, 1)
	assert.ElementsMatch(t, []int{7, 9}, overrides[0].LineItemIds)
}

func TestStorePersonSchedules(t *testing.T) {
	f, store := setupStoreFixture(t)
	ctx := t.Context()

	f.insert(t,
		`INSERT INTO person_rate_schedule (tenant_id, person_id, billing_rate, cost_rate, effective_start, effective_end)
			VALUES (?, ?, ?, ?, ?, ?)`,
		f.tenantId, f.personId, "150", "80", "2024-01-01", "2024-06-30")
	f.insert(t,
		`INSERT INTO person_rate_schedule (tenant_id, person_id, billing_rate, effective_start)
			VALUES (?, ?, ?, ?)`,
		f.tenantId, f.personId, "160", "2024-07-01")

	schedules, err := store.PersonSchedules(ctx, f.tenantId, f.personId)
	require.NoError(t, err)
	require.Len(t, schedules, 2)

	best := EffectiveOn(schedules, time.Date(2024, time.August, 1, 0, 0, 0, 0, time.UTC))
	require.NotNil(t, best)
	assert.True(t, RatesEqual(rateOf("160"), best.BillingRate))
	assert.Nil(t, best.EffectiveEnd)
}

func TestResolverOverSQLStore(t *testing.T) {
	f, store := setupStoreFixture(t)
	ctx := tenant.WithTenant(t.Context(), tenant.Tenant{Id: f.tenantId, Uid: "test-tenant", Name: "Test Tenant"})

	f.insert(t,
		`INSERT INTO project_rate_override (tenant_id, project_id, subject_kind, subject_id, billing_rate, effective_start)
			VALUES (?, ?, 'person', ?, ?, ?)`,
		f.tenantId, f.projectId, f.personId, "175", "2024-03-01")

	resolver := NewResolver(store)
	subject := PersonSubject(f.personId)
	subject.ProjectId = f.projectId

	resolution, err := resolver.Resolve(ctx, subject, time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	// Billing from the override, cost falls through to the person default.
	assert.True(t, RatesEqual(rateOf("175"), resolution.BillingRate))
	assert.Equal(t, TierProjectOverride, resolution.BillingSource)
	assert.True(t, RatesEqual(rateOf("60"), resolution.CostRate))
	assert.Equal(t, TierPersonDefault, resolution.CostSource)

	// Before the override starts, billing comes from the person default.
	resolution, err = resolver.Resolve(ctx, subject, time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, RatesEqual(rateOf("100"), resolution.BillingRate))
	assert.Equal(t, TierPersonDefault, resolution.BillingSource)
}
