package rate

import (
	"context"
	"fmt"
	"time"

	"github.com/hourglass-hq/hourglass/pkg/tenant"
	log "github.com/sirupsen/logrus"
	"github.com/shopspring/decimal"
)

// Resolver answers "what billing and cost rate apply" for a subject on a
// date, walking the override tiers in fixed precedence order:
// manual line-item override, project override, person schedule, then
// person/role default. Billing and cost resolve independently, so a nil
// field at a higher tier falls through to the next one.
type Resolver interface {
	Resolve(ctx context.Context, subject Subject, asOf time.Time) (Resolution, error)
	ResolveWithManual(ctx context.Context, subject Subject, manual ManualRates, asOf time.Time) (Resolution, error)
}

type ResolverImpl struct {
	store Store
}

func NewResolver(store Store) *ResolverImpl {
	return &ResolverImpl{store: store}
}

func (r *ResolverImpl) Resolve(ctx context.Context, subject Subject, asOf time.Time) (Resolution, error) {
	return r.ResolveWithManual(ctx, subject, ManualRates{}, asOf)
}

func (r *ResolverImpl) ResolveWithManual(ctx context.Context, subject Subject, manual ManualRates, asOf time.Time) (Resolution, error) {
	tenantId, err := tenant.CurrentId(ctx)
	if err != nil {
		return Resolution{}, fmt.Errorf("failed to get current tenant: %w", err)
	}

	res := resolution{Resolution{BillingSource: TierUnresolved, CostSource: TierUnresolved}}

	// Tier 1: manual line-item override, unconditional.
	res.apply(TierManual, manual.BillingRate, manual.CostRate)
	if res.done() {
		return res.Resolution, nil
	}

	// The person's role backs both role-scoped project overrides and the
	// final role-default fallback.
	var personDefaults Defaults
	roleId := subject.RoleId
	if subject.Kind == SubjectPerson {
		defaults, personRoleId, err := r.store.PersonDefaults(ctx, tenantId, subject.PersonId)
		if err != nil {
			return Resolution{}, fmt.Errorf("failed to load person defaults: %w", err)
		}
		personDefaults = defaults
		if roleId == 0 {
			roleId = personRoleId
		}
	}

	// Tier 2: project-scoped override effective on asOf.
	if subject.ProjectId != 0 {
		lookup := subject
		lookup.RoleId = roleId
		candidates, err := r.store.ProjectOverrides(ctx, tenantId, subject.ProjectId, lookup)
		if err != nil {
			return Resolution{}, fmt.Errorf("failed to load project overrides: %w", err)
		}
		applicable := filterLineItemRestricted(candidates, subject.LineItemId)
		if best := EffectiveOn(applicable, asOf); best != nil {
			log.Tracef("project override %d effective for subject %+v on %s", best.Id, subject, asOf.Format("2006-01-02"))
			res.apply(TierProjectOverride, best.BillingRate, best.CostRate)
			if res.done() {
				return res.Resolution, nil
			}
		}
	}

	// Tier 3: person rate schedule effective on asOf.
	if subject.PersonId != 0 {
		schedules, err := r.store.PersonSchedules(ctx, tenantId, subject.PersonId)
		if err != nil {
			return Resolution{}, fmt.Errorf("failed to load person schedules: %w", err)
		}
		if best := EffectiveOn(schedules, asOf); best != nil {
			res.apply(TierPersonSchedule, best.BillingRate, best.CostRate)
			if res.done() {
				return res.Resolution, nil
			}
		}
	}

	// Tier 4: person default, with the role default as the last fallback.
	// Role subjects only ever have the role default.
	if subject.Kind == SubjectPerson {
		res.apply(TierPersonDefault, personDefaults.BillingRate, personDefaults.CostRate)
		if res.done() {
			return res.Resolution, nil
		}
	}
	if roleId != 0 {
		roleDefaults, err := r.store.RoleDefaults(ctx, tenantId, roleId)
		if err != nil {
			return Resolution{}, fmt.Errorf("failed to load role defaults: %w", err)
		}
		res.apply(TierRoleDefault, roleDefaults.BillingRate, roleDefaults.CostRate)
	}

	return res.Resolution, nil
}

func filterLineItemRestricted(candidates []Override, lineItemId int) []Override {
	applicable := make([]Override, 0, len(candidates))
	for _, c := range candidates {
		if len(c.LineItemIds) > 0 && !containsInt(c.LineItemIds, lineItemId) {
			continue
		}
		applicable = append(applicable, c)
	}
	return applicable
}

func containsInt(ids []int, id int) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

type resolution struct {
	Resolution
}

// apply records a tier that offered at least one value and fills any still
// unresolved field from it. The walk stops at the first tier that completes
// both fields, so the chain lists exactly the tiers that were consulted and
// had something to say.
func (r *resolution) apply(tier Tier, billing, cost *decimal.Decimal) {
	if billing == nil && cost == nil {
		return
	}
	r.Chain = append(r.Chain, ChainEntry{Tier: tier, BillingRate: billing, CostRate: cost})
	if r.BillingRate == nil && billing != nil {
		r.BillingRate = billing
		r.BillingSource = tier
	}
	if r.CostRate == nil && cost != nil {
		r.CostRate = cost
		r.CostSource = tier
	}
}

func (r *resolution) done() bool {
	return r.BillingRate != nil && r.CostRate != nil
}
