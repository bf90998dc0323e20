package recalc

import (
	"context"
	"errors"
	"fmt"

	"github.com/hourglass-hq/hourglass/pkg/estimate"
	"github.com/hourglass-hq/hourglass/pkg/project"
	"github.com/hourglass-hq/hourglass/pkg/rate"
	"github.com/hourglass-hq/hourglass/pkg/tenant"
	"github.com/hourglass-hq/hourglass/pkg/time_entry"
	log "github.com/sirupsen/logrus"
	"github.com/shopspring/decimal"
)

type Engine interface {
	Recalculate(ctx context.Context, scope Scope, dryRun bool) (Result, error)
}

type EngineImpl struct {
	entries   time_entry.Repo
	estimates estimate.Repo
	projects  project.Repo
	resolver  rate.Resolver
	policy    LockPolicy
}

func NewEngine(
	entries time_entry.Repo,
	estimates estimate.Repo,
	projects project.Repo,
	resolver rate.Resolver,
	policy LockPolicy,
) *EngineImpl {
	return &EngineImpl{
		entries:   entries,
		estimates: estimates,
		projects:  projects,
		resolver:  resolver,
		policy:    policy,
	}
}

// Recalculate re-resolves rates for every record in scope. Dry run and
// commit walk the records identically; only the write is conditional.
// Records are processed independently: a failed write is counted and
// reported, never aborting the rest of the batch.
func (e *EngineImpl) Recalculate(ctx context.Context, scope Scope, dryRun bool) (Result, error) {
	tenantId, err := tenant.CurrentId(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("failed to get current tenant: %w", err)
	}
	if err := scope.validate(); err != nil {
		return Result{}, err
	}
	if scope.ProjectId != 0 {
		return e.recalculateProject(ctx, tenantId, scope.ProjectId, dryRun)
	}
	return e.recalculateEstimate(ctx, tenantId, scope.EstimateId, dryRun)
}

func (e *EngineImpl) recalculateProject(ctx context.Context, tenantId int, projectId int, dryRun bool) (Result, error) {
	exists, err := e.projects.Exists(ctx, tenantId, projectId)
	if err != nil {
		return Result{}, err
	}
	if !exists {
		return Result{}, fmt.Errorf("%w: %w %d", ErrInvalidScope, project.ErrProjectNotFound, projectId)
	}

	entries, err := e.entries.GetAllForProject(ctx, tenantId, projectId)
	if err != nil {
		return Result{}, err
	}

	result := Result{DryRun: dryRun, TotalEntries: len(entries)}
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		if e.policy.EntryLocked(entry.Status) {
			result.LockedEntries++
			continue
		}

		subject := rate.PersonSubject(entry.PersonId)
		subject.ProjectId = entry.ProjectId
		resolution, err := e.resolver.Resolve(ctx, subject, entry.Date)
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, RecordError{RecordId: entry.Id, Message: err.Error()})
			continue
		}
		outcome := classify(entry.BillingRate, entry.CostRate, entry.BillingRateSource, entry.CostRateSource,
			resolution, entry.Billable)
		if outcome.needsReview {
			result.NeedsReview++
		}
		if !outcome.changed {
			result.Unchanged++
			continue
		}
		if dryRun {
			result.WouldChange++
			continue
		}

		update := time_entry.RateUpdate{
			BillingRate:       resolution.BillingRate,
			CostRate:          resolution.CostRate,
			BillingRateSource: resolution.BillingSource,
			CostRateSource:    resolution.CostSource,
		}
		updated, err := e.entries.UpdateRates(ctx, tenantId, entry.Id, update, e.policy.EntryStatuses)
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, RecordError{RecordId: entry.Id, Message: err.Error()})
			continue
		}
		if !updated {
			// The entry was locked or deleted between classification and
			// the write; the statement refused it.
			result.Skipped++
			result.Errors = append(result.Errors, RecordError{RecordId: entry.Id, Message: "entry locked or removed at write time"})
			continue
		}
		result.Updated++
	}

	log.Infof("recalculated project %d: %d entries, %d updated, %d unchanged, %d locked, %d skipped (dryRun=%t)",
		projectId, result.TotalEntries, result.Updated, result.Unchanged, result.LockedEntries, result.Skipped, dryRun)
	return result, nil
}

func (e *EngineImpl) recalculateEstimate(ctx context.Context, tenantId int, estimateId int, dryRun bool) (Result, error) {
	parent, err := e.estimates.Get(ctx, tenantId, estimateId)
	if err != nil {
		if errors.Is(err, estimate.ErrEstimateNotFound) {
			return Result{}, fmt.Errorf("%w: %w %d", ErrInvalidScope, estimate.ErrEstimateNotFound, estimateId)
		}
		return Result{}, err
	}

	items, err := e.estimates.GetLineItems(ctx, tenantId, estimateId)
	if err != nil {
		return Result{}, err
	}

	locked := e.policy.EstimateLocked(parent.Status)
	result := Result{DryRun: dryRun, TotalEntries: len(items)}
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		if locked {
			result.LockedEntries++
			continue
		}

		subject := lineItemSubject(parent, item)
		manual := rate.ManualRates{BillingRate: item.ManualBillingRate, CostRate: item.ManualCostRate}
		resolution, err := e.resolver.ResolveWithManual(ctx, subject, manual, parent.EffectiveDate)
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, RecordError{RecordId: item.Id, Message: err.Error()})
			continue
		}
		outcome := classify(item.BillingRate, item.CostRate, item.BillingRateSource, item.CostRateSource,
			resolution, true)
		if outcome.needsReview {
			result.NeedsReview++
		}
		if !outcome.changed {
			result.Unchanged++
			continue
		}
		if dryRun {
			result.WouldChange++
			continue
		}

		update := estimate.RateUpdate{
			BillingRate:       resolution.BillingRate,
			CostRate:          resolution.CostRate,
			BillingRateSource: resolution.BillingSource,
			CostRateSource:    resolution.CostSource,
		}
		updated, err := e.estimates.UpdateLineItemRates(ctx, tenantId, item.Id, update, e.policy.EstimateStatuses)
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, RecordError{RecordId: item.Id, Message: err.Error()})
			continue
		}
		if !updated {
			result.Skipped++
			result.Errors = append(result.Errors, RecordError{RecordId: item.Id, Message: "line item locked or removed at write time"})
			continue
		}
		result.Updated++
	}

	log.Infof("recalculated estimate %d: %d line items, %d updated, %d unchanged, %d locked, %d skipped (dryRun=%t)",
		estimateId, result.TotalEntries, result.Updated, result.Unchanged, result.LockedEntries, result.Skipped, dryRun)
	return result, nil
}

type outcome struct {
	changed     bool
	needsReview bool
}

// classify compares a record's stored rate snapshot against a fresh
// resolution. A provenance change counts as a change even when the value
// is numerically identical. needsReview flags unresolved billing on
// billable records and unresolved cost on any record.
func classify(billing, cost *decimal.Decimal, billingSource, costSource rate.Tier,
	resolution rate.Resolution, billable bool) outcome {
	changed := !rate.RatesEqual(billing, resolution.BillingRate) ||
		!rate.RatesEqual(cost, resolution.CostRate) ||
		billingSource != resolution.BillingSource ||
		costSource != resolution.CostSource
	needsReview := (billable && resolution.BillingSource == rate.TierUnresolved) ||
		resolution.CostSource == rate.TierUnresolved
	return outcome{changed: changed, needsReview: needsReview}
}

func lineItemSubject(parent estimate.Estimate, item estimate.LineItem) rate.Subject {
	var subject rate.Subject
	if item.SubjectKind == rate.SubjectPerson {
		subject = rate.PersonSubject(item.PersonId)
	} else {
		subject = rate.RoleSubject(item.RoleId)
	}
	subject.ProjectId = parent.ProjectId
	subject.EstimateId = parent.Id
	subject.LineItemId = item.Id
	return subject
}
