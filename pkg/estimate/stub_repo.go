package estimate

import (
	"context"
	"errors"
	"slices"
	"sort"
)

// StubRepo keeps estimates and line items in memory for tests. FailOnIds
// makes UpdateLineItemRates fail for the listed items.
type StubRepo struct {
	Estimates  map[int]Estimate
	LineItems  map[int]LineItem
	FailOnIds  []int
	nextId     int
	nextItemId int
}

func NewStubRepo() *StubRepo {
	return &StubRepo{
		Estimates: make(map[int]Estimate),
		LineItems: make(map[int]LineItem),
	}
}

func (r *StubRepo) Store(_ context.Context, _ int, estimate Estimate) (int, error) {
	r.nextId++
	estimate.Id = r.nextId
	r.Estimates[estimate.Id] = estimate
	return estimate.Id, nil
}

func (r *StubRepo) Get(_ context.Context, _ int, id int) (Estimate, error) {
	estimate, ok := r.Estimates[id]
	if !ok {
		return Estimate{}, ErrEstimateNotFound
	}
	return estimate, nil
}

func (r *StubRepo) GetAllForProject(_ context.Context, _ int, projectId int) ([]Estimate, error) {
	var estimates []Estimate
	for _, estimate := range r.Estimates {
		if estimate.ProjectId == projectId {
			estimates = append(estimates, estimate)
		}
	}
	sort.Slice(estimates, func(i, j int) bool { return estimates[i].Id < estimates[j].Id })
	return estimates, nil
}

func (r *StubRepo) Exists(_ context.Context, _ int, id int) (bool, error) {
	_, ok := r.Estimates[id]
	return ok, nil
}

func (r *StubRepo) UpdateStatus(_ context.Context, _ int, id int, status Status) (bool, error) {
	estimate, ok := r.Estimates[id]
	if !ok {
		return false, nil
	}
	estimate.Status = status
	r.Estimates[id] = estimate
	return true, nil
}

func (r *StubRepo) Delete(_ context.Context, _ int, id int) (bool, error) {
	if _, ok := r.Estimates[id]; !ok {
		return false, nil
	}
	delete(r.Estimates, id)
	return true, nil
}

func (r *StubRepo) StoreLineItem(_ context.Context, _ int, item LineItem) (int, error) {
	r.nextItemId++
	item.Id = r.nextItemId
	r.LineItems[item.Id] = item
	return item.Id, nil
}

func (r *StubRepo) GetLineItem(_ context.Context, _ int, id int) (LineItem, error) {
	item, ok := r.LineItems[id]
	if !ok {
		return LineItem{}, ErrLineItemNotFound
	}
	return item, nil
}

func (r *StubRepo) GetLineItems(_ context.Context, _ int, estimateId int) ([]LineItem, error) {
	var items []LineItem
	for _, item := range r.LineItems {
		if item.EstimateId == estimateId {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Id < items[j].Id })
	return items, nil
}

func (r *StubRepo) UpdateLineItemRates(_ context.Context, _ int, id int, update RateUpdate, lockedStatuses []string) (bool, error) {
	if slices.Contains(r.FailOnIds, id) {
		return false, errors.New("stubbed update failure")
	}
	item, ok := r.LineItems[id]
	if !ok {
		return false, nil
	}
	if parent, ok := r.Estimates[item.EstimateId]; ok {
		if slices.Contains(lockedStatuses, string(parent.Status)) {
			return false, nil
		}
	}
	item.BillingRate = update.BillingRate
	item.CostRate = update.CostRate
	item.BillingRateSource = update.BillingRateSource
	item.CostRateSource = update.CostRateSource
	r.LineItems[id] = item
	return true, nil
}

func (r *StubRepo) DeleteLineItem(_ context.Context, _ int, id int) (bool, error) {
	if _, ok := r.LineItems[id]; !ok {
		return false, nil
	}
	delete(r.LineItems, id)
	return true, nil
}
