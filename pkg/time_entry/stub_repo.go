package time_entry

import (
	"context"
	"errors"
	"slices"
	"sort"
)

// StubRepo keeps entries in memory for tests. FailOnIds makes UpdateRates
// return an error for the listed entries, to exercise partial-failure paths.
type StubRepo struct {
	Entries   map[int]TimeEntry
	FailOnIds []int
	nextId    int
}

func NewStubRepo() *StubRepo {
	return &StubRepo{Entries: make(map[int]TimeEntry)}
}

func (r *StubRepo) Store(_ context.Context, _ int, entry TimeEntry) (int, error) {
	r.nextId++
	entry.Id = r.nextId
	r.Entries[entry.Id] = entry
	return entry.Id, nil
}

func (r *StubRepo) Get(_ context.Context, _ int, id int) (TimeEntry, error) {
	entry, ok := r.Entries[id]
	if !ok {
		return TimeEntry{}, ErrEntryNotFound
	}
	return entry, nil
}

func (r *StubRepo) GetAllForProject(_ context.Context, _ int, projectId int) ([]TimeEntry, error) {
	var entries []TimeEntry
	for _, entry := range r.Entries {
		if entry.ProjectId == projectId {
			entries = append(entries, entry)
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Id < entries[j].Id })
	return entries, nil
}

func (r *StubRepo) UpdateStatus(_ context.Context, _ int, id int, status Status) (bool, error) {
	entry, ok := r.Entries[id]
	if !ok {
		return false, nil
	}
	entry.Status = status
	r.Entries[id] = entry
	return true, nil
}

func (r *StubRepo) UpdateRates(_ context.Context, _ int, id int, update RateUpdate, lockedStatuses []string) (bool, error) {
	if slices.Contains(r.FailOnIds, id) {
		return false, errors.New("stubbed update failure")
	}
	entry, ok := r.Entries[id]
	if !ok {
		return false, nil
	}
	if slices.Contains(lockedStatuses, string(entry.Status)) {
		return false, nil
	}
	entry.BillingRate = update.BillingRate
	entry.CostRate = update.CostRate
	entry.BillingRateSource = update.BillingRateSource
	entry.CostRateSource = update.CostRateSource
	r.Entries[id] = entry
	return true, nil
}

func (r *StubRepo) Delete(_ context.Context, _ int, id int) (bool, error) {
	if _, ok := r.Entries[id]; !ok {
		return false, nil
	}
	delete(r.Entries, id)
	return true, nil
}
