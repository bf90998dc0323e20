package recalc

import (
	"errors"
	"slices"

	"github.com/hourglass-hq/hourglass/internal/config"
	"github.com/hourglass-hq/hourglass/pkg/estimate"
	"github.com/hourglass-hq/hourglass/pkg/time_entry"
)

var ErrInvalidScope = errors.New("invalid recalculation scope")

// Scope selects the records to recalculate: exactly one of ProjectId
// (that project's time entries) or EstimateId (that estimate's line items).
type Scope struct {
	ProjectId  int
	EstimateId int
}

func ProjectScope(projectId int) Scope {
	return Scope{ProjectId: projectId}
}

func EstimateScope(estimateId int) Scope {
	return Scope{EstimateId: estimateId}
}

func (s Scope) validate() error {
	if (s.ProjectId == 0) == (s.EstimateId == 0) {
		return ErrInvalidScope
	}
	return nil
}

// RecordError reports a single record that could not be recalculated.
type RecordError struct {
	RecordId int    `json:"recordId"`
	Message  string `json:"message"`
}

// Result summarizes one recalculation pass. In every mode
// TotalEntries == LockedEntries + Unchanged + WouldChange (dry run) or
// TotalEntries == LockedEntries + Unchanged + Updated + Skipped (commit).
type Result struct {
	DryRun        bool          `json:"dryRun"`
	TotalEntries  int           `json:"totalEntries"`
	LockedEntries int           `json:"lockedEntries"`
	WouldChange   int           `json:"wouldChange"`
	Unchanged     int           `json:"unchanged"`
	Updated       int           `json:"updated"`
	Skipped       int           `json:"skipped"`
	NeedsReview   int           `json:"needsReview"`
	Errors        []RecordError `json:"errors,omitempty"`
}

// LockPolicy decides which records recalculation must never mutate. The
// status sets come from configuration; entries are locked by their own
// status, line items by their parent estimate's status.
type LockPolicy struct {
	EntryStatuses    []string
	EstimateStatuses []string
}

func NewLockPolicy(cfg config.Recalc) LockPolicy {
	return LockPolicy{
		EntryStatuses:    cfg.LockedEntryStatuses,
		EstimateStatuses: cfg.LockedEstimateStatuses,
	}
}

func (p LockPolicy) EntryLocked(status time_entry.Status) bool {
	return slices.Contains(p.EntryStatuses, string(status))
}

func (p LockPolicy) EstimateLocked(status estimate.Status) bool {
	return slices.Contains(p.EstimateStatuses, string(status))
}
