package rate

import (
	"sort"
	"time"

	"github.com/hourglass-hq/hourglass/internal/utils"
)

// Covers reports whether an effective-dated window includes the given date.
// Both bounds are inclusive; a nil end means the window is open-ended.
// All comparisons happen on calendar dates, time-of-day is ignored.
func Covers(start time.Time, end *time.Time, date time.Time) bool {
	d := utils.DateOnly(date)
	if d.Before(utils.DateOnly(start)) {
		return false
	}
	if end != nil && d.After(utils.DateOnly(*end)) {
		return false
	}
	return true
}

// EffectiveOn picks the override that applies on the given date from a set of
// candidates at one tier, or nil when none covers it. When several candidates
// cover the date the one with the latest effective start wins; among records
// sharing the same start the highest id (latest created) wins, so overlap is
// deterministic even though the store does not forbid it.
func EffectiveOn(candidates []Override, date time.Time) *Override {
	covering := make([]Override, 0, len(candidates))
	for _, c := range candidates {
		if Covers(c.EffectiveStart, c.EffectiveEnd, date) {
			covering = append(covering, c)
		}
	}
	if len(covering) == 0 {
		return nil
	}

	sort.Slice(covering, func(i, j int) bool {
		si := utils.DateOnly(covering[i].EffectiveStart)
		sj := utils.DateOnly(covering[j].EffectiveStart)
		if !si.Equal(sj) {
			return si.After(sj)
		}
		return covering[i].Id > covering[j].Id
	})
	return &covering[0]
}
