package recurring

import (
	"time"

	"Wanderfund/internal/domain/savings"
)

const weekSpan = 7 * 24 * time.Hour

// IsDue reports whether a goal with the given cadence may be auto-debited at
// now. All comparisons use UTC calendar fields.
func IsDue(frequency savings.Frequency, last *time.Time, now time.Time) bool {
	if !frequency.IsRecurring() {
		return false
	}
	if last == nil {
		return true
	}

	now = now.UTC()
	prev := last.UTC()

	switch frequency {
	case savings.FrequencyDaily:
		return now.Truncate(24 * time.Hour).After(prev.Truncate(24 * time.Hour))
	case savings.FrequencyWeekly:
		return now.Sub(prev) >= weekSpan
	case savings.FrequencyMonthly:
		ny, nm, _ := now.Date()
		py, pm, _ := prev.Date()
		return ny > py || (ny == py && nm > pm)
	}
	return false
}

// PeriodKey names the cadence window containing now. Daily and weekly windows
// are keyed by the debit date, monthly ones by year and month.
func PeriodKey(frequency savings.Frequency, now time.Time) string {
	now = now.UTC()
	if frequency == savings.FrequencyMonthly {
		return now.Format("2006-01")
	}
	return now.Format("2006-01-02")
}
