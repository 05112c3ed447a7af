package services

import "time"

// DailyChecker decides whether the fixed daily fee is due: once per calendar
// day, regardless of how often the processor ticks.
type DailyChecker struct{}

// IsDue returns true if the last run was on an earlier calendar day.
func (DailyChecker) IsDue(lastRun, now time.Time) bool {
	if lastRun.IsZero() {
		return true
	}
	return lastRun.UTC().Format("2006-01-02") != now.UTC().Format("2006-01-02")
}
