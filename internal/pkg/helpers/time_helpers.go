package helpers

import "time"

// IsWorkingDay reports whether t falls on Monday through Friday.
func IsWorkingDay(t time.Time) bool {
	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	default:
		return true
	}
}

// AddWorkingDays returns the date n working days after from, skipping
// weekends. The time of day is preserved. n <= 0 returns from unchanged
// when it is a working day, otherwise the next working day.
func AddWorkingDays(from time.Time, n int) time.Time {
	day := from
	if n <= 0 {
		for !IsWorkingDay(day) {
			day = day.AddDate(0, 0, 1)
		}
		return day
	}
	for added := 0; added < n; {
		day = day.AddDate(0, 0, 1)
		if IsWorkingDay(day) {
			added++
		}
	}
	return day
}
