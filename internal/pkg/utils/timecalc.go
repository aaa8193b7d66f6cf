package utils

import "time"

// ShiftDurationMinutes returns the whole-minute length of a shift given its
// wall-clock start and end. When isOvernight is set, or whenever end does
// not fall after start, the end is pushed to the next day.
func ShiftDurationMinutes(start, end time.Time, isOvernight bool) int {
	base := time.Date(2000, 1, 1, start.Hour(), start.Minute(), start.Second(), 0, time.UTC)
	until := time.Date(2000, 1, 1, end.Hour(), end.Minute(), end.Second(), 0, time.UTC)

	if isOvernight || !until.After(base) {
		until = until.Add(24 * time.Hour)
	}

	return int(until.Sub(base).Minutes())
}

// RoundToNearest rounds minutes to the nearest multiple of bucket, ties
// rounding up. A bucket of one or less is a no-op.
func RoundToNearest(minutes, bucket int) int {
	if bucket <= 1 {
		return minutes
	}
	return ((minutes + bucket/2) / bucket) * bucket
}

// ShiftBounds places a shift's wall-clock times on the given calendar day in
// loc. The returned end is overnight-aware: it lands on the next day when
// the shift spans midnight. date only contributes year/month/day.
func ShiftBounds(date time.Time, start, end time.Time, isOvernight bool, loc *time.Location) (time.Time, time.Time) {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(),
		start.Hour(), start.Minute(), start.Second(), 0, loc)
	dayEnd := time.Date(date.Year(), date.Month(), date.Day(),
		end.Hour(), end.Minute(), end.Second(), 0, loc)

	if isOvernight || !dayEnd.After(dayStart) {
		dayEnd = dayEnd.Add(24 * time.Hour)
	}

	return dayStart, dayEnd
}

// EndOfDay returns 23:59:59 of date's calendar day in loc.
func EndOfDay(date time.Time, loc *time.Location) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), 23, 59, 59, 0, loc)
}
