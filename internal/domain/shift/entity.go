package shift

import (
	"time"

	"github.com/storeops/attendance-backend-go/internal/pkg/utils"
)

// Shift is a named, reusable work-period template. Start and end are
// wall-clock times; the date parts are meaningless. Shifts are never hard
// deleted once referenced, only deactivated.
type Shift struct {
	ID          string
	Name        string
	StartTime   time.Time
	EndTime     time.Time
	IsOvernight bool
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// SpansMidnight reports whether the shift crosses midnight, either by flag
// or because the end does not fall after the start.
func (s Shift) SpansMidnight() bool {
	return s.IsOvernight || !endAfterStart(s.StartTime, s.EndTime)
}

// DurationMinutes is always positive, even for overnight shifts.
func (s Shift) DurationMinutes() int {
	return utils.ShiftDurationMinutes(s.StartTime, s.EndTime, s.IsOvernight)
}

// BoundsOn places the shift on a calendar day in loc. date always denotes
// the shift's start day; overnight shifts end on the following day.
func (s Shift) BoundsOn(date time.Time, loc *time.Location) (time.Time, time.Time) {
	return utils.ShiftBounds(date, s.StartTime, s.EndTime, s.IsOvernight, loc)
}

func endAfterStart(start, end time.Time) bool {
	s := start.Hour()*3600 + start.Minute()*60 + start.Second()
	e := end.Hour()*3600 + end.Minute()*60 + end.Second()
	return e > s
}
