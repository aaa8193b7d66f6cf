package attendance

import (
	"testing"
	"time"

	"github.com/storeops/attendance-backend-go/internal/domain/shift"
	"github.com/stretchr/testify/assert"
)

var jakarta = func() *time.Location {
	loc, err := time.LoadLocation("Asia/Jakarta")
	if err != nil {
		panic(err)
	}
	return loc
}()

func dayShift() shift.Shift {
	return shift.Shift{
		ID:        "shift-day",
		Name:      "Day",
		StartTime: time.Date(0, 1, 1, 9, 0, 0, 0, time.UTC),
		EndTime:   time.Date(0, 1, 1, 18, 0, 0, 0, time.UTC),
		IsActive:  true,
	}
}

func nightShift() shift.Shift {
	return shift.Shift{
		ID:          "shift-night",
		Name:        "Night",
		StartTime:   time.Date(0, 1, 1, 22, 0, 0, 0, time.UTC),
		EndTime:     time.Date(0, 1, 1, 6, 0, 0, 0, time.UTC),
		IsOvernight: true,
		IsActive:    true,
	}
}

func punchDate() time.Time {
	return time.Date(2025, 8, 11, 0, 0, 0, 0, jakarta)
}

func at(h, m, s int) *time.Time {
	t := time.Date(2025, 8, 11, h, m, s, 0, jakarta)
	return &t
}

func atNextDay(h, m int) *time.Time {
	t := time.Date(2025, 8, 12, h, m, 0, 0, jakarta)
	return &t
}

func TestApplyGraceAndStatus_FullDayPresent(t *testing.T) {
	a := Attendance{Date: punchDate(), Status: StatusOpen, CheckIn: at(9, 0, 0), CheckOut: at(18, 0, 0)}
	a.ApplyGraceAndStatus(dayShift(), jakarta, DefaultMetricRules())

	assert.Equal(t, StatusPresent, a.Status)
	assert.Equal(t, 540, a.WorkedMinutes)
	assert.Equal(t, 0, a.LateMinutes)
	assert.Equal(t, 0, a.EarlyOutMinutes)
}

func TestApplyGraceAndStatus_HalfDayBoundary(t *testing.T) {
	rules := DefaultMetricRules()
	rules.RoundingBucket = 1 // exact minutes to probe the boundary

	// 360 worked minutes is PRESENT (>=, not >)
	a := Attendance{Date: punchDate(), Status: StatusOpen, CheckIn: at(9, 0, 0), CheckOut: at(15, 0, 0)}
	a.ApplyGraceAndStatus(dayShift(), jakarta, rules)
	assert.Equal(t, 360, a.WorkedMinutes)
	assert.Equal(t, StatusPresent, a.Status)

	// 359 worked minutes is HALF_DAY
	b := Attendance{Date: punchDate(), Status: StatusOpen, CheckIn: at(9, 0, 0), CheckOut: at(14, 59, 0)}
	b.ApplyGraceAndStatus(dayShift(), jakarta, rules)
	assert.Equal(t, 359, b.WorkedMinutes)
	assert.Equal(t, StatusHalfDay, b.Status)
}

func TestApplyGraceAndStatus_LateAndEarlyOut(t *testing.T) {
	a := Attendance{Date: punchDate(), Status: StatusOpen, CheckIn: at(9, 30, 0), CheckOut: at(17, 0, 0)}
	a.ApplyGraceAndStatus(dayShift(), jakarta, DefaultMetricRules())

	// late is measured from shiftStart+grace
	assert.Equal(t, 15, a.LateMinutes)
	assert.Equal(t, 60, a.EarlyOutMinutes)
	assert.Equal(t, 450, a.WorkedMinutes)
	assert.Equal(t, StatusPresent, a.Status)
}

func TestApplyGraceAndStatus_WorkedMinutesRounding(t *testing.T) {
	// 9:00 to 16:27 is 447 minutes, rounding to 445 in 5 minute buckets
	a := Attendance{Date: punchDate(), Status: StatusOpen, CheckIn: at(9, 0, 0), CheckOut: at(16, 27, 0)}
	a.ApplyGraceAndStatus(dayShift(), jakarta, DefaultMetricRules())
	assert.Equal(t, 445, a.WorkedMinutes)
}

func TestApplyGraceAndStatus_LoneCheckInNeverAbsent(t *testing.T) {
	a := Attendance{Date: punchDate(), Status: StatusOpen, CheckIn: at(9, 0, 0)}
	a.ApplyGraceAndStatus(dayShift(), jakarta, DefaultMetricRules())

	assert.Equal(t, 0, a.WorkedMinutes)
	assert.Equal(t, StatusOpen, a.Status)
}

func TestApplyGraceAndStatus_NoPunchesIsAbsent(t *testing.T) {
	a := Attendance{Date: punchDate(), Status: StatusOpen}
	a.ApplyGraceAndStatus(dayShift(), jakarta, DefaultMetricRules())
	assert.Equal(t, StatusAbsent, a.Status)
}

func TestApplyGraceAndStatus_OvernightShift(t *testing.T) {
	a := Attendance{Date: punchDate(), Status: StatusOpen, CheckIn: at(22, 0, 0), CheckOut: atNextDay(6, 0)}
	a.ApplyGraceAndStatus(nightShift(), jakarta, DefaultMetricRules())

	assert.Equal(t, 480, a.WorkedMinutes)
	assert.Equal(t, 0, a.LateMinutes)
	assert.Equal(t, 0, a.EarlyOutMinutes)
	assert.Equal(t, StatusPresent, a.Status)
}

func TestIsLateBeyondGrace_Boundary(t *testing.T) {
	grace := 15 * time.Minute

	// exactly shiftStart+grace is still on time
	assert.False(t, IsLateBeyondGrace(*at(9, 15, 0), punchDate(), dayShift(), jakarta, grace))
	// one second past the grace limit is late
	assert.True(t, IsLateBeyondGrace(*at(9, 15, 1), punchDate(), dayShift(), jakarta, grace))
}
