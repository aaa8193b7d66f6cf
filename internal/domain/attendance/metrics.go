package attendance

import (
	"time"

	"github.com/storeops/attendance-backend-go/internal/domain/shift"
	"github.com/storeops/attendance-backend-go/internal/pkg/utils"
)

// MetricRules carries the tunables of the derived-metric computation.
type MetricRules struct {
	GracePeriod      time.Duration
	HalfDayThreshold int // worked minutes required for PRESENT
	RoundingBucket   int
}

func DefaultMetricRules() MetricRules {
	return MetricRules{
		GracePeriod:      15 * time.Minute,
		HalfDayThreshold: 360,
		RoundingBucket:   5,
	}
}

// ApplyGraceAndStatus recomputes late, early-out and worked minutes plus the
// status from the record's punches. It is called explicitly from the
// checkout path, from ADJUST approvals and from batch finalization; there is
// no implicit recompute hook. The function never fails: missing punches
// degrade the affected metrics to zero.
//
// A lone check-in is never classified ABSENT here; ABSENT requires both
// punches to be missing.
func (a *Attendance) ApplyGraceAndStatus(sh shift.Shift, loc *time.Location, rules MetricRules) {
	shiftStart, shiftEnd := sh.BoundsOn(a.Date, loc)

	a.LateMinutes = 0
	if a.CheckIn != nil {
		graceLimit := shiftStart.Add(rules.GracePeriod)
		if late := a.CheckIn.Sub(graceLimit); late > 0 {
			a.LateMinutes = int(late.Minutes())
		}
	}

	a.EarlyOutMinutes = 0
	if a.CheckOut != nil {
		if early := shiftEnd.Sub(*a.CheckOut); early > 0 {
			a.EarlyOutMinutes = int(early.Minutes())
		}
	}

	a.WorkedMinutes = 0
	if a.CheckIn != nil && a.CheckOut != nil {
		worked := int(a.CheckOut.Sub(*a.CheckIn).Minutes())
		if worked < 0 {
			worked = 0
		}
		a.WorkedMinutes = utils.RoundToNearest(worked, rules.RoundingBucket)
	}

	switch {
	case a.WorkedMinutes >= rules.HalfDayThreshold:
		a.Status = StatusPresent
	case a.WorkedMinutes > 0:
		a.Status = StatusHalfDay
	case a.CheckIn == nil && a.CheckOut == nil:
		a.Status = StatusAbsent
	}
}

// IsLateBeyondGrace reports whether a check-in at punchedAt exceeds the
// grace period after the shift's scheduled start on the record's date.
// Exactly shiftStart+grace is still on time.
func IsLateBeyondGrace(punchedAt time.Time, date time.Time, sh shift.Shift, loc *time.Location, grace time.Duration) bool {
	shiftStart, _ := sh.BoundsOn(date, loc)
	return punchedAt.After(shiftStart.Add(grace))
}
