package schedule

import "time"

type RuleType string

const (
	RuleFixed           RuleType = "fixed"
	RuleAlternateWeekly RuleType = "alternate_weekly"
)

var RuleTypeValues = []string{
	string(RuleFixed),
	string(RuleAlternateWeekly),
}

// AdvisorSchedule is the baseline scheduling rule, one active row per
// advisor. Fixed rules carry a default shift; alternating rules carry one
// shift per week parity, anchored on a Monday.
type AdvisorSchedule struct {
	ID              string
	AdvisorID       string
	RuleType        RuleType
	AnchorMonday    time.Time
	ParityOffset    int // 0 or 1, flips which cohort works the even week
	DefaultShiftID  *string
	WeekEvenShiftID *string
	WeekOddShiftID  *string
	IsActive        bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ShiftIDForDate picks the schedule's shift reference for a date, applying
// the alternating-week parity rule. Weeks before the anchor clamp to zero.
func (s AdvisorSchedule) ShiftIDForDate(date time.Time) *string {
	if s.RuleType == RuleFixed {
		return s.DefaultShiftID
	}

	days := int(midnight(date).Sub(midnight(s.AnchorMonday)).Hours() / 24)
	weeks := days / 7
	if weeks < 0 {
		weeks = 0
	}

	parity := (weeks % 2) ^ s.ParityOffset
	if parity == 0 {
		return s.WeekEvenShiftID
	}
	return s.WeekOddShiftID
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// WeekOff is a recurring weekly non-work day. Weekday numbering follows the
// schedule model: 0=Monday .. 6=Sunday.
type WeekOff struct {
	ID        string
	AdvisorID string
	Weekday   int
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// WeekdayOf maps time.Weekday (Sunday=0) to the 0=Monday numbering.
func WeekdayOf(date time.Time) int {
	return (int(date.Weekday()) + 6) % 7
}

// ScheduleException overrides the baseline rule for a single date: either a
// replacement shift or a marked day off, never both.
type ScheduleException struct {
	ID              string
	AdvisorID       string
	Date            time.Time
	OverrideShiftID *string
	MarkOff         bool
	Reason          string
	CreatedBy       string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
