package schedule

import "errors"

var (
	ErrScheduleNotFound       = errors.New("advisor schedule not found")
	ErrAnchorNotMonday        = errors.New("anchor_monday must fall on a Monday")
	ErrMissingDefaultShift    = errors.New("fixed schedules require a default shift")
	ErrMissingAlternateShifts = errors.New("alternating schedules require both week shifts")
	ErrUnexpectedShiftRefs    = errors.New("schedule carries shift references its rule type does not use")
	ErrInvalidParityOffset    = errors.New("parity_offset must be 0 or 1")

	ErrWeekOffExists   = errors.New("an active week off already exists for this weekday")
	ErrWeekOffNotFound = errors.New("week off not found")
	ErrInvalidWeekday  = errors.New("weekday must be between 0 (Monday) and 6 (Sunday)")

	ErrExceptionExists        = errors.New("a schedule exception already exists for this date")
	ErrExceptionNotFound      = errors.New("schedule exception not found")
	ErrExceptionContradiction = errors.New("override_shift and mark_off are mutually exclusive")
)
