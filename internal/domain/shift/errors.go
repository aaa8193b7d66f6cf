package shift

import "errors"

var (
	ErrShiftNotFound   = errors.New("shift not found")
	ErrShiftNameExists = errors.New("a shift with this name already exists")
	ErrShiftInactive   = errors.New("shift is inactive")
	ErrShiftReferenced = errors.New("shift is referenced by schedules or attendance and can only be deactivated")
)
