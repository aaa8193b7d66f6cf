package attendance

import "errors"

// Attendance domain errors
var (
	// Punch errors
	ErrAlreadyCheckedIn   = errors.New("you have already checked in for this shift")
	ErrNotOpenForCheckout = errors.New("attendance is not open for checkout")
	ErrNoPlannedShift     = errors.New("no planned shift for this date")
	ErrInvalidSelfie      = errors.New("a selfie photo of a supported type and size is required")

	// General errors
	ErrAttendanceNotFound = errors.New("attendance record not found")
	ErrUnauthorized       = errors.New("unauthorized to access this attendance record")
)
