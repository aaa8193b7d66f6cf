package response

import (
	"errors"
	"net/http"

	"github.com/storeops/attendance-backend-go/internal/domain/attendance"
	"github.com/storeops/attendance-backend-go/internal/domain/auth"
	"github.com/storeops/attendance-backend-go/internal/domain/request"
	"github.com/storeops/attendance-backend-go/internal/domain/schedule"
	"github.com/storeops/attendance-backend-go/internal/domain/shift"
	"github.com/storeops/attendance-backend-go/internal/domain/store"
	"github.com/storeops/attendance-backend-go/internal/domain/user"
	"github.com/storeops/attendance-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth domain errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		Unauthorized(w, err.Error())
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrTokenExpired):
		Unauthorized(w, "Invalid or expired token")
	case errors.Is(err, user.ErrUserInactive):
		Forbidden(w, "User account is inactive")
	case errors.Is(err, user.ErrUserNotFound):
		NotFound(w, "User not found")
	case errors.Is(err, user.ErrAdminPrivilegeRequired),
		errors.Is(err, user.ErrManagerAccessRequired),
		errors.Is(err, user.ErrAdvisorOnly):
		Forbidden(w, err.Error())

	// Shift domain errors
	case errors.Is(err, shift.ErrShiftNotFound):
		NotFound(w, "Shift not found")
	case errors.Is(err, shift.ErrShiftNameExists):
		Conflict(w, "A shift with this name already exists")
	case errors.Is(err, shift.ErrShiftReferenced):
		Conflict(w, "Shift is referenced and can only be renamed or deactivated")
	case errors.Is(err, shift.ErrShiftInactive):
		BadRequest(w, "Shift is inactive", nil)

	// Schedule domain errors
	case errors.Is(err, schedule.ErrScheduleNotFound),
		errors.Is(err, schedule.ErrWeekOffNotFound),
		errors.Is(err, schedule.ErrExceptionNotFound):
		NotFound(w, err.Error())
	case errors.Is(err, schedule.ErrWeekOffExists),
		errors.Is(err, schedule.ErrExceptionExists):
		Conflict(w, err.Error())
	case errors.Is(err, schedule.ErrAnchorNotMonday),
		errors.Is(err, schedule.ErrInvalidParityOffset),
		errors.Is(err, schedule.ErrInvalidWeekday),
		errors.Is(err, schedule.ErrExceptionContradiction):
		BadRequest(w, err.Error(), nil)

	// Store domain errors
	case errors.Is(err, store.ErrStoreNotFound):
		NotFound(w, "Store not found")

	// Attendance domain errors
	case errors.Is(err, attendance.ErrAttendanceNotFound):
		NotFound(w, "Attendance record not found")
	case errors.Is(err, attendance.ErrAlreadyCheckedIn):
		Conflict(w, "Already checked in for this shift")
	case errors.Is(err, attendance.ErrNotOpenForCheckout):
		Conflict(w, "Attendance is not open for checkout")
	case errors.Is(err, attendance.ErrNoPlannedShift):
		BadRequest(w, "No planned shift for this date", nil)
	case errors.Is(err, attendance.ErrInvalidSelfie):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, attendance.ErrUnauthorized):
		Forbidden(w, "You cannot act on this attendance record")

	// Request domain errors
	case errors.Is(err, request.ErrRequestNotFound):
		NotFound(w, "Attendance request not found")
	case errors.Is(err, request.ErrSelfDecision):
		Forbidden(w, "You cannot decide your own request")
	case errors.Is(err, request.ErrAlreadyDecided):
		Conflict(w, "Request has already been decided")
	case errors.Is(err, request.ErrInvalidMeta):
		BadRequest(w, "Request meta does not match the request type", nil)

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
