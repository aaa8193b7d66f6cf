package request

import (
	"github.com/storeops/attendance-backend-go/internal/pkg/validator"
)

type CreateRequest struct {
	AttendanceID   string `json:"attendance_id"`
	Type           string `json:"type"`
	Reason         string `json:"reason"`
	Meta           Meta   `json:"meta"`
	IdempotencyKey string `json:"-"`
}

func (r *CreateRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.AttendanceID) {
		errs = append(errs, validator.ValidationError{
			Field:   "attendance_id",
			Message: "attendance_id is required",
		})
	}
	if !validator.IsInSlice(r.Type, TypeValues) {
		errs = append(errs, validator.ValidationError{
			Field:   "type",
			Message: "type must be one of LATE, OUTSIDE_GEOFENCE, OT, ADJUST",
		})
	}

	switch Type(r.Type) {
	case TypeOvertime:
		if r.Meta.RequestedMinutes == nil || *r.Meta.RequestedMinutes <= 0 {
			errs = append(errs, validator.ValidationError{
				Field:   "meta.requested_minutes",
				Message: "OT requests require positive requested_minutes",
			})
		}
	case TypeAdjust:
		if r.Meta.SetCheckIn == nil && r.Meta.SetCheckOut == nil {
			errs = append(errs, validator.ValidationError{
				Field:   "meta",
				Message: "ADJUST requests require set_check_in or set_check_out",
			})
		}
		if r.Meta.SetCheckIn != nil {
			if _, _, ok := validator.IsValidDateTime(*r.Meta.SetCheckIn); !ok {
				errs = append(errs, validator.ValidationError{
					Field:   "meta.set_check_in",
					Message: "set_check_in must be an ISO8601 or YYYY-MM-DD HH:MM:SS timestamp",
				})
			}
		}
		if r.Meta.SetCheckOut != nil {
			if _, _, ok := validator.IsValidDateTime(*r.Meta.SetCheckOut); !ok {
				errs = append(errs, validator.ValidationError{
					Field:   "meta.set_check_out",
					Message: "set_check_out must be an ISO8601 or YYYY-MM-DD HH:MM:SS timestamp",
				})
			}
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type RequestFilter struct {
	AttendanceID *string
	Type         *string
	Status       *string
	Page         int
	Limit        int
}

type RequestResponse struct {
	ID           string  `json:"id"`
	AttendanceID string  `json:"attendance_id"`
	Type         string  `json:"type"`
	Status       string  `json:"status"`
	RequestedBy  string  `json:"requested_by"`
	DecidedBy    *string `json:"decided_by,omitempty"`
	DecidedAt    *string `json:"decided_at,omitempty"`
	Reason       string  `json:"reason,omitempty"`
	Meta         Meta    `json:"meta"`
	CreatedAt    string  `json:"created_at"`
}

func ToResponse(r AttendanceRequest) RequestResponse {
	resp := RequestResponse{
		ID:           r.ID,
		AttendanceID: r.AttendanceID,
		Type:         string(r.Type),
		Status:       string(r.Status),
		RequestedBy:  r.RequestedBy,
		DecidedBy:    r.DecidedBy,
		Reason:       r.Reason,
		Meta:         r.Meta,
		CreatedAt:    r.CreatedAt.Format("2006-01-02 15:04:05"),
	}
	if r.DecidedAt != nil {
		decided := r.DecidedAt.Format("2006-01-02 15:04:05")
		resp.DecidedAt = &decided
	}
	return resp
}
