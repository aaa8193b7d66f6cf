package attendance

import (
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/storeops/attendance-backend-go/internal/pkg/validator"
)

const maxProofPhotoSize = 10 << 20 // 10MB

var allowedProofExts = []string{".jpg", ".jpeg", ".png"}

func validateProofPhoto(header *multipart.FileHeader, errs validator.ValidationErrors) validator.ValidationErrors {
	if header == nil {
		return append(errs, validator.ValidationError{
			Field:   "photo",
			Message: "punch selfie photo is required",
		})
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !validator.IsInSlice(ext, allowedProofExts) {
		return append(errs, validator.ValidationError{
			Field:   "photo",
			Message: "invalid file type: only jpg, jpeg, png allowed",
		})
	}
	if header.Size <= 0 || header.Size > maxProofPhotoSize {
		return append(errs, validator.ValidationError{
			Field:   "photo",
			Message: "punch selfie photo must be non-empty and not exceed 10MB",
		})
	}
	return errs
}

type CheckInRequest struct {
	ShiftID        string  `json:"shift_id,omitempty"`
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	Note           string  `json:"note,omitempty"`
	IdempotencyKey string  `json:"-"`

	ProofPhotoURL *string               `json:"-"`
	File          multipart.File        `json:"-"`
	FileHeader    *multipart.FileHeader `json:"-"`
}

func (r *CheckInRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidLatitude(r.Latitude) {
		errs = append(errs, validator.ValidationError{
			Field:   "latitude",
			Message: "latitude must be between -90 and 90",
		})
	}
	if !validator.IsValidLongitude(r.Longitude) {
		errs = append(errs, validator.ValidationError{
			Field:   "longitude",
			Message: "longitude must be between -180 and 180",
		})
	}
	errs = validateProofPhoto(r.FileHeader, errs)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type CheckOutRequest struct {
	AttendanceID     string  `json:"attendance_id"`
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
	OTRequestMinutes int     `json:"ot_request_minutes,omitempty"`
	Note             string  `json:"note,omitempty"`
	IdempotencyKey   string  `json:"-"`

	ProofPhotoURL *string               `json:"-"`
	File          multipart.File        `json:"-"`
	FileHeader    *multipart.FileHeader `json:"-"`
}

func (r *CheckOutRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.AttendanceID) {
		errs = append(errs, validator.ValidationError{
			Field:   "attendance_id",
			Message: "attendance_id is required",
		})
	}
	if !validator.IsValidLatitude(r.Latitude) {
		errs = append(errs, validator.ValidationError{
			Field:   "latitude",
			Message: "latitude must be between -90 and 90",
		})
	}
	if !validator.IsValidLongitude(r.Longitude) {
		errs = append(errs, validator.ValidationError{
			Field:   "longitude",
			Message: "longitude must be between -180 and 180",
		})
	}
	if r.OTRequestMinutes < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "ot_request_minutes",
			Message: "ot_request_minutes must not be negative",
		})
	}
	errs = validateProofPhoto(r.FileHeader, errs)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type AttendanceFilter struct {
	AdvisorID *string
	StoreID   *string
	Date      *string
	StartDate *string
	EndDate   *string
	Status    *string
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
}

func (f *AttendanceFilter) Validate() error {
	var errs validator.ValidationErrors

	for field, v := range map[string]*string{"date": f.Date, "start_date": f.StartDate, "end_date": f.EndDate} {
		if v != nil && *v != "" {
			if _, ok := validator.IsValidDate(*v); !ok {
				errs = append(errs, validator.ValidationError{
					Field:   field,
					Message: field + " must be a YYYY-MM-DD date",
				})
			}
		}
	}
	if f.Status != nil && *f.Status != "" && !validator.IsInSlice(*f.Status, StatusValues) {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "unknown attendance status",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type AttendanceResponse struct {
	ID                string   `json:"id"`
	AdvisorID         string   `json:"advisor_id"`
	AdvisorName       *string  `json:"advisor_name,omitempty"`
	StoreID           string   `json:"store_id"`
	ShiftID           string   `json:"shift_id"`
	ShiftName         *string  `json:"shift_name,omitempty"`
	Date              string   `json:"date"`
	CheckInTime       *string  `json:"check_in_time"`
	CheckOutTime      *string  `json:"check_out_time"`
	CheckInLatitude   *float64 `json:"check_in_latitude,omitempty"`
	CheckInLongitude  *float64 `json:"check_in_longitude,omitempty"`
	CheckOutLatitude  *float64 `json:"check_out_latitude,omitempty"`
	CheckOutLongitude *float64 `json:"check_out_longitude,omitempty"`
	CheckInProofURL   *string  `json:"check_in_proof_url,omitempty"`
	CheckOutProofURL  *string  `json:"check_out_proof_url,omitempty"`
	WorkedMinutes     int      `json:"worked_minutes"`
	LateMinutes       int      `json:"late_minutes"`
	EarlyOutMinutes   int      `json:"early_out_minutes"`
	OvertimeMinutes   int      `json:"overtime_minutes"`
	Status            string   `json:"status"`
	Notes             string   `json:"notes,omitempty"`
}

type ListAttendanceResponse struct {
	TotalCount  int64                `json:"total_count"`
	Page        int                  `json:"page"`
	Limit       int                  `json:"limit"`
	TotalPages  int                  `json:"total_pages"`
	Attendances []AttendanceResponse `json:"attendances"`
}

// AutocloseResult reports what a reconciliation run did.
type AutocloseResult struct {
	Finalized      int `json:"finalized"`
	AbsentsCreated int `json:"absents_created"`
}
