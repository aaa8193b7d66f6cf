package shift

import (
	"time"

	"github.com/storeops/attendance-backend-go/internal/pkg/validator"
)

type CreateShiftRequest struct {
	Name        string `json:"name"`
	StartTime   string `json:"start_time"` // "HH:MM" or "HH:MM:SS"
	EndTime     string `json:"end_time"`
	IsOvernight bool   `json:"is_overnight"`
}

func (r *CreateShiftRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name is required",
		})
	}

	start, okStart := validator.IsValidTimeOfDay(r.StartTime)
	if !okStart {
		errs = append(errs, validator.ValidationError{
			Field:   "start_time",
			Message: "start_time must be a wall-clock time like 09:00",
		})
	}

	end, okEnd := validator.IsValidTimeOfDay(r.EndTime)
	if !okEnd {
		errs = append(errs, validator.ValidationError{
			Field:   "end_time",
			Message: "end_time must be a wall-clock time like 18:00",
		})
	}

	if okStart && okEnd && start.Equal(end) && !r.IsOvernight {
		errs = append(errs, validator.ValidationError{
			Field:   "end_time",
			Message: "a shift must have a positive duration",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Times returns the parsed wall-clock times. Valid only after Validate.
func (r *CreateShiftRequest) Times() (time.Time, time.Time) {
	start, _ := validator.IsValidTimeOfDay(r.StartTime)
	end, _ := validator.IsValidTimeOfDay(r.EndTime)
	return start, end
}

type UpdateShiftRequest struct {
	ID          string  `json:"-"`
	Name        *string `json:"name"`
	StartTime   *string `json:"start_time"`
	EndTime     *string `json:"end_time"`
	IsOvernight *bool   `json:"is_overnight"`
	IsActive    *bool   `json:"is_active"`
}

func (r *UpdateShiftRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Name != nil && validator.IsEmpty(*r.Name) {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name must not be empty",
		})
	}
	if r.StartTime != nil {
		if _, ok := validator.IsValidTimeOfDay(*r.StartTime); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "start_time",
				Message: "start_time must be a wall-clock time like 09:00",
			})
		}
	}
	if r.EndTime != nil {
		if _, ok := validator.IsValidTimeOfDay(*r.EndTime); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "end_time",
				Message: "end_time must be a wall-clock time like 18:00",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ShiftResponse struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	StartTime       string `json:"start_time"`
	EndTime         string `json:"end_time"`
	IsOvernight     bool   `json:"is_overnight"`
	IsActive        bool   `json:"is_active"`
	DurationMinutes int    `json:"duration_minutes"`
}

func ToResponse(s Shift) ShiftResponse {
	return ShiftResponse{
		ID:              s.ID,
		Name:            s.Name,
		StartTime:       s.StartTime.Format("15:04:05"),
		EndTime:         s.EndTime.Format("15:04:05"),
		IsOvernight:     s.SpansMidnight(),
		IsActive:        s.IsActive,
		DurationMinutes: s.DurationMinutes(),
	}
}
