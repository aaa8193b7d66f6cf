package schedule

import (
	"time"

	"github.com/storeops/attendance-backend-go/internal/pkg/validator"
)

type UpsertScheduleRequest struct {
	AdvisorID       string  `json:"advisor_id"`
	RuleType        string  `json:"rule_type"`
	AnchorMonday    string  `json:"anchor_monday"` // "YYYY-MM-DD"
	ParityOffset    int     `json:"parity_offset"`
	DefaultShiftID  *string `json:"default_shift_id"`
	WeekEvenShiftID *string `json:"week_even_shift_id"`
	WeekOddShiftID  *string `json:"week_odd_shift_id"`
}

func (r *UpsertScheduleRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.AdvisorID) {
		errs = append(errs, validator.ValidationError{
			Field:   "advisor_id",
			Message: "advisor_id is required",
		})
	}

	if !validator.IsInSlice(r.RuleType, RuleTypeValues) {
		errs = append(errs, validator.ValidationError{
			Field:   "rule_type",
			Message: "rule_type must be fixed or alternate_weekly",
		})
	}

	anchor, ok := validator.IsValidDate(r.AnchorMonday)
	if !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "anchor_monday",
			Message: "anchor_monday must be a YYYY-MM-DD date",
		})
	} else if anchor.Weekday() != time.Monday {
		errs = append(errs, validator.ValidationError{
			Field:   "anchor_monday",
			Message: ErrAnchorNotMonday.Error(),
		})
	}

	if r.ParityOffset != 0 && r.ParityOffset != 1 {
		errs = append(errs, validator.ValidationError{
			Field:   "parity_offset",
			Message: ErrInvalidParityOffset.Error(),
		})
	}

	// Exactly the shift references the rule type needs must be present.
	switch RuleType(r.RuleType) {
	case RuleFixed:
		if r.DefaultShiftID == nil || validator.IsEmpty(*r.DefaultShiftID) {
			errs = append(errs, validator.ValidationError{
				Field:   "default_shift_id",
				Message: ErrMissingDefaultShift.Error(),
			})
		}
		if r.WeekEvenShiftID != nil || r.WeekOddShiftID != nil {
			errs = append(errs, validator.ValidationError{
				Field:   "rule_type",
				Message: ErrUnexpectedShiftRefs.Error(),
			})
		}
	case RuleAlternateWeekly:
		if r.WeekEvenShiftID == nil || validator.IsEmpty(*r.WeekEvenShiftID) ||
			r.WeekOddShiftID == nil || validator.IsEmpty(*r.WeekOddShiftID) {
			errs = append(errs, validator.ValidationError{
				Field:   "week_even_shift_id",
				Message: ErrMissingAlternateShifts.Error(),
			})
		}
		if r.DefaultShiftID != nil {
			errs = append(errs, validator.ValidationError{
				Field:   "rule_type",
				Message: ErrUnexpectedShiftRefs.Error(),
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Anchor returns the parsed anchor date. Valid only after Validate.
func (r *UpsertScheduleRequest) Anchor() time.Time {
	anchor, _ := validator.IsValidDate(r.AnchorMonday)
	return anchor
}

type CreateWeekOffRequest struct {
	AdvisorID string `json:"advisor_id"`
	Weekday   int    `json:"weekday"` // 0=Monday .. 6=Sunday
}

func (r *CreateWeekOffRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.AdvisorID) {
		errs = append(errs, validator.ValidationError{
			Field:   "advisor_id",
			Message: "advisor_id is required",
		})
	}
	if r.Weekday < 0 || r.Weekday > 6 {
		errs = append(errs, validator.ValidationError{
			Field:   "weekday",
			Message: ErrInvalidWeekday.Error(),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type CreateExceptionRequest struct {
	AdvisorID       string  `json:"advisor_id"`
	Date            string  `json:"date"`
	OverrideShiftID *string `json:"override_shift_id"`
	MarkOff         bool    `json:"mark_off"`
	Reason          string  `json:"reason"`
}

func (r *CreateExceptionRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.AdvisorID) {
		errs = append(errs, validator.ValidationError{
			Field:   "advisor_id",
			Message: "advisor_id is required",
		})
	}
	if _, ok := validator.IsValidDate(r.Date); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date must be a YYYY-MM-DD date",
		})
	}
	if r.MarkOff && r.OverrideShiftID != nil {
		errs = append(errs, validator.ValidationError{
			Field:   "mark_off",
			Message: ErrExceptionContradiction.Error(),
		})
	}
	if !r.MarkOff && (r.OverrideShiftID == nil || validator.IsEmpty(*r.OverrideShiftID)) {
		errs = append(errs, validator.ValidationError{
			Field:   "override_shift_id",
			Message: "either override_shift_id or mark_off must be set",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Day returns the parsed exception date. Valid only after Validate.
func (r *CreateExceptionRequest) Day() time.Time {
	date, _ := validator.IsValidDate(r.Date)
	return date
}

type ScheduleResponse struct {
	ID              string  `json:"id"`
	AdvisorID       string  `json:"advisor_id"`
	RuleType        string  `json:"rule_type"`
	AnchorMonday    string  `json:"anchor_monday"`
	ParityOffset    int     `json:"parity_offset"`
	DefaultShiftID  *string `json:"default_shift_id,omitempty"`
	WeekEvenShiftID *string `json:"week_even_shift_id,omitempty"`
	WeekOddShiftID  *string `json:"week_odd_shift_id,omitempty"`
	IsActive        bool    `json:"is_active"`
}

func ToScheduleResponse(s AdvisorSchedule) ScheduleResponse {
	return ScheduleResponse{
		ID:              s.ID,
		AdvisorID:       s.AdvisorID,
		RuleType:        string(s.RuleType),
		AnchorMonday:    s.AnchorMonday.Format("2006-01-02"),
		ParityOffset:    s.ParityOffset,
		DefaultShiftID:  s.DefaultShiftID,
		WeekEvenShiftID: s.WeekEvenShiftID,
		WeekOddShiftID:  s.WeekOddShiftID,
		IsActive:        s.IsActive,
	}
}

type PlannedShiftResponse struct {
	AdvisorID string  `json:"advisor_id"`
	Date      string  `json:"date"`
	DayOff    bool    `json:"day_off"`
	ShiftID   *string `json:"shift_id,omitempty"`
	ShiftName *string `json:"shift_name,omitempty"`
	StartTime *string `json:"start_time,omitempty"`
	EndTime   *string `json:"end_time,omitempty"`
}
