package schedule

import (
	"context"
	"time"

	"github.com/storeops/attendance-backend-go/internal/domain/schedule"
	"github.com/storeops/attendance-backend-go/internal/domain/shift"
)

// ResolvePlannedShift determines the shift an advisor is planned to work on
// a date. Precedence, strongest first: an active recurring week off, then a
// one-date exception, then the baseline schedule rule. A nil result with a
// nil error means a planned day off or simply no plan; resolution itself
// never fails for lack of data.
//
// A reference to an inactive shift resolves to no planned shift rather than
// an error, so deactivating a shift quietly retires future plans built on it.
func (s *Service) ResolvePlannedShift(ctx context.Context, advisorID string, date time.Time) (*shift.Shift, error) {
	off, err := s.weekOffRepo.HasActive(ctx, advisorID, schedule.WeekdayOf(date))
	if err != nil {
		return nil, err
	}
	if off {
		return nil, nil
	}

	exc, err := s.exceptionRepo.GetByAdvisorAndDate(ctx, advisorID, date)
	if err != nil {
		return nil, err
	}
	if exc != nil {
		if exc.MarkOff {
			return nil, nil
		}
		return s.activeShift(ctx, exc.OverrideShiftID)
	}

	sched, err := s.scheduleRepo.GetActiveByAdvisor(ctx, advisorID)
	if err != nil {
		return nil, err
	}
	if sched == nil {
		return nil, nil
	}

	return s.activeShift(ctx, sched.ShiftIDForDate(date))
}

func (s *Service) activeShift(ctx context.Context, shiftID *string) (*shift.Shift, error) {
	if shiftID == nil || *shiftID == "" {
		return nil, nil
	}

	sh, err := s.shiftRepo.GetByID(ctx, *shiftID)
	if err != nil {
		if err == shift.ErrShiftNotFound {
			return nil, nil
		}
		return nil, err
	}
	if !sh.IsActive {
		return nil, nil
	}

	return &sh, nil
}
