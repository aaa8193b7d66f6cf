package schedule

import (
	"context"
	"time"

	"github.com/storeops/attendance-backend-go/internal/domain/schedule"
	"github.com/storeops/attendance-backend-go/internal/domain/shift"
	"github.com/storeops/attendance-backend-go/internal/domain/user"
)

type Service struct {
	scheduleRepo  schedule.AdvisorScheduleRepository
	weekOffRepo   schedule.WeekOffRepository
	exceptionRepo schedule.ScheduleExceptionRepository
	shiftRepo     shift.ShiftRepository
	userRepo      user.UserRepository
}

func NewService(
	scheduleRepo schedule.AdvisorScheduleRepository,
	weekOffRepo schedule.WeekOffRepository,
	exceptionRepo schedule.ScheduleExceptionRepository,
	shiftRepo shift.ShiftRepository,
	userRepo user.UserRepository,
) *Service {
	return &Service{
		scheduleRepo:  scheduleRepo,
		weekOffRepo:   weekOffRepo,
		exceptionRepo: exceptionRepo,
		shiftRepo:     shiftRepo,
		userRepo:      userRepo,
	}
}

// UpsertSchedule replaces the advisor's active baseline rule.
func (s *Service) UpsertSchedule(ctx context.Context, req *schedule.UpsertScheduleRequest) (*schedule.ScheduleResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	advisor, err := s.userRepo.GetByID(ctx, req.AdvisorID)
	if err != nil {
		return nil, err
	}
	if advisor.Role != user.RoleAdvisor {
		return nil, user.ErrAdvisorOnly
	}

	for _, shiftID := range []*string{req.DefaultShiftID, req.WeekEvenShiftID, req.WeekOddShiftID} {
		if shiftID == nil {
			continue
		}
		sh, err := s.shiftRepo.GetByID(ctx, *shiftID)
		if err != nil {
			return nil, err
		}
		if !sh.IsActive {
			return nil, shift.ErrShiftInactive
		}
	}

	saved, err := s.scheduleRepo.Upsert(ctx, schedule.AdvisorSchedule{
		AdvisorID:       req.AdvisorID,
		RuleType:        schedule.RuleType(req.RuleType),
		AnchorMonday:    req.Anchor(),
		ParityOffset:    req.ParityOffset,
		DefaultShiftID:  req.DefaultShiftID,
		WeekEvenShiftID: req.WeekEvenShiftID,
		WeekOddShiftID:  req.WeekOddShiftID,
	})
	if err != nil {
		return nil, err
	}

	resp := schedule.ToScheduleResponse(saved)
	return &resp, nil
}

// GetSchedule returns the advisor's active baseline rule.
func (s *Service) GetSchedule(ctx context.Context, advisorID string) (*schedule.ScheduleResponse, error) {
	sched, err := s.scheduleRepo.GetActiveByAdvisor(ctx, advisorID)
	if err != nil {
		return nil, err
	}
	if sched == nil {
		return nil, schedule.ErrScheduleNotFound
	}

	resp := schedule.ToScheduleResponse(*sched)
	return &resp, nil
}

// CreateWeekOff adds a recurring weekly day off for an advisor.
func (s *Service) CreateWeekOff(ctx context.Context, req *schedule.CreateWeekOffRequest) (*schedule.WeekOff, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.userRepo.GetByID(ctx, req.AdvisorID); err != nil {
		return nil, err
	}

	w, err := s.weekOffRepo.Create(ctx, schedule.WeekOff{
		AdvisorID: req.AdvisorID,
		Weekday:   req.Weekday,
	})
	if err != nil {
		return nil, err
	}

	return &w, nil
}

// DeleteWeekOff deactivates a recurring day off.
func (s *Service) DeleteWeekOff(ctx context.Context, id string) error {
	return s.weekOffRepo.Deactivate(ctx, id)
}

// ListWeekOffs returns an advisor's active recurring days off.
func (s *Service) ListWeekOffs(ctx context.Context, advisorID string) ([]schedule.WeekOff, error) {
	return s.weekOffRepo.ListActiveByAdvisor(ctx, advisorID)
}

// CreateException records a one-date override of the baseline rule.
func (s *Service) CreateException(ctx context.Context, req *schedule.CreateExceptionRequest, createdBy string) (*schedule.ScheduleException, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.userRepo.GetByID(ctx, req.AdvisorID); err != nil {
		return nil, err
	}
	if req.OverrideShiftID != nil {
		sh, err := s.shiftRepo.GetByID(ctx, *req.OverrideShiftID)
		if err != nil {
			return nil, err
		}
		if !sh.IsActive {
			return nil, shift.ErrShiftInactive
		}
	}

	e, err := s.exceptionRepo.Create(ctx, schedule.ScheduleException{
		AdvisorID:       req.AdvisorID,
		Date:            req.Day(),
		OverrideShiftID: req.OverrideShiftID,
		MarkOff:         req.MarkOff,
		Reason:          req.Reason,
		CreatedBy:       createdBy,
	})
	if err != nil {
		return nil, err
	}

	return &e, nil
}

// DeleteException removes a one-date override.
func (s *Service) DeleteException(ctx context.Context, id string) error {
	return s.exceptionRepo.Delete(ctx, id)
}

// ListExceptions returns an advisor's overrides in a date range.
func (s *Service) ListExceptions(ctx context.Context, advisorID string, from, to time.Time) ([]schedule.ScheduleException, error) {
	return s.exceptionRepo.ListByAdvisor(ctx, advisorID, from, to)
}

// GetPlannedShift resolves and shapes the plan for one advisor and date.
func (s *Service) GetPlannedShift(ctx context.Context, advisorID string, date time.Time) (*schedule.PlannedShiftResponse, error) {
	sh, err := s.ResolvePlannedShift(ctx, advisorID, date)
	if err != nil {
		return nil, err
	}

	resp := &schedule.PlannedShiftResponse{
		AdvisorID: advisorID,
		Date:      date.Format("2006-01-02"),
		DayOff:    sh == nil,
	}
	if sh != nil {
		start := sh.StartTime.Format("15:04:05")
		end := sh.EndTime.Format("15:04:05")
		resp.ShiftID = &sh.ID
		resp.ShiftName = &sh.Name
		resp.StartTime = &start
		resp.EndTime = &end
	}

	return resp, nil
}
