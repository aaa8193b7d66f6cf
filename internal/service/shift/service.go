package shift

import (
	"context"

	"github.com/storeops/attendance-backend-go/internal/domain/shift"
	"github.com/storeops/attendance-backend-go/internal/pkg/validator"
)

type Service struct {
	shiftRepo shift.ShiftRepository
}

func NewService(shiftRepo shift.ShiftRepository) *Service {
	return &Service{shiftRepo: shiftRepo}
}

// CreateShift registers a new shift template.
func (s *Service) CreateShift(ctx context.Context, req *shift.CreateShiftRequest) (*shift.ShiftResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	start, end := req.Times()
	created, err := s.shiftRepo.Create(ctx, shift.Shift{
		Name:        req.Name,
		StartTime:   start,
		EndTime:     end,
		IsOvernight: req.IsOvernight,
	})
	if err != nil {
		return nil, err
	}

	resp := shift.ToResponse(created)
	return &resp, nil
}

// GetShift returns one shift template.
func (s *Service) GetShift(ctx context.Context, id string) (*shift.ShiftResponse, error) {
	sh, err := s.shiftRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := shift.ToResponse(sh)
	return &resp, nil
}

// ListShifts returns shift templates, optionally active ones only.
func (s *Service) ListShifts(ctx context.Context, activeOnly bool) ([]shift.ShiftResponse, error) {
	shifts, err := s.shiftRepo.List(ctx, activeOnly)
	if err != nil {
		return nil, err
	}

	responses := make([]shift.ShiftResponse, 0, len(shifts))
	for _, sh := range shifts {
		responses = append(responses, shift.ToResponse(sh))
	}

	return responses, nil
}

// UpdateShift applies a partial update. Changing the time window of a shift
// that schedules or attendance rows already reference is refused; referenced
// shifts can only be renamed or deactivated, so recorded history keeps the
// window it was computed against.
func (s *Service) UpdateShift(ctx context.Context, req *shift.UpdateShiftRequest) (*shift.ShiftResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	sh, err := s.shiftRepo.GetByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	timesChange := req.StartTime != nil || req.EndTime != nil || req.IsOvernight != nil
	if timesChange {
		referenced, err := s.shiftRepo.IsReferenced(ctx, req.ID)
		if err != nil {
			return nil, err
		}
		if referenced {
			return nil, shift.ErrShiftReferenced
		}
	}

	if req.Name != nil {
		sh.Name = *req.Name
	}
	if req.StartTime != nil {
		start, _ := validator.IsValidTimeOfDay(*req.StartTime)
		sh.StartTime = start
	}
	if req.EndTime != nil {
		end, _ := validator.IsValidTimeOfDay(*req.EndTime)
		sh.EndTime = end
	}
	if req.IsOvernight != nil {
		sh.IsOvernight = *req.IsOvernight
	}
	if req.IsActive != nil {
		sh.IsActive = *req.IsActive
	}

	if err := s.shiftRepo.Update(ctx, sh); err != nil {
		return nil, err
	}

	resp := shift.ToResponse(sh)
	return &resp, nil
}

// DeactivateShift retires a template from future scheduling. Existing
// references keep resolving against the stored row.
func (s *Service) DeactivateShift(ctx context.Context, id string) error {
	sh, err := s.shiftRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !sh.IsActive {
		return nil
	}

	sh.IsActive = false
	return s.shiftRepo.Update(ctx, sh)
}
