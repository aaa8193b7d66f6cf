package approval

import (
	"context"
	"errors"
	"time"

	"github.com/storeops/attendance-backend-go/internal/domain/attendance"
	"github.com/storeops/attendance-backend-go/internal/domain/idempotency"
	"github.com/storeops/attendance-backend-go/internal/domain/request"
	"github.com/storeops/attendance-backend-go/internal/domain/shift"
	"github.com/storeops/attendance-backend-go/internal/domain/user"
	"github.com/storeops/attendance-backend-go/internal/pkg/validator"
)

const endpointCreateRequest = "request.create"

// Transactor runs fn inside one database transaction.
type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// errKeyReplayed aborts a create transaction whose idempotency key was bound
// by a concurrent writer; the caller rolls back and serves the recorded
// request.
var errKeyReplayed = errors.New("idempotency key already bound")

type Service struct {
	requestRepo     request.RequestRepository
	attendanceRepo  attendance.AttendanceRepository
	idempotencyRepo idempotency.IdempotencyRepository
	userRepo        user.UserRepository
	shiftRepo       shift.ShiftRepository
	tx              Transactor

	rules                 attendance.MetricRules
	overtimeCapMinutes    int
	approvalClearsPending bool
	loc                   *time.Location
	nowFn                 func() time.Time
}

func NewService(
	requestRepo request.RequestRepository,
	attendanceRepo attendance.AttendanceRepository,
	idempotencyRepo idempotency.IdempotencyRepository,
	userRepo user.UserRepository,
	shiftRepo shift.ShiftRepository,
	tx Transactor,
	rules attendance.MetricRules,
	overtimeCapMinutes int,
	approvalClearsPending bool,
	loc *time.Location,
) *Service {
	return &Service{
		requestRepo:           requestRepo,
		attendanceRepo:        attendanceRepo,
		idempotencyRepo:       idempotencyRepo,
		userRepo:              userRepo,
		shiftRepo:             shiftRepo,
		tx:                    tx,
		rules:                 rules,
		overtimeCapMinutes:    overtimeCapMinutes,
		approvalClearsPending: approvalClearsPending,
		loc:                   loc,
		nowFn:                 time.Now,
	}
}

// CreateRequest files a manual request (typically OT or ADJUST) against an
// attendance row the caller can see.
func (s *Service) CreateRequest(ctx context.Context, requesterID string, req *request.CreateRequest) (*request.RequestResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	requester, err := s.userRepo.GetByID(ctx, requesterID)
	if err != nil {
		return nil, err
	}

	row, err := s.attendanceRepo.GetByID(ctx, req.AttendanceID)
	if err != nil {
		return nil, err
	}
	if !canSeeAttendance(requester, row) {
		return nil, attendance.ErrAttendanceNotFound
	}

	if replayed, err := s.replayRequest(ctx, req.IdempotencyKey, requesterID); replayed != nil || err != nil {
		return replayed, err
	}

	// Creating the row and binding the key commit together, so two
	// concurrent calls with the same key can never both leave a request
	// behind: the loser's insert is rolled back and the winner's request
	// is served instead.
	var created request.AttendanceRequest
	txErr := s.tx.InTx(ctx, func(ctx context.Context) error {
		var err error
		created, err = s.requestRepo.Create(ctx, request.AttendanceRequest{
			AttendanceID: req.AttendanceID,
			Type:         request.Type(req.Type),
			Status:       request.StatusPending,
			RequestedBy:  requesterID,
			Reason:       req.Reason,
			Meta:         req.Meta,
		})
		if err != nil {
			return err
		}

		inserted, err := s.idempotencyRepo.Remember(ctx, req.IdempotencyKey, requesterID, endpointCreateRequest, created.ID)
		if err != nil {
			return err
		}
		if !inserted {
			return errKeyReplayed
		}
		return nil
	})
	if txErr != nil {
		if errors.Is(txErr, errKeyReplayed) {
			replayed, err := s.replayRequest(ctx, req.IdempotencyKey, requesterID)
			if err != nil {
				return nil, err
			}
			if replayed != nil {
				return replayed, nil
			}
		}
		return nil, txErr
	}

	resp := request.ToResponse(created)
	return &resp, nil
}

// replayRequest serves an idempotent repeat of a request creation from the
// stored object, or nil when the key is unknown.
func (s *Service) replayRequest(ctx context.Context, key, requesterID string) (*request.RequestResponse, error) {
	rec, err := s.idempotencyRepo.Get(ctx, key, requesterID, endpointCreateRequest)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, nil
	}

	existing, err := s.requestRepo.GetByID(ctx, rec.ObjectID)
	if err != nil {
		return nil, err
	}

	resp := request.ToResponse(existing)
	return &resp, nil
}

// Decide records a terminal approval or rejection. Re-submitting the same
// decision is a harmless no-op; flipping an already-decided request fails.
// Approval side effects run exactly once, on the transition out of PENDING.
func (s *Service) Decide(ctx context.Context, deciderID, requestID string, approve bool) (*request.RequestResponse, error) {
	decider, err := s.userRepo.GetByID(ctx, deciderID)
	if err != nil {
		return nil, err
	}

	req, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	row, err := s.attendanceRepo.GetByID(ctx, req.AttendanceID)
	if err != nil {
		return nil, err
	}

	switch decider.Role {
	case user.RoleAdmin:
	case user.RoleManager:
		// A request outside the manager's store reads as not found rather
		// than forbidden, so request IDs cannot be probed across stores.
		if decider.StoreID == nil || *decider.StoreID != row.StoreID {
			return nil, request.ErrRequestNotFound
		}
	default:
		return nil, user.ErrManagerAccessRequired
	}

	if req.RequestedBy == deciderID {
		return nil, request.ErrSelfDecision
	}

	target := request.StatusRejected
	if approve {
		target = request.StatusApproved
	}

	if !req.Decidable() {
		if req.Status == target {
			resp := request.ToResponse(req)
			return &resp, nil
		}
		return nil, request.ErrAlreadyDecided
	}

	// Side effects and the status flip commit together. The PENDING
	// predicate on Update makes the decision a compare-and-set, so when a
	// concurrent decision landed after the read above, this transaction
	// rolls back its side effects and reports the conflict.
	now := s.nowFn().In(s.loc)
	txErr := s.tx.InTx(ctx, func(ctx context.Context) error {
		if approve {
			if err := s.applyApproval(ctx, &req, &row); err != nil {
				return err
			}
		}

		req.Status = target
		req.DecidedBy = &deciderID
		req.DecidedAt = &now
		return s.requestRepo.Update(ctx, req)
	})
	if txErr != nil {
		return nil, txErr
	}

	resp := request.ToResponse(req)
	return &resp, nil
}

// GetRequest returns one request, scoped like the attendance row it targets.
func (s *Service) GetRequest(ctx context.Context, actorID, requestID string) (*request.RequestResponse, error) {
	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}

	req, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	row, err := s.attendanceRepo.GetByID(ctx, req.AttendanceID)
	if err != nil {
		return nil, err
	}
	if !canSeeAttendance(actor, row) {
		return nil, request.ErrRequestNotFound
	}

	resp := request.ToResponse(req)
	return &resp, nil
}

// ListRequests returns requests for admins and managers.
func (s *Service) ListRequests(ctx context.Context, actorID string, filter request.RequestFilter) ([]request.RequestResponse, int64, error) {
	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return nil, 0, err
	}
	if actor.Role != user.RoleAdmin && actor.Role != user.RoleManager {
		return nil, 0, user.ErrManagerAccessRequired
	}

	requests, total, err := s.requestRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	return toResponses(requests), total, nil
}

// ListMyRequests returns requests the caller filed.
func (s *Service) ListMyRequests(ctx context.Context, requesterID string, filter request.RequestFilter) ([]request.RequestResponse, int64, error) {
	requests, total, err := s.requestRepo.ListByRequester(ctx, requesterID, filter)
	if err != nil {
		return nil, 0, err
	}

	return toResponses(requests), total, nil
}

// applyApproval runs the type-specific effect of an approval on the
// attendance row.
func (s *Service) applyApproval(ctx context.Context, req *request.AttendanceRequest, row *attendance.Attendance) error {
	switch req.Type {
	case request.TypeOvertime:
		if req.Meta.RequestedMinutes == nil {
			return request.ErrInvalidMeta
		}
		minutes := *req.Meta.RequestedMinutes
		if minutes < 0 {
			minutes = 0
		}
		if minutes > s.overtimeCapMinutes {
			minutes = s.overtimeCapMinutes
		}
		row.OvertimeMinutes = minutes
		return s.attendanceRepo.Update(ctx, *row)

	case request.TypeAdjust:
		if req.Meta.SetCheckIn == nil && req.Meta.SetCheckOut == nil {
			return request.ErrInvalidMeta
		}
		if req.Meta.SetCheckIn != nil {
			t, err := s.parsePunch(*req.Meta.SetCheckIn)
			if err != nil {
				return err
			}
			row.CheckIn = &t
		}
		if req.Meta.SetCheckOut != nil {
			t, err := s.parsePunch(*req.Meta.SetCheckOut)
			if err != nil {
				return err
			}
			row.CheckOut = &t
		}

		sh, err := s.shiftRepo.GetByID(ctx, row.ShiftID)
		if err != nil {
			return err
		}
		row.Status = attendance.StatusOpen
		row.ApplyGraceAndStatus(sh, s.loc, s.rules)
		if held, err := s.heldByOtherPending(ctx, row.ID, req.ID); err != nil {
			return err
		} else if held {
			row.Status = attendance.StatusPendingApproval
		}
		return s.attendanceRepo.Update(ctx, *row)

	case request.TypeLate, request.TypeOutsideGeofence:
		// The approval itself records the manager's sign-off. Recomputing
		// the row's status on approval is opt-in.
		if !s.approvalClearsPending || row.Status != attendance.StatusPendingApproval {
			return nil
		}
		held, err := s.heldByOtherPending(ctx, row.ID, req.ID)
		if err != nil {
			return err
		}
		if held {
			return nil
		}

		sh, err := s.shiftRepo.GetByID(ctx, row.ShiftID)
		if err != nil {
			return err
		}
		row.Status = attendance.StatusOpen
		row.ApplyGraceAndStatus(sh, s.loc, s.rules)
		return s.attendanceRepo.Update(ctx, *row)
	}

	return nil
}

// heldByOtherPending reports whether a different PENDING request still holds
// the row.
func (s *Service) heldByOtherPending(ctx context.Context, attendanceID, excludeRequestID string) (bool, error) {
	siblings, err := s.requestRepo.ListPendingByAttendance(ctx, attendanceID)
	if err != nil {
		return false, err
	}
	for _, sib := range siblings {
		if sib.ID != excludeRequestID {
			return true, nil
		}
	}
	return false, nil
}

// parsePunch interprets an ADJUST timestamp. Naive timestamps are read in
// the deployment timezone.
func (s *Service) parsePunch(value string) (time.Time, error) {
	t, aware, ok := validator.IsValidDateTime(value)
	if !ok {
		return time.Time{}, request.ErrInvalidMeta
	}
	if aware {
		return t.In(s.loc), nil
	}
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, s.loc), nil
}

func canSeeAttendance(actor user.User, row attendance.Attendance) bool {
	switch actor.Role {
	case user.RoleAdmin:
		return true
	case user.RoleManager:
		return actor.StoreID != nil && *actor.StoreID == row.StoreID
	default:
		return actor.ID == row.AdvisorID
	}
}

func toResponses(requests []request.AttendanceRequest) []request.RequestResponse {
	responses := make([]request.RequestResponse, 0, len(requests))
	for _, r := range requests {
		responses = append(responses, request.ToResponse(r))
	}
	return responses
}
