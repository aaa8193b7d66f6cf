package attendance

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"time"

	"github.com/storeops/attendance-backend-go/internal/domain/attendance"
	"github.com/storeops/attendance-backend-go/internal/domain/idempotency"
	"github.com/storeops/attendance-backend-go/internal/domain/request"
	"github.com/storeops/attendance-backend-go/internal/domain/shift"
	"github.com/storeops/attendance-backend-go/internal/domain/store"
	"github.com/storeops/attendance-backend-go/internal/domain/user"
)

const (
	endpointCheckIn  = "attendance.check_in"
	endpointCheckOut = "attendance.check_out"
)

// ShiftResolver supplies the planned shift for an advisor and date.
type ShiftResolver interface {
	ResolvePlannedShift(ctx context.Context, advisorID string, date time.Time) (*shift.Shift, error)
}

// ProofUploader stores punch selfies.
type ProofUploader interface {
	UploadPunchProof(ctx context.Context, advisorID string, file io.Reader, header *multipart.FileHeader) (string, error)
}

// Transactor runs fn inside one database transaction.
type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// errKeyReplayed aborts a punch transaction whose idempotency key was bound
// by a concurrent writer; the caller rolls back and serves the recorded row.
var errKeyReplayed = errors.New("idempotency key already bound")

type Service struct {
	attendanceRepo  attendance.AttendanceRepository
	requestRepo     request.RequestRepository
	idempotencyRepo idempotency.IdempotencyRepository
	userRepo        user.UserRepository
	storeRepo       store.StoreRepository
	shiftRepo       shift.ShiftRepository
	resolver        ShiftResolver
	uploader        ProofUploader
	tx              Transactor

	rules attendance.MetricRules
	loc   *time.Location
	nowFn func() time.Time
}

func NewService(
	attendanceRepo attendance.AttendanceRepository,
	requestRepo request.RequestRepository,
	idempotencyRepo idempotency.IdempotencyRepository,
	userRepo user.UserRepository,
	storeRepo store.StoreRepository,
	shiftRepo shift.ShiftRepository,
	resolver ShiftResolver,
	uploader ProofUploader,
	tx Transactor,
	rules attendance.MetricRules,
	loc *time.Location,
) *Service {
	return &Service{
		attendanceRepo:  attendanceRepo,
		requestRepo:     requestRepo,
		idempotencyRepo: idempotencyRepo,
		userRepo:        userRepo,
		storeRepo:       storeRepo,
		shiftRepo:       shiftRepo,
		resolver:        resolver,
		uploader:        uploader,
		tx:              tx,
		rules:           rules,
		loc:             loc,
		nowFn:           time.Now,
	}
}

// CheckIn records the opening punch of an attendance day. Punching outside
// the store geofence or beyond the lateness grace does not reject the punch;
// it parks the row in PENDING_APPROVAL and raises the matching request for a
// manager to decide.
func (s *Service) CheckIn(ctx context.Context, advisorID string, req *attendance.CheckInRequest) (*attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	advisor, err := s.userRepo.GetByID(ctx, advisorID)
	if err != nil {
		return nil, err
	}
	if !advisor.CanPunch() {
		return nil, user.ErrAdvisorOnly
	}

	if replayed, err := s.replay(ctx, req.IdempotencyKey, advisorID, endpointCheckIn); replayed != nil || err != nil {
		return replayed, err
	}

	now := s.nowFn().In(s.loc)
	date := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	sh, err := s.punchShift(ctx, advisorID, req.ShiftID, date)
	if err != nil {
		return nil, err
	}

	proofURL, err := s.uploader.UploadPunchProof(ctx, advisorID, req.File, req.FileHeader)
	if err != nil {
		return nil, err
	}

	fence, err := s.storeRepo.GetGeofence(ctx, *advisor.StoreID)
	if err != nil {
		return nil, err
	}
	outsideFence := fence.Enforced() && !fence.Contains(req.Latitude, req.Longitude)
	late := attendance.IsLateBeyondGrace(now, date, *sh, s.loc, s.rules.GracePeriod)

	status := attendance.StatusOpen
	if outsideFence || late {
		status = attendance.StatusPendingApproval
	}

	row := attendance.Attendance{
		AdvisorID:        advisorID,
		StoreID:          *advisor.StoreID,
		ShiftID:          sh.ID,
		Date:             date,
		CheckIn:          &now,
		CheckInLatitude:  &req.Latitude,
		CheckInLongitude: &req.Longitude,
		CheckInProofURL:  &proofURL,
		Status:           status,
		Notes:            req.Note,
	}

	// The punch, its automatic requests and the idempotency record commit
	// together: a concurrent punch with the same key either loses on the
	// (advisor, date, shift) unique key or on the idempotency insert, and
	// either way its partial work is rolled back before the replay below.
	var saved attendance.Attendance
	txErr := s.tx.InTx(ctx, func(ctx context.Context) error {
		var err error
		saved, err = s.upsertCheckIn(ctx, row)
		if err != nil {
			return err
		}

		if late {
			s.raiseAutoRequest(ctx, saved.ID, advisorID, request.TypeLate,
				fmt.Sprintf("checked in at %s, beyond the lateness grace", now.Format("15:04")))
		}
		if outsideFence {
			s.raiseAutoRequest(ctx, saved.ID, advisorID, request.TypeOutsideGeofence,
				"checked in outside the store geofence")
		}

		inserted, err := s.idempotencyRepo.Remember(ctx, req.IdempotencyKey, advisorID, endpointCheckIn, saved.ID)
		if err != nil {
			return err
		}
		if !inserted {
			return errKeyReplayed
		}
		return nil
	})
	if txErr != nil {
		if errors.Is(txErr, errKeyReplayed) || errors.Is(txErr, attendance.ErrAlreadyCheckedIn) {
			replayed, err := s.replay(ctx, req.IdempotencyKey, advisorID, endpointCheckIn)
			if err != nil {
				return nil, err
			}
			if replayed != nil {
				return replayed, nil
			}
			return nil, attendance.ErrAlreadyCheckedIn
		}
		return nil, txErr
	}

	resp := toResponse(saved)
	return &resp, nil
}

// CheckOut records the closing punch and computes the derived metrics. A row
// parked in PENDING_APPROVAL accepts the punch but keeps its status until the
// open requests are decided.
func (s *Service) CheckOut(ctx context.Context, advisorID string, req *attendance.CheckOutRequest) (*attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	advisor, err := s.userRepo.GetByID(ctx, advisorID)
	if err != nil {
		return nil, err
	}
	if !advisor.CanPunch() {
		return nil, user.ErrAdvisorOnly
	}

	if replayed, err := s.replay(ctx, req.IdempotencyKey, advisorID, endpointCheckOut); replayed != nil || err != nil {
		return replayed, err
	}

	row, err := s.attendanceRepo.GetByID(ctx, req.AttendanceID)
	if err != nil {
		return nil, err
	}
	if row.AdvisorID != advisorID {
		return nil, attendance.ErrUnauthorized
	}
	if !row.OpenForCheckout() {
		return nil, attendance.ErrNotOpenForCheckout
	}

	sh, err := s.shiftRepo.GetByID(ctx, row.ShiftID)
	if err != nil {
		return nil, err
	}

	proofURL, err := s.uploader.UploadPunchProof(ctx, advisorID, req.File, req.FileHeader)
	if err != nil {
		return nil, err
	}

	now := s.nowFn().In(s.loc)
	wasPending := row.Status == attendance.StatusPendingApproval

	row.CheckOut = &now
	row.CheckOutLatitude = &req.Latitude
	row.CheckOutLongitude = &req.Longitude
	row.CheckOutProofURL = &proofURL
	if req.Note != "" {
		row.Notes = req.Note
	}

	row.ApplyGraceAndStatus(sh, s.loc, s.rules)
	if wasPending {
		row.Status = attendance.StatusPendingApproval
	}

	txErr := s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.attendanceRepo.Update(ctx, row); err != nil {
			return err
		}

		if req.OTRequestMinutes > 0 {
			minutes := req.OTRequestMinutes
			s.raiseAutoRequestWithMeta(ctx, row.ID, advisorID, request.TypeOvertime,
				fmt.Sprintf("overtime of %d minutes requested at checkout", minutes),
				request.Meta{RequestedMinutes: &minutes})
		}

		inserted, err := s.idempotencyRepo.Remember(ctx, req.IdempotencyKey, advisorID, endpointCheckOut, row.ID)
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
			replayed, err := s.replay(ctx, req.IdempotencyKey, advisorID, endpointCheckOut)
			if err != nil {
				return nil, err
			}
			if replayed != nil {
				return replayed, nil
			}
		}
		return nil, txErr
	}

	resp := toResponse(row)
	return &resp, nil
}

// GetAttendance returns one row, scoped to the caller: advisors see only
// their own rows, managers only their store's. A row outside the caller's
// scope reads as not found.
func (s *Service) GetAttendance(ctx context.Context, actorID, attendanceID string) (*attendance.AttendanceResponse, error) {
	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}

	row, err := s.attendanceRepo.GetByID(ctx, attendanceID)
	if err != nil {
		return nil, err
	}
	if !canSee(actor, row) {
		return nil, attendance.ErrAttendanceNotFound
	}

	resp := toResponse(row)
	return &resp, nil
}

// ListAttendances returns rows for admins and managers. Managers are pinned
// to their own store regardless of the filter.
func (s *Service) ListAttendances(ctx context.Context, actorID string, filter attendance.AttendanceFilter) (*attendance.ListAttendanceResponse, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}

	switch actor.Role {
	case user.RoleAdmin:
	case user.RoleManager:
		if actor.StoreID == nil {
			return nil, user.ErrManagerAccessRequired
		}
		filter.StoreID = actor.StoreID
	default:
		return nil, user.ErrManagerAccessRequired
	}

	rows, total, err := s.attendanceRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	return toListResponse(rows, total, filter), nil
}

// ListMyAttendances returns the caller's own rows.
func (s *Service) ListMyAttendances(ctx context.Context, advisorID string, filter attendance.AttendanceFilter) (*attendance.ListAttendanceResponse, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	rows, total, err := s.attendanceRepo.ListByAdvisor(ctx, advisorID, filter)
	if err != nil {
		return nil, err
	}

	return toListResponse(rows, total, filter), nil
}

// punchShift picks the shift a check-in binds to: the explicitly requested
// one when given, otherwise the resolved plan for the date.
func (s *Service) punchShift(ctx context.Context, advisorID, shiftID string, date time.Time) (*shift.Shift, error) {
	if shiftID != "" {
		sh, err := s.shiftRepo.GetByID(ctx, shiftID)
		if err != nil {
			return nil, err
		}
		if !sh.IsActive {
			return nil, shift.ErrShiftInactive
		}
		return &sh, nil
	}

	sh, err := s.resolver.ResolvePlannedShift(ctx, advisorID, date)
	if err != nil {
		return nil, err
	}
	if sh == nil {
		return nil, attendance.ErrNoPlannedShift
	}
	return sh, nil
}

// upsertCheckIn lands the punch either as a fresh row or onto a punch-less
// row the nightly batch pre-created. Both paths surface a concurrent or
// repeated punch as ErrAlreadyCheckedIn via the unique key and the
// conditional stamp.
func (s *Service) upsertCheckIn(ctx context.Context, row attendance.Attendance) (attendance.Attendance, error) {
	existing, err := s.attendanceRepo.GetByKey(ctx, row.AdvisorID, row.Date, row.ShiftID)
	if err != nil {
		return attendance.Attendance{}, err
	}
	if existing == nil {
		return s.attendanceRepo.Create(ctx, row)
	}
	if existing.CheckIn != nil {
		return attendance.Attendance{}, attendance.ErrAlreadyCheckedIn
	}

	row.ID = existing.ID
	return s.attendanceRepo.StampCheckIn(ctx, row)
}

// replay serves an idempotent repeat of a punch from the stored object.
func (s *Service) replay(ctx context.Context, key, actorID, endpoint string) (*attendance.AttendanceResponse, error) {
	rec, err := s.idempotencyRepo.Get(ctx, key, actorID, endpoint)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, nil
	}

	row, err := s.attendanceRepo.GetByID(ctx, rec.ObjectID)
	if err != nil {
		return nil, err
	}

	resp := toResponse(row)
	return &resp, nil
}

// raiseAutoRequest creates an automatic PENDING request unless one of the
// same type is already waiting on the row. Failures are logged, not
// surfaced; the punch itself has already been accepted.
func (s *Service) raiseAutoRequest(ctx context.Context, attendanceID, advisorID string, t request.Type, reason string) {
	s.raiseAutoRequestWithMeta(ctx, attendanceID, advisorID, t, reason, request.Meta{})
}

func (s *Service) raiseAutoRequestWithMeta(ctx context.Context, attendanceID, advisorID string, t request.Type, reason string, meta request.Meta) {
	pending, err := s.requestRepo.HasPending(ctx, attendanceID, t)
	if err != nil {
		slog.Error("Failed to check pending request", "attendance_id", attendanceID, "type", t, "error", err)
		return
	}
	if pending {
		return
	}

	if _, err := s.requestRepo.Create(ctx, request.AttendanceRequest{
		AttendanceID: attendanceID,
		Type:         t,
		Status:       request.StatusPending,
		RequestedBy:  advisorID,
		Reason:       reason,
		Meta:         meta,
	}); err != nil {
		slog.Error("Failed to create attendance request", "attendance_id", attendanceID, "type", t, "error", err)
	}
}

func canSee(actor user.User, row attendance.Attendance) bool {
	switch actor.Role {
	case user.RoleAdmin:
		return true
	case user.RoleManager:
		return actor.StoreID != nil && *actor.StoreID == row.StoreID
	default:
		return actor.ID == row.AdvisorID
	}
}

func toResponse(a attendance.Attendance) attendance.AttendanceResponse {
	resp := attendance.AttendanceResponse{
		ID:                a.ID,
		AdvisorID:         a.AdvisorID,
		AdvisorName:       a.AdvisorName,
		StoreID:           a.StoreID,
		ShiftID:           a.ShiftID,
		ShiftName:         a.ShiftName,
		Date:              a.Date.Format("2006-01-02"),
		CheckInLatitude:   a.CheckInLatitude,
		CheckInLongitude:  a.CheckInLongitude,
		CheckOutLatitude:  a.CheckOutLatitude,
		CheckOutLongitude: a.CheckOutLongitude,
		CheckInProofURL:   a.CheckInProofURL,
		CheckOutProofURL:  a.CheckOutProofURL,
		WorkedMinutes:     a.WorkedMinutes,
		LateMinutes:       a.LateMinutes,
		EarlyOutMinutes:   a.EarlyOutMinutes,
		OvertimeMinutes:   a.OvertimeMinutes,
		Status:            string(a.Status),
		Notes:             a.Notes,
	}
	if a.CheckIn != nil {
		v := a.CheckIn.Format("2006-01-02 15:04:05")
		resp.CheckInTime = &v
	}
	if a.CheckOut != nil {
		v := a.CheckOut.Format("2006-01-02 15:04:05")
		resp.CheckOutTime = &v
	}
	return resp
}

func toListResponse(rows []attendance.Attendance, total int64, filter attendance.AttendanceFilter) *attendance.ListAttendanceResponse {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 || limit > 100 {
		limit = 20
	}

	responses := make([]attendance.AttendanceResponse, 0, len(rows))
	for _, a := range rows {
		responses = append(responses, toResponse(a))
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &attendance.ListAttendanceResponse{
		TotalCount:  total,
		Page:        page,
		Limit:       limit,
		TotalPages:  totalPages,
		Attendances: responses,
	}
}
