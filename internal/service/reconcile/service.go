package reconcile

import (
	"context"
	"log/slog"
	"time"

	"github.com/storeops/attendance-backend-go/internal/domain/attendance"
	"github.com/storeops/attendance-backend-go/internal/domain/shift"
	"github.com/storeops/attendance-backend-go/internal/domain/user"
	"github.com/storeops/attendance-backend-go/internal/pkg/utils"
)

// ShiftResolver supplies the planned shift for an advisor and date.
type ShiftResolver interface {
	ResolvePlannedShift(ctx context.Context, advisorID string, date time.Time) (*shift.Shift, error)
}

// Service runs the nightly close of an attendance day. Both passes are
// idempotent: a second run over the same date finds nothing left to do.
type Service struct {
	attendanceRepo attendance.AttendanceRepository
	userRepo       user.UserRepository
	shiftRepo      shift.ShiftRepository
	resolver       ShiftResolver

	rules attendance.MetricRules
	loc   *time.Location
}

func NewService(
	attendanceRepo attendance.AttendanceRepository,
	userRepo user.UserRepository,
	shiftRepo shift.ShiftRepository,
	resolver ShiftResolver,
	rules attendance.MetricRules,
	loc *time.Location,
) *Service {
	return &Service{
		attendanceRepo: attendanceRepo,
		userRepo:       userRepo,
		shiftRepo:      shiftRepo,
		resolver:       resolver,
		rules:          rules,
		loc:            loc,
	}
}

// AutocloseForDate closes out a calendar day: forgotten checkouts are
// finalized first, then ABSENT rows are synthesized for advisors who never
// punched.
func (s *Service) AutocloseForDate(ctx context.Context, date time.Time) (attendance.AutocloseResult, error) {
	day := midnight(date)

	finalized, err := s.FinalizeOpenForDate(ctx, day)
	if err != nil {
		return attendance.AutocloseResult{}, err
	}

	absents, err := s.MarkAbsentForDate(ctx, day)
	if err != nil {
		return attendance.AutocloseResult{Finalized: finalized}, err
	}

	return attendance.AutocloseResult{Finalized: finalized, AbsentsCreated: absents}, nil
}

// FinalizeOpenForDate synthesizes a checkout for every row of the date that
// has a check-in but no check-out, then recomputes its metrics. The
// synthesized checkout is the shift's scheduled end, capped at the end of
// the local day. Rows without any punch are not touched here. A row that
// fails is logged and skipped so one bad record cannot stall the batch.
func (s *Service) FinalizeOpenForDate(ctx context.Context, date time.Time) (int, error) {
	rows, err := s.attendanceRepo.ListOpenForDate(ctx, date)
	if err != nil {
		return 0, err
	}

	finalized := 0
	for _, row := range rows {
		sh, err := s.shiftRepo.GetByID(ctx, row.ShiftID)
		if err != nil {
			slog.Error("Finalize: failed to load shift", "attendance_id", row.ID, "shift_id", row.ShiftID, "error", err)
			continue
		}

		_, shiftEnd := sh.BoundsOn(row.Date, s.loc)
		cutoff := shiftEnd
		if eod := utils.EndOfDay(row.Date, s.loc); cutoff.After(eod) {
			cutoff = eod
		}

		wasPending := row.Status == attendance.StatusPendingApproval
		row.CheckOut = &cutoff
		row.ApplyGraceAndStatus(sh, s.loc, s.rules)
		if wasPending {
			row.Status = attendance.StatusPendingApproval
		}

		if err := s.attendanceRepo.Update(ctx, row); err != nil {
			slog.Error("Finalize: failed to update attendance", "attendance_id", row.ID, "error", err)
			continue
		}
		finalized++
	}

	return finalized, nil
}

// MarkAbsentForDate synthesizes an ABSENT row for every active advisor who
// had a planned shift on the date but no attendance row. Rows are keyed on
// the shift's start day, so an overnight no-show lands on the date the shift
// was planned for. The get-or-create insert keeps reruns and races with a
// late punch harmless.
func (s *Service) MarkAbsentForDate(ctx context.Context, date time.Time) (int, error) {
	advisors, err := s.userRepo.ListActiveAdvisors(ctx)
	if err != nil {
		return 0, err
	}

	created := 0
	for _, advisor := range advisors {
		sh, err := s.resolver.ResolvePlannedShift(ctx, advisor.ID, date)
		if err != nil {
			slog.Error("MarkAbsent: failed to resolve planned shift", "advisor_id", advisor.ID, "error", err)
			continue
		}
		if sh == nil {
			continue
		}

		inserted, err := s.attendanceRepo.CreateIfMissing(ctx, attendance.Attendance{
			AdvisorID: advisor.ID,
			StoreID:   *advisor.StoreID,
			ShiftID:   sh.ID,
			Date:      date,
			Status:    attendance.StatusAbsent,
		})
		if err != nil {
			slog.Error("MarkAbsent: failed to create absent row", "advisor_id", advisor.ID, "error", err)
			continue
		}
		if inserted {
			created++
		}
	}

	return created, nil
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
