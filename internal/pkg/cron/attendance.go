package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/storeops/attendance-backend-go/internal/domain/attendance"
)

// AutocloseRunner is implemented by the reconcile service.
type AutocloseRunner interface {
	AutocloseForDate(ctx context.Context, date time.Time) (attendance.AutocloseResult, error)
}

type AttendanceJobs struct {
	reconcile AutocloseRunner
	loc       *time.Location
	nowFn     func() time.Time
}

func NewAttendanceJobs(reconcile AutocloseRunner, loc *time.Location) *AttendanceJobs {
	return &AttendanceJobs{
		reconcile: reconcile,
		loc:       loc,
		nowFn:     time.Now,
	}
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("attendance_autoclose", 1*time.Hour, j.AutocloseYesterday)
}

// AutocloseYesterday runs the daily reconciliation for the previous local
// calendar day. The job ticks hourly but only acts during the first hour
// after local midnight; AutocloseForDate is idempotent, so an overlap with
// a restart is harmless.
func (j *AttendanceJobs) AutocloseYesterday(ctx context.Context) error {
	nowLocal := j.nowFn().In(j.loc)
	if nowLocal.Hour() != 0 {
		return nil
	}

	yesterday := nowLocal.AddDate(0, 0, -1)

	slog.Info("Cron: Starting attendance autoclose", "date", yesterday.Format("2006-01-02"))

	result, err := j.reconcile.AutocloseForDate(ctx, yesterday)
	if err != nil {
		return err
	}

	slog.Info("Cron: Attendance autoclose finished",
		"date", yesterday.Format("2006-01-02"),
		"finalized", result.Finalized,
		"absents_created", result.AbsentsCreated)
	return nil
}
