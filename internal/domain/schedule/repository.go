package schedule

import (
	"context"
	"time"
)

type AdvisorScheduleRepository interface {
	// Upsert replaces the advisor's schedule: the previous row (if any) is
	// deactivated and the new one inserted in a single transaction.
	Upsert(ctx context.Context, s AdvisorSchedule) (AdvisorSchedule, error)

	// GetActiveByAdvisor returns nil without error when the advisor has no
	// active schedule.
	GetActiveByAdvisor(ctx context.Context, advisorID string) (*AdvisorSchedule, error)
}

type WeekOffRepository interface {
	// Create fails with ErrWeekOffExists when an active row for the same
	// (advisor, weekday) already exists; the unique index is the guard.
	Create(ctx context.Context, w WeekOff) (WeekOff, error)
	Deactivate(ctx context.Context, id string) error
	ListActiveByAdvisor(ctx context.Context, advisorID string) ([]WeekOff, error)

	// HasActive reports whether the advisor has an active week off on the
	// given weekday (0=Monday .. 6=Sunday).
	HasActive(ctx context.Context, advisorID string, weekday int) (bool, error)
}

type ScheduleExceptionRepository interface {
	// Create fails with ErrExceptionExists for a duplicate (advisor, date).
	Create(ctx context.Context, e ScheduleException) (ScheduleException, error)
	Delete(ctx context.Context, id string) error

	// GetByAdvisorAndDate returns nil without error when no exception
	// exists for the date.
	GetByAdvisorAndDate(ctx context.Context, advisorID string, date time.Time) (*ScheduleException, error)
	ListByAdvisor(ctx context.Context, advisorID string, from, to time.Time) ([]ScheduleException, error)
}
