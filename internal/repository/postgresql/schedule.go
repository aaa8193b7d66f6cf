package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/storeops/attendance-backend-go/internal/domain/schedule"
	"github.com/storeops/attendance-backend-go/internal/pkg/database"
)

type advisorScheduleRepository struct {
	db *database.DB
}

func NewAdvisorScheduleRepository(db *database.DB) schedule.AdvisorScheduleRepository {
	return &advisorScheduleRepository{db: db}
}

// Upsert implements schedule.AdvisorScheduleRepository. The old active row
// is deactivated and the replacement inserted in one transaction so the
// resolver never observes two active schedules for an advisor.
func (r *advisorScheduleRepository) Upsert(ctx context.Context, s schedule.AdvisorSchedule) (schedule.AdvisorSchedule, error) {
	err := WithTransaction(ctx, r.db, func(txCtx context.Context) error {
		q := GetQuerier(txCtx, r.db)

		if _, err := q.Exec(txCtx, `
			UPDATE advisor_schedules
			SET is_active = false, updated_at = NOW()
			WHERE advisor_id = $1 AND is_active
		`, s.AdvisorID); err != nil {
			return fmt.Errorf("failed to deactivate previous schedule: %w", err)
		}

		return q.QueryRow(txCtx, `
			INSERT INTO advisor_schedules (
				advisor_id, rule_type, anchor_monday, parity_offset,
				default_shift_id, week_even_shift_id, week_odd_shift_id, is_active
			) VALUES ($1, $2, $3, $4, $5, $6, $7, true)
			RETURNING id, created_at, updated_at
		`,
			s.AdvisorID, s.RuleType, s.AnchorMonday, s.ParityOffset,
			s.DefaultShiftID, s.WeekEvenShiftID, s.WeekOddShiftID,
		).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	})
	if err != nil {
		return schedule.AdvisorSchedule{}, err
	}

	s.IsActive = true
	return s, nil
}

// GetActiveByAdvisor implements schedule.AdvisorScheduleRepository.
func (r *advisorScheduleRepository) GetActiveByAdvisor(ctx context.Context, advisorID string) (*schedule.AdvisorSchedule, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, advisor_id, rule_type, anchor_monday, parity_offset,
		       default_shift_id, week_even_shift_id, week_odd_shift_id,
		       is_active, created_at, updated_at
		FROM advisor_schedules
		WHERE advisor_id = $1 AND is_active
		LIMIT 1
	`

	var s schedule.AdvisorSchedule
	err := q.QueryRow(ctx, query, advisorID).Scan(
		&s.ID, &s.AdvisorID, &s.RuleType, &s.AnchorMonday, &s.ParityOffset,
		&s.DefaultShiftID, &s.WeekEvenShiftID, &s.WeekOddShiftID,
		&s.IsActive, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get advisor schedule: %w", err)
	}

	return &s, nil
}

type weekOffRepository struct {
	db *database.DB
}

func NewWeekOffRepository(db *database.DB) schedule.WeekOffRepository {
	return &weekOffRepository{db: db}
}

// Create implements schedule.WeekOffRepository. The partial unique index on
// active (advisor_id, weekday) rows is the duplicate guard.
func (r *weekOffRepository) Create(ctx context.Context, w schedule.WeekOff) (schedule.WeekOff, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO week_offs (advisor_id, weekday, is_active)
		VALUES ($1, $2, true)
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query, w.AdvisorID, w.Weekday).Scan(&w.ID, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, "") {
			return schedule.WeekOff{}, schedule.ErrWeekOffExists
		}
		return schedule.WeekOff{}, fmt.Errorf("failed to create week off: %w", err)
	}

	w.IsActive = true
	return w, nil
}

// Deactivate implements schedule.WeekOffRepository.
func (r *weekOffRepository) Deactivate(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE week_offs SET is_active = false, updated_at = NOW() WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate week off: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return schedule.ErrWeekOffNotFound
	}

	return nil
}

// ListActiveByAdvisor implements schedule.WeekOffRepository.
func (r *weekOffRepository) ListActiveByAdvisor(ctx context.Context, advisorID string) ([]schedule.WeekOff, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT id, advisor_id, weekday, is_active, created_at, updated_at
		FROM week_offs
		WHERE advisor_id = $1 AND is_active
		ORDER BY weekday
	`, advisorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list week offs: %w", err)
	}
	defer rows.Close()

	var weekOffs []schedule.WeekOff
	for rows.Next() {
		var w schedule.WeekOff
		if err := rows.Scan(&w.ID, &w.AdvisorID, &w.Weekday, &w.IsActive, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan week off: %w", err)
		}
		weekOffs = append(weekOffs, w)
	}

	return weekOffs, nil
}

// HasActive implements schedule.WeekOffRepository.
func (r *weekOffRepository) HasActive(ctx context.Context, advisorID string, weekday int) (bool, error) {
	q := GetQuerier(ctx, r.db)

	var exists bool
	err := q.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM week_offs
			WHERE advisor_id = $1 AND weekday = $2 AND is_active
		)
	`, advisorID, weekday).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check week off: %w", err)
	}

	return exists, nil
}

type scheduleExceptionRepository struct {
	db *database.DB
}

func NewScheduleExceptionRepository(db *database.DB) schedule.ScheduleExceptionRepository {
	return &scheduleExceptionRepository{db: db}
}

// Create implements schedule.ScheduleExceptionRepository.
func (r *scheduleExceptionRepository) Create(ctx context.Context, e schedule.ScheduleException) (schedule.ScheduleException, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO schedule_exceptions (advisor_id, date, override_shift_id, mark_off, reason, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		e.AdvisorID, e.Date, e.OverrideShiftID, e.MarkOff, e.Reason, e.CreatedBy,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, "") {
			return schedule.ScheduleException{}, schedule.ErrExceptionExists
		}
		return schedule.ScheduleException{}, fmt.Errorf("failed to create schedule exception: %w", err)
	}

	return e, nil
}

// Delete implements schedule.ScheduleExceptionRepository.
func (r *scheduleExceptionRepository) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM schedule_exceptions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete schedule exception: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return schedule.ErrExceptionNotFound
	}

	return nil
}

// GetByAdvisorAndDate implements schedule.ScheduleExceptionRepository.
func (r *scheduleExceptionRepository) GetByAdvisorAndDate(ctx context.Context, advisorID string, date time.Time) (*schedule.ScheduleException, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, advisor_id, date, override_shift_id, mark_off, reason, created_by, created_at, updated_at
		FROM schedule_exceptions
		WHERE advisor_id = $1 AND date = $2
		LIMIT 1
	`

	var e schedule.ScheduleException
	err := q.QueryRow(ctx, query, advisorID, date).Scan(
		&e.ID, &e.AdvisorID, &e.Date, &e.OverrideShiftID, &e.MarkOff,
		&e.Reason, &e.CreatedBy, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get schedule exception: %w", err)
	}

	return &e, nil
}

// ListByAdvisor implements schedule.ScheduleExceptionRepository.
func (r *scheduleExceptionRepository) ListByAdvisor(ctx context.Context, advisorID string, from, to time.Time) ([]schedule.ScheduleException, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT id, advisor_id, date, override_shift_id, mark_off, reason, created_by, created_at, updated_at
		FROM schedule_exceptions
		WHERE advisor_id = $1 AND date BETWEEN $2 AND $3
		ORDER BY date
	`, advisorID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedule exceptions: %w", err)
	}
	defer rows.Close()

	var exceptions []schedule.ScheduleException
	for rows.Next() {
		var e schedule.ScheduleException
		if err := rows.Scan(
			&e.ID, &e.AdvisorID, &e.Date, &e.OverrideShiftID, &e.MarkOff,
			&e.Reason, &e.CreatedBy, &e.CreatedAt, &e.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan schedule exception: %w", err)
		}
		exceptions = append(exceptions, e)
	}

	return exceptions, nil
}
