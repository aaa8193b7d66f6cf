package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/storeops/attendance-backend-go/internal/domain/attendance"
	"github.com/storeops/attendance-backend-go/internal/pkg/database"
)

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}

const attendanceColumns = `a.id, a.advisor_id, a.store_id, a.shift_id, a.date,
	a.check_in, a.check_in_latitude, a.check_in_longitude, a.check_in_proof_url,
	a.check_out, a.check_out_latitude, a.check_out_longitude, a.check_out_proof_url,
	a.worked_minutes, a.late_minutes, a.early_out_minutes, a.overtime_minutes,
	a.status, a.notes, a.created_at, a.updated_at`

func scanAttendance(row pgx.Row, withJoins bool) (attendance.Attendance, error) {
	var a attendance.Attendance
	dest := []any{
		&a.ID, &a.AdvisorID, &a.StoreID, &a.ShiftID, &a.Date,
		&a.CheckIn, &a.CheckInLatitude, &a.CheckInLongitude, &a.CheckInProofURL,
		&a.CheckOut, &a.CheckOutLatitude, &a.CheckOutLongitude, &a.CheckOutProofURL,
		&a.WorkedMinutes, &a.LateMinutes, &a.EarlyOutMinutes, &a.OvertimeMinutes,
		&a.Status, &a.Notes, &a.CreatedAt, &a.UpdatedAt,
	}
	if withJoins {
		dest = append(dest, &a.AdvisorName, &a.ShiftName)
	}
	if err := row.Scan(dest...); err != nil {
		return attendance.Attendance{}, err
	}
	return a, nil
}

// Create implements attendance.AttendanceRepository.
func (r *attendanceRepository) Create(ctx context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO attendances (
			advisor_id, store_id, shift_id, date,
			check_in, check_in_latitude, check_in_longitude, check_in_proof_url,
			status, notes
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		a.AdvisorID, a.StoreID, a.ShiftID, a.Date,
		a.CheckIn, a.CheckInLatitude, a.CheckInLongitude, a.CheckInProofURL,
		a.Status, a.Notes,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, "") {
			return attendance.Attendance{}, attendance.ErrAlreadyCheckedIn
		}
		return attendance.Attendance{}, fmt.Errorf("failed to create attendance: %w", err)
	}

	return a, nil
}

// CreateIfMissing implements attendance.AttendanceRepository. ON CONFLICT DO
// NOTHING keeps the nightly batch idempotent under reruns and races with a
// late check-in.
func (r *attendanceRepository) CreateIfMissing(ctx context.Context, a attendance.Attendance) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO attendances (advisor_id, store_id, shift_id, date, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (advisor_id, date, shift_id) DO NOTHING
	`

	tag, err := q.Exec(ctx, query, a.AdvisorID, a.StoreID, a.ShiftID, a.Date, a.Status, a.Notes)
	if err != nil {
		return false, fmt.Errorf("failed to create attendance if missing: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// GetByID implements attendance.AttendanceRepository.
func (r *attendanceRepository) GetByID(ctx context.Context, id string) (attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + attendanceColumns + ` FROM attendances a WHERE a.id = $1`

	a, err := scanAttendance(q.QueryRow(ctx, query, id), false)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Attendance{}, fmt.Errorf("failed to get attendance by ID: %w", err)
	}

	return a, nil
}

// GetByKey implements attendance.AttendanceRepository.
func (r *attendanceRepository) GetByKey(ctx context.Context, advisorID string, date time.Time, shiftID string) (*attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + attendanceColumns + ` FROM attendances a
		WHERE a.advisor_id = $1 AND a.date = $2 AND a.shift_id = $3`

	a, err := scanAttendance(q.QueryRow(ctx, query, advisorID, date, shiftID), false)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get attendance by key: %w", err)
	}

	return &a, nil
}

// StampCheckIn implements attendance.AttendanceRepository. The check_in IS
// NULL guard makes a concurrent second punch lose without clobbering the
// first.
func (r *attendanceRepository) StampCheckIn(ctx context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE attendances
		SET check_in = $1, check_in_latitude = $2, check_in_longitude = $3,
		    check_in_proof_url = $4, status = $5, notes = $6, updated_at = NOW()
		WHERE id = $7 AND check_in IS NULL
		RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		a.CheckIn, a.CheckInLatitude, a.CheckInLongitude,
		a.CheckInProofURL, a.Status, a.Notes, a.ID,
	).Scan(&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Attendance{}, attendance.ErrAlreadyCheckedIn
		}
		return attendance.Attendance{}, fmt.Errorf("failed to stamp check-in: %w", err)
	}

	return a, nil
}

// Update implements attendance.AttendanceRepository.
func (r *attendanceRepository) Update(ctx context.Context, a attendance.Attendance) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE attendances
		SET check_in = $1, check_out = $2,
		    check_out_latitude = $3, check_out_longitude = $4, check_out_proof_url = $5,
		    worked_minutes = $6, late_minutes = $7, early_out_minutes = $8, overtime_minutes = $9,
		    status = $10, notes = $11, updated_at = NOW()
		WHERE id = $12
		RETURNING id
	`

	var updatedID string
	err := q.QueryRow(ctx, query,
		a.CheckIn, a.CheckOut,
		a.CheckOutLatitude, a.CheckOutLongitude, a.CheckOutProofURL,
		a.WorkedMinutes, a.LateMinutes, a.EarlyOutMinutes, a.OvertimeMinutes,
		a.Status, a.Notes, a.ID,
	).Scan(&updatedID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.ErrAttendanceNotFound
		}
		return fmt.Errorf("failed to update attendance: %w", err)
	}

	return nil
}

// ListOpenForDate implements attendance.AttendanceRepository.
func (r *attendanceRepository) ListOpenForDate(ctx context.Context, date time.Time) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + attendanceColumns + ` FROM attendances a
		WHERE a.date = $1
		  AND a.check_in IS NOT NULL
		  AND a.check_out IS NULL
		  AND a.status IN ('OPEN', 'PENDING_APPROVAL')
		ORDER BY a.advisor_id`

	rows, err := q.Query(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list open attendances: %w", err)
	}
	defer rows.Close()

	var attendances []attendance.Attendance
	for rows.Next() {
		a, err := scanAttendance(rows, false)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		attendances = append(attendances, a)
	}

	return attendances, nil
}

// List implements attendance.AttendanceRepository.
func (r *attendanceRepository) List(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.Attendance, int64, error) {
	return r.list(ctx, filter, nil)
}

// ListByAdvisor implements attendance.AttendanceRepository.
func (r *attendanceRepository) ListByAdvisor(ctx context.Context, advisorID string, filter attendance.AttendanceFilter) ([]attendance.Attendance, int64, error) {
	return r.list(ctx, filter, &advisorID)
}

var attendanceSortColumns = map[string]string{
	"date":       "a.date",
	"check_in":   "a.check_in",
	"status":     "a.status",
	"created_at": "a.created_at",
}

func (r *attendanceRepository) list(ctx context.Context, filter attendance.AttendanceFilter, advisorID *string) ([]attendance.Attendance, int64, error) {
	q := GetQuerier(ctx, r.db)

	conditions := []string{"1=1"}
	args := []any{}
	argIdx := 1

	if advisorID != nil {
		conditions = append(conditions, fmt.Sprintf("a.advisor_id = $%d", argIdx))
		args = append(args, *advisorID)
		argIdx++
	} else if filter.AdvisorID != nil && *filter.AdvisorID != "" {
		conditions = append(conditions, fmt.Sprintf("a.advisor_id = $%d", argIdx))
		args = append(args, *filter.AdvisorID)
		argIdx++
	}
	if filter.StoreID != nil && *filter.StoreID != "" {
		conditions = append(conditions, fmt.Sprintf("a.store_id = $%d", argIdx))
		args = append(args, *filter.StoreID)
		argIdx++
	}
	if filter.Date != nil && *filter.Date != "" {
		conditions = append(conditions, fmt.Sprintf("a.date = $%d", argIdx))
		args = append(args, *filter.Date)
		argIdx++
	}
	if filter.StartDate != nil && *filter.StartDate != "" {
		conditions = append(conditions, fmt.Sprintf("a.date >= $%d", argIdx))
		args = append(args, *filter.StartDate)
		argIdx++
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		conditions = append(conditions, fmt.Sprintf("a.date <= $%d", argIdx))
		args = append(args, *filter.EndDate)
		argIdx++
	}
	if filter.Status != nil && *filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("a.status = $%d", argIdx))
		args = append(args, *filter.Status)
		argIdx++
	}

	whereClause := strings.Join(conditions, " AND ")

	var totalCount int64
	countQuery := `SELECT COUNT(*) FROM attendances a WHERE ` + whereClause
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count attendances: %w", err)
	}

	sortColumn, ok := attendanceSortColumns[filter.SortBy]
	if !ok {
		sortColumn = "a.date"
	}
	sortOrder := "DESC"
	if strings.EqualFold(filter.SortOrder, "asc") {
		sortOrder = "ASC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset := (page - 1) * limit

	query := `SELECT ` + attendanceColumns + `, u.full_name, s.name
		FROM attendances a
		JOIN users u ON u.id = a.advisor_id
		JOIN shifts s ON s.id = a.shift_id
		WHERE ` + whereClause +
		fmt.Sprintf(" ORDER BY %s %s LIMIT $%d OFFSET $%d", sortColumn, sortOrder, argIdx, argIdx+1)
	args = append(args, limit, offset)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list attendances: %w", err)
	}
	defer rows.Close()

	var attendances []attendance.Attendance
	for rows.Next() {
		a, err := scanAttendance(rows, true)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan attendance: %w", err)
		}
		attendances = append(attendances, a)
	}

	return attendances, totalCount, nil
}
