package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/storeops/attendance-backend-go/internal/domain/request"
	"github.com/storeops/attendance-backend-go/internal/pkg/database"
)

type requestRepository struct {
	db *database.DB
}

func NewRequestRepository(db *database.DB) request.RequestRepository {
	return &requestRepository{db: db}
}

const requestColumns = `id, attendance_id, type, status, requested_by, decided_by, decided_at, reason, meta, created_at, updated_at`

func scanRequest(row pgx.Row) (request.AttendanceRequest, error) {
	var (
		r    request.AttendanceRequest
		meta []byte
	)
	err := row.Scan(
		&r.ID, &r.AttendanceID, &r.Type, &r.Status, &r.RequestedBy,
		&r.DecidedBy, &r.DecidedAt, &r.Reason, &meta, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return request.AttendanceRequest{}, err
	}
	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &r.Meta); err != nil {
			return request.AttendanceRequest{}, fmt.Errorf("failed to decode request meta: %w", err)
		}
	}
	return r, nil
}

// Create implements request.RequestRepository.
func (r *requestRepository) Create(ctx context.Context, req request.AttendanceRequest) (request.AttendanceRequest, error) {
	q := GetQuerier(ctx, r.db)

	meta, err := json.Marshal(req.Meta)
	if err != nil {
		return request.AttendanceRequest{}, fmt.Errorf("failed to encode request meta: %w", err)
	}

	query := `
		INSERT INTO attendance_requests (attendance_id, type, status, requested_by, reason, meta)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`

	err = q.QueryRow(ctx, query,
		req.AttendanceID, req.Type, req.Status, req.RequestedBy, req.Reason, meta,
	).Scan(&req.ID, &req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		return request.AttendanceRequest{}, fmt.Errorf("failed to create attendance request: %w", err)
	}

	return req, nil
}

// GetByID implements request.RequestRepository.
func (r *requestRepository) GetByID(ctx context.Context, id string) (request.AttendanceRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + requestColumns + ` FROM attendance_requests WHERE id = $1`

	req, err := scanRequest(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return request.AttendanceRequest{}, request.ErrRequestNotFound
		}
		return request.AttendanceRequest{}, fmt.Errorf("failed to get attendance request by ID: %w", err)
	}

	return req, nil
}

// HasPending implements request.RequestRepository.
func (r *requestRepository) HasPending(ctx context.Context, attendanceID string, t request.Type) (bool, error) {
	q := GetQuerier(ctx, r.db)

	var exists bool
	err := q.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM attendance_requests
			WHERE attendance_id = $1 AND type = $2 AND status = 'PENDING'
		)
	`, attendanceID, t).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check pending request: %w", err)
	}

	return exists, nil
}

// ListPendingByAttendance implements request.RequestRepository.
func (r *requestRepository) ListPendingByAttendance(ctx context.Context, attendanceID string) ([]request.AttendanceRequest, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT `+requestColumns+` FROM attendance_requests
		WHERE attendance_id = $1 AND status = 'PENDING'
		ORDER BY created_at
	`, attendanceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending requests: %w", err)
	}
	defer rows.Close()

	var requests []request.AttendanceRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance request: %w", err)
		}
		requests = append(requests, req)
	}

	return requests, nil
}

// List implements request.RequestRepository.
func (r *requestRepository) List(ctx context.Context, filter request.RequestFilter) ([]request.AttendanceRequest, int64, error) {
	return r.list(ctx, filter, nil)
}

// ListByRequester implements request.RequestRepository.
func (r *requestRepository) ListByRequester(ctx context.Context, requestedBy string, filter request.RequestFilter) ([]request.AttendanceRequest, int64, error) {
	return r.list(ctx, filter, &requestedBy)
}

func (r *requestRepository) list(ctx context.Context, filter request.RequestFilter, requestedBy *string) ([]request.AttendanceRequest, int64, error) {
	q := GetQuerier(ctx, r.db)

	conditions := []string{"1=1"}
	args := []any{}
	argIdx := 1

	if requestedBy != nil {
		conditions = append(conditions, fmt.Sprintf("requested_by = $%d", argIdx))
		args = append(args, *requestedBy)
		argIdx++
	}
	if filter.AttendanceID != nil && *filter.AttendanceID != "" {
		conditions = append(conditions, fmt.Sprintf("attendance_id = $%d", argIdx))
		args = append(args, *filter.AttendanceID)
		argIdx++
	}
	if filter.Type != nil && *filter.Type != "" {
		conditions = append(conditions, fmt.Sprintf("type = $%d", argIdx))
		args = append(args, *filter.Type)
		argIdx++
	}
	if filter.Status != nil && *filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, *filter.Status)
		argIdx++
	}

	whereClause := strings.Join(conditions, " AND ")

	var totalCount int64
	countQuery := `SELECT COUNT(*) FROM attendance_requests WHERE ` + whereClause
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count attendance requests: %w", err)
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

	query := `SELECT ` + requestColumns + ` FROM attendance_requests WHERE ` + whereClause +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, limit, offset)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list attendance requests: %w", err)
	}
	defer rows.Close()

	var requests []request.AttendanceRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan attendance request: %w", err)
		}
		requests = append(requests, req)
	}

	return requests, totalCount, nil
}

// Update implements request.RequestRepository. The status predicate makes
// the decision a compare-and-set: a request decided by a concurrent writer
// matches zero rows and surfaces as already decided.
func (r *requestRepository) Update(ctx context.Context, req request.AttendanceRequest) error {
	q := GetQuerier(ctx, r.db)

	meta, err := json.Marshal(req.Meta)
	if err != nil {
		return fmt.Errorf("failed to encode request meta: %w", err)
	}

	query := `
		UPDATE attendance_requests
		SET status = $1, decided_by = $2, decided_at = $3, meta = $4, updated_at = NOW()
		WHERE id = $5 AND status = 'PENDING'
		RETURNING id
	`

	var updatedID string
	err = q.QueryRow(ctx, query, req.Status, req.DecidedBy, req.DecidedAt, meta, req.ID).Scan(&updatedID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return request.ErrAlreadyDecided
		}
		return fmt.Errorf("failed to update attendance request: %w", err)
	}

	return nil
}
