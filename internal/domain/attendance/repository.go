package attendance

import (
	"context"
	"time"
)

// AttendanceRepository is the persistence contract for daily punch records.
// The (advisor_id, date, shift_id) unique constraint is load-bearing: it is
// the sole guard against concurrent double check-in and duplicate absent
// rows.
type AttendanceRepository interface {
	// Create inserts a new row and surfaces a unique-constraint violation
	// as ErrAlreadyCheckedIn.
	Create(ctx context.Context, a Attendance) (Attendance, error)

	// CreateIfMissing inserts an ABSENT row unless the key already exists;
	// reports whether a row was actually inserted (get-or-create, never a
	// duplicate error).
	CreateIfMissing(ctx context.Context, a Attendance) (bool, error)

	GetByID(ctx context.Context, id string) (Attendance, error)

	// GetByKey returns nil without error when the (advisor, date, shift)
	// row does not exist.
	GetByKey(ctx context.Context, advisorID string, date time.Time, shiftID string) (*Attendance, error)

	// StampCheckIn sets the check-in punch on an existing punch-less row
	// (one pre-created as ABSENT, typically). The update is conditional on
	// check_in still being NULL so a concurrent punch loses cleanly;
	// ErrAlreadyCheckedIn is returned when no row qualifies.
	StampCheckIn(ctx context.Context, a Attendance) (Attendance, error)

	Update(ctx context.Context, a Attendance) error

	// ListOpenForDate returns rows for the date with a check-in, no
	// check-out, and status OPEN or PENDING_APPROVAL. Batch finalize input.
	ListOpenForDate(ctx context.Context, date time.Time) ([]Attendance, error)

	List(ctx context.Context, filter AttendanceFilter) ([]Attendance, int64, error)
	ListByAdvisor(ctx context.Context, advisorID string, filter AttendanceFilter) ([]Attendance, int64, error)
}
