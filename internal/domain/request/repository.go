package request

import "context"

type RequestRepository interface {
	Create(ctx context.Context, r AttendanceRequest) (AttendanceRequest, error)
	GetByID(ctx context.Context, id string) (AttendanceRequest, error)

	// HasPending reports whether a PENDING request of the given type is
	// already attached to the attendance row. Punch validation uses this to
	// keep automatic request creation idempotent.
	HasPending(ctx context.Context, attendanceID string, t Type) (bool, error)

	// ListPendingByAttendance returns every still-PENDING sibling request.
	ListPendingByAttendance(ctx context.Context, attendanceID string) ([]AttendanceRequest, error)

	List(ctx context.Context, filter RequestFilter) ([]AttendanceRequest, int64, error)
	ListByRequester(ctx context.Context, requestedBy string, filter RequestFilter) ([]AttendanceRequest, int64, error)

	// Update records the decision only while the row is still PENDING; a
	// concurrent decision that landed first returns ErrAlreadyDecided.
	Update(ctx context.Context, r AttendanceRequest) error
}
