package shift

import "context"

type ShiftRepository interface {
	Create(ctx context.Context, s Shift) (Shift, error)
	GetByID(ctx context.Context, id string) (Shift, error)
	List(ctx context.Context, activeOnly bool) ([]Shift, error)
	Update(ctx context.Context, s Shift) error

	// IsReferenced reports whether any schedule or attendance row points at
	// the shift; referenced shifts may only be deactivated.
	IsReferenced(ctx context.Context, id string) (bool, error)
}
