package user

import "context"

type UserRepository interface {
	GetByID(ctx context.Context, id string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)

	// ListActiveAdvisors returns every active advisor with an assigned
	// store. The reconciliation batch walks this set.
	ListActiveAdvisors(ctx context.Context) ([]User, error)
}
