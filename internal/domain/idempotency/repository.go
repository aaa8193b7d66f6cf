package idempotency

import "context"

type IdempotencyRepository interface {
	// Get returns nil without error when the key is unknown or empty.
	Get(ctx context.Context, key, actorID, endpoint string) (*Record, error)

	// Remember stores the mapping create-once and reports whether this
	// writer won. A false return means the key is already bound, so the
	// caller must roll back its side effects and serve the recorded
	// object instead. An empty key is a no-op reported as won.
	Remember(ctx context.Context, key, actorID, endpoint, objectID string) (bool, error)
}
