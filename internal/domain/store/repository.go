package store

import "context"

// StoreRepository is read-only from the engine's perspective; the store
// directory is maintained elsewhere in the ERP.
type StoreRepository interface {
	GetByID(ctx context.Context, id string) (Store, error)

	// GetGeofence returns nil without error when the store has no fence
	// configured.
	GetGeofence(ctx context.Context, storeID string) (*Geofence, error)
}
