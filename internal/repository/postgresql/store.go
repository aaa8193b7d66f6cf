package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/storeops/attendance-backend-go/internal/domain/store"
	"github.com/storeops/attendance-backend-go/internal/pkg/database"
)

type storeRepository struct {
	db *database.DB
}

func NewStoreRepository(db *database.DB) store.StoreRepository {
	return &storeRepository{db: db}
}

// GetByID implements store.StoreRepository.
func (r *storeRepository) GetByID(ctx context.Context, id string) (store.Store, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT id, name, is_active, created_at, updated_at FROM stores WHERE id = $1`

	var s store.Store
	err := q.QueryRow(ctx, query, id).Scan(&s.ID, &s.Name, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.Store{}, store.ErrStoreNotFound
		}
		return store.Store{}, fmt.Errorf("failed to get store by ID: %w", err)
	}

	return s, nil
}

// GetGeofence implements store.StoreRepository.
func (r *storeRepository) GetGeofence(ctx context.Context, storeID string) (*store.Geofence, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT store_id, latitude, longitude, radius_meters, is_active
		FROM store_geofences
		WHERE store_id = $1
	`

	var g store.Geofence
	err := q.QueryRow(ctx, query, storeID).Scan(&g.StoreID, &g.Latitude, &g.Longitude, &g.RadiusMeters, &g.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get store geofence: %w", err)
	}

	return &g, nil
}
