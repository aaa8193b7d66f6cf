package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/storeops/attendance-backend-go/internal/domain/idempotency"
	"github.com/storeops/attendance-backend-go/internal/pkg/database"
)

type idempotencyRepository struct {
	db *database.DB
}

func NewIdempotencyRepository(db *database.DB) idempotency.IdempotencyRepository {
	return &idempotencyRepository{db: db}
}

// Get implements idempotency.IdempotencyRepository.
func (r *idempotencyRepository) Get(ctx context.Context, key, actorID, endpoint string) (*idempotency.Record, error) {
	if key == "" {
		return nil, nil
	}

	q := GetQuerier(ctx, r.db)

	query := `
		SELECT key, actor_id, endpoint, object_id, created_at
		FROM idempotency_records
		WHERE key = $1 AND actor_id = $2 AND endpoint = $3
	`

	var rec idempotency.Record
	err := q.QueryRow(ctx, query, key, actorID, endpoint).Scan(
		&rec.Key, &rec.ActorID, &rec.Endpoint, &rec.ObjectID, &rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get idempotency record: %w", err)
	}

	return &rec, nil
}

// Remember implements idempotency.IdempotencyRepository. ON CONFLICT DO
// NOTHING gives first-writer-wins: inside a transaction a concurrent
// duplicate blocks on the unique index until the winner commits, then
// reports zero rows so the loser can roll back.
func (r *idempotencyRepository) Remember(ctx context.Context, key, actorID, endpoint, objectID string) (bool, error) {
	if key == "" {
		return true, nil
	}

	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO idempotency_records (key, actor_id, endpoint, object_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (key, actor_id, endpoint) DO NOTHING
	`

	tag, err := q.Exec(ctx, query, key, actorID, endpoint, objectID)
	if err != nil {
		return false, fmt.Errorf("failed to remember idempotency record: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}
