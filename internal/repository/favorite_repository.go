package repository

import (
	"context"

	"go.opentelemetry.io/otel/trace"
)

type FavoriteRepository struct {
	pool   PgxPool
	tracer trace.Tracer
}

func NewFavoriteRepository(pool PgxPool, tracer trace.Tracer) *FavoriteRepository {
	return &FavoriteRepository{pool: pool, tracer: tracer}
}

func (r *FavoriteRepository) RunMigrations(ctx context.Context) error {
	_, span := r.tracer.Start(ctx, "favorite-repo.run-migrations")
	defer span.End()

	_, err := r.pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS favorites (
    user_id BIGINT NOT NULL,
    symbol TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (user_id, symbol)
)`)
	return err
}

func (r *FavoriteRepository) Add(ctx context.Context, userID int64, symbol string) error {
	_, span := r.tracer.Start(ctx, "favorite-repo.add")
	defer span.End()

	_, err := r.pool.Exec(ctx,
		`INSERT INTO favorites (user_id, symbol)
		 VALUES ($1, $2)
		 ON CONFLICT (user_id, symbol) DO NOTHING`,
		userID, symbol,
	)
	return err
}

func (r *FavoriteRepository) Remove(ctx context.Context, userID int64, symbol string) error {
	_, span := r.tracer.Start(ctx, "favorite-repo.remove")
	defer span.End()

	_, err := r.pool.Exec(ctx,
		`DELETE FROM favorites WHERE user_id = $1 AND symbol = $2`,
		userID, symbol,
	)
	return err
}

// List returns the user's favorites newest-first, bounded by limit.
func (r *FavoriteRepository) List(ctx context.Context, userID int64, limit int) ([]string, error) {
	_, span := r.tracer.Start(ctx, "favorite-repo.list")
	defer span.End()

	if limit <= 0 {
		limit = 30
	}
	rows, err := r.pool.Query(ctx,
		`SELECT symbol
		 FROM favorites
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var symbols []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		symbols = append(symbols, s)
	}
	return symbols, rows.Err()
}
