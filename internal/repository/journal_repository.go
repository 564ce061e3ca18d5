package repository

import (
	"context"

	"tradegate/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

type JournalRepository struct {
	pool   PgxPool
	tracer trace.Tracer
}

func NewJournalRepository(pool PgxPool, tracer trace.Tracer) *JournalRepository {
	return &JournalRepository{pool: pool, tracer: tracer}
}

func (r *JournalRepository) RunMigrations(ctx context.Context) error {
	_, span := r.tracer.Start(ctx, "journal-repo.run-migrations")
	defer span.End()

	_, err := r.pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS journal_entries (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL,
    text TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`)
	return err
}

func (r *JournalRepository) Add(ctx context.Context, userID int64, text string) error {
	_, span := r.tracer.Start(ctx, "journal-repo.add")
	defer span.End()

	_, err := r.pool.Exec(ctx,
		`INSERT INTO journal_entries (user_id, text) VALUES ($1, $2)`,
		userID, text,
	)
	return err
}

// ListRecent returns the user's latest entries newest-first.
func (r *JournalRepository) ListRecent(ctx context.Context, userID int64, limit int) ([]domain.JournalEntry, error) {
	_, span := r.tracer.Start(ctx, "journal-repo.list-recent")
	defer span.End()

	if limit <= 0 {
		limit = 20
	}
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, text, created_at
		 FROM journal_entries
		 WHERE user_id = $1
		 ORDER BY id DESC
		 LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.JournalEntry
	for rows.Next() {
		var e domain.JournalEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Text, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
