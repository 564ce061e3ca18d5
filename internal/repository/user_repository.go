package repository

import (
	"context"
	"errors"
	"time"

	"tradegate/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/trace"
)

type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type UserRepository struct {
	pool   PgxPool
	tracer trace.Tracer
}

func NewUserRepository(pool PgxPool, tracer trace.Tracer) *UserRepository {
	return &UserRepository{pool: pool, tracer: tracer}
}

func (r *UserRepository) RunMigrations(ctx context.Context) error {
	_, span := r.tracer.Start(ctx, "user-repo.run-migrations")
	defer span.End()

	_, err := r.pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS users (
    user_id BIGINT PRIMARY KEY,
    username TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    is_whitelisted BOOLEAN NOT NULL DEFAULT FALSE,
    access_until TIMESTAMPTZ,
    active_symbol TEXT NOT NULL DEFAULT '',
    accepted_disclaimer_at TIMESTAMPTZ
)`)
	return err
}

// Upsert registers the user on first contact. An empty username never
// overwrites a previously stored one (whitelist edits arrive id-only).
func (r *UserRepository) Upsert(ctx context.Context, userID int64, username string) error {
	_, span := r.tracer.Start(ctx, "user-repo.upsert")
	defer span.End()

	_, err := r.pool.Exec(ctx,
		`INSERT INTO users (user_id, username)
		 VALUES ($1, $2)
		 ON CONFLICT (user_id) DO UPDATE SET
		     username = COALESCE(NULLIF(EXCLUDED.username, ''), users.username)`,
		userID, username,
	)
	return err
}

func (r *UserRepository) Get(ctx context.Context, userID int64) (*domain.User, error) {
	_, span := r.tracer.Start(ctx, "user-repo.get")
	defer span.End()

	row := r.pool.QueryRow(ctx,
		`SELECT user_id, username, created_at, is_whitelisted, access_until, active_symbol, accepted_disclaimer_at
		 FROM users
		 WHERE user_id = $1`,
		userID,
	)

	var u domain.User
	err := row.Scan(&u.ID, &u.Username, &u.CreatedAt, &u.IsWhitelisted, &u.AccessUntil, &u.ActiveSymbol, &u.AcceptedDisclaimerAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) SetDisclaimerAccepted(ctx context.Context, userID int64) error {
	_, span := r.tracer.Start(ctx, "user-repo.set-disclaimer")
	defer span.End()

	_, err := r.pool.Exec(ctx,
		`UPDATE users SET accepted_disclaimer_at = NOW() WHERE user_id = $1`,
		userID,
	)
	return err
}

func (r *UserRepository) SetActiveSymbol(ctx context.Context, userID int64, symbol string) error {
	_, span := r.tracer.Start(ctx, "user-repo.set-active-symbol")
	defer span.End()

	_, err := r.pool.Exec(ctx,
		`UPDATE users SET active_symbol = $2 WHERE user_id = $1`,
		userID, symbol,
	)
	return err
}

func (r *UserRepository) SetWhitelist(ctx context.Context, userID int64, whitelisted bool) error {
	_, span := r.tracer.Start(ctx, "user-repo.set-whitelist")
	defer span.End()

	_, err := r.pool.Exec(ctx,
		`UPDATE users SET is_whitelisted = $2 WHERE user_id = $1`,
		userID, whitelisted,
	)
	return err
}

func (r *UserRepository) GrantAccessUntil(ctx context.Context, userID int64, until time.Time) error {
	_, span := r.tracer.Start(ctx, "user-repo.grant-access")
	defer span.End()

	_, err := r.pool.Exec(ctx,
		`UPDATE users SET access_until = $2 WHERE user_id = $1`,
		userID, until.UTC(),
	)
	return err
}

// ListAll returns the entitlement fields of every known user, for the
// broadcast scan. Eventually-consistent with concurrent writes.
func (r *UserRepository) ListAll(ctx context.Context) ([]domain.User, error) {
	_, span := r.tracer.Start(ctx, "user-repo.list-all")
	defer span.End()

	rows, err := r.pool.Query(ctx,
		`SELECT user_id, username, created_at, is_whitelisted, access_until, active_symbol, accepted_disclaimer_at
		 FROM users
		 ORDER BY user_id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.Username, &u.CreatedAt, &u.IsWhitelisted, &u.AccessUntil, &u.ActiveSymbol, &u.AcceptedDisclaimerAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// ListExpiringBetween returns non-whitelisted users whose timed access lapses
// inside the given window.
func (r *UserRepository) ListExpiringBetween(ctx context.Context, from, to time.Time) ([]domain.User, error) {
	_, span := r.tracer.Start(ctx, "user-repo.list-expiring")
	defer span.End()

	rows, err := r.pool.Query(ctx,
		`SELECT user_id, username, created_at, is_whitelisted, access_until, active_symbol, accepted_disclaimer_at
		 FROM users
		 WHERE is_whitelisted = FALSE
		   AND access_until IS NOT NULL
		   AND access_until > $1
		   AND access_until <= $2
		 ORDER BY access_until`,
		from.UTC(), to.UTC(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.Username, &u.CreatedAt, &u.IsWhitelisted, &u.AccessUntil, &u.ActiveSymbol, &u.AcceptedDisclaimerAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
