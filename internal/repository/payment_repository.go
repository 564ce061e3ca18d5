package repository

import (
	"context"
	"errors"

	"tradegate/internal/domain"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/trace"
)

type PaymentRepository struct {
	pool   PgxPool
	tracer trace.Tracer
}

func NewPaymentRepository(pool PgxPool, tracer trace.Tracer) *PaymentRepository {
	return &PaymentRepository{pool: pool, tracer: tracer}
}

func (r *PaymentRepository) RunMigrations(ctx context.Context) error {
	_, span := r.tracer.Start(ctx, "payment-repo.run-migrations")
	defer span.End()

	_, err := r.pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS payments (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL,
    payload TEXT NOT NULL UNIQUE,
    amount INTEGER NOT NULL,
    status TEXT NOT NULL DEFAULT 'pending',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    paid_at TIMESTAMPTZ
)`)
	return err
}

// Create registers a pending charge. A payload collision replaces the earlier
// pending record; payloads carry a random suffix so this is not expected in
// practice.
func (r *PaymentRepository) Create(ctx context.Context, userID int64, payload string, amount int) error {
	_, span := r.tracer.Start(ctx, "payment-repo.create")
	defer span.End()

	// Only a still-pending record may be replaced; a paid row never reverts.
	_, err := r.pool.Exec(ctx,
		`INSERT INTO payments (user_id, payload, amount, status)
		 VALUES ($1, $2, $3, 'pending')
		 ON CONFLICT (payload) DO UPDATE SET
		     user_id = EXCLUDED.user_id,
		     amount = EXCLUDED.amount,
		     status = 'pending',
		     created_at = NOW(),
		     paid_at = NULL
		 WHERE payments.status = 'pending'`,
		userID, payload, amount,
	)
	return err
}

func (r *PaymentRepository) GetByPayload(ctx context.Context, payload string) (*domain.Payment, error) {
	_, span := r.tracer.Start(ctx, "payment-repo.get-by-payload")
	defer span.End()

	row := r.pool.QueryRow(ctx,
		`SELECT id, user_id, payload, amount, status, created_at, paid_at
		 FROM payments
		 WHERE payload = $1`,
		payload,
	)

	var p domain.Payment
	var status string
	err := row.Scan(&p.ID, &p.UserID, &p.Payload, &p.Amount, &status, &p.CreatedAt, &p.PaidAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	p.Status = domain.PaymentStatus(status)
	return &p, nil
}

// MarkPaid flips exactly one pending record to paid. The status guard in the
// WHERE clause makes redelivered confirmations no-ops: the second caller sees
// zero affected rows and must not grant again.
func (r *PaymentRepository) MarkPaid(ctx context.Context, payload string) (bool, error) {
	_, span := r.tracer.Start(ctx, "payment-repo.mark-paid")
	defer span.End()

	tag, err := r.pool.Exec(ctx,
		`UPDATE payments
		 SET status = 'paid', paid_at = NOW()
		 WHERE payload = $1 AND status = 'pending'`,
		payload,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
