package repository

import (
	"context"
	"errors"

	"tradegate/internal/domain"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/trace"
)

type TicketRepository struct {
	pool   PgxPool
	tracer trace.Tracer
}

func NewTicketRepository(pool PgxPool, tracer trace.Tracer) *TicketRepository {
	return &TicketRepository{pool: pool, tracer: tracer}
}

func (r *TicketRepository) RunMigrations(ctx context.Context) error {
	_, span := r.tracer.Start(ctx, "ticket-repo.run-migrations")
	defer span.End()

	_, err := r.pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS tickets (
    ticket_id BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL,
    status TEXT NOT NULL DEFAULT 'open',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    closed_at TIMESTAMPTZ
);
CREATE TABLE IF NOT EXISTS ticket_messages (
    id BIGSERIAL PRIMARY KEY,
    ticket_id BIGINT NOT NULL,
    sender TEXT NOT NULL,
    text TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`)
	return err
}

// Create opens a ticket with its first user message and returns the new id.
func (r *TicketRepository) Create(ctx context.Context, userID int64, text string) (int64, error) {
	_, span := r.tracer.Start(ctx, "ticket-repo.create")
	defer span.End()

	var ticketID int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO tickets (user_id, status) VALUES ($1, 'open') RETURNING ticket_id`,
		userID,
	).Scan(&ticketID)
	if err != nil {
		return 0, err
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO ticket_messages (ticket_id, sender, text) VALUES ($1, 'user', $2)`,
		ticketID, text,
	)
	if err != nil {
		return 0, err
	}
	return ticketID, nil
}

func (r *TicketRepository) Get(ctx context.Context, ticketID int64) (*domain.Ticket, error) {
	_, span := r.tracer.Start(ctx, "ticket-repo.get")
	defer span.End()

	row := r.pool.QueryRow(ctx,
		`SELECT ticket_id, user_id, status, created_at, closed_at
		 FROM tickets
		 WHERE ticket_id = $1`,
		ticketID,
	)

	var t domain.Ticket
	var status string
	err := row.Scan(&t.ID, &t.UserID, &status, &t.CreatedAt, &t.ClosedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	t.Status = domain.TicketStatus(status)
	return &t, nil
}

func (r *TicketRepository) AddMessage(ctx context.Context, ticketID int64, sender domain.TicketSender, text string) error {
	_, span := r.tracer.Start(ctx, "ticket-repo.add-message")
	defer span.End()

	_, err := r.pool.Exec(ctx,
		`INSERT INTO ticket_messages (ticket_id, sender, text) VALUES ($1, $2, $3)`,
		ticketID, string(sender), text,
	)
	return err
}

func (r *TicketRepository) Close(ctx context.Context, ticketID int64) error {
	_, span := r.tracer.Start(ctx, "ticket-repo.close")
	defer span.End()

	_, err := r.pool.Exec(ctx,
		`UPDATE tickets SET status = 'closed', closed_at = NOW() WHERE ticket_id = $1`,
		ticketID,
	)
	return err
}

func (r *TicketRepository) ListOpen(ctx context.Context, limit int) ([]domain.Ticket, error) {
	_, span := r.tracer.Start(ctx, "ticket-repo.list-open")
	defer span.End()

	if limit <= 0 {
		limit = 20
	}
	rows, err := r.pool.Query(ctx,
		`SELECT ticket_id, user_id, status, created_at, closed_at
		 FROM tickets
		 WHERE status = 'open'
		 ORDER BY ticket_id DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tickets []domain.Ticket
	for rows.Next() {
		var t domain.Ticket
		var status string
		if err := rows.Scan(&t.ID, &t.UserID, &status, &t.CreatedAt, &t.ClosedAt); err != nil {
			return nil, err
		}
		t.Status = domain.TicketStatus(status)
		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}
