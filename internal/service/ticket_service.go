package service

import (
	"context"
	"fmt"
	"log"

	"tradegate/internal/domain"
	"tradegate/internal/metrics"

	"go.opentelemetry.io/otel/trace"
)

type TicketStore interface {
	Create(ctx context.Context, userID int64, text string) (int64, error)
	Get(ctx context.Context, ticketID int64) (*domain.Ticket, error)
	AddMessage(ctx context.Context, ticketID int64, sender domain.TicketSender, text string) error
	Close(ctx context.Context, ticketID int64) error
	ListOpen(ctx context.Context, limit int) ([]domain.Ticket, error)
}

type UserNotifier interface {
	NotifyUser(userID int64, text string) error
}

// TicketService relays support conversations between users and the admin
// group. Delivery of notifications is best effort: a blocked bot must not
// fail the underlying state change.
type TicketService struct {
	tracer  trace.Tracer
	tickets TicketStore
	notify  UserNotifier
	ops     OpsNotifier
	metrics *metrics.Metrics
}

func NewTicketService(tracer trace.Tracer, tickets TicketStore, notify UserNotifier, ops OpsNotifier, m *metrics.Metrics) *TicketService {
	return &TicketService{tracer: tracer, tickets: tickets, notify: notify, ops: ops, metrics: m}
}

// Open creates a ticket with the user's first message and tells the support
// group about it.
func (s *TicketService) Open(ctx context.Context, userID int64, username, text string) (int64, error) {
	ctx, span := s.tracer.Start(ctx, "ticket-service.open")
	defer span.End()

	ticketID, err := s.tickets.Create(ctx, userID, text)
	if err != nil {
		return 0, fmt.Errorf("open ticket for %d: %w", userID, err)
	}
	s.metrics.TicketsOpened.Inc()
	s.ops.NotifyOps(fmt.Sprintf("🎫 Ticket #%d from @%s (%d):\n\n%s", ticketID, username, userID, text))
	return ticketID, nil
}

// Reply appends an admin message and forwards it to the ticket's owner.
func (s *TicketService) Reply(ctx context.Context, ticketID int64, text string) error {
	ctx, span := s.tracer.Start(ctx, "ticket-service.reply")
	defer span.End()

	ticket, err := s.tickets.Get(ctx, ticketID)
	if err != nil {
		return fmt.Errorf("reply to ticket %d: %w", ticketID, err)
	}
	if ticket == nil {
		return fmt.Errorf("reply to ticket %d: %w", ticketID, domain.ErrNotFound)
	}
	if err := s.tickets.AddMessage(ctx, ticketID, domain.SenderAdmin, text); err != nil {
		return fmt.Errorf("reply to ticket %d: %w", ticketID, err)
	}
	if err := s.notify.NotifyUser(ticket.UserID, fmt.Sprintf("💬 Support, ticket #%d:\n\n%s", ticketID, text)); err != nil {
		log.Printf("ticket %d: failed to deliver reply to user %d: %v", ticketID, ticket.UserID, err)
	}
	return nil
}

// Append records a follow-up message from the ticket's owner and relays it
// to the support group. A closed or unknown ticket yields ErrNotFound so the
// caller can stop relaying.
func (s *TicketService) Append(ctx context.Context, ticketID, userID int64, username, text string) error {
	ctx, span := s.tracer.Start(ctx, "ticket-service.append")
	defer span.End()

	ticket, err := s.tickets.Get(ctx, ticketID)
	if err != nil {
		return fmt.Errorf("append to ticket %d: %w", ticketID, err)
	}
	if ticket == nil || ticket.Status != domain.TicketOpen {
		return fmt.Errorf("append to ticket %d: %w", ticketID, domain.ErrNotFound)
	}
	if err := s.tickets.AddMessage(ctx, ticketID, domain.SenderUser, text); err != nil {
		return fmt.Errorf("append to ticket %d: %w", ticketID, err)
	}
	s.ops.NotifyOps(fmt.Sprintf("🎫 Ticket #%d, @%s (%d):\n\n%s", ticketID, username, userID, text))
	return nil
}

func (s *TicketService) Close(ctx context.Context, ticketID int64) error {
	ctx, span := s.tracer.Start(ctx, "ticket-service.close")
	defer span.End()

	ticket, err := s.tickets.Get(ctx, ticketID)
	if err != nil {
		return fmt.Errorf("close ticket %d: %w", ticketID, err)
	}
	if ticket == nil {
		return fmt.Errorf("close ticket %d: %w", ticketID, domain.ErrNotFound)
	}
	if err := s.tickets.Close(ctx, ticketID); err != nil {
		return fmt.Errorf("close ticket %d: %w", ticketID, err)
	}
	if err := s.notify.NotifyUser(ticket.UserID, fmt.Sprintf("✅ Ticket #%d has been closed. Open a new one if anything else comes up.", ticketID)); err != nil {
		log.Printf("ticket %d: failed to notify user %d about close: %v", ticketID, ticket.UserID, err)
	}
	return nil
}

func (s *TicketService) ListOpen(ctx context.Context, limit int) ([]domain.Ticket, error) {
	ctx, span := s.tracer.Start(ctx, "ticket-service.list-open")
	defer span.End()

	tickets, err := s.tickets.ListOpen(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list open tickets: %w", err)
	}
	return tickets, nil
}
