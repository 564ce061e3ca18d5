package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace"
)

// State names the one pending text input the bot expects from a user.
type State string

const (
	StateNone              State = ""
	StateAwaitingTicket    State = "awaiting_ticket"
	StateAwaitingReply     State = "awaiting_reply"
	StateAwaitingBroadcast State = "awaiting_broadcast"
	StateAwaitingWLAdd     State = "awaiting_wl_add"
	StateAwaitingWLRemove  State = "awaiting_wl_remove"
	StateAwaitingSymbol    State = "awaiting_symbol"
	StateAwaitingJournal   State = "awaiting_journal"
	StateTicketFollowUp    State = "ticket_followup"
)

// Conversation is what is persisted per user. TicketID is only meaningful
// for StateAwaitingReply and StateTicketFollowUp.
type Conversation struct {
	State    State `json:"state"`
	TicketID int64 `json:"ticket_id,omitempty"`
}

const sessionTTL = 15 * time.Minute

// Store keeps per-user conversation state in Redis so a restart does not
// strand users mid-dialog.
type Store struct {
	client *redis.Client
	tracer trace.Tracer
}

func NewStore(client *redis.Client, tracer trace.Tracer) *Store {
	return &Store{client: client, tracer: tracer}
}

func key(userID int64) string {
	return fmt.Sprintf("session:%d", userID)
}

func (s *Store) Set(ctx context.Context, userID int64, conv Conversation) error {
	ctx, span := s.tracer.Start(ctx, "session-store.set")
	defer span.End()

	payload, err := json.Marshal(conv)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := s.client.Set(ctx, key(userID), payload, sessionTTL).Err(); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

// Get returns the pending conversation, or a zero Conversation when none is
// stored or the previous one expired.
func (s *Store) Get(ctx context.Context, userID int64) (Conversation, error) {
	ctx, span := s.tracer.Start(ctx, "session-store.get")
	defer span.End()

	payload, err := s.client.Get(ctx, key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Conversation{}, nil
	}
	if err != nil {
		return Conversation{}, fmt.Errorf("load session: %w", err)
	}

	var conv Conversation
	if err := json.Unmarshal(payload, &conv); err != nil {
		return Conversation{}, fmt.Errorf("decode session: %w", err)
	}
	return conv, nil
}

func (s *Store) Clear(ctx context.Context, userID int64) error {
	ctx, span := s.tracer.Start(ctx, "session-store.clear")
	defer span.End()

	if err := s.client.Del(ctx, key(userID)).Err(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
