package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"tradegate/internal/domain"
)

func newTicketFixture(t *testing.T) (*TicketService, *stubTicketStore, *stubNotifier, *stubOps) {
	t.Helper()
	store := newStubTicketStore()
	notifier := newStubNotifier()
	ops := &stubOps{}
	svc := NewTicketService(testTracer(), store, notifier, ops, testMetrics())
	return svc, store, notifier, ops
}

func TestOpenCreatesTicketAndNotifiesOps(t *testing.T) {
	svc, store, _, ops := newTicketFixture(t)

	id, err := svc.Open(context.Background(), 5, "alice", "cannot pay")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if id != 1 {
		t.Fatalf("expected ticket id 1, got %d", id)
	}
	if len(store.messages) != 1 || store.messages[0].Sender != domain.SenderUser {
		t.Fatalf("unexpected messages %+v", store.messages)
	}
	if len(ops.notes) != 1 || !strings.Contains(ops.notes[0], "#1") {
		t.Fatalf("expected ops note about ticket #1, got %v", ops.notes)
	}
}

func TestReplyForwardsToOwner(t *testing.T) {
	svc, store, notifier, _ := newTicketFixture(t)
	id, _ := store.Create(context.Background(), 5, "hello")

	if err := svc.Reply(context.Background(), id, "try again now"); err != nil {
		t.Fatalf("Reply: %v", err)
	}
	msgs := notifier.sent[5]
	if len(msgs) != 1 || !strings.Contains(msgs[0], "try again now") {
		t.Fatalf("expected reply delivered to owner, got %v", msgs)
	}
	last := store.messages[len(store.messages)-1]
	if last.Sender != domain.SenderAdmin {
		t.Fatalf("expected admin message recorded, got %+v", last)
	}
}

func TestReplyUnknownTicket(t *testing.T) {
	svc, _, _, _ := newTicketFixture(t)

	if err := svc.Reply(context.Background(), 42, "hi"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCloseSurvivesNotifyFailure(t *testing.T) {
	svc, store, notifier, _ := newTicketFixture(t)
	id, _ := store.Create(context.Background(), 5, "hello")
	notifier.err = errors.New("bot blocked by user")

	if err := svc.Close(context.Background(), id); err != nil {
		t.Fatalf("Close should not fail on notify error: %v", err)
	}
	if store.tickets[id].Status != domain.TicketClosed {
		t.Fatal("ticket should be closed")
	}
}

func TestAppendClosedTicketNotFound(t *testing.T) {
	svc, store, _, ops := newTicketFixture(t)
	id, _ := store.Create(context.Background(), 5, "hello")
	if err := svc.Close(context.Background(), id); err != nil {
		t.Fatalf("Close: %v", err)
	}

	err := svc.Append(context.Background(), id, 5, "alice", "one more thing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	for _, m := range store.messages {
		if m.Text == "one more thing" {
			t.Fatal("closed ticket must not accept messages")
		}
	}
	if len(ops.notes) != 0 {
		t.Fatalf("expected no relay for a rejected append, got %v", ops.notes)
	}
}

func TestAppendUnknownTicketNotFound(t *testing.T) {
	svc, _, _, _ := newTicketFixture(t)

	if err := svc.Append(context.Background(), 42, 5, "alice", "hi"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAppendRelaysToOps(t *testing.T) {
	svc, store, _, ops := newTicketFixture(t)
	id, _ := store.Create(context.Background(), 5, "hello")

	if err := svc.Append(context.Background(), id, 5, "alice", "still broken"); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if len(ops.notes) != 1 || !strings.Contains(ops.notes[0], "still broken") {
		t.Fatalf("expected relay to ops, got %v", ops.notes)
	}
}
