package bot

import (
	"context"
	"strings"
	"testing"
	"time"

	"tradegate/internal/domain"
	"tradegate/internal/service"
	"tradegate/internal/session"
	"tradegate/internal/texts"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace"
	tele "gopkg.in/telebot.v3"
)

// fakeContext implements just the Context surface the handlers touch;
// anything else panics via the embedded nil interface.
type fakeContext struct {
	tele.Context
	user *tele.User
	chat *tele.Chat
	text string
	sent []interface{}
}

func (f *fakeContext) Sender() *tele.User { return f.user }
func (f *fakeContext) Chat() *tele.Chat   { return f.chat }
func (f *fakeContext) Text() string       { return f.text }

func (f *fakeContext) Send(what interface{}, _ ...interface{}) error {
	f.sent = append(f.sent, what)
	return nil
}

func (f *fakeContext) Respond(_ ...*tele.CallbackResponse) error { return nil }
func (f *fakeContext) Notify(_ tele.ChatAction) error            { return nil }

func privateChatContext(userID int64, text string) *fakeContext {
	return &fakeContext{
		user: &tele.User{ID: userID, Username: "probeless"},
		chat: &tele.Chat{ID: userID, Type: tele.ChatPrivate},
		text: text,
	}
}

func (f *fakeContext) lastText(t *testing.T) string {
	t.Helper()
	if len(f.sent) == 0 {
		t.Fatal("expected a reply")
	}
	s, ok := f.sent[len(f.sent)-1].(string)
	if !ok {
		t.Fatalf("expected a text reply, got %T", f.sent[len(f.sent)-1])
	}
	return s
}

type gateUserStore struct {
	users map[int64]*domain.User
}

func (s *gateUserStore) Upsert(_ context.Context, userID int64, _ string) error {
	if _, ok := s.users[userID]; !ok {
		s.users[userID] = &domain.User{ID: userID}
	}
	return nil
}

func (s *gateUserStore) Get(_ context.Context, userID int64) (*domain.User, error) {
	return s.users[userID], nil
}

func (s *gateUserStore) SetDisclaimerAccepted(_ context.Context, userID int64) error {
	now := time.Now()
	s.users[userID].AcceptedDisclaimerAt = &now
	return nil
}

func (s *gateUserStore) SetActiveSymbol(_ context.Context, userID int64, symbol string) error {
	s.users[userID].ActiveSymbol = symbol
	return nil
}

func (s *gateUserStore) SetWhitelist(_ context.Context, userID int64, whitelisted bool) error {
	s.users[userID].IsWhitelisted = whitelisted
	return nil
}

func (s *gateUserStore) GrantAccessUntil(_ context.Context, userID int64, until time.Time) error {
	s.users[userID].AccessUntil = &until
	return nil
}

type gateTicketStore struct {
	nextID   int64
	tickets  map[int64]*domain.Ticket
	messages []domain.TicketMessage
}

func newGateTicketStore() *gateTicketStore {
	return &gateTicketStore{nextID: 1, tickets: map[int64]*domain.Ticket{}}
}

func (s *gateTicketStore) Create(_ context.Context, userID int64, text string) (int64, error) {
	id := s.nextID
	s.nextID++
	s.tickets[id] = &domain.Ticket{ID: id, UserID: userID, Status: domain.TicketOpen}
	s.messages = append(s.messages, domain.TicketMessage{TicketID: id, Sender: domain.SenderUser, Text: text})
	return id, nil
}

func (s *gateTicketStore) Get(_ context.Context, ticketID int64) (*domain.Ticket, error) {
	return s.tickets[ticketID], nil
}

func (s *gateTicketStore) AddMessage(_ context.Context, ticketID int64, sender domain.TicketSender, text string) error {
	s.messages = append(s.messages, domain.TicketMessage{TicketID: ticketID, Sender: sender, Text: text})
	return nil
}

func (s *gateTicketStore) Close(_ context.Context, ticketID int64) error {
	s.tickets[ticketID].Status = domain.TicketClosed
	return nil
}

func (s *gateTicketStore) ListOpen(_ context.Context, _ int) ([]domain.Ticket, error) {
	return nil, nil
}

type silentNotifier struct{}

func (silentNotifier) NotifyUser(int64, string) error { return nil }
func (silentNotifier) NotifyOps(string)               {}

func newGateFixture(t *testing.T) (*Bot, *gateUserStore, *gateTicketStore) {
	t.Helper()
	tracer := trace.NewNoopTracerProvider().Tracer("test")

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	users := &gateUserStore{users: map[int64]*domain.User{}}
	tickets := newGateTicketStore()
	b := &Bot{
		opts:     Options{AdminUserID: 1},
		access:   service.NewAccessService(tracer, users),
		tickets:  service.NewTicketService(tracer, tickets, silentNotifier{}, silentNotifier{}, testMetrics()),
		sessions: session.NewStore(client, tracer),
	}
	return b, users, tickets
}

func TestSupportRequiresActiveAccess(t *testing.T) {
	b, _, _ := newGateFixture(t)
	c := privateChatContext(99, "")

	if err := b.handleSupport(c); err != nil {
		t.Fatalf("handleSupport: %v", err)
	}
	if got := c.lastText(t); got != texts.Promo {
		t.Fatalf("expected the promo reply, got %q", got)
	}
	conv, err := b.sessions.Get(context.Background(), 99)
	if err != nil {
		t.Fatalf("Get session: %v", err)
	}
	if conv.State != session.StateNone {
		t.Fatalf("user without access must not reach ticket compose, got state %q", conv.State)
	}
}

func TestSupportOpensComposeForActiveUser(t *testing.T) {
	b, users, _ := newGateFixture(t)
	users.users[5] = &domain.User{ID: 5, IsWhitelisted: true}
	c := privateChatContext(5, "")

	if err := b.handleSupport(c); err != nil {
		t.Fatalf("handleSupport: %v", err)
	}
	conv, err := b.sessions.Get(context.Background(), 5)
	if err != nil {
		t.Fatalf("Get session: %v", err)
	}
	if conv.State != session.StateAwaitingTicket {
		t.Fatalf("expected ticket compose state, got %q", conv.State)
	}
}

func TestGuideTextsRequireActiveAccess(t *testing.T) {
	b, users, _ := newGateFixture(t)
	users.users[5] = &domain.User{ID: 5, IsWhitelisted: true}

	locked := privateChatContext(99, "")
	if err := b.gatedText(texts.DecisionBrief)(locked); err != nil {
		t.Fatalf("gatedText: %v", err)
	}
	if got := locked.lastText(t); got != texts.Promo {
		t.Fatalf("inactive user must get the promo, got %q", got)
	}

	open := privateChatContext(5, "")
	if err := b.gatedText(texts.DecisionBrief)(open); err != nil {
		t.Fatalf("gatedText: %v", err)
	}
	if got := open.lastText(t); got != texts.DecisionBrief {
		t.Fatalf("active user must get the guide, got %q", got)
	}
}

func TestChannelInviteIsGated(t *testing.T) {
	b, users, _ := newGateFixture(t)
	users.users[5] = &domain.User{ID: 5, IsWhitelisted: true}

	locked := privateChatContext(99, "")
	if err := b.handleChannelInvite(locked); err != nil {
		t.Fatalf("handleChannelInvite: %v", err)
	}
	if got := locked.lastText(t); got != texts.Promo {
		t.Fatalf("inactive user must get the promo, got %q", got)
	}

	// Active but no channel configured: told so, never promo-walled.
	open := privateChatContext(5, "")
	if err := b.handleChannelInvite(open); err != nil {
		t.Fatalf("handleChannelInvite: %v", err)
	}
	if got := open.lastText(t); !strings.Contains(got, "not set up") {
		t.Fatalf("expected the not-configured reply, got %q", got)
	}
}

func TestLockedMenuHidesGatedFeatures(t *testing.T) {
	m := mainMenu(false)
	for _, row := range m.InlineKeyboard {
		for _, btn := range row {
			if btn.Unique == "support" || btn.Unique == "brief" || btn.Unique == "tilt" ||
				btn.Unique == "checklists" || btn.Unique == "channel" {
				t.Fatalf("locked menu must not offer gated button %q", btn.Unique)
			}
		}
	}
}

func TestTicketFollowUpRelaysUntilClosed(t *testing.T) {
	b, users, tickets := newGateFixture(t)
	users.users[5] = &domain.User{ID: 5, IsWhitelisted: true}
	ctx := context.Background()

	// First message opens the ticket and arms follow-up mode.
	if err := b.sessions.Set(ctx, 5, session.Conversation{State: session.StateAwaitingTicket}); err != nil {
		t.Fatalf("Set session: %v", err)
	}
	if err := b.handleText(privateChatContext(5, "cannot pay")); err != nil {
		t.Fatalf("handleText: %v", err)
	}
	conv, err := b.sessions.Get(ctx, 5)
	if err != nil {
		t.Fatalf("Get session: %v", err)
	}
	if conv.State != session.StateTicketFollowUp || conv.TicketID != 1 {
		t.Fatalf("expected follow-up state on ticket 1, got %+v", conv)
	}

	// Second message lands on the same ticket.
	if err := b.handleText(privateChatContext(5, "still broken")); err != nil {
		t.Fatalf("handleText: %v", err)
	}
	last := tickets.messages[len(tickets.messages)-1]
	if last.TicketID != 1 || last.Sender != domain.SenderUser || last.Text != "still broken" {
		t.Fatalf("follow-up not relayed, got %+v", last)
	}

	// After close, the relay stops and the session is cleared.
	tickets.tickets[1].Status = domain.TicketClosed
	c := privateChatContext(5, "anyone there?")
	if err := b.handleText(c); err != nil {
		t.Fatalf("handleText: %v", err)
	}
	if got := c.lastText(t); !strings.Contains(got, "closed") {
		t.Fatalf("expected closed-ticket reply, got %q", got)
	}
	conv, err = b.sessions.Get(ctx, 5)
	if err != nil {
		t.Fatalf("Get session: %v", err)
	}
	if conv.State != session.StateNone {
		t.Fatalf("expected cleared session, got %+v", conv)
	}
	for _, m := range tickets.messages {
		if m.Text == "anyone there?" {
			t.Fatal("closed ticket must not accept messages")
		}
	}
}
