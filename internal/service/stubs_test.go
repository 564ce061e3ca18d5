package service

import (
	"context"
	"time"

	"tradegate/internal/domain"
	"tradegate/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
)

func testTracer() trace.Tracer {
	return trace.NewNoopTracerProvider().Tracer("test")
}

func testMetrics() *metrics.Metrics {
	return metrics.New(prometheus.NewRegistry())
}

type stubUserStore struct {
	users        map[int64]*domain.User
	upserts      []int64
	disclaimers  []int64
	symbols      map[int64]string
	whitelists   map[int64]bool
	grants       map[int64]time.Time
	getErr       error
}

func newStubUserStore() *stubUserStore {
	return &stubUserStore{
		users:      map[int64]*domain.User{},
		symbols:    map[int64]string{},
		whitelists: map[int64]bool{},
		grants:     map[int64]time.Time{},
	}
}

func (s *stubUserStore) Upsert(_ context.Context, userID int64, _ string) error {
	s.upserts = append(s.upserts, userID)
	return nil
}

func (s *stubUserStore) Get(_ context.Context, userID int64) (*domain.User, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.users[userID], nil
}

func (s *stubUserStore) SetDisclaimerAccepted(_ context.Context, userID int64) error {
	s.disclaimers = append(s.disclaimers, userID)
	return nil
}

func (s *stubUserStore) SetActiveSymbol(_ context.Context, userID int64, symbol string) error {
	s.symbols[userID] = symbol
	return nil
}

func (s *stubUserStore) SetWhitelist(_ context.Context, userID int64, whitelisted bool) error {
	s.whitelists[userID] = whitelisted
	return nil
}

func (s *stubUserStore) GrantAccessUntil(_ context.Context, userID int64, until time.Time) error {
	s.grants[userID] = until
	return nil
}

type stubPaymentStore struct {
	created    []*domain.Payment
	byPayload  map[string]*domain.Payment
	markPaidOK bool
	marked     []string
}

func newStubPaymentStore() *stubPaymentStore {
	return &stubPaymentStore{byPayload: map[string]*domain.Payment{}, markPaidOK: true}
}

func (s *stubPaymentStore) Create(_ context.Context, userID int64, payload string, amount int) error {
	p := &domain.Payment{UserID: userID, Payload: payload, Amount: amount, Status: domain.PaymentPending}
	s.created = append(s.created, p)
	s.byPayload[payload] = p
	return nil
}

func (s *stubPaymentStore) GetByPayload(_ context.Context, payload string) (*domain.Payment, error) {
	return s.byPayload[payload], nil
}

func (s *stubPaymentStore) MarkPaid(_ context.Context, payload string) (bool, error) {
	s.marked = append(s.marked, payload)
	return s.markPaidOK, nil
}

type stubGranter struct {
	until   time.Time
	err     error
	granted []int64
}

func (s *stubGranter) Grant(_ context.Context, userID int64) (time.Time, error) {
	if s.err != nil {
		return time.Time{}, s.err
	}
	s.granted = append(s.granted, userID)
	return s.until, nil
}

type stubOps struct {
	notes []string
}

func (s *stubOps) NotifyOps(text string) {
	s.notes = append(s.notes, text)
}

type stubNotifier struct {
	sent map[int64][]string
	err  error
}

func newStubNotifier() *stubNotifier {
	return &stubNotifier{sent: map[int64][]string{}}
}

func (s *stubNotifier) NotifyUser(userID int64, text string) error {
	if s.err != nil {
		return s.err
	}
	s.sent[userID] = append(s.sent[userID], text)
	return nil
}

type stubCandleProvider struct {
	candles []domain.Candle
	err     error
}

func (s *stubCandleProvider) FetchCandles(_ context.Context, _, _ string, _ int) ([]domain.Candle, error) {
	return s.candles, s.err
}

type stubTickerProvider struct {
	snapshot map[string]domain.Ticker
	err      error
}

func (s *stubTickerProvider) FetchTickers(_ context.Context) (map[string]domain.Ticker, error) {
	return s.snapshot, s.err
}

type stubTicketStore struct {
	nextID   int64
	tickets  map[int64]*domain.Ticket
	messages []domain.TicketMessage
	closed   []int64
}

func newStubTicketStore() *stubTicketStore {
	return &stubTicketStore{nextID: 1, tickets: map[int64]*domain.Ticket{}}
}

func (s *stubTicketStore) Create(_ context.Context, userID int64, text string) (int64, error) {
	id := s.nextID
	s.nextID++
	s.tickets[id] = &domain.Ticket{ID: id, UserID: userID, Status: domain.TicketOpen}
	s.messages = append(s.messages, domain.TicketMessage{TicketID: id, Sender: domain.SenderUser, Text: text})
	return id, nil
}

func (s *stubTicketStore) Get(_ context.Context, ticketID int64) (*domain.Ticket, error) {
	return s.tickets[ticketID], nil
}

func (s *stubTicketStore) AddMessage(_ context.Context, ticketID int64, sender domain.TicketSender, text string) error {
	s.messages = append(s.messages, domain.TicketMessage{TicketID: ticketID, Sender: sender, Text: text})
	return nil
}

func (s *stubTicketStore) Close(_ context.Context, ticketID int64) error {
	s.closed = append(s.closed, ticketID)
	s.tickets[ticketID].Status = domain.TicketClosed
	return nil
}

func (s *stubTicketStore) ListOpen(_ context.Context, _ int) ([]domain.Ticket, error) {
	var out []domain.Ticket
	for _, t := range s.tickets {
		if t.Status == domain.TicketOpen {
			out = append(out, *t)
		}
	}
	return out, nil
}
