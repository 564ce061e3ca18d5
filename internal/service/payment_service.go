package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"tradegate/internal/domain"
	"tradegate/internal/metrics"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

const starsCurrency = "XTR"

type PaymentStore interface {
	Create(ctx context.Context, userID int64, payload string, amount int) error
	GetByPayload(ctx context.Context, payload string) (*domain.Payment, error)
	MarkPaid(ctx context.Context, payload string) (bool, error)
}

type DisclaimerChecker interface {
	Get(ctx context.Context, userID int64) (*domain.User, error)
}

type AccessGranter interface {
	Grant(ctx context.Context, userID int64) (time.Time, error)
}

type OpsNotifier interface {
	NotifyOps(text string)
}

// PaymentService issues Telegram Stars invoices and confirms successful
// payments exactly once.
type PaymentService struct {
	tracer   trace.Tracer
	payments PaymentStore
	users    DisclaimerChecker
	access   AccessGranter
	ops      OpsNotifier
	metrics  *metrics.Metrics
	price    int
	now      func() time.Time
}

func NewPaymentService(
	tracer trace.Tracer,
	payments PaymentStore,
	users DisclaimerChecker,
	access AccessGranter,
	ops OpsNotifier,
	m *metrics.Metrics,
	price int,
) *PaymentService {
	return &PaymentService{
		tracer:   tracer,
		payments: payments,
		users:    users,
		access:   access,
		ops:      ops,
		metrics:  m,
		price:    price,
		now:      time.Now,
	}
}

func (s *PaymentService) Price() int { return s.price }

// BeginPurchase records a pending payment and returns the invoice payload.
// Users who never accepted the disclaimer cannot start a purchase.
func (s *PaymentService) BeginPurchase(ctx context.Context, userID int64) (string, error) {
	ctx, span := s.tracer.Start(ctx, "payment-service.begin-purchase")
	defer span.End()

	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("begin purchase for %d: %w", userID, err)
	}
	if user == nil || user.AcceptedDisclaimerAt == nil {
		return "", domain.ErrDisclaimerRequired
	}

	payload := fmt.Sprintf("access30d:%d:%d:%s",
		userID, s.now().Unix(), strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	if err := s.payments.Create(ctx, userID, payload, s.price); err != nil {
		return "", fmt.Errorf("begin purchase for %d: %w", userID, err)
	}
	return payload, nil
}

// Confirm processes a successful payment callback. The ledger row is flipped
// pending→paid with a conditional update, so a duplicate callback can never
// grant twice. Returns the new access expiry and whether access was granted
// by this call.
func (s *PaymentService) Confirm(ctx context.Context, userID int64, payload, currency string, amount int) (time.Time, bool, error) {
	ctx, span := s.tracer.Start(ctx, "payment-service.confirm")
	defer span.End()

	payment, err := s.payments.GetByPayload(ctx, payload)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("confirm payment: %w", err)
	}
	if payment == nil {
		s.ops.NotifyOps(fmt.Sprintf("⚠️ payment with unknown payload %q from user %d, ignored", payload, userID))
		return time.Time{}, false, nil
	}
	if payment.Status == domain.PaymentPaid {
		// Duplicate callback, access was already granted.
		return time.Time{}, false, nil
	}
	if currency != starsCurrency || amount != payment.Amount {
		s.ops.NotifyOps(fmt.Sprintf("⚠️ payment mismatch for user %d: got %d %s, expected %d %s",
			userID, amount, currency, payment.Amount, starsCurrency))
		s.metrics.PaymentMismatches.Inc()
		return time.Time{}, false, domain.ErrAmountMismatch
	}

	marked, err := s.payments.MarkPaid(ctx, payload)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("confirm payment: %w", err)
	}
	if !marked {
		// Lost the race with a concurrent confirmation.
		return time.Time{}, false, nil
	}

	until, err := s.access.Grant(ctx, payment.UserID)
	if err != nil {
		s.ops.NotifyOps(fmt.Sprintf("🚨 payment %s marked paid but grant failed for user %d: %v",
			payload, payment.UserID, err))
		return time.Time{}, false, fmt.Errorf("grant after payment: %w", err)
	}
	s.metrics.PaymentsConfirmed.Inc()
	return until, true, nil
}
