package service

import (
	"context"
	"fmt"
	"time"

	"tradegate/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

const accessGrantDuration = 30 * 24 * time.Hour

type UserStore interface {
	Upsert(ctx context.Context, userID int64, username string) error
	Get(ctx context.Context, userID int64) (*domain.User, error)
	SetDisclaimerAccepted(ctx context.Context, userID int64) error
	SetActiveSymbol(ctx context.Context, userID int64, symbol string) error
	SetWhitelist(ctx context.Context, userID int64, whitelisted bool) error
	GrantAccessUntil(ctx context.Context, userID int64, until time.Time) error
}

// AccessService owns the subscription state machine: disclaimer acceptance,
// timed grants and the whitelist override.
type AccessService struct {
	tracer trace.Tracer
	users  UserStore
	now    func() time.Time
}

func NewAccessService(tracer trace.Tracer, users UserStore) *AccessService {
	return &AccessService{tracer: tracer, users: users, now: time.Now}
}

// EnsureUser registers the user on first contact and refreshes the username
// on later ones.
func (s *AccessService) EnsureUser(ctx context.Context, userID int64, username string) error {
	ctx, span := s.tracer.Start(ctx, "access-service.ensure-user")
	defer span.End()

	if err := s.users.Upsert(ctx, userID, username); err != nil {
		return fmt.Errorf("ensure user %d: %w", userID, err)
	}
	return nil
}

func (s *AccessService) AcceptDisclaimer(ctx context.Context, userID int64) error {
	ctx, span := s.tracer.Start(ctx, "access-service.accept-disclaimer")
	defer span.End()

	if err := s.users.SetDisclaimerAccepted(ctx, userID); err != nil {
		return fmt.Errorf("accept disclaimer for %d: %w", userID, err)
	}
	return nil
}

func (s *AccessService) SetActiveSymbol(ctx context.Context, userID int64, symbol string) error {
	ctx, span := s.tracer.Start(ctx, "access-service.set-active-symbol")
	defer span.End()

	if err := s.users.SetActiveSymbol(ctx, userID, symbol); err != nil {
		return fmt.Errorf("set active symbol for %d: %w", userID, err)
	}
	return nil
}

func (s *AccessService) SetWhitelist(ctx context.Context, userID int64, whitelisted bool) error {
	ctx, span := s.tracer.Start(ctx, "access-service.set-whitelist")
	defer span.End()

	if err := s.users.SetWhitelist(ctx, userID, whitelisted); err != nil {
		return fmt.Errorf("set whitelist for %d: %w", userID, err)
	}
	return nil
}

// Grant extends paid access by the standard 30 days. An active window is
// extended from its current end, an expired or absent one from now, so no
// paid time is ever lost.
func (s *AccessService) Grant(ctx context.Context, userID int64) (time.Time, error) {
	ctx, span := s.tracer.Start(ctx, "access-service.grant")
	defer span.End()

	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return time.Time{}, fmt.Errorf("grant access to %d: %w", userID, err)
	}

	now := s.now().UTC()
	base := now
	if user != nil && user.AccessUntil != nil && user.AccessUntil.After(now) {
		base = user.AccessUntil.UTC()
	}
	until := base.Add(accessGrantDuration)

	if err := s.users.GrantAccessUntil(ctx, userID, until); err != nil {
		return time.Time{}, fmt.Errorf("grant access to %d: %w", userID, err)
	}
	return until, nil
}

// Status returns the stored user record, nil when the user was never seen.
func (s *AccessService) Status(ctx context.Context, userID int64) (*domain.User, error) {
	ctx, span := s.tracer.Start(ctx, "access-service.status")
	defer span.End()

	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("access status for %d: %w", userID, err)
	}
	return user, nil
}

// IsActive is the gate every paid feature checks. It is recomputed on each
// call so an expired window closes without any background job.
func (s *AccessService) IsActive(ctx context.Context, userID int64) (bool, error) {
	ctx, span := s.tracer.Start(ctx, "access-service.is-active")
	defer span.End()

	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("access check for %d: %w", userID, err)
	}
	return user.AccessActive(s.now().UTC()), nil
}
