package job

import (
	"context"
	"fmt"
	"log"
	"time"

	"tradegate/internal/domain"

	"github.com/robfig/cron/v3"
	"go.opentelemetry.io/otel/trace"
)

type expiringLister interface {
	ListExpiringBetween(ctx context.Context, from, to time.Time) ([]domain.User, error)
}

type userNotifier interface {
	NotifyUser(userID int64, text string) error
}

// ExpiryReminder nudges subscribers whose paid window is about to run out.
// It runs once a day and looks at a single 24h slice of upcoming expiries,
// so each user is reminded exactly once, two days before the end.
type ExpiryReminder struct {
	cron   *cron.Cron
	tracer trace.Tracer
	users  expiringLister
	notify userNotifier
	now    func() time.Time
}

func NewExpiryReminder(tracer trace.Tracer, users expiringLister, notify userNotifier) *ExpiryReminder {
	return &ExpiryReminder{
		cron:   cron.New(cron.WithLocation(time.UTC)),
		tracer: tracer,
		users:  users,
		notify: notify,
		now:    time.Now,
	}
}

func (r *ExpiryReminder) Start() error {
	if _, err := r.cron.AddFunc("0 9 * * *", func() {
		if err := r.Run(context.Background()); err != nil {
			log.Printf("expiry reminder: %v", err)
		}
	}); err != nil {
		return fmt.Errorf("schedule expiry reminder: %w", err)
	}
	r.cron.Start()
	return nil
}

func (r *ExpiryReminder) Stop() {
	<-r.cron.Stop().Done()
}

func (r *ExpiryReminder) Run(ctx context.Context) error {
	ctx, span := r.tracer.Start(ctx, "expiry-reminder.run")
	defer span.End()

	now := r.now().UTC()
	users, err := r.users.ListExpiringBetween(ctx, now.Add(48*time.Hour), now.Add(72*time.Hour))
	if err != nil {
		return fmt.Errorf("list expiring users: %w", err)
	}

	for _, u := range users {
		if u.IsWhitelisted || u.AccessUntil == nil {
			continue
		}
		msg := fmt.Sprintf("⏳ Your access expires %s. Renew in the menu to keep the tools.",
			u.AccessUntil.UTC().Format("2 Jan 2006 15:04 MST"))
		if err := r.notify.NotifyUser(u.ID, msg); err != nil {
			log.Printf("expiry reminder to %d: %v", u.ID, err)
		}
	}
	return nil
}
