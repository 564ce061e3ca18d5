package bot

import (
	"context"
	"fmt"
	"log"
	"time"

	"tradegate/internal/domain"
	"tradegate/internal/metrics"

	tele "gopkg.in/telebot.v3"
)

type userLister interface {
	ListAll(ctx context.Context) ([]domain.User, error)
}

// Broadcaster delivers an admin announcement to every user whose access is
// currently active. A failed delivery (blocked bot, deleted account) is
// counted, logged and skipped.
type Broadcaster struct {
	sender  messageSender
	users   userLister
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewBroadcaster(sender messageSender, users userLister, m *metrics.Metrics) *Broadcaster {
	return &Broadcaster{sender: sender, users: users, metrics: m, now: time.Now}
}

// SendToActive returns how many subscribers received the message and how
// many deliveries failed.
func (b *Broadcaster) SendToActive(ctx context.Context, text string) (sent, failed int, err error) {
	users, err := b.users.ListAll(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("broadcast: %w", err)
	}

	now := b.now().UTC()
	for i := range users {
		u := &users[i]
		if !u.AccessActive(now) {
			continue
		}
		if _, err := b.sender.Send(&tele.Chat{ID: u.ID}, text); err != nil {
			failed++
			log.Printf("broadcast to %d failed: %v", u.ID, err)
			continue
		}
		sent++
		b.metrics.BroadcastsSent.Inc()
	}
	return sent, failed, nil
}
