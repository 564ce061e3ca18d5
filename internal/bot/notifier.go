package bot

import (
	"log"

	tele "gopkg.in/telebot.v3"
)

type messageSender interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

// Notifier pushes out-of-band messages: direct notes to users and operational
// alerts to the support group. Ops delivery is best effort.
type Notifier struct {
	sender         messageSender
	supportGroupID int64
}

func NewNotifier(sender messageSender, supportGroupID int64) *Notifier {
	return &Notifier{sender: sender, supportGroupID: supportGroupID}
}

func (n *Notifier) NotifyUser(userID int64, text string) error {
	_, err := n.sender.Send(&tele.Chat{ID: userID}, text)
	return err
}

func (n *Notifier) NotifyOps(text string) {
	if n.supportGroupID == 0 {
		log.Printf("ops note (no support group configured): %s", text)
		return
	}
	if _, err := n.sender.Send(&tele.Chat{ID: n.supportGroupID}, text); err != nil {
		log.Printf("failed to deliver ops note: %v", err)
	}
}
