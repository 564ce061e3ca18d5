package domain

import (
	"errors"
	"time"
)

// Regime is the coarse market-state label derived from price vs. smoothed trend.
type Regime string

const (
	RegimeTrend    Regime = "TREND"
	RegimeRange    Regime = "RANGE"
	RegimeWeakness Regime = "WEAKNESS"
	RegimeUnknown  Regime = "UNKNOWN"
)

var (
	ErrInsufficientData   = errors.New("insufficient data")
	ErrDisclaimerRequired = errors.New("disclaimer not accepted")
	ErrAmountMismatch     = errors.New("payment amount mismatch")
	ErrNotFound           = errors.New("not found")
)

// SupportedIntervals are the chart timeframes offered in the timeframe picker.
var SupportedIntervals = []string{"1m", "5m", "15m", "30m"}

type Candle struct {
	OpenTime time.Time
	Open     float64
	High     float64
	Low      float64
	Close    float64
	Volume   float64
}

type User struct {
	ID                   int64
	Username             string
	CreatedAt            time.Time
	IsWhitelisted        bool
	AccessUntil          *time.Time
	ActiveSymbol         string
	AcceptedDisclaimerAt *time.Time
}

// AccessActive reports whether the user may use gated features at the given
// instant. Always recomputed from stored fields, never cached.
func (u *User) AccessActive(now time.Time) bool {
	if u == nil {
		return false
	}
	if u.IsWhitelisted {
		return true
	}
	return u.AccessUntil != nil && u.AccessUntil.After(now)
}

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
)

// Payment is one purchase attempt, correlated with its confirmation by Payload.
type Payment struct {
	ID        int64
	UserID    int64
	Payload   string
	Amount    int
	Status    PaymentStatus
	CreatedAt time.Time
	PaidAt    *time.Time
}

type TicketStatus string

const (
	TicketOpen   TicketStatus = "open"
	TicketClosed TicketStatus = "closed"
)

type Ticket struct {
	ID        int64
	UserID    int64
	Status    TicketStatus
	CreatedAt time.Time
	ClosedAt  *time.Time
}

type TicketSender string

const (
	SenderUser  TicketSender = "user"
	SenderAdmin TicketSender = "admin"
)

type TicketMessage struct {
	ID        int64
	TicketID  int64
	Sender    TicketSender
	Text      string
	CreatedAt time.Time
}

type JournalEntry struct {
	ID        int64
	UserID    int64
	Text      string
	CreatedAt time.Time
}

// Ticker is one symbol's entry in an exchange-wide snapshot. Fields are
// pointers because the upstream may omit any of them.
type Ticker struct {
	Percentage *float64
	Open       *float64
	Last       *float64
}

// Mover is one row of a top gainers/losers ranking.
type Mover struct {
	Symbol     string
	Percentage float64
}

type MoverDirection string

const (
	MoversGainers MoverDirection = "gainers"
	MoversLosers  MoverDirection = "losers"
)
