package service

import (
	"context"
	"errors"
	"testing"

	"tradegate/internal/domain"
)

func pct(v float64) *float64 { return &v }

func TestTopGainersRanked(t *testing.T) {
	provider := &stubTickerProvider{snapshot: map[string]domain.Ticker{
		"BTC/USDT": {Percentage: pct(2.0)},
		"ETH/USDT": {Percentage: pct(5.0)},
		"SOL/USDT": {Percentage: pct(-3.0)},
		"XYZ/BTC":  {Percentage: pct(50.0)},
	}}
	svc := NewMoverService(testTracer(), provider, 2)

	top, err := svc.Top(context.Background(), domain.MoversGainers)
	if err != nil {
		t.Fatalf("Top: %v", err)
	}
	if len(top) != 2 {
		t.Fatalf("expected 2 movers, got %d", len(top))
	}
	if top[0].Symbol != "ETH/USDT" || top[1].Symbol != "BTC/USDT" {
		t.Fatalf("unexpected ranking %+v", top)
	}
}

func TestTopSurfacesProviderError(t *testing.T) {
	svc := NewMoverService(testTracer(), &stubTickerProvider{err: errors.New("down")}, 10)

	if _, err := svc.Top(context.Background(), domain.MoversLosers); err == nil {
		t.Fatal("expected error")
	}
}
