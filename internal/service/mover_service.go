package service

import (
	"context"
	"fmt"

	"tradegate/internal/domain"
	"tradegate/internal/movers"

	"go.opentelemetry.io/otel/trace"
)

type TickerProvider interface {
	FetchTickers(ctx context.Context) (map[string]domain.Ticker, error)
}

// MoverService ranks the USDT spot market by 24h change.
type MoverService struct {
	tracer   trace.Tracer
	provider TickerProvider
	limit    int
}

func NewMoverService(tracer trace.Tracer, provider TickerProvider, limit int) *MoverService {
	if limit <= 0 {
		limit = 10
	}
	return &MoverService{tracer: tracer, provider: provider, limit: limit}
}

func (s *MoverService) Top(ctx context.Context, direction domain.MoverDirection) ([]domain.Mover, error) {
	ctx, span := s.tracer.Start(ctx, "mover-service.top")
	defer span.End()

	snapshot, err := s.provider.FetchTickers(ctx)
	if err != nil {
		return nil, fmt.Errorf("top %s: %w", direction, err)
	}
	return movers.Rank(snapshot, s.limit, direction), nil
}
