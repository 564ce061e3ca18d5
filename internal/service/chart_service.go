package service

import (
	"context"
	"fmt"
	"time"

	"tradegate/internal/chart"
	"tradegate/internal/domain"
	"tradegate/internal/metrics"
	"tradegate/internal/trend"

	"go.opentelemetry.io/otel/trace"
)

type CandleProvider interface {
	FetchCandles(ctx context.Context, symbol, interval string, limit int) ([]domain.Candle, error)
}

// RegimeChart is the result of the full analysis pipeline for one symbol
// and timeframe.
type RegimeChart struct {
	Symbol   string
	Interval string
	Regime   domain.Regime
	PNG      []byte
}

// ChartService runs fetch → smoothing → classification → render as one
// operation, so handlers only deal with a finished picture.
type ChartService struct {
	tracer   trace.Tracer
	provider CandleProvider
	renderer *chart.Renderer
	metrics  *metrics.Metrics
	limit    int
}

func NewChartService(tracer trace.Tracer, provider CandleProvider, renderer *chart.Renderer, m *metrics.Metrics, candleLimit int) *ChartService {
	if candleLimit <= 0 {
		candleLimit = 220
	}
	return &ChartService{
		tracer:   tracer,
		provider: provider,
		renderer: renderer,
		metrics:  m,
		limit:    candleLimit,
	}
}

func (s *ChartService) Build(ctx context.Context, symbol, interval string) (*RegimeChart, error) {
	ctx, span := s.tracer.Start(ctx, "chart-service.build")
	defer span.End()

	started := time.Now()
	result, err := s.build(ctx, symbol, interval)
	if err != nil {
		s.metrics.ChartErrors.Inc()
		return nil, err
	}
	s.metrics.ChartsRendered.Inc()
	s.metrics.ChartRenderSeconds.Observe(time.Since(started).Seconds())
	return result, nil
}

func (s *ChartService) build(ctx context.Context, symbol, interval string) (*RegimeChart, error) {
	if !supportedInterval(interval) {
		return nil, fmt.Errorf("unsupported interval %q", interval)
	}

	candles, err := s.provider.FetchCandles(ctx, symbol, interval, s.limit)
	if err != nil {
		return nil, fmt.Errorf("chart %s %s: %w", symbol, interval, err)
	}
	if len(candles) == 0 {
		return nil, fmt.Errorf("chart %s %s: %w", symbol, interval, domain.ErrInsufficientData)
	}

	ma, err := trend.SMA(candles, trend.Window)
	if err != nil {
		return nil, fmt.Errorf("chart %s %s: %w", symbol, interval, err)
	}
	regime := trend.Classify(ma, candles[len(candles)-1].Close)

	title := fmt.Sprintf("%s · %s · %s", symbol, interval, regime)
	png, err := s.renderer.RenderRegimeChart(candles, ma, title)
	if err != nil {
		return nil, fmt.Errorf("chart %s %s: %w", symbol, interval, err)
	}

	return &RegimeChart{Symbol: symbol, Interval: interval, Regime: regime, PNG: png}, nil
}

func supportedInterval(interval string) bool {
	for _, v := range domain.SupportedIntervals {
		if v == interval {
			return true
		}
	}
	return false
}
