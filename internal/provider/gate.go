package provider

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"tradegate/internal/domain"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "https://api.gateio.ws/api/v4"
	requestTimeout = 10 * time.Second
)

// GateProvider talks to the Gate.io spot REST API. Calls are rate limited
// client-side so menu traffic cannot trip the exchange's request budget.
type GateProvider struct {
	client  *resty.Client
	limiter *rate.Limiter
	tracer  trace.Tracer
}

func NewGateProvider(baseURL string, tracer trace.Tracer) *GateProvider {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(requestTimeout).
		SetHeader("Accept", "application/json")

	return &GateProvider{
		client:  client,
		limiter: rate.NewLimiter(rate.Every(200*time.Millisecond), 2),
		tracer:  tracer,
	}
}

// FetchCandles returns up to limit OHLCV candles, chronological oldest-first.
// Symbol uses the "BASE/QUOTE" form shown to users.
func (p *GateProvider) FetchCandles(ctx context.Context, symbol, interval string, limit int) ([]domain.Candle, error) {
	ctx, span := p.tracer.Start(ctx, "gate-provider.fetch-candles")
	defer span.End()

	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var raw [][]string
	resp, err := p.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"currency_pair": pairParam(symbol),
			"interval":      interval,
			"limit":         strconv.Itoa(limit),
		}).
		SetResult(&raw).
		Get("/spot/candlesticks")
	if err != nil {
		return nil, fmt.Errorf("fetch candles %s %s: %w", symbol, interval, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fetch candles %s %s: exchange returned %s", symbol, interval, resp.Status())
	}

	candles := make([]domain.Candle, 0, len(raw))
	for _, row := range raw {
		c, err := parseCandleRow(row)
		if err != nil {
			return nil, fmt.Errorf("fetch candles %s %s: %w", symbol, interval, err)
		}
		candles = append(candles, c)
	}
	return candles, nil
}

type gateTicker struct {
	CurrencyPair     string `json:"currency_pair"`
	Last             string `json:"last"`
	ChangePercentage string `json:"change_percentage"`
}

// FetchTickers returns the exchange-wide snapshot keyed by "BASE/QUOTE".
func (p *GateProvider) FetchTickers(ctx context.Context) (map[string]domain.Ticker, error) {
	ctx, span := p.tracer.Start(ctx, "gate-provider.fetch-tickers")
	defer span.End()

	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var raw []gateTicker
	resp, err := p.client.R().
		SetContext(ctx).
		SetResult(&raw).
		Get("/spot/tickers")
	if err != nil {
		return nil, fmt.Errorf("fetch tickers: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fetch tickers: exchange returned %s", resp.Status())
	}

	snapshot := make(map[string]domain.Ticker, len(raw))
	for _, t := range raw {
		var ticker domain.Ticker
		if v, err := strconv.ParseFloat(t.ChangePercentage, 64); err == nil {
			pct := v
			ticker.Percentage = &pct
		}
		if v, err := strconv.ParseFloat(t.Last, 64); err == nil {
			last := v
			ticker.Last = &last
		}
		snapshot[strings.ReplaceAll(t.CurrencyPair, "_", "/")] = ticker
	}
	return snapshot, nil
}

func pairParam(symbol string) string {
	return strings.ReplaceAll(strings.TrimSpace(symbol), "/", "_")
}

// Gate candlestick rows are string tuples:
// [unix seconds, quote volume, close, high, low, open, base volume, ...].
func parseCandleRow(row []string) (domain.Candle, error) {
	if len(row) < 6 {
		return domain.Candle{}, fmt.Errorf("malformed candle row of %d fields", len(row))
	}

	ts, err := strconv.ParseInt(row[0], 10, 64)
	if err != nil {
		return domain.Candle{}, fmt.Errorf("candle timestamp %q: %w", row[0], err)
	}

	fields := make([]float64, 5)
	for i, idx := range []int{5, 3, 4, 2, 1} { // open, high, low, close, volume
		v, err := strconv.ParseFloat(row[idx], 64)
		if err != nil {
			return domain.Candle{}, fmt.Errorf("candle field %q: %w", row[idx], err)
		}
		fields[i] = v
	}

	c := domain.Candle{
		OpenTime: time.Unix(ts, 0).UTC(),
		Open:     fields[0],
		High:     fields[1],
		Low:      fields[2],
		Close:    fields[3],
		Volume:   fields[4],
	}
	if len(row) > 6 {
		if v, err := strconv.ParseFloat(row[6], 64); err == nil {
			c.Volume = v
		}
	}
	return c, nil
}
