package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.opentelemetry.io/otel/trace"
)

func testTracer() trace.Tracer {
	return trace.NewNoopTracerProvider().Tracer("test")
}

func TestFetchCandlesParsesRows(t *testing.T) {
	var gotPair, gotInterval, gotLimit string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/spot/candlesticks" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotPair = r.URL.Query().Get("currency_pair")
		gotInterval = r.URL.Query().Get("interval")
		gotLimit = r.URL.Query().Get("limit")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			["1700000000","1000.5","100.0","101.0","99.0","99.5","10.5"],
			["1700000060","1200.0","101.0","102.0","100.0","100.0","11.9"]
		]`))
	}))
	defer srv.Close()

	p := NewGateProvider(srv.URL, testTracer())
	candles, err := p.FetchCandles(context.Background(), "BTC/USDT", "1m", 220)
	if err != nil {
		t.Fatalf("FetchCandles: %v", err)
	}
	if gotPair != "BTC_USDT" || gotInterval != "1m" || gotLimit != "220" {
		t.Fatalf("unexpected query pair=%s interval=%s limit=%s", gotPair, gotInterval, gotLimit)
	}
	if len(candles) != 2 {
		t.Fatalf("expected 2 candles, got %d", len(candles))
	}
	first := candles[0]
	if first.Open != 99.5 || first.High != 101.0 || first.Low != 99.0 || first.Close != 100.0 {
		t.Fatalf("unexpected OHLC: %+v", first)
	}
	if first.Volume != 10.5 {
		t.Fatalf("expected base volume 10.5, got %v", first.Volume)
	}
	if first.OpenTime.Unix() != 1700000000 {
		t.Fatalf("unexpected open time %v", first.OpenTime)
	}
	if !candles[1].OpenTime.After(first.OpenTime) {
		t.Fatal("candles should be chronological")
	}
}

func TestFetchCandlesRejectsMalformedRow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[["1700000000","1000.5","100.0"]]`))
	}))
	defer srv.Close()

	p := NewGateProvider(srv.URL, testTracer())
	if _, err := p.FetchCandles(context.Background(), "BTC/USDT", "1m", 10); err == nil {
		t.Fatal("expected error for short row")
	}
}

func TestFetchCandlesSurfacesHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"label":"INVALID_CURRENCY_PAIR"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	p := NewGateProvider(srv.URL, testTracer())
	if _, err := p.FetchCandles(context.Background(), "NOPE/USDT", "1m", 10); err == nil {
		t.Fatal("expected error for 400 response")
	}
}

func TestFetchTickersKeysBySlashPair(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/spot/tickers" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"currency_pair":"BTC_USDT","last":"65000.1","change_percentage":"3.25"},
			{"currency_pair":"ETH_USDT","last":"not-a-number","change_percentage":"-1.5"},
			{"currency_pair":"XYZ_BTC","last":"0.001","change_percentage":""}
		]`))
	}))
	defer srv.Close()

	p := NewGateProvider(srv.URL, testTracer())
	snapshot, err := p.FetchTickers(context.Background())
	if err != nil {
		t.Fatalf("FetchTickers: %v", err)
	}
	if len(snapshot) != 3 {
		t.Fatalf("expected 3 tickers, got %d", len(snapshot))
	}

	btc, ok := snapshot["BTC/USDT"]
	if !ok {
		t.Fatal("expected BTC/USDT key")
	}
	if btc.Percentage == nil || *btc.Percentage != 3.25 {
		t.Fatalf("unexpected percentage %v", btc.Percentage)
	}
	if btc.Last == nil || *btc.Last != 65000.1 {
		t.Fatalf("unexpected last %v", btc.Last)
	}

	eth := snapshot["ETH/USDT"]
	if eth.Last != nil {
		t.Fatal("unparseable last should stay nil")
	}
	if eth.Percentage == nil || *eth.Percentage != -1.5 {
		t.Fatalf("unexpected ETH percentage %v", eth.Percentage)
	}

	xyz := snapshot["XYZ/BTC"]
	if xyz.Percentage != nil {
		t.Fatal("empty change_percentage should stay nil")
	}
}
