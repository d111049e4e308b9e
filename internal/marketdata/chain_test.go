package marketdata

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/wonny/folio/internal/contracts"
	"github.com/wonny/folio/pkg/logger"
)

type stubProvider struct {
	series contracts.PriceSeries
	err    error
	calls  int
}

func (s *stubProvider) History(ctx context.Context, ticker string) (contracts.PriceSeries, error) {
	s.calls++
	if s.err != nil {
		return contracts.PriceSeries{}, s.err
	}
	return s.series, nil
}

func oneDaySeries(ticker string) contracts.PriceSeries {
	return contracts.PriceSeries{
		Ticker: ticker,
		Points: []contracts.PricePoint{
			{Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Close: 100},
		},
	}
}

func TestChain_FirstSuccessWins(t *testing.T) {
	first := &stubProvider{series: oneDaySeries("AAPL")}
	second := &stubProvider{series: oneDaySeries("AAPL")}

	chain := NewChain(logger.Nop(), first, second)

	series, err := chain.History(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if series.Ticker != "AAPL" {
		t.Errorf("ticker = %s, want AAPL", series.Ticker)
	}
	if second.calls != 0 {
		t.Error("second provider should not be consulted on first success")
	}
}

func TestChain_FallsThrough(t *testing.T) {
	first := &stubProvider{err: errors.New("provider down")}
	second := &stubProvider{series: oneDaySeries("MSFT")}

	chain := NewChain(logger.Nop(), first, second)

	series, err := chain.History(context.Background(), "MSFT")
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if series.Ticker != "MSFT" {
		t.Errorf("ticker = %s, want MSFT", series.Ticker)
	}
	if first.calls != 1 || second.calls != 1 {
		t.Errorf("expected both providers tried once, got %d and %d", first.calls, second.calls)
	}
}

func TestChain_ExhaustionIsUpstreamError(t *testing.T) {
	first := &stubProvider{err: errors.New("down")}
	second := &stubProvider{err: errors.New("also down")}

	chain := NewChain(logger.Nop(), first, second)

	_, err := chain.History(context.Background(), "AAPL")
	if !errors.Is(err, contracts.ErrUpstreamData) {
		t.Errorf("expected ErrUpstreamData, got %v", err)
	}
}

func TestChain_NoProviders(t *testing.T) {
	chain := NewChain(logger.Nop())

	_, err := chain.History(context.Background(), "AAPL")
	if !errors.Is(err, contracts.ErrUpstreamData) {
		t.Errorf("expected ErrUpstreamData, got %v", err)
	}
}

func TestChain_CancelledContext(t *testing.T) {
	provider := &stubProvider{series: oneDaySeries("AAPL")}
	chain := NewChain(logger.Nop(), provider)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := chain.History(ctx, "AAPL"); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
