// Package backtest replays historical prices for a fixed allocation
// against a benchmark.
package backtest

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/wonny/folio/internal/contracts"
	"github.com/wonny/folio/internal/engine/moments"
)

// DefaultNotional is the starting portfolio value.
const DefaultNotional = 10_000.0

// Config holds one backtest run's parameters.
type Config struct {
	Timeframe contracts.Timeframe
	Notional  float64
	Benchmark string
}

// Run replays the allocation over the trailing window.
//
// Holdings are bought once at the first close of the window and held:
// there is NO rebalancing during the backtest. The resulting paths
// therefore drift away from the initial weight split and differ
// materially from a periodically-rebalanced strategy.
func Run(alloc contracts.Allocation, prices map[string]contracts.PriceSeries, benchmark contracts.PriceSeries, cfg Config) (*contracts.BacktestResult, error) {
	if err := alloc.Validate(); err != nil {
		return nil, fmt.Errorf("allocation: %w", err)
	}
	if !cfg.Timeframe.Valid() {
		return nil, fmt.Errorf("unsupported timeframe %d years", cfg.Timeframe)
	}
	notional := cfg.Notional
	if notional <= 0 {
		notional = DefaultNotional
	}

	window := int(cfg.Timeframe) * int(moments.TradingDays)

	// Every constituent and the benchmark must cover the window.
	tickers := alloc.Tickers()
	windows := make(map[string][]contracts.PricePoint, len(tickers))
	for _, ticker := range tickers {
		series, ok := prices[ticker]
		if !ok || series.Len() < window {
			return nil, fmt.Errorf("%w: %s has %d observations, window needs %d",
				contracts.ErrInsufficientHistory, ticker, series.Len(), window)
		}
		windows[ticker] = series.Points[series.Len()-window:]
	}
	if benchmark.Len() < window {
		return nil, fmt.Errorf("%w: benchmark %s has %d observations, window needs %d",
			contracts.ErrInsufficientHistory, benchmark.Ticker, benchmark.Len(), window)
	}
	benchWindow := benchmark.Points[benchmark.Len()-window:]

	// Initial buy: shares per asset at the first close of the window.
	shares := make(map[string]float64, len(tickers))
	for _, ticker := range tickers {
		shares[ticker] = alloc[ticker] * notional / windows[ticker][0].Close
	}

	portfolioPath := make([]contracts.ValuePoint, window)
	for t := 0; t < window; t++ {
		var value float64
		var date time.Time
		for _, ticker := range tickers {
			p := windows[ticker][t]
			value += shares[ticker] * p.Close
			date = p.Date
		}
		portfolioPath[t] = contracts.ValuePoint{Date: date, Value: value}
	}

	benchShares := notional / benchWindow[0].Close
	benchmarkPath := make([]contracts.ValuePoint, window)
	for t, p := range benchWindow {
		benchmarkPath[t] = contracts.ValuePoint{Date: p.Date, Value: benchShares * p.Close}
	}

	final := portfolioPath[window-1].Value
	return &contracts.BacktestResult{
		RunID:           uuid.New().String(),
		Timeframe:       cfg.Timeframe,
		InitialValue:    notional,
		FinalValue:      final,
		TotalReturn:     final/notional - 1,
		BenchmarkTicker: benchmark.Ticker,
		BenchmarkReturn: benchmarkPath[window-1].Value/notional - 1,
		MaxDrawdown:     maxDrawdown(portfolioPath),
		PortfolioPath:   portfolioPath,
		BenchmarkPath:   benchmarkPath,
	}, nil
}

// maxDrawdown is the largest peak-to-trough decline of the value
// path: 0 when the path never declines, bounded below by -1 for an
// unleveraged hold.
func maxDrawdown(path []contracts.ValuePoint) float64 {
	if len(path) == 0 {
		return 0
	}

	peak := path[0].Value
	worst := 0.0
	for _, p := range path {
		if p.Value > peak {
			peak = p.Value
		}
		if peak > 0 {
			dd := p.Value/peak - 1
			if dd < worst {
				worst = dd
			}
		}
	}
	return worst
}
