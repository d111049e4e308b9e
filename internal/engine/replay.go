package engine

import (
	"context"
	"fmt"

	"github.com/wonny/folio/internal/contracts"
	"github.com/wonny/folio/internal/engine/backtest"
)

// Backtest replays the allocation buy-and-hold over the requested
// window against a benchmark. Every constituent must cover the full
// window; a reduced asset set would no longer be the portfolio the
// caller asked about.
func (s *Service) Backtest(ctx context.Context, req BacktestRequest) (*contracts.BacktestResult, error) {
	if err := req.Allocation.Validate(); err != nil {
		return nil, fmt.Errorf("allocation: %w", err)
	}
	if req.Benchmark == "" {
		return nil, fmt.Errorf("benchmark ticker is required")
	}

	tickers := req.Allocation.Tickers()
	if _, held := req.Allocation[req.Benchmark]; !held {
		tickers = append(tickers, req.Benchmark)
	}
	fetched, err := s.fetchHistories(ctx, tickers)
	if err != nil {
		return nil, err
	}
	if len(fetched.excluded) > 0 {
		return nil, fmt.Errorf("%w: tickers without usable history: %v",
			contracts.ErrInsufficientHistory, fetched.excluded)
	}

	prices := make(map[string]contracts.PriceSeries, len(fetched.series))
	var benchmark contracts.PriceSeries
	for _, series := range fetched.series {
		if series.Ticker == req.Benchmark {
			benchmark = series
		}
		if _, held := req.Allocation[series.Ticker]; held {
			prices[series.Ticker] = series
		}
	}
	if benchmark.Ticker == "" {
		return nil, fmt.Errorf("%w: benchmark %s", contracts.ErrUpstreamData, req.Benchmark)
	}

	result, err := backtest.Run(req.Allocation, prices, benchmark, backtest.Config{
		Timeframe: req.Timeframe,
		Notional:  s.opts.Notional,
		Benchmark: req.Benchmark,
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(map[string]interface{}{
		"run_id":       result.RunID,
		"timeframe":    result.Timeframe,
		"total_return": result.TotalReturn,
		"max_drawdown": result.MaxDrawdown,
	}).Info("Backtest completed")

	return result, nil
}
