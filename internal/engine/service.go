// Package engine assembles data from the external collaborators and
// dispatches to the analytic components. The components themselves
// are pure; all fetching, degraded-data policy and logging live here.
package engine

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/wonny/folio/internal/contracts"
	"github.com/wonny/folio/internal/engine/factors"
	"github.com/wonny/folio/internal/engine/returns"
	"github.com/wonny/folio/pkg/logger"
)

// PriceSource supplies historical price series per ticker. The engine
// assumes ascending dates and positive closes, nothing more; calendar
// gaps for weekends and holidays are expected.
type PriceSource interface {
	History(ctx context.Context, ticker string) (contracts.PriceSeries, error)
}

// RatesSource supplies the current annualized risk-free rate and FX
// rates for reporting in a settlement currency. The risk-free bool
// reports that a fallback constant was substituted for a live rate.
type RatesSource interface {
	RiskFreeRate(ctx context.Context) (float64, bool, error)
	FxRate(ctx context.Context, from, to string) (float64, error)
}

// FactorSource supplies aligned daily factor return series.
type FactorSource interface {
	Factors(ctx context.Context) (factors.Series, error)
}

// Options tunes the engine's defaults.
type Options struct {
	// MinObservations is the history floor for annualized statistics.
	MinObservations int
	// Notional is the assumed portfolio value for VaR and backtests.
	Notional float64
	// BaseCurrency is the currency price data is denominated in.
	BaseCurrency string
}

// DefaultOptions returns the engine's standard settings.
func DefaultOptions() Options {
	return Options{
		MinObservations: returns.MinObservations,
		Notional:        10_000,
		BaseCurrency:    "USD",
	}
}

// Service is the engine facade. It holds no cross-request state:
// every analysis fetches fresh inputs and produces an immutable
// result record.
type Service struct {
	prices  PriceSource
	rates   RatesSource
	factors FactorSource
	opts    Options
	log     *logger.Logger
}

// New creates the engine service. The factor source may be nil when
// factor analysis is not served.
func New(prices PriceSource, rates RatesSource, factorSource FactorSource, opts Options, log *logger.Logger) *Service {
	if opts.MinObservations <= 0 {
		opts.MinObservations = returns.MinObservations
	}
	if opts.Notional <= 0 {
		opts.Notional = 10_000
	}
	if opts.BaseCurrency == "" {
		opts.BaseCurrency = "USD"
	}
	return &Service{prices: prices, rates: rates, factors: factorSource, opts: opts, log: log}
}

// fetchResult is one ticker's fetch outcome.
type fetchResult struct {
	series   []contracts.PriceSeries
	excluded []contracts.ExcludedTicker
}

// fetchHistories fans out one fetch per ticker and fans in before any
// computation, bounding latency to the slowest single fetch. A failed
// or short history excludes the ticker with a recorded reason instead
// of aborting; callers decide whether the survivors are enough.
func (s *Service) fetchHistories(ctx context.Context, tickers []string) (*fetchResult, error) {
	type outcome struct {
		series contracts.PriceSeries
		err    error
	}

	outcomes := make([]outcome, len(tickers))
	g, gctx := errgroup.WithContext(ctx)
	var mu sync.Mutex

	for i, ticker := range tickers {
		i, ticker := i, ticker
		g.Go(func() error {
			series, err := s.prices.History(gctx, ticker)
			mu.Lock()
			outcomes[i] = outcome{series: series, err: err}
			mu.Unlock()
			return nil // per-ticker failures are policy, not abort
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &fetchResult{}
	for i, ticker := range tickers {
		o := outcomes[i]
		switch {
		case o.err != nil:
			s.log.WithError(o.err).WithField("ticker", ticker).Warn("Price history fetch failed")
			res.excluded = append(res.excluded, contracts.ExcludedTicker{
				Ticker: ticker,
				Reason: fmt.Sprintf("data unavailable: %v", o.err),
			})
		case o.series.Len() < s.opts.MinObservations:
			res.excluded = append(res.excluded, contracts.ExcludedTicker{
				Ticker: ticker,
				Reason: fmt.Sprintf("insufficient history: %d observations, need %d", o.series.Len(), s.opts.MinObservations),
			})
		default:
			res.series = append(res.series, o.series)
		}
	}

	if len(res.series) == 0 {
		return nil, fmt.Errorf("%w: no usable price history for tickers %v",
			contracts.ErrUpstreamData, tickers)
	}
	return res, nil
}

// alignedReturns builds aligned log-return series for the surviving
// tickers of a fetch.
func (s *Service) alignedReturns(res *fetchResult) ([]returns.Series, error) {
	return returns.Build(res.series, s.opts.MinObservations)
}

// sortedTickers extracts a deterministic ticker order from assets.
func sortedTickers(assets []contracts.Asset) []string {
	tickers := make([]string, len(assets))
	for i, a := range assets {
		tickers[i] = a.Ticker
	}
	sort.Strings(tickers)
	return tickers
}

// sectorIndex maps ticker to sector from the asset list.
func sectorIndex(assets []contracts.Asset) map[string]string {
	sectors := make(map[string]string, len(assets))
	for _, a := range assets {
		if a.Sector != "" {
			sectors[a.Ticker] = a.Sector
		}
	}
	return sectors
}
