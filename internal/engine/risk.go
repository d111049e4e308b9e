package engine

import (
	"context"
	"fmt"

	"github.com/wonny/folio/internal/contracts"
	"github.com/wonny/folio/internal/engine/moments"
	"github.com/wonny/folio/internal/engine/returns"
	"github.com/wonny/folio/internal/engine/riskmetrics"
)

// Risk computes historical VaR/CVaR, the correlation matrix and the
// per-asset risk/return contributions for an existing allocation.
// Every ticker in the allocation must have usable history: dropping a
// held position would silently change the portfolio being measured.
func (s *Service) Risk(ctx context.Context, req RiskRequest) (*contracts.RiskResult, error) {
	if err := req.Allocation.Validate(); err != nil {
		return nil, fmt.Errorf("allocation: %w", err)
	}

	fetched, err := s.fetchHistories(ctx, req.Allocation.Tickers())
	if err != nil {
		return nil, err
	}
	if len(fetched.excluded) > 0 {
		return nil, fmt.Errorf("%w: held tickers without usable history: %v",
			contracts.ErrInsufficientHistory, fetched.excluded)
	}

	aligned, err := s.alignedReturns(fetched)
	if err != nil {
		return nil, err
	}
	m, err := moments.Estimate(aligned)
	if err != nil {
		return nil, err
	}

	// Weight vector in the aligned series order.
	weights := make([]float64, len(aligned))
	for i, series := range aligned {
		weights[i] = req.Allocation[series.Ticker]
	}

	value := req.PortfolioValue
	if value <= 0 {
		value = s.opts.Notional
	}
	currency := s.opts.BaseCurrency
	if req.Currency != "" && req.Currency != s.opts.BaseCurrency {
		fx, err := s.rates.FxRate(ctx, s.opts.BaseCurrency, req.Currency)
		if err != nil {
			return nil, fmt.Errorf("%w: fx rate %s/%s: %v",
				contracts.ErrUpstreamData, s.opts.BaseCurrency, req.Currency, err)
		}
		value *= fx
		currency = req.Currency
	}

	portfolioReturns := returns.Portfolio(aligned, weights)
	varResult, err := riskmetrics.HistoricalVaR(portfolioReturns, riskmetrics.DefaultConfidence, value)
	if err != nil {
		return nil, err
	}
	varResult.Currency = currency

	contributions, totalReturn, volatility := riskmetrics.Contributions(weights, m)

	return &contracts.RiskResult{
		VaR:           varResult,
		Correlation:   riskmetrics.Correlation(aligned),
		Contributions: contributions,
		TotalReturn:   totalReturn,
		Volatility:    volatility,
	}, nil
}
