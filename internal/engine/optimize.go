package engine

import (
	"context"
	"fmt"

	"github.com/wonny/folio/internal/contracts"
	"github.com/wonny/folio/internal/engine/blacklitterman"
	"github.com/wonny/folio/internal/engine/moments"
	"github.com/wonny/folio/internal/engine/optimizer"
)

// Optimize runs the Monte Carlo mean-variance search for the request's
// asset set. Tickers with failed fetches or short histories are
// dropped and reported; fewer than two survivors is fatal. When views
// are supplied the historical mean vector is replaced by the
// Black-Litterman posterior before sampling. The risk-free rate used
// for the Sharpe ranking is echoed in the result along with whether
// it came from a fallback constant.
func (s *Service) Optimize(ctx context.Context, req OptimizeRequest) (*contracts.OptimizationResult, error) {
	if len(req.Assets) < 2 {
		return nil, fmt.Errorf("%w: %d assets requested", contracts.ErrInsufficientAssets, len(req.Assets))
	}
	if err := req.Constraints.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", contracts.ErrInfeasibleConstraints, err)
	}

	fetched, err := s.fetchHistories(ctx, sortedTickers(req.Assets))
	if err != nil {
		return nil, err
	}
	if len(fetched.series) < 2 {
		return nil, fmt.Errorf("%w: %d assets survive data filtering (excluded: %v)",
			contracts.ErrInsufficientAssets, len(fetched.series), fetched.excluded)
	}

	aligned, err := s.alignedReturns(fetched)
	if err != nil {
		return nil, err
	}
	m, err := moments.Estimate(aligned)
	if err != nil {
		return nil, err
	}

	if len(req.Views) > 0 {
		// Market-cap weights are not part of the request contract, so
		// the historical mean serves as the prior proxy.
		posterior, err := blacklitterman.Posterior(m.Mean, m.Cov, m.Tickers, req.Views, blacklitterman.DefaultConfig())
		if err != nil {
			return nil, err
		}
		m.Mean = posterior
	}

	riskFree, riskFreeFallback, err := s.rates.RiskFreeRate(ctx)
	if err != nil {
		return nil, err
	}
	if riskFreeFallback {
		s.log.WithField("rate", riskFree).Warn("Risk-free source degraded, Sharpe uses fallback rate")
	}

	iterations := optimizer.IterationsQuick
	if req.Comprehensive {
		iterations = optimizer.IterationsComprehensive
	}

	result, err := optimizer.Optimize(ctx, m, sectorIndex(req.Assets), optimizer.Config{
		Iterations:   iterations,
		Constraints:  req.Constraints,
		RiskFreeRate: riskFree,
		Seed:         req.Seed,
	})
	if err != nil {
		return nil, err
	}

	result.Excluded = fetched.excluded
	result.RiskFreeRate = riskFree
	result.RiskFreeFallback = riskFreeFallback
	s.log.WithFields(map[string]interface{}{
		"run_id":   result.RunID,
		"assets":   len(fetched.series),
		"excluded": len(fetched.excluded),
		"accepted": result.Accepted,
		"sharpe":   result.Best.Sharpe,
	}).Info("Optimization completed")

	return result, nil
}
