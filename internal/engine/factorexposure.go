package engine

import (
	"context"
	"fmt"

	"github.com/wonny/folio/internal/contracts"
	"github.com/wonny/folio/internal/engine/factors"
	"github.com/wonny/folio/internal/engine/returns"
)

// FactorExposures regresses the allocation's excess returns on the
// market, size and value factor series.
func (s *Service) FactorExposures(ctx context.Context, req FactorRequest) (*contracts.FactorExposures, error) {
	if s.factors == nil {
		return nil, fmt.Errorf("%w: no factor data source configured", contracts.ErrUpstreamData)
	}
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
	weights := make([]float64, len(aligned))
	for i, series := range aligned {
		weights[i] = req.Allocation[series.Ticker]
	}

	factorSeries, err := s.factors.Factors(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: factor series: %v", contracts.ErrUpstreamData, err)
	}

	exposures, err := factors.Regress(returns.Portfolio(aligned, weights), factorSeries, s.opts.MinObservations)
	if err != nil {
		return nil, err
	}
	return &exposures, nil
}
