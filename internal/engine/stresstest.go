package engine

import (
	"context"
	"fmt"

	"github.com/wonny/folio/internal/contracts"
	"github.com/wonny/folio/internal/engine/moments"
	"github.com/wonny/folio/internal/engine/scenario"
)

// Scenario applies sector-level return multipliers to the current
// allocation. Expected returns come from the annualized historical
// means of the held assets.
func (s *Service) Scenario(ctx context.Context, req ScenarioRequest) (*contracts.ScenarioResult, error) {
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

	expectedReturns := make(map[string]float64, len(m.Tickers))
	for i, ticker := range m.Tickers {
		expectedReturns[ticker] = m.Mean[i]
	}

	result, err := scenario.Apply(req.Allocation, expectedReturns, sectorIndex(req.Assets), req.Scenario)
	if err != nil {
		return nil, err
	}
	return &result, nil
}
