// Package riskmetrics computes historical-simulation VaR/CVaR,
// correlation matrices and risk/return contributions. Pure
// computation; data assembly happens in the engine facade.
package riskmetrics

import (
	"fmt"
	"math"
	"sort"

	"github.com/wonny/folio/internal/contracts"
	"github.com/wonny/folio/internal/engine/returns"
)

// DefaultConfidence is the standard VaR confidence level.
const DefaultConfidence = 0.95

// HistoricalVaR runs the historical-simulation method on a portfolio
// return series: VaR at confidence c is the (1-c) percentile loss,
// CVaR the mean loss at or beyond it. Both are reported in currency
// terms against portfolioValue, losses positive.
func HistoricalVaR(portfolioReturns []float64, confidence, portfolioValue float64) (contracts.VaRResult, error) {
	if len(portfolioReturns) < returns.MinObservations {
		return contracts.VaRResult{}, fmt.Errorf("%w: %d portfolio returns, need %d",
			contracts.ErrInsufficientHistory, len(portfolioReturns), returns.MinObservations)
	}

	sorted := make([]float64, len(portfolioReturns))
	copy(sorted, portfolioReturns)
	sort.Float64s(sorted)

	// Losses sit at the front of the ascending sort.
	idx := int(math.Floor((1.0 - confidence) * float64(len(sorted))))
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}

	varFraction := 0.0
	if sorted[idx] < 0 {
		varFraction = -sorted[idx]
	}

	var tailSum float64
	tailCount := 0
	for i := 0; i <= idx; i++ {
		tailSum += sorted[i]
		tailCount++
	}
	cvarFraction := 0.0
	if tailCount > 0 && tailSum < 0 {
		cvarFraction = -tailSum / float64(tailCount)
	}

	return contracts.VaRResult{
		Confidence:     confidence,
		PortfolioValue: portfolioValue,
		VaR:            varFraction * portfolioValue,
		CVaR:           cvarFraction * portfolioValue,
		Observations:   len(portfolioReturns),
	}, nil
}
