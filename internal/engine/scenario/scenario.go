// Package scenario stress-tests an allocation with sector-level
// return multipliers.
package scenario

import (
	"fmt"

	"github.com/wonny/folio/internal/contracts"
)

// Definition names a stress scenario and its per-sector multipliers
// on expected return. A multiplier of 0.5 halves a sector's expected
// return contribution, 1.2 lifts it by 20%. Sectors absent from the
// map keep multiplier 1.0.
type Definition struct {
	Name    string             `json:"name"`
	Impacts map[string]float64 `json:"impacts"`
}

// Apply reprices the allocation's expected return under the scenario.
// expectedReturns holds each asset's annualized expected return and
// sectors maps ticker to sector. The multipliers act on expected
// return contributions, not on prices.
func Apply(alloc contracts.Allocation, expectedReturns map[string]float64, sectors map[string]string, def Definition) (contracts.ScenarioResult, error) {
	if err := alloc.Validate(); err != nil {
		return contracts.ScenarioResult{}, fmt.Errorf("allocation: %w", err)
	}

	var original, adjusted float64
	for _, ticker := range alloc.Tickers() {
		contribution := alloc[ticker] * expectedReturns[ticker]
		original += contribution

		multiplier := 1.0
		if m, ok := def.Impacts[sectors[ticker]]; ok {
			multiplier = m
		}
		adjusted += contribution * multiplier
	}

	return contracts.ScenarioResult{
		Scenario:         def.Name,
		OriginalReturn:   original,
		ScenarioReturn:   adjusted,
		ImpactPercentage: adjusted - original,
	}, nil
}
