package engine

import (
	"context"
	"fmt"

	"github.com/wonny/folio/internal/contracts"
	"github.com/wonny/folio/internal/engine/scenario"
)

// Request is the closed set of analysis request kinds. The unexported
// method seals the interface so the dispatch switch is exhaustive by
// construction: a new kind cannot exist without a variant here.
type Request interface {
	kind() string
}

// OptimizeRequest asks for the best-Sharpe allocation over a
// candidate asset set, optionally constrained and view-blended.
type OptimizeRequest struct {
	Assets      []contracts.Asset       `json:"assets"`
	Constraints contracts.ConstraintSet `json:"constraints"`
	Views       []contracts.View        `json:"views,omitempty"`
	// Comprehensive doubles the iteration budget.
	Comprehensive bool `json:"comprehensive,omitempty"`
	// Seed fixes the random source; 0 means a fresh seed.
	Seed int64 `json:"seed,omitempty"`
}

// RiskRequest asks for VaR/CVaR, correlation and contributions on an
// existing allocation, reported in the given settlement currency.
type RiskRequest struct {
	Assets         []contracts.Asset    `json:"assets"`
	Allocation     contracts.Allocation `json:"allocation"`
	PortfolioValue float64              `json:"portfolio_value,omitempty"`
	Currency       string               `json:"currency,omitempty"`
}

// FactorRequest asks for market/size/value loadings of an allocation.
type FactorRequest struct {
	Assets     []contracts.Asset    `json:"assets"`
	Allocation contracts.Allocation `json:"allocation"`
}

// ScenarioRequest asks for a sector stress test of an allocation.
type ScenarioRequest struct {
	Assets     []contracts.Asset    `json:"assets"`
	Allocation contracts.Allocation `json:"allocation"`
	Scenario   scenario.Definition  `json:"scenario"`
}

// BacktestRequest asks for a buy-and-hold replay against a benchmark.
type BacktestRequest struct {
	Assets     []contracts.Asset    `json:"assets"`
	Allocation contracts.Allocation `json:"allocation"`
	Timeframe  contracts.Timeframe  `json:"timeframe"`
	Benchmark  string               `json:"benchmark"`
}

func (OptimizeRequest) kind() string { return "optimize" }
func (RiskRequest) kind() string     { return "risk" }
func (FactorRequest) kind() string   { return "factors" }
func (ScenarioRequest) kind() string { return "scenario" }
func (BacktestRequest) kind() string { return "backtest" }

// Dispatch routes a request to its analysis. The five concrete types
// above are the only possible variants.
func (s *Service) Dispatch(ctx context.Context, req Request) (any, error) {
	switch r := req.(type) {
	case OptimizeRequest:
		return s.Optimize(ctx, r)
	case RiskRequest:
		return s.Risk(ctx, r)
	case FactorRequest:
		return s.FactorExposures(ctx, r)
	case ScenarioRequest:
		return s.Scenario(ctx, r)
	case BacktestRequest:
		return s.Backtest(ctx, r)
	default:
		return nil, fmt.Errorf("unknown request kind %q", req.kind())
	}
}
