package contracts

import "time"

// SimulationPoint is one sampled portfolio from the Monte Carlo search.
type SimulationPoint struct {
	Return     float64 `json:"return"`
	Volatility float64 `json:"volatility"`
	Sharpe     float64 `json:"sharpe"`
}

// ExcludedTicker records an asset dropped from an analysis and why.
// Degraded-data situations are always reported, never silently absorbed.
type ExcludedTicker struct {
	Ticker string `json:"ticker"`
	Reason string `json:"reason"`
}

// OptimizationResult is the optimizer's answer: the best-Sharpe
// allocation plus a downsampled scatter of the simulated frontier.
type OptimizationResult struct {
	RunID      string            `json:"run_id"`
	RunDate    time.Time         `json:"run_date"`
	Weights    Allocation        `json:"weights"`
	Best       SimulationPoint   `json:"best"`
	Frontier   []SimulationPoint `json:"frontier"`
	Iterations int               `json:"iterations"`
	Accepted   int               `json:"accepted"`
	Excluded   []ExcludedTicker  `json:"excluded,omitempty"`
	// RiskFreeRate is the annualized rate the Sharpe ranking used.
	RiskFreeRate float64 `json:"risk_free_rate"`
	// RiskFreeFallback marks a degraded rate: the live source was
	// unreachable and a configured constant was substituted.
	RiskFreeFallback bool `json:"risk_free_fallback,omitempty"`
}

// VaRResult holds historical-simulation VaR/CVaR in currency terms.
// Losses are expressed as positive amounts.
type VaRResult struct {
	Confidence     float64          `json:"confidence"`
	PortfolioValue float64          `json:"portfolio_value"`
	VaR            float64          `json:"var"`
	CVaR           float64          `json:"cvar"`
	Currency       string           `json:"currency"`
	Observations   int              `json:"observations"`
	Excluded       []ExcludedTicker `json:"excluded,omitempty"`
}

// Contribution is one asset's share of portfolio return and risk.
// Across all assets, ReturnContribution sums to the portfolio return
// and RiskContribution sums to the portfolio volatility.
type Contribution struct {
	Ticker             string  `json:"ticker"`
	Weight             float64 `json:"weight"`
	ReturnContribution float64 `json:"return_contribution"`
	RiskContribution   float64 `json:"risk_contribution"`
}

// CorrelationMatrix is the Pearson correlation of aligned daily returns.
// Tickers gives the row/column order.
type CorrelationMatrix struct {
	Tickers  []string         `json:"tickers"`
	Matrix   [][]float64      `json:"matrix"`
	Excluded []ExcludedTicker `json:"excluded,omitempty"`
}

// RiskResult bundles the risk analytics computed for one allocation.
type RiskResult struct {
	VaR           VaRResult         `json:"var"`
	Correlation   CorrelationMatrix `json:"correlation"`
	Contributions []Contribution    `json:"contributions"`
	TotalReturn   float64           `json:"total_return"`
	Volatility    float64           `json:"volatility"`
}

// FactorExposures holds the OLS loadings of portfolio excess returns
// on the market, size and value factors. Reported as-is even when the
// fit is poor; significance judgment is the consumer's.
type FactorExposures struct {
	Alpha        float64          `json:"alpha"`
	Beta         float64          `json:"beta"`
	SMB          float64          `json:"smb"`
	HML          float64          `json:"hml"`
	RSquared     float64          `json:"r_squared"`
	Observations int              `json:"observations"`
	Excluded     []ExcludedTicker `json:"excluded,omitempty"`
}

// ScenarioResult reports the expected-return delta from applying
// sector-level multipliers to the current allocation.
type ScenarioResult struct {
	Scenario         string  `json:"scenario"`
	OriginalReturn   float64 `json:"original_return"`
	ScenarioReturn   float64 `json:"scenario_return"`
	ImpactPercentage float64 `json:"impact_percentage"`
}

// ValuePoint is one date on a backtest value path.
type ValuePoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// BacktestResult is the replay of a fixed allocation against a
// benchmark. Weights are held at the initial split: the backtest
// never rebalances, which materially changes results versus a
// periodically-rebalanced strategy.
type BacktestResult struct {
	RunID           string       `json:"run_id"`
	Timeframe       Timeframe    `json:"timeframe"`
	InitialValue    float64      `json:"initial_value"`
	FinalValue      float64      `json:"final_value"`
	TotalReturn     float64      `json:"total_return"`
	BenchmarkTicker string       `json:"benchmark_ticker"`
	BenchmarkReturn float64      `json:"benchmark_return"`
	MaxDrawdown     float64      `json:"max_drawdown"`
	PortfolioPath   []ValuePoint `json:"portfolio_path"`
	BenchmarkPath   []ValuePoint `json:"benchmark_path"`
}
