package riskmetrics

import (
	"github.com/wonny/folio/internal/contracts"
	"github.com/wonny/folio/internal/engine/moments"
)

// Contributions decomposes the portfolio's annualized return and
// volatility by asset:
//
//	return contribution_i = w_i · μ_i
//	risk contribution_i   = w_i · (Σ row_i · w) / σ_p
//
// Across assets the contributions sum to the portfolio's total return
// and volatility respectively. A zero-volatility portfolio reports
// zero risk contributions.
func Contributions(weights []float64, m *moments.Moments) ([]contracts.Contribution, float64, float64) {
	n := len(weights)
	ret, vol, _ := moments.PortfolioStats(weights, m, 0)

	out := make([]contracts.Contribution, n)
	for i := 0; i < n; i++ {
		c := contracts.Contribution{
			Ticker:             m.Tickers[i],
			Weight:             weights[i],
			ReturnContribution: weights[i] * m.Mean[i],
		}
		if vol > 1e-12 {
			var rowDot float64
			for j := 0; j < n; j++ {
				rowDot += m.Cov[i][j] * weights[j]
			}
			c.RiskContribution = weights[i] * rowDot / vol
		}
		out[i] = c
	}

	return out, ret, vol
}
