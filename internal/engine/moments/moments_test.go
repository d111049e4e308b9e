package moments

import (
	"math"
	"testing"

	"github.com/wonny/folio/internal/engine/returns"
	"github.com/stretchr/testify/require"
)

func constantSeries(ticker string, n int, value float64) returns.Series {
	values := make([]float64, n)
	for i := range values {
		values[i] = value
	}
	return returns.Series{Ticker: ticker, Values: values}
}

func TestEstimate_AnnualizedMean(t *testing.T) {
	m, err := Estimate([]returns.Series{
		constantSeries("A", 299, 0.001),
		constantSeries("B", 299, 0.0005),
	})
	require.NoError(t, err)

	require.InDelta(t, 0.001*TradingDays, m.Mean[0], 1e-9)
	require.InDelta(t, 0.0005*TradingDays, m.Mean[1], 1e-9)
	require.Equal(t, 299, m.Samples)
}

func TestEstimate_CovSymmetric(t *testing.T) {
	m, err := Estimate([]returns.Series{
		{Ticker: "A", Values: []float64{0.01, -0.02, 0.015, 0.003, -0.007}},
		{Ticker: "B", Values: []float64{-0.005, 0.01, 0.002, -0.01, 0.004}},
		{Ticker: "C", Values: []float64{0.02, 0.001, -0.013, 0.006, 0.009}},
	})
	require.NoError(t, err)

	for i := range m.Cov {
		for j := range m.Cov {
			// Mirrored, not merely approximately equal.
			require.Equal(t, m.Cov[i][j], m.Cov[j][i], "cov[%d][%d]", i, j)
		}
	}
}

func TestEstimate_Misaligned(t *testing.T) {
	_, err := Estimate([]returns.Series{
		{Ticker: "A", Values: []float64{0.01, 0.02}},
		{Ticker: "B", Values: []float64{0.01}},
	})
	require.Error(t, err)
}

// Degenerate covariance from constant returns must not fault:
// weights [0.6, 0.4] over constant daily returns [0.001, 0.0005].
func TestPortfolioStats_DegenerateCovariance(t *testing.T) {
	m, err := Estimate([]returns.Series{
		constantSeries("A", 299, 0.001),
		constantSeries("B", 299, 0.0005),
	})
	require.NoError(t, err)

	ret, vol, sharpe := PortfolioStats([]float64{0.6, 0.4}, m, 0.045)

	require.InDelta(t, 0.2016, ret, 1e-9)
	require.Equal(t, 0.0, vol)
	require.Equal(t, 0.0, sharpe)
	require.False(t, math.IsNaN(sharpe))
}

func TestPortfolioStats_KnownVariance(t *testing.T) {
	// Two perfectly anti-correlated assets at half weight each cancel.
	m, err := Estimate([]returns.Series{
		{Ticker: "A", Values: []float64{0.01, -0.01, 0.01, -0.01}},
		{Ticker: "B", Values: []float64{-0.01, 0.01, -0.01, 0.01}},
	})
	require.NoError(t, err)

	_, vol, _ := PortfolioStats([]float64{0.5, 0.5}, m, 0.0)
	require.InDelta(t, 0.0, vol, 1e-9)
}
