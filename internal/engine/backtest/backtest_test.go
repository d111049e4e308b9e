package backtest

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wonny/folio/internal/contracts"
)

func series(ticker string, closes []float64) contracts.PriceSeries {
	start := time.Date(2021, 1, 4, 0, 0, 0, 0, time.UTC)
	points := make([]contracts.PricePoint, len(closes))
	for i, c := range closes {
		points[i] = contracts.PricePoint{Date: start.AddDate(0, 0, i), Close: c}
	}
	return contracts.PriceSeries{Ticker: ticker, Points: points}
}

func randomWalk(n int, start, drift, scale float64, seed int64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	closes := make([]float64, n)
	closes[0] = start
	for i := 1; i < n; i++ {
		closes[i] = closes[i-1] * math.Exp(drift+rng.NormFloat64()*scale)
	}
	return closes
}

func flatGrowth(n int, start, dailyFactor float64) []float64 {
	closes := make([]float64, n)
	closes[0] = start
	for i := 1; i < n; i++ {
		closes[i] = closes[i-1] * dailyFactor
	}
	return closes
}

func TestRun_BuyAndHoldReturn(t *testing.T) {
	// Both assets exactly double over the window, so the portfolio must too.
	n := 252
	factor := math.Pow(2.0, 1.0/float64(n-1))
	alloc := contracts.Allocation{"A": 0.6, "B": 0.4}
	prices := map[string]contracts.PriceSeries{
		"A": series("A", flatGrowth(n, 100, factor)),
		"B": series("B", flatGrowth(n, 50, factor)),
	}
	bench := series("SPY", flatGrowth(n, 400, factor))

	res, err := Run(alloc, prices, bench, Config{Timeframe: contracts.Timeframe1Y})
	require.NoError(t, err)

	require.InDelta(t, 1.0, res.TotalReturn, 1e-9)
	require.InDelta(t, 1.0, res.BenchmarkReturn, 1e-9)
	require.InDelta(t, DefaultNotional, res.InitialValue, 1e-9)
	require.InDelta(t, 2*DefaultNotional, res.FinalValue, 1e-6)
	require.Equal(t, 0.0, res.MaxDrawdown)
	require.Len(t, res.PortfolioPath, n)
}

func TestRun_MaxDrawdownBounds(t *testing.T) {
	alloc := contracts.Allocation{"A": 0.5, "B": 0.5}
	prices := map[string]contracts.PriceSeries{
		"A": series("A", randomWalk(400, 100, -0.001, 0.03, 1)),
		"B": series("B", randomWalk(400, 80, 0.0002, 0.02, 2)),
	}
	bench := series("SPY", randomWalk(400, 400, 0.0003, 0.01, 3))

	res, err := Run(alloc, prices, bench, Config{Timeframe: contracts.Timeframe1Y})
	require.NoError(t, err)

	require.LessOrEqual(t, res.MaxDrawdown, 0.0)
	require.GreaterOrEqual(t, res.MaxDrawdown, -1.0)
}

func TestRun_KnownDrawdown(t *testing.T) {
	// Ramp to a peak, crash 40%, partially recover.
	closes := make([]float64, 252)
	for i := range closes {
		switch {
		case i < 100:
			closes[i] = 100 + float64(i)
		case i < 150:
			closes[i] = 199 * (1 - 0.4*float64(i-99)/50)
		default:
			closes[i] = closes[149] * (1 + 0.001*float64(i-149))
		}
	}
	alloc := contracts.Allocation{"A": 1.0}
	prices := map[string]contracts.PriceSeries{"A": series("A", closes)}
	bench := series("SPY", flatGrowth(252, 400, 1.0))

	res, err := Run(alloc, prices, bench, Config{Timeframe: contracts.Timeframe1Y})
	require.NoError(t, err)
	require.InDelta(t, -0.4, res.MaxDrawdown, 1e-6)
}

func TestRun_WindowExceedsHistory(t *testing.T) {
	alloc := contracts.Allocation{"A": 1.0}
	prices := map[string]contracts.PriceSeries{
		"A": series("A", flatGrowth(300, 100, 1.0005)),
	}
	bench := series("SPY", flatGrowth(300, 400, 1.0002))

	// 3 years needs 756 observations, only 300 available.
	_, err := Run(alloc, prices, bench, Config{Timeframe: contracts.Timeframe3Y})
	require.ErrorIs(t, err, contracts.ErrInsufficientHistory)
}

func TestRun_MissingConstituent(t *testing.T) {
	alloc := contracts.Allocation{"A": 0.5, "B": 0.5}
	prices := map[string]contracts.PriceSeries{
		"A": series("A", flatGrowth(300, 100, 1.0005)),
	}
	bench := series("SPY", flatGrowth(300, 400, 1.0002))

	_, err := Run(alloc, prices, bench, Config{Timeframe: contracts.Timeframe1Y})
	require.ErrorIs(t, err, contracts.ErrInsufficientHistory)
}

func TestRun_InvalidTimeframe(t *testing.T) {
	alloc := contracts.Allocation{"A": 1.0}
	prices := map[string]contracts.PriceSeries{"A": series("A", flatGrowth(300, 100, 1.0))}
	bench := series("SPY", flatGrowth(300, 400, 1.0))

	_, err := Run(alloc, prices, bench, Config{Timeframe: contracts.Timeframe(2)})
	require.Error(t, err)
}

func TestRun_NoRebalancingDrift(t *testing.T) {
	// A rallies, B is flat. Without rebalancing the final value must
	// equal the sum of the two independent buy-and-hold legs.
	n := 252
	alloc := contracts.Allocation{"A": 0.5, "B": 0.5}
	growthA := math.Pow(1.5, 1.0/float64(n-1))
	prices := map[string]contracts.PriceSeries{
		"A": series("A", flatGrowth(n, 100, growthA)),
		"B": series("B", flatGrowth(n, 100, 1.0)),
	}
	bench := series("SPY", flatGrowth(n, 400, 1.0))

	res, err := Run(alloc, prices, bench, Config{Timeframe: contracts.Timeframe1Y})
	require.NoError(t, err)

	want := 0.5*DefaultNotional*1.5 + 0.5*DefaultNotional
	require.InDelta(t, want, res.FinalValue, 1e-6)
}
