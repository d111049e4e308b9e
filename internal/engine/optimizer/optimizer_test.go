package optimizer

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wonny/folio/internal/contracts"
	"github.com/wonny/folio/internal/engine/moments"
	"github.com/wonny/folio/internal/engine/returns"
)

// syntheticMoments builds moments for n assets with distinct means and
// mild noise so different weights actually rank differently.
func syntheticMoments(t *testing.T, n int) *moments.Moments {
	t.Helper()
	rng := rand.New(rand.NewSource(7))

	series := make([]returns.Series, n)
	for i := range series {
		drift := 0.0002 * float64(i+1)
		values := make([]float64, 300)
		for k := range values {
			values[k] = drift + rng.NormFloat64()*0.01
		}
		series[i] = returns.Series{Ticker: string(rune('A' + i)), Values: values}
	}

	m, err := moments.Estimate(series)
	require.NoError(t, err)
	return m
}

func TestOptimize_WeightsOnSimplex(t *testing.T) {
	m := syntheticMoments(t, 4)

	res, err := Optimize(context.Background(), m, nil, Config{Iterations: 500, Seed: 42})
	require.NoError(t, err)

	var sum float64
	for _, w := range res.Weights {
		require.GreaterOrEqual(t, w, 0.0)
		sum += w
	}
	require.InDelta(t, 1.0, sum, 1e-6)
}

func TestOptimize_BestDominatesFrontier(t *testing.T) {
	m := syntheticMoments(t, 3)

	res, err := Optimize(context.Background(), m, nil, Config{Iterations: 1000, Seed: 42})
	require.NoError(t, err)

	for _, p := range res.Frontier {
		require.LessOrEqual(t, p.Sharpe, res.Best.Sharpe)
	}
}

func TestOptimize_ReproducibleWithSeed(t *testing.T) {
	m := syntheticMoments(t, 3)
	cfg := Config{Iterations: 400, Seed: 99, Workers: 2}

	a, err := Optimize(context.Background(), m, nil, cfg)
	require.NoError(t, err)
	b, err := Optimize(context.Background(), m, nil, cfg)
	require.NoError(t, err)

	require.Equal(t, a.Best, b.Best)
	require.Equal(t, a.Weights, b.Weights)
	require.Equal(t, a.Accepted, b.Accepted)
}

func TestOptimize_MaxAssetWeightRespected(t *testing.T) {
	m := syntheticMoments(t, 10)
	cfg := Config{
		Iterations:  2000,
		Seed:        42,
		Constraints: contracts.ConstraintSet{MaxAssetWeight: 0.3},
	}

	res, err := Optimize(context.Background(), m, nil, cfg)
	require.NoError(t, err)

	for ticker, w := range res.Weights {
		require.LessOrEqual(t, w, 0.3+1e-6, "ticker %s", ticker)
	}
}

func TestOptimize_SectorConstraint(t *testing.T) {
	m := syntheticMoments(t, 4)
	sectors := map[string]string{"A": "tech", "B": "tech", "C": "energy", "D": "energy"}
	cfg := Config{
		Iterations:  3000,
		Seed:        42,
		Constraints: contracts.ConstraintSet{MaxSectorWeight: 0.6},
	}

	res, err := Optimize(context.Background(), m, sectors, cfg)
	require.NoError(t, err)

	tech := res.Weights["A"] + res.Weights["B"]
	energy := res.Weights["C"] + res.Weights["D"]
	require.LessOrEqual(t, tech, 0.6+1e-6)
	require.LessOrEqual(t, energy, 0.6+1e-6)
}

func TestOptimize_InfeasibleConstraints(t *testing.T) {
	m := syntheticMoments(t, 5)
	// Five assets cannot all stay below 10%: min feasible max weight is 20%.
	cfg := Config{
		Iterations:  500,
		Seed:        42,
		Constraints: contracts.ConstraintSet{MaxAssetWeight: 0.1},
	}

	_, err := Optimize(context.Background(), m, nil, cfg)
	require.ErrorIs(t, err, contracts.ErrInfeasibleConstraints)
}

func TestOptimize_TooFewAssets(t *testing.T) {
	m := syntheticMoments(t, 1)

	_, err := Optimize(context.Background(), m, nil, Config{Iterations: 100, Seed: 1})
	require.ErrorIs(t, err, contracts.ErrInsufficientAssets)
}

func TestOptimize_FrontierBounded(t *testing.T) {
	m := syntheticMoments(t, 3)

	res, err := Optimize(context.Background(), m, nil, Config{Iterations: IterationsComprehensive, Seed: 42})
	require.NoError(t, err)

	require.LessOrEqual(t, len(res.Frontier), MaxFrontierPoints)
	// The full accepted set still backs the result.
	require.Greater(t, res.Accepted, MaxFrontierPoints)
}

func TestOptimize_CancelledContext(t *testing.T) {
	m := syntheticMoments(t, 3)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Optimize(ctx, m, nil, Config{Iterations: IterationsComprehensive, Seed: 42})
	require.True(t, errors.Is(err, context.Canceled) || errors.Is(err, contracts.ErrInfeasibleConstraints))
}

func TestOptimize_ZeroVolatilitySharpe(t *testing.T) {
	// Constant returns collapse the covariance to zero; the optimizer
	// must report Sharpe 0 rather than fault.
	series := []returns.Series{
		{Ticker: "A", Values: constant(300, 0.001)},
		{Ticker: "B", Values: constant(300, 0.0005)},
	}
	m, err := moments.Estimate(series)
	require.NoError(t, err)

	res, err := Optimize(context.Background(), m, nil, Config{Iterations: 200, Seed: 5})
	require.NoError(t, err)
	require.Equal(t, 0.0, res.Best.Sharpe)
	require.False(t, math.IsNaN(res.Best.Return))
}

func constant(n int, v float64) []float64 {
	values := make([]float64, n)
	for i := range values {
		values[i] = v
	}
	return values
}
