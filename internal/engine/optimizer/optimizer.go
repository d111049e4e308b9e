// Package optimizer finds the best-Sharpe feasible allocation by
// random search over the weight simplex.
package optimizer

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wonny/folio/internal/contracts"
	"github.com/wonny/folio/internal/engine/moments"
)

const (
	// IterationsQuick is the default iteration budget.
	IterationsQuick = 2500
	// IterationsComprehensive is the budget for a comprehensive pass.
	IterationsComprehensive = 5000

	// MaxFrontierPoints bounds the scatter sample returned to callers.
	MaxFrontierPoints = 500

	// weightTolerance absorbs float noise in constraint checks.
	weightTolerance = 1e-9
)

// Config controls one optimizer run.
type Config struct {
	Iterations   int
	Constraints  contracts.ConstraintSet
	RiskFreeRate float64

	// Seed fixes the random source for reproducible runs; 0 draws a
	// fresh seed per call.
	Seed int64

	// Workers is the sampling parallelism; 0 means GOMAXPROCS.
	Workers int
}

// sample is one accepted draw, kept internal so the full weight
// vectors never leave the run.
type sample struct {
	weights []float64
	point   contracts.SimulationPoint
}

// Optimize samples random feasible allocations and returns the
// argmax-Sharpe portfolio plus a downsampled frontier scatter.
//
// Samples violating the constraint set are skipped, not fatal; a run
// where every sample is rejected fails with ErrInfeasibleConstraints.
// The reduction to the best sample is deterministic regardless of how
// iterations were partitioned across workers.
func Optimize(ctx context.Context, m *moments.Moments, sectors map[string]string, cfg Config) (*contracts.OptimizationResult, error) {
	n := len(m.Tickers)
	if n < 2 {
		return nil, fmt.Errorf("%w: %d assets with sufficient history, need at least 2",
			contracts.ErrInsufficientAssets, n)
	}
	if err := cfg.Constraints.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", contracts.ErrInfeasibleConstraints, err)
	}

	iterations := cfg.Iterations
	if iterations <= 0 {
		iterations = IterationsQuick
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > iterations {
		workers = iterations
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	sectorIndex := buildSectorIndex(m.Tickers, sectors)

	// Fan out sampling; each worker owns a rand.Rand derived from the
	// base seed so a fixed seed reproduces the same draw set.
	perWorker := make([][]sample, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		count := iterations / workers
		if w < iterations%workers {
			count++
		}

		wg.Add(1)
		go func(w, count int) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed + int64(w)*0x9E3779B9))
			perWorker[w] = sampleLoop(ctx, rng, count, m, sectorIndex, cfg)
		}(w, count)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var accepted []sample
	for _, batch := range perWorker {
		accepted = append(accepted, batch...)
	}
	if len(accepted) == 0 {
		return nil, fmt.Errorf("%w: no sampled allocation satisfies max asset %.2f / max sector %.2f after %d iterations",
			contracts.ErrInfeasibleConstraints,
			cfg.Constraints.MaxAssetWeight, cfg.Constraints.MaxSectorWeight, iterations)
	}

	best := accepted[0]
	for _, s := range accepted[1:] {
		if better(s, best) {
			best = s
		}
	}

	weights := make(contracts.Allocation, n)
	for i, ticker := range m.Tickers {
		weights[ticker] = best.weights[i]
	}

	return &contracts.OptimizationResult{
		RunID:      uuid.New().String(),
		RunDate:    time.Now(),
		Weights:    weights,
		Best:       best.point,
		Frontier:   downsample(accepted, MaxFrontierPoints),
		Iterations: iterations,
		Accepted:   len(accepted),
	}, nil
}

// sampleLoop draws count allocations, keeping the feasible ones.
// The context is checked between iterations so a long run stays
// interruptible.
func sampleLoop(ctx context.Context, rng *rand.Rand, count int, m *moments.Moments, sectorIndex [][]int, cfg Config) []sample {
	accepted := make([]sample, 0, count)
	for i := 0; i < count; i++ {
		if i%64 == 0 && ctx.Err() != nil {
			return accepted
		}

		w := randomWeights(rng, len(m.Tickers))
		if !feasible(w, sectorIndex, cfg.Constraints) {
			continue
		}

		ret, vol, sharpe := moments.PortfolioStats(w, m, cfg.RiskFreeRate)
		accepted = append(accepted, sample{
			weights: w,
			point:   contracts.SimulationPoint{Return: ret, Volatility: vol, Sharpe: sharpe},
		})
	}
	return accepted
}

// randomWeights draws a weight vector from the n-simplex: n uniform
// samples normalized to sum to 1.
func randomWeights(rng *rand.Rand, n int) []float64 {
	w := make([]float64, n)
	var sum float64
	for i := range w {
		w[i] = rng.Float64()
		sum += w[i]
	}
	if sum == 0 {
		// All-zero draw has probability zero but would divide by zero.
		for i := range w {
			w[i] = 1.0 / float64(n)
		}
		return w
	}
	for i := range w {
		w[i] /= sum
	}
	return w
}

// feasible applies the per-asset and per-sector weight caps.
func feasible(w []float64, sectorIndex [][]int, c contracts.ConstraintSet) bool {
	if c.MaxAssetWeight > 0 {
		for _, weight := range w {
			if weight > c.MaxAssetWeight+weightTolerance {
				return false
			}
		}
	}
	if c.MaxSectorWeight > 0 {
		for _, members := range sectorIndex {
			var total float64
			for _, i := range members {
				total += w[i]
			}
			if total > c.MaxSectorWeight+weightTolerance {
				return false
			}
		}
	}
	return true
}

// buildSectorIndex groups asset indices by sector. Tickers without a
// known sector form no group and escape the sector cap.
func buildSectorIndex(tickers []string, sectors map[string]string) [][]int {
	groups := make(map[string][]int)
	for i, ticker := range tickers {
		sector, ok := sectors[ticker]
		if !ok || sector == "" {
			continue
		}
		groups[sector] = append(groups[sector], i)
	}

	index := make([][]int, 0, len(groups))
	for _, members := range groups {
		index = append(index, members)
	}
	return index
}

// better orders samples by Sharpe, breaking ties by lower volatility
// and then by weight vector, so the reduction does not depend on
// sample arrival order.
func better(a, b sample) bool {
	if a.point.Sharpe != b.point.Sharpe {
		return a.point.Sharpe > b.point.Sharpe
	}
	if a.point.Volatility != b.point.Volatility {
		return a.point.Volatility < b.point.Volatility
	}
	for i := range a.weights {
		if a.weights[i] != b.weights[i] {
			return a.weights[i] < b.weights[i]
		}
	}
	return false
}

// downsample strides over the accepted set to bound payload size.
// Only the returned scatter shrinks; the best sample was already
// selected over the full set.
func downsample(accepted []sample, limit int) []contracts.SimulationPoint {
	stride := 1
	if len(accepted) > limit {
		stride = len(accepted) / limit
	}

	points := make([]contracts.SimulationPoint, 0, limit)
	for i := 0; i < len(accepted) && len(points) < limit; i += stride {
		points = append(points, accepted[i].point)
	}
	return points
}
