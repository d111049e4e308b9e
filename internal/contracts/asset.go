package contracts

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Asset holds immutable reference data for one instrument.
// The engine treats it as a read-only key; the asset catalog owns it.
type Asset struct {
	Ticker     string `json:"ticker"`
	Name       string `json:"name"`
	Country    string `json:"country"`
	Sector     string `json:"sector"`
	AssetClass string `json:"asset_class"`
}

// PricePoint is one (date, closing price) observation.
type PricePoint struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// PriceSeries is an ordered price history for one ticker.
// Invariant: ascending by date, no duplicate dates, positive closes.
type PriceSeries struct {
	Ticker string       `json:"ticker"`
	Points []PricePoint `json:"points"`
}

// Len returns the number of observations.
func (ps PriceSeries) Len() int { return len(ps.Points) }

// Closes returns the closing prices in date order.
func (ps PriceSeries) Closes() []float64 {
	closes := make([]float64, len(ps.Points))
	for i, p := range ps.Points {
		closes[i] = p.Close
	}
	return closes
}

// Validate checks the series invariants.
func (ps PriceSeries) Validate() error {
	for i, p := range ps.Points {
		if p.Close <= 0 {
			return fmt.Errorf("%s: non-positive close %.4f at %s", ps.Ticker, p.Close, p.Date.Format("2006-01-02"))
		}
		if i > 0 && !ps.Points[i-1].Date.Before(p.Date) {
			return fmt.Errorf("%s: dates not strictly ascending at index %d", ps.Ticker, i)
		}
	}
	return nil
}

// WeightTolerance is the allowed deviation of an allocation's weight sum from 1.0.
const WeightTolerance = 1e-3

// Allocation maps ticker to portfolio weight.
type Allocation map[string]float64

// Tickers returns the allocation's tickers in sorted order.
// Iteration over the map directly is never used for numeric work,
// so results stay deterministic.
func (a Allocation) Tickers() []string {
	tickers := make([]string, 0, len(a))
	for t := range a {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)
	return tickers
}

// Weights returns the weight vector in the order of Tickers().
func (a Allocation) Weights() []float64 {
	tickers := a.Tickers()
	w := make([]float64, len(tickers))
	for i, t := range tickers {
		w[i] = a[t]
	}
	return w
}

// Validate checks that weights are non-negative and sum to 1.0
// within WeightTolerance. Every analytic entry point calls this
// before touching the numbers.
func (a Allocation) Validate() error {
	if len(a) == 0 {
		return fmt.Errorf("allocation is empty")
	}
	sum := 0.0
	for ticker, w := range a {
		if w < 0 {
			return fmt.Errorf("negative weight %.6f for %s", w, ticker)
		}
		sum += w
	}
	if math.Abs(sum-1.0) > WeightTolerance {
		return fmt.Errorf("weights sum to %.6f, want 1.0 ±%g", sum, WeightTolerance)
	}
	return nil
}

// ConstraintSet bounds the optimizer's search space.
// A zero value means unconstrained for that dimension.
type ConstraintSet struct {
	MaxAssetWeight  float64 `json:"max_asset_weight,omitempty"`
	MaxSectorWeight float64 `json:"max_sector_weight,omitempty"`
}

// Validate checks that set constraints are fractions in (0, 1].
func (c ConstraintSet) Validate() error {
	if c.MaxAssetWeight != 0 && (c.MaxAssetWeight <= 0 || c.MaxAssetWeight > 1) {
		return fmt.Errorf("max asset weight %.4f outside (0, 1]", c.MaxAssetWeight)
	}
	if c.MaxSectorWeight != 0 && (c.MaxSectorWeight <= 0 || c.MaxSectorWeight > 1) {
		return fmt.Errorf("max sector weight %.4f outside (0, 1]", c.MaxSectorWeight)
	}
	return nil
}

// View is a Black-Litterman relative view: Outperformer beats
// Underperformer by Spread (annualized) with the given confidence.
type View struct {
	Outperformer   string  `json:"outperformer"`
	Underperformer string  `json:"underperformer"`
	Spread         float64 `json:"spread"`
	Confidence     float64 `json:"confidence"` // (0, 1]
}

// Timeframe is a backtest window length in years.
type Timeframe int

const (
	Timeframe1Y Timeframe = 1
	Timeframe3Y Timeframe = 3
	Timeframe5Y Timeframe = 5
)

// Valid reports whether the timeframe is one of the supported windows.
func (tf Timeframe) Valid() bool {
	return tf == Timeframe1Y || tf == Timeframe3Y || tf == Timeframe5Y
}
