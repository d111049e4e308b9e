// Package returns converts raw price histories into aligned
// log-return series. Pure computation, no I/O.
package returns

import (
	"fmt"
	"math"

	"github.com/wonny/folio/internal/contracts"
)

// MinObservations is the minimum usable history for annualized
// statistics: one trading year of closes.
const MinObservations = 252

// Series is the daily log-return series for one ticker.
type Series struct {
	Ticker string
	Values []float64
}

// FromPrices computes log returns from one price series.
// Value i = ln(price[i+1] / price[i]), length = len(prices) - 1.
func FromPrices(ps contracts.PriceSeries) Series {
	closes := ps.Closes()
	values := make([]float64, 0, max(0, len(closes)-1))
	for i := 1; i < len(closes); i++ {
		values = append(values, math.Log(closes[i]/closes[i-1]))
	}
	return Series{Ticker: ps.Ticker, Values: values}
}

// Build converts price series into aligned log-return series.
// Any input shorter than minObs observations fails with
// ErrInsufficientHistory naming the ticker; whether to drop that
// asset and retry is the caller's policy, not enforced here.
func Build(priceSeries []contracts.PriceSeries, minObs int) ([]Series, error) {
	if minObs <= 1 {
		minObs = MinObservations
	}

	series := make([]Series, 0, len(priceSeries))
	for _, ps := range priceSeries {
		if ps.Len() < minObs {
			return nil, fmt.Errorf("%w: %s has %d observations, need %d",
				contracts.ErrInsufficientHistory, ps.Ticker, ps.Len(), minObs)
		}
		series = append(series, FromPrices(ps))
	}

	return Align(series), nil
}

// Align truncates every series from the front to the shortest common
// length, so all series cover the same trailing window.
func Align(series []Series) []Series {
	if len(series) == 0 {
		return series
	}

	minLen := len(series[0].Values)
	for _, s := range series[1:] {
		if len(s.Values) < minLen {
			minLen = len(s.Values)
		}
	}

	aligned := make([]Series, len(series))
	for i, s := range series {
		aligned[i] = Series{
			Ticker: s.Ticker,
			Values: s.Values[len(s.Values)-minLen:],
		}
	}
	return aligned
}

// Portfolio collapses aligned per-asset return series into a single
// portfolio return series under the given weights. Weight order must
// match the series order.
func Portfolio(series []Series, weights []float64) []float64 {
	if len(series) == 0 || len(series) != len(weights) {
		return nil
	}

	n := len(series[0].Values)
	out := make([]float64, n)
	for t := 0; t < n; t++ {
		var r float64
		for i, s := range series {
			r += weights[i] * s.Values[t]
		}
		out[t] = r
	}
	return out
}
