// Package moments estimates annualized first and second moments from
// aligned daily return series.
package moments

import (
	"fmt"
	"math"

	"github.com/wonny/folio/internal/contracts"
	"github.com/wonny/folio/internal/engine/returns"
)

// TradingDays is the annualization factor for daily observations.
const TradingDays = 252.0

// Moments holds the annualized mean-return vector and covariance
// matrix for a set of assets. Cov is symmetric by construction: the
// upper triangle is computed once and mirrored. It is not forced
// positive-semi-definite; consumers tolerate PSD up to float noise.
type Moments struct {
	Tickers []string
	Mean    []float64   // annualized mean returns
	Cov     [][]float64 // annualized covariance
	Samples int         // aligned daily observations used
}

// Estimate computes annualized moments from aligned return series.
func Estimate(series []returns.Series) (*Moments, error) {
	if len(series) == 0 {
		return nil, fmt.Errorf("%w: no return series", contracts.ErrInsufficientAssets)
	}

	n := len(series)
	samples := len(series[0].Values)
	for _, s := range series[1:] {
		if len(s.Values) != samples {
			return nil, fmt.Errorf("series %s not aligned: %d observations, want %d",
				s.Ticker, len(s.Values), samples)
		}
	}
	if samples < 2 {
		return nil, fmt.Errorf("%w: %d aligned observations", contracts.ErrInsufficientHistory, samples)
	}

	m := &Moments{
		Tickers: make([]string, n),
		Mean:    make([]float64, n),
		Cov:     make([][]float64, n),
		Samples: samples,
	}

	dailyMean := make([]float64, n)
	for i, s := range series {
		m.Tickers[i] = s.Ticker
		dailyMean[i] = mean(s.Values)
		m.Mean[i] = dailyMean[i] * TradingDays
		m.Cov[i] = make([]float64, n)
	}

	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			var sum float64
			for k := 0; k < samples; k++ {
				sum += (series[i].Values[k] - dailyMean[i]) * (series[j].Values[k] - dailyMean[j])
			}
			cov := sum / float64(samples-1) * TradingDays
			m.Cov[i][j] = cov
			m.Cov[j][i] = cov
		}
	}

	return m, nil
}

// PortfolioStats computes the annualized return, volatility and Sharpe
// ratio for a weight vector. A numerically zero volatility yields a
// Sharpe of 0, never a division fault.
func PortfolioStats(weights []float64, m *Moments, riskFreeRate float64) (ret, vol, sharpe float64) {
	n := len(weights)

	for i := 0; i < n; i++ {
		ret += weights[i] * m.Mean[i]
	}

	var variance float64
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			variance += weights[i] * weights[j] * m.Cov[i][j]
		}
	}
	if variance < 0 {
		// Float noise on a degenerate matrix can dip below zero.
		variance = 0
	}
	vol = math.Sqrt(variance)

	if vol > 1e-12 {
		sharpe = (ret - riskFreeRate) / vol
	}
	return ret, vol, sharpe
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
