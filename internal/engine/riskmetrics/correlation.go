package riskmetrics

import (
	"math"

	"github.com/wonny/folio/internal/contracts"
	"github.com/wonny/folio/internal/engine/returns"
)

// Correlation computes the Pearson correlation matrix of aligned
// daily return series. The diagonal is exactly 1.0 by construction
// and off-diagonals are mirrored, never sampled twice.
func Correlation(series []returns.Series) contracts.CorrelationMatrix {
	n := len(series)

	out := contracts.CorrelationMatrix{
		Tickers: make([]string, n),
		Matrix:  make([][]float64, n),
	}
	for i, s := range series {
		out.Tickers[i] = s.Ticker
		out.Matrix[i] = make([]float64, n)
		out.Matrix[i][i] = 1.0
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			rho := pearson(series[i].Values, series[j].Values)
			out.Matrix[i][j] = rho
			out.Matrix[j][i] = rho
		}
	}
	return out
}

// pearson returns 0 for degenerate (constant) series rather than NaN.
func pearson(a, b []float64) float64 {
	n := len(a)
	if n == 0 || n != len(b) {
		return 0
	}

	meanA := mean(a)
	meanB := mean(b)

	var cov, varA, varB float64
	for k := 0; k < n; k++ {
		da := a[k] - meanA
		db := b[k] - meanB
		cov += da * db
		varA += da * da
		varB += db * db
	}

	denom := math.Sqrt(varA * varB)
	if denom < 1e-18 {
		return 0
	}
	return cov / denom
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
