// Package factors regresses portfolio excess returns on the classic
// market, size and value factor series.
package factors

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/wonny/folio/internal/contracts"
	"github.com/wonny/folio/internal/engine/returns"
)

// Series holds aligned daily factor returns. MktRF is the market
// excess return; SMB and HML are the size and value spreads; RF is
// the daily risk-free rate used to excess the portfolio.
type Series struct {
	MktRF []float64
	SMB   []float64
	HML   []float64
	RF    []float64
}

// Len returns the common observation count, 0 when misaligned.
func (s Series) Len() int {
	n := len(s.MktRF)
	if len(s.SMB) != n || len(s.HML) != n || len(s.RF) != n {
		return 0
	}
	return n
}

// Regress fits ordinary least squares of portfolio excess daily
// returns on the three factors. Loadings are reported as-is even when
// the fit is poor; no significance filtering happens here. Fails with
// ErrInsufficientHistory when the aligned overlap is shorter than
// minObs; non-positive minObs takes the annualization minimum, the
// same convention returns.Build uses.
func Regress(portfolioReturns []float64, factors Series, minObs int) (contracts.FactorExposures, error) {
	if minObs <= 1 {
		minObs = returns.MinObservations
	}
	n := len(portfolioReturns)
	if factors.Len() == 0 {
		return contracts.FactorExposures{}, fmt.Errorf("factor series misaligned")
	}
	if factors.Len() < n {
		n = factors.Len()
	}
	if n < minObs {
		return contracts.FactorExposures{}, fmt.Errorf("%w: %d aligned observations, need %d",
			contracts.ErrInsufficientHistory, n, minObs)
	}

	// Use the trailing window of each input.
	port := portfolioReturns[len(portfolioReturns)-n:]
	mktRF := factors.MktRF[len(factors.MktRF)-n:]
	smb := factors.SMB[len(factors.SMB)-n:]
	hml := factors.HML[len(factors.HML)-n:]
	rf := factors.RF[len(factors.RF)-n:]

	// Design matrix with intercept: y = α + β·MktRF + s·SMB + h·HML
	X := mat.NewDense(n, 4, nil)
	y := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		X.Set(i, 0, 1.0)
		X.Set(i, 1, mktRF[i])
		X.Set(i, 2, smb[i])
		X.Set(i, 3, hml[i])
		y.SetVec(i, port[i]-rf[i])
	}

	var qr mat.QR
	qr.Factorize(X)

	var coef mat.VecDense
	if err := qr.SolveVecTo(&coef, false, y); err != nil {
		return contracts.FactorExposures{}, fmt.Errorf("solve least squares: %w", err)
	}

	exposures := contracts.FactorExposures{
		Alpha:        coef.AtVec(0),
		Beta:         coef.AtVec(1),
		SMB:          coef.AtVec(2),
		HML:          coef.AtVec(3),
		Observations: n,
	}
	exposures.RSquared = rSquared(X, y, &coef)
	return exposures, nil
}

func rSquared(X *mat.Dense, y, coef *mat.VecDense) float64 {
	n, _ := X.Dims()

	var fitted mat.VecDense
	fitted.MulVec(X, coef)

	var yMean float64
	for i := 0; i < n; i++ {
		yMean += y.AtVec(i)
	}
	yMean /= float64(n)

	var ssRes, ssTot float64
	for i := 0; i < n; i++ {
		r := y.AtVec(i) - fitted.AtVec(i)
		d := y.AtVec(i) - yMean
		ssRes += r * r
		ssTot += d * d
	}
	if ssTot < 1e-18 {
		return 0
	}
	r2 := 1 - ssRes/ssTot
	if math.IsNaN(r2) {
		return 0
	}
	return r2
}
