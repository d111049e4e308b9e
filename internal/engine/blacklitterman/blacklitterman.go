// Package blacklitterman blends market-implied prior returns with
// relative investor views into a posterior return vector.
package blacklitterman

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/wonny/folio/internal/contracts"
)

const (
	// DefaultTau scales the uncertainty of the prior.
	DefaultTau = 0.05
	// DefaultRiskAversion is the market risk-aversion coefficient used
	// for implied equilibrium returns.
	DefaultRiskAversion = 2.5

	// minUncertainty floors Ω's diagonal so a full-confidence view
	// stays invertible.
	minUncertainty = 1e-8
)

// Config holds the model's scalar parameters.
type Config struct {
	Tau          float64
	RiskAversion float64
}

// DefaultConfig returns the standard parameterization.
func DefaultConfig() Config {
	return Config{Tau: DefaultTau, RiskAversion: DefaultRiskAversion}
}

// ImpliedPrior computes market-implied equilibrium returns
// Π = λ Σ w from market-cap weights. When market weights are not
// available the caller passes the historical mean instead.
func ImpliedPrior(marketWeights []float64, cov [][]float64, riskAversion float64) []float64 {
	n := len(marketWeights)
	sigma := denseFrom(cov)
	w := mat.NewVecDense(n, append([]float64(nil), marketWeights...))

	var sigmaW mat.VecDense
	sigmaW.MulVec(sigma, w)

	prior := make([]float64, n)
	for i := 0; i < n; i++ {
		prior[i] = riskAversion * sigmaW.AtVec(i)
	}
	return prior
}

// Posterior solves the Black-Litterman linear system
//
//	E[R] = [(τΣ)⁻¹ + PᵀΩ⁻¹P]⁻¹ [(τΣ)⁻¹Π + PᵀΩ⁻¹Q]
//
// for the given prior, covariance and relative views. Each view
// contributes a pick row (+1 outperformer, -1 underperformer), a
// target spread in Q, and a diagonal Ω entry shrinking with
// confidence. An empty view list, a view referencing fewer than two
// distinct known assets, or a confidence outside (0,1] fails with
// ErrInvalidView.
func Posterior(prior []float64, cov [][]float64, tickers []string, views []contracts.View, cfg Config) ([]float64, error) {
	n := len(tickers)
	if len(prior) != n || len(cov) != n {
		return nil, fmt.Errorf("prior/covariance size mismatch: %d tickers", n)
	}
	if len(views) == 0 {
		return nil, fmt.Errorf("%w: at least one view is required", contracts.ErrInvalidView)
	}
	if cfg.Tau <= 0 {
		cfg.Tau = DefaultTau
	}

	index := make(map[string]int, n)
	for i, ticker := range tickers {
		index[ticker] = i
	}

	m := len(views)
	P := mat.NewDense(m, n, nil)
	Q := mat.NewVecDense(m, nil)
	omega := mat.NewDense(m, m, nil)

	sigma := denseFrom(cov)
	tauSigma := mat.NewDense(n, n, nil)
	tauSigma.Scale(cfg.Tau, sigma)

	for k, v := range views {
		if err := validateView(v, index); err != nil {
			return nil, err
		}

		i := index[v.Outperformer]
		j := index[v.Underperformer]
		P.Set(k, i, 1.0)
		P.Set(k, j, -1.0)
		Q.SetVec(k, v.Spread)

		// Ω_kk = p (τΣ) pᵀ scaled by the odds against the view: a
		// confident view gets a tight variance, a weak one a loose one.
		pickVariance := tauSigma.At(i, i) + tauSigma.At(j, j) - 2*tauSigma.At(i, j)
		uncertainty := pickVariance * (1.0/v.Confidence - 1.0)
		if uncertainty < minUncertainty {
			uncertainty = minUncertainty
		}
		omega.Set(k, k, uncertainty)
	}

	var tauSigmaInv mat.Dense
	if err := tauSigmaInv.Inverse(tauSigma); err != nil {
		return nil, fmt.Errorf("invert τΣ: %w", err)
	}
	var omegaInv mat.Dense
	if err := omegaInv.Inverse(omega); err != nil {
		return nil, fmt.Errorf("invert Ω: %w", err)
	}

	// PᵀΩ⁻¹ and PᵀΩ⁻¹P
	var ptOmegaInv mat.Dense
	ptOmegaInv.Mul(P.T(), &omegaInv)
	var ptOmegaInvP mat.Dense
	ptOmegaInvP.Mul(&ptOmegaInv, P)

	// M = (τΣ)⁻¹ + PᵀΩ⁻¹P
	var M mat.Dense
	M.Add(&tauSigmaInv, &ptOmegaInvP)

	// rhs = (τΣ)⁻¹Π + PᵀΩ⁻¹Q
	piVec := mat.NewVecDense(n, append([]float64(nil), prior...))
	var lhs, viewTerm, rhs mat.VecDense
	lhs.MulVec(&tauSigmaInv, piVec)
	viewTerm.MulVec(&ptOmegaInv, Q)
	rhs.AddVec(&lhs, &viewTerm)

	var posterior mat.VecDense
	if err := posterior.SolveVec(&M, &rhs); err != nil {
		return nil, fmt.Errorf("solve posterior system: %w", err)
	}

	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = posterior.AtVec(i)
	}
	return out, nil
}

func validateView(v contracts.View, index map[string]int) error {
	if v.Outperformer == "" || v.Underperformer == "" || v.Outperformer == v.Underperformer {
		return fmt.Errorf("%w: view must reference two distinct assets", contracts.ErrInvalidView)
	}
	if _, ok := index[v.Outperformer]; !ok {
		return fmt.Errorf("%w: unknown asset %s", contracts.ErrInvalidView, v.Outperformer)
	}
	if _, ok := index[v.Underperformer]; !ok {
		return fmt.Errorf("%w: unknown asset %s", contracts.ErrInvalidView, v.Underperformer)
	}
	if v.Confidence <= 0 || v.Confidence > 1 {
		return fmt.Errorf("%w: confidence %.4f outside (0, 1]", contracts.ErrInvalidView, v.Confidence)
	}
	return nil
}

func denseFrom(cov [][]float64) *mat.Dense {
	n := len(cov)
	d := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			d.Set(i, j, cov[i][j])
		}
	}
	return d
}
