package blacklitterman

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wonny/folio/internal/contracts"
)

var (
	tickers = []string{"AAPL", "MSFT", "XOM"}
	cov     = [][]float64{
		{0.040, 0.012, 0.004},
		{0.012, 0.030, 0.006},
		{0.004, 0.006, 0.050},
	}
	prior = []float64{0.08, 0.07, 0.06}
)

func TestImpliedPrior(t *testing.T) {
	weights := []float64{0.5, 0.3, 0.2}
	pi := ImpliedPrior(weights, cov, DefaultRiskAversion)

	require.Len(t, pi, 3)
	// Π_0 = λ (Σ w)_0 = 2.5 * (0.04*0.5 + 0.012*0.3 + 0.004*0.2)
	require.InDelta(t, 2.5*(0.040*0.5+0.012*0.3+0.004*0.2), pi[0], 1e-12)
}

func TestPosterior_ShiftsTowardView(t *testing.T) {
	views := []contracts.View{
		{Outperformer: "AAPL", Underperformer: "MSFT", Spread: 0.05, Confidence: 0.8},
	}

	post, err := Posterior(prior, cov, tickers, views, DefaultConfig())
	require.NoError(t, err)
	require.Len(t, post, 3)

	// The prior spread AAPL-MSFT is 0.01; the view demands 0.05, so the
	// posterior spread must move strictly toward it.
	priorSpread := prior[0] - prior[1]
	postSpread := post[0] - post[1]
	require.Greater(t, postSpread, priorSpread)
	require.LessOrEqual(t, postSpread, 0.05+1e-9)
}

func TestPosterior_HighConfidencePullsHarder(t *testing.T) {
	weak := []contracts.View{{Outperformer: "AAPL", Underperformer: "MSFT", Spread: 0.05, Confidence: 0.2}}
	strong := []contracts.View{{Outperformer: "AAPL", Underperformer: "MSFT", Spread: 0.05, Confidence: 0.95}}

	weakPost, err := Posterior(prior, cov, tickers, weak, DefaultConfig())
	require.NoError(t, err)
	strongPost, err := Posterior(prior, cov, tickers, strong, DefaultConfig())
	require.NoError(t, err)

	require.Greater(t, strongPost[0]-strongPost[1], weakPost[0]-weakPost[1])
}

func TestPosterior_NoViews(t *testing.T) {
	_, err := Posterior(prior, cov, tickers, nil, DefaultConfig())
	require.ErrorIs(t, err, contracts.ErrInvalidView)
}

func TestPosterior_InvalidViews(t *testing.T) {
	tests := []struct {
		name string
		view contracts.View
	}{
		{"same asset twice", contracts.View{Outperformer: "AAPL", Underperformer: "AAPL", Spread: 0.02, Confidence: 0.5}},
		{"unknown asset", contracts.View{Outperformer: "TSLA", Underperformer: "MSFT", Spread: 0.02, Confidence: 0.5}},
		{"zero confidence", contracts.View{Outperformer: "AAPL", Underperformer: "MSFT", Spread: 0.02, Confidence: 0}},
		{"confidence above one", contracts.View{Outperformer: "AAPL", Underperformer: "MSFT", Spread: 0.02, Confidence: 1.5}},
		{"missing underperformer", contracts.View{Outperformer: "AAPL", Spread: 0.02, Confidence: 0.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Posterior(prior, cov, tickers, []contracts.View{tt.view}, DefaultConfig())
			require.ErrorIs(t, err, contracts.ErrInvalidView)
		})
	}
}

func TestPosterior_MultipleViewsCombineLinearly(t *testing.T) {
	views := []contracts.View{
		{Outperformer: "AAPL", Underperformer: "MSFT", Spread: 0.04, Confidence: 0.7},
		{Outperformer: "XOM", Underperformer: "MSFT", Spread: 0.03, Confidence: 0.5},
	}

	post, err := Posterior(prior, cov, tickers, views, DefaultConfig())
	require.NoError(t, err)

	// Both views push against MSFT, so its posterior cannot exceed the prior.
	require.Less(t, post[1], prior[1]+1e-9)
}
