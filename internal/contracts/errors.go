package contracts

import "errors"

// Error taxonomy for the analytics engine. Callers classify failures
// with errors.Is; every wrapping site adds the ticker or view that
// triggered it.
var (
	// ErrInsufficientHistory: an asset's usable history is shorter than
	// the minimum window required for annualization.
	ErrInsufficientHistory = errors.New("insufficient price history")

	// ErrInsufficientAssets: fewer than 2 assets survive filtering.
	ErrInsufficientAssets = errors.New("insufficient assets")

	// ErrInfeasibleConstraints: no sampled allocation satisfies the
	// constraint set. Distinct from data failures.
	ErrInfeasibleConstraints = errors.New("infeasible constraints")

	// ErrInvalidView: malformed Black-Litterman view input.
	ErrInvalidView = errors.New("invalid view")

	// ErrUpstreamData: the price-history collaborator failed or returned
	// empty data for a required ticker.
	ErrUpstreamData = errors.New("upstream data unavailable")
)
