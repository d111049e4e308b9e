package commands

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/wonny/folio/internal/contracts"
	"github.com/wonny/folio/internal/engine"
)

// optimizeCmd represents the optimize command
var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Run Monte-Carlo mean-variance optimization",
	Long: `Finds the best-Sharpe allocation for a candidate asset set by
random simplex sampling, optionally constrained and blended with
relative return views.

Example:
  go run ./cmd/folio optimize --asset AAPL:Technology --asset MSFT:Technology --asset JNJ:Healthcare
  go run ./cmd/folio optimize --asset AAPL:Technology --asset XOM:Energy --max-weight 0.4
  go run ./cmd/folio optimize --asset AAPL:Technology --asset XOM:Energy --view "AAPL>XOM:0.02:0.6"
  go run ./cmd/folio optimize --asset AAPL:Technology --asset XOM:Energy --comprehensive --seed 42`,
	RunE: runOptimize,
}

var (
	optimizeAssets        []string
	optimizeViews         []string
	optimizeMaxWeight     float64
	optimizeMaxSector     float64
	optimizeComprehensive bool
	optimizeSeed          int64
)

func init() {
	rootCmd.AddCommand(optimizeCmd)

	optimizeCmd.Flags().StringArrayVar(&optimizeAssets, "asset", nil, "candidate asset as TICKER:Sector (repeatable, min 2)")
	optimizeCmd.Flags().StringArrayVar(&optimizeViews, "view", nil, `relative view as "OUT>UNDER:spread:confidence" (repeatable)`)
	optimizeCmd.Flags().Float64Var(&optimizeMaxWeight, "max-weight", 0, "per-asset weight cap (0 = none)")
	optimizeCmd.Flags().Float64Var(&optimizeMaxSector, "max-sector", 0, "per-sector weight cap (0 = none)")
	optimizeCmd.Flags().BoolVar(&optimizeComprehensive, "comprehensive", false, "double the iteration budget")
	optimizeCmd.Flags().Int64Var(&optimizeSeed, "seed", 0, "random seed (0 = fresh)")

	optimizeCmd.MarkFlagRequired("asset")
}

func runOptimize(cmd *cobra.Command, args []string) error {
	d, err := buildDeps()
	if err != nil {
		return err
	}
	defer d.Close()

	assets := make([]contracts.Asset, 0, len(optimizeAssets))
	for _, value := range optimizeAssets {
		asset, err := parseAsset(value)
		if err != nil {
			return err
		}
		assets = append(assets, asset)
	}

	views := make([]contracts.View, 0, len(optimizeViews))
	for _, value := range optimizeViews {
		view, err := parseView(value)
		if err != nil {
			return err
		}
		views = append(views, view)
	}

	result, err := d.engine.Optimize(cmd.Context(), engine.OptimizeRequest{
		Assets: assets,
		Constraints: contracts.ConstraintSet{
			MaxAssetWeight:  optimizeMaxWeight,
			MaxSectorWeight: optimizeMaxSector,
		},
		Views:         views,
		Comprehensive: optimizeComprehensive,
		Seed:          optimizeSeed,
	})
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Printf("Run %s: %d iterations, %d feasible\n", result.RunID, result.Iterations, result.Accepted)
	fmt.Println("---------------------------------------------")

	tickers := make([]string, 0, len(result.Weights))
	for ticker := range result.Weights {
		tickers = append(tickers, ticker)
	}
	sort.Strings(tickers)
	for _, ticker := range tickers {
		fmt.Printf("  %-8s %6.2f%%\n", ticker, result.Weights[ticker]*100)
	}

	fmt.Println("---------------------------------------------")
	fmt.Printf("  Expected return : %7.2f%%\n", result.Best.Return*100)
	fmt.Printf("  Volatility      : %7.2f%%\n", result.Best.Volatility*100)
	fmt.Printf("  Sharpe ratio    : %7.3f\n", result.Best.Sharpe)
	if result.RiskFreeFallback {
		fmt.Printf("  Risk-free rate  : %7.2f%% (fallback, live source unavailable)\n", result.RiskFreeRate*100)
	} else {
		fmt.Printf("  Risk-free rate  : %7.2f%%\n", result.RiskFreeRate*100)
	}

	for _, excluded := range result.Excluded {
		fmt.Printf("  excluded %s: %s\n", excluded.Ticker, excluded.Reason)
	}
	return nil
}
