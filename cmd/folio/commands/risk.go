package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/folio/internal/engine"
)

// riskCmd represents the risk command
var riskCmd = &cobra.Command{
	Use:   "risk",
	Short: "Compute VaR/CVaR, correlation and contributions",
	Long: `Runs the risk analytics bundle for an existing allocation:
historical-simulation VaR and CVaR at 95%, the asset correlation
matrix and per-asset return/risk contributions.

Example:
  go run ./cmd/folio risk --holding AAPL:Technology:0.6 --holding JNJ:Healthcare:0.4
  go run ./cmd/folio risk --holding AAPL:Technology:0.5 --holding XOM:Energy:0.5 --value 250000 --currency EUR`,
	RunE: runRisk,
}

var (
	riskHoldings []string
	riskValue    float64
	riskCurrency string
)

func init() {
	rootCmd.AddCommand(riskCmd)

	riskCmd.Flags().StringArrayVar(&riskHoldings, "holding", nil, "holding as TICKER:Sector:weight (repeatable)")
	riskCmd.Flags().Float64Var(&riskValue, "value", 0, "portfolio value (default from config)")
	riskCmd.Flags().StringVar(&riskCurrency, "currency", "", "settlement currency (default base currency)")

	riskCmd.MarkFlagRequired("holding")
}

func runRisk(cmd *cobra.Command, args []string) error {
	d, err := buildDeps()
	if err != nil {
		return err
	}
	defer d.Close()

	assets, allocation, err := parseHoldings(riskHoldings)
	if err != nil {
		return err
	}

	result, err := d.engine.Risk(cmd.Context(), engine.RiskRequest{
		Assets:         assets,
		Allocation:     allocation,
		PortfolioValue: riskValue,
		Currency:       riskCurrency,
	})
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Printf("Portfolio value : %.2f %s\n", result.VaR.PortfolioValue, result.VaR.Currency)
	fmt.Printf("VaR (%.0f%%)      : %.2f %s\n", result.VaR.Confidence*100, result.VaR.VaR, result.VaR.Currency)
	fmt.Printf("CVaR (%.0f%%)     : %.2f %s\n", result.VaR.Confidence*100, result.VaR.CVaR, result.VaR.Currency)
	fmt.Printf("Observations    : %d\n", result.VaR.Observations)

	fmt.Println("\nContributions (return / risk):")
	for _, c := range result.Contributions {
		fmt.Printf("  %-8s w=%5.2f%%  ret=%7.3f%%  risk=%7.3f%%\n",
			c.Ticker, c.Weight*100, c.ReturnContribution*100, c.RiskContribution*100)
	}

	fmt.Println("\nCorrelation:")
	fmt.Printf("  %-8s", "")
	for _, ticker := range result.Correlation.Tickers {
		fmt.Printf(" %8s", ticker)
	}
	fmt.Println()
	for i, ticker := range result.Correlation.Tickers {
		fmt.Printf("  %-8s", ticker)
		for j := range result.Correlation.Tickers {
			fmt.Printf(" %8.3f", result.Correlation.Matrix[i][j])
		}
		fmt.Println()
	}
	return nil
}
