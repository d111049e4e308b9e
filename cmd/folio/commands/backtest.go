package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/folio/internal/contracts"
	"github.com/wonny/folio/internal/engine"
)

// backtestCmd represents the backtest command
var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Replay an allocation buy-and-hold against a benchmark",
	Long: `Replays a fixed allocation over the trailing window with no
rebalancing and compares it to a benchmark ticker.

Example:
  go run ./cmd/folio backtest --holding AAPL:Technology:0.5 --holding JNJ:Healthcare:0.5
  go run ./cmd/folio backtest --holding AAPL:Technology:0.5 --holding JNJ:Healthcare:0.5 --years 5 --benchmark SPY`,
	RunE: runBacktestCmd,
}

var (
	backtestHoldings  []string
	backtestYears     int
	backtestBenchmark string
)

func init() {
	rootCmd.AddCommand(backtestCmd)

	backtestCmd.Flags().StringArrayVar(&backtestHoldings, "holding", nil, "holding as TICKER:Sector:weight (repeatable)")
	backtestCmd.Flags().IntVar(&backtestYears, "years", 3, "backtest window in years (1, 3 or 5)")
	backtestCmd.Flags().StringVar(&backtestBenchmark, "benchmark", "SPY", "benchmark ticker")

	backtestCmd.MarkFlagRequired("holding")
}

func runBacktestCmd(cmd *cobra.Command, args []string) error {
	d, err := buildDeps()
	if err != nil {
		return err
	}
	defer d.Close()

	assets, allocation, err := parseHoldings(backtestHoldings)
	if err != nil {
		return err
	}

	result, err := d.engine.Backtest(cmd.Context(), engine.BacktestRequest{
		Assets:     assets,
		Allocation: allocation,
		Timeframe:  contracts.Timeframe(backtestYears),
		Benchmark:  backtestBenchmark,
	})
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Printf("Run %s: %dY buy-and-hold vs %s\n", result.RunID, int(result.Timeframe), result.BenchmarkTicker)
	fmt.Println("---------------------------------------------")
	fmt.Printf("  Initial value    : %12.2f\n", result.InitialValue)
	fmt.Printf("  Final value      : %12.2f\n", result.FinalValue)
	fmt.Printf("  Total return     : %11.2f%%\n", result.TotalReturn*100)
	fmt.Printf("  Benchmark return : %11.2f%%\n", result.BenchmarkReturn*100)
	fmt.Printf("  Max drawdown     : %11.2f%%\n", result.MaxDrawdown*100)
	return nil
}
