package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "folio",
	Short: "folio - portfolio optimization and risk analytics engine",
	Long: `folio CLI

Monte-Carlo mean-variance optimization, risk analytics and
buy-and-hold backtesting over daily price history.

Usage:
  go run ./cmd/folio [command]

Examples:
  go run ./cmd/folio api
  go run ./cmd/folio optimize --asset AAPL:Technology --asset MSFT:Technology --asset JNJ:Healthcare
  go run ./cmd/folio risk --holding AAPL:Technology:0.6 --holding JNJ:Healthcare:0.4
  go run ./cmd/folio backtest --holding AAPL:Technology:0.5 --holding JNJ:Healthcare:0.5 --years 3
  go run ./cmd/folio warm`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
