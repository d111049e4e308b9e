package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/folio/internal/scheduler/jobs"
)

// warmCmd represents the warm command
var warmCmd = &cobra.Command{
	Use:   "warm",
	Short: "Warm the price cache for the configured watchlist",
	Long: `Refreshes every watchlist ticker's price history into the cache
and, with a database configured, the local Postgres mirror. The same
work the API server schedules periodically, run once.

Example:
  go run ./cmd/folio warm`,
	RunE: runWarm,
}

func init() {
	rootCmd.AddCommand(warmCmd)
}

func runWarm(cmd *cobra.Command, args []string) error {
	d, err := buildDeps()
	if err != nil {
		return err
	}
	defer d.Close()

	if len(d.cfg.Engine.Watchlist) == 0 {
		fmt.Println("Watchlist is empty, nothing to warm (set ENGINE_WATCHLIST)")
		return nil
	}

	job := jobs.NewWarmCacheJob(d.source, warmMirror(d), d.cfg.Engine.Watchlist, d.cfg.Engine.WarmSchedule, d.log)
	if err := job.Run(cmd.Context()); err != nil {
		return err
	}

	fmt.Printf("Warmed %d tickers\n", len(d.cfg.Engine.Watchlist))
	return nil
}
