package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/folio/internal/api"
	"github.com/wonny/folio/internal/api/handlers"
	"github.com/wonny/folio/internal/scheduler"
	"github.com/wonny/folio/internal/scheduler/jobs"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the analysis API server",
	Long: `Starts the REST API server.

Endpoints:
  GET  /health                  - Health check
  POST /api/analysis/optimize   - Monte-Carlo optimization
  POST /api/analysis/risk       - VaR/CVaR, correlation, contributions
  POST /api/analysis/factors    - Three-factor regression
  POST /api/analysis/scenario   - Sector stress test
  POST /api/analysis/backtest   - Buy-and-hold replay
  GET  /api/jobs                - Scheduled job statistics
  GET  /api/jobs/{name}/history - One job's recorded runs
  POST /api/jobs/{name}/run     - Trigger a job immediately

With a watchlist configured the server also schedules periodic cache
warming for those tickers; the jobs endpoints expose and trigger it.

Example:
  go run ./cmd/folio api
  go run ./cmd/folio api --port 8089`,
	RunE: runAPIServer,
}

var apiPort string

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (default from config)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== folio API Server ===")

	d, err := buildDeps()
	if err != nil {
		return err
	}
	defer d.Close()

	if apiPort != "" {
		d.cfg.Port = apiPort
	}

	d.log.WithFields(map[string]interface{}{
		"port": d.cfg.Port,
		"env":  d.cfg.Env,
	}).Info("Initializing API server")

	// Cache warming runs alongside the server when a watchlist exists;
	// its jobs are visible and triggerable through /api/jobs.
	var sched *scheduler.Scheduler
	var jobsHandler *handlers.JobsHandler
	if len(d.cfg.Engine.Watchlist) > 0 {
		sched = scheduler.New(d.log)
		warm := jobs.NewWarmCacheJob(d.source, warmMirror(d), d.cfg.Engine.Watchlist, d.cfg.Engine.WarmSchedule, d.log)
		if err := sched.AddJob(warm); err != nil {
			return fmt.Errorf("schedule warm job: %w", err)
		}
		sched.Start()
		defer sched.Stop()
		jobsHandler = handlers.NewJobsHandler(sched, d.log)
	}

	analysisHandler := handlers.NewAnalysisHandler(d.engine, d.log)
	router := api.NewRouter(analysisHandler, jobsHandler, d.log)
	server := api.New(d.cfg, d.log, router)

	go func() {
		if err := server.Start(); err != nil {
			d.log.WithError(err).Fatal("Failed to start server")
		}
	}()

	d.log.Info("API server started successfully")
	fmt.Printf("\nServer running on http://localhost:%s\n", d.cfg.Port)
	fmt.Println("Press Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	d.log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	d.log.Info("Server stopped")
	return nil
}

// warmMirror adapts the optional Postgres mirror to the job's
// interface; a typed nil pointer must not leak into the interface.
func warmMirror(d *deps) jobs.Mirror {
	if d.mirror == nil {
		return nil
	}
	return d.mirror
}
