// Package jobs holds the scheduled maintenance work: keeping the
// watchlist's price cache and Postgres mirror fresh so interactive
// analyses rarely hit the external providers.
package jobs

import (
	"context"
	"fmt"
	"strings"

	"github.com/wonny/folio/internal/contracts"
	"github.com/wonny/folio/internal/marketdata"
	"github.com/wonny/folio/pkg/logger"
)

// Mirror persists fetched histories locally. Optional; a nil mirror
// warms only the cache.
type Mirror interface {
	Save(ctx context.Context, series contracts.PriceSeries) error
}

// WarmCacheJob refreshes cached price histories for the configured
// watchlist and writes them through to the Postgres mirror.
type WarmCacheJob struct {
	source    *marketdata.CachedSource
	mirror    Mirror
	watchlist []string
	schedule  string
	logger    *logger.Logger
}

// NewWarmCacheJob creates the cache warming job. schedule is a cron
// expression with seconds, e.g. "0 30 6 * * 1-5".
func NewWarmCacheJob(source *marketdata.CachedSource, mirror Mirror, watchlist []string, schedule string, log *logger.Logger) *WarmCacheJob {
	return &WarmCacheJob{
		source:    source,
		mirror:    mirror,
		watchlist: watchlist,
		schedule:  schedule,
		logger:    log,
	}
}

// Name returns the job name
func (j *WarmCacheJob) Name() string {
	return "warm_price_cache"
}

// Schedule returns the cron schedule expression
func (j *WarmCacheJob) Schedule() string {
	return j.schedule
}

// Run refreshes every watchlist entry. One ticker failing does not
// stop the rest; the job fails only if every refresh failed.
func (j *WarmCacheJob) Run(ctx context.Context) error {
	if len(j.watchlist) == 0 {
		j.logger.Debug("Watchlist empty, nothing to warm")
		return nil
	}

	var failed []string
	for _, ticker := range j.watchlist {
		if err := ctx.Err(); err != nil {
			return err
		}

		series, err := j.source.Refresh(ctx, ticker)
		if err != nil {
			failed = append(failed, ticker)
			j.logger.WithError(err).WithField("ticker", ticker).Warn("Cache warm failed for ticker")
			continue
		}

		if j.mirror != nil {
			if err := j.mirror.Save(ctx, series); err != nil {
				j.logger.WithError(err).WithField("ticker", ticker).Warn("Mirror write failed")
			}
		}
	}

	j.logger.WithFields(map[string]interface{}{
		"warmed": len(j.watchlist) - len(failed),
		"failed": len(failed),
	}).Info("Cache warm completed")

	if len(failed) == len(j.watchlist) {
		return fmt.Errorf("all refreshes failed: %s", strings.Join(failed, ", "))
	}
	return nil
}
