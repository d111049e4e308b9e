package marketdata

import (
	"context"
	"fmt"
	"strings"

	"github.com/wonny/folio/internal/contracts"
	"github.com/wonny/folio/pkg/logger"
)

// PriceProvider is one source of price history. Providers are tried
// in order by Chain; any error moves on to the next one.
type PriceProvider interface {
	History(ctx context.Context, ticker string) (contracts.PriceSeries, error)
}

// Chain tries providers in order and returns the first success.
// Exhausting every provider is an upstream-data failure.
type Chain struct {
	providers []PriceProvider
	logger    *logger.Logger
}

// NewChain builds a fallback chain over the given providers.
func NewChain(log *logger.Logger, providers ...PriceProvider) *Chain {
	return &Chain{providers: providers, logger: log}
}

// History returns the first provider's successful result.
func (c *Chain) History(ctx context.Context, ticker string) (contracts.PriceSeries, error) {
	if len(c.providers) == 0 {
		return contracts.PriceSeries{}, fmt.Errorf("no price providers configured: %w", contracts.ErrUpstreamData)
	}

	var reasons []string
	for i, provider := range c.providers {
		if err := ctx.Err(); err != nil {
			return contracts.PriceSeries{}, err
		}

		series, err := provider.History(ctx, ticker)
		if err == nil {
			return series, nil
		}

		reasons = append(reasons, err.Error())
		c.logger.WithFields(map[string]interface{}{
			"ticker":   ticker,
			"provider": i,
			"error":    err.Error(),
		}).Warn("Price provider failed, trying next")
	}

	return contracts.PriceSeries{}, fmt.Errorf("all providers failed for %s (%s): %w",
		ticker, strings.Join(reasons, "; "), contracts.ErrUpstreamData)
}
