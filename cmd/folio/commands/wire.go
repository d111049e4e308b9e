package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/wonny/folio/internal/contracts"
	"github.com/wonny/folio/internal/engine"
	"github.com/wonny/folio/internal/marketdata"
	"github.com/wonny/folio/pkg/config"
	"github.com/wonny/folio/pkg/database"
	"github.com/wonny/folio/pkg/httputil"
	"github.com/wonny/folio/pkg/logger"
	"github.com/wonny/folio/pkg/redis"
)

// deps bundles the wired collaborators every command needs. A
// database is optional; without DATABASE_URL the provider chain runs
// on Stooq alone and nothing is mirrored.
type deps struct {
	cfg    *config.Config
	log    *logger.Logger
	engine *engine.Service
	source *marketdata.CachedSource
	mirror *marketdata.PostgresProvider

	db          *database.DB
	redisClient *redis.Client
}

// buildDeps loads config and assembles the engine with its provider
// chain, cache and rates/factor collaborators.
func buildDeps() (*deps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg)

	httpClient := httputil.New(log).WithRateLimit(cfg.MarketData.RequestsPerSecond)

	redisClient, err := redis.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	cache := redis.NewCache(redisClient, "folio")

	providers := []marketdata.PriceProvider{
		marketdata.NewStooqProvider(httpClient, log, cfg.MarketData.StooqBaseURL),
	}

	d := &deps{cfg: cfg, log: log, redisClient: redisClient}

	if cfg.Database.URL != "" {
		db, err := database.New(cfg)
		if err != nil {
			redisClient.Close()
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		d.db = db
		d.mirror = marketdata.NewPostgresProvider(db.Pool)
		providers = append(providers, d.mirror)
	}

	chain := marketdata.NewChain(log, providers...)
	d.source = marketdata.NewCachedSource(chain, cache, cfg.MarketData.CacheTTL)

	rates := marketdata.NewRatesClient(httpClient, log, cache,
		cfg.MarketData.FxBaseURL, cfg.MarketData.RatesPageURL, cfg.MarketData.FallbackRiskFreeRate)
	factorClient := marketdata.NewFactorClient(httpClient, log, cache, cfg.MarketData.FactorsURL)

	d.engine = engine.New(d.source, rates, factorClient, engine.Options{
		MinObservations: cfg.Engine.MinObservations,
		Notional:        cfg.Engine.Notional,
		BaseCurrency:    cfg.Engine.BaseCurrency,
	}, log)

	return d, nil
}

// Close releases the database and Redis connections.
func (d *deps) Close() {
	if d.db != nil {
		d.db.Close()
	}
	if d.redisClient != nil {
		d.redisClient.Close()
	}
}

// parseAsset parses "TICKER:Sector" flag values.
func parseAsset(value string) (contracts.Asset, error) {
	parts := strings.Split(value, ":")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return contracts.Asset{}, fmt.Errorf("invalid asset %q, want TICKER:Sector", value)
	}
	return contracts.Asset{
		Ticker: strings.ToUpper(strings.TrimSpace(parts[0])),
		Sector: strings.TrimSpace(parts[1]),
	}, nil
}

// parseHolding parses "TICKER:Sector:weight" flag values.
func parseHolding(value string) (contracts.Asset, float64, error) {
	parts := strings.Split(value, ":")
	if len(parts) != 3 {
		return contracts.Asset{}, 0, fmt.Errorf("invalid holding %q, want TICKER:Sector:weight", value)
	}

	asset, err := parseAsset(parts[0] + ":" + parts[1])
	if err != nil {
		return contracts.Asset{}, 0, err
	}

	weight, err := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
	if err != nil {
		return contracts.Asset{}, 0, fmt.Errorf("invalid weight in %q: %w", value, err)
	}
	return asset, weight, nil
}

// parseHoldings parses repeated holding flags into the asset list and
// allocation the engine expects.
func parseHoldings(values []string) ([]contracts.Asset, contracts.Allocation, error) {
	assets := make([]contracts.Asset, 0, len(values))
	allocation := make(contracts.Allocation, len(values))

	for _, value := range values {
		asset, weight, err := parseHolding(value)
		if err != nil {
			return nil, nil, err
		}
		assets = append(assets, asset)
		allocation[asset.Ticker] = weight
	}

	if err := allocation.Validate(); err != nil {
		return nil, nil, err
	}
	return assets, allocation, nil
}

// parseView parses "OUT>UNDER:spread:confidence" flag values, e.g.
// "AAPL>XOM:0.02:0.6" for AAPL outperforming XOM by 2% at 60%.
func parseView(value string) (contracts.View, error) {
	parts := strings.Split(value, ":")
	if len(parts) != 3 {
		return contracts.View{}, fmt.Errorf("invalid view %q, want OUT>UNDER:spread:confidence", value)
	}

	pair := strings.Split(parts[0], ">")
	if len(pair) != 2 || pair[0] == "" || pair[1] == "" {
		return contracts.View{}, fmt.Errorf("invalid view pair %q, want OUT>UNDER", parts[0])
	}

	spread, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return contracts.View{}, fmt.Errorf("invalid view spread %q: %w", parts[1], err)
	}
	confidence, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return contracts.View{}, fmt.Errorf("invalid view confidence %q: %w", parts[2], err)
	}

	return contracts.View{
		Outperformer:   strings.ToUpper(strings.TrimSpace(pair[0])),
		Underperformer: strings.ToUpper(strings.TrimSpace(pair[1])),
		Spread:         spread,
		Confidence:     confidence,
	}, nil
}
