package marketdata

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/folio/internal/contracts"
)

// PostgresProvider serves price history from the local daily_prices
// mirror. It doubles as the sink the cache warmer writes fetched
// histories into, so repeated analyses survive provider outages.
type PostgresProvider struct {
	pool *pgxpool.Pool
}

// NewPostgresProvider creates a provider backed by the prices mirror.
func NewPostgresProvider(pool *pgxpool.Pool) *PostgresProvider {
	return &PostgresProvider{pool: pool}
}

// History returns the stored daily closes for a ticker in ascending
// date order.
func (p *PostgresProvider) History(ctx context.Context, ticker string) (contracts.PriceSeries, error) {
	query := `
		SELECT trade_date, close_price
		FROM market.daily_prices
		WHERE ticker = $1
		ORDER BY trade_date ASC
	`

	rows, err := p.pool.Query(ctx, query, ticker)
	if err != nil {
		return contracts.PriceSeries{}, fmt.Errorf("query daily_prices for %s: %w", ticker, err)
	}
	defer rows.Close()

	series := contracts.PriceSeries{Ticker: ticker}
	for rows.Next() {
		var point contracts.PricePoint
		if err := rows.Scan(&point.Date, &point.Close); err != nil {
			return contracts.PriceSeries{}, fmt.Errorf("scan daily_prices row: %w", err)
		}
		series.Points = append(series.Points, point)
	}
	if err := rows.Err(); err != nil {
		return contracts.PriceSeries{}, fmt.Errorf("iterate daily_prices rows: %w", err)
	}

	if series.Len() == 0 {
		return contracts.PriceSeries{}, fmt.Errorf("no stored prices for %s", ticker)
	}
	return series, nil
}

// Save upserts a fetched history into the mirror.
func (p *PostgresProvider) Save(ctx context.Context, series contracts.PriceSeries) error {
	query := `
		INSERT INTO market.daily_prices (ticker, trade_date, close_price)
		VALUES ($1, $2, $3)
		ON CONFLICT (ticker, trade_date) DO UPDATE SET
			close_price = EXCLUDED.close_price
	`

	for _, point := range series.Points {
		if _, err := p.pool.Exec(ctx, query, series.Ticker, point.Date, point.Close); err != nil {
			return fmt.Errorf("upsert price %s %s: %w",
				series.Ticker, point.Date.Format("2006-01-02"), err)
		}
	}
	return nil
}
