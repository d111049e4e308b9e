// Package marketdata supplies the engine with prices, rates and
// factor series from external providers, with a Postgres mirror and
// an optional Redis cache layered on top.
package marketdata

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/wonny/folio/internal/contracts"
	"github.com/wonny/folio/pkg/httputil"
	"github.com/wonny/folio/pkg/logger"
)

// StooqProvider fetches daily price history from the Stooq CSV
// endpoint. Stooq serves US tickers with a ".us" suffix and returns
// Date,Open,High,Low,Close,Volume rows in ascending date order.
type StooqProvider struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
}

// NewStooqProvider creates a Stooq price provider.
func NewStooqProvider(httpClient *httputil.Client, log *logger.Logger, baseURL string) *StooqProvider {
	if baseURL == "" {
		baseURL = "https://stooq.com"
	}
	return &StooqProvider{
		httpClient: httpClient,
		logger:     log,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// History fetches the full daily history for a ticker.
func (p *StooqProvider) History(ctx context.Context, ticker string) (contracts.PriceSeries, error) {
	symbol := strings.ToLower(ticker)
	if !strings.Contains(symbol, ".") {
		symbol += ".us"
	}

	url := fmt.Sprintf("%s/q/d/l/?s=%s&i=d", p.baseURL, symbol)

	resp, err := p.httpClient.Get(ctx, url)
	if err != nil {
		return contracts.PriceSeries{}, fmt.Errorf("stooq request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return contracts.PriceSeries{}, fmt.Errorf("stooq returned status %d for %s", resp.StatusCode, ticker)
	}

	series, err := parseStooqCSV(resp.Body, ticker)
	if err != nil {
		return contracts.PriceSeries{}, fmt.Errorf("parse stooq response for %s: %w", ticker, err)
	}

	p.logger.WithFields(map[string]interface{}{
		"ticker": ticker,
		"count":  series.Len(),
	}).Debug("Fetched price history from Stooq")
	return series, nil
}

// parseStooqCSV parses the Stooq daily CSV body. Rows with a missing
// or non-positive close are skipped; Stooq marks halted days that way.
func parseStooqCSV(r io.Reader, ticker string) (contracts.PriceSeries, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	series := contracts.PriceSeries{Ticker: strings.ToUpper(ticker)}

	for line := 0; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return contracts.PriceSeries{}, fmt.Errorf("read csv line %d: %w", line+1, err)
		}

		// Header row, or Stooq's "No data" message body.
		if line == 0 {
			if len(record) < 5 || !strings.EqualFold(strings.TrimSpace(record[0]), "Date") {
				return contracts.PriceSeries{}, fmt.Errorf("unexpected response header: %q", strings.Join(record, ","))
			}
			continue
		}

		if len(record) < 5 {
			continue
		}

		date, err := time.Parse("2006-01-02", strings.TrimSpace(record[0]))
		if err != nil {
			continue
		}

		closePrice, err := strconv.ParseFloat(strings.TrimSpace(record[4]), 64)
		if err != nil || closePrice <= 0 {
			continue
		}

		series.Points = append(series.Points, contracts.PricePoint{
			Date:  date,
			Close: closePrice,
		})
	}

	if series.Len() == 0 {
		return contracts.PriceSeries{}, fmt.Errorf("no price rows for %s", ticker)
	}
	return series, nil
}
