package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/wonny/folio/pkg/httputil"
	"github.com/wonny/folio/pkg/logger"
	"github.com/wonny/folio/pkg/redis"
)

// RatesClient serves FX conversion rates from a frankfurter-style
// JSON API and the annualized risk-free rate scraped from a treasury
// yields page. Both are cached; the risk-free rate additionally falls
// back to a configured constant when the page is unreachable, with
// the substitution reported so results can flag the degraded rate.
type RatesClient struct {
	httpClient       *httputil.Client
	logger           *logger.Logger
	cache            *redis.Cache
	fxBaseURL        string
	ratesPageURL     string
	fallbackRiskFree float64
}

// NewRatesClient creates the rates collaborator.
func NewRatesClient(httpClient *httputil.Client, log *logger.Logger, cache *redis.Cache,
	fxBaseURL, ratesPageURL string, fallbackRiskFree float64) *RatesClient {
	return &RatesClient{
		httpClient:       httpClient,
		logger:           log,
		cache:            cache,
		fxBaseURL:        strings.TrimRight(fxBaseURL, "/"),
		ratesPageURL:     ratesPageURL,
		fallbackRiskFree: fallbackRiskFree,
	}
}

// fxResponse mirrors the frankfurter API shape.
type fxResponse struct {
	Base  string             `json:"base"`
	Rates map[string]float64 `json:"rates"`
}

// FxRate returns the spot conversion rate from one currency to
// another. Identical currencies short-circuit to 1.
func (c *RatesClient) FxRate(ctx context.Context, from, to string) (float64, error) {
	from = strings.ToUpper(from)
	to = strings.ToUpper(to)
	if from == to {
		return 1, nil
	}

	var rate float64
	err := c.cache.GetOrSet(ctx, redis.FxRateKey(from, to), &rate, redis.TTLShort, func() (interface{}, error) {
		return c.fetchFxRate(ctx, from, to)
	})
	if err != nil {
		return 0, err
	}
	return rate, nil
}

func (c *RatesClient) fetchFxRate(ctx context.Context, from, to string) (float64, error) {
	url := fmt.Sprintf("%s/latest?from=%s&to=%s", c.fxBaseURL, from, to)

	resp, err := c.httpClient.Get(ctx, url)
	if err != nil {
		return 0, fmt.Errorf("fx request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("fx API returned status %d", resp.StatusCode)
	}

	var parsed fxResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return 0, fmt.Errorf("decode fx response: %w", err)
	}

	rate, ok := parsed.Rates[to]
	if !ok || rate <= 0 {
		return 0, fmt.Errorf("fx response missing rate %s/%s", from, to)
	}

	c.logger.WithFields(map[string]interface{}{
		"from": from,
		"to":   to,
		"rate": rate,
	}).Debug("Fetched FX rate")
	return rate, nil
}

// RiskFreeRate returns the current annualized risk-free rate as a
// decimal. A scrape failure substitutes the configured fallback and
// reports the substitution through the second return value, so
// callers can surface the degraded rate instead of presenting a
// stale constant as live data. Context cancellation still fails.
func (c *RatesClient) RiskFreeRate(ctx context.Context) (float64, bool, error) {
	var rate float64
	err := c.cache.GetOrSet(ctx, redis.RiskFreeKey("USD"), &rate, redis.TTLMedium, func() (interface{}, error) {
		return c.scrapeRiskFree(ctx)
	})
	if err != nil {
		if ctx.Err() != nil {
			return 0, false, ctx.Err()
		}
		c.logger.WithFields(map[string]interface{}{
			"error":    err.Error(),
			"fallback": c.fallbackRiskFree,
		}).Warn("Risk-free scrape failed, using fallback rate")
		return c.fallbackRiskFree, true, nil
	}
	return rate, false, nil
}

func (c *RatesClient) scrapeRiskFree(ctx context.Context) (float64, error) {
	if c.ratesPageURL == "" {
		return 0, fmt.Errorf("no rates page configured")
	}

	resp, err := c.httpClient.Get(ctx, c.ratesPageURL)
	if err != nil {
		return 0, fmt.Errorf("rates page request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("rates page returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("read rates page: %w", err)
	}

	rate, err := parseRiskFreeHTML(string(body))
	if err != nil {
		return 0, err
	}

	c.logger.WithField("rate", rate).Debug("Scraped risk-free rate")
	return rate, nil
}

// parseRiskFreeHTML extracts the 3-month bill yield from the yields
// table. Expected row shape: a label cell containing "3 Month"
// followed by a percent cell like "4.52%".
func parseRiskFreeHTML(html string) (float64, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return 0, fmt.Errorf("parse rates page: %w", err)
	}

	var rate float64
	var found bool

	doc.Find("table tr").EachWithBreak(func(i int, row *goquery.Selection) bool {
		cells := row.Find("td")
		if cells.Length() < 2 {
			return true
		}

		label := strings.TrimSpace(cells.Eq(0).Text())
		if !strings.Contains(strings.ToLower(label), "3 month") {
			return true
		}

		text := strings.TrimSpace(cells.Eq(1).Text())
		text = strings.TrimSuffix(text, "%")
		text = strings.ReplaceAll(text, ",", "")

		percent, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return true
		}

		rate = percent / 100
		found = true
		return false
	})

	if !found {
		return 0, fmt.Errorf("3-month yield not found in rates page")
	}
	return rate, nil
}
