package marketdata

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/wonny/folio/internal/engine/factors"
	"github.com/wonny/folio/pkg/httputil"
	"github.com/wonny/folio/pkg/logger"
	"github.com/wonny/folio/pkg/redis"
)

// FactorClient fetches the daily three-factor series published as CSV
// in the Fama-French research format: Date,Mkt-RF,SMB,HML,RF with
// values in percent.
type FactorClient struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	cache      *redis.Cache
	url        string
}

// NewFactorClient creates the factor series collaborator.
func NewFactorClient(httpClient *httputil.Client, log *logger.Logger, cache *redis.Cache, url string) *FactorClient {
	return &FactorClient{httpClient: httpClient, logger: log, cache: cache, url: url}
}

// Factors returns the full published daily factor history.
func (c *FactorClient) Factors(ctx context.Context) (factors.Series, error) {
	var series factors.Series
	err := c.cache.GetOrSet(ctx, redis.FactorSeriesKey(CacheYears), &series, redis.TTLDaily, func() (interface{}, error) {
		return c.fetchFactors(ctx)
	})
	if err != nil {
		return factors.Series{}, err
	}
	return series, nil
}

func (c *FactorClient) fetchFactors(ctx context.Context) (factors.Series, error) {
	if c.url == "" {
		return factors.Series{}, fmt.Errorf("no factor series URL configured")
	}

	resp, err := c.httpClient.Get(ctx, c.url)
	if err != nil {
		return factors.Series{}, fmt.Errorf("factor request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return factors.Series{}, fmt.Errorf("factor source returned status %d", resp.StatusCode)
	}

	series, err := parseFactorCSV(resp.Body)
	if err != nil {
		return factors.Series{}, fmt.Errorf("parse factor csv: %w", err)
	}

	c.logger.WithField("count", series.Len()).Debug("Fetched factor series")
	return series, nil
}

// parseFactorCSV reads the research CSV. Header and copyright lines
// are skipped by probing whether the first field parses as a date
// stamp; percent values are converted to decimals.
func parseFactorCSV(r io.Reader) (factors.Series, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var series factors.Series

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return factors.Series{}, err
		}
		if len(record) < 5 {
			continue
		}

		// Date stamps are YYYYMMDD; anything else is prose or header.
		stamp := strings.TrimSpace(record[0])
		if len(stamp) != 8 {
			continue
		}
		if _, err := strconv.Atoi(stamp); err != nil {
			continue
		}

		mktRF, err1 := strconv.ParseFloat(strings.TrimSpace(record[1]), 64)
		smb, err2 := strconv.ParseFloat(strings.TrimSpace(record[2]), 64)
		hml, err3 := strconv.ParseFloat(strings.TrimSpace(record[3]), 64)
		rf, err4 := strconv.ParseFloat(strings.TrimSpace(record[4]), 64)
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
			continue
		}

		series.MktRF = append(series.MktRF, mktRF/100)
		series.SMB = append(series.SMB, smb/100)
		series.HML = append(series.HML, hml/100)
		series.RF = append(series.RF, rf/100)
	}

	if series.Len() == 0 {
		return factors.Series{}, fmt.Errorf("no factor rows found")
	}
	return series, nil
}
