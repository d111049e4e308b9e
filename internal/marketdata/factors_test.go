package marketdata

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/wonny/folio/pkg/httputil"
	"github.com/wonny/folio/pkg/logger"
)

const factorBody = `This file was created using daily factor returns.

,Mkt-RF,SMB,HML,RF
20240102,-0.52,0.21,-0.10,0.021
20240103,0.15,-0.08,0.33,0.021
20240104,1.02,0.14,0.05,0.021
`

func TestFactorClient_Factors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(factorBody))
	}))
	defer server.Close()

	client := NewFactorClient(httputil.New(logger.Nop()), logger.Nop(), noopCache(t), server.URL)

	series, err := client.Factors(context.Background())
	if err != nil {
		t.Fatalf("Factors() error = %v", err)
	}
	if series.Len() != 3 {
		t.Fatalf("expected 3 observations, got %d", series.Len())
	}

	// Percent values are converted to decimals.
	if math.Abs(series.MktRF[0]-(-0.0052)) > 1e-12 {
		t.Errorf("MktRF[0] = %v, want -0.0052", series.MktRF[0])
	}
	if math.Abs(series.RF[2]-0.00021) > 1e-12 {
		t.Errorf("RF[2] = %v, want 0.00021", series.RF[2])
	}
}

func TestFactorClient_NoURL(t *testing.T) {
	client := NewFactorClient(httputil.New(logger.Nop()), logger.Nop(), noopCache(t), "")

	if _, err := client.Factors(context.Background()); err == nil {
		t.Error("expected error without a configured URL")
	}
}

func TestParseFactorCSV_SkipsProse(t *testing.T) {
	body := `Copyright notice line
Annual factors: January-December

20240102,-0.52,0.21,-0.10,0.021
garbage,x,y,z,w
`
	series, err := parseFactorCSV(strings.NewReader(body))
	if err != nil {
		t.Fatalf("parseFactorCSV() error = %v", err)
	}
	if series.Len() != 1 {
		t.Errorf("expected 1 observation, got %d", series.Len())
	}
}

func TestParseFactorCSV_Empty(t *testing.T) {
	if _, err := parseFactorCSV(strings.NewReader("no rows here\n")); err == nil {
		t.Error("expected error for empty series")
	}
}
