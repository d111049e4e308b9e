package returns

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/wonny/folio/internal/contracts"
)

func priceSeries(ticker string, closes ...float64) contracts.PriceSeries {
	points := make([]contracts.PricePoint, len(closes))
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		points[i] = contracts.PricePoint{Date: start.AddDate(0, 0, i), Close: c}
	}
	return contracts.PriceSeries{Ticker: ticker, Points: points}
}

// constantGrowth builds n closes growing by a fixed daily log return.
func constantGrowth(ticker string, n int, dailyLogReturn float64) contracts.PriceSeries {
	closes := make([]float64, n)
	closes[0] = 100
	for i := 1; i < n; i++ {
		closes[i] = closes[i-1] * math.Exp(dailyLogReturn)
	}
	return priceSeries(ticker, closes...)
}

func TestFromPrices(t *testing.T) {
	s := FromPrices(priceSeries("AAPL", 100, 110, 99))

	if len(s.Values) != 2 {
		t.Fatalf("len = %d, want 2", len(s.Values))
	}
	if got, want := s.Values[0], math.Log(110.0/100.0); math.Abs(got-want) > 1e-12 {
		t.Errorf("Values[0] = %v, want %v", got, want)
	}
	if got, want := s.Values[1], math.Log(99.0/110.0); math.Abs(got-want) > 1e-12 {
		t.Errorf("Values[1] = %v, want %v", got, want)
	}
}

func TestBuild_AlignsToShortestHistory(t *testing.T) {
	series, err := Build([]contracts.PriceSeries{
		constantGrowth("LONG", 400, 0.001),
		constantGrowth("SHORT", 300, 0.002),
	}, MinObservations)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	// Shortest input has 300 closes, so 299 returns everywhere.
	for _, s := range series {
		if len(s.Values) != 299 {
			t.Errorf("%s: len = %d, want 299", s.Ticker, len(s.Values))
		}
	}
}

func TestBuild_InsufficientHistory(t *testing.T) {
	_, err := Build([]contracts.PriceSeries{
		constantGrowth("AAPL", 400, 0.001),
		constantGrowth("NEW", 50, 0.001),
	}, MinObservations)

	if !errors.Is(err, contracts.ErrInsufficientHistory) {
		t.Fatalf("error = %v, want ErrInsufficientHistory", err)
	}
}

func TestAlign_TruncatesFromFront(t *testing.T) {
	aligned := Align([]Series{
		{Ticker: "A", Values: []float64{1, 2, 3, 4, 5}},
		{Ticker: "B", Values: []float64{10, 20, 30}},
	})

	if len(aligned[0].Values) != 3 {
		t.Fatalf("len = %d, want 3", len(aligned[0].Values))
	}
	// The most recent observations must survive, the oldest go.
	if aligned[0].Values[0] != 3 || aligned[0].Values[2] != 5 {
		t.Errorf("A truncated wrong end: %v", aligned[0].Values)
	}
}

func TestPortfolio(t *testing.T) {
	series := []Series{
		{Ticker: "A", Values: []float64{0.01, 0.02}},
		{Ticker: "B", Values: []float64{-0.01, 0.04}},
	}
	got := Portfolio(series, []float64{0.5, 0.5})

	want := []float64{0.0, 0.03}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Errorf("Portfolio()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}
