package contracts

import (
	"testing"
	"time"
)

func TestAllocation_Validate(t *testing.T) {
	tests := []struct {
		name    string
		alloc   Allocation
		wantErr bool
	}{
		{"valid", Allocation{"AAPL": 0.6, "MSFT": 0.4}, false},
		{"within tolerance", Allocation{"AAPL": 0.6004, "MSFT": 0.4}, false},
		{"sum too low", Allocation{"AAPL": 0.5, "MSFT": 0.4}, true},
		{"negative weight", Allocation{"AAPL": 1.2, "MSFT": -0.2}, true},
		{"empty", Allocation{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.alloc.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestAllocation_TickersDeterministic(t *testing.T) {
	alloc := Allocation{"MSFT": 0.4, "AAPL": 0.3, "GOOG": 0.3}

	tickers := alloc.Tickers()
	want := []string{"AAPL", "GOOG", "MSFT"}
	for i, ticker := range want {
		if tickers[i] != ticker {
			t.Fatalf("Tickers()[%d] = %s, want %s", i, tickers[i], ticker)
		}
	}

	weights := alloc.Weights()
	if weights[0] != 0.3 || weights[2] != 0.4 {
		t.Errorf("Weights() = %v, not aligned with sorted tickers", weights)
	}
}

func TestConstraintSet_Validate(t *testing.T) {
	if err := (ConstraintSet{}).Validate(); err != nil {
		t.Errorf("zero value should be unconstrained, got %v", err)
	}
	if err := (ConstraintSet{MaxAssetWeight: 0.3, MaxSectorWeight: 0.5}).Validate(); err != nil {
		t.Errorf("valid constraints rejected: %v", err)
	}
	if err := (ConstraintSet{MaxAssetWeight: 1.5}).Validate(); err == nil {
		t.Error("expected error for max asset weight > 1")
	}
	if err := (ConstraintSet{MaxSectorWeight: -0.1}).Validate(); err == nil {
		t.Error("expected error for negative sector weight")
	}
}

func TestPriceSeries_Validate(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC) }

	ok := PriceSeries{Ticker: "AAPL", Points: []PricePoint{
		{Date: day(1), Close: 100}, {Date: day(2), Close: 101},
	}}
	if err := ok.Validate(); err != nil {
		t.Errorf("valid series rejected: %v", err)
	}

	dup := PriceSeries{Ticker: "AAPL", Points: []PricePoint{
		{Date: day(1), Close: 100}, {Date: day(1), Close: 101},
	}}
	if err := dup.Validate(); err == nil {
		t.Error("expected error for duplicate dates")
	}

	neg := PriceSeries{Ticker: "AAPL", Points: []PricePoint{{Date: day(1), Close: -5}}}
	if err := neg.Validate(); err == nil {
		t.Error("expected error for non-positive close")
	}
}
