package redis

import (
	"context"
	"testing"

	"github.com/wonny/folio/pkg/config"
)

func disabledClient(t *testing.T) *Client {
	t.Helper()

	cfg := &config.Config{
		Redis: config.RedisConfig{Enabled: false},
	}
	client, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return client
}

func TestClient_Disabled(t *testing.T) {
	client := disabledClient(t)

	if client.Enabled() {
		t.Error("expected client to report disabled")
	}
	if err := client.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestCache_DisabledIsNoop(t *testing.T) {
	cache := NewCache(disabledClient(t), "folio")
	ctx := context.Background()

	var result string
	found, err := cache.Get(ctx, "key", &result)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if found {
		t.Error("expected cache miss when Redis disabled")
	}

	if err := cache.Set(ctx, "key", "value", TTLShort); err != nil {
		t.Errorf("Set() error = %v", err)
	}
	if err := cache.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete() error = %v", err)
	}
}

func TestCache_GetOrSetDisabledCallsFn(t *testing.T) {
	cache := NewCache(disabledClient(t), "folio")

	var result string
	err := cache.GetOrSet(context.Background(), "key", &result, TTLShort, func() (interface{}, error) {
		return "computed", nil
	})
	if err != nil {
		t.Fatalf("GetOrSet() error = %v", err)
	}
	if result != "computed" {
		t.Errorf("got %q, want %q", result, "computed")
	}
}

func TestCacheKeys(t *testing.T) {
	tests := []struct {
		name     string
		fn       func() string
		expected string
	}{
		{
			name:     "PriceHistoryKey",
			fn:       func() string { return PriceHistoryKey("aapl", 5) },
			expected: "prices:AAPL:5y",
		},
		{
			name:     "FxRateKey",
			fn:       func() string { return FxRateKey("usd", "eur") },
			expected: "fx:USD:EUR",
		},
		{
			name:     "RiskFreeKey",
			fn:       func() string { return RiskFreeKey("usd") },
			expected: "riskfree:USD",
		},
		{
			name:     "FactorSeriesKey",
			fn:       func() string { return FactorSeriesKey(3) },
			expected: "factors:ff3:3y",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fn(); got != tt.expected {
				t.Errorf("got %q, want %q", got, tt.expected)
			}
		})
	}
}
