package valuation

import (
	"math"
	"testing"
)

const tolerance = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) <= tolerance
}

// --- Conversion tests ---

func TestToAsset_InvalidPrice(t *testing.T) {
	for _, price := range []float64{0, -1, -150} {
		if _, err := ToAsset(100, price); err != ErrInvalidPrice {
			t.Errorf("price=%v: expected ErrInvalidPrice, got %v", price, err)
		}
	}
}

func TestToAsset_DividesByPrice(t *testing.T) {
	qty, err := ToAsset(100, 150)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(qty, 100.0/150.0) {
		t.Errorf("expected %v, got %v", 100.0/150.0, qty)
	}
}

func TestToAsset_RoundTrip(t *testing.T) {
	tests := []struct {
		fiat, price float64
	}{
		{100, 150},
		{1000, 2000},
		{0.01, 0.01},
		{12345.67, 3.21},
	}
	for _, tt := range tests {
		qty, err := ToAsset(tt.fiat, tt.price)
		if err != nil {
			t.Fatalf("fiat=%v price=%v: unexpected error: %v", tt.fiat, tt.price, err)
		}
		back := ToFiat(qty, tt.price)
		if math.Abs(back-tt.fiat) > 1e-6 {
			t.Errorf("round trip fiat=%v price=%v: got %v", tt.fiat, tt.price, back)
		}
	}
}

// --- Multiplier tests ---

func TestMultiplier_Growth(t *testing.T) {
	tests := []struct {
		elapsed, want float64
	}{
		{0, 1.0},
		{1, 1.01},
		{50, 1.5},
		{100, 2.0},
	}
	for _, tt := range tests {
		if got := Multiplier(tt.elapsed); !almostEqual(got, tt.want) {
			t.Errorf("Multiplier(%v) = %v, want %v", tt.elapsed, got, tt.want)
		}
	}
}

// --- Mark-to-market tests ---

func TestMarkToMarket_AboveFloor(t *testing.T) {
	// 2 units at 3x on price 100 = 600, well above a 100 floor.
	if got := MarkToMarket(2, 3, 100, 100); !almostEqual(got, 600) {
		t.Errorf("expected 600, got %v", got)
	}
}

func TestMarkToMarket_ClampsToFloor(t *testing.T) {
	// Position worth 50 but floored at 100.
	if got := MarkToMarket(0.5, 1, 100, 100); !almostEqual(got, 100) {
		t.Errorf("expected floor 100, got %v", got)
	}
}

func TestMarkToMarket_NeverBelowFloor(t *testing.T) {
	floors := []float64{1, 100, 12345}
	for _, floor := range floors {
		for _, price := range []float64{0.01, 1, 99.9} {
			got := MarkToMarket(0.001, 1, price, floor)
			if got < floor {
				t.Errorf("floor=%v price=%v: value %v below floor", floor, price, got)
			}
		}
	}
}

func TestMarkToMarket_NoFloor(t *testing.T) {
	if got := MarkToMarket(0.5, 1, 100, 0); !almostEqual(got, 50) {
		t.Errorf("expected 50, got %v", got)
	}
}

// --- Base price tests ---

func TestBasePrice_KnownAssets(t *testing.T) {
	tests := []struct {
		asset string
		want  float64
	}{
		{"sol", 150},
		{"SOL", 150},
		{"eth", 2000},
		{"Eth", 2000},
		{"doge", 1},
		{"", 1},
	}
	for _, tt := range tests {
		if got := BasePrice(tt.asset); got != tt.want {
			t.Errorf("BasePrice(%q) = %v, want %v", tt.asset, got, tt.want)
		}
	}
}

func TestSupported_OnlyKnownAssets(t *testing.T) {
	for _, asset := range []string{"sol", "eth", "SOL", "ETH"} {
		if !Supported(asset) {
			t.Errorf("expected %q to be supported", asset)
		}
	}
	for _, asset := range []string{"doge", "btc", ""} {
		if Supported(asset) {
			t.Errorf("expected %q to be unsupported", asset)
		}
	}
}
