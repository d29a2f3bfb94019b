// Package valuation holds the pure pricing math for open positions:
// fiat/asset conversion, the time-based payout multiplier, and
// mark-to-market valuation with the no-loss floor.
//
// All functions here are stateless and operate on float64 per-tick
// quantities; money that lives in the ledger is decimal and converted
// at that boundary.
package valuation

import (
	"errors"
	"strings"
)

// ErrInvalidPrice is returned when a conversion is attempted against a
// non-positive price.
var ErrInvalidPrice = errors.New("valuation: price must be positive")

// MultiplierRate is the payout growth per second a bet stays open: 1%.
const MultiplierRate = 0.01

// Base prices used only at bet-placement time to size the wager.
// Unknown assets fall back to DefaultBasePrice.
const (
	basePriceSOL     = 150.0
	basePriceETH     = 2000.0
	DefaultBasePrice = 1.0
)

// BasePrice returns the fixed reference price for an asset identifier.
// Lookup is case-insensitive.
func BasePrice(asset string) float64 {
	switch strings.ToLower(asset) {
	case "sol":
		return basePriceSOL
	case "eth":
		return basePriceETH
	default:
		return DefaultBasePrice
	}
}

// Supported reports whether the asset can be cashed out.
// Only assets with a real base price are supported; everything else is
// rejected at cash-out time.
func Supported(asset string) bool {
	switch strings.ToLower(asset) {
	case "sol", "eth":
		return true
	default:
		return false
	}
}

// ToAsset converts a fiat amount into asset quantity at the given price.
func ToAsset(fiat, price float64) (float64, error) {
	if price <= 0 {
		return 0, ErrInvalidPrice
	}
	return fiat / price, nil
}

// ToFiat converts an asset quantity back into fiat at the given price.
func ToFiat(qty, price float64) float64 {
	return qty * price
}

// Multiplier returns the time-based payout multiplier for a bet that has
// been open for elapsedSeconds: 1.0 + 1% per second.
func Multiplier(elapsedSeconds float64) float64 {
	return 1.0 + elapsedSeconds*MultiplierRate
}

// MarkToMarket returns the current fiat worth of an open position,
// clamped so it never drops below the floor (the fiat amount originally
// wagered). Pass floor <= 0 for no floor.
func MarkToMarket(qty, multiplier, price, floor float64) float64 {
	value := qty * multiplier * price
	if value < floor {
		return floor
	}
	return value
}
