// Package model defines the domain types shared across the crash engine.
// Persisted monetary values use shopspring/decimal — never float64 for
// stored money.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Bet statuses for the audit trail.
const (
	BetStatusOpen      = "open"
	BetStatusCashedOut = "cashed_out"
)

// BetRecord is an immutable audit entry for one bet's lifecycle.
// Inserted when the bet is placed; settled (multiplier/payout) at
// cash-out. Never deleted.
type BetRecord struct {
	ID         string          `json:"id" db:"id"`
	PlayerID   string          `json:"player_id" db:"player_id"`
	Asset      string          `json:"asset" db:"asset"`
	Quantity   decimal.Decimal `json:"quantity" db:"quantity"` // asset-denominated wager
	Multiplier decimal.Decimal `json:"multiplier" db:"multiplier"`
	Payout     decimal.Decimal `json:"payout" db:"payout"` // fiat credited at settlement
	Status     string          `json:"status" db:"status"`
	PlacedAt   time.Time       `json:"placed_at" db:"placed_at"`
	SettledAt  *time.Time      `json:"settled_at,omitempty" db:"settled_at"`
}
