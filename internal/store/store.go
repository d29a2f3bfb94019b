// Package store defines the bet-history persistence interface.
// Implementations include PostgreSQL (optional audit trail), Redis
// (read-through cache), and in-memory (default; also used for testing).
//
// The store is an observational surface only: live balances and open
// bets are owned by the ledger. A store failure never affects a bet.
package store

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/moonbet/crash-engine/internal/model"
)

// Store is the bet-history persistence interface.
type Store interface {
	// InsertBet appends a new open bet record.
	InsertBet(ctx context.Context, record *model.BetRecord) error

	// SettleBet marks a bet record as cashed out with its final
	// multiplier and fiat payout.
	SettleBet(ctx context.Context, betID string, multiplier, payout decimal.Decimal, settledAt time.Time) error

	// GetPlayerBets returns all bet records for a player, oldest first.
	GetPlayerBets(ctx context.Context, playerID string) ([]model.BetRecord, error)
}
