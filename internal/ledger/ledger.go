// Package ledger owns the process-wide player state: fiat balances, at
// most one open bet per player, and the shared asset price table.
//
// All state lives behind a single mutex. Every operation is a short
// critical section with no I/O or blocking while the lock is held;
// sessions never hold it across a tick or a network send.
//
// Balances use shopspring/decimal — never float64 for stored money.
// Wager quantities are float64 because the valuation math is float64;
// they are converted to decimal at the debit/credit boundary.
//
// Known quirk, preserved deliberately: the balance is fiat-denominated
// but place_bet debits the asset-denominated wager quantity directly,
// with no price conversion. Compatibility tests depend on this
// arithmetic; do not "fix" it here.
package ledger

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	// ErrUnknownPlayer is returned for operations on an unregistered id.
	ErrUnknownPlayer = errors.New("ledger: unknown player")

	// ErrInsufficientBalance is returned when a bet exceeds the balance.
	ErrInsufficientBalance = errors.New("ledger: insufficient balance")

	// ErrNoActiveBet is returned by CashOut when no open bet exists.
	ErrNoActiveBet = errors.New("ledger: no active bet")
)

// StartingBalance is credited to every freshly registered player.
var StartingBalance = decimal.NewFromInt(1000)

// DefaultPrice is returned for assets never written to the price table.
const DefaultPrice = 1.0

// Bet is an open position owned by the ledger, keyed by player id.
type Bet struct {
	Asset    string
	Quantity float64 // asset-denominated wager
	PlacedAt time.Time
}

// Ledger is the shared, mutable player-state store. Safe for concurrent
// use by any number of sessions.
type Ledger struct {
	mu       sync.Mutex
	balances map[string]decimal.Decimal
	bets     map[string]Bet
	prices   map[string]float64
}

// New creates an empty Ledger.
func New() *Ledger {
	return &Ledger{
		balances: make(map[string]decimal.Decimal),
		bets:     make(map[string]Bet),
		prices:   make(map[string]float64),
	}
}

// Register allocates a fresh player id with the starting balance.
// Always succeeds.
func (l *Ledger) Register() string {
	id := uuid.New().String()

	l.mu.Lock()
	l.balances[id] = StartingBalance
	l.mu.Unlock()

	return id
}

// PlaceBet atomically checks the balance and, if sufficient, debits it
// by the wager quantity and records the open bet. The session is
// responsible for rejecting a second bet while one is open.
func (l *Ledger) PlaceBet(playerID string, bet Bet) error {
	debit := decimal.NewFromFloat(bet.Quantity)

	l.mu.Lock()
	defer l.mu.Unlock()

	balance, ok := l.balances[playerID]
	if !ok {
		return ErrUnknownPlayer
	}
	if balance.LessThan(debit) {
		return ErrInsufficientBalance
	}

	l.balances[playerID] = balance.Sub(debit)
	l.bets[playerID] = bet
	return nil
}

// CashOut removes the player's open bet, computes winnings as
// quantity * multiplier converted to fiat at the given price (floored
// at zero), credits the balance, and returns the new balance.
func (l *Ledger) CashOut(playerID string, multiplier, price float64) (decimal.Decimal, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	bet, ok := l.bets[playerID]
	if !ok {
		return decimal.Decimal{}, ErrNoActiveBet
	}
	delete(l.bets, playerID)

	winnings := bet.Quantity * multiplier * price
	if winnings < 0 {
		winnings = 0
	}

	balance := l.balances[playerID].Add(decimal.NewFromFloat(winnings))
	l.balances[playerID] = balance
	return balance, nil
}

// Balance returns the player's current fiat balance.
func (l *Ledger) Balance(playerID string) (decimal.Decimal, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	balance, ok := l.balances[playerID]
	if !ok {
		return decimal.Decimal{}, ErrUnknownPlayer
	}
	return balance, nil
}

// OpenBet returns the player's open bet, if any.
func (l *Ledger) OpenBet(playerID string) (Bet, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	bet, ok := l.bets[playerID]
	return bet, ok
}

// SetPrice writes the shared last-known price for an asset.
func (l *Ledger) SetPrice(asset string, price float64) {
	l.mu.Lock()
	l.prices[asset] = price
	l.mu.Unlock()
}

// Price returns the shared last-known price for an asset, or
// DefaultPrice if none has been set.
func (l *Ledger) Price(asset string) float64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	if price, ok := l.prices[asset]; ok {
		return price
	}
	return DefaultPrice
}

// Prices returns a snapshot of the shared price table.
func (l *Ledger) Prices() map[string]float64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	snapshot := make(map[string]float64, len(l.prices))
	for asset, price := range l.prices {
		snapshot[asset] = price
	}
	return snapshot
}
