package store

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/moonbet/crash-engine/internal/model"
)

func openBet(id, playerID string) *model.BetRecord {
	return &model.BetRecord{
		ID:       id,
		PlayerID: playerID,
		Asset:    "sol",
		Quantity: decimal.NewFromFloat(0.5),
		Status:   model.BetStatusOpen,
		PlacedAt: time.Now().UTC(),
	}
}

func TestMemoryStore_InsertAndQuery(t *testing.T) {
	ms := NewMemoryStore()
	ctx := context.Background()

	if err := ms.InsertBet(ctx, openBet("b1", "p1")); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := ms.InsertBet(ctx, openBet("b2", "p2")); err != nil {
		t.Fatalf("insert: %v", err)
	}

	records, err := ms.GetPlayerBets(ctx, "p1")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(records) != 1 || records[0].ID != "b1" {
		t.Errorf("expected only p1's bet, got %+v", records)
	}
}

func TestMemoryStore_SettleBet(t *testing.T) {
	ms := NewMemoryStore()
	ctx := context.Background()

	if err := ms.InsertBet(ctx, openBet("b1", "p1")); err != nil {
		t.Fatalf("insert: %v", err)
	}

	settledAt := time.Now().UTC()
	err := ms.SettleBet(ctx, "b1", decimal.NewFromFloat(2.0), decimal.NewFromInt(200), settledAt)
	if err != nil {
		t.Fatalf("settle: %v", err)
	}

	records, _ := ms.GetPlayerBets(ctx, "p1")
	r := records[0]
	if r.Status != model.BetStatusCashedOut {
		t.Errorf("expected cashed_out, got %s", r.Status)
	}
	if !r.Multiplier.Equal(decimal.NewFromFloat(2.0)) || !r.Payout.Equal(decimal.NewFromInt(200)) {
		t.Errorf("unexpected settlement: %+v", r)
	}
	if r.SettledAt == nil || !r.SettledAt.Equal(settledAt) {
		t.Errorf("expected settled_at %v, got %v", settledAt, r.SettledAt)
	}
}

func TestMemoryStore_SettleUnknownBet(t *testing.T) {
	ms := NewMemoryStore()
	err := ms.SettleBet(context.Background(), "missing", decimal.Zero, decimal.Zero, time.Now())
	if err == nil {
		t.Error("expected an error for an unknown bet id")
	}
}

func TestMemoryStore_EmptyHistory(t *testing.T) {
	ms := NewMemoryStore()
	records, err := ms.GetPlayerBets(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected empty history, got %+v", records)
	}
}
