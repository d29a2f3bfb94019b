package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/moonbet/crash-engine/internal/model"
)

// MemoryStore implements Store with an in-memory slice. The default
// when no DATABASE_URL is configured; also used in tests. History is
// lost at process exit.
type MemoryStore struct {
	mu      sync.RWMutex
	records []model.BetRecord
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) InsertBet(_ context.Context, record *model.BetRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, *record)
	return nil
}

func (s *MemoryStore) SettleBet(_ context.Context, betID string, multiplier, payout decimal.Decimal, settledAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.records {
		if s.records[i].ID == betID {
			s.records[i].Multiplier = multiplier
			s.records[i].Payout = payout
			s.records[i].Status = model.BetStatusCashedOut
			at := settledAt
			s.records[i].SettledAt = &at
			return nil
		}
	}
	return fmt.Errorf("bet %s not found", betID)
}

func (s *MemoryStore) GetPlayerBets(_ context.Context, playerID string) ([]model.BetRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []model.BetRecord
	for _, r := range s.records {
		if r.PlayerID == playerID {
			result = append(result, r)
		}
	}
	return result, nil
}
