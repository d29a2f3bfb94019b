package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/moonbet/crash-engine/internal/model"
)

// CachedStore wraps a primary Store (PostgreSQL) with a Redis read-through
// cache over per-player bet history. Writes go to the primary store and
// invalidate the player's cache entry; reads check Redis first then fall
// back to the primary.
type CachedStore struct {
	primary Store
	rdb     *redis.Client
	ttl     time.Duration
}

// NewCachedStore creates a cached wrapper around a primary store.
func NewCachedStore(primary Store, rdb *redis.Client, ttl time.Duration) *CachedStore {
	return &CachedStore{
		primary: primary,
		rdb:     rdb,
		ttl:     ttl,
	}
}

// --- Write-through (write to primary, invalidate cache) ---

func (s *CachedStore) InsertBet(ctx context.Context, r *model.BetRecord) error {
	if err := s.primary.InsertBet(ctx, r); err != nil {
		return err
	}
	s.rdb.Del(ctx, betsKey(r.PlayerID))
	return nil
}

func (s *CachedStore) SettleBet(ctx context.Context, betID string, multiplier, payout decimal.Decimal, settledAt time.Time) error {
	if err := s.primary.SettleBet(ctx, betID, multiplier, payout, settledAt); err != nil {
		return err
	}
	// The bet id does not carry the player id, so drop the whole
	// namespace; settlements are rare relative to reads.
	s.invalidateAll(ctx)
	return nil
}

// --- Read-through (check cache first) ---

func (s *CachedStore) GetPlayerBets(ctx context.Context, playerID string) ([]model.BetRecord, error) {
	data, err := s.rdb.Get(ctx, betsKey(playerID)).Bytes()
	if err == nil {
		var records []model.BetRecord
		if json.Unmarshal(data, &records) == nil {
			return records, nil
		}
	}

	// Cache miss: read from primary.
	records, err := s.primary.GetPlayerBets(ctx, playerID)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(records); err == nil {
		s.rdb.Set(ctx, betsKey(playerID), data, s.ttl)
	}
	return records, nil
}

// --- Cache helpers ---

func (s *CachedStore) invalidateAll(ctx context.Context) {
	iter := s.rdb.Scan(ctx, 0, "bets:*", 0).Iterator()
	for iter.Next(ctx) {
		s.rdb.Del(ctx, iter.Val())
	}
}

func betsKey(playerID string) string { return fmt.Sprintf("bets:%s", playerID) }
