package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/moonbet/crash-engine/internal/model"
)

// PostgresStore implements Store using PostgreSQL.
// All monetary values are stored as NUMERIC for exact decimal precision.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL-backed store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) InsertBet(ctx context.Context, r *model.BetRecord) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO bets (id, player_id, asset, quantity, multiplier, payout, status, placed_at)
		 VALUES ($1, $2, $3, $4::NUMERIC, $5::NUMERIC, $6::NUMERIC, $7, $8)`,
		r.ID, r.PlayerID, r.Asset,
		r.Quantity.String(), r.Multiplier.String(), r.Payout.String(),
		r.Status, r.PlacedAt,
	)
	return err
}

func (s *PostgresStore) SettleBet(ctx context.Context, betID string, multiplier, payout decimal.Decimal, settledAt time.Time) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE bets
		 SET multiplier = $2::NUMERIC, payout = $3::NUMERIC,
		     status = $4, settled_at = $5
		 WHERE id = $1`,
		betID, multiplier.String(), payout.String(),
		model.BetStatusCashedOut, settledAt,
	)
	return err
}

func (s *PostgresStore) GetPlayerBets(ctx context.Context, playerID string) ([]model.BetRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, player_id, asset,
		        quantity::TEXT, multiplier::TEXT, payout::TEXT,
		        status, placed_at, settled_at
		 FROM bets WHERE player_id = $1 ORDER BY placed_at`, playerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []model.BetRecord
	for rows.Next() {
		var r model.BetRecord
		var qtyS, multS, payoutS string

		if err := rows.Scan(&r.ID, &r.PlayerID, &r.Asset,
			&qtyS, &multS, &payoutS,
			&r.Status, &r.PlacedAt, &r.SettledAt); err != nil {
			return nil, err
		}

		r.Quantity, _ = decimal.NewFromString(qtyS)
		r.Multiplier, _ = decimal.NewFromString(multS)
		r.Payout, _ = decimal.NewFromString(payoutS)

		records = append(records, r)
	}
	return records, rows.Err()
}
