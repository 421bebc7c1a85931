package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"solana-trade-indexer/internal/domain"
	"solana-trade-indexer/internal/storage"
)

// TradeStore implements storage.TradeStore using PostgreSQL.
type TradeStore struct {
	pool *Pool
}

// NewTradeStore creates a new TradeStore.
func NewTradeStore(pool *Pool) *TradeStore {
	return &TradeStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TradeStore = (*TradeStore)(nil)

// Insert adds a new trade. Returns ErrDuplicateKey if tx_signature exists.
func (s *TradeStore) Insert(ctx context.Context, t *domain.Trade) error {
	query := `
		INSERT INTO trades (
			token, trader_address, sol_amount, token_amount, price, tx_signature, timestamp
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := s.pool.Exec(ctx, query,
		t.Token,
		t.TraderAddress,
		t.SolAmount,
		t.TokenAmount,
		t.Price,
		t.TxSignature,
		t.Timestamp,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert trade: %w", err)
	}
	return nil
}

// OldestTx returns the signature of the earliest-timestamped trade for a token.
func (s *TradeStore) OldestTx(ctx context.Context, token string) (string, error) {
	query := `
		SELECT tx_signature
		FROM trades
		WHERE token = $1
		ORDER BY timestamp ASC
		LIMIT 1
	`

	var sig string
	err := s.pool.QueryRow(ctx, query, token).Scan(&sig)
	if err != nil {
		if isNotFoundError(err) {
			return "", storage.ErrNotFound
		}
		return "", fmt.Errorf("query oldest tx: %w", err)
	}
	return sig, nil
}

// GetByToken retrieves all trades for a token, ordered by timestamp ASC.
func (s *TradeStore) GetByToken(ctx context.Context, token string) ([]*domain.Trade, error) {
	query := `
		SELECT token, trader_address, sol_amount, token_amount, price, tx_signature, timestamp
		FROM trades
		WHERE token = $1
		ORDER BY timestamp ASC, tx_signature ASC
	`

	rows, err := s.pool.Query(ctx, query, token)
	if err != nil {
		return nil, fmt.Errorf("get trades by token: %w", err)
	}
	defer rows.Close()

	return scanTrades(rows)
}

// scanTrades scans multiple rows into a slice of Trade.
func scanTrades(rows pgx.Rows) ([]*domain.Trade, error) {
	var trades []*domain.Trade

	for rows.Next() {
		var t domain.Trade

		err := rows.Scan(
			&t.Token,
			&t.TraderAddress,
			&t.SolAmount,
			&t.TokenAmount,
			&t.Price,
			&t.TxSignature,
			&t.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("scan trade row: %w", err)
		}

		trades = append(trades, &t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trade rows: %w", err)
	}

	return trades, nil
}
