package clickhouse

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"solana-trade-indexer/internal/domain"
	"solana-trade-indexer/internal/storage"
)

// TradeStore implements storage.TradeStore using ClickHouse, as an
// analytical archive alongside the Postgres primary sink. ClickHouse does
// not enforce uniqueness at insert time; the trades table uses
// ReplacingMergeTree keyed on tx_signature, so replayed inserts collapse
// at merge time instead of returning ErrDuplicateKey.
type TradeStore struct {
	conn *Conn
}

// NewTradeStore creates a new TradeStore.
func NewTradeStore(conn *Conn) *TradeStore {
	return &TradeStore{conn: conn}
}

// Compile-time interface check.
var _ storage.TradeStore = (*TradeStore)(nil)

// Insert adds a trade to the archive.
func (s *TradeStore) Insert(ctx context.Context, t *domain.Trade) error {
	if t == nil || t.TxSignature == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO trades (
			token, trader_address, sol_amount, token_amount, price, tx_signature, timestamp
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	err := s.conn.Exec(ctx, query,
		t.Token, t.TraderAddress, t.SolAmount, t.TokenAmount,
		t.Price, t.TxSignature, t.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert trade: %w", err)
	}
	return nil
}

// OldestTx returns the signature of the earliest-timestamped trade for a token.
func (s *TradeStore) OldestTx(ctx context.Context, token string) (string, error) {
	query := `
		SELECT tx_signature
		FROM trades FINAL
		WHERE token = ?
		ORDER BY timestamp ASC
		LIMIT 1
	`

	var sig string
	row := s.conn.QueryRow(ctx, query, token)
	if err := row.Scan(&sig); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
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
		FROM trades FINAL
		WHERE token = ?
		ORDER BY timestamp ASC, tx_signature ASC
	`

	rows, err := s.conn.Query(ctx, query, token)
	if err != nil {
		return nil, fmt.Errorf("get trades by token: %w", err)
	}
	defer rows.Close()

	var trades []*domain.Trade
	for rows.Next() {
		var t domain.Trade
		err := rows.Scan(
			&t.Token, &t.TraderAddress, &t.SolAmount, &t.TokenAmount,
			&t.Price, &t.TxSignature, &t.Timestamp,
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
