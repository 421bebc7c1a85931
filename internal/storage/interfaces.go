package storage

import (
	"context"

	"solana-trade-indexer/internal/domain"
)

// TradeStore provides access to trades storage. The transaction signature
// is the idempotency key: the same signature is never stored twice.
type TradeStore interface {
	// Insert adds a new trade. Returns ErrDuplicateKey if tx_signature exists.
	Insert(ctx context.Context, t *domain.Trade) error

	// OldestTx returns the signature of the earliest-timestamped trade for
	// a token. Returns ErrNotFound when no trades exist. Used to seed the
	// resume cursor on startup.
	OldestTx(ctx context.Context, token string) (string, error)

	// GetByToken retrieves all trades for a token, ordered by timestamp ASC.
	GetByToken(ctx context.Context, token string) ([]*domain.Trade, error)
}
