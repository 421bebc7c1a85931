package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-trade-indexer/internal/domain"
	"solana-trade-indexer/internal/storage"
)

func sampleTrade(sig string, ts int64) *domain.Trade {
	return &domain.Trade{
		Token:         "MintA",
		TraderAddress: "trader1",
		SolAmount:     -0.3,
		TokenAmount:   20,
		Price:         0.015,
		TxSignature:   sig,
		Timestamp:     ts,
	}
}

func TestTradeStore_InsertAndGet(t *testing.T) {
	store := NewTradeStore()
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, sampleTrade("sig2", 200)))
	require.NoError(t, store.Insert(ctx, sampleTrade("sig1", 100)))

	trades, err := store.GetByToken(ctx, "MintA")
	require.NoError(t, err)
	require.Len(t, trades, 2)

	// Ordered by timestamp ascending.
	assert.Equal(t, "sig1", trades[0].TxSignature)
	assert.Equal(t, "sig2", trades[1].TxSignature)
}

func TestTradeStore_DuplicateSignature(t *testing.T) {
	store := NewTradeStore()
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, sampleTrade("sig1", 100)))

	err := store.Insert(ctx, sampleTrade("sig1", 999))
	require.ErrorIs(t, err, storage.ErrDuplicateKey)

	trades, err := store.GetByToken(ctx, "MintA")
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, int64(100), trades[0].Timestamp)
}

func TestTradeStore_InvalidInput(t *testing.T) {
	store := NewTradeStore()
	ctx := context.Background()

	assert.ErrorIs(t, store.Insert(ctx, nil), storage.ErrInvalidInput)
	assert.ErrorIs(t, store.Insert(ctx, &domain.Trade{Token: "MintA"}), storage.ErrInvalidInput)
}

func TestTradeStore_OldestTx(t *testing.T) {
	store := NewTradeStore()
	ctx := context.Background()

	_, err := store.OldestTx(ctx, "MintA")
	require.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, store.Insert(ctx, sampleTrade("sig3", 300)))
	require.NoError(t, store.Insert(ctx, sampleTrade("sig1", 100)))
	require.NoError(t, store.Insert(ctx, sampleTrade("sig2", 200)))

	other := sampleTrade("other", 1)
	other.Token = "MintB"
	require.NoError(t, store.Insert(ctx, other))

	sig, err := store.OldestTx(ctx, "MintA")
	require.NoError(t, err)
	assert.Equal(t, "sig1", sig)
}

func TestTradeStore_CopiesOnInsert(t *testing.T) {
	store := NewTradeStore()
	ctx := context.Background()

	trade := sampleTrade("sig1", 100)
	require.NoError(t, store.Insert(ctx, trade))

	// Mutating the caller's struct must not leak into the store.
	trade.Price = 999

	trades, err := store.GetByToken(ctx, "MintA")
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.InDelta(t, 0.015, trades[0].Price, 1e-9)
}
