package ingestion

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-trade-indexer/internal/domain"
	"solana-trade-indexer/internal/storage/memory"
)

func TestResolveResumeCursor_EmptySink(t *testing.T) {
	cursor, err := ResolveResumeCursor(context.Background(), memory.NewTradeStore(), testMint)
	require.NoError(t, err)
	assert.Empty(t, cursor)
}

func TestResolveResumeCursor_OldestPersisted(t *testing.T) {
	store := memory.NewTradeStore()
	ctx := context.Background()

	for _, tr := range []*domain.Trade{
		{Token: testMint, TxSignature: "newest", Timestamp: 300},
		{Token: testMint, TxSignature: "oldest", Timestamp: 100},
		{Token: testMint, TxSignature: "middle", Timestamp: 200},
		{Token: "OtherMint111111111111111111111111111111111", TxSignature: "other", Timestamp: 1},
	} {
		require.NoError(t, store.Insert(ctx, tr))
	}

	cursor, err := ResolveResumeCursor(ctx, store, testMint)
	require.NoError(t, err)
	assert.Equal(t, "oldest", cursor)
}

func TestResolveResumeCursor_SinkFailureIsFatal(t *testing.T) {
	_, err := ResolveResumeCursor(context.Background(), failingStore{}, testMint)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "resolve resume cursor")
}
