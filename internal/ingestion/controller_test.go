package ingestion

import (
	"context"
	"fmt"
	"io"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-trade-indexer/internal/domain"
	"solana-trade-indexer/internal/solana"
	"solana-trade-indexer/internal/storage/memory"
)

// sigPage builds a single short page from literal signatures.
func sigPage(sigs ...string) []solana.SignatureInfo {
	page := make([]solana.SignatureInfo, len(sigs))
	for i, s := range sigs {
		page[i] = solana.SignatureInfo{Signature: s, Slot: int64(i)}
	}
	return page
}

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func newTestController(rpc *mockRPC, opts ControllerOptions) *Controller {
	opts.RPC = rpc
	if opts.Store == nil {
		opts.Store = memory.NewTradeStore()
	}
	if opts.Classifier == nil {
		opts.Classifier = NewClassifier(testMint, testAuthority, testVaults())
	}
	if opts.SubBatchDelay == 0 {
		opts.SubBatchDelay = time.Millisecond
	}
	if opts.Logger == nil {
		opts.Logger = quietLogger()
	}
	return NewController(opts)
}

func TestController_ProcessesFullHistory(t *testing.T) {
	rpc := newMockRPC()
	vaults := testVaults()

	first := makePage("a", PageLimit)
	second := makePage("b", 400)
	rpc.pages = append(rpc.pages, first, second)

	for _, info := range append(append([]solana.SignatureInfo{}, first...), second...) {
		tx := swapTx(vaults, 100, 80, 5_000_000_000, 5_300_000_000)
		tx.Signature = info.Signature
		rpc.txs[info.Signature] = tx
	}

	store := memory.NewTradeStore()
	ctrl := newTestController(rpc, ControllerOptions{Store: store, SubBatchSize: 100})

	pager := NewSignaturePager(rpc, "pool", "")
	result, err := ctrl.Run(context.Background(), pager)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Pages)
	assert.Equal(t, 1400, result.Signatures)
	assert.Equal(t, 1400, result.Stored)
	assert.Zero(t, result.Duplicates)
	assert.Zero(t, result.Rejected)
	assert.Zero(t, result.Errors)

	// Sub-batches bound concurrency: never more than SubBatchSize
	// transaction fetches in flight at once.
	assert.LessOrEqual(t, rpc.maxInFlight.Load(), int64(100))
	assert.Equal(t, int64(1400), rpc.txCalls.Load())

	trades, err := store.GetByToken(context.Background(), testMint)
	require.NoError(t, err)
	assert.Len(t, trades, 1400)
}

func TestController_FailureIsolation(t *testing.T) {
	rpc := newMockRPC()
	vaults := testVaults()

	good := swapTx(vaults, 100, 80, 5_000_000_000, 5_300_000_000)
	good.Signature = "good"
	rpc.txs["good"] = good

	// Same on-chain signature seen twice in the page; the second insert
	// must be counted as a duplicate, not a failure.
	dup := swapTx(vaults, 100, 80, 5_000_000_000, 5_300_000_000)
	dup.Signature = "good"
	rpc.txs["dup"] = dup

	rpc.txErrs["broken"] = fmt.Errorf("rpc timeout")
	// "missing" has no entry: GetTransaction returns nil, nil.

	notSwap := swapTx(vaults, 100, 100, 5_000_000_000, 5_000_000_000)
	notSwap.Signature = "not-swap"
	rpc.txs["not-swap"] = notSwap

	rpc.pages = append(rpc.pages, sigPage("good", "dup", "broken", "missing", "not-swap"))

	ctrl := newTestController(rpc, ControllerOptions{})
	result, err := ctrl.Run(context.Background(), NewSignaturePager(rpc, "pool", ""))
	require.NoError(t, err)

	assert.Equal(t, 1, result.Stored)
	assert.Equal(t, 1, result.Duplicates)
	assert.Equal(t, 1, result.Errors)
	assert.Equal(t, 2, result.Rejected) // not-found + non-swap
}

func TestController_BlockTimeFallback(t *testing.T) {
	rpc := newMockRPC()
	vaults := testVaults()

	tx := swapTx(vaults, 100, 80, 5_000_000_000, 5_300_000_000)
	tx.Signature = "no-blocktime"
	tx.BlockTime = 0
	tx.Slot = 42
	rpc.txs["no-blocktime"] = tx
	rpc.blockTimes[42] = 1700000123

	rpc.pages = append(rpc.pages, sigPage("no-blocktime"))

	store := memory.NewTradeStore()
	ctrl := newTestController(rpc, ControllerOptions{Store: store})

	result, err := ctrl.Run(context.Background(), NewSignaturePager(rpc, "pool", ""))
	require.NoError(t, err)
	require.Equal(t, 1, result.Stored)

	trades, err := store.GetByToken(context.Background(), testMint)
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, int64(1700000123), trades[0].Timestamp)
}

func TestController_ArchiveFailureIsBestEffort(t *testing.T) {
	rpc := newMockRPC()
	vaults := testVaults()

	tx := swapTx(vaults, 100, 80, 5_000_000_000, 5_300_000_000)
	tx.Signature = "sig1"
	rpc.txs["sig1"] = tx
	rpc.pages = append(rpc.pages, sigPage("sig1"))

	ctrl := newTestController(rpc, ControllerOptions{
		Archive: failingStore{},
	})

	result, err := ctrl.Run(context.Background(), NewSignaturePager(rpc, "pool", ""))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Stored)
	assert.Zero(t, result.Errors)
}

func TestController_ContextCancellation(t *testing.T) {
	rpc := newMockRPC()
	rpc.pages = append(rpc.pages, makePage("a", PageLimit), makePage("b", PageLimit))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ctrl := newTestController(rpc, ControllerOptions{})
	result, err := ctrl.Run(ctx, NewSignaturePager(rpc, "pool", ""))

	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, result.Pages)
}

// failingStore rejects every insert.
type failingStore struct{}

func (failingStore) Insert(context.Context, *domain.Trade) error {
	return fmt.Errorf("sink down")
}

func (failingStore) OldestTx(context.Context, string) (string, error) {
	return "", fmt.Errorf("sink down")
}

func (failingStore) GetByToken(context.Context, string) ([]*domain.Trade, error) {
	return nil, fmt.Errorf("sink down")
}
