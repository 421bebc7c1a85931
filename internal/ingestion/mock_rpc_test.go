package ingestion

import (
	"context"
	"sync"
	"sync/atomic"

	"solana-trade-indexer/internal/solana"
)

// mockRPC serves canned signature pages and transactions, recording how
// it was called.
type mockRPC struct {
	mu       sync.Mutex
	pages    [][]solana.SignatureInfo
	pageOpts []solana.SignaturesOpts
	pageErr  error

	txs    map[string]*solana.Transaction
	txErrs map[string]error

	blockTimes map[int64]int64

	inFlight    atomic.Int64
	maxInFlight atomic.Int64
	txCalls     atomic.Int64
}

func newMockRPC() *mockRPC {
	return &mockRPC{
		txs:        make(map[string]*solana.Transaction),
		txErrs:     make(map[string]error),
		blockTimes: make(map[int64]int64),
	}
}

func (m *mockRPC) GetSignaturesForAddress(_ context.Context, _ string, opts *solana.SignaturesOpts) ([]solana.SignatureInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if opts != nil {
		m.pageOpts = append(m.pageOpts, *opts)
	} else {
		m.pageOpts = append(m.pageOpts, solana.SignaturesOpts{})
	}
	if m.pageErr != nil {
		return nil, m.pageErr
	}
	if len(m.pages) == 0 {
		return nil, nil
	}

	page := m.pages[0]
	m.pages = m.pages[1:]
	return page, nil
}

func (m *mockRPC) GetTransaction(_ context.Context, signature string) (*solana.Transaction, error) {
	cur := m.inFlight.Add(1)
	defer m.inFlight.Add(-1)
	for {
		max := m.maxInFlight.Load()
		if cur <= max || m.maxInFlight.CompareAndSwap(max, cur) {
			break
		}
	}
	m.txCalls.Add(1)

	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.txErrs[signature]; ok {
		return nil, err
	}
	return m.txs[signature], nil
}

func (m *mockRPC) GetBlockTime(_ context.Context, slot int64) (*int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	bt, ok := m.blockTimes[slot]
	if !ok {
		return nil, nil
	}
	return &bt, nil
}
