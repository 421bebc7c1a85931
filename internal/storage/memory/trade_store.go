package memory

import (
	"context"
	"sort"
	"sync"

	"solana-trade-indexer/internal/domain"
	"solana-trade-indexer/internal/storage"
)

// TradeStore is an in-memory implementation of storage.TradeStore.
// Used in tests and dry runs.
type TradeStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Trade // keyed by tx signature
}

// NewTradeStore creates a new in-memory trade store.
func NewTradeStore() *TradeStore {
	return &TradeStore{
		data: make(map[string]*domain.Trade),
	}
}

// Compile-time interface check.
var _ storage.TradeStore = (*TradeStore)(nil)

// Insert adds a new trade. Returns ErrDuplicateKey if tx_signature exists.
func (s *TradeStore) Insert(_ context.Context, t *domain.Trade) error {
	if t == nil || t.TxSignature == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[t.TxSignature]; exists {
		return storage.ErrDuplicateKey
	}

	copy := *t
	s.data[t.TxSignature] = &copy
	return nil
}

// OldestTx returns the signature of the earliest-timestamped trade for a token.
func (s *TradeStore) OldestTx(_ context.Context, token string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var oldest *domain.Trade
	for _, t := range s.data {
		if t.Token != token {
			continue
		}
		if oldest == nil || t.Timestamp < oldest.Timestamp {
			oldest = t
		}
	}

	if oldest == nil {
		return "", storage.ErrNotFound
	}
	return oldest.TxSignature, nil
}

// GetByToken retrieves all trades for a token, ordered by timestamp ASC.
func (s *TradeStore) GetByToken(_ context.Context, token string) ([]*domain.Trade, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var trades []*domain.Trade
	for _, t := range s.data {
		if t.Token != token {
			continue
		}
		copy := *t
		trades = append(trades, &copy)
	}

	sort.Slice(trades, func(i, j int) bool {
		if trades[i].Timestamp != trades[j].Timestamp {
			return trades[i].Timestamp < trades[j].Timestamp
		}
		return trades[i].TxSignature < trades[j].TxSignature
	})

	return trades, nil
}
