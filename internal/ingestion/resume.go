package ingestion

import (
	"context"
	"errors"
	"fmt"

	"solana-trade-indexer/internal/storage"
)

// ResolveResumeCursor finds the earliest already-persisted trade for a
// token and returns its signature as the pager's starting cursor. An empty
// cursor means fresh ingestion from the newest signature.
//
// Any sink failure other than "no rows" is returned as an error and should
// abort the run: silently falling back to an empty cursor on a transient
// query failure would re-ingest the full history.
func ResolveResumeCursor(ctx context.Context, store storage.TradeStore, token string) (string, error) {
	sig, err := store.OldestTx(ctx, token)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("resolve resume cursor for %s: %w", token, err)
	}
	return sig, nil
}
