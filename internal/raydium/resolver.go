package raydium

import (
	"context"
	"fmt"

	"solana-trade-indexer/internal/domain"
	"solana-trade-indexer/internal/solana"
)

// AccountFetcher is the slice of the RPC client pool resolution needs.
type AccountFetcher interface {
	GetAccountInfo(ctx context.Context, pubkey string) (*solana.AccountInfo, error)
}

// ResolvePoolVaults locates the pool a token trades against and decodes its
// vault identities from the on-chain liquidity state. Any failure here is a
// setup failure and aborts the run before ingestion starts.
func ResolvePoolVaults(ctx context.Context, pools *PoolsClient, rpc AccountFetcher, mint string, selector PoolSelector) (domain.PoolVaults, string, error) {
	if selector == nil {
		selector = SelectLast
	}

	candidates, err := pools.FindPools(ctx, mint)
	if err != nil {
		return domain.PoolVaults{}, "", fmt.Errorf("find pools for %s: %w", mint, err)
	}

	pool, err := selector(candidates)
	if err != nil {
		return domain.PoolVaults{}, "", fmt.Errorf("select pool for %s: %w", mint, err)
	}

	info, err := rpc.GetAccountInfo(ctx, pool.ID)
	if err != nil {
		return domain.PoolVaults{}, "", fmt.Errorf("fetch pool account %s: %w", pool.ID, err)
	}
	if info == nil {
		return domain.PoolVaults{}, "", fmt.Errorf("pool account %s not found", pool.ID)
	}

	vaults, err := DecodeLiquidityStateV4Base64(info.Data)
	if err != nil {
		return domain.PoolVaults{}, "", fmt.Errorf("decode pool account %s: %w", pool.ID, err)
	}

	return vaults, pool.ID, nil
}
