package domain

// PoolVaults identifies one liquidity pool instance by its two reserve
// vaults and their mints. Resolved once per run and immutable afterwards.
type PoolVaults struct {
	BaseMint   string
	BaseVault  string
	QuoteMint  string
	QuoteVault string
}
