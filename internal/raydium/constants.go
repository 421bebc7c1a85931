// Package raydium resolves the liquidity pool a token trades against:
// pool lookup via the Raydium v3 HTTP API, on-chain liquidity state
// decoding, and derivation of the AMM authority that owns the pool vaults.
package raydium

// Well-known mainnet addresses.
const (
	// AMMV4Program is the Raydium AMM v4 program ID.
	AMMV4Program = "675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8"

	// V4Authority owns every AMM v4 pool vault. It is the PDA of
	// AMMV4Program with seed "amm authority".
	V4Authority = "5Q544fKrFoe6tsEbD7S8EmxGTJYAKtTVhAW5Q5pge4j1"

	// WSOLMint is the wrapped SOL mint.
	WSOLMint = "So11111111111111111111111111111111111111112"
)

// SOLDecimals is the fixed decimal exponent of the native asset.
const SOLDecimals = 9
