package raydium

import (
	"encoding/base64"
	"fmt"

	"github.com/mr-tron/base58"

	"solana-trade-indexer/internal/domain"
)

// Byte offsets of the pubkey fields inside the AMM v4 liquidity state
// account. The account is 752 bytes: a run of u64/u128 AMM parameters
// followed by twelve pubkeys starting at offset 336.
const (
	liquidityStateV4Size = 752

	baseVaultOffset  = 336
	quoteVaultOffset = 368
	baseMintOffset   = 400
	quoteMintOffset  = 432
)

// DecodeLiquidityStateV4 extracts the vault and mint addresses from a raw
// AMM v4 liquidity state account.
func DecodeLiquidityStateV4(data []byte) (domain.PoolVaults, error) {
	if len(data) < liquidityStateV4Size {
		return domain.PoolVaults{}, fmt.Errorf("liquidity state too short: %d bytes", len(data))
	}

	return domain.PoolVaults{
		BaseVault:  base58.Encode(data[baseVaultOffset : baseVaultOffset+32]),
		QuoteVault: base58.Encode(data[quoteVaultOffset : quoteVaultOffset+32]),
		BaseMint:   base58.Encode(data[baseMintOffset : baseMintOffset+32]),
		QuoteMint:  base58.Encode(data[quoteMintOffset : quoteMintOffset+32]),
	}, nil
}

// DecodeLiquidityStateV4Base64 decodes a base64 account payload as returned
// by getAccountInfo and extracts the vault and mint addresses.
func DecodeLiquidityStateV4Base64(data string) (domain.PoolVaults, error) {
	decoded, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return domain.PoolVaults{}, fmt.Errorf("decode account data: %w", err)
	}
	return DecodeLiquidityStateV4(decoded)
}
