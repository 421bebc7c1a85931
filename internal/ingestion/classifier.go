// Package ingestion reconstructs historical trades for one token from the
// paginated transaction history of its liquidity pool and persists them
// exactly once.
package ingestion

import (
	"math"

	"solana-trade-indexer/internal/domain"
	"solana-trade-indexer/internal/raydium"
	"solana-trade-indexer/internal/solana"
)

// Classifier decides whether a transaction is a genuine swap against the
// pool and, if so, reconstructs the trade from vault balance deltas.
// It performs no I/O.
type Classifier struct {
	token     string // mint of the token of interest
	authority string // owner of the pool's vault token accounts
	vaults    domain.PoolVaults
}

// NewClassifier creates a classifier for one token/pool pair. An empty
// authority defaults to the Raydium v4 AMM authority.
func NewClassifier(token string, authority string, vaults domain.PoolVaults) *Classifier {
	if authority == "" {
		authority = raydium.V4Authority
	}
	return &Classifier{
		token:     token,
		authority: authority,
		vaults:    vaults,
	}
}

// Classify returns the reconstructed trade, or nil when the transaction is
// not a swap against the pool: execution errors, burns of the target mint,
// transactions that did not move the pool's token balance, and transactions
// whose shape does not include the pool vaults are all rejected.
//
// timestamp is the block time in unix seconds; 0 means unknown.
func (c *Classifier) Classify(tx *solana.Transaction, timestamp int64) *domain.Trade {
	if tx == nil || tx.Meta == nil || tx.Message == nil {
		return nil
	}

	// Ledger-level execution error: the transaction did nothing.
	if tx.Meta.Err != nil {
		return nil
	}

	// Burns of the target mint shrink supply without a counterparty; their
	// balance deltas do not describe a swap.
	for _, ins := range tx.Message.Instructions {
		if ins.Type == "burn" && ins.Mint == c.token {
			return nil
		}
	}

	// The pool vault's token balance must have moved. Equal pre/post also
	// covers the case where both snapshots are absent (read as zero), e.g.
	// a bundled transaction that touched the pool account for other reasons.
	preToken := c.vaultTokenBalance(tx.Meta.PreTokenBalances)
	postToken := c.vaultTokenBalance(tx.Meta.PostTokenBalances)
	if preToken == postToken {
		return nil
	}

	tokenAmount := -(postToken - preToken)
	if tokenAmount == 0 {
		return nil
	}

	solAmount, ok := c.extractSolDelta(tx)
	if !ok {
		return nil
	}

	price := math.Abs(solAmount / tokenAmount)

	trader := ""
	if len(tx.Message.AccountKeys) > 0 {
		trader = tx.Message.AccountKeys[0]
	}

	return &domain.Trade{
		Token:         c.token,
		TraderAddress: trader,
		SolAmount:     solAmount,
		TokenAmount:   tokenAmount,
		Price:         price,
		TxSignature:   tx.Signature,
		Timestamp:     timestamp,
	}
}

// vaultTokenBalance returns the pool vault's balance of the target mint
// from a snapshot list, or 0 when absent. The last matching entry wins,
// matching the node's ordering for repeated accounts.
func (c *Classifier) vaultTokenBalance(balances []solana.TokenBalance) float64 {
	amount := 0.0
	for _, b := range balances {
		if b.Owner != c.authority || b.Mint != c.token {
			continue
		}
		if b.UIAmount != nil {
			amount = *b.UIAmount
		} else {
			amount = 0
		}
	}
	return amount
}

// extractSolDelta reads the lamport delta of whichever vault holds wrapped
// SOL, scaled to SOL, with the pool-relative sign convention. Returns
// ok=false when the SOL vault cannot be located in the account list or the
// balance snapshots do not cover it; naive index math would otherwise
// fabricate a zero delta and a nonsensical trade.
func (c *Classifier) extractSolDelta(tx *solana.Transaction) (float64, bool) {
	solVault := c.vaults.QuoteVault
	if c.vaults.BaseMint == raydium.WSOLMint {
		solVault = c.vaults.BaseVault
	}

	index := -1
	for i, key := range tx.Message.AccountKeys {
		if key == solVault {
			index = i
			break
		}
	}
	if index < 0 {
		return 0, false
	}
	if index >= len(tx.Meta.PreBalances) || index >= len(tx.Meta.PostBalances) {
		return 0, false
	}

	scale := math.Pow(10, raydium.SOLDecimals)
	pre := float64(tx.Meta.PreBalances[index]) / scale
	post := float64(tx.Meta.PostBalances[index]) / scale

	return -(post - pre), true
}
