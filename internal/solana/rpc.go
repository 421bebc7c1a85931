package solana

import "context"

// RPCClient defines the Solana RPC HTTP surface the pipeline depends on.
type RPCClient interface {
	// GetTransaction retrieves a parsed transaction by signature.
	// Returns nil, nil when the transaction is not found.
	GetTransaction(ctx context.Context, signature string) (*Transaction, error)

	// GetSignaturesForAddress retrieves signatures for an address,
	// newest first, with pagination.
	GetSignaturesForAddress(ctx context.Context, address string, opts *SignaturesOpts) ([]SignatureInfo, error)

	// GetBlockTime retrieves the estimated production time of a block.
	// Returns nil when the node has no timestamp for the slot.
	GetBlockTime(ctx context.Context, slot int64) (*int64, error)
}

// Transaction represents a parsed Solana transaction with the metadata
// needed to reconstruct pool balance deltas.
type Transaction struct {
	Slot      int64
	Signature string
	BlockTime int64 // Unix timestamp (seconds), 0 if unavailable
	Meta      *TransactionMeta
	Message   *TransactionMessage
}

// TransactionMeta contains execution status and balance snapshots.
type TransactionMeta struct {
	Err               interface{}
	LogMessages       []string
	PreBalances       []uint64 // lamports per account index
	PostBalances      []uint64
	PreTokenBalances  []TokenBalance
	PostTokenBalances []TokenBalance
}

// TransactionMessage contains the ordered account list and parsed
// instructions. AccountKeys[0] is the fee payer by convention.
type TransactionMessage struct {
	AccountKeys  []string
	Instructions []Instruction
}

// Instruction is a parsed instruction. Type and Mint are empty for
// instructions the node could not parse.
type Instruction struct {
	Program string // e.g. "spl-token"
	Type    string // e.g. "burn", "transfer"
	Mint    string // mint the instruction acts on, when applicable
}

// TokenBalance is an SPL token account balance snapshot attached to a
// transaction, taken immediately before or after execution.
type TokenBalance struct {
	AccountIndex int
	Mint         string
	Owner        string
	UIAmount     *float64 // human-scale amount; nil for empty accounts
	Amount       string   // raw amount in base units
	Decimals     int
}
