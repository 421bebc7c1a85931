package domain

// Trade represents one reconstructed swap against the pool.
// Corresponds to the trades table in PostgreSQL.
//
// SolAmount and TokenAmount are signed from the trader's point of view:
// positive means the trader received that asset, negative means they paid it.
// The signs are consistent by construction (one positive, one negative for
// any real swap). Price is always positive.
type Trade struct {
	Token         string  // token mint address
	TraderAddress string  // fee payer / initiator of the transaction
	SolAmount     float64 // SOL delta, scaled from lamports
	TokenAmount   float64 // token delta, ui units
	Price         float64 // |SolAmount / TokenAmount|
	TxSignature   string  // transaction signature, unique key
	Timestamp     int64   // block time, unix seconds; 0 means unknown
}
