package ingestion

import (
	"context"
	"fmt"

	"solana-trade-indexer/internal/solana"
)

// PageLimit is the signature page size requested from the RPC node.
const PageLimit = 1000

// pagerState tracks the pagination state machine.
type pagerState int

const (
	pagerInit pagerState = iota
	pagerPaging
	pagerExhausted
)

// SignaturePager iterates over the paginated signature history of one
// address, newest first, walking backward in time. A page shorter than the
// page limit marks the end of history; no further requests are issued
// after that.
type SignaturePager struct {
	rpc     solana.RPCClient
	address string
	cursor  string
	limit   int
	state   pagerState
}

// NewSignaturePager creates a pager for an address. A non-empty
// resumeBefore seeds the cursor so paging starts strictly before that
// signature, skipping history already persisted by a previous run.
func NewSignaturePager(rpc solana.RPCClient, address string, resumeBefore string) *SignaturePager {
	return &SignaturePager{
		rpc:     rpc,
		address: address,
		cursor:  resumeBefore,
		limit:   PageLimit,
		state:   pagerInit,
	}
}

// Next fetches the next page of signatures. It returns a nil page once the
// history is exhausted. A fetch error leaves the cursor unchanged, so the
// call can be retried.
func (p *SignaturePager) Next(ctx context.Context) ([]solana.SignatureInfo, error) {
	if p.state == pagerExhausted {
		return nil, nil
	}

	opts := &solana.SignaturesOpts{Limit: p.limit}
	if p.cursor != "" {
		opts.Before = p.cursor
	}

	page, err := p.rpc.GetSignaturesForAddress(ctx, p.address, opts)
	if err != nil {
		return nil, fmt.Errorf("get signatures for %s: %w", p.address, err)
	}

	if len(page) < p.limit {
		p.state = pagerExhausted
	} else {
		p.cursor = page[len(page)-1].Signature
		p.state = pagerPaging
	}

	if len(page) == 0 {
		return nil, nil
	}
	return page, nil
}

// Exhausted reports whether the full history has been paged through.
func (p *SignaturePager) Exhausted() bool {
	return p.state == pagerExhausted
}
