package ingestion

import (
	"context"
	"errors"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"solana-trade-indexer/internal/observability"
	"solana-trade-indexer/internal/solana"
	"solana-trade-indexer/internal/storage"
)

// Default controller tuning. The sub-batch size bounds concurrent RPC
// requests; the delay paces sub-batches against upstream rate limits.
const (
	DefaultSubBatchSize  = 100
	DefaultSubBatchDelay = 1200 * time.Millisecond
)

// Controller drives the pager and fans each page out into bounded
// concurrent sub-batches of fetch+classify+persist work. One page is in
// flight at a time; within a sub-batch there is no ordering guarantee.
type Controller struct {
	rpc           solana.RPCClient
	store         storage.TradeStore
	archive       storage.TradeStore // optional secondary sink
	classifier    *Classifier
	subBatchSize  int
	subBatchDelay time.Duration
	logger        *log.Logger
}

// ControllerOptions contains configuration for creating a Controller.
type ControllerOptions struct {
	RPC           solana.RPCClient
	Store         storage.TradeStore
	Archive       storage.TradeStore // optional
	Classifier    *Classifier
	SubBatchSize  int
	SubBatchDelay time.Duration
	Logger        *log.Logger
}

// NewController creates a new batch concurrency controller.
func NewController(opts ControllerOptions) *Controller {
	subBatchSize := opts.SubBatchSize
	if subBatchSize == 0 {
		subBatchSize = DefaultSubBatchSize
	}

	subBatchDelay := opts.SubBatchDelay
	if subBatchDelay == 0 {
		subBatchDelay = DefaultSubBatchDelay
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &Controller{
		rpc:           opts.RPC,
		store:         opts.Store,
		archive:       opts.Archive,
		classifier:    opts.Classifier,
		subBatchSize:  subBatchSize,
		subBatchDelay: subBatchDelay,
		logger:        logger,
	}
}

// IngestResult contains statistics from one ingestion run.
type IngestResult struct {
	Pages      int
	Signatures int
	Stored     int
	Duplicates int
	Rejected   int
	Errors     int
	Duration   time.Duration
}

// counters aggregates per-signature outcomes across goroutines.
type counters struct {
	stored     atomic.Int64
	duplicates atomic.Int64
	rejected   atomic.Int64
	errors     atomic.Int64
}

// Run pages through the pool's signature history and processes every
// signature until the pager is exhausted or the context is cancelled.
// Per-signature failures are logged, counted and skipped; only page-fetch
// failures (already retried inside the RPC client) abort the run.
func (c *Controller) Run(ctx context.Context, pager *SignaturePager) (*IngestResult, error) {
	start := time.Now()
	result := &IngestResult{}
	var cnt counters

	for {
		if err := ctx.Err(); err != nil {
			c.finish(result, &cnt, start)
			return result, err
		}

		page, err := pager.Next(ctx)
		if err != nil {
			c.finish(result, &cnt, start)
			return result, err
		}
		if len(page) == 0 && pager.Exhausted() {
			break
		}

		result.Pages++
		result.Signatures += len(page)
		observability.RecordPageFetched(len(page))
		c.logger.Printf("Fetched page of %d signatures", len(page))

		for i := 0; i < len(page); i += c.subBatchSize {
			end := i + c.subBatchSize
			if end > len(page) {
				end = len(page)
			}

			batchStart := time.Now()
			c.processSubBatch(ctx, page[i:end], &cnt)
			observability.ObserveSubBatch(time.Since(batchStart).Seconds())

			if err := c.pause(ctx); err != nil {
				c.finish(result, &cnt, start)
				return result, err
			}
		}
	}

	c.finish(result, &cnt, start)
	c.logger.Printf("Ingestion complete: %d pages, %d signatures, %d stored, %d dupes, %d rejected, %d errors in %v",
		result.Pages, result.Signatures, result.Stored, result.Duplicates, result.Rejected, result.Errors, result.Duration)

	return result, nil
}

// processSubBatch runs one goroutine per signature and joins them all
// before returning. No individual failure aborts the sub-batch.
func (c *Controller) processSubBatch(ctx context.Context, sigs []solana.SignatureInfo, cnt *counters) {
	var wg sync.WaitGroup
	wg.Add(len(sigs))

	for _, sig := range sigs {
		go func(sig solana.SignatureInfo) {
			defer wg.Done()
			c.processSignature(ctx, sig, cnt)
		}(sig)
	}

	wg.Wait()
}

// processSignature fetches, classifies and persists one signature.
func (c *Controller) processSignature(ctx context.Context, sig solana.SignatureInfo, cnt *counters) {
	tx, err := c.rpc.GetTransaction(ctx, sig.Signature)
	if err != nil {
		cnt.errors.Add(1)
		observability.RecordUnitError("fetch")
		c.logger.Printf("Error fetching transaction %s: %v", sig.Signature, err)
		return
	}
	if tx == nil {
		cnt.rejected.Add(1)
		observability.RecordTradeRejected()
		return
	}

	trade := c.classifier.Classify(tx, c.resolveBlockTime(ctx, tx))
	if trade == nil {
		cnt.rejected.Add(1)
		observability.RecordTradeRejected()
		return
	}

	if err := c.store.Insert(ctx, trade); err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			cnt.duplicates.Add(1)
			observability.RecordDuplicateTrade()
			return
		}
		cnt.errors.Add(1)
		observability.RecordUnitError("insert")
		c.logger.Printf("Error inserting trade %s: %v", trade.TxSignature, err)
		return
	}

	cnt.stored.Add(1)
	observability.RecordTradeStored(trade.Timestamp)

	if c.archive != nil {
		if err := c.archive.Insert(ctx, trade); err != nil {
			observability.RecordUnitError("archive")
			c.logger.Printf("Error archiving trade %s: %v", trade.TxSignature, err)
		}
	}
}

// resolveBlockTime returns the block time for a transaction in unix
// seconds, falling back to a getBlockTime call when the transaction record
// carries none. 0 means unknown; callers must not read it as the epoch.
func (c *Controller) resolveBlockTime(ctx context.Context, tx *solana.Transaction) int64 {
	if tx.BlockTime > 0 {
		return tx.BlockTime
	}
	if tx.Slot <= 0 {
		return 0
	}
	bt, err := c.rpc.GetBlockTime(ctx, tx.Slot)
	if err != nil || bt == nil {
		return 0
	}
	return *bt
}

// pause sleeps the inter-batch delay, honoring cancellation.
func (c *Controller) pause(ctx context.Context) error {
	timer := time.NewTimer(c.subBatchDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// finish folds the atomic counters into the result.
func (c *Controller) finish(result *IngestResult, cnt *counters, start time.Time) {
	result.Stored = int(cnt.stored.Load())
	result.Duplicates = int(cnt.duplicates.Load())
	result.Rejected = int(cnt.rejected.Load())
	result.Errors = int(cnt.errors.Load())
	result.Duration = time.Since(start)
}
