package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"solana-trade-indexer/internal/ingestion"
	"solana-trade-indexer/internal/observability"
	"solana-trade-indexer/internal/raydium"
	"solana-trade-indexer/internal/solana"
	"solana-trade-indexer/internal/storage"
	chstore "solana-trade-indexer/internal/storage/clickhouse"
	"solana-trade-indexer/internal/storage/memory"
	"solana-trade-indexer/internal/storage/migrations"
	pgstore "solana-trade-indexer/internal/storage/postgres"
)

func main() {
	// Parse flags
	token := flag.String("token", "", "Token mint address to ingest")
	rpcEndpoint := flag.String("rpc-endpoint", "", "Solana RPC HTTP endpoint")
	raydiumAPI := flag.String("raydium-api", "", "Raydium v3 API endpoint (default public API)")
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", "", "Optional ClickHouse DSN for the analytical archive")
	poolSelect := flag.String("pool-select", "last", "Pool selection policy: last or tvl")
	subBatchSize := flag.Int("sub-batch-size", ingestion.DefaultSubBatchSize, "Concurrent signatures per sub-batch")
	subBatchDelay := flag.Duration("sub-batch-delay", ingestion.DefaultSubBatchDelay, "Pause between sub-batches")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL (dry run)")
	metricsAddr := flag.String("metrics-addr", ":9090", "Prometheus metrics HTTP address (empty to disable)")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stdout, "[ingest] ", log.LstdFlags|log.Lshortfile)

	if *token == "" {
		logger.Fatal("No token specified. Use --token")
	}
	if *rpcEndpoint == "" {
		logger.Fatal("No RPC endpoint specified. Use --rpc-endpoint")
	}
	if !*useMemory && *postgresDSN == "" {
		logger.Fatal("No PostgreSQL DSN specified. Use --postgres-dsn or --use-memory")
	}

	selector, err := resolveSelector(*poolSelect)
	if err != nil {
		logger.Fatalf("Invalid pool selection policy: %v", err)
	}

	// Start metrics server if enabled
	if *metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", observability.Handler())
			mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				w.Write([]byte("ok"))
			})
			logger.Printf("Starting metrics server on %s", *metricsAddr)
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil && err != http.ErrServerClosed {
				logger.Printf("Metrics server error: %v", err)
			}
		}()
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())

	// Handle shutdown signals with graceful timeout
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan error, 1)

	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
		cancel()

		select {
		case sig := <-sigCh:
			logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Println("Graceful shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		case <-done:
			// Normal shutdown completed
		}
	}()

	err = run(ctx, logger, runConfig{
		token:         *token,
		rpcEndpoint:   *rpcEndpoint,
		raydiumAPI:    *raydiumAPI,
		postgresDSN:   *postgresDSN,
		clickhouseDSN: *clickhouseDSN,
		selector:      selector,
		subBatchSize:  *subBatchSize,
		subBatchDelay: *subBatchDelay,
		useMemory:     *useMemory,
	})

	done <- err
	cancel()

	if err != nil && err != context.Canceled {
		logger.Fatalf("Error: %v", err)
	}

	logger.Println("Shutdown complete")
}

type runConfig struct {
	token         string
	rpcEndpoint   string
	raydiumAPI    string
	postgresDSN   string
	clickhouseDSN string
	selector      raydium.PoolSelector
	subBatchSize  int
	subBatchDelay time.Duration
	useMemory     bool
}

// run performs the setup phase and drives the ingestion loop. Every
// failure before the first page is fatal.
func run(ctx context.Context, logger *log.Logger, cfg runConfig) error {
	rpc := solana.NewHTTPClient(cfg.rpcEndpoint)

	// Resolve pool vaults
	pools := raydium.NewPoolsClient(cfg.raydiumAPI)
	vaults, poolID, err := raydium.ResolvePoolVaults(ctx, pools, rpc, cfg.token, cfg.selector)
	if err != nil {
		return err
	}
	logger.Printf("Resolved pool %s (base=%s quote=%s)", poolID, vaults.BaseMint, vaults.QuoteMint)

	authority, err := raydium.DeriveAuthority(raydium.AMMV4Program)
	if err != nil {
		return err
	}

	// Connect storage
	var store storage.TradeStore
	if cfg.useMemory {
		store = memory.NewTradeStore()
		logger.Println("Using in-memory storage")
	} else {
		pool, err := pgstore.NewPool(ctx, cfg.postgresDSN)
		if err != nil {
			return err
		}
		defer pool.Close()

		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			return err
		}
		store = pgstore.NewTradeStore(pool)
	}

	var archive storage.TradeStore
	if cfg.clickhouseDSN != "" {
		conn, err := migrations.RunClickhouseMigrations(ctx, cfg.clickhouseDSN)
		if err != nil {
			return err
		}
		defer conn.Close()
		archive = chstore.NewTradeStore(conn)
		logger.Println("ClickHouse archive enabled")
	}

	// Resume from the oldest persisted trade, if any
	resumeBefore, err := ingestion.ResolveResumeCursor(ctx, store, cfg.token)
	if err != nil {
		return err
	}
	if resumeBefore != "" {
		logger.Printf("Resuming before signature %s", resumeBefore)
	}

	pager := ingestion.NewSignaturePager(rpc, poolID, resumeBefore)
	controller := ingestion.NewController(ingestion.ControllerOptions{
		RPC:           rpc,
		Store:         store,
		Archive:       archive,
		Classifier:    ingestion.NewClassifier(cfg.token, authority, vaults),
		SubBatchSize:  cfg.subBatchSize,
		SubBatchDelay: cfg.subBatchDelay,
		Logger:        logger,
	})

	_, err = controller.Run(ctx, pager)
	return err
}

// resolveSelector maps the pool-select flag to a selection policy.
func resolveSelector(policy string) (raydium.PoolSelector, error) {
	switch policy {
	case "last":
		return raydium.SelectLast, nil
	case "tvl":
		return raydium.SelectByTVL, nil
	default:
		return nil, fmt.Errorf("unknown policy %q (want last or tvl)", policy)
	}
}
