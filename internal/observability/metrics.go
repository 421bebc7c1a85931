// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the ingestion pipeline.
type Metrics struct {
	// Paging metrics
	PagesFetched      prometheus.Counter
	SignaturesFetched prometheus.Counter

	// Reconstruction metrics
	TradesStored    prometheus.Counter
	TradesRejected  prometheus.Counter
	DuplicateTrades prometheus.Counter
	UnitErrors      *prometheus.CounterVec

	// Latency metrics
	SubBatchDuration prometheus.Histogram
	RPCCallLatency   *prometheus.HistogramVec

	// Health metrics
	LastStoredTimestamp prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "trade_indexer"
	}

	return &Metrics{
		PagesFetched: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "paging",
			Name:      "pages_fetched_total",
			Help:      "Total number of signature pages fetched",
		}),
		SignaturesFetched: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "paging",
			Name:      "signatures_fetched_total",
			Help:      "Total number of signatures fetched",
		}),
		TradesStored: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "trades_stored_total",
			Help:      "Total number of trades persisted",
		}),
		TradesRejected: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "trades_rejected_total",
			Help:      "Total number of transactions classified as non-trades",
		}),
		DuplicateTrades: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "duplicate_trades_total",
			Help:      "Total number of inserts skipped as already persisted",
		}),
		UnitErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "unit_errors_total",
			Help:      "Total number of per-signature failures by stage",
		}, []string{"stage"}),
		SubBatchDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "sub_batch_duration_seconds",
			Help:      "Duration of concurrent sub-batch processing",
			Buckets:   prometheus.DefBuckets,
		}),
		RPCCallLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "rpc",
			Name:      "call_duration_seconds",
			Help:      "Solana RPC call latency by method",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		LastStoredTimestamp: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_stored_trade_timestamp",
			Help:      "Block time of the most recently stored trade",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordPageFetched increments paging counters for one page.
func RecordPageFetched(signatures int) {
	DefaultMetrics.PagesFetched.Inc()
	DefaultMetrics.SignaturesFetched.Add(float64(signatures))
}

// RecordTradeStored increments the stored counter and health gauge.
func RecordTradeStored(timestamp int64) {
	DefaultMetrics.TradesStored.Inc()
	if timestamp > 0 {
		DefaultMetrics.LastStoredTimestamp.Set(float64(timestamp))
	}
}

// RecordTradeRejected increments the rejected counter.
func RecordTradeRejected() {
	DefaultMetrics.TradesRejected.Inc()
}

// RecordDuplicateTrade increments the duplicate counter.
func RecordDuplicateTrade() {
	DefaultMetrics.DuplicateTrades.Inc()
}

// RecordUnitError increments the per-signature failure counter for a stage.
func RecordUnitError(stage string) {
	DefaultMetrics.UnitErrors.WithLabelValues(stage).Inc()
}

// ObserveSubBatch records the duration of one sub-batch.
func ObserveSubBatch(seconds float64) {
	DefaultMetrics.SubBatchDuration.Observe(seconds)
}
