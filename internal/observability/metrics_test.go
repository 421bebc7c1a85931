package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordHelpers(t *testing.T) {
	pagesBefore := testutil.ToFloat64(DefaultMetrics.PagesFetched)
	sigsBefore := testutil.ToFloat64(DefaultMetrics.SignaturesFetched)
	RecordPageFetched(400)
	assert.Equal(t, pagesBefore+1, testutil.ToFloat64(DefaultMetrics.PagesFetched))
	assert.Equal(t, sigsBefore+400, testutil.ToFloat64(DefaultMetrics.SignaturesFetched))

	storedBefore := testutil.ToFloat64(DefaultMetrics.TradesStored)
	RecordTradeStored(1700000000)
	assert.Equal(t, storedBefore+1, testutil.ToFloat64(DefaultMetrics.TradesStored))
	assert.Equal(t, float64(1700000000), testutil.ToFloat64(DefaultMetrics.LastStoredTimestamp))

	// Unknown timestamps must not move the health gauge.
	RecordTradeStored(0)
	assert.Equal(t, float64(1700000000), testutil.ToFloat64(DefaultMetrics.LastStoredTimestamp))

	errsBefore := testutil.ToFloat64(DefaultMetrics.UnitErrors.WithLabelValues("fetch"))
	RecordUnitError("fetch")
	assert.Equal(t, errsBefore+1, testutil.ToFloat64(DefaultMetrics.UnitErrors.WithLabelValues("fetch")))
}

func TestHandler(t *testing.T) {
	assert.NotNil(t, Handler())
}
