package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordCoverageRun(t *testing.T) {
	runsBefore := testutil.ToFloat64(CoverageRunsTotal.WithLabelValues("cli"))
	topicsBefore := testutil.ToFloat64(TopicsEvaluatedTotal)
	matchedBefore := testutil.ToFloat64(TopicsMatchedTotal)

	RecordCoverageRun("cli", 3*time.Millisecond, 8, 5, 62.5)

	assert.Equal(t, runsBefore+1, testutil.ToFloat64(CoverageRunsTotal.WithLabelValues("cli")))
	assert.Equal(t, topicsBefore+8, testutil.ToFloat64(TopicsEvaluatedTotal))
	assert.Equal(t, matchedBefore+5, testutil.ToFloat64(TopicsMatchedTotal))
	assert.Equal(t, 62.5, testutil.ToFloat64(LastOverallCoverage))
}

func TestRecordPersist(t *testing.T) {
	okBefore := testutil.ToFloat64(ReportsPersistedTotal.WithLabelValues("success"))
	errBefore := testutil.ToFloat64(ReportsPersistedTotal.WithLabelValues("error"))

	RecordPersist(nil)
	RecordPersist(errors.New("connection refused"))

	assert.Equal(t, okBefore+1, testutil.ToFloat64(ReportsPersistedTotal.WithLabelValues("success")))
	assert.Equal(t, errBefore+1, testutil.ToFloat64(ReportsPersistedTotal.WithLabelValues("error")))
}

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("POST", "/coverage", "200"))

	RecordAPIRequest("POST", "/coverage", 200, 12*time.Millisecond)

	assert.Equal(t, before+1, testutil.ToFloat64(APIRequestsTotal.WithLabelValues("POST", "/coverage", "200")))
}

func TestRecordRateLimitHit(t *testing.T) {
	before := testutil.ToFloat64(APIRateLimitHits.WithLabelValues("/match"))

	RecordRateLimitHit("/match")
	RecordRateLimitHit("/match")

	assert.Equal(t, before+2, testutil.ToFloat64(APIRateLimitHits.WithLabelValues("/match")))
}
