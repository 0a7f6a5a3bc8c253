package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(ClassificationCount.WithLabelValues(PathFallback, "Produtivo"))
	IncrementClassification(PathFallback, "Produtivo")
	assert.Equal(t, before+1, testutil.ToFloat64(ClassificationCount.WithLabelValues(PathFallback, "Produtivo")))

	failures := testutil.ToFloat64(StorageFailureCount)
	IncrementStorageFailure()
	assert.Equal(t, failures+1, testutil.ToFloat64(StorageFailureCount))
}

func TestRecordRemoteCallLatency(t *testing.T) {
	RecordRemoteCallLatency("openai", "ok", 250*time.Millisecond)
	assert.Equal(t, 1, testutil.CollectAndCount(RemoteCallLatency))
}
