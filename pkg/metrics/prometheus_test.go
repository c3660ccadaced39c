package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewWithRegistry(reg)

	r.RecordSample("bearish-first")
	r.RecordSample("bearish-first")
	r.RecordSkip("ephemeris_unavailable")
	r.RecordEvents("bearish-first", 5)
	r.RecordError("consumer_params")
	r.RecordLatency("timeline", 0.25)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.samples.WithLabelValues("bearish-first")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.skipped.WithLabelValues("ephemeris_unavailable")))
	assert.Equal(t, 5.0, testutil.ToFloat64(r.events.WithLabelValues("bearish-first")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.errorsTotal.WithLabelValues("consumer_params")))

	n, err := testutil.GatherAndCount(reg, "astrosignal_operation_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
