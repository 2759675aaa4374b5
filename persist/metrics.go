package persist

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tradenet/go-bulletin/metrics"
)

const namespace = "persist"

var (
	pendingRequests = metrics.NewGauge(
		"pending",
		namespace,
		"number of changes waiting to be flushed",
		[]string{"bucket"},
	)
	flushes = metrics.NewCounter(
		"flushes",
		namespace,
		"number of flushed batches",
		[]string{"bucket", "result"},
	)
	flushLatency = metrics.NewHistogramWithBuckets(
		"flush_latency_seconds",
		namespace,
		"latency of writing a batch",
		[]string{"bucket"},
		prometheus.ExponentialBuckets(0.0005, 2, 12),
	)
)
