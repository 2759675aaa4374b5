package pubsub

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tradenet/go-bulletin/metrics"
)

const namespace = "pubsub"

var (
	processedMessages = metrics.NewHistogramWithBuckets(
		"processed_seconds",
		namespace,
		"time to validate a gossip message",
		[]string{"topic", "result"},
		prometheus.ExponentialBuckets(0.0001, 2, 14),
	)
	broadcasts = metrics.NewCounter(
		"broadcasts",
		namespace,
		"number of broadcasted messages",
		[]string{"type", "result"},
	)
)
