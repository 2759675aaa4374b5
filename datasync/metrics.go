package datasync

import (
	"github.com/tradenet/go-bulletin/metrics"
)

const subsystem = "datasync"

var (
	requests = metrics.NewCounter(
		"requests",
		subsystem,
		"number of outgoing get data requests by kind and result",
		[]string{"kind", "result"},
	)
	served = metrics.NewCounter(
		"served",
		subsystem,
		"number of served get data requests by kind",
		[]string{"kind"},
	)
	truncated = metrics.NewCounter(
		"truncated",
		subsystem,
		"number of truncated responses by category",
		[]string{"category"},
	)
	receivedItems = metrics.NewCounter(
		"received_items",
		subsystem,
		"number of items received in responses by category and result",
		[]string{"category", "result"},
	)
)

func requestKind(updated bool) string {
	if updated {
		return "updated"
	}
	return "preliminary"
}
