package p2p

import (
	"github.com/tradenet/go-bulletin/metrics"
)

const namespace = "p2p"

var (
	connections = metrics.NewGauge(
		"connections",
		namespace,
		"number of open connections",
		[]string{"direction"},
	)
	disconnects = metrics.NewCounter(
		"disconnects",
		namespace,
		"number of disconnected peers",
		[]string{"reason"},
	)
)
