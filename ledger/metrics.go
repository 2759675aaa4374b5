package ledger

import (
	"github.com/tradenet/go-bulletin/metrics"
)

const namespace = "ledger"

var (
	ledgerSize = metrics.NewGauge(
		"records",
		namespace,
		"number of sequence number records",
		[]string{},
	).WithLabelValues()
	purgedRecords = metrics.NewCounter(
		"purged",
		namespace,
		"number of records removed by purge",
		[]string{},
	).WithLabelValues()
)
