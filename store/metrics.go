package store

import (
	"github.com/tradenet/go-bulletin/metrics"
)

const subsystem = "store"

var (
	operations = metrics.NewCounter(
		"operations",
		subsystem,
		"number of store operations by result",
		[]string{"operation", "result"},
	)
	protectedEntries = metrics.NewGauge(
		"protected_entries",
		subsystem,
		"number of live protected entries",
		[]string{},
	).WithLabelValues()
	appendOnlyPayloads = metrics.NewGauge(
		"append_only_payloads",
		subsystem,
		"number of append-only payloads",
		[]string{},
	).WithLabelValues()
	expiredEntries = metrics.NewCounter(
		"expired_entries",
		subsystem,
		"number of protected entries removed by expiration",
		[]string{"kind"},
	)
	backdatedEntries = metrics.NewCounter(
		"backdated_entries",
		subsystem,
		"number of entries backdated after an unexpected disconnect",
		[]string{},
	).WithLabelValues()
	gossipMessages = metrics.NewCounter(
		"gossip_messages",
		subsystem,
		"number of gossip messages by type and result",
		[]string{"type", "result"},
	)
)

const (
	opAdd        = "add"
	opRemove     = "remove"
	opRefresh    = "refresh"
	opAppendOnly = "append_only"

	resultAccepted = "accepted"
	resultRejected = "rejected"
	resultKnown    = "known"
)
