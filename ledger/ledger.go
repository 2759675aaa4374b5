// Package ledger keeps the highest sequence number accepted for every payload.
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/spacemeshos/go-scale"
	"go.uber.org/zap"

	"github.com/tradenet/go-bulletin/common/types"
)

// Record is the last accepted sequence number and the time it was accepted.
type Record struct {
	Sequence uint32
	Time     time.Time
}

func (r *Record) EncodeScale(enc *scale.Encoder) (int, error) {
	var total int
	{
		n, err := scale.EncodeCompact32(enc, r.Sequence)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := scale.EncodeCompact64(enc, uint64(r.Time.UnixMilli()))
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

func (r *Record) DecodeScale(dec *scale.Decoder) (int, error) {
	var total int
	{
		field, n, err := scale.DecodeCompact32(dec)
		if err != nil {
			return total, err
		}
		total += n
		r.Sequence = field
	}
	{
		field, n, err := scale.DecodeCompact64(dec)
		if err != nil {
			return total, err
		}
		total += n
		r.Time = time.UnixMilli(int64(field))
	}
	return total, nil
}

// Persister writes records behind the ledger.
type Persister interface {
	RequestPersist(types.Hash32, *Record)
	RequestDelete(types.Hash32)
	GetPersisted(context.Context) (map[types.Hash32]*Record, error)
}

// Opt configures the Ledger.
type Opt func(*Ledger)

func WithLogger(logger *zap.Logger) Opt {
	return func(l *Ledger) {
		l.logger = logger
	}
}

// Ledger is not safe for concurrent use, the owner serializes access to it.
type Ledger struct {
	logger    *zap.Logger
	persister Persister
	records   map[types.Hash32]Record
}

// New creates an empty ledger. Use Load to restore persisted records.
func New(persister Persister, opts ...Opt) *Ledger {
	l := &Ledger{
		logger:    zap.NewNop(),
		persister: persister,
		records:   make(map[types.Hash32]Record),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load replaces the records in memory with the persisted ones.
func (l *Ledger) Load(ctx context.Context) error {
	persisted, err := l.persister.GetPersisted(ctx)
	if err != nil {
		return fmt.Errorf("load ledger: %w", err)
	}
	l.records = make(map[types.Hash32]Record, len(persisted))
	for hash, record := range persisted {
		l.records[hash] = *record
	}
	ledgerSize.Set(float64(len(l.records)))
	l.logger.Info("loaded sequence number ledger", zap.Int("records", len(l.records)))
	return nil
}

func (l *Ledger) Get(hash types.Hash32) (Record, bool) {
	record, ok := l.records[hash]
	return record, ok
}

// Put records seq as the last accepted sequence number for the hash.
func (l *Ledger) Put(hash types.Hash32, seq uint32, now time.Time) {
	record := Record{Sequence: seq, Time: now}
	l.records[hash] = record
	l.persister.RequestPersist(hash, &record)
	ledgerSize.Set(float64(len(l.records)))
}

func (l *Ledger) Len() int {
	return len(l.records)
}

// Purge removes records older than retention, only if there are more than threshold records.
// Returns the number of removed records.
func (l *Ledger) Purge(now time.Time, retention time.Duration, threshold int) int {
	if len(l.records) <= threshold {
		return 0
	}
	cutoff := now.Add(-retention)
	var removed int
	for hash, record := range l.records {
		if record.Time.Before(cutoff) {
			delete(l.records, hash)
			l.persister.RequestDelete(hash)
			removed++
		}
	}
	ledgerSize.Set(float64(len(l.records)))
	purgedRecords.Add(float64(removed))
	return removed
}
