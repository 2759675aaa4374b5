package persist

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/syndtr/goleveldb/leveldb"
	"go.uber.org/zap"

	"github.com/tradenet/go-bulletin/codec"
	"github.com/tradenet/go-bulletin/common/types"
)

// Value is a pointer to a type that can be stored by the Manager.
type Value[V any] interface {
	*V
	codec.Encodable
	codec.Decodable
}

type options struct {
	logger   *zap.Logger
	clock    clockwork.Clock
	interval time.Duration
}

// Opt configures a Manager.
type Opt func(*options)

func WithLogger(logger *zap.Logger) Opt {
	return func(o *options) {
		o.logger = logger
	}
}

// WithFlushInterval sets how often pending changes are written to the database.
func WithFlushInterval(interval time.Duration) Opt {
	return func(o *options) {
		o.interval = interval
	}
}

func withClock(clock clockwork.Clock) Opt {
	return func(o *options) {
		o.clock = clock
	}
}

// Manager keeps values of a single bucket. Requests are applied to memory
// immediately and written to the database in batches by Run.
type Manager[V any, P Value[V]] struct {
	options
	db     *DB
	bucket []byte

	mu      sync.Mutex
	pending map[types.Hash32][]byte // nil value is a delete
}

// NewManager creates a manager for the bucket.
func NewManager[V any, P Value[V]](db *DB, bucket string, opts ...Opt) *Manager[V, P] {
	m := &Manager[V, P]{
		options: options{
			logger:   zap.NewNop(),
			clock:    clockwork.NewRealClock(),
			interval: time.Second,
		},
		db:      db,
		bucket:  append([]byte(bucket), '/'),
		pending: make(map[types.Hash32][]byte),
	}
	for _, opt := range opts {
		opt(&m.options)
	}
	m.logger = m.logger.With(zap.String("bucket", bucket))
	return m
}

// RequestPersist schedules value to be written under key. It never blocks on I/O.
func (m *Manager[V, P]) RequestPersist(key types.Hash32, value P) {
	buf, err := codec.Encode(value)
	if err != nil {
		m.logger.Error("failed to encode value", zap.Stringer("key", key), zap.Error(err))
		return
	}
	m.mu.Lock()
	m.pending[key] = buf
	pendingRequests.WithLabelValues(m.bucketName()).Set(float64(len(m.pending)))
	m.mu.Unlock()
}

// RequestDelete schedules key to be deleted. It never blocks on I/O.
func (m *Manager[V, P]) RequestDelete(key types.Hash32) {
	m.mu.Lock()
	m.pending[key] = nil
	pendingRequests.WithLabelValues(m.bucketName()).Set(float64(len(m.pending)))
	m.mu.Unlock()
}

// Flush writes all pending requests in a single batch.
func (m *Manager[V, P]) Flush() error {
	m.mu.Lock()
	pending := m.pending
	m.pending = make(map[types.Hash32][]byte, len(pending))
	m.mu.Unlock()
	if len(pending) == 0 {
		return nil
	}

	var batch leveldb.Batch
	var deletes int
	for key, value := range pending {
		if value == nil {
			batch.Delete(m.key(key))
			deletes++
		} else {
			batch.Put(m.key(key), value)
		}
	}
	start := time.Now()
	if err := m.db.write(&batch); err != nil {
		flushes.WithLabelValues(m.bucketName(), "failure").Inc()
		m.mu.Lock()
		for key, value := range pending {
			if _, ok := m.pending[key]; !ok {
				m.pending[key] = value
			}
		}
		m.mu.Unlock()
		return fmt.Errorf("write batch: %w", err)
	}
	flushes.WithLabelValues(m.bucketName(), "success").Inc()
	flushLatency.WithLabelValues(m.bucketName()).Observe(time.Since(start).Seconds())
	pendingRequests.WithLabelValues(m.bucketName()).Set(0)
	m.logger.Debug("flushed pending changes",
		zap.Int("puts", len(pending)-deletes),
		zap.Int("deletes", deletes),
	)
	return nil
}

// GetPersisted returns all values stored in the bucket.
// Values that fail to decode are skipped.
func (m *Manager[V, P]) GetPersisted(ctx context.Context) (map[types.Hash32]P, error) {
	rst := make(map[types.Hash32]P)
	var corrupted int
	err := m.db.iterate(m.bucket, func(key, value []byte) bool {
		if ctx.Err() != nil {
			return false
		}
		if len(key) != len(m.bucket)+types.Hash32Length {
			corrupted++
			return true
		}
		v := P(new(V))
		if err := codec.Decode(value, v); err != nil {
			corrupted++
			return true
		}
		rst[types.BytesToHash(key[len(m.bucket):])] = v
		return true
	})
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if corrupted > 0 {
		m.logger.Warn("skipped corrupted records", zap.Int("count", corrupted))
	}
	return rst, nil
}

// Run flushes pending requests periodically until ctx is canceled.
// Pending requests are flushed once more before it returns.
func (m *Manager[V, P]) Run(ctx context.Context) error {
	ticker := m.clock.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			if err := m.Flush(); err != nil {
				m.logger.Error("final flush failed", zap.Error(err))
			}
			return nil
		case <-ticker.Chan():
			if err := m.Flush(); err != nil {
				m.logger.Error("flush failed", zap.Error(err))
			}
		}
	}
}

func (m *Manager[V, P]) key(key types.Hash32) []byte {
	buf := make([]byte, 0, len(m.bucket)+len(key))
	buf = append(buf, m.bucket...)
	return append(buf, key[:]...)
}

func (m *Manager[V, P]) bucketName() string {
	return string(m.bucket[:len(m.bucket)-1])
}
