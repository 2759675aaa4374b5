package persist

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/spacemeshos/go-scale"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/sync/errgroup"

	"github.com/tradenet/go-bulletin/common/types"
)

type counter struct {
	Value uint64
}

func (c *counter) EncodeScale(enc *scale.Encoder) (int, error) {
	return scale.EncodeCompact64(enc, c.Value)
}

func (c *counter) DecodeScale(dec *scale.Decoder) (int, error) {
	v, n, err := scale.DecodeCompact64(dec)
	c.Value = v
	return n, err
}

func TestManager_PersistDelete(t *testing.T) {
	db := InMemory()
	t.Cleanup(func() { require.NoError(t, db.Close()) })
	m := NewManager[counter](db, "counters", WithLogger(zaptest.NewLogger(t)))

	first, second := types.RandomHash(), types.RandomHash()
	m.RequestPersist(first, &counter{Value: 1})
	m.RequestPersist(second, &counter{Value: 2})

	persisted, err := m.GetPersisted(context.Background())
	require.NoError(t, err)
	require.Empty(t, persisted, "nothing is written before flush")

	require.NoError(t, m.Flush())
	persisted, err = m.GetPersisted(context.Background())
	require.NoError(t, err)
	require.Len(t, persisted, 2)
	require.EqualValues(t, 1, persisted[first].Value)
	require.EqualValues(t, 2, persisted[second].Value)

	m.RequestPersist(first, &counter{Value: 10})
	m.RequestDelete(second)
	require.NoError(t, m.Flush())
	persisted, err = m.GetPersisted(context.Background())
	require.NoError(t, err)
	require.Len(t, persisted, 1)
	require.EqualValues(t, 10, persisted[first].Value)
}

func TestManager_BucketsAreIsolated(t *testing.T) {
	db := InMemory()
	t.Cleanup(func() { require.NoError(t, db.Close()) })
	a := NewManager[counter](db, "a")
	ab := NewManager[counter](db, "ab")

	key := types.RandomHash()
	a.RequestPersist(key, &counter{Value: 1})
	ab.RequestPersist(types.RandomHash(), &counter{Value: 2})
	require.NoError(t, a.Flush())
	require.NoError(t, ab.Flush())

	persisted, err := a.GetPersisted(context.Background())
	require.NoError(t, err)
	require.Len(t, persisted, 1)
	require.Contains(t, persisted, key)
}

func TestManager_Run(t *testing.T) {
	db := InMemory()
	t.Cleanup(func() { require.NoError(t, db.Close()) })
	clock := clockwork.NewFakeClock()
	m := NewManager[counter](db, "counters", withClock(clock), WithFlushInterval(time.Second))

	ctx, cancel := context.WithCancel(context.Background())
	var eg errgroup.Group
	eg.Go(func() error { return m.Run(ctx) })

	key := types.RandomHash()
	m.RequestPersist(key, &counter{Value: 7})
	clock.BlockUntil(1)
	clock.Advance(time.Second)
	require.Eventually(t, func() bool {
		persisted, err := m.GetPersisted(context.Background())
		return err == nil && len(persisted) == 1
	}, time.Second, 10*time.Millisecond)

	m.RequestDelete(key)
	cancel()
	require.NoError(t, eg.Wait())
	persisted, err := m.GetPersisted(context.Background())
	require.NoError(t, err)
	require.Empty(t, persisted, "pending changes are flushed on shutdown")
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state")
	logger := zaptest.NewLogger(t)
	db, err := Open(path, 0, logger)
	require.NoError(t, err)

	key := types.RandomHash()
	m := NewManager[counter](db, "counters")
	m.RequestPersist(key, &counter{Value: 3})
	require.NoError(t, m.Flush())
	require.NoError(t, db.Close())

	db, err = Open(path, 0, logger)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, db.Close()) })
	persisted, err := NewManager[counter](db, "counters").GetPersisted(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 3, persisted[key].Value)
}
