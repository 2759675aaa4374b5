package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/tradenet/go-bulletin/common/types"
	"github.com/tradenet/go-bulletin/persist"
)

func newLedger(tb testing.TB, db *persist.DB) (*Ledger, *persist.Manager[Record, *Record]) {
	tb.Helper()
	records := persist.NewManager[Record](db, "ledger")
	return New(records, WithLogger(zaptest.NewLogger(tb))), records
}

func TestLedger_PutGet(t *testing.T) {
	l, _ := newLedger(t, persist.InMemory())
	hash := types.RandomHash()
	_, ok := l.Get(hash)
	require.False(t, ok)

	now := time.UnixMilli(1_700_000_000_000)
	l.Put(hash, 3, now)
	record, ok := l.Get(hash)
	require.True(t, ok)
	require.EqualValues(t, 3, record.Sequence)
	require.Equal(t, now, record.Time)
	require.Equal(t, 1, l.Len())
}

func TestLedger_Purge(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)
	retention := 10 * 24 * time.Hour

	l, _ := newLedger(t, persist.InMemory())
	old := []types.Hash32{types.RandomHash(), types.RandomHash()}
	fresh := []types.Hash32{types.RandomHash(), types.RandomHash(), types.RandomHash()}
	for _, hash := range old {
		l.Put(hash, 1, now.Add(-retention-time.Minute))
	}
	for _, hash := range fresh {
		l.Put(hash, 1, now.Add(-retention+time.Minute))
	}

	t.Run("below threshold", func(t *testing.T) {
		require.Zero(t, l.Purge(now, retention, 5))
		require.Equal(t, 5, l.Len())
	})
	t.Run("above threshold", func(t *testing.T) {
		require.Equal(t, 2, l.Purge(now, retention, 4))
		require.Equal(t, 3, l.Len())
		for _, hash := range old {
			_, ok := l.Get(hash)
			require.False(t, ok)
		}
		for _, hash := range fresh {
			_, ok := l.Get(hash)
			require.True(t, ok)
		}
	})
	t.Run("newer records are kept regardless of count", func(t *testing.T) {
		require.Zero(t, l.Purge(now, retention, 0))
		require.Equal(t, 3, l.Len())
	})
}

func TestLedger_Restart(t *testing.T) {
	db := persist.InMemory()
	t.Cleanup(func() { require.NoError(t, db.Close()) })
	now := time.UnixMilli(1_700_000_000_000)

	l, records := newLedger(t, db)
	kept, purged := types.RandomHash(), types.RandomHash()
	l.Put(kept, 5, now)
	l.Put(purged, 1, now.Add(-48*time.Hour))
	require.Equal(t, 1, l.Purge(now, 24*time.Hour, 1))
	require.NoError(t, records.Flush())

	restored, _ := newLedger(t, db)
	require.NoError(t, restored.Load(context.Background()))
	require.Equal(t, 1, restored.Len())
	record, ok := restored.Get(kept)
	require.True(t, ok)
	require.EqualValues(t, 5, record.Sequence)
	require.True(t, now.Equal(record.Time))
	_, ok = restored.Get(purged)
	require.False(t, ok)
}
