package store

import (
	"context"
	"testing"
	"time"

	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/sync/errgroup"

	"github.com/tradenet/go-bulletin/p2p"
	"github.com/tradenet/go-bulletin/payload"
	"github.com/tradenet/go-bulletin/wire"
)

func TestRemoveExpired(t *testing.T) {
	ts := newTestStore(t)
	signer := newSigner(t)
	offer := newProtected(payload.Offer, signer)
	alert := newProtected(payload.Alert, signer)
	ts.expectBroadcast(t, wire.Add, p2p.NoPeer)
	require.True(t, ts.AddProtectedEntry(context.Background(), ts.sign(t, signer, offer, 1), p2p.NoPeer))
	ts.expectBroadcast(t, wire.Add, p2p.NoPeer)
	require.True(t, ts.AddProtectedEntry(context.Background(), ts.sign(t, signer, alert, 1), p2p.NoPeer))

	ttl := DefaultConfig().TTL[payload.Offer.String()]
	ts.clock.Advance(ttl)
	require.Zero(t, ts.RemoveExpired(), "entry expires after ttl")

	ts.clock.Advance(time.Millisecond)
	require.Equal(t, 1, ts.RemoveExpired())
	_, ok := ts.Get(offer.Hash())
	require.False(t, ok)
	require.Len(t, ts.removed, 1)
	seq, ok := ts.Sequence(offer.Hash())
	require.True(t, ok, "ledger is not touched")
	require.EqualValues(t, 1, seq)

	ts.clock.Advance(365 * 24 * time.Hour)
	require.Zero(t, ts.RemoveExpired(), "alert has no ttl")
	_, ok = ts.Get(alert.Hash())
	require.True(t, ok)
}

func TestRunSweep(t *testing.T) {
	ts := newTestStore(t)
	signer := newSigner(t)
	ts.expectBroadcast(t, wire.Add, p2p.NoPeer)
	require.True(t, ts.AddProtectedEntry(context.Background(),
		ts.sign(t, signer, newProtected(payload.Offer, signer), 1), p2p.NoPeer))

	removed := make(chan []*payload.Entry, 1)
	ts.Listeners().OnProtectedRemoved(func(entries []*payload.Entry) {
		removed <- entries
	})
	ctx, cancel := context.WithCancel(context.Background())
	var eg errgroup.Group
	eg.Go(func() error { return ts.RunSweep(ctx) })
	t.Cleanup(func() {
		cancel()
		require.NoError(t, eg.Wait())
	})

	ts.clock.BlockUntil(1)
	ts.clock.Advance(DefaultConfig().TTL[payload.Offer.String()] + time.Minute)
	select {
	case entries := <-removed:
		require.Len(t, entries, 1)
	case <-time.After(5 * time.Second):
		require.FailNow(t, "expired entry was not removed")
	}
}

func TestPurgeLedger(t *testing.T) {
	ts := newTestStore(t, withConfig(func(cfg *Config) {
		cfg.LedgerPurgeThreshold = 2
		cfg.LedgerRetention = 24 * time.Hour
	}))
	signer := newSigner(t)
	old := newProtected(payload.Offer, signer)
	ts.broadcaster.EXPECT().Broadcast(gomock.Any(), gomock.Any(), p2p.NoPeer).Times(3)
	require.True(t, ts.RemoveProtectedEntry(context.Background(), ts.sign(t, signer, old, 1), p2p.NoPeer))

	ts.clock.Advance(25 * time.Hour)
	fresh := []*payload.Protected{newProtected(payload.Offer, signer), newProtected(payload.Offer, signer)}
	for _, p := range fresh {
		require.True(t, ts.RemoveProtectedEntry(context.Background(), ts.sign(t, signer, p, 1), p2p.NoPeer))
	}
	require.Equal(t, 1, ts.PurgeLedger())
	_, ok := ts.Sequence(old.Hash())
	require.False(t, ok)
	for _, p := range fresh {
		_, ok := ts.Sequence(p.Hash())
		require.True(t, ok)
	}
	require.Zero(t, ts.PurgeLedger(), "ledger is below threshold")

	t.Run("purged record readmits old sequence", func(t *testing.T) {
		ts.expectBroadcast(t, wire.Add, p2p.NoPeer)
		require.True(t, ts.AddProtectedEntry(context.Background(), ts.sign(t, signer, old, 1), p2p.NoPeer))
	})
}

func TestOnDisconnect(t *testing.T) {
	const (
		remote = peer.ID("remote")
		other  = peer.ID("other")
	)
	ttl := DefaultConfig().TTL[payload.Offer.String()]
	delta := DefaultConfig().BackdateDelta
	floor := DefaultConfig().BackdateFloor

	setup := func(t *testing.T) (*testStore, map[string]*payload.Protected) {
		ts := newTestStore(t)
		signer := newSigner(t)
		payloads := map[string]*payload.Protected{
			"remote offer":    newProtected(payload.Offer, signer),
			"other offer":     newProtected(payload.Offer, signer),
			"remote mediator": newProtected(payload.Mediator, signer),
		}
		from := map[string]p2p.Peer{
			"remote offer":    remote,
			"other offer":     other,
			"remote mediator": remote,
		}
		for name, p := range payloads {
			ts.expectBroadcast(t, wire.Add, from[name])
			require.True(t, ts.AddProtectedEntry(context.Background(), ts.sign(t, signer, p, 1), from[name]))
		}
		return ts, payloads
	}
	created := func(t *testing.T, ts *testStore, p *payload.Protected) time.Time {
		entry, ok := ts.Get(p.Hash())
		require.True(t, ok)
		return entry.Created
	}

	t.Run("intended", func(t *testing.T) {
		ts, payloads := setup(t)
		ts.OnDisconnect(remote, p2p.CloseIntended)
		ts.OnDisconnect(remote, p2p.CloseShutdown)
		for _, p := range payloads {
			require.Equal(t, start, created(t, ts, p))
		}
	})
	t.Run("unintended", func(t *testing.T) {
		ts, payloads := setup(t)
		ts.OnDisconnect(remote, p2p.CloseUnintended)
		require.Equal(t, start.Add(-delta), created(t, ts, payloads["remote offer"]))
		require.Equal(t, start, created(t, ts, payloads["other offer"]))
		require.Equal(t, start, created(t, ts, payloads["remote mediator"]), "mediator does not require owner online")
	})
	t.Run("floor", func(t *testing.T) {
		ts, payloads := setup(t)
		for range 10 {
			ts.OnDisconnect(remote, p2p.CloseUnintended)
		}
		now := ts.clock.Now()
		require.Equal(t, now.Add(floor-ttl), created(t, ts, payloads["remote offer"]))
		require.Zero(t, ts.RemoveExpired())
		ts.clock.Advance(floor + time.Millisecond)
		require.Equal(t, 1, ts.RemoveExpired())
	})
	t.Run("no peer", func(t *testing.T) {
		ts, payloads := setup(t)
		ts.OnDisconnect(p2p.NoPeer, p2p.CloseUnintended)
		for _, p := range payloads {
			require.Equal(t, start, created(t, ts, p))
		}
	})
}
