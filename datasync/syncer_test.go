package datasync

import (
	"context"
	"slices"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/libp2p/go-libp2p/core/protocol"
	mocknet "github.com/libp2p/go-libp2p/p2p/net/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap/zaptest"
	"golang.org/x/sync/errgroup"

	"github.com/tradenet/go-bulletin/common/types"
	"github.com/tradenet/go-bulletin/ledger"
	"github.com/tradenet/go-bulletin/p2p"
	"github.com/tradenet/go-bulletin/payload"
	"github.com/tradenet/go-bulletin/persist"
	"github.com/tradenet/go-bulletin/signing"
	"github.com/tradenet/go-bulletin/store"
	"github.com/tradenet/go-bulletin/store/mocks"
)

type staticPeers []p2p.Peer

func (p staticPeers) ConnectedPeers() []p2p.Peer {
	return slices.Clone(p)
}

func newStore(tb testing.TB) (*store.Store, *mocks.MockBroadcaster) {
	tb.Helper()
	ctrl := gomock.NewController(tb)
	broadcaster := mocks.NewMockBroadcaster(ctrl)
	db := persist.InMemory()
	verifier, err := signing.NewEdVerifier()
	require.NoError(tb, err)
	s, err := store.New(
		verifier,
		broadcaster,
		mocks.NewMockPeerResolver(ctrl),
		persist.NewManager[ledger.Record](db, "ledger"),
		persist.NewManager[payload.Entry](db, "protected"),
		persist.NewManager[payload.AppendOnly](db, "append-only"),
		store.WithLogger(zaptest.NewLogger(tb)),
	)
	require.NoError(tb, err)
	return s, broadcaster
}

func TestSyncer(t *testing.T) {
	mesh, err := mocknet.FullMeshConnected(2)
	require.NoError(t, err)
	hostA, hostB := mesh.Hosts()[0], mesh.Hosts()[1]
	storeA, broadcasterA := newStore(t)
	storeB, broadcasterB := newStore(t)

	signer, err := signing.NewEdSigner()
	require.NoError(t, err)
	offer := &payload.Protected{Kind: payload.Offer, Owner: signer.PublicKey(), Data: []byte("offer")}
	entry, err := storeA.NewProtectedEntry(signer, offer, 1)
	require.NoError(t, err)
	broadcasterA.EXPECT().Broadcast(gomock.Any(), gomock.Any(), p2p.NoPeer).Times(4)
	require.True(t, storeA.AddProtectedEntry(context.Background(), entry, p2p.NoPeer))

	witness, err := payload.NewAppendOnly(payload.SignedWitness, time.Now(), nil, []byte("witness"))
	require.NoError(t, err)
	require.True(t, storeA.AddAppendOnly(context.Background(), witness, p2p.NoPeer, false))
	refund, err := payload.NewAppendOnly(payload.SignedWitness, time.Now(),
		types.NewCapabilities(types.CapRefundAgent), []byte("refund agent only"))
	require.NoError(t, err)
	require.True(t, storeA.AddAppendOnly(context.Background(), refund, p2p.NoPeer, false))
	tolerance := store.DefaultConfig().DateTolerance
	history, err := payload.NewAppendOnly(payload.AccountAgeWitness, time.Now().Add(-2*tolerance), nil, []byte("old witness"))
	require.NoError(t, err)
	require.False(t, storeA.AddAppendOnly(context.Background(), history, p2p.NoPeer, false))
	require.True(t, storeA.AddSyncedAppendOnly(context.Background(), history, p2p.NoPeer))

	ctx, cancel := context.WithCancel(context.Background())
	syncerA := NewSyncer(hostA, storeA, staticPeers{},
		WithLogger(zaptest.NewLogger(t).Named("a")),
		withClock(clockwork.NewFakeClock()),
	)
	var eg errgroup.Group
	eg.Go(func() error { return syncerA.Run(ctx) })
	t.Cleanup(func() {
		cancel()
		require.NoError(t, eg.Wait())
	})
	require.Eventually(t, func() bool {
		return slices.Contains(hostA.Mux().Protocols(), protocol.ID(Protocol))
	}, time.Second, 10*time.Millisecond)

	syncerB := NewSyncer(hostB, storeB, staticPeers{hostA.ID()},
		WithLogger(zaptest.NewLogger(t).Named("b")),
		WithCapabilities(types.NewCapabilities(types.CapMailboxV2)),
		WithAddress("b"),
	)

	// data received from A is not broadcasted back to A
	broadcasterB.EXPECT().Broadcast(gomock.Any(), gomock.Any(), hostA.ID()).Times(3)
	result, err := syncerB.Request(ctx, hostA.ID())
	require.NoError(t, err)
	require.Equal(t, Result{Protected: 1, AppendOnly: 2}, result)

	stored, ok := storeB.Get(entry.Hash())
	require.True(t, ok)
	require.EqualValues(t, 1, stored.Sequence)
	require.Equal(t, hostA.ID(), stored.ReceivedFrom)
	_, ok = storeB.AppendOnly(witness.ID)
	require.True(t, ok)
	_, ok = storeB.AppendOnly(history.ID)
	require.True(t, ok, "synced history is older than the date tolerance")
	_, ok = storeB.AppendOnly(refund.ID)
	require.False(t, ok, "requires capability B doesn't have")

	result, err = syncerB.Request(ctx, hostA.ID())
	require.NoError(t, err)
	require.Zero(t, result)
}
