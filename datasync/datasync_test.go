package datasync

import (
	"context"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/tradenet/go-bulletin/common/types"
	"github.com/tradenet/go-bulletin/p2p"
	"github.com/tradenet/go-bulletin/payload"
	"github.com/tradenet/go-bulletin/signing"
	"github.com/tradenet/go-bulletin/wire"
)

type fakeStore struct {
	entries  []*payload.Entry
	payloads []*payload.AppendOnly
	added    int
}

func (s *fakeStore) Keys() []types.Hash32 {
	var keys []types.Hash32
	for _, entry := range s.entries {
		keys = append(keys, entry.Hash())
	}
	for _, p := range s.payloads {
		keys = append(keys, p.ID)
	}
	return keys
}

func (s *fakeStore) Entries() []*payload.Entry {
	return slices.Clone(s.entries)
}

func (s *fakeStore) AppendOnlyPayloads() []*payload.AppendOnly {
	return slices.Clone(s.payloads)
}

func (s *fakeStore) AddProtectedEntry(context.Context, *payload.Entry, p2p.Peer) bool {
	s.added++
	return true
}

func (s *fakeStore) AddSyncedAppendOnly(context.Context, *payload.AppendOnly, p2p.Peer) bool {
	s.added++
	return true
}

func newEntry(tb testing.TB, caps types.Capabilities) *payload.Entry {
	tb.Helper()
	signer, err := signing.NewEdSigner()
	require.NoError(tb, err)
	p := &payload.Protected{
		Kind:         payload.Offer,
		Owner:        signer.PublicKey(),
		Capabilities: caps,
		Data:         types.RandomHash().Bytes(),
	}
	entry, err := payload.Sign(signer, p, 1, time.Now())
	require.NoError(tb, err)
	return entry
}

func newAppendOnly(tb testing.TB, caps types.Capabilities) *payload.AppendOnly {
	tb.Helper()
	p, err := payload.NewAppendOnly(payload.SignedWitness, time.Now(), caps, types.RandomHash().Bytes())
	require.NoError(tb, err)
	return p
}

func newFakeStore(tb testing.TB, entries, payloads int) *fakeStore {
	s := &fakeStore{}
	for range entries {
		s.entries = append(s.entries, newEntry(tb, nil))
	}
	for range payloads {
		s.payloads = append(s.payloads, newAppendOnly(tb, nil))
	}
	return s
}

func responseKeys(resp *wire.GetDataResponse) []types.Hash32 {
	var keys []types.Hash32
	for i := range resp.Entries {
		keys = append(keys, resp.Entries[i].Hash())
	}
	for _, p := range resp.AppendOnly {
		keys = append(keys, p.ID)
	}
	return keys
}

func TestBuildRequest(t *testing.T) {
	caps := types.NewCapabilities(types.CapMediation, types.CapMailboxV2)
	store := newFakeStore(t, 2, 3)
	h := NewHandler(store, caps, DefaultConfig(), zaptest.NewLogger(t))

	req := h.BuildPreliminaryRequest(7)
	require.EqualValues(t, 7, req.Nonce)
	require.False(t, req.Updated)
	require.Empty(t, req.Sender)
	require.ElementsMatch(t, store.Keys(), req.ExcludedKeys)
	require.Equal(t, caps, req.Capabilities)

	req = h.BuildUpdatedRequest(8, "/ip4/127.0.0.1/tcp/7777")
	require.EqualValues(t, 8, req.Nonce)
	require.True(t, req.Updated)
	require.Equal(t, "/ip4/127.0.0.1/tcp/7777", req.Sender)
	require.ElementsMatch(t, store.Keys(), req.ExcludedKeys)
}

func TestBuildResponse(t *testing.T) {
	caps := types.NewCapabilities(types.CapSeedNode)

	t.Run("excluded keys", func(t *testing.T) {
		store := newFakeStore(t, 3, 3)
		h := NewHandler(store, caps, DefaultConfig(), zaptest.NewLogger(t))
		excluded := []types.Hash32{store.entries[0].Hash(), store.payloads[1].ID, types.RandomHash()}
		resp := h.BuildResponse(&wire.GetDataRequest{Nonce: 3, Updated: true, ExcludedKeys: excluded}, nil)
		require.EqualValues(t, 3, resp.Nonce)
		require.True(t, resp.Updated)
		require.Equal(t, caps, resp.Capabilities)
		require.ElementsMatch(t, []types.Hash32{
			store.entries[1].Hash(), store.entries[2].Hash(),
			store.payloads[0].ID, store.payloads[2].ID,
		}, responseKeys(resp))
		require.False(t, resp.ProtectedTruncated)
		require.False(t, resp.AppendOnlyTruncated)
	})
	t.Run("capabilities", func(t *testing.T) {
		required := types.NewCapabilities(types.CapMediation, types.CapRefundAgent)
		store := &fakeStore{
			entries:  []*payload.Entry{newEntry(t, required), newEntry(t, nil)},
			payloads: []*payload.AppendOnly{newAppendOnly(t, required), newAppendOnly(t, nil)},
		}
		cfg := DefaultConfig()
		cfg.MaxProtected = 1
		cfg.MaxAppendOnly = 1
		h := NewHandler(store, caps, cfg, zaptest.NewLogger(t))

		resp := h.BuildResponse(&wire.GetDataRequest{}, types.NewCapabilities(types.CapMediation))
		require.ElementsMatch(t, []types.Hash32{store.entries[1].Hash(), store.payloads[1].ID}, responseKeys(resp))
		require.False(t, resp.ProtectedTruncated)
		require.False(t, resp.AppendOnlyTruncated)

		peerCaps := types.NewCapabilities(types.CapMediation, types.CapRefundAgent, types.CapSeedNode)
		resp = h.BuildResponse(&wire.GetDataRequest{}, peerCaps)
		require.Len(t, resp.Entries, 1)
		require.Len(t, resp.AppendOnly, 1)
		require.True(t, resp.ProtectedTruncated)
		require.True(t, resp.AppendOnlyTruncated)
	})
	t.Run("truncation", func(t *testing.T) {
		store := newFakeStore(t, 2, 5)
		cfg := DefaultConfig()
		cfg.MaxAppendOnly = 3
		cfg.MaxProtected = 2
		h := NewHandler(store, caps, cfg, zaptest.NewLogger(t))

		resp := h.BuildResponse(&wire.GetDataRequest{}, nil)
		require.Len(t, resp.AppendOnly, 3)
		require.True(t, resp.AppendOnlyTruncated)
		require.Len(t, resp.Entries, 2)
		require.False(t, resp.ProtectedTruncated)

		resp = h.BuildResponse(&wire.GetDataRequest{ExcludedKeys: store.Keys()[:1]}, nil)
		require.Len(t, resp.Entries, 1)
		require.Len(t, resp.AppendOnly, 3)
		require.True(t, resp.AppendOnlyTruncated)
	})
}

func TestProcessResponse(t *testing.T) {
	source := newFakeStore(t, 2, 2)
	h := NewHandler(source, nil, DefaultConfig(), zaptest.NewLogger(t))
	resp := h.BuildResponse(&wire.GetDataRequest{Nonce: 11}, nil)

	target := &fakeStore{}
	h = NewHandler(target, nil, DefaultConfig(), zaptest.NewLogger(t))
	_, err := h.ProcessResponse(context.Background(), resp, 12, p2p.Peer("remote"))
	require.ErrorIs(t, err, ErrNonceMismatch)
	require.Zero(t, target.added)

	result, err := h.ProcessResponse(context.Background(), resp, 11, p2p.Peer("remote"))
	require.NoError(t, err)
	require.Equal(t, Result{Protected: 2, AppendOnly: 2}, result)
	require.Equal(t, 4, target.added)
}
