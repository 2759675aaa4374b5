package p2p

import (
	"testing"
	"time"

	mocknet "github.com/libp2p/go-libp2p/p2p/net/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type disconnect struct {
	peer   Peer
	reason CloseReason
}

func TestHost_Disconnects(t *testing.T) {
	mesh, err := mocknet.FullMeshConnected(3)
	require.NoError(t, err)
	hosts := make([]*Host, 0, 3)
	events := make([]chan disconnect, 0, 3)
	for _, h := range mesh.Hosts() {
		fh := Upgrade(h, WithLog(zaptest.NewLogger(t)))
		ch := make(chan disconnect, 10)
		fh.OnDisconnect(func(pid Peer, reason CloseReason) {
			ch <- disconnect{peer: pid, reason: reason}
		})
		hosts = append(hosts, fh)
		events = append(events, ch)
	}

	require.True(t, hosts[0].Resolve(hosts[1].ID()))
	require.False(t, hosts[0].Resolve(NoPeer))
	require.False(t, hosts[0].Resolve("unknown"))
	require.Len(t, hosts[0].ConnectedPeers(), 2)

	require.NoError(t, hosts[0].ClosePeer(hosts[1].ID(), CloseIntended))
	select {
	case ev := <-events[0]:
		require.Equal(t, hosts[1].ID(), ev.peer)
		require.Equal(t, CloseIntended, ev.reason)
		require.True(t, ev.reason.Intended())
	case <-time.After(5 * time.Second):
		require.FailNow(t, "timed out waiting for local disconnect")
	}
	select {
	case ev := <-events[1]:
		require.Equal(t, hosts[0].ID(), ev.peer)
		require.Equal(t, CloseUnintended, ev.reason)
		require.False(t, ev.reason.Intended())
	case <-time.After(5 * time.Second):
		require.FailNow(t, "timed out waiting for remote disconnect")
	}
	require.False(t, hosts[0].Resolve(hosts[1].ID()))
	require.Empty(t, events[2])

	// closing a disconnected peer leaves nothing behind for its next connection
	require.NoError(t, hosts[0].ClosePeer(hosts[1].ID(), CloseIntended))
	_, err = mesh.ConnectPeers(hosts[0].ID(), hosts[1].ID())
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		return hosts[0].Resolve(hosts[1].ID()) && hosts[1].Resolve(hosts[0].ID())
	}, 5*time.Second, 10*time.Millisecond)
	require.NoError(t, hosts[1].ClosePeer(hosts[0].ID(), CloseIntended))
	select {
	case ev := <-events[0]:
		require.Equal(t, hosts[1].ID(), ev.peer)
		require.Equal(t, CloseUnintended, ev.reason)
	case <-time.After(5 * time.Second):
		require.FailNow(t, "timed out waiting for lost connection")
	}
	select {
	case ev := <-events[1]:
		require.Equal(t, CloseIntended, ev.reason)
	case <-time.After(5 * time.Second):
		require.FailNow(t, "timed out waiting for local disconnect")
	}
}

func TestEnsureIdentity(t *testing.T) {
	dir := t.TempDir()
	key, err := EnsureIdentity(dir)
	require.NoError(t, err)
	loaded, err := EnsureIdentity(dir)
	require.NoError(t, err)
	require.True(t, key.Equals(loaded))
}
