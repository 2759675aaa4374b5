package pubsub

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/libp2p/go-libp2p/core/peer"
	mocknet "github.com/libp2p/go-libp2p/p2p/net/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap/zaptest"

	"github.com/tradenet/go-bulletin/codec"
	"github.com/tradenet/go-bulletin/common/types"
	"github.com/tradenet/go-bulletin/p2p"
	"github.com/tradenet/go-bulletin/p2p/pubsub/mocks"
	"github.com/tradenet/go-bulletin/wire"
)

func TestBroadcaster(t *testing.T) {
	ctrl := gomock.NewController(t)
	publisher := mocks.NewMockPublisher(ctrl)
	broadcaster := NewBroadcaster(publisher, Topic, zaptest.NewLogger(t))
	msg := wire.NewRefreshMessage(&wire.RefreshMessage{Hash: types.RandomHash(), Sequence: 3})

	t.Run("local", func(t *testing.T) {
		publisher.EXPECT().Publish(gomock.Any(), Topic, codec.MustEncode(msg)).Return(nil)
		broadcaster.Broadcast(context.Background(), msg, p2p.NoPeer)
	})
	t.Run("received from peer", func(t *testing.T) {
		broadcaster.Broadcast(context.Background(), msg, p2p.Peer("remote"))
	})
	t.Run("publish failure", func(t *testing.T) {
		publisher.EXPECT().Publish(gomock.Any(), Topic, gomock.Any()).Return(errors.New("closed"))
		broadcaster.Broadcast(context.Background(), msg, p2p.NoPeer)
	})
}

func TestGossip(t *testing.T) {
	mesh, err := mocknet.FullMeshConnected(2)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ctrl := gomock.NewController(t)
	closer := mocks.NewMockPeerCloser(ctrl)

	const topic = "test"
	received := make(chan []byte, 10)
	pss := make([]*GossipPubSub, 0, 2)
	for i, h := range mesh.Hosts() {
		var opts []Opt
		if i == 1 {
			opts = append(opts, WithPeerCloser(closer))
		}
		ps, err := New(ctx, zaptest.NewLogger(t), h, Config{Flood: true}, opts...)
		require.NoError(t, err)
		ps.Register(topic, func(_ context.Context, _ peer.ID, msg []byte) error {
			if string(msg) == "malformed" {
				return ErrValidationReject
			}
			received <- msg
			return nil
		})
		pss = append(pss, ps)
	}
	require.Eventually(t, func() bool {
		return len(pss[0].ProtocolPeers(topic)) == 1 && len(pss[1].ProtocolPeers(topic)) == 1
	}, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, pss[0].Publish(ctx, topic, []byte("hello")))
	select {
	case msg := <-received:
		require.Equal(t, []byte("hello"), msg)
	case <-time.After(5 * time.Second):
		require.FailNow(t, "message was not delivered")
	}
	require.Empty(t, received, "own messages are not validated by the handler")

	closed := make(chan struct{})
	closer.EXPECT().ClosePeer(mesh.Hosts()[0].ID(), p2p.CloseIntended).DoAndReturn(
		func(p2p.Peer, p2p.CloseReason) error {
			close(closed)
			return nil
		})
	require.NoError(t, pss[0].Publish(ctx, topic, []byte("malformed")))
	select {
	case <-closed:
	case <-time.After(5 * time.Second):
		require.FailNow(t, "peer was not dropped")
	}

	require.Error(t, pss[0].Publish(ctx, "unregistered", []byte("hello")))
}
