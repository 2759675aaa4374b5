package pubsub

import (
	"context"

	"go.uber.org/zap"

	"github.com/tradenet/go-bulletin/codec"
	"github.com/tradenet/go-bulletin/log"
	"github.com/tradenet/go-bulletin/p2p"
	"github.com/tradenet/go-bulletin/wire"
)

// Topic is the gossip topic of bulletin board messages.
const Topic = "bb1"

// Broadcaster publishes bulletin board messages.
//
// Gossipsub relays a message received from a peer once the handler accepts it,
// so only messages without origin peer are published here.
type Broadcaster struct {
	logger    *zap.Logger
	publisher Publisher
	topic     string
}

// NewBroadcaster creates a broadcaster that publishes to the topic.
func NewBroadcaster(publisher Publisher, topic string, logger *zap.Logger) *Broadcaster {
	return &Broadcaster{logger: logger, publisher: publisher, topic: topic}
}

// Broadcast publishes msg unless it was received from a peer.
func (b *Broadcaster) Broadcast(ctx context.Context, msg *wire.Message, exclude p2p.Peer) {
	if exclude != p2p.NoPeer {
		broadcasts.WithLabelValues(msg.Type.String(), "relayed").Inc()
		return
	}
	buf, err := codec.Encode(msg)
	if err != nil {
		broadcasts.WithLabelValues(msg.Type.String(), "failed").Inc()
		b.logger.Error("failed to encode message", log.ZContext(ctx), zap.Error(err))
		return
	}
	if err := b.publisher.Publish(ctx, b.topic, buf); err != nil {
		broadcasts.WithLabelValues(msg.Type.String(), "failed").Inc()
		b.logger.Warn("failed to publish message",
			log.ZContext(ctx),
			zap.Stringer("type", msg.Type),
			zap.Error(err),
		)
		return
	}
	broadcasts.WithLabelValues(msg.Type.String(), "published").Inc()
}
