package pubsub

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	pubsub "github.com/libp2p/go-libp2p-pubsub"
	"github.com/libp2p/go-libp2p/core/peer"
	"go.uber.org/zap"

	"github.com/tradenet/go-bulletin/log"
	"github.com/tradenet/go-bulletin/p2p"
)

// GossipPubSub is a wrapper around gossip protocol.
type GossipPubSub struct {
	logger *zap.Logger
	pubsub *pubsub.PubSub
	self   peer.ID
	closer PeerCloser

	mu     sync.RWMutex
	topics map[string]*pubsub.Topic
}

var _ PublishSubscriber = (*GossipPubSub)(nil)

// Register handler for topic.
func (ps *GossipPubSub) Register(topic string, handler GossipHandler, opts ...ValidatorOpt) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	if _, exist := ps.topics[topic]; exist {
		ps.logger.Panic("already registered a topic", zap.String("topic", topic))
	}
	err := ps.pubsub.RegisterTopicValidator(
		topic,
		func(ctx context.Context, pid peer.ID, msg *pubsub.Message) pubsub.ValidationResult {
			if pid == ps.self {
				// published messages are applied before they are published
				return pubsub.ValidationAccept
			}
			start := time.Now()
			err := handler(log.WithNewRequestID(ctx), pid, msg.Data)
			result := castResult(err)
			processedMessages.WithLabelValues(topic, result).Observe(time.Since(start).Seconds())
			if err != nil {
				ps.logger.Debug("topic validation failed",
					zap.String("topic", topic),
					zap.Stringer("peer", pid),
					zap.Error(err),
				)
			}
			switch {
			case errors.Is(err, ErrValidationReject):
				ps.dropPeer(pid)
				return pubsub.ValidationReject
			case err != nil:
				return pubsub.ValidationIgnore
			default:
				return pubsub.ValidationAccept
			}
		},
		opts...)
	if err != nil {
		ps.logger.Panic("failed to register topic validator", zap.String("topic", topic), zap.Error(err))
	}
	topich, err := ps.pubsub.Join(topic)
	if err != nil {
		ps.logger.Panic("failed to join a topic", zap.String("topic", topic), zap.Error(err))
	}
	ps.topics[topic] = topich
	if _, err = topich.Relay(); err != nil {
		ps.logger.Panic("failed to enable relay for topic", zap.String("topic", topic), zap.Error(err))
	}
}

func (ps *GossipPubSub) dropPeer(pid peer.ID) {
	if ps.closer == nil {
		return
	}
	if err := ps.closer.ClosePeer(pid, p2p.CloseIntended); err != nil {
		ps.logger.Debug("failed to close peer", zap.Stringer("peer", pid), zap.Error(err))
	}
}

// Publish message to the topic.
func (ps *GossipPubSub) Publish(ctx context.Context, topic string, msg []byte) error {
	ps.mu.RLock()
	topich := ps.topics[topic]
	ps.mu.RUnlock()
	if topich == nil {
		return fmt.Errorf("topic %s is not registered", topic)
	}
	if err := topich.Publish(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish to topic %v: %w", topic, err)
	}
	return nil
}

// ProtocolPeers returns list of peers subscribed to the topic.
func (ps *GossipPubSub) ProtocolPeers(topic string) []peer.ID {
	return ps.pubsub.ListPeers(topic)
}

func castResult(err error) string {
	switch {
	case err == nil:
		return "accept"
	case errors.Is(err, ErrValidationReject):
		return "reject"
	default:
		return "ignore"
	}
}
