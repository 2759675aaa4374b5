package store

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/tradenet/go-bulletin/codec"
	"github.com/tradenet/go-bulletin/common/types"
	"github.com/tradenet/go-bulletin/log"
	"github.com/tradenet/go-bulletin/p2p"
	"github.com/tradenet/go-bulletin/p2p/pubsub"
	"github.com/tradenet/go-bulletin/wire"
)

var (
	// ErrUnresolvedPeer is returned for messages from peers that can't be resolved.
	ErrUnresolvedPeer = errors.New("unresolved peer")
	// ErrDuplicate is returned for messages that were accepted before.
	ErrDuplicate = errors.New("duplicate message")
	// ErrRejected is returned for messages that were not accepted by the store.
	ErrRejected = errors.New("message rejected")
)

// HandleGossip decodes a broadcast message from peer and applies it to the store.
// Malformed messages are reported with pubsub.ErrValidationReject, other errors
// only stop propagation of the message.
func (s *Store) HandleGossip(ctx context.Context, peer p2p.Peer, msg []byte) error {
	if !s.resolver.Resolve(peer) {
		gossipMessages.WithLabelValues("", "unresolved").Inc()
		return ErrUnresolvedPeer
	}
	digest := types.CalcHash32(msg)
	if s.acceptedMessages.Contains(digest) {
		gossipMessages.WithLabelValues("", "duplicate").Inc()
		return ErrDuplicate
	}
	var m wire.Message
	if err := codec.Decode(msg, &m); err != nil {
		gossipMessages.WithLabelValues("", "malformed").Inc()
		return fmt.Errorf("%w: decode message: %w", pubsub.ErrValidationReject, err)
	}
	var accepted bool
	switch m.Type {
	case wire.Add:
		accepted = s.AddProtectedEntry(ctx, m.Entry(), peer)
	case wire.Remove, wire.RemoveMailbox:
		entry := m.Entry()
		if entry.Payload.Kind.Mailbox() != (m.Type == wire.RemoveMailbox) {
			gossipMessages.WithLabelValues(m.Type.String(), "malformed").Inc()
			return fmt.Errorf("%w: %s message for %s entry",
				pubsub.ErrValidationReject, m.Type, entry.Payload.Kind)
		}
		accepted = s.RemoveProtectedEntry(ctx, entry, peer)
	case wire.Refresh:
		accepted = s.RefreshTTL(ctx, m.Refresh(), peer)
	case wire.AddAppendOnly:
		accepted = s.AddAppendOnly(ctx, m.AppendOnly(), peer, false)
	default:
		gossipMessages.WithLabelValues(m.Type.String(), "malformed").Inc()
		return fmt.Errorf("%w: %w: %s", pubsub.ErrValidationReject, wire.ErrUnknownMessage, m.Type)
	}
	if !accepted {
		gossipMessages.WithLabelValues(m.Type.String(), "rejected").Inc()
		return ErrRejected
	}
	s.acceptedMessages.Add(digest, struct{}{})
	gossipMessages.WithLabelValues(m.Type.String(), "accepted").Inc()
	s.logger.Debug("accepted gossip message",
		log.ZContext(ctx),
		zap.Stringer("type", m.Type),
		zap.Stringer("peer", peer),
	)
	return nil
}
