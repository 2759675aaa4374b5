// Package pubsub wraps gossipsub for bulletin board topics.
package pubsub

import (
	"context"
	"errors"
	"fmt"
	"time"

	pubsub "github.com/libp2p/go-libp2p-pubsub"
	pb "github.com/libp2p/go-libp2p-pubsub/pb"
	"github.com/libp2p/go-libp2p/core/host"
	"github.com/libp2p/go-libp2p/core/peer"
	"go.uber.org/zap"

	"github.com/tradenet/go-bulletin/hash"
	"github.com/tradenet/go-bulletin/p2p"
)

func init() {
	pubsub.GossipSubD = 8
	pubsub.GossipSubDscore = 6
	pubsub.GossipSubDout = 3
	pubsub.GossipSubDlo = 6
	pubsub.GossipSubDhi = 12
	pubsub.GossipSubDlazy = 12
	pubsub.GossipSubIWantFollowupTime = 5 * time.Second
	pubsub.GossipSubHistoryLength = 10
	pubsub.GossipSubGossipFactor = 0.1
}

const (
	GossipScoreThreshold             = -500
	PublishScoreThreshold            = -1000
	GraylistScoreThreshold           = -2500
	AcceptPXScoreThreshold           = 1000
	OpportunisticGraftScoreThreshold = 3.5
)

// ErrValidationReject is returned by handlers for malformed or malicious messages.
// The peer that sent such a message is penalized.
var ErrValidationReject = errors.New("validation reject")

// Config for PubSub.
type Config struct {
	Flood          bool
	IsBootnode     bool
	MaxMessageSize int
}

//go:generate mockgen -typed -package=mocks -destination=./mocks/mocks.go github.com/tradenet/go-bulletin/p2p/pubsub Publisher,PeerCloser

// Publisher interface for publishing messages.
type Publisher interface {
	Publish(context.Context, string, []byte) error
}

// Subscriber is an interface for subscribing to messages.
type Subscriber interface {
	Register(string, GossipHandler, ...ValidatorOpt)
}

// PublishSubscriber common interface for publisher and subscribing.
type PublishSubscriber interface {
	Publisher
	Subscriber
}

// PeerCloser closes connections to misbehaving peers.
type PeerCloser interface {
	ClosePeer(p2p.Peer, p2p.CloseReason) error
}

// GossipHandler is a function that is for receiving messages.
// Messages are relayed only if the handler returns nil.
type GossipHandler = func(context.Context, peer.ID, []byte) error

// ValidatorOpt is a type for validator options.
type ValidatorOpt = pubsub.ValidatorOpt

// New creates PubSub instance.
func New(ctx context.Context, logger *zap.Logger, h host.Host, cfg Config, opts ...Opt) (*GossipPubSub, error) {
	ps, err := pubsub.NewGossipSub(ctx, h, getOptions(cfg)...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize gossipsub instance: %w", err)
	}
	gps := &GossipPubSub{
		logger: logger,
		pubsub: ps,
		self:   h.ID(),
		topics: map[string]*pubsub.Topic{},
	}
	for _, opt := range opts {
		opt(gps)
	}
	return gps, nil
}

// Opt configures GossipPubSub.
type Opt func(*GossipPubSub)

// WithPeerCloser closes connections to peers that sent rejected messages.
func WithPeerCloser(closer PeerCloser) Opt {
	return func(ps *GossipPubSub) {
		ps.closer = closer
	}
}

func msgID(msg *pb.Message) string {
	var sum [hash.Size]byte
	if msg.Topic != nil {
		sum = hash.Sum([]byte(*msg.Topic), msg.Data)
	} else {
		sum = hash.Sum(msg.Data)
	}
	return string(sum[:])
}

func getOptions(cfg Config) []pubsub.Option {
	options := []pubsub.Option{
		pubsub.WithFloodPublish(cfg.Flood),
		pubsub.WithMessageIdFn(msgID),
		pubsub.WithNoAuthor(),
		pubsub.WithMessageSignaturePolicy(pubsub.StrictNoSign),
		pubsub.WithPeerOutboundQueueSize(8192),
		pubsub.WithValidateQueueSize(8192),
		pubsub.WithPeerScore(
			&pubsub.PeerScoreParams{
				AppSpecificScore: func(p peer.ID) float64 {
					return 0
				},
				AppSpecificWeight: 1,

				// P7: behavioural penalties, decay after 1hr
				BehaviourPenaltyThreshold: 6,
				BehaviourPenaltyWeight:    -10,
				BehaviourPenaltyDecay:     pubsub.ScoreParameterDecay(time.Hour),

				DecayInterval: pubsub.DefaultDecayInterval,
				DecayToZero:   pubsub.DefaultDecayToZero,

				// this retains non-positive scores for 6 hours
				RetainScore: 6 * time.Hour,
			},
			&pubsub.PeerScoreThresholds{
				GossipThreshold:             GossipScoreThreshold,
				PublishThreshold:            PublishScoreThreshold,
				GraylistThreshold:           GraylistScoreThreshold,
				AcceptPXThreshold:           AcceptPXScoreThreshold,
				OpportunisticGraftThreshold: OpportunisticGraftScoreThreshold,
			},
		),
	}
	if cfg.MaxMessageSize != 0 {
		options = append(options, pubsub.WithMaxMessageSize(cfg.MaxMessageSize))
	}
	if cfg.IsBootnode {
		options = append(options, pubsub.WithPeerExchange(true))
	}
	return options
}
