package datasync

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tradenet/go-bulletin/codec"
	"github.com/tradenet/go-bulletin/common/types"
	"github.com/tradenet/go-bulletin/log"
	"github.com/tradenet/go-bulletin/p2p"
	"github.com/tradenet/go-bulletin/p2p/server"
	"github.com/tradenet/go-bulletin/wire"
)

// Protocol is the stream protocol of get data requests.
const Protocol = "/gd/1"

// Peers lists peers to synchronize with.
type Peers interface {
	ConnectedPeers() []p2p.Peer
}

// Opt configures the Syncer.
type Opt func(*Syncer)

func WithLogger(logger *zap.Logger) Opt {
	return func(s *Syncer) {
		s.logger = logger
	}
}

func WithConfig(cfg Config) Opt {
	return func(s *Syncer) {
		s.cfg = cfg
	}
}

// WithCapabilities sets capabilities advertised to peers.
func WithCapabilities(caps types.Capabilities) Opt {
	return func(s *Syncer) {
		s.caps = caps
	}
}

// WithAddress sets the address sent in updated requests.
func WithAddress(address string) Opt {
	return func(s *Syncer) {
		s.address = address
	}
}

func withClock(clock clockwork.Clock) Opt {
	return func(s *Syncer) {
		s.clock = clock
	}
}

// Syncer serves get data requests and periodically requests data from peers.
type Syncer struct {
	logger  *zap.Logger
	cfg     Config
	clock   clockwork.Clock
	caps    types.Capabilities
	address string

	*Handler
	peers  Peers
	server *server.Server

	mu        sync.Mutex
	contacted map[p2p.Peer]struct{}
}

// NewSyncer creates a Syncer that serves requests on the host.
func NewSyncer(h server.Host, store Store, peers Peers, opts ...Opt) *Syncer {
	s := &Syncer{
		logger:    zap.NewNop(),
		cfg:       DefaultConfig(),
		clock:     clockwork.NewRealClock(),
		peers:     peers,
		contacted: make(map[p2p.Peer]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Handler = NewHandler(store, s.caps, s.cfg, s.logger)
	s.server = server.New(h, Protocol, s.serve,
		server.WithLog(s.logger),
		server.WithTimeout(s.cfg.Timeout),
		server.WithRequestSizeLimit(s.cfg.RequestSizeLimit),
		server.WithQueueSize(s.cfg.QueueSize),
		server.WithRequestsPerInterval(s.cfg.RequestsPerInterval, s.cfg.ServeInterval),
		server.WithMetrics(),
	)
	return s
}

func (s *Syncer) serve(ctx context.Context, peer p2p.Peer, msg []byte) ([]byte, error) {
	var req wire.GetDataRequest
	if err := codec.Decode(msg, &req); err != nil {
		return nil, fmt.Errorf("decode get data request: %w", err)
	}
	resp := s.BuildResponse(&req, req.Capabilities)
	s.logger.Debug("serving get data request",
		log.ZContext(ctx),
		zap.Stringer("peer", peer),
		zap.Bool("updated", req.Updated),
		zap.String("sender", req.Sender),
		zap.Int("excluded", len(req.ExcludedKeys)),
		zap.Int("entries", len(resp.Entries)),
		zap.Int("append_only", len(resp.AppendOnly)),
	)
	return codec.Encode(resp)
}

// Request synchronizes data with the peer. The first request to a peer is
// preliminary, later requests are updated requests.
func (s *Syncer) Request(ctx context.Context, peer p2p.Peer) (Result, error) {
	s.mu.Lock()
	_, updated := s.contacted[peer]
	s.mu.Unlock()

	nonce := rand.Uint32()
	var req *wire.GetDataRequest
	if updated {
		req = s.BuildUpdatedRequest(nonce, s.address)
	} else {
		req = s.BuildPreliminaryRequest(nonce)
	}
	kind := requestKind(updated)
	result, err := s.request(ctx, peer, req)
	if err != nil {
		requests.WithLabelValues(kind, "failed").Inc()
		return result, err
	}
	requests.WithLabelValues(kind, "succeeded").Inc()
	s.mu.Lock()
	s.contacted[peer] = struct{}{}
	s.mu.Unlock()
	return result, nil
}

func (s *Syncer) request(ctx context.Context, peer p2p.Peer, req *wire.GetDataRequest) (Result, error) {
	buf, err := codec.Encode(req)
	if err != nil {
		return Result{}, fmt.Errorf("encode get data request: %w", err)
	}
	data, err := s.server.Request(ctx, peer, buf)
	if err != nil {
		return Result{}, fmt.Errorf("get data from %s: %w", peer, err)
	}
	var resp wire.GetDataResponse
	if err := codec.Decode(data, &resp); err != nil {
		return Result{}, fmt.Errorf("decode get data response from %s: %w", peer, err)
	}
	return s.ProcessResponse(ctx, &resp, req.Nonce, peer)
}

// Forget makes the next request to the peer preliminary.
func (s *Syncer) Forget(peer p2p.Peer, _ p2p.CloseReason) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.contacted, peer)
}

func (s *Syncer) syncRound(ctx context.Context) {
	peers := s.peers.ConnectedPeers()
	rand.Shuffle(len(peers), func(i, j int) {
		peers[i], peers[j] = peers[j], peers[i]
	})
	peers = peers[:min(len(peers), s.cfg.Peers)]
	var eg errgroup.Group
	for _, peer := range peers {
		eg.Go(func() error {
			ctx := log.WithNewRequestID(ctx)
			result, err := s.Request(ctx, peer)
			if err != nil {
				s.logger.Debug("failed to sync with peer",
					log.ZContext(ctx),
					zap.Stringer("peer", peer),
					zap.Error(err),
				)
				return nil
			}
			s.logger.Debug("synced with peer",
				log.ZContext(ctx),
				zap.Stringer("peer", peer),
				zap.Int("entries", result.Protected),
				zap.Int("append_only", result.AppendOnly),
			)
			return nil
		})
	}
	eg.Wait()
}

// Run serves requests and synchronizes with random peers every Interval until
// ctx is canceled.
func (s *Syncer) Run(ctx context.Context) error {
	var eg errgroup.Group
	eg.Go(func() error {
		return s.server.Run(ctx)
	})
	eg.Go(func() error {
		ticker := s.clock.NewTicker(s.cfg.Interval)
		defer ticker.Stop()
		for {
			s.syncRound(ctx)
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.Chan():
			}
		}
	})
	return eg.Wait()
}
