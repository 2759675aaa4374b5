// Package p2p runs the libp2p host of the node and reports peer disconnects.
package p2p

import (
	"context"
	"fmt"
	"sync"
	"time"

	lp2plog "github.com/ipfs/go-log/v2"
	"github.com/libp2p/go-libp2p"
	"github.com/libp2p/go-libp2p/core/host"
	"github.com/libp2p/go-libp2p/core/network"
	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/libp2p/go-libp2p/p2p/net/connmgr"
	"github.com/multiformats/go-multiaddr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"
)

// DefaultConfig config.
func DefaultConfig() Config {
	return Config{
		Listen:             "/ip4/0.0.0.0/tcp/7513",
		LogLevel:           zapcore.WarnLevel,
		MinPeers:           8,
		LowPeers:           20,
		HighPeers:          50,
		GracePeersShutdown: 30 * time.Second,
		BootstrapInterval:  30 * time.Second,
		MaxMessageSize:     4 << 20,
		Flood:              true,
	}
}

// Config for all things related to p2p layer.
type Config struct {
	DataDir            string        `mapstructure:"-"`
	LogLevel           zapcore.Level `mapstructure:"log-level"`
	GracePeersShutdown time.Duration `mapstructure:"grace-peers-shutdown"`
	BootstrapInterval  time.Duration `mapstructure:"bootstrap-interval"`
	MaxMessageSize     int           `mapstructure:"max-message-size"`

	Flood      bool     `mapstructure:"flood"`
	Listen     string   `mapstructure:"listen"`
	Bootnodes  []string `mapstructure:"bootnodes"`
	IsBootnode bool     `mapstructure:"bootnode"`
	MinPeers   int      `mapstructure:"min-peers"`
	LowPeers   int      `mapstructure:"low-peers"`
	HighPeers  int      `mapstructure:"high-peers"`
}

// Opt is for configuring Host.
type Opt func(fh *Host)

// WithLog configures logger for Host.
func WithLog(logger *zap.Logger) Opt {
	return func(fh *Host) {
		fh.logger = logger
	}
}

// WithConfig sets Config for Host.
func WithConfig(cfg Config) Opt {
	return func(fh *Host) {
		fh.cfg = cfg
	}
}

// Host wraps libp2p host. It remembers which connections were closed on request
// so that disconnect handlers can tell intended closes from lost connections.
type Host struct {
	host.Host
	cfg    Config
	logger *zap.Logger

	notifiee *network.NotifyBundle

	mu       sync.Mutex
	shutdown bool
	closing  map[peer.ID]CloseReason
	handlers []func(Peer, CloseReason)
}

// New initializes libp2p host configured for the bulletin board.
func New(_ context.Context, logger *zap.Logger, cfg Config, opts ...Opt) (*Host, error) {
	logger.Info("starting libp2p host", zap.Any("config", &cfg))
	key, err := EnsureIdentity(cfg.DataDir)
	if err != nil {
		return nil, err
	}
	lp2plog.SetPrimaryCore(logger.Core())
	lp2plog.SetAllLoggers(lp2plog.LogLevel(cfg.LogLevel))
	cm, err := connmgr.NewConnManager(cfg.LowPeers, cfg.HighPeers, connmgr.WithGracePeriod(cfg.GracePeersShutdown))
	if err != nil {
		return nil, fmt.Errorf("p2p create conn mgr: %w", err)
	}
	h, err := libp2p.New(
		libp2p.Identity(key),
		libp2p.ListenAddrStrings(cfg.Listen),
		libp2p.UserAgent("go-bulletin"),
		libp2p.ConnectionManager(cm),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize libp2p host: %w", err)
	}
	logger.Info("local node identity",
		zap.Stringer("identity", h.ID()),
		zap.Any("addresses", h.Addrs()),
	)
	return Upgrade(h, append(opts, WithConfig(cfg), WithLog(logger))...), nil
}

// Upgrade creates Host instance from host.Host.
func Upgrade(h host.Host, opts ...Opt) *Host {
	fh := &Host{
		Host:    h,
		cfg:     DefaultConfig(),
		logger:  zap.NewNop(),
		closing: make(map[peer.ID]CloseReason),
	}
	for _, opt := range opts {
		opt(fh)
	}
	fh.notifiee = &network.NotifyBundle{
		ConnectedF: func(_ network.Network, c network.Conn) {
			connections.WithLabelValues(c.Stat().Direction.String()).Inc()
		},
		DisconnectedF: func(_ network.Network, c network.Conn) {
			connections.WithLabelValues(c.Stat().Direction.String()).Dec()
			fh.disconnected(c.RemotePeer())
		},
	}
	h.Network().Notify(fh.notifiee)
	return fh
}

// OnDisconnect registers a handler that is called when the last connection to a peer is closed.
// Handlers are called synchronously from the network notification and must not block.
func (fh *Host) OnDisconnect(handler func(Peer, CloseReason)) {
	fh.mu.Lock()
	defer fh.mu.Unlock()
	fh.handlers = append(fh.handlers, handler)
}

func (fh *Host) disconnected(pid peer.ID) {
	if fh.Network().Connectedness(pid) == network.Connected {
		return
	}
	fh.mu.Lock()
	reason, ok := fh.closing[pid]
	delete(fh.closing, pid)
	if fh.shutdown {
		reason, ok = CloseShutdown, true
	}
	if !ok {
		reason = CloseUnintended
	}
	handlers := fh.handlers
	fh.mu.Unlock()

	disconnects.WithLabelValues(reason.String()).Inc()
	fh.logger.Debug("peer disconnected",
		zap.Stringer("peer", pid),
		zap.Stringer("reason", reason),
	)
	for _, handler := range handlers {
		handler(pid, reason)
	}
}

// ClosePeer closes all connections to the peer and marks them as closed on request.
// It is a no-op for a peer that is not connected.
func (fh *Host) ClosePeer(pid Peer, reason CloseReason) error {
	if fh.Network().Connectedness(pid) != network.Connected {
		return nil
	}
	fh.mu.Lock()
	fh.closing[pid] = reason
	fh.mu.Unlock()
	if err := fh.Network().ClosePeer(pid); err != nil {
		fh.mu.Lock()
		delete(fh.closing, pid)
		fh.mu.Unlock()
		return fmt.Errorf("close peer %s: %w", pid, err)
	}
	return nil
}

// Resolve is true if the peer is currently connected.
func (fh *Host) Resolve(pid Peer) bool {
	return pid != NoPeer && fh.Network().Connectedness(pid) == network.Connected
}

// ConnectedPeers returns all currently connected peers.
func (fh *Host) ConnectedPeers() []Peer {
	return fh.Network().Peers()
}

// Address returns the first listen address of the host in p2p multiaddr form.
func (fh *Host) Address() string {
	addrs := fh.Addrs()
	if len(addrs) == 0 {
		return ""
	}
	self, err := multiaddr.NewMultiaddr("/p2p/" + fh.ID().String())
	if err != nil {
		return ""
	}
	return addrs[0].Encapsulate(self).String()
}

// Run connects to bootnodes whenever the node has less than MinPeers peers.
func (fh *Host) Run(ctx context.Context) error {
	bootnodes := make([]peer.AddrInfo, 0, len(fh.cfg.Bootnodes))
	for _, bootnode := range fh.cfg.Bootnodes {
		info, err := peer.AddrInfoFromString(bootnode)
		if err != nil {
			return fmt.Errorf("parse into peer.AddrInfo %s: %w", bootnode, err)
		}
		bootnodes = append(bootnodes, *info)
	}
	if len(bootnodes) == 0 {
		<-ctx.Done()
		return nil
	}
	ticker := time.NewTicker(fh.cfg.BootstrapInterval)
	defer ticker.Stop()
	for {
		if len(fh.Network().Peers()) < fh.cfg.MinPeers {
			fh.connect(ctx, bootnodes)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (fh *Host) connect(ctx context.Context, bootnodes []peer.AddrInfo) {
	var eg errgroup.Group
	for _, info := range bootnodes {
		if info.ID == fh.ID() || fh.Network().Connectedness(info.ID) == network.Connected {
			continue
		}
		eg.Go(func() error {
			ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			if err := fh.Connect(ctx, info); err != nil {
				fh.logger.Debug("failed to connect to bootnode",
					zap.Stringer("peer", info.ID),
					zap.Error(err),
				)
			}
			return nil
		})
	}
	eg.Wait()
}

// Stop closes all connections as part of the shutdown and releases the host.
func (fh *Host) Stop() error {
	fh.mu.Lock()
	fh.shutdown = true
	fh.mu.Unlock()
	if err := fh.Host.Close(); err != nil {
		return fmt.Errorf("failed to close libp2p host: %w", err)
	}
	fh.Network().StopNotify(fh.notifiee)
	return nil
}
