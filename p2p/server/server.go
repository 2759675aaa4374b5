// Package server implements length-prefixed request/response protocols over libp2p streams.
package server

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/libp2p/go-libp2p/core/network"
	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/libp2p/go-libp2p/core/protocol"
	"github.com/multiformats/go-varint"
	"github.com/spacemeshos/go-scale"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/tradenet/go-bulletin/codec"
	"github.com/tradenet/go-bulletin/log"
)

// ErrNotConnected is returned when peer is not connected.
var ErrNotConnected = errors.New("peer is not connected")

const (
	maxResponseSize = 64 << 20
	maxErrorSize    = 1024
)

// Opt is a type to configure a server.
type Opt func(s *Server)

// WithTimeout configures stream timeout.
func WithTimeout(timeout time.Duration) Opt {
	return func(s *Server) {
		s.timeout = timeout
	}
}

// WithLog configures logger for the server.
func WithLog(log *zap.Logger) Opt {
	return func(s *Server) {
		s.logger = log
	}
}

func WithRequestSizeLimit(limit int) Opt {
	return func(s *Server) {
		s.requestLimit = limit
	}
}

// WithMetrics will enable metrics collection in the server.
func WithMetrics() Opt {
	return func(s *Server) {
		s.metrics = newTracker(s.protocol)
	}
}

// WithQueueSize parametrize number of message that will be kept in queue
// and eventually processed by server. Otherwise stream is closed immediately.
//
// Defaults to 100.
func WithQueueSize(size int) Opt {
	return func(s *Server) {
		s.queueSize = size
	}
}

// WithRequestsPerInterval parametrizes server rate limit to limit maximum amount of bandwidth
// that this handler can consume.
//
// Defaults to 100 requests per second.
func WithRequestsPerInterval(n int, interval time.Duration) Opt {
	return func(s *Server) {
		s.requestsPerInterval = n
		s.interval = interval
	}
}

// Handler is a handler to be defined by the application.
type Handler func(context.Context, peer.ID, []byte) ([]byte, error)

// ServerError is used by the client to represent an error returned by the server.
type ServerError struct {
	msg string
}

func (*ServerError) Is(target error) bool {
	_, ok := target.(*ServerError)
	return ok
}

func (err *ServerError) Error() string {
	return fmt.Sprintf("peer error: %s", err.msg)
}

// Response is a server response.
type Response struct {
	Data  []byte
	Error string
}

func (r *Response) EncodeScale(enc *scale.Encoder) (int, error) {
	var total int
	{
		n, err := scale.EncodeByteSliceWithLimit(enc, r.Data, maxResponseSize)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := scale.EncodeStringWithLimit(enc, r.Error, maxErrorSize)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

func (r *Response) DecodeScale(dec *scale.Decoder) (int, error) {
	var total int
	{
		field, n, err := scale.DecodeByteSliceWithLimit(dec, maxResponseSize)
		if err != nil {
			return total, err
		}
		total += n
		r.Data = field
	}
	{
		field, n, err := scale.DecodeStringWithLimit(dec, maxErrorSize)
		if err != nil {
			return total, err
		}
		total += n
		r.Error = field
	}
	return total, nil
}

// Host is a subset of libp2p host.Host.
type Host interface {
	SetStreamHandler(protocol.ID, network.StreamHandler)
	NewStream(context.Context, peer.ID, ...protocol.ID) (network.Stream, error)
	Network() network.Network
}

// Server for the Handler.
type Server struct {
	logger              *zap.Logger
	protocol            string
	handler             Handler
	timeout             time.Duration
	requestLimit        int
	queueSize           int
	requestsPerInterval int
	interval            time.Duration

	metrics *tracker // metrics can be nil

	h Host
}

// New server for the handler.
func New(h Host, proto string, handler Handler, opts ...Opt) *Server {
	srv := &Server{
		logger:              zap.NewNop(),
		protocol:            proto,
		handler:             handler,
		h:                   h,
		timeout:             25 * time.Second,
		requestLimit:        10240,
		queueSize:           100,
		requestsPerInterval: 100,
		interval:            time.Second,
	}
	for _, opt := range opts {
		opt(srv)
	}
	return srv
}

type request struct {
	stream   network.Stream
	received time.Time
}

// Run accepts streams until ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	limit := rate.NewLimiter(rate.Every(s.interval/time.Duration(s.requestsPerInterval)), s.requestsPerInterval)
	queue := make(chan request, s.queueSize)
	if s.metrics != nil {
		s.metrics.targetQueue.Set(float64(s.queueSize))
		s.metrics.targetRps.Set(float64(limit.Limit()))
	}
	s.h.SetStreamHandler(protocol.ID(s.protocol), func(stream network.Stream) {
		select {
		case queue <- request{stream: stream, received: time.Now()}:
			if s.metrics != nil {
				s.metrics.queue.Set(float64(len(queue)))
				s.metrics.accepted.Inc()
			}
		default:
			if s.metrics != nil {
				s.metrics.dropped.Inc()
			}
			stream.Close()
		}
	})

	var eg errgroup.Group
	eg.SetLimit(s.queueSize)
	for {
		select {
		case <-ctx.Done():
			eg.Wait()
			return nil
		case req := <-queue:
			if err := limit.Wait(ctx); err != nil {
				req.stream.Close()
				eg.Wait()
				return nil
			}
			eg.Go(func() error {
				ok := s.queueHandler(ctx, req.stream)
				if s.metrics != nil {
					s.metrics.serverLatency.Observe(time.Since(req.received).Seconds())
					if ok {
						s.metrics.completed.Inc()
					} else {
						s.metrics.failed.Inc()
					}
				}
				return nil
			})
		}
	}
}

func (s *Server) queueHandler(ctx context.Context, stream network.Stream) bool {
	defer stream.Close()
	if err := stream.SetDeadline(time.Now().Add(s.timeout)); err != nil {
		s.logger.Debug("failed to set stream deadline", zap.Error(err))
	}
	remote := stream.Conn().RemotePeer()
	logger := s.logger.With(
		zap.String("protocol", s.protocol),
		zap.Stringer("remotePeer", remote),
	)
	rd := bufio.NewReader(stream)
	size, err := varint.ReadUvarint(rd)
	if err != nil {
		logger.Debug("initial read failed", zap.Error(err))
		return false
	}
	if size > uint64(s.requestLimit) {
		logger.Warn("request limit overflow",
			zap.Int("limit", s.requestLimit),
			zap.Uint64("request", size),
		)
		stream.Conn().Close()
		return false
	}
	buf := make([]byte, size)
	if _, err := io.ReadFull(rd, buf); err != nil {
		logger.Debug("error reading request", zap.Error(err))
		return false
	}
	start := time.Now()
	ctx = log.WithNewRequestID(ctx)
	data, err := s.handler(ctx, remote, buf)
	var resp Response
	if err != nil {
		logger.Debug("handler reported error", log.ZContext(ctx), zap.Error(err))
		resp.Error = err.Error()
		if len(resp.Error) > maxErrorSize {
			resp.Error = resp.Error[:maxErrorSize]
		}
	} else {
		resp.Data = data
	}
	if err := writeResponse(stream, &resp); err != nil {
		logger.Debug("failed to write response", log.ZContext(ctx), zap.Error(err))
		return false
	}
	logger.Debug("protocol handler execution time",
		log.ZContext(ctx),
		zap.Duration("duration", time.Since(start)),
	)
	return err == nil
}

// Request sends a binary request to the peer and waits for the response.
func (s *Server) Request(ctx context.Context, pid peer.ID, req []byte) ([]byte, error) {
	start := time.Now()
	data, err := s.request(ctx, pid, req)
	took := time.Since(start).Seconds()
	switch {
	case s.metrics == nil:
	case errors.Is(err, &ServerError{}):
		s.metrics.clientServerError.Inc()
		s.metrics.clientLatency.Observe(took)
	case err != nil:
		s.metrics.clientFailed.Inc()
		s.metrics.clientLatencyFailure.Observe(took)
	default:
		s.metrics.clientSucceeded.Inc()
		s.metrics.clientLatency.Observe(took)
	}
	return data, err
}

func (s *Server) request(ctx context.Context, pid peer.ID, req []byte) ([]byte, error) {
	if len(req) > s.requestLimit {
		return nil, fmt.Errorf("request length (%d) is longer than limit %d", len(req), s.requestLimit)
	}
	if s.h.Network().Connectedness(pid) != network.Connected {
		return nil, fmt.Errorf("%w: %s", ErrNotConnected, pid)
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	stream, err := s.h.NewStream(network.WithNoDial(ctx, "existing connection"), pid, protocol.ID(s.protocol))
	if err != nil {
		return nil, fmt.Errorf("open stream to %s: %w", pid, err)
	}
	defer stream.Close()
	if deadline, ok := ctx.Deadline(); ok {
		if err := stream.SetDeadline(deadline); err != nil {
			s.logger.Debug("failed to set stream deadline", zap.Error(err))
		}
	}

	wr := bufio.NewWriter(stream)
	sz := make([]byte, binary.MaxVarintLen64)
	n := binary.PutUvarint(sz, uint64(len(req)))
	if _, err := wr.Write(sz[:n]); err != nil {
		return nil, fmt.Errorf("peer %s address %s: %w", pid, stream.Conn().RemoteMultiaddr(), err)
	}
	if _, err := wr.Write(req); err != nil {
		return nil, fmt.Errorf("peer %s address %s: %w", pid, stream.Conn().RemoteMultiaddr(), err)
	}
	if err := wr.Flush(); err != nil {
		return nil, fmt.Errorf("peer %s address %s: %w", pid, stream.Conn().RemoteMultiaddr(), err)
	}

	var resp Response
	if _, err := codec.DecodeFrom(bufio.NewReader(stream), &resp); err != nil {
		return nil, fmt.Errorf("peer %s: %w", pid, err)
	}
	if resp.Error != "" {
		return nil, &ServerError{msg: resp.Error}
	}
	return resp.Data, nil
}

func writeResponse(w io.Writer, resp *Response) error {
	wr := bufio.NewWriter(w)
	if _, err := codec.EncodeTo(wr, resp); err != nil {
		return fmt.Errorf("failed to write response (len %d err len %d): %w",
			len(resp.Data), len(resp.Error), err)
	}
	if err := wr.Flush(); err != nil {
		return fmt.Errorf("failed to write response (len %d err len %d): %w",
			len(resp.Data), len(resp.Error), err)
	}
	return nil
}
