// Package datasync synchronizes bulletin board data with peers using get data
// requests. A request names everything the requester has, the response carries
// the rest, filtered by the requester capabilities and truncated to limits.
package datasync

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/tradenet/go-bulletin/common/types"
	"github.com/tradenet/go-bulletin/log"
	"github.com/tradenet/go-bulletin/p2p"
	"github.com/tradenet/go-bulletin/payload"
	"github.com/tradenet/go-bulletin/wire"
)

// ErrNonceMismatch is returned for a response to a request that is not outstanding.
var ErrNonceMismatch = errors.New("response nonce does not match request")

// Store is the subset of the bulletin board store used for synchronization.
type Store interface {
	Keys() []types.Hash32
	Entries() []*payload.Entry
	AppendOnlyPayloads() []*payload.AppendOnly
	AddProtectedEntry(context.Context, *payload.Entry, p2p.Peer) bool
	AddSyncedAppendOnly(context.Context, *payload.AppendOnly, p2p.Peer) bool
}

// Handler builds requests and responses and processes responses.
type Handler struct {
	logger *zap.Logger
	cfg    Config
	store  Store
	caps   types.Capabilities
}

// NewHandler creates a handler that advertises caps.
func NewHandler(store Store, caps types.Capabilities, cfg Config, logger *zap.Logger) *Handler {
	return &Handler{logger: logger, cfg: cfg, store: store, caps: caps}
}

func (h *Handler) excludedKeys() []types.Hash32 {
	keys := h.store.Keys()
	if len(keys) > wire.MaxExcludedKeys {
		h.logger.Warn("too many keys to exclude", zap.Int("keys", len(keys)))
		keys = keys[:wire.MaxExcludedKeys]
	}
	return keys
}

// BuildPreliminaryRequest builds a request for the first contact with a peer.
func (h *Handler) BuildPreliminaryRequest(nonce uint32) *wire.GetDataRequest {
	return &wire.GetDataRequest{
		Nonce:        nonce,
		ExcludedKeys: h.excludedKeys(),
		Capabilities: h.caps,
	}
}

// BuildUpdatedRequest builds a request for a peer that was contacted before.
func (h *Handler) BuildUpdatedRequest(nonce uint32, self string) *wire.GetDataRequest {
	return &wire.GetDataRequest{
		Nonce:        nonce,
		Updated:      true,
		Sender:       self,
		ExcludedKeys: h.excludedKeys(),
		Capabilities: h.caps,
	}
}

// BuildResponse returns everything not excluded by the request that the peer
// with peerCaps supports. Categories over their limit are truncated in no
// particular order.
func (h *Handler) BuildResponse(req *wire.GetDataRequest, peerCaps types.Capabilities) *wire.GetDataResponse {
	excluded := make(map[types.Hash32]struct{}, len(req.ExcludedKeys))
	for _, key := range req.ExcludedKeys {
		excluded[key] = struct{}{}
	}
	resp := &wire.GetDataResponse{
		Nonce:        req.Nonce,
		Updated:      req.Updated,
		Capabilities: h.caps,
	}

	maxAppendOnly := min(h.cfg.MaxAppendOnly, wire.MaxResponseItems)
	for _, p := range h.store.AppendOnlyPayloads() {
		if _, ok := excluded[p.ID]; ok || !peerCaps.ContainsAll(p.Capabilities) {
			continue
		}
		if len(resp.AppendOnly) == maxAppendOnly {
			resp.AppendOnlyTruncated = true
			break
		}
		resp.AppendOnly = append(resp.AppendOnly, *p)
	}

	maxProtected := min(h.cfg.MaxProtected, wire.MaxResponseItems)
	for _, entry := range h.store.Entries() {
		if _, ok := excluded[entry.Hash()]; ok || !peerCaps.ContainsAll(entry.Payload.Capabilities) {
			continue
		}
		if len(resp.Entries) == maxProtected {
			resp.ProtectedTruncated = true
			break
		}
		resp.Entries = append(resp.Entries, *entry)
	}

	if resp.AppendOnlyTruncated {
		truncated.WithLabelValues("append_only").Inc()
	}
	if resp.ProtectedTruncated {
		truncated.WithLabelValues("protected").Inc()
	}
	served.WithLabelValues(requestKind(req.Updated)).Inc()
	return resp
}

// Result counts the items accepted from a response.
type Result struct {
	Protected  int
	AppendOnly int
}

// ProcessResponse adds the data from the response received from peer. Data
// received from the peer is not broadcasted back to it.
func (h *Handler) ProcessResponse(
	ctx context.Context,
	resp *wire.GetDataResponse,
	nonce uint32,
	from p2p.Peer,
) (Result, error) {
	var result Result
	if resp.Nonce != nonce {
		return result, fmt.Errorf("%w: expected %d, got %d", ErrNonceMismatch, nonce, resp.Nonce)
	}
	for i := range resp.AppendOnly {
		if h.store.AddSyncedAppendOnly(ctx, &resp.AppendOnly[i], from) {
			result.AppendOnly++
		}
	}
	for i := range resp.Entries {
		if h.store.AddProtectedEntry(ctx, &resp.Entries[i], from) {
			result.Protected++
		}
	}
	receivedItems.WithLabelValues("append_only", "accepted").Add(float64(result.AppendOnly))
	receivedItems.WithLabelValues("append_only", "ignored").Add(float64(len(resp.AppendOnly) - result.AppendOnly))
	receivedItems.WithLabelValues("protected", "accepted").Add(float64(result.Protected))
	receivedItems.WithLabelValues("protected", "ignored").Add(float64(len(resp.Entries) - result.Protected))
	h.logger.Debug("processed get data response",
		log.ZContext(ctx),
		zap.Stringer("peer", from),
		zap.Int("entries", len(resp.Entries)),
		zap.Int("append_only", len(resp.AppendOnly)),
		zap.Int("accepted_entries", result.Protected),
		zap.Int("accepted_append_only", result.AppendOnly),
		zap.Bool("protected_truncated", resp.ProtectedTruncated),
		zap.Bool("append_only_truncated", resp.AppendOnlyTruncated),
	)
	return result, nil
}
