package store

import (
	"context"

	"go.uber.org/zap"

	"github.com/tradenet/go-bulletin/p2p"
	"github.com/tradenet/go-bulletin/payload"
)

// RemoveExpired evicts entries that outlived their ttl. Expiration is local,
// the ledger is not updated and nothing is broadcasted.
func (s *Store) RemoveExpired() int {
	now := s.clock.Now()
	var expired []*payload.Entry
	s.mu.Lock()
	for hash, entry := range s.protected {
		kind := entry.Payload.Kind
		if !entry.Expired(s.ttl[kind], now) {
			continue
		}
		delete(s.protected, hash)
		if kind.Persistable() {
			s.entriesStore.RequestDelete(hash)
		}
		expired = append(expired, entry)
	}
	protectedEntries.Set(float64(len(s.protected)))
	if len(expired) == 0 {
		s.mu.Unlock()
		return 0
	}
	ticket := s.listeners.ticket()
	s.mu.Unlock()

	for _, entry := range expired {
		expiredEntries.WithLabelValues(entry.Payload.Kind.String()).Inc()
	}
	s.logger.Debug("removed expired entries", zap.Int("count", len(expired)))
	s.listeners.notify(ticket, func() {
		s.listeners.protectedRemoved(expired)
	})
	return len(expired)
}

// RunSweep removes expired entries every ExpireInterval until ctx is canceled.
func (s *Store) RunSweep(ctx context.Context) error {
	ticker := s.clock.NewTicker(s.cfg.ExpireInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.Chan():
			s.RemoveExpired()
		}
	}
}

// PurgeLedger removes old ledger records once the ledger grows above the threshold.
func (s *Store) PurgeLedger() int {
	now := s.clock.Now()
	s.mu.Lock()
	removed := s.ledger.Purge(now, s.cfg.LedgerRetention, s.cfg.LedgerPurgeThreshold)
	size := s.ledger.Len()
	s.mu.Unlock()
	if removed > 0 {
		s.logger.Info("purged sequence number ledger",
			zap.Int("removed", removed),
			zap.Int("size", size),
		)
	}
	return removed
}

// RunPurge purges the ledger every PurgeInterval until ctx is canceled.
func (s *Store) RunPurge(ctx context.Context) error {
	ticker := s.clock.NewTicker(s.cfg.PurgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.Chan():
			s.PurgeLedger()
		}
	}
}

// OnDisconnect shortens the lifetime of entries received from the peer if
// the connection was lost unexpectedly.
func (s *Store) OnDisconnect(peer p2p.Peer, reason p2p.CloseReason) {
	if reason.Intended() || peer == p2p.NoPeer {
		return
	}
	now := s.clock.Now()
	var backdated int
	s.mu.Lock()
	for hash, entry := range s.protected {
		kind := entry.Payload.Kind
		if entry.ReceivedFrom != peer || !kind.RequiresOwnerOnline() {
			continue
		}
		created, ok := entry.Backdate(s.ttl[kind], s.cfg.BackdateDelta, s.cfg.BackdateFloor, now)
		if !ok {
			continue
		}
		adjusted := entry.Copy()
		adjusted.Created = created
		s.protected[hash] = adjusted
		backdated++
	}
	s.mu.Unlock()
	if backdated > 0 {
		backdatedEntries.Add(float64(backdated))
		s.logger.Debug("backdated entries of disconnected peer",
			zap.Stringer("peer", peer),
			zap.Stringer("reason", reason),
			zap.Int("count", backdated),
		)
	}
}
