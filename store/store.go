// Package store is the conflict resolution engine of the bulletin board.
//
// Protected entries are accepted only with a sequence number higher than any
// sequence number accepted before for the same payload, append-only payloads
// are accepted once by their content hash.
package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/tradenet/go-bulletin/common/types"
	"github.com/tradenet/go-bulletin/ledger"
	"github.com/tradenet/go-bulletin/log"
	"github.com/tradenet/go-bulletin/p2p"
	"github.com/tradenet/go-bulletin/payload"
	"github.com/tradenet/go-bulletin/signing"
	"github.com/tradenet/go-bulletin/wire"
)

// Opt configures the Store.
type Opt func(*Store)

func WithLogger(logger *zap.Logger) Opt {
	return func(s *Store) {
		s.logger = logger
	}
}

func WithClock(clock clockwork.Clock) Opt {
	return func(s *Store) {
		s.clock = clock
	}
}

func WithConfig(cfg Config) Opt {
	return func(s *Store) {
		s.cfg = cfg
	}
}

// WithListeners shares the listener registry with the store.
func WithListeners(listeners *Listeners) Opt {
	return func(s *Store) {
		s.listeners = listeners
	}
}

// Store keeps protected entries, append-only payloads and the sequence number ledger.
type Store struct {
	logger    *zap.Logger
	clock     clockwork.Clock
	cfg       Config
	ttl       map[payload.Kind]time.Duration
	listeners *Listeners

	verifier         payload.Verifier
	broadcaster      Broadcaster
	resolver         PeerResolver
	entriesStore     EntryPersister
	appendOnlyStore  AppendOnlyPersister
	acceptedMessages *lru.Cache[types.Hash32, struct{}]

	mu         sync.Mutex
	ledger     *ledger.Ledger
	protected  map[types.Hash32]*payload.Entry
	appendOnly map[types.Hash32]*payload.AppendOnly
	// removedMailbox is used only with StrictMailboxReadd.
	removedMailbox map[types.Hash32]struct{}
}

// New creates an empty store. Use Load to restore persisted state.
func New(
	verifier payload.Verifier,
	broadcaster Broadcaster,
	resolver PeerResolver,
	ledgerStore ledger.Persister,
	entriesStore EntryPersister,
	appendOnlyStore AppendOnlyPersister,
	opts ...Opt,
) (*Store, error) {
	s := &Store{
		logger:          zap.NewNop(),
		clock:           clockwork.NewRealClock(),
		cfg:             DefaultConfig(),
		verifier:        verifier,
		broadcaster:     broadcaster,
		resolver:        resolver,
		entriesStore:    entriesStore,
		appendOnlyStore: appendOnlyStore,
		protected:       make(map[types.Hash32]*payload.Entry),
		appendOnly:      make(map[types.Hash32]*payload.AppendOnly),
		removedMailbox:  make(map[types.Hash32]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.listeners == nil {
		s.listeners = NewListeners()
	}
	ttl, err := s.cfg.ttls()
	if err != nil {
		return nil, err
	}
	s.ttl = ttl
	cache, err := lru.New[types.Hash32, struct{}](max(s.cfg.DedupCacheSize, 1))
	if err != nil {
		return nil, fmt.Errorf("create dedup cache: %w", err)
	}
	s.acceptedMessages = cache
	s.ledger = ledger.New(ledgerStore, ledger.WithLogger(s.logger.Named("ledger")))
	return s, nil
}

// Listeners returns the registry notified about changes in the store.
func (s *Store) Listeners() *Listeners {
	return s.listeners
}

// Load restores the ledger, persisted protected entries that did not expire
// and append-only payloads.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ledger.Load(ctx); err != nil {
		return err
	}
	entries, err := s.entriesStore.GetPersisted(ctx)
	if err != nil {
		return fmt.Errorf("load protected entries: %w", err)
	}
	now := s.clock.Now()
	for hash, entry := range entries {
		if entry.Payload == nil || entry.Expired(s.ttl[entry.Payload.Kind], now) {
			s.entriesStore.RequestDelete(hash)
			continue
		}
		s.protected[hash] = entry
	}
	payloads, err := s.appendOnlyStore.GetPersisted(ctx)
	if err != nil {
		return fmt.Errorf("load append-only payloads: %w", err)
	}
	for hash, p := range payloads {
		s.appendOnly[hash] = p
	}
	protectedEntries.Set(float64(len(s.protected)))
	appendOnlyPayloads.Set(float64(len(s.appendOnly)))
	s.logger.Info("loaded bulletin board",
		zap.Int("protected", len(s.protected)),
		zap.Int("append_only", len(s.appendOnly)),
		zap.Int("ledger", s.ledger.Len()),
	)
	return nil
}

// NewProtectedEntry signs the payload with seq and the current time.
func (s *Store) NewProtectedEntry(signer *signing.EdSigner, p *payload.Protected, seq uint32) (*payload.Entry, error) {
	return payload.Sign(signer, p, seq, s.clock.Now())
}

// NewRefreshMessage signs a refresh of the entry with hash to seq.
func NewRefreshMessage(signer *signing.EdSigner, hash types.Hash32, seq uint32) *wire.RefreshMessage {
	return &wire.RefreshMessage{
		Hash:      hash,
		Sequence:  seq,
		Signature: signer.Sign(signing.ENTRY, payload.SignedBytes(hash, seq)),
	}
}

// NextSequence returns the sequence number for the next mutation of the payload.
func (s *Store) NextSequence(hash types.Hash32) uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.ledger.Get(hash)
	if !ok {
		return 1
	}
	return record.Sequence + 1
}

func (s *Store) reject(ctx context.Context, op, reason string, fields ...zap.Field) bool {
	operations.WithLabelValues(op, resultRejected).Inc()
	s.logger.Debug(op+" rejected",
		append([]zap.Field{log.ZContext(ctx), zap.String("reason", reason)}, fields...)...,
	)
	return false
}

func (s *Store) stale(hash types.Hash32, seq uint32) bool {
	record, ok := s.ledger.Get(hash)
	return ok && seq <= record.Sequence
}

// AddProtectedEntry adds or replaces the entry. from is the peer the entry was
// received from, p2p.NoPeer for entries created locally.
func (s *Store) AddProtectedEntry(ctx context.Context, entry *payload.Entry, from p2p.Peer) bool {
	if entry == nil || entry.Payload == nil {
		s.logger.Error("add with missing entry", log.ZContext(ctx), zap.Stringer("from", from))
		return false
	}
	if !entry.ValidForAdd(s.verifier) {
		return s.reject(ctx, opAdd, "invalid entry", zap.Inline(entry))
	}
	hash := entry.Hash()
	now := s.clock.Now()

	s.mu.Lock()
	if stored, exists := s.protected[hash]; exists && !entry.MatchesRelevantKey(stored) {
		s.mu.Unlock()
		return s.reject(ctx, opAdd, "owner mismatch", zap.Inline(entry))
	}
	if s.stale(hash, entry.Sequence) {
		s.mu.Unlock()
		return s.reject(ctx, opAdd, "stale sequence", zap.Inline(entry))
	}
	if _, removed := s.removedMailbox[hash]; removed {
		s.mu.Unlock()
		return s.reject(ctx, opAdd, "mailbox entry was removed", zap.Inline(entry))
	}
	accepted := entry.Copy()
	accepted.ReceivedFrom = from
	if accepted.Created.After(now) {
		accepted.Created = now
	}
	s.protected[hash] = accepted
	if accepted.Payload.Kind.Persistable() {
		s.entriesStore.RequestPersist(hash, accepted)
	}
	s.ledger.Put(hash, accepted.Sequence, now)
	protectedEntries.Set(float64(len(s.protected)))
	ticket := s.listeners.ticket()
	s.mu.Unlock()

	operations.WithLabelValues(opAdd, resultAccepted).Inc()
	s.logger.Debug("added protected entry", log.ZContext(ctx), zap.Inline(accepted))
	s.listeners.notify(ticket, func() {
		s.listeners.protectedAdded([]*payload.Entry{accepted})
	})
	s.broadcaster.Broadcast(ctx, wire.NewAddMessage(accepted), from)
	return true
}

// RemoveProtectedEntry removes the entry. Removal of an unknown entry is
// recorded in the ledger so that an older add is rejected later.
func (s *Store) RemoveProtectedEntry(ctx context.Context, entry *payload.Entry, from p2p.Peer) bool {
	if entry == nil || entry.Payload == nil {
		s.logger.Error("remove with missing entry", log.ZContext(ctx), zap.Stringer("from", from))
		return false
	}
	if !entry.ValidForRemove(s.verifier) {
		return s.reject(ctx, opRemove, "invalid entry", zap.Inline(entry))
	}
	hash := entry.Hash()
	now := s.clock.Now()

	s.mu.Lock()
	stored, exists := s.protected[hash]
	if exists && !entry.MatchesRelevantKey(stored) {
		s.mu.Unlock()
		return s.reject(ctx, opRemove, "owner mismatch", zap.Inline(entry))
	}
	if s.stale(hash, entry.Sequence) {
		s.mu.Unlock()
		return s.reject(ctx, opRemove, "stale sequence", zap.Inline(entry))
	}
	s.ledger.Put(hash, entry.Sequence, now)
	if exists {
		delete(s.protected, hash)
		if stored.Payload.Kind.Persistable() {
			s.entriesStore.RequestDelete(hash)
		}
	}
	if s.cfg.StrictMailboxReadd && entry.Payload.Kind.Mailbox() {
		s.removedMailbox[hash] = struct{}{}
	}
	protectedEntries.Set(float64(len(s.protected)))
	var ticket uint64
	if exists {
		ticket = s.listeners.ticket()
	}
	s.mu.Unlock()

	operations.WithLabelValues(opRemove, resultAccepted).Inc()
	s.logger.Debug("removed protected entry",
		log.ZContext(ctx),
		zap.Inline(entry),
		zap.Bool("existed", exists),
	)
	if exists {
		s.listeners.notify(ticket, func() {
			s.listeners.protectedRemoved([]*payload.Entry{stored})
		})
	}
	s.broadcaster.Broadcast(ctx, wire.NewRemoveMessage(entry), from)
	return true
}

// RefreshTTL extends the lifetime of a live entry.
func (s *Store) RefreshTTL(ctx context.Context, msg *wire.RefreshMessage, from p2p.Peer) bool {
	if msg == nil {
		s.logger.Error("refresh with missing message", log.ZContext(ctx), zap.Stringer("from", from))
		return false
	}
	fields := []zap.Field{
		zap.String("hash", msg.Hash.ShortString()),
		zap.Uint32("seq", msg.Sequence),
	}
	now := s.clock.Now()

	s.mu.Lock()
	stored, exists := s.protected[msg.Hash]
	if !exists {
		s.mu.Unlock()
		return s.reject(ctx, opRefresh, "no live entry", fields...)
	}
	if stored.Payload.Kind.Mailbox() {
		s.mu.Unlock()
		return s.reject(ctx, opRefresh, "mailbox entries are not refreshed", fields...)
	}
	if s.stale(msg.Hash, msg.Sequence) {
		s.mu.Unlock()
		return s.reject(ctx, opRefresh, "stale sequence", fields...)
	}
	signed := payload.SignedBytes(msg.Hash, msg.Sequence)
	if !s.verifier.Verify(signing.ENTRY, stored.Owner, signed, msg.Signature) {
		s.mu.Unlock()
		return s.reject(ctx, opRefresh, "invalid signature", fields...)
	}
	refreshed := stored.Copy()
	refreshed.Sequence = msg.Sequence
	refreshed.Signature = msg.Signature
	refreshed.Created = now
	s.protected[msg.Hash] = refreshed
	s.ledger.Put(msg.Hash, msg.Sequence, now)
	s.mu.Unlock()

	operations.WithLabelValues(opRefresh, resultAccepted).Inc()
	s.logger.Debug("refreshed protected entry", append(fields, log.ZContext(ctx))...)
	s.broadcaster.Broadcast(ctx, wire.NewRefreshMessage(msg), from)
	return true
}

// AddAppendOnly adds a new append-only payload created locally or received by
// gossip. A known payload is broadcasted again if reBroadcast is set and the
// kind is not processed once.
func (s *Store) AddAppendOnly(ctx context.Context, p *payload.AppendOnly, from p2p.Peer, reBroadcast bool) bool {
	return s.addAppendOnly(ctx, p, from, reBroadcast, true)
}

// AddSyncedAppendOnly adds an append-only payload received in a sync response.
// Synced history is accepted regardless of its date.
func (s *Store) AddSyncedAppendOnly(ctx context.Context, p *payload.AppendOnly, from p2p.Peer) bool {
	return s.addAppendOnly(ctx, p, from, false, false)
}

func (s *Store) addAppendOnly(
	ctx context.Context,
	p *payload.AppendOnly,
	from p2p.Peer,
	reBroadcast, checkDate bool,
) bool {
	if p == nil {
		s.logger.Error("add with missing append-only payload", log.ZContext(ctx), zap.Stringer("from", from))
		return false
	}
	if !p.VerifyHash() {
		return s.reject(ctx, opAppendOnly, "invalid hash", zap.Inline(p))
	}
	if checkDate && !p.InTolerance(s.clock.Now(), s.cfg.DateTolerance) {
		return s.reject(ctx, opAppendOnly, "date out of tolerance", zap.Inline(p))
	}

	s.mu.Lock()
	if _, known := s.appendOnly[p.ID]; known {
		s.mu.Unlock()
		operations.WithLabelValues(opAppendOnly, resultKnown).Inc()
		if reBroadcast && !p.Kind.ProcessOnce() {
			s.broadcaster.Broadcast(ctx, wire.NewAppendOnlyMessage(p), from)
		}
		return false
	}
	s.appendOnly[p.ID] = p
	s.appendOnlyStore.RequestPersist(p.ID, p)
	appendOnlyPayloads.Set(float64(len(s.appendOnly)))
	ticket := s.listeners.ticket()
	s.mu.Unlock()

	operations.WithLabelValues(opAppendOnly, resultAccepted).Inc()
	s.logger.Debug("added append-only payload", log.ZContext(ctx), zap.Inline(p))
	s.listeners.notify(ticket, func() {
		s.listeners.appendOnlyAdded(p)
	})
	s.broadcaster.Broadcast(ctx, wire.NewAppendOnlyMessage(p), from)
	return true
}

// Get returns the live entry for the hash. The entry must not be modified.
func (s *Store) Get(hash types.Hash32) (*payload.Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.protected[hash]
	return entry, ok
}

// Entries returns all live entries. Entries must not be modified.
func (s *Store) Entries() []*payload.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := make([]*payload.Entry, 0, len(s.protected))
	for _, entry := range s.protected {
		entries = append(entries, entry)
	}
	return entries
}

// AppendOnly returns the append-only payload with the hash.
func (s *Store) AppendOnly(hash types.Hash32) (*payload.AppendOnly, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.appendOnly[hash]
	return p, ok
}

// AppendOnlyPayloads returns all append-only payloads.
func (s *Store) AppendOnlyPayloads() []*payload.AppendOnly {
	s.mu.Lock()
	defer s.mu.Unlock()
	payloads := make([]*payload.AppendOnly, 0, len(s.appendOnly))
	for _, p := range s.appendOnly {
		payloads = append(payloads, p)
	}
	return payloads
}

// Keys returns hashes of live protected entries and append-only payloads.
func (s *Store) Keys() []types.Hash32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]types.Hash32, 0, len(s.protected)+len(s.appendOnly))
	for hash := range s.protected {
		keys = append(keys, hash)
	}
	for hash := range s.appendOnly {
		keys = append(keys, hash)
	}
	return keys
}

// Sequence returns the last accepted sequence number for the hash.
func (s *Store) Sequence(hash types.Hash32) (uint32, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.ledger.Get(hash)
	return record.Sequence, ok
}
