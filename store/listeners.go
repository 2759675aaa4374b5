package store

import (
	"sync"
	"sync/atomic"

	"github.com/tradenet/go-bulletin/payload"
)

// Handle deregisters a listener.
type Handle struct {
	once  sync.Once
	close func()
}

// Close deregisters the listener. It is safe to call Close more than once.
func (h *Handle) Close() {
	h.once.Do(h.close)
}

// Listeners is a registry of callbacks notified about changes in the store.
// Callbacks are called synchronously after the change is committed, in commit
// order, one at a time. They may read the store but must not call its mutations.
type Listeners struct {
	mu         sync.Mutex
	next       uint64
	added      map[uint64]func([]*payload.Entry)
	removed    map[uint64]func([]*payload.Entry)
	appendOnly map[uint64]func(*payload.AppendOnly)

	tickets atomic.Uint64
	turnMu  sync.Mutex
	turn    uint64
	turnCh  *sync.Cond
}

func NewListeners() *Listeners {
	l := &Listeners{
		added:      make(map[uint64]func([]*payload.Entry)),
		removed:    make(map[uint64]func([]*payload.Entry)),
		appendOnly: make(map[uint64]func(*payload.AppendOnly)),
	}
	l.turnCh = sync.NewCond(&l.turnMu)
	return l
}

// ticket reserves a slot in the notification order. It must be called while
// the change is committed under the store lock and followed by exactly one notify.
func (l *Listeners) ticket() uint64 {
	return l.tickets.Add(1) - 1
}

// notify waits until all earlier tickets are notified and then runs fn.
func (l *Listeners) notify(ticket uint64, fn func()) {
	l.turnMu.Lock()
	for l.turn != ticket {
		l.turnCh.Wait()
	}
	l.turnMu.Unlock()
	defer func() {
		l.turnMu.Lock()
		l.turn++
		l.turnCh.Broadcast()
		l.turnMu.Unlock()
	}()
	fn()
}

// OnProtectedAdded registers a callback for added protected entries.
func (l *Listeners) OnProtectedAdded(fn func([]*payload.Entry)) *Handle {
	return register(l, l.added, fn)
}

// OnProtectedRemoved registers a callback for removed and expired protected entries.
func (l *Listeners) OnProtectedRemoved(fn func([]*payload.Entry)) *Handle {
	return register(l, l.removed, fn)
}

// OnAppendOnlyAdded registers a callback for new append-only payloads.
func (l *Listeners) OnAppendOnlyAdded(fn func(*payload.AppendOnly)) *Handle {
	return register(l, l.appendOnly, fn)
}

func register[F any](l *Listeners, set map[uint64]F, fn F) *Handle {
	l.mu.Lock()
	defer l.mu.Unlock()
	id := l.next
	l.next++
	set[id] = fn
	return &Handle{close: func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(set, id)
	}}
}

func snapshot[F any](l *Listeners, set map[uint64]F) []F {
	l.mu.Lock()
	defer l.mu.Unlock()
	fns := make([]F, 0, len(set))
	for _, fn := range set {
		fns = append(fns, fn)
	}
	return fns
}

func (l *Listeners) protectedAdded(entries []*payload.Entry) {
	for _, fn := range snapshot(l, l.added) {
		fn(entries)
	}
}

func (l *Listeners) protectedRemoved(entries []*payload.Entry) {
	for _, fn := range snapshot(l, l.removed) {
		fn(entries)
	}
}

func (l *Listeners) appendOnlyAdded(p *payload.AppendOnly) {
	for _, fn := range snapshot(l, l.appendOnly) {
		fn(p)
	}
}
