package store

import (
	"context"

	"github.com/tradenet/go-bulletin/common/types"
	"github.com/tradenet/go-bulletin/p2p"
	"github.com/tradenet/go-bulletin/payload"
	"github.com/tradenet/go-bulletin/wire"
)

//go:generate mockgen -typed -package=mocks -destination=./mocks/mocks.go -source=./interface.go

// Broadcaster sends accepted messages to peers, except the one the data was received from.
type Broadcaster interface {
	Broadcast(ctx context.Context, msg *wire.Message, exclude p2p.Peer)
}

// PeerResolver is true if messages from the peer can be attributed to a known peer.
type PeerResolver interface {
	Resolve(p2p.Peer) bool
}

// EntryPersister keeps protected entries of persistable kinds.
type EntryPersister interface {
	RequestPersist(types.Hash32, *payload.Entry)
	RequestDelete(types.Hash32)
	GetPersisted(context.Context) (map[types.Hash32]*payload.Entry, error)
}

// AppendOnlyPersister keeps append-only payloads.
type AppendOnlyPersister interface {
	RequestPersist(types.Hash32, *payload.AppendOnly)
	GetPersisted(context.Context) (map[types.Hash32]*payload.AppendOnly, error)
}
