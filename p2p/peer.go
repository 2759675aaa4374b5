package p2p

import "github.com/libp2p/go-libp2p/core/peer"

// Peer is an alias to libp2p's peer.ID.
type Peer = peer.ID

// NoPeer is used for data that originated locally.
const NoPeer Peer = ""

// CloseReason tells why the connection to a peer was closed.
type CloseReason uint8

const (
	// CloseUnintended is a connection lost without a request from this node.
	CloseUnintended CloseReason = iota
	// CloseIntended is a connection closed on request, for example to drop a misbehaving peer.
	CloseIntended
	// CloseShutdown is a connection closed because the node is shutting down.
	CloseShutdown
)

// Intended is true if this node asked for the connection to be closed.
func (r CloseReason) Intended() bool {
	return r == CloseIntended || r == CloseShutdown
}

func (r CloseReason) String() string {
	switch r {
	case CloseUnintended:
		return "unintended"
	case CloseIntended:
		return "intended"
	case CloseShutdown:
		return "shutdown"
	default:
		return "unknown"
	}
}
