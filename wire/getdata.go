package wire

import (
	"github.com/tradenet/go-bulletin/common/types"
	"github.com/tradenet/go-bulletin/payload"
)

const (
	// MaxExcludedKeys bounds the number of keys in a request.
	MaxExcludedKeys = 1 << 20
	// MaxResponseItems bounds the number of items of each category in a response.
	MaxResponseItems = 1 << 16
	// MaxSenderLength bounds the address of the requester.
	MaxSenderLength = 256
)

// GetDataRequest asks a peer for all data except excluded keys.
// Preliminary requests are sent on first contact, updated requests
// name the address of the requester.
type GetDataRequest struct {
	Nonce        uint32
	Updated      bool
	Sender       string
	ExcludedKeys []types.Hash32
	Capabilities types.Capabilities
}

// GetDataResponse answers a GetDataRequest with the echoed nonce.
type GetDataResponse struct {
	Nonce               uint32
	Updated             bool
	Entries             []payload.Entry
	AppendOnly          []payload.AppendOnly
	ProtectedTruncated  bool
	AppendOnlyTruncated bool
	Capabilities        types.Capabilities
}
