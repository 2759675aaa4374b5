package types

import (
	"slices"
	"strconv"
	"strings"

	"github.com/spacemeshos/go-scale"
)

// maxCapabilities bounds decoded capability sets.
const maxCapabilities = 64

// Capability is a feature flag advertised by a peer.
type Capability uint8

const (
	CapSeedNode Capability = iota
	CapTradeStatistics
	CapAccountAgeWitness
	CapMediation
	CapSignedAccountAgeWitness
	CapRefundAgent
	CapMailboxV2
	CapTruncatedResponse
)

func (c Capability) String() string {
	switch c {
	case CapSeedNode:
		return "seed_node"
	case CapTradeStatistics:
		return "trade_statistics"
	case CapAccountAgeWitness:
		return "account_age_witness"
	case CapMediation:
		return "mediation"
	case CapSignedAccountAgeWitness:
		return "signed_account_age_witness"
	case CapRefundAgent:
		return "refund_agent"
	case CapMailboxV2:
		return "mailbox_v2"
	case CapTruncatedResponse:
		return "truncated_response"
	default:
		return "capability_" + strconv.Itoa(int(c))
	}
}

// Capabilities is a sorted set of capability codes.
type Capabilities []Capability

// NewCapabilities returns a sorted, deduplicated set of capabilities.
func NewCapabilities(caps ...Capability) Capabilities {
	rst := slices.Clone(caps)
	slices.Sort(rst)
	return slices.Compact(rst)
}

// Contains returns true if capability is in the set.
func (c Capabilities) Contains(capability Capability) bool {
	_, found := slices.BinarySearch(c, capability)
	return found
}

// ContainsAll returns true if c is a superset of required.
// An empty requirement is satisfied by any set.
func (c Capabilities) ContainsAll(required Capabilities) bool {
	for _, r := range required {
		if !c.Contains(r) {
			return false
		}
	}
	return true
}

func (c Capabilities) String() string {
	parts := make([]string, 0, len(c))
	for _, capability := range c {
		parts = append(parts, capability.String())
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// EncodeScale implements scale codec interface.
func (c Capabilities) EncodeScale(e *scale.Encoder) (int, error) {
	buf := make([]byte, len(c))
	for i, capability := range c {
		buf[i] = byte(capability)
	}
	return scale.EncodeByteSliceWithLimit(e, buf, maxCapabilities)
}

// DecodeScale implements scale codec interface.
func (c *Capabilities) DecodeScale(d *scale.Decoder) (int, error) {
	buf, n, err := scale.DecodeByteSliceWithLimit(d, maxCapabilities)
	if err != nil {
		return n, err
	}
	caps := make([]Capability, len(buf))
	for i, b := range buf {
		caps[i] = Capability(b)
	}
	*c = NewCapabilities(caps...)
	return n, nil
}
