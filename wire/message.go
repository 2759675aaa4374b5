// Package wire defines messages exchanged between bulletin board nodes.
package wire

import (
	"errors"
	"fmt"

	"github.com/spacemeshos/go-scale"

	"github.com/tradenet/go-bulletin/common/types"
	"github.com/tradenet/go-bulletin/payload"
)

// ErrUnknownMessage is returned when decoding a message of an unknown type.
var ErrUnknownMessage = errors.New("unknown message type")

// MessageType is the type of a broadcast message.
type MessageType uint8

const (
	Add MessageType = iota + 1
	Remove
	RemoveMailbox
	Refresh
	AddAppendOnly
)

func (t MessageType) String() string {
	switch t {
	case Add:
		return "add"
	case Remove:
		return "remove"
	case RemoveMailbox:
		return "remove_mailbox"
	case Refresh:
		return "refresh"
	case AddAppendOnly:
		return "add_append_only"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(t))
	}
}

// RefreshMessage extends the lifetime of a live entry. Signature is made by the
// entry owner over the payload hash and the new sequence number.
type RefreshMessage struct {
	Hash      types.Hash32
	Sequence  uint32
	Signature types.EdSignature
}

// Message is an envelope for all broadcast messages.
type Message struct {
	Type MessageType
	// *payload.Entry | *RefreshMessage | *payload.AppendOnly
	Data scale.Type
}

func NewAddMessage(entry *payload.Entry) *Message {
	return &Message{Type: Add, Data: entry}
}

// NewRemoveMessage picks the remove message type depending on the entry kind.
func NewRemoveMessage(entry *payload.Entry) *Message {
	if entry.Payload.Kind.Mailbox() {
		return &Message{Type: RemoveMailbox, Data: entry}
	}
	return &Message{Type: Remove, Data: entry}
}

func NewRefreshMessage(msg *RefreshMessage) *Message {
	return &Message{Type: Refresh, Data: msg}
}

func NewAppendOnlyMessage(p *payload.AppendOnly) *Message {
	return &Message{Type: AddAppendOnly, Data: p}
}

// Entry returns the entry for add and remove messages.
func (m *Message) Entry() *payload.Entry {
	entry, _ := m.Data.(*payload.Entry)
	return entry
}

// Refresh returns the body of a refresh message.
func (m *Message) Refresh() *RefreshMessage {
	msg, _ := m.Data.(*RefreshMessage)
	return msg
}

// AppendOnly returns the payload of an append-only message.
func (m *Message) AppendOnly() *payload.AppendOnly {
	p, _ := m.Data.(*payload.AppendOnly)
	return p
}
