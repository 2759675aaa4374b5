package payload

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap/zapcore"

	"github.com/tradenet/go-bulletin/codec"
	"github.com/tradenet/go-bulletin/common/types"
	"github.com/tradenet/go-bulletin/p2p"
	"github.com/tradenet/go-bulletin/signing"
)

// MaxDataSize is the maximal size of the opaque payload data.
const MaxDataSize = 64 << 10

var (
	// ErrUnknownKind is returned for kinds outside of the defined set.
	ErrUnknownKind = errors.New("unknown payload kind")
	// ErrMissingPayload is returned when an entry is constructed without a payload.
	ErrMissingPayload = errors.New("missing payload")
	// ErrWrongClass is returned when a protected kind is used as append-only or vice versa.
	ErrWrongClass = errors.New("payload kind used with a wrong class")
)

// Verifier checks signatures of entries.
type Verifier interface {
	Verify(signing.Domain, types.PublicKey, []byte, types.EdSignature) bool
}

// Protected is a payload owned by a public key. It can be added, removed and
// refreshed multiple times, each mutation carries a higher sequence number.
type Protected struct {
	Kind  Kind
	Owner types.PublicKey
	// Receiver is set only for mailbox payloads.
	Receiver     types.PublicKey
	Capabilities types.Capabilities
	Data         []byte
}

// Hash is the identity of the payload.
func (p *Protected) Hash() types.Hash32 {
	return types.CalcHash32(codec.MustEncode(p))
}

// Entry wraps a protected payload with the owner signature over (payload hash, sequence).
type Entry struct {
	Payload   *Protected
	Owner     types.PublicKey
	Receiver  types.PublicKey
	Sequence  uint32
	Signature types.EdSignature
	Created   time.Time

	// ReceivedFrom is local metadata, it is not encoded.
	ReceivedFrom p2p.Peer
}

// Hash is the identity of the entry, which is the identity of the payload.
func (e *Entry) Hash() types.Hash32 {
	return e.Payload.Hash()
}

// SignedBytes returns the message signed by the owner for the given payload hash and sequence.
func SignedBytes(hash types.Hash32, seq uint32) []byte {
	buf := make([]byte, 0, types.Hash32Length+4)
	buf = append(buf, hash[:]...)
	return binary.BigEndian.AppendUint32(buf, seq)
}

func (e *Entry) validSignature(verifier Verifier) bool {
	return verifier.Verify(signing.ENTRY, e.Owner, SignedBytes(e.Hash(), e.Sequence), e.Signature)
}

func (e *Entry) wellFormed() bool {
	if e.Payload == nil || !e.Payload.Kind.Protected() || len(e.Payload.Data) > MaxDataSize {
		return false
	}
	if e.Payload.Kind.Mailbox() {
		return e.Receiver != types.EmptyPublicKey && e.Receiver == e.Payload.Receiver
	}
	return e.Receiver == types.EmptyPublicKey && e.Payload.Receiver == types.EmptyPublicKey
}

// ValidForAdd is true if the entry is well formed, the signer is the payload owner
// (the sender for mailbox payloads) and the signature is valid.
func (e *Entry) ValidForAdd(verifier Verifier) bool {
	if !e.wellFormed() || e.Owner != e.Payload.Owner {
		return false
	}
	return e.validSignature(verifier)
}

// ValidForRemove is true if the entry is well formed, the signer is allowed to remove
// the payload and the signature is valid. Mailbox payloads are removed by the receiver.
func (e *Entry) ValidForRemove(verifier Verifier) bool {
	if !e.wellFormed() {
		return false
	}
	if e.Payload.Kind.Mailbox() {
		if e.Owner != e.Payload.Receiver {
			return false
		}
	} else if e.Owner != e.Payload.Owner {
		return false
	}
	return e.validSignature(verifier)
}

// MatchesRelevantKey is true if the entry may replace or remove the stored entry.
func (e *Entry) MatchesRelevantKey(stored *Entry) bool {
	if e.Payload.Kind.Mailbox() {
		return e.Receiver == stored.Receiver
	}
	return e.Owner == stored.Owner
}

// Expired is true if ttl is finite and the entry outlived it.
func (e *Entry) Expired(ttl time.Duration, now time.Time) bool {
	return ttl > 0 && e.Created.Add(ttl).Before(now)
}

// Backdate returns the creation time moved back by delta, but not so far that
// less than floor of the ttl remains. It returns false if the time would not move back.
func (e *Entry) Backdate(ttl, delta, floor time.Duration, now time.Time) (time.Time, bool) {
	if ttl <= 0 {
		return e.Created, false
	}
	created := e.Created.Add(-delta)
	if earliest := now.Add(floor - ttl); created.Before(earliest) {
		created = earliest
	}
	if !created.Before(e.Created) {
		return e.Created, false
	}
	return created, true
}

// Copy returns a shallow copy of the entry. Payload is immutable and shared.
func (e *Entry) Copy() *Entry {
	cp := *e
	return &cp
}

func (e *Entry) MarshalLogObject(encoder zapcore.ObjectEncoder) error {
	if e == nil || e.Payload == nil {
		return nil
	}
	encoder.AddString("hash", e.Hash().ShortString())
	encoder.AddString("kind", e.Payload.Kind.String())
	encoder.AddString("owner", e.Owner.ShortString())
	encoder.AddUint32("seq", e.Sequence)
	encoder.AddTime("created", e.Created)
	if e.ReceivedFrom != p2p.NoPeer {
		encoder.AddString("from", e.ReceivedFrom.String())
	}
	return nil
}

// Sign creates an entry for the payload signed by the signer.
func Sign(signer *signing.EdSigner, payload *Protected, seq uint32, created time.Time) (*Entry, error) {
	if payload == nil {
		return nil, ErrMissingPayload
	}
	if !payload.Kind.Known() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, payload.Kind)
	}
	if !payload.Kind.Protected() {
		return nil, fmt.Errorf("%w: %s", ErrWrongClass, payload.Kind)
	}
	if len(payload.Data) > MaxDataSize {
		return nil, fmt.Errorf("data size %d exceeds %d", len(payload.Data), MaxDataSize)
	}
	entry := &Entry{
		Payload:  payload,
		Owner:    signer.PublicKey(),
		Receiver: payload.Receiver,
		Sequence: seq,
		Created:  created,
	}
	entry.Signature = signer.Sign(signing.ENTRY, SignedBytes(payload.Hash(), seq))
	return entry, nil
}
