package payload

import (
	"fmt"
	"time"

	"go.uber.org/zap/zapcore"

	"github.com/tradenet/go-bulletin/codec"
	"github.com/tradenet/go-bulletin/common/types"
)

// AppendOnly is a content addressed payload. Once accepted it is never mutated or removed.
type AppendOnly struct {
	// ID is the hash of the content as reported by the payload.
	ID           types.Hash32
	Kind         Kind
	Date         time.Time
	Capabilities types.Capabilities
	Data         []byte
}

// NewAppendOnly creates a payload of the kind and computes its hash.
func NewAppendOnly(kind Kind, date time.Time, caps types.Capabilities, data []byte) (*AppendOnly, error) {
	if !kind.Known() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, kind)
	}
	if !kind.AppendOnly() {
		return nil, fmt.Errorf("%w: %s", ErrWrongClass, kind)
	}
	if len(data) > MaxDataSize {
		return nil, fmt.Errorf("data size %d exceeds %d", len(data), MaxDataSize)
	}
	p := &AppendOnly{
		Kind:         kind,
		Date:         date.Truncate(time.Millisecond),
		Capabilities: caps,
		Data:         data,
	}
	p.ID = p.ComputeHash()
	return p, nil
}

// ComputeHash hashes the content of the payload, excluding reported ID.
func (p *AppendOnly) ComputeHash() types.Hash32 {
	return types.CalcHash32(codec.MustEncode((*appendOnlyContent)(p)))
}

// VerifyHash is true if the reported ID matches the content.
func (p *AppendOnly) VerifyHash() bool {
	return p.Kind.AppendOnly() && len(p.Data) <= MaxDataSize && p.ID == p.ComputeHash()
}

// InTolerance is true if the payload is not date tolerant, or its date
// is within tolerance of now.
func (p *AppendOnly) InTolerance(now time.Time, tolerance time.Duration) bool {
	if !p.Kind.DateTolerant() {
		return true
	}
	diff := now.Sub(p.Date)
	if diff < 0 {
		diff = -diff
	}
	return diff <= tolerance
}

func (p *AppendOnly) MarshalLogObject(encoder zapcore.ObjectEncoder) error {
	if p == nil {
		return nil
	}
	encoder.AddString("hash", p.ID.ShortString())
	encoder.AddString("kind", p.Kind.String())
	encoder.AddTime("date", p.Date)
	return nil
}
