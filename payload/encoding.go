package payload

import (
	"fmt"
	"time"

	"github.com/spacemeshos/go-scale"
)

func (k Kind) EncodeScale(enc *scale.Encoder) (int, error) {
	return scale.EncodeByte(enc, byte(k))
}

func (k *Kind) DecodeScale(dec *scale.Decoder) (int, error) {
	b, n, err := scale.DecodeByte(dec)
	if err != nil {
		return n, err
	}
	kind := Kind(b)
	if !kind.Known() {
		return n, fmt.Errorf("%w: %d", ErrUnknownKind, b)
	}
	*k = kind
	return n, nil
}

func encodeMillis(enc *scale.Encoder, t time.Time) (int, error) {
	return scale.EncodeCompact64(enc, uint64(t.UnixMilli()))
}

func decodeMillis(dec *scale.Decoder) (time.Time, int, error) {
	ms, n, err := scale.DecodeCompact64(dec)
	if err != nil {
		return time.Time{}, n, err
	}
	return time.UnixMilli(int64(ms)), n, nil
}

func (p *Protected) EncodeScale(enc *scale.Encoder) (int, error) {
	var total int
	{
		n, err := p.Kind.EncodeScale(enc)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := p.Owner.EncodeScale(enc)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := p.Receiver.EncodeScale(enc)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := p.Capabilities.EncodeScale(enc)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := scale.EncodeByteSliceWithLimit(enc, p.Data, MaxDataSize)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

func (p *Protected) DecodeScale(dec *scale.Decoder) (int, error) {
	var total int
	{
		n, err := p.Kind.DecodeScale(dec)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := p.Owner.DecodeScale(dec)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := p.Receiver.DecodeScale(dec)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := p.Capabilities.DecodeScale(dec)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		field, n, err := scale.DecodeByteSliceWithLimit(dec, MaxDataSize)
		if err != nil {
			return total, err
		}
		total += n
		p.Data = field
	}
	return total, nil
}

func (e *Entry) EncodeScale(enc *scale.Encoder) (int, error) {
	if e.Payload == nil {
		return 0, ErrMissingPayload
	}
	var total int
	{
		n, err := e.Payload.EncodeScale(enc)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := e.Owner.EncodeScale(enc)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := e.Receiver.EncodeScale(enc)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := scale.EncodeCompact32(enc, e.Sequence)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := e.Signature.EncodeScale(enc)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := encodeMillis(enc, e.Created)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

func (e *Entry) DecodeScale(dec *scale.Decoder) (int, error) {
	var total int
	{
		e.Payload = &Protected{}
		n, err := e.Payload.DecodeScale(dec)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := e.Owner.DecodeScale(dec)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := e.Receiver.DecodeScale(dec)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		field, n, err := scale.DecodeCompact32(dec)
		if err != nil {
			return total, err
		}
		total += n
		e.Sequence = field
	}
	{
		n, err := e.Signature.DecodeScale(dec)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		field, n, err := decodeMillis(dec)
		if err != nil {
			return total, err
		}
		total += n
		e.Created = field
	}
	return total, nil
}

// appendOnlyContent is the hashed part of the append-only payload.
type appendOnlyContent AppendOnly

func (c *appendOnlyContent) EncodeScale(enc *scale.Encoder) (int, error) {
	var total int
	{
		n, err := c.Kind.EncodeScale(enc)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := encodeMillis(enc, c.Date)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := c.Capabilities.EncodeScale(enc)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := scale.EncodeByteSliceWithLimit(enc, c.Data, MaxDataSize)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

func (c *appendOnlyContent) DecodeScale(dec *scale.Decoder) (int, error) {
	var total int
	{
		n, err := c.Kind.DecodeScale(dec)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		field, n, err := decodeMillis(dec)
		if err != nil {
			return total, err
		}
		total += n
		c.Date = field
	}
	{
		n, err := c.Capabilities.DecodeScale(dec)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		field, n, err := scale.DecodeByteSliceWithLimit(dec, MaxDataSize)
		if err != nil {
			return total, err
		}
		total += n
		c.Data = field
	}
	return total, nil
}

func (p *AppendOnly) EncodeScale(enc *scale.Encoder) (int, error) {
	var total int
	{
		n, err := p.ID.EncodeScale(enc)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := (*appendOnlyContent)(p).EncodeScale(enc)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

func (p *AppendOnly) DecodeScale(dec *scale.Decoder) (int, error) {
	var total int
	{
		n, err := p.ID.DecodeScale(dec)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := (*appendOnlyContent)(p).DecodeScale(dec)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}
