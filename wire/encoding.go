package wire

import (
	"errors"
	"fmt"

	"github.com/spacemeshos/go-scale"

	"github.com/tradenet/go-bulletin/common/types"
	"github.com/tradenet/go-bulletin/payload"
)

func (m *RefreshMessage) EncodeScale(enc *scale.Encoder) (int, error) {
	var total int
	{
		n, err := m.Hash.EncodeScale(enc)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := scale.EncodeCompact32(enc, m.Sequence)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := m.Signature.EncodeScale(enc)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

func (m *RefreshMessage) DecodeScale(dec *scale.Decoder) (int, error) {
	var total int
	{
		n, err := m.Hash.DecodeScale(dec)
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
		m.Sequence = field
	}
	{
		n, err := m.Signature.DecodeScale(dec)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

func (m *Message) EncodeScale(enc *scale.Encoder) (int, error) {
	if m.Data == nil {
		return 0, errors.New("message without data")
	}
	var total int
	{
		n, err := scale.EncodeByte(enc, byte(m.Type))
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := m.Data.EncodeScale(enc)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

func (m *Message) DecodeScale(dec *scale.Decoder) (int, error) {
	var total int
	{
		typ, n, err := scale.DecodeByte(dec)
		if err != nil {
			return total, err
		}
		m.Type = MessageType(typ)
		total += n
	}
	switch m.Type {
	case Add, Remove, RemoveMailbox:
		var entry payload.Entry
		n, err := entry.DecodeScale(dec)
		if err != nil {
			return total, err
		}
		m.Data = &entry
		total += n
	case Refresh:
		var msg RefreshMessage
		n, err := msg.DecodeScale(dec)
		if err != nil {
			return total, err
		}
		m.Data = &msg
		total += n
	case AddAppendOnly:
		var p payload.AppendOnly
		n, err := p.DecodeScale(dec)
		if err != nil {
			return total, err
		}
		m.Data = &p
		total += n
	default:
		return total, fmt.Errorf("%w: %d", ErrUnknownMessage, m.Type)
	}
	return total, nil
}

func (r *GetDataRequest) EncodeScale(enc *scale.Encoder) (int, error) {
	var total int
	{
		n, err := scale.EncodeCompact32(enc, r.Nonce)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := scale.EncodeBool(enc, r.Updated)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := scale.EncodeStringWithLimit(enc, r.Sender, MaxSenderLength)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := scale.EncodeStructSliceWithLimit(enc, r.ExcludedKeys, MaxExcludedKeys)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := r.Capabilities.EncodeScale(enc)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

func (r *GetDataRequest) DecodeScale(dec *scale.Decoder) (int, error) {
	var total int
	{
		field, n, err := scale.DecodeCompact32(dec)
		if err != nil {
			return total, err
		}
		total += n
		r.Nonce = field
	}
	{
		field, n, err := scale.DecodeBool(dec)
		if err != nil {
			return total, err
		}
		total += n
		r.Updated = field
	}
	{
		field, n, err := scale.DecodeStringWithLimit(dec, MaxSenderLength)
		if err != nil {
			return total, err
		}
		total += n
		r.Sender = field
	}
	{
		field, n, err := scale.DecodeStructSliceWithLimit[types.Hash32](dec, MaxExcludedKeys)
		if err != nil {
			return total, err
		}
		total += n
		r.ExcludedKeys = field
	}
	{
		n, err := r.Capabilities.DecodeScale(dec)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

func (r *GetDataResponse) EncodeScale(enc *scale.Encoder) (int, error) {
	var total int
	{
		n, err := scale.EncodeCompact32(enc, r.Nonce)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := scale.EncodeBool(enc, r.Updated)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := scale.EncodeStructSliceWithLimit(enc, r.Entries, MaxResponseItems)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := scale.EncodeStructSliceWithLimit(enc, r.AppendOnly, MaxResponseItems)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := scale.EncodeBool(enc, r.ProtectedTruncated)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := scale.EncodeBool(enc, r.AppendOnlyTruncated)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := r.Capabilities.EncodeScale(enc)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

func (r *GetDataResponse) DecodeScale(dec *scale.Decoder) (int, error) {
	var total int
	{
		field, n, err := scale.DecodeCompact32(dec)
		if err != nil {
			return total, err
		}
		total += n
		r.Nonce = field
	}
	{
		field, n, err := scale.DecodeBool(dec)
		if err != nil {
			return total, err
		}
		total += n
		r.Updated = field
	}
	{
		field, n, err := scale.DecodeStructSliceWithLimit[payload.Entry](dec, MaxResponseItems)
		if err != nil {
			return total, err
		}
		total += n
		r.Entries = field
	}
	{
		field, n, err := scale.DecodeStructSliceWithLimit[payload.AppendOnly](dec, MaxResponseItems)
		if err != nil {
			return total, err
		}
		total += n
		r.AppendOnly = field
	}
	{
		field, n, err := scale.DecodeBool(dec)
		if err != nil {
			return total, err
		}
		total += n
		r.ProtectedTruncated = field
	}
	{
		field, n, err := scale.DecodeBool(dec)
		if err != nil {
			return total, err
		}
		total += n
		r.AppendOnlyTruncated = field
	}
	{
		n, err := r.Capabilities.DecodeScale(dec)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}
