package types

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/spacemeshos/go-scale"
	"go.uber.org/zap/zapcore"

	"github.com/tradenet/go-bulletin/hash"
)

const (
	// Hash32Length is 32, the expected length of the hash.
	Hash32Length = 32
)

// Hash32 represents the 32-byte blake3 hash of arbitrary data.
type Hash32 [Hash32Length]byte

// EmptyHash32 is a canonical empty Hash32.
var EmptyHash32 = Hash32{}

// CalcHash32 returns the 32-byte blake3 sum of the given data.
func CalcHash32(data []byte) Hash32 {
	return hash.Sum(data)
}

// BytesToHash sets b to hash.
// If b is larger than len(h), b will be cropped from the left.
func BytesToHash(b []byte) Hash32 {
	var h Hash32
	h.SetBytes(b)
	return h
}

// Bytes gets the byte representation of the underlying hash.
func (h Hash32) Bytes() []byte { return h[:] }

// Hex converts a hash to a hex string.
func (h Hash32) Hex() string { return hex.EncodeToString(h[:]) }

// String implements the stringer interface and is used also by the logger when
// doing full logging into a file.
func (h Hash32) String() string {
	return h.Hex()
}

// ShortString returns the first 10 characters of the hash, for logging purposes.
func (h Hash32) ShortString() string {
	return Shorten(h.Hex(), 10)
}

// Shorten shortens a string to a specified length.
func Shorten(s string, maxlen int) string {
	return s[:min(maxlen, len(s))]
}

// Format implements fmt.Formatter, forcing the byte slice to be formatted as is,
// without going through the stringer interface used for logging.
func (h Hash32) Format(s fmt.State, c rune) {
	_, _ = fmt.Fprintf(s, "%"+string(c), h[:])
}

// MarshalText returns the hex representation of h.
func (h Hash32) MarshalText() ([]byte, error) {
	return []byte(h.Hex()), nil
}

// UnmarshalText parses a hash in hex syntax.
func (h *Hash32) UnmarshalText(input []byte) error {
	if hex.DecodedLen(len(input)) != Hash32Length {
		return fmt.Errorf("invalid hash length %d", len(input))
	}
	if _, err := hex.Decode(h[:], input); err != nil {
		return fmt.Errorf("decode hash: %w", err)
	}
	return nil
}

// SetBytes sets the hash to the value of b.
// If b is larger than len(h), b will be cropped from the left.
func (h *Hash32) SetBytes(b []byte) {
	if len(b) > len(h) {
		b = b[len(b)-Hash32Length:]
	}

	copy(h[Hash32Length-len(b):], b)
}

// MarshalLogObject implements logging encoder for Hash32.
func (h Hash32) MarshalLogObject(encoder zapcore.ObjectEncoder) error {
	encoder.AddString("hash", h.ShortString())
	return nil
}

// EncodeScale implements scale codec interface.
func (h *Hash32) EncodeScale(e *scale.Encoder) (int, error) {
	return scale.EncodeByteArray(e, h[:])
}

// DecodeScale implements scale codec interface.
func (h *Hash32) DecodeScale(d *scale.Decoder) (int, error) {
	return scale.DecodeByteArray(d, h[:])
}

// RandomHash generates random Hash32 for testing.
func RandomHash() Hash32 {
	var h Hash32
	if _, err := rand.Read(h[:]); err != nil {
		panic(err)
	}
	return h
}
