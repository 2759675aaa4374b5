package types

import (
	"encoding/hex"

	"github.com/spacemeshos/go-scale"
	"go.uber.org/zap/zapcore"
)

const (
	// PublicKeySize in bytes.
	PublicKeySize = 32
	// EdSignatureSize in bytes.
	EdSignatureSize = 64
)

// PublicKey is an ed25519 public key of a payload owner or receiver.
type PublicKey [PublicKeySize]byte

// EmptyPublicKey is a canonical empty PublicKey.
var EmptyPublicKey PublicKey

// BytesToPublicKey is a helper to copy buffer into PublicKey.
func BytesToPublicKey(buf []byte) (key PublicKey) {
	copy(key[:], buf)
	return key
}

// Bytes returns the byte representation of the key.
func (k PublicKey) Bytes() []byte {
	return k[:]
}

// String returns a hex representation of the key.
func (k PublicKey) String() string {
	return hex.EncodeToString(k[:])
}

// ShortString returns the first 5 characters of the key, for logging purposes.
func (k PublicKey) ShortString() string {
	return Shorten(k.String(), 5)
}

// MarshalLogObject implements logging encoder for PublicKey.
func (k PublicKey) MarshalLogObject(encoder zapcore.ObjectEncoder) error {
	encoder.AddString("key", k.ShortString())
	return nil
}

// EncodeScale implements scale codec interface.
func (k *PublicKey) EncodeScale(e *scale.Encoder) (int, error) {
	return scale.EncodeByteArray(e, k[:])
}

// DecodeScale implements scale codec interface.
func (k *PublicKey) DecodeScale(d *scale.Decoder) (int, error) {
	return scale.DecodeByteArray(d, k[:])
}

// EdSignature is an ed25519 signature.
type EdSignature [EdSignatureSize]byte

// EmptyEdSignature is a canonical empty EdSignature.
var EmptyEdSignature EdSignature

// String returns a hex representation of the signature.
func (s EdSignature) String() string {
	return hex.EncodeToString(s[:])
}

// EncodeScale implements scale codec interface.
func (s *EdSignature) EncodeScale(e *scale.Encoder) (int, error) {
	return scale.EncodeByteArray(e, s[:])
}

// DecodeScale implements scale codec interface.
func (s *EdSignature) DecodeScale(d *scale.Decoder) (int, error) {
	return scale.DecodeByteArray(d, s[:])
}
