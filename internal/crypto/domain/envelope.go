package domain

import (
	"encoding/base64"
)

// Envelope byte layout.
//
//	v1:     0x01 | master key id (8) | salt (16) | iv (12) | tag (16) | ciphertext
//	legacy:        salt (16) | iv (12) | tag (16) | ciphertext
//
// The encoded form stored on a secret is standard base64 of the whole sequence.
const (
	EnvelopeVersionV1 byte = 0x01

	SaltSize = 16
	IVSize   = 12
	TagSize  = 16

	legacyHeaderSize = SaltSize + IVSize + TagSize
	v1HeaderSize     = 1 + MasterKeyIDSize + legacyHeaderSize
)

// Envelope is a parsed encrypted value.
type Envelope struct {
	MasterKeyID []byte // nil for legacy envelopes
	Salt        []byte
	IV          []byte
	Tag         []byte
	Ciphertext  []byte
}

// IsLegacy reports whether the envelope carries no master key id.
func (e *Envelope) IsLegacy() bool {
	return e.MasterKeyID == nil
}

// Marshal serialises the envelope in its own format.
func (e *Envelope) Marshal() []byte {
	size := legacyHeaderSize + len(e.Ciphertext)
	if !e.IsLegacy() {
		size += 1 + MasterKeyIDSize
	}

	out := make([]byte, 0, size)
	if !e.IsLegacy() {
		out = append(out, EnvelopeVersionV1)
		out = append(out, e.MasterKeyID...)
	}
	out = append(out, e.Salt...)
	out = append(out, e.IV...)
	out = append(out, e.Tag...)
	out = append(out, e.Ciphertext...)
	return out
}

// Encode returns the base64 form stored on a secret.
func (e *Envelope) Encode() string {
	return base64.StdEncoding.EncodeToString(e.Marshal())
}

// DecodeEnvelope base64-decodes a stored envelope.
func DecodeEnvelope(encoded string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	return raw, nil
}

// ParseEnvelopeV1 parses raw as a v1 envelope. ok is false when the marker or
// length does not fit, in which case the bytes may still be a legacy envelope.
func ParseEnvelopeV1(raw []byte) (*Envelope, bool) {
	if len(raw) < v1HeaderSize || raw[0] != EnvelopeVersionV1 {
		return nil, false
	}
	env, ok := splitBody(raw[1+MasterKeyIDSize:])
	if !ok {
		return nil, false
	}
	env.MasterKeyID = raw[1 : 1+MasterKeyIDSize]
	return env, true
}

// ParseEnvelopeLegacy parses raw as an envelope without key id.
func ParseEnvelopeLegacy(raw []byte) (*Envelope, bool) {
	return splitBody(raw)
}

func splitBody(b []byte) (*Envelope, bool) {
	if len(b) < legacyHeaderSize {
		return nil, false
	}
	return &Envelope{
		Salt:       b[:SaltSize],
		IV:         b[SaltSize : SaltSize+IVSize],
		Tag:        b[SaltSize+IVSize : legacyHeaderSize],
		Ciphertext: b[legacyHeaderSize:],
	}, true
}
