package domain

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEnvelope(withKeyID bool) *Envelope {
	env := &Envelope{
		Salt:       bytes.Repeat([]byte{0xAA}, SaltSize),
		IV:         bytes.Repeat([]byte{0xBB}, IVSize),
		Tag:        bytes.Repeat([]byte{0xCC}, TagSize),
		Ciphertext: []byte("ciphertext"),
	}
	if withKeyID {
		env.MasterKeyID = bytes.Repeat([]byte{0x11}, MasterKeyIDSize)
	}
	return env
}

func TestEnvelope_V1(t *testing.T) {
	env := sampleEnvelope(true)

	raw, err := DecodeEnvelope(env.Encode())
	require.NoError(t, err)
	assert.Equal(t, EnvelopeVersionV1, raw[0])

	parsed, ok := ParseEnvelopeV1(raw)
	require.True(t, ok)
	assert.False(t, parsed.IsLegacy())
	assert.Equal(t, env.MasterKeyID, parsed.MasterKeyID)
	assert.Equal(t, env.Salt, parsed.Salt)
	assert.Equal(t, env.IV, parsed.IV)
	assert.Equal(t, env.Tag, parsed.Tag)
	assert.Equal(t, env.Ciphertext, parsed.Ciphertext)
}

func TestEnvelope_Legacy(t *testing.T) {
	env := sampleEnvelope(false)
	raw := env.Marshal()

	_, ok := ParseEnvelopeV1(raw)
	assert.False(t, ok)

	parsed, ok := ParseEnvelopeLegacy(raw)
	require.True(t, ok)
	assert.True(t, parsed.IsLegacy())
	assert.Equal(t, env.Ciphertext, parsed.Ciphertext)
}

func TestEnvelope_EmptyCiphertext(t *testing.T) {
	env := sampleEnvelope(true)
	env.Ciphertext = nil

	parsed, ok := ParseEnvelopeV1(env.Marshal())
	require.True(t, ok)
	assert.Empty(t, parsed.Ciphertext)
}

func TestEnvelope_Malformed(t *testing.T) {
	_, err := DecodeEnvelope("%%%")
	assert.ErrorIs(t, err, ErrDecryptionFailed)

	_, ok := ParseEnvelopeV1([]byte{EnvelopeVersionV1, 1, 2})
	assert.False(t, ok)

	_, ok = ParseEnvelopeLegacy(make([]byte, SaltSize+IVSize))
	assert.False(t, ok)
}
