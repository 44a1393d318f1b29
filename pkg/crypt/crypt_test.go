package crypt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONRoundTrip(t *testing.T) {
	in := map[string]string{"cart": `[{"product_id":3,"quantity":2}]`}

	enc, err := EncryptJSON(in)
	require.NoError(t, err)
	assert.NotContains(t, enc, "product_id")

	var out map[string]string
	require.NoError(t, DecryptJSON(enc, &out))
	assert.Equal(t, in, out)
}

func TestDecryptRejectsTampering(t *testing.T) {
	enc, err := EncryptBytes([]byte("brake chamber"))
	require.NoError(t, err)

	flipped := []byte(enc)
	flipped[len(flipped)/2] ^= 0x01

	_, err = DecryptBytes(string(flipped))
	assert.ErrorIs(t, err, ErrDecrypt)

	_, err = DecryptBytes("not base64 at all!")
	assert.ErrorIs(t, err, ErrDecrypt)
}

func TestNoncesDiffer(t *testing.T) {
	a, err := EncryptBytes([]byte("same"))
	require.NoError(t, err)
	b, err := EncryptBytes([]byte("same"))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
