package vault

import (
	"bytes"
	"crypto/rand"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestVault(t *testing.T) *Vault {
	t.Helper()
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)
	v, err := New(key)
	require.NoError(t, err)
	return v
}

func TestVault_RoundTrip(t *testing.T) {
	v := newTestVault(t)

	for _, plain := range []string{"NSR/2214/13", "Main", "", "Dagmawi Lencho", "2024-05-18"} {
		sealed, err := v.Encrypt(plain)
		require.NoError(t, err)

		got, err := v.Decrypt(sealed)
		require.NoError(t, err)
		assert.Equal(t, plain, got)
	}
}

func TestVault_NonDeterministic(t *testing.T) {
	v := newTestVault(t)

	a, err := v.Encrypt("same input")
	require.NoError(t, err)
	b, err := v.Encrypt("same input")
	require.NoError(t, err)
	assert.False(t, bytes.Equal(a, b))
}

func TestVault_WrongKey(t *testing.T) {
	v1 := newTestVault(t)
	v2 := newTestVault(t)

	sealed, err := v1.Encrypt("secret")
	require.NoError(t, err)

	_, err = v2.Decrypt(sealed)
	assert.ErrorIs(t, err, ErrDecrypt)
}

func TestVault_MalformedCiphertext(t *testing.T) {
	v := newTestVault(t)

	_, err := v.Decrypt(nil)
	assert.ErrorIs(t, err, ErrDecrypt)

	_, err = v.Decrypt([]byte("short"))
	assert.ErrorIs(t, err, ErrDecrypt)

	sealed, err := v.Encrypt("field")
	require.NoError(t, err)
	sealed[len(sealed)-1] ^= 0xFF
	_, err = v.Decrypt(sealed)
	assert.ErrorIs(t, err, ErrDecrypt)
}

func TestNew_KeySize(t *testing.T) {
	_, err := New(make([]byte, 16))
	assert.ErrorIs(t, err, ErrKeySize)
}

func TestNewFromBase64(t *testing.T) {
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)

	v, err := NewFromBase64(base64.StdEncoding.EncodeToString(key))
	require.NoError(t, err)
	require.NotNil(t, v)

	_, err = NewFromBase64("not base64!!!")
	assert.Error(t, err)
}
