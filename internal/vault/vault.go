// Package vault encrypts the per-user portal fields before they reach
// storage. Each field is sealed independently with XChaCha20-Poly1305 and a
// random nonce, so equal plaintexts never produce equal ciphertexts.
package vault

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"
)

var (
	// ErrDecrypt is returned for malformed ciphertext or a key mismatch.
	// The cause is deliberately not distinguished.
	ErrDecrypt = errors.New("vault: decryption failed")

	// ErrKeySize is returned when the key is not exactly 32 bytes.
	ErrKeySize = errors.New("vault: key must be 32 bytes")
)

// Vault seals and opens small string fields with a single process-wide key.
// Safe for concurrent use.
type Vault struct {
	aead cipher.AEAD
}

// New creates a Vault from a raw 32-byte key.
func New(key []byte) (*Vault, error) {
	if len(key) != chacha20poly1305.KeySize {
		return nil, ErrKeySize
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("vault: %w", err)
	}
	return &Vault{aead: aead}, nil
}

// NewFromBase64 creates a Vault from a standard-base64 encoded key, the
// form the key takes in configuration. The decoded value never appears in
// errors or logs.
func NewFromBase64(encoded string) (*Vault, error) {
	key, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return nil, fmt.Errorf("vault: key is not valid base64")
	}
	return New(key)
}

// Encrypt seals a plaintext field. The output is nonce || ciphertext.
func (v *Vault) Encrypt(plaintext string) ([]byte, error) {
	nonce := make([]byte, v.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("vault: nonce: %w", err)
	}
	return v.aead.Seal(nonce, nonce, []byte(plaintext), nil), nil
}

// Decrypt opens a sealed field produced by Encrypt.
func (v *Vault) Decrypt(ciphertext []byte) (string, error) {
	n := v.aead.NonceSize()
	if len(ciphertext) < n {
		return "", ErrDecrypt
	}
	plain, err := v.aead.Open(nil, ciphertext[:n], ciphertext[n:], nil)
	if err != nil {
		return "", ErrDecrypt
	}
	return string(plain), nil
}
