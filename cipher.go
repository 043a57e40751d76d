package dataprep

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/nacl/secretbox"
)

// KeySize is the length in bytes of a column key.
const KeySize = 32

// tokenEncoding renders raw tokens as cell text.
var tokenEncoding = base64.RawURLEncoding

// GenerateKey returns a fresh random column key.
func GenerateKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	return key, nil
}

// Cipher turns plaintext cells into opaque tokens and back. It holds no key
// material: every call takes the column key it should use.
// It is safe for concurrent use.
type Cipher struct {
	compressionThreshold int
	compressionDisabled  bool
}

// NewCipher creates a Cipher. Only the compression options apply.
func NewCipher(opts ...Option) *Cipher {
	cfg := newConfig(opts)
	return &Cipher{
		compressionThreshold: cfg.compressionThreshold,
		compressionDisabled:  cfg.compressionDisabled,
	}
}

// Seal encrypts plaintext under key. A random nonce is drawn per call, so
// sealing the same plaintext twice gives different tokens.
//
// The raw token format is:
// [version:1][flag:1][nonce:24][secretbox(plaintext)]
func (c *Cipher) Seal(key, plaintext []byte) ([]byte, error) {
	ek, err := deriveEncryptionKey(key)
	if err != nil {
		return nil, err
	}
	defer zero(ek[:])

	toEncrypt, flag := c.packCell(plaintext)
	nonce := generateNonce()
	sealed := secretbox.Seal(nil, toEncrypt, &nonce, ek)
	return formatToken(flag, nonce, sealed), nil
}

// Open decrypts a raw token sealed under key. Tokens sealed under another key
// or altered in any way fail with ErrDecryptionFailed.
func (c *Cipher) Open(key, token []byte) ([]byte, error) {
	ek, err := deriveEncryptionKey(key)
	if err != nil {
		return nil, err
	}
	defer zero(ek[:])

	flag, nonce, sealed, err := parseToken(token)
	if err != nil {
		return nil, errors.Join(ErrDecryptionFailed, err)
	}
	decrypted, ok := secretbox.Open(nil, sealed, &nonce, ek)
	if !ok {
		return nil, ErrDecryptionFailed
	}
	plaintext, err := unpackCell(decrypted, flag)
	if err != nil {
		return nil, errors.Join(ErrDecryptionFailed, err)
	}
	return plaintext, nil
}

// SealString encrypts s and returns the token as unpadded base64url text.
func (c *Cipher) SealString(key []byte, s string) (string, error) {
	token, err := c.Seal(key, []byte(s))
	if err != nil {
		return "", err
	}
	return tokenEncoding.EncodeToString(token), nil
}

// OpenString decrypts a token produced by SealString.
func (c *Cipher) OpenString(key []byte, token string) (string, error) {
	raw, err := tokenEncoding.DecodeString(token)
	if err != nil {
		return "", errors.Join(ErrDecryptionFailed, ErrInvalidFormat)
	}
	plaintext, err := c.Open(key, raw)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}

// generateNonce generates a cryptographically secure random 24-byte nonce.
// Panics if the system's random source fails (unrecoverable).
func generateNonce() [24]byte {
	var nonce [24]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		panic("crypto/rand failed: " + err.Error())
	}
	return nonce
}
