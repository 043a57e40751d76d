package dataprep

import (
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/hkdf"
)

// infoEncryption separates the secretbox key from the column key it is derived from.
const infoEncryption = "dataprep-column-encryption"

// deriveEncryptionKey derives the secretbox key for a column key using HKDF-SHA256.
// The column key must be exactly KeySize bytes.
func deriveEncryptionKey(columnKey []byte) (*[32]byte, error) {
	if len(columnKey) != KeySize {
		return nil, ErrInvalidKeySize
	}
	var out [32]byte
	if err := hkdfDerive(columnKey, infoEncryption, out[:]); err != nil {
		return nil, err
	}
	return &out, nil
}

// hkdfDerive performs HKDF-SHA256 key derivation with the given info string.
// No salt is used (nil salt means HKDF uses a zero-filled salt of HashLen bytes).
func hkdfDerive(key []byte, info string, out []byte) error {
	reader := hkdf.New(sha256.New, key, nil, []byte(info))
	_, err := io.ReadFull(reader, out)
	return err
}

// zero overwrites b with zeros.
func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
