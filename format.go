package dataprep

import "golang.org/x/crypto/nacl/secretbox"

// Token format (before base64url encoding):
// [version:1][flag:1][nonce:24][secretbox(plaintext)]
//
// Flag byte values:
//   0x00 = no compression
//   0x01 = zstd compressed

const (
	tokenVersion byte = 0x01

	flagNoCompression byte = 0x00
	flagZstd          byte = 0x01

	nonceSize = 24

	// headerSize is the number of bytes before the secretbox payload.
	headerSize = 1 + 1 + nonceSize
)

// formatToken assembles the raw token.
func formatToken(flag byte, nonce [24]byte, sealed []byte) []byte {
	result := make([]byte, 0, headerSize+len(sealed))
	result = append(result, tokenVersion)
	result = append(result, flag)
	result = append(result, nonce[:]...)
	result = append(result, sealed...)
	return result
}

// parseToken splits a raw token into flag, nonce and secretbox payload.
func parseToken(data []byte) (flag byte, nonce [24]byte, sealed []byte, err error) {
	// A sealed empty plaintext is exactly secretbox.Overhead bytes.
	if len(data) < headerSize+secretbox.Overhead {
		err = ErrInvalidFormat
		return
	}
	if data[0] != tokenVersion {
		err = ErrInvalidFormat
		return
	}
	flag = data[1]
	copy(nonce[:], data[2:headerSize])
	sealed = data[headerSize:]
	return
}
