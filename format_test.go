package dataprep

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/nacl/secretbox"
)

func TestFormatToken_RoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		flag   byte
		nonce  [24]byte
		sealed []byte
	}{
		{
			name:   "basic",
			flag:   flagNoCompression,
			nonce:  [24]byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20, 21, 22, 23, 24},
			sealed: bytes.Repeat([]byte{0xab}, secretbox.Overhead+5),
		},
		{
			name:   "zstd flag",
			flag:   flagZstd,
			nonce:  [24]byte{},
			sealed: make([]byte, secretbox.Overhead),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := formatToken(tt.flag, tt.nonce, tt.sealed)
			require.Equal(t, tokenVersion, raw[0])
			require.Len(t, raw, headerSize+len(tt.sealed))

			flag, nonce, sealed, err := parseToken(raw)
			require.NoError(t, err)
			require.Equal(t, tt.flag, flag)
			require.Equal(t, tt.nonce, nonce)
			require.True(t, bytes.Equal(tt.sealed, sealed))
		})
	}
}

func TestParseToken_MalformedInput(t *testing.T) {
	valid := formatToken(flagNoCompression, [24]byte{}, make([]byte, secretbox.Overhead))
	wrongVersion := append([]byte{}, valid...)
	wrongVersion[0] = 0x7f

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", []byte{}},
		{"header only", valid[:headerSize]},
		{"one byte short", valid[:len(valid)-1]},
		{"wrong version", wrongVersion},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, _, err := parseToken(tt.data)
			require.ErrorIs(t, err, ErrInvalidFormat)
		})
	}
}
