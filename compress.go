package dataprep

import (
	"sync"

	"github.com/klauspost/compress/zstd"
)

const (
	// Cells shorter than this are sealed as-is.
	defaultCompressionThreshold = 1024
	// A compressed cell is kept only if it is at least 10% smaller.
	minCompressionSavings = 0.10
	// Largest cell a zstd token may expand to.
	maxCellSize = 64 << 20
)

type zstdCodec struct {
	enc *zstd.Encoder
	dec *zstd.Decoder
}

var cellCodec = sync.OnceValues(func() (*zstdCodec, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, err
	}
	dec, err := zstd.NewReader(nil, zstd.WithDecoderMaxMemory(maxCellSize))
	if err != nil {
		enc.Close()
		return nil, err
	}
	return &zstdCodec{enc: enc, dec: dec}, nil
})

// packCell returns the bytes to seal for a cell and the token flag naming
// their encoding.
func (c *Cipher) packCell(cell []byte) ([]byte, byte) {
	if c.compressionDisabled || len(cell) < c.compressionThreshold {
		return cell, flagNoCompression
	}
	codec, err := cellCodec()
	if err != nil {
		return cell, flagNoCompression
	}
	packed := codec.enc.EncodeAll(cell, nil)
	if float64(len(cell)-len(packed)) < minCompressionSavings*float64(len(cell)) {
		return cell, flagNoCompression
	}
	return packed, flagZstd
}

// unpackCell reverses packCell for an opened token body.
func unpackCell(body []byte, flag byte) ([]byte, error) {
	switch flag {
	case flagNoCompression:
		return body, nil
	case flagZstd:
	default:
		return nil, ErrInvalidFormat
	}
	codec, err := cellCodec()
	if err != nil {
		return nil, err
	}
	cell, err := codec.dec.DecodeAll(body, nil)
	if err != nil || len(cell) > maxCellSize {
		return nil, ErrDecompressionFailed
	}
	return cell, nil
}
