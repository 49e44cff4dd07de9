package compress

import (
	"errors"
	"fmt"
	"slices"

	"github.com/klauspost/compress/s2"

	"github.com/arloliu/cpref/format"
)

// S2Compressor is S2 block compression, a faster Snappy extension.
type S2Compressor struct{}

var _ Algorithm = (*S2Compressor)(nil)

// NewS2Compressor creates an S2 algorithm.
func NewS2Compressor() S2Compressor {
	return S2Compressor{}
}

func (c S2Compressor) Type() format.CompressionType {
	return format.CompressionS2
}

func (c S2Compressor) Compress(dst, src []byte) ([]byte, error) {
	if len(src) == 0 {
		return dst, nil
	}

	bound := s2.MaxEncodedLen(len(src))
	if bound < 0 {
		return nil, errors.New("s2: payload too large")
	}

	start := len(dst)
	dst = slices.Grow(dst, bound)
	encoded := s2.Encode(dst[start:start+bound], src)

	return dst[:start+len(encoded)], nil
}

func (c S2Compressor) Decompress(dst, src []byte, rawSize int) ([]byte, error) {
	if len(src) == 0 {
		if err := checkSize(format.CompressionS2, 0, rawSize); err != nil {
			return nil, err
		}

		return dst, nil
	}

	size, err := s2.DecodedLen(src)
	if err != nil {
		return nil, fmt.Errorf("s2 decompression failed: %w", err)
	}
	if err := checkSize(format.CompressionS2, size, rawSize); err != nil {
		return nil, err
	}

	start := len(dst)
	dst = slices.Grow(dst, size)
	decoded, err := s2.Decode(dst[start:start+size], src)
	if err != nil {
		return nil, fmt.Errorf("s2 decompression failed: %w", err)
	}

	return dst[:start+len(decoded)], nil
}
