package compress

import (
	"fmt"
	"slices"
	"sync"

	"github.com/pierrec/lz4/v4"

	"github.com/arloliu/cpref/format"
)

// lz4.Compressor keeps a hash table that is expensive to allocate.
var lz4CompressorPool = sync.Pool{
	New: func() any {
		return &lz4.Compressor{}
	},
}

// LZ4Compressor is LZ4 block compression.
//
// Blocks carry no length of their own; decompression relies on the raw size
// stored in the snapshot header.
type LZ4Compressor struct{}

var _ Algorithm = (*LZ4Compressor)(nil)

// NewLZ4Compressor creates an LZ4 algorithm.
func NewLZ4Compressor() LZ4Compressor {
	return LZ4Compressor{}
}

func (c LZ4Compressor) Type() format.CompressionType {
	return format.CompressionLZ4
}

func (c LZ4Compressor) Compress(dst, src []byte) ([]byte, error) {
	if len(src) == 0 {
		return dst, nil
	}

	bound := lz4.CompressBlockBound(len(src))
	start := len(dst)
	dst = slices.Grow(dst, bound)

	lc, _ := lz4CompressorPool.Get().(*lz4.Compressor)
	defer lz4CompressorPool.Put(lc)

	n, err := lc.CompressBlock(src, dst[start:start+bound])
	if err != nil {
		return nil, fmt.Errorf("lz4 compression failed: %w", err)
	}

	return dst[:start+n], nil
}

func (c LZ4Compressor) Decompress(dst, src []byte, rawSize int) ([]byte, error) {
	if len(src) == 0 {
		if err := checkSize(format.CompressionLZ4, 0, rawSize); err != nil {
			return nil, err
		}

		return dst, nil
	}
	if rawSize < 0 {
		return nil, fmt.Errorf("%w: negative raw size %d", ErrSizeMismatch, rawSize)
	}

	start := len(dst)
	dst = slices.Grow(dst, rawSize)
	n, err := lz4.UncompressBlock(src, dst[start:start+rawSize])
	if err != nil {
		return nil, fmt.Errorf("lz4 decompression failed: %w", err)
	}
	if err := checkSize(format.CompressionLZ4, n, rawSize); err != nil {
		return nil, err
	}

	return dst[:start+n], nil
}
