//go:build cgozstd

package compress

import (
	"fmt"

	"github.com/valyala/gozstd"

	"github.com/arloliu/cpref/format"
)

const gozstdLevel = 3

func (c ZstdCompressor) Compress(dst, src []byte) ([]byte, error) {
	return gozstd.CompressLevel(dst, src, gozstdLevel), nil
}

func (c ZstdCompressor) Decompress(dst, src []byte, rawSize int) ([]byte, error) {
	if len(src) == 0 {
		if err := checkSize(format.CompressionZstd, 0, rawSize); err != nil {
			return nil, err
		}

		return dst, nil
	}

	start := len(dst)
	out, err := gozstd.Decompress(dst, src)
	if err != nil {
		return nil, fmt.Errorf("zstd decompression failed: %w", err)
	}
	if err := checkSize(format.CompressionZstd, len(out)-start, rawSize); err != nil {
		return nil, err
	}

	return out, nil
}
