package compress

import "github.com/arloliu/cpref/format"

// ZstdCompressor is Zstandard compression.
//
// The pure-Go implementation from klauspost/compress is used by default.
// Building with the cgozstd tag switches to the cgo binding of the reference
// library (valyala/gozstd); both produce standard zstd frames and can read each
// other's output.
type ZstdCompressor struct{}

var _ Algorithm = (*ZstdCompressor)(nil)

// NewZstdCompressor creates a Zstandard algorithm.
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}

func (c ZstdCompressor) Type() format.CompressionType {
	return format.CompressionZstd
}
