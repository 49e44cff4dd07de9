package compress

import "github.com/arloliu/cpref/format"

// NoOpCompressor copies data through unchanged.
type NoOpCompressor struct{}

var _ Algorithm = (*NoOpCompressor)(nil)

// NewNoOpCompressor creates a pass-through algorithm.
func NewNoOpCompressor() NoOpCompressor {
	return NoOpCompressor{}
}

func (c NoOpCompressor) Type() format.CompressionType {
	return format.CompressionNone
}

func (c NoOpCompressor) Compress(dst, src []byte) ([]byte, error) {
	return append(dst, src...), nil
}

func (c NoOpCompressor) Decompress(dst, src []byte, rawSize int) ([]byte, error) {
	if err := checkSize(format.CompressionNone, len(src), rawSize); err != nil {
		return nil, err
	}

	return append(dst, src...), nil
}
