package compress

import (
	"errors"
	"fmt"

	"github.com/arloliu/cpref/format"
)

// ErrSizeMismatch is returned when a payload does not decompress to the announced size.
var ErrSizeMismatch = errors.New("compress: decompressed size mismatch")

// Compressor compresses a whole snapshot payload.
type Compressor interface {
	// Type returns the algorithm identifier written to the snapshot header.
	Type() format.CompressionType

	// Compress appends the compressed form of src to dst and returns the extended slice.
	//
	// src is not modified and must not overlap dst.
	Compress(dst, src []byte) ([]byte, error)
}

// Decompressor reverses a Compressor of the same type.
type Decompressor interface {
	// Decompress appends the decompressed form of src to dst.
	//
	// rawSize is the payload size recorded at compression time. Implementations
	// use it to size their output and fail with ErrSizeMismatch when the data
	// decodes to a different length.
	Decompress(dst, src []byte, rawSize int) ([]byte, error)
}

// Algorithm combines both directions of one compression algorithm.
//
// All implementations are stateless values and safe for concurrent use.
type Algorithm interface {
	Compressor
	Decompressor
}

// New returns the algorithm for compressionType.
//
// Example:
//
//	alg, err := compress.New(format.CompressionZstd)
//	if err != nil {
//	    return err
//	}
//	packed, err := alg.Compress(nil, payload)
func New(compressionType format.CompressionType) (Algorithm, error) {
	switch compressionType {
	case format.CompressionNone:
		return NewNoOpCompressor(), nil
	case format.CompressionZstd:
		return NewZstdCompressor(), nil
	case format.CompressionS2:
		return NewS2Compressor(), nil
	case format.CompressionLZ4:
		return NewLZ4Compressor(), nil
	default:
		return nil, fmt.Errorf("compress: invalid compression type %s", compressionType)
	}
}

func checkSize(alg format.CompressionType, got, want int) error {
	if got != want {
		return fmt.Errorf("%w: %s produced %d bytes, expected %d", ErrSizeMismatch, alg, got, want)
	}

	return nil
}
