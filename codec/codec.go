package codec

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/arloliu/cpref/format"
)

var (
	// ErrInvalidRange is returned when offset/length do not describe a valid window of a slice.
	ErrInvalidRange = errors.New("codec: invalid offset or length")
	// ErrCorrupted is returned when a block cannot be decoded.
	ErrCorrupted = errors.New("codec: corrupted block")
	// ErrValueOverflow is returned by fixed-width coding when a value needs more bits than configured.
	ErrValueOverflow = errors.New("codec: value does not fit the configured bit width")
	// ErrUnsorted is returned by codecs that require non-decreasing input and got something else.
	ErrUnsorted = errors.New("codec: input is not sorted")
	// ErrUnknownCodec is returned by the registry for an unsupported codec type.
	ErrUnknownCodec = errors.New("codec: unknown codec type")
)

// BytesPerValue is the width assumed for an uncompressed integer when accounting bytes in.
const BytesPerValue = 4

// Block is an opaque compressed representation of one integer sequence.
//
// A block does not always record how many values it holds; callers keep the
// length next to the block and pass it back to Decompress.
type Block []byte

// Codec compresses sequences of non-negative integers.
//
// Implementations are safe for concurrent use. The only shared mutable state is
// the cumulative Stats.
type Codec interface {
	// Compress encodes values[offset:offset+length] into a new block.
	//
	// Codecs that are not self-integrating expect the caller to have applied
	// Delta to ascending input first; self-integrating codecs take the ascending
	// sequence as-is.
	Compress(values []uint32, offset, length int) (Block, error)

	// Decompress decodes exactly length values from block into out[outOffset:].
	// It returns the number of bytes of the block that were consumed.
	Decompress(block Block, out []uint32, outOffset, length int) (int, error)

	// SelfIntegrating reports whether the codec encodes gaps internally, so
	// callers must neither apply Delta before Compress nor Undelta after Decompress.
	SelfIntegrating() bool

	// Stats returns the cumulative byte counters of this codec instance.
	Stats() *Stats

	// Descriptor identifies the codec and its construction parameter.
	Descriptor() Descriptor
}

// Descriptor identifies a codec kind together with its single numeric parameter.
//
// Param holds the bit width of CodecFixed and k of CodecZeta; it is zero for the others.
type Descriptor struct {
	Type  format.CodecType
	Param int
}

func (d Descriptor) String() string {
	switch d.Type {
	case format.CodecFixed, format.CodecZeta:
		return fmt.Sprintf("%s(%d)", d.Type, d.Param)
	default:
		return d.Type.String()
	}
}

// Stats accumulates the bytes offered to and produced by a codec.
//
// Bytes in are counted at BytesPerValue bytes per integer regardless of the value,
// so ratios stay comparable across codecs.
type Stats struct {
	blocks   atomic.Int64
	bytesIn  atomic.Int64
	bytesOut atomic.Int64
}

func (s *Stats) record(values, blockSize int) {
	s.blocks.Add(1)
	s.bytesIn.Add(int64(values) * BytesPerValue)
	s.bytesOut.Add(int64(blockSize))
}

// Blocks returns the number of blocks compressed so far.
func (s *Stats) Blocks() int64 {
	return s.blocks.Load()
}

// BytesIn returns the cumulative uncompressed size.
func (s *Stats) BytesIn() int64 {
	return s.bytesIn.Load()
}

// BytesOut returns the cumulative compressed size.
func (s *Stats) BytesOut() int64 {
	return s.bytesOut.Load()
}

// Snapshot returns a point-in-time copy of the counters.
func (s *Stats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		Blocks:   s.blocks.Load(),
		BytesIn:  s.bytesIn.Load(),
		BytesOut: s.bytesOut.Load(),
	}
}

// StatsSnapshot is an immutable copy of Stats.
type StatsSnapshot struct {
	Blocks   int64
	BytesIn  int64
	BytesOut int64
}

// CompressionRatio returns compressed size / original size, or 0 when nothing was compressed.
func (s StatsSnapshot) CompressionRatio() float64 {
	if s.BytesIn == 0 {
		return 0
	}

	return float64(s.BytesOut) / float64(s.BytesIn)
}

// SpaceSavings returns the saved space as a percentage of the original size.
func (s StatsSnapshot) SpaceSavings() float64 {
	if s.BytesIn == 0 {
		return 0
	}

	return (1.0 - s.CompressionRatio()) * 100.0
}

// BitsPerValue returns the average number of compressed bits per integer.
func (s StatsSnapshot) BitsPerValue() float64 {
	values := s.BytesIn / BytesPerValue
	if values == 0 {
		return 0
	}

	return float64(s.BytesOut*8) / float64(values)
}

func checkRange(size, offset, length int) error {
	if offset < 0 || length < 0 || offset > size-length {
		return fmt.Errorf("%w: offset=%d length=%d size=%d", ErrInvalidRange, offset, length, size)
	}

	return nil
}
