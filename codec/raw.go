package codec

import (
	"encoding/binary"
	"fmt"

	"github.com/arloliu/cpref/format"
)

// rawCodec stores every value as 4 little-endian bytes.
//
// It keeps ids verbatim, so the caller hands it the ascending sequence unchanged.
type rawCodec struct {
	stats Stats
}

var _ Codec = (*rawCodec)(nil)

func newRaw() *rawCodec {
	return &rawCodec{}
}

func (c *rawCodec) Compress(values []uint32, offset, length int) (Block, error) {
	if err := checkRange(len(values), offset, length); err != nil {
		return nil, err
	}

	block := make(Block, 0, length*BytesPerValue)
	for _, v := range values[offset : offset+length] {
		block = binary.LittleEndian.AppendUint32(block, v)
	}
	c.stats.record(length, len(block))

	return block, nil
}

func (c *rawCodec) Decompress(block Block, out []uint32, outOffset, length int) (int, error) {
	if err := checkRange(len(out), outOffset, length); err != nil {
		return 0, err
	}

	need := length * BytesPerValue
	if len(block) < need {
		return 0, fmt.Errorf("%s: %w: need %d bytes, have %d", format.CodecRaw, ErrCorrupted, need, len(block))
	}

	dst := out[outOffset : outOffset+length]
	for i := range dst {
		dst[i] = binary.LittleEndian.Uint32(block[i*BytesPerValue:])
	}

	return need, nil
}

func (c *rawCodec) SelfIntegrating() bool {
	return true
}

func (c *rawCodec) Stats() *Stats {
	return &c.stats
}

func (c *rawCodec) Descriptor() Descriptor {
	return Descriptor{Type: format.CodecRaw}
}
