package codec

import (
	"fmt"

	"github.com/arloliu/cpref/internal/bitio"
	"github.com/arloliu/cpref/internal/pool"
)

// bitScheme is one bit-level entropy code. encode writes a whole block body for
// values; decode fills out with exactly len(out) values.
type bitScheme interface {
	encode(w *bitio.Writer, values []uint32) error
	decode(r *bitio.Reader, out []uint32) error
}

// bitCodec adapts a bitScheme to the Codec interface.
//
// Encoding goes through a pooled scratch buffer sized for the worst case of a
// row; the returned block is an exact-size copy of the used bytes.
type bitCodec struct {
	desc       Descriptor
	scheme     bitScheme
	integrated bool
	stats      Stats
}

var _ Codec = (*bitCodec)(nil)

func newBitCodec(desc Descriptor, scheme bitScheme, integrated bool) *bitCodec {
	return &bitCodec{
		desc:       desc,
		scheme:     scheme,
		integrated: integrated,
	}
}

func (c *bitCodec) Compress(values []uint32, offset, length int) (Block, error) {
	if err := checkRange(len(values), offset, length); err != nil {
		return nil, err
	}

	bb := pool.GetBlockBuffer()
	defer pool.PutBlockBuffer(bb)

	bb.Grow(BytesPerValue*length + 1024)
	w := bitio.NewWriter(bb.B[:0])
	if err := c.scheme.encode(w, values[offset:offset+length]); err != nil {
		return nil, fmt.Errorf("%s: %w", c.desc, err)
	}

	encoded := w.Flush()
	block := make(Block, len(encoded))
	copy(block, encoded)
	// keep the possibly regrown buffer for the next caller
	bb.B = encoded[:0]

	c.stats.record(length, len(block))

	return block, nil
}

func (c *bitCodec) Decompress(block Block, out []uint32, outOffset, length int) (int, error) {
	if err := checkRange(len(out), outOffset, length); err != nil {
		return 0, err
	}

	r := bitio.NewReader(block)
	if err := c.scheme.decode(r, out[outOffset:outOffset+length]); err != nil {
		return 0, fmt.Errorf("%s: %w: %w", c.desc, ErrCorrupted, err)
	}

	return r.BytesConsumed(), nil
}

func (c *bitCodec) SelfIntegrating() bool {
	return c.integrated
}

func (c *bitCodec) Stats() *Stats {
	return &c.stats
}

func (c *bitCodec) Descriptor() Descriptor {
	return c.desc
}

// String is used in error messages.
func (c *bitCodec) String() string {
	return c.desc.String()
}

// readValue narrows a decoded code to uint32.
func readValue(v uint64, err error) (uint32, error) {
	if err != nil {
		return 0, err
	}
	if v > 0xFFFFFFFF {
		return 0, bitio.ErrInvalidCode
	}

	return uint32(v), nil
}
