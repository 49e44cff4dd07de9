package codec

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/arloliu/cpref/internal/pool"
)

var (
	// errShortStream is reported by word schemes that run out of input words.
	errShortStream = errors.New("word stream too short")
	// errCountExceeded is reported when more values are requested than a block holds.
	errCountExceeded = errors.New("more values requested than encoded")
	errBadCount      = errors.New("value count does not fit the block")
)

// wordScheme is one byte-aligned integer code working on 32-bit words.
type wordScheme interface {
	// encode appends the encoding of values to dst and returns the extended slice.
	encode(dst []uint32, values []uint32) ([]uint32, error)
	// decode fills out from words.
	decode(words []uint32, out []uint32) error
}

// wordCodec adapts a wordScheme to the Codec interface.
//
// Block layout is one little-endian word holding the word count followed by
// that many little-endian words.
type wordCodec struct {
	desc       Descriptor
	scheme     wordScheme
	integrated bool
	stats      Stats
}

var _ Codec = (*wordCodec)(nil)

func newWordCodec(desc Descriptor, scheme wordScheme, integrated bool) *wordCodec {
	return &wordCodec{
		desc:       desc,
		scheme:     scheme,
		integrated: integrated,
	}
}

func (c *wordCodec) Compress(values []uint32, offset, length int) (Block, error) {
	if err := checkRange(len(values), offset, length); err != nil {
		return nil, err
	}

	scratch, cleanup := pool.GetUint32Slice(length + length/2 + 8)
	defer cleanup()

	words, err := c.scheme.encode(scratch[:0], values[offset:offset+length])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.desc, err)
	}

	block := make(Block, 0, 4*(len(words)+1))
	block = binary.LittleEndian.AppendUint32(block, uint32(len(words)))
	for _, w := range words {
		block = binary.LittleEndian.AppendUint32(block, w)
	}

	c.stats.record(length, len(block))

	return block, nil
}

func (c *wordCodec) Decompress(block Block, out []uint32, outOffset, length int) (int, error) {
	if err := checkRange(len(out), outOffset, length); err != nil {
		return 0, err
	}

	if len(block) < 4 {
		return 0, fmt.Errorf("%s: %w: missing word count", c.desc, ErrCorrupted)
	}
	count := uint64(binary.LittleEndian.Uint32(block))
	consumed := 4 * (count + 1)
	if consumed > uint64(len(block)) {
		return 0, fmt.Errorf("%s: %w: %d words announced, %d bytes present", c.desc, ErrCorrupted, count, len(block))
	}

	words, cleanup := pool.GetUint32Slice(int(count))
	defer cleanup()
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(block[4*(i+1):])
	}

	if err := c.scheme.decode(words, out[outOffset:outOffset+length]); err != nil {
		return 0, fmt.Errorf("%s: %w: %w", c.desc, ErrCorrupted, err)
	}

	return int(consumed), nil
}

func (c *wordCodec) SelfIntegrating() bool {
	return c.integrated
}

func (c *wordCodec) Stats() *Stats {
	return &c.stats
}

func (c *wordCodec) Descriptor() Descriptor {
	return c.desc
}

func (c *wordCodec) String() string {
	return c.desc.String()
}

// decodeCounted serves schemes whose first word is the number of encoded values
// and whose layout depends on it. decodeAll must fill exactly len(dst) values
// from the remaining words. When out is shorter than the encoded count the
// whole sequence is decoded into scratch and its prefix copied to out.
//
// maxPerWord bounds the count against the block size, so a corrupted count
// cannot trigger a large allocation.
func decodeCounted(words []uint32, out []uint32, maxPerWord int, decodeAll func(words, dst []uint32) error) error {
	if len(words) == 0 {
		return errShortStream
	}

	count := uint64(words[0])
	body := words[1:]
	if count > uint64(maxPerWord)*uint64(len(body)) {
		return fmt.Errorf("%w: %d values in %d words", errBadCount, count, len(body))
	}
	if uint64(len(out)) > count {
		return fmt.Errorf("%w: %d requested, %d encoded", errCountExceeded, len(out), count)
	}

	if int(count) == len(out) {
		return decodeAll(body, out)
	}

	scratch, cleanup := pool.GetUint32Slice(int(count))
	defer cleanup()
	if err := decodeAll(body, scratch); err != nil {
		return err
	}
	copy(out, scratch)

	return nil
}

// appendBytesAsWords packs b into little-endian words, zero-padding the last one.
func appendBytesAsWords(dst []uint32, b []byte) []uint32 {
	full := len(b) / 4
	for i := range full {
		dst = append(dst, binary.LittleEndian.Uint32(b[4*i:]))
	}

	if rest := b[4*full:]; len(rest) > 0 {
		var w uint32
		for i, x := range rest {
			w |= uint32(x) << (8 * i)
		}
		dst = append(dst, w)
	}

	return dst
}

// wordByte returns the i-th byte of a little-endian word stream.
func wordByte(words []uint32, i int) byte {
	return byte(words[i>>2] >> (8 * (i & 3)))
}
