package codec

import (
	"errors"
	"math/bits"
)

const (
	// forBlockSize is the number of values in one frame-of-reference sub-block.
	forBlockSize = 128
	// forVByteFlag marks a sub-block header that is followed by variable-byte words.
	forVByteFlag = 1 << 31
	forWidthMask = 0x3F
)

var errForHeader = errors.New("invalid frame-of-reference header")

// forVBScheme splits the input into 128-value sub-blocks. Each sub-block is
// stored in the cheaper of two forms:
//
//	FOR:   [width] [min] [128 values of (v-min) packed in width bits]
//	VByte: [forVByteFlag | words] [variable-byte words]
//
// The trailing partial sub-block is always variable-byte. The sub-blocks are
// preceded by one word holding the number of values.
//
// The integrated form replaces each value by its difference to the previous
// one, carried across sub-blocks, and sums them back on decode. Differences
// wrap modulo 2^32, so any input round-trips; ascending input gives small gaps.
type forVBScheme struct {
	integrated bool
}

func (s forVBScheme) encode(dst []uint32, values []uint32) ([]uint32, error) {
	var (
		gaps [forBlockSize]uint32
		prev uint32
	)
	toGaps := func(chunk []uint32) []uint32 {
		g := gaps[:len(chunk)]
		for i, v := range chunk {
			g[i] = v - prev
			prev = v
		}

		return g
	}

	dst = append(dst, uint32(len(values)))

	full := len(values) / forBlockSize
	for b := range full {
		chunk := values[b*forBlockSize : (b+1)*forBlockSize]
		if s.integrated {
			chunk = toGaps(chunk)
		}
		dst = appendForBlock(dst, chunk)
	}

	tail := values[full*forBlockSize:]
	if s.integrated {
		tail = toGaps(tail)
	}

	return appendVByte(dst, tail), nil
}

// forMaxPerWord is the densest case: a width-0 sub-block of 128 values in 2
// words, plus a tail of up to 127 values in its own words.
const forMaxPerWord = forBlockSize

func (s forVBScheme) decode(words []uint32, out []uint32) error {
	return decodeCounted(words, out, forMaxPerWord, s.decodeAll)
}

func (s forVBScheme) decodeAll(words []uint32, out []uint32) error {
	pos := 0
	full := len(out) / forBlockSize
	for b := range full {
		n, err := decodeForBlock(words[pos:], out[b*forBlockSize:(b+1)*forBlockSize])
		if err != nil {
			return err
		}
		pos += n
	}

	if _, err := decodeVByte(words[pos:], out[full*forBlockSize:]); err != nil {
		return err
	}

	if s.integrated {
		var prev uint32
		for i, g := range out {
			prev += g
			out[i] = prev
		}
	}

	return nil
}

// appendForBlock writes one full sub-block in whichever form is smaller.
func appendForBlock(dst []uint32, chunk []uint32) []uint32 {
	lo, hi := chunk[0], chunk[0]
	vbBytes := 0
	for _, v := range chunk {
		lo = min(lo, v)
		hi = max(hi, v)
		vbBytes += vbyteLen(v)
	}

	width := bits.Len32(hi - lo)
	forWords := 2 + (len(chunk)*width+31)/32
	vbWords := 1 + (vbBytes+3)/4

	if vbWords < forWords {
		dst = append(dst, forVByteFlag|uint32(vbWords-1))
		return appendVByte(dst, chunk)
	}

	dst = append(dst, uint32(width), lo)
	start := len(dst)
	for range forWords - 2 {
		dst = append(dst, 0)
	}
	packBits(dst[start:], chunk, lo, width)

	return dst
}

// decodeForBlock fills out from one sub-block and returns the words it occupied.
func decodeForBlock(words []uint32, out []uint32) (int, error) {
	if len(words) == 0 {
		return 0, errShortStream
	}

	header := words[0]
	if header&forVByteFlag != 0 {
		count := int(header &^ forVByteFlag)
		if count > len(words)-1 {
			return 0, errShortStream
		}
		if _, err := decodeVByte(words[1:1+count], out); err != nil {
			return 0, err
		}

		return 1 + count, nil
	}

	if header&^forWidthMask != 0 || header > 32 {
		return 0, errForHeader
	}
	width := int(header)
	packed := (len(out)*width + 31) / 32
	if len(words) < 2+packed {
		return 0, errShortStream
	}
	unpackBits(out, words[2:2+packed], words[1], width)

	return 2 + packed, nil
}

// packBits stores v-base of every value in width bits, least significant bit first.
// dst must be zeroed and large enough.
func packBits(dst []uint32, values []uint32, base uint32, width int) {
	if width == 0 {
		return
	}

	for i, v := range values {
		d := v - base
		bitPos := i * width
		word, off := bitPos/32, bitPos%32
		dst[word] |= d << off
		if off+width > 32 {
			dst[word+1] |= d >> (32 - off)
		}
	}
}

func unpackBits(out []uint32, src []uint32, base uint32, width int) {
	if width == 0 {
		for i := range out {
			out[i] = base
		}

		return
	}

	mask := uint32(1<<width - 1)
	if width == 32 {
		mask = 0xFFFFFFFF
	}

	for i := range out {
		bitPos := i * width
		word, off := bitPos/32, bitPos%32
		d := src[word] >> off
		if off+width > 32 {
			d |= src[word+1] << (32 - off)
		}
		out[i] = base + d&mask
	}
}
