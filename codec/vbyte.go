package codec

import "errors"

var errVByteTooLong = errors.New("variable-byte value longer than 5 bytes")

// vbyteScheme writes each value in little-endian base-128 groups with the high
// bit set on every byte but the last, then packs the byte stream into words.
type vbyteScheme struct{}

func (vbyteScheme) encode(dst []uint32, values []uint32) ([]uint32, error) {
	return appendVByte(dst, values), nil
}

func (vbyteScheme) decode(words []uint32, out []uint32) error {
	_, err := decodeVByte(words, out)
	return err
}

// vbyteLen returns the encoded size of v in bytes.
func vbyteLen(v uint32) int {
	switch {
	case v < 1<<7:
		return 1
	case v < 1<<14:
		return 2
	case v < 1<<21:
		return 3
	case v < 1<<28:
		return 4
	default:
		return 5
	}
}

// appendVByte encodes values as a word-padded variable-byte stream.
func appendVByte(dst []uint32, values []uint32) []uint32 {
	var (
		acc   uint32
		shift int
	)
	emit := func(b byte) {
		acc |= uint32(b) << shift
		shift += 8
		if shift == 32 {
			dst = append(dst, acc)
			acc, shift = 0, 0
		}
	}

	for _, v := range values {
		for v >= 0x80 {
			emit(byte(v) | 0x80)
			v >>= 7
		}
		emit(byte(v))
	}
	if shift > 0 {
		dst = append(dst, acc)
	}

	return dst
}

// decodeVByte fills out from a variable-byte stream and returns the number of words used.
func decodeVByte(words []uint32, out []uint32) (int, error) {
	size := 4 * len(words)
	pos := 0
	for i := range out {
		var v uint32
		for shift := 0; ; shift += 7 {
			if shift > 28 {
				return 0, errVByteTooLong
			}
			if pos >= size {
				return 0, errShortStream
			}

			b := wordByte(words, pos)
			pos++
			v |= uint32(b&0x7F) << shift
			if b&0x80 == 0 {
				break
			}
		}
		out[i] = v
	}

	return (pos + 3) / 4, nil
}
