package codec

import (
	"fmt"
	"math/bits"

	"github.com/arloliu/cpref/internal/bitio"
)

const eliasFanoHeaderBits = 32

// eliasFanoScheme encodes a non-decreasing sequence with the Elias-Fano layout
//
//	[32-bit l] then per value unary(high - prevHigh) and the low l bits
//
// where high = x >> l and l = floor(log2(last/len)), at least 1.
//
// The integrated form encodes its input as given and requires it to be
// non-decreasing. The plain form receives gaps, sums them into a running
// total, encodes the totals, and hands back gaps on decode.
type eliasFanoScheme struct {
	integrated bool
}

// eliasFanoLowBits picks the number of low bits for a sequence of n values ending at last.
func eliasFanoLowBits(last uint64, n int) int {
	if n == 0 {
		return 1
	}

	q := last / uint64(n)
	if q < 2 {
		return 1
	}

	return bits.Len64(q) - 1
}

func (s eliasFanoScheme) encode(w *bitio.Writer, values []uint32) error {
	var last uint64
	if s.integrated {
		if len(values) > 0 {
			last = uint64(values[len(values)-1])
		}
	} else {
		for _, v := range values {
			last += uint64(v)
		}
	}

	l := eliasFanoLowBits(last, len(values))
	w.WriteBits(uint64(l), eliasFanoHeaderBits)

	var prevHigh, acc uint64
	for i, v := range values {
		x := uint64(v)
		if !s.integrated {
			acc += x
			x = acc
		}

		high := x >> l
		if high < prevHigh {
			return fmt.Errorf("%w: value %d at %d", ErrUnsorted, v, i)
		}
		w.WriteUnary(high - prevHigh)
		w.WriteBits(x, l)
		prevHigh = high
	}

	return nil
}

func (s eliasFanoScheme) decode(r *bitio.Reader, out []uint32) error {
	header, err := r.ReadBits(eliasFanoHeaderBits)
	if err != nil {
		return err
	}
	if header < 1 || header > 63 {
		return bitio.ErrInvalidCode
	}
	l := int(header)

	var high, prev uint64
	for i := range out {
		gap, err := r.ReadUnary()
		if err != nil {
			return err
		}
		high += gap

		low, err := r.ReadBits(l)
		if err != nil {
			return err
		}
		if high > (1<<(64-l))-1 {
			return bitio.ErrInvalidCode
		}

		x := high<<l | low
		if s.integrated {
			if x > 0xFFFFFFFF {
				return bitio.ErrInvalidCode
			}
			out[i] = uint32(x)

			continue
		}

		if x < prev || x-prev > 0xFFFFFFFF {
			return bitio.ErrInvalidCode
		}
		out[i] = uint32(x - prev)
		prev = x
	}

	return nil
}
