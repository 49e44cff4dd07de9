package codec

import (
	"math"
	"math/bits"

	"github.com/arloliu/cpref/internal/bitio"
)

// riceHeaderBits is the width of the log2(b) header of a Rice block.
const riceHeaderBits = 32

// riceScheme is Golomb-Rice coding with a per-block parameter derived from the mean.
//
// Layout: [32-bit log2b] then for each value unary(v >> log2b) followed by the
// low log2b bits of v.
type riceScheme struct{}

// riceParameter returns log2 of the Rice divisor for values.
//
// The divisor is round(0.69 * mean), at least 1, rounded down to a power of two.
func riceParameter(values []uint32) int {
	if len(values) == 0 {
		return 0
	}

	var sum uint64
	for _, v := range values {
		sum += uint64(v)
	}
	mean := float64(sum) / float64(len(values))

	b := uint64(math.Round(0.69 * mean))
	if b < 1 {
		b = 1
	}

	return bits.Len64(b) - 1
}

func (riceScheme) encode(w *bitio.Writer, values []uint32) error {
	log2b := riceParameter(values)
	w.WriteBits(uint64(log2b), riceHeaderBits)

	for _, v := range values {
		w.WriteUnary(uint64(v >> log2b))
		w.WriteBits(uint64(v), log2b)
	}

	return nil
}

func (riceScheme) decode(r *bitio.Reader, out []uint32) error {
	header, err := r.ReadBits(riceHeaderBits)
	if err != nil {
		return err
	}
	if header > 31 {
		return bitio.ErrInvalidCode
	}
	log2b := int(header)

	for i := range out {
		q, err := r.ReadUnary()
		if err != nil {
			return err
		}
		if q > math.MaxUint32>>log2b {
			return bitio.ErrInvalidCode
		}

		low, err := r.ReadBits(log2b)
		if err != nil {
			return err
		}
		out[i] = uint32(q<<log2b | low)
	}

	return nil
}
