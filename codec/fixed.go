package codec

import (
	"fmt"

	"github.com/arloliu/cpref/internal/bitio"
)

// fixedScheme writes every value in exactly width bits, without a header.
type fixedScheme struct {
	width int
}

func (s fixedScheme) encode(w *bitio.Writer, values []uint32) error {
	for i, v := range values {
		if s.width < 32 && v>>s.width != 0 {
			return fmt.Errorf("%w: value %d at %d needs more than %d bits", ErrValueOverflow, v, i, s.width)
		}
		w.WriteBits(uint64(v), s.width)
	}

	return nil
}

func (s fixedScheme) decode(r *bitio.Reader, out []uint32) error {
	for i := range out {
		v, err := r.ReadBits(s.width)
		if err != nil {
			return err
		}
		out[i] = uint32(v)
	}

	return nil
}
