package codec

import "github.com/arloliu/cpref/internal/bitio"

// gammaScheme writes each value as the Elias-gamma code of v+1.
type gammaScheme struct{}

func (gammaScheme) encode(w *bitio.Writer, values []uint32) error {
	for _, v := range values {
		w.WriteGamma(uint64(v))
	}

	return nil
}

func (gammaScheme) decode(r *bitio.Reader, out []uint32) error {
	for i := range out {
		v, err := readValue(r.ReadGamma())
		if err != nil {
			return err
		}
		out[i] = v
	}

	return nil
}

// zetaScheme writes each value as the Boldi-Vigna zeta(k) code of v+1.
// zeta(1) and gamma produce identical bit strings.
type zetaScheme struct {
	k int
}

func (s zetaScheme) encode(w *bitio.Writer, values []uint32) error {
	for _, v := range values {
		w.WriteZeta(uint64(v), s.k)
	}

	return nil
}

func (s zetaScheme) decode(r *bitio.Reader, out []uint32) error {
	for i := range out {
		v, err := readValue(r.ReadZeta(s.k))
		if err != nil {
			return err
		}
		out[i] = v
	}

	return nil
}
