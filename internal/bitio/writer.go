package bitio

import (
	"encoding/binary"
	"math/bits"
)

// Writer appends bits to a byte slice.
//
// The zero value is not usable; create writers with NewWriter.
type Writer struct {
	buf      []byte
	acc      uint64 // pending bits, right-aligned
	accBits  int    // number of valid bits in acc
	bitCount int64  // total bits written
}

// NewWriter returns a writer that appends to buf.
//
// The capacity of buf is used as-is; callers that know an upper bound should
// pre-size it to avoid growth while writing.
func NewWriter(buf []byte) *Writer {
	return &Writer{buf: buf}
}

// WriteBits writes the low n bits of v, most significant first. n must be in [0, 64].
func (w *Writer) WriteBits(v uint64, n int) {
	if n == 0 {
		return
	}
	if n < 64 {
		v &= (uint64(1) << n) - 1
	}
	w.bitCount += int64(n)

	available := 64 - w.accBits
	if n <= available {
		if n == 64 {
			w.acc = v
		} else {
			w.acc = (w.acc << n) | v
		}
		w.accBits += n
		if w.accBits == 64 {
			w.flushWord()
		}

		return
	}

	// split across the register boundary
	rest := n - available
	w.acc = (w.acc << available) | (v >> rest)
	w.accBits = 64
	w.flushWord()

	w.acc = v & ((uint64(1) << rest) - 1)
	w.accBits = rest
}

// WriteBit writes a single bit.
func (w *Writer) WriteBit(bit bool) {
	if bit {
		w.WriteBits(1, 1)
	} else {
		w.WriteBits(0, 1)
	}
}

// WriteUnary writes n as n zero bits followed by a one bit.
func (w *Writer) WriteUnary(n uint64) {
	for n >= 64 {
		w.WriteBits(0, 64)
		n -= 64
	}
	w.WriteBits(1, int(n)+1)
}

// WriteGamma writes the Elias-gamma code of v+1.
func (w *Writer) WriteGamma(v uint64) {
	x := v + 1
	msb := bits.Len64(x) - 1
	w.WriteUnary(uint64(msb))
	w.WriteBits(x, msb)
}

// WriteZeta writes the zeta(k) code of v+1. k must be positive.
func (w *Writer) WriteZeta(v uint64, k int) {
	x := v + 1
	msb := bits.Len64(x) - 1
	h := msb / k
	w.WriteUnary(uint64(h))

	left := uint64(1) << (h * k)
	if x-left < left {
		w.WriteBits(x-left, h*k+k-1)
	} else {
		w.WriteBits(x, h*k+k)
	}
}

// BitLen returns the number of bits written so far.
func (w *Writer) BitLen() int64 {
	return w.bitCount
}

// Flush writes pending bits, zero-padding the last byte, and returns the
// underlying buffer. The writer must not be used afterwards.
func (w *Writer) Flush() []byte {
	if w.accBits > 0 {
		numBytes := (w.accBits + 7) / 8
		aligned := w.acc << (64 - w.accBits)
		for i := range numBytes {
			w.buf = append(w.buf, byte(aligned>>(56-8*i)))
		}
		w.acc = 0
		w.accBits = 0
	}

	return w.buf
}

func (w *Writer) flushWord() {
	w.buf = binary.BigEndian.AppendUint64(w.buf, w.acc)
	w.acc = 0
	w.accBits = 0
}
