package bitio

import (
	"errors"
	"math/bits"
)

// ErrUnexpectedEOF is returned when a read runs past the end of the stream.
var ErrUnexpectedEOF = errors.New("bitio: unexpected end of bit stream")

// ErrInvalidCode is returned when a universal code decodes to a value that cannot be represented.
var ErrInvalidCode = errors.New("bitio: invalid code")

// Reader reads bits written by Writer.
type Reader struct {
	data []byte
	pos  int64 // bit position
}

// NewReader returns a reader positioned at the first bit of data.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// ReadBits reads n bits, n in [0, 64], and returns them right-aligned.
func (r *Reader) ReadBits(n int) (uint64, error) {
	if n == 0 {
		return 0, nil
	}
	if r.pos+int64(n) > int64(len(r.data))*8 {
		return 0, ErrUnexpectedEOF
	}

	var v uint64
	for n > 0 {
		bitOff := int(r.pos & 7)
		avail := 8 - bitOff
		take := min(avail, n)
		chunk := (uint64(r.data[r.pos>>3]) >> (avail - take)) & ((1 << take) - 1)
		v = (v << take) | chunk
		n -= take
		r.pos += int64(take)
	}

	return v, nil
}

// ReadBit reads a single bit.
func (r *Reader) ReadBit() (bool, error) {
	v, err := r.ReadBits(1)
	return v == 1, err
}

// ReadUnary reads a unary code: the number of zero bits before the next one bit.
func (r *Reader) ReadUnary() (uint64, error) {
	var count uint64
	for {
		idx := r.pos >> 3
		if idx >= int64(len(r.data)) {
			return 0, ErrUnexpectedEOF
		}

		bitOff := int(r.pos & 7)
		b := r.data[idx] << bitOff
		if b == 0 {
			count += uint64(8 - bitOff)
			r.pos += int64(8 - bitOff)

			continue
		}

		lz := bits.LeadingZeros8(b)
		count += uint64(lz)
		r.pos += int64(lz + 1)

		return count, nil
	}
}

// ReadGamma reads a value written by Writer.WriteGamma.
func (r *Reader) ReadGamma() (uint64, error) {
	msb, err := r.ReadUnary()
	if err != nil {
		return 0, err
	}
	if msb > 63 {
		return 0, ErrInvalidCode
	}

	low, err := r.ReadBits(int(msb))
	if err != nil {
		return 0, err
	}

	return (uint64(1)<<msb | low) - 1, nil
}

// ReadZeta reads a value written by Writer.WriteZeta with the same k.
func (r *Reader) ReadZeta(k int) (uint64, error) {
	h, err := r.ReadUnary()
	if err != nil {
		return 0, err
	}
	if h*uint64(k)+uint64(k) > 64 {
		return 0, ErrInvalidCode
	}

	hk := int(h) * k
	left := uint64(1) << hk
	m, err := r.ReadBits(hk + k - 1)
	if err != nil {
		return 0, err
	}
	if m < left {
		return m + left - 1, nil
	}

	low, err := r.ReadBits(1)
	if err != nil {
		return 0, err
	}

	return (m<<1 | low) - 1, nil
}

// BitPos returns the number of bits consumed.
func (r *Reader) BitPos() int64 {
	return r.pos
}

// BytesConsumed returns the number of bytes touched so far, counting a partially read byte.
func (r *Reader) BytesConsumed() int {
	return int((r.pos + 7) >> 3)
}
