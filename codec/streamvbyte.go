package codec

import (
	"context"
	"encoding/binary"

	"github.com/arloliu/cpref/internal/pool"
)

// streamVByteScratch is the working memory of one encode or decode call.
type streamVByteScratch struct {
	buf []byte
}

// streamVByteScheme separates lengths from payload: a control stream holding a
// 2-bit byte-length code (length-1) per value, four per byte, followed by the
// data stream of 1 to 4 little-endian bytes per value. A word holding the
// number of values comes first, then both streams packed into words back to back.
//
// Scratch buffers are not shared between calls; each call borrows one from a
// bounded pool for its whole duration.
type streamVByteScheme struct {
	scratch *pool.Bounded[*streamVByteScratch]
}

func newStreamVByteScheme(size int, blocking bool) *streamVByteScheme {
	return &streamVByteScheme{
		scratch: pool.NewBounded(size, blocking, func() *streamVByteScratch {
			return &streamVByteScratch{buf: make([]byte, 0, 4096)}
		}),
	}
}

func streamVByteControlLen(n int) int {
	return (n + 3) / 4
}

func (s *streamVByteScheme) encode(dst []uint32, values []uint32) ([]uint32, error) {
	err := s.scratch.Do(context.Background(), func(sc *streamVByteScratch) error {
		ctrlLen := streamVByteControlLen(len(values))
		buf := sc.buf[:0]
		for range ctrlLen {
			buf = append(buf, 0)
		}

		for i, v := range values {
			var code byte
			switch {
			case v < 1<<8:
				buf = append(buf, byte(v))
			case v < 1<<16:
				code = 1
				buf = binary.LittleEndian.AppendUint16(buf, uint16(v))
			case v < 1<<24:
				code = 2
				buf = append(buf, byte(v), byte(v>>8), byte(v>>16))
			default:
				code = 3
				buf = binary.LittleEndian.AppendUint32(buf, v)
			}
			buf[i/4] |= code << (2 * (i % 4))
		}

		dst = append(dst, uint32(len(values)))
		dst = appendBytesAsWords(dst, buf)
		sc.buf = buf[:0]

		return nil
	})
	if err != nil {
		return nil, err
	}

	return dst, nil
}

// streamVByteMaxPerWord holds because every value takes at least one data byte
// and a quarter of a control byte.
const streamVByteMaxPerWord = 4

// decode always waits for scratch, even in a non-blocking pool, so concurrent
// reads of a container never fail for lack of a pooled buffer.
func (s *streamVByteScheme) decode(words []uint32, out []uint32) error {
	return decodeCounted(words, out, streamVByteMaxPerWord, s.decodeAll)
}

func (s *streamVByteScheme) decodeAll(words []uint32, out []uint32) error {
	return s.scratch.DoBlocking(context.Background(), func(sc *streamVByteScratch) error {
		buf := sc.buf[:0]
		for _, w := range words {
			buf = binary.LittleEndian.AppendUint32(buf, w)
		}
		sc.buf = buf[:0]

		ctrlLen := streamVByteControlLen(len(out))
		if ctrlLen > len(buf) {
			return errShortStream
		}

		pos := ctrlLen
		for i := range out {
			size := int(buf[i/4]>>(2*(i%4))&0x3) + 1
			if pos+size > len(buf) {
				return errShortStream
			}

			var v uint32
			for j := range size {
				v |= uint32(buf[pos+j]) << (8 * j)
			}
			out[i] = v
			pos += size
		}

		return nil
	})
}
