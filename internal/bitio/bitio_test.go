package bitio

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriter_WriteBits_MSBFirst(t *testing.T) {
	w := NewWriter(nil)
	w.WriteBits(0b101, 3)
	w.WriteBits(0b1, 1)
	w.WriteBits(0xF, 4)
	w.WriteBits(0b11, 2)

	require.Equal(t, int64(10), w.BitLen())
	require.Equal(t, []byte{0b10111111, 0b11000000}, w.Flush())
}

func TestWriter_WriteBits_CrossesRegister(t *testing.T) {
	w := NewWriter(nil)
	w.WriteBits(0x1, 60)
	w.WriteBits(0xABCDEF, 24)
	w.WriteBits(math.MaxUint64, 64)
	data := w.Flush()

	require.Len(t, data, (60+24+64+7)/8)

	r := NewReader(data)
	v, err := r.ReadBits(60)
	require.NoError(t, err)
	require.Equal(t, uint64(1), v)

	v, err = r.ReadBits(24)
	require.NoError(t, err)
	require.Equal(t, uint64(0xABCDEF), v)

	v, err = r.ReadBits(64)
	require.NoError(t, err)
	require.Equal(t, uint64(math.MaxUint64), v)
}

func TestUnary_RoundTrip(t *testing.T) {
	values := []uint64{0, 1, 2, 7, 8, 63, 64, 65, 200, 1000}

	w := NewWriter(nil)
	for _, v := range values {
		w.WriteUnary(v)
	}
	data := w.Flush()

	r := NewReader(data)
	for _, want := range values {
		got, err := r.ReadUnary()
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}

func TestUnary_Layout(t *testing.T) {
	w := NewWriter(nil)
	w.WriteUnary(3)
	require.Equal(t, []byte{0b00010000}, w.Flush())
}

func TestGamma_RoundTrip(t *testing.T) {
	values := []uint64{0, 1, 2, 3, 4, 100, 1 << 20, math.MaxUint32}

	w := NewWriter(nil)
	for _, v := range values {
		w.WriteGamma(v)
	}
	data := w.Flush()

	r := NewReader(data)
	for _, want := range values {
		got, err := r.ReadGamma()
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}

func TestGamma_KnownLengths(t *testing.T) {
	// gamma(v+1) uses 2*floor(log2(v+1))+1 bits
	tests := []struct {
		value uint64
		bits  int64
	}{
		{0, 1},
		{1, 3},
		{2, 3},
		{3, 5},
		{6, 5},
		{7, 7},
	}

	for _, tt := range tests {
		w := NewWriter(nil)
		w.WriteGamma(tt.value)
		require.Equal(t, tt.bits, w.BitLen(), "value %d", tt.value)
	}
}

func TestZeta_RoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	values := []uint64{0, 1, 2, 3, 7, 8, 15, 16, 1023, 1024, math.MaxUint32}
	for range 500 {
		values = append(values, uint64(rng.Int63n(1<<31)))
	}

	for k := 1; k <= 8; k++ {
		w := NewWriter(nil)
		for _, v := range values {
			w.WriteZeta(v, k)
		}
		data := w.Flush()

		r := NewReader(data)
		for _, want := range values {
			got, err := r.ReadZeta(k)
			require.NoError(t, err, "k=%d", k)
			require.Equal(t, want, got, "k=%d", k)
		}
	}
}

func TestZeta_K1MatchesGamma(t *testing.T) {
	for v := uint64(0); v < 300; v++ {
		wg := NewWriter(nil)
		wg.WriteGamma(v)
		wz := NewWriter(nil)
		wz.WriteZeta(v, 1)

		require.Equal(t, wg.BitLen(), wz.BitLen())
		require.Equal(t, wg.Flush(), wz.Flush())
	}
}

func TestReader_EOF(t *testing.T) {
	r := NewReader([]byte{0x00})
	_, err := r.ReadUnary()
	require.ErrorIs(t, err, ErrUnexpectedEOF)

	r = NewReader([]byte{0xFF})
	_, err = r.ReadBits(9)
	require.ErrorIs(t, err, ErrUnexpectedEOF)
}

func TestReader_BytesConsumed(t *testing.T) {
	r := NewReader([]byte{0xFF, 0xFF})
	require.Equal(t, 0, r.BytesConsumed())

	_, err := r.ReadBits(3)
	require.NoError(t, err)
	require.Equal(t, 1, r.BytesConsumed())
	require.Equal(t, int64(3), r.BitPos())

	_, err = r.ReadBits(6)
	require.NoError(t, err)
	require.Equal(t, 2, r.BytesConsumed())
}

func BenchmarkWriter_WriteGamma(b *testing.B) {
	rng := rand.New(rand.NewSource(1))
	values := make([]uint64, 1024)
	for i := range values {
		values[i] = uint64(rng.Intn(1 << 12))
	}
	buf := make([]byte, 0, 8192)

	b.ResetTimer()
	for b.Loop() {
		w := NewWriter(buf[:0])
		for _, v := range values {
			w.WriteGamma(v)
		}
		_ = w.Flush()
	}
}
