package codec

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/cpref/format"
)

func TestNew_AllTypes(t *testing.T) {
	for _, ct := range format.CodecTypes() {
		c, err := New(ct)
		require.NoError(t, err)
		require.Equal(t, ct, c.Descriptor().Type)
	}
}

func TestNew_Unknown(t *testing.T) {
	_, err := New(format.CodecType(0xEE))
	require.ErrorIs(t, err, ErrUnknownCodec)

	require.Panics(t, func() { MustNew(format.CodecType(0xEE)) })
}

func TestNew_InvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		opt  Option
	}{
		{"fixed width zero", WithFixedWidth(0)},
		{"fixed width too large", WithFixedWidth(33)},
		{"zeta k zero", WithZetaK(0)},
		{"zeta k too large", WithZetaK(MaxZetaK + 1)},
		{"pool size zero", WithPoolSize(0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(format.CodecGamma, tt.opt)
			require.Error(t, err)
		})
	}
}

func TestNew_Defaults(t *testing.T) {
	require.Equal(t, Descriptor{Type: format.CodecFixed, Param: DefaultFixedWidth}, MustNew(format.CodecFixed).Descriptor())
	require.Equal(t, Descriptor{Type: format.CodecZeta, Param: DefaultZetaK}, MustNew(format.CodecZeta).Descriptor())
	require.Equal(t, Descriptor{Type: format.CodecRice}, MustNew(format.CodecRice, WithZetaK(7)).Descriptor())
}

func TestFromDescriptor(t *testing.T) {
	for _, d := range []Descriptor{
		{Type: format.CodecFixed, Param: 12},
		{Type: format.CodecZeta, Param: 5},
		{Type: format.CodecIntegratedEliasFano},
		{Type: format.CodecSimple9},
	} {
		c, err := FromDescriptor(d, WithZetaK(2))
		require.NoError(t, err)
		require.Equal(t, d, c.Descriptor())
	}

	_, err := FromDescriptor(Descriptor{Type: format.CodecZeta, Param: 0})
	require.Error(t, err)
}

func TestParse(t *testing.T) {
	c, err := Parse("zeta", WithZetaK(4))
	require.NoError(t, err)
	require.Equal(t, "zeta(4)", c.Descriptor().String())

	c, err = Parse("elias-fano")
	require.NoError(t, err)
	require.Equal(t, format.CodecEliasFano, c.Descriptor().Type)

	_, err = Parse("lzma")
	require.ErrorIs(t, err, ErrUnknownCodec)
}

func TestDescriptor_String(t *testing.T) {
	require.Equal(t, "fixed(8)", Descriptor{Type: format.CodecFixed, Param: 8}.String())
	require.Equal(t, "ief", Descriptor{Type: format.CodecIntegratedEliasFano}.String())
	require.Equal(t, "forvb", Descriptor{Type: format.CodecFORVB}.String())
}
