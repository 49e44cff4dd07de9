package codec

import (
	"fmt"
	"runtime"

	"github.com/arloliu/cpref/format"
	"github.com/arloliu/cpref/internal/options"
)

const (
	// DefaultFixedWidth is the bit width of CodecFixed when WithFixedWidth is not given.
	DefaultFixedWidth = 32
	// DefaultZetaK is the shrinking factor of CodecZeta when WithZetaK is not given.
	DefaultZetaK = 3
	// MaxZetaK is the largest accepted zeta shrinking factor.
	MaxZetaK = 16
)

type config struct {
	fixedWidth   int
	zetaK        int
	poolSize     int
	poolBlocking bool
}

func defaultConfig() *config {
	return &config{
		fixedWidth:   DefaultFixedWidth,
		zetaK:        DefaultZetaK,
		poolSize:     runtime.GOMAXPROCS(0),
		poolBlocking: true,
	}
}

// Option configures a codec created by New.
type Option = options.Option[*config]

// WithFixedWidth sets the number of bits per value of CodecFixed. Valid range is [1, 32].
func WithFixedWidth(bits int) Option {
	return options.New(func(c *config) error {
		if bits < 1 || bits > 32 {
			return fmt.Errorf("codec: fixed width %d out of range [1, 32]", bits)
		}
		c.fixedWidth = bits

		return nil
	})
}

// WithZetaK sets the shrinking factor of CodecZeta. Valid range is [1, MaxZetaK].
func WithZetaK(k int) Option {
	return options.New(func(c *config) error {
		if k < 1 || k > MaxZetaK {
			return fmt.Errorf("codec: zeta k %d out of range [1, %d]", k, MaxZetaK)
		}
		c.zetaK = k

		return nil
	})
}

// WithPoolSize bounds how many goroutines may use a pooled codec (stream-vbyte) at once.
func WithPoolSize(n int) Option {
	return options.New(func(c *config) error {
		if n < 1 {
			return fmt.Errorf("codec: pool size must be positive, got %d", n)
		}
		c.poolSize = n

		return nil
	})
}

// WithPoolBlocking selects whether Compress blocks on an exhausted scratch pool
// (true, the default) or fails with pool.ErrExhausted. Decompress always waits.
func WithPoolBlocking(blocking bool) Option {
	return options.NoError(func(c *config) {
		c.poolBlocking = blocking
	})
}

// New creates a codec of the given type.
//
// Example:
//
//	c, err := codec.New(format.CodecZeta, codec.WithZetaK(4))
//	if err != nil {
//	    return err
//	}
//	block, err := c.Compress(gaps, 0, len(gaps))
func New(codecType format.CodecType, opts ...Option) (Codec, error) {
	cfg := defaultConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	switch codecType {
	case format.CodecRaw:
		return newRaw(), nil
	case format.CodecFixed:
		return newBitCodec(Descriptor{Type: codecType, Param: cfg.fixedWidth}, fixedScheme{width: cfg.fixedWidth}, false), nil
	case format.CodecRice:
		return newBitCodec(Descriptor{Type: codecType}, riceScheme{}, false), nil
	case format.CodecGamma:
		return newBitCodec(Descriptor{Type: codecType}, gammaScheme{}, false), nil
	case format.CodecZeta:
		return newBitCodec(Descriptor{Type: codecType, Param: cfg.zetaK}, zetaScheme{k: cfg.zetaK}, false), nil
	case format.CodecEliasFano:
		return newBitCodec(Descriptor{Type: codecType}, eliasFanoScheme{}, false), nil
	case format.CodecIntegratedEliasFano:
		return newBitCodec(Descriptor{Type: codecType}, eliasFanoScheme{integrated: true}, true), nil
	case format.CodecFORVB:
		return newWordCodec(Descriptor{Type: codecType}, forVBScheme{}, false), nil
	case format.CodecIntegratedFORVB:
		return newWordCodec(Descriptor{Type: codecType}, forVBScheme{integrated: true}, true), nil
	case format.CodecStreamVByte:
		return newWordCodec(Descriptor{Type: codecType}, newStreamVByteScheme(cfg.poolSize, cfg.poolBlocking), false), nil
	case format.CodecSimple9:
		return newWordCodec(Descriptor{Type: codecType}, simple9Scheme{}, false), nil
	case format.CodecVByte:
		return newWordCodec(Descriptor{Type: codecType}, vbyteScheme{}, false), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownCodec, codecType)
	}
}

// MustNew is like New but panics on error. It is meant for static configuration.
func MustNew(codecType format.CodecType, opts ...Option) Codec {
	c, err := New(codecType, opts...)
	if err != nil {
		panic(err)
	}

	return c
}

// FromDescriptor recreates the codec a Descriptor was taken from.
//
// The descriptor parameter overrides WithFixedWidth or WithZetaK given in opts.
func FromDescriptor(d Descriptor, opts ...Option) (Codec, error) {
	switch d.Type {
	case format.CodecFixed:
		opts = append(opts, WithFixedWidth(d.Param))
	case format.CodecZeta:
		opts = append(opts, WithZetaK(d.Param))
	}

	return New(d.Type, opts...)
}

// Parse creates a codec from its name as accepted by format.ParseCodecType.
func Parse(name string, opts ...Option) (Codec, error) {
	codecType, ok := format.ParseCodecType(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, name)
	}

	return New(codecType, opts...)
}
