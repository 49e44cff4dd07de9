package prefs

import (
	"fmt"
	"log/slog"
	"runtime"

	"github.com/arloliu/cpref/codec"
	"github.com/arloliu/cpref/format"
	"github.com/arloliu/cpref/internal/options"
)

type config struct {
	workers             int
	logger              *slog.Logger
	snapshotCompression format.CompressionType
	codecOptions        []codec.Option
}

func defaultConfig() *config {
	return &config{
		workers:             runtime.GOMAXPROCS(0),
		logger:              slog.New(slog.DiscardHandler),
		snapshotCompression: format.CompressionZstd,
	}
}

func newConfig(opts []Option) (*config, error) {
	cfg := defaultConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Option configures how a container is built, loaded or saved.
type Option = options.Option[*config]

// WithWorkers bounds the number of goroutines compressing rows. The default is GOMAXPROCS.
func WithWorkers(n int) Option {
	return options.New(func(c *config) error {
		if n < 1 {
			return fmt.Errorf("prefs: workers must be positive, got %d", n)
		}
		c.workers = n

		return nil
	})
}

// WithLogger sets the logger for build and I/O progress. Logging is discarded by default.
func WithLogger(logger *slog.Logger) Option {
	return options.NoError(func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	})
}

// WithSnapshotCompression selects the envelope compression used by WriteTo.
// The default is zstd.
func WithSnapshotCompression(compressionType format.CompressionType) Option {
	return options.New(func(c *config) error {
		switch compressionType {
		case format.CompressionNone, format.CompressionZstd, format.CompressionS2, format.CompressionLZ4:
			c.snapshotCompression = compressionType
			return nil
		default:
			return fmt.Errorf("prefs: invalid snapshot compression %s", compressionType)
		}
	})
}

// WithCodecOptions passes options to codecs that ReadSnapshot recreates from their descriptors.
func WithCodecOptions(opts ...codec.Option) Option {
	return options.NoError(func(c *config) {
		c.codecOptions = append(c.codecOptions, opts...)
	})
}
