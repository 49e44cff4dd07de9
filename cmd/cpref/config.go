package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/arloliu/cpref/codec"
	"github.com/arloliu/cpref/format"
	"github.com/arloliu/cpref/prefs"
)

// Config is the optional YAML configuration of the build command.
// Command-line flags take precedence over file values.
type Config struct {
	UserCodec           string `yaml:"user_codec"`
	ItemCodec           string `yaml:"item_codec"`
	FixedWidth          int    `yaml:"fixed_width"`
	ZetaK               int    `yaml:"zeta_k"`
	Workers             int    `yaml:"workers"`
	SnapshotCompression string `yaml:"snapshot_compression"`
}

func defaultConfig() Config {
	return Config{
		UserCodec:           format.CodecIntegratedEliasFano.String(),
		ItemCodec:           format.CodecIntegratedEliasFano.String(),
		FixedWidth:          codec.DefaultFixedWidth,
		ZetaK:               codec.DefaultZetaK,
		SnapshotCompression: "zstd",
	}
}

// loadConfig reads path over the defaults. Unknown keys are rejected.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	return cfg, cfg.validate()
}

func (c Config) validate() error {
	if _, ok := format.ParseCodecType(c.UserCodec); !ok {
		return fmt.Errorf("unknown user codec %q", c.UserCodec)
	}
	if _, ok := format.ParseCodecType(c.ItemCodec); !ok {
		return fmt.Errorf("unknown item codec %q", c.ItemCodec)
	}
	if _, ok := format.ParseCompressionType(c.SnapshotCompression); !ok {
		return fmt.Errorf("unknown snapshot compression %q", c.SnapshotCompression)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}

	return nil
}

func (c Config) codecOptions() []codec.Option {
	return []codec.Option{
		codec.WithFixedWidth(c.FixedWidth),
		codec.WithZetaK(c.ZetaK),
	}
}

func (c Config) codecs() (prefs.Codecs, error) {
	user, err := codec.Parse(c.UserCodec, c.codecOptions()...)
	if err != nil {
		return prefs.Codecs{}, fmt.Errorf("user codec: %w", err)
	}
	item, err := codec.Parse(c.ItemCodec, c.codecOptions()...)
	if err != nil {
		return prefs.Codecs{}, fmt.Errorf("item codec: %w", err)
	}

	return prefs.Codecs{User: user, Item: item}, nil
}

func (c Config) prefsOptions() []prefs.Option {
	compression, _ := format.ParseCompressionType(c.SnapshotCompression)
	opts := []prefs.Option{prefs.WithSnapshotCompression(compression)}
	if c.Workers > 0 {
		opts = append(opts, prefs.WithWorkers(c.Workers))
	}

	return opts
}
