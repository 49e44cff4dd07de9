// Package cpref stores user-item preference relations in compressed form.
//
// A relation is kept in two views, one ascending id list per user and one per
// item, and every list is compressed with a pluggable integer codec. The codecs
// range from bit-level entropy codes (Elias-Fano, Rice, Gamma, Zeta, fixed
// width) to byte-aligned block codes (FOR+VB, Stream-VByte, Simple-9, VByte).
//
// # Basic Usage
//
//	pairs := []prefs.Pair{{User: 0, Item: 3}, {User: 1, Item: 3}, {User: 1, Item: 7}}
//	c, err := cpref.Build(ctx, 2, 8, pairs)
//	if err != nil {
//	    return err
//	}
//
//	for item := range c.UserEntries(1) {
//	    fmt.Println(item) // 3, 7
//	}
//
//	if err := cpref.Save(c, "ratings.cpref"); err != nil {
//	    return err
//	}
//	c, err = cpref.Open("ratings.cpref")
//
// # Package Structure
//
// This package holds convenience wrappers for the common cases. For full
// control use the packages directly:
//   - codec: the integer codecs and their registry
//   - prefs: the container, text interchange and snapshots
//   - compress: snapshot envelope compression
//   - metrics: Prometheus collector for container statistics
//   - format: codec and compression identifiers
package cpref

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/arloliu/cpref/codec"
	"github.com/arloliu/cpref/format"
	"github.com/arloliu/cpref/prefs"
)

// NewCodec creates a codec by name, such as "ef", "rice" or "zeta".
//
// Example:
//
//	c, err := cpref.NewCodec("zeta", codec.WithZetaK(4))
func NewCodec(name string, opts ...codec.Option) (codec.Codec, error) {
	return codec.Parse(name, opts...)
}

// Codecs creates a per-view codec pair from two codec names.
func Codecs(userCodec, itemCodec string, opts ...codec.Option) (prefs.Codecs, error) {
	user, err := codec.Parse(userCodec, opts...)
	if err != nil {
		return prefs.Codecs{}, err
	}
	item, err := codec.Parse(itemCodec, opts...)
	if err != nil {
		return prefs.Codecs{}, err
	}

	return prefs.Codecs{User: user, Item: item}, nil
}

// Build creates a container from pairs using integrated Elias-Fano for both views.
//
// Use prefs.FromPairs to choose other codecs.
func Build(ctx context.Context, numUsers, numItems int, pairs []prefs.Pair, opts ...prefs.Option) (*prefs.Container, error) {
	return prefs.FromPairs(ctx, numUsers, numItems, pairs, prefs.DefaultCodecs(), opts...)
}

// Open reads a snapshot file written by Save.
func Open(path string, opts ...prefs.Option) (*prefs.Container, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	c, err := prefs.ReadSnapshot(f, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return c, nil
}

// Save writes c as a snapshot file, replacing any existing file at path.
func Save(c *prefs.Container, path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()

	if _, err := c.WriteTo(f); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	return nil
}

// CodecNames returns the names of all codecs, as accepted by NewCodec.
func CodecNames() []string {
	types := format.CodecTypes()
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = t.String()
	}

	return names
}
