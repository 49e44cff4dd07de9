package prefs

import (
	"fmt"
	"iter"
	"log/slog"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/arloliu/cpref/codec"
	"github.com/arloliu/cpref/format"
)

// Codecs selects the codec of each view. The two may be the same instance, in
// which case its statistics cover both views.
type Codecs struct {
	User codec.Codec
	Item codec.Codec
}

// DefaultCodecs returns integrated Elias-Fano for both views.
func DefaultCodecs() Codecs {
	return Codecs{
		User: codec.MustNew(format.CodecIntegratedEliasFano),
		Item: codec.MustNew(format.CodecIntegratedEliasFano),
	}
}

func (c Codecs) validate() error {
	if c.User == nil || c.Item == nil {
		return fmt.Errorf("prefs: both user and item codecs are required")
	}

	return nil
}

// Pair is one (user, item) preference.
type Pair struct {
	User uint32
	Item uint32
}

// view is one orientation of the relation: a compressed neighbor list per row.
type view struct {
	kind     View
	codec    codec.Codec
	lengths  []uint32
	blocks   []codec.Block
	nonEmpty *roaring.Bitmap
	total    int
}

func (v *view) rows() int {
	return len(v.lengths)
}

func (v *view) length(row uint32) int {
	if int(row) >= len(v.lengths) {
		return 0
	}

	return int(v.lengths[row])
}

// decode returns the ascending neighbor ids of row.
func (v *view) decode(row uint32) ([]uint32, error) {
	if int(row) >= len(v.lengths) {
		return nil, fmt.Errorf("%w: %s %d of %d", ErrOutOfRange, v.kind, row, len(v.lengths))
	}

	n := int(v.lengths[row])
	out := make([]uint32, n)
	if n == 0 {
		return out, nil
	}

	if _, err := v.codec.Decompress(v.blocks[row], out, 0, n); err != nil {
		return nil, fmt.Errorf("prefs: decode %s row %d: %w", v.kind, row, err)
	}
	if !v.codec.SelfIntegrating() {
		codec.Undelta(out)
	}

	return out, nil
}

func (v *view) decodeAll() ([][]uint32, error) {
	rows := make([][]uint32, len(v.lengths))
	for r := range rows {
		row, err := v.decode(uint32(r))
		if err != nil {
			return nil, err
		}
		rows[r] = row
	}

	return rows, nil
}

func (v *view) entries(row uint32) iter.Seq2[uint32, float64] {
	return func(yield func(uint32, float64) bool) {
		if v.length(row) == 0 {
			return
		}

		ids, err := v.decode(row)
		if err != nil {
			panic(err)
		}
		for _, id := range ids {
			if !yield(id, 1.0) {
				return
			}
		}
	}
}

func (v *view) withEntries() iter.Seq[uint32] {
	return func(yield func(uint32) bool) {
		it := v.nonEmpty.Iterator()
		for it.HasNext() {
			if !yield(it.Next()) {
				return
			}
		}
	}
}

func (v *view) blockBytes() int64 {
	var n int64
	for _, b := range v.blocks {
		n += int64(len(b))
	}

	return n
}

func (v *view) stats() ViewStats {
	return ViewStats{
		View:        v.kind,
		Codec:       v.codec.Descriptor(),
		Rows:        v.rows(),
		NonEmpty:    int(v.nonEmpty.GetCardinality()),
		Preferences: v.total,
		BlockBytes:  v.blockBytes(),
		CodecStats:  v.codec.Stats().Snapshot(),
	}
}

// finish derives the row bitmap and preference count from lengths.
func (v *view) finish() {
	v.nonEmpty = roaring.New()
	v.total = 0
	for row, n := range v.lengths {
		if n > 0 {
			v.nonEmpty.Add(uint32(row))
			v.total += int(n)
		}
	}
	v.nonEmpty.RunOptimize()
}

// Container is a compressed, immutable preference relation between users and items.
//
// Every preference (u, i) is stored twice: item i in the row of user u, and user
// u in the row of item i. Both views are compressed independently, each with its
// own codec.
//
// A Container is safe for concurrent reads.
type Container struct {
	users view
	items view

	logger              *slog.Logger
	snapshotCompression format.CompressionType
}

// NumUsers returns the number of user rows, including empty ones.
func (c *Container) NumUsers() int {
	return c.users.rows()
}

// NumItems returns the number of item rows, including empty ones.
func (c *Container) NumItems() int {
	return c.items.rows()
}

// NumPreferences returns the number of (user, item) pairs.
func (c *Container) NumPreferences() int {
	return c.users.total
}

// Codecs returns the codecs of both views.
func (c *Container) Codecs() Codecs {
	return Codecs{User: c.users.codec, Item: c.items.codec}
}

// UserLen returns the number of items preferred by user u, or 0 when u is out of range.
func (c *Container) UserLen(u uint32) int {
	return c.users.length(u)
}

// ItemLen returns the number of users preferring item i, or 0 when i is out of range.
func (c *Container) ItemLen(i uint32) int {
	return c.items.length(i)
}

// DecodeUser returns the ascending item ids of user u.
func (c *Container) DecodeUser(u uint32) ([]uint32, error) {
	return c.users.decode(u)
}

// DecodeItem returns the ascending user ids of item i.
func (c *Container) DecodeItem(i uint32) ([]uint32, error) {
	return c.items.decode(i)
}

// UserEntries iterates over the items of user u in ascending order, each with weight 1.
//
// The row is decoded every time the sequence is ranged over; nothing is cached.
// An out-of-range or empty row yields nothing. A corrupted block makes the
// iteration panic with the decode error; use DecodeUser to handle it as an error.
func (c *Container) UserEntries(u uint32) iter.Seq2[uint32, float64] {
	return c.users.entries(u)
}

// ItemEntries iterates over the users of item i in ascending order, each with weight 1.
// It behaves like UserEntries.
func (c *Container) ItemEntries(i uint32) iter.Seq2[uint32, float64] {
	return c.items.entries(i)
}

// UsersWithEntries iterates over the ids of users with at least one preference, ascending.
func (c *Container) UsersWithEntries() iter.Seq[uint32] {
	return c.users.withEntries()
}

// ItemsWithEntries iterates over the ids of items with at least one preference, ascending.
func (c *Container) ItemsWithEntries() iter.Seq[uint32] {
	return c.items.withEntries()
}

// ViewStats describes the storage of one view.
type ViewStats struct {
	View        View
	Codec       codec.Descriptor
	Rows        int
	NonEmpty    int
	Preferences int
	// BlockBytes is the total size of the stored blocks.
	BlockBytes int64
	// CodecStats are the cumulative counters of the view's codec instance,
	// which only cover rows compressed in this process.
	CodecStats codec.StatsSnapshot
}

// BitsPerPreference returns the average number of stored bits per preference.
func (s ViewStats) BitsPerPreference() float64 {
	if s.Preferences == 0 {
		return 0
	}

	return float64(s.BlockBytes*8) / float64(s.Preferences)
}

// Stats describes both views of a container.
type Stats struct {
	User ViewStats
	Item ViewStats
}

// Stats returns storage statistics of both views.
func (c *Container) Stats() Stats {
	return Stats{
		User: c.users.stats(),
		Item: c.items.stats(),
	}
}

// CompressedBytes returns the total size of all stored blocks of both views.
func (c *Container) CompressedBytes() int64 {
	return c.users.blockBytes() + c.items.blockBytes()
}

// Verify decodes every row of both views and checks that each preference
// appears in both orientations.
func (c *Container) Verify() error {
	userRows, err := c.users.decodeAll()
	if err != nil {
		return err
	}
	itemRows, err := c.items.decodeAll()
	if err != nil {
		return err
	}

	return checkTranspose(userRows, itemRows)
}
