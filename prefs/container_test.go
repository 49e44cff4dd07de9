package prefs

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"slices"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/cpref/codec"
	"github.com/arloliu/cpref/format"
)

// toyPairs is a 3-user, 4-item relation; item 2 has no users.
func toyPairs() []Pair {
	return []Pair{
		{User: 0, Item: 1}, {User: 0, Item: 3},
		{User: 1, Item: 0}, {User: 1, Item: 1}, {User: 1, Item: 3},
		{User: 2, Item: 3},
	}
}

func codecsFor(ct format.CodecType) Codecs {
	return Codecs{User: codec.MustNew(ct), Item: codec.MustNew(ct)}
}

func collect(seq func(func(uint32, float64) bool)) []uint32 {
	var ids []uint32
	for id, w := range seq {
		if w != 1.0 {
			panic("unexpected weight")
		}
		ids = append(ids, id)
	}

	return ids
}

func randomPairs(numUsers, numItems, n int, seed uint64) []Pair {
	rng := rand.New(rand.NewPCG(seed, seed^0xabcdef))
	pairs := make([]Pair, n)
	for i := range pairs {
		// skewed towards low item ids
		item := uint32(rng.IntN(numItems) * rng.IntN(numItems) / numItems)
		pairs[i] = Pair{User: uint32(rng.IntN(numUsers)), Item: item}
	}

	return pairs
}

func TestFromPairs_ToyRelation(t *testing.T) {
	for _, ct := range format.CodecTypes() {
		t.Run(ct.String(), func(t *testing.T) {
			c, err := FromPairs(t.Context(), 3, 4, toyPairs(), codecsFor(ct))
			require.NoError(t, err)

			require.Equal(t, 3, c.NumUsers())
			require.Equal(t, 4, c.NumItems())
			require.Equal(t, 6, c.NumPreferences())

			require.Equal(t, []uint32{1, 3}, collect(c.UserEntries(0)))
			require.Equal(t, []uint32{0, 1, 3}, collect(c.UserEntries(1)))
			require.Equal(t, []uint32{3}, collect(c.UserEntries(2)))

			require.Equal(t, []uint32{1}, collect(c.ItemEntries(0)))
			require.Equal(t, []uint32{0, 1}, collect(c.ItemEntries(1)))
			require.Empty(t, collect(c.ItemEntries(2)))
			require.Equal(t, []uint32{0, 1, 2}, collect(c.ItemEntries(3)))

			require.Equal(t, 2, c.UserLen(0))
			require.Equal(t, 0, c.ItemLen(2))
			require.Equal(t, 3, c.ItemLen(3))

			require.Equal(t, []uint32{0, 1, 2}, slices.Collect(c.UsersWithEntries()))
			require.Equal(t, []uint32{0, 1, 3}, slices.Collect(c.ItemsWithEntries()))

			require.NoError(t, c.Verify())
		})
	}
}

func TestFromPairs_UnorderedAndDuplicated(t *testing.T) {
	pairs := toyPairs()
	shuffled := append(slices.Clone(pairs), pairs[1], pairs[4], pairs[0])
	rand.New(rand.NewPCG(1, 2)).Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	c, err := FromPairs(t.Context(), 3, 4, shuffled, DefaultCodecs())
	require.NoError(t, err)
	require.Equal(t, 6, c.NumPreferences())
	require.Equal(t, []uint32{0, 1, 3}, collect(c.UserEntries(1)))
}

func TestFromPairs_OutOfRange(t *testing.T) {
	_, err := FromPairs(t.Context(), 3, 4, []Pair{{User: 3, Item: 0}}, DefaultCodecs())
	require.ErrorIs(t, err, ErrOutOfRange)

	_, err = FromPairs(t.Context(), 3, 4, []Pair{{User: 0, Item: 4}}, DefaultCodecs())
	require.ErrorIs(t, err, ErrOutOfRange)

	_, err = FromPairs(t.Context(), -1, 4, nil, DefaultCodecs())
	require.ErrorIs(t, err, ErrOutOfRange)
}

func TestTransposeInvariant_Random(t *testing.T) {
	const numUsers, numItems = 500, 300
	pairs := randomPairs(numUsers, numItems, 20000, 7)

	codecs := Codecs{
		User: codec.MustNew(format.CodecEliasFano),
		Item: codec.MustNew(format.CodecIntegratedFORVB),
	}
	c, err := FromPairs(t.Context(), numUsers, numItems, pairs, codecs, WithWorkers(4))
	require.NoError(t, err)

	total := 0
	for u := range uint32(numUsers) {
		items := collect(c.UserEntries(u))
		require.Len(t, items, c.UserLen(u))
		require.True(t, slices.IsSorted(items))
		total += len(items)

		for _, i := range items {
			_, found := slices.BinarySearch(collect(c.ItemEntries(i)), u)
			require.True(t, found, "user %d item %d", u, i)
		}
	}
	require.Equal(t, c.NumPreferences(), total)

	itemTotal := 0
	for i := range uint32(numItems) {
		itemTotal += c.ItemLen(i)
	}
	require.Equal(t, total, itemTotal)
	require.NoError(t, c.Verify())
}

func TestEntries_EmptyRowAnyCodec(t *testing.T) {
	for _, ct := range format.CodecTypes() {
		c, err := FromRows(t.Context(), [][]uint32{{}, {0}}, [][]uint32{{1}}, codecsFor(ct))
		require.NoError(t, err, ct.String())

		require.Equal(t, 0, c.UserLen(0))
		require.Empty(t, collect(c.UserEntries(0)), ct.String())

		row, err := c.DecodeUser(0)
		require.NoError(t, err)
		require.Empty(t, row)
	}
}

func TestEntries_SingleElementEliasFano(t *testing.T) {
	for _, ct := range []format.CodecType{format.CodecEliasFano, format.CodecIntegratedEliasFano} {
		itemRows := make([][]uint32, 6)
		itemRows[5] = []uint32{0}

		c, err := FromRows(t.Context(), [][]uint32{{5}}, itemRows, codecsFor(ct))
		require.NoError(t, err)
		require.Equal(t, []uint32{5}, collect(c.UserEntries(0)))
		require.Equal(t, []uint32{0}, collect(c.ItemEntries(5)))
	}
}

func TestEntries_OutOfRangeRow(t *testing.T) {
	c, err := FromPairs(t.Context(), 3, 4, toyPairs(), DefaultCodecs())
	require.NoError(t, err)

	require.Equal(t, 0, c.UserLen(99))
	require.Empty(t, collect(c.UserEntries(99)))

	_, err = c.DecodeUser(99)
	require.ErrorIs(t, err, ErrOutOfRange)
	_, err = c.DecodeItem(4)
	require.ErrorIs(t, err, ErrOutOfRange)
}

func TestEntries_RestartableAndBreakable(t *testing.T) {
	c, err := FromPairs(t.Context(), 3, 4, toyPairs(), DefaultCodecs())
	require.NoError(t, err)

	seq := c.UserEntries(1)
	require.Equal(t, collect(seq), collect(seq))

	var first []uint32
	for id := range seq {
		first = append(first, id)
		if len(first) == 2 {
			break
		}
	}
	require.Equal(t, []uint32{0, 1}, first)
}

func TestEntries_CorruptBlock(t *testing.T) {
	c, err := FromPairs(t.Context(), 3, 4, toyPairs(), codecsFor(format.CodecRice))
	require.NoError(t, err)
	c.users.blocks[1] = codec.Block{}

	_, err = c.DecodeUser(1)
	require.ErrorIs(t, err, codec.ErrCorrupted)

	require.Panics(t, func() { collect(c.UserEntries(1)) })
	require.Error(t, c.Verify())
}

func TestFromRows_DoesNotModifyInput(t *testing.T) {
	userRows := [][]uint32{{1, 3}, {0, 1, 3}, {3}}
	itemRows := [][]uint32{{1}, {0, 1}, nil, {0, 1, 2}}
	userCopy := [][]uint32{{1, 3}, {0, 1, 3}, {3}}

	_, err := FromRows(t.Context(), userRows, itemRows, codecsFor(format.CodecGamma))
	require.NoError(t, err)
	require.Equal(t, userCopy, userRows)
}

func TestFromRows_RowError(t *testing.T) {
	tests := []struct {
		name     string
		userRows [][]uint32
		itemRows [][]uint32
		view     View
		row      uint32
		target   error
	}{
		{
			name:     "user row not ascending",
			userRows: [][]uint32{{0}, {1, 0}},
			itemRows: [][]uint32{{0, 1}, {1}},
			view:     UserView,
			row:      1,
			target:   ErrNotAscending,
		},
		{
			name:     "duplicate id",
			userRows: [][]uint32{{1, 1}},
			itemRows: [][]uint32{nil, {0}},
			view:     UserView,
			row:      0,
			target:   ErrNotAscending,
		},
		{
			name:     "item row references missing user",
			userRows: [][]uint32{{0}},
			itemRows: [][]uint32{{0, 5}},
			view:     ItemView,
			row:      0,
			target:   ErrOutOfRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			codecs := codecsFor(format.CodecZeta)
			_, err := FromRows(t.Context(), tt.userRows, tt.itemRows, codecs)
			require.ErrorIs(t, err, tt.target)

			var rowErr *RowError
			require.True(t, errors.As(err, &rowErr))
			assert.Equal(t, tt.view, rowErr.View)
			assert.Equal(t, tt.row, rowErr.Row)
			assert.Equal(t, codec.Descriptor{Type: format.CodecZeta, Param: codec.DefaultZetaK}, rowErr.Codec)
			assert.Contains(t, rowErr.Error(), "zeta(3)")
		})
	}
}

func TestFromRows_CodecErrorAbortsBuild(t *testing.T) {
	codecs := Codecs{
		User: codec.MustNew(format.CodecFixed, codec.WithFixedWidth(2)),
		Item: codec.MustNew(format.CodecGamma),
	}
	// user 0 holds item 9, its first gap does not fit 2 bits
	itemRows := make([][]uint32, 10)
	itemRows[9] = []uint32{0}

	_, err := FromRows(t.Context(), [][]uint32{{9}}, itemRows, codecs)
	require.ErrorIs(t, err, codec.ErrValueOverflow)

	var rowErr *RowError
	require.ErrorAs(t, err, &rowErr)
	require.Equal(t, UserView, rowErr.View)
}

func TestFromRows_TransposeMismatch(t *testing.T) {
	tests := []struct {
		name     string
		userRows [][]uint32
		itemRows [][]uint32
		message  string
	}{
		{
			name:     "different totals",
			userRows: [][]uint32{{0, 1}},
			itemRows: [][]uint32{{0}, nil},
		},
		{
			name:     "same totals, swapped pairs",
			userRows: [][]uint32{{1}, {0}},
			itemRows: [][]uint32{{0}, {1}},
			message:  "item 0",
		},
		{
			name:     "same row lengths, different users",
			userRows: [][]uint32{{0, 1}, {1}, nil},
			itemRows: [][]uint32{{0}, {0, 2}, nil},
			message:  "item 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromRows(t.Context(), tt.userRows, tt.itemRows, DefaultCodecs())
			require.ErrorIs(t, err, ErrTransposeMismatch)
			require.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestFromRows_MissingCodec(t *testing.T) {
	_, err := FromRows(t.Context(), nil, nil, Codecs{User: codec.MustNew(format.CodecGamma)})
	require.Error(t, err)
}

func TestFromRows_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := FromPairs(ctx, 3, 4, toyPairs(), DefaultCodecs())
	require.ErrorIs(t, err, context.Canceled)
}

func TestFromRows_InvalidOption(t *testing.T) {
	_, err := FromPairs(t.Context(), 3, 4, toyPairs(), DefaultCodecs(), WithWorkers(0))
	require.Error(t, err)
}

func TestStats(t *testing.T) {
	codecs := Codecs{
		User: codec.MustNew(format.CodecGamma),
		Item: codec.MustNew(format.CodecRice),
	}
	c, err := FromPairs(t.Context(), 3, 4, toyPairs(), codecs)
	require.NoError(t, err)

	stats := c.Stats()
	require.Equal(t, UserView, stats.User.View)
	require.Equal(t, format.CodecGamma, stats.User.Codec.Type)
	require.Equal(t, 3, stats.User.Rows)
	require.Equal(t, 3, stats.User.NonEmpty)
	require.Equal(t, 6, stats.User.Preferences)
	require.Equal(t, int64(6*codec.BytesPerValue), stats.User.CodecStats.BytesIn)
	require.Equal(t, stats.User.BlockBytes, stats.User.CodecStats.BytesOut)

	require.Equal(t, format.CodecRice, stats.Item.Codec.Type)
	require.Equal(t, 4, stats.Item.Rows)
	require.Equal(t, 3, stats.Item.NonEmpty)
	require.Equal(t, int64(3), stats.Item.CodecStats.Blocks)

	require.Equal(t, stats.User.BlockBytes+stats.Item.BlockBytes, c.CompressedBytes())
	require.Greater(t, stats.User.BitsPerPreference(), 0.0)
	require.Zero(t, ViewStats{}.BitsPerPreference())
}

func TestWithLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	_, err := FromPairs(t.Context(), 3, 4, toyPairs(), DefaultCodecs(), WithLogger(logger))
	require.NoError(t, err)

	out := buf.String()
	require.Contains(t, out, "view compressed")
	require.Contains(t, out, "view=user")
	require.Contains(t, out, "view=item")
	require.Contains(t, out, "codec=ief")
}

func TestView_String(t *testing.T) {
	require.Equal(t, "user", UserView.String())
	require.Equal(t, "item", ItemView.String())
	require.Equal(t, "unknown", View(9).String())
}

func TestEntries_ConcurrentReadsWithNonBlockingPool(t *testing.T) {
	newCodec := func() codec.Codec {
		return codec.MustNew(format.CodecStreamVByte, codec.WithPoolSize(1), codec.WithPoolBlocking(false))
	}
	c, err := FromPairs(t.Context(), 40, 30, randomPairs(40, 30, 600, 3),
		Codecs{User: newCodec(), Item: newCodec()}, WithWorkers(1))
	require.NoError(t, err)

	var wg sync.WaitGroup
	counts := make([]int, 16)
	for g := range counts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for u := range c.UsersWithEntries() {
				counts[g] += len(collect(c.UserEntries(u)))
			}
			for i := range c.ItemsWithEntries() {
				counts[g] += len(collect(c.ItemEntries(i)))
			}
		}()
	}
	wg.Wait()

	for _, n := range counts {
		require.Equal(t, 2*c.NumPreferences(), n)
	}
}
