package prefs

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/arloliu/cpref/codec"
	"github.com/arloliu/cpref/internal/pool"
)

// rowsPerTask is the number of consecutive rows one worker compresses per task.
const rowsPerTask = 256

// FromPairs builds a container of numUsers x numItems from a list of preferences.
//
// Pairs may come in any order; duplicates are stored once. Every pair must lie
// inside the dimensions, otherwise ErrOutOfRange is returned.
func FromPairs(ctx context.Context, numUsers, numItems int, pairs []Pair, codecs Codecs, opts ...Option) (*Container, error) {
	if numUsers < 0 || numItems < 0 {
		return nil, fmt.Errorf("%w: negative dimensions %dx%d", ErrOutOfRange, numUsers, numItems)
	}
	for _, p := range pairs {
		if int64(p.User) >= int64(numUsers) || int64(p.Item) >= int64(numItems) {
			return nil, fmt.Errorf("%w: pair (%d, %d) outside %dx%d", ErrOutOfRange, p.User, p.Item, numUsers, numItems)
		}
	}

	sorted := slices.Clone(pairs)
	slices.SortStableFunc(sorted, func(a, b Pair) int {
		if c := cmp.Compare(a.User, b.User); c != 0 {
			return c
		}

		return cmp.Compare(a.Item, b.Item)
	})
	sorted = slices.Compact(sorted)

	userRows := make([][]uint32, numUsers)
	itemCounts := make([]int, numItems)
	for _, p := range sorted {
		userRows[p.User] = append(userRows[p.User], p.Item)
		itemCounts[p.Item]++
	}

	itemRows := make([][]uint32, numItems)
	for i, n := range itemCounts {
		if n > 0 {
			itemRows[i] = make([]uint32, 0, n)
		}
	}
	// pairs are ordered by user, so every item row comes out ascending
	for _, p := range sorted {
		itemRows[p.Item] = append(itemRows[p.Item], p.User)
	}

	// itemRows is the transpose of userRows by construction
	return build(ctx, userRows, itemRows, codecs, false, opts)
}

// FromRows builds a container from both views given as rows of ascending neighbor ids.
//
// userRows[u] lists the items of user u and itemRows[i] the users of item i; the
// dimensions are len(userRows) x len(itemRows). The slices are read, never modified.
//
// Rows are validated while they are compressed: ids must be strictly ascending
// and inside the other dimension. The first failing row aborts the build with a
// *RowError. If itemRows is not the exact transpose of userRows the build fails
// with ErrTransposeMismatch.
func FromRows(ctx context.Context, userRows, itemRows [][]uint32, codecs Codecs, opts ...Option) (*Container, error) {
	return build(ctx, userRows, itemRows, codecs, true, opts)
}

func build(ctx context.Context, userRows, itemRows [][]uint32, codecs Codecs, checkViews bool, opts []Option) (*Container, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}
	if err := codecs.validate(); err != nil {
		return nil, err
	}

	users, err := buildView(ctx, cfg, UserView, userRows, len(itemRows), codecs.User)
	if err != nil {
		return nil, err
	}
	items, err := buildView(ctx, cfg, ItemView, itemRows, len(userRows), codecs.Item)
	if err != nil {
		return nil, err
	}

	if users.total != items.total {
		return nil, fmt.Errorf("%w: user view holds %d preferences, item view %d", ErrTransposeMismatch, users.total, items.total)
	}
	// both views passed row validation, so every id is in range
	if checkViews {
		if err := checkTranspose(userRows, itemRows); err != nil {
			return nil, err
		}
	}

	return &Container{
		users:               users,
		items:               items,
		logger:              cfg.logger,
		snapshotCompression: cfg.snapshotCompression,
	}, nil
}

// buildView compresses rows in parallel. bound is the exclusive upper limit of neighbor ids.
func buildView(ctx context.Context, cfg *config, kind View, rows [][]uint32, bound int, c codec.Codec) (view, error) {
	start := time.Now()

	v := view{
		kind:    kind,
		codec:   c,
		lengths: make([]uint32, len(rows)),
		blocks:  make([]codec.Block, len(rows)),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.workers)

	for first := 0; first < len(rows); first += rowsPerTask {
		if gctx.Err() != nil {
			break
		}

		last := min(first+rowsPerTask, len(rows))
		g.Go(func() error {
			for r := first; r < last; r++ {
				if len(rows[r]) == 0 {
					continue
				}

				block, err := compressRow(c, rows[r], bound)
				if err != nil {
					return &RowError{View: kind, Row: uint32(r), Codec: c.Descriptor(), Err: err}
				}
				v.lengths[r] = uint32(len(rows[r]))
				v.blocks[r] = block
			}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return view{}, err
	}
	if err := ctx.Err(); err != nil {
		return view{}, err
	}

	v.finish()

	bytesIn := int64(v.total) * codec.BytesPerValue
	bytesOut := v.blockBytes()
	ratio := 0.0
	if bytesIn > 0 {
		ratio = float64(bytesOut) / float64(bytesIn)
	}
	cfg.logger.Info("view compressed",
		"view", kind.String(),
		"codec", c.Descriptor().String(),
		"rows", len(rows),
		"preferences", v.total,
		"bytes_in", bytesIn,
		"bytes_out", bytesOut,
		"ratio", ratio,
		"duration", time.Since(start),
	)

	return v, nil
}

// compressRow validates row and compresses it with c, applying Delta when c needs gaps.
func compressRow(c codec.Codec, row []uint32, bound int) (codec.Block, error) {
	scratch, cleanup := pool.GetUint32Slice(len(row))
	defer cleanup()

	for j, id := range row {
		if int64(id) >= int64(bound) {
			return nil, fmt.Errorf("%w: id %d at %d, limit %d", ErrOutOfRange, id, j, bound)
		}
		if j > 0 && id <= row[j-1] {
			return nil, fmt.Errorf("%w: id %d at %d follows %d", ErrNotAscending, id, j, row[j-1])
		}
		scratch[j] = id
	}

	if !c.SelfIntegrating() {
		codec.Delta(scratch)
	}

	return c.Compress(scratch, 0, len(scratch))
}

// checkTranspose reports ErrTransposeMismatch naming the first item whose row
// differs from the transpose of userRows.
func checkTranspose(userRows, itemRows [][]uint32) error {
	derived, err := transpose(userRows, len(itemRows))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTransposeMismatch, err)
	}

	for i := range itemRows {
		if !slices.Equal(derived[i], itemRows[i]) {
			return fmt.Errorf("%w: item %d differs from the user view", ErrTransposeMismatch, i)
		}
	}

	return nil
}

// transpose turns rows over columns [0, numCols) into rows over the original row ids.
// Each output row is ascending when the input rows are visited in order.
func transpose(rows [][]uint32, numCols int) ([][]uint32, error) {
	counts := make([]int, numCols)
	for r, row := range rows {
		for _, col := range row {
			if int(col) >= numCols {
				return nil, fmt.Errorf("%w: row %d references %d, limit %d", ErrOutOfRange, r, col, numCols)
			}
			counts[col]++
		}
	}

	out := make([][]uint32, numCols)
	for col, n := range counts {
		if n > 0 {
			out[col] = make([]uint32, 0, n)
		}
	}
	for r, row := range rows {
		for _, col := range row {
			out[col] = append(out[col], uint32(r))
		}
	}

	return out, nil
}
