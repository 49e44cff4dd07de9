package prefs

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"
)

// maxLineSize bounds a single text line; a row of a very popular item can be long.
const maxLineSize = 256 * 1024 * 1024

// ReadRows parses the text form of one view.
//
// Each line is rowId<TAB>id1<TAB>...<TAB>idN. Rows missing from the input are
// empty, and the result is as long as the highest row id plus one. Blank lines
// are skipped. Ids are not checked for order here; building a container does that.
func ReadRows(r io.Reader) ([][]uint32, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var (
		rows   [][]uint32
		seen   = make(map[uint32]struct{})
		lineNo int
	)
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimRight(scanner.Bytes(), "\r")
		if len(line) == 0 {
			continue
		}

		fields := bytes.Split(line, []byte{'\t'})
		rowID, err := parseID(fields[0])
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: row id: %w", ErrMalformedLine, lineNo, err)
		}
		if _, dup := seen[rowID]; dup {
			return nil, fmt.Errorf("%w: line %d: row %d appears twice", ErrMalformedLine, lineNo, rowID)
		}
		seen[rowID] = struct{}{}

		ids := make([]uint32, len(fields)-1)
		for j, f := range fields[1:] {
			if ids[j], err = parseID(f); err != nil {
				return nil, fmt.Errorf("%w: line %d: field %d: %w", ErrMalformedLine, lineNo, j+2, err)
			}
		}

		if int(rowID) >= len(rows) {
			rows = append(rows, make([][]uint32, int(rowID)+1-len(rows))...)
		}
		rows[rowID] = ids
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("prefs: read rows: %w", err)
	}

	return rows, nil
}

func parseID(b []byte) (uint32, error) {
	v, err := strconv.ParseUint(string(b), 10, 32)
	if err != nil {
		return 0, err
	}

	return uint32(v), nil
}

// WriteRows writes rows in the format read by ReadRows. Empty rows are omitted.
func WriteRows(w io.Writer, rows [][]uint32) error {
	bw := bufio.NewWriter(w)
	var line []byte
	for r, row := range rows {
		if len(row) == 0 {
			continue
		}

		line = strconv.AppendUint(line[:0], uint64(r), 10)
		for _, id := range row {
			line = append(line, '\t')
			line = strconv.AppendUint(line, uint64(id), 10)
		}
		line = append(line, '\n')

		if _, err := bw.Write(line); err != nil {
			return fmt.Errorf("prefs: write rows: %w", err)
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("prefs: write rows: %w", err)
	}

	return nil
}

// LoadText builds a container from a user file and an item file written by SaveText
// or WriteRows.
//
// Both dimensions are inferred as the highest id seen in either file plus one,
// so trailing users or items without preferences are not recovered.
func LoadText(ctx context.Context, userPath, itemPath string, codecs Codecs, opts ...Option) (*Container, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	userRows, err := readRowsFile(userPath)
	if err != nil {
		return nil, err
	}
	itemRows, err := readRowsFile(itemPath)
	if err != nil {
		return nil, err
	}

	numUsers := max(len(userRows), maxNeighbor(itemRows))
	numItems := max(len(itemRows), maxNeighbor(userRows))
	userRows = padRows(userRows, numUsers)
	itemRows = padRows(itemRows, numItems)

	cfg.logger.Debug("text loaded",
		"user_path", userPath,
		"item_path", itemPath,
		"users", numUsers,
		"items", numItems,
		"duration", time.Since(start),
	)

	return FromRows(ctx, userRows, itemRows, codecs, opts...)
}

// SaveText writes the user view to userPath and its transposition to itemPath.
//
// The item file is derived from the user view rather than decoded from the item
// view, so the two files always describe the same relation.
func (c *Container) SaveText(userPath, itemPath string) error {
	start := time.Now()

	userRows, err := c.users.decodeAll()
	if err != nil {
		return err
	}
	itemRows, err := transpose(userRows, c.NumItems())
	if err != nil {
		return err
	}

	if err := writeRowsFile(userPath, userRows); err != nil {
		return err
	}
	if err := writeRowsFile(itemPath, itemRows); err != nil {
		return err
	}

	c.logger.Debug("text saved",
		"user_path", userPath,
		"item_path", itemPath,
		"preferences", c.NumPreferences(),
		"duration", time.Since(start),
	)

	return nil
}

func readRowsFile(path string) ([][]uint32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("prefs: %w", err)
	}
	defer f.Close()

	rows, err := ReadRows(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return rows, nil
}

func writeRowsFile(path string, rows [][]uint32) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("prefs: %w", err)
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()

	if err := WriteRows(f, rows); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	return nil
}

// maxNeighbor returns the highest id referenced by rows plus one.
func maxNeighbor(rows [][]uint32) int {
	n := 0
	for _, row := range rows {
		for _, id := range row {
			n = max(n, int(id)+1)
		}
	}

	return n
}

func padRows(rows [][]uint32, n int) [][]uint32 {
	if len(rows) >= n {
		return rows
	}

	return append(rows, make([][]uint32, n-len(rows))...)
}
