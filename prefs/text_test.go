package prefs

import (
	"bytes"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/cpref/codec"
	"github.com/arloliu/cpref/format"
)

func TestReadRows(t *testing.T) {
	input := "0\t1\t3\n" +
		"\n" +
		"2\t3\r\n" +
		"1\t0\t1\t3\n" +
		"5\n"

	rows, err := ReadRows(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 6)
	require.Equal(t, []uint32{1, 3}, rows[0])
	require.Equal(t, []uint32{0, 1, 3}, rows[1])
	require.Equal(t, []uint32{3}, rows[2])
	require.Empty(t, rows[3])
	require.Empty(t, rows[5])
}

func TestReadRows_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"non-numeric row", "x\t1\n"},
		{"non-numeric id", "0\t1\tfoo\n"},
		{"negative id", "0\t-1\n"},
		{"id too large", "0\t4294967296\n"},
		{"empty field", "0\t\t1\n"},
		{"duplicate row", "0\t1\n0\t2\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadRows(strings.NewReader(tt.input))
			require.ErrorIs(t, err, ErrMalformedLine)
		})
	}
}

func TestWriteRows(t *testing.T) {
	var buf bytes.Buffer
	err := WriteRows(&buf, [][]uint32{{1, 3}, nil, {4294967295}, {}})
	require.NoError(t, err)
	require.Equal(t, "0\t1\t3\n2\t4294967295\n", buf.String())

	rows, err := ReadRows(&buf)
	require.NoError(t, err)
	require.Equal(t, [][]uint32{{1, 3}, nil, {4294967295}}, rows)
}

func pairSet(t *testing.T, c *Container) []Pair {
	t.Helper()

	var pairs []Pair
	for u := range c.UsersWithEntries() {
		for i := range c.UserEntries(u) {
			pairs = append(pairs, Pair{User: u, Item: i})
		}
	}

	return pairs
}

func TestSaveLoadText_ToyRelation(t *testing.T) {
	saveCodecs := []Codecs{
		DefaultCodecs(),
		codecsFor(format.CodecGamma),
		{User: codec.MustNew(format.CodecSimple9), Item: codec.MustNew(format.CodecRice)},
	}
	loadCodecs := []Codecs{
		codecsFor(format.CodecIntegratedFORVB),
		codecsFor(format.CodecZeta),
		codecsFor(format.CodecRaw),
	}

	for k := range saveCodecs {
		dir := t.TempDir()
		userPath := filepath.Join(dir, "users.tsv")
		itemPath := filepath.Join(dir, "items.tsv")

		orig, err := FromPairs(t.Context(), 3, 4, toyPairs(), saveCodecs[k])
		require.NoError(t, err)
		require.NoError(t, orig.SaveText(userPath, itemPath))

		loaded, err := LoadText(t.Context(), userPath, itemPath, loadCodecs[k])
		require.NoError(t, err)

		require.Equal(t, toyPairs(), pairSet(t, loaded))
		require.Equal(t, 3, loaded.NumUsers())
		require.Equal(t, 4, loaded.NumItems())
		require.NoError(t, loaded.Verify())
	}
}

func TestSaveText_Files(t *testing.T) {
	dir := t.TempDir()
	userPath := filepath.Join(dir, "users.tsv")
	itemPath := filepath.Join(dir, "items.tsv")

	c, err := FromPairs(t.Context(), 3, 4, toyPairs(), DefaultCodecs())
	require.NoError(t, err)
	require.NoError(t, c.SaveText(userPath, itemPath))

	users, err := os.ReadFile(userPath)
	require.NoError(t, err)
	require.Equal(t, "0\t1\t3\n1\t0\t1\t3\n2\t3\n", string(users))

	items, err := os.ReadFile(itemPath)
	require.NoError(t, err)
	require.Equal(t, "0\t1\n1\t0\t1\n3\t0\t1\t2\n", string(items))
}

func TestLoadText_InfersDimensions(t *testing.T) {
	dir := t.TempDir()
	userPath := filepath.Join(dir, "users.tsv")
	itemPath := filepath.Join(dir, "items.tsv")

	// user 4 only appears in the item file
	require.NoError(t, os.WriteFile(userPath, []byte("0\t7\n4\t2\n"), 0o600))
	require.NoError(t, os.WriteFile(itemPath, []byte("2\t4\n7\t0\n"), 0o600))

	c, err := LoadText(t.Context(), userPath, itemPath, DefaultCodecs())
	require.NoError(t, err)
	require.Equal(t, 5, c.NumUsers())
	require.Equal(t, 8, c.NumItems())
	require.Equal(t, []uint32{0, 4}, slices.Collect(c.UsersWithEntries()))
}

func TestLoadText_Errors(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.tsv")
	bad := filepath.Join(dir, "bad.tsv")
	require.NoError(t, os.WriteFile(good, []byte("0\t0\n"), 0o600))
	require.NoError(t, os.WriteFile(bad, []byte("0\tzero\n"), 0o600))

	_, err := LoadText(t.Context(), filepath.Join(dir, "missing.tsv"), good, DefaultCodecs())
	require.ErrorIs(t, err, os.ErrNotExist)

	_, err = LoadText(t.Context(), good, bad, DefaultCodecs())
	require.ErrorIs(t, err, ErrMalformedLine)
}

func TestLoadText_ViewsMustAgree(t *testing.T) {
	dir := t.TempDir()
	users := filepath.Join(dir, "users.tsv")
	items := filepath.Join(dir, "items.tsv")
	// user 0 likes item 1, but the item file says item 0 is liked by user 0
	require.NoError(t, os.WriteFile(users, []byte("0\t1\n1\t0\n"), 0o600))
	require.NoError(t, os.WriteFile(items, []byte("0\t0\n1\t1\n"), 0o600))

	_, err := LoadText(t.Context(), users, items, DefaultCodecs())
	require.ErrorIs(t, err, ErrTransposeMismatch)
}
