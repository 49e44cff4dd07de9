package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/cpref/codec"
	"github.com/arloliu/cpref/format"
	"github.com/arloliu/cpref/prefs"
)

func toyContainer(t *testing.T) *prefs.Container {
	t.Helper()

	pairs := []prefs.Pair{
		{User: 0, Item: 1}, {User: 0, Item: 3},
		{User: 1, Item: 0}, {User: 1, Item: 1}, {User: 1, Item: 3},
		{User: 2, Item: 3},
	}
	codecs := prefs.Codecs{
		User: codec.MustNew(format.CodecGamma),
		Item: codec.MustNew(format.CodecRice),
	}
	c, err := prefs.FromPairs(t.Context(), 3, 4, pairs, codecs)
	require.NoError(t, err)

	return c
}

func TestCollector_Describe(t *testing.T) {
	c := NewCollector("toy", toyContainer(t))

	ch := make(chan *prometheus.Desc, 16)
	c.Describe(ch)
	close(ch)

	count := 0
	for range ch {
		count++
	}
	require.Equal(t, 7, count)
}

func TestCollector_Gauges(t *testing.T) {
	c := NewCollector("toy", toyContainer(t))

	expected := `
# HELP cpref_preferences Ids stored in the view.
# TYPE cpref_preferences gauge
cpref_preferences{codec="gamma",container="toy",view="user"} 6
cpref_preferences{codec="rice",container="toy",view="item"} 6
# HELP cpref_rows Rows of the view, including empty rows.
# TYPE cpref_rows gauge
cpref_rows{codec="gamma",container="toy",view="user"} 3
cpref_rows{codec="rice",container="toy",view="item"} 4
# HELP cpref_nonempty_rows Rows of the view holding at least one id.
# TYPE cpref_nonempty_rows gauge
cpref_nonempty_rows{codec="gamma",container="toy",view="user"} 3
cpref_nonempty_rows{codec="rice",container="toy",view="item"} 3
`
	err := testutil.CollectAndCompare(c, strings.NewReader(expected),
		"cpref_preferences", "cpref_rows", "cpref_nonempty_rows")
	require.NoError(t, err)
}

func TestCollector_CodecCounters(t *testing.T) {
	container := toyContainer(t)
	c := NewCollector("toy", container)

	reg := prometheus.NewPedanticRegistry()
	require.NoError(t, reg.Register(c))
	require.Equal(t, 14, testutil.CollectAndCount(c))

	stats := container.Stats()
	expected := `
# HELP cpref_codec_bytes_in_total Uncompressed bytes passed to the view codec, counted as 4 bytes per id.
# TYPE cpref_codec_bytes_in_total counter
cpref_codec_bytes_in_total{codec="gamma",container="toy",view="user"} 24
cpref_codec_bytes_in_total{codec="rice",container="toy",view="item"} 24
`
	require.NoError(t, testutil.CollectAndCompare(c, strings.NewReader(expected), "cpref_codec_bytes_in_total"))
	require.Equal(t, stats.User.BlockBytes, stats.User.CodecStats.BytesOut)
}
