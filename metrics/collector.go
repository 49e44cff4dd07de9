package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/arloliu/cpref/prefs"
)

const namespace = "cpref"

var labels = []string{"container", "view", "codec"}

// Collector is a prometheus.Collector for one container.
type Collector struct {
	name      string
	container *prefs.Container

	bytesIn    *prometheus.Desc
	bytesOut   *prometheus.Desc
	blocks     *prometheus.Desc
	rows       *prometheus.Desc
	nonEmpty   *prometheus.Desc
	prefs      *prometheus.Desc
	blockBytes *prometheus.Desc
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector creates a collector reporting c under the container label name.
func NewCollector(name string, c *prefs.Container) *Collector {
	desc := func(metric, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "", metric), help, labels, nil)
	}

	return &Collector{
		name:       name,
		container:  c,
		bytesIn:    desc("codec_bytes_in_total", "Uncompressed bytes passed to the view codec, counted as 4 bytes per id."),
		bytesOut:   desc("codec_bytes_out_total", "Compressed bytes produced by the view codec."),
		blocks:     desc("codec_blocks_total", "Blocks produced by the view codec."),
		rows:       desc("rows", "Rows of the view, including empty rows."),
		nonEmpty:   desc("nonempty_rows", "Rows of the view holding at least one id."),
		prefs:      desc("preferences", "Ids stored in the view."),
		blockBytes: desc("block_bytes", "Stored block bytes of the view."),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.bytesIn
	ch <- c.bytesOut
	ch <- c.blocks
	ch <- c.rows
	ch <- c.nonEmpty
	ch <- c.prefs
	ch <- c.blockBytes
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	stats := c.container.Stats()
	for _, vs := range []prefs.ViewStats{stats.User, stats.Item} {
		values := []string{c.name, vs.View.String(), vs.Codec.String()}

		ch <- prometheus.MustNewConstMetric(c.bytesIn, prometheus.CounterValue, float64(vs.CodecStats.BytesIn), values...)
		ch <- prometheus.MustNewConstMetric(c.bytesOut, prometheus.CounterValue, float64(vs.CodecStats.BytesOut), values...)
		ch <- prometheus.MustNewConstMetric(c.blocks, prometheus.CounterValue, float64(vs.CodecStats.Blocks), values...)
		ch <- prometheus.MustNewConstMetric(c.rows, prometheus.GaugeValue, float64(vs.Rows), values...)
		ch <- prometheus.MustNewConstMetric(c.nonEmpty, prometheus.GaugeValue, float64(vs.NonEmpty), values...)
		ch <- prometheus.MustNewConstMetric(c.prefs, prometheus.GaugeValue, float64(vs.Preferences), values...)
		ch <- prometheus.MustNewConstMetric(c.blockBytes, prometheus.GaugeValue, float64(vs.BlockBytes), values...)
	}
}
