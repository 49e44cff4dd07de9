/*
Package metrics exports preference container statistics to Prometheus.

A Collector reads the statistics of a *prefs.Container at scrape time, so the
values always reflect the container as it is:

	reg := prometheus.NewRegistry()
	reg.MustRegister(metrics.NewCollector("ratings", container))
	http.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

# Available Metrics

All metrics carry the labels container, view (user or item) and codec.

	cpref_codec_bytes_in_total   counter  uncompressed bytes offered to the view codec (4 per id)
	cpref_codec_bytes_out_total  counter  bytes produced by the view codec
	cpref_codec_blocks_total     counter  blocks produced by the view codec
	cpref_rows                   gauge    rows of the view, empty ones included
	cpref_nonempty_rows          gauge    rows holding at least one id
	cpref_preferences            gauge    ids stored in the view
	cpref_block_bytes            gauge    stored block bytes of the view

Codec counters are cumulative per codec instance and only cover compression
done in this process; a container read from a snapshot reports zero for them
while cpref_block_bytes reflects the loaded blocks.
*/
package metrics
