package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/arloliu/cpref"
	"github.com/arloliu/cpref/metrics"
	"github.com/arloliu/cpref/prefs"
)

type statsOptions struct {
	*rootOptions

	prometheus bool
	verify     bool
}

func newStatsCmd(root *rootOptions) *cobra.Command {
	opts := &statsOptions{rootOptions: root}

	cmd := &cobra.Command{
		Use:   "stats <snapshot>",
		Short: "Print storage statistics of a snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, args[0])
		},
	}
	cmd.Flags().BoolVar(&opts.prometheus, "prometheus", false, "print Prometheus text exposition instead of a table")
	cmd.Flags().BoolVar(&opts.verify, "verify", false, "decode every row and check that both views agree")

	return cmd
}

func (o *statsOptions) run(cmd *cobra.Command, path string) error {
	c, err := cpref.Open(path, prefs.WithLogger(o.logger(cmd)))
	if err != nil {
		return err
	}

	if o.verify {
		if err := c.Verify(); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if o.prometheus {
		reg := prometheus.NewRegistry()
		if err := reg.Register(metrics.NewCollector(path, c)); err != nil {
			return err
		}
		families, err := reg.Gather()
		if err != nil {
			return err
		}
		for _, mf := range families {
			if _, err := expfmt.MetricFamilyToText(out, mf); err != nil {
				return err
			}
		}

		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "VIEW\tCODEC\tROWS\tNON-EMPTY\tPREFERENCES\tBYTES\tBITS/PREF")
	stats := c.Stats()
	for _, vs := range []prefs.ViewStats{stats.User, stats.Item} {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%d\t%.2f\n",
			vs.View, vs.Codec, vs.Rows, vs.NonEmpty, vs.Preferences, vs.BlockBytes, vs.BitsPerPreference())
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if o.verify {
		fmt.Fprintln(out, "verified: both views agree")
	}

	return nil
}
