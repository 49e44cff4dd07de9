package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/arloliu/cpref/codec"
	"github.com/arloliu/cpref/format"
)

func newCodecsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "codecs",
		Short: "List the available codecs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tSELF-INTEGRATING")
			for _, ct := range format.CodecTypes() {
				c, err := codec.New(ct)
				if err != nil {
					return err
				}
				fmt.Fprintf(tw, "%s\t%t\n", ct, c.SelfIntegrating())
			}

			return tw.Flush()
		},
	}
}
