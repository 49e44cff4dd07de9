package main

import (
	"log/slog"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	verbose bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "cpref",
		Short: "Compressed user-item preference containers",
		Long: `cpref stores a user-item preference relation as two compressed views
and converts it between tab-separated text files and binary snapshots.

Examples:
  cpref build --users users.tsv --items items.tsv --out ratings.cpref
  cpref stats ratings.cpref
  cpref convert ratings.cpref --users users.tsv --items items.tsv
  cpref codecs`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log debug output to stderr")

	cmd.AddCommand(
		newBuildCmd(opts),
		newStatsCmd(opts),
		newConvertCmd(opts),
		newCodecsCmd(),
	)

	return cmd
}

func (o *rootOptions) logger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelInfo
	if o.verbose {
		level = slog.LevelDebug
	}

	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}
