package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arloliu/cpref"
	"github.com/arloliu/cpref/prefs"
)

type convertOptions struct {
	*rootOptions

	usersPath string
	itemsPath string
}

func newConvertCmd(root *rootOptions) *cobra.Command {
	opts := &convertOptions{rootOptions: root}

	cmd := &cobra.Command{
		Use:   "convert <snapshot>",
		Short: "Write the views of a snapshot as text files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, args[0])
		},
	}
	cmd.Flags().StringVar(&opts.usersPath, "users", "", "user view output file")
	cmd.Flags().StringVar(&opts.itemsPath, "items", "", "item view output file")
	_ = cmd.MarkFlagRequired("users")
	_ = cmd.MarkFlagRequired("items")

	return cmd
}

func (o *convertOptions) run(cmd *cobra.Command, path string) error {
	c, err := cpref.Open(path, prefs.WithLogger(o.logger(cmd)))
	if err != nil {
		return err
	}
	if err := c.SaveText(o.usersPath, o.itemsPath); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s and %s: %d preferences\n", o.usersPath, o.itemsPath, c.NumPreferences())

	return nil
}
