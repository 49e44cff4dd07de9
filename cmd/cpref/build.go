package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arloliu/cpref"
	"github.com/arloliu/cpref/prefs"
)

type buildOptions struct {
	*rootOptions

	configPath string
	usersPath  string
	itemsPath  string
	outPath    string
	cfg        Config
}

func newBuildCmd(root *rootOptions) *cobra.Command {
	opts := &buildOptions{rootOptions: root, cfg: defaultConfig()}

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build a snapshot from user and item text files",
		Long: `Build compresses the two tab-separated views of a preference relation
and writes them as a binary snapshot.

Each line of a view file is rowId<TAB>id1<TAB>...<TAB>idN with ascending ids.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.run(cmd)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "YAML config file")
	flags.StringVar(&opts.usersPath, "users", "", "user view text file")
	flags.StringVar(&opts.itemsPath, "items", "", "item view text file")
	flags.StringVarP(&opts.outPath, "out", "o", "", "snapshot output path")
	flags.StringVar(&opts.cfg.UserCodec, "user-codec", opts.cfg.UserCodec, "codec of the user view")
	flags.StringVar(&opts.cfg.ItemCodec, "item-codec", opts.cfg.ItemCodec, "codec of the item view")
	flags.IntVar(&opts.cfg.FixedWidth, "fixed-width", opts.cfg.FixedWidth, "bits per value of the fixed codec")
	flags.IntVar(&opts.cfg.ZetaK, "zeta-k", opts.cfg.ZetaK, "shrinking factor of the zeta codec")
	flags.IntVar(&opts.cfg.Workers, "workers", opts.cfg.Workers, "compression goroutines (0 = GOMAXPROCS)")
	flags.StringVar(&opts.cfg.SnapshotCompression, "compression", opts.cfg.SnapshotCompression, "snapshot compression: none, zstd, s2, lz4")
	_ = cmd.MarkFlagRequired("users")
	_ = cmd.MarkFlagRequired("items")
	_ = cmd.MarkFlagRequired("out")

	return cmd
}

// resolveConfig layers explicitly set flags over the config file.
func (o *buildOptions) resolveConfig(cmd *cobra.Command) (Config, error) {
	if o.configPath == "" {
		return o.cfg, o.cfg.validate()
	}

	cfg, err := loadConfig(o.configPath)
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("user-codec") {
		cfg.UserCodec = o.cfg.UserCodec
	}
	if flags.Changed("item-codec") {
		cfg.ItemCodec = o.cfg.ItemCodec
	}
	if flags.Changed("fixed-width") {
		cfg.FixedWidth = o.cfg.FixedWidth
	}
	if flags.Changed("zeta-k") {
		cfg.ZetaK = o.cfg.ZetaK
	}
	if flags.Changed("workers") {
		cfg.Workers = o.cfg.Workers
	}
	if flags.Changed("compression") {
		cfg.SnapshotCompression = o.cfg.SnapshotCompression
	}

	return cfg, cfg.validate()
}

func (o *buildOptions) run(cmd *cobra.Command) error {
	cfg, err := o.resolveConfig(cmd)
	if err != nil {
		return err
	}
	codecs, err := cfg.codecs()
	if err != nil {
		return err
	}

	logger := o.logger(cmd)
	opts := append(cfg.prefsOptions(), prefs.WithLogger(logger))

	c, err := prefs.LoadText(cmd.Context(), o.usersPath, o.itemsPath, codecs, opts...)
	if err != nil {
		return err
	}

	if err := cpref.Save(c, o.outPath); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s: %d users, %d items, %d preferences, %d block bytes\n",
		o.outPath, c.NumUsers(), c.NumItems(), c.NumPreferences(), c.CompressedBytes())

	return nil
}
