package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/syssam/derive/compiler"
	"github.com/syssam/derive/compiler/gen"
)

type generateOptions struct {
	types    []string
	features []string
	suffix   string
	workers  int
	tags     []string
	watch    bool
}

func generateCmd(c *cli) *cobra.Command {
	var opts generateOptions
	cmd := &cobra.Command{
		Use:   "generate [packages]",
		Short: "Generate the code of the marked types",
		Example: `  derive generate ./...
  derive generate --type Point --feature debug .
  derive generate --watch ./internal/...`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if err := opts.apply(cmd, cfg); err != nil {
				return err
			}
			if opts.watch {
				return c.watch(cmd.Context(), cfg, args)
			}
			return compiler.GenerateDir(cmd.Context(), cfg, c.dir, args...)
		},
	}
	flags := cmd.Flags()
	flags.StringSliceVarP(&opts.types, "type", "t", nil, "also generate for these type names")
	flags.StringSliceVarP(&opts.features, "feature", "f", nil, "features to run (builder, debug); default all")
	flags.StringVar(&opts.suffix, "suffix", "", "suffix of generated file names (default \"_derive\")")
	flags.IntVar(&opts.workers, "workers", 0, "number of parallel generators (default GOMAXPROCS)")
	flags.StringSliceVar(&opts.tags, "tags", nil, "build tags used to load packages")
	flags.BoolVarP(&opts.watch, "watch", "w", false, "regenerate when Go files change")
	return cmd
}

// apply merges the flags that were set on the command line into cfg.
// Flags win over the config file.
func (o *generateOptions) apply(cmd *cobra.Command, cfg *gen.Config) error {
	var options []gen.Option
	flags := cmd.Flags()
	if flags.Changed("type") {
		options = append(options, gen.WithTypes(o.types...))
	}
	if flags.Changed("feature") {
		cfg.Features = nil
		options = append(options, gen.WithFeatureNames(o.features...))
	}
	if flags.Changed("suffix") {
		options = append(options, gen.WithSuffix(o.suffix))
	}
	if flags.Changed("workers") {
		options = append(options, gen.WithWorkers(o.workers))
	}
	if flags.Changed("tags") {
		options = append(options, gen.WithBuildFlags("-tags="+strings.Join(o.tags, ",")))
	}
	return cfg.ApplyAll(options...)
}
