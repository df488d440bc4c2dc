package main

import (
	"io"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/syssam/derive/compiler/gen"
)

// cli holds the state shared by the subcommands.
type cli struct {
	out, errOut io.Writer
	log         *slog.Logger

	dir      string
	config   string
	logLevel string
	logJSON  bool
}

// RootCmd returns the derive command tree writing to the given streams.
func RootCmd(out, errOut io.Writer) *cobra.Command {
	c := &cli{out: out, errOut: errOut}
	root := &cobra.Command{
		Use:   "derive",
		Short: "Generate builders and debug functions for Go structs",
		Long: `derive reads the struct declarations marked with //derive:builder or
//derive:debug and writes their generated code next to each source file.`,
		SilenceUsage: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			l, err := newLogger(c.errOut, LogLevel(c.logLevel), c.logJSON)
			if err != nil {
				return err
			}
			c.log = l
			return nil
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	flags := root.PersistentFlags()
	flags.StringVarP(&c.dir, "dir", "C", "", "run as if started in this directory")
	flags.StringVar(&c.config, "config", gen.ConfigFile, "path to the config file, relative to --dir")
	flags.StringVar(&c.logLevel, "log-level", string(InfoLevel), "log level (debug, info, warn, error)")
	flags.BoolVar(&c.logJSON, "log-json", false, "write logs as JSON")

	root.AddCommand(
		generateCmd(c),
		inspectCmd(c),
	)
	return root
}

// loadConfig reads the config file. A missing file is not an error.
func (c *cli) loadConfig() (*gen.Config, error) {
	path := c.config
	if !filepath.IsAbs(path) {
		path = filepath.Join(c.dir, path)
	}
	cfg, err := gen.LoadConfigFile(path)
	if err != nil {
		return nil, err
	}
	cfg.Logger = c.log
	return cfg, nil
}
