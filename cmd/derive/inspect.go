package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/syssam/derive/compiler"
	"github.com/syssam/derive/compiler/gen"
	"github.com/syssam/derive/compiler/load"
)

func inspectCmd(c *cli) *cobra.Command {
	var (
		format string
		types  []string
		check  bool
	)
	cmd := &cobra.Command{
		Use:   "inspect [packages]",
		Short: "Print the type declarations derive would generate code for",
		Example: `  derive inspect ./...
  derive inspect --format yaml --type Point .
  derive inspect --check ./...`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if err := cfg.Apply(gen.WithTypes(types...)); err != nil {
				return err
			}
			pkgs, err := compiler.Load(cmd.Context(), cfg, c.dir, args...)
			if err != nil {
				return err
			}
			if check {
				return checkPackages(cmd, cfg, pkgs)
			}
			out, err := encodeRecords(format, pkgs)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
	cmd.Flags().StringVar(&format, "format", "json", "output format (json, yaml)")
	cmd.Flags().StringSliceVarP(&types, "type", "t", nil, "also include these type names")
	cmd.Flags().BoolVar(&check, "check", false, "render the generated files without writing them and report errors")
	return cmd
}

// encodeRecords encodes packages as JSON, or as YAML with the same keys.
func encodeRecords(format string, pkgs []*load.Package) ([]byte, error) {
	buf, err := load.MarshalRecords(pkgs...)
	if err != nil {
		return nil, err
	}
	switch format {
	case "json":
		return append(buf, '\n'), nil
	case "yaml":
		// JSON is valid YAML: decoding it into a node keeps key order.
		var node yaml.Node
		if err := yaml.Unmarshal(buf, &node); err != nil {
			return nil, fmt.Errorf("convert records: %w", err)
		}
		blockStyle(&node)
		return yaml.Marshal(&node)
	default:
		return nil, fmt.Errorf("unknown format %q, want json or yaml", format)
	}
}

// blockStyle drops the flow and quoting styles a node inherited from JSON.
func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		blockStyle(c)
	}
}

// checkPackages renders every package and prints the files that would be
// written.
func checkPackages(cmd *cobra.Command, cfg *gen.Config, pkgs []*load.Package) error {
	g, err := gen.NewGenerator(cfg)
	if err != nil {
		return err
	}
	var errs []error
	for _, pkg := range pkgs {
		files, err := g.Render(cmd.Context(), pkg)
		if err != nil {
			errs = append(errs, fmt.Errorf("package %s: %w", pkg.PkgPath, err))
			continue
		}
		for _, f := range files {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d types\n", f.Path, len(f.Types))
		}
	}
	return errors.Join(errs...)
}
