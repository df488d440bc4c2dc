// Package compiler loads Go packages and runs the derive code generator on
// the struct declarations they mark.
//
//	err := compiler.Generate(ctx, gen.MustNewConfig(), "./...")
//
// It is the library behind cmd/derive and go:generate directives.
package compiler

import (
	"context"
	"fmt"

	"github.com/syssam/derive/compiler/gen"
	"github.com/syssam/derive/compiler/load"
)

// Load loads the packages matching the patterns and returns their marked
// records. Types listed in the config are selected even without a marker.
func Load(ctx context.Context, c *gen.Config, dir string, patterns ...string) ([]*load.Package, error) {
	if c == nil {
		c = &gen.Config{}
	}
	if len(patterns) == 0 {
		patterns = []string{"."}
	}
	pkgs, err := load.Load(ctx, &load.Config{
		Dir:        dir,
		BuildFlags: c.BuildFlags,
		Types:      c.Types,
		Tests:      true,
	}, patterns...)
	if err != nil {
		return nil, fmt.Errorf("derive: %w", err)
	}
	return pkgs, nil
}

// Generate loads the packages matching the patterns, relative to the
// working directory, and writes their generated files.
func Generate(ctx context.Context, c *gen.Config, patterns ...string) error {
	return GenerateDir(ctx, c, "", patterns...)
}

// GenerateDir is like Generate, with patterns resolved relative to dir.
func GenerateDir(ctx context.Context, c *gen.Config, dir string, patterns ...string) error {
	g, err := gen.NewGenerator(c)
	if err != nil {
		return err
	}
	pkgs, err := Load(ctx, g.Config(), dir, patterns...)
	if err != nil {
		return err
	}
	log := g.Config().Logger
	for _, pkg := range pkgs {
		log.Debug("loaded package", "package", pkg.PkgPath, "files", len(pkg.Files), "types", len(pkg.Records))
	}
	return g.Generate(ctx, pkgs...)
}
