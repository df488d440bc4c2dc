package gen

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/dave/jennifer/jen"
	"golang.org/x/sync/errgroup"
	"golang.org/x/tools/imports"

	"github.com/syssam/derive/compiler/load"
)

// Generator renders the generated file of every source file that declares
// derived types.
type Generator struct {
	cfg *Config
	log *slog.Logger
}

// File is one rendered output file.
type File struct {
	// Source is the file declaring the types, and Path the output file.
	Source, Path string
	// Types are the names of the types generated into the file.
	Types []string
	// Content is the formatted Go source.
	Content []byte
}

// NewGenerator creates a Generator. A nil config uses the defaults.
func NewGenerator(c *Config) (*Generator, error) {
	cfg := &Config{}
	if c != nil {
		*cfg = *c
		cfg.Features = slices.Clone(c.Features)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.defaults()
	return &Generator{cfg: cfg, log: cfg.Logger}, nil
}

// Config returns the effective configuration of the generator.
func (g *Generator) Config() *Config {
	return g.cfg
}

// sourceFile groups the schemas declared in one file.
type sourceFile struct {
	name    string
	schemas []*TypeSchema
	// decls[i][j] holds the output of the j-th enabled feature for schemas[i].
	decls [][][]jen.Code
}

func (sf *sourceFile) empty() bool {
	for _, features := range sf.decls {
		for _, decls := range features {
			if len(decls) > 0 {
				return false
			}
		}
	}
	return true
}

// task generates one feature for one type.
type task struct {
	file    *sourceFile
	schema  int
	feature int
}

// Render generates the files of a package. Generation errors of any type
// abort the whole package; they are returned joined.
func (g *Generator) Render(ctx context.Context, pkg *load.Package) ([]*File, error) {
	var (
		errs  []error
		files []*sourceFile
		index = make(map[string]*sourceFile)
	)
	for _, r := range pkg.Records {
		name := r.File
		if name == "" {
			name = filepath.Join(pkg.Dir, typeFile(r.Name, ""))
		}
		sf, ok := index[name]
		if !ok {
			sf = &sourceFile{name: name}
			index[name] = sf
			files = append(files, sf)
		}
		s, err := NewTypeSchema(r)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		sf.schemas = append(sf.schemas, s)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	var tasks []task
	for _, sf := range files {
		sf.decls = make([][][]jen.Code, len(sf.schemas))
		for i, s := range sf.schemas {
			sf.decls[i] = make([][]jen.Code, len(g.cfg.Features))
			for j, feat := range g.cfg.Features {
				if !s.Derived(feat.Name) {
					continue
				}
				tasks = append(tasks, task{file: sf, schema: i, feature: j})
			}
			for _, name := range s.Derives {
				if !g.cfg.HasFeature(name) {
					g.log.Debug("feature disabled, skipping", "type", s.Name, "feature", name)
				}
			}
		}
	}

	taskErrs := make([]error, len(tasks))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.cfg.Workers)
	for i, t := range tasks {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			s := t.file.schemas[t.schema]
			code, err := g.cfg.Features[t.feature].Generate(g.cfg, s)
			if err != nil {
				taskErrs[i] = err
				return nil
			}
			t.file.decls[t.schema][t.feature] = code
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if err := errors.Join(taskErrs...); err != nil {
		return nil, err
	}

	out := make([]*File, 0, len(files))
	for _, sf := range files {
		if sf.empty() {
			continue
		}
		f, err := g.assemble(pkg, sf)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out = append(out, f)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return out, nil
}

// assemble renders the declarations of one source file in declaration order.
func (g *Generator) assemble(pkg *load.Package, sf *sourceFile) (*File, error) {
	path := OutputFile(sf.name, g.cfg.Suffix)
	f := jen.NewFilePathName(pkg.PkgPath, pkg.Name)
	f.HeaderComment(g.cfg.Header)
	f.ImportName(RuntimePkg, ImportName(RuntimePkg))
	names := make([]string, 0, len(sf.schemas))
	for i, s := range sf.schemas {
		// Keep the package names the source file uses.
		for importPath, alias := range s.Imports() {
			switch {
			case alias == "" || alias == "." || importPath == pkg.PkgPath:
			case alias == ImportName(importPath):
				f.ImportName(importPath, alias)
			default:
				f.ImportAlias(importPath, alias)
			}
		}
		names = append(names, s.Name)
		for _, decls := range sf.decls[i] {
			for _, d := range decls {
				f.Add(d)
				f.Line()
			}
		}
	}
	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return nil, NewGenerationError("render", path, "", err)
	}
	src, err := imports.Process(path, buf.Bytes(), nil)
	if err != nil {
		return nil, NewGenerationError("format", path, "", err)
	}
	return &File{Source: sf.name, Path: path, Types: names, Content: src}, nil
}

// Generate renders and writes the generated files of the given packages,
// and removes the outputs of source files that no longer declare derived
// types. Packages are independent: an error in one does not stop the others.
func (g *Generator) Generate(ctx context.Context, pkgs ...*load.Package) error {
	var errs []error
	for _, pkg := range pkgs {
		if err := g.generate(ctx, pkg); err != nil {
			if ctx.Err() != nil {
				return err
			}
			g.log.Error("generation failed", "package", pkg.PkgPath, "error", err)
			errs = append(errs, fmt.Errorf("package %s: %w", pkg.PkgPath, err))
		}
	}
	return errors.Join(errs...)
}

func (g *Generator) generate(ctx context.Context, pkg *load.Package) error {
	files, err := g.Render(ctx, pkg)
	if err != nil {
		return err
	}
	written := make(map[string]bool, len(files))
	for _, f := range files {
		if err := os.WriteFile(f.Path, f.Content, 0o644); err != nil {
			return NewGenerationError("write", f.Path, "", err)
		}
		written[f.Source] = true
		g.log.Info("generated", "file", f.Path, "types", strings.Join(f.Types, ","))
	}
	for _, src := range pkg.Files {
		if written[src] || IsGenerated(src, g.cfg.Suffix) {
			continue
		}
		removed, err := g.removeStale(OutputFile(src, g.cfg.Suffix))
		if err != nil {
			return err
		}
		if removed {
			g.log.Info("removed stale file", "file", OutputFile(src, g.cfg.Suffix))
		}
	}
	return nil
}

// removeStale deletes a previously generated file. Files that do not start
// with the generated header are left alone.
func (g *Generator) removeStale(path string) (bool, error) {
	buf, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, NewGenerationError("cleanup", path, "", err)
	}
	if !bytes.HasPrefix(buf, []byte("// "+g.cfg.Header)) {
		return false, nil
	}
	if err := os.Remove(path); err != nil {
		return false, NewGenerationError("cleanup", path, "", err)
	}
	return true, nil
}

// Generate is the convenience function to generate the files of the given
// packages with the given config.
func Generate(ctx context.Context, c *Config, pkgs ...*load.Package) error {
	g, err := NewGenerator(c)
	if err != nil {
		return err
	}
	return g.Generate(ctx, pkgs...)
}
