// Package load reads Go packages and extracts the type declarations that
// are marked for code generation, keeping them as plain text records.
package load

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"go/ast"
	"go/format"
	"go/parser"
	"go/token"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/tools/go/packages"
)

// MarkerPrefix starts a derive directive in the doc comment of a type.
const MarkerPrefix = "//derive:"

// Config configures package loading.
type Config struct {
	// Dir is the directory patterns are resolved from.
	Dir string
	// BuildFlags are passed to the go/packages driver.
	BuildFlags []string
	// Types selects types by name in addition to the //derive: markers.
	Types []string
	// Tests includes the test files of the loaded packages.
	Tests bool
}

// Load loads the packages matching the patterns and returns their
// marked records. Packages without records are returned as well, so
// callers can clean up stale generated files.
func Load(ctx context.Context, cfg *Config, patterns ...string) ([]*Package, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	if len(patterns) == 0 {
		patterns = []string{"."}
	}
	pcfg := &packages.Config{
		Context:    ctx,
		Dir:        cfg.Dir,
		BuildFlags: cfg.BuildFlags,
		Tests:      cfg.Tests,
		Mode:       packages.NeedName | packages.NeedFiles | packages.NeedSyntax,
	}
	pkgs, err := packages.Load(pcfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("load: loading %s: %w", strings.Join(patterns, " "), err)
	}
	var (
		errs []error
		out  []*Package
		seen = make(map[string]bool)
	)
	for _, p := range pkgs {
		for _, e := range p.Errors {
			errs = append(errs, fmt.Errorf("load: %s", e))
		}
		// The synthesized test main lives in the build cache.
		if strings.HasSuffix(p.PkgPath, ".test") {
			continue
		}
		// With Tests enabled, the same files show up in the package and
		// its test variant. Keep the first occurrence of each file.
		lp := &Package{Name: p.Name, PkgPath: p.PkgPath}
		for _, file := range p.Syntax {
			filename := p.Fset.Position(file.Pos()).Filename
			if seen[filename] {
				continue
			}
			seen[filename] = true
			if lp.Dir == "" {
				lp.Dir = filepath.Dir(filename)
			}
			lp.Files = append(lp.Files, filename)
			records, err := fileRecords(p.Fset, file, filename, p.PkgPath, cfg.Types)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			lp.Records = append(lp.Records, records...)
		}
		if len(lp.Files) > 0 {
			out = append(out, lp)
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return out, nil
}

// ParseFile parses a single source file and returns its package with
// the marked records. src is passed to go/parser.ParseFile as is.
func ParseFile(pkgPath, filename string, src any, types ...string) (*Package, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, filename, src, parser.ParseComments|parser.SkipObjectResolution)
	if err != nil {
		return nil, fmt.Errorf("load: parsing %s: %w", filename, err)
	}
	records, err := fileRecords(fset, file, filename, pkgPath, types)
	if err != nil {
		return nil, err
	}
	return &Package{
		Name:    file.Name.Name,
		PkgPath: pkgPath,
		Dir:     filepath.Dir(filename),
		Files:   []string{filename},
		Records: records,
	}, nil
}

// fileRecords collects the marked type declarations of one file.
func fileRecords(fset *token.FileSet, file *ast.File, filename, pkgPath string, types []string) ([]*Record, error) {
	imports := make([]*Import, 0, len(file.Imports))
	for _, spec := range file.Imports {
		path, err := strconv.Unquote(spec.Path.Value)
		if err != nil {
			return nil, fmt.Errorf("load: %s: invalid import %s", fset.Position(spec.Pos()), spec.Path.Value)
		}
		imp := &Import{Path: path}
		if spec.Name != nil {
			imp.Name = spec.Name.Name
		}
		imports = append(imports, imp)
	}
	var records []*Record
	for _, decl := range file.Decls {
		gd, ok := decl.(*ast.GenDecl)
		if !ok || gd.Tok != token.TYPE {
			continue
		}
		for _, spec := range gd.Specs {
			ts := spec.(*ast.TypeSpec)
			doc := ts.Doc
			if doc == nil && len(gd.Specs) == 1 {
				doc = gd.Doc
			}
			markers := docMarkers(fset, doc)
			if len(markers) == 0 && !slices.Contains(types, ts.Name.Name) {
				continue
			}
			r, err := newRecord(fset, ts, filename)
			if err != nil {
				return nil, err
			}
			r.Markers = markers
			r.Imports = imports
			r.Package = file.Name.Name
			r.PkgPath = pkgPath
			records = append(records, r)
		}
	}
	return records, nil
}

// newRecord converts a type spec into a Record.
func newRecord(fset *token.FileSet, ts *ast.TypeSpec, filename string) (*Record, error) {
	r := &Record{
		Name: ts.Name.Name,
		Pos:  fset.Position(ts.Name.Pos()),
		File: filename,
	}
	if ts.TypeParams != nil {
		for _, field := range ts.TypeParams.List {
			constraint, err := exprString(fset, field.Type)
			if err != nil {
				return nil, err
			}
			for _, name := range field.Names {
				r.TypeParams = append(r.TypeParams, &TypeParam{Name: name.Name, Constraint: constraint})
			}
		}
	}
	st, ok := ts.Type.(*ast.StructType)
	switch {
	case ts.Assign.IsValid():
		r.Kind = KindAlias
	case !ok:
		r.Kind = KindOther
	default:
		r.Kind = KindStruct
	}
	if !ok || r.Kind == KindAlias {
		underlying, err := exprString(fset, ts.Type)
		if err != nil {
			return nil, err
		}
		r.Underlying = underlying
		return r, nil
	}
	for _, field := range st.Fields.List {
		typ, err := exprString(fset, field.Type)
		if err != nil {
			return nil, err
		}
		var tag string
		var tagPos token.Position
		if field.Tag != nil {
			if tag, err = strconv.Unquote(field.Tag.Value); err != nil {
				return nil, fmt.Errorf("load: %s: invalid struct tag %s", fset.Position(field.Tag.Pos()), field.Tag.Value)
			}
			tagPos = fset.Position(field.Tag.Pos())
		}
		if len(field.Names) == 0 {
			r.Fields = append(r.Fields, &Field{
				Name:     typ,
				Type:     typ,
				Tag:      tag,
				Embedded: true,
				Pos:      fset.Position(field.Type.Pos()),
				TagPos:   tagPos,
			})
			continue
		}
		for _, name := range field.Names {
			r.Fields = append(r.Fields, &Field{
				Name:   name.Name,
				Type:   typ,
				Tag:    tag,
				Pos:    fset.Position(name.Pos()),
				TagPos: tagPos,
			})
		}
	}
	return r, nil
}

// docMarkers returns the //derive: lines of a doc comment.
func docMarkers(fset *token.FileSet, doc *ast.CommentGroup) []*Marker {
	if doc == nil {
		return nil
	}
	var markers []*Marker
	for _, c := range doc.List {
		if v, ok := strings.CutPrefix(c.Text, MarkerPrefix); ok {
			markers = append(markers, &Marker{
				Value: strings.TrimSpace(v),
				Pos:   fset.Position(c.Pos()),
			})
		}
	}
	return markers
}

// exprString prints an expression the way gofmt would.
func exprString(fset *token.FileSet, expr ast.Expr) (string, error) {
	var b bytes.Buffer
	if err := format.Node(&b, fset, expr); err != nil {
		return "", fmt.Errorf("load: %s: printing expression: %w", fset.Position(expr.Pos()), err)
	}
	return b.String(), nil
}
