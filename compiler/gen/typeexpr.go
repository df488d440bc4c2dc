package gen

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/format"
	"go/parser"
	"go/token"
	"path"
	"strings"

	"github.com/dave/jennifer/jen"

	"github.com/syssam/derive/compiler/load"
)

// ExprKind is the node kind of a TypeExpr.
type ExprKind int

// TypeExpr node kinds.
const (
	ExprIdent ExprKind = iota
	ExprPointer
	ExprSlice
	ExprArray
	ExprMap
	ExprChan
	// ExprRaw holds types that are printed as written (func, struct,
	// interface and union types).
	ExprRaw
)

// TypeExpr is a structural type expression tree.
type TypeExpr struct {
	Kind ExprKind
	// Name of an identifier.
	Name string
	// Pkg is the import path of a qualified identifier, and Alias the
	// package name it was written with.
	Pkg, Alias string
	// Args are the type arguments of a generic instantiation.
	Args []*TypeExpr
	// Elem is the element of pointers, slices, arrays, maps and channels.
	Elem *TypeExpr
	// Key of map types.
	Key *TypeExpr
	// Len is the length expression of arrays.
	Len string
	// Dir is the direction of channel types.
	Dir ast.ChanDir
	// Text is the source text of raw expressions.
	Text string

	refs []string
}

// ParseTypeExpr parses the source text of a type. Package selectors are
// resolved against the given imports.
func ParseTypeExpr(src string, imports []*load.Import) (*TypeExpr, error) {
	fset := token.NewFileSet()
	expr, err := parser.ParseExprFrom(fset, "", src, 0)
	if err != nil {
		return nil, fmt.Errorf("parse type %q: %w", src, err)
	}
	return (&converter{fset: fset, imports: imports}).convert(expr)
}

// MustParseTypeExpr is like ParseTypeExpr but panics on error.
func MustParseTypeExpr(src string, imports ...*load.Import) *TypeExpr {
	t, err := ParseTypeExpr(src, imports)
	if err != nil {
		panic(err)
	}
	return t
}

// converter turns an ast.Expr into a TypeExpr.
type converter struct {
	fset    *token.FileSet
	imports []*load.Import
}

func (c *converter) convert(expr ast.Expr) (*TypeExpr, error) {
	switch x := expr.(type) {
	case *ast.ParenExpr:
		return c.convert(x.X)
	case *ast.Ident:
		return &TypeExpr{Kind: ExprIdent, Name: x.Name}, nil
	case *ast.SelectorExpr:
		pkg, ok := x.X.(*ast.Ident)
		if !ok {
			return nil, fmt.Errorf("unexpected selector %s", c.text(x))
		}
		imp := resolveImport(pkg.Name, c.imports)
		if imp == "" {
			return nil, fmt.Errorf("unknown package %q in %s", pkg.Name, c.text(x))
		}
		return &TypeExpr{Kind: ExprIdent, Name: x.Sel.Name, Pkg: imp, Alias: pkg.Name}, nil
	case *ast.IndexExpr:
		return c.instantiate(x.X, []ast.Expr{x.Index})
	case *ast.IndexListExpr:
		return c.instantiate(x.X, x.Indices)
	case *ast.StarExpr:
		elem, err := c.convert(x.X)
		if err != nil {
			return nil, err
		}
		return &TypeExpr{Kind: ExprPointer, Elem: elem}, nil
	case *ast.ArrayType:
		elem, err := c.convert(x.Elt)
		if err != nil {
			return nil, err
		}
		if x.Len == nil {
			return &TypeExpr{Kind: ExprSlice, Elem: elem}, nil
		}
		return &TypeExpr{Kind: ExprArray, Elem: elem, Len: c.text(x.Len), refs: identRefs(x.Len)}, nil
	case *ast.MapType:
		key, err := c.convert(x.Key)
		if err != nil {
			return nil, err
		}
		elem, err := c.convert(x.Value)
		if err != nil {
			return nil, err
		}
		return &TypeExpr{Kind: ExprMap, Key: key, Elem: elem}, nil
	case *ast.ChanType:
		elem, err := c.convert(x.Value)
		if err != nil {
			return nil, err
		}
		return &TypeExpr{Kind: ExprChan, Dir: x.Dir, Elem: elem}, nil
	case *ast.FuncType, *ast.StructType, *ast.InterfaceType, *ast.BinaryExpr, *ast.UnaryExpr:
		return &TypeExpr{Kind: ExprRaw, Text: c.text(x), refs: identRefs(x)}, nil
	default:
		return nil, fmt.Errorf("unsupported type expression %s", c.text(expr))
	}
}

func (c *converter) instantiate(base ast.Expr, indices []ast.Expr) (*TypeExpr, error) {
	t, err := c.convert(base)
	if err != nil {
		return nil, err
	}
	if t.Kind != ExprIdent || len(t.Args) > 0 {
		return nil, fmt.Errorf("unexpected instantiation of %s", c.text(base))
	}
	for _, idx := range indices {
		arg, err := c.convert(idx)
		if err != nil {
			return nil, err
		}
		t.Args = append(t.Args, arg)
	}
	return t, nil
}

// resolveImport returns the import path a package name refers to.
func resolveImport(name string, imports []*load.Import) string {
	for _, imp := range imports {
		if imp.Name == name {
			return imp.Path
		}
	}
	for _, imp := range imports {
		if imp.Name == "" && ImportName(imp.Path) == name {
			return imp.Path
		}
	}
	return ""
}

// ImportName guesses the package name of an import path the way
// goimports does: the last element, skipping major version suffixes
// and trimming common "go-" affixes.
func ImportName(importPath string) string {
	base := path.Base(importPath)
	if isMajorVersion(base) {
		if dir := path.Dir(importPath); dir != "." {
			base = path.Base(dir)
		}
	}
	base = strings.TrimPrefix(base, "go-")
	base = strings.TrimSuffix(base, "-go")
	base = strings.TrimSuffix(base, ".go")
	if i := strings.IndexAny(base, ".-"); i >= 0 {
		base = base[:i]
	}
	return base
}

func isMajorVersion(s string) bool {
	if len(s) < 2 || s[0] != 'v' {
		return false
	}
	for _, r := range s[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func (c *converter) text(expr ast.Expr) string {
	var b bytes.Buffer
	if err := format.Node(&b, c.fset, expr); err != nil {
		return fmt.Sprintf("%T", expr)
	}
	return b.String()
}

// identRefs collects the unqualified identifiers used in an expression,
// skipping selector names and field names.
func identRefs(expr ast.Node) []string {
	var refs []string
	ast.Inspect(expr, func(n ast.Node) bool {
		switch x := n.(type) {
		case *ast.SelectorExpr:
			return false
		case *ast.Field:
			if x.Type != nil {
				refs = append(refs, identRefs(x.Type)...)
			}
			return false
		case *ast.Ident:
			refs = append(refs, x.Name)
		}
		return true
	})
	return refs
}

// Refs returns the unqualified identifiers referenced by the expression,
// in order of appearance. Type parameters of the enclosing declaration
// show up here.
func (t *TypeExpr) Refs() []string {
	var refs []string
	t.walk(func(n *TypeExpr) {
		switch {
		case n.Kind == ExprIdent && n.Pkg == "":
			refs = append(refs, n.Name)
		case len(n.refs) > 0:
			refs = append(refs, n.refs...)
		}
	})
	return refs
}

// References reports if the expression references the given identifier.
func (t *TypeExpr) References(name string) bool {
	for _, r := range t.Refs() {
		if r == name {
			return true
		}
	}
	return false
}

// Imports returns the qualified packages used by the expression, mapped
// from import path to the name they were written with.
func (t *TypeExpr) Imports() map[string]string {
	m := make(map[string]string)
	t.walk(func(n *TypeExpr) {
		if n.Kind == ExprIdent && n.Pkg != "" {
			m[n.Pkg] = n.Alias
		}
	})
	return m
}

func (t *TypeExpr) walk(fn func(*TypeExpr)) {
	if t == nil {
		return
	}
	fn(t)
	for _, a := range t.Args {
		a.walk(fn)
	}
	t.Key.walk(fn)
	t.Elem.walk(fn)
}

// IsIdent reports if the expression is the bare identifier name.
func (t *TypeExpr) IsIdent(name string) bool {
	return t != nil && t.Kind == ExprIdent && t.Pkg == "" && len(t.Args) == 0 && t.Name == name
}

// IsAny reports if the expression is the empty constraint (any or interface{}).
func (t *TypeExpr) IsAny() bool {
	return t.IsIdent("any") || (t.Kind == ExprRaw && strings.Join(strings.Fields(t.Text), "") == "interface{}")
}

// IsFunc reports if the expression is a func literal type.
func (t *TypeExpr) IsFunc() bool {
	return t != nil && t.Kind == ExprRaw && strings.HasPrefix(t.Text, "func")
}

// Code returns the jennifer code of the expression.
func (t *TypeExpr) Code() *jen.Statement {
	switch t.Kind {
	case ExprIdent:
		var s *jen.Statement
		if t.Pkg != "" {
			s = jen.Qual(t.Pkg, t.Name)
		} else {
			s = jen.Id(t.Name)
		}
		if len(t.Args) > 0 {
			s = s.TypesFunc(func(g *jen.Group) {
				for _, a := range t.Args {
					g.Add(a.Code())
				}
			})
		}
		return s
	case ExprPointer:
		return jen.Op("*").Add(t.Elem.Code())
	case ExprSlice:
		return jen.Index().Add(t.Elem.Code())
	case ExprArray:
		return jen.Index(jen.Id(t.Len)).Add(t.Elem.Code())
	case ExprMap:
		return jen.Map(t.Key.Code()).Add(t.Elem.Code())
	case ExprChan:
		switch t.Dir {
		case ast.RECV:
			return jen.Op("<-").Chan().Add(t.Elem.Code())
		case ast.SEND:
			return jen.Chan().Op("<-").Add(t.Elem.Code())
		default:
			return jen.Chan().Add(t.Elem.Code())
		}
	default:
		return jen.Id(t.Text)
	}
}

// String returns the expression as Go source, with packages written the
// way they appear in the declaring file.
func (t *TypeExpr) String() string {
	if t == nil {
		return ""
	}
	switch t.Kind {
	case ExprIdent:
		s := t.Name
		if t.Pkg != "" {
			s = t.Alias + "." + s
		}
		if len(t.Args) > 0 {
			args := make([]string, len(t.Args))
			for i, a := range t.Args {
				args[i] = a.String()
			}
			s += "[" + strings.Join(args, ", ") + "]"
		}
		return s
	case ExprPointer:
		return "*" + t.Elem.String()
	case ExprSlice:
		return "[]" + t.Elem.String()
	case ExprArray:
		return "[" + t.Len + "]" + t.Elem.String()
	case ExprMap:
		return "map[" + t.Key.String() + "]" + t.Elem.String()
	case ExprChan:
		switch t.Dir {
		case ast.RECV:
			return "<-chan " + t.Elem.String()
		case ast.SEND:
			return "chan<- " + t.Elem.String()
		default:
			return "chan " + t.Elem.String()
		}
	default:
		return t.Text
	}
}
