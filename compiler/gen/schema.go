package gen

import (
	"fmt"
	"go/token"
	"reflect"
	"strings"

	"github.com/dave/jennifer/jen"

	"github.com/syssam/derive/compiler/load"
)

// The following types describe a struct declaration after extraction.
// They are immutable once NewTypeSchema returns and are shared read-only
// by the generators.
type (
	// TypeSchema is the extracted description of one struct.
	TypeSchema struct {
		// Name of the struct.
		Name string
		// Pos of the type name in the declaring file.
		Pos token.Position
		// Generics holds the type parameters in declaration order.
		Generics []*GenericParam
		// Fields holds the struct fields in declaration order.
		Fields []*FieldDescriptor
		// Derives lists the features requested by the //derive: markers.
		// Empty for types selected by name.
		Derives []string
		// File is the declaring source file.
		File string
		// Package is the package name and PkgPath its import path.
		Package, PkgPath string

		record *load.Record
	}

	// GenericParam is a type parameter with its declared constraint.
	GenericParam struct {
		Name       string
		Constraint *TypeExpr
	}

	// FieldDescriptor describes one struct field.
	FieldDescriptor struct {
		Name string
		Type *TypeExpr
		Tag  reflect.StructTag
		// Pos of the field name, and TagPos of its tag.
		Pos, TagPos token.Position
	}
)

// NewTypeSchema extracts the schema of a loaded record. Records that are not
// structs, or that have embedded or blank fields, fail with an
// UnsupportedShapeError.
func NewTypeSchema(r *load.Record) (*TypeSchema, error) {
	switch r.Kind {
	case load.KindStruct:
	case load.KindAlias:
		return nil, NewUnsupportedShapeError(r.Name, r.Pos, "alias declarations are not supported")
	default:
		return nil, NewUnsupportedShapeError(r.Name, r.Pos, fmt.Sprintf("%s is not a struct", r.Underlying))
	}
	if !token.IsIdentifier(r.Name) {
		return nil, NewSchemaError(r.Name, "", "invalid type name", nil)
	}
	s := &TypeSchema{
		Name:    r.Name,
		Pos:     r.Pos,
		File:    r.File,
		Package: r.Package,
		PkgPath: r.PkgPath,
		record:  r,
	}
	seen := make(map[string]bool)
	for _, tp := range r.TypeParams {
		if !token.IsIdentifier(tp.Name) || tp.Name == "_" {
			return nil, NewSchemaError(r.Name, "", fmt.Sprintf("invalid type parameter %q", tp.Name), nil)
		}
		if seen[tp.Name] {
			return nil, NewSchemaError(r.Name, "", fmt.Sprintf("duplicate type parameter %q", tp.Name), nil)
		}
		seen[tp.Name] = true
		c, err := ParseTypeExpr(tp.Constraint, r.Imports)
		if err != nil {
			return nil, NewSchemaError(r.Name, "", "constraint of "+tp.Name, err)
		}
		s.Generics = append(s.Generics, &GenericParam{Name: tp.Name, Constraint: c})
	}
	clear(seen)
	for _, f := range r.Fields {
		switch {
		case f.Embedded:
			return nil, NewUnsupportedShapeError(r.Name, f.Pos, fmt.Sprintf("embedded field %s", f.Type))
		case f.Name == "_":
			return nil, NewUnsupportedShapeError(r.Name, f.Pos, "blank field")
		case !token.IsIdentifier(f.Name):
			return nil, NewSchemaError(r.Name, f.Name, "invalid field name", nil)
		case seen[f.Name]:
			return nil, NewSchemaError(r.Name, f.Name, "duplicate field", nil)
		}
		seen[f.Name] = true
		typ, err := ParseTypeExpr(f.Type, r.Imports)
		if err != nil {
			return nil, NewSchemaError(r.Name, f.Name, "", err)
		}
		s.Fields = append(s.Fields, &FieldDescriptor{
			Name:   f.Name,
			Type:   typ,
			Tag:    reflect.StructTag(f.Tag),
			Pos:    f.Pos,
			TagPos: f.TagPosition(),
		})
	}
	derives, err := parseMarkers(r.Markers)
	if err != nil {
		return nil, err
	}
	s.Derives = derives
	return s, nil
}

// parseMarkers returns the feature names of //derive: markers, in order
// and without duplicates.
func parseMarkers(markers []*load.Marker) ([]string, error) {
	var names []string
	for _, m := range markers {
		for _, name := range strings.Split(m.Value, ",") {
			name = strings.TrimSpace(name)
			if _, ok := featureByName(name); !ok {
				return nil, NewMalformedDirectiveError(m.Pos, fmt.Sprintf("unknown derive %q in %s%s", name, load.MarkerPrefix, m.Value))
			}
			if !contains(names, name) {
				names = append(names, name)
			}
		}
	}
	return names, nil
}

// Field returns the field with the given name, or nil.
func (s *TypeSchema) Field(name string) *FieldDescriptor {
	for _, f := range s.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// Generic returns the type parameter with the given name, or nil.
func (s *TypeSchema) Generic(name string) *GenericParam {
	for _, g := range s.Generics {
		if g.Name == name {
			return g
		}
	}
	return nil
}

// Exported reports if the struct name is exported.
func (s *TypeSchema) Exported() bool {
	return token.IsExported(s.Name)
}

// Derived reports if the feature was requested for the type. Types that
// carry no marker derive every feature.
func (s *TypeSchema) Derived(feature string) bool {
	return len(s.Derives) == 0 || contains(s.Derives, feature)
}

// Record returns the record the schema was extracted from.
func (s *TypeSchema) Record() *load.Record {
	return s.record
}

// Imports returns the packages referenced by field types and constraints,
// mapped from import path to the name they were written with.
func (s *TypeSchema) Imports() map[string]string {
	m := make(map[string]string)
	for _, g := range s.Generics {
		for k, v := range g.Constraint.Imports() {
			m[k] = v
		}
	}
	for _, f := range s.Fields {
		for k, v := range f.Type.Imports() {
			m[k] = v
		}
	}
	return m
}

// Instance returns the code of name instantiated with the type parameters
// of the schema, e.g. PointBuilder[T].
func (s *TypeSchema) Instance(name string) *jen.Statement {
	st := jen.Id(name)
	if len(s.Generics) > 0 {
		st = st.TypesFunc(func(g *jen.Group) {
			for _, p := range s.Generics {
				g.Id(p.Name)
			}
		})
	}
	return st
}

// typeParams appends the type parameter list of the schema to st. The
// constraint function may replace declared constraints.
func (s *TypeSchema) typeParams(st *jen.Statement, constraint func(*GenericParam) jen.Code) *jen.Statement {
	if len(s.Generics) == 0 {
		return st
	}
	if constraint == nil {
		constraint = func(p *GenericParam) jen.Code { return p.Constraint.Code() }
	}
	return st.TypesFunc(func(g *jen.Group) {
		for _, p := range s.Generics {
			g.Id(p.Name).Add(constraint(p))
		}
	})
}

// isParam reports if name is one of the type parameters.
func (s *TypeSchema) isParam(name string) bool {
	return s.Generic(name) != nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
