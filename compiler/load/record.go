package load

import (
	"fmt"
	"go/token"

	json "github.com/goccy/go-json"
)

// Kind describes the shape of a loaded type declaration.
type Kind string

const (
	// KindStruct is a struct type with labelled fields.
	KindStruct Kind = "struct"
	// KindAlias is an alias declaration (type A = B).
	KindAlias Kind = "alias"
	// KindOther is any other named type (basic types used as enums,
	// interfaces, funcs, maps...).
	KindOther Kind = "other"
)

// Package holds the records loaded from one Go package.
type Package struct {
	Name    string    `json:"name"`
	PkgPath string    `json:"pkg_path,omitempty"`
	Dir     string    `json:"dir,omitempty"`
	Files   []string  `json:"files,omitempty"`
	Records []*Record `json:"records,omitempty"`
}

// Record is a raw type declaration as it was read from a source file.
// All type expressions are kept as source text.
type Record struct {
	Name       string         `json:"name"`
	Pos        token.Position `json:"pos"`
	Kind       Kind           `json:"kind"`
	Underlying string         `json:"underlying,omitempty"`
	TypeParams []*TypeParam   `json:"type_params,omitempty"`
	Fields     []*Field       `json:"fields,omitempty"`
	Markers    []*Marker      `json:"markers,omitempty"`
	Imports    []*Import      `json:"imports,omitempty"`
	File       string         `json:"file,omitempty"`
	Package    string         `json:"package"`
	PkgPath    string         `json:"pkg_path,omitempty"`
}

// TypeParam is a type parameter with its constraint text.
type TypeParam struct {
	Name       string `json:"name"`
	Constraint string `json:"constraint"`
}

// Field is a struct field. Fields declared together (X, Y int)
// are loaded as separate entries.
type Field struct {
	Name     string         `json:"name"`
	Type     string         `json:"type"`
	Tag      string         `json:"tag,omitempty"`
	Embedded bool           `json:"embedded,omitempty"`
	Pos      token.Position `json:"pos"`
	TagPos   token.Position `json:"tag_pos"`
}

// Marker is a //derive: line found in the doc comment of a type.
type Marker struct {
	Value string         `json:"value"`
	Pos   token.Position `json:"pos"`
}

// Import is an import of the file declaring a record.
// Name is empty when the import has no explicit name.
type Import struct {
	Name string `json:"name,omitempty"`
	Path string `json:"path"`
}

// Field returns the field with the given name, or nil.
func (r *Record) Field(name string) *Field {
	for _, f := range r.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// Marked reports if the record carries at least one //derive: marker.
func (r *Record) Marked() bool {
	return len(r.Markers) > 0
}

// TagPosition returns the position of the field tag, falling back
// to the field position for fields declared without a tag.
func (f *Field) TagPosition() token.Position {
	if f.TagPos.IsValid() {
		return f.TagPos
	}
	return f.Pos
}

// MarshalRecords encodes the records of the given packages as JSON.
func MarshalRecords(pkgs ...*Package) ([]byte, error) {
	return json.MarshalIndent(pkgs, "", "  ")
}

// UnmarshalRecords decodes packages that were encoded with MarshalRecords.
func UnmarshalRecords(buf []byte) ([]*Package, error) {
	var pkgs []*Package
	if err := json.Unmarshal(buf, &pkgs); err != nil {
		return nil, fmt.Errorf("load: decoding records: %w", err)
	}
	for _, pkg := range pkgs {
		for _, r := range pkg.Records {
			if r.Name == "" {
				return nil, fmt.Errorf("load: record without name in package %q", pkg.Name)
			}
		}
	}
	return pkgs, nil
}
