package gen

import (
	"errors"
	"fmt"
	"testing"

	"github.com/dave/jennifer/jen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/derive/compiler/load"
)

// parseSchemas extracts the schemas of every marked type in src.
func parseSchemas(t *testing.T, src string, types ...string) ([]*TypeSchema, error) {
	t.Helper()
	pkg, err := load.ParseFile("example.com/shapes", "shapes.go", src, types...)
	require.NoError(t, err)
	var schemas []*TypeSchema
	for _, r := range pkg.Records {
		s, err := NewTypeSchema(r)
		if err != nil {
			return nil, err
		}
		schemas = append(schemas, s)
	}
	return schemas, nil
}

func mustSchema(t *testing.T, src string, types ...string) *TypeSchema {
	t.Helper()
	schemas, err := parseSchemas(t, src, types...)
	require.NoError(t, err)
	require.Len(t, schemas, 1)
	return schemas[0]
}

func TestNewTypeSchema(t *testing.T) {
	s := mustSchema(t, `package shapes

import (
	"fmt"
	"time"

	"github.com/syssam/derive"
)

//derive:builder
type Tagged[M any, T fmt.Stringer] struct {
	ID, Seq int
	At      *time.Time
	Values  []T `+"`builder:\"each=Value\"`"+`
	marker  derive.Phantom[M]
}
`)
	assert.Equal(t, "Tagged", s.Name)
	assert.Equal(t, "shapes", s.Package)
	assert.Equal(t, "example.com/shapes", s.PkgPath)
	assert.Equal(t, "shapes.go", s.File)
	assert.Equal(t, 11, s.Pos.Line)
	assert.Equal(t, []string{"builder"}, s.Derives)
	assert.True(t, s.Exported())
	assert.True(t, s.Derived("builder"))
	assert.False(t, s.Derived("debug"))
	assert.NotNil(t, s.Record())

	require.Len(t, s.Generics, 2)
	assert.Equal(t, "M", s.Generics[0].Name)
	assert.True(t, s.Generics[0].Constraint.IsAny())
	assert.Equal(t, "fmt.Stringer", s.Generics[1].Constraint.String())
	assert.NotNil(t, s.Generic("T"))
	assert.Nil(t, s.Generic("U"))
	assert.True(t, s.isParam("M"))
	assert.False(t, s.isParam("ID"))

	var names []string
	for _, f := range s.Fields {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"ID", "Seq", "At", "Values", "marker"}, names)
	assert.Equal(t, "each=Value", s.Field("Values").Tag.Get(TagBuilder))
	assert.Equal(t, 14, s.Field("Values").TagPos.Line)
	assert.Equal(t, ShapeOptional, ShapeOf(s.Field("At").Type).Kind)
	assert.Nil(t, s.Field("missing"))

	assert.Equal(t, map[string]string{
		"fmt":                      "fmt",
		"time":                     "time",
		"github.com/syssam/derive": "derive",
	}, s.Imports())
}

func TestNewTypeSchemaMarkers(t *testing.T) {
	s := mustSchema(t, `package shapes

// Point is a point.
//derive:debug, builder
//derive:builder
type point struct{ X int }
`)
	assert.Equal(t, []string{"debug", "builder"}, s.Derives)
	assert.False(t, s.Exported())

	s = mustSchema(t, `package shapes

type Point struct{ X int }
`, "Point")
	assert.Empty(t, s.Derives)
	assert.True(t, s.Derived("builder"))
	assert.True(t, s.Derived("debug"))

	_, err := parseSchemas(t, `package shapes

//derive:builder,clone
type Point struct{ X int }
`)
	require.Error(t, err)
	assert.True(t, IsMalformedDirective(err))
	assert.Equal(t, `shapes.go:3:1: unknown derive "clone" in //derive:builder,clone`, err.Error())
}

func TestNewTypeSchemaUnsupported(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "basic type",
			src:  "//derive:debug\ntype Color int",
			want: "int is not a struct",
		},
		{
			name: "interface",
			src:  "//derive:debug\ntype Shape interface{ Area() float64 }",
			want: "is not a struct",
		},
		{
			name: "alias",
			src:  "//derive:debug\ntype Alias = struct{ X int }",
			want: "alias declarations are not supported",
		},
		{
			name: "embedded",
			src:  "type Base struct{}\n\n//derive:builder\ntype Point struct {\n\tBase\n\tX int\n}",
			want: "embedded field Base",
		},
		{
			name: "blank",
			src:  "//derive:builder\ntype Point struct {\n\t_ int\n\tX int\n}",
			want: "blank field",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseSchemas(t, "package shapes\n\n"+tt.src+"\n")
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrUnsupportedShape))
			assert.False(t, IsSchemaError(err))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestNewTypeSchemaErrors(t *testing.T) {
	tests := []struct {
		name   string
		record *load.Record
		want   string
	}{
		{
			name:   "invalid field type",
			record: &load.Record{Name: "Point", Kind: load.KindStruct, Fields: []*load.Field{{Name: "X", Type: "[]"}}},
			want:   "derive: Point.X: ",
		},
		{
			name:   "unknown package",
			record: &load.Record{Name: "Point", Kind: load.KindStruct, Fields: []*load.Field{{Name: "At", Type: "time.Time"}}},
			want:   `unknown package "time"`,
		},
		{
			name: "duplicate field",
			record: &load.Record{Name: "Point", Kind: load.KindStruct, Fields: []*load.Field{
				{Name: "X", Type: "int"}, {Name: "X", Type: "int"},
			}},
			want: "duplicate field",
		},
		{
			name:   "invalid field name",
			record: &load.Record{Name: "Point", Kind: load.KindStruct, Fields: []*load.Field{{Name: "1x", Type: "int"}}},
			want:   "invalid field name",
		},
		{
			name:   "invalid type name",
			record: &load.Record{Name: "my-point", Kind: load.KindStruct},
			want:   "invalid type name",
		},
		{
			name: "duplicate type parameter",
			record: &load.Record{Name: "Pair", Kind: load.KindStruct, TypeParams: []*load.TypeParam{
				{Name: "T", Constraint: "any"}, {Name: "T", Constraint: "any"},
			}},
			want: `duplicate type parameter "T"`,
		},
		{
			name: "blank type parameter",
			record: &load.Record{Name: "Pair", Kind: load.KindStruct, TypeParams: []*load.TypeParam{
				{Name: "_", Constraint: "any"},
			}},
			want: `invalid type parameter "_"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTypeSchema(tt.record)
			require.Error(t, err)
			assert.True(t, IsSchemaError(err))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestTypeSchemaInstance(t *testing.T) {
	s := mustSchema(t, `package shapes

//derive:builder
type Pair[K comparable, V any] struct {
	Key   K
	Value V
}
`)
	assert.Equal(t, "PairBuilder[K, V]", fmt.Sprintf("%#v", s.Instance("PairBuilder")))
	st := s.typeParams(jen.Type().Id("PairBuilder"), nil).Struct()
	assert.Equal(t, "type PairBuilder[K comparable, V any] struct{}", fmt.Sprintf("%#v", st))
	st = s.typeParams(jen.Func().Id("DebugPair"), func(*GenericParam) jen.Code { return jen.Id("fmt.Stringer") }).Params()
	assert.Equal(t, "func DebugPair[K fmt.Stringer, V fmt.Stringer]()", fmt.Sprintf("%#v", st))

	plain := mustSchema(t, "package shapes\n\n//derive:builder\ntype Point struct{ X int }\n")
	assert.Equal(t, "Point", fmt.Sprintf("%#v", plain.Instance("Point")))
	assert.Equal(t, "type Point struct{}", fmt.Sprintf("%#v", plain.typeParams(jen.Type().Id("Point"), nil).Struct()))
}
