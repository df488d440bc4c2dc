package gen

import (
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func keys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func TestInferBounds(t *testing.T) {
	tests := []struct {
		name    string
		decl    string
		bound   []string
		phantom []string
	}{
		{
			name:  "printed parameters",
			decl:  "type Pair[K comparable, V any] struct {\n\tKey K\n\tValue []V\n}",
			bound: []string{"K", "V"},
		},
		{
			name:    "phantom only",
			decl:    "type Tagged[M any] struct {\n\tID int\n\tmarker derive.Phantom[M]\n}",
			phantom: []string{"M"},
		},
		{
			name:  "phantom and printed",
			decl:  "type Mixed[M any] struct {\n\tmarker derive.Phantom[M]\n\tValues []M\n}",
			bound: []string{"M"},
		},
		{
			name: "unused",
			decl: "type Unused[T any] struct{ X int }",
		},
		{
			name:  "phantom of a composite",
			decl:  "type Wrapped[M any] struct{ marker derive.Phantom[[]M] }",
			bound: []string{"M"},
		},
		{
			name: "phantom of a concrete type",
			decl: "type Concrete[M any] struct{ marker derive.Phantom[int] }",
		},
		{
			name:  "nested references",
			decl:  "type Index[K comparable, V any] struct{ m map[K]*V }",
			bound: []string{"K", "V"},
		},
		{
			name:    "bare phantom",
			decl:    "type Local[M any, T any] struct {\n\tmarker Phantom[M]\n\tvalue T\n}",
			bound:   []string{"T"},
			phantom: []string{"M"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := mustSchema(t, "package shapes\n\nimport \"github.com/syssam/derive\"\n\n//derive:debug\n"+tt.decl+"\n")
			b := InferBounds(s, DefaultPhantom)
			assert.Equal(t, tt.bound, nilIfEmpty(keys(b.Bound)))
			assert.Equal(t, tt.phantom, nilIfEmpty(keys(b.PhantomSet)))
			assert.Equal(t, len(tt.bound) == 0, b.Unbounded())
		})
	}
}

func nilIfEmpty(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	return s
}

func TestGenDebug(t *testing.T) {
	out := mustRender(t, `package shapes

//derive:debug
type Point struct {
	X, Y int
}
`)
	assert.Equal(t, []string{"DebugPoint", "Point.String"}, declNames(t, out))
	assert.Contains(t, out, `func DebugPoint(_v Point) string {
	var _sb strings.Builder
	_sb.WriteString("Point{X: ")
	fmt.Fprintf(&_sb, "%v", _v.X)
	_sb.WriteString(", Y: ")
	fmt.Fprintf(&_sb, "%v", _v.Y)
	_sb.WriteString("}")
	return _sb.String()
}`)
	assert.Contains(t, out, "// String implements fmt.Stringer.\nfunc (_v Point) String() string {\n\treturn DebugPoint(_v)\n}")
}

func TestGenDebugFields(t *testing.T) {
	out := mustRender(t, `package shapes

//derive:debug
type register struct {
	Name  *string
	Value uint16 `+"`debug:\"0x%04x\"`"+`
	Flags uint8  `+"`json:\"flags\" debug:\"0b%08b\"`"+`
}
`)
	assert.Equal(t, []string{"debugRegister", "register.String"}, declNames(t, out))
	for _, want := range []string{
		"\tif _v.Name == nil {\n\t\t_sb.WriteString(\"<nil>\")\n\t} else {\n\t\tfmt.Fprintf(&_sb, \"%v\", *_v.Name)\n\t}\n",
		"\tfmt.Fprintf(&_sb, \"0x%04x\", _v.Value)\n",
		"\t_sb.WriteString(\", Flags: \")\n\tfmt.Fprintf(&_sb, \"0b%08b\", _v.Flags)\n",
		"\treturn debugRegister(_v)\n",
	} {
		assert.Contains(t, out, want)
	}
}

func TestGenDebugFuncFields(t *testing.T) {
	out := mustRender(t, `package shapes

import str "strings"

//derive:debug
type Hook struct {
	Fn     func(*str.Builder)
	OnExit *func() error
	Addr   func() `+"`debug:\"%p\"`"+`
	Name   string
}
`)
	for _, want := range []string{
		"\tfmt.Fprintf(&_sb, \"%v\", any(_v.Fn))\n",
		"\t\tfmt.Fprintf(&_sb, \"%v\", any(*_v.OnExit))\n",
		"\tfmt.Fprintf(&_sb, \"%p\", any(_v.Addr))\n",
		"\tfmt.Fprintf(&_sb, \"%v\", _v.Name)\n",
	} {
		assert.Contains(t, out, want)
	}
}

func TestGenDebugGeneric(t *testing.T) {
	out := mustRender(t, `package shapes

import "github.com/syssam/derive"

//derive:debug
type Wrapper[T any] struct{ value T }

//derive:debug
type Tagged[M any] struct {
	ID     int
	marker derive.Phantom[M]
}

//derive:debug
type Keyed[K comparable, M any] struct {
	Key    K
	marker derive.Phantom[M]
}

//derive:debug
type Unused[T any] struct{}
`)
	assert.Equal(t, []string{
		"DebugWrapper",
		"DebugTagged", "Tagged.String",
		"DebugKeyed",
		"DebugUnused", "Unused.String",
	}, declNames(t, out))
	for _, want := range []string{
		"func DebugWrapper[T fmt.Stringer](_v Wrapper[T]) string {",
		"func DebugTagged[M any](_v Tagged[M]) string {",
		"func (_v Tagged[M]) String() string {\n\treturn DebugTagged(_v)\n}",
		"func DebugKeyed[K interface",
		"M any](_v Keyed[K, M]) string {",
		"\treturn \"Unused{}\"\n",
	} {
		assert.Contains(t, out, want)
	}
	keyed := out[strings.Index(out, "func DebugKeyed"):]
	assert.Contains(t, keyed[:strings.Index(keyed, "](")], "fmt.Stringer")
}

func TestGenDebugCapability(t *testing.T) {
	out := mustRender(t, "package shapes\n\n//derive:debug\ntype Wrapper[T any] struct{ value T }\n",
		WithCapability("github.com/acme/show.Shower"))
	assert.Contains(t, out, "func DebugWrapper[T show.Shower](_v Wrapper[T]) string {")
	assert.Contains(t, out, `"github.com/acme/show"`)

	out = mustRender(t, "package shapes\n\n//derive:debug\ntype Wrapper[T any] struct{ value T }\n\ntype Shower interface{ Show() string }\n",
		WithCapability("Shower"))
	assert.Contains(t, out, "func DebugWrapper[T Shower](_v Wrapper[T]) string {")

	out = mustRender(t, "package shapes\n\n//derive:debug\ntype Tagged[M any] struct{ marker Marker[M] }\n\ntype Marker[T any] struct{}\n",
		WithPhantom("Marker"))
	assert.Contains(t, out, "func (_v Tagged[M]) String() string {")
}

func TestGenDebugErrors(t *testing.T) {
	_, err := renderSource(t, "package shapes\n\n//derive:debug\ntype Point struct{ String string }\n")
	require.Error(t, err)
	assert.True(t, IsSchemaError(err))
	assert.Contains(t, err.Error(), "conflicts with the generated String method")

	// A bounded type gets no String method, so the field is allowed.
	out := mustRender(t, "package shapes\n\n//derive:debug\ntype Named[T any] struct {\n\tString string\n\tValue T\n}\n")
	assert.Equal(t, []string{"DebugNamed"}, declNames(t, out))

	_, err = renderSource(t, "package shapes\n\n//derive:debug\ntype Point struct {\n\tX int `debug:\"%d and %d\"`\n}\n")
	require.Error(t, err)
	assert.True(t, IsMalformedDirective(err))
	assert.Contains(t, err.Error(), "shapes.go:5:8")
}
