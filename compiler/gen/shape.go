package gen

import "strings"

// Wrapper names understood by Classify. Any other wrapper name is matched
// against the identifier of a one-argument generic instantiation.
const (
	// WrapperOptional matches pointer types (*T).
	WrapperOptional = "*"
	// WrapperSequence matches slice types ([]T).
	WrapperSequence = "[]"
	// DefaultPhantom is the identifier of the phantom marker wrapper.
	DefaultPhantom = "Phantom"
)

// ShapeKind is the classification of a field type.
type ShapeKind int

const (
	// ShapePlain is any type that is not optional or a sequence.
	ShapePlain ShapeKind = iota
	// ShapeOptional is a pointer type. Optional fields may be left unset.
	ShapeOptional
	// ShapeSequence is a slice type.
	ShapeSequence
)

func (k ShapeKind) String() string {
	switch k {
	case ShapeOptional:
		return "optional"
	case ShapeSequence:
		return "sequence"
	default:
		return "plain"
	}
}

// ShapeClass is the outermost shape of a field type.
type ShapeClass struct {
	Kind ShapeKind
	// Type is the classified type.
	Type *TypeExpr
	// Inner is the wrapped type for optional and sequence shapes,
	// and nil for plain types.
	Inner *TypeExpr
}

// Classify returns the inner type of t if t is an application of the given
// wrapper. Only the outermost layer is inspected and no alias resolution is
// performed.
func Classify(t *TypeExpr, wrapper string) (*TypeExpr, bool) {
	if t == nil {
		return nil, false
	}
	switch wrapper {
	case WrapperOptional:
		if t.Kind == ExprPointer {
			return t.Elem, true
		}
	case WrapperSequence:
		if t.Kind == ExprSlice {
			return t.Elem, true
		}
	default:
		if i := strings.LastIndexByte(wrapper, '.'); i >= 0 {
			wrapper = wrapper[i+1:]
		}
		if t.Kind == ExprIdent && t.Name == wrapper && len(t.Args) == 1 {
			return t.Args[0], true
		}
	}
	return nil, false
}

// ShapeOf classifies t as optional, sequence or plain.
func ShapeOf(t *TypeExpr) ShapeClass {
	if inner, ok := Classify(t, WrapperOptional); ok {
		return ShapeClass{Kind: ShapeOptional, Type: t, Inner: inner}
	}
	if inner, ok := Classify(t, WrapperSequence); ok {
		return ShapeClass{Kind: ShapeSequence, Type: t, Inner: inner}
	}
	return ShapeClass{Kind: ShapePlain, Type: t}
}
