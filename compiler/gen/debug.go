package gen

import (
	"strings"

	"github.com/dave/jennifer/jen"
)

// Bounds is the result of bound inference for the debug function of a
// generic struct.
type Bounds struct {
	// PhantomSet holds the type parameters used only as the argument of
	// phantom marker fields.
	PhantomSet map[string]bool
	// Bound holds the type parameters that must satisfy the capability.
	Bound map[string]bool
}

// Unbounded reports if no type parameter requires the capability.
func (b *Bounds) Unbounded() bool {
	return len(b.Bound) == 0
}

// InferBounds computes which type parameters are printed by the debug
// function. A parameter used as the sole argument of a phantom marker
// field, and nowhere else, is exempt. Any other parameter referenced by a
// field requires the capability. Parameters no field refers to are exempt.
func InferBounds(s *TypeSchema, phantom string) *Bounds {
	b := &Bounds{PhantomSet: make(map[string]bool), Bound: make(map[string]bool)}
	marked := make(map[string]bool)
	for _, f := range s.Fields {
		if inner, ok := Classify(f.Type, phantom); ok && inner.Kind == ExprIdent && inner.Pkg == "" && len(inner.Args) == 0 && s.isParam(inner.Name) {
			marked[inner.Name] = true
			continue
		}
		for _, ref := range f.Type.Refs() {
			if s.isParam(ref) {
				b.Bound[ref] = true
			}
		}
	}
	for name := range marked {
		if !b.Bound[name] {
			b.PhantomSet[name] = true
		}
	}
	return b
}

// GenDebug generates the debug function of a struct, and its String method
// when no type parameter requires the capability.
func GenDebug(c *Config, s *TypeSchema) ([]jen.Code, error) {
	directives := make([]DebugDirective, len(s.Fields))
	for i, f := range s.Fields {
		d, err := ResolveDebug(f)
		if err != nil {
			return nil, err
		}
		directives[i] = d
	}
	bounds := InferBounds(s, c.phantom())
	if bounds.Unbounded() && s.Field("String") != nil {
		return nil, NewSchemaError(s.Name, "String", "field conflicts with the generated String method", nil)
	}
	var (
		fn   = debugName(s)
		buf  = "_sb"
		body []jen.Code
		lit  strings.Builder
	)
	flush := func() {
		if lit.Len() > 0 {
			body = append(body, jen.Id(buf).Dot("WriteString").Call(jen.Lit(lit.String())))
			lit.Reset()
		}
	}
	if len(s.Fields) == 0 {
		body = append(body, jen.Return(jen.Lit(s.Name+"{}")))
	} else {
		body = append(body, jen.Var().Id(buf).Qual("strings", "Builder"))
		lit.WriteString(s.Name + "{")
		for i, f := range s.Fields {
			if i > 0 {
				lit.WriteString(", ")
			}
			lit.WriteString(f.Name + ": ")
			value := jen.Id(valueName).Dot(f.Name)
			switch {
			case !directives[i].None():
				flush()
				body = append(body, jen.Qual("fmt", "Fprintf").Call(jen.Op("&").Id(buf), jen.Lit(directives[i].Format), operand(f.Type, value)))
			case ShapeOf(f.Type).Kind == ShapeOptional:
				flush()
				body = append(body, jen.If(value.Clone().Op("==").Nil()).Block(
					jen.Id(buf).Dot("WriteString").Call(jen.Lit("<nil>")),
				).Else().Block(
					jen.Qual("fmt", "Fprintf").Call(jen.Op("&").Id(buf), jen.Lit("%v"), operand(ShapeOf(f.Type).Inner, jen.Op("*").Add(value.Clone()))),
				))
			default:
				flush()
				body = append(body, jen.Qual("fmt", "Fprintf").Call(jen.Op("&").Id(buf), jen.Lit("%v"), operand(f.Type, value)))
			}
		}
		lit.WriteString("}")
		flush()
		body = append(body, jen.Return(jen.Id(buf).Dot("String").Call()))
	}

	constraint := func(p *GenericParam) jen.Code {
		if !bounds.Bound[p.Name] {
			return p.Constraint.Code()
		}
		if p.Constraint.IsAny() {
			return c.capability()
		}
		return jen.Interface(p.Constraint.Code(), c.capability())
	}
	code := []jen.Code{
		jen.Commentf("%s returns a debug representation of a %s value.", fn, s.Name).Line().
			Add(s.typeParams(jen.Func().Id(fn), constraint)).
			Params(jen.Id(valueName).Add(s.Instance(s.Name))).String().Block(body...),
	}
	if bounds.Unbounded() {
		code = append(code, jen.Comment("String implements fmt.Stringer.").Line().
			Func().Params(jen.Id(valueName).Add(s.Instance(s.Name))).Id("String").Params().String().Block(
			jen.Return(jen.Id(fn).Call(jen.Id(valueName))),
		))
	}
	return code, nil
}

// operand returns the fmt argument for a value of type t. Func values go
// through any: vet rejects them as printf operands.
func operand(t *TypeExpr, v *jen.Statement) jen.Code {
	if t.IsFunc() {
		return jen.Id("any").Call(v)
	}
	return v
}
