package gen

import (
	"fmt"

	"github.com/dave/jennifer/jen"
)

// builderField is the builder plan of one struct field.
type builderField struct {
	*FieldDescriptor
	shape     ShapeClass
	directive BuilderDirective
	// logical is the type taken by the full setter: the pointee of
	// optional fields, the field type otherwise.
	logical *TypeExpr
	// elem is the element type taken by the append setter.
	elem *TypeExpr
	// phantom fields hold no value and may be left unset.
	phantom bool
}

func (f *builderField) optional() bool { return f.shape.Kind == ShapeOptional }

// fullSetter reports if the field gets a setter taking the whole value.
// An append alias equal to the field name replaces it.
func (f *builderField) fullSetter() bool { return f.directive.Each != f.Name }

// planBuilder resolves the builder directives of a struct and checks that
// the generated method and field names do not collide.
func planBuilder(c *Config, s *TypeSchema) ([]*builderField, error) {
	var (
		fields = make([]*builderField, 0, len(s.Fields))
		names  = map[string]string{"Build": "the Build method"}
	)
	for _, fd := range s.Fields {
		names[storageField(fd.Name)] = "the storage of field " + fd.Name
	}
	claim := func(f *builderField, name string) error {
		if owner, ok := names[name]; ok {
			return NewMalformedDirectiveError(f.TagPos, fmt.Sprintf("setter %s of field %s conflicts with %s", name, f.Name, owner))
		}
		names[name] = "a setter of field " + f.Name
		return nil
	}
	for _, fd := range s.Fields {
		d, err := ResolveBuilder(fd)
		if err != nil {
			return nil, err
		}
		f := &builderField{FieldDescriptor: fd, shape: ShapeOf(fd.Type), directive: d, logical: fd.Type}
		if f.optional() {
			f.logical = f.shape.Inner
		}
		if _, ok := Classify(fd.Type, c.phantom()); ok {
			f.phantom = true
		}
		if !d.None() {
			elem, ok := Classify(f.logical, WrapperSequence)
			if !ok {
				return nil, NewMalformedDirectiveError(fd.TagPos, fmt.Sprintf("%s on field %s of type %s: each requires a slice", builderUsage, fd.Name, fd.Type))
			}
			f.elem = elem
		}
		if f.fullSetter() {
			if err := claim(f, f.Name); err != nil {
				return nil, err
			}
		}
		if !d.None() {
			if err := claim(f, d.Each); err != nil {
				return nil, err
			}
		}
		fields = append(fields, f)
	}
	return fields, nil
}

// GenBuilder generates the builder of a struct: the builder type, its
// constructor, the setters and Build.
func GenBuilder(c *Config, s *TypeSchema) ([]jen.Code, error) {
	fields, err := planBuilder(c, s)
	if err != nil {
		return nil, err
	}
	var (
		name = builderName(s)
		self = func() *jen.Statement { return jen.Op("*").Add(s.Instance(name)) }
		recv = func() *jen.Statement { return jen.Id(recvName).Add(self()) }
		code []jen.Code
	)

	// Builder type.
	code = append(code, jen.Commentf("%s builds %s values. Use %s to create one.", name, s.Name, constructorName(s)).Line().
		Add(s.typeParams(jen.Type().Id(name), nil)).StructFunc(func(g *jen.Group) {
		for _, f := range fields {
			if f.optional() {
				g.Id(storageField(f.Name)).Add(f.Type.Code())
			} else {
				g.Id(storageField(f.Name)).Op("*").Add(f.Type.Code())
			}
		}
	}))

	// Constructor. Sequence fields with an append setter start empty.
	code = append(code, jen.Commentf("%s returns a new %s.", constructorName(s), name).Line().
		Add(s.typeParams(jen.Func().Id(constructorName(s)), nil)).Params().Add(self()).Block(
		jen.Return(jen.Op("&").Add(s.Instance(name)).ValuesFunc(func(g *jen.Group) {
			for _, f := range fields {
				if f.directive.None() || f.shape.Kind != ShapeSequence {
					continue
				}
				g.Id(storageField(f.Name)).Op(":").Op("&").Index().Add(f.elem.Code()).Values()
			}
		})),
	))

	for _, f := range fields {
		store := jen.Id(recvName).Dot(storageField(f.Name))
		if f.fullSetter() {
			body := []jen.Code{}
			if !f.directive.None() {
				body = append(body, jen.Id(valueName).Op("=").Qual("slices", "Clone").Call(jen.Id(valueName)))
			}
			body = append(body,
				store.Clone().Op("=").Op("&").Id(valueName),
				jen.Return(jen.Id(recvName)),
			)
			code = append(code, jen.Commentf("%s sets the %s field.", f.Name, f.Name).Line().
				Func().Params(recv()).Id(f.Name).Params(jen.Id(valueName).Add(f.logical.Code())).Add(self()).Block(body...))
		}
		if !f.directive.None() {
			code = append(code, jen.Commentf("%s appends one element to the %s field.", f.directive.Each, f.Name).Line().
				Func().Params(recv()).Id(f.directive.Each).Params(jen.Id(valueName).Add(f.elem.Code())).Add(self()).Block(
				jen.If(store.Clone().Op("==").Nil()).Block(
					store.Clone().Op("=").Op("&").Index().Add(f.elem.Code()).Values(),
				),
				jen.Op("*").Add(store.Clone()).Op("=").Append(jen.Op("*").Add(store.Clone()), jen.Id(valueName)),
				jen.Return(jen.Id(recvName)),
			))
		}
	}

	// Build checks the required fields in declaration order. Phantom
	// markers hold no value and are never required.
	var body []jen.Code
	for _, f := range fields {
		if f.optional() || f.phantom {
			continue
		}
		body = append(body, jen.If(jen.Id(recvName).Dot(storageField(f.Name)).Op("==").Nil()).Block(
			jen.Return(
				s.Instance(s.Name).Values(),
				jen.Op("&").Qual(RuntimePkg, "MissingFieldError").Values(jen.Dict{
					jen.Id("Type"):  jen.Lit(s.Name),
					jen.Id("Field"): jen.Lit(f.Name),
				}),
			),
		))
	}
	var phantoms []*builderField
	for _, f := range fields {
		if f.phantom && !f.optional() {
			phantoms = append(phantoms, f)
		}
	}
	result := s.Instance(s.Name).ValuesFunc(func(g *jen.Group) {
		for _, f := range fields {
			if f.phantom && !f.optional() {
				continue
			}
			v := jen.Id(recvName).Dot(storageField(f.Name))
			if !f.optional() {
				v = jen.Op("*").Add(v)
			}
			g.Id(f.Name).Op(":").Add(v)
		}
	})
	if len(phantoms) == 0 {
		body = append(body, jen.Return(result, jen.Nil()))
	} else {
		body = append(body, jen.Id(valueName).Op(":=").Add(result))
		for _, f := range phantoms {
			body = append(body, jen.If(jen.Id(recvName).Dot(storageField(f.Name)).Op("!=").Nil()).Block(
				jen.Id(valueName).Dot(f.Name).Op("=").Op("*").Id(recvName).Dot(storageField(f.Name)),
			))
		}
		body = append(body, jen.Return(jen.Id(valueName), jen.Nil()))
	}
	code = append(code, jen.Comment("Build returns the built value, or a *derive.MissingFieldError naming").Line().
		Comment("the first required field that was not set.").Line().
		Func().Params(recv()).Id("Build").Params().Params(s.Instance(s.Name), jen.Error()).Block(body...))
	return code, nil
}
