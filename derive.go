// Package derive is the runtime companion of the derive code generator.
//
// Structs marked with a //derive: comment get a builder and a debug
// representation generated next to them:
//
//	//derive:builder,debug
//	type Point struct {
//		X []int32 `builder:"each=PushX"`
//		Y *string
//	}
//
// produces NewPointBuilder, the X, PushX and Y setters, Build, DebugPoint and
// Point.String. This package holds the types the generated code refers to.
package derive

import "reflect"

// Phantom marks a type parameter that is carried by a struct only at the type
// level. Type parameters used solely inside Phantom fields are exempt from the
// capability bound of generated debug functions.
type Phantom[T any] struct{}

// String implements fmt.Stringer.
func (Phantom[T]) String() string {
	return "Phantom[" + reflect.TypeFor[T]().String() + "]"
}
