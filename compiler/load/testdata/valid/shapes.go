package valid

import (
	"fmt"
	"time"

	"github.com/syssam/derive"
)

// Point is a point.
//
//derive:builder,debug
type Point struct {
	X []int32 `builder:"each=PushX"`
	Y *string
}

//derive:debug
type Tagged[M any, T fmt.Stringer] struct {
	ID, Seq int
	value   T
	marker  derive.Phantom[M]
}

// Deadline is selected by name only.
type Deadline struct {
	At time.Time `debug:"%s"`
}

// Color is not a struct.
//
//derive:debug
type Color int

// Unmarked is ignored.
type Unmarked struct {
	A int
}
