// Package gen generates builders and debug functions for Go structs.
//
// # Architecture
//
// The code generation pipeline follows this flow:
//
//	Go package (marked with //derive: comments)
//	        ↓
//	   load.Record (text-based declarations)
//	        ↓
//	   TypeSchema (parsed TypeExpr trees, directives)
//	        ↓
//	   GenBuilder / GenDebug (jennifer declarations, in parallel)
//	        ↓
//	   <file>_derive.go next to each source file
//
// # Shapes
//
// Field types are classified by their outermost layer only:
//
//   - *T is optional: the builder may leave it unset and Build keeps nil.
//   - []T is a sequence: a `builder:"each=Name"` tag adds an append setter.
//   - Phantom[T] (the configured phantom marker) carries a type parameter
//     with no value; parameters used only there need no capability bound.
//     Phantom fields still get a setter, but Build does not require them
//     and leaves them at their zero value when unset.
//
// Every other field is required: Build returns a *derive.MissingFieldError
// naming the first one that was never set.
//
// # Annotations
//
// Field annotations are struct tags:
//
//	type Command struct {
//		Args []string `builder:"each=Arg"`
//		Mode uint32   `debug:"%#o"`
//	}
//
// Only the first occurrence of a key is read. A malformed value fails with a
// MalformedDirectiveError positioned at the tag.
//
// # Error Handling
//
// The package uses structured error types for better error handling:
//
//   - UnsupportedShapeError: the type is not a struct with named fields
//   - MalformedDirectiveError: a tag or marker does not follow its grammar
//   - SchemaError: invalid names or unparsable types
//   - ConfigError: configuration errors
//   - GenerationError: render, format or write failures
//
// Example error handling:
//
//	err := gen.Generate(ctx, config, pkgs...)
//	if errors.Is(err, gen.ErrMalformedDirective) {
//	    // Fix the struct tag reported in err
//	}
//
// # Configuration
//
// Configuration is done via the functional options pattern, or a
// .derive.yaml file read with LoadConfigFile:
//
//	config, err := gen.NewConfig(
//	    gen.WithSuffix("_gen"),
//	    gen.WithCapability("fmt.Stringer"),
//	    gen.WithFeatures(gen.FeatureBuilder),
//	)
//
// # Generated Output
//
// For a struct Point[T] the builder feature emits PointBuilder[T],
// NewPointBuilder, one setter per field, the append setters and Build.
// The debug feature emits DebugPoint and, when no type parameter needs the
// capability, Point[T].String.
package gen
