package gen

import (
	"errors"
	"fmt"
	"go/token"
	"strings"
)

// Sentinel errors for common failure cases.
var (
	// ErrInvalidSchema indicates a malformed type declaration.
	ErrInvalidSchema = errors.New("derive: invalid schema")
	// ErrMissingConfig indicates a configuration error.
	ErrMissingConfig = errors.New("derive: missing configuration")
	// ErrGenerationFailed indicates a code generation failure.
	ErrGenerationFailed = errors.New("derive: code generation failed")
	// ErrUnsupportedShape indicates a type that is not a plain struct.
	ErrUnsupportedShape = errors.New("derive: unsupported shape")
	// ErrMalformedDirective indicates an annotation or marker that does
	// not follow its grammar.
	ErrMalformedDirective = errors.New("derive: malformed directive")
)

// SchemaError reports a struct declaration that cannot be turned into a
// TypeSchema: bad names, duplicates or unparsable types.
type SchemaError struct {
	Type    string // Struct name
	Field   string // Field name (if applicable)
	Message string
	Cause   error
}

// Error renders "derive: Type.Field: message: cause".
func (e *SchemaError) Error() string {
	var b strings.Builder
	b.WriteString("derive: ")
	b.WriteString(e.Type)
	if e.Field != "" {
		b.WriteString(".")
		b.WriteString(e.Field)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *SchemaError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches the sentinel error for SchemaError.
func (e *SchemaError) Is(target error) bool {
	return target == ErrInvalidSchema
}

// NewSchemaError creates a new SchemaError.
func NewSchemaError(typeName, fieldName, message string, cause error) *SchemaError {
	return &SchemaError{
		Type:    typeName,
		Field:   fieldName,
		Message: message,
		Cause:   cause,
	}
}

// ConfigError reports an invalid generator option or config file entry.
type ConfigError struct {
	Option  string
	Value   any
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("derive: option %s=%v: %s", e.Option, e.Value, e.Message)
	}
	return fmt.Sprintf("derive: option %s: %s", e.Option, e.Message)
}

// Is reports whether the target matches the sentinel error for ConfigError.
func (e *ConfigError) Is(target error) bool {
	return target == ErrMissingConfig
}

// NewConfigError creates a new ConfigError.
func NewConfigError(option string, value any, message string) *ConfigError {
	return &ConfigError{
		Option:  option,
		Value:   value,
		Message: message,
	}
}

// UnsupportedShapeError is returned when a type selected for generation
// is not a struct with named fields.
type UnsupportedShapeError struct {
	Type   string
	Pos    token.Position
	Reason string
}

// Error implements the error interface.
func (e *UnsupportedShapeError) Error() string {
	msg := fmt.Sprintf("derive: unsupported shape for type %s: %s", e.Type, e.Reason)
	if e.Pos.IsValid() {
		return e.Pos.String() + ": " + msg
	}
	return msg
}

// Is reports whether the target matches the sentinel error for UnsupportedShapeError.
func (e *UnsupportedShapeError) Is(target error) bool {
	return target == ErrUnsupportedShape
}

// NewUnsupportedShapeError creates a new UnsupportedShapeError.
func NewUnsupportedShapeError(typeName string, pos token.Position, reason string) *UnsupportedShapeError {
	return &UnsupportedShapeError{Type: typeName, Pos: pos, Reason: reason}
}

// MalformedDirectiveError reports an annotation that could not be
// interpreted, with the source position of the offending tag or marker.
type MalformedDirectiveError struct {
	Message string
	Pos     token.Position
}

// Error implements the error interface.
func (e *MalformedDirectiveError) Error() string {
	if e.Pos.IsValid() {
		return e.Pos.String() + ": " + e.Message
	}
	return e.Message
}

// Is reports whether the target matches the sentinel error for MalformedDirectiveError.
func (e *MalformedDirectiveError) Is(target error) bool {
	return target == ErrMalformedDirective
}

// NewMalformedDirectiveError creates a new MalformedDirectiveError.
func NewMalformedDirectiveError(pos token.Position, message string) *MalformedDirectiveError {
	return &MalformedDirectiveError{Message: message, Pos: pos}
}

// GenerationError reports a failure while producing or cleaning up a
// generated file.
type GenerationError struct {
	Phase   string // "render", "format", "write" or "cleanup"
	File    string
	Message string
	Cause   error
}

// Error renders "derive: phase file: message: cause".
func (e *GenerationError) Error() string {
	var b strings.Builder
	b.WriteString("derive: ")
	if e.Phase != "" {
		b.WriteString(e.Phase)
	} else {
		b.WriteString("generate")
	}
	if e.File != "" {
		b.WriteString(" ")
		b.WriteString(e.File)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches the sentinel error for GenerationError.
func (e *GenerationError) Is(target error) bool {
	return target == ErrGenerationFailed
}

// NewGenerationError creates a new GenerationError.
func NewGenerationError(phase, file, message string, cause error) *GenerationError {
	return &GenerationError{
		Phase:   phase,
		File:    file,
		Message: message,
		Cause:   cause,
	}
}

// IsSchemaError reports whether the error is a SchemaError.
func IsSchemaError(err error) bool {
	var schemaErr *SchemaError
	return errors.As(err, &schemaErr)
}

// IsConfigError reports whether the error is a ConfigError.
func IsConfigError(err error) bool {
	var configErr *ConfigError
	return errors.As(err, &configErr)
}

// IsUnsupportedShape reports whether the error is an UnsupportedShapeError.
func IsUnsupportedShape(err error) bool {
	var shapeErr *UnsupportedShapeError
	return errors.As(err, &shapeErr)
}

// IsMalformedDirective reports whether the error is a MalformedDirectiveError.
func IsMalformedDirective(err error) bool {
	var dirErr *MalformedDirectiveError
	return errors.As(err, &dirErr)
}

// IsGenerationError reports whether the error is a GenerationError.
func IsGenerationError(err error) bool {
	var genErr *GenerationError
	return errors.As(err, &genErr)
}
