package gen

import (
	"go/token"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Struct tag keys read by the generators.
const (
	// TagBuilder configures the builder of a field: `builder:"each=Alias"`.
	TagBuilder = "builder"
	// TagDebug overrides the debug format of a field: `debug:"0x%04x"`.
	TagDebug = "debug"
)

const (
	builderUsage = "expected `builder:\"each=...\"`"
	debugUsage   = "expected `debug:\"<format>\"`"
)

// BuilderDirective is the resolved builder annotation of a field.
// The zero value means no annotation.
type BuilderDirective struct {
	// Each is the name of the append setter.
	Each string
}

// None reports if the field carries no builder annotation.
func (d BuilderDirective) None() bool { return d.Each == "" }

// DebugDirective is the resolved debug annotation of a field.
// The zero value means no annotation.
type DebugDirective struct {
	// Format is an fmt template with exactly one operand.
	Format string
}

// None reports if the field carries no debug annotation.
func (d DebugDirective) None() bool { return d.Format == "" }

// ResolveBuilder resolves the builder annotation of a field. Only the
// first builder key of the tag is considered.
func ResolveBuilder(f *FieldDescriptor) (BuilderDirective, error) {
	v, ok := f.Tag.Lookup(TagBuilder)
	if !ok {
		return BuilderDirective{}, nil
	}
	key, alias, found := strings.Cut(v, "=")
	alias = strings.TrimSpace(alias)
	if !found || strings.TrimSpace(key) != "each" || !token.IsIdentifier(alias) {
		return BuilderDirective{}, NewMalformedDirectiveError(f.TagPos, builderUsage)
	}
	return BuilderDirective{Each: alias}, nil
}

// ResolveDebug resolves the debug annotation of a field. Only the first
// debug key of the tag is considered.
func ResolveDebug(f *FieldDescriptor) (DebugDirective, error) {
	v, ok := f.Tag.Lookup(TagDebug)
	if !ok {
		return DebugDirective{}, nil
	}
	if n, ok := formatOperands(v); !ok || n != 1 {
		return DebugDirective{}, NewMalformedDirectiveError(f.TagPos, debugUsage)
	}
	return DebugDirective{Format: v}, nil
}

// formatOperands scans an fmt template and returns the highest operand it
// consumes, following the argument numbering of package fmt. ok is false
// when the template has no verb or is malformed.
func formatOperands(format string) (n int, ok bool) {
	var (
		argNum int
		verbs  int
		end    = len(format)
	)
	use := func() {
		argNum++
		n = max(n, argNum)
	}
	// argIndex consumes an explicit [n] index at i.
	argIndex := func(i int) (int, bool) {
		if i >= end || format[i] != '[' {
			return i, true
		}
		j := strings.IndexByte(format[i:], ']')
		if j < 0 {
			return i, false
		}
		idx, err := strconv.Atoi(format[i+1 : i+j])
		if err != nil || idx < 1 {
			return i, false
		}
		argNum = idx - 1
		return i + j + 1, true
	}
	digits := func(i int) int {
		for i < end && format[i] >= '0' && format[i] <= '9' {
			i++
		}
		return i
	}
	for i := 0; i < end; i++ {
		if format[i] != '%' {
			continue
		}
		i++
		if i < end && format[i] == '%' {
			continue
		}
		for i < end && strings.IndexByte("+-# 0", format[i]) >= 0 {
			i++
		}
		var good bool
		if i, good = argIndex(i); !good {
			return 0, false
		}
		if i < end && format[i] == '*' {
			use()
			i++
		} else {
			i = digits(i)
		}
		if i < end && format[i] == '.' {
			i++
			if i, good = argIndex(i); !good {
				return 0, false
			}
			if i < end && format[i] == '*' {
				use()
				i++
			} else {
				i = digits(i)
			}
		}
		if i, good = argIndex(i); !good {
			return 0, false
		}
		if i >= end {
			return 0, false
		}
		r, size := utf8.DecodeRuneInString(format[i:])
		if !unicode.IsLetter(r) {
			return 0, false
		}
		i += size - 1
		use()
		verbs++
	}
	if verbs == 0 {
		return 0, false
	}
	return n, true
}
