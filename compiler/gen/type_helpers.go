package gen

import (
	"path/filepath"
	"strings"
	"unicode"

	"github.com/go-openapi/inflect"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// =============================================================================
// Naming helpers
// =============================================================================

// Identifiers used inside generated functions. They start with an
// underscore so they never shadow the package-level names a field type
// may refer to.
const (
	recvName  = "_b"
	valueName = "_v"
)

// titleCase capitalizes the first letter of a string and keeps the rest.
// A Caser is stateful, so one is created per call.
func titleCase(s string) string {
	return cases.Title(language.Und, cases.NoLower).String(s)
}

// exportedAs prefixes name with prefix, keeping the visibility of the
// type: exported types get "NewX", unexported ones "newX".
func exportedAs(prefix, name string, exported bool) string {
	if exported {
		return titleCase(prefix) + titleCase(name)
	}
	return strings.ToLower(prefix[:1]) + prefix[1:] + titleCase(name)
}

// builderName returns the name of the builder type of a struct.
func builderName(s *TypeSchema) string {
	return s.Name + "Builder"
}

// constructorName returns the name of the builder constructor.
func constructorName(s *TypeSchema) string {
	return exportedAs("New", builderName(s), s.Exported())
}

// debugName returns the name of the debug function of a struct.
func debugName(s *TypeSchema) string {
	return exportedAs("Debug", s.Name, s.Exported())
}

// storageField returns the builder field holding the value of a struct field.
func storageField(name string) string {
	return "_" + name
}

// OutputFile returns the path of the file generated for a source file.
// Test files keep their _test suffix so the output compiles with them.
func OutputFile(source, suffix string) string {
	dir, base := filepath.Split(source)
	base = strings.TrimSuffix(base, ".go")
	if stem, ok := strings.CutSuffix(base, "_test"); ok {
		return filepath.Join(dir, stem+suffix+"_test.go")
	}
	return filepath.Join(dir, base+suffix+".go")
}

// typeFile returns the file name used for a type that was not read from
// a file, e.g. HTTPClient -> http_client_derive.go.
func typeFile(typeName, suffix string) string {
	return snakeCase(typeName) + suffix + ".go"
}

// snakeCase converts a Go identifier to snake case. Acronyms stay one
// word: HTTPClient -> http_client, ServeHTTP -> serve_http.
func snakeCase(name string) string {
	return inflect.Underscore(foldAcronyms(name))
}

// foldAcronyms lowers the inner letters of upper-case runs, so that every
// word starts with the only capital inflect splits on: HTTPClient -> HttpClient.
func foldAcronyms(name string) string {
	rs := []rune(name)
	out := make([]rune, len(rs))
	for i, r := range rs {
		prevUpper := i > 0 && unicode.IsUpper(rs[i-1])
		nextLower := i+1 < len(rs) && unicode.IsLower(rs[i+1])
		if unicode.IsUpper(r) && prevUpper && !nextLower {
			r = unicode.ToLower(r)
		}
		out[i] = r
	}
	return string(out)
}

// IsGenerated reports if a file name looks like a generated output for the
// given suffix.
func IsGenerated(name, suffix string) bool {
	base := strings.TrimSuffix(filepath.Base(name), ".go")
	base = strings.TrimSuffix(base, "_test")
	return strings.HasSuffix(base, suffix)
}
