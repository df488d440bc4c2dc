package gen

import (
	"fmt"
	"slices"

	"github.com/dave/jennifer/jen"
	"gopkg.in/yaml.v3"
)

var (
	// FeatureBuilder generates a fluent builder with a validating Build method.
	FeatureBuilder = Feature{
		Name:        "builder",
		Stage:       Stable,
		Default:     true,
		Description: "Builder generates NewXBuilder, one setter per field, append setters for `each` fields and Build",
		generate:    GenBuilder,
	}

	// FeatureDebug generates a debug representation function, and a String
	// method for types whose type parameters need no capability bound.
	FeatureDebug = Feature{
		Name:        "debug",
		Stage:       Stable,
		Default:     true,
		Description: "Debug generates DebugX with per-field format overrides and String when unbounded",
		generate:    GenDebug,
	}

	// AllFeatures holds a list of all feature-flags.
	AllFeatures = []Feature{
		FeatureBuilder,
		FeatureDebug,
	}
)

// FeatureStage describes the stage of the codegen feature.
type FeatureStage int

const (
	_ FeatureStage = iota

	// Experimental features are in development and may change or go away.
	Experimental

	// Alpha features are complete, but breaking changes to the generated
	// API are still expected.
	Alpha

	// Beta features have a settled API.
	Beta

	// Stable features are Beta features that have been in use for a while.
	Stable
)

func (s FeatureStage) String() string {
	switch s {
	case Experimental:
		return "experimental"
	case Alpha:
		return "alpha"
	case Beta:
		return "beta"
	case Stable:
		return "stable"
	default:
		return fmt.Sprintf("FeatureStage(%d)", int(s))
	}
}

// A Feature of the derive codegen.
type Feature struct {
	// Name of the feature, as written in //derive: markers.
	Name string

	// Stage of the feature.
	Stage FeatureStage

	// Default values indicates if this feature is enabled by default.
	Default bool

	// A Description of this feature.
	Description string

	// generate emits the declarations of the feature for one type.
	generate func(*Config, *TypeSchema) ([]jen.Code, error)
}

// Generate emits the declarations of the feature for the given type.
func (f Feature) Generate(c *Config, s *TypeSchema) ([]jen.Code, error) {
	if f.generate == nil {
		return nil, NewConfigError("Features", f.Name, "feature has no generator")
	}
	return f.generate(c, s)
}

// MarshalYAML encodes a feature by its name.
func (f Feature) MarshalYAML() (any, error) {
	return f.Name, nil
}

// UnmarshalYAML decodes a feature from its name.
func (f *Feature) UnmarshalYAML(node *yaml.Node) error {
	var name string
	if err := node.Decode(&name); err != nil {
		return err
	}
	feat, ok := featureByName(name)
	if !ok {
		return NewConfigError("features", name, fmt.Sprintf("unknown feature at line %d", node.Line))
	}
	*f = feat
	return nil
}

// FeatureNames returns the names of the given features.
func FeatureNames(features ...Feature) []string {
	names := make([]string, len(features))
	for i, f := range features {
		names[i] = f.Name
	}
	return names
}

// ParseFeatures resolves feature names.
func ParseFeatures(names ...string) ([]Feature, error) {
	features := make([]Feature, 0, len(names))
	for _, name := range names {
		f, ok := featureByName(name)
		if !ok {
			return nil, NewConfigError("Features", name, fmt.Sprintf("unknown feature; use one of %v", FeatureNames(AllFeatures...)))
		}
		features = append(features, f)
	}
	return features, nil
}

func featureByName(name string) (Feature, bool) {
	i := slices.IndexFunc(AllFeatures, func(f Feature) bool { return f.Name == name })
	if i < 0 {
		return Feature{}, false
	}
	return AllFeatures[i], true
}
