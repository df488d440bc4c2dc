package gen

import (
	"errors"
	"log/slog"
	"strings"
)

// Option configures code generation.
type Option func(*Config) error

// WithHeader sets the file header comment.
// The header is added at the top of each generated file.
func WithHeader(header string) Option {
	return func(c *Config) error {
		c.Header = header
		return nil
	}
}

// WithSuffix sets the suffix of generated file names.
// For example, "_gen" writes point.go's output to point_gen.go.
func WithSuffix(suffix string) Option {
	return func(c *Config) error {
		if suffix == "" {
			return NewConfigError("Suffix", nil, "suffix cannot be empty")
		}
		if strings.ContainsAny(suffix, `/\`) {
			return NewConfigError("Suffix", suffix, "suffix must not contain path separators")
		}
		c.Suffix = suffix
		return nil
	}
}

// WithPhantom sets the identifier of the phantom marker wrapper.
func WithPhantom(name string) Option {
	return func(c *Config) error {
		if !isQualifiedName(name) {
			return NewConfigError("Phantom", name, "phantom must be an identifier")
		}
		c.Phantom = name
		return nil
	}
}

// WithCapability sets the interface required from printed type parameters,
// as "importpath.Name" (for example "fmt.Stringer").
func WithCapability(name string) Option {
	return func(c *Config) error {
		if !isQualifiedName(name) {
			return NewConfigError("Capability", name, `capability must be "Name" or "importpath.Name"`)
		}
		c.Capability = name
		return nil
	}
}

// WithWorkers sets the number of parallel generators.
func WithWorkers(n int) Option {
	return func(c *Config) error {
		if n < 0 {
			return NewConfigError("Workers", n, "workers must not be negative")
		}
		c.Workers = n
		return nil
	}
}

// WithFeatures enables specific features.
// Features control which declarations are generated.
func WithFeatures(features ...Feature) Option {
	return func(c *Config) error {
		c.Features = append(c.Features, features...)
		return nil
	}
}

// WithFeatureNames enables features by name.
func WithFeatureNames(names ...string) Option {
	return func(c *Config) error {
		features, err := ParseFeatures(names...)
		if err != nil {
			return err
		}
		c.Features = append(c.Features, features...)
		return nil
	}
}

// WithTypes selects types by name in addition to //derive: markers.
func WithTypes(names ...string) Option {
	return func(c *Config) error {
		c.Types = append(c.Types, names...)
		return nil
	}
}

// WithBuildFlags sets custom build flags for loading packages.
func WithBuildFlags(flags ...string) Option {
	return func(c *Config) error {
		c.BuildFlags = append(c.BuildFlags, flags...)
		return nil
	}
}

// WithLogger sets the logger used during generation.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) error {
		if l == nil {
			return NewConfigError("Logger", nil, "logger cannot be nil")
		}
		c.Logger = l
		return nil
	}
}

// Apply applies options to the config.
// It returns the first error encountered.
func (c *Config) Apply(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return err
		}
	}
	return nil
}

// ApplyAll applies options and collects all errors.
// Returns a joined error if any options failed.
func (c *Config) ApplyAll(opts ...Option) error {
	var errs []error
	for _, opt := range opts {
		if err := opt(c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewConfig creates a new Config with the given options.
func NewConfig(opts ...Option) (*Config, error) {
	c := &Config{}
	if err := c.Apply(opts...); err != nil {
		return nil, err
	}
	return c, nil
}

// MustNewConfig creates a new Config with the given options.
// It panics if any option fails.
func MustNewConfig(opts ...Option) *Config {
	c, err := NewConfig(opts...)
	if err != nil {
		panic(err)
	}
	return c
}
