package gen

import (
	"errors"
	"fmt"
	"go/token"
	"io/fs"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"github.com/dave/jennifer/jen"
	"gopkg.in/yaml.v3"
)

const (
	defaultHeader     = "Code generated by derive. DO NOT EDIT."
	defaultSuffix     = "_derive"
	defaultCapability = "fmt.Stringer"

	// ConfigFile is the name of the configuration file looked up in the
	// working directory.
	ConfigFile = ".derive.yaml"

	// RuntimePkg is the import path of the package generated code refers to.
	RuntimePkg = "github.com/syssam/derive"
)

// Config holds the global codegen configuration.
type Config struct {
	// Header is the comment written at the top of generated files.
	Header string `yaml:"header,omitempty"`
	// Suffix is appended to the base name of a source file to name its
	// generated file, e.g. point.go -> point_derive.go.
	Suffix string `yaml:"suffix,omitempty"`
	// Phantom is the identifier of the phantom marker wrapper.
	Phantom string `yaml:"phantom,omitempty"`
	// Capability is the interface required from type parameters that are
	// printed by generated debug functions, as "importpath.Name".
	Capability string `yaml:"capability,omitempty"`
	// Workers limits the number of concurrent generators.
	Workers int `yaml:"workers,omitempty"`
	// Features are the enabled features. Empty means the default ones.
	Features []Feature `yaml:"features,omitempty"`
	// Types selects types by name in addition to //derive: markers.
	Types []string `yaml:"types,omitempty"`
	// BuildFlags are passed to the package loader.
	BuildFlags []string `yaml:"build_flags,omitempty"`
	// Logger receives progress and error logs. Defaults to a discard logger.
	Logger *slog.Logger `yaml:"-"`
}

// DefaultConfig returns a Config with the default settings.
func DefaultConfig() *Config {
	c := &Config{}
	c.defaults()
	return c
}

// defaults fills the zero fields of the config.
func (c *Config) defaults() {
	if c.Header == "" {
		c.Header = defaultHeader
	}
	if c.Suffix == "" {
		c.Suffix = defaultSuffix
	}
	if c.Phantom == "" {
		c.Phantom = DefaultPhantom
	}
	if c.Capability == "" {
		c.Capability = defaultCapability
	}
	if c.Workers <= 0 {
		c.Workers = runtime.GOMAXPROCS(0)
	}
	if len(c.Features) == 0 {
		for _, f := range AllFeatures {
			if f.Default {
				c.Features = append(c.Features, f)
			}
		}
	}
	if c.Logger == nil {
		c.Logger = slog.New(slog.DiscardHandler)
	}
}

// FeatureEnabled reports if the given feature name is enabled.
func (c *Config) FeatureEnabled(name string) (bool, error) {
	if _, ok := featureByName(name); !ok {
		return false, NewConfigError("Features", name, "unknown feature")
	}
	return c.HasFeature(name), nil
}

// HasFeature reports if the feature is enabled, without validating the name.
func (c *Config) HasFeature(name string) bool {
	for _, f := range c.Features {
		if f.Name == name {
			return true
		}
	}
	return false
}

// Validate checks the config for values that cannot be used.
func (c *Config) Validate() error {
	var errs []error
	if c.Workers < 0 {
		errs = append(errs, NewConfigError("Workers", c.Workers, "must not be negative"))
	}
	if c.Suffix != "" && strings.ContainsAny(c.Suffix, `/\`) {
		errs = append(errs, NewConfigError("Suffix", c.Suffix, "must not contain path separators"))
	}
	if c.Phantom != "" && !isQualifiedName(c.Phantom) {
		errs = append(errs, NewConfigError("Phantom", c.Phantom, "must be an identifier"))
	}
	if c.Capability != "" && !isQualifiedName(c.Capability) {
		errs = append(errs, NewConfigError("Capability", c.Capability, `must be "Name" or "importpath.Name"`))
	}
	for _, f := range c.Features {
		if _, ok := featureByName(f.Name); !ok {
			errs = append(errs, NewConfigError("Features", f.Name, "unknown feature"))
		}
	}
	return errors.Join(errs...)
}

// capability returns the code of the capability interface.
func (c *Config) capability() jen.Code {
	name := c.Capability
	if name == "" {
		name = defaultCapability
	}
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return jen.Qual(name[:i], name[i+1:])
	}
	return jen.Id(name)
}

func (c *Config) phantom() string {
	if c.Phantom == "" {
		return DefaultPhantom
	}
	return c.Phantom
}

func isQualifiedName(s string) bool {
	name := s
	if i := strings.LastIndexByte(s, '.'); i >= 0 {
		if i == 0 {
			return false
		}
		name = s[i+1:]
	}
	return token.IsIdentifier(name)
}

// LoadConfigFile reads a YAML config file. A missing file yields an empty
// config and no error.
func LoadConfigFile(path string) (*Config, error) {
	c := &Config{}
	buf, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(buf, c); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return c, nil
}
