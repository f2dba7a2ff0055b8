package convextypes

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Defaults used when the configuration leaves a path empty.
const (
	DefaultSchemaPath = "convex/schema.ts"
	DefaultOutFile    = "src/convex_types.rs"
)

// ErrConfigNotFound is returned when no config file is found walking up.
var ErrConfigNotFound = errors.New("convextypes: no .convextypes.yaml found")

// Config configures a generation run. It is usually loaded from
// .convextypes.yaml and then overridden by command line flags.
type Config struct {
	// SchemaPath is the schema module, relative to the working directory.
	SchemaPath string `yaml:"schema,omitempty"`

	// OutFile is the generated file.
	OutFile string `yaml:"out,omitempty"`

	// FunctionPaths are the function modules, processed in order.
	FunctionPaths []string `yaml:"functions,omitempty"`

	// Lang selects the target language. Empty infers it from OutFile.
	Lang string `yaml:"lang,omitempty"`

	// Package is the package name for targets that need one. Empty infers it
	// from the output directory.
	Package string `yaml:"package,omitempty"`

	// Filter is an expression selecting which functions are generated, for
	// example `!internal && kind != "action"`.
	Filter string `yaml:"filter,omitempty"`
}

// DefaultConfig returns a Config with default paths.
func DefaultConfig() *Config {
	return &Config{
		SchemaPath: DefaultSchemaPath,
		OutFile:    DefaultOutFile,
	}
}

// WithDefaults returns a copy of c with empty paths replaced by defaults.
func (c *Config) WithDefaults() *Config {
	out := *c
	out.FunctionPaths = append([]string(nil), c.FunctionPaths...)

	if out.SchemaPath == "" {
		out.SchemaPath = DefaultSchemaPath
	}

	if out.OutFile == "" {
		out.OutFile = DefaultOutFile
	}

	return &out
}

// Resolve makes relative paths in c relative to dir. It is used for configs
// loaded from a file so that paths are interpreted from the file's location.
func (c *Config) Resolve(dir string) *Config {
	out := *c
	out.FunctionPaths = make([]string, len(c.FunctionPaths))

	join := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}

		return filepath.Join(dir, p)
	}

	out.SchemaPath = join(c.SchemaPath)
	out.OutFile = join(c.OutFile)

	for i, p := range c.FunctionPaths {
		out.FunctionPaths[i] = join(p)
	}

	return &out
}

// DefaultConfigNames are the filenames we search for.
var DefaultConfigNames = []string{".convextypes.yaml", ".convextypes.yml", "convextypes.yaml", "convextypes.yml"}

// LoadConfig finds and loads the nearest config file walking up from dir.
// Relative paths in the file are resolved against the file's directory.
func LoadConfig(dir string) (*Config, error) {
	path, err := FindConfig(dir)
	if err != nil {
		return nil, err
	}

	cfg, err := LoadConfigFile(path)
	if err != nil {
		return nil, err
	}

	return cfg.Resolve(filepath.Dir(path)), nil
}

// FindConfig searches for a config file starting from dir and walking up.
func FindConfig(dir string) (string, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}

	for dir := absDir; ; {
		for _, name := range DefaultConfigNames {
			path := filepath.Join(dir, name)

			if _, err := os.Stat(path); err == nil {
				return path, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrConfigNotFound
		}

		dir = parent
	}
}

// LoadConfigFile loads a config from a specific path.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, &IOError{File: path, Err: err}
	}

	var cfg Config

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, path, err)
	}

	return &cfg, nil
}
