// Package language provides interfaces for code generation from extracted
// Convex schemas and functions.
//
// Each target language (Rust, Go) implements the Language interface to render
// a single source file from the extracted model.
package language

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/rlch/convextypes"
	"github.com/rlch/convextypes/analysis"
)

// Language represents a target language for code generation.
type Language interface {
	// Name returns the language identifier (e.g., "rust", "go").
	Name() string

	// Extensions returns the output file extensions this language claims,
	// including the leading dot.
	Extensions() []string

	// InferPackageName determines the appropriate package/module name for a directory.
	// Languages without packages return an empty name.
	InferPackageName(dir string) (string, error)

	// Generate renders the declarations for ctx.
	Generate(ctx *GenerateContext) ([]byte, error)
}

// GenerateContext provides information needed for code generation.
type GenerateContext struct {
	// Schema holds the extracted tables. May be nil when only functions are
	// generated.
	Schema *convextypes.Schema

	// Functions are the extracted functions in input order.
	Functions []*convextypes.Function

	// OutFile is the path the result will be written to.
	OutFile string

	// PackageName is the package/module name for generated code.
	// If empty, the language should infer it from OutFile.
	PackageName string

	// Source names the schema file in the generated header.
	Source string
}

// Tables returns the schema's tables, or nil.
func (c *GenerateContext) Tables() []*convextypes.Table {
	if c.Schema == nil {
		return nil
	}

	return c.Schema.Tables
}

// Validate checks every column and parameter type. Generators call it before
// rendering so that hand-built models cannot make them recurse forever.
func (c *GenerateContext) Validate() error {
	for _, table := range c.Tables() {
		for _, col := range table.Columns {
			if err := analysis.CheckType(col.Type, table.Name, col.Name); err != nil {
				return err
			}
		}
	}

	for _, fn := range c.Functions {
		for _, p := range fn.Params {
			if err := analysis.CheckType(p.Type, fn.Name, p.Name); err != nil {
				return err
			}
		}
	}

	return nil
}

// Registration for language discovery.
var languages = make(map[string]Language)

// Register registers a language by name.
func Register(lang Language) {
	languages[lang.Name()] = lang
}

// Get returns a language by name, or nil if not registered.
func Get(name string) Language { //nolint:ireturn
	return languages[name]
}

// RegisteredLanguages returns the names of all registered languages, sorted.
func RegisteredLanguages() []string {
	names := make([]string, 0, len(languages))
	for name := range languages {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

// ForFile returns the language claiming the extension of path, or nil.
func ForFile(path string) Language { //nolint:ireturn
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return nil
	}

	for _, name := range RegisteredLanguages() {
		if slices.Contains(languages[name].Extensions(), ext) {
			return languages[name]
		}
	}

	return nil
}

// Resolve picks the language for a run: the named one when name is set,
// otherwise the one inferred from outFile, otherwise Rust.
func Resolve(name, outFile string) (Language, error) { //nolint:ireturn
	if name != "" {
		if lang := Get(name); lang != nil {
			return lang, nil
		}

		return nil, fmt.Errorf("%w: unknown language %q (available: %s)",
			convextypes.ErrInvalidConfig, name, strings.Join(RegisteredLanguages(), ", "))
	}

	if lang := ForFile(outFile); lang != nil {
		return lang, nil
	}

	if lang := Get(convextypes.LangRust); lang != nil {
		return lang, nil
	}

	return nil, fmt.Errorf("%w: no language registered for %q", convextypes.ErrInvalidConfig, outFile)
}
