// Package module loads and caches the TypeScript source files a generation
// run reads: the schema module and any number of function modules.
package module

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/rlch/convextypes"
)

// ErrModuleNotFound is returned when a path does not name an existing file.
var ErrModuleNotFound = errors.New("module not found")

// Module is one parsed source file.
type Module struct {
	// Path is the absolute file path.
	Path string

	// Name is the callable module name, e.g. "messages" for
	// convex/messages.ts.
	Name string

	Program *convextypes.Program
}

// NewModule creates a module for an already parsed program.
func NewModule(path string, prog *convextypes.Program) *Module {
	return &Module{Path: path, Name: convextypes.ModuleName(path), Program: prog}
}

// Loader handles loading and caching of source modules.
type Loader struct {
	// cache stores loaded modules by absolute path.
	cache map[string]*Module

	// Dir resolves relative paths. Empty means the working directory.
	Dir string

	// Parser is the function used to parse source files.
	// Defaults to convextypes.Parse but can be overridden for testing.
	Parser func(filename string, data []byte) (*convextypes.Program, error)
}

// NewLoader creates a new module loader.
func NewLoader() *Loader {
	return &Loader{
		cache:  make(map[string]*Module),
		Parser: convextypes.Parse,
	}
}

// LoadSchema loads the schema module. A path that does not exist or cannot be
// made absolute fails with convextypes.ErrMissingSchemaFile.
func (l *Loader) LoadSchema(path string) (*Module, error) {
	absPath, err := l.resolvePath(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", convextypes.ErrMissingSchemaFile, path, err)
	}

	return l.loadAbsolute(absPath)
}

// Load loads a function module.
// Relative paths are resolved from Dir, or the working directory.
// Returns a cached module if already loaded.
func (l *Loader) Load(path string) (*Module, error) {
	if err := checkFunctionPath(path); err != nil {
		return nil, err
	}

	absPath, err := l.resolvePath(path)
	if err != nil {
		if errors.Is(err, ErrModuleNotFound) {
			return nil, &convextypes.IOError{File: path, Err: err}
		}

		return nil, &convextypes.PathError{Path: path, Reason: err.Error()}
	}

	return l.loadAbsolute(absPath)
}

// checkFunctionPath rejects paths without a usable file name.
func checkFunctionPath(path string) error {
	if !utf8.ValidString(path) {
		return &convextypes.PathError{Path: path, Reason: "path is not valid UTF-8", Unicode: true}
	}

	base := filepath.Base(path)
	if path == "" || base == "." || base == ".." || base == string(filepath.Separator) {
		return &convextypes.PathError{Path: path, Reason: "missing file name"}
	}

	return nil
}

// resolvePath resolves a path to an absolute, existing file path.
func (l *Loader) resolvePath(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("%w: empty path", ErrModuleNotFound)
	}

	if !filepath.IsAbs(path) {
		baseDir := l.Dir
		if baseDir == "" {
			var err error

			baseDir, err = os.Getwd()
			if err != nil {
				return "", fmt.Errorf("failed to get working directory: %w", err)
			}
		}

		path = filepath.Join(baseDir, path)
	}

	return normalizeSourcePath(path)
}

// normalizeSourcePath ensures the path exists, trying a .ts extension when
// none is given.
func normalizeSourcePath(path string) (string, error) {
	path = filepath.Clean(path)

	if isFile(path) {
		return filepath.Abs(path)
	}

	if filepath.Ext(path) == "" && isFile(path+".ts") {
		return filepath.Abs(path + ".ts")
	}

	return "", fmt.Errorf("%w: %s", ErrModuleNotFound, path)
}

func isFile(path string) bool {
	info, err := os.Stat(path)

	return err == nil && info.Mode().IsRegular()
}

// loadAbsolute loads a module from an absolute path.
func (l *Loader) loadAbsolute(absPath string) (*Module, error) {
	if mod, ok := l.cache[absPath]; ok {
		return mod, nil
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			err = fmt.Errorf("%w: %w", ErrModuleNotFound, err)
		}

		return nil, &convextypes.IOError{File: absPath, Err: err}
	}

	prog, err := l.Parser(absPath, data)
	if err != nil {
		return nil, err
	}

	mod := NewModule(absPath, prog)
	l.cache[absPath] = mod

	return mod, nil
}

// Clear clears the module cache.
func (l *Loader) Clear() {
	l.cache = make(map[string]*Module)
}

// Cached returns all cached modules.
func (l *Loader) Cached() map[string]*Module {
	result := make(map[string]*Module, len(l.cache))
	maps.Copy(result, l.cache)

	return result
}
