package golang

import (
	"go/build"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

// packageStrategy returns the package name it finds in dir, or "".
type packageStrategy func(dir string) string

// packageStrategies are tried in order by InferPackageName:
//  1. go/build.ImportDir, which respects build tags
//  2. the package clause of any non-test .go file, for files hidden by tags
var packageStrategies = []packageStrategy{
	importDirPackage,
	packageClause,
}

// InferPackageName determines the Go package name for the directory the
// generated file is written to. When no Go files exist there yet (the usual
// case for a fresh output directory) the sanitized directory name is used.
func InferPackageName(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}

	for _, strategy := range packageStrategies {
		if name := strategy(abs); name != "" {
			return name, nil
		}
	}

	return SanitizePackageName(filepath.Base(abs)), nil
}

func importDirPackage(dir string) string {
	pkg, err := build.ImportDir(dir, 0)
	if err != nil {
		return ""
	}

	return pkg.Name
}

func packageClause(dir string) string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}

	fset := token.NewFileSet()

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".go" || strings.HasSuffix(name, "_test.go") {
			continue
		}

		f, err := parser.ParseFile(fset, filepath.Join(dir, name), nil, parser.PackageClauseOnly)
		if err == nil && f.Name != nil && f.Name.Name != "" {
			return f.Name.Name
		}
	}

	return ""
}

// SanitizePackageName converts a string to a valid Go package name: letters,
// digits and underscores are kept and lowercased, a leading digit or empty
// result gets a "pkg" prefix and a keyword gets a "pkg" suffix.
//
//	"convex-types" -> "convextypes"
//	"Convex.API"   -> "convexapi"
//	"2024"         -> "pkg2024"
//	"func"         -> "funcpkg"
func SanitizePackageName(name string) string {
	result := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			return unicode.ToLower(r)
		}

		return -1
	}, name)

	if result == "" || unicode.IsDigit(rune(result[0])) {
		result = "pkg" + result
	}

	if IsKeyword(result) {
		result += "pkg"
	}

	return result
}

// IsKeyword returns true if name is a Go keyword.
func IsKeyword(name string) bool {
	return token.Lookup(name).IsKeyword()
}
