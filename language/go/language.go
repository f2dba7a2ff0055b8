// Package golang provides Go code generation from extracted Convex schemas
// and functions.
//
// This package generates a single file holding:
//   - one `<Table>Table` struct per table, with json tags naming the columns
//   - one `<Function>Args` struct and `<Function>Path` constant per function
//   - one sealed interface per union, implemented by a named type per variant
//
// # Usage
//
// The generator is typically invoked via the convextypes CLI:
//
//	convextypes generate --out internal/convex/types.go
//
// # Unions
//
// Unions have no direct Go equivalent. Each variant gets its own named type
// carrying an unexported marker method:
//
//	type MessagesKind interface{ isMessagesKind() }
//	type MessagesKindString string
//	func (MessagesKindString) isMessagesKind() {}
//
// Variants whose Go type cannot carry methods (interfaces and pointers) are
// wrapped in a struct with a single Value field.
package golang

import (
	"fmt"
	"go/format"
	"os"
	"path/filepath"

	"github.com/rlch/convextypes"
	"github.com/rlch/convextypes/language"
)

// GoLanguage implements language.Language for Go code generation.
type GoLanguage struct{}

// Name returns "go".
func (g *GoLanguage) Name() string {
	return convextypes.LangGo
}

// Extensions returns ".go".
func (g *GoLanguage) Extensions() []string {
	return []string{".go"}
}

// InferPackageName determines the Go package name for a directory.
func (g *GoLanguage) InferPackageName(dir string) (string, error) {
	return InferPackageName(dir)
}

// Generate produces one gofmt'ed Go file from ctx.
func (g *GoLanguage) Generate(ctx *language.GenerateContext) ([]byte, error) {
	if err := ctx.Validate(); err != nil {
		return nil, err
	}

	packageName := ctx.PackageName
	if packageName == "" {
		dir := filepath.Dir(ctx.OutFile)

		var err error

		packageName, err = g.InferPackageName(dir)
		if err != nil {
			packageName = SanitizePackageName(filepath.Base(dir))
		}

		// Warn if folder name was a Go keyword
		if IsKeyword(filepath.Base(dir)) {
			fmt.Fprintf(os.Stderr, "warning: folder %q is a Go keyword, using %q as package name\n",
				filepath.Base(dir), packageName)
		}
	}

	gen := newGenerator()

	for _, table := range ctx.Tables() {
		gen.table(table)
	}

	for _, fn := range ctx.Functions {
		gen.function(fn)
	}

	src := gen.render(packageName, ctx.Source)

	formatted, err := format.Source(src)
	if err != nil {
		return nil, &convextypes.SerializationError{Format: "go", Err: err}
	}

	return formatted, nil
}

// New creates a new Go language generator.
func New() *GoLanguage {
	return &GoLanguage{}
}

//nolint:gochecknoinits // Registration pattern requires init.
func init() {
	language.Register(New())
}
