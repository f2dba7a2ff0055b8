// Package rust renders Rust declarations from extracted Convex schemas and
// functions.
//
// Tables become `<Table>Table` structs and functions become `<Function>Args`
// structs carrying FUNCTION_PATH and FUNCTION_KIND constants. All types
// derive serde's Serialize and Deserialize; unions become untagged enums.
//
// # Usage
//
// The generator is typically invoked via the convextypes CLI:
//
//	convextypes generate --out src/convex_types.rs
package rust

import (
	"github.com/rlch/convextypes"
	"github.com/rlch/convextypes/language"
)

// RustLanguage implements language.Language for Rust code generation.
type RustLanguage struct{}

// New creates a new Rust language generator.
func New() *RustLanguage {
	return &RustLanguage{}
}

// Name returns "rust".
func (*RustLanguage) Name() string {
	return convextypes.LangRust
}

// Extensions returns ".rs".
func (*RustLanguage) Extensions() []string {
	return []string{".rs"}
}

// InferPackageName returns an empty name; generated Rust is a plain module.
func (*RustLanguage) InferPackageName(string) (string, error) {
	return "", nil
}

// Generate renders one Rust source file for ctx.
func (*RustLanguage) Generate(ctx *language.GenerateContext) ([]byte, error) {
	if err := ctx.Validate(); err != nil {
		return nil, err
	}

	g := newGenerator()

	for _, table := range ctx.Tables() {
		g.table(table)
	}

	for _, fn := range ctx.Functions {
		g.function(fn)
	}

	return g.render(ctx.Source), nil
}

//nolint:gochecknoinits // Registration pattern requires init.
func init() {
	language.Register(New())
}
