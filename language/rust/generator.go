package rust

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rlch/convextypes"
	"github.com/rlch/convextypes/language"
)

const (
	permissive = "serde_json::Value"
	mapType    = "std::collections::BTreeMap"
	derive     = "#[derive(Debug, Clone, PartialEq, Serialize, Deserialize)]"
)

type structDecl struct {
	name   string
	doc    []string
	fields []*fieldDecl

	// Set for function argument structs.
	path string
	kind convextypes.FunctionKind
}

type fieldDecl struct {
	name     string
	rename   string
	typ      string
	doc      []string
	optional bool
}

type enumDecl struct {
	name     string
	variants []*variantDecl

	// Unions of string literals serialize as plain strings.
	untagged bool
}

// variantDecl is a newtype variant, or a unit variant when typ is empty.
type variantDecl struct {
	name   string
	typ    string
	rename string
}

// generator accumulates declarations in output order. Unions found while
// mapping a struct are declared after all structs.
type generator struct {
	names   *language.Namer
	structs []*structDecl
	enums   []*enumDecl
}

func newGenerator() *generator {
	return &generator{names: language.NewNamer()}
}

func (g *generator) table(t *convextypes.Table) {
	name := g.names.Unique(language.DeclName(t.Name, "table"))
	decl := &structDecl{name: name, doc: t.Doc}
	fields := language.NewNamer()

	for _, col := range t.Columns {
		decl.fields = append(decl.fields, g.field(fields, col.Name, col.Doc, col.Type, t.Name))
	}

	g.structs = append(g.structs, decl)
}

func (g *generator) function(fn *convextypes.Function) {
	name := g.names.Unique(
		language.DeclName(fn.Name, "args"),
		language.DeclName(fn.Module, fn.Name, "args"),
	)
	decl := &structDecl{name: name, doc: fn.Doc, path: fn.Path(), kind: fn.Kind}
	fields := language.NewNamer()

	for _, p := range fn.Params {
		decl.fields = append(decl.fields, g.field(fields, p.Name, p.Doc, p.Type, fn.Name))
	}

	g.structs = append(g.structs, decl)
}

func (g *generator) field(names *language.Namer, name string, doc []string, t *convextypes.TypeNode, owner string) *fieldDecl {
	ident, rename := fieldIdent(name)
	if names.Taken(ident) {
		ident, rename = names.Unique(ident), name
	} else {
		names.Unique(ident)
	}

	return &fieldDecl{
		name:     ident,
		rename:   rename,
		typ:      g.typeOf(t, []string{owner, name}),
		doc:      doc,
		optional: t.Tag == convextypes.TagOptional,
	}
}

// typeOf maps t to a Rust type. owner names the declaration path used for
// any enum t requires.
func (g *generator) typeOf(t *convextypes.TypeNode, owner []string) string {
	if t == nil {
		return permissive
	}

	switch t.Tag {
	case convextypes.TagID, convextypes.TagString, convextypes.TagBytes:
		return "String"
	case convextypes.TagNumber:
		return "f64"
	case convextypes.TagInt64:
		return "i64"
	case convextypes.TagBoolean:
		return "bool"
	case convextypes.TagOptional:
		return "Option<" + g.typeOf(t.Inner, owner) + ">"
	case convextypes.TagArray:
		return "Vec<" + g.typeOf(t.Element, owner) + ">"
	case convextypes.TagObject:
		return mapOf(g.objectValue(t, owner))
	case convextypes.TagRecord:
		return mapOf(g.typeOf(t.Value, owner))
	case convextypes.TagUnion:
		return g.union(t, owner)
	case convextypes.TagLiteral:
		return literalType(t.Literal)
	default:
		return permissive
	}
}

// objectValue is the common type of all fields, or the permissive type when
// they differ. Field types are compared on a scratch generator so that an
// object that collapses to the permissive type declares no enums.
func (g *generator) objectValue(t *convextypes.TypeNode, owner []string) string {
	if len(t.Fields) == 0 {
		return permissive
	}

	scratch := newGenerator()
	first := t.Fields[0]
	common := scratch.typeOf(first.Type, append(owner[:len(owner):len(owner)], first.Name))

	for _, f := range t.Fields[1:] {
		if scratch.typeOf(f.Type, append(owner[:len(owner):len(owner)], f.Name)) != common {
			return permissive
		}
	}

	return g.typeOf(first.Type, append(owner[:len(owner):len(owner)], first.Name))
}

func (g *generator) union(t *convextypes.TypeNode, owner []string) string {
	decl := &enumDecl{name: g.names.Unique(language.DeclName(owner...))}
	g.enums = append(g.enums, decl)

	if stringLiterals(t.Variants) {
		g.literalVariants(decl, t.Variants)

		return decl.name
	}

	decl.untagged = true
	variants := language.NewNamer()

	for i, v := range t.Variants {
		decl.variants = append(decl.variants, &variantDecl{
			name: variants.Unique(variantName(v)),
			typ:  g.typeOf(v, append(owner[:len(owner):len(owner)], "variant", strconv.Itoa(i))),
		})
	}

	return decl.name
}

// literalVariants declares one unit variant per distinct string.
func (g *generator) literalVariants(decl *enumDecl, literals []*convextypes.TypeNode) {
	variants := language.NewNamer()
	seen := make(map[string]bool, len(literals))

	for _, v := range literals {
		if seen[v.Literal.Value] {
			continue
		}

		seen[v.Literal.Value] = true
		decl.variants = append(decl.variants, &variantDecl{
			name:   variants.Unique(variantName(v)),
			rename: v.Literal.Value,
		})
	}
}

func stringLiterals(variants []*convextypes.TypeNode) bool {
	if len(variants) == 0 {
		return false
	}

	for _, v := range variants {
		if v == nil || v.Tag != convextypes.TagLiteral || v.Literal == nil || v.Literal.Kind != convextypes.LiteralString {
			return false
		}
	}

	return true
}

func variantName(t *convextypes.TypeNode) string {
	if t.Tag == convextypes.TagLiteral && t.Literal != nil {
		name := language.PascalCase(t.Literal.Value)

		switch {
		case name == "" || !isIdentStart(name[0]):
			return "Literal"
		case reservedKeywords[name] || rawKeywords[name]:
			return name + "_"
		}

		return name
	}

	return language.PascalCase(string(t.Tag))
}

func literalType(v *convextypes.LiteralValue) string {
	if v == nil {
		return permissive
	}

	switch v.Kind {
	case convextypes.LiteralString:
		return "String"
	case convextypes.LiteralNumber:
		return "f64"
	case convextypes.LiteralBigInt:
		return "i64"
	case convextypes.LiteralBoolean:
		return "bool"
	default:
		return permissive
	}
}

func mapOf(value string) string {
	return mapType + "<String, " + value + ">"
}

func (g *generator) render(source string) []byte {
	var b strings.Builder

	b.WriteString("// Code generated by convextypes. DO NOT EDIT.\n")

	if source != "" {
		fmt.Fprintf(&b, "// Source: %s\n", source)
	}

	b.WriteString("\nuse serde::{Deserialize, Serialize};\n")

	for _, s := range g.structs {
		b.WriteByte('\n')
		writeStruct(&b, s)
	}

	for _, e := range g.enums {
		b.WriteByte('\n')
		writeEnum(&b, e)
	}

	return []byte(b.String())
}

func writeDoc(b *strings.Builder, indent string, doc []string) {
	for _, line := range doc {
		fmt.Fprintf(b, "%s/// %s\n", indent, line)
	}
}

func writeStruct(b *strings.Builder, s *structDecl) {
	writeDoc(b, "", s.doc)
	b.WriteString(derive + "\n")
	b.WriteString("#[allow(non_snake_case)]\n")

	if len(s.fields) == 0 {
		fmt.Fprintf(b, "pub struct %s {}\n", s.name)
	} else {
		fmt.Fprintf(b, "pub struct %s {\n", s.name)

		for _, f := range s.fields {
			writeDoc(b, "    ", f.doc)

			if f.rename != "" {
				fmt.Fprintf(b, "    #[serde(rename = %s)]\n", strconv.Quote(f.rename))
			}

			if f.optional {
				b.WriteString("    #[serde(default, skip_serializing_if = \"Option::is_none\")]\n")
			}

			fmt.Fprintf(b, "    pub %s: %s,\n", f.name, f.typ)
		}

		b.WriteString("}\n")
	}

	if s.path != "" {
		fmt.Fprintf(b, "\nimpl %s {\n", s.name)
		fmt.Fprintf(b, "    pub const FUNCTION_PATH: &'static str = %s;\n", strconv.Quote(s.path))
		fmt.Fprintf(b, "    pub const FUNCTION_KIND: &'static str = %s;\n", strconv.Quote(string(s.kind)))
		b.WriteString("}\n")
	}
}

func writeEnum(b *strings.Builder, e *enumDecl) {
	b.WriteString(derive + "\n")

	if e.untagged {
		b.WriteString("#[serde(untagged)]\n")
	}

	fmt.Fprintf(b, "pub enum %s {\n", e.name)

	for _, v := range e.variants {
		if v.typ == "" {
			fmt.Fprintf(b, "    #[serde(rename = %s)]\n", strconv.Quote(v.rename))
			fmt.Fprintf(b, "    %s,\n", v.name)

			continue
		}

		fmt.Fprintf(b, "    %s(%s),\n", v.name, v.typ)
	}

	b.WriteString("}\n")
}
