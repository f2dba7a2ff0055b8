package golang

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rlch/convextypes"
	"github.com/rlch/convextypes/language"
)

const permissive = "any"

type structDecl struct {
	name   string
	doc    []string
	fields []*fieldDecl

	// Set for function argument structs.
	fn        *convextypes.Function
	pathConst string
}

type fieldDecl struct {
	name     string
	json     string
	typ      string
	doc      []string
	optional bool
}

type unionDecl struct {
	name     string
	marker   string
	variants []*variantDecl
}

type variantDecl struct {
	name    string
	typ     string
	wrapped bool
}

// generator accumulates declarations in output order. Unions found while
// mapping a struct are declared after all structs.
type generator struct {
	names   *language.Namer
	structs []*structDecl
	unions  []*unionDecl

	// Names that are Go interfaces and therefore already nilable.
	interfaces map[string]bool
}

func newGenerator() *generator {
	return &generator{names: language.NewNamer(), interfaces: make(map[string]bool)}
}

func (g *generator) table(t *convextypes.Table) {
	decl := &structDecl{name: g.names.Unique(language.DeclName(t.Name, "table")), doc: t.Doc}
	if len(decl.doc) == 0 {
		decl.doc = []string{fmt.Sprintf("%s is a document in the %s table.", decl.name, t.Name)}
	}

	fields := language.NewNamer()

	for _, col := range t.Columns {
		decl.fields = append(decl.fields, g.field(fields, col.Name, col.Doc, col.Type, t.Name))
	}

	g.structs = append(g.structs, decl)
}

func (g *generator) function(fn *convextypes.Function) {
	base := language.DeclName(fn.Name)
	qualified := language.DeclName(fn.Module, fn.Name)

	name := g.names.Unique(base+"Args", qualified+"Args")
	prefix := strings.TrimSuffix(name, "Args")

	decl := &structDecl{
		name:      name,
		doc:       fn.Doc,
		fn:        fn,
		pathConst: g.names.Unique(prefix + "Path"),
	}
	if len(decl.doc) == 0 {
		decl.doc = []string{fmt.Sprintf("%s are the arguments of the %s %s.", name, fn.Path(), fn.Kind)}
	}

	fields := language.NewNamer()

	for _, p := range fn.Params {
		decl.fields = append(decl.fields, g.field(fields, p.Name, p.Doc, p.Type, fn.Name))
	}

	g.structs = append(g.structs, decl)
}

func (g *generator) field(names *language.Namer, name string, doc []string, t *convextypes.TypeNode, owner string) *fieldDecl {
	return &fieldDecl{
		name:     names.Unique(exportedName(name)),
		json:     name,
		typ:      g.typeOf(t, []string{owner, name}),
		doc:      doc,
		optional: t.Tag == convextypes.TagOptional,
	}
}

// commonInitialisms are written in upper case inside field names, so that
// "_id" and "userId" become ID and UserID.
var commonInitialisms = map[string]bool{
	"ACL": true, "API": true, "ASCII": true, "CPU": true, "CSS": true,
	"DNS": true, "EOF": true, "GUID": true, "HTML": true, "HTTP": true,
	"HTTPS": true, "ID": true, "IP": true, "JSON": true, "QPS": true,
	"RAM": true, "RPC": true, "SLA": true, "SMTP": true, "SQL": true,
	"SSH": true, "TCP": true, "TLS": true, "TTL": true, "UDP": true,
	"UI": true, "UID": true, "URI": true, "URL": true, "UTF8": true,
	"UUID": true, "VM": true, "XML": true, "XSRF": true, "XSS": true,
}

// exportedName turns a document field name into an exported Go identifier.
func exportedName(name string) string {
	var b strings.Builder

	for _, w := range language.Words(name) {
		if upper := strings.ToUpper(w); commonInitialisms[upper] {
			b.WriteString(upper)
		} else {
			b.WriteString(language.PascalCase(w))
		}
	}

	ident := b.String()
	if ident == "" || !isLetter(ident[0]) {
		ident = "F" + ident
	}

	return ident
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// typeOf maps t to a Go type. owner names the declaration path used for any
// union t requires.
func (g *generator) typeOf(t *convextypes.TypeNode, owner []string) string {
	if t == nil {
		return permissive
	}

	switch t.Tag {
	case convextypes.TagID, convextypes.TagString, convextypes.TagBytes:
		return "string"
	case convextypes.TagNumber:
		return "float64"
	case convextypes.TagInt64:
		return "int64"
	case convextypes.TagBoolean:
		return "bool"
	case convextypes.TagOptional:
		inner := g.typeOf(t.Inner, owner)
		if g.nilable(inner) {
			return inner
		}

		return "*" + inner
	case convextypes.TagArray:
		return "[]" + g.typeOf(t.Element, owner)
	case convextypes.TagObject:
		return "map[string]" + g.objectValue(t, owner)
	case convextypes.TagRecord:
		return "map[string]" + g.typeOf(t.Value, owner)
	case convextypes.TagUnion:
		return g.union(t, owner)
	case convextypes.TagLiteral:
		return literalType(t.Literal)
	default:
		return permissive
	}
}

func (g *generator) nilable(typ string) bool {
	return typ == permissive ||
		strings.HasPrefix(typ, "*") ||
		strings.HasPrefix(typ, "[]") ||
		strings.HasPrefix(typ, "map[") ||
		g.interfaces[typ]
}

// objectValue is the common type of all fields, or the permissive type when
// they differ. Field types are compared on a scratch generator so that an
// object that collapses to the permissive type declares no unions.
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
	name := g.names.Unique(language.DeclName(owner...))
	decl := &unionDecl{name: name, marker: "is" + name}
	g.unions = append(g.unions, decl)
	g.interfaces[name] = true

	variants := language.NewNamer()

	for i, v := range t.Variants {
		typ := g.typeOf(v, append(owner[:len(owner):len(owner)], "variant", strconv.Itoa(i)))
		decl.variants = append(decl.variants, &variantDecl{
			name:    g.names.Unique(name + variants.Unique(variantName(v))),
			typ:     typ,
			wrapped: typ == permissive || strings.HasPrefix(typ, "*") || g.interfaces[typ],
		})
	}

	return name
}

func variantName(t *convextypes.TypeNode) string {
	if t.Tag == convextypes.TagLiteral && t.Literal != nil {
		if name := language.PascalCase(t.Literal.Value); name != "" && isLetter(name[0]) {
			return name
		}

		return "Literal"
	}

	return language.PascalCase(string(t.Tag))
}

func literalType(v *convextypes.LiteralValue) string {
	if v == nil {
		return permissive
	}

	switch v.Kind {
	case convextypes.LiteralString:
		return "string"
	case convextypes.LiteralNumber:
		return "float64"
	case convextypes.LiteralBigInt:
		return "int64"
	case convextypes.LiteralBoolean:
		return "bool"
	default:
		return permissive
	}
}

// render writes unformatted source; go/format takes care of alignment.
func (g *generator) render(pkg, source string) []byte {
	var b strings.Builder

	b.WriteString("// Code generated by convextypes. DO NOT EDIT.\n")

	if source != "" {
		fmt.Fprintf(&b, "// Source: %s\n", source)
	}

	fmt.Fprintf(&b, "\npackage %s\n", pkg)

	for _, s := range g.structs {
		b.WriteByte('\n')
		writeStruct(&b, s)
	}

	for _, u := range g.unions {
		b.WriteByte('\n')
		writeUnion(&b, u)
	}

	return []byte(b.String())
}

func writeDoc(b *strings.Builder, indent string, doc []string) {
	for _, line := range doc {
		fmt.Fprintf(b, "%s// %s\n", indent, line)
	}
}

func writeStruct(b *strings.Builder, s *structDecl) {
	if s.fn != nil {
		fmt.Fprintf(b, "// %s is the path of the %s %s.\n", s.pathConst, s.fn.Name, s.fn.Kind)
		fmt.Fprintf(b, "const %s = %s\n\n", s.pathConst, strconv.Quote(s.fn.Path()))
	}

	writeDoc(b, "", s.doc)
	fmt.Fprintf(b, "type %s struct {\n", s.name)

	for _, f := range s.fields {
		writeDoc(b, "\t", f.doc)

		tag := "json:" + strconv.Quote(jsonName(f))
		fmt.Fprintf(b, "\t%s %s %s\n", f.name, f.typ, structTag(tag))
	}

	b.WriteString("}\n")
}

func jsonName(f *fieldDecl) string {
	if f.optional {
		return f.json + ",omitempty"
	}

	return f.json
}

func structTag(tag string) string {
	if strings.Contains(tag, "`") {
		return strconv.Quote(tag)
	}

	return "`" + tag + "`"
}

func writeUnion(b *strings.Builder, u *unionDecl) {
	names := make([]string, 0, len(u.variants))
	for _, v := range u.variants {
		names = append(names, v.name)
	}

	if len(names) == 0 {
		fmt.Fprintf(b, "// %s has no variants.\n", u.name)
	} else {
		fmt.Fprintf(b, "// %s is one of %s.\n", u.name, strings.Join(names, ", "))
	}

	fmt.Fprintf(b, "type %s interface {\n\t%s()\n}\n", u.name, u.marker)

	for _, v := range u.variants {
		b.WriteByte('\n')

		if v.wrapped {
			fmt.Fprintf(b, "type %s struct {\n\tValue %s\n}\n", v.name, v.typ)
		} else {
			fmt.Fprintf(b, "type %s %s\n", v.name, v.typ)
		}

		fmt.Fprintf(b, "\nfunc (%s) %s() {}\n", v.name, u.marker)
	}
}
