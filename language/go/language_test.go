package golang

import (
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rlch/convextypes"
	"github.com/rlch/convextypes/language"
)

func scalar(tag convextypes.TypeTag) *convextypes.TypeNode {
	return convextypes.Scalar(tag)
}

func testModel() *language.GenerateContext {
	return &language.GenerateContext{
		Schema: &convextypes.Schema{Tables: []*convextypes.Table{
			{
				Name: "users",
				Doc:  []string{"Registered accounts."},
				Columns: []*convextypes.Column{
					{Name: "name", Doc: []string{"Display name."}, Type: scalar(convextypes.TagString)},
					{Name: "age", Type: scalar(convextypes.TagNumber)},
					{Name: "isActive", Type: scalar(convextypes.TagBoolean)},
					{Name: "tags", Type: convextypes.ArrayOf(scalar(convextypes.TagString))},
					{Name: "metadata", Type: convextypes.ObjectOf(
						convextypes.FieldOf("createdAt", scalar(convextypes.TagNumber)),
						convextypes.FieldOf("updatedAt", scalar(convextypes.TagNumber)),
					)},
					{Name: "type", Type: convextypes.OptionalOf(scalar(convextypes.TagString))},
					{Name: "with space", Type: convextypes.RecordOf(scalar(convextypes.TagString), scalar(convextypes.TagInt64))},
				},
			},
			{
				Name: "messages",
				Columns: []*convextypes.Column{
					{Name: "author", Type: scalar(convextypes.TagID)},
					{Name: "kind", Type: convextypes.UnionOf(
						convextypes.StringLiteral("text"),
						convextypes.StringLiteral("image"),
						scalar(convextypes.TagNull),
					)},
					{Name: "payload", Type: convextypes.ObjectOf(
						convextypes.FieldOf("a", scalar(convextypes.TagString)),
						convextypes.FieldOf("b", scalar(convextypes.TagNumber)),
					)},
					{Name: "extra", Type: convextypes.ArrayOf(nil)},
				},
			},
		}},
		Functions: []*convextypes.Function{
			{
				Name: "list", Module: "messages", Kind: convextypes.KindQuery,
				Params: []*convextypes.FunctionParam{
					{Name: "channel", Type: scalar(convextypes.TagID)},
					{Name: "limit", Type: convextypes.OptionalOf(scalar(convextypes.TagNumber))},
					{Name: "filter", Type: convextypes.OptionalOf(convextypes.UnionOf(
						scalar(convextypes.TagString),
						convextypes.OptionalOf(scalar(convextypes.TagInt64)),
					))},
				},
			},
			{
				Name: "send", Module: "messages", Kind: convextypes.KindMutation,
				Params: []*convextypes.FunctionParam{
					{Name: "body", Type: scalar(convextypes.TagString)},
				},
			},
			{Name: "send", Module: "admin", Kind: convextypes.KindMutation, Internal: true},
		},
		PackageName: "convex",
		Source:      "convex/schema.ts",
	}
}

// normalize collapses whitespace so assertions do not depend on gofmt
// alignment.
func normalize(code string) string {
	return strings.Join(strings.Fields(code), " ")
}

func declarations(t *testing.T, src []byte) (*ast.File, map[string]bool) {
	t.Helper()

	f, err := parser.ParseFile(token.NewFileSet(), "types.go", src, parser.ParseComments)
	require.NoError(t, err)

	names := make(map[string]bool)

	for _, decl := range f.Decls {
		gen, ok := decl.(*ast.GenDecl)
		if !ok {
			continue
		}

		for _, spec := range gen.Specs {
			switch spec := spec.(type) {
			case *ast.TypeSpec:
				names[spec.Name.Name] = true
			case *ast.ValueSpec:
				for _, n := range spec.Names {
					names[n.Name] = true
				}
			}
		}
	}

	return f, names
}

func TestGoLanguageName(t *testing.T) {
	t.Parallel()

	lang := New()
	assert.Equal(t, "go", lang.Name())
	assert.Equal(t, []string{".go"}, lang.Extensions())
}

func TestLanguageRegistry(t *testing.T) {
	t.Parallel()

	// Go language should be auto-registered via init()
	lang := language.Get("go")
	require.NotNil(t, lang)
	assert.Equal(t, "go", lang.Name())

	// Non-existent language
	assert.Nil(t, language.Get("nonexistent"))

	assert.Contains(t, language.RegisteredLanguages(), "go")
	assert.Equal(t, lang, language.ForFile("internal/convex/types.go"))

	resolved, err := language.Resolve("", "internal/convex/types.go")
	require.NoError(t, err)
	assert.Equal(t, "go", resolved.Name())
}

func TestGoLanguageGenerate(t *testing.T) {
	t.Parallel()

	out, err := New().Generate(testModel())
	require.NoError(t, err)

	f, names := declarations(t, out)
	assert.Equal(t, "convex", f.Name.Name)

	for _, want := range []string{
		"UsersTable", "MessagesTable",
		"ListArgs", "ListPath", "SendArgs", "SendPath", "AdminSendArgs", "AdminSendPath",
		"MessagesKind", "MessagesKindText", "MessagesKindImage", "MessagesKindNull",
		"ListFilter", "ListFilterString", "ListFilterOptional",
	} {
		assert.True(t, names[want], "missing declaration %s", want)
	}

	code := normalize(string(out))
	for _, want := range []string{
		"// Code generated by convextypes. DO NOT EDIT. // Source: convex/schema.ts",
		"// Registered accounts. type UsersTable struct {",
		"// Display name. Name string `json:\"name\"`",
		"Age float64 `json:\"age\"`",
		"IsActive bool `json:\"isActive\"`",
		"Tags []string `json:\"tags\"`",
		"Metadata map[string]float64 `json:\"metadata\"`",
		"Type *string `json:\"type,omitempty\"`",
		"WithSpace map[string]int64 `json:\"with space\"`",
		"// MessagesTable is a document in the messages table.",
		"Kind MessagesKind `json:\"kind\"`",
		"Payload map[string]any `json:\"payload\"`",
		"Extra []any `json:\"extra\"`",
		"Limit *float64 `json:\"limit,omitempty\"`",
		"Filter ListFilter `json:\"filter,omitempty\"`",
		"// ListPath is the path of the list query. const ListPath = \"messages:list\"",
		"const AdminSendPath = \"admin:send\"",
		"type AdminSendArgs struct { }",
		"type MessagesKind interface { isMessagesKind() }",
		"type MessagesKindText string",
		"func (MessagesKindText) isMessagesKind() {}",
		"type MessagesKindNull struct { Value any }",
		"type ListFilterOptional struct { Value *int64 }",
	} {
		assert.Contains(t, code, want)
	}
}

func TestGoLanguageGenerateIdempotent(t *testing.T) {
	t.Parallel()

	first, err := New().Generate(testModel())
	require.NoError(t, err)

	second, err := New().Generate(testModel())
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
}

func TestGoLanguageTypeMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		typ  *convextypes.TypeNode
		want string
	}{
		{"id", scalar(convextypes.TagID), "string"},
		{"bytes", scalar(convextypes.TagBytes), "string"},
		{"number", scalar(convextypes.TagNumber), "float64"},
		{"int64", scalar(convextypes.TagInt64), "int64"},
		{"boolean", scalar(convextypes.TagBoolean), "bool"},
		{"null", scalar(convextypes.TagNull), "any"},
		{"any", scalar(convextypes.TagAny), "any"},
		{"optional scalar", convextypes.OptionalOf(scalar(convextypes.TagBoolean)), "*bool"},
		{"optional slice", convextypes.OptionalOf(convextypes.ArrayOf(scalar(convextypes.TagString))), "[]string"},
		{"optional map", convextypes.OptionalOf(convextypes.RecordOf(scalar(convextypes.TagString), scalar(convextypes.TagAny))), "map[string]any"},
		{"optional any", convextypes.OptionalOf(scalar(convextypes.TagAny)), "any"},
		{"optional union", convextypes.OptionalOf(convextypes.UnionOf(scalar(convextypes.TagString))), "TCol"},
		{"elementless array", convextypes.ArrayOf(nil), "[]any"},
		{"empty object", convextypes.ObjectOf(), "map[string]any"},
		{"partial record", convextypes.RecordOf(scalar(convextypes.TagString), nil), "map[string]any"},
		{"bigint literal", convextypes.LiteralOf(&convextypes.LiteralValue{Kind: convextypes.LiteralBigInt, Raw: "1n"}), "int64"},
		{"null literal", convextypes.LiteralOf(&convextypes.LiteralValue{Kind: convextypes.LiteralNull, Raw: "null"}), "any"},
		{
			"recursive fidelity",
			convextypes.OptionalOf(convextypes.ArrayOf(convextypes.ObjectOf(convextypes.FieldOf("a", scalar(convextypes.TagString))))),
			"[]map[string]string",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			g := newGenerator()
			assert.Equal(t, tt.want, g.typeOf(tt.typ, []string{"t", "col"}))
		})
	}
}

func TestGoLanguageGenerateRejectsCycle(t *testing.T) {
	t.Parallel()

	cyclic := convextypes.ObjectOf()
	cyclic.Fields = append(cyclic.Fields, convextypes.FieldOf("self", convextypes.ArrayOf(cyclic)))

	_, err := New().Generate(&language.GenerateContext{
		Schema: &convextypes.Schema{Tables: []*convextypes.Table{{
			Name:    "t",
			Columns: []*convextypes.Column{{Name: "c", Type: cyclic}},
		}}},
		PackageName: "convex",
	})
	require.ErrorIs(t, err, convextypes.ErrCircularReference)
}

func TestGoLanguageGenerateInfersPackage(t *testing.T) {
	t.Parallel()

	root := t.TempDir()

	existing := filepath.Join(root, "existing")
	require.NoError(t, os.MkdirAll(existing, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(existing, "doc.go"), []byte("package existingpkg\n"), 0o600))

	tests := []struct {
		name    string
		outFile string
		want    string
	}{
		{"existing package", filepath.Join(existing, "types.go"), "existingpkg"},
		{"fresh directory", filepath.Join(root, "convex-types", "types.go"), "convextypes"},
		{"keyword directory", filepath.Join(root, "type", "types.go"), "typepkg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			out, err := New().Generate(&language.GenerateContext{OutFile: tt.outFile})
			require.NoError(t, err)

			f, _ := declarations(t, out)
			assert.Equal(t, tt.want, f.Name.Name)
		})
	}
}

func TestSanitizePackageName(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"convex-types": "convextypes",
		"Convex.API":   "convexapi",
		"2024":         "pkg2024",
		"func":         "funcpkg",
		"":             "pkg",
		"snake_case":   "snake_case",
	}

	for in, want := range tests {
		assert.Equal(t, want, SanitizePackageName(in), in)
	}
}

func TestExportedName(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"_id":           "ID",
		"id":            "ID",
		"userId":        "UserID",
		"avatar_url":    "AvatarURL",
		"apiKey":        "APIKey",
		"identity":      "Identity",
		"isActive":      "IsActive",
		"with space":    "WithSpace",
		"_creationTime": "CreationTime",
		"1st":           "F1st",
	}

	for in, want := range tests {
		assert.Equal(t, want, exportedName(in), in)
	}
}

func TestGoLanguageGenerateInitialisms(t *testing.T) {
	t.Parallel()

	out, err := New().Generate(&language.GenerateContext{
		Schema: &convextypes.Schema{Tables: []*convextypes.Table{{
			Name: "users",
			Columns: []*convextypes.Column{
				{Name: "_id", Type: scalar(convextypes.TagID)},
				{Name: "id", Type: scalar(convextypes.TagString)},
			},
		}}},
		PackageName: "convex",
	})
	require.NoError(t, err)

	code := normalize(string(out))
	assert.Contains(t, code, "ID string `json:\"_id\"`")
	assert.Contains(t, code, "ID2 string `json:\"id\"`")
}

func TestObjectValueDeclaresOnlyUsedUnions(t *testing.T) {
	t.Parallel()

	mixed := convextypes.UnionOf(scalar(convextypes.TagString), scalar(convextypes.TagNumber))

	g := newGenerator()
	typ := g.typeOf(convextypes.ObjectOf(
		convextypes.FieldOf("a", mixed),
		convextypes.FieldOf("b", scalar(convextypes.TagBoolean)),
	), []string{"t", "o"})
	assert.Equal(t, "map[string]any", typ)
	assert.Empty(t, g.unions)
	assert.Empty(t, g.interfaces)

	g = newGenerator()
	typ = g.typeOf(convextypes.ObjectOf(convextypes.FieldOf("a", mixed)), []string{"t", "o"})
	assert.Equal(t, "map[string]TOA", typ)
	require.Len(t, g.unions, 1)
	assert.Equal(t, "TOA", g.unions[0].name)
}
