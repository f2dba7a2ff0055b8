package convextypes_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rlch/convextypes"
)

func TestTypeTags(t *testing.T) {
	t.Parallel()

	valid := convextypes.ValidTypes()
	require.Len(t, valid, 14)
	assert.Equal(t, convextypes.TagID, valid[0])
	assert.Equal(t, convextypes.TagAny, valid[13])

	// The returned slice is a copy.
	valid[0] = "mutated"
	assert.Equal(t, convextypes.TagID, convextypes.ValidTypes()[0])

	for _, tag := range convextypes.ValidTypes() {
		assert.True(t, tag.IsValid(), tag)
	}

	assert.False(t, convextypes.TypeTag("float").IsValid())
	assert.False(t, convextypes.TypeTag("").IsValid())

	scalars := map[convextypes.TypeTag]bool{
		convextypes.TagID: true, convextypes.TagNull: true, convextypes.TagInt64: true,
		convextypes.TagNumber: true, convextypes.TagBoolean: true, convextypes.TagString: true,
		convextypes.TagBytes: true, convextypes.TagAny: true,
	}

	for _, tag := range convextypes.ValidTypes() {
		assert.Equal(t, scalars[tag], tag.IsScalar(), tag)
	}
}

func TestTypeNodeString(t *testing.T) {
	t.Parallel()

	s := convextypes.Scalar

	tests := []struct {
		name string
		node *convextypes.TypeNode
		want string
	}{
		{"nil", nil, ""},
		{"scalar", s(convextypes.TagString), "v.string()"},
		{
			"id with table",
			s(convextypes.TagID, convextypes.LiteralValue{Kind: convextypes.LiteralString, Raw: `"users"`, Value: "users"}),
			`v.id("users")`,
		},
		{"optional", convextypes.OptionalOf(s(convextypes.TagNumber)), "v.optional(v.number())"},
		{"array", convextypes.ArrayOf(s(convextypes.TagBoolean)), "v.array(v.boolean())"},
		{"partial array", convextypes.ArrayOf(nil), "v.array()"},
		{"record", convextypes.RecordOf(s(convextypes.TagString), s(convextypes.TagInt64)), "v.record(v.string(), v.int64())"},
		{"partial record", convextypes.RecordOf(s(convextypes.TagString), nil), "v.record(v.string())"},
		{"empty object", convextypes.ObjectOf(), "v.object({})"},
		{
			"object",
			convextypes.ObjectOf(
				convextypes.FieldOf("a", s(convextypes.TagString)),
				convextypes.FieldOf("b", convextypes.OptionalOf(s(convextypes.TagBytes))),
			),
			"v.object({ a: v.string(), b: v.optional(v.bytes()) })",
		},
		{
			"union of literals",
			convextypes.UnionOf(convextypes.StringLiteral("a"), convextypes.StringLiteral(`say "hi"`), s(convextypes.TagNull)),
			`v.union(v.literal("a"), v.literal("say \"hi\""), v.null())`,
		},
		{"empty union", convextypes.UnionOf(), "v.union()"},
		{"partial literal", convextypes.LiteralOf(nil), "v.literal()"},
		{
			"number literal",
			convextypes.LiteralOf(&convextypes.LiteralValue{Kind: convextypes.LiteralNumber, Raw: "1.5"}),
			"v.literal(1.5)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, tt.node.String())
		})
	}
}

func TestTypeNodeField(t *testing.T) {
	t.Parallel()

	obj := convextypes.ObjectOf(
		convextypes.FieldOf("a", convextypes.Scalar(convextypes.TagString)),
		convextypes.FieldOf("b", convextypes.Scalar(convextypes.TagNumber)),
	)

	require.NotNil(t, obj.Field("b"))
	assert.Equal(t, convextypes.TagNumber, obj.Field("b").Type.Tag)
	assert.Nil(t, obj.Field("c"))
	assert.Nil(t, convextypes.Scalar(convextypes.TagString).Field("a"))
}

func TestSchemaLookups(t *testing.T) {
	t.Parallel()

	schema := &convextypes.Schema{Tables: []*convextypes.Table{{
		Name:    "users",
		Columns: []*convextypes.Column{{Name: "name", Type: convextypes.Scalar(convextypes.TagString)}},
	}}}

	require.NotNil(t, schema.Table("users"))
	assert.Nil(t, schema.Table("posts"))
	assert.NotNil(t, schema.Table("users").Column("name"))
	assert.Nil(t, schema.Table("users").Column("age"))

	var nilSchema *convextypes.Schema
	assert.Nil(t, nilSchema.Table("users"))

	fn := &convextypes.Function{
		Name:   "send",
		Module: "chat/messages",
		Params: []*convextypes.FunctionParam{{Name: "body", Type: convextypes.Scalar(convextypes.TagString)}},
	}
	assert.Equal(t, "chat/messages:send", fn.Path())
	assert.NotNil(t, fn.Param("body"))
	assert.Nil(t, fn.Param("author"))
}

func TestModuleName(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"/app/convex/messages.ts":      "messages",
		"/app/convex/chat/messages.ts": "chat/messages",
		"convex/users.js":              "users",
		"convex/types.d.ts":            "types",
		"src/api/users.tsx":            "users",
		"users":                        "users",
		`C:\app\convex\admin\users.ts`: "admin/users",
	}

	for in, want := range tests {
		assert.Equal(t, want, convextypes.ModuleName(in), in)
	}
}

func TestFunctionBuilders(t *testing.T) {
	t.Parallel()

	b, ok := convextypes.LookupFunctionBuilder("internalAction")
	require.True(t, ok)
	assert.Equal(t, convextypes.FunctionBuilder{Kind: convextypes.KindAction, Internal: true}, b)

	_, ok = convextypes.LookupFunctionBuilder("httpAction")
	assert.False(t, ok)

	kind, ok := convextypes.IndexMethod("vectorIndex")
	require.True(t, ok)
	assert.Equal(t, convextypes.IndexVector, kind)

	_, ok = convextypes.IndexMethod("withIndex")
	assert.False(t, ok)
}
