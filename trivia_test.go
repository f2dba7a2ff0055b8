package convextypes_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rlch/convextypes"
)

func TestCommentAttachment(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		first  []string
		second []string
	}{
		{
			name:  "comment directly before export attaches",
			input: "// Lists users.\nexport const list = 1;\n",
			first: []string{"// Lists users."},
		},
		{
			name:  "comment separated by blank line is dropped",
			input: "// File header.\n\nexport const list = 1;\n",
		},
		{
			name:  "consecutive lines stay together",
			input: "// First line.\n// Second line.\nexport const list = 1;\n",
			first: []string{"// First line.", "// Second line."},
		},
		{
			name:  "only the block adjacent to the node is kept",
			input: "// Header.\n\n/** Doc. */\nexport const list = 1;\n",
			first: []string{"/** Doc. */"},
		},
		{
			name:   "each export gets its own comment",
			input:  "// First.\nexport const a = 1;\n\n// Second.\nexport const b = 2;\n",
			first:  []string{"// First."},
			second: []string{"// Second."},
		},
		{
			name:  "tool directives are dropped",
			input: "// eslint-disable-next-line no-unused-vars\n// @ts-ignore\n// Kept.\nexport const a = 1;\n",
			first: []string{"// Kept."},
		},
		{
			name:  "trailing comment of the previous line does not attach",
			input: "export const a = 1; // about a\n\nexport const b = 2;\n",
		},
		{
			name:  "no comments",
			input: "export const a = 1;\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			items := structured(mustParse(t, tt.input))
			require.NotEmpty(t, items)

			assert.Equal(t, tt.first, items[0].Doc())

			if len(items) > 1 {
				assert.Equal(t, tt.second, items[1].Doc())
			}
		})
	}
}

func TestCommentAttachmentOnObjectMembers(t *testing.T) {
	t.Parallel()

	prog := mustParse(t, `export default defineSchema({
  // Registered accounts.
  users: defineTable({
    /** Display name. */
    name: v.string(),

    // Detached.

    age: v.number(),
  }),
});
`)

	call := primary(t, structured(prog)[0].ExportDefault.Value)
	tables := primary(t, call.Suffixes[0].Call.List[0].Value).Primary.Object
	require.Len(t, tables.Members, 1)
	assert.Equal(t, []string{"// Registered accounts."}, tables.Members[0].Doc())

	table := primary(t, tables.Members[0].Property.Value)
	columns := primary(t, table.Suffixes[0].Call.List[0].Value).Primary.Object
	require.Len(t, columns.Members, 2)
	assert.Equal(t, []string{"/** Display name. */"}, columns.Members[0].Doc())
	assert.Empty(t, columns.Members[1].Doc())
}

func TestCommentText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		comments []string
		want     []string
	}{
		{"line comment", []string{"// Hello."}, []string{"Hello."}},
		{"jsdoc", []string{"/**\n * Multi\n * line.\n */"}, []string{"Multi", "line."}},
		{"inline block", []string{"/** Users and more. */"}, []string{"Users and more."}},
		{"mixed", []string{"/* a */", "// b"}, []string{"a", "b"}},
		{"empty blocks vanish", []string{"/** */", "/*\n*/"}, nil},
		{"empty line comment is kept", []string{"//"}, []string{""}},
		{"not a comment", []string{"plain"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, convextypes.CommentText(tt.comments))
		})
	}
}
