package convextypes_test

import (
	"testing"

	"github.com/alecthomas/participle/v2/lexer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rlch/convextypes"
)

func TestLexer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "declaration with bigint",
			input: "const x = 1n;",
			want:  []string{"Ident:const", "Ident:x", "Op:=", "Number:1n", "Semi:;"},
		},
		{
			name:  "optional chaining and nullish coalescing",
			input: "a?.b ?? c",
			want:  []string{"Ident:a", "OptDot:?.", "Ident:b", "Op:??", "Ident:c"},
		},
		{
			name:  "conditional with leading-dot number",
			input: "a?.5:b",
			want:  []string{"Ident:a", "Question:?", "Number:.5", "Colon::", "Ident:b"},
		},
		{
			name:  "nested template",
			input: "`hi ${`nested ${x}`} there`",
			want:  []string{"Template:`hi ${`nested ${x}`} there`"},
		},
		{
			name:  "template substitution with braces and strings",
			input: "`${ {a: '}'}.a }`",
			want:  []string{"Template:`${ {a: '}'}.a }`"},
		},
		{
			name:  "arrow with rest parameter",
			input: "(...args) => {}",
			want:  []string{"(:(", "Ellipsis:...", "Ident:args", "):)", "Arrow:=>", "{:{", "}:}"},
		},
		{
			name:  "comments are tokens",
			input: "// line\n/* block\n */x",
			want:  []string{"Comment:// line", "Comment:/* block\n */", "Ident:x"},
		},
		{
			name:  "number formats",
			input: "0xFF 1_000 1e-3 0b1010n 3.14",
			want:  []string{"Number:0xFF", "Number:1_000", "Number:1e-3", "Number:0b1010n", "Number:3.14"},
		},
		{
			name:  "multi-character operators",
			input: "a >= b === c && !d",
			want:  []string{"Ident:a", "Op:>=", "Ident:b", "Op:===", "Ident:c", "Op:&&", "Op:!", "Ident:d"},
		},
		{
			name:  "nested generics close one bracket at a time",
			input: "Array<Array<string>>",
			want:  []string{"Ident:Array", "Op:<", "Ident:Array", "Op:<", "Ident:string", "Op:>", "Op:>"},
		},
		{
			name:  "strings with escapes",
			input: `"a\"b" 'c'`,
			want:  []string{`String:"a\"b"`, "String:'c'"},
		},
		{
			name:  "spread member access",
			input: "[...xs].length",
			want:  []string{"[:[", "Ellipsis:...", "Ident:xs", "]:]", "Dot:.", "Ident:length"},
		},
		{
			name:  "identifiers with dollar and unicode",
			input: "$ctx _id ñame",
			want:  []string{"Ident:$ctx", "Ident:_id", "Ident:ñame"},
		},
		{
			name:  "byte order mark and hashbang",
			input: "\ufeff#!/usr/bin/env node\nx",
			want:  []string{"Ident:x"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := lex(t, tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLexerErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		message string
	}{
		{"unterminated string", `x = "abc`, "unterminated string"},
		{"newline in string", "'abc\ndef'", "unterminated string"},
		{"unterminated template", "`abc ${x", "unterminated template literal"},
		{"unterminated comment", "/* never closed", "unterminated comment"},
		{"unexpected character", `a \ b`, "unexpected character: \\"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := lex(t, tt.input)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)

			var lexErr *convextypes.LexerError
			require.ErrorAs(t, err, &lexErr)
			assert.Equal(t, 1, lexErr.Position().Line)
		})
	}
}

func TestLexerPositions(t *testing.T) {
	t.Parallel()

	def, ok := convextypes.ExportedLexer().(lexer.StringDefinition)
	require.True(t, ok)

	l, err := def.LexString("pos.ts", "a\n  ñb")
	require.NoError(t, err)

	var idents []lexer.Token

	for {
		tok, err := l.Next()
		require.NoError(t, err)

		if tok.EOF() {
			assert.Equal(t, 7, tok.Pos.Offset)

			break
		}

		if tok.Value != "\n  " {
			idents = append(idents, tok)
		}
	}

	require.Len(t, idents, 2)
	assert.Equal(t, lexer.Position{Filename: "pos.ts", Offset: 4, Line: 2, Column: 3}, idents[1].Pos)
	assert.Equal(t, "ñb", idents[1].Value)
}
