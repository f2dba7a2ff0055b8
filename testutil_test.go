package convextypes_test

import (
	"testing"

	"github.com/alecthomas/participle/v2/lexer"
	"github.com/stretchr/testify/require"

	"github.com/rlch/convextypes"
)

// tokenNames maps token types back to the symbol names of the lexer.
func tokenNames() map[lexer.TokenType]string {
	names := make(map[lexer.TokenType]string)
	for name, typ := range convextypes.ExportedLexer().Symbols() {
		names[typ] = name
	}

	return names
}

// lex returns the significant tokens of src as "Type:value" strings.
func lex(t *testing.T, src string) ([]string, error) {
	t.Helper()

	def, ok := convextypes.ExportedLexer().(lexer.StringDefinition)
	require.True(t, ok)

	l, err := def.LexString("test.ts", src)
	require.NoError(t, err)

	names := tokenNames()

	var out []string

	for {
		tok, err := l.Next()
		if err != nil {
			return out, err
		}

		if tok.EOF() {
			return out, nil
		}

		name := names[tok.Type]
		if name == "Whitespace" {
			continue
		}

		out = append(out, name+":"+tok.Value)
	}
}

func mustParse(t *testing.T, src string) *convextypes.Program {
	t.Helper()

	prog, err := convextypes.Parse("test.ts", []byte(src))
	require.NoError(t, err)

	return prog
}

// primary returns the primary expression of a simple expression.
func primary(t *testing.T, expr *convextypes.Expr) *convextypes.PostfixExpr {
	t.Helper()

	require.NotNil(t, expr)
	require.NotNil(t, expr.Binary)
	require.NotNil(t, expr.Binary.Head)
	require.NotNil(t, expr.Binary.Head.Postfix)

	return expr.Binary.Head.Postfix
}
