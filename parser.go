package convextypes

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// tsLexer is the custom lexer for the TypeScript subset.
var tsLexer = newTSLexer()

// parseLookahead bounds backtracking: an alternative that fails after
// consuming more tokens than this is reported as a syntax error instead of
// falling back to the next alternative.
const parseLookahead = 4

var parser = participle.MustBuild[Program](
	participle.Lexer(tsLexer),
	participle.Elide("Whitespace", "Comment"),
	participle.UseLookahead(parseLookahead),
)

var exprParser = participle.MustBuild[Expr](
	participle.Lexer(tsLexer),
	participle.Elide("Whitespace", "Comment"),
	participle.UseLookahead(parseLookahead),
)

// Parse parses a TypeScript module. Syntax errors and duplicate top-level
// bindings are reported as *ParseError; a program without statements as
// *EmptyFileError.
func Parse(filename string, data []byte) (*Program, error) {
	if !utf8.Valid(data) {
		return nil, &PathError{Path: filename, Reason: "source is not valid UTF-8", Unicode: true}
	}

	src := string(data)

	prog, err := parser.ParseString(filename, src)
	if err != nil {
		return nil, newParseError(filename, err)
	}

	prog.Source = src

	if len(prog.Items) == 0 {
		return nil, &EmptyFileError{File: filename}
	}

	if err := checkBindings(filename, prog); err != nil {
		return nil, err
	}

	trivia, err := collectTrivia(filename, src)
	if err != nil {
		return nil, newParseError(filename, err)
	}

	attachComments(prog, trivia)

	return prog, nil
}

// ParseParen parses the contents of a parenthesized expression. Positions in
// the result refer to the original source.
func (p *Program) ParseParen(paren *ParenOrArrow) (*Expr, error) {
	if paren == nil || paren.Params == nil || paren.IsArrow() {
		return nil, errors.New("not a parenthesized expression")
	}

	span := paren.Params.Span()
	if span.End.Offset > len(p.Source) || span.End.Offset-span.Start.Offset < 2 {
		return nil, errors.New("parenthesized expression out of range")
	}

	inner := p.Source[span.Start.Offset+1 : span.End.Offset-1]

	// Blank out everything before the parenthesis so that offsets, lines and
	// columns line up with the original file.
	padded := blankOut(p.Source[:span.Start.Offset+1]) + inner

	expr, err := exprParser.ParseString(span.Start.Filename, padded)
	if err != nil {
		return nil, newParseError(span.Start.Filename, err)
	}

	return expr, nil
}

func blankOut(s string) string {
	var b strings.Builder

	b.Grow(len(s))

	for _, r := range s {
		if r == '\n' {
			b.WriteByte('\n')

			continue
		}

		b.WriteString(strings.Repeat(" ", utf8.RuneLen(r)))
	}

	return b.String()
}

func newParseError(filename string, err error) *ParseError {
	pe := &ParseError{File: filename, Details: err.Error(), Err: err}

	var perr participle.Error
	if errors.As(err, &perr) {
		pe.Pos = perr.Position()
		pe.Details = fmt.Sprintf("%s: %s", perr.Position(), perr.Message())
	}

	var lerr *LexerError
	if errors.As(err, &lerr) {
		pe.Pos = lerr.Position()
	}

	return pe
}

// checkBindings rejects a top-level name bound twice.
func checkBindings(filename string, prog *Program) error {
	seen := make(map[string]lexer.Position)

	bind := func(name string, pos lexer.Position) error {
		if prev, ok := seen[name]; ok {
			return &ParseError{
				File: filename,
				Pos:  pos,
				Details: fmt.Sprintf("semantic analysis failed: identifier %q has already been declared at %s",
					name, prev),
			}
		}

		seen[name] = pos

		return nil
	}

	for _, item := range prog.Items {
		for _, b := range itemBindings(item) {
			if err := bind(b.name, b.pos); err != nil {
				return err
			}
		}
	}

	return nil
}

type binding struct {
	name string
	pos  lexer.Position
}

func itemBindings(item *Item) []binding {
	var out []binding

	switch {
	case item.Import != nil && item.Import.Clause != nil:
		clause := item.Import.Clause
		if clause.Default != nil {
			out = append(out, binding{*clause.Default, clause.Pos})
		}

		if clause.Namespace != nil {
			out = append(out, binding{*clause.Namespace, clause.Pos})
		}

		for _, spec := range clause.Named {
			out = append(out, binding{spec.Local(), spec.Pos})
		}
	case item.ExportDecl != nil && item.ExportDecl.Var != nil:
		for _, d := range item.ExportDecl.Var.Declarators {
			out = append(out, binding{d.Name, d.Pos})
		}
	case item.ExportDecl != nil && item.ExportDecl.Function != nil:
		out = append(out, functionBinding(item.ExportDecl.Function)...)
	case item.Function != nil:
		out = append(out, functionBinding(item.Function)...)
	}

	return out
}

func functionBinding(fn *FunctionDecl) []binding {
	if fn.Name == nil || fn.Body == nil {
		return nil
	}

	return []binding{{*fn.Name, fn.Pos}}
}

// ExportedLexer returns the lexer definition for testing purposes.
func ExportedLexer() lexer.Definition {
	return tsLexer
}
