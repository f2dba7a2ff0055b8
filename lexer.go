package convextypes

import (
	"io"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/alecthomas/participle/v2/lexer"
)

// Token type constants - negative values as per participle convention.
const (
	tEOF        lexer.TokenType = lexer.EOF
	tComment    lexer.TokenType = -(iota + 2) //nolint:mnd // participle convention
	tTemplate                                 // backtick template literals
	tString                                   // single or double quoted strings
	tNumber                                   // all number formats, including bigint
	tIdent                                    // identifiers and keywords
	tArrow                                    // =>
	tEllipsis                                 // ...
	tOptDot                                   // ?.
	tQuestion                                 // ?
	tOp                                       // operators
	tDot                                      // .
	tColon                                    // :
	tComma                                    // ,
	tSemi                                     // ;
	tLParen                                   // (
	tRParen                                   // )
	tLBracket                                 // [
	tRBracket                                 // ]
	tLBrace                                   // {
	tRBrace                                   // }
	tWhitespace                               // spaces, tabs, newlines
)

// Lexer errors.
var (
	ErrUnterminatedTemplate = &LexerError{msg: "unterminated template literal"}
	ErrUnterminatedString   = &LexerError{msg: "unterminated string"}
	ErrUnterminatedComment  = &LexerError{msg: "unterminated comment"}
	ErrUnexpectedCharacter  = &LexerError{msg: "unexpected character"}
)

// LexerError represents a lexer error with position.
type LexerError struct {
	msg string
	pos lexer.Position
	ch  rune
}

func (e *LexerError) Error() string {
	if e.ch != 0 {
		return e.pos.String() + ": " + e.msg + ": " + string(e.ch)
	}

	return e.pos.String() + ": " + e.msg
}

// Position returns where the error occurred.
func (e *LexerError) Position() lexer.Position {
	return e.pos
}

func (e *LexerError) withPos(pos lexer.Position) *LexerError {
	return &LexerError{msg: e.msg, pos: pos, ch: e.ch}
}

func (e *LexerError) withChar(ch rune) *LexerError {
	return &LexerError{msg: e.msg, pos: e.pos, ch: ch}
}

// tsDefinition implements lexer.Definition for the TypeScript subset found
// in Convex schema and function modules.
type tsDefinition struct {
	symbols map[string]lexer.TokenType
}

func newTSLexer() *tsDefinition {
	return &tsDefinition{
		symbols: map[string]lexer.TokenType{
			"EOF":        tEOF,
			"Comment":    tComment,
			"Template":   tTemplate,
			"String":     tString,
			"Number":     tNumber,
			"Ident":      tIdent,
			"Arrow":      tArrow,
			"Ellipsis":   tEllipsis,
			"OptDot":     tOptDot,
			"Question":   tQuestion,
			"Op":         tOp,
			"Dot":        tDot,
			"Colon":      tColon,
			"Comma":      tComma,
			"Semi":       tSemi,
			"Whitespace": tWhitespace,
			"(":          tLParen,
			")":          tRParen,
			"[":          tLBracket,
			"]":          tRBracket,
			"{":          tLBrace,
			"}":          tRBrace,
		},
	}
}

// Symbols returns the mapping of symbol names to token types.
func (d *tsDefinition) Symbols() map[string]lexer.TokenType {
	return d.symbols
}

// Lex creates a new Lexer for the given reader.
//
//nolint:ireturn // Required by participle's lexer.Definition interface.
func (d *tsDefinition) Lex(filename string, r io.Reader) (lexer.Lexer, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	return d.LexBytes(filename, data)
}

// LexBytes implements lexer.BytesDefinition.
//
//nolint:ireturn // Required by participle's lexer.BytesDefinition interface.
func (d *tsDefinition) LexBytes(filename string, data []byte) (lexer.Lexer, error) {
	return newLexerState(filename, string(data)), nil
}

// LexString implements lexer.StringDefinition.
//
//nolint:ireturn // Required by participle's lexer.StringDefinition interface.
func (d *tsDefinition) LexString(filename string, input string) (lexer.Lexer, error) {
	return newLexerState(filename, input), nil
}

const bom = "\ufeff"

type lexerState struct {
	filename string
	input    string
	offset   int
	line     int
	col      int
}

func newLexerState(filename, input string) *lexerState {
	l := &lexerState{
		filename: filename,
		input:    input,
		line:     1,
		col:      1,
	}

	// A leading BOM and hashbang line are not part of the program.
	if strings.HasPrefix(l.input, bom) {
		l.offset = len(bom)
	}

	if l.match("#!") {
		for !l.eof() && l.peek() != '\n' {
			l.advance()
		}
	}

	return l
}

// Next returns the next token.
func (l *lexerState) Next() (lexer.Token, error) {
	if l.eof() {
		return lexer.EOFToken(l.pos()), nil
	}

	start := l.pos()
	r := l.peek()

	if isSpace(r) {
		for !l.eof() && isSpace(l.peek()) {
			l.advance()
		}

		return l.token(tWhitespace, start), nil
	}

	if r == '/' && l.peekAt(1) == '/' {
		for !l.eof() && l.peek() != '\n' {
			l.advance()
		}

		return l.token(tComment, start), nil
	}

	if r == '/' && l.peekAt(1) == '*' {
		return l.scanBlockComment(start)
	}

	if r == '`' {
		if err := l.scanTemplate(start); err != nil {
			return lexer.Token{}, err
		}

		return l.token(tTemplate, start), nil
	}

	if r == '"' || r == '\'' {
		if err := l.scanString(start, r); err != nil {
			return lexer.Token{}, err
		}

		return l.token(tString, start), nil
	}

	if isDigit(r) || (r == '.' && isDigit(l.peekAt(1))) {
		return l.scanNumber(start), nil
	}

	if isIdentStart(r) {
		l.advance()

		for !l.eof() && isIdentContinue(l.peek()) {
			l.advance()
		}

		return l.token(tIdent, start), nil
	}

	switch {
	case l.match("=>"):
		return l.consume(2, tArrow, start), nil
	case l.match("..."):
		return l.consume(3, tEllipsis, start), nil
	case l.match("?.") && !isDigit(l.peekAt(2)):
		return l.consume(2, tOptDot, start), nil
	}

	if tok, ok := l.scanMultiCharOp(start); ok {
		return tok, nil
	}

	l.advance()

	switch r {
	case '?':
		return l.token(tQuestion, start), nil
	case '.':
		return l.token(tDot, start), nil
	case ':':
		return l.token(tColon, start), nil
	case ',':
		return l.token(tComma, start), nil
	case ';':
		return l.token(tSemi, start), nil
	case '(':
		return l.token(tLParen, start), nil
	case ')':
		return l.token(tRParen, start), nil
	case '[':
		return l.token(tLBracket, start), nil
	case ']':
		return l.token(tRBracket, start), nil
	case '{':
		return l.token(tLBrace, start), nil
	case '}':
		return l.token(tRBrace, start), nil
	}

	if strings.ContainsRune("+-*/%^&|!<>=#~@", r) {
		return l.token(tOp, start), nil
	}

	return lexer.Token{}, ErrUnexpectedCharacter.withPos(start).withChar(r)
}

func (l *lexerState) pos() lexer.Position {
	return lexer.Position{
		Filename: l.filename,
		Offset:   l.offset,
		Line:     l.line,
		Column:   l.col,
	}
}

func (l *lexerState) eof() bool {
	return l.offset >= len(l.input)
}

func (l *lexerState) peek() rune {
	if l.eof() {
		return 0
	}

	r, _ := utf8.DecodeRuneInString(l.input[l.offset:])

	return r
}

func (l *lexerState) peekAt(n int) rune {
	off := l.offset + n
	if off >= len(l.input) {
		return 0
	}

	r, _ := utf8.DecodeRuneInString(l.input[off:])

	return r
}

func (l *lexerState) advance() {
	if l.eof() {
		return
	}

	r, size := utf8.DecodeRuneInString(l.input[l.offset:])
	l.offset += size

	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
}

func (l *lexerState) match(s string) bool {
	return strings.HasPrefix(l.input[l.offset:], s)
}

func (l *lexerState) consume(n int, typ lexer.TokenType, start lexer.Position) lexer.Token {
	for range n {
		l.advance()
	}

	return l.token(typ, start)
}

func (l *lexerState) token(typ lexer.TokenType, start lexer.Position) lexer.Token {
	return lexer.Token{
		Type:  typ,
		Value: l.input[start.Offset:l.offset],
		Pos:   start,
	}
}

func (l *lexerState) scanBlockComment(start lexer.Position) (lexer.Token, error) {
	l.advance() // /
	l.advance() // *

	for !l.eof() {
		if l.match("*/") {
			l.advance()
			l.advance()

			return l.token(tComment, start), nil
		}

		l.advance()
	}

	return lexer.Token{}, ErrUnterminatedComment.withPos(start)
}

// scanTemplate consumes a template literal, including any nested
// substitutions, which may themselves contain strings and templates.
func (l *lexerState) scanTemplate(start lexer.Position) error {
	l.advance() // opening `

	for !l.eof() {
		switch {
		case l.peek() == '\\' && l.peekAt(1) != 0:
			l.advance()
			l.advance()
		case l.peek() == '`':
			l.advance()

			return nil
		case l.match("${"):
			l.advance()
			l.advance()

			if err := l.scanSubstitution(start); err != nil {
				return err
			}
		default:
			l.advance()
		}
	}

	return ErrUnterminatedTemplate.withPos(start)
}

func (l *lexerState) scanSubstitution(start lexer.Position) error {
	depth := 1

	for !l.eof() {
		r := l.peek()
		pos := l.pos()

		switch r {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				l.advance()

				return nil
			}
		case '`':
			if err := l.scanTemplate(pos); err != nil {
				return err
			}

			continue
		case '"', '\'':
			if err := l.scanString(pos, r); err != nil {
				return err
			}

			continue
		}

		l.advance()
	}

	return ErrUnterminatedTemplate.withPos(start)
}

func (l *lexerState) scanString(start lexer.Position, quote rune) error {
	l.advance() // opening quote

	for !l.eof() {
		ch := l.peek()
		if ch == '\\' && l.peekAt(1) != 0 {
			l.advance()
			l.advance()

			continue
		}

		if ch == quote {
			l.advance()

			return nil
		}

		if ch == '\n' {
			return ErrUnterminatedString.withPos(start)
		}

		l.advance()
	}

	return ErrUnterminatedString.withPos(start)
}

// multiOps is ordered longest first. Shift operators are deliberately absent
// so that nested generic argument lists close one '>' at a time.
var multiOps = []string{
	"===", "!==", "**=", "&&=", "||=", "??=",
	"==", "!=", "<=", ">=", "&&", "||", "??", "++", "--", "**", "<<",
	"+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=",
}

func (l *lexerState) scanMultiCharOp(start lexer.Position) (lexer.Token, bool) {
	for _, op := range multiOps {
		if l.match(op) {
			return l.consume(len(op), tOp, start), true
		}
	}

	return lexer.Token{}, false
}

func (l *lexerState) scanNumber(start lexer.Position) lexer.Token {
	if l.peek() == '0' {
		var digit func(rune) bool

		switch l.peekAt(1) {
		case 'x', 'X':
			digit = isHexDigit
		case 'o', 'O':
			digit = isOctalDigit
		case 'b', 'B':
			digit = isBinaryDigit
		}

		if digit != nil {
			l.advance()
			l.advance()

			for !l.eof() && (digit(l.peek()) || l.peek() == '_') {
				l.advance()
			}

			l.scanBigIntSuffix()

			return l.token(tNumber, start)
		}
	}

	for !l.eof() && (isDigit(l.peek()) || l.peek() == '_') {
		l.advance()
	}

	if l.peek() == '.' && l.peekAt(1) != '.' {
		l.advance()

		for !l.eof() && (isDigit(l.peek()) || l.peek() == '_') {
			l.advance()
		}
	}

	if l.peek() == 'e' || l.peek() == 'E' {
		l.advance()

		if l.peek() == '+' || l.peek() == '-' {
			l.advance()
		}

		for !l.eof() && (isDigit(l.peek()) || l.peek() == '_') {
			l.advance()
		}
	}

	l.scanBigIntSuffix()

	return l.token(tNumber, start)
}

func (l *lexerState) scanBigIntSuffix() {
	if l.peek() == 'n' {
		l.advance()
	}
}

// Character helpers.

func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\f', '\v', '\u00a0', '\u2028', '\u2029', '\ufeff':
		return true
	}

	return false
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isHexDigit(r rune) bool {
	return isDigit(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

func isOctalDigit(r rune) bool {
	return r >= '0' && r <= '7'
}

func isBinaryDigit(r rune) bool {
	return r == '0' || r == '1'
}

func isIdentStart(r rune) bool {
	return r == '$' || r == '_' || unicode.IsLetter(r)
}

func isIdentContinue(r rune) bool {
	return r == '$' || r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
