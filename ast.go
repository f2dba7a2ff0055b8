// Package convextypes extracts a typed model from Convex schema and function
// modules and describes it as native type declarations in other languages.
package convextypes

import (
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// =============================================================================
// Common embedded types for AST nodes
// =============================================================================

// NodeMeta contains position and token information common to all AST nodes.
// Participle populates these fields during parsing.
type NodeMeta struct {
	Pos    lexer.Position
	EndPos lexer.Position
	Tokens []lexer.Token
}

// Span returns the source span of this node.
func (n *NodeMeta) Span() Span { return Span{Start: n.Pos, End: n.EndPos} }

// CommentMeta holds comments attached to a node (populated after parsing).
type CommentMeta struct {
	LeadingComments []string
}

// Doc returns the attached leading comments as plain text lines.
func (c *CommentMeta) Doc() []string {
	return c.LeadingComments
}

// Span is a half-open source range.
type Span struct {
	Start lexer.Position
	End   lexer.Position
}

// Node is the interface implemented by all AST nodes.
type Node interface {
	Span() Span
}

// =============================================================================
// Program
// =============================================================================

// Program is a parsed TypeScript module. Only the statements that matter for
// type extraction are structured; everything else is kept as balanced tokens.
type Program struct {
	NodeMeta

	Items []*Item `parser:"@@*"`

	// Source is the text the program was parsed from.
	Source string
}

// Text returns the source text covered by a node.
func (p *Program) Text(n Node) string {
	span := n.Span()
	if p == nil || span.End.Offset > len(p.Source) || span.Start.Offset > span.End.Offset {
		return ""
	}

	return p.Source[span.Start.Offset:span.End.Offset]
}

// Item is a single top-level statement.
type Item struct {
	NodeMeta
	CommentMeta

	Import        *ImportDecl    `parser:"  @@"`
	ExportDefault *ExportDefault `parser:"| @@"`
	ExportDecl    *ExportDecl    `parser:"| @@"`
	Export        bool           `parser:"| @'export'"`
	Function      *FunctionDecl  `parser:"| @@"`
	Call          *SchemaCall    `parser:"| @@"`
	Other         *BalancedToken `parser:"| @@"`
}

// ImportDecl is an ES module import.
//
//	import { v } from "convex/values";
//	import type { Doc } from "./_generated/dataModel";
type ImportDecl struct {
	NodeMeta

	TypeOnly bool           `parser:"'import' @'type'?"`
	Bare     *string        `parser:"(  @String"`
	Clause   *ImportClause  `parser:" | @@ 'from'"`
	From     *string        `parser:"    @String )"`
	Attrs    *BalancedBrace `parser:"( 'with' @@ )? ';'?"`
}

// Module returns the imported module specifier, still quoted.
func (d *ImportDecl) Module() string {
	if d.Bare != nil {
		return *d.Bare
	}

	if d.From != nil {
		return *d.From
	}

	return ""
}

// ImportClause holds the bindings introduced by an import.
type ImportClause struct {
	NodeMeta

	Default   *string       `parser:"@Ident? ','?"`
	Namespace *string       `parser:"(  '*' 'as' @Ident"`
	Named     []*ImportSpec `parser:" | '{' ( @@ ( ',' @@ )* ','? )? '}' )?"`
}

// ImportSpec is one named import, optionally renamed.
type ImportSpec struct {
	NodeMeta

	TypeOnly bool    `parser:"@'type'?"`
	Name     string  `parser:"@(Ident | String)"`
	Alias    *string `parser:"( 'as' @Ident )?"`
}

// Local returns the name the import is bound to in the module.
func (s *ImportSpec) Local() string {
	if s.Alias != nil {
		return *s.Alias
	}

	return s.Name
}

// ExportDefault is `export default <function|expression>`.
type ExportDefault struct {
	NodeMeta

	Function *FunctionDecl `parser:"'export' 'default' (  @@"`
	Value    *Expr         `parser:"                   | @@ ) ';'?"`
}

// ExportDecl is an exported variable or function declaration.
type ExportDecl struct {
	NodeMeta

	Var      *VarDecl      `parser:"'export' (  @@"`
	Function *FunctionDecl `parser:"         | @@ )"`
}

// VarDecl is a `const`, `let` or `var` declaration with simple binding names.
type VarDecl struct {
	NodeMeta

	Kind        string        `parser:"@('const' | 'let' | 'var')"`
	Declarators []*Declarator `parser:"@@ ( ',' @@ )* ';'?"`
}

// Declarator binds one name, with an optional type annotation and initializer.
type Declarator struct {
	NodeMeta

	Name string   `parser:"@Ident"`
	Type *TypeRef `parser:"( '!'? ':' @@ )?"`
	Init *Expr    `parser:"( '=' @@ )?"`
}

// FunctionDecl is a function declaration. Parameters and body are opaque;
// overload signatures have no body.
type FunctionDecl struct {
	NodeMeta

	Async     bool           `parser:"@'async'? 'function'"`
	Generator bool           `parser:"@'*'?"`
	Name      *string        `parser:"@Ident?"`
	Params    *BalancedParen `parser:"@@"`
	Returns   *TypeRef       `parser:"( ':' @@ )?"`
	Body      *BalancedBrace `parser:"( @@ | ';' )?"`
}

// SchemaCall is a bare top-level `defineSchema(...)` expression statement.
type SchemaCall struct {
	NodeMeta

	Callee   string     `parser:"@'defineSchema'"`
	Args     *Arguments `parser:"@@"`
	Suffixes []*Suffix  `parser:"@@* ';'?"`
}

// =============================================================================
// Expressions
// =============================================================================

// Expr is a conditional expression, the loosest binding form parsed.
type Expr struct {
	NodeMeta

	Binary     *BinaryExpr `parser:"@@"`
	Consequent *Expr       `parser:"( '?' @@"`
	Alternate  *Expr       `parser:"  ':' @@ )?"`
}

// BinaryExpr is a flat chain of operands. Operator precedence is not
// recovered because no recognized construct depends on it.
type BinaryExpr struct {
	NodeMeta

	Head *UnaryExpr    `parser:"@@"`
	Tail []*BinaryTail `parser:"@@*"`
}

// BinaryTail is one operator and its right operand, or a type assertion.
type BinaryTail struct {
	NodeMeta

	Op      string     `parser:"(  @(Op | 'instanceof' | 'in')"`
	Operand *UnaryExpr `parser:"   @@"`
	Cast    string     `parser:" | @('as' | 'satisfies')"`
	Type    *TypeRef   `parser:"   @@ )"`
}

// UnaryExpr is a postfix expression preceded by prefix operators.
type UnaryExpr struct {
	NodeMeta

	Prefix  []string     `parser:"@('!' | '-' | '+' | '~' | '++' | '--' | 'typeof' | 'void' | 'await' | 'new' | 'delete')*"`
	Postfix *PostfixExpr `parser:"@@"`
}

// PostfixExpr is a primary expression followed by calls, member accesses and
// index operations.
type PostfixExpr struct {
	NodeMeta

	Primary  *Primary  `parser:"@@"`
	Suffixes []*Suffix `parser:"@@*"`
}

// Suffix is a call, member access, index or non-null assertion.
type Suffix struct {
	NodeMeta

	Call    *Arguments `parser:"  @@"`
	Member  *Member    `parser:"| @@"`
	Index   *Expr      `parser:"| '[' @@ ']'"`
	NonNull bool       `parser:"| @'!'"`
}

// Member is `.name` or `?.name`.
type Member struct {
	NodeMeta

	Optional bool   `parser:"( @OptDot | Dot )"`
	Name     string `parser:"@Ident"`
}

// Arguments is a parenthesized call argument list.
type Arguments struct {
	NodeMeta

	List []*Argument `parser:"'(' ( @@ ( ',' @@ )* ','? )? ')'"`
}

// Argument is one call argument, possibly spread.
type Argument struct {
	NodeMeta

	Spread bool  `parser:"@'...'?"`
	Value  *Expr `parser:"@@"`
}

// Primary is an atomic expression.
type Primary struct {
	NodeMeta

	Template *string       `parser:"  @Template"`
	String   *string       `parser:"| @String"`
	Number   *string       `parser:"| @Number"`
	Keyword  *string       `parser:"| @('true' | 'false' | 'null' | 'undefined' | 'this')"`
	Object   *ObjectLit    `parser:"| @@"`
	Array    *ArrayLit     `parser:"| @@"`
	Function *FunctionDecl `parser:"| @@"`
	Paren    *ParenOrArrow `parser:"| @@"`
	Ident    *IdentOrArrow `parser:"| @@"`
}

// ParenOrArrow is either a parenthesized expression or an arrow function
// with a parenthesized parameter list. The contents are kept opaque; a
// parenthesized expression is re-read with Program.ParseParen.
type ParenOrArrow struct {
	NodeMeta

	Async   bool           `parser:"@'async'?"`
	Params  *BalancedParen `parser:"@@"`
	Returns *TypeRef       `parser:"( ( ':' @@ )?"`
	Arrow   *ArrowBody     `parser:"  Arrow @@ )?"`
}

// IsArrow reports whether this is an arrow function.
func (p *ParenOrArrow) IsArrow() bool { return p.Arrow != nil }

// IdentOrArrow is an identifier, or the single parameter of an arrow
// function such as `ctx => ctx.db`.
type IdentOrArrow struct {
	NodeMeta

	Name  string     `parser:"@Ident"`
	Arrow *ArrowBody `parser:"( Arrow @@ )?"`
}

// ArrowBody is a block or an expression. Either way it is not interpreted.
type ArrowBody struct {
	NodeMeta

	Block *BalancedBrace `parser:"  @@"`
	Expr  *Expr          `parser:"| @@"`
}

// ObjectLit is an object literal. Member order is preserved.
type ObjectLit struct {
	NodeMeta

	Members []*ObjectMember `parser:"'{' ( @@ ( ',' @@ )* )? ','? '}'"`
}

// ObjectMember is one entry of an object literal.
type ObjectMember struct {
	NodeMeta
	CommentMeta

	Spread    *Expr        `parser:"  '...' @@"`
	Property  *PropertyDef `parser:"| @@"`
	Accessor  *AccessorDef `parser:"| @@"`
	Method    *MethodDef   `parser:"| @@"`
	Shorthand *string      `parser:"| @Ident"`
}

// PropertyDef is a `key: value` entry.
type PropertyDef struct {
	NodeMeta

	Key   *PropertyKey `parser:"@@ ':'"`
	Value *Expr        `parser:"@@"`
}

// AccessorDef is a getter or setter entry.
type AccessorDef struct {
	NodeMeta

	Kind    string         `parser:"@('get' | 'set')"`
	Key     *PropertyKey   `parser:"@@"`
	Params  *BalancedParen `parser:"@@"`
	Returns *TypeRef       `parser:"( ':' @@ )?"`
	Body    *BalancedBrace `parser:"@@"`
}

// MethodDef is a method entry such as `handler(ctx) {}`.
type MethodDef struct {
	NodeMeta

	Async     bool           `parser:"@'async'?"`
	Generator bool           `parser:"@'*'?"`
	Key       *PropertyKey   `parser:"@@"`
	Params    *BalancedParen `parser:"@@"`
	Returns   *TypeRef       `parser:"( ':' @@ )?"`
	Body      *BalancedBrace `parser:"@@"`
}

// PropertyKey is an object key.
type PropertyKey struct {
	NodeMeta

	Ident    *string `parser:"  @Ident"`
	String   *string `parser:"| @String"`
	Number   *string `parser:"| @Number"`
	Computed *Expr   `parser:"| '[' @@ ']'"`
}

// ArrayLit is an array literal.
type ArrayLit struct {
	NodeMeta

	Elements []*Argument `parser:"'[' ( @@ ( ',' @@ )* )? ','? ']'"`
}

// =============================================================================
// Types
// =============================================================================

// TypeRef is a TypeScript type annotation. It is parsed leniently and only
// ever used to skip over annotations.
type TypeRef struct {
	NodeMeta

	Parts []*TypeAtom `parser:"('|' | '&')? @@ ( ('|' | '&') @@ )*"`
}

// TypeAtom is one member of a union or intersection type. Returns is only
// set for function types, whose parameter list is kept in Paren.
type TypeAtom struct {
	NodeMeta

	Operator *string          `parser:"@('keyof' | 'typeof' | 'readonly' | 'unique')?"`
	Name     []string         `parser:"(  @Ident ( Dot @Ident )*"`
	String   *string          `parser:" | @String"`
	Number   *string          `parser:" | @Number"`
	Object   *BalancedBrace   `parser:" | @@"`
	Tuple    *BalancedBracket `parser:" | @@"`
	Paren    *BalancedParen   `parser:" | @@"`
	Returns  *TypeRef         `parser:"   ( Arrow @@ )? )"`
	Args     []*TypeRef       `parser:"( '<' @@ ( ',' @@ )* '>' )?"`
	Array    []string         `parser:"( @'[' ']' )*"`
}

// =============================================================================
// Balanced token soup
// =============================================================================

// BalancedToken captures any single token or a bracketed group, matching
// brackets but otherwise accepting anything. It is used for statements and
// expressions that are not interpreted, such as function bodies.
type BalancedToken struct {
	NodeMeta

	Text    *string          `parser:"  @(String | Template | Number | Ident | Op | Arrow | Ellipsis | OptDot | Question | Dot | Colon | Comma | Semi)"`
	Paren   *BalancedParen   `parser:"| @@"`
	Brace   *BalancedBrace   `parser:"| @@"`
	Bracket *BalancedBracket `parser:"| @@"`
}

// BalancedParen is `( ... )` with balanced contents.
type BalancedParen struct {
	NodeMeta

	Body []*BalancedToken `parser:"'(' @@* ')'"`
}

// BalancedBrace is `{ ... }` with balanced contents.
type BalancedBrace struct {
	NodeMeta

	Body []*BalancedToken `parser:"'{' @@* '}'"`
}

// BalancedBracket is `[ ... ]` with balanced contents.
type BalancedBracket struct {
	NodeMeta

	Body []*BalancedToken `parser:"'[' @@* ']'"`
}

// String renders the balanced tokens with single spaces between them.
func (p *BalancedParen) String() string {
	return "(" + joinBalanced(p.Body) + ")"
}

func joinBalanced(toks []*BalancedToken) string {
	parts := make([]string, 0, len(toks))

	for _, tok := range toks {
		switch {
		case tok.Text != nil:
			parts = append(parts, *tok.Text)
		case tok.Paren != nil:
			parts = append(parts, "("+joinBalanced(tok.Paren.Body)+")")
		case tok.Brace != nil:
			parts = append(parts, "{"+joinBalanced(tok.Brace.Body)+"}")
		case tok.Bracket != nil:
			parts = append(parts, "["+joinBalanced(tok.Bracket.Body)+"]")
		}
	}

	return strings.Join(parts, " ")
}
