// Package analysis turns parsed Convex modules into the typed schema and
// function model.
package analysis

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/alecthomas/participle/v2/lexer"
	"github.com/rlch/convextypes"
)

// Node is a simplified expression tree. Only the shapes that validator
// definitions use are represented; everything else becomes *Opaque.
type Node interface {
	Position() lexer.Position
	node()
}

// Ident is a bare identifier.
type Ident struct {
	Name string
	Pos  lexer.Position
}

// Member is `object.name`.
type Member struct {
	Object Node
	Name   string
	Pos    lexer.Position
}

// Call is `callee(args...)`.
type Call struct {
	Callee Node
	Args   []Node
	Pos    lexer.Position
}

// Object is an object literal with ordered properties and keyed access.
type Object struct {
	Props []*Property
	Pos   lexer.Position

	index map[string]int
}

// PropKind classifies object literal entries.
type PropKind int

// Property kinds.
const (
	PropInit PropKind = iota
	PropShorthand
	PropMethod
	PropAccessor
	PropSpread
)

// KeyKind classifies object literal keys.
type KeyKind int

// Key kinds.
const (
	KeyIdent KeyKind = iota
	KeyString
	KeyNumber
	KeyComputed
	KeyNone
)

// Property is one object literal entry.
type Property struct {
	Kind    PropKind
	Key     string
	KeyKind KeyKind
	Value   Node
	Doc     []string
	Pos     lexer.Position
}

// Array is an array literal.
type Array struct {
	Elements []Node
	Pos      lexer.Position
}

// Literal is a string, number, bigint, boolean or null literal.
type Literal struct {
	Value convextypes.LiteralValue
	Pos   lexer.Position
}

// Spread is `...arg` inside a call or array.
type Spread struct {
	Arg Node
	Pos lexer.Position
}

// Opaque is any expression that is not interpreted, such as a function.
type Opaque struct {
	What string
	Text string
	Pos  lexer.Position
}

func (n *Ident) Position() lexer.Position    { return n.Pos }
func (n *Member) Position() lexer.Position   { return n.Pos }
func (n *Call) Position() lexer.Position     { return n.Pos }
func (n *Object) Position() lexer.Position   { return n.Pos }
func (n *Property) Position() lexer.Position { return n.Pos }
func (n *Array) Position() lexer.Position    { return n.Pos }
func (n *Literal) Position() lexer.Position  { return n.Pos }
func (n *Spread) Position() lexer.Position   { return n.Pos }
func (n *Opaque) Position() lexer.Position   { return n.Pos }

func (*Ident) node()    {}
func (*Member) node()   {}
func (*Call) node()     {}
func (*Object) node()   {}
func (*Property) node() {}
func (*Array) node()    {}
func (*Literal) node()  {}
func (*Spread) node()   {}
func (*Opaque) node()   {}

// NewObject builds an object node and its key index.
func NewObject(pos lexer.Position, props ...*Property) *Object {
	obj := &Object{Props: props, Pos: pos, index: make(map[string]int, len(props))}

	for i, p := range props {
		if p.Kind != PropSpread && p.KeyKind != KeyComputed {
			// Later entries win, as in JavaScript.
			obj.index[p.Key] = i
		}
	}

	return obj
}

// Get returns the property with the given key.
func (o *Object) Get(key string) (*Property, bool) {
	i, ok := o.index[key]
	if !ok {
		return nil, false
	}

	return o.Props[i], true
}

// CalleeName returns the name a call is made through: the identifier for
// `f(...)` and the property for `x.f(...)`.
func (c *Call) CalleeName() (string, bool) {
	switch callee := c.Callee.(type) {
	case *Ident:
		return callee.Name, true
	case *Member:
		return callee.Name, true
	default:
		return "", false
	}
}

// Arg returns the i'th argument, or nil.
func (c *Call) Arg(i int) Node {
	if i < len(c.Args) {
		return c.Args[i]
	}

	return nil
}

// converter lowers the participle tree into Nodes.
type converter struct {
	prog *convextypes.Program
}

// Convert lowers a parsed expression. The program is needed to re-read
// parenthesized expressions.
func Convert(prog *convextypes.Program, expr *convextypes.Expr) (Node, error) {
	c := &converter{prog: prog}

	return c.expr(expr)
}

func (c *converter) opaque(what string, n convextypes.Node) *Opaque {
	return &Opaque{What: what, Text: c.prog.Text(n), Pos: n.Span().Start}
}

func (c *converter) expr(e *convextypes.Expr) (Node, error) {
	if e.Consequent != nil {
		return c.opaque("conditional", e), nil
	}

	for _, tail := range e.Binary.Tail {
		if tail.Cast == "" {
			return c.opaque("binary", e), nil
		}
	}

	return c.unary(e.Binary.Head)
}

func (c *converter) unary(u *convextypes.UnaryExpr) (Node, error) {
	if len(u.Prefix) == 0 {
		return c.postfix(u.Postfix)
	}

	// A signed number is still a literal.
	if len(u.Prefix) == 1 && (u.Prefix[0] == "-" || u.Prefix[0] == "+") &&
		len(u.Postfix.Suffixes) == 0 && u.Postfix.Primary.Number != nil {
		lit := numberLiteral(*u.Postfix.Primary.Number, u.Pos)
		lit.Value.Raw = u.Prefix[0] + lit.Value.Raw
		lit.Value.Value = lit.Value.Raw

		return lit, nil
	}

	return c.opaque("unary", u), nil
}

func (c *converter) postfix(p *convextypes.PostfixExpr) (Node, error) {
	cur, err := c.primary(p.Primary)
	if err != nil {
		return nil, err
	}

	for _, s := range p.Suffixes {
		switch {
		case s.Call != nil:
			args, err := c.args(s.Call.List)
			if err != nil {
				return nil, err
			}

			cur = &Call{Callee: cur, Args: args, Pos: p.Pos}
		case s.Member != nil:
			cur = &Member{Object: cur, Name: s.Member.Name, Pos: s.Member.Pos}
		case s.Index != nil:
			cur = &Opaque{What: "index", Text: c.prog.Text(p), Pos: p.Pos}
		case s.NonNull:
			// x! has the value of x.
		}
	}

	return cur, nil
}

func (c *converter) args(list []*convextypes.Argument) ([]Node, error) {
	out := make([]Node, 0, len(list))

	for _, a := range list {
		n, err := c.expr(a.Value)
		if err != nil {
			return nil, err
		}

		if a.Spread {
			n = &Spread{Arg: n, Pos: a.Pos}
		}

		out = append(out, n)
	}

	return out, nil
}

func (c *converter) primary(p *convextypes.Primary) (Node, error) {
	switch {
	case p.String != nil:
		s, err := UnquoteString(*p.String)
		if err != nil {
			return nil, &convextypes.ParseError{File: p.Pos.Filename, Pos: p.Pos, Details: err.Error(), Err: err}
		}

		return &Literal{Value: convextypes.LiteralValue{Kind: convextypes.LiteralString, Raw: *p.String, Value: s}, Pos: p.Pos}, nil
	case p.Template != nil:
		raw := *p.Template
		if strings.Contains(raw, "${") {
			return c.opaque("template", p), nil
		}

		s, err := unescape(raw[1 : len(raw)-1])
		if err != nil {
			return nil, &convextypes.ParseError{File: p.Pos.Filename, Pos: p.Pos, Details: err.Error(), Err: err}
		}

		return &Literal{Value: convextypes.LiteralValue{Kind: convextypes.LiteralString, Raw: raw, Value: s}, Pos: p.Pos}, nil
	case p.Number != nil:
		return numberLiteral(*p.Number, p.Pos), nil
	case p.Keyword != nil:
		switch kw := *p.Keyword; kw {
		case "true", "false":
			return &Literal{Value: convextypes.LiteralValue{Kind: convextypes.LiteralBoolean, Raw: kw, Value: kw}, Pos: p.Pos}, nil
		case "null":
			return &Literal{Value: convextypes.LiteralValue{Kind: convextypes.LiteralNull, Raw: kw}, Pos: p.Pos}, nil
		default:
			return &Ident{Name: kw, Pos: p.Pos}, nil
		}
	case p.Object != nil:
		return c.object(p.Object)
	case p.Array != nil:
		elems, err := c.args(p.Array.Elements)
		if err != nil {
			return nil, err
		}

		return &Array{Elements: elems, Pos: p.Pos}, nil
	case p.Function != nil:
		return c.opaque("function", p), nil
	case p.Paren != nil:
		if p.Paren.IsArrow() {
			return c.opaque("arrow", p), nil
		}

		inner, err := c.prog.ParseParen(p.Paren)
		if err != nil {
			return nil, err
		}

		return c.expr(inner)
	case p.Ident != nil:
		if p.Ident.Arrow != nil {
			return c.opaque("arrow", p), nil
		}

		return &Ident{Name: p.Ident.Name, Pos: p.Pos}, nil
	}

	return nil, fmt.Errorf("%s: unsupported expression", p.Pos)
}

func (c *converter) object(o *convextypes.ObjectLit) (*Object, error) {
	props := make([]*Property, 0, len(o.Members))

	for _, m := range o.Members {
		prop := &Property{Pos: m.Pos, Doc: convextypes.CommentText(m.LeadingComments)}

		switch {
		case m.Spread != nil:
			v, err := c.expr(m.Spread)
			if err != nil {
				return nil, err
			}

			prop.Kind, prop.KeyKind, prop.Value = PropSpread, KeyNone, v
		case m.Property != nil:
			v, err := c.expr(m.Property.Value)
			if err != nil {
				return nil, err
			}

			prop.Kind, prop.Value = PropInit, v
			if err := c.key(prop, m.Property.Key); err != nil {
				return nil, err
			}
		case m.Accessor != nil:
			prop.Kind, prop.Value = PropAccessor, c.opaque("accessor", m.Accessor)
			if err := c.key(prop, m.Accessor.Key); err != nil {
				return nil, err
			}
		case m.Method != nil:
			prop.Kind, prop.Value = PropMethod, c.opaque("method", m.Method)
			if err := c.key(prop, m.Method.Key); err != nil {
				return nil, err
			}
		case m.Shorthand != nil:
			prop.Kind, prop.KeyKind, prop.Key = PropShorthand, KeyIdent, *m.Shorthand
			prop.Value = &Ident{Name: *m.Shorthand, Pos: m.Pos}
		}

		props = append(props, prop)
	}

	return NewObject(o.Pos, props...), nil
}

func (c *converter) key(prop *Property, k *convextypes.PropertyKey) error {
	switch {
	case k.Ident != nil:
		prop.Key, prop.KeyKind = *k.Ident, KeyIdent
	case k.String != nil:
		s, err := UnquoteString(*k.String)
		if err != nil {
			return &convextypes.ParseError{File: k.Pos.Filename, Pos: k.Pos, Details: err.Error(), Err: err}
		}

		prop.Key, prop.KeyKind = s, KeyString
	case k.Number != nil:
		prop.Key, prop.KeyKind = *k.Number, KeyNumber
	case k.Computed != nil:
		prop.Key, prop.KeyKind = c.prog.Text(k.Computed), KeyComputed
	}

	return nil
}

func numberLiteral(raw string, pos lexer.Position) *Literal {
	kind := convextypes.LiteralNumber
	if strings.HasSuffix(raw, "n") {
		kind = convextypes.LiteralBigInt
	}

	return &Literal{Value: convextypes.LiteralValue{Kind: kind, Raw: raw, Value: raw}, Pos: pos}
}

var errBadEscape = errors.New("invalid escape sequence")

// UnquoteString decodes a single or double quoted JavaScript string literal.
func UnquoteString(raw string) (string, error) {
	if len(raw) < 2 || (raw[0] != '"' && raw[0] != '\'') || raw[len(raw)-1] != raw[0] {
		return "", fmt.Errorf("invalid string literal %s", raw)
	}

	return unescape(raw[1 : len(raw)-1])
}

func unescape(s string) (string, error) {
	if !strings.ContainsRune(s, '\\') {
		return s, nil
	}

	var b strings.Builder

	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		i += size

		if r != '\\' {
			b.WriteRune(r)

			continue
		}

		if i >= len(s) {
			return "", errBadEscape
		}

		r, size = utf8.DecodeRuneInString(s[i:])
		i += size

		switch r {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'v':
			b.WriteByte('\v')
		case '0':
			b.WriteByte(0)
		case '\n':
			// Line continuation.
		case '\r':
			if i < len(s) && s[i] == '\n' {
				i++
			}
		case 'x':
			if i+2 > len(s) {
				return "", errBadEscape
			}

			v, err := strconv.ParseUint(s[i:i+2], 16, 8)
			if err != nil {
				return "", errBadEscape
			}

			b.WriteRune(rune(v))

			i += 2
		case 'u':
			v, n, err := unicodeEscape(s[i:])
			if err != nil {
				return "", err
			}

			b.WriteRune(v)

			i += n
		default:
			// \', \", \\, \` and any other character stand for themselves.
			b.WriteRune(r)
		}
	}

	return b.String(), nil
}

func unicodeEscape(s string) (rune, int, error) {
	if strings.HasPrefix(s, "{") {
		end := strings.IndexByte(s, '}')
		if end < 2 {
			return 0, 0, errBadEscape
		}

		v, err := strconv.ParseUint(s[1:end], 16, 32)
		if err != nil || v > utf8.MaxRune {
			return 0, 0, errBadEscape
		}

		return rune(v), end + 1, nil
	}

	if len(s) < 4 {
		return 0, 0, errBadEscape
	}

	v, err := strconv.ParseUint(s[:4], 16, 16)
	if err != nil {
		return 0, 0, errBadEscape
	}

	r := rune(v)

	// Combine a surrogate pair.
	if r >= 0xD800 && r < 0xDC00 && len(s) >= 10 && s[4:6] == `\u` {
		if lo, err := strconv.ParseUint(s[6:10], 16, 16); err == nil && lo >= 0xDC00 && lo < 0xE000 {
			return (r-0xD800)<<10 + (rune(lo) - 0xDC00) + 0x10000, 10, nil
		}
	}

	return r, 4, nil
}
