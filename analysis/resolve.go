package analysis

import (
	"strings"

	"github.com/rlch/convextypes"
)

// ResolveType resolves a validator expression such as `v.array(v.string())`
// into a TypeNode. ctx carries the type path for errors and cycle checks.
func ResolveType(n Node, ctx *TypeContext) (*convextypes.TypeNode, error) {
	call, ok := n.(*Call)
	if !ok {
		return nil, schemaError(ctx, n, "expected a validator call, found "+describe(n))
	}

	member, ok := call.Callee.(*Member)
	if !ok {
		return nil, schemaError(ctx, n, "validator call has no type name: "+render(call.Callee))
	}

	tag := convextypes.TypeTag(member.Name)
	if !tag.IsValid() {
		return nil, &convextypes.TypeError{Found: member.Name, Valid: convextypes.ValidTypes(), Pos: member.Pos}
	}

	for _, arg := range call.Args {
		if _, ok := arg.(*Spread); ok && !tag.IsScalar() {
			return nil, schemaError(ctx, arg, "spread arguments are not supported in v."+member.Name)
		}
	}

	switch tag {
	case convextypes.TagOptional:
		return resolveOptional(call, ctx)
	case convextypes.TagArray:
		return resolveArray(call, ctx)
	case convextypes.TagObject:
		return resolveObject(call, ctx)
	case convextypes.TagRecord:
		return resolveRecord(call, ctx)
	case convextypes.TagUnion:
		return resolveUnion(call, ctx)
	case convextypes.TagLiteral:
		node := convextypes.LiteralOf(nil)
		if arg := call.Arg(0); arg != nil {
			v := literalValue(arg)
			node.Literal = &v
		}

		return node, nil
	default:
		node := convextypes.Scalar(tag)
		for _, arg := range call.Args {
			node.Args = append(node.Args, literalValue(arg))
		}

		return node, nil
	}
}

func resolveOptional(call *Call, ctx *TypeContext) (*convextypes.TypeNode, error) {
	if len(call.Args) == 0 {
		return nil, schemaError(ctx, call, "optional type must have an inner type")
	}

	pop := ctx.Push(SegInner)
	defer pop()

	inner, err := ResolveType(call.Args[0], ctx)
	if err != nil {
		return nil, err
	}

	return convextypes.OptionalOf(inner), nil
}

func resolveArray(call *Call, ctx *TypeContext) (*convextypes.TypeNode, error) {
	node := convextypes.ArrayOf(nil)
	if len(call.Args) == 0 {
		return node, nil
	}

	pop := ctx.Push(SegElement)
	defer pop()

	elem, err := ResolveType(call.Args[0], ctx)
	if err != nil {
		return nil, err
	}

	node.Element = elem

	return node, nil
}

func resolveObject(call *Call, ctx *TypeContext) (*convextypes.TypeNode, error) {
	obj, ok := call.Arg(0).(*Object)
	if !ok {
		return nil, schemaError(ctx, call, "object type requires an object literal of fields")
	}

	leave, err := ctx.EnterObject()
	if err != nil {
		return nil, err
	}
	defer leave()

	node := convextypes.ObjectOf()

	for _, prop := range obj.Props {
		if prop.Kind != PropInit || (prop.KeyKind != KeyIdent && prop.KeyKind != KeyString) {
			return nil, schemaError(ctx, prop, "invalid object property name: "+describeProperty(prop))
		}

		t, err := resolveField(prop, ctx)
		if err != nil {
			return nil, err
		}

		// A repeated key keeps its first position and takes the last value.
		if f := node.Field(prop.Key); f != nil {
			f.Type, f.Doc = t, prop.Doc

			continue
		}

		node.Fields = append(node.Fields, &convextypes.Field{Name: prop.Key, Doc: prop.Doc, Type: t})
	}

	return node, nil
}

func resolveField(prop *Property, ctx *TypeContext) (*convextypes.TypeNode, error) {
	pop := ctx.Push(prop.Key)
	defer pop()

	return ResolveType(prop.Value, ctx)
}

func resolveRecord(call *Call, ctx *TypeContext) (*convextypes.TypeNode, error) {
	node := convextypes.RecordOf(nil, nil)
	if len(call.Args) < 2 {
		return node, nil
	}

	key, err := resolveSlot(call.Args[0], SegKey, ctx)
	if err != nil {
		return nil, err
	}

	value, err := resolveSlot(call.Args[1], SegValue, ctx)
	if err != nil {
		return nil, err
	}

	node.Key, node.Value = key, value

	return node, nil
}

func resolveUnion(call *Call, ctx *TypeContext) (*convextypes.TypeNode, error) {
	node := convextypes.UnionOf()

	for i, arg := range call.Args {
		variant, err := resolveSlot(arg, VariantSegment(i), ctx)
		if err != nil {
			return nil, err
		}

		node.Variants = append(node.Variants, variant)
	}

	return node, nil
}

func resolveSlot(n Node, seg string, ctx *TypeContext) (*convextypes.TypeNode, error) {
	pop := ctx.Push(seg)
	defer pop()

	return ResolveType(n, ctx)
}

// literalValue captures an argument verbatim.
func literalValue(n Node) convextypes.LiteralValue {
	if lit, ok := n.(*Literal); ok {
		return lit.Value
	}

	return convextypes.LiteralValue{Kind: convextypes.LiteralOther, Raw: render(n)}
}

func schemaError(ctx *TypeContext, n Node, details string) *convextypes.SchemaError {
	err := &convextypes.SchemaError{Context: ctx.Path(), Details: details}
	if n != nil {
		err.Pos = n.Position()
	}

	return err
}

func describe(n Node) string {
	switch n := n.(type) {
	case *Ident:
		return "identifier " + n.Name
	case *Member:
		return "member access " + render(n)
	case *Object:
		return "object literal"
	case *Array:
		return "array literal"
	case *Literal:
		return string(n.Value.Kind) + " literal " + n.Value.Raw
	case *Spread:
		return "spread argument"
	case *Opaque:
		return n.What + " expression"
	case nil:
		return "nothing"
	default:
		return "call " + render(n)
	}
}

func describeProperty(p *Property) string {
	switch p.Kind {
	case PropSpread:
		return "spread"
	case PropMethod:
		return "method " + p.Key
	case PropAccessor:
		return "accessor " + p.Key
	case PropShorthand:
		return "shorthand " + p.Key
	}

	switch p.KeyKind {
	case KeyComputed:
		return "computed key [" + p.Key + "]"
	case KeyNumber:
		return "numeric key " + p.Key
	}

	return p.Key
}

// render prints a node back in compact source form.
func render(n Node) string {
	var b strings.Builder

	writeNode(&b, n)

	return b.String()
}

func writeNode(b *strings.Builder, n Node) {
	switch n := n.(type) {
	case *Ident:
		b.WriteString(n.Name)
	case *Member:
		writeNode(b, n.Object)
		b.WriteByte('.')
		b.WriteString(n.Name)
	case *Call:
		writeNode(b, n.Callee)
		b.WriteByte('(')

		for i, arg := range n.Args {
			if i > 0 {
				b.WriteString(", ")
			}

			writeNode(b, arg)
		}

		b.WriteByte(')')
	case *Object:
		b.WriteByte('{')

		for i, p := range n.Props {
			if i > 0 {
				b.WriteByte(',')
			}

			b.WriteByte(' ')
			writeProperty(b, p)
		}

		if len(n.Props) > 0 {
			b.WriteByte(' ')
		}

		b.WriteByte('}')
	case *Array:
		b.WriteByte('[')

		for i, el := range n.Elements {
			if i > 0 {
				b.WriteString(", ")
			}

			writeNode(b, el)
		}

		b.WriteByte(']')
	case *Literal:
		b.WriteString(n.Value.Raw)
	case *Spread:
		b.WriteString("...")
		writeNode(b, n.Arg)
	case *Opaque:
		b.WriteString(n.Text)
	case *Property:
		writeProperty(b, n)
	}
}

func writeProperty(b *strings.Builder, p *Property) {
	switch p.Kind {
	case PropSpread:
		b.WriteString("...")
		writeNode(b, p.Value)
	case PropShorthand:
		b.WriteString(p.Key)
	case PropMethod, PropAccessor:
		writeNode(b, p.Value)
	default:
		if p.KeyKind == KeyComputed {
			b.WriteString("[" + p.Key + "]")
		} else {
			b.WriteString(p.Key)
		}

		b.WriteString(": ")
		writeNode(b, p.Value)
	}
}
