package analysis

import (
	"slices"

	"github.com/rlch/convextypes"
)

// ExtractSchema builds the Schema from a parsed schema module.
func ExtractSchema(prog *convextypes.Program) (*convextypes.Schema, error) {
	call, err := FindSchemaCall(prog)
	if err != nil {
		return nil, err
	}

	tables, ok := call.Arg(0).(*Object)
	if !ok {
		return nil, &convextypes.SchemaError{
			Context: convextypes.DefineSchema,
			Details: "missing table definitions: first argument must be an object literal",
			Pos:     call.Pos,
		}
	}

	schema := &convextypes.Schema{Tables: make([]*convextypes.Table, 0, len(tables.Props))}

	for _, prop := range tables.Props {
		table, err := extractTable(prop)
		if err != nil {
			return nil, err
		}

		schema.Tables = append(schema.Tables, table)
	}

	return schema, nil
}

func extractTable(prop *Property) (*convextypes.Table, error) {
	if prop.Kind != PropInit || prop.KeyKind != KeyIdent {
		return nil, &convextypes.SchemaError{
			Context: "tables",
			Details: "invalid table name: " + describeProperty(prop),
			Pos:     prop.Pos,
		}
	}

	def, indexes, err := unwrapIndexes(prop.Value, prop.Key)
	if err != nil {
		return nil, err
	}

	columns, ok := tableColumns(def)
	if !ok {
		return nil, &convextypes.SchemaError{
			Context: prop.Key,
			Details: "invalid table definition: expected " + convextypes.DefineTable + " with an object literal of columns",
			Pos:     prop.Value.Position(),
		}
	}

	table := &convextypes.Table{
		Name:    prop.Key,
		Doc:     prop.Doc,
		Columns: make([]*convextypes.Column, 0, len(columns.Props)),
		Indexes: indexes,
	}

	for _, col := range columns.Props {
		if col.Kind != PropInit || col.KeyKind != KeyIdent {
			return nil, &convextypes.SchemaError{
				Context: prop.Key,
				Details: "invalid column name: " + describeProperty(col),
				Pos:     col.Pos,
			}
		}

		// Every column starts from a fresh context.
		t, err := ResolveType(col.Value, NewTypeContext(prop.Key, col.Key))
		if err != nil {
			return nil, err
		}

		table.Columns = append(table.Columns, &convextypes.Column{Name: col.Key, Doc: col.Doc, Type: t})
	}

	return table, nil
}

// unwrapIndexes peels `.index(...)`, `.searchIndex(...)` and `.vectorIndex(...)`
// calls off a table definition, returning the innermost call and the indexes
// in declaration order.
func unwrapIndexes(n Node, table string) (*Call, []*convextypes.Index, error) {
	var indexes []*convextypes.Index

	for {
		call, ok := n.(*Call)
		if !ok {
			return nil, nil, &convextypes.SchemaError{
				Context: table,
				Details: "invalid table definition: expected a call, found " + describe(n),
				Pos:     n.Position(),
			}
		}

		kind, ok := indexCall(call)
		if !ok {
			slices.Reverse(indexes)

			return call, indexes, nil
		}

		indexes = append(indexes, indexFromCall(kind, call))
		n = call.Callee.(*Member).Object
	}
}

func indexCall(call *Call) (convextypes.IndexKind, bool) {
	member, ok := call.Callee.(*Member)
	if !ok {
		return "", false
	}

	if _, ok := member.Object.(*Call); !ok {
		return "", false
	}

	return convextypes.IndexMethod(member.Name)
}

func indexFromCall(kind convextypes.IndexKind, call *Call) *convextypes.Index {
	idx := &convextypes.Index{Kind: kind}

	if lit, ok := call.Arg(0).(*Literal); ok && lit.Value.Kind == convextypes.LiteralString {
		idx.Name = lit.Value.Value
	} else if call.Arg(0) != nil {
		idx.Name = render(call.Arg(0))
	}

	switch arg := call.Arg(1).(type) {
	case *Array:
		idx.Fields = stringElements(arg)
	case *Object:
		idx.Fields = indexConfigFields(kind, arg)
	}

	return idx
}

func indexConfigFields(kind convextypes.IndexKind, cfg *Object) []string {
	var fields []string

	primary := "fields"

	switch kind {
	case convextypes.IndexSearch:
		primary = "searchField"
	case convextypes.IndexVector:
		primary = "vectorField"
	}

	if p, ok := cfg.Get(primary); ok {
		switch v := p.Value.(type) {
		case *Literal:
			fields = append(fields, v.Value.Value)
		case *Array:
			fields = append(fields, stringElements(v)...)
		}
	}

	if p, ok := cfg.Get("filterFields"); ok {
		if arr, ok := p.Value.(*Array); ok {
			fields = append(fields, stringElements(arr)...)
		}
	}

	return fields
}

func stringElements(arr *Array) []string {
	out := make([]string, 0, len(arr.Elements))

	for _, el := range arr.Elements {
		if lit, ok := el.(*Literal); ok && lit.Value.Kind == convextypes.LiteralString {
			out = append(out, lit.Value.Value)
		}
	}

	return out
}

// tableColumns returns the column object of a table definition. Both
// `defineTable({...})` and `defineTable(v.object({...}))` are accepted.
func tableColumns(def *Call) (*Object, bool) {
	return objectLiteral(def.Arg(0))
}

// objectLiteral accepts `{...}` and `v.object({...})`.
func objectLiteral(n Node) (*Object, bool) {
	switch n := n.(type) {
	case *Object:
		return n, true
	case *Call:
		if member, ok := n.Callee.(*Member); ok && member.Name == string(convextypes.TagObject) {
			obj, ok := n.Arg(0).(*Object)

			return obj, ok
		}
	}

	return nil, false
}
