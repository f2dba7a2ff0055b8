package analysis

import (
	"github.com/rlch/convextypes"
)

// FindSchemaCall locates the `defineSchema(...)` call of a schema module. A
// default export is preferred over a bare top-level call; a default export of
// an identifier is not followed.
func FindSchemaCall(prog *convextypes.Program) (*Call, error) {
	if prog == nil || prog.Items == nil {
		return nil, &convextypes.SchemaError{Context: "schema", Details: "missing body"}
	}

	for _, item := range prog.Items {
		if item.ExportDefault == nil || item.ExportDefault.Value == nil {
			continue
		}

		n, err := Convert(prog, item.ExportDefault.Value)
		if err != nil {
			return nil, err
		}

		if call, ok := schemaCall(n); ok {
			return call, nil
		}
	}

	for _, item := range prog.Items {
		if item.Call == nil {
			continue
		}

		args, err := (&converter{prog: prog}).args(item.Call.Args.List)
		if err != nil {
			return nil, err
		}

		return &Call{
			Callee: &Ident{Name: item.Call.Callee, Pos: item.Call.Pos},
			Args:   args,
			Pos:    item.Call.Pos,
		}, nil
	}

	return nil, &convextypes.SchemaError{
		Context: "schema",
		Details: "could not find " + convextypes.DefineSchema + " call",
	}
}

func schemaCall(n Node) (*Call, bool) {
	call, ok := n.(*Call)
	if !ok {
		return nil, false
	}

	ident, ok := call.Callee.(*Ident)
	if !ok || ident.Name != convextypes.DefineSchema {
		return nil, false
	}

	return call, true
}

// Export is a top-level exported variable whose initializer is a call.
type Export struct {
	Name string
	Call *Call
	Doc  []string
}

// FindFunctionExports returns, in source order, every top-level
// `export const name = callee(...)` declaration. Declarations of any other
// shape are skipped.
func FindFunctionExports(prog *convextypes.Program) ([]*Export, error) {
	if prog == nil || prog.Items == nil {
		return nil, &convextypes.SchemaError{Context: "functions", Details: "missing body"}
	}

	var out []*Export

	for _, item := range prog.Items {
		if item.ExportDecl == nil || item.ExportDecl.Var == nil {
			continue
		}

		doc := convextypes.CommentText(item.LeadingComments)

		for _, d := range item.ExportDecl.Var.Declarators {
			if d.Init == nil {
				continue
			}

			n, err := Convert(prog, d.Init)
			if err != nil {
				return nil, err
			}

			call, ok := n.(*Call)
			if !ok {
				continue
			}

			out = append(out, &Export{Name: d.Name, Call: call, Doc: doc})
		}
	}

	return out, nil
}
