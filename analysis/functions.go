package analysis

import (
	"github.com/rlch/convextypes"
)

// ExtractFunctions returns the Convex functions defined in a parsed module,
// in source order. module is the callable module name, see
// convextypes.ModuleName.
func ExtractFunctions(prog *convextypes.Program, module string) ([]*convextypes.Function, error) {
	exports, err := FindFunctionExports(prog)
	if err != nil {
		return nil, err
	}

	var out []*convextypes.Function

	for _, export := range exports {
		fn, ok, err := extractFunction(export, module)
		if err != nil {
			return nil, err
		}

		if ok {
			out = append(out, fn)
		}
	}

	return out, nil
}

func extractFunction(export *Export, module string) (*convextypes.Function, bool, error) {
	callee, ok := export.Call.Callee.(*Ident)
	if !ok {
		return nil, false, nil
	}

	builder, ok := convextypes.LookupFunctionBuilder(callee.Name)
	if !ok {
		return nil, false, nil
	}

	fn := &convextypes.Function{
		Name:     export.Name,
		Kind:     builder.Kind,
		Internal: builder.Internal,
		Module:   module,
		Doc:      export.Doc,
		Params:   []*convextypes.FunctionParam{},
	}

	if len(export.Call.Args) == 0 {
		return nil, false, nil
	}

	// A bare handler such as query(async (ctx) => ...) takes no arguments.
	config, ok := export.Call.Arg(0).(*Object)
	if !ok {
		return fn, true, nil
	}

	args, ok := config.Get(convextypes.ArgsKey)
	if !ok {
		return fn, true, nil
	}

	params, ok := objectLiteral(args.Value)
	if args.Kind != PropInit || !ok {
		return nil, false, &convextypes.SchemaError{
			Context: export.Name,
			Details: "function args must be an object",
			Pos:     args.Pos,
		}
	}

	for _, prop := range params.Props {
		if prop.Kind != PropInit {
			return nil, false, &convextypes.SchemaError{
				Context: export.Name,
				Details: "invalid argument property structure: " + describeProperty(prop),
				Pos:     prop.Pos,
			}
		}

		if prop.KeyKind != KeyIdent {
			return nil, false, &convextypes.SchemaError{
				Context: export.Name,
				Details: "invalid parameter name: " + describeProperty(prop),
				Pos:     prop.Pos,
			}
		}

		t, err := ResolveType(prop.Value, NewTypeContext(export.Name, prop.Key))
		if err != nil {
			return nil, false, err
		}

		fn.Params = append(fn.Params, &convextypes.FunctionParam{Name: prop.Key, Doc: prop.Doc, Type: t})
	}

	return fn, true, nil
}
