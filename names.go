package convextypes

// Identifiers recognized in schema modules.
const (
	DefineSchema = "defineSchema"
	DefineTable  = "defineTable"

	// ValidatorNamespace is the conventional import name of convex/values.
	ValidatorNamespace = "v"
)

// Table builder methods that may be chained on defineTable.
var indexMethods = map[string]IndexKind{
	"index":       IndexDefault,
	"searchIndex": IndexSearch,
	"vectorIndex": IndexVector,
}

// IndexMethod returns the index kind for a chained table builder method.
func IndexMethod(name string) (IndexKind, bool) {
	k, ok := indexMethods[name]

	return k, ok
}

// FunctionBuilder describes a recognized function constructor.
type FunctionBuilder struct {
	Kind     FunctionKind
	Internal bool
}

// functionBuilders maps callee names to the function they define.
var functionBuilders = map[string]FunctionBuilder{
	"query":            {Kind: KindQuery},
	"mutation":         {Kind: KindMutation},
	"action":           {Kind: KindAction},
	"internalQuery":    {Kind: KindQuery, Internal: true},
	"internalMutation": {Kind: KindMutation, Internal: true},
	"internalAction":   {Kind: KindAction, Internal: true},
}

// LookupFunctionBuilder returns the builder for a callee name.
func LookupFunctionBuilder(callee string) (FunctionBuilder, bool) {
	b, ok := functionBuilders[callee]

	return b, ok
}

// Function object keys.
const (
	ArgsKey = "args"
)

// Language names.
const (
	LangRust = "rust"
	LangGo   = "go"
)
