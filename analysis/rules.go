package analysis

import (
	"fmt"
	"slices"
	"strings"

	"github.com/rlch/convextypes"
)

// DiagnosticSeverity ranks lint findings.
type DiagnosticSeverity int

// Severities, most severe first.
const (
	SeverityError DiagnosticSeverity = iota + 1
	SeverityWarning
	SeverityHint
)

func (s DiagnosticSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityHint:
		return "hint"
	default:
		return "unknown"
	}
}

// Diagnostic is one lint finding on the extracted model.
type Diagnostic struct {
	Rule     string
	Severity DiagnosticSeverity
	// Context is the dotted location, e.g. `messages.author` or `api:send`.
	Context string
	Message string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s: %s [%s]", d.Severity, d.Context, d.Message, d.Rule)
}

// Model is the complete extraction result that lint rules inspect.
type Model struct {
	Schema    *convextypes.Schema
	Functions []*convextypes.Function
}

// Rule represents a check over the extracted model.
// Inspired by go/analysis.Analyzer pattern.
type Rule struct {
	// Name is a short identifier for the rule (used in diagnostic codes).
	Name string

	// Doc is a brief description of what the rule checks.
	Doc string

	// Severity is the severity of diagnostics from this rule.
	Severity DiagnosticSeverity

	// Run executes the rule and reports findings.
	Run func(m *Model, report func(context, message string))
}

// DefaultRules returns all built-in lint rules.
func DefaultRules() []*Rule {
	return []*Rule{
		duplicateFunctionPathRule,
		unknownIDTableRule,
		unknownIndexFieldRule,
		emptyUnionRule,
		partialTypeRule,
	}
}

// Lint runs rules over m and returns the findings ordered by severity, then
// by rule order.
func Lint(m *Model, rules ...*Rule) []Diagnostic {
	if len(rules) == 0 {
		rules = DefaultRules()
	}

	var out []Diagnostic

	for _, rule := range rules {
		rule.Run(m, func(context, message string) {
			out = append(out, Diagnostic{
				Rule:     rule.Name,
				Severity: rule.Severity,
				Context:  context,
				Message:  message,
			})
		})
	}

	slices.SortStableFunc(out, func(a, b Diagnostic) int {
		return int(a.Severity) - int(b.Severity)
	})

	return out
}

// ----------------------------------------------------------------------------
// Rule: duplicate-function-path
// ----------------------------------------------------------------------------

var duplicateFunctionPathRule = &Rule{
	Name:     "duplicate-function-path",
	Doc:      "Reports functions that share a callable path.",
	Severity: SeverityError,
	Run: func(m *Model, report func(string, string)) {
		seen := make(map[string]bool)

		for _, fn := range m.Functions {
			path := fn.Path()
			if seen[path] {
				report(path, "function is defined more than once")
			}

			seen[path] = true
		}
	},
}

// ----------------------------------------------------------------------------
// Rule: unknown-id-table
// ----------------------------------------------------------------------------

var unknownIDTableRule = &Rule{
	Name:     "unknown-id-table",
	Doc:      "Reports v.id() references to tables missing from the schema.",
	Severity: SeverityWarning,
	Run: func(m *Model, report func(string, string)) {
		if m.Schema == nil {
			return
		}

		walkModel(m, func(context string, t *convextypes.TypeNode) {
			if t.Tag != convextypes.TagID || len(t.Args) == 0 {
				return
			}

			arg := t.Args[0]
			if arg.Kind != convextypes.LiteralString {
				return
			}

			if m.Schema.Table(arg.Value) == nil && !isSystemTable(arg.Value) {
				report(context, fmt.Sprintf("v.id references unknown table %q", arg.Value))
			}
		})
	},
}

func isSystemTable(name string) bool {
	return strings.HasPrefix(name, "_")
}

// ----------------------------------------------------------------------------
// Rule: unknown-index-field
// ----------------------------------------------------------------------------

var unknownIndexFieldRule = &Rule{
	Name:     "unknown-index-field",
	Doc:      "Reports indexes over columns the table does not define.",
	Severity: SeverityWarning,
	Run: func(m *Model, report func(string, string)) {
		if m.Schema == nil {
			return
		}

		for _, table := range m.Schema.Tables {
			for _, idx := range table.Indexes {
				for _, field := range idx.Fields {
					col, _, _ := strings.Cut(field, ".")
					if strings.HasPrefix(col, "_") || table.Column(col) != nil {
						continue
					}

					report(table.Name+"."+idx.Name, fmt.Sprintf("%s uses unknown field %q", idx.Kind, field))
				}
			}
		}
	},
}

// ----------------------------------------------------------------------------
// Rule: empty-union
// ----------------------------------------------------------------------------

var emptyUnionRule = &Rule{
	Name:     "empty-union",
	Doc:      "Reports unions without variants, which no value satisfies.",
	Severity: SeverityWarning,
	Run: func(m *Model, report func(string, string)) {
		walkModel(m, func(context string, t *convextypes.TypeNode) {
			if t.Tag == convextypes.TagUnion && len(t.Variants) == 0 {
				report(context, "union has no variants")
			}
		})
	},
}

// ----------------------------------------------------------------------------
// Rule: partial-type
// ----------------------------------------------------------------------------

var partialTypeRule = &Rule{
	Name:     "partial-type",
	Doc:      "Reports arrays and records whose element types were omitted.",
	Severity: SeverityHint,
	Run: func(m *Model, report func(string, string)) {
		walkModel(m, func(context string, t *convextypes.TypeNode) {
			switch {
			case t.Tag == convextypes.TagArray && t.Element == nil:
				report(context, "array has no element type and is generated as untyped")
			case t.Tag == convextypes.TagRecord && (t.Key == nil || t.Value == nil):
				report(context, "record needs key and value types and is generated as untyped")
			case t.Tag == convextypes.TagLiteral && t.Literal == nil:
				report(context, "literal has no value and is generated as untyped")
			}
		})
	},
}

// walkModel visits every TypeNode of every column and parameter in pre-order.
func walkModel(m *Model, visit func(context string, t *convextypes.TypeNode)) {
	if m.Schema != nil {
		for _, table := range m.Schema.Tables {
			for _, col := range table.Columns {
				Walk(col.Type, table.Name+"."+col.Name, visit)
			}
		}
	}

	for _, fn := range m.Functions {
		for _, p := range fn.Params {
			Walk(p.Type, fn.Path()+"."+p.Name, visit)
		}
	}
}

// Walk visits t and its nested types in pre-order, passing each node's
// dotted type path.
func Walk(t *convextypes.TypeNode, path string, visit func(path string, t *convextypes.TypeNode)) {
	if t == nil {
		return
	}

	visit(path, t)

	switch t.Tag {
	case convextypes.TagOptional:
		Walk(t.Inner, path+"."+SegInner, visit)
	case convextypes.TagArray:
		Walk(t.Element, path+"."+SegElement, visit)
	case convextypes.TagObject:
		for _, f := range t.Fields {
			Walk(f.Type, path+"."+f.Name, visit)
		}
	case convextypes.TagRecord:
		Walk(t.Key, path+"."+SegKey, visit)
		Walk(t.Value, path+"."+SegValue, visit)
	case convextypes.TagUnion:
		for i, v := range t.Variants {
			Walk(v, path+"."+VariantSegment(i), visit)
		}
	}
}
