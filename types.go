package convextypes

import (
	"slices"
	"strings"
)

// TypeTag names a validator in the Convex `v.*` vocabulary.
type TypeTag string

// Type tags.
const (
	TagID       TypeTag = "id"
	TagNull     TypeTag = "null"
	TagInt64    TypeTag = "int64"
	TagNumber   TypeTag = "number"
	TagBoolean  TypeTag = "boolean"
	TagString   TypeTag = "string"
	TagBytes    TypeTag = "bytes"
	TagArray    TypeTag = "array"
	TagObject   TypeTag = "object"
	TagRecord   TypeTag = "record"
	TagUnion    TypeTag = "union"
	TagLiteral  TypeTag = "literal"
	TagOptional TypeTag = "optional"
	TagAny      TypeTag = "any"
)

// validTypes is the closed vocabulary, in the order reported by errors.
var validTypes = []TypeTag{
	TagID, TagNull, TagInt64, TagNumber, TagBoolean, TagString, TagBytes,
	TagArray, TagObject, TagRecord, TagUnion, TagLiteral, TagOptional, TagAny,
}

// ValidTypes returns the type vocabulary in canonical order.
func ValidTypes() []TypeTag {
	return slices.Clone(validTypes)
}

// IsValid reports whether t belongs to the vocabulary.
func (t TypeTag) IsValid() bool {
	return slices.Contains(validTypes, t)
}

// IsScalar reports whether t carries no nested types.
func (t TypeTag) IsScalar() bool {
	switch t {
	case TagID, TagNull, TagInt64, TagNumber, TagBoolean, TagString, TagBytes, TagAny:
		return true
	default:
		return false
	}
}

// LiteralKind classifies the source token of a literal value.
type LiteralKind string

// Literal kinds.
const (
	LiteralString  LiteralKind = "string"
	LiteralNumber  LiteralKind = "number"
	LiteralBigInt  LiteralKind = "bigint"
	LiteralBoolean LiteralKind = "boolean"
	LiteralNull    LiteralKind = "null"
	LiteralOther   LiteralKind = "other"
)

// LiteralValue is a literal argument kept verbatim. For strings Value holds
// the unquoted text; Raw is always the source token.
type LiteralValue struct {
	Kind  LiteralKind `yaml:"kind"`
	Raw   string      `yaml:"raw"`
	Value string      `yaml:"value,omitempty"`
}

// Field is a named member of an object type.
type Field struct {
	Name string    `yaml:"name"`
	Doc  []string  `yaml:"doc,omitempty"`
	Type *TypeNode `yaml:"type"`
}

// TypeNode is one resolved validator. Only the slots relevant to Tag are set;
// array, record and literal slots may stay empty when the source omits them.
type TypeNode struct {
	Tag TypeTag `yaml:"type"`

	// Inner is set for optional.
	Inner *TypeNode `yaml:"inner,omitempty"`

	// Element is set for array.
	Element *TypeNode `yaml:"elements,omitempty"`

	// Fields is set for object, in source order.
	Fields []*Field `yaml:"fields,omitempty"`

	// Key and Value are set for record.
	Key   *TypeNode `yaml:"keyType,omitempty"`
	Value *TypeNode `yaml:"valueType,omitempty"`

	// Variants is set for union.
	Variants []*TypeNode `yaml:"variants,omitempty"`

	// Literal is set for literal.
	Literal *LiteralValue `yaml:"value,omitempty"`

	// Args holds the verbatim arguments of scalar validators, such as the
	// table name of v.id("users").
	Args []LiteralValue `yaml:"args,omitempty"`
}

// Scalar returns a node for a tag without nested types.
func Scalar(tag TypeTag, args ...LiteralValue) *TypeNode {
	return &TypeNode{Tag: tag, Args: args}
}

// OptionalOf wraps inner in an optional.
func OptionalOf(inner *TypeNode) *TypeNode {
	return &TypeNode{Tag: TagOptional, Inner: inner}
}

// ArrayOf creates an array of elem. A nil elem is allowed.
func ArrayOf(elem *TypeNode) *TypeNode {
	return &TypeNode{Tag: TagArray, Element: elem}
}

// ObjectOf creates an object type from fields.
func ObjectOf(fields ...*Field) *TypeNode {
	if fields == nil {
		fields = []*Field{}
	}

	return &TypeNode{Tag: TagObject, Fields: fields}
}

// RecordOf creates a record type. Either slot may be nil.
func RecordOf(key, value *TypeNode) *TypeNode {
	return &TypeNode{Tag: TagRecord, Key: key, Value: value}
}

// UnionOf creates a union of variants.
func UnionOf(variants ...*TypeNode) *TypeNode {
	if variants == nil {
		variants = []*TypeNode{}
	}

	return &TypeNode{Tag: TagUnion, Variants: variants}
}

// LiteralOf creates a literal type. A nil value is allowed.
func LiteralOf(value *LiteralValue) *TypeNode {
	return &TypeNode{Tag: TagLiteral, Literal: value}
}

// StringLiteral is a convenience for LiteralOf with a string value.
func StringLiteral(s string) *TypeNode {
	return LiteralOf(&LiteralValue{Kind: LiteralString, Raw: quote(s), Value: s})
}

// FieldOf creates an object field.
func FieldOf(name string, t *TypeNode) *Field {
	return &Field{Name: name, Type: t}
}

// Field returns the object field with the given name, or nil.
func (t *TypeNode) Field(name string) *Field {
	for _, f := range t.Fields {
		if f.Name == name {
			return f
		}
	}

	return nil
}

// String renders the node in validator syntax, e.g. `v.optional(v.string())`.
func (t *TypeNode) String() string {
	if t == nil {
		return ""
	}

	var b strings.Builder

	writeValidator(&b, t)

	return b.String()
}

func writeValidator(b *strings.Builder, t *TypeNode) {
	b.WriteString("v.")
	b.WriteString(string(t.Tag))
	b.WriteByte('(')

	switch t.Tag {
	case TagOptional:
		writeSlot(b, t.Inner)
	case TagArray:
		writeSlot(b, t.Element)
	case TagRecord:
		writeSlot(b, t.Key)

		if t.Value != nil {
			b.WriteString(", ")
			writeSlot(b, t.Value)
		}
	case TagObject:
		b.WriteByte('{')

		for i, f := range t.Fields {
			if i > 0 {
				b.WriteByte(',')
			}

			b.WriteByte(' ')
			b.WriteString(f.Name)
			b.WriteString(": ")
			writeSlot(b, f.Type)
		}

		if len(t.Fields) > 0 {
			b.WriteByte(' ')
		}

		b.WriteByte('}')
	case TagUnion:
		for i, variant := range t.Variants {
			if i > 0 {
				b.WriteString(", ")
			}

			writeSlot(b, variant)
		}
	case TagLiteral:
		if t.Literal != nil {
			b.WriteString(t.Literal.Raw)
		}
	default:
		for i, arg := range t.Args {
			if i > 0 {
				b.WriteString(", ")
			}

			b.WriteString(arg.Raw)
		}
	}

	b.WriteByte(')')
}

func writeSlot(b *strings.Builder, t *TypeNode) {
	if t != nil {
		writeValidator(b, t)
	}
}

func quote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)

	return `"` + r.Replace(s) + `"`
}
