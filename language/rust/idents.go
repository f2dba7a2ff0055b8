package rust

import "strings"

// Strict and reserved keywords that are valid as raw identifiers.
var rawKeywords = map[string]bool{
	"as": true, "break": true, "const": true, "continue": true, "else": true,
	"enum": true, "extern": true, "false": true, "fn": true, "for": true,
	"if": true, "impl": true, "in": true, "let": true, "loop": true,
	"match": true, "mod": true, "move": true, "mut": true, "pub": true,
	"ref": true, "return": true, "static": true, "struct": true, "trait": true,
	"true": true, "type": true, "unsafe": true, "use": true, "where": true,
	"while": true, "async": true, "await": true, "dyn": true, "abstract": true,
	"become": true, "box": true, "do": true, "final": true, "macro": true,
	"override": true, "priv": true, "typeof": true, "unsized": true,
	"virtual": true, "yield": true, "try": true, "gen": true,
}

// Keywords that cannot be raw identifiers.
var reservedKeywords = map[string]bool{
	"self": true, "Self": true, "super": true, "crate": true, "_": true,
}

// fieldIdent returns the Rust identifier for a document field and, when it
// differs from name after serde's raw-identifier handling, the serialized
// name to keep.
func fieldIdent(name string) (ident, rename string) {
	switch {
	case reservedKeywords[name]:
		return name + "_", name
	case rawKeywords[name]:
		return "r#" + name, ""
	case isIdent(name):
		return name, ""
	}

	var b strings.Builder

	for i := 0; i < len(name); i++ {
		c := name[i]
		if isIdentContinue(c) {
			b.WriteByte(c)
		} else {
			b.WriteByte('_')
		}
	}

	ident = b.String()
	if ident == "" || !isIdentStart(ident[0]) || reservedKeywords[ident] || rawKeywords[ident] {
		ident = "_" + ident
	}

	return ident, name
}

func isIdent(s string) bool {
	if s == "" || !isIdentStart(s[0]) {
		return false
	}

	for i := 1; i < len(s); i++ {
		if !isIdentContinue(s[i]) {
			return false
		}
	}

	return true
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentContinue(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}
