package language

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	textlang "golang.org/x/text/language"
)

// Words splits an identifier into words at non-alphanumeric runs and at
// lower-to-upper case changes: "isActive" and "is_active" both yield
// ["is", "Active"] and ["is", "active"].
func Words(s string) []string {
	var (
		words []string
		cur   []rune
	)

	flush := func() {
		if len(cur) > 0 {
			words = append(words, string(cur))
			cur = cur[:0]
		}
	}

	var prev rune

	for _, r := range s {
		switch {
		case !unicode.IsLetter(r) && !unicode.IsDigit(r):
			flush()
		case unicode.IsUpper(r) && (unicode.IsLower(prev) || unicode.IsDigit(prev)):
			flush()

			cur = append(cur, r)
		default:
			cur = append(cur, r)
		}

		prev = r
	}

	flush()

	return words
}

// PascalCase joins the words of s with each word title-cased. Existing
// capitals are kept, so "userID" becomes "UserID".
func PascalCase(s string) string {
	// A Caser is stateful and cannot be shared between goroutines.
	titler := cases.Title(textlang.Und, cases.NoLower)

	var b strings.Builder

	for _, w := range Words(s) {
		b.WriteString(titler.String(w))
	}

	return b.String()
}

// DeclName builds a declaration name from an owner and nested field names,
// e.g. DeclName("messages", "meta", "kind") is "MessagesMetaKind".
func DeclName(parts ...string) string {
	var b strings.Builder

	for _, p := range parts {
		b.WriteString(PascalCase(p))
	}

	return b.String()
}

// Namer hands out unique names within one scope.
type Namer struct {
	used map[string]bool
}

// NewNamer returns a Namer with the given names already taken.
func NewNamer(reserved ...string) *Namer {
	n := &Namer{used: make(map[string]bool, len(reserved))}
	for _, r := range reserved {
		n.used[r] = true
	}

	return n
}

// Unique returns the first free candidate. When all are taken the first
// candidate gets the smallest free numeric suffix starting at 2.
func (n *Namer) Unique(candidates ...string) string {
	for _, c := range candidates {
		if c != "" && !n.used[c] {
			n.used[c] = true

			return c
		}
	}

	base := candidates[0]

	for i := 2; ; i++ {
		c := base + strconv.Itoa(i)
		if !n.used[c] {
			n.used[c] = true

			return c
		}
	}
}

// Taken reports whether name has been handed out or reserved.
func (n *Namer) Taken(name string) bool {
	return n.used[name]
}
