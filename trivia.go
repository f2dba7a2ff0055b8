package convextypes

import (
	"sort"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// Trivia is a comment collected during a separate lexing pass.
type Trivia struct {
	Text string
	Span Span
	// Next is the offset of the first significant token after the comment.
	Next int
}

// collectTrivia lexes src again and records every comment together with the
// offset of the token that follows it.
func collectTrivia(filename, src string) ([]Trivia, error) {
	lex := newLexerState(filename, src)

	var (
		out     []Trivia
		pending []int
	)

	for {
		tok, err := lex.Next()
		if err != nil {
			return nil, err
		}

		switch tok.Type {
		case tWhitespace:
			continue
		case tComment:
			out = append(out, Trivia{
				Text: tok.Value,
				Span: Span{Start: tok.Pos, End: lex.pos()},
			})
			pending = append(pending, len(out)-1)

			continue
		}

		for _, i := range pending {
			out[i].Next = tok.Pos.Offset
		}

		pending = pending[:0]

		if tok.EOF() {
			return out, nil
		}
	}
}

// commentableNode pairs the start of a node with its comment storage.
type commentableNode struct {
	start   lexer.Position
	comment *CommentMeta
}

// attachComments gives every top-level item and object member the comments
// directly above it. A comment block separated from the node by a blank line
// is detached and dropped, as are tool directives.
func attachComments(prog *Program, trivia []Trivia) {
	if prog == nil || len(trivia) == 0 {
		return
	}

	var nodes []commentableNode
	collectCommentableNodes(prog, &nodes)

	byStart := make(map[int]*commentableNode, len(nodes))
	for i := range nodes {
		byStart[nodes[i].start.Offset] = &nodes[i]
	}

	// Group comments by the token they precede, keeping source order.
	groups := make(map[int][]Trivia)
	for _, t := range trivia {
		groups[t.Next] = append(groups[t.Next], t)
	}

	offsets := make([]int, 0, len(groups))
	for off := range groups {
		offsets = append(offsets, off)
	}

	sort.Ints(offsets)

	for _, off := range offsets {
		node, ok := byStart[off]
		if !ok {
			continue
		}

		block := groups[off]

		// Walk back from the node while comments are on consecutive lines.
		first := len(block)
		line := node.start.Line

		for i := len(block) - 1; i >= 0; i-- {
			if block[i].Span.End.Line < line-1 {
				break
			}

			line = block[i].Span.Start.Line
			first = i
		}

		for _, t := range block[first:] {
			if isDirective(t.Text) {
				continue
			}

			node.comment.LeadingComments = append(node.comment.LeadingComments, t.Text)
		}
	}
}

func isDirective(comment string) bool {
	text := strings.TrimSpace(strings.TrimLeft(comment, "/*"))

	for _, prefix := range []string{"@ts-", "eslint-", "eslint ", "prettier-ignore", "biome-ignore", "#region", "#endregion"} {
		if strings.HasPrefix(text, prefix) {
			return true
		}
	}

	return false
}

func collectCommentableNodes(prog *Program, nodes *[]commentableNode) {
	for _, item := range prog.Items {
		*nodes = append(*nodes, commentableNode{start: item.Pos, comment: &item.CommentMeta})

		switch {
		case item.ExportDefault != nil && item.ExportDefault.Value != nil:
			collectExprNodes(item.ExportDefault.Value, nodes)
		case item.ExportDecl != nil && item.ExportDecl.Var != nil:
			collectVarNodes(item.ExportDecl.Var, nodes)
		case item.Call != nil:
			collectArgNodes(item.Call.Args, nodes)
			collectSuffixNodes(item.Call.Suffixes, nodes)
		}
	}
}

func collectVarNodes(decl *VarDecl, nodes *[]commentableNode) {
	for _, d := range decl.Declarators {
		if d.Init != nil {
			collectExprNodes(d.Init, nodes)
		}
	}
}

func collectExprNodes(expr *Expr, nodes *[]commentableNode) {
	if expr == nil {
		return
	}

	if expr.Binary != nil {
		collectUnaryNodes(expr.Binary.Head, nodes)

		for _, tail := range expr.Binary.Tail {
			collectUnaryNodes(tail.Operand, nodes)
		}
	}

	collectExprNodes(expr.Consequent, nodes)
	collectExprNodes(expr.Alternate, nodes)
}

func collectUnaryNodes(u *UnaryExpr, nodes *[]commentableNode) {
	if u == nil || u.Postfix == nil {
		return
	}

	if prim := u.Postfix.Primary; prim != nil {
		switch {
		case prim.Object != nil:
			for _, m := range prim.Object.Members {
				*nodes = append(*nodes, commentableNode{start: m.Pos, comment: &m.CommentMeta})

				switch {
				case m.Property != nil:
					collectExprNodes(m.Property.Value, nodes)
				case m.Spread != nil:
					collectExprNodes(m.Spread, nodes)
				}
			}
		case prim.Array != nil:
			for _, el := range prim.Array.Elements {
				collectExprNodes(el.Value, nodes)
			}
		}
	}

	collectSuffixNodes(u.Postfix.Suffixes, nodes)
}

func collectSuffixNodes(suffixes []*Suffix, nodes *[]commentableNode) {
	for _, s := range suffixes {
		switch {
		case s.Call != nil:
			collectArgNodes(s.Call, nodes)
		case s.Index != nil:
			collectExprNodes(s.Index, nodes)
		}
	}
}

func collectArgNodes(args *Arguments, nodes *[]commentableNode) {
	if args == nil {
		return
	}

	for _, a := range args.List {
		collectExprNodes(a.Value, nodes)
	}
}

// CommentText strips comment markers from raw comments and returns the
// remaining non-empty lines.
func CommentText(comments []string) []string {
	var out []string

	for _, c := range comments {
		switch {
		case strings.HasPrefix(c, "//"):
			out = append(out, strings.TrimSpace(strings.TrimPrefix(c, "//")))
		case strings.HasPrefix(c, "/*"):
			body := strings.TrimSuffix(strings.TrimPrefix(c, "/*"), "*/")
			body = strings.TrimPrefix(body, "*")

			for _, line := range strings.Split(body, "\n") {
				line = strings.TrimSpace(line)
				line = strings.TrimSpace(strings.TrimPrefix(line, "*"))

				if line != "" {
					out = append(out, line)
				}
			}
		}
	}

	return out
}
