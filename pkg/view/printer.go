package view

import (
	"strings"

	"github.com/montrs/montfmt/pkg/config"
	"github.com/montrs/montfmt/pkg/lexer"
	"github.com/montrs/montfmt/pkg/parser"
	"github.com/montrs/montfmt/pkg/printer"
	"github.com/montrs/montfmt/pkg/trivia"
)

// Printer renders a parsed template body back to text. Unlike the host
// printer it sees comments: the gap map for its sub-tree is injected at
// construction and comments are emitted inline while printing.
type Printer struct {
	src      string
	settings *config.Settings
	comments *trivia.CommentMap
	host     *printer.Printer
}

// NewPrinter creates a template printer over one file's source text. host
// renders expression tokens and attribute values so spacing decisions match
// the surrounding code.
func NewPrinter(src string, settings *config.Settings, comments *trivia.CommentMap, host *printer.Printer) *Printer {
	return &Printer{src: src, settings: settings, comments: comments, host: host}
}

// PrintInvocation renders `name! { ... }`. The first line continues the
// caller's current line; subsequent lines are indented relative to depth.
func (pr *Printer) PrintInvocation(name string, body *Body, depth int) string {
	if len(body.Nodes) == 0 && pr.comments.SubtreeCount(body.ScopeID) == 0 {
		return name + "! {}"
	}
	var b strings.Builder
	b.WriteString(name)
	b.WriteString("! {\n")
	pr.printChildren(&b, body.ScopeID, body.Span.Start, body.Nodes, depth+1)
	b.WriteString(pr.indent(depth))
	b.WriteString("}")
	return b.String()
}

func (pr *Printer) indent(depth int) string {
	return strings.Repeat(pr.settings.Indent(), depth)
}

func (pr *Printer) width(depth int, text string) int {
	return depth*pr.settings.TabSpaces + len(text)
}

// blankBetween reports whether the source had a blank line between two
// offsets; the output keeps at most one.
func (pr *Printer) blankBetween(prevEnd, nextStart int) bool {
	if prevEnd <= 0 || prevEnd >= nextStart || nextStart > len(pr.src) {
		return false
	}
	return strings.Count(pr.src[prevEnd:nextStart], "\n") >= 2
}

// printChildren emits one node per line, with the scope's gap comments woven
// in at their assigned positions.
func (pr *Printer) printChildren(b *strings.Builder, scope parser.NodeID, scopeStart int, nodes []*Node, depth int) {
	ind := pr.indent(depth)
	prevEnd := scopeStart

	emitComments := func(gap int) {
		for _, c := range pr.comments.At(scope, gap) {
			if pr.blankBetween(prevEnd, c.Span.Start) {
				b.WriteString("\n")
			}
			b.WriteString(ind)
			b.WriteString(c.Text)
			b.WriteString("\n")
			prevEnd = c.Span.End
		}
	}

	for i, n := range nodes {
		emitComments(i)
		if pr.blankBetween(prevEnd, n.Span.Start) {
			b.WriteString("\n")
		}
		b.WriteString(ind)
		b.WriteString(pr.renderNode(n, depth))
		b.WriteString("\n")
		prevEnd = n.Span.End
	}
	emitComments(len(nodes))
}

func (pr *Printer) renderNode(n *Node, depth int) string {
	switch n.Kind {
	case NodeText:
		return n.Text.Text
	case NodeBlock:
		return pr.renderBlock(n.Block, depth)
	default:
		return pr.renderElement(n.Element, depth)
	}
}

func (pr *Printer) renderElement(el *Element, depth int) string {
	attrs := make([]string, 0, len(el.Attrs))
	for _, a := range el.Attrs {
		attrs = append(attrs, pr.renderAttr(a))
	}

	hasChildren := len(el.Children) > 0 || pr.comments.SubtreeCount(el.ChildScope) > 0

	selfClose := false
	if !hasChildren && el.Name != "" {
		switch pr.settings.View.ClosingTagStyle {
		case config.CloseSelfClosing:
			selfClose = true
		case config.CloseNonSelfClosing:
			selfClose = false
		case config.ClosePreserve:
			selfClose = el.SelfClosed
		}
	}

	open := "<" + el.Name
	if len(attrs) > 0 {
		open += " " + strings.Join(attrs, " ")
	}
	closer := ">"
	if selfClose {
		closer = " />"
	}

	// Attribute wrap: one per line when the opening tag overflows.
	openFits := pr.width(depth, open+closer) <= pr.settings.MaxWidth
	var b strings.Builder
	if openFits || len(attrs) == 0 {
		b.WriteString(open)
		b.WriteString(closer)
	} else {
		b.WriteString("<" + el.Name + "\n")
		ind := pr.indent(depth + 1)
		for _, a := range attrs {
			b.WriteString(ind)
			b.WriteString(a)
			b.WriteString("\n")
		}
		b.WriteString(pr.indent(depth))
		if selfClose {
			b.WriteString("/>")
		} else {
			b.WriteString(">")
		}
	}

	if selfClose {
		return b.String()
	}
	closing := "</" + el.Name + ">"
	if !hasChildren {
		b.WriteString(closing)
		return b.String()
	}

	// A single short text or expression child stays on the opening line.
	if openFits && len(el.Children) == 1 && pr.comments.SubtreeCount(el.ChildScope) == 0 {
		c := el.Children[0]
		if c.Kind == NodeText || c.Kind == NodeBlock {
			inline := pr.renderNode(c, depth)
			if !strings.Contains(inline, "\n") &&
				pr.width(depth, open+closer+inline+closing) <= pr.settings.MaxWidth {
				b.WriteString(inline)
				b.WriteString(closing)
				return b.String()
			}
		}
	}

	b.WriteString("\n")
	pr.printChildren(&b, el.ChildScope, el.ChildSpan.Start, el.Children, depth+1)
	b.WriteString(pr.indent(depth))
	b.WriteString(closing)
	return b.String()
}

func (pr *Printer) renderAttr(a Attr) string {
	if a.Value == nil {
		return a.Name
	}
	text := pr.host.RenderTokens(a.Value.Tokens)

	braced := false
	switch pr.settings.View.AttrValueBraceStyle {
	case config.BracesAlways:
		braced = true
	case config.BracesNever:
		braced = !standsAlone(a.Value.Tokens)
	case config.BracesWhenRequired:
		braced = !a.Value.Literal()
	}

	if braced {
		return a.Name + "={" + text + "}"
	}
	return a.Name + "=" + text
}

// standsAlone reports whether the value tokens parse unbraced: a single
// token, or a single delimited group.
func standsAlone(toks []lexer.Token) bool {
	if len(toks) == 1 {
		return toks[0].Kind != lexer.KindOpen && toks[0].Kind != lexer.KindClose
	}
	if len(toks) < 2 || toks[0].Kind != lexer.KindOpen {
		return false
	}
	depth := 0
	for i, t := range toks {
		if t.Kind == lexer.KindOpen {
			depth++
		}
		if t.Kind == lexer.KindClose {
			depth--
			if depth == 0 {
				return i == len(toks)-1
			}
		}
	}
	return false
}

// renderBlock renders `{ ... }` with nested template invocations expanded
// recursively. Braces hug the expression.
func (pr *Printer) renderBlock(block *Block, depth int) string {
	parts := make([]string, 0, len(block.Segments))
	for _, seg := range block.Segments {
		if seg.Macro != nil {
			parts = append(parts, pr.PrintInvocation(seg.Macro.Name, seg.Macro.Body, depth))
		} else {
			parts = append(parts, pr.host.RenderTokens(seg.Tokens))
		}
	}
	joined := strings.Join(parts, " ")
	if joined == "" {
		return "{}"
	}
	return "{" + joined + "}"
}
