// Package view parses and prints the HTML-like template grammar embedded in
// configured macro invocations (view! { ... }). The parser consumes the raw
// token stream captured by the host parser; the printer is comment-aware by
// construction: it receives the resolved gap comments for its sub-tree and
// injects them inline as it prints.
package view

import (
	"fmt"

	"github.com/montrs/montfmt/pkg/lexer"
	"github.com/montrs/montfmt/pkg/parser"
	"github.com/montrs/montfmt/pkg/source"
)

// MaxNestingDepth bounds mutual recursion between the template parser and
// expression blocks containing further template macros.
const MaxNestingDepth = 64

// NodeKind discriminates the template node union.
type NodeKind int

const (
	// NodeElement is a tag with attributes and children, or a fragment.
	NodeElement NodeKind = iota

	// NodeText is a quoted text node.
	NodeText

	// NodeBlock is a brace-delimited host expression, possibly containing
	// nested template macros.
	NodeBlock
)

// Node is one template child: a tagged union over element, text, and block.
type Node struct {
	Kind NodeKind
	Span source.Span

	Element *Element
	Text    lexer.Token
	Block   *Block
}

// Element is a tag. A Name of "" is a fragment (<>...</>).
type Element struct {
	Name  string
	Attrs []Attr

	// SelfClosed records how the source closed the tag, for the preserve
	// closing-tag style.
	SelfClosed bool

	Children []*Node

	// ChildScope identifies the children list for gap association; its
	// span runs from the end of the opening tag to the start of the
	// closing tag.
	ChildScope parser.NodeID
	ChildSpan  source.Span
}

// Attr is one attribute: a name and an optional value.
type Attr struct {
	Name     string
	NameSpan source.Span

	// Value is nil for bare attributes like `disabled`.
	Value *AttrValue
}

// AttrValue carries the value tokens and whether the source braced them.
type AttrValue struct {
	Braced bool
	Tokens []lexer.Token
}

// Literal reports whether the value is a single literal token (string,
// number, char, or boolean), which the when_required brace style leaves
// unbraced.
func (v *AttrValue) Literal() bool {
	if len(v.Tokens) != 1 {
		return false
	}
	switch v.Tokens[0].Kind {
	case lexer.KindString, lexer.KindNumber, lexer.KindChar:
		return true
	case lexer.KindIdent:
		return v.Tokens[0].Text == "true" || v.Tokens[0].Text == "false"
	default:
		return false
	}
}

// Block is a host expression block. Its content alternates raw token runs
// and nested template invocations.
type Block struct {
	Span     source.Span
	Segments []Segment
}

// Segment is either a token run or a nested template macro.
type Segment struct {
	Tokens []lexer.Token
	Macro  *Nested
}

// Nested is a template macro inside an expression block.
type Nested struct {
	Name string
	Span source.Span
	Body *Body
}

// Body is a parsed template: the ordered children of one macro invocation,
// with the scope identity its gaps hang off.
type Body struct {
	ScopeID parser.NodeID
	Span    source.Span
	Nodes   []*Node
}

// StructureError reports a malformed template body: unclosed or mismatched
// tags, stray tokens, or pathological nesting. It is scoped to one macro
// invocation; configuration decides whether it fails the file or preserves
// the invocation verbatim.
type StructureError struct {
	File string
	Pos  source.Position
	Msg  string
}

func (e *StructureError) Error() string {
	return fmt.Sprintf("%s:%s: template error: %s", e.File, e.Pos, e.Msg)
}

// Scopes flattens the body into trivia scopes: the body's own children list
// plus every element's children list, recursively, including nested
// template bodies inside expression blocks.
func (b *Body) Scopes() ScopeInfo {
	info := ScopeInfo{ID: b.ScopeID, Span: b.Span}
	for _, n := range b.Nodes {
		info.Children = append(info.Children, n.Span)
		info.Inner = append(info.Inner, nodeScopes(n)...)
	}
	return info
}

// ScopeInfo mirrors trivia.Scope without importing it, keeping this package
// free of the association machinery. The formatter converts it.
type ScopeInfo struct {
	ID       parser.NodeID
	Span     source.Span
	Children []source.Span
	Inner    []ScopeInfo
}

func nodeScopes(n *Node) []ScopeInfo {
	switch n.Kind {
	case NodeElement:
		info := ScopeInfo{ID: n.Element.ChildScope, Span: n.Element.ChildSpan}
		for _, c := range n.Element.Children {
			info.Children = append(info.Children, c.Span)
			info.Inner = append(info.Inner, nodeScopes(c)...)
		}
		return []ScopeInfo{info}
	case NodeBlock:
		var out []ScopeInfo
		for _, seg := range n.Block.Segments {
			if seg.Macro != nil {
				out = append(out, seg.Macro.Body.Scopes())
			}
		}
		return out
	default:
		return nil
	}
}
