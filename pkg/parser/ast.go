// Package parser builds a span-annotated token tree for MontRS host source.
// The grammar is recognized at the delimiter level: any lexically valid,
// delimiter-balanced file parses, which is the same view of host code the
// language's own macro system operates on. Brace-delimited groups are
// partitioned into statements; statements are the sibling nodes that comment
// gaps attach between.
package parser

import (
	"fmt"

	"github.com/montrs/montfmt/pkg/lexer"
	"github.com/montrs/montfmt/pkg/source"
)

// NodeID identifies a node for gap association. IDs are unique within one
// formatting pass; they never cross files.
type NodeID int

// Alloc hands out node IDs for one pass. The host parser and the template
// sub-parser share a single allocator so gap keys cannot collide.
type Alloc struct {
	next NodeID
}

// Next returns a fresh node ID.
func (a *Alloc) Next() NodeID {
	id := a.next
	a.next++
	return id
}

// File is the root of the parsed token tree.
type File struct {
	ID   NodeID
	Span source.Span
	// Stmts are the top-level items in source order.
	Stmts []*Stmt
}

// Stmt is one item or statement: a run of token trees ending at a `;`, a
// trailing brace block, or end of input.
type Stmt struct {
	ID    NodeID
	Span  source.Span
	Trees []*Tree
}

// TreeKind discriminates the Tree union.
type TreeKind int

const (
	// TreeToken is a single leaf token.
	TreeToken TreeKind = iota

	// TreeGroup is a delimited group: (...), [...], or {...}.
	// Brace groups carry statement-partitioned children in Stmts; paren and
	// bracket groups carry raw Trees.
	TreeGroup

	// TreeMacro is an invocation of a configured template macro.
	TreeMacro
)

// Tree is a tagged union over leaf tokens, delimited groups, and template
// macro invocations.
type Tree struct {
	Kind TreeKind
	Span source.Span

	// TreeToken
	Tok lexer.Token

	// TreeGroup
	Open    lexer.Token
	Close   lexer.Token
	ScopeID NodeID  // brace groups only: parent ID for gap association
	Stmts   []*Stmt // brace groups
	Trees   []*Tree // paren and bracket groups

	// TreeMacro
	Macro *MacroCall
}

// IsBrace reports whether the tree is a brace-delimited group.
func (t *Tree) IsBrace() bool {
	return t.Kind == TreeGroup && t.Open.Text == "{"
}

// MacroCall is a template-macro invocation: name ! <delim> body </delim>.
// The body is kept as a raw token slice (comments included) for the template
// sub-parser; the host parser does not interpret it.
type MacroCall struct {
	ID       NodeID
	Name     lexer.Token
	Bang     lexer.Token
	Open     lexer.Token
	Close    lexer.Token
	Body     []lexer.Token
	Span     source.Span
	BodySpan source.Span // region between the delimiters
}

// ParseError reports structurally invalid input, such as unbalanced
// delimiters. Formatting of the file is aborted and the file left untouched.
type ParseError struct {
	File string
	Pos  source.Position
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%s: parse error: %s", e.File, e.Pos, e.Msg)
}
