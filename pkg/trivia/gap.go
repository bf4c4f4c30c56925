package trivia

import (
	"github.com/montrs/montfmt/pkg/parser"
	"github.com/montrs/montfmt/pkg/source"
)

// Gap identifies the region between two adjacent siblings under one parent
// node. A parent with N children has N+1 gaps: index 0 before the first
// child, index i between children i-1 and i, index N after the last child.
type Gap struct {
	Parent parser.NodeID
	Index  int
}

// Scope describes one parent node and its ordered children, flattened from
// the host token tree and the template sub-trees. The formatter builds one
// Scope tree per pass and hands it to Associate.
type Scope struct {
	// ID is the parent node's ID; gap keys use it.
	ID parser.NodeID

	// Span is the region the parent's gaps cover. For brace groups this is
	// the interior between the delimiters, so a comment hugging a brace
	// lands in the first or last gap.
	Span source.Span

	// Children are the sibling node spans in source order.
	Children []source.Span

	// Inner are scopes nested inside children (block bodies, template
	// element children). Each Inner scope's span lies within some child.
	Inner []*Scope
}

// AddChild appends a child span and returns its index.
func (s *Scope) AddChild(span source.Span) int {
	s.Children = append(s.Children, span)
	return len(s.Children) - 1
}
