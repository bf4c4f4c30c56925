package trivia

import (
	"sort"

	"github.com/montrs/montfmt/pkg/parser"
)

// CommentMap is the result of gap association: every extracted comment
// assigned to exactly one gap, in offset order within the gap. Built once
// per pass and consumed read-only by recomposition.
type CommentMap struct {
	gaps    map[Gap][]Comment
	subtree map[parser.NodeID]int
	total   int
}

// At returns the comments assigned to the given gap, in offset order.
func (m *CommentMap) At(parent parser.NodeID, index int) []Comment {
	return m.gaps[Gap{Parent: parent, Index: index}]
}

// Total returns the number of comments in the map.
func (m *CommentMap) Total() int {
	return m.total
}

// SubtreeCount returns the number of comments assigned to the scope's own
// gaps plus all scopes nested under it. The recomposer uses it to decide
// whether a block may collapse onto one line.
func (m *CommentMap) SubtreeCount(id parser.NodeID) int {
	return m.subtree[id]
}

// Associate assigns each comment to exactly one gap: the comment descends
// into the deepest scope whose span contains it, then lands in that scope's
// gap by offset.
//
// Deterministic placement rules, on which idempotence depends:
//   - A comment starting at or after a sibling's end attaches to the gap
//     after that sibling (trailing-previous at exact boundaries).
//   - A comment inside a sibling's span with no deeper scope containing it
//     attaches to the gap before that sibling; the next pass sees it there,
//     in the same gap.
func Associate(root *Scope, comments []Comment) *CommentMap {
	m := &CommentMap{
		gaps:    make(map[Gap][]Comment),
		subtree: make(map[parser.NodeID]int),
	}

	for _, c := range comments {
		scope := deepest(root, c)
		gap := Gap{Parent: scope.ID, Index: gapIndex(scope, c)}
		m.gaps[gap] = append(m.gaps[gap], c)
		m.total++
	}

	for gap := range m.gaps {
		sort.Slice(m.gaps[gap], func(i, j int) bool {
			return m.gaps[gap][i].Span.Start < m.gaps[gap][j].Span.Start
		})
	}

	tallySubtree(root, m)
	return m
}

// deepest walks into nested scopes while one contains the comment.
func deepest(s *Scope, c Comment) *Scope {
	for {
		var next *Scope
		for _, inner := range s.Inner {
			if inner.Span.Contains(c.Span) {
				next = inner
				break
			}
		}
		if next == nil {
			return s
		}
		s = next
	}
}

// gapIndex places the comment within the scope's gaps by offset.
func gapIndex(s *Scope, c Comment) int {
	for i, child := range s.Children {
		if c.Span.Start < child.Start {
			// Entirely before child i: the gap between i-1 and i.
			return i
		}
		if c.Span.Start < child.End {
			// Inside child i with no deeper scope: leading gap of child i.
			return i
		}
	}
	// After the last child (or the scope has no children).
	return len(s.Children)
}

// tallySubtree computes per-scope comment counts including descendants.
func tallySubtree(s *Scope, m *CommentMap) int {
	count := 0
	for i := 0; i <= len(s.Children); i++ {
		count += len(m.gaps[Gap{Parent: s.ID, Index: i}])
	}
	for _, inner := range s.Inner {
		count += tallySubtree(inner, m)
	}
	m.subtree[s.ID] = count
	return count
}
